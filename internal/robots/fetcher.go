package robots

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rohmanhakim/docs-crawler/internal/robots/cache"
)

// fetchTimeout bounds a single robots.txt fetch attempt per §4.C.
const fetchTimeout = 5 * time.Second

// RobotsFetcher fetches and parses robots.txt files from hosts, trying
// http:// first and falling back to https:// on failure, per §4.C.
type RobotsFetcher struct {
	httpClient *http.Client
	userAgent  string
	cache      cache.Cache
}

// NewRobotsFetcher creates a new RobotsFetcher. cache is optional — if
// nil, no caching is performed (every domain refetches).
func NewRobotsFetcher(userAgent string, cache cache.Cache) *RobotsFetcher {
	return &RobotsFetcher{
		httpClient: &http.Client{Timeout: fetchTimeout},
		userAgent:  userAgent,
		cache:      cache,
	}
}

// NewRobotsFetcherWithClient is like NewRobotsFetcher but with a caller
// supplied HTTP client, for tests.
func NewRobotsFetcherWithClient(userAgent string, httpClient *http.Client, cache cache.Cache) *RobotsFetcher {
	return &RobotsFetcher{
		httpClient: httpClient,
		userAgent:  userAgent,
		cache:      cache,
	}
}

// Fetch retrieves and parses the robots.txt for domain, trying http then
// https. On network failure or empty content on both schemes, it returns
// an empty, permissive response (an install-time empty "*" record) so the
// caller never refetches a domain that genuinely has none.
func (f *RobotsFetcher) Fetch(ctx context.Context, domain string) RobotsResponse {
	if f.cache != nil {
		if cached, found := f.cache.Get(domain); found {
			return parseCachedOrEmpty(cached, domain)
		}
	}

	content, ok := f.fetchScheme(ctx, "http", domain)
	if !ok {
		content, ok = f.fetchScheme(ctx, "https", domain)
	}

	var response RobotsResponse
	if ok {
		response = ParseRobotsTxt(content, domain)
	} else {
		response = RobotsResponse{Host: domain, Sitemaps: []string{}, UserAgents: []UserAgentGroup{}}
	}

	if f.cache != nil {
		f.cache.Put(domain, content)
	}
	return response
}

func parseCachedOrEmpty(content, domain string) RobotsResponse {
	if content == "" {
		return RobotsResponse{Host: domain, Sitemaps: []string{}, UserAgents: []UserAgentGroup{}}
	}
	return ParseRobotsTxt(content, domain)
}

// fetchScheme performs one GET attempt and returns the body plus whether
// it should be treated as a usable robots.txt (any 2xx, even with an empty
// body, or any 4xx which per robots.txt convention means "no restrictions").
func (f *RobotsFetcher) fetchScheme(ctx context.Context, scheme, domain string) (string, bool) {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", scheme, domain)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		const maxSize = 500 * 1024
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxSize))
		if err != nil {
			return "", false
		}
		return string(body), true
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return "", true
	default:
		return "", false
	}
}

// ParseRobotsTxt parses robots.txt content into a structured format, per
// §4.C's parsing rules: line-oriented, "#" begins a comment, recognized
// directives are case-insensitive, and successive User-agent lines before
// any rule accumulate into the same group.
func ParseRobotsTxt(content, hostname string) RobotsResponse {
	response := RobotsResponse{
		Host:       hostname,
		Sitemaps:   []string{},
		UserAgents: []UserAgentGroup{},
	}

	scanner := bufio.NewScanner(strings.NewReader(content))

	var currentGroup *UserAgentGroup

	flush := func() {
		if currentGroup != nil {
			response.UserAgents = append(response.UserAgents, *currentGroup)
			currentGroup = nil
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.Index(line, "#"); idx != -1 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		colonIdx := strings.Index(line, ":")
		if colonIdx == -1 {
			continue
		}

		field := strings.ToLower(strings.TrimSpace(line[:colonIdx]))
		value := strings.TrimSpace(line[colonIdx+1:])

		switch field {
		case "user-agent":
			if currentGroup == nil {
				currentGroup = &UserAgentGroup{UserAgents: []string{value}}
			} else if len(currentGroup.Allows) == 0 && len(currentGroup.Disallows) == 0 && currentGroup.CrawlDelay == nil {
				currentGroup.UserAgents = append(currentGroup.UserAgents, value)
			} else {
				flush()
				currentGroup = &UserAgentGroup{UserAgents: []string{value}}
			}

		case "allow":
			if currentGroup != nil {
				currentGroup.Allows = append(currentGroup.Allows, PathRule{Path: value})
			}

		case "disallow":
			if currentGroup != nil {
				currentGroup.Disallows = append(currentGroup.Disallows, PathRule{Path: value})
			}

		case "crawl-delay":
			if currentGroup != nil {
				var seconds float64
				if _, err := fmt.Sscanf(value, "%f", &seconds); err == nil && seconds >= 0 {
					delay := time.Duration(seconds * float64(time.Second))
					currentGroup.CrawlDelay = &delay
				}
			}

		case "sitemap":
			if value != "" {
				response.Sitemaps = append(response.Sitemaps, value)
			}
		}
	}
	flush()

	return response
}

func (f *RobotsFetcher) UserAgent() string { return f.userAgent }
