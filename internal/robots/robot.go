package robots

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"
)

// CachedRobot maintains the domain -> (agent -> ruleSet) cache described
// in §4.C, populated lazily on first IsAllowed/GetCrawlDelay call for a
// given domain. The cache is protected by a single mutex; readers and
// writers both acquire it, matching the documented thread-safety rule.
type CachedRobot struct {
	fetcher *RobotsFetcher

	mu      sync.Mutex
	records map[string]map[string]ruleSet // domain -> agent -> ruleSet
}

// NewCachedRobot returns a robots policy backed by fetcher.
func NewCachedRobot(fetcher *RobotsFetcher) *CachedRobot {
	return &CachedRobot{
		fetcher: fetcher,
		records: make(map[string]map[string]ruleSet),
	}
}

// IsAllowed reports whether agent may crawl rawURL, fetching and caching
// the domain's robots.txt on first use. Rule selection prefers the record
// for the exact agent, else the "*" record; if neither exists, the
// decision defaults to allow.
func (c *CachedRobot) IsAllowed(ctx context.Context, agent, rawURL string) bool {
	domain := authorityOf(rawURL)
	rs, ok := c.recordFor(ctx, agent, domain)
	if !ok {
		return true
	}
	path := pathOf(rawURL)
	return rs.isAllowed(path)
}

// GetCrawlDelay returns the crawl delay robots.txt specifies for agent on
// domain, or 0 if there is no record or no Crawl-delay directive.
func (c *CachedRobot) GetCrawlDelay(ctx context.Context, agent, domain string) time.Duration {
	rs, ok := c.recordFor(ctx, agent, domain)
	if !ok {
		return 0
	}
	if delay := rs.CrawlDelay(); delay != nil {
		return *delay
	}
	return 0
}

// recordFor returns the cached ruleSet for (domain, agent), fetching and
// populating the cache if this is the first request for domain. The
// second return value is false only when no exact-agent or wildcard
// group exists in the domain's robots.txt (i.e. default-allow applies).
func (c *CachedRobot) recordFor(ctx context.Context, agent, domain string) (ruleSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	byAgent, domainKnown := c.records[domain]
	if domainKnown {
		if rs, ok := byAgent[agent]; ok {
			return rs, rs.matchedGroup
		}
	} else {
		byAgent = make(map[string]ruleSet)
		c.records[domain] = byAgent
	}

	response := c.fetcher.Fetch(ctx, domain)
	rs := MapResponseToRuleSet(response, agent, time.Now())
	byAgent[agent] = rs
	return rs, rs.matchedGroup
}

// Authority returns rawURL's host, including port, lowercased — the
// authority robots.txt must be fetched against and the domain argument
// GetCrawlDelay expects. This is deliberately not urlutil.ExtractDomain,
// which strips "www." and ports for keyword/priority comparisons;
// robots.txt lives per network authority, not per registrable domain.
func Authority(rawURL string) string {
	return authorityOf(rawURL)
}

func authorityOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

// pathOf extracts the path component (with query string) from rawURL,
// defaulting to "/" when absent.
func pathOf(rawURL string) string {
	const schemeSep = "://"
	idx := strings.Index(rawURL, schemeSep)
	if idx == -1 {
		return "/"
	}
	rest := rawURL[idx+len(schemeSep):]
	slash := strings.IndexByte(rest, '/')
	if slash == -1 {
		return "/"
	}
	return rest[slash:]
}
