package robots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rohmanhakim/docs-crawler/internal/robots/cache"
)

func TestParseRobotsTxt_GroupsAndDirectives(t *testing.T) {
	content := `
# top level comment
User-agent: Googlebot
User-agent: Bingbot
Allow: /public
Disallow: /private
Crawl-delay: 3

User-agent: *
Disallow: /
Sitemap: http://example.com/sitemap.xml
`
	response := ParseRobotsTxt(content, "example.com")

	if len(response.UserAgents) != 2 {
		t.Fatalf("expected 2 groups, got %d: %+v", len(response.UserAgents), response.UserAgents)
	}
	first := response.UserAgents[0]
	if len(first.UserAgents) != 2 || first.UserAgents[0] != "Googlebot" || first.UserAgents[1] != "Bingbot" {
		t.Errorf("expected first group to share Googlebot+Bingbot, got %+v", first.UserAgents)
	}
	if len(first.Allows) != 1 || first.Allows[0].Path != "/public" {
		t.Errorf("expected one allow rule /public, got %+v", first.Allows)
	}
	if first.CrawlDelay == nil || *first.CrawlDelay != 3*1e9 {
		t.Errorf("expected a 3s crawl delay, got %v", first.CrawlDelay)
	}
	if len(response.Sitemaps) != 1 || response.Sitemaps[0] != "http://example.com/sitemap.xml" {
		t.Errorf("expected one sitemap entry, got %+v", response.Sitemaps)
	}
}

func TestParseRobotsTxt_CommentsAreStripped(t *testing.T) {
	content := "User-agent: *  # everyone\nDisallow: /admin  # keep out\n"
	response := ParseRobotsTxt(content, "example.com")
	if len(response.UserAgents) != 1 || response.UserAgents[0].Disallows[0].Path != "/admin" {
		t.Errorf("expected a clean /admin disallow after stripping comments, got %+v", response.UserAgents)
	}
}

func TestParseRobotsTxt_EmptyContentYieldsNoGroups(t *testing.T) {
	response := ParseRobotsTxt("", "example.com")
	if len(response.UserAgents) != 0 {
		t.Errorf("expected no groups for empty content, got %+v", response.UserAgents)
	}
	if !response.IsEmpty() {
		t.Error("expected IsEmpty() to be true for empty content")
	}
}

func TestRobotsFetcher_Fetches200AndParses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /admin\n"))
	}))
	defer server.Close()

	fetcher := NewRobotsFetcherWithClient("test-agent/1.0", server.Client(), nil)
	response := fetcher.Fetch(context.Background(), server.URL[len("http://"):])

	if len(response.UserAgents) != 1 || response.UserAgents[0].Disallows[0].Path != "/admin" {
		t.Errorf("expected a parsed disallow rule, got %+v", response.UserAgents)
	}
}

func TestRobotsFetcher_404YieldsEmptyPermissiveResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewRobotsFetcherWithClient("test-agent/1.0", server.Client(), nil)
	response := fetcher.Fetch(context.Background(), server.URL[len("http://"):])

	if !response.IsEmpty() {
		t.Errorf("expected an empty response on 404, got %+v", response)
	}
}

func TestRobotsFetcher_CachesAcrossCalls(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("User-agent: *\nDisallow: /x\n"))
	}))
	defer server.Close()

	fetcher := NewRobotsFetcherWithClient("test-agent/1.0", server.Client(), cache.NewMemoryCache())
	domain := server.URL[len("http://"):]

	fetcher.Fetch(context.Background(), domain)
	fetcher.Fetch(context.Background(), domain)

	if hits != 1 {
		t.Errorf("expected one HTTP fetch for repeated calls to the same domain, got %d", hits)
	}
}

func TestRobotsResponse_GetGroupForUserAgent(t *testing.T) {
	response := RobotsResponse{
		UserAgents: []UserAgentGroup{
			{UserAgents: []string{"*"}},
			{UserAgents: []string{"Googlebot"}},
		},
	}

	if g := response.GetGroupForUserAgent("Googlebot"); g == nil || g.UserAgents[0] != "Googlebot" {
		t.Errorf("expected the exact Googlebot group, got %+v", g)
	}
	if g := response.GetGroupForUserAgent("UnknownBot"); g == nil || g.UserAgents[0] != "*" {
		t.Errorf("expected the wildcard group for an unknown agent, got %+v", g)
	}
}
