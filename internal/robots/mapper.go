package robots

import (
	"strings"
	"time"
)

// MapResponseToRuleSet selects the rule group applicable to targetUserAgent
// per §4.C: prefer an exact (case-insensitive) agent match; else the `*`
// group; else no group at all, which the caller treats as default-allow.
func MapResponseToRuleSet(response RobotsResponse, targetUserAgent string, fetchedAt time.Time) ruleSet {
	rs := ruleSet{
		host:      response.Host,
		userAgent: targetUserAgent,
		fetchedAt: fetchedAt,
		sourceURL: "https://" + response.Host + "/robots.txt",
		hasGroups: len(response.UserAgents) > 0,
	}

	group := selectExactOrWildcardGroup(response.UserAgents, targetUserAgent)
	if group == nil {
		return rs
	}
	rs.matchedGroup = true

	rs.allowRules = make([]pathRule, 0, len(group.Allows))
	for _, allow := range group.Allows {
		if allow.Path != "" {
			rs.allowRules = append(rs.allowRules, pathRule{pattern: normalizePath(allow.Path)})
		}
	}

	rs.disallowRules = make([]pathRule, 0, len(group.Disallows))
	for _, disallow := range group.Disallows {
		if disallow.Path != "" {
			rs.disallowRules = append(rs.disallowRules, pathRule{pattern: normalizePath(disallow.Path)})
		}
	}

	if group.CrawlDelay != nil {
		delay := *group.CrawlDelay
		rs.crawlDelay = &delay
	}

	return rs
}

// selectExactOrWildcardGroup returns the group listing targetUserAgent
// exactly (case-insensitive), or failing that the group listing "*", or
// nil if neither exists. Unlike longest-prefix robots.txt matching, a
// partial agent name (e.g. "Googlebot" for "Googlebot-Image") is not
// considered a match — only an exact agent name or the wildcard counts.
func selectExactOrWildcardGroup(groups []UserAgentGroup, targetUserAgent string) *UserAgentGroup {
	targetLower := strings.ToLower(targetUserAgent)

	for i := range groups {
		for _, ua := range groups[i].UserAgents {
			if strings.ToLower(ua) == targetLower {
				return &groups[i]
			}
		}
	}
	for i := range groups {
		for _, ua := range groups[i].UserAgents {
			if ua == "*" {
				return &groups[i]
			}
		}
	}
	return nil
}

// normalizePath ensures the path starts with "/".
func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// ruleSet getters for immutability

func (r ruleSet) Host() string { return r.host }

func (r ruleSet) UserAgent() string { return r.userAgent }

func (r ruleSet) FetchedAt() time.Time { return r.fetchedAt }

func (r ruleSet) SourceURL() string { return r.sourceURL }

func (r ruleSet) CrawlDelay() *time.Duration {
	if r.crawlDelay == nil {
		return nil
	}
	delay := *r.crawlDelay
	return &delay
}

func (r ruleSet) AllowRules() []pathRule {
	result := make([]pathRule, len(r.allowRules))
	copy(result, r.allowRules)
	return result
}

func (r ruleSet) DisallowRules() []pathRule {
	result := make([]pathRule, len(r.disallowRules))
	copy(result, r.disallowRules)
	return result
}

func (p pathRule) Pattern() string { return p.pattern }
