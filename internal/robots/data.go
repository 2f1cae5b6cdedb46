package robots

import (
	"strings"
	"time"
)

// pathRule is a single allow/disallow path pattern. A pattern is matched
// as a prefix against the request path; "*" inside it means "any run of
// characters" (greedy, with backtracking on failure to match the rest of
// the pattern) and every other character, including "?", is literal.
type pathRule struct {
	pattern string
}

// matches reports whether path satisfies this rule's pattern as a prefix
// match per SPEC_FULL.md §4.C.
func (p pathRule) matches(path string) bool {
	return matchGreedy(p.pattern, path)
}

// matchGreedy implements prefix matching with a single greedy, backtracking
// "*" wildcard. It tries the match at every possible split point for each
// "*" encountered, backtracking to a shorter consumption if a later part
// of the pattern fails to align — the standard "greedy then backtrack"
// regex-free glob algorithm.
func matchGreedy(pattern, path string) bool {
	star := strings.IndexByte(pattern, '*')
	if star == -1 {
		return strings.HasPrefix(path, pattern)
	}

	prefix := pattern[:star]
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := pattern[star+1:]
	remaining := path[len(prefix):]

	if rest == "" {
		return true
	}

	// Try consuming as much as possible first (greedy), then back off.
	for consume := len(remaining); consume >= 0; consume-- {
		if matchGreedy(rest, remaining[consume:]) {
			return true
		}
	}
	return false
}

type ruleSet struct {
	host string

	// The user-agent these rules apply to (resolved, not raw)
	userAgent string

	// Path-based rules, evaluated in this order: allow first, then disallow.
	allowRules    []pathRule
	disallowRules []pathRule

	// Optional crawl delay from robots.txt
	crawlDelay *time.Duration

	// Metadata / observability
	fetchedAt time.Time
	sourceURL string

	// matchedGroup indicates an exact-agent or wildcard group was selected.
	matchedGroup bool

	// hasGroups indicates the robots.txt file had any user-agent groups at all.
	hasGroups bool
}

// isAllowed implements §4.C's decision rule for an already-selected
// ruleSet: if any allow pattern matches, allow; else if any disallow
// pattern matches, deny; otherwise allow by default.
func (r ruleSet) isAllowed(path string) bool {
	for _, rule := range r.allowRules {
		if rule.matches(path) {
			return true
		}
	}
	for _, rule := range r.disallowRules {
		if rule.matches(path) {
			return false
		}
	}
	return true
}

type DecisionReason string

const (
	AllowedByRobots     DecisionReason = "allowed_by_robots"
	DisallowedByRobots  DecisionReason = "disallowed_by_robots"
	UserAgentNotMatched DecisionReason = "user_agent_not_matched"
	EmptyRuleSet        DecisionReason = "empty_rule_set"
	NoMatchingRules     DecisionReason = "no_matching_rules"
)

type Decision struct {
	URL string

	Allowed bool

	// Why this decision was made (for logging/debugging)
	Reason DecisionReason

	// Optional delay override (robots crawl-delay)
	CrawlDelay *time.Duration
}
