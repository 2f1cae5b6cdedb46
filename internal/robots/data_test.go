package robots

import "testing"

func TestMatchGreedy_PlainPrefix(t *testing.T) {
	tests := []struct {
		pattern, path string
		want          bool
	}{
		{"/admin", "/admin/panel", true},
		{"/admin", "/other", false},
		{"/", "/anything", true},
	}
	for _, tt := range tests {
		if got := matchGreedy(tt.pattern, tt.path); got != tt.want {
			t.Errorf("matchGreedy(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}

func TestMatchGreedy_WildcardBacktracks(t *testing.T) {
	tests := []struct {
		pattern, path string
		want          bool
	}{
		{"/private/*/edit", "/private/123/edit", true},
		{"/private/*/edit", "/private/a/b/c/edit", true},
		{"/private/*/edit", "/private/123/view", false},
		{"/*.pdf", "/docs/report.pdf", true},
		{"/*.pdf", "/docs/report.txt", false},
	}
	for _, tt := range tests {
		if got := matchGreedy(tt.pattern, tt.path); got != tt.want {
			t.Errorf("matchGreedy(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}

func TestMatchGreedy_QuestionMarkIsLiteral(t *testing.T) {
	if !matchGreedy("/search?", "/search?") {
		t.Error("literal ? in the pattern should match a literal ? in the path")
	}
	if matchGreedy("/search?", "/searchX") {
		t.Error("literal ? must not act as a single-character wildcard")
	}
}

func TestRuleSet_AllowTakesPrecedenceOverDisallow(t *testing.T) {
	rs := ruleSet{
		allowRules:    []pathRule{{pattern: "/public"}},
		disallowRules: []pathRule{{pattern: "/"}},
	}
	if !rs.isAllowed("/public/page") {
		t.Error("an allow match should win even though a broader disallow also matches")
	}
}

func TestRuleSet_DisallowAppliesWhenNoAllowMatches(t *testing.T) {
	rs := ruleSet{
		disallowRules: []pathRule{{pattern: "/admin"}},
	}
	if rs.isAllowed("/admin/panel") {
		t.Error("expected /admin/panel to be disallowed")
	}
	if !rs.isAllowed("/public") {
		t.Error("expected /public to default-allow when no rule matches")
	}
}

func TestRuleSet_EmptyRuleSetDefaultsAllow(t *testing.T) {
	rs := ruleSet{}
	if !rs.isAllowed("/anything") {
		t.Error("a ruleSet with no rules at all should default-allow")
	}
}
