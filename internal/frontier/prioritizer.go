package frontier

import (
	"regexp"
	"strings"

	"github.com/rohmanhakim/docs-crawler/pkg/urlutil"
)

// keywordWeights mirrors the fixed weight table discovered URLs are
// scored against: a page whose URL mentions one of these words is more
// likely to be worth visiting sooner.
var keywordWeights = map[string]float64{
	"about":   1.5,
	"index":   1.2,
	"main":    1.2,
	"home":    1.1,
	"product": 1.3,
	"service": 1.3,
	"blog":    0.9,
	"news":    1.0,
	"article": 0.9,
	"contact": 0.8,
}

func wholeWordRegex(word string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
}

var keywordRegexes = func() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(keywordWeights))
	for word := range keywordWeights {
		out[word] = wholeWordRegex(word)
	}
	return out
}()

// Prioritizer scores candidate URLs so the frontier can visit the most
// promising ones first. It is stateless aside from the configured keyword
// tables, so a single instance is safe for concurrent use by every
// worker.
type Prioritizer struct {
	domainKeywords           map[string][]string
	domainKeywordWeight      float64
	crossDomainKeywordWeight float64
}

// NewPrioritizer builds a Prioritizer from the configured domain ->
// keyword map and the additive weights applied to same-domain and
// cross-domain keyword hits.
func NewPrioritizer(domainKeywords map[string][]string, domainKeywordWeight, crossDomainKeywordWeight float64) *Prioritizer {
	return &Prioritizer{
		domainKeywords:           domainKeywords,
		domainKeywordWeight:      domainKeywordWeight,
		crossDomainKeywordWeight: crossDomainKeywordWeight,
	}
}

// Score computes keyword_factor(url) × depth_factor(depth) × tld_factor(url) + domain_keyword_bonus(url).
func (p *Prioritizer) Score(rawURL string, depth int) float64 {
	return p.keywordFactor(rawURL) * depthFactor(depth) * tldFactor(rawURL) + p.domainKeywordBonus(rawURL)
}

func (p *Prioritizer) keywordFactor(rawURL string) float64 {
	factor := 1.0
	for word, weight := range keywordWeights {
		if keywordRegexes[word].MatchString(rawURL) {
			factor *= weight
		}
	}
	if isRootPath(rawURL) {
		factor *= 1.5
	}
	return factor
}

func depthFactor(depth int) float64 {
	v := 2.0 / (float64(depth) + 1.0)
	if v < 0.1 {
		return 0.1
	}
	return v
}

func tldFactor(rawURL string) float64 {
	domain := urlutil.ExtractDomain(rawURL)
	switch {
	case strings.HasSuffix(domain, ".gov"):
		return 1.4
	case strings.HasSuffix(domain, ".edu"):
		return 1.3
	case strings.HasSuffix(domain, ".org"):
		return 1.2
	default:
		return 1.0
	}
}

func (p *Prioritizer) domainKeywordBonus(rawURL string) float64 {
	currentDomain := urlutil.ExtractDomain(rawURL)
	bonus := 0.0

	for domain, keywords := range p.domainKeywords {
		weight := p.crossDomainKeywordWeight
		if domain == currentDomain {
			weight = p.domainKeywordWeight
		}
		for _, keyword := range keywords {
			if wholeWordRegex(keyword).MatchString(rawURL) {
				bonus += weight
			}
		}
	}
	return bonus
}

// isRootPath reports whether rawURL's path is exactly "/" (the domain's
// home page).
func isRootPath(rawURL string) bool {
	idx := strings.Index(rawURL, "://")
	if idx == -1 {
		return false
	}
	rest := rawURL[idx+3:]
	slash := strings.IndexByte(rest, '/')
	if slash == -1 {
		return false
	}
	return rest[slash:] == "/"
}
