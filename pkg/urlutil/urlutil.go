// Package urlutil implements pure, allocation-light string functions over
// URLs: normalization, relative-to-absolute resolution, and domain
// comparison. Nothing here performs I/O or keeps state.
package urlutil

import (
	"net/url"
	"regexp"
	"strings"
)

var indexPageSuffix = regexp.MustCompile(`(?i)/(index\.(?:html|htm|php)|default\.html)$`)

// Normalize lowercases the scheme and host, drops any fragment, collapses
// repeated path separators, ensures the path is never empty (bare host
// becomes "/"), and rewrites a trailing index/default page to its
// directory. Malformed input is returned unchanged after best-effort
// repair; Normalize never fails.
//
// Normalize(Normalize(x)) == Normalize(x): every rewrite it performs
// produces a string already in the rewritten form.
func Normalize(raw string) string {
	if raw == "" {
		return raw
	}

	candidate := raw
	if !strings.Contains(candidate, "://") {
		switch {
		case strings.HasPrefix(candidate, "http:"):
			candidate = "http://" + strings.TrimPrefix(candidate, "http:")
		case strings.HasPrefix(candidate, "https:"):
			candidate = "https://" + strings.TrimPrefix(candidate, "https:")
		default:
			candidate = "http://" + candidate
		}
	}

	u, err := url.Parse(candidate)
	if err != nil {
		return raw
	}

	u.Scheme = lowerASCII(u.Scheme)
	u.Host = lowerASCII(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	u.Path = collapseSlashes(u.Path)
	if u.Path == "" {
		u.Path = "/"
	}
	u.Path = indexPageSuffix.ReplaceAllString(u.Path, "/")

	return u.String()
}

// MakeAbsolute resolves ref against base per RFC 3986 (base scheme for
// protocol-relative refs, base scheme+host for root-relative refs,
// directory-relative resolution otherwise) and normalizes the result. If
// ref is already absolute it is normalized directly.
func MakeAbsolute(base, ref string) string {
	if ref == "" {
		return ""
	}

	refURL, err := url.Parse(ref)
	if err == nil && refURL.IsAbs() {
		return Normalize(ref)
	}

	baseURL, err := url.Parse(base)
	if err != nil || refURL == nil {
		return Normalize(ref)
	}

	resolved := baseURL.ResolveReference(refURL)
	return Normalize(resolved.String())
}

// ExtractDomain returns the host of url, without a leading "www." and
// without a port. Malformed input yields the best-effort parsed host,
// possibly empty.
func ExtractDomain(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := lowerASCII(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// IsSameDomain reports whether url's domain equals domain, is a subdomain
// of it, or domain is a subdomain of it (either side may be the parent).
func IsSameDomain(raw, domain string) bool {
	urlDomain := ExtractDomain(raw)
	domain = strings.TrimPrefix(lowerASCII(domain), "www.")
	if urlDomain == "" || domain == "" {
		return urlDomain == domain
	}
	if urlDomain == domain {
		return true
	}
	if strings.HasSuffix(urlDomain, "."+domain) {
		return true
	}
	if strings.HasSuffix(domain, "."+urlDomain) {
		return true
	}
	return false
}

// collapseSlashes reduces any run of "/" in path to a single "/".
func collapseSlashes(path string) string {
	if !strings.Contains(path, "//") {
		return path
	}
	var b strings.Builder
	b.Grow(len(path))
	prevSlash := false
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteByte(c)
	}
	return b.String()
}

// lowerASCII converts ASCII characters to lowercase without allocating
// when the input is already lowercase.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
