package extractor

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/rohmanhakim/docs-crawler/internal/metadata"
	"github.com/rohmanhakim/docs-crawler/pkg/failure"
	"github.com/rohmanhakim/docs-crawler/pkg/urlutil"
)

/*
Responsibilities
- Parse HTML into a DOM tree
- Collect outbound links, resolved and normalized against the page's URL
- Collect visible text, stripped of script/style content

Both operations tolerate malformed markup: golang.org/x/net/html's parser
applies the same error-recovery rules a browser does, so there is no
"invalid HTML" failure mode to report here.
*/

// skippedLinkSchemes are hrefs that never name a page to crawl.
var skippedLinkSchemes = []string{"javascript:", "mailto:"}

type DomExtractor struct {
	metadataSink metadata.MetadataSink
}

func NewDomExtractor(metadataSink metadata.MetadataSink) DomExtractor {
	return DomExtractor{metadataSink: metadataSink}
}

// Extract parses htmlByte once and returns both its outbound links
// (resolved against sourceUrl) and its visible text.
func (d *DomExtractor) Extract(sourceUrl url.URL, htmlByte []byte) (ExtractionResult, failure.ClassifiedError) {
	if len(htmlByte) == 0 {
		return ExtractionResult{}, nil
	}

	doc, err := html.Parse(bytes.NewReader(htmlByte))
	if err != nil {
		extractionError := &ExtractionError{
			Message:   fmt.Sprintf("failed to parse HTML: %v", err),
			Retryable: false,
			Cause:     ErrCauseNotHTML,
		}
		d.metadataSink.RecordError(
			time.Now(),
			"extractor",
			"DomExtractor.Extract",
			mapExtractionErrorToMetadataCause(extractionError),
			extractionError.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, sourceUrl.String()),
			},
		)
		return ExtractionResult{}, extractionError
	}

	base := sourceUrl.String()
	return ExtractionResult{
		Links: extractLinks(doc, base),
		Text:  extractText(doc),
	}, nil
}

// ExtractLinks finds every anchor's href in htmlByte, resolves it against
// base, normalizes it, and returns the deduplicated set. Empty hrefs,
// fragment-only hrefs, and javascript:/mailto: schemes are skipped.
func ExtractLinks(htmlByte []byte, base string) []string {
	doc, err := html.Parse(bytes.NewReader(htmlByte))
	if err != nil {
		return nil
	}
	return extractLinks(doc, base)
}

// ExtractText returns the visible text of htmlByte: tags become a single
// space, script/style subtrees are skipped entirely, and whitespace runs
// collapse to one space.
func ExtractText(htmlByte []byte) string {
	doc, err := html.Parse(bytes.NewReader(htmlByte))
	if err != nil {
		return ""
	}
	return extractText(doc)
}

func extractLinks(doc *html.Node, base string) []string {
	seen := make(map[string]bool)
	var links []string

	gqDoc := goquery.NewDocumentFromNode(doc)
	gqDoc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		for _, scheme := range skippedLinkSchemes {
			if strings.HasPrefix(strings.ToLower(href), scheme) {
				return
			}
		}

		resolved := urlutil.MakeAbsolute(base, href)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, resolved)
	})

	return links
}

func extractText(doc *html.Node) string {
	var b strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return collapseWhitespace(b.String())
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastWasSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				b.WriteByte(' ')
				lastWasSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastWasSpace = false
	}
	return strings.TrimSpace(b.String())
}
