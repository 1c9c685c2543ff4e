package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	looksLikeHTML = regexp.MustCompile(`(?i)<(?:p|div|span|a|br|li|ul|ol|table|tr|td|strong|em|b|i|h[1-6])\b[^>]*>`)
	blankLines    = regexp.MustCompile(`\n\s*\n+`)
	inlineSpace   = regexp.MustCompile(`[ \t\f\r]+`)
)

// PlainText returns a description as text, converting it first when it
// carries HTML markup
func PlainText(description string) string {
	if !looksLikeHTML.MatchString(description) {
		return description
	}
	text, err := HTMLToText(description)
	if err != nil {
		return description
	}
	return text
}

// HTMLToText extracts readable text from an HTML fragment. Block elements
// end a line, and mailto:/tel: anchors keep their target next to the
// anchor text so it can be matched as a contact.
func HTMLToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	doc.Find("script, style, noscript, iframe, svg").Remove()

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		lower := strings.ToLower(href)
		var target string
		switch {
		case strings.HasPrefix(lower, "mailto:"):
			target = strings.SplitN(href[len("mailto:"):], "?", 2)[0]
		case strings.HasPrefix(lower, "tel:"):
			target = href[len("tel:"):]
		default:
			return
		}
		label := strings.TrimSpace(s.Text())
		if target == "" || strings.EqualFold(label, target) {
			return
		}
		if label == "" {
			s.SetText(target)
			return
		}
		s.SetText(fmt.Sprintf("%s (%s)", label, target))
	})

	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, tr, h1, h2, h3, h4, h5, h6, table, ul, ol").AppendHtml("\n")

	text := inlineSpace.ReplaceAllString(doc.Text(), " ")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n")
	return strings.TrimSpace(text), nil
}
