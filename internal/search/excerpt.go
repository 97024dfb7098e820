package search

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractExcerpt strips rich-text HTML down to plain text for indexing and
// list views, collapsing whitespace and truncating at a word boundary.
func ExtractExcerpt(html string, maxLen int) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	text := strings.Join(strings.Fields(doc.Text()), " ")
	if maxLen <= 0 || len(text) <= maxLen {
		return text
	}

	cut := text[:maxLen]
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
