package search

import (
	"strings"
	"testing"
)

func TestExtractExcerptStripsMarkup(t *testing.T) {
	html := `<h1>Market Report</h1><p>Prices in the   coastal&nbsp;region rose <b>sharply</b> this quarter.</p>`
	got := ExtractExcerpt(html, 0)

	if strings.Contains(got, "<") {
		t.Errorf("markup survived: %q", got)
	}
	if !strings.Contains(got, "Market Report") || !strings.Contains(got, "sharply this quarter.") {
		t.Errorf("text content lost: %q", got)
	}
	if strings.Contains(got, "  ") {
		t.Errorf("whitespace not collapsed: %q", got)
	}
}

func TestExtractExcerptTruncatesAtWordBoundary(t *testing.T) {
	html := "<p>one two three four five six</p>"
	got := ExtractExcerpt(html, 12)

	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncated excerpt should end with an ellipsis: %q", got)
	}
	if strings.Contains(got, "thr…") || strings.Contains(got, "fou…") {
		t.Errorf("truncation split a word: %q", got)
	}
}

func TestExtractExcerptShortTextUntouched(t *testing.T) {
	if got := ExtractExcerpt("<p>short</p>", 100); got != "short" {
		t.Errorf("ExtractExcerpt = %q", got)
	}
}
