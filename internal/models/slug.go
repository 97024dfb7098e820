package models

import "strings"

// GenerateSlug derives a URL-safe slug from a title. The result is stable for
// a given input: lower-cased, stripped of anything that is not a letter,
// digit, space or hyphen, with whitespace and hyphen runs collapsed to a
// single hyphen and leading/trailing hyphens trimmed.
func GenerateSlug(s string) string {
	s = strings.ToLower(s)

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '-':
			b.WriteByte('-')
		}
	}

	out := b.String()
	for strings.Contains(out, "--") {
		out = strings.ReplaceAll(out, "--", "-")
	}
	return strings.Trim(out, "-")
}
