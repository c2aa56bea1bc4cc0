package anchor

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Slugify converts header text into the fragment identifier a GitHub-style
// renderer assigns to it:
//  1. lowercase every character
//  2. drop everything except a-z, 0-9, underscore, dash and space
//  3. replace each remaining space with a dash
//
// Runs of spaces become runs of dashes; nothing is collapsed or trimmed.
// Non-latin letters are removed, not transliterated.
func Slugify(text string) string {
	lower := cases.Lower(language.Und).String(text)

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	return b.String()
}
