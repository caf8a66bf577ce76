// Package textnorm folds free-form Portuguese text into the canonical form the
// profile classifier matches against.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MinTokenLen is the shortest token Clean keeps. Shorter tokens carry no
// signal for profiling ("eu", "se", "ou").
const MinTokenLen = 3

// Stopwords are dropped by both Normalize and Clean.
var Stopwords = map[string]bool{
	"de": true, "para": true, "com": true, "em": true,
	"o": true, "a": true, "os": true, "as": true,
	"um": true, "uma": true, "e": true,
	"da": true, "do": true, "das": true, "dos": true,
	"na": true, "no": true, "nas": true, "nos": true,
}

// Normalize lowercases text, strips diacritics and removes stopwords.
// Punctuation is preserved.
func Normalize(text string) string {
	folded := fold(text)
	words := strings.Fields(folded)
	kept := words[:0]
	for _, w := range words {
		if !Stopwords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// Clean is the strict variant of Normalize: punctuation is stripped and
// tokens shorter than MinTokenLen are dropped as well. Clean is idempotent.
func Clean(text string) string {
	folded := fold(text)
	stripped := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_':
			return r
		case unicode.IsSpace(r):
			return ' '
		}
		return -1
	}, folded)

	words := strings.Fields(stripped)
	kept := words[:0]
	for _, w := range words {
		if Stopwords[w] || len([]rune(w)) < MinTokenLen {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// Tokens splits already-normalized text on whitespace.
func Tokens(text string) []string {
	return strings.Fields(text)
}

// fold lowercases and removes combining marks after NFD decomposition.
func fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(text))
	if err != nil {
		// Invalid UTF-8; keep the lowered input.
		return strings.ToLower(text)
	}
	return out
}
