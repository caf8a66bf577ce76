package content

import (
	"regexp"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	codeFence     = regexp.MustCompile("(?s)```.*?```")
	blankLine     = regexp.MustCompile(`\n\s*\n`)
	leadingMarker = regexp.MustCompile(`^(\d+\.\s*|[-*•]\s*)`)
	sentenceEnd   = regexp.MustCompile(`[.!?]\s+`)
)

// minSentencesToSplit is the shortest single paragraph that is split
// into three by sentences.
const minSentencesToSplit = 6

// FormatParagraphs coerces model output into exactly three paragraphs.
// Code fences and list markers are removed. A lone paragraph with enough
// sentences is split in thirds; anything else is padded with empty
// paragraphs or truncated.
func FormatParagraphs(text string) []string {
	text = codeFence.ReplaceAllString(text, "")

	var paras []string
	for _, p := range blankLine.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		paras = append(paras, strings.TrimSpace(leadingMarker.ReplaceAllString(p, "")))
	}

	if len(paras) == 1 {
		if s := splitSentences(paras[0]); len(s) >= minSentencesToSplit {
			third := len(s) / 3
			paras = []string{
				strings.Join(s[:third], " "),
				strings.Join(s[third:2*third], " "),
				strings.Join(s[2*third:], " "),
			}
		}
	}

	out := make([]string, 3)
	copy(out, paras)
	return out
}

// splitSentences cuts after each ., ! or ? that is followed by whitespace.
func splitSentences(p string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(p, -1) {
		out = append(out, strings.TrimSpace(p[start:loc[0]+1]))
		start = loc[1]
	}
	if rest := strings.TrimSpace(p[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

// joinParagraphs renders paragraphs as text, dropping empty padding.
func joinParagraphs(paras []string) string {
	kept := make([]string, 0, len(paras))
	for _, p := range paras {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}

var brl = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders v as Brazilian currency, e.g. "R$ 5.000,00".
func FormatBRL(v float64) string {
	return brl.Sprintf("R$ %.2f", v)
}

// FormatPercent renders v with a decimal comma, e.g. "14,90%".
func FormatPercent(v float64) string {
	return brl.Sprintf("%.2f%%", v)
}
