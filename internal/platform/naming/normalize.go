// Package naming canonicalizes free-text names for comparison. The output is
// a comparison key and is never written back to a row.
package naming

import (
	"strings"
	"unicode"
)

// brandingTokens are dropped as whole-word sequences. Multi-word entries
// must match consecutively.
var brandingTokens = [][]string{
	{"dhl"},
	{"vodacom"},
	{"emirates"},
	{"cell", "c"},
	{"hollywoodbets"},
	{"toyota"},
	{"airlink"},
	{"fidelity", "securedrive"},
	{"the"},
}

// Normalize lower-cases name, drops branding tokens and the definite
// article as whole words, strips every rune that is not a letter, digit or
// whitespace, then collapses whitespace. Punctuation separates words for the
// branding pass ("Vodacom-Bulls" is "bulls") but otherwise joins them
// ("Bordeaux-Bègles" is "bordeauxbègles"). Normalize(Normalize(s)) == Normalize(s).
func Normalize(name string) string {
	out := normalizeOnce(name)
	for {
		next := normalizeOnce(out)
		if next == out {
			return out
		}
		out = next
	}
}

// word is one run of letters and digits. glued is set when only
// punctuation separated it from the previous word.
type word struct {
	text  string
	glued bool
}

func normalizeOnce(name string) string {
	if name == "" {
		return ""
	}

	words := splitWords(strings.ToLower(name))
	for {
		next := dropBranding(words)
		if len(next) == len(words) {
			break
		}
		words = next
	}

	var b strings.Builder
	b.Grow(len(name))
	for i, w := range words {
		if i > 0 && !w.glued {
			b.WriteByte(' ')
		}
		b.WriteString(w.text)
	}
	return b.String()
}

func splitWords(s string) []word {
	var (
		words []word
		cur   strings.Builder
		glue  bool
	)
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		words = append(words, word{text: cur.String(), glued: glue && len(words) > 0})
		cur.Reset()
	}
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			cur.WriteRune(r)
		case unicode.IsSpace(r):
			flush()
			glue = false
		default:
			if cur.Len() > 0 {
				flush()
				glue = true
			}
		}
	}
	flush()
	return words
}

// dropBranding removes branding sequences. A word after a removed sequence
// stays glued only when both sides of the removed run were punctuation.
func dropBranding(words []word) []word {
	out := make([]word, 0, len(words))
	for i := 0; i < len(words); {
		if n := brandingAt(words, i); n > 0 {
			if next := i + n; next < len(words) {
				words[next].glued = words[next].glued && words[i].glued
			}
			i += n
			continue
		}
		out = append(out, words[i])
		i++
	}
	return out
}

func brandingAt(words []word, i int) int {
	for _, seq := range brandingTokens {
		if i+len(seq) > len(words) {
			continue
		}
		matched := true
		for j, token := range seq {
			if words[i+j].text != token {
				matched = false
				break
			}
		}
		if matched {
			return len(seq)
		}
	}
	return 0
}

// NormalizePosition keeps punctuation because position lookups are keyed
// on forms like "scrum-half" and "hooker/prop".
func NormalizePosition(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Equal compares two names by their normalized keys.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
