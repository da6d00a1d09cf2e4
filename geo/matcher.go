package geo

import (
	"strings"
	"unicode"
	"unicode/utf8"

	radix "github.com/armon/go-radix"
)

// matcher is the degraded-accuracy fallback recognizer: a longest-match-
// first scanner over a radix tree of every gazetteer surface form. Matches
// must start and end on word boundaries so "новгород" never fires inside
// "новгородец".
type matcher struct {
	tree *radix.Tree
}

func newMatcher(g *Gazetteer) *matcher {
	tree := radix.New()
	for form, canonical := range g.forms {
		tree.Insert(form, canonical)
	}
	return &matcher{tree: tree}
}

// Locations scans text and returns the canonical names of all gazetteer
// forms found, longest match first at each word position.
func (m *matcher) Locations(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for i := 0; i < len(lower); {
		r, size := utf8.DecodeRuneInString(lower[i:])
		if !isWordRune(r) {
			i += size
			continue
		}
		// at a word start: pick the longest form that is a prefix of the
		// remaining text and ends on a word boundary
		matchLen, canonical := m.longestAt(lower, i)
		if matchLen > 0 {
			out = append(out, canonical)
			i += matchLen
			continue
		}
		i += wordLen(lower[i:])
	}
	return out
}

func (m *matcher) longestAt(text string, start int) (int, string) {
	var bestLen int
	var bestCanonical string
	// WalkPath visits keys shortest to longest, so the last boundary-valid
	// hit is the longest one
	m.tree.WalkPath(text[start:], func(key string, value interface{}) bool {
		end := start + len(key)
		if end < len(text) {
			r, _ := utf8.DecodeRuneInString(text[end:])
			if isWordRune(r) {
				return false
			}
		}
		bestLen = len(key)
		bestCanonical = value.(string)
		return false
	})
	return bestLen, bestCanonical
}

// wordLen returns the byte length of the word run at the start of s.
func wordLen(s string) int {
	n := 0
	for n < len(s) {
		r, size := utf8.DecodeRuneInString(s[n:])
		if !isWordRune(r) {
			break
		}
		n += size
	}
	return n
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-'
}
