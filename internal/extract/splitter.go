package extract

import (
	"regexp"
	"strings"
	"unicode"
)

// Abbreviations a period never terminates. Single-letter tokens ("J." in
// "J. Smith", the second dot of "e.g.") are handled separately.
var abbreviations = map[string]bool{
	"dr.":    true,
	"prof.":  true,
	"mr.":    true,
	"mrs.":   true,
	"ms.":    true,
	"st.":    true,
	"vs.":    true,
	"al.":    true,
	"fig.":   true,
	"figs.":  true,
	"eq.":    true,
	"eqs.":   true,
	"ref.":   true,
	"refs.":  true,
	"no.":    true,
	"etc.":   true,
	"ca.":    true,
	"cf.":    true,
	"approx.": true,
}

// A citation marker directly after sentence-ending punctuation, possibly
// separated by spaces: [12], [3-7].
var trailingCitation = regexp.MustCompile(`^\s*\[\d+(?:-\d+)?\]`)

// SplitSentences splits a paragraph on . ! ? with scientific-text rules:
// a period inside a decimal (3.14) or after an abbreviation token is not a
// boundary, a boundary requires following whitespace plus an uppercase
// letter (or end of paragraph), and a citation marker trailing the
// punctuation stays with the sentence it cites.
func SplitSentences(text string) []string {
	runes := []rune(text)
	n := len(runes)
	var sentences []string
	start := 0

	for i := 0; i < n; i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if r == '.' {
			if i > 0 && i+1 < n && isDigit(runes[i-1]) && isDigit(runes[i+1]) {
				continue
			}
			if endsWithAbbreviation(runes, start, i) {
				continue
			}
		}

		end := absorbCitations(runes, i+1)

		j := end
		for j < n && unicode.IsSpace(runes[j]) {
			j++
		}
		if j < n {
			if j == end {
				// Punctuation glued to the next rune is not a boundary.
				continue
			}
			if !unicode.IsUpper(runes[j]) {
				continue
			}
		}

		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			sentences = append(sentences, s)
		}
		start = j
		i = j - 1
	}

	if start < n {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// absorbCitations extends end past any [n] / [n-m] markers that follow the
// sentence-ending punctuation.
func absorbCitations(runes []rune, end int) int {
	for {
		loc := trailingCitation.FindStringIndex(string(runes[end:]))
		if loc == nil {
			return end
		}
		end += len([]rune(string(runes[end:])[:loc[1]]))
	}
}

// endsWithAbbreviation reports whether the word ending at the period at
// runes[dot] is an abbreviation.
func endsWithAbbreviation(runes []rune, start, dot int) bool {
	w := dot
	for w > start && unicode.IsLetter(runes[w-1]) {
		w--
	}
	if w == dot {
		return false
	}
	if dot-w == 1 {
		// Single-letter token: an initial or the tail of e.g. / i.e.
		return true
	}
	word := strings.ToLower(string(runes[w:dot])) + "."
	return abbreviations[word]
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
