package taxonomy

import (
	"strings"
)

// MatchTerms returns vocabulary terms related to the words of text. A term
// matches when it contains a query word or a query word contains it. This is
// a loose heuristic: short words such as "it" match many unrelated terms.
func (t *Taxonomy) MatchTerms(text string) []string {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return nil
	}

	var out []string
	for _, term := range t.flattened {
		lt := strings.ToLower(term)
		for _, w := range words {
			if strings.Contains(lt, w) || strings.Contains(w, lt) {
				out = append(out, term)
				break
			}
		}
	}
	return out
}

// SuggestKeywords returns up to max taxonomy keywords that occur in text.
func (t *Taxonomy) SuggestKeywords(text string, max int) []string {
	lower := strings.ToLower(text)
	if lower == "" || max <= 0 {
		return nil
	}

	var out []string
	for _, term := range t.flattened {
		if strings.Contains(lower, strings.ToLower(term)) {
			out = append(out, term)
			if len(out) == max {
				break
			}
		}
	}
	return out
}

// ValidateKeywords splits terms into those in the vocabulary and the rest.
func (t *Taxonomy) ValidateKeywords(terms []string) (valid, invalid []string) {
	for _, term := range terms {
		if t.IsKeyword(term) {
			valid = append(valid, term)
		} else {
			invalid = append(invalid, term)
		}
	}
	return valid, invalid
}
