package knowledge

import "strings"

// NormalizeTerm lowercases a clinical term, replaces underscores with spaces,
// and trims surrounding whitespace.
func NormalizeTerm(term string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ToLower(term), "_", " "))
}

// TermsMatch reports whether two clinical terms refer to the same thing:
// after normalization either term must contain the other. Empty terms never
// match anything.
func TermsMatch(a, b string) bool {
	na, nb := NormalizeTerm(a), NormalizeTerm(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// ContainsTerm reports whether any term in the list matches the needle under
// TermsMatch rules.
func ContainsTerm(terms []string, needle string) bool {
	for _, t := range terms {
		if TermsMatch(t, needle) {
			return true
		}
	}
	return false
}
