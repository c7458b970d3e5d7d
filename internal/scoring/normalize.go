package scoring

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// normalizeText folds full-width forms (NFKC) and trims surrounding space.
func normalizeText(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

// normalizeName prepares a business name for similarity comparison:
// NFKC, lower case, legal-entity suffixes dropped, all whitespace removed.
func normalizeName(s string, suffixes []string) string {
	t := strings.ToLower(normalizeText(s))
	for _, suf := range suffixes {
		t = strings.ReplaceAll(t, suf, "")
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, t)
}

// clamp treats NaN as lo.
func clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) || x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
