package scoring

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Similarity scores two already-normalized names in [0,1].
// Implementations must be symmetric, return 1 for equal inputs and 0 for
// strings sharing no characters.
type Similarity func(a, b string) float64

// NormalizedLevenshtein is 1 - editDistance/maxRuneLen.
func NormalizedLevenshtein(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	d := levenshtein.ComputeDistance(a, b)
	return clamp(1-float64(d)/float64(longest), 0, 1)
}

// BigramJaccard is the Jaccard index of the rune-bigram sets of a and b.
// Single-rune strings contribute the rune itself.
func BigramJaccard(a, b string) float64 {
	if a == b {
		return 1
	}
	sa, sb := bigrams(a), bigrams(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}
	inter := 0
	for g := range sa {
		if _, ok := sb[g]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	return float64(inter) / float64(union)
}

func bigrams(s string) map[string]struct{} {
	rs := []rune(s)
	out := make(map[string]struct{}, len(rs))
	if len(rs) == 1 {
		out[s] = struct{}{}
		return out
	}
	for i := 0; i+1 < len(rs); i++ {
		out[string(rs[i:i+2])] = struct{}{}
	}
	return out
}
