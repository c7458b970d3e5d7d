package scoring

import "strings"

type lexEntry struct {
	keyword string // as configured, reported back in KeywordHit
	needle  string // normalized, lower-cased form used for matching
}

func buildLexicon(keywords []string) []lexEntry {
	out := make([]lexEntry, 0, len(keywords))
	for _, k := range keywords {
		n := strings.ToLower(normalizeText(k))
		if n == "" {
			continue
		}
		out = append(out, lexEntry{keyword: k, needle: n})
	}
	return out
}

// matchKeywords counts, per lexicon entry, the reviews whose text contains it
// and returns the share of reviews with at least one hit.
func (e *Engine) matchKeywords(reviews []Review) ([]KeywordHit, float64) {
	hits := make([]KeywordHit, 0, len(e.lexicon))
	if len(reviews) == 0 {
		return hits, 0
	}
	counts := make([]int, len(e.lexicon))
	matched := 0
	for _, r := range reviews {
		text := strings.ToLower(normalizeText(r.Text))
		if text == "" {
			continue
		}
		hit := false
		for i, lx := range e.lexicon {
			if strings.Contains(text, lx.needle) {
				counts[i]++
				hit = true
			}
		}
		if hit {
			matched++
		}
	}
	for i, n := range counts {
		if n > 0 {
			hits = append(hits, KeywordHit{Keyword: e.lexicon[i].keyword, Count: n})
		}
	}
	return hits, float64(matched) / float64(len(reviews))
}
