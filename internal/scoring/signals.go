package scoring

import (
	"math"
	"sort"
	"time"
	"unicode/utf8"
)

const burstWindow = 7 * 24 * time.Hour

// extract computes every signal except the keyword ratio, which the matcher fills in.
func (e *Engine) extract(in Input) Signals {
	total := len(in.Reviews)
	s := Signals{
		TotalReviews:   total,
		TabelogMissing: in.CrossRef == nil || in.CrossRef.Rating == nil,
	}

	if total > 0 {
		var short5, low, sum int
		for _, r := range in.Reviews {
			sum += r.Rating
			if r.Rating == 5 && utf8.RuneCountInString(normalizeText(r.Text)) <= e.cfg.ShortTextMaxRunes {
				short5++
			}
			if r.Rating <= 2 {
				low++
			}
		}
		s.Short5Ratio = float64(short5) / float64(total)
		s.LowStarRatio = float64(low) / float64(total)
		s.Burst7DayRatio = e.burstRatio(in.Reviews)

		if !s.TabelogMissing {
			mean := float64(sum) / float64(total)
			d := round2(mean - *in.CrossRef.Rating)
			s.RatingDiff = &d
		}
	}

	if in.CrossRef != nil && in.CrossRef.Name != nil {
		a := normalizeName(in.PlaceName, e.suffixes)
		b := normalizeName(*in.CrossRef.Name, e.suffixes)
		if a != "" && b != "" {
			sim := round2(clamp(e.similarity(a, b), 0, 1))
			s.NameSimilarity = &sim
		}
	}
	return s
}

// burstRatio is the largest share of reviews posted inside one half-open
// window [t, t+7d) anchored at a review timestamp.
func (e *Engine) burstRatio(reviews []Review) float64 {
	total := len(reviews)
	if total == 0 || total < e.cfg.MinBurstReviews {
		return 0
	}
	ts := make([]time.Time, total)
	for i, r := range reviews {
		ts[i] = r.PostedAt.UTC()
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })

	best, j := 0, 0
	for i := range ts {
		end := ts[i].Add(burstWindow)
		if j < i {
			j = i
		}
		for j < total && ts[j].Before(end) {
			j++
		}
		if n := j - i; n > best {
			best = n
		}
	}
	return float64(best) / float64(total)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
