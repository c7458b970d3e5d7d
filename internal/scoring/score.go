package scoring

import "math"

const (
	highThreshold   = 70
	mediumThreshold = 40
)

func (e *Engine) sakuraScore(s Signals) int {
	c := e.cfg
	v := c.Short5.Apply(s.Short5Ratio) + c.Burst.Apply(s.Burst7DayRatio)
	if s.RatingDiff != nil && *s.RatingDiff > 0 {
		v += c.RatingGap.Apply(*s.RatingDiff)
	}
	if s.TabelogMissing {
		v += c.MissingRef
	}
	if s.NameSimilarity != nil {
		v += c.NameGap.Apply(1 - *s.NameSimilarity)
	}
	if noLowRatings(c, s) {
		v += c.NoLowRatings.Points
	}
	return finalize(v)
}

func (e *Engine) fraudScore(s Signals) int {
	c := e.cfg
	v := c.KeywordRatio.Apply(s.FraudKeyword)
	if lowStarConcentration(c, s) {
		v += c.LowStars.Points
	}
	return finalize(v)
}

func noLowRatings(c Config, s Signals) bool {
	return s.TotalReviews >= c.NoLowRatings.MinReviews && s.LowStarRatio < c.NoLowRatings.Ratio
}

func lowStarConcentration(c Config, s Signals) bool {
	return s.TotalReviews >= c.LowStars.MinReviews && s.LowStarRatio >= c.LowStars.Ratio
}

// finalize clamps to [0,100] then rounds half away from zero.
func finalize(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(clamp(v, 0, 100)))
}

// Classify maps the two scores onto a risk label with fixed thresholds.
func Classify(sakura, fraud int) RiskLabel {
	switch {
	case sakura >= highThreshold || fraud >= highThreshold:
		return RiskHigh
	case sakura >= mediumThreshold || fraud >= mediumThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}
