package scoring

// Ramp maps a signal onto [0, Max]: zero at or below Start, Max at or above Full,
// linear in between.
type Ramp struct {
	Start float64
	Full  float64
	Max   float64
}

func (r Ramp) Apply(x float64) float64 {
	if r.Full <= r.Start {
		if x >= r.Full {
			return r.Max
		}
		return 0
	}
	return r.Max * clamp((x-r.Start)/(r.Full-r.Start), 0, 1)
}

// VolumeRule is a flat bonus that applies once the review set is large enough.
type VolumeRule struct {
	MinReviews int
	Ratio      float64
	Points     float64
}

// Config holds every lexicon entry, threshold and weight the engine uses.
type Config struct {
	Keywords         []string
	BusinessSuffixes []string

	ShortTextMaxRunes int
	// MinBurstReviews zeroes the burst ratio below this many reviews.
	// Zero disables the gate.
	MinBurstReviews   int

	Short5     Ramp
	Burst      Ramp
	RatingGap  Ramp
	NameGap    Ramp
	MissingRef float64
	// NoLowRatings applies when total >= MinReviews and low_star_ratio < Ratio.
	NoLowRatings VolumeRule

	KeywordRatio Ramp
	// LowStars applies when total >= MinReviews and low_star_ratio >= Ratio.
	LowStars VolumeRule

	Comments CommentThresholds
	Language string
}

// CommentThresholds decide when a signal is worth a sentence.
type CommentThresholds struct {
	Short5         float64
	Burst          float64
	RatingGap      float64
	NameSimilarity float64
}

func DefaultConfig() Config {
	return Config{
		Keywords: []string{
			"詐欺",
			"ぼったくり",
			"騙された",
			"騙し",
			"不正請求",
			"法外",
			"高すぎる",
			"scam",
			"rip-off",
			"rip off",
			"fraud",
		},
		BusinessSuffixes: []string{"株式会社", "（株）", "(株)", "有限会社", "合同会社", "co.,ltd", "co., ltd", "inc", "llc"},

		ShortTextMaxRunes: 15,
		MinBurstReviews:   0,

		Short5:       Ramp{Start: 0, Full: 0.40, Max: 40},
		Burst:        Ramp{Start: 0, Full: 0.25, Max: 25},
		RatingGap:    Ramp{Start: 0, Full: 4.0 / 3.0, Max: 20},
		NameGap:      Ramp{Start: 0, Full: 0.75, Max: 15},
		MissingRef:   5,
		NoLowRatings: VolumeRule{MinReviews: 20, Ratio: 0.10, Points: 10},

		KeywordRatio: Ramp{Start: 0, Full: 0.45, Max: 90},
		LowStars:     VolumeRule{MinReviews: 10, Ratio: 0.30, Points: 10},

		Comments: CommentThresholds{
			Short5:         0.40,
			Burst:          0.40,
			RatingGap:      0.5,
			NameSimilarity: 0.5,
		},
		Language: LangJA,
	}
}
