package scoring

import "time"

type Review struct {
	Rating   int       `json:"rating"`
	Text     string    `json:"text"`
	PostedAt time.Time `json:"posted_at"`
}

// CrossReference is the second-source (Tabelog) data. Every field is optional.
type CrossReference struct {
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount *int     `json:"review_count,omitempty"`
	Name        *string  `json:"name,omitempty"`
}

type Input struct {
	PlaceName string
	Reviews   []Review
	CrossRef  *CrossReference
}

type Signals struct {
	TotalReviews   int      `json:"total_reviews"`
	Short5Ratio    float64  `json:"short_5_ratio"`
	Burst7DayRatio float64  `json:"burst_7day_ratio"`
	RatingDiff     *float64 `json:"rating_diff_google_minus_tabelog"`
	TabelogMissing bool     `json:"tabelog_missing"`
	NameSimilarity *float64 `json:"name_similarity_google_vs_tabelog"`
	LowStarRatio   float64  `json:"low_star_ratio"`
	FraudKeyword   float64  `json:"fraud_keyword_ratio"`
}

type KeywordHit struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

type RiskLabel string

const (
	RiskLow    RiskLabel = "low"
	RiskMedium RiskLabel = "medium"
	RiskHigh   RiskLabel = "high"
)

type FindingCode string

const (
	FindingShortFive       FindingCode = "short_five"
	FindingBurst           FindingCode = "burst"
	FindingRatingGap       FindingCode = "rating_gap"
	FindingNameMismatch    FindingCode = "name_mismatch"
	FindingReferenceAbsent FindingCode = "reference_missing"
	FindingNoLowRatings    FindingCode = "no_low_ratings"
	FindingFraudKeywords   FindingCode = "fraud_keywords"
	FindingLowStars        FindingCode = "low_star_concentration"
)

// Finding is a triggered explanation condition with the value shown to the reader.
type Finding struct {
	Code  FindingCode `json:"code"`
	Value float64     `json:"value"`
}

type Result struct {
	SakuraScore   int          `json:"sakura_score"`
	FraudScore    int          `json:"fraud_score"`
	RiskLabel     RiskLabel    `json:"risk_label"`
	Signals       Signals      `json:"signals"`
	FraudKeywords []KeywordHit `json:"fraud_keywords"`
	Comments      []string     `json:"comments_ja"`
	Findings      []Finding    `json:"findings"`
}
