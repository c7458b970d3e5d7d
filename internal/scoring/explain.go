package scoring

import (
	"fmt"
	"math"
)

const (
	LangJA = "ja"
	LangEN = "en"
)

// commentTemplates maps a finding to one format string per language.
// A single %s verb, when present, receives the finding's formatted value.
var commentTemplates = map[FindingCode]map[string]string{
	FindingShortFive: {
		LangJA: "短文または無言の★5口コミが全体の%sを占めています。",
		LangEN: "Short or empty 5-star reviews make up %s of all reviews.",
	},
	FindingBurst: {
		LangJA: "短期間に口コミが集中して投稿されており、不自然な増え方です（7日間に全体の%s）。",
		LangEN: "Reviews are concentrated in a short period (%s of all reviews within 7 days).",
	},
	FindingRatingGap: {
		LangJA: "Googleと食べログの評価差が大きく、Google側の評価が%s高めに出ています。",
		LangEN: "Google ratings are %s points higher than Tabelog.",
	},
	FindingNameMismatch: {
		LangJA: "Googleと食べログの店名の一致度が%sと低く、別の店舗の可能性があります。",
		LangEN: "The Google and Tabelog names only match %s; they may be different businesses.",
	},
	FindingReferenceAbsent: {
		LangJA: "食べログに情報がほとんどなく、Googleのみ口コミが集まっています。",
		LangEN: "There is little or no Tabelog data; reviews are concentrated on Google only.",
	},
	FindingNoLowRatings: {
		LangJA: "口コミ数が多いにもかかわらず、低評価（★1〜2）がほとんどありません（%s）。",
		LangEN: "Despite many reviews there are almost no 1-2 star ratings (%s).",
	},
	FindingFraudKeywords: {
		LangJA: "『詐欺』『ぼったくり』などのネガティブなキーワードを含む口コミが見つかりました（全体の%s）。",
		LangEN: "Reviews mentioning words such as \"scam\" or \"rip-off\" were found (%s of all reviews).",
	},
	FindingLowStars: {
		LangJA: "低評価（★1〜2）の口コミが全体の%sに集中しています。",
		LangEN: "Low ratings (1-2 stars) account for %s of all reviews.",
	},
}

// findings lists triggered conditions in fixed priority order: sakura first, then fraud.
func (e *Engine) findings(s Signals, hits []KeywordHit) []Finding {
	c := e.cfg
	out := make([]Finding, 0, 8)
	if s.Short5Ratio >= c.Comments.Short5 && s.Short5Ratio > 0 {
		out = append(out, Finding{Code: FindingShortFive, Value: s.Short5Ratio})
	}
	if s.Burst7DayRatio >= c.Comments.Burst && s.Burst7DayRatio > 0 {
		out = append(out, Finding{Code: FindingBurst, Value: s.Burst7DayRatio})
	}
	if s.RatingDiff != nil && *s.RatingDiff >= c.Comments.RatingGap && *s.RatingDiff > 0 {
		out = append(out, Finding{Code: FindingRatingGap, Value: *s.RatingDiff})
	}
	if s.NameSimilarity != nil && *s.NameSimilarity < c.Comments.NameSimilarity {
		out = append(out, Finding{Code: FindingNameMismatch, Value: *s.NameSimilarity})
	}
	if s.TabelogMissing {
		out = append(out, Finding{Code: FindingReferenceAbsent})
	}
	if noLowRatings(c, s) {
		out = append(out, Finding{Code: FindingNoLowRatings, Value: s.LowStarRatio})
	}
	if len(hits) > 0 {
		out = append(out, Finding{Code: FindingFraudKeywords, Value: s.FraudKeyword})
	}
	if lowStarConcentration(c, s) {
		out = append(out, Finding{Code: FindingLowStars, Value: s.LowStarRatio})
	}
	return out
}

// Explain renders findings as sentences in lang, falling back to Japanese.
func Explain(fs []Finding, lang string) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		byLang, ok := commentTemplates[f.Code]
		if !ok {
			continue
		}
		tmpl, ok := byLang[lang]
		if !ok {
			tmpl = byLang[LangJA]
		}
		out = append(out, render(tmpl, f))
	}
	return out
}

func render(tmpl string, f Finding) string {
	switch f.Code {
	case FindingReferenceAbsent:
		return tmpl
	case FindingRatingGap:
		return fmt.Sprintf(tmpl, fmt.Sprintf("%.2f", f.Value))
	default:
		return fmt.Sprintf(tmpl, percent(f.Value))
	}
}

func percent(ratio float64) string {
	// the epsilon absorbs binary error such as 0.29*100 = 28.999...
	return fmt.Sprintf("%d%%", int(math.Floor(ratio*100+1e-6)))
}
