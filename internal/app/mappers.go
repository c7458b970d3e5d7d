package app

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Be114/insyoku-sakura/internal/domain"
	"github.com/Be114/insyoku-sakura/internal/scoring"
)

/********** alias registries (single source of truth) **********/

// reviewAliases covers both the v1 reviews listing and the legacy details
// payload. Earlier paths win.
var reviewAliases = map[string][]string{
	"text":      {"originalText.text", "text.text", "text"},
	"lang":      {"originalText.languageCode", "text.languageCode", "original_language", "language"},
	"author":    {"authorAttribution.displayName", "author_name"},
	"source_id": {"name", "review_id"},
	"rating":    {"rating"},
	"published": {"publishTime"},
	"unix_time": {"time"},
}

var placeAliases = map[string][]string{
	"name":          {"name", "displayName.text"},
	"rating":        {"rating"},
	"ratings_total": {"user_ratings_total", "userRatingCount"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) *string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return &s
		}
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// getFloatFlexible: number from several paths (float64/int/json.Number/string).
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case int64:
			f := float64(v)
			return &f
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return &f
			}
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func getIntFlexible(m map[string]any, paths ...string) *int {
	if f := getFloatFlexible(m, paths...); f != nil {
		n := int(*f)
		return &n
	}
	return nil
}

// reviewTime reads an RFC 3339 publishTime or a unix-seconds time field.
func reviewTime(r map[string]any) (time.Time, bool) {
	for _, p := range reviewAliases["published"] {
		if s := strings.TrimSpace(lookupStr(r, p)); s != "" {
			if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
				return t.UTC(), true
			}
		}
	}
	if f := getFloatFlexible(r, reviewAliases["unix_time"]...); f != nil && *f > 0 {
		return time.Unix(int64(*f), 0).UTC(), true
	}
	return time.Time{}, false
}

/********** reviews mapper **********/

// mapReviews converts provider review objects into domain reviews. Entries
// without a usable star rating or timestamp are skipped and counted.
func mapReviews(placeID string, in []map[string]any) ([]domain.Review, int) {
	out := make([]domain.Review, 0, len(in))
	dropped := 0
	for _, r := range in {
		f := getFloatFlexible(r, reviewAliases["rating"]...)
		if f == nil {
			dropped++
			continue
		}
		rating := int(math.Round(*f))
		if rating < 1 || rating > 5 {
			dropped++
			continue
		}
		postedAt, ok := reviewTime(r)
		if !ok {
			dropped++
			continue
		}

		rv := domain.Review{
			PlaceID:  placeID,
			Rating:   rating,
			Text:     deref(firstNonEmptyAlias(r, reviewAliases, "text")),
			Lang:     firstNonEmptyAlias(r, reviewAliases, "lang"),
			Author:   firstNonEmptyAlias(r, reviewAliases, "author"),
			PostedAt: postedAt,
		}

		// SourceID → prefer explicit; else synthesize stable hash.
		if s := firstNonEmptyAlias(r, reviewAliases, "source_id"); s != nil {
			rv.SourceID = *s
		} else {
			sig := strings.Join([]string{
				deref(rv.Author),
				rv.Text,
				strconv.Itoa(rv.Rating),
				strconv.FormatInt(rv.PostedAt.Unix(), 10),
			}, "|")
			sum := sha1.Sum([]byte(sig))
			rv.SourceID = hex.EncodeToString(sum[:])
		}
		out = append(out, rv)
	}
	return out, dropped
}

/********** place mapper **********/

// mapPlace builds a snapshot from the details payload and the review listing.
// When the listing is empty the reviews embedded in details are used.
func mapPlace(placeID string, details map[string]any, listed []map[string]any, fetchedAt time.Time) (domain.Place, int) {
	raw, err := json.Marshal(details)
	if err != nil {
		log.Error().Err(err).
			Str("context", "mapPlace").
			Msg("failed to marshal details to JSON")
		raw = nil
	}

	src := listed
	if len(src) == 0 {
		src = detailReviews(details)
	}
	reviews, dropped := mapReviews(placeID, src)

	return domain.Place{
		PlaceID:      placeID,
		Name:         strings.TrimSpace(deref(firstNonEmptyAlias(details, placeAliases, "name"))),
		Rating:       getFloatFlexible(details, placeAliases["rating"]...),
		RatingsTotal: getIntFlexible(details, placeAliases["ratings_total"]...),
		Reviews:      reviews,
		FetchedAt:    fetchedAt.UTC(),
		RawJSON:      raw,
	}, dropped
}

func detailReviews(details map[string]any) []map[string]any {
	raw, ok := lookupAny(details, "reviews").([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, it := range raw {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

/********** engine input **********/

func toEngineInput(p domain.Place, xref *scoring.CrossReference) scoring.Input {
	rs := make([]scoring.Review, 0, len(p.Reviews))
	for _, r := range p.Reviews {
		rs = append(rs, scoring.Review{Rating: r.Rating, Text: r.Text, PostedAt: r.PostedAt})
	}
	return scoring.Input{PlaceName: p.Name, Reviews: rs, CrossRef: xref}
}
