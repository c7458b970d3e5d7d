package app

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapReviews_V1Payload(t *testing.T) {
	in := []map[string]any{
		{
			"name":              "places/p/reviews/abc",
			"rating":            float64(5),
			"text":              map[string]any{"text": "translated", "languageCode": "en"},
			"originalText":      map[string]any{"text": "最高でした", "languageCode": "ja"},
			"publishTime":       "2025-03-01T10:00:00.123456Z",
			"authorAttribution": map[string]any{"displayName": "Aiko"},
		},
		{
			"rating":      json.Number("4"),
			"text":        map[string]any{"text": "good"},
			"publishTime": "2025-03-02T19:00:00+09:00",
		},
	}
	out, dropped := mapReviews("p", in)
	require.Len(t, out, 2)
	assert.Zero(t, dropped)

	assert.Equal(t, "places/p/reviews/abc", out[0].SourceID)
	assert.Equal(t, "最高でした", out[0].Text)
	require.NotNil(t, out[0].Lang)
	assert.Equal(t, "ja", *out[0].Lang)
	require.NotNil(t, out[0].Author)
	assert.Equal(t, "Aiko", *out[0].Author)
	assert.Equal(t, time.UTC, out[0].PostedAt.Location())

	assert.Equal(t, 4, out[1].Rating)
	assert.Equal(t, "good", out[1].Text)
	assert.True(t, out[1].PostedAt.Equal(time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)))
	assert.Len(t, out[1].SourceID, 40, "sha1 hex fallback")
}

func TestMapReviews_DetailsPayload(t *testing.T) {
	in := []map[string]any{
		{"rating": float64(3), "text": "普通", "time": float64(1735689600), "author_name": "K", "language": "ja"},
	}
	out, dropped := mapReviews("p", in)
	require.Len(t, out, 1)
	assert.Zero(t, dropped)
	assert.Equal(t, "普通", out[0].Text)
	assert.True(t, out[0].PostedAt.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, out[0].Author)
	assert.Equal(t, "K", *out[0].Author)
}

func TestMapReviews_DropsUnusableEntries(t *testing.T) {
	in := []map[string]any{
		{"text": "no rating", "time": float64(1735689600)},
		{"rating": float64(0), "time": float64(1735689600)},
		{"rating": float64(5), "text": "no time"},
		{"rating": float64(5), "publishTime": "yesterday"},
		{"rating": float64(5), "time": float64(1735689600)},
	}
	out, dropped := mapReviews("p", in)
	assert.Len(t, out, 1)
	assert.Equal(t, 4, dropped)
	assert.Equal(t, "", out[0].Text)
}

func TestMapReviews_SynthesizedIDIsStable(t *testing.T) {
	r := map[string]any{"rating": float64(5), "text": "x", "time": float64(1735689600)}
	a, _ := mapReviews("p", []map[string]any{r})
	b, _ := mapReviews("p", []map[string]any{r})
	assert.Equal(t, a[0].SourceID, b[0].SourceID)
}

func TestMapPlace(t *testing.T) {
	fetched := time.Date(2025, 4, 1, 12, 0, 0, 0, time.FixedZone("JST", 9*3600))
	details := map[string]any{
		"name":               "  鮨まつ ",
		"rating":             4.3,
		"user_ratings_total": float64(87),
		"reviews": []any{
			map[string]any{"rating": float64(5), "text": "旨い", "time": float64(1735689600)},
		},
	}

	p, dropped := mapPlace("p", details, nil, fetched)
	assert.Zero(t, dropped)
	assert.Equal(t, "鮨まつ", p.Name)
	require.NotNil(t, p.Rating)
	assert.Equal(t, 4.3, *p.Rating)
	require.NotNil(t, p.RatingsTotal)
	assert.Equal(t, 87, *p.RatingsTotal)
	require.Len(t, p.Reviews, 1, "details reviews used when listing is empty")
	assert.Equal(t, time.UTC, p.FetchedAt.Location())
	assert.JSONEq(t, `{"name":"  鮨まつ ","rating":4.3,"user_ratings_total":87,"reviews":[{"rating":5,"text":"旨い","time":1735689600}]}`, string(p.RawJSON))

	listed := []map[string]any{
		{"rating": float64(1), "publishTime": "2025-03-01T00:00:00Z"},
		{"rating": float64(2), "publishTime": "2025-03-02T00:00:00Z"},
	}
	p, _ = mapPlace("p", details, listed, fetched)
	assert.Len(t, p.Reviews, 2, "listing wins over details reviews")
}

func TestToEngineInput(t *testing.T) {
	p, _ := mapPlace("p", map[string]any{"name": "n"}, []map[string]any{
		{"rating": float64(5), "text": map[string]any{"text": "a"}, "publishTime": "2025-03-01T00:00:00Z"},
	}, time.Now())

	in := toEngineInput(p, nil)
	assert.Equal(t, "n", in.PlaceName)
	require.Len(t, in.Reviews, 1)
	assert.Equal(t, 5, in.Reviews[0].Rating)
	assert.Equal(t, "a", in.Reviews[0].Text)
	assert.Nil(t, in.CrossRef)
}
