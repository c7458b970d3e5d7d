package domain

import "time"

// Place is a snapshot of one business as fetched from the maps provider.
type Place struct {
	PlaceID      string    `json:"place_id"`
	Name         string    `json:"name"`
	Rating       *float64  `json:"rating,omitempty"`       // provider aggregate
	RatingsTotal *int      `json:"ratings_total,omitempty"` // provider aggregate
	Reviews      []Review  `json:"reviews"`
	FetchedAt    time.Time `json:"fetched_at"`
	RawJSON      []byte    `json:"-"` // full details payload
}
