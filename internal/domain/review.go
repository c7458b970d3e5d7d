package domain

import "time"

type Review struct {
	PlaceID  string    `json:"place_id"`
	SourceID string    `json:"source_id"` // provider id or a stable hash of the content
	Rating   int       `json:"rating"`
	Text     string    `json:"text"`
	Lang     *string   `json:"lang,omitempty"`
	Author   *string   `json:"author,omitempty"`
	PostedAt time.Time `json:"posted_at"`
}
