package domain

import (
	"context"
	"time"
)

type PlaceRepository interface {
	// Write paths
	UpsertPlace(ctx context.Context, p Place) error
	ReplaceReviews(ctx context.Context, placeID string, rs []Review) error
	LogMiss(ctx context.Context, placeID string, status int, reason string) error

	// Read paths
	GetPlace(ctx context.Context, placeID string) (Place, error)
}

// PlacesClient fetches raw provider payloads.
type PlacesClient interface {
	GetDetails(ctx context.Context, placeID string) (map[string]any, error)
	GetReviews(ctx context.Context, placeID string, limit int) ([]map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// PlaceCacheKey is the cache key of a place snapshot.
func PlaceCacheKey(placeID string) string { return "place:" + placeID }
