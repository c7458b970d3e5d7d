package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Be114/insyoku-sakura/internal/domain"
)

type IngestionService struct {
	client     domain.PlacesClient
	repo       domain.PlaceRepository
	cache      domain.Cache
	maxReviews int
	now        func() time.Time
}

func NewIngestionService(c domain.PlacesClient, r domain.PlaceRepository, cache domain.Cache, maxReviews int) *IngestionService {
	if maxReviews <= 0 {
		maxReviews = 100
	}
	return &IngestionService{client: c, repo: r, cache: cache, maxReviews: maxReviews, now: time.Now}
}

// IngestPlace fetches one place and stores its snapshot. Known misses
// (not found, unauthorized, forbidden) are recorded and are not errors.
func (s *IngestionService) IngestPlace(ctx context.Context, placeID string) error {
	details, err := s.client.GetDetails(ctx, placeID)
	if err != nil {
		if s.recordMiss(ctx, placeID, err, "details") {
			return nil
		}
		return err
	}

	listed, err := s.client.GetReviews(ctx, placeID, s.maxReviews)
	if err != nil {
		if !s.recordMiss(ctx, placeID, err, "reviews") {
			return err
		}
		// details reviews still give a usable snapshot
		listed = nil
	}

	p, dropped := mapPlace(placeID, details, listed, s.now())
	if dropped > 0 {
		log.Debug().Str("place_id", placeID).Int("dropped", dropped).Msg("reviews without rating or timestamp skipped")
	}

	// Parent upsert first to satisfy FK for reviews.
	if err := s.repo.UpsertPlace(ctx, p); err != nil {
		return fmt.Errorf("upsert place %s: %w", placeID, err)
	}
	if err := s.repo.ReplaceReviews(ctx, placeID, p.Reviews); err != nil {
		// do not swallow this; surface so we know inserts failed
		return fmt.Errorf("replace reviews for %s: %w", placeID, err)
	}
	s.invalidate(ctx, placeID)
	return nil
}

// recordMiss logs a known provider miss and evicts the cached snapshot so
// a stale one is not served. It reports whether err was such a miss.
func (s *IngestionService) recordMiss(ctx context.Context, placeID string, err error, what string) bool {
	var status int
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = 404
	case errors.Is(err, domain.ErrAccessDenied):
		status = 403
	default:
		return false
	}
	if lerr := s.repo.LogMiss(ctx, placeID, status, what+": "+err.Error()); lerr != nil {
		log.Warn().Err(lerr).Str("place_id", placeID).Msg("log miss failed")
	}
	s.invalidate(ctx, placeID)
	return true
}

func (s *IngestionService) invalidate(ctx context.Context, placeID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, domain.PlaceCacheKey(placeID)); err != nil {
		log.Warn().Err(err).Str("place_id", placeID).Msg("cache invalidation failed")
	}
}
