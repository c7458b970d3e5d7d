package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Be114/insyoku-sakura/internal/domain"
	"github.com/Be114/insyoku-sakura/internal/scoring"
)

// Snapshot sources reported on Analysis.Source.
const (
	SourceCache    = "cache"
	SourceProvider = "provider"
	SourceStore    = "store"
)

type AnalysisOptions struct {
	CacheTTL       time.Duration
	SnapshotMaxAge time.Duration // 0 disables serving stored snapshots
	MaxReviews     int
	ParsePlaceID   func(mapsURL string) string
	Now            func() time.Time
}

type AnalysisService struct {
	client domain.PlacesClient
	repo   domain.PlaceRepository
	cache  domain.Cache
	engine *scoring.Engine
	opts   AnalysisOptions
}

// Analysis is an engine result for a fetched place.
type Analysis struct {
	PlaceID   string
	PlaceName string
	Source    string
	FetchedAt time.Time
	Result    scoring.Result
}

func NewAnalysisService(c domain.PlacesClient, r domain.PlaceRepository, cache domain.Cache, e *scoring.Engine, o AnalysisOptions) *AnalysisService {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.MaxReviews <= 0 {
		o.MaxReviews = 100
	}
	return &AnalysisService{client: c, repo: r, cache: cache, engine: e, opts: o}
}

// AnalyzeURL resolves a Google Maps URL to a place and scores its reviews.
func (s *AnalysisService) AnalyzeURL(ctx context.Context, mapsURL string, xref *scoring.CrossReference) (Analysis, error) {
	placeID := ""
	if s.opts.ParsePlaceID != nil {
		placeID = s.opts.ParsePlaceID(mapsURL)
	}
	if placeID == "" {
		return Analysis{}, domain.ErrInvalidURL
	}
	return s.AnalyzePlace(ctx, placeID, xref)
}

func (s *AnalysisService) AnalyzePlace(ctx context.Context, placeID string, xref *scoring.CrossReference) (Analysis, error) {
	p, source, err := s.loadPlace(ctx, placeID)
	if err != nil {
		return Analysis{}, err
	}
	res, err := s.engine.Analyze(toEngineInput(p, xref))
	if err != nil {
		return Analysis{}, err
	}
	return Analysis{
		PlaceID:   p.PlaceID,
		PlaceName: p.Name,
		Source:    source,
		FetchedAt: p.FetchedAt,
		Result:    res,
	}, nil
}

// AnalyzeReviews scores caller-supplied reviews without touching the provider.
func (s *AnalysisService) AnalyzeReviews(ctx context.Context, in scoring.Input) (scoring.Result, error) {
	if err := ctx.Err(); err != nil {
		return scoring.Result{}, err
	}
	return s.engine.Analyze(in)
}

func (s *AnalysisService) loadPlace(ctx context.Context, placeID string) (domain.Place, string, error) {
	key := domain.PlaceCacheKey(placeID)
	if s.cache != nil {
		var p domain.Place
		ok, err := s.cache.Get(ctx, key, &p)
		if err != nil {
			log.Warn().Err(err).Str("place_id", placeID).Msg("cache get failed")
		} else if ok {
			return p, SourceCache, nil
		}
	}

	p, err := s.fetch(ctx, placeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || ctx.Err() != nil {
			return domain.Place{}, "", err
		}
		if stored, ok := s.storedSnapshot(ctx, placeID); ok {
			log.Warn().Err(err).
				Str("place_id", placeID).
				Time("fetched_at", stored.FetchedAt).
				Msg("provider failed; serving stored snapshot")
			return stored, SourceStore, nil
		}
		return domain.Place{}, "", fmt.Errorf("%w: %v", domain.ErrProviderFetch, err)
	}

	if s.repo != nil {
		if err := s.repo.UpsertPlace(ctx, p); err != nil {
			log.Warn().Err(err).Str("place_id", placeID).Msg("upsert place failed")
		} else if err := s.repo.ReplaceReviews(ctx, placeID, p.Reviews); err != nil {
			log.Warn().Err(err).Str("place_id", placeID).Msg("replace reviews failed")
		}
	}
	if s.cache != nil && s.opts.CacheTTL > 0 {
		if err := s.cache.Set(ctx, key, p, s.opts.CacheTTL); err != nil {
			log.Warn().Err(err).Str("place_id", placeID).Msg("cache set failed")
		}
	}
	return p, SourceProvider, nil
}

// fetch pulls details and the review listing. A failing listing falls back
// to the reviews embedded in details.
func (s *AnalysisService) fetch(ctx context.Context, placeID string) (domain.Place, error) {
	details, err := s.client.GetDetails(ctx, placeID)
	if err != nil {
		return domain.Place{}, err
	}
	listed, err := s.client.GetReviews(ctx, placeID, s.opts.MaxReviews)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Place{}, ctx.Err()
		}
		log.Warn().Err(err).Str("place_id", placeID).Msg("review listing failed; using details reviews")
		listed = nil
	}
	p, dropped := mapPlace(placeID, details, listed, s.opts.Now())
	if dropped > 0 {
		log.Debug().Str("place_id", placeID).Int("dropped", dropped).Msg("reviews without rating or timestamp skipped")
	}
	return p, nil
}

func (s *AnalysisService) storedSnapshot(ctx context.Context, placeID string) (domain.Place, bool) {
	if s.repo == nil || s.opts.SnapshotMaxAge <= 0 {
		return domain.Place{}, false
	}
	p, err := s.repo.GetPlace(ctx, placeID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Warn().Err(err).Str("place_id", placeID).Msg("load stored snapshot failed")
		}
		return domain.Place{}, false
	}
	if s.opts.Now().Sub(p.FetchedAt) > s.opts.SnapshotMaxAge {
		return domain.Place{}, false
	}
	return p, true
}
