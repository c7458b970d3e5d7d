package main

import (
	"context"
	"database/sql"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/Be114/insyoku-sakura/internal/adapters/google"
	"github.com/Be114/insyoku-sakura/internal/adapters/observability"
	redisad "github.com/Be114/insyoku-sakura/internal/adapters/redis"
	"github.com/Be114/insyoku-sakura/internal/app"
	"github.com/Be114/insyoku-sakura/internal/shared"
	mysqlrepo "github.com/Be114/insyoku-sakura/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Int("places", len(cfg.PlaceIDs)).
		Int("workers", cfg.Workers).
		Int("max_reviews", cfg.MaxReviews).
		Msg("ingestor starting")
	if len(cfg.PlaceIDs) == 0 {
		log.Warn().Msg("INGEST_PLACE_IDS is empty; nothing to do")
		return
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	client, err := google.New(cfg.GoogleDetailsURL, cfg.GooglePlacesBase, cfg.GoogleKey, cfg.GoogleRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Google Places client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()

	ing := app.NewIngestionService(client, mysqlrepo.New(db), cache, cfg.MaxReviews)
	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var (
		wg     sync.WaitGroup
		failed atomic.Int64
	)

	for _, id := range cfg.PlaceIDs {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("ingestion interrupted")
			break
		}

		wg.Add(1)
		go func(placeID string) {
			defer wg.Done()
			defer sem.Release(1)

			if err := ing.IngestPlace(ctx, placeID); err != nil {
				failed.Add(1)
				log.Warn().Str("place_id", placeID).Err(err).Msg("ingest failed")
				return
			}
			log.Info().Str("place_id", placeID).Msg("ingest ok")
		}(id)
	}

	wg.Wait()
	log.Info().Int64("failed", failed.Load()).Msg("ingestion completed")
}
