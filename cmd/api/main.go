package main

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"github.com/Be114/insyoku-sakura/internal/adapters/google"
	server "github.com/Be114/insyoku-sakura/internal/adapters/http_server"
	"github.com/Be114/insyoku-sakura/internal/adapters/observability"
	redisad "github.com/Be114/insyoku-sakura/internal/adapters/redis"
	"github.com/Be114/insyoku-sakura/internal/app"
	"github.com/Be114/insyoku-sakura/internal/scoring"
	"github.com/Be114/insyoku-sakura/internal/shared"
	mysqlrepo "github.com/Be114/insyoku-sakura/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		// snapshots are best-effort; analysis still works against the provider
		log.Warn().Err(err).Msg("db.Ping failed")
	} else {
		log.Info().Msg("database connection ok")
	}

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Ping(context.Background()); err != nil {
		log.Warn().Err(err).Msg("redis ping failed")
	}

	client, err := google.New(cfg.GoogleDetailsURL, cfg.GooglePlacesBase, cfg.GoogleKey, cfg.GoogleRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Google Places client")
	}

	engineCfg := scoring.DefaultConfig()
	engineCfg.Language = cfg.CommentLang
	engine := scoring.New(engineCfg)

	svc := app.NewAnalysisService(client, mysqlrepo.New(db), cache, engine, app.AnalysisOptions{
		CacheTTL:       cfg.CacheTTL,
		SnapshotMaxAge: cfg.SnapshotMaxAge,
		MaxReviews:     cfg.MaxReviews,
		ParsePlaceID:   google.ParsePlaceID,
	})

	// http
	srv := server.New(cfg.RequestTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{A: svc})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		log.Fatal().Err(err).Msg("http listen failed")
	}
	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	if err := serve(ctx, httpSrv, ln, 10*time.Second); err != nil {
		log.Error().Err(err).Msg("http server stopped with error")
	}
	_ = cache.Close()
	_ = db.Close()
	log.Info().Msg("API stopped")
}
