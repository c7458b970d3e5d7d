package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	GoogleKey        string
	GoogleDetailsURL string
	GooglePlacesBase string
	GoogleRPS        int

	MaxReviews     int
	CacheTTL       time.Duration
	SnapshotMaxAge time.Duration
	RequestTimeout time.Duration
	CommentLang    string

	Workers  int
	PlaceIDs []string
}

// Load reads configuration from the environment. A .env file in the working
// directory, if present, fills variables that are not already set.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env could not be loaded")
	}

	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/sakura?parseTime=true&charset=utf8mb4&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),

		GoogleKey:        env("GOOGLE_MAPS_API_KEY", ""),
		GoogleDetailsURL: env("GOOGLE_DETAILS_URL", "https://maps.googleapis.com/maps/api/place/details/json"),
		GooglePlacesBase: env("GOOGLE_PLACES_BASE_URL", "https://places.googleapis.com/v1"),
		GoogleRPS:        atoi("GOOGLE_RPS", 5),

		MaxReviews:     atoi("MAX_REVIEWS", 100),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		SnapshotMaxAge: time.Duration(atoi("SNAPSHOT_MAX_AGE_SECONDS", 86400)) * time.Second,
		RequestTimeout: time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,
		CommentLang:    strings.ToLower(env("COMMENT_LANG", "ja")),

		Workers:  atoi("INGEST_WORKERS", 8),
		PlaceIDs: splitList(os.Getenv("INGEST_PLACE_IDS")),
	}
	if c.MaxReviews <= 0 || c.MaxReviews > 100 {
		log.Warn().Int("max_reviews", c.MaxReviews).Msg("MAX_REVIEWS out of range; using 100")
		c.MaxReviews = 100
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.GoogleKey == "" {
		log.Warn().Msg("GOOGLE_MAPS_API_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer; using default")
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
