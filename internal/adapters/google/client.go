// internal/adapters/google/client.go
package google

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Be114/insyoku-sakura/internal/adapters/observability"
	"github.com/Be114/insyoku-sakura/internal/domain"
)

const (
	DefaultDetailsURL = "https://maps.googleapis.com/maps/api/place/details/json"
	DefaultPlacesBase = "https://places.googleapis.com/v1"

	// MaxReviews is the hard cap on reviews collected per place.
	MaxReviews = 100
	pageSize   = 10
)

type Client struct {
	detailsURL string
	base       string
	hc         *http.Client
	key        string
	rl         *rate.Limiter
}

func New(detailsURL, base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("GOOGLE_MAPS_API_KEY is required")
	}
	if rps <= 0 {
		rps = 5
	}
	if detailsURL == "" {
		detailsURL = DefaultDetailsURL
	}
	if base == "" {
		base = DefaultPlacesBase
	}
	return &Client{
		detailsURL: detailsURL,
		base:       strings.TrimRight(base, "/"),
		hc:         &http.Client{Timeout: 10 * time.Second},
		key:        key,
		rl:         rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- Public API ----

type detailsEnvelope struct {
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message"`
	Result       map[string]any `json:"result"`
}

// GetDetails returns the "result" object of the legacy Place Details endpoint.
func (c *Client) GetDetails(ctx context.Context, placeID string) (map[string]any, error) {
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("key", c.key)
	q.Set("fields", "place_id,name,rating,user_ratings_total,reviews")
	q.Set("reviews_no_translations", "true")
	q.Set("reviews_sort", "newest")

	var env detailsEnvelope
	if err := c.get(ctx, "details", c.detailsURL+"?"+q.Encode(), nil, &env); err != nil {
		return nil, err
	}
	switch env.Status {
	case "OK":
		if env.Result == nil {
			return map[string]any{}, nil
		}
		return env.Result, nil
	case "NOT_FOUND", "ZERO_RESULTS":
		return nil, ErrNotFound
	case "REQUEST_DENIED":
		return nil, fmt.Errorf("%w: %s", ErrForbidden, env.ErrorMessage)
	default:
		msg := env.ErrorMessage
		if msg == "" {
			msg = env.Status
		}
		if msg == "" {
			msg = "UNKNOWN_ERROR"
		}
		return nil, fmt.Errorf("google places details error: %s", msg)
	}
}

type reviewsPage struct {
	Reviews       []map[string]any `json:"reviews"`
	NextPageToken string           `json:"nextPageToken"`
}

// GetReviews pages through the v1 reviews listing, newest first, until limit
// reviews are collected (capped at MaxReviews) or pages run out. A 404 ends
// the listing without error.
func (c *Client) GetReviews(ctx context.Context, placeID string, limit int) ([]map[string]any, error) {
	if limit > MaxReviews {
		limit = MaxReviews
	}
	if limit <= 0 {
		return []map[string]any{}, nil
	}
	out := make([]map[string]any, 0, limit)
	headers := http.Header{}
	headers.Set("X-Goog-Api-Key", c.key)
	headers.Set("X-Goog-FieldMask", "reviews.name,reviews.rating,reviews.text,reviews.originalText,reviews.publishTime,reviews.authorAttribution,nextPageToken")

	token := ""
	for len(out) < limit {
		q := url.Values{}
		q.Set("pageSize", strconv.Itoa(pageSize))
		q.Set("orderBy", "NEWEST")
		if token != "" {
			q.Set("pageToken", token)
		}
		u := fmt.Sprintf("%s/places/%s/reviews?%s", c.base, url.PathEscape(placeID), q.Encode())

		var page reviewsPage
		if err := c.get(ctx, "reviews", u, headers, &page); err != nil {
			if errors.Is(err, ErrNotFound) {
				break
			}
			return nil, err
		}
		for _, r := range page.Reviews {
			if r == nil {
				continue
			}
			out = append(out, r)
			if len(out) >= limit {
				break
			}
		}
		token = page.NextPageToken
		if token == "" || len(page.Reviews) == 0 {
			break
		}
	}
	return out, nil
}

// ---- Internals ----

// Provider errors wrap the domain sentinels so use cases can match on those.
var (
	ErrNotFound     = fmt.Errorf("google: %w", domain.ErrNotFound)
	ErrUnauthorized = fmt.Errorf("google: unauthorized: %w", domain.ErrAccessDenied)
	ErrForbidden    = fmt.Errorf("google: forbidden: %w", domain.ErrAccessDenied)
)

// get performs a GET with client-side rate limiting, retries, and JSON decode into out.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) get(ctx context.Context, endpoint, u string, headers http.Header, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		for k, vs := range headers {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "insyoku-sakura/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("google", endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("google", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("decode %s response: %w", endpoint, err)
			}
			return nil

		case http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff: 200ms, 400ms, 800ms... plus up to 50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
