package app_test

import (
	"context"
	"sync"
	"time"

	"github.com/Be114/insyoku-sakura/internal/domain"
)

// ---- fakes ----

type fakeClient struct {
	mu          sync.Mutex
	details     map[string]any
	reviews     []map[string]any
	detailsErr  error
	reviewsErr  error
	detailCalls int
	reviewCalls int
	lastLimit   int
}

func (f *fakeClient) GetDetails(ctx context.Context, placeID string) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls++
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	return f.details, nil
}

func (f *fakeClient) GetReviews(ctx context.Context, placeID string, limit int) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reviewCalls++
	f.lastLimit = limit
	if f.reviewsErr != nil {
		return nil, f.reviewsErr
	}
	return f.reviews, nil
}

type miss struct {
	placeID string
	status  int
}

type fakeRepo struct {
	mu        sync.Mutex
	places    map[string]domain.Place
	misses    []miss
	upsertErr error
	getErr    error
}

func (f *fakeRepo) UpsertPlace(ctx context.Context, p domain.Place) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if f.places == nil {
		f.places = map[string]domain.Place{}
	}
	cur := f.places[p.PlaceID]
	p.Reviews = cur.Reviews
	f.places[p.PlaceID] = p
	return nil
}

func (f *fakeRepo) ReplaceReviews(ctx context.Context, placeID string, rs []domain.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.places == nil {
		f.places = map[string]domain.Place{}
	}
	p := f.places[placeID]
	p.Reviews = append([]domain.Review(nil), rs...)
	f.places[placeID] = p
	return nil
}

func (f *fakeRepo) LogMiss(ctx context.Context, placeID string, status int, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.misses = append(f.misses, miss{placeID: placeID, status: status})
	return nil
}

func (f *fakeRepo) GetPlace(ctx context.Context, placeID string) (domain.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return domain.Place{}, f.getErr
	}
	p, ok := f.places[placeID]
	if !ok {
		return domain.Place{}, domain.ErrNotFound
	}
	return p, nil
}

type fakeCache struct {
	mu    sync.Mutex
	store map[string]domain.Place
	ttl   time.Duration
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	if d, ok := dst.(*domain.Place); ok {
		*d = v
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string]domain.Place{}
	}
	c.store[key] = v.(domain.Place)
	c.ttl = ttl
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

// ---- payload builders ----

func v1Review(name string, rating int, text string, at time.Time) map[string]any {
	return map[string]any{
		"name":         name,
		"rating":       float64(rating),
		"text":         map[string]any{"text": text, "languageCode": "ja"},
		"originalText": map[string]any{"text": text, "languageCode": "ja"},
		"publishTime":  at.UTC().Format(time.RFC3339),
	}
}

func detailsPayload(name string, rating float64, reviews ...map[string]any) map[string]any {
	rs := make([]any, 0, len(reviews))
	for _, r := range reviews {
		rs = append(rs, r)
	}
	return map[string]any{
		"place_id":           "p1",
		"name":               name,
		"rating":             rating,
		"user_ratings_total": float64(len(reviews)),
		"reviews":            rs,
	}
}

func ptr[T any](v T) *T { return &v }
