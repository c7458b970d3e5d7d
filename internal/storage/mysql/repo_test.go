package mysql_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Be114/insyoku-sakura/internal/domain"
	mysqlrepo "github.com/Be114/insyoku-sakura/internal/storage/mysql"
)

func newMock(t *testing.T) (*mysqlrepo.Repo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return mysqlrepo.New(db), mock
}

func TestRepo_UpsertPlace(t *testing.T) {
	repo, mock := newMock(t)
	rating := 4.5
	fetched := time.Date(2025, 3, 1, 9, 0, 0, 0, time.FixedZone("JST", 9*3600))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO places")).
		WithArgs("ChIJ1", "鮨まつ", 4.5, nil, `{"name":"鮨まつ"}`, fetched.UTC()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.UpsertPlace(context.Background(), domain.Place{
		PlaceID:   "ChIJ1",
		Name:      "鮨まつ",
		Rating:    &rating,
		FetchedAt: fetched,
		RawJSON:   []byte(`{"name":"鮨まつ"}`),
	})
	require.NoError(t, err)
}

func TestRepo_ReplaceReviews_Commits(t *testing.T) {
	repo, mock := newMock(t)
	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM place_reviews")).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO place_reviews")).
		WithArgs(
			"p1", "r1", 5, nil, nil, "おいしい", at,
			"p1", "r2", 1, nil, nil, "", at.Add(time.Hour),
		).
		WillReturnResult(sqlmock.NewResult(2, 2))
	mock.ExpectCommit()

	err := repo.ReplaceReviews(context.Background(), "p1", []domain.Review{
		{SourceID: "r1", Rating: 5, Text: "おいしい", PostedAt: at},
		{SourceID: "r2", Rating: 1, PostedAt: at.Add(time.Hour)},
	})
	require.NoError(t, err)
}

func TestRepo_ReplaceReviews_EmptyOnlyDeletes(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM place_reviews")).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceReviews(context.Background(), "p1", nil))
}

func TestRepo_ReplaceReviews_RollsBackOnInsertError(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM place_reviews")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO place_reviews")).
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := repo.ReplaceReviews(context.Background(), "p1", []domain.Review{
		{SourceID: "r1", Rating: 3, PostedAt: time.Now()},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert reviews")
}

func TestRepo_LogMiss(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO fetch_misses")).
		WithArgs("gone", 404, "not found").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.LogMiss(context.Background(), "gone", 404, "not found"))
}

func TestRepo_GetPlace(t *testing.T) {
	repo, mock := newMock(t)
	fetched := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	posted := time.Date(2025, 2, 20, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM places")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"place_id", "name", "rating", "ratings_total", "raw", "fetched_at"}).
			AddRow("p1", "焼肉きらびやか", 4.8, 120, []byte(`{}`), fetched))
	mock.ExpectQuery(regexp.QuoteMeta("FROM place_reviews")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"source_id", "rating", "lang", "author", "text", "posted_at"}).
			AddRow("r1", 5, "ja", nil, "最高", posted).
			AddRow("r2", 2, nil, "Ken", nil, posted.Add(-time.Hour)))

	p, err := repo.GetPlace(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "焼肉きらびやか", p.Name)
	require.NotNil(t, p.Rating)
	assert.Equal(t, 4.8, *p.Rating)
	require.NotNil(t, p.RatingsTotal)
	assert.Equal(t, 120, *p.RatingsTotal)
	assert.True(t, p.FetchedAt.Equal(fetched))

	require.Len(t, p.Reviews, 2)
	assert.Equal(t, "r1", p.Reviews[0].SourceID)
	require.NotNil(t, p.Reviews[0].Lang)
	assert.Equal(t, "ja", *p.Reviews[0].Lang)
	assert.Nil(t, p.Reviews[0].Author)
	assert.Equal(t, "", p.Reviews[1].Text)
	require.NotNil(t, p.Reviews[1].Author)
	assert.Equal(t, "Ken", *p.Reviews[1].Author)
}

func TestRepo_GetPlace_NotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM places")).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"place_id", "name", "rating", "ratings_total", "raw", "fetched_at"}))

	_, err := repo.GetPlace(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
