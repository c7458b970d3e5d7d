package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Be114/insyoku-sakura/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertPlace(ctx context.Context, p domain.Place) error {
	_, err := r.db.ExecContext(ctx, upsertPlaceSQL,
		p.PlaceID,
		p.Name,
		valF64(p.Rating),
		valInt(p.RatingsTotal),
		valJSON(p.RawJSON),
		p.FetchedAt.UTC(),
	)
	return err
}

// ReplaceReviews swaps the stored review set of a place in one transaction.
func (r *Repo) ReplaceReviews(ctx context.Context, placeID string, rs []domain.Review) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, deleteReviewsSQL, placeID); err != nil {
		return fmt.Errorf("delete reviews: %w", err)
	}
	if len(rs) > 0 {
		values := make([]string, 0, len(rs))
		args := make([]any, 0, len(rs)*7)
		for _, rv := range rs {
			values = append(values, "(?,?,?,?,?,?,?)")
			args = append(args,
				placeID,
				rv.SourceID,
				rv.Rating,
				valStr(rv.Lang),
				valStr(rv.Author),
				rv.Text,
				rv.PostedAt.UTC(),
			)
		}
		q := insertReviewsPrefix + strings.Join(values, ",") + insertReviewsOnDup
		if _, err = tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert reviews: %w", err)
		}
	}
	return tx.Commit()
}

func (r *Repo) LogMiss(ctx context.Context, placeID string, status int, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, placeID, status, reason)
	return err
}

func (r *Repo) GetPlace(ctx context.Context, placeID string) (domain.Place, error) {
	var (
		p       domain.Place
		rating  sql.NullFloat64
		total   sql.NullInt64
		rawJSON []byte
	)
	err := r.db.QueryRowContext(ctx, getPlaceSQL, placeID).
		Scan(&p.PlaceID, &p.Name, &rating, &total, &rawJSON, &p.FetchedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Place{}, domain.ErrNotFound
		}
		return domain.Place{}, err
	}
	if rating.Valid {
		f := rating.Float64
		p.Rating = &f
	}
	if total.Valid {
		n := int(total.Int64)
		p.RatingsTotal = &n
	}
	if len(rawJSON) > 0 {
		p.RawJSON = rawJSON
	}
	p.FetchedAt = p.FetchedAt.UTC()

	rows, err := r.db.QueryContext(ctx, listReviewsSQL, placeID)
	if err != nil {
		return domain.Place{}, err
	}
	defer rows.Close()

	p.Reviews = []domain.Review{}
	for rows.Next() {
		rv := domain.Review{PlaceID: placeID}
		var (
			lang, author sql.NullString
			text         sql.NullString
		)
		if err := rows.Scan(&rv.SourceID, &rv.Rating, &lang, &author, &text, &rv.PostedAt); err != nil {
			return domain.Place{}, err
		}
		if lang.Valid {
			s := lang.String
			rv.Lang = &s
		}
		if author.Valid {
			s := author.String
			rv.Author = &s
		}
		rv.Text = text.String
		rv.PostedAt = rv.PostedAt.UTC()
		p.Reviews = append(p.Reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return domain.Place{}, err
	}
	return p, nil
}
