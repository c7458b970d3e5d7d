package scoring

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidReviewData     = errors.New("scoring: invalid review data")
	ErrInvalidCrossReference = errors.New("scoring: invalid cross reference")
)

// ValidationError describes the first structurally invalid input found.
// Index is the review position, or -1 for cross-reference errors.
type ValidationError struct {
	Kind   error
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%v: reviews[%d].%s %s", e.Kind, e.Index, e.Field, e.Reason)
	}
	return fmt.Sprintf("%v: %s %s", e.Kind, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Kind }

func validate(in Input) error {
	for i, r := range in.Reviews {
		if r.Rating < 1 || r.Rating > 5 {
			return &ValidationError{Kind: ErrInvalidReviewData, Index: i, Field: "rating",
				Reason: fmt.Sprintf("must be between 1 and 5, got %d", r.Rating)}
		}
		if r.PostedAt.IsZero() {
			return &ValidationError{Kind: ErrInvalidReviewData, Index: i, Field: "posted_at", Reason: "is missing"}
		}
	}
	x := in.CrossRef
	if x == nil {
		return nil
	}
	if x.Rating != nil {
		if v := *x.Rating; math.IsNaN(v) || v < 0 || v > 5 {
			return &ValidationError{Kind: ErrInvalidCrossReference, Index: -1, Field: "rating",
				Reason: fmt.Sprintf("must be between 0 and 5, got %v", v)}
		}
	}
	if x.ReviewCount != nil && *x.ReviewCount < 0 {
		return &ValidationError{Kind: ErrInvalidCrossReference, Index: -1, Field: "review_count",
			Reason: fmt.Sprintf("must not be negative, got %d", *x.ReviewCount)}
	}
	return nil
}
