// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Be114/insyoku-sakura/internal/adapters/observability"
	"github.com/Be114/insyoku-sakura/internal/app"
	"github.com/Be114/insyoku-sakura/internal/domain"
	"github.com/Be114/insyoku-sakura/internal/scoring"
)

const maxBodyBytes = 1 << 20

type Handlers struct{ A *app.AnalysisService }

type problem struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/analyze", h.analyzeURL)
	s.mux.Post("/v1/analyze/reviews", h.analyzeReviews)
}

// ---- request / response bodies ----

type analyzeRequest struct {
	GoogleMapsURL      string   `json:"google_maps_url" validate:"required,url"`
	TabelogRating      *float64 `json:"tabelog_rating"`
	TabelogReviewCount *int     `json:"tabelog_review_count"`
	TabelogName        *string  `json:"tabelog_name" validate:"omitempty,max=200"`
	Lang               string   `json:"lang" validate:"omitempty,oneof=ja en"`
}

func (r analyzeRequest) crossReference() *scoring.CrossReference {
	if r.TabelogRating == nil && r.TabelogReviewCount == nil && r.TabelogName == nil {
		return nil
	}
	return &scoring.CrossReference{Rating: r.TabelogRating, ReviewCount: r.TabelogReviewCount, Name: r.TabelogName}
}

type analyzeReviewsRequest struct {
	PlaceName      string                  `json:"place_name" validate:"max=200"`
	Reviews        []reviewBody            `json:"reviews" validate:"max=1000"`
	CrossReference *scoring.CrossReference `json:"cross_reference"`
	Lang           string                  `json:"lang" validate:"omitempty,oneof=ja en"`
}

// reviewBody keeps posted_at raw so a bad timestamp is reported per review.
type reviewBody struct {
	Rating   int    `json:"rating"`
	Text     string `json:"text"`
	PostedAt string `json:"posted_at"`
}

// reviews converts the body; an empty posted_at is left zero for the engine to reject.
func (r analyzeReviewsRequest) reviews() ([]scoring.Review, error) {
	out := make([]scoring.Review, 0, len(r.Reviews))
	for i, b := range r.Reviews {
		rv := scoring.Review{Rating: b.Rating, Text: b.Text}
		if b.PostedAt != "" {
			at, err := time.Parse(time.RFC3339, b.PostedAt)
			if err != nil {
				return nil, &scoring.ValidationError{
					Kind:   scoring.ErrInvalidReviewData,
					Index:  i,
					Field:  "posted_at",
					Reason: "must be an RFC 3339 timestamp",
				}
			}
			rv.PostedAt = at
		}
		out = append(out, rv)
	}
	return out, nil
}

type analyzeResponse struct {
	PlaceID   string    `json:"place_id"`
	PlaceName string    `json:"place_name"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
	scoring.Result
	Localized []string `json:"comments,omitempty"`
}

type analyzeReviewsResponse struct {
	scoring.Result
	Localized []string `json:"comments,omitempty"`
}

// ---- handlers ----

func (h *Handlers) analyzeURL(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	out, err := h.A.AnalyzeURL(r.Context(), req.GoogleMapsURL, req.crossReference())
	if err != nil {
		writeError(w, err)
		return
	}
	observability.ObserveSnapshot(out.Source)
	observe(out.Result)
	writeJSON(w, http.StatusOK, analyzeResponse{
		PlaceID:   out.PlaceID,
		PlaceName: out.PlaceName,
		Source:    out.Source,
		FetchedAt: out.FetchedAt,
		Result:    out.Result,
		Localized: localized(out.Result, req.Lang),
	})
}

func (h *Handlers) analyzeReviews(w http.ResponseWriter, r *http.Request) {
	var req analyzeReviewsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	reviews, err := req.reviews()
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.A.AnalyzeReviews(r.Context(), scoring.Input{
		PlaceName: req.PlaceName,
		Reviews:   reviews,
		CrossRef:  req.CrossReference,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	observe(res)
	writeJSON(w, http.StatusOK, analyzeReviewsResponse{Result: res, Localized: localized(res, req.Lang)})
}

func observe(res scoring.Result) {
	observability.ObserveAnalysis(string(res.RiskLabel), res.SakuraScore, res.FraudScore)
}

// localized renders comments in lang when it differs from the Japanese default.
func localized(res scoring.Result, lang string) []string {
	if lang == "" || lang == scoring.LangJA {
		return nil
	}
	return scoring.Explain(res.Findings, lang)
}

// ---- encoding helpers ----

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", describeDecodeError(err), nil)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "request failed validation", fieldErrors(err))
		return false
	}
	return true
}

func describeDecodeError(err error) string {
	var syn *json.SyntaxError
	var typ *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return "request body is empty"
	case errors.As(err, &syn):
		return "malformed JSON at offset " + strconv.FormatInt(syn.Offset, 10)
	case errors.As(err, &typ):
		return fmt.Sprintf("%s must be %s", typ.Field, typ.Type)
	default:
		return err.Error()
	}
}

// writeError maps use-case and engine errors to problem responses.
func writeError(w http.ResponseWriter, err error) {
	var verr *scoring.ValidationError
	switch {
	case errors.As(err, &verr):
		field := verr.Field
		if verr.Index >= 0 {
			field = fmt.Sprintf("reviews[%d].%s", verr.Index, verr.Field)
		} else {
			field = "cross_reference." + field
		}
		writeProblem(w, http.StatusUnprocessableEntity, "Invalid Input", verr.Error(), map[string]string{field: verr.Reason})
	case errors.Is(err, domain.ErrInvalidURL):
		writeProblem(w, http.StatusBadRequest, "Invalid Google Maps URL", err.Error(), map[string]string{"google_maps_url": "place id not found in url"})
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "place not found", nil)
	case errors.Is(err, domain.ErrProviderFetch):
		writeProblem(w, http.StatusBadGateway, "Upstream Error", "failed to fetch reviews from Google Places", nil)
	case errors.Is(err, context.DeadlineExceeded):
		writeProblem(w, http.StatusGatewayTimeout, "Timeout", "analysis timed out", nil)
	default:
		log.Error().Err(err).Str("err_type", observability.LabelErr(err)).Msg("analysis failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "", nil)
	}
}

func writeProblem(w http.ResponseWriter, status int, title, detail string, fields map[string]string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail, Errors: fields}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal response")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "", nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}
