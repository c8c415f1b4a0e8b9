package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/zatekoja/businesstrust/backend/internal/api/middleware"
	"github.com/zatekoja/businesstrust/backend/internal/application/services"
	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
)

// RatingHandler handles company rating requests
type RatingHandler struct {
	directory *services.DirectoryService
	ratings   *services.RatingService
}

// NewRatingHandler creates a new rating handler
func NewRatingHandler(directory *services.DirectoryService, ratings *services.RatingService) *RatingHandler {
	return &RatingHandler{directory: directory, ratings: ratings}
}

type ratingRequest struct {
	Rating json.RawMessage `json:"rating"`
}

type ratingResponse struct {
	Company  companySummaryView `json:"company"`
	MyRating *float64           `json:"my_rating"`
}

// GetRating handles GET /api/company/{id}/rate
func (h *RatingHandler) GetRating(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customer := h.directory.OptionalCustomer(ctx, middleware.TokenFromContext(ctx))

	summary, err := h.ratings.RatingSummary(ctx, r.PathValue("id"), customer)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ratingResponse{
		Company:  newCompanySummaryView(summary.Company),
		MyRating: summary.MyRating,
	})
}

// SubmitRating handles POST /api/company/{id}/rate
func (h *RatingHandler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID := r.PathValue("id")

	customer, err := h.directory.ResolveCustomer(ctx, middleware.TokenFromContext(ctx))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	var req ratingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	value, err := parseRating(req.Rating)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	summary, err := h.ratings.SubmitRating(ctx, companyID, customer, value)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ratingResponse{
		Company:  newCompanySummaryView(summary.Company),
		MyRating: summary.MyRating,
	})
}

// parseRating accepts a JSON number or a string holding one
func parseRating(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, entities.ErrRatingNotNumber
	}

	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return number, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return 0, entities.ErrRatingNotNumber
	}
	number, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, entities.ErrRatingNotNumber
	}
	return number, nil
}
