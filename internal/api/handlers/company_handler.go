package handlers

import (
	"net/http"
	"strconv"

	"github.com/zatekoja/businesstrust/backend/internal/api/middleware"
	"github.com/zatekoja/businesstrust/backend/internal/application/services"
	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
)

// CompanyHandler handles company listing and profile requests
type CompanyHandler struct {
	directory   *services.DirectoryService
	companies   *services.CompanyService
	aggregation *services.AggregationService
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(directory *services.DirectoryService, companies *services.CompanyService, aggregation *services.AggregationService) *CompanyHandler {
	return &CompanyHandler{directory: directory, companies: companies, aggregation: aggregation}
}

type feedbackResponse struct {
	Company          companySummaryView `json:"company"`
	AverageSentiment float64            `json:"average_sentiment"`
	ReputationScore  float64            `json:"reputation_score"`
	Feedback         feedbackLists      `json:"feedback"`
}

type feedbackLists struct {
	Ratings  []services.RatingFeedback  `json:"ratings"`
	Comments []services.CommentFeedback `json:"comments"`
}

// Search handles GET /api/company/search
func (h *CompanyHandler) Search(w http.ResponseWriter, r *http.Request) {
	companies, err := h.companies.Search(r.Context(), filterFromQuery(r, 0))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	results := make([]searchResultView, 0, len(companies))
	for _, c := range companies {
		results = append(results, searchResultView{
			ID:            c.ID,
			Name:          c.Name,
			Email:         c.Email,
			Category:      c.Category,
			Description:   c.Description,
			City:          c.City,
			Country:       c.Country,
			AverageRating: c.AverageRating,
			TotalReviews:  c.TotalReviews,
		})
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// Top handles GET /api/company/top
func (h *CompanyHandler) Top(w http.ResponseWriter, r *http.Request) {
	top, err := h.companies.TopByCategory(r.Context(), queryInt(r, "limit", services.DefaultTopLimit))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	data := make(map[string][]topEntryView, len(top))
	for category, companies := range top {
		entries := make([]topEntryView, 0, len(companies))
		for _, c := range companies {
			entries = append(entries, newTopEntryView(c))
		}
		data[category] = entries
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"top_by_category": data})
}

// Recommendations handles GET /api/company/recommendations
func (h *CompanyHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r, queryInt(r, "limit", services.DefaultRecommendationLimit))
	companies, err := h.companies.Recommendations(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	recs := make([]recommendationView, 0, len(companies))
	for _, c := range companies {
		recs = append(recs, recommendationView{topEntryView: newTopEntryView(c), ReputationScore: c.ReputationScore})
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"recommendations": recs})
}

// List handles GET /api/companies
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	companies, err := h.companies.List(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	views := make([]companyProfileView, 0, len(companies))
	for _, c := range companies {
		views = append(views, newCompanyProfileView(c))
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"companies": views})
}

// Get handles GET /api/company/{id}
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	company, err := h.companies.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, companyDetailView{
		companyProfileView:  newCompanyProfileView(company),
		ReputationScore:     company.ReputationScore,
		RecommendationScore: company.RecommendationScore,
	})
}

// Me handles GET /api/company/me
func (h *CompanyHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, company, err := h.directory.ResolveCompany(ctx, middleware.TokenFromContext(ctx))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, newCompanyProfileView(company))
}

// UpdateMe handles PATCH /api/company/me
func (h *CompanyHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, company, err := h.directory.ResolveCompany(ctx, middleware.TokenFromContext(ctx))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	var patch entities.CompanyProfilePatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	updated, err := h.companies.UpdateProfile(ctx, company, patch)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, newCompanyProfileView(updated))
}

// Feedback handles GET /api/company/me/feedback
func (h *CompanyHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, company, err := h.directory.ResolveCompany(ctx, middleware.TokenFromContext(ctx))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	report, err := h.aggregation.Feedback(ctx, company)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, feedbackResponse{
		Company:          newCompanySummaryView(report.Company),
		AverageSentiment: report.AverageSentiment,
		ReputationScore:  report.ReputationScore,
		Feedback: feedbackLists{
			Ratings:  report.Ratings,
			Comments: report.Comments,
		},
	})
}

func newTopEntryView(c *entities.Company) topEntryView {
	return topEntryView{
		ID:            c.ID,
		Name:          c.Name,
		Category:      c.Category,
		AverageRating: c.AverageRating,
		TotalReviews:  c.TotalReviews,
	}
}

func filterFromQuery(r *http.Request, limit int) repositories.CompanyFilter {
	q := r.URL.Query()
	return repositories.CompanyFilter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		City:     q.Get("city"),
		Country:  q.Get("country"),
		Limit:    limit,
	}
}

// queryInt parses a positive integer parameter, falling back to def
func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
