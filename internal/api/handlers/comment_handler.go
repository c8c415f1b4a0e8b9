package handlers

import (
	"net/http"
	"strconv"

	"github.com/zatekoja/businesstrust/backend/internal/api/middleware"
	"github.com/zatekoja/businesstrust/backend/internal/application/services"
)

// CommentHandler handles company comment requests
type CommentHandler struct {
	directory *services.DirectoryService
	comments  *services.CommentService
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(directory *services.DirectoryService, comments *services.CommentService) *CommentHandler {
	return &CommentHandler{directory: directory, comments: comments}
}

type commentRequest struct {
	Comment string `json:"comment"`
}

// ListComments handles GET /api/company/{id}/comments
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 0 {
		limit = 0
	}

	comments, err := h.comments.ListComments(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	views := make([]commentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, commentView{
			Comment:   c.Comment,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
			Customer: commentCustomerView{
				ID:    c.UserID,
				Name:  c.CustomerName,
				Email: c.CustomerEmail,
			},
		})
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"comments": views})
}

// AddComment handles POST /api/company/{id}/comments
func (h *CommentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customer, err := h.directory.ResolveCustomer(ctx, middleware.TokenFromContext(ctx))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.comments.AddComment(ctx, r.PathValue("id"), customer, req.Comment); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"detail": "Comment added."})
}
