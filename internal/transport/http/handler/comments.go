package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	commentapp "github.com/go-movie-api/internal/application/comment"
	"github.com/go-movie-api/internal/domain"
	"github.com/go-movie-api/internal/pkg/validate"
	"github.com/go-movie-api/internal/transport/http/middleware"
)

// CommentHandler handles movie comment endpoints.
type CommentHandler struct {
	svc commentapp.Service
}

func NewCommentHandler(svc commentapp.Service) *CommentHandler { return &CommentHandler{svc: svc} }

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	c, err := h.svc.Create(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CommentHandler) ListByMovie(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.ListByMovie(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}
