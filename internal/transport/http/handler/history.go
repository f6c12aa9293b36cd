package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	historyapp "github.com/go-movie-api/internal/application/history"
	"github.com/go-movie-api/internal/transport/http/middleware"
)

// HistoryHandler handles watch-history endpoints.
type HistoryHandler struct {
	svc historyapp.Service
}

func NewHistoryHandler(svc historyapp.Service) *HistoryHandler { return &HistoryHandler{svc: svc} }

func (h *HistoryHandler) Record(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		MovieID string `json:"movie_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MovieID == "" {
		writeError(w, http.StatusBadRequest, "movie_id required")
		return
	}
	entry, err := h.svc.Record(r.Context(), claims.UserID, req.MovieID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	views, err := h.svc.List(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "history entry deleted"})
}

func (h *HistoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Clear(r.Context(), claims.UserID); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "history cleared"})
}
