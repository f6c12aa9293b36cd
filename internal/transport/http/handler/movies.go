package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	movieapp "github.com/go-movie-api/internal/application/movie"
	"github.com/go-movie-api/internal/domain"
	"github.com/go-movie-api/internal/pkg/validate"
)

// MovieHandler handles catalog endpoints.
type MovieHandler struct {
	svc movieapp.Service
}

func NewMovieHandler(svc movieapp.Service) *MovieHandler { return &MovieHandler{svc: svc} }

func (h *MovieHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	m, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *MovieHandler) List(w http.ResponseWriter, r *http.Request) {
	movies, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

func (h *MovieHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MovieHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	m, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MovieHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "movie deleted"})
}
