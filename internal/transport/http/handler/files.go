package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	fileapp "github.com/go-movie-api/internal/application/file"
	"github.com/go-movie-api/internal/domain"
	"github.com/go-movie-api/internal/transport/http/middleware"
)

// presignTTL bounds how long a direct S3 link stays valid.
const presignTTL = 15 * time.Minute

// FileHandler handles media upload and download endpoints.
type FileHandler struct {
	svc fileapp.Service
}

func NewFileHandler(svc fileapp.Service) *FileHandler { return &FileHandler{svc: svc} }

// Upload accepts a multipart form with a "file" field. The "kind" query
// parameter selects the bucket prefix: profile, poster, or video.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := r.ParseMultipartForm(512 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer f.Close()

	uploaded, err := h.svc.Upload(r.Context(), fileapp.UploadInput{
		Reader:      f,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Kind:        r.URL.Query().Get("kind"),
		UploaderID:  claims.UserID,
	})
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, uploaded)
}

func (h *FileHandler) UploadBase64(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var body struct {
		FileName string `json:"file_name"`
		Kind     string `json:"kind"`
		Base64   string `json:"base64"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	uploaded, err := h.svc.UploadBase64(r.Context(), body.FileName, body.Base64, body.Kind, claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, uploaded)
}

func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	rc, f, err := h.svc.Download(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	defer rc.Close()
	contentType := f.Type
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = io.Copy(w, rc)
}

// DownloadURL returns a presigned S3 link instead of streaming the object,
// the preferred path for video playback.
func (h *FileHandler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.svc.PresignURL(r.Context(), chi.URLParam(r, "id"), presignTTL)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, URLEnvelope{URL: url})
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	isAdmin := claims.Role == domain.RoleAdmin
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), claims.UserID, isAdmin); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "file deleted"})
}
