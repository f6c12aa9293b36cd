package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-movie-api/internal/application/auth"
	"github.com/go-chi/chi/v5"
)

// PasswordRecoveryHandler handles the OTP reset flow endpoints.
type PasswordRecoveryHandler struct {
	svc auth.Service
}

func NewPasswordRecoveryHandler(svc auth.Service) *PasswordRecoveryHandler {
	return &PasswordRecoveryHandler{svc: svc}
}

func (h *PasswordRecoveryHandler) Action(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "request":
		var req auth.ForgotPasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		code, err := h.svc.RequestPasswordReset(r.Context(), req.Email)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, OTPEnvelope{Message: "OTP sent to email", OTP: code})
	case "reset":
		var req auth.ResetPasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := h.svc.ResetPassword(r.Context(), req); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "password reset successful"})
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}
