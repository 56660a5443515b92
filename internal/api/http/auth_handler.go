package http

import (
	"net/http"
	"time"

	"rental-desk-backend/internal/service"
)

type AuthHandler struct {
	auth service.AuthService
}

func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type deviceAuthRequest struct {
	DeviceID string `json:"device_id"`
	Passcode string `json:"passcode"`
}

type deviceAuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthenticateDevice exchanges the desk passcode for a bearer token.
func (h *AuthHandler) AuthenticateDevice(w http.ResponseWriter, r *http.Request) {
	var req deviceAuthRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	token, expiresAt, err := h.auth.AuthenticateDevice(r.Context(), req.DeviceID, req.Passcode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deviceAuthResponse{Token: token, ExpiresAt: expiresAt})
}
