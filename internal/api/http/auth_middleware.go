package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"rental-desk-backend/internal/config"
	"rental-desk-backend/internal/logger"
	"rental-desk-backend/internal/security"
)

type contextKey string

const deviceIDKey contextKey = "device-id"

// DeviceIDFromContext returns the authenticated desk device, if any.
func DeviceIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(deviceIDKey).(string)
	return id, ok && id != ""
}

type AuthMiddleware struct {
	tokenManager security.TokenManager
}

func NewAuthMiddleware(tm security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokenManager: tm}
}

// Handler authenticates requests to routes that require a device token.
// The route's security level is looked up by its mux route name.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := ""
		if route := mux.CurrentRoute(r); route != nil {
			name = route.GetName()
		}
		if config.GetSecurityLevel(name) == config.SecurityPublic {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := extractToken(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authorization token is not provided"})
			return
		}
		claims, err := m.tokenManager.ValidateToken(token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid token: " + err.Error()})
			return
		}
		if claims.Type != security.TokenTypeDevice {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "device token required"})
			return
		}

		ctx := context.WithValue(r.Context(), deviceIDKey, claims.DeviceID)
		ctx = logger.WithAttrs(ctx, "device_id", claims.DeviceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	token := header
	if len(token) > 7 && strings.ToUpper(token[0:7]) == "BEARER " {
		token = token[7:]
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// LoggingMiddleware logs every request with its status and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.InfoContext(r.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}
