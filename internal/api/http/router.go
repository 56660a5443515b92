package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
)

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

type RouterConfig struct {
	Auth     *AuthHandler
	Sessions *SessionHandler
	// Files serves mock storage; nil when photos live in S3.
	Files       fileStore
	MaxFileSize int64
	Health      HealthCheck
	Middleware  *AuthMiddleware
}

// NewRouter registers every route by name; the auth middleware looks the
// names up in the endpoint security table.
func NewRouter(cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()
	r.Use(LoggingMiddleware)
	r.Use(cfg.Middleware.Handler)

	r.HandleFunc("/healthz", healthHandler(cfg.Health)).Methods(http.MethodGet).Name("health")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/device", cfg.Auth.AuthenticateDevice).Methods(http.MethodPost).Name("auth.device")

	s := cfg.Sessions
	api.HandleFunc("/sessions", s.Create).Methods(http.MethodPost).Name("sessions.create")
	api.HandleFunc("/sessions", s.List).Methods(http.MethodGet).Name("sessions.list")
	api.HandleFunc("/sessions/new", s.New).Methods(http.MethodGet).Name("sessions.new")
	api.HandleFunc("/sessions/search", s.Search).Methods(http.MethodGet).Name("sessions.search")
	api.HandleFunc("/sessions/{id}", s.Get).Methods(http.MethodGet).Name("sessions.get")
	api.HandleFunc("/sessions/{id}", s.Update).Methods(http.MethodPut).Name("sessions.update")
	api.HandleFunc("/sessions/{id}", s.Delete).Methods(http.MethodDelete).Name("sessions.delete")
	api.HandleFunc("/sessions/{id}/return", s.UpdateReturn).Methods(http.MethodPatch).Name("sessions.return")
	api.HandleFunc("/sessions/{id}/status", s.AdvanceStatus).Methods(http.MethodPost).Name("sessions.status")
	api.HandleFunc("/sessions/{id}/close", s.Close).Methods(http.MethodPost).Name("sessions.close")
	api.HandleFunc("/sessions/{id}/photos/{slot}", s.UploadPhoto).Methods(http.MethodPost).Name("sessions.photo")
	api.HandleFunc("/photos/url", s.PhotoURL).Methods(http.MethodGet).Name("photos.url")
	api.HandleFunc("/customers/{phone}/profile", s.CustomerProfile).Methods(http.MethodGet).Name("customers.profile")
	api.HandleFunc("/reconciliation/preview", s.Preview).Methods(http.MethodPost).Name("reconciliation.view")

	if cfg.Files != nil {
		RegisterMockStorageRoutes(r, cfg.Files, cfg.MaxFileSize)
	}
	return r
}

func healthHandler(check HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
