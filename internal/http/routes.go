package httpx

import (
	"log/slog"
	"net/http"

	"github.com/pentopublic/pentopublic-client/internal/domain/access"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Session SessionFacade
	Routes  *access.Table
	// Metrics is mounted at MetricsPath when non-nil.
	Metrics     http.Handler
	MetricsPath string
	Logger      *slog.Logger
}

// NewRouter wires the session API, health and metrics endpoints, and the guarded pages.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{Session: services.Session, Logger: logger}
	mux.HandleFunc("GET /api/auth/session", authHandlers.GetSession)
	mux.HandleFunc("POST /api/auth/login", authHandlers.Login)
	mux.HandleFunc("POST /api/auth/register", authHandlers.Register(services.Routes.LoginPath))
	mux.HandleFunc("POST /api/auth/logout", authHandlers.Logout)
	mux.HandleFunc("DELETE /api/auth/error", authHandlers.ClearError)

	mux.Handle("/healthz", HealthHandler{Session: services.Session})

	if services.Metrics != nil && services.MetricsPath != "" {
		mux.Handle("GET "+services.MetricsPath, services.Metrics)
	}

	mux.Handle("/", &Guard{Session: services.Session, Routes: services.Routes, Logger: logger})

	return Chain(mux, RequestID(), Recover(logger), Logging(logger))
}
