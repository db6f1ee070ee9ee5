package config

import (
	"strings"
	"time"
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// LoginPath and UnauthorizedPath override the route table's redirect targets.
	LoginPath        string `env:"APP_LOGIN_PATH"`
	UnauthorizedPath string `env:"APP_UNAUTHORIZED_PATH"`

	// RoutesFile points at a YAML route table. Empty uses the embedded default.
	RoutesFile string `env:"ROUTES_FILE"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	h.Addr = strings.TrimSpace(h.Addr)
	if h.Addr == "" {
		h.Addr = ":8080"
	}
	h.LoginPath = strings.TrimSpace(h.LoginPath)
	h.UnauthorizedPath = strings.TrimSpace(h.UnauthorizedPath)
	h.RoutesFile = strings.TrimSpace(h.RoutesFile)
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 10 * time.Second
	}
}
