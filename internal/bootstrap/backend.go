package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/pentopublic/pentopublic-client/config"
	"github.com/pentopublic/pentopublic-client/internal/adapters/backendhttp"
	"github.com/pentopublic/pentopublic-client/internal/adapters/devbackend"
	"github.com/pentopublic/pentopublic-client/internal/ports"
)

// BackendDeps groups dependencies for backend construction.
type BackendDeps struct {
	Auth    config.AuthConfig
	Backend config.BackendConfig
	Logger  *slog.Logger
}

// Backends holds the selected ports.Backend. HTTP is nil in mock mode.
type Backends struct {
	Backend ports.Backend
	HTTP    *backendhttp.Client
}

// BuildBackend selects the HTTP client or the in-process dev backend based on AUTH_MODE.
func BuildBackend(deps BackendDeps) (Backends, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if deps.Auth.IsMock() {
		dev, err := devbackend.New(devbackend.Config{
			Users:      deps.Auth.DevAuth.Users,
			TokenTTL:   deps.Auth.DevAuth.TokenTTL,
			SigningKey: deps.Auth.DevAuth.SigningKey,
		})
		if err != nil {
			return Backends{}, fmt.Errorf("build dev backend: %w", err)
		}
		logger.Warn("using in-process dev backend; do not use in production")
		return Backends{Backend: dev}, nil
	}

	client, err := backendhttp.New(backendhttp.Config{
		BaseURL:          deps.Backend.URL,
		Timeout:          deps.Backend.Timeout,
		ErrorMessagePath: deps.Backend.ErrorMessagePath,
		UserAgent:        deps.Backend.UserAgent,
		Logger:           logger,
	})
	if err != nil {
		return Backends{}, fmt.Errorf("build backend client: %w", err)
	}
	return Backends{Backend: client, HTTP: client}, nil
}
