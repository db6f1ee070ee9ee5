package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pentopublic/pentopublic-client/config"
	"github.com/pentopublic/pentopublic-client/internal/adapters/backendhttp"
	"github.com/pentopublic/pentopublic-client/internal/adapters/credstore"
	"github.com/pentopublic/pentopublic-client/internal/domain/access"
	"github.com/pentopublic/pentopublic-client/internal/observability/metrics"
	"github.com/pentopublic/pentopublic-client/internal/service"
	"github.com/pentopublic/pentopublic-client/internal/session"
)

// App holds the wired session subsystem.
type App struct {
	Config   config.AppConfig
	Logger   *slog.Logger
	Store    *credstore.Store
	Backend  Backends
	Routes   *access.Table
	Session  *session.Manager
	Registry *prometheus.Registry

	closers []func() error
}

// Build wires the credential store, backend, route table, and session manager.
// The session is not started; call App.Session.Start.
func Build(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	routes, err := LoadRoutes(cfg.HTTP)
	if err != nil {
		return nil, err
	}

	backends, err := BuildBackend(BackendDeps{Auth: cfg.Auth, Backend: cfg.Backend, Logger: logger})
	if err != nil {
		return nil, err
	}

	store, closeStore, err := BuildCredentialStore(ctx, StoreDeps{Store: cfg.Store, Redis: cfg.Redis, Logger: logger})
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	recorder, err := metrics.NewSessionRecorder(registry)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("register session metrics: %w", err), closeStore())
	}

	svc := service.NewSessionService(service.SessionServiceOptions{
		Backend: backends.Backend,
		Store:   store,
		Logger:  logger,
	})

	return &App{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Backend:  backends,
		Routes:   routes,
		Session:  session.New(session.Options{Service: svc, Logger: logger, Metrics: recorder}),
		Registry: registry,
		closers:  []func() error{closeStore},
	}, nil
}

// HTTPClient returns the backend client, or nil in mock mode.
func (a *App) HTTPClient() *backendhttp.Client {
	return a.Backend.HTTP
}

// Close releases the storage medium.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
