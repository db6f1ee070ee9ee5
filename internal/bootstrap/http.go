package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	httpx "github.com/pentopublic/pentopublic-client/internal/http"
)

// BuildHTTPHandler wires the portal router around the app's session manager.
func BuildHTTPHandler(app *App) http.Handler {
	services := httpx.RouterServices{
		Session: app.Session,
		Routes:  app.Routes,
		Logger:  app.Logger,
	}

	metricsCfg := app.Config.Observability.Metrics
	if metricsCfg.IsEnabled() {
		// Registration only fails when the collectors are already present.
		_ = app.Registry.Register(collectors.NewGoCollector())
		_ = app.Registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		services.Metrics = promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{})
		services.MetricsPath = metricsCfg.Path
	}

	return httpx.NewRouter(services)
}

// NewHTTPServer builds the server without starting it.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// ServeConfig contains dependencies for Serve.
type ServeConfig struct {
	Server          *http.Server
	Listener        net.Listener // optional; Server.Addr is used when nil
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// Serve runs the server until ctx is done, then shuts it down gracefully.
func Serve(ctx context.Context, cfg ServeConfig) error {
	if cfg.Server == nil {
		return errors.New("serve: server is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ln := cfg.Listener
	if ln == nil {
		var err error
		ln, err = net.Listen("tcp", cfg.Server.Addr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", cfg.Server.Addr, err)
		}
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.InfoContext(gctx, "starting HTTP server", "addr", ln.Addr().String())
		if err := cfg.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), timeout)
		defer cancel()
		if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logger.Info("HTTP server stopped")
		return nil
	})

	return group.Wait()
}
