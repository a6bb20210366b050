// Command server hosts the obligation REST API and the websocket
// notification endpoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pedrovi35/fiscalapp/internal/application/history"
	"github.com/pedrovi35/fiscalapp/internal/application/obligation"
	"github.com/pedrovi35/fiscalapp/internal/config"
	httpserver "github.com/pedrovi35/fiscalapp/internal/infrastructure/http"
	"github.com/pedrovi35/fiscalapp/internal/infrastructure/http/handler"
	"github.com/pedrovi35/fiscalapp/internal/infrastructure/persistence/postgres"
	"github.com/pedrovi35/fiscalapp/internal/notification"
	"github.com/pedrovi35/fiscalapp/pkg/observability"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Telemetry endpoint and headers come from the standard OTEL_* env vars.
	lp, logger, err := observability.InitLogger(ctx, cfg.Observability.ServiceName, cfg.Observability.Enabled)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer shutdownProvider(lp.Shutdown, "logger")
	slog.SetDefault(logger)

	tp, err := observability.InitTracerProvider(ctx, cfg.Observability.ServiceName, cfg.Observability.Enabled)
	if err != nil {
		return fmt.Errorf("failed to init tracer provider: %w", err)
	}
	defer shutdownProvider(tp.Shutdown, "tracer")

	mp, err := observability.InitMeterProvider(ctx, cfg.Observability.ServiceName, cfg.Observability.Enabled)
	if err != nil {
		return fmt.Errorf("failed to init meter provider: %w", err)
	}
	defer shutdownProvider(mp.Shutdown, "meter")

	store, err := postgres.NewStore(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	defer store.Close()
	slog.InfoContext(ctx, "storage initialized", "url", maskPassword(cfg.Database.URL))

	registry := notification.NewMemoryRegistry()
	hub := notification.NewHub(registry)
	notifier := notification.NewService(hub)

	historySvc := history.NewService(store)
	obligationSvc := obligation.NewService(store, historySvc, notifier)

	apiHandler := handler.NewRouter(handler.NewObligationHandler(obligationSvc, historySvc, store))

	server := httpserver.NewAPIServer(apiHandler, hub, httpserver.ServerConfig{
		Port:         cfg.Port,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	})

	errResult := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errResult <- fmt.Errorf("failed to serve HTTP: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.InfoContext(ctx, "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.WarnContext(shutdownCtx, "HTTP server shutdown timed out", "error", err)
		}
		return nil
	case err := <-errResult:
		return err
	}
}

// shutdownProvider flushes one telemetry provider with its own timeout so a
// dead collector cannot hang process exit.
func shutdownProvider(shutdown func(context.Context) error, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to shutdown telemetry provider", "provider", name, "error", err)
	}
}

// maskPassword masks the password in a connection string for logging.
func maskPassword(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil {
		return "[REDACTED]"
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "xxxxxx")
		}
	}
	return u.String()
}
