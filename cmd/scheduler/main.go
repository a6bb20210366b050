// Command scheduler hosts the cron-triggered batch passes: the daily
// generation of recurring obligation occurrences and the periodic due-soon
// alert sweep.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pedrovi35/fiscalapp/internal/application/history"
	"github.com/pedrovi35/fiscalapp/internal/application/obligation"
	"github.com/pedrovi35/fiscalapp/internal/application/scheduler"
	"github.com/pedrovi35/fiscalapp/internal/config"
	"github.com/pedrovi35/fiscalapp/internal/infrastructure/persistence/postgres"
	"github.com/pedrovi35/fiscalapp/internal/notification"
	"github.com/pedrovi35/fiscalapp/pkg/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadSchedulerConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	lp, logger, err := observability.InitLogger(ctx, cfg.Observability.ServiceName, cfg.Observability.Enabled)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := lp.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "failed to shutdown logger provider", "error", err)
		}
	}()
	slog.SetDefault(logger)

	store, err := postgres.NewStore(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	defer store.Close()

	notifier := notification.NewService(notification.LogBroadcaster{})
	historySvc := history.NewService(store)
	generator := obligation.NewGenerator(store)

	driver := scheduler.NewDriver(store, generator, historySvc, notifier,
		scheduler.WithLookaheadDays(cfg.DueSoonLookaheadDays))

	cronLogger := cron.PrintfLogger(slogPrintf{})
	c := cron.New(cron.WithChain(
		// A slow pass must not stack on top of itself.
		cron.SkipIfStillRunning(cronLogger),
		cron.Recover(cronLogger),
	))

	if _, err := c.AddFunc(cfg.GenerationSpec, func() {
		runCtx, cancel := context.WithTimeout(ctx, cfg.OperationTimeout)
		defer cancel()
		if _, err := driver.RunDaily(runCtx, time.Now().UTC()); err != nil {
			slog.ErrorContext(runCtx, "generation pass failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule generation pass: %w", err)
	}

	if _, err := c.AddFunc(cfg.DueSoonSpec, func() {
		runCtx, cancel := context.WithTimeout(ctx, cfg.OperationTimeout)
		defer cancel()
		if err := driver.RunDueSoonAlerts(runCtx, time.Now().UTC()); err != nil {
			slog.ErrorContext(runCtx, "due-soon alert pass failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule due-soon alerts: %w", err)
	}

	if _, err := c.AddFunc(cfg.MonthlyReportSpec, func() {
		runCtx, cancel := context.WithTimeout(ctx, cfg.OperationTimeout)
		defer cancel()
		if err := driver.RunMonthlyReport(runCtx, time.Now().UTC()); err != nil {
			slog.ErrorContext(runCtx, "monthly report pass failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule monthly report: %w", err)
	}

	c.Start()
	slog.InfoContext(ctx, "scheduler started",
		"generation_spec", cfg.GenerationSpec,
		"due_soon_spec", cfg.DueSoonSpec,
		"monthly_report_spec", cfg.MonthlyReportSpec)

	<-ctx.Done()
	slog.Info("shutting down, waiting for running jobs")
	<-c.Stop().Done()
	slog.Info("scheduler shut down gracefully")
	return nil
}

// slogPrintf adapts the structured logger to cron's Printf-style interface.
type slogPrintf struct{}

func (slogPrintf) Printf(format string, args ...any) {
	slog.Info(fmt.Sprintf(format, args...))
}
