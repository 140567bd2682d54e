package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/alejandrodnm/flipsignal/internal/domain"
)

// cycleRunner es lo que el scheduler ejecuta en cada tick.
type cycleRunner interface {
	RunOnce(ctx context.Context) error
}

// advisorRunner es la parte de advisor.Engine que usa el scheduler.
type advisorRunner interface {
	RunOnce(ctx context.Context) (*domain.CycleReport, error)
}

// runScheduled ejecuta un ciclo inmediatamente y luego uno cada interval
// hasta que ctx se cancela. SkipIfStillRunning garantiza que dos ciclos
// nunca se solapan: si uno tarda más que el intervalo, el tick se descarta.
func runScheduled(ctx context.Context, adv advisorRunner, interval time.Duration) error {
	return schedule(ctx, cycleFunc(func(ctx context.Context) error {
		_, err := adv.RunOnce(ctx)
		return err
	}), interval)
}

func schedule(ctx context.Context, job cycleRunner, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("schedule: interval must be > 0, got %s", interval)
	}

	logger := slogCronLogger{}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	run := func() {
		if ctx.Err() != nil {
			return
		}
		if err := job.RunOnce(ctx); err != nil && ctx.Err() == nil {
			slog.Warn("cycle failed", "err", err)
		}
	}

	if _, err := c.AddFunc(fmt.Sprintf("@every %s", interval), run); err != nil {
		return fmt.Errorf("schedule: add job: %w", err)
	}

	// Primer ciclo sin esperar al primer tick.
	run()

	c.Start()
	slog.Info("scheduler started", "interval", interval)

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	slog.Info("scheduler stopped")
	return nil
}

// cycleFunc adapta una función a cycleRunner.
type cycleFunc func(ctx context.Context) error

func (f cycleFunc) RunOnce(ctx context.Context) error { return f(ctx) }

// slogCronLogger implementa cron.Logger sobre slog.
type slogCronLogger struct{}

func (slogCronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogCronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append([]any{"err", err}, keysAndValues...)...)
}
