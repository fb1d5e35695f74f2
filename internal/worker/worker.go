// Package worker runs background maintenance on a schedule.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/abhisek/engreader/internal/logger"
)

// StaleSweeper fails stories stuck in generation.
type StaleSweeper interface {
	FailStale(ctx context.Context, olderThan time.Duration) (int, error)
}

type Config struct {
	// Interval between sweeps.
	Interval time.Duration
	// StaleAfter is how long a story may sit in generating.
	StaleAfter time.Duration
}

func DefaultConfig() Config {
	return Config{Interval: time.Minute, StaleAfter: 10 * time.Minute}
}

// Worker schedules the stale-generation sweep.
type Worker struct {
	scheduler *gocron.Scheduler
	sweeper   StaleSweeper
	cfg       Config
	log       *logger.Logger
}

func New(sweeper StaleSweeper, cfg Config, log *logger.Logger) *Worker {
	if log == nil {
		log = logger.Nop()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Worker{scheduler: s, sweeper: sweeper, cfg: cfg, log: log.With("component", "worker")}
}

// Start registers the jobs and runs them in the background. The first
// sweep runs immediately. Jobs stop when ctx is done or Stop is called.
func (w *Worker) Start(ctx context.Context) error {
	if w.cfg.Interval <= 0 || w.cfg.StaleAfter <= 0 {
		return fmt.Errorf("worker: interval and stale threshold must be positive")
	}
	if _, err := w.scheduler.Every(w.cfg.Interval).Do(w.sweep, ctx); err != nil {
		return fmt.Errorf("worker: schedule sweep: %w", err)
	}
	w.scheduler.StartAsync()
	w.log.Info("worker started", "interval", w.cfg.Interval, "stale_after", w.cfg.StaleAfter)

	go func() {
		<-ctx.Done()
		w.Stop()
	}()
	return nil
}

func (w *Worker) Stop() {
	if w.scheduler.IsRunning() {
		w.scheduler.Stop()
		w.log.Info("worker stopped")
	}
}

// RunOnce performs a single sweep.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	return w.sweeper.FailStale(ctx, w.cfg.StaleAfter)
}

func (w *Worker) sweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	n, err := w.RunOnce(ctx)
	if err != nil {
		w.log.Error("stale sweep failed", "error", err)
		return
	}
	if n > 0 {
		w.log.Info("stale sweep", "failed", n)
	}
}
