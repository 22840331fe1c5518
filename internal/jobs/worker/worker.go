package worker

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/storygrid-backend/internal/data/repos"
	"github.com/yungbote/storygrid-backend/internal/jobs/runtime"
	"github.com/yungbote/storygrid-backend/internal/observability"
	"github.com/yungbote/storygrid-backend/internal/platform/ctxutil"
	"github.com/yungbote/storygrid-backend/internal/platform/dbctx"
	"github.com/yungbote/storygrid-backend/internal/platform/envutil"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
	"github.com/yungbote/storygrid-backend/internal/services"
)

type Config struct {
	Concurrency  int
	PollInterval time.Duration
	MaxAttempts  int
	RetryDelay   time.Duration
	StaleRunning time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		Concurrency:  envutil.Int("WORKER_CONCURRENCY", 4),
		PollInterval: time.Second,
		MaxAttempts:  envutil.Int("WRITE_TASK_MAX_ATTEMPTS", 5),
		RetryDelay:   envutil.Seconds("WRITE_TASK_RETRY_DELAY_SECONDS", 30*time.Second),
		StaleRunning: 30 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 5
	}
	if c.RetryDelay < 0 {
		c.RetryDelay = 0
	}
	if c.StaleRunning <= 0 {
		c.StaleRunning = 30 * time.Minute
	}
	return c
}

type Worker struct {
	db       *gorm.DB
	log      *logger.Logger
	repo     repos.WriteTaskRepo
	registry *runtime.Registry
	notify   services.WriteTaskNotifier
	cfg      Config
}

func NewWorker(db *gorm.DB, baseLog *logger.Logger, repo repos.WriteTaskRepo, registry *runtime.Registry, notify services.WriteTaskNotifier, cfg Config) *Worker {
	return &Worker{
		db:       db,
		log:      baseLog.With("component", "WriteTaskWorker"),
		repo:     repo,
		registry: registry,
		notify:   notify,
		cfg:      cfg.withDefaults(),
	}
}

func (w *Worker) MaxAttempts() int { return w.cfg.MaxAttempts }

func (w *Worker) Start(ctx context.Context) {
	w.log.Info("Starting write task worker pool", "concurrency", w.cfg.Concurrency, "max_attempts", w.cfg.MaxAttempts, "ops", w.registry.Ops())
	for i := 0; i < w.cfg.Concurrency; i++ {
		go w.runLoop(ctx, i+1)
	}
}

func (w *Worker) runLoop(ctx context.Context, workerID int) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Worker loop stopped", "worker_id", workerID)
			return
		case <-ticker.C:
			// Keep draining while there is work instead of one task per tick.
			for ctx.Err() == nil {
				claimed, err := w.RunOnce(ctx)
				if err != nil {
					w.log.Warn("ClaimNextRunnable failed", "worker_id", workerID, "error", err)
					break
				}
				if !claimed {
					break
				}
			}
		}
	}
}

// RunOnce claims and executes at most one task. It reports whether a task was claimed.
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	task, err := w.repo.ClaimNextRunnable(dbctx.Context{Ctx: ctx}, w.cfg.MaxAttempts, w.cfg.RetryDelay, w.cfg.StaleRunning)
	if err != nil {
		return false, err
	}
	if task == nil {
		return false, nil
	}

	jc := runtime.NewContext(ctx, w.db, task, w.repo, w.notify, w.cfg.MaxAttempts)
	log := w.log.With("task_id", task.ID, "op", task.Op, "attempt", task.Attempts)
	if kv := ctxutil.LogFields(jc.Ctx); len(kv) > 0 {
		log = log.With(kv...)
	}

	h, ok := w.registry.Get(task.Op)
	if !ok {
		log.Warn("No handler registered for op")
		jc.Fail("dispatch", &missingHandlerError{Op: task.Op})
		return true, nil
	}

	start := time.Now()
	outcome := "committed"
	func() {
		defer func() {
			if r := recover(); r != nil {
				outcome = "panic"
				log.Error("Write task handler panic", "panic", r)
				jc.Fail("panic", errFromRecover(r))
			}
		}()
		if runErr := h.Run(jc); runErr != nil {
			outcome = "failed"
			log.Warn("Write task failed", "error", runErr)
			jc.Fail("run", runErr)
		}
	}()
	observability.Current().ObserveWriteTask(task.Op, outcome, time.Since(start))
	return true, nil
}

// Drain runs tasks until none is runnable. Failed tasks waiting out the retry
// delay are left for the pool.
func (w *Worker) Drain(ctx context.Context) (int, error) {
	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		claimed, err := w.RunOnce(ctx)
		if err != nil {
			return n, err
		}
		if !claimed {
			return n, nil
		}
		n++
	}
}

type missingHandlerError struct{ Op string }

func (e *missingHandlerError) Error() string { return "no handler registered for op=" + e.Op }

func errFromRecover(v any) error { return &panicError{Val: v} }

type panicError struct{ Val any }

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.Val) }
