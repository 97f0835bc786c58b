// Package jobs runs best-effort background work detached from the request
// that scheduled it. A failing or panicking job is logged and dropped; it
// never reaches the caller.
package jobs

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
)

// DefaultTimeout bounds a job when the runner has no timeout configured
const DefaultTimeout = 2 * time.Minute

// Func is one unit of background work
type Func func(ctx context.Context) error

// Config holds the runner configuration
type Config struct {
	Logger  *zap.Logger
	Timeout time.Duration
}

// Runner supervises submitted jobs
type Runner struct {
	logger  *zap.Logger
	timeout time.Duration

	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
	running int
}

// NewRunner creates a runner. A nil config gets a no-op logger and the
// default timeout.
func NewRunner(cfg *Config) *Runner {
	r := &Runner{logger: zap.NewNop(), timeout: DefaultTimeout}
	if cfg != nil {
		if cfg.Logger != nil {
			r.logger = cfg.Logger
		}
		if cfg.Timeout > 0 {
			r.timeout = cfg.Timeout
		}
	}
	return r
}

// Submit starts fn in its own goroutine. The job's context keeps the values
// of ctx but not its cancellation. Returns errors.Unavailable once the
// runner is shutting down.
func (r *Runner) Submit(ctx context.Context, name string, fn Func) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return errors.Unavailablef("job runner is shut down, dropping %s", name)
	}
	r.running++
	r.wg.Add(1)
	r.mu.Unlock()

	jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	go func() {
		defer r.wg.Done()
		defer cancel()
		defer func() {
			r.mu.Lock()
			r.running--
			r.mu.Unlock()
		}()

		start := time.Now()
		if err := r.run(jobCtx, fn); err != nil {
			r.logger.Error("background job failed",
				zap.String("job", name),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err),
			)
			return
		}
		r.logger.Debug("background job finished",
			zap.String("job", name),
			zap.Duration("duration", time.Since(start)),
		)
	}()
	return nil
}

func (r *Runner) run(ctx context.Context, fn Func) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = errors.Internalf("panic: %v", recovered).
				WithMeta("stack", string(debug.Stack()))
		}
	}()
	if err := fn(ctx); err != nil {
		return fmt.Errorf("job returned: %w", err)
	}
	return nil
}

// Running reports how many jobs have not finished
func (r *Runner) Running() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Shutdown stops accepting jobs and waits for running ones or ctx
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.DeadlineExceededf("%d background jobs still running", r.Running())
	}
}
