package bench

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/abdul-hamid-achik/hitcore/packages/http"
)

// Sender sends one request. *http.Client satisfies it.
type Sender interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Option configures a Runner
type Option func(*Runner)

// WithLogger sets the logger used for per-worker debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithProgress registers fn to be called after each completed request with
// the number completed so far. fn is called from worker goroutines.
func WithProgress(fn func(done int64)) Option {
	return func(r *Runner) {
		r.progress = fn
	}
}

// Runner drives workers that share one Sender and one request.
type Runner struct {
	sender   Sender
	config   *Config
	metrics  *Metrics
	limiter  *rate.Limiter
	logger   *slog.Logger
	progress func(int64)

	issued atomic.Int64
	done   atomic.Int64
}

func NewRunner(sender Sender, cfg *Config, opts ...Option) (*Runner, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Runner{
		sender:  sender,
		config:  cfg,
		metrics: NewMetrics(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if cfg.Rate > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run sends req until the request count is reached or the duration ends.
// A request cut short by the end of the run is not counted. If ctx is
// cancelled the partial summary is returned together with ctx.Err().
func (r *Runner) Run(ctx context.Context, req *http.Request) (*Summary, error) {
	runCtx := ctx
	if r.config.Duration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.config.Duration)
		defer cancel()
	}

	r.metrics.Start()
	var wg sync.WaitGroup
	for i := 0; i < r.config.Concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			r.worker(runCtx, id, req)
		}(i)
	}
	wg.Wait()
	r.metrics.Stop()

	return r.metrics.Summary(), ctx.Err()
}

func (r *Runner) worker(ctx context.Context, id int, req *http.Request) {
	sent := 0
	defer func() {
		r.logger.Debug("worker finished", "worker", id, "sent", sent)
	}()

	for {
		if r.config.Requests > 0 && r.issued.Add(1) > int64(r.config.Requests) {
			return
		}
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return
			}
		}
		if ctx.Err() != nil {
			return
		}

		start := time.Now()
		resp, err := r.sender.Do(ctx, req)
		elapsed := time.Since(start)
		if err != nil && ctx.Err() != nil {
			return
		}

		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		r.metrics.Record(elapsed, status, err)
		sent++

		n := r.done.Add(1)
		if r.progress != nil {
			r.progress(n)
		}
	}
}

// Run is NewRunner followed by Runner.Run.
func Run(ctx context.Context, sender Sender, req *http.Request, cfg *Config, opts ...Option) (*Summary, error) {
	r, err := NewRunner(sender, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, req)
}
