package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// throttle is an http.RoundTripper that holds each outbound request until
// the token bucket admits it.
type throttle struct {
	limiter *rate.Limiter
	rps     float64
	burst   int
	next    http.RoundTripper
	logger  *slog.Logger
}

func newThrottle(rps float64, burst int, logger *slog.Logger, next http.RoundTripper) *throttle {
	if burst < 1 {
		burst = 1
	}
	return &throttle{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		rps:     rps,
		burst:   burst,
		next:    next,
		logger:  logger,
	}
}

func (t *throttle) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()

	if !t.limiter.Allow() {
		start := time.Now()
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
		t.logger.Debug("throttled request", "waited", time.Since(start).String(), "rate", t.rps, "burst", t.burst)
	}

	return t.next.RoundTrip(r)
}
