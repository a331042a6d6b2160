package ratelimiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter throttles per-connection command processing using the token
// bucket algorithm from golang.org/x/time/rate.
//
// Tokens are added to the bucket at a constant rate (commands per second)
// and each command consumes one. Burst capacity allows temporary spikes
// above the sustained rate. With no tokens available, Wait parks the
// caller until one is replenished or the context is cancelled; commands
// are throttled, never rejected, so the wire protocol is unaffected.
//
// Thread safety: all methods are safe for concurrent use.
type RateLimiter struct {
	limiter *rate.Limiter
}

// New creates a RateLimiter allowing commandsPerSecond sustained and
// burst immediate commands.
//
// commandsPerSecond = 0 disables limiting (effectively unlimited rate).
// A burst below the sustained rate is raised to it, so a full second of
// tokens always fits the bucket.
func New(commandsPerSecond, burst uint) *RateLimiter {
	if commandsPerSecond == 0 {
		// Unlimited: a very large limit avoids rate.Inf edge cases.
		commandsPerSecond = 1_000_000_000
		burst = commandsPerSecond
	}
	if burst < commandsPerSecond {
		burst = commandsPerSecond
	}

	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(commandsPerSecond), int(burst)),
	}
}

// Allow reports whether a command may proceed right now, consuming a
// token if so. This is the non-blocking fast path.
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// Wait blocks until a token is available or the context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// Tokens returns the current number of available tokens. Monitoring and
// test use only; the value may change immediately after the call.
func (r *RateLimiter) Tokens() float64 {
	return r.limiter.TokensAt(time.Now())
}
