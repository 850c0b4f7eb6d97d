// SPDX-License-Identifier: Apache-2.0

// Package call provides a generic executor for outbound provider calls. The
// executor composes two explicit collaborators: a bounded retry policy with
// exponential backoff and a token-bucket rate gate. Both are cross-cutting
// concerns of the adapters, kept out of the configuration engine itself.
package call

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/lherron/agentconf/internal/logger"
)

// RetryPolicy bounds how often and how patiently an operation is retried.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, including the first.
	// Values below 1 behave as 1.
	MaxAttempts int

	// InitialBackoff is the delay before the second attempt.
	InitialBackoff time.Duration

	// MaxBackoff caps the delay between attempts. Zero means uncapped.
	MaxBackoff time.Duration

	// Multiplier scales the delay after each failed attempt. Values at or
	// below 1 disable growth.
	Multiplier float64
}

// DefaultRetryPolicy mirrors the retry behavior of the generated agent
// projects: up to 3 attempts with exponential backoff from 1s to 10s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: time.Second,
		MaxBackoff:     10 * time.Second,
		Multiplier:     2,
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as non-retryable: the executor returns it immediately
// without consuming further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}

	return &permanentError{err: err}
}

// Executor runs operations through a rate gate and a retry loop.
type Executor struct {
	policy RetryPolicy
	gate   *rate.Limiter
	log    *logger.Logger
}

// NewExecutor constructs an *Executor with the given policy and rate gate.
// A nil gate disables rate limiting; log may be nil for a silent executor.
func NewExecutor(policy RetryPolicy, gate *rate.Limiter, log *logger.Logger) *Executor {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	if log == nil {
		log = logger.Nop()
	}

	return &Executor{policy: policy, gate: gate, log: log}
}

// Do executes op, waiting on the rate gate before every attempt and retrying
// failures according to the policy. It stops early when ctx is done, when op
// succeeds, or when op returns an error marked with [Permanent].
//
// Returns nil on success; otherwise the last error wrapped with the number
// of attempts made.
func (e *Executor) Do(ctx context.Context, op func(context.Context) error) error {
	backoff := e.policy.InitialBackoff
	var lastErr error

	for attempt := 1; attempt <= e.policy.MaxAttempts; attempt++ {
		if e.gate != nil {
			if err := e.gate.Wait(ctx); err != nil {
				return fmt.Errorf("rate gate: %w", err)
			}
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return perm.err
		}

		if attempt == e.policy.MaxAttempts {
			break
		}

		e.log.Warn().
			Err(lastErr).
			Int("attempt", attempt).
			Dur("backoff", backoff).
			Msg("call failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff = e.nextBackoff(backoff)
	}

	return fmt.Errorf("call failed after %d attempts: %w", e.policy.MaxAttempts, lastErr)
}

func (e *Executor) nextBackoff(current time.Duration) time.Duration {
	if e.policy.Multiplier <= 1 {
		return current
	}

	next := time.Duration(float64(current) * e.policy.Multiplier)
	if e.policy.MaxBackoff > 0 && next > e.policy.MaxBackoff {
		next = e.policy.MaxBackoff
	}

	return next
}
