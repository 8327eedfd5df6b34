package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/yogeshhk/MiningResume/internal/common"
	"github.com/yogeshhk/MiningResume/internal/provider"
)

// Policy bounds retries of provider calls with exponential backoff: attempt n
// waits InitialWait * BackoffFactor^(n-1). No jitter.
type Policy struct {
	MaxAttempts   int
	InitialWait   time.Duration
	BackoffFactor float64
	Logger        *slog.Logger

	// OnRetry, when set, fires once per re-attempt (not for the first try).
	OnRetry func()
}

func NewPolicy(cfg common.RetryConfig, logger *slog.Logger) Policy {
	if logger == nil {
		logger = slog.Default()
	}
	p := Policy{
		MaxAttempts:   cfg.MaxAttempts,
		InitialWait:   cfg.InitialWait,
		BackoffFactor: cfg.BackoffFactor,
		Logger:        logger,
	}
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.InitialWait <= 0 {
		p.InitialWait = time.Second
	}
	if p.BackoffFactor <= 0 {
		p.BackoffFactor = 2.0
	}
	return p
}

// backoff yields the deterministic exponential wait sequence.
func (p Policy) backoff() retry.Backoff {
	wait := p.InitialWait
	var b retry.BackoffFunc = func() (time.Duration, bool) {
		cur := wait
		wait = time.Duration(float64(wait) * p.BackoffFactor)
		return cur, false
	}
	return retry.WithMaxRetries(uint64(p.MaxAttempts-1), b)
}

// Do runs fn, retrying transient failures. Validation and configuration
// errors propagate on first occurrence. When every attempt fails with a
// transient error, the returned error wraps common.ErrRetryExhausted together
// with the last underlying error.
func (p Policy) Do(ctx context.Context, op string, fn func(ctx context.Context) (*provider.Response, error)) (*provider.Response, error) {
	var resp *provider.Response
	var lastErr error
	attempt := 0

	err := retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		attempt++
		if attempt > 1 && p.OnRetry != nil {
			p.OnRetry()
		}
		r, err := fn(ctx)
		if err != nil {
			lastErr = err
			if common.IsRetryable(err) {
				p.Logger.Warn("retry.attempt_failed",
					"op", op,
					"attempt", attempt,
					"max_attempts", p.MaxAttempts,
					"error", err,
				)
				return retry.RetryableError(err)
			}
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		if common.IsRetryable(lastErr) && attempt >= p.MaxAttempts {
			p.Logger.Error("retry.exhausted", "op", op, "attempts", attempt, "last_error", lastErr)
			return nil, fmt.Errorf("%w after %d attempts: %w", common.ErrRetryExhausted, attempt, lastErr)
		}
		return nil, err
	}
	return resp, nil
}
