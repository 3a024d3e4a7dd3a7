package llm

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// Retrying wraps a Completer with exponential backoff. Only transport errors
// and temporary HTTP statuses are retried. ErrInvalidResponse fails at once,
// and an empty completion is returned as-is so the caller can treat it as a
// failure.
type Retrying struct {
	next       Completer
	maxRetries int
	initial    time.Duration
	logger     *zap.Logger
}

// NewRetrying returns a Completer that retries next up to maxRetries times.
func NewRetrying(next Completer, maxRetries int, logger *zap.Logger) *Retrying {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Retrying{next: next, maxRetries: maxRetries, initial: 500 * time.Millisecond, logger: logger}
}

// Complete implements Completer.
func (r *Retrying) Complete(ctx context.Context, req Request) (string, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initial
	b.MaxInterval = 20 * time.Second

	op := func() (string, error) {
		text, err := r.next.Complete(ctx, req)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil || !retryable(err) {
			return "", backoff.Permanent(err)
		}
		return "", err
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(r.maxRetries+1)),
		backoff.WithNotify(func(err error, d time.Duration) {
			r.logger.Warn("retrying completion",
				zap.String("model", req.Model),
				zap.Duration("delay", d),
				zap.Error(err),
			)
		}),
	)
}

func retryable(err error) bool {
	if errors.Is(err, ErrInvalidResponse) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
