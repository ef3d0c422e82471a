// Package retry runs external calls under a per-attempt timeout with
// exponential backoff between attempts.
package retry

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds a retried call.
type Policy struct {
	// MaxRetries is the number of additional attempts after the first one.
	MaxRetries uint64
	// Timeout applies to each attempt. Zero disables the per-attempt deadline.
	Timeout         time.Duration
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultPolicy allows one retry after 200ms with a 10s per-attempt timeout.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:      1,
		Timeout:         10 * time.Second,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}
}

// Classifier reports whether err is worth another attempt.
type Classifier func(err error) bool

// Do runs op until it succeeds, returns a non-transient error, or the policy
// is exhausted. The last attempt's error is returned unchanged. Cancellation
// of ctx stops retrying and returns ctx.Err().
func Do(ctx context.Context, p Policy, transient Classifier, op func(ctx context.Context) error) error {
	if transient == nil {
		transient = IsTransient
	}

	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, p.MaxRetries), ctx)

	return backoff.Retry(func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}

		attemptCtx := ctx
		if p.Timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, p.Timeout)
			defer cancel()
		}

		err := op(attemptCtx)
		switch {
		case err == nil:
			return nil
		case ctx.Err() != nil:
			return backoff.Permanent(ctx.Err())
		case !transient(err):
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

// IsTransient treats network failures and attempt deadlines as retryable.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
