// Package retry wraps calls to remote collaborators with bounded exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Policy configures how many times a call is attempted and how long to wait in between
type Policy struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Backoff     time.Duration `mapstructure:"backoff"`
	MaxBackoff  time.Duration `mapstructure:"max_backoff"`
}

// DefaultPolicy returns 3 attempts with 500ms/1s backoff
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Backoff:     500 * time.Millisecond,
		MaxBackoff:  5 * time.Second,
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// unmarkedError keeps the message of an error that wrapped a Permanent
// marker while unwrapping straight to the marked cause.
type unmarkedError struct {
	msg   string
	cause error
}

func (e *unmarkedError) Error() string { return e.msg }
func (e *unmarkedError) Unwrap() error { return e.cause }

// unmark drops the Permanent marker from err and keeps any context added around it
func unmark(err error) error {
	var p *permanentError
	if !errors.As(err, &p) {
		return err
	}
	if err == error(p) {
		return p.err
	}
	return &unmarkedError{msg: err.Error(), cause: p.err}
}

// Delay returns the wait before attempt n+1 (n starts at 1). The wait doubles
// per attempt up to MaxBackoff; without a cap it saturates instead of overflowing.
func (p Policy) Delay(n int) time.Duration {
	if p.Backoff <= 0 {
		return 0
	}
	d := p.Backoff
	for i := 1; i < n; i++ {
		if p.MaxBackoff > 0 && d >= p.MaxBackoff {
			break
		}
		if d > math.MaxInt64/2 {
			return time.Duration(math.MaxInt64)
		}
		d *= 2
	}
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		return p.MaxBackoff
	}
	return d
}

// Do calls fn until it succeeds, returns a permanent error, the attempts run
// out or ctx is done.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 1; i <= attempts; i++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if IsPermanent(err) {
			return unmark(err)
		}
		lastErr = err

		if i == attempts {
			break
		}
		if err := sleepCtx(ctx, p.Delay(i)); err != nil {
			return fmt.Errorf("retry: context cancelled after %d attempts: %w", i, lastErr)
		}
	}

	return fmt.Errorf("retry: %d attempts failed: %w", attempts, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
