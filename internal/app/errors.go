package app

import (
	"errors"
	"fmt"
	"time"
)

// ErrForbidden and related errors describe failures the dispatcher turns into toasts.
var (
	ErrForbidden     = errors.New("forbidden")
	ErrIOFailure     = errors.New("io failure")
	ErrRateLimited   = errors.New("rate limited")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrWorkerClosed  = errors.New("io worker closed")
)

// Cloud account errors.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountExists      = errors.New("account already exists")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

// RateLimitedError reports how long a throttled call must wait.
type RateLimitedError struct {
	Op         string
	RetryAfter time.Duration
	Until      time.Time
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s rate limited: retry in %s", e.Op, e.RetryAfter.Round(time.Second))
}

func (e *RateLimitedError) Unwrap() error {
	return ErrRateLimited
}

// IsNotice reports errors that are informational rather than failures.
func IsNotice(err error) bool {
	return errors.Is(err, ErrNothingToUndo) || errors.Is(err, ErrNothingToRedo)
}

// ioError wraps err with ErrIOFailure unless it already carries a more specific kind.
func ioError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrIOFailure),
		errors.Is(err, ErrRateLimited),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrAccountExists),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidResetToken):
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrIOFailure, err)
}
