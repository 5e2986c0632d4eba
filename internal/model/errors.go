package model

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every error returned synchronously from Start
	ErrValidation = errors.New("validation failed")

	// ErrBusy means the controller already has an active task
	ErrBusy = fmt.Errorf("%w: a task is already active", ErrValidation)

	// ErrAborted is the abort signal a feedback hook returns to unwind a
	// blocking engine call after cancellation. It never surfaces as a failure.
	ErrAborted = errors.New("download stopped by user")
)

// ValidationError describes a rejected request field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrValidation
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// TransferError wraps an engine or backing-service failure
type TransferError struct {
	Err error
}

func (e *TransferError) Error() string {
	if e.Err == nil {
		return "transfer failed"
	}
	return e.Err.Error()
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// CleanupWarning records a partial file that could not be deleted. It is
// folded into the terminal message text and never changes the outcome.
type CleanupWarning struct {
	Path string
	Err  error
}

func (w *CleanupWarning) Error() string {
	return fmt.Sprintf("Partial file could not be deleted: %v\nPlease delete manually:\n%s", w.Err, w.Path)
}

func (w *CleanupWarning) Unwrap() error {
	return w.Err
}

// IsAbort reports whether err is the cancellation abort signal
func IsAbort(err error) bool {
	return errors.Is(err, ErrAborted)
}
