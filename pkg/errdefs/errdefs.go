// Package errdefs defines the error taxonomy shared across runctl:
// Conflict, NotFound, Validation, CloudProvider and Transient. The retry
// package uses IsRetryable to decide which failures are worth another
// attempt; everything unclassified is treated as permanent.
package errdefs

import (
	"errors"
	"fmt"
	"net"
)

// ConflictError reports a duplicate registration.
type ConflictError struct {
	Resource string
	ID       string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Resource, e.ID)
}

// NotFoundError reports an operation against an untracked ID.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// ValidationError reports malformed input. Never retried: retrying
// cannot change a deterministically wrong input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CloudProviderError wraps a failed cloud API call. Retryable: throttling
// and brief network loss are expected for these calls.
type CloudProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *CloudProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s provider: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s provider: %s", e.Provider, e.Message)
}

func (e *CloudProviderError) Unwrap() error { return e.Err }

// TransientError marks an arbitrary failure as retryable without
// attributing it to a provider.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

func IsConflict(err error) bool {
	var t *ConflictError
	return errors.As(err, &t)
}

func IsNotFound(err error) bool {
	var t *NotFoundError
	return errors.As(err, &t)
}

func IsValidation(err error) bool {
	var t *ValidationError
	return errors.As(err, &t)
}

// IsRetryable reports whether err is expected to be transient. Cloud
// provider failures, explicitly marked transient errors and network
// timeouts qualify; anything else fails safe and is not retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var cloud *CloudProviderError
	if errors.As(err, &cloud) {
		return true
	}
	var transient *TransientError
	if errors.As(err, &transient) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
