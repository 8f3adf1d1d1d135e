// Package errors provides custom error types for the gridiron pipeline.
// These errors enable programmatic error checking across the collection
// pipeline, in particular the transient/permanent split that drives the
// scheduler's retry decisions.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the gridiron pipeline.
var (
	// ErrTransient indicates a failure worth retrying (timeouts, 5xx, 429).
	ErrTransient = errors.New("transient source failure")

	// ErrPermanent indicates a failure that must not be retried (404, unparseable body).
	ErrPermanent = errors.New("permanent source failure")

	// ErrUnknownTeam indicates a team string that no alias table entry matched.
	ErrUnknownTeam = errors.New("unknown team")

	// ErrRateLimited indicates the upstream rate limit has been exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrCheckpoint indicates checkpoint storage is unusable. Fatal to a run.
	ErrCheckpoint = errors.New("checkpoint storage failure")

	// ErrInvalidInput indicates that provided input was invalid.
	ErrInvalidInput = errors.New("invalid input")
)

// AdapterError represents a failure while fetching from an external source.
// Transient errors are retried by the scheduler; permanent errors are
// recorded as a miss for that source and query.
type AdapterError struct {
	Source     string
	StatusCode int
	Message    string
	Transient  bool
	Err        error
}

// Error implements the error interface.
func (e *AdapterError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error from %s (status %d): %s", kind, e.Source, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error from %s: %s", kind, e.Source, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *AdapterError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *AdapterError) Is(target error) bool {
	if e.StatusCode == 429 && target == ErrRateLimited {
		return true
	}
	if e.Transient {
		return target == ErrTransient
	}
	return target == ErrPermanent
}

// NewAdapterError creates a new AdapterError. Status codes 429, 5xx and 0
// (no response) are classified transient; everything else is permanent.
func NewAdapterError(source string, statusCode int, message string, err error) *AdapterError {
	return &AdapterError{
		Source:     source,
		StatusCode: statusCode,
		Message:    message,
		Transient:  statusCode == 0 || statusCode == 429 || statusCode >= 500,
		Err:        err,
	}
}

// NormalizationError reports a team string that could not be resolved to a
// canonical team key. It is not a pipeline failure: adapters convert it into
// an unverified-teams flag on the candidate.
type NormalizationError struct {
	Raw string
}

// Error implements the error interface.
func (e *NormalizationError) Error() string {
	return fmt.Sprintf("no canonical team matches %q", e.Raw)
}

// Is implements errors.Is support.
func (e *NormalizationError) Is(target error) bool {
	return target == ErrUnknownTeam
}

// CheckpointError represents a failure reading or writing checkpoint state.
// These are fatal to a run; the last successfully flushed checkpoint remains
// intact on disk.
type CheckpointError struct {
	Operation string // "load", "save"
	Path      string
	Err       error
}

// Error implements the error interface.
func (e *CheckpointError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("checkpoint %s of %s failed: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("checkpoint %s failed: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *CheckpointError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *CheckpointError) Is(target error) bool {
	return target == ErrCheckpoint
}

// ValidationError represents invalid configuration or table construction.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// StoreError represents a failure in the canonical game store.
type StoreError struct {
	Operation string // "list", "update"
	GameID    string
	Err       error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.GameID != "" {
		return fmt.Sprintf("store %s for game %s failed: %v", e.Operation, e.GameID, e.Err)
	}
	return fmt.Sprintf("store %s failed: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Helper functions for error checking.

// IsTransient checks if an error is worth retrying.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsPermanent checks if an error is a non-retryable source failure.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrPermanent)
}

// IsRateLimited checks if an error is a rate limit error.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsUnknownTeam checks if an error is a team normalization miss.
func IsUnknownTeam(err error) bool {
	return errors.Is(err, ErrUnknownTeam)
}

// IsCheckpoint checks if an error is a fatal checkpoint storage failure.
func IsCheckpoint(err error) bool {
	return errors.Is(err, ErrCheckpoint)
}
