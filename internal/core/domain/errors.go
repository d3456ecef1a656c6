package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity or remote resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrRateLimited indicates a remote backend refused the request due to rate limits.
	ErrRateLimited = errors.New("rate limited")

	// ErrStorage indicates the durable store failed.
	// It is the only failure allowed to escape an update check.
	ErrStorage = errors.New("storage failure")

	// ErrParse indicates a payload did not have the expected shape.
	ErrParse = errors.New("unexpected payload shape")

	// ErrIntegrity indicates a payload did not match its manifest digest.
	ErrIntegrity = errors.New("integrity check failed")

	// Index Errors.

	// ErrIncompatibleArtifact indicates a persisted index was written in another format.
	ErrIncompatibleArtifact = errors.New("incompatible index artifact")

	// ErrCorruptArtifact indicates a persisted index failed its checksum or could not be decoded.
	ErrCorruptArtifact = errors.New("corrupt index artifact")

	// ErrNotReady indicates the search index has not been loaded yet.
	ErrNotReady = errors.New("search index not ready")
)

// FetchError describes a failed remote request.
type FetchError struct {
	// Path is the requested resource path or URL.
	Path string

	// StatusCode is the HTTP status, or zero for transport failures.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Path, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError builds a FetchError whose cause reflects the HTTP status.
// 404 maps to ErrNotFound and 429 to ErrRateLimited.
func NewFetchError(path string, status int) *FetchError {
	var cause error
	switch status {
	case http.StatusNotFound:
		cause = ErrNotFound
	case http.StatusTooManyRequests:
		cause = ErrRateLimited
	default:
		cause = fmt.Errorf("unexpected status %s", http.StatusText(status))
	}
	return &FetchError{Path: path, StatusCode: status, Err: cause}
}

// StorageError wraps a failure of the durable store.
type StorageError struct {
	// Op names the failed operation, e.g. "replace units".
	Op string

	// Err is the underlying driver error.
	Err error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns both ErrStorage and the driver error.
func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

// NewStorageError wraps err as a StorageError, or returns nil when err is nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// IsNotFound reports whether err indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRateLimited reports whether err indicates a rate limit.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsStorage reports whether err originates from the durable store.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}
