package core

import "github.com/pkg/errors"

var (
	// ErrUnauthorized is returned when the capability token is missing, invalid or expired,
	// or when the admin secret does not match.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned when a requested record does not exist yet.
	ErrNotFound = errors.New("not found")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// UpstreamError wraps a failure of an external collaborator (generation service, store).
// Code is safe to show to clients, Err is for the logs only.
type UpstreamError struct {
	Code string
	Err  error
}

func NewUpstreamError(code string, err error) error {
	return &UpstreamError{Code: code, Err: err}
}

func (err UpstreamError) Error() string {
	if err.Err == nil {
		return err.Code
	}
	return err.Code + ": " + err.Err.Error()
}

func (err UpstreamError) Unwrap() error { return err.Err }

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
