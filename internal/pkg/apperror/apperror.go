package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrMissingCredential = errors.New("missing credential")
	ErrUpstream          = errors.New("upstream request failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidInput      = errors.New("invalid input")
)

// ConfigurationError is returned before any network call when a credential
// or identifier is absent.
type ConfigurationError struct {
	Keys []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s not set", strings.Join(e.Keys, ", "))
}

func (e *ConfigurationError) Unwrap() error {
	return ErrMissingCredential
}

// UpstreamError carries the status and body of a non-success response from
// the record store, the language model or the chat platform.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s API error: %d %s", e.Service, e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstream
}

// AppError maps an error onto an HTTP status for the API layer.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func IsConfiguration(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

func IsUpstream(err error) bool {
	var upErr *UpstreamError
	return errors.As(err, &upErr)
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Warning kinds are non-fatal data signals. They are logged and counted,
// never returned as errors.
const (
	WarningDataQuality = "DATA_QUALITY"
	WarningEmptyResult = "EMPTY_RESULT"
)

type Warning struct {
	Kind    string
	Message string
	Values  []string
}
