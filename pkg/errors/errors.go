package errors

import (
	"errors"
	"fmt"
)

var (
	ErrBlankInput            = errors.New("scan input is blank")
	ErrScanInFlight          = errors.New("a scan is already in flight")
	ErrInvalidConfig         = errors.New("invalid configuration")
	ErrNotifierNotConfigured = errors.New("notifier not configured")
	ErrUnknownCard           = errors.New("card not found in current report")
)

// Messages shown to the user when the backend gives nothing better.
const (
	MsgUnknownServerError = "An unknown server error occurred."
	MsgBackendUnreachable = "Unable to reach the scan backend"
	MsgMalformedResponse  = "Malformed backend response"
)

// BackendError is any failed exchange with the scan backend. StatusCode is
// zero when the request never got an HTTP response.
type BackendError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *BackendError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("backend request failed: %s", e.Message)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func NewBackendError(statusCode int, message string, err error) *BackendError {
	return &BackendError{
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

// UserMessage returns the message to display for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var be *BackendError
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	return err.Error()
}

type ConfigError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value: %v): %s", e.Field, e.Value, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

func NewConfigError(field string, value interface{}, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}
