package api

import (
	"fmt"

	"github.com/pkg/errors"
)

// NetworkError is returned when the server could not be reached, answered
// with a non-success HTTP status, or sent a body that is not a response.
type NetworkError struct {
	Op  string
	Err error
}

func (err *NetworkError) Error() string {
	return fmt.Sprintf("%s: server not responding: %v", err.Op, err.Err)
}

// Unwrap returns the underlying error.
func (err *NetworkError) Unwrap() error { return err.Err }

// Cause returns the underlying error for errors.Cause.
func (err *NetworkError) Cause() error { return err.Err }

// APIError is returned when the server answered with status "error".
type APIError struct {
	Op      string
	Message string
}

func (err *APIError) Error() string {
	if err.Message == "" {
		return err.Op + ": server error"
	}
	return err.Op + ": " + err.Message
}

// IsNetwork returns true if err is or wraps a *NetworkError.
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsAPI returns true if err is or wraps an *APIError.
func IsAPI(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// Message returns the text to show the user for err.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
