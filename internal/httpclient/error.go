package httpclient

import (
	goerrors "errors"
	"fmt"

	"github.com/flexprice/recurly-client/internal/errors"
)

// Error is returned by Send for any response with a status of 400 or above
type Error struct {
	*errors.InternalError
	StatusCode int
	Response   []byte
}

func (e *Error) Unwrap() error {
	return e.InternalError
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: status %d", e.InternalError.Error(), e.StatusCode)
}

// NewError creates a new HTTP client error
func NewError(statusCode int, response []byte) *Error {
	return &Error{
		InternalError: errors.New(errors.ErrCodeHTTPClient, "http client error"),
		StatusCode:    statusCode,
		Response:      response,
	}
}

// IsHTTPError checks if an error is an HTTP client error
func IsHTTPError(err error) (*Error, bool) {
	var httpErr *Error
	if goerrors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}
