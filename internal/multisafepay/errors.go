package multisafepay

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument marks request values MultiSafepay would reject before sending.
var ErrInvalidArgument = errors.New("invalid argument")

// InvalidArgumentError is a validation failure raised while assembling a request.
// It matches ErrInvalidArgument with errors.Is.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string { return e.Message }

func (e *InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

// NewInvalidArgumentError formats an InvalidArgumentError.
func NewInvalidArgumentError(format string, args ...any) error {
	return &InvalidArgumentError{Message: fmt.Sprintf(format, args...)}
}

func invalidArgument(format string, args ...any) error {
	return NewInvalidArgumentError(format, args...)
}

// APIError is returned when MultiSafepay answered but refused the call.
type APIError struct {
	HTTPStatus int
	Code       int
	Info       string
}

func (e *APIError) Error() string {
	if e.Info == "" {
		return fmt.Sprintf("multisafepay api error (http %d, code %d)", e.HTTPStatus, e.Code)
	}
	return e.Info
}

// ClientError is returned when no usable answer was received: transport failures,
// unreadable or undecodable responses.
type ClientError struct {
	Op  string
	Err error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("multisafepay %s: %v", e.Op, e.Err)
}

func (e *ClientError) Unwrap() error { return e.Err }
