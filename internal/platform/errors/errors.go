package errors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindConfig    Kind = "config"
	KindTransport Kind = "transport"
	KindAuth      Kind = "auth"
	KindStepUp    Kind = "stepup"
	KindBusiness  Kind = "business"
	KindStorage   Kind = "storage"
	KindBootstrap Kind = "bootstrap"
	KindUnknown   Kind = "unknown"
)

// Machine readable codes shared with the remote service.
const (
	CodeNetworkError = "NETWORK_ERROR"
	CodeOTPRequired  = "OTP_REQUIRED"
	CodeNoSession    = "NO_SESSION"
)

type Error struct {
	Kind    Kind
	Op      string
	Code    string
	Message string
	Details string
	Status  int
	Cause   error
}

func (e *Error) Error() string {
	switch {
	case e.Cause != nil:
		return fmt.Sprintf("[%s:%s] %s: %v", e.Kind, e.Op, e.Message, e.Cause)
	case e.Code != "":
		return fmt.Sprintf("[%s:%s] %s (%s)", e.Kind, e.Op, e.Message, e.Code)
	default:
		return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Op, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Wrap(kind Kind, op, message string, err error) *Error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}

	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
		Cause:   err,
	}
}

func New(kind Kind, op, message string) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
	}
}

// NewRemote builds an error from the structured failure body returned by the
// remote service.
func NewRemote(kind Kind, op, code, message, details string, status int) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Code:    code,
		Message: message,
		Details: details,
		Status:  status,
	}
}

// IsKind checks whether any error in the chain matches the provided kind.
func IsKind(err error, kind Kind) bool {
	var target *Error
	for err != nil {
		if errors.As(err, &target) {
			return target.Kind == kind
		}
		err = errors.Unwrap(err)
	}
	return false
}

// CodeOf returns the machine readable code carried by the error chain, or the
// empty string for untyped errors.
func CodeOf(err error) string {
	var target *Error
	if errors.As(err, &target) {
		return target.Code
	}
	return ""
}

// MessageOf returns the human readable message for presentation, falling back
// to the plain error text for untyped errors.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var target *Error
	if errors.As(err, &target) && target.Message != "" {
		return target.Message
	}
	return err.Error()
}

// IsStepUp reports whether the error is the distinguished "resubmit with a
// one-time code" signal rather than a terminal failure.
func IsStepUp(err error) bool {
	return IsKind(err, KindStepUp)
}
