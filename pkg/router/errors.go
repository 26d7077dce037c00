package router

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedPayload is returned when a payload lacks a required field.
	ErrMalformedPayload = errors.New("router: malformed payload")

	// ErrUnknownType is returned for notification types the router does not route.
	// It is informational, not a failure.
	ErrUnknownType = errors.New("router: unknown notification type")

	// ErrNativeDisabled is returned when native features are switched off.
	ErrNativeDisabled = errors.New("router: native features disabled")

	// ErrDeepLinkingDisabled is returned when deep linking is switched off.
	ErrDeepLinkingDisabled = errors.New("router: deep linking disabled")

	// ErrInvalidDeepLink is returned when a deep link cannot be parsed.
	ErrInvalidDeepLink = errors.New("router: invalid deep link")

	// ErrUnknownAction is returned when no handler is registered for an action.
	ErrUnknownAction = errors.New("router: unknown native action")
)

// ActionError wraps a failure raised by a native action handler,
// either a returned error or a recovered panic.
type ActionError struct {
	Action string
	Err    error
}

// Error implements the error interface.
func (e *ActionError) Error() string {
	return fmt.Sprintf("router: action %q failed: %v", e.Action, e.Err)
}

// Unwrap returns the underlying error.
func (e *ActionError) Unwrap() error {
	return e.Err
}
