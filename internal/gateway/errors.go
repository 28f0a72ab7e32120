package gateway

import (
	"errors"
	"fmt"
)

// Code classifies gateway failures. Permission denials are deliberately
// distinguished from not-found and generic failures so the surface layer can
// show a distinct message for each.
type Code string

const (
	CodePermissionDenied Code = "permission_denied"
	CodeNotFound         Code = "not_found"
	CodeUnavailable      Code = "unavailable"
	CodeInternal         Code = "internal"
)

// Error is the (code, message) pair every gateway call can fail with.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway: %s: %s", e.Code, e.Message)
}

// NewError builds a typed gateway error.
func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// CodeOf extracts the classification from any error returned by a Gateway.
// Errors that are not gateway errors (timeouts, transport failures wrapped by
// callers) classify as unavailable.
func CodeOf(err error) Code {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code
	}
	return CodeUnavailable
}

func IsPermissionDenied(err error) bool { return CodeOf(err) == CodePermissionDenied }
func IsNotFound(err error) bool         { return CodeOf(err) == CodeNotFound }

// UserMessage maps a gateway failure to the human-readable message shown in
// the transient notification feed.
func UserMessage(err error) string {
	switch CodeOf(err) {
	case CodePermissionDenied:
		var ge *Error
		if errors.As(err, &ge) && ge.Message != "" {
			return ge.Message
		}
		return "You do not have permission to perform this action."
	case CodeNotFound:
		return "The requested item could not be found."
	default:
		return "Something went wrong. Please try again."
	}
}
