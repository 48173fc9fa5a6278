package core

import (
	"errors"
	"fmt"
)

// Kind is the stable discriminator carried by every engine error.
type Kind string

const (
	KindConfiguration    Kind = "configuration"
	KindAuthentication   Kind = "authentication"
	KindProtectedEntity  Kind = "protected_entity"
	KindRemoteValidation Kind = "remote_validation"
	KindNetwork          Kind = "network"
	KindUnknownEntity    Kind = "unknown_entity"
	// KindInvalidInput covers input rejected locally, before any
	// network call (missing required fields, malformed dates).
	KindInvalidInput Kind = "invalid_input"
)

// Error is the engine's error type. Callers branch on Kind; Message is
// safe to show to users. Err, when set, preserves the transport cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches two engine errors by Kind, so callers can write
// errors.Is(err, &core.Error{Kind: core.KindNetwork}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Errorf builds an engine error with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapErr builds an engine error around a transport-level cause.
func WrapErr(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind from an engine error, or "" for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
