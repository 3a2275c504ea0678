package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation Kind = "validation_error"
	KindPermission Kind = "permission_denied"
	KindStaleState Kind = "stale_state"
	KindNotFound   Kind = "not_found"
	KindTransient  Kind = "transient_error"
)

type AppError struct {
	Kind    Kind
	Message string
	Meta    map[string]string
}

func (e *AppError) Error() string {
	if len(e.Meta) == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Meta)
}

func Validation(msg string) error {
	return &AppError{Kind: KindValidation, Message: msg}
}

func Validationf(format string, args ...interface{}) error {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Permission(msg string) error {
	return &AppError{Kind: KindPermission, Message: msg}
}

func NotFound(msg string) error {
	return &AppError{Kind: KindNotFound, Message: msg}
}

// Stale reports a transition attempted against a document that has already
// moved past the expected state. The message carries the current state so
// callers can tell the user to refresh rather than retry.
func Stale(currentState string) error {
	return &AppError{
		Kind:    KindStaleState,
		Message: fmt.Sprintf("already %s", currentState),
		Meta:    map[string]string{"current_state": currentState},
	}
}

func Transient(msg string) error {
	return &AppError{Kind: KindTransient, Message: msg}
}

// KindOf extracts the error kind, defaulting to transient for errors that
// did not originate in this package (network, database driver).
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindTransient
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
