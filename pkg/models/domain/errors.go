package domain

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures for callers, which map them to
// transport-level responses.
type Kind string

const (
	KindUnauthenticated     Kind = "unauthenticated"
	KindInvalidArgument     Kind = "invalid-argument"
	KindChartLibraryTimeout Kind = "chart-library-timeout"
	KindRenderTimeout       Kind = "render-timeout"
	KindEngineLaunchFailure Kind = "engine-launch-failure"
	KindInternalRenderError Kind = "internal-render-error"
)

// Error is a classified pipeline error. Stage records where the
// failure originated when it came out of the render state machine.
type Error struct {
	Kind    Kind
	Message string
	Stage   string
	Err     error
}

func (e *Error) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified error wrapping an optional cause.
func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// KindOf extracts the Kind from err, defaulting to
// KindInternalRenderError for unclassified failures.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternalRenderError
}
