package prompt

import (
	"errors"
	"fmt"
)

// Sentinel errors for prompt sessions.
var (
	// ErrBlurred reports that the host blurred a prompt that does not
	// ignore blur; the session was cancelled without a value.
	ErrBlurred = errors.New("prompt: blurred")

	// ErrSuperseded reports that a newer session took over the controller.
	ErrSuperseded = errors.New("prompt: superseded by a newer session")

	// ErrTransport is matched by every *TransportError.
	ErrTransport = errors.New("prompt: transport failed")

	// ErrUnknownChannel reports an inbound event on a channel the
	// controller does not handle.
	ErrUnknownChannel = errors.New("prompt: unknown channel")
)

// FallbackPreview is rendered when a preview callback fails.
const FallbackPreview = "Failed to render preview"

// TransportError reports that the host channel closed or delivered a
// malformed message. It is fatal to the session and never retried.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "prompt: transport failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrTransport) match any TransportError.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// GeneratorError reports that the choice source failed for an input. It is
// fatal to the session: generators are expected to handle recoverable
// errors themselves.
type GeneratorError struct {
	Input string
	Err   error
}

func (e *GeneratorError) Error() string {
	return fmt.Sprintf("prompt: generator failed for input %q: %v", e.Input, e.Err)
}

func (e *GeneratorError) Unwrap() error { return e.Err }

// asTransportError wraps err unless it already is a TransportError.
func asTransportError(err error) error {
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Err: err}
}
