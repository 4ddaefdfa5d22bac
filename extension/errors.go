// errors.go defines the failure taxonomy of the dispatcher.
//
// Design: Each failure class has a sentinel (for errors.Is) and a typed
// error carrying the details (for errors.As). Typed errors report the
// sentinel through Is, so callers rarely need the concrete type:
//
//	if errors.Is(err, extension.ErrProtocolViolation) { ... }

package extension

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration is returned when an adapter cannot be constructed or
	// declares a dependency that cannot be resolved.
	ErrConfiguration = errors.New("configuration error")
	// ErrMalformedEvent is returned when a translation step expects a
	// parameter or field the event does not carry.
	ErrMalformedEvent = errors.New("malformed event")
	// ErrProtocolViolation is returned when an old-generation handler does
	// something the newer protocol forbids.
	ErrProtocolViolation = errors.New("protocol violation")
)

// ConfigurationError reports an adapter that could not be loaded.
type ConfigurationError struct {
	Adapter string // adapter id, e.g. "plugin/1"
	Reason  string
	Err     error // underlying cause, may be nil
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("adapter %s: %s", e.Adapter, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }
func (e *ConfigurationError) Unwrap() error        { return e.Err }

// MalformedEventError reports a missing or mistyped event parameter.
type MalformedEventError struct {
	Event  string
	Field  string // parameter index ("#1") or map key ("meta")
	Reason string
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("event %s: %s: %s", e.Event, e.Field, e.Reason)
}

func (e *MalformedEventError) Is(target error) bool { return target == ErrMalformedEvent }

// Violation names what an old-generation handler attempted.
type Violation string

const (
	ViolationRemove  Violation = "remove"
	ViolationReplace Violation = "replace"
)

// ProtocolViolationError reports a forbidden operation by an old handler.
// It is fatal to the dispatch that triggered it.
type ProtocolViolationError struct {
	Event      string
	Generation Generation
	Behaviour  Violation
	Names      []string // plugin names involved, sorted
}

func (e *ProtocolViolationError) Error() string {
	verb := "unload"
	if e.Behaviour == ViolationReplace {
		verb = "replace"
	}
	return fmt.Sprintf("a %s extension tried to %s '%s' using the %s event, however, this was removed with %s",
		e.Generation, verb, strings.Join(e.Names, "', '"), e.Event, e.Generation+1)
}

func (e *ProtocolViolationError) Is(target error) bool { return target == ErrProtocolViolation }

// Malformed is a shorthand constructor used by translation code.
func Malformed(event, field, reason string) error {
	return &MalformedEventError{Event: event, Field: field, Reason: reason}
}
