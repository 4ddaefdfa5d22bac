// Package extension defines the contract between the host core, its
// extensions and the version-bridging dispatcher. Extensions are written
// against one generation of the event API; the dispatcher classifies them
// once at registration and translates native events into the calling
// convention each generation expects.
package extension

import "context"

// Extension is the minimal contract: a unique, stable name.
type Extension interface {
	// Name returns a unique identifier for this extension.
	Name() string
}

// EventHandler extensions receive events through a single entry point.
// An EventHandler that does not implement Versioned is generation 1.
type EventHandler interface {
	Extension
	HandleEvent(ctx context.Context, event string, params Params) error
}

// Versioned extensions declare the generation they target.
type Versioned interface {
	APIVersion() Generation
}

// CustomEventHandler is an optional capability of generation 1 and later
// extensions. When present it receives events that are not part of the
// fixed lifecycle set; otherwise such events go to HandleEvent.
type CustomEventHandler interface {
	HandleCustomEvent(ctx context.Context, event string, params Params) error
}

// HookFunc handles one generation 0 event.
type HookFunc func(ctx context.Context, params Params) error

// Hooks maps generation 0 event names (e.g. "config_loaded") to handlers.
type Hooks map[string]HookFunc

// HookProvider is implemented by generation 0 extensions, which predate
// HandleEvent and expose one callback per event name. The table is read
// once, when the extension is registered.
type HookProvider interface {
	Hooks() Hooks
}

// Classify returns the generation of ext.
//
// Extensions implementing neither EventHandler nor Versioned are generation
// 0. An EventHandler without a declared version is generation 1. Otherwise
// the declared version is used; an unknown declaration falls back to 0.
func Classify(ext Extension) Generation {
	v, versioned := ext.(Versioned)
	_, handler := ext.(EventHandler)

	switch {
	case versioned:
		if g := v.APIVersion(); g.Valid() {
			return g
		}
		return Gen0
	case handler:
		return Gen1
	default:
		return Gen0
	}
}
