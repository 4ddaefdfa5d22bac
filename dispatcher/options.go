package dispatcher

import (
	"errors"
	"log/slog"

	"github.com/jpl-au/bridge/internal/adapter"
)

// Option configures a Dispatcher.
type Option func(*Dispatcher) error

// WithLogger sets the logger for isolated delivery failures.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) error {
		if l == nil {
			return errors.New("dispatcher: nil logger")
		}
		d.logger = l
		return nil
	}
}

// WithAdapter replaces the factory of one adapter. Used by hosts that ship
// their own translation for a generation, and by tests.
func WithAdapter(id adapter.ID, f adapter.Factory) Option {
	return func(d *Dispatcher) error {
		if f == nil {
			return errors.New("dispatcher: nil adapter factory for " + id.String())
		}
		d.factories[id] = f
		return nil
	}
}

// WithoutDefaultAdapters starts from an empty adapter set. Only adapters
// added with WithAdapter are available.
func WithoutDefaultAdapters() Option {
	return func(d *Dispatcher) error {
		clear(d.factories)
		return nil
	}
}

// WithObserver installs a callback invoked for every delivery to an
// extension, before the extension runs.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) error {
		d.observer = o
		return nil
	}
}

// Observer sees every delivery the dispatcher makes to an extension.
type Observer func(d Delivery)

// Delivery describes one call into an extension.
type Delivery struct {
	DispatchID string
	Event      string // name under which the extension receives it
	Extension  string
	Generation string
	Custom     bool
}
