// deliver.go implements adapter.Emitter: how events reach adapters and
// extensions, and how recipient failures are isolated.

package dispatcher

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jpl-au/bridge/extension"
	"github.com/jpl-au/bridge/internal/adapter"
	"github.com/jpl-au/bridge/internal/log"
)

type dispatchKey struct{}

// begin tags ctx with a dispatch id unless it already has one, so nested
// dispatches share the id of the outermost call. The returned func must be
// called when the dispatch returns; only the outermost call clears the
// abort state.
func (d *Dispatcher) begin(ctx context.Context) (context.Context, func()) {
	if dispatchID(ctx) != "" {
		return ctx, func() {}
	}
	return context.WithValue(ctx, dispatchKey{}, uuid.NewString()), func() { d.aborted = nil }
}

func dispatchID(ctx context.Context) string {
	id, _ := ctx.Value(dispatchKey{}).(string)
	return id
}

// Emit delivers an event emitted by adapter from to the adapters it feeds
// and then, on the plugin track, to extensions of its generation.
func (d *Dispatcher) Emit(ctx context.Context, from adapter.ID, event string, params extension.Params) error {
	for _, child := range d.graph.Children(from) {
		if err := d.deliverAdapter(ctx, child, event, params); err != nil {
			return err
		}
	}
	if from.Track != adapter.TrackPlugin {
		return nil
	}
	return d.Trigger(ctx, from.Generation, event, params)
}

// Trigger delivers a lifecycle event to extensions of generation g.
// Generation 0 extensions are called through their captured hook table;
// extensions without a matching hook are skipped.
func (d *Dispatcher) Trigger(ctx context.Context, g extension.Generation, event string, params extension.Params) error {
	for _, ext := range d.registry.ByGeneration(g) {
		var err error
		if g == extension.Gen0 {
			hook, ok := d.registry.Hooks(ext.Name())[event]
			if !ok || hook == nil {
				continue
			}
			d.observe(ctx, event, ext.Name(), g, false)
			err = hook(ctx, params)
		} else {
			h, ok := ext.(extension.EventHandler)
			if !ok {
				continue
			}
			d.observe(ctx, event, ext.Name(), g, false)
			err = h.HandleEvent(ctx, event, params)
		}
		if err := d.isolate(ctx, event, ext.Name(), g, err); err != nil {
			return err
		}
	}
	return nil
}

// TriggerCustom delivers a custom event to extensions of generation g,
// preferring HandleCustomEvent over HandleEvent. Generation 0 never
// receives custom events.
func (d *Dispatcher) TriggerCustom(ctx context.Context, g extension.Generation, event string, params extension.Params) error {
	if g == extension.Gen0 {
		return nil
	}
	for _, ext := range d.registry.ByGeneration(g) {
		var err error
		switch h := ext.(type) {
		case extension.CustomEventHandler:
			d.observe(ctx, event, ext.Name(), g, true)
			err = h.HandleCustomEvent(ctx, event, params)
		case extension.EventHandler:
			d.observe(ctx, event, ext.Name(), g, true)
			err = h.HandleEvent(ctx, event, params)
		default:
			continue
		}
		if err := d.isolate(ctx, event, ext.Name(), g, err); err != nil {
			return err
		}
	}
	return nil
}

// LoadPlugin loads an extension announced by an old handler into the host
// and registers it as a late extension.
func (d *Dispatcher) LoadPlugin(ctx context.Context, ext extension.Extension) error {
	if ext == nil {
		return extension.Malformed(extension.EventPluginsLoaded, "plugin", "nil extension")
	}
	if err := d.host.LoadPlugin(ext); err != nil {
		return d.isolate(ctx, extension.EventPluginsLoaded, ext.Name(), extension.Classify(ext), err)
	}
	return d.OnExtensionLoaded(ctx, ext)
}

func (d *Dispatcher) deliverAdapter(ctx context.Context, a adapter.Adapter, event string, params extension.Params) error {
	err := a.HandleEvent(ctx, event, params)
	return d.isolate(ctx, event, a.ID().String(), a.Generation(), err)
}

// isolate decides what a recipient failure means for the dispatch.
// Protocol violations and configuration errors propagate; everything else
// is logged, audited and swallowed.
func (d *Dispatcher) isolate(ctx context.Context, event, recipient string, g extension.Generation, err error) error {
	if err == nil {
		return nil
	}

	fatal := errors.Is(err, extension.ErrProtocolViolation) || errors.Is(err, extension.ErrConfiguration)
	if fatal && err == d.aborted {
		// already recorded by the recipient that raised it
		return err
	}
	action := "deliver"
	if fatal {
		action = "abort"
		d.aborted = err
	}
	log.Event("dispatch:"+event, action).
		Extension(recipient).
		Generation(g).
		Dispatch(dispatchID(ctx)).
		Write(err)

	if fatal {
		return err
	}
	d.logger.Warn("extension event error",
		slog.String("event", event),
		slog.String("extension", recipient),
		slog.String("generation", g.String()),
		slog.String("dispatch", dispatchID(ctx)),
		slog.String("error", err.Error()),
	)
	return nil
}

func (d *Dispatcher) observe(ctx context.Context, event, name string, g extension.Generation, custom bool) {
	if d.observer == nil {
		return
	}
	d.observer(Delivery{
		DispatchID: dispatchID(ctx),
		Event:      event,
		Extension:  name,
		Generation: g.String(),
		Custom:     custom,
	})
}
