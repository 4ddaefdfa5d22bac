// Package dispatcher is the entry point the host core calls for every
// lifecycle event.
//
// The Dispatcher owns one extension registry and one adapter graph. Native
// events enter at the roots of the adapter graph, are translated down each
// track, and reach extensions of every generation oldest first. Native
// extensions are called last, so they observe every edit older handlers
// made to shared parameters.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/jpl-au/bridge/extension"
	"github.com/jpl-au/bridge/internal/adapter"
	"github.com/jpl-au/bridge/internal/log"
)

// Dispatcher bridges native events to extensions of older generations.
// It is not safe for concurrent Dispatch calls.
type Dispatcher struct {
	host      extension.Host
	registry  *extension.Registry
	graph     *adapter.Graph
	factories map[adapter.ID]adapter.Factory
	logger    *slog.Logger
	observer  Observer

	aborted error // fatal error currently unwinding the dispatch
}

// New creates a Dispatcher for host.
func New(host extension.Host, opts ...Option) (*Dispatcher, error) {
	if host == nil {
		return nil, errors.New("dispatcher: nil host")
	}
	d := &Dispatcher{
		host:      host,
		registry:  extension.NewRegistry(),
		factories: adapter.Defaults(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	d.graph = adapter.NewGraph(adapter.Env{Host: host, Emitter: d})
	for id, f := range d.factories {
		d.graph.Register(id, f)
	}
	return d, nil
}

// Registry returns the extension registry.
func (d *Dispatcher) Registry() *extension.Registry { return d.registry }

// Graph returns the adapter graph.
func (d *Dispatcher) Graph() *adapter.Graph { return d.graph }

// Host returns the host the dispatcher was created for.
func (d *Dispatcher) Host() extension.Host { return d.host }

// OnExtensionsLoaded registers every extension, loads the adapters their
// generations need and fires onPluginsLoaded. Adapter failures are
// configuration errors and abort before any event is fired.
func (d *Dispatcher) OnExtensionsLoaded(ctx context.Context, exts []extension.Extension) error {
	for _, ext := range exts {
		d.registry.Register(ext)
	}

	var ids []adapter.ID
	for _, g := range d.registry.Generations() {
		if g.Legacy() {
			ids = append(ids, adapter.Plugin(g))
		}
	}
	if err := d.graph.EnsureAll(ids...); err != nil {
		d.logger.Error("cannot load adapters", slog.String("error", err.Error()))
		log.Event("dispatch:"+extension.EventPluginsLoaded, "load").Write(err)
		return err
	}

	plugins := d.registry.Plugins()
	return d.Dispatch(ctx, extension.EventPluginsLoaded, &plugins)
}

// OnExtensionLoaded registers an extension loaded after the initial burst
// and fires onPluginManuallyLoaded. Registering a known extension again
// only fires the event.
func (d *Dispatcher) OnExtensionLoaded(ctx context.Context, ext extension.Extension) error {
	g, added := d.registry.Register(ext)
	if added && g.Legacy() {
		if _, err := d.graph.Ensure(adapter.Plugin(g)); err != nil {
			log.Event("dispatch:"+extension.EventPluginManuallyLoaded, "load").
				Extension(ext.Name()).
				Generation(g).
				Write(err)
			return err
		}
	}
	return d.Dispatch(ctx, extension.EventPluginManuallyLoaded, ext)
}

// Dispatch delivers event to every interested extension. Lifecycle events
// travel through the adapter chain first; other names are custom events.
// Only a ProtocolViolationError (or a ConfigurationError while loading a
// theme adapter) is returned; any other recipient failure is logged and
// skipped.
func (d *Dispatcher) Dispatch(ctx context.Context, event string, params ...any) error {
	ctx, end := d.begin(ctx)
	defer end()
	p := extension.Params(params)

	if event == extension.EventThemeLoaded {
		if err := d.ensureTheme(ctx, p); err != nil {
			return err
		}
	}

	if !extension.IsLifecycle(event) {
		return d.dispatchCustom(ctx, event, p)
	}

	for _, a := range d.graph.Roots() {
		if err := d.deliverAdapter(ctx, a, event, p); err != nil {
			return err
		}
	}
	return d.Trigger(ctx, extension.Native, event, p)
}

// dispatchCustom hands a custom event to each plugin adapter that accepts
// custom events, oldest generation first, then to native extensions.
func (d *Dispatcher) dispatchCustom(ctx context.Context, event string, p extension.Params) error {
	loaded := d.graph.Loaded()
	slices.SortStableFunc(loaded, func(a, b adapter.Adapter) int {
		return int(a.Generation()) - int(b.Generation())
	})
	for _, a := range loaded {
		ch, ok := a.(adapter.CustomEventHandler)
		if !ok || a.Generation() == extension.Gen0 {
			continue
		}
		err := ch.HandleCustomEvent(ctx, event, p)
		if err := d.isolate(ctx, event, a.ID().String(), a.Generation(), err); err != nil {
			return err
		}
	}
	return d.TriggerCustom(ctx, extension.Native, event, p)
}

// TriggerEvent delivers an event to extensions of generation g only, in
// registration order. Lifecycle names use the generation's lifecycle
// entry point; other names are custom events.
func (d *Dispatcher) TriggerEvent(ctx context.Context, g extension.Generation, event string, params ...any) error {
	ctx, end := d.begin(ctx)
	defer end()
	if !g.Valid() {
		return fmt.Errorf("dispatcher: unknown generation %d", int(g))
	}
	if extension.IsLifecycle(event) || g == extension.Gen0 {
		return d.Trigger(ctx, g, event, extension.Params(params))
	}
	return d.TriggerCustom(ctx, g, event, extension.Params(params))
}

// Generation returns the generation of a registered extension.
func (d *Dispatcher) Generation(name string) (extension.Generation, bool) {
	_, g, ok := d.registry.Lookup(name)
	return g, ok
}

// ensureTheme loads the theme adapter matching the generation announced by
// onThemeLoaded(theme, generation, themeConfig).
func (d *Dispatcher) ensureTheme(ctx context.Context, p extension.Params) error {
	g, err := extension.Arg[extension.Generation](p, extension.EventThemeLoaded, 1)
	if err != nil {
		return d.isolate(ctx, extension.EventThemeLoaded, "dispatcher", extension.Native, err)
	}
	if !g.Legacy() {
		return nil
	}
	if _, err := d.graph.Ensure(adapter.Theme(g)); err != nil {
		log.Event("dispatch:"+extension.EventThemeLoaded, "load").
			Extension(adapter.Theme(g).String()).
			Generation(g).
			Dispatch(dispatchID(ctx)).
			Write(err)
		return err
	}
	return nil
}

// EscapeStrategy asks the loaded theme adapters for the escaping of a
// template. The last result reports whether any adapter decides escaping;
// if none does, the host's own default applies.
func (d *Dispatcher) EscapeStrategy(name string) (string, bool, bool) {
	for _, a := range d.graph.Loaded() {
		if p, ok := a.(adapter.EscapePolicy); ok {
			s, enabled := p.EscapeStrategy(name)
			return s, enabled, true
		}
	}
	return "", false, false
}
