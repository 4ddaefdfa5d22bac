// Package adapter implements the per-generation translators of the bridge.
//
// Each adapter consumes the event surface of generation g+1 and re-emits it
// in the shape generation g expects. Adapters are chained per track: the
// plugin track feeds extensions, the theme track reshapes template data for
// themes written against older generations. A Graph loads adapters lazily
// and makes sure an adapter's dependencies are loaded before it is used.
package adapter

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jpl-au/bridge/extension"
)

// Track separates plugin adapters from theme adapters.
type Track string

const (
	TrackPlugin Track = "plugin"
	TrackTheme  Track = "theme"
)

// ID identifies an adapter by track and the generation it emits.
type ID struct {
	Track      Track
	Generation extension.Generation
}

// Plugin returns the id of the plugin adapter for generation g.
func Plugin(g extension.Generation) ID { return ID{Track: TrackPlugin, Generation: g} }

// Theme returns the id of the theme adapter for generation g.
func Theme(g extension.Generation) ID { return ID{Track: TrackTheme, Generation: g} }

func (id ID) String() string {
	return fmt.Sprintf("%s/%d", id.Track, int(id.Generation))
}

// Parent returns the id of the adapter feeding this one. The parent of a
// generation 3 adapter is the native generation.
func (id ID) Parent() ID {
	return ID{Track: id.Track, Generation: id.Generation + 1}
}

// ParseID parses "plugin/1" or "theme/2". A bare generation number means
// the plugin track.
func ParseID(s string) (ID, error) {
	track, gen, found := strings.Cut(s, "/")
	if !found {
		track, gen = string(TrackPlugin), s
	}
	n, err := strconv.Atoi(gen)
	if err != nil {
		return ID{}, fmt.Errorf("invalid adapter id %q: %w", s, err)
	}
	switch Track(track) {
	case TrackPlugin, TrackTheme:
	default:
		return ID{}, fmt.Errorf("invalid adapter id %q: unknown track %q", s, track)
	}
	g := extension.Generation(n)
	if !g.Valid() {
		return ID{}, fmt.Errorf("invalid adapter id %q: unknown generation %d", s, n)
	}
	return ID{Track: Track(track), Generation: g}, nil
}

// Adapter translates one generation's event contract into the next older
// one.
type Adapter interface {
	ID() ID
	// Generation returns the generation this adapter emits.
	Generation() extension.Generation
	// Dependencies returns adapters that must be loaded before this one.
	Dependencies() []ID
	// HandleEvent receives an event in the shape of generation g+1.
	HandleEvent(ctx context.Context, event string, params extension.Params) error
}

// CustomEventHandler is implemented by adapters that forward custom
// (non-lifecycle) events to extensions of their generation.
type CustomEventHandler interface {
	HandleCustomEvent(ctx context.Context, event string, params extension.Params) error
}

// Describer exposes an adapter's alias table for introspection.
type Describer interface {
	Aliases() map[string][]string
}

// Emitter delivers events emitted by adapters. The dispatcher implements
// it; adapters never hold references to each other.
type Emitter interface {
	// Emit delivers an event emitted by adapter from: first to the loaded
	// adapters fed by from, then (plugin track) to extensions of from's
	// generation. Only protocol violations are returned.
	Emit(ctx context.Context, from ID, event string, params extension.Params) error
	// Trigger delivers a lifecycle event to extensions of generation g.
	Trigger(ctx context.Context, g extension.Generation, event string, params extension.Params) error
	// TriggerCustom delivers a custom event to extensions of generation g.
	TriggerCustom(ctx context.Context, g extension.Generation, event string, params extension.Params) error
	// LoadPlugin loads an extension announced by an old handler.
	LoadPlugin(ctx context.Context, ext extension.Extension) error
	// Generation returns the generation of a registered extension.
	Generation(name string) (extension.Generation, bool)
}

// Env is what a Factory receives.
type Env struct {
	Host    extension.Host
	Emitter Emitter
}

// Factory creates an adapter.
type Factory func(env Env) (Adapter, error)

// nativeAdapter marks the native generation: nothing to translate.
type nativeAdapter struct{}

// Native is returned by Graph.Ensure for the native generation.
var Native Adapter = nativeAdapter{}

func (nativeAdapter) ID() ID                           { return ID{Generation: extension.Native} }
func (nativeAdapter) Generation() extension.Generation { return extension.Native }
func (nativeAdapter) Dependencies() []ID               { return nil }
func (nativeAdapter) HandleEvent(context.Context, string, extension.Params) error {
	return nil
}
