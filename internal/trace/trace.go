// Package trace runs a dispatcher against probe extensions and records
// which extension received which event, in delivery order. It backs the
// trace command and the MCP trace tool.
package trace

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/jpl-au/bridge/dispatcher"
	"github.com/jpl-au/bridge/extension"
)

// Step is one delivery to a probe extension.
type Step struct {
	Seq        int    `json:"seq"`
	DispatchID string `json:"dispatch_id"`
	Trigger    string `json:"trigger"` // native event that caused the delivery
	Event      string `json:"event"`   // name the extension received
	Extension  string `json:"extension"`
	Generation string `json:"generation"`
	Custom     bool   `json:"custom,omitempty"`
}

// Recorder collects deliveries reported by a dispatcher observer.
type Recorder struct {
	mu      sync.Mutex
	trigger string
	steps   []Step
}

// Observe is a dispatcher.Observer.
func (r *Recorder) Observe(d dispatcher.Delivery) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, Step{
		Seq:        len(r.steps) + 1,
		DispatchID: d.DispatchID,
		Trigger:    r.trigger,
		Event:      d.Event,
		Extension:  d.Extension,
		Generation: d.Generation,
		Custom:     d.Custom,
	})
}

// Steps returns a copy of the recorded steps.
func (r *Recorder) Steps() []Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Step(nil), r.steps...)
}

// Reset discards recorded steps.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = nil
}

func (r *Recorder) setTrigger(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trigger = event
}

// Options configures a trace run.
type Options struct {
	// Generations to attach a probe extension to. Empty means all.
	Generations []extension.Generation
	Site        extension.Site
	Logger      *slog.Logger
	// KeepLoading keeps the deliveries made while the probes are loaded
	// (onPluginsLoaded).
	KeepLoading bool
}

// Session is a dispatcher with one probe per requested generation.
type Session struct {
	Dispatcher *dispatcher.Dispatcher
	Host       extension.Host
	Recorder   *Recorder
	state      *state
}

// NewSession creates the dispatcher, registers the probes and fires
// onPluginsLoaded.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	gens := opts.Generations
	if len(gens) == 0 {
		gens = extension.Generations()
	}
	rec := &Recorder{}
	dopts := []dispatcher.Option{dispatcher.WithObserver(rec.Observe)}
	if opts.Logger != nil {
		dopts = append(dopts, dispatcher.WithLogger(opts.Logger))
	}

	host := extension.NewHost(opts.Site)
	d, err := dispatcher.New(host, dopts...)
	if err != nil {
		return nil, err
	}

	probes := make([]extension.Extension, 0, len(gens))
	for _, g := range gens {
		if !g.Valid() {
			return nil, fmt.Errorf("trace: unknown generation %d", int(g))
		}
		probes = append(probes, Probe(g))
	}

	rec.setTrigger(extension.EventPluginsLoaded)
	if err := d.OnExtensionsLoaded(ctx, probes); err != nil {
		return nil, err
	}
	if !opts.KeepLoading {
		rec.Reset()
	}
	return &Session{Dispatcher: d, Host: host, Recorder: rec, state: newState(host)}, nil
}

// Dispatch fires event with params, or with sample parameters when params
// is nil, and returns the steps it caused.
func (s *Session) Dispatch(ctx context.Context, event string, params ...any) ([]Step, error) {
	if params == nil {
		params = s.state.params(event)
	}
	before := len(s.Recorder.Steps())
	s.Recorder.setTrigger(event)
	err := s.Dispatcher.Dispatch(ctx, event, params...)
	return s.Recorder.Steps()[before:], err
}

// Run traces a single event.
func Run(ctx context.Context, event string, opts Options) ([]Step, error) {
	s, err := NewSession(ctx, opts)
	if err != nil {
		return nil, err
	}
	return s.Dispatch(ctx, event)
}

// pipeline is the order in which a host fires lifecycle events for one
// successful request. Meta headers and the template engine are announced
// before the events that use them.
var pipeline = []string{
	extension.EventConfigLoaded,
	extension.EventThemeLoading,
	extension.EventThemeLoaded,
	extension.EventRequestURL,
	extension.EventRequestFile,
	extension.EventContentLoading,
	extension.EventContentLoaded,
	extension.EventMetaHeaders,
	extension.EventYamlParserRegistered,
	extension.EventMetaParsing,
	extension.EventMetaParsed,
	extension.EventParsedownRegistered,
	extension.EventContentParsing,
	extension.EventContentPrepared,
	extension.EventContentParsed,
	extension.EventPagesLoading,
	extension.EventSinglePageLoading,
	extension.EventSinglePageContent,
	extension.EventSinglePageLoaded,
	extension.EventPagesDiscovered,
	extension.EventPagesLoaded,
	extension.EventCurrentPageDiscovered,
	extension.EventPageTreeBuilt,
	extension.EventTwigRegistered,
	extension.EventPageRendering,
	extension.EventPageRendered,
}

// PipelineEvents returns the events Pipeline fires, in order.
func PipelineEvents() []string {
	return slices.Clone(pipeline)
}

// Pipeline fires the lifecycle events of one request after plugin loading,
// sharing parameters between events the way a host does. It stops at the
// first error a dispatch returns.
func Pipeline(ctx context.Context, opts Options) ([]Step, error) {
	s, err := NewSession(ctx, opts)
	if err != nil {
		return nil, err
	}
	for _, event := range pipeline {
		if _, err := s.Dispatch(ctx, event); err != nil {
			return s.Recorder.Steps(), fmt.Errorf("%s: %w", event, err)
		}
	}
	return s.Recorder.Steps(), nil
}
