package adapter

import (
	"context"
	"maps"
	"slices"

	"github.com/jpl-au/bridge/extension"
)

// handlerFunc is an adapter's own reaction to an incoming event.
type handlerFunc func(ctx context.Context, params extension.Params) error

// base carries what every adapter shares: identity, alias table, own
// handlers and the environment to emit into.
type base struct {
	id       ID
	deps     []ID
	aliases  map[string][]string
	handlers map[string]handlerFunc
	env      Env
}

func newBase(env Env, id ID, deps ...ID) base {
	return base{
		id:       id,
		deps:     deps,
		aliases:  make(map[string][]string),
		handlers: make(map[string]handlerFunc),
		env:      env,
	}
}

func (b *base) ID() ID                           { return b.id }
func (b *base) Generation() extension.Generation { return b.id.Generation }
func (b *base) Dependencies() []ID               { return slices.Clone(b.deps) }

// Aliases returns a copy of the alias table.
func (b *base) Aliases() map[string][]string {
	out := make(map[string][]string, len(b.aliases))
	for k, v := range b.aliases {
		out[k] = slices.Clone(v)
	}
	return out
}

// Handles returns the events this adapter reacts to itself, sorted.
func (b *base) Handles() []string {
	return slices.Sorted(maps.Keys(b.handlers))
}

// alias maps an incoming event to the names re-emitted downstream.
func (b *base) alias(event string, targets ...string) {
	b.aliases[event] = append(b.aliases[event], targets...)
}

// identity forwards events unchanged.
func (b *base) identity(events ...string) {
	for _, e := range events {
		b.alias(e, e)
	}
}

func (b *base) handle(event string, h handlerFunc) {
	b.handlers[event] = h
}

// HandleEvent runs the adapter's own handler, then re-emits the event under
// each alias. Events with neither are dropped.
func (b *base) HandleEvent(ctx context.Context, event string, params extension.Params) error {
	if h, ok := b.handlers[event]; ok {
		if err := h(ctx, params); err != nil {
			return err
		}
	}
	for _, target := range b.aliases[event] {
		if err := b.emit(ctx, target, params...); err != nil {
			return err
		}
	}
	return nil
}

// emit delivers an event in this adapter's generation.
func (b *base) emit(ctx context.Context, event string, params ...any) error {
	if b.env.Emitter == nil {
		return nil
	}
	return b.env.Emitter.Emit(ctx, b.id, event, extension.Params(params))
}

func (b *base) absoluteURL(u string) string {
	if b.env.Host == nil {
		return extension.AbsoluteURL("", u)
	}
	return b.env.Host.AbsoluteURL(u)
}

// pageArgs reads the optional current, previous and next pages starting at
// parameter from.
func pageArgs(event string, params extension.Params, from int) (current, previous, next *extension.Page, err error) {
	if current, err = extension.OptionalArg[*extension.Page](params, event, from); err != nil {
		return nil, nil, nil, err
	}
	if previous, err = extension.OptionalArg[*extension.Page](params, event, from+1); err != nil {
		return nil, nil, nil, err
	}
	if next, err = extension.OptionalArg[*extension.Page](params, event, from+2); err != nil {
		return nil, nil, nil, err
	}
	return current, previous, next, nil
}

// pluginBase adds custom event forwarding to plugin adapters.
type pluginBase struct {
	base
}

// HandleCustomEvent forwards a custom event to extensions of this
// adapter's generation only. Older generations receive it through their
// own adapter.
func (p *pluginBase) HandleCustomEvent(ctx context.Context, event string, params extension.Params) error {
	if p.env.Emitter == nil {
		return nil
	}
	return p.env.Emitter.TriggerCustom(ctx, p.id.Generation, event, params)
}
