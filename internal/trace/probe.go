package trace

import (
	"context"

	"github.com/jpl-au/bridge/extension"
)

// ProbeName returns the name of the probe extension for generation g.
func ProbeName(g extension.Generation) string {
	return "probe-" + g.String()
}

// Probe returns an extension of generation g that accepts every event and
// changes nothing.
func Probe(g extension.Generation) extension.Extension {
	name := ProbeName(g)
	switch g {
	case extension.Gen0:
		return hookProbe{name: name}
	case extension.Gen1:
		return handlerProbe{name: name}
	default:
		return versionedProbe{handlerProbe{name: name}, g}
	}
}

// hookProbe is a generation 0 extension with a no-op for every hook.
type hookProbe struct {
	name string
}

func (p hookProbe) Name() string { return p.name }

func (p hookProbe) Hooks() extension.Hooks {
	hooks := make(extension.Hooks)
	for _, name := range extension.HookNames() {
		hooks[name] = func(context.Context, extension.Params) error { return nil }
	}
	return hooks
}

// handlerProbe is an unversioned EventHandler, hence generation 1.
type handlerProbe struct {
	name string
}

func (p handlerProbe) Name() string { return p.name }

func (handlerProbe) HandleEvent(context.Context, string, extension.Params) error { return nil }

type versionedProbe struct {
	handlerProbe
	gen extension.Generation
}

func (p versionedProbe) APIVersion() extension.Generation { return p.gen }
