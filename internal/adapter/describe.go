package adapter

import (
	"fmt"
	"slices"

	"github.com/jpl-au/bridge/extension"
)

// Description summarises what one adapter does, for the CLI and MCP tools.
type Description struct {
	ID           string              `json:"id"`
	Generation   string              `json:"generation"`
	Dependencies []string            `json:"dependencies"`
	Aliases      map[string][]string `json:"aliases"`
	Handles      []string            `json:"handles,omitempty"`
	Custom       bool                `json:"custom_events"`
}

// Describe instantiates the adapter id from factories, detached from any
// host, and reports its alias table and dependencies.
func Describe(factories map[ID]Factory, id ID) (Description, error) {
	f, ok := factories[id]
	if !ok {
		return Description{}, &extension.ConfigurationError{Adapter: id.String(), Reason: "no adapter registered"}
	}
	a, err := f(Env{})
	if err != nil {
		return Description{}, &extension.ConfigurationError{Adapter: id.String(), Reason: "cannot instantiate", Err: err}
	}
	if a == nil {
		return Description{}, &extension.ConfigurationError{Adapter: id.String(), Reason: "factory returned no adapter"}
	}

	d := Description{
		ID:         id.String(),
		Generation: a.Generation().String(),
		Aliases:    map[string][]string{},
	}
	for _, dep := range a.Dependencies() {
		d.Dependencies = append(d.Dependencies, dep.String())
	}
	if desc, ok := a.(Describer); ok {
		d.Aliases = desc.Aliases()
	}
	if h, ok := a.(interface{ Handles() []string }); ok {
		d.Handles = h.Handles()
	}
	_, d.Custom = a.(CustomEventHandler)
	return d, nil
}

// DescribeAll describes every adapter in factories, plugin track first,
// oldest generation first.
func DescribeAll(factories map[ID]Factory) ([]Description, error) {
	ids := make([]ID, 0, len(factories))
	for id := range factories {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, compareID)

	out := make([]Description, 0, len(ids))
	for _, id := range ids {
		d, err := Describe(factories, id)
		if err != nil {
			return nil, fmt.Errorf("describe %s: %w", id, err)
		}
		out = append(out, d)
	}
	return out, nil
}
