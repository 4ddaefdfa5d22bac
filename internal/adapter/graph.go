// graph.go implements lazy, memoised adapter loading.
//
// Design: Dependencies are loaded depth-first before the dependent adapter
// is recorded, so load order is a valid topological order and the first
// loaded adapters are the ones closest to the native generation. Routing
// (Roots, Children) follows load order, which makes delivery order
// deterministic across runs.

package adapter

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	goset "github.com/deckarep/golang-set/v2"
	"go.uber.org/multierr"

	"github.com/jpl-au/bridge/extension"
)

// Graph loads adapters on demand.
type Graph struct {
	mu        sync.Mutex
	env       Env
	factories map[ID]Factory
	loaded    map[ID]Adapter
	order     []ID
}

// NewGraph returns a graph with no factories registered.
func NewGraph(env Env) *Graph {
	return &Graph{
		env:       env,
		factories: make(map[ID]Factory),
		loaded:    make(map[ID]Adapter),
	}
}

// Register installs the factory for id, replacing any previous one.
// Adapters already loaded are not affected.
func (g *Graph) Register(id ID, f Factory) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.factories[id] = f
}

// Registered returns the ids with a factory, sorted by track then
// generation.
func (g *Graph) Registered() []ID {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := slices.Collect(maps.Keys(g.factories))
	slices.SortFunc(ids, compareID)
	return ids
}

// Ensure returns the adapter for id, loading it and its dependencies if
// needed. The native generation yields the Native marker.
func (g *Graph) Ensure(id ID) (Adapter, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ensure(id, goset.NewThreadUnsafeSet[ID]())
}

// EnsureAll loads every id, collecting all failures.
func (g *Graph) EnsureAll(ids ...ID) error {
	var errs error
	for _, id := range ids {
		if _, err := g.Ensure(id); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (g *Graph) ensure(id ID, visiting goset.Set[ID]) (Adapter, error) {
	if id.Generation == extension.Native {
		return Native, nil
	}
	if a, ok := g.loaded[id]; ok {
		return a, nil
	}
	if visiting.Contains(id) {
		return nil, &extension.ConfigurationError{Adapter: id.String(), Reason: "dependency cycle"}
	}

	f, ok := g.factories[id]
	if !ok {
		return nil, &extension.ConfigurationError{Adapter: id.String(), Reason: "no adapter registered"}
	}
	a, err := f(g.env)
	if err != nil {
		return nil, &extension.ConfigurationError{Adapter: id.String(), Reason: "cannot instantiate", Err: err}
	}
	if a == nil {
		return nil, &extension.ConfigurationError{Adapter: id.String(), Reason: "factory returned no adapter"}
	}
	if a.ID() != id || a.Generation() != id.Generation {
		return nil, &extension.ConfigurationError{
			Adapter: id.String(),
			Reason:  fmt.Sprintf("adapter reports %s (generation %s)", a.ID(), a.Generation()),
		}
	}

	visiting.Add(id)
	for _, dep := range a.Dependencies() {
		if _, err := g.ensure(dep, visiting); err != nil {
			return nil, &extension.ConfigurationError{
				Adapter: id.String(),
				Reason:  "unresolved dependency " + dep.String(),
				Err:     err,
			}
		}
	}
	visiting.Remove(id)

	g.loaded[id] = a
	g.order = append(g.order, id)
	return a, nil
}

// Get returns a loaded adapter.
func (g *Graph) Get(id ID) (Adapter, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	a, ok := g.loaded[id]
	return a, ok
}

// Loaded returns loaded adapters in load order.
func (g *Graph) Loaded() []Adapter {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Adapter, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.loaded[id])
	}
	return out
}

// Roots returns loaded adapters fed directly by the native generation.
func (g *Graph) Roots() []Adapter {
	return g.fedBy(func(id ID) bool { return id.Parent().Generation == extension.Native })
}

// Children returns loaded adapters fed by the adapter parent.
func (g *Graph) Children(parent ID) []Adapter {
	return g.fedBy(func(id ID) bool { return id.Parent() == parent })
}

func (g *Graph) fedBy(match func(ID) bool) []Adapter {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []Adapter
	for _, id := range g.order {
		if match(id) {
			out = append(out, g.loaded[id])
		}
	}
	return out
}

// Plan returns the order in which ids would be loaded into an empty graph,
// without touching this graph's loaded adapters.
func (g *Graph) Plan(ids ...ID) ([]ID, error) {
	g.mu.Lock()
	tmp := &Graph{
		env:       g.env,
		factories: maps.Clone(g.factories),
		loaded:    make(map[ID]Adapter),
	}
	g.mu.Unlock()

	if err := tmp.EnsureAll(ids...); err != nil {
		return nil, err
	}
	return slices.Clone(tmp.order), nil
}

func compareID(a, b ID) int {
	if a.Track != b.Track {
		if a.Track < b.Track {
			return -1
		}
		return 1
	}
	return int(a.Generation) - int(b.Generation)
}
