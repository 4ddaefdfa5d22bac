// registry.go implements the generation-indexed extension registry.
//
// Separated from extension.go to isolate registry state and locking.
// Unlike a process-wide registry, each dispatcher owns one Registry, so
// two dispatchers in one process never see each other's extensions.
//
// Design: Registration is idempotent per (generation, name). A second
// registration is a no-op rather than an overwrite, so hosts may announce
// the same extension from several code paths. Registration order is
// preserved per generation to make delivery order deterministic.

package extension

import (
	"slices"
	"sync"
)

// entry is a registered extension with its capabilities resolved once.
type entry struct {
	ext   Extension
	gen   Generation
	hooks Hooks // generation 0 only
}

// bucket holds the extensions of one generation.
type bucket struct {
	byName map[string]*entry
	order  []string
}

// Registry holds registered extensions indexed by generation.
type Registry struct {
	mu      sync.RWMutex
	buckets map[Generation]*bucket
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{buckets: make(map[Generation]*bucket)}
}

// Register classifies ext and files it under its generation. Registering an
// extension whose (generation, name) is already known does nothing.
// It returns the generation and whether the extension was newly added.
func (r *Registry) Register(ext Extension) (Generation, bool) {
	gen := Classify(ext)

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[gen]
	if !ok {
		b = &bucket{byName: make(map[string]*entry)}
		r.buckets[gen] = b
	}

	name := ext.Name()
	if _, exists := b.byName[name]; exists {
		return gen, false
	}

	e := &entry{ext: ext, gen: gen}
	if gen == Gen0 {
		if hp, ok := ext.(HookProvider); ok {
			e.hooks = hp.Hooks()
		}
	}
	b.byName[name] = e
	b.order = append(b.order, name)
	return gen, true
}

// ByGeneration returns the extensions of generation g in registration order.
func (r *Registry) ByGeneration(g Generation) []Extension {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.buckets[g]
	if !ok {
		return nil
	}
	exts := make([]Extension, 0, len(b.order))
	for _, name := range b.order {
		exts = append(exts, b.byName[name].ext)
	}
	return exts
}

// Has reports whether any extension of generation g is registered.
func (r *Registry) Has(g Generation) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.buckets[g]
	return ok && len(b.order) > 0
}

// Generations returns the generations with at least one extension, oldest
// first.
func (r *Registry) Generations() []Generation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	gens := make([]Generation, 0, len(r.buckets))
	for g, b := range r.buckets {
		if len(b.order) > 0 {
			gens = append(gens, g)
		}
	}
	slices.Sort(gens)
	return gens
}

// Lookup returns the extension registered under name and its generation.
// If the name is registered under several generations the oldest wins.
func (r *Registry) Lookup(name string) (Extension, Generation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, g := range Generations() {
		if b, ok := r.buckets[g]; ok {
			if e, ok := b.byName[name]; ok {
				return e.ext, e.gen, true
			}
		}
	}
	return nil, 0, false
}

// Hooks returns the hook table captured when the generation 0 extension
// name was registered.
func (r *Registry) Hooks(name string) Hooks {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if b, ok := r.buckets[Gen0]; ok {
		if e, ok := b.byName[name]; ok {
			return e.hooks
		}
	}
	return nil
}

// All returns every registered extension, oldest generation first.
func (r *Registry) All() []Extension {
	var all []Extension
	for _, g := range r.Generations() {
		all = append(all, r.ByGeneration(g)...)
	}
	return all
}

// Plugins returns every registered extension keyed by name.
func (r *Registry) Plugins() Plugins {
	plugins := make(Plugins)
	for _, ext := range r.All() {
		if _, ok := plugins[ext.Name()]; !ok {
			plugins[ext.Name()] = ext
		}
	}
	return plugins
}
