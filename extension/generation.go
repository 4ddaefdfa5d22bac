// generation.go defines the API generation tag carried by every extension.
//
// Separated from extension.go because generations are shared by the
// registry, the adapters and the dispatcher, while extension.go only
// describes what an extension can do.

package extension

import "fmt"

// Generation identifies which historical version of the event contract an
// extension was written against. Generations are ordinal: a larger value is
// a newer contract.
type Generation int

const (
	// Gen0 is the original hook-per-method API. Generation 0 extensions
	// predate HandleEvent and never receive custom events.
	Gen0 Generation = iota
	// Gen1 introduced HandleEvent. Extensions implementing EventHandler
	// without declaring a version are generation 1.
	Gen1
	// Gen2 inverted the meta-header map and stopped passing the plugin
	// list by reference.
	Gen2
	// Gen3 introduced theme versioning and escaped templates by default.
	Gen3
	// Native is the generation spoken by the host core and the dispatcher.
	Native
)

// Generations lists every generation from oldest to newest.
func Generations() []Generation {
	return []Generation{Gen0, Gen1, Gen2, Gen3, Native}
}

// Valid reports whether g is a known generation.
func (g Generation) Valid() bool {
	return g >= Gen0 && g <= Native
}

// Legacy reports whether g needs translation (is older than Native).
func (g Generation) Legacy() bool {
	return g.Valid() && g < Native
}

func (g Generation) String() string {
	if g == Native {
		return "native"
	}
	return fmt.Sprintf("v%d", int(g))
}
