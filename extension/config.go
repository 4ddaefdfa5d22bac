// config.go defines the merged site configuration passed with onConfigLoaded.
//
// Design: Values live in entries and keys point at entries. Two keys can
// share one entry, which is how a renamed field stays readable under its
// old name: writing through either key is visible through both.

package extension

import (
	"maps"
	"slices"
)

type configEntry struct {
	value any
}

// Config is the key-value site configuration shared with extensions.
// The zero value is not usable; create one with NewConfig.
type Config struct {
	entries map[string]*configEntry
}

// NewConfig returns a Config holding a copy of values.
func NewConfig(values map[string]any) *Config {
	c := &Config{entries: make(map[string]*configEntry, len(values))}
	for k, v := range values {
		c.entries[k] = &configEntry{value: v}
	}
	return c
}

// Get returns the value stored under key.
func (c *Config) Get(key string) (any, bool) {
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// String returns the value under key if it is a string, else "".
func (c *Config) String(key string) string {
	v, _ := c.Get(key)
	s, _ := v.(string)
	return s
}

// Bool returns the value under key if it is a bool, else false.
func (c *Config) Bool(key string) bool {
	v, _ := c.Get(key)
	b, _ := v.(bool)
	return b
}

// Map returns the value under key if it is a map[string]any, else nil.
func (c *Config) Map(key string) map[string]any {
	v, _ := c.Get(key)
	m, _ := v.(map[string]any)
	return m
}

// Has reports whether key is set.
func (c *Config) Has(key string) bool {
	_, ok := c.entries[key]
	return ok
}

// Set stores v under key. If key already exists the shared entry is
// updated, so aliases of key observe the new value.
func (c *Config) Set(key string, v any) {
	if e, ok := c.entries[key]; ok {
		e.value = v
		return
	}
	c.entries[key] = &configEntry{value: v}
}

// Alias makes alias a second name for target's entry. It returns false if
// target is not set.
func (c *Config) Alias(alias, target string) bool {
	e, ok := c.entries[target]
	if !ok {
		return false
	}
	c.entries[alias] = e
	return true
}

// Aliased reports whether a and b name the same entry.
func (c *Config) Aliased(a, b string) bool {
	ea, ok := c.entries[a]
	if !ok {
		return false
	}
	return ea == c.entries[b]
}

// Delete removes key. Aliases of key keep the value.
func (c *Config) Delete(key string) {
	delete(c.entries, key)
}

// Keys returns all keys in sorted order.
func (c *Config) Keys() []string {
	return slices.Sorted(maps.Keys(c.entries))
}

// Values returns a snapshot of all key-value pairs.
func (c *Config) Values() map[string]any {
	out := make(map[string]any, len(c.entries))
	for k, e := range c.entries {
		out[k] = e.value
	}
	return out
}

// Merge copies values into c; keys in values win over existing keys.
func (c *Config) Merge(values map[string]any) {
	for k, v := range values {
		c.Set(k, v)
	}
}

// MergeDefaults copies values into c without overwriting existing keys.
func (c *Config) MergeDefaults(values map[string]any) {
	for k, v := range values {
		if !c.Has(k) {
			c.entries[k] = &configEntry{value: v}
		}
	}
}
