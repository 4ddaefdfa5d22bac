// translate.go holds the reshaping helpers shared by adapters.

package adapter

import (
	"fmt"
	"maps"
	"path"
	"reflect"
	"slices"
	"strings"

	goset "github.com/deckarep/golang-set/v2"

	"github.com/jpl-au/bridge/extension"
)

// FlipMetaHeaders converts the native {search key: canonical} shape into the
// legacy {canonical: search key} shape. When several search keys share a
// canonical name the lexically last one wins.
func FlipMetaHeaders(h extension.MetaHeaders) extension.MetaHeaders {
	flipped := make(extension.MetaHeaders, len(h))
	for _, key := range slices.Sorted(maps.Keys(h)) {
		flipped[h[key]] = key
	}
	return flipped
}

// SyncMetaHeaders applies edits made to a flipped view back to h. Entries
// whose canonical name disappeared from flipped are removed; every flipped
// entry is (re)added.
func SyncMetaHeaders(h, flipped extension.MetaHeaders) {
	for key, canonical := range h {
		if _, ok := flipped[canonical]; !ok {
			delete(h, key)
		}
	}
	for canonical, key := range flipped {
		h[key] = canonical
	}
}

// StripTemplateExt splits a template name into its base and extension. The
// extension starts at the last '.' of the final path element, so
// base+ext always equals name.
func StripTemplateExt(name string) (base, ext string) {
	ext = path.Ext(name)
	return strings.TrimSuffix(name, ext), ext
}

// PluginChange describes how an old handler edited a plugin list.
type PluginChange struct {
	Added    []string
	Removed  []string
	Replaced []string
}

// DiffPlugins compares the list handed to an old handler with the list it
// returned. Names are sorted.
func DiffPlugins(before, after extension.Plugins) PluginChange {
	b := goset.NewThreadUnsafeSet(slices.Collect(maps.Keys(before))...)
	a := goset.NewThreadUnsafeSet(slices.Collect(maps.Keys(after))...)

	var c PluginChange
	c.Added = sortedSlice(a.Difference(b))
	c.Removed = sortedSlice(b.Difference(a))
	for _, name := range sortedSlice(a.Intersect(b)) {
		if !sameExtension(before[name], after[name]) {
			c.Replaced = append(c.Replaced, name)
		}
	}
	return c
}

// CheckPlugins returns a ProtocolViolationError if an old handler removed or
// replaced a plugin. Replacement is reported first.
func CheckPlugins(event string, gen extension.Generation, c PluginChange) error {
	switch {
	case len(c.Replaced) > 0:
		return &extension.ProtocolViolationError{Event: event, Generation: gen, Behaviour: extension.ViolationReplace, Names: c.Replaced}
	case len(c.Removed) > 0:
		return &extension.ProtocolViolationError{Event: event, Generation: gen, Behaviour: extension.ViolationRemove, Names: c.Removed}
	}
	return nil
}

func sortedSlice(s goset.Set[string]) []string {
	out := s.ToSlice()
	slices.Sort(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

func sameExtension(a, b extension.Extension) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// PageID derives a page id from its URL. URLs outside baseURL yield
// "~unknown"; a leading '?' (query-string routing) is skipped.
func PageID(pageURL, baseURL string) string {
	rest, ok := strings.CutPrefix(pageURL, baseURL)
	if !ok {
		return "~unknown"
	}
	return strings.TrimPrefix(rest, "?")
}

// ReindexPages rebuilds pages from a flat list, keyed by page id. Pages
// without an id get one from their URL. Colliding ids get a "~dupN" suffix.
func ReindexPages(pages *extension.Pages, list []*extension.Page, baseURL string) {
	pages.Reset()
	for _, page := range list {
		if page == nil {
			continue
		}
		if *page == nil {
			*page = make(extension.Page)
		}
		id, _ := (*page)["id"].(string)
		if id == "" {
			u, _ := (*page)["url"].(string)
			id = PageID(u, baseURL)
			(*page)["id"] = id
		}
		if pages.Has(id) {
			n := 1
			for pages.Has(fmt.Sprintf("%s~dup%d", id, n)) {
				n++
			}
			id = fmt.Sprintf("%s~dup%d", id, n)
		}
		pages.Add(id, page)
	}
}
