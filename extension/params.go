// params.go defines event parameters and the shared values they point to.
//
// Design: An event carries an ordered parameter list. Parameters the callee
// may modify are passed as pointers, so every recipient of one dispatch
// works on the same value and sees the edits of the recipients before it.
// Nothing is copied between recipients.

package extension

import (
	"fmt"
	"maps"
	"slices"
)

// Params is the ordered parameter list of an event.
type Params []any

// Arg returns parameter i as T. A missing or mistyped parameter is a
// MalformedEventError; a typed nil pointer is returned as-is.
func Arg[T any](p Params, event string, i int) (T, error) {
	var zero T
	if i < 0 || i >= len(p) {
		return zero, Malformed(event, fmt.Sprintf("#%d", i), "missing parameter")
	}
	v, ok := p[i].(T)
	if !ok {
		return zero, Malformed(event, fmt.Sprintf("#%d", i), fmt.Sprintf("expected %T, got %T", zero, p[i]))
	}
	return v, nil
}

// OptionalArg is like Arg but treats a missing or untyped nil parameter as
// the zero value of T.
func OptionalArg[T any](p Params, event string, i int) (T, error) {
	var zero T
	if i >= len(p) || p[i] == nil {
		return zero, nil
	}
	return Arg[T](p, event, i)
}

// Vars holds template variables handed to the renderer.
type Vars map[string]any

// MetaHeaders maps meta header search keys to canonical field names (the
// native shape). Generations 0 and 1 use the inverted shape, see
// adapter.FlipMetaHeaders.
type MetaHeaders map[string]string

// Plugins maps extension names to loaded extensions.
type Plugins map[string]Extension

// Names returns the plugin names in sorted order.
func (p Plugins) Names() []string {
	return slices.Sorted(maps.Keys(p))
}

// Page is the data of one content page (id, url, meta, content...).
type Page map[string]any

// Pages is an ordered index of pages. Index entries point at shared Page
// values, so rebuilding the index never copies page data.
type Pages struct {
	ids   []string
	pages map[string]*Page
}

// NewPages returns an empty page index.
func NewPages() *Pages {
	return &Pages{pages: make(map[string]*Page)}
}

// Add appends a page under id, replacing an existing entry in place.
func (p *Pages) Add(id string, page *Page) {
	if p.pages == nil {
		p.pages = make(map[string]*Page)
	}
	if _, ok := p.pages[id]; !ok {
		p.ids = append(p.ids, id)
	}
	p.pages[id] = page
}

// Get returns the page stored under id.
func (p *Pages) Get(id string) (*Page, bool) {
	page, ok := p.pages[id]
	return page, ok
}

// Has reports whether id is indexed.
func (p *Pages) Has(id string) bool {
	_, ok := p.pages[id]
	return ok
}

// IDs returns page ids in index order.
func (p *Pages) IDs() []string {
	return slices.Clone(p.ids)
}

// List returns the pages in index order.
func (p *Pages) List() []*Page {
	list := make([]*Page, 0, len(p.ids))
	for _, id := range p.ids {
		list = append(list, p.pages[id])
	}
	return list
}

// Len returns the number of indexed pages.
func (p *Pages) Len() int { return len(p.ids) }

// Reset empties the index.
func (p *Pages) Reset() {
	p.ids = nil
	p.pages = make(map[string]*Page)
}
