package trace

import (
	"github.com/jpl-au/bridge/extension"
)

// state holds the values a host would carry through one request, so that
// consecutive events of a pipeline share them.
type state struct {
	host    extension.Host
	url     string
	file    string
	raw     string
	content string
	meta    map[string]any
	headers extension.MetaHeaders
	pages   *extension.Pages
	tree    map[string]any
	name    string
	vars    extension.Vars
	output  string
	theme   string
}

func newState(host extension.Host) *state {
	paths := host.Paths()
	file := host.RequestFile()
	if file == "" {
		file = paths.Content + "index" + paths.ContentExt
	}

	index := extension.Page{"id": "index", "url": host.BaseURL(), "meta": map[string]any{"title": "Home"}}
	about := extension.Page{"id": "about", "url": host.BaseURL() + "about", "meta": map[string]any{"title": "About"}}
	pages := extension.NewPages()
	pages.Add("index", &index)
	pages.Add("about", &about)

	return &state{
		host:    host,
		file:    file,
		raw:     "---\nTitle: Home\n---\n# Home\n",
		meta:    map[string]any{"title": "Home"},
		headers: extension.MetaHeaders{"Title": "title", "Description": "description"},
		pages:   pages,
		tree:    map[string]any{},
		name:    "index.twig",
		vars:    extension.Vars{},
		theme:   host.Theme(),
	}
}

// params returns sample parameters shaped like the native signature of
// event. Custom events get none.
func (s *state) params(event string) []any {
	switch event {
	case extension.EventPluginsLoaded:
		plugins := s.host.Plugins()
		return []any{&plugins}
	case extension.EventPluginManuallyLoaded:
		return []any{Probe(extension.Native)}
	case extension.EventConfigLoaded:
		return []any{s.host.Config()}
	case extension.EventThemeLoading:
		return []any{&s.theme}
	case extension.EventThemeLoaded:
		return []any{s.theme, s.host.ThemeAPIVersion(), extension.NewConfig(nil)}
	case extension.EventRequestURL:
		return []any{&s.url}
	case extension.EventRequestFile:
		return []any{&s.file}
	case extension.Event404ContentLoaded, extension.EventContentLoaded:
		return []any{&s.raw}
	case extension.EventMetaParsed:
		return []any{&s.meta}
	case extension.EventContentPrepared, extension.EventContentParsed:
		return []any{&s.content}
	case extension.EventSinglePageLoading:
		id, skip := "index", false
		return []any{&id, &skip}
	case extension.EventSinglePageContent:
		return []any{"index", &s.raw}
	case extension.EventSinglePageLoaded:
		page, _ := s.pages.Get("index")
		return []any{page}
	case extension.EventPagesDiscovered, extension.EventPagesLoaded:
		return []any{s.pages}
	case extension.EventCurrentPageDiscovered:
		current, _ := s.pages.Get("index")
		next, _ := s.pages.Get("about")
		return []any{current, (*extension.Page)(nil), next}
	case extension.EventPageTreeBuilt:
		return []any{&s.tree}
	case extension.EventPageRendering:
		return []any{&s.name, &s.vars}
	case extension.EventPageRendered:
		return []any{&s.output}
	case extension.EventMetaHeaders:
		return []any{&s.headers}
	case extension.EventYamlParserRegistered:
		return []any{"yaml"}
	case extension.EventParsedownRegistered:
		return []any{"markdown"}
	case extension.EventTwigRegistered:
		return []any{"twig"}
	default:
		return []any{}
	}
}
