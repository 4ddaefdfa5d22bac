package adapter

import (
	"context"
	"maps"

	"github.com/jpl-au/bridge/extension"
)

// plugin1 translates generation 2 events for generation 1 extensions.
//
// Generation 1 expects reference parameters that generation 2 stopped
// passing (request file, raw content, meta headers, pages), so the
// adapter remembers them from earlier events of the same request and
// replays them. Meta headers travel in the inverted shape.
type plugin1 struct {
	pluginBase

	requestFile *string
	rawContent  *string
	metaHeaders *extension.MetaHeaders
	pages       *extension.Pages
	twig        any
}

// NewPlugin1 returns the generation 1 plugin adapter.
func NewPlugin1(env Env) (Adapter, error) {
	a := &plugin1{pluginBase: pluginBase{newBase(env, Plugin(extension.Gen1), Plugin(extension.Gen2), Theme(extension.Gen1))}}
	a.identity(
		extension.EventConfigLoaded,
		extension.EventRequestURL,
		extension.EventRequestFile,
		extension.Event404ContentLoaded,
		extension.EventContentLoaded,
		extension.EventContentPrepared,
		extension.EventContentParsed,
		extension.EventPagesLoading,
		extension.EventSinglePageLoaded,
		extension.EventPageRendered,
	)
	a.handle(extension.EventPluginsLoaded, a.onPluginsLoaded)
	a.handle(extension.EventRequestFile, a.onRequestFile)
	a.handle(extension.EventContentLoading, a.onContentLoading)
	a.handle(extension.EventContentLoaded, a.onContentLoaded)
	a.handle(extension.Event404ContentLoading, a.on404ContentLoading)
	a.handle(extension.Event404ContentLoaded, a.onContentLoaded)
	a.handle(extension.EventMetaParsing, a.onMetaParsing)
	a.handle(extension.EventMetaParsed, a.onMetaParsed)
	a.handle(extension.EventContentParsing, a.onContentParsing)
	a.handle(extension.EventPagesLoaded, a.onPagesLoaded)
	a.handle(extension.EventCurrentPageDiscovered, a.onCurrentPageDiscovered)
	a.handle(extension.EventPageRendering, a.onPageRendering)
	a.handle(extension.EventMetaHeaders, a.onMetaHeaders)
	a.handle(extension.EventTwigRegistered, a.onTwigRegistered)
	return a, nil
}

// onPluginsLoaded hands generation 1 a mutable copy of the plugin list.
// Added plugins are loaded into the host; removing or replacing a plugin
// aborts the dispatch.
func (a *plugin1) onPluginsLoaded(ctx context.Context, params extension.Params) error {
	plugins, err := extension.Arg[*extension.Plugins](params, extension.EventPluginsLoaded, 0)
	if err != nil {
		return err
	}
	if plugins == nil {
		return extension.Malformed(extension.EventPluginsLoaded, "#0", "nil plugin list")
	}

	original := maps.Clone(*plugins)
	legacy := maps.Clone(*plugins)
	if legacy == nil {
		legacy = make(extension.Plugins)
	}
	if err := a.emit(ctx, extension.EventPluginsLoaded, &legacy); err != nil {
		return err
	}

	change := DiffPlugins(original, legacy)
	if err := CheckPlugins(extension.EventPluginsLoaded, a.id.Generation, change); err != nil {
		return err
	}
	if a.env.Emitter == nil {
		return nil
	}
	for _, name := range change.Added {
		if err := a.env.Emitter.LoadPlugin(ctx, legacy[name]); err != nil {
			return err
		}
	}
	return nil
}

func (a *plugin1) onRequestFile(_ context.Context, params extension.Params) error {
	file, err := extension.Arg[*string](params, extension.EventRequestFile, 0)
	if err != nil {
		return err
	}
	a.requestFile = file
	return nil
}

func (a *plugin1) onContentLoading(ctx context.Context, _ extension.Params) error {
	if a.requestFile == nil {
		return extension.Malformed(extension.EventContentLoading, "request file", "not announced by onRequestFile")
	}
	return a.emit(ctx, extension.EventContentLoading, a.requestFile)
}

func (a *plugin1) on404ContentLoading(ctx context.Context, _ extension.Params) error {
	if a.requestFile == nil {
		return extension.Malformed(extension.Event404ContentLoading, "request file", "not announced by onRequestFile")
	}
	return a.emit(ctx, extension.Event404ContentLoading, a.requestFile)
}

func (a *plugin1) onContentLoaded(_ context.Context, params extension.Params) error {
	raw, err := extension.Arg[*string](params, extension.EventContentLoaded, 0)
	if err != nil {
		return err
	}
	a.rawContent = raw
	return nil
}

// onMetaParsing passes the raw content and the inverted meta headers, then
// applies the handlers' header edits to the native map.
func (a *plugin1) onMetaParsing(ctx context.Context, _ extension.Params) error {
	if a.rawContent == nil {
		return extension.Malformed(extension.EventMetaParsing, "raw content", "not announced by onContentLoaded")
	}
	if a.metaHeaders == nil {
		return extension.Malformed(extension.EventMetaParsing, "meta headers", "not announced by onMetaHeaders")
	}
	return a.withFlippedHeaders(func(flipped *extension.MetaHeaders) error {
		return a.emit(ctx, extension.EventMetaParsing, a.rawContent, flipped)
	})
}

func (a *plugin1) onMetaParsed(ctx context.Context, params extension.Params) error {
	meta, err := extension.Arg[*map[string]any](params, extension.EventMetaParsed, 0)
	if err != nil {
		return err
	}
	if err := a.emit(ctx, extension.EventMetaParsed, meta); err != nil {
		return err
	}
	return a.emit(ctx, extension.EventParsedownRegistration)
}

func (a *plugin1) onContentParsing(ctx context.Context, _ extension.Params) error {
	if a.rawContent == nil {
		return extension.Malformed(extension.EventContentParsing, "raw content", "not announced by onContentLoaded")
	}
	return a.emit(ctx, extension.EventContentParsing, a.rawContent)
}

func (a *plugin1) onPagesLoaded(_ context.Context, params extension.Params) error {
	pages, err := extension.Arg[*extension.Pages](params, extension.EventPagesLoaded, 0)
	if err != nil {
		return err
	}
	a.pages = pages
	return nil
}

// onCurrentPageDiscovered is where generation 1 learns about all pages at
// once, together with the current page and its neighbours.
func (a *plugin1) onCurrentPageDiscovered(ctx context.Context, params extension.Params) error {
	if a.pages == nil {
		return extension.Malformed(extension.EventCurrentPageDiscovered, "pages", "not announced by onPagesLoaded")
	}
	current, previous, next, err := pageArgs(extension.EventCurrentPageDiscovered, params, 0)
	if err != nil {
		return err
	}
	if err := a.emit(ctx, extension.EventPagesLoaded, a.pages, current, previous, next); err != nil {
		return err
	}
	return a.emit(ctx, extension.EventTwigRegistration)
}

// onPageRendering prepends the template engine to the parameter list and
// moves the template name last.
func (a *plugin1) onPageRendering(ctx context.Context, params extension.Params) error {
	name, err := extension.Arg[*string](params, extension.EventPageRendering, 0)
	if err != nil {
		return err
	}
	vars, err := extension.Arg[*extension.Vars](params, extension.EventPageRendering, 1)
	if err != nil {
		return err
	}
	return a.emit(ctx, extension.EventPageRendering, a.twig, vars, name)
}

func (a *plugin1) onMetaHeaders(ctx context.Context, params extension.Params) error {
	headers, err := extension.Arg[*extension.MetaHeaders](params, extension.EventMetaHeaders, 0)
	if err != nil {
		return err
	}
	if headers == nil {
		return extension.Malformed(extension.EventMetaHeaders, "#0", "nil meta headers")
	}
	if *headers == nil {
		*headers = make(extension.MetaHeaders)
	}
	a.metaHeaders = headers
	return a.withFlippedHeaders(func(flipped *extension.MetaHeaders) error {
		return a.emit(ctx, extension.EventMetaHeaders, flipped)
	})
}

func (a *plugin1) onTwigRegistered(_ context.Context, params extension.Params) error {
	twig, err := extension.OptionalArg[any](params, extension.EventTwigRegistered, 0)
	if err != nil {
		return err
	}
	a.twig = twig
	return nil
}

// withFlippedHeaders runs fn on the inverted meta headers and syncs the
// result back, even when fn fails part way.
func (a *plugin1) withFlippedHeaders(fn func(*extension.MetaHeaders) error) error {
	flipped := FlipMetaHeaders(*a.metaHeaders)
	err := fn(&flipped)
	SyncMetaHeaders(*a.metaHeaders, flipped)
	return err
}
