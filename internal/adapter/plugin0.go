package adapter

import (
	"context"

	"github.com/jpl-au/bridge/extension"
)

// plugin0 translates generation 1 events into generation 0 hooks.
// Generation 0 has no custom events, so plugin0 does not embed
// pluginBase.
type plugin0 struct {
	base

	requestFile *string
}

// NewPlugin0 returns the generation 0 plugin adapter.
func NewPlugin0(env Env) (Adapter, error) {
	a := &plugin0{base: newBase(env, Plugin(extension.Gen0), Plugin(extension.Gen1), Theme(extension.Gen0))}
	a.alias(extension.EventConfigLoaded, extension.HookConfigLoaded)
	a.alias(extension.EventRequestURL, extension.HookRequestURL)
	a.alias(extension.EventContentLoading, extension.HookBeforeLoadContent)
	a.alias(extension.Event404ContentLoading, extension.HookBefore404LoadContent)
	a.alias(extension.EventMetaParsed, extension.HookFileMeta)
	a.alias(extension.EventContentParsing, extension.HookBeforeParseContent)
	a.alias(extension.EventContentParsed, extension.HookContentParsed, extension.HookAfterParseContent)
	a.alias(extension.EventTwigRegistration, extension.HookBeforeTwigRegister)
	a.alias(extension.EventPageRendered, extension.HookAfterRender)

	a.handle(extension.EventPluginsLoaded, a.onPluginsLoaded)
	a.handle(extension.EventRequestFile, a.onRequestFile)
	a.handle(extension.EventContentLoaded, a.onContentLoaded)
	a.handle(extension.Event404ContentLoaded, a.on404ContentLoaded)
	a.handle(extension.EventMetaParsing, a.onMetaParsing)
	a.handle(extension.EventSinglePageLoaded, a.onSinglePageLoaded)
	a.handle(extension.EventPagesLoaded, a.onPagesLoaded)
	a.handle(extension.EventPageRendering, a.onPageRendering)
	return a, nil
}

// onPluginsLoaded: generation 0 only learns that loading finished.
func (a *plugin0) onPluginsLoaded(ctx context.Context, _ extension.Params) error {
	return a.emit(ctx, extension.HookPluginsLoaded)
}

func (a *plugin0) onRequestFile(_ context.Context, params extension.Params) error {
	file, err := extension.Arg[*string](params, extension.EventRequestFile, 0)
	if err != nil {
		return err
	}
	a.requestFile = file
	return nil
}

func (a *plugin0) onContentLoaded(ctx context.Context, params extension.Params) error {
	return a.contentLoaded(ctx, extension.EventContentLoaded, extension.HookAfterLoadContent, params)
}

func (a *plugin0) on404ContentLoaded(ctx context.Context, params extension.Params) error {
	return a.contentLoaded(ctx, extension.Event404ContentLoaded, extension.HookAfter404LoadContent, params)
}

// contentLoaded emits hook with the request file in front of the raw
// content.
func (a *plugin0) contentLoaded(ctx context.Context, event, hook string, params extension.Params) error {
	raw, err := extension.Arg[*string](params, event, 0)
	if err != nil {
		return err
	}
	if a.requestFile == nil {
		return extension.Malformed(event, "request file", "not announced by onRequestFile")
	}
	return a.emit(ctx, hook, a.requestFile, raw)
}

// onMetaParsing receives the generation 1 (already inverted) headers and
// passes them on alone.
func (a *plugin0) onMetaParsing(ctx context.Context, params extension.Params) error {
	headers, err := extension.Arg[*extension.MetaHeaders](params, extension.EventMetaParsing, 1)
	if err != nil {
		return err
	}
	return a.emit(ctx, extension.HookBeforeReadFileMeta, headers)
}

// onSinglePageLoaded splits the page's meta out into its own parameter.
func (a *plugin0) onSinglePageLoaded(ctx context.Context, params extension.Params) error {
	page, err := extension.Arg[*extension.Page](params, extension.EventSinglePageLoaded, 0)
	if err != nil {
		return err
	}
	if page == nil || *page == nil {
		return extension.Malformed(extension.EventSinglePageLoaded, "#0", "nil page")
	}
	meta, ok := (*page)["meta"]
	if !ok {
		return extension.Malformed(extension.EventSinglePageLoaded, "meta", "page has no meta")
	}
	return a.emit(ctx, extension.HookGetPageData, page, meta)
}

// onPagesLoaded hands generation 0 a flat page list and rebuilds the page
// index from whatever the handlers left in it.
func (a *plugin0) onPagesLoaded(ctx context.Context, params extension.Params) error {
	pages, err := extension.Arg[*extension.Pages](params, extension.EventPagesLoaded, 0)
	if err != nil {
		return err
	}
	if pages == nil {
		return extension.Malformed(extension.EventPagesLoaded, "#0", "nil pages")
	}
	current, previous, next, err := pageArgs(extension.EventPagesLoaded, params, 1)
	if err != nil {
		return err
	}

	list := pages.List()
	if err := a.emit(ctx, extension.HookGetPages, &list, current, previous, next); err != nil {
		return err
	}

	var baseURL string
	if a.env.Host != nil {
		baseURL = a.env.Host.BaseURL()
	}
	ReindexPages(pages, list, baseURL)
	return nil
}

// onPageRendering hands generation 0 the template name without its
// extension and restores the extension afterwards.
func (a *plugin0) onPageRendering(ctx context.Context, params extension.Params) error {
	twig, err := extension.OptionalArg[any](params, extension.EventPageRendering, 0)
	if err != nil {
		return err
	}
	vars, err := extension.Arg[*extension.Vars](params, extension.EventPageRendering, 1)
	if err != nil {
		return err
	}
	name, err := extension.Arg[*string](params, extension.EventPageRendering, 2)
	if err != nil {
		return err
	}
	if name == nil {
		return extension.Malformed(extension.EventPageRendering, "#2", "nil template name")
	}

	stem, ext := StripTemplateExt(*name)
	err = a.emit(ctx, extension.HookBeforeRender, vars, twig, &stem)
	*name = stem + ext
	return err
}
