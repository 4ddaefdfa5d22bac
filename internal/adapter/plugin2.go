package adapter

import (
	"context"

	"github.com/jpl-au/bridge/extension"
)

// plugin2 translates generation 3 events for generation 2 extensions.
// Generation 2 lacks the theme loading events and knows the themes URL
// under its old key.
type plugin2 struct {
	pluginBase
}

// NewPlugin2 returns the generation 2 plugin adapter.
func NewPlugin2(env Env) (Adapter, error) {
	a := &plugin2{pluginBase{newBase(env, Plugin(extension.Gen2), Plugin(extension.Gen3), Theme(extension.Gen2))}}
	a.identity(
		extension.EventPluginsLoaded,
		extension.EventPluginManuallyLoaded,
		extension.EventConfigLoaded,
		extension.EventRequestURL,
		extension.EventRequestFile,
		extension.EventContentLoading,
		extension.Event404ContentLoading,
		extension.Event404ContentLoaded,
		extension.EventContentLoaded,
		extension.EventMetaParsing,
		extension.EventMetaParsed,
		extension.EventContentParsing,
		extension.EventContentPrepared,
		extension.EventContentParsed,
		extension.EventPagesLoading,
		extension.EventSinglePageLoading,
		extension.EventSinglePageContent,
		extension.EventSinglePageLoaded,
		extension.EventPagesDiscovered,
		extension.EventPagesLoaded,
		extension.EventCurrentPageDiscovered,
		extension.EventPageTreeBuilt,
		extension.EventPageRendering,
		extension.EventPageRendered,
		extension.EventMetaHeaders,
		extension.EventYamlParserRegistered,
		extension.EventParsedownRegistered,
		extension.EventTwigRegistered,
	)
	a.handle(extension.EventConfigLoaded, a.onConfigLoaded)
	return a, nil
}

// onConfigLoaded publishes the themes URL under "themes_url" and keeps
// "theme_url" as a live alias of it.
func (a *plugin2) onConfigLoaded(_ context.Context, params extension.Params) error {
	cfg, err := extension.Arg[*extension.Config](params, extension.EventConfigLoaded, 0)
	if err != nil {
		return err
	}
	if cfg == nil {
		return extension.Malformed(extension.EventConfigLoaded, "#0", "nil config")
	}
	if cfg.String("theme_url") == "" {
		return nil
	}
	cfg.Set("themes_url", a.absoluteURL(cfg.String("theme_url")))
	cfg.Alias("theme_url", "themes_url")
	return nil
}
