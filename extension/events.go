// events.go names the lifecycle events of every generation.
//
// Separated from extension.go to keep the event vocabulary in one place.
// Native names double as the generation 1-3 names where the signature did
// not change; the adapters decide which names a generation sees.
//
// Parameter shapes of the native events (pointers are shared and mutable):
//
//	onPluginsLoaded          (*Plugins)
//	onPluginManuallyLoaded   (Extension)
//	onConfigLoaded           (*Config)
//	onThemeLoading           (*string theme)
//	onThemeLoaded            (string theme, Generation, *Config themeConfig)
//	onRequestUrl             (*string url)
//	onRequestFile            (*string file)
//	onContentLoading         ()
//	on404ContentLoading      ()
//	on404ContentLoaded       (*string rawContent)
//	onContentLoaded          (*string rawContent)
//	onMetaParsing            ()
//	onMetaParsed             (*map[string]any meta)
//	onContentParsing         ()
//	onContentPrepared        (*string content)
//	onContentParsed          (*string content)
//	onPagesLoading           ()
//	onSinglePageLoading      (*string id, *bool skip)
//	onSinglePageContent      (string id, *string rawContent)
//	onSinglePageLoaded       (*Page)
//	onPagesDiscovered        (*Pages)
//	onPagesLoaded            (*Pages)
//	onCurrentPageDiscovered  (*Page current, *Page previous, *Page next)
//	onPageTreeBuilt          (*map[string]any tree)
//	onPageRendering          (*string templateName, *Vars)
//	onPageRendered           (*string output)
//	onMetaHeaders            (*MetaHeaders)
//	onYamlParserRegistered   (any parser)
//	onParsedownRegistered    (any parser)
//	onTwigRegistered         (any twig)

package extension

import "slices"

// Native lifecycle events fired by the host core.
const (
	EventPluginsLoaded         = "onPluginsLoaded"
	EventPluginManuallyLoaded  = "onPluginManuallyLoaded"
	EventConfigLoaded          = "onConfigLoaded"
	EventThemeLoading          = "onThemeLoading"
	EventThemeLoaded           = "onThemeLoaded"
	EventRequestURL            = "onRequestUrl"
	EventRequestFile           = "onRequestFile"
	EventContentLoading        = "onContentLoading"
	Event404ContentLoading     = "on404ContentLoading"
	Event404ContentLoaded      = "on404ContentLoaded"
	EventContentLoaded         = "onContentLoaded"
	EventMetaParsing           = "onMetaParsing"
	EventMetaParsed            = "onMetaParsed"
	EventContentParsing        = "onContentParsing"
	EventContentPrepared       = "onContentPrepared"
	EventContentParsed         = "onContentParsed"
	EventPagesLoading          = "onPagesLoading"
	EventSinglePageLoading     = "onSinglePageLoading"
	EventSinglePageContent     = "onSinglePageContent"
	EventSinglePageLoaded      = "onSinglePageLoaded"
	EventPagesDiscovered       = "onPagesDiscovered"
	EventPagesLoaded           = "onPagesLoaded"
	EventCurrentPageDiscovered = "onCurrentPageDiscovered"
	EventPageTreeBuilt         = "onPageTreeBuilt"
	EventPageRendering         = "onPageRendering"
	EventPageRendered          = "onPageRendered"
	EventMetaHeaders           = "onMetaHeaders"
	EventYamlParserRegistered  = "onYamlParserRegistered"
	EventParsedownRegistered   = "onParsedownRegistered"
	EventTwigRegistered        = "onTwigRegistered"
)

// Generation 1 events that have no native counterpart.
const (
	EventParsedownRegistration = "onParsedownRegistration"
	EventTwigRegistration      = "onTwigRegistration"
)

// Generation 0 hook names.
const (
	HookPluginsLoaded         = "plugins_loaded"
	HookConfigLoaded          = "config_loaded"
	HookRequestURL            = "request_url"
	HookBeforeLoadContent     = "before_load_content"
	HookAfterLoadContent      = "after_load_content"
	HookBefore404LoadContent  = "before_404_load_content"
	HookAfter404LoadContent   = "after_404_load_content"
	HookBeforeReadFileMeta    = "before_read_file_meta"
	HookFileMeta              = "file_meta"
	HookBeforeParseContent    = "before_parse_content"
	HookContentParsed         = "content_parsed"
	HookAfterParseContent     = "after_parse_content"
	HookGetPageData           = "get_page_data"
	HookGetPages              = "get_pages"
	HookBeforeTwigRegister    = "before_twig_register"
	HookBeforeRender          = "before_render"
	HookAfterRender           = "after_render"
)

var lifecycleEvents = []string{
	EventPluginsLoaded, EventPluginManuallyLoaded, EventConfigLoaded,
	EventThemeLoading, EventThemeLoaded, EventRequestURL, EventRequestFile,
	EventContentLoading, Event404ContentLoading, Event404ContentLoaded,
	EventContentLoaded, EventMetaParsing, EventMetaParsed, EventContentParsing,
	EventContentPrepared, EventContentParsed, EventPagesLoading,
	EventSinglePageLoading, EventSinglePageContent, EventSinglePageLoaded,
	EventPagesDiscovered, EventPagesLoaded, EventCurrentPageDiscovered,
	EventPageTreeBuilt, EventPageRendering, EventPageRendered, EventMetaHeaders,
	EventYamlParserRegistered, EventParsedownRegistered, EventTwigRegistered,
}

// LifecycleEvents returns the native lifecycle events in pipeline order.
func LifecycleEvents() []string {
	return slices.Clone(lifecycleEvents)
}

var hookNames = []string{
	HookPluginsLoaded, HookConfigLoaded, HookRequestURL,
	HookBeforeLoadContent, HookAfterLoadContent,
	HookBefore404LoadContent, HookAfter404LoadContent,
	HookBeforeReadFileMeta, HookFileMeta, HookBeforeParseContent,
	HookContentParsed, HookAfterParseContent, HookGetPageData, HookGetPages,
	HookBeforeTwigRegister, HookBeforeRender, HookAfterRender,
}

// HookNames returns every generation 0 hook name in pipeline order.
func HookNames() []string {
	return slices.Clone(hookNames)
}

// IsLifecycle reports whether name is a native lifecycle event. Any other
// name is a custom event.
func IsLifecycle(name string) bool {
	return slices.Contains(lifecycleEvents, name)
}
