package adapter

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/jpl-au/bridge/extension"
)

// Events the theme track carries. Theme adapters keep the native
// parameter shapes; only template variables change.
var themeEvents = []string{
	extension.EventConfigLoaded,
	extension.EventThemeLoaded,
	extension.EventPageRendering,
	extension.EventTwigRegistered,
}

// theme3 feeds the theme track. Generation 3 themes see native data.
type theme3 struct {
	base
}

// NewTheme3 returns the generation 3 theme adapter.
func NewTheme3(env Env) (Adapter, error) {
	a := &theme3{newBase(env, Theme(extension.Gen3))}
	a.identity(themeEvents...)
	return a, nil
}

// theme2 restores the template variables generation 2 themes used and
// decides output escaping for templates of older themes and plugins.
type theme2 struct {
	base

	autoescape any
	configured bool
}

// NewTheme2 returns the generation 2 theme adapter.
func NewTheme2(env Env) (Adapter, error) {
	a := &theme2{base: newBase(env, Theme(extension.Gen2), Theme(extension.Gen3))}
	a.identity(themeEvents...)
	a.handle(extension.EventConfigLoaded, a.onConfigLoaded)
	a.handle(extension.EventPageRendering, a.onPageRendering)
	return a, nil
}

func (a *theme2) onConfigLoaded(_ context.Context, params extension.Params) error {
	cfg, err := extension.Arg[*extension.Config](params, extension.EventConfigLoaded, 0)
	if err != nil {
		return err
	}
	if cfg == nil {
		return extension.Malformed(extension.EventConfigLoaded, "#0", "nil config")
	}
	if twig := cfg.Map("twig_config"); twig != nil {
		a.autoescape, a.configured = twig["autoescape"]
	}
	return nil
}

func (a *theme2) onPageRendering(_ context.Context, params extension.Params) error {
	vars, err := templateVars(extension.EventPageRendering, params)
	if err != nil {
		return err
	}
	if _, ok := vars["prev_page"]; !ok {
		if prev, ok := vars["previous_page"]; ok {
			vars["prev_page"] = prev
		}
	}
	if a.env.Host != nil {
		paths := a.env.Host.Paths()
		vars["base_dir"] = strings.TrimRight(paths.Root, "/")
		vars["theme_dir"] = paths.Themes + a.env.Host.Theme()
	}
	return nil
}

// EscapeStrategy returns the escaping strategy for template name and
// whether output is escaped at all. An explicit twig_config.autoescape
// setting always wins. Otherwise only templates owned by a generation 3
// theme or plugin are escaped; templates that cannot be attributed to an
// owner are treated as the oldest API and left unescaped.
func (a *theme2) EscapeStrategy(name string) (string, bool) {
	if a.configured {
		s, ok := a.autoescape.(string)
		return s, ok && s != ""
	}
	if a.env.Host == nil {
		return "", false
	}
	path, err := a.env.Host.TemplatePath(name)
	if err != nil {
		return "", false
	}
	gen, ok := a.owner(path)
	if !ok || gen < extension.Gen3 {
		return "", false
	}
	return "html", true
}

// owner returns the generation of the theme or plugin a template file
// belongs to.
func (a *theme2) owner(path string) (extension.Generation, bool) {
	host := a.env.Host
	paths := host.Paths()
	if theme := host.Theme(); theme != "" && paths.Themes != "" && within(path, paths.Themes+theme) {
		return host.ThemeAPIVersion(), true
	}
	if a.env.Emitter == nil {
		return 0, false
	}
	for _, name := range host.Plugins().Names() {
		dir := host.PluginDir(name)
		switch dir {
		case "", paths.Root, paths.Vendor, paths.Plugins, paths.Themes:
			continue
		}
		if within(path, dir) {
			return a.env.Emitter.Generation(name)
		}
	}
	return 0, false
}

// within reports whether path lies below dir. Both are cleaned first, so
// "./themes/x" and "themes/x" name the same directory.
func within(path, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// EscapePolicy is implemented by adapters that decide template escaping.
type EscapePolicy interface {
	EscapeStrategy(name string) (string, bool)
}

// theme1 adds the template variables generation 1 themes expect.
type theme1 struct {
	base
}

// NewTheme1 returns the generation 1 theme adapter.
func NewTheme1(env Env) (Adapter, error) {
	a := &theme1{newBase(env, Theme(extension.Gen1), Theme(extension.Gen2))}
	a.identity(extension.EventPageRendering)
	a.handle(extension.EventPageRendering, a.onPageRendering)
	return a, nil
}

func (a *theme1) onPageRendering(_ context.Context, params extension.Params) error {
	vars, err := templateVars(extension.EventPageRendering, params)
	if err != nil {
		return err
	}
	host := a.env.Host
	if host == nil {
		return nil
	}
	if _, ok := vars["rewrite_url"]; !ok {
		vars["rewrite_url"] = host.RewriteURL()
	}
	if _, ok := vars["is_front_page"]; !ok {
		paths := host.Paths()
		vars["is_front_page"] = host.RequestFile() == paths.Content+"index"+paths.ContentExt
	}
	return nil
}

// theme0 terminates the theme track. Generation 0 themes get the
// generation 1 variables and nothing else.
type theme0 struct {
	base
}

// NewTheme0 returns the generation 0 theme adapter.
func NewTheme0(env Env) (Adapter, error) {
	return &theme0{newBase(env, Theme(extension.Gen0), Theme(extension.Gen1))}, nil
}

// templateVars returns the template variables of an onPageRendering
// event, creating the map if needed.
func templateVars(event string, params extension.Params) (extension.Vars, error) {
	vars, err := extension.Arg[*extension.Vars](params, event, 1)
	if err != nil {
		return nil, err
	}
	if vars == nil {
		return nil, extension.Malformed(event, "#1", "nil template variables")
	}
	if *vars == nil {
		*vars = make(extension.Vars)
	}
	return *vars, nil
}
