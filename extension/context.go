// context.go defines the Host interface through which adapters reach the
// host core.
//
// Separated from extension.go to isolate dependency injection concerns.
// Adapters need a handful of facts about the running site (base URL, theme,
// directories) and one action (loading a plugin late). Everything else the
// core does stays behind this interface.
//
// Design: Directory locations are carried by an explicit Paths value rather
// than process-wide constants, so several sites can be bridged in one
// process.

package extension

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// ErrTemplateNotFound is returned by Host.TemplatePath for unknown names.
var ErrTemplateNotFound = errors.New("template not found")

// Paths holds the directory layout of a site. Directory values end in a
// path separator.
type Paths struct {
	Root       string `yaml:"root_dir" json:"root_dir"`
	Config     string `yaml:"config_dir" json:"config_dir"`
	Plugins    string `yaml:"plugins_dir" json:"plugins_dir"`
	Themes     string `yaml:"themes_dir" json:"themes_dir"`
	Vendor     string `yaml:"vendor_dir" json:"vendor_dir"`
	Content    string `yaml:"content_dir" json:"content_dir"`
	ContentExt string `yaml:"content_ext" json:"content_ext"`
}

// DefaultPaths derives the conventional layout below root.
func DefaultPaths(root string) Paths {
	root = dirPath(root)
	return Paths{
		Root:       root,
		Config:     root + "config/",
		Plugins:    root + "plugins/",
		Themes:     root + "themes/",
		Vendor:     root + "vendor/",
		Content:    root + "content/",
		ContentExt: ".md",
	}
}

// Host gives adapters controlled access to the host core.
type Host interface {
	// LoadPlugin makes ext a loaded plugin of the host.
	LoadPlugin(ext Extension) error
	// Plugins returns the plugins currently loaded by the host.
	Plugins() Plugins
	// PluginDir returns the base directory of a plugin, or "".
	PluginDir(name string) string

	BaseURL() string
	// AbsoluteURL resolves u against the base URL and ensures a trailing
	// slash.
	AbsoluteURL(u string) string
	RewriteURL() bool
	Paths() Paths

	Theme() string
	ThemeAPIVersion() Generation
	// TemplatePath returns the file backing a template name.
	TemplatePath(name string) (string, error)

	// RequestFile returns the content file serving the current request.
	RequestFile() string
	Config() *Config
}

// Site describes a site served by a host. It is the input of NewHost.
type Site struct {
	BaseURL         string
	RewriteURL      bool
	Paths           Paths
	Theme           string
	ThemeAPIVersion Generation
	RequestFile     string
	PluginDirs      map[string]string
	Config          *Config
}

// siteHost implements Host over a static Site description.
type siteHost struct {
	mu      sync.Mutex
	site    Site
	plugins Plugins
}

// NewHost returns a Host answering from site. Plugins loaded through it
// are only recorded.
func NewHost(site Site) Host {
	if site.Config == nil {
		site.Config = NewConfig(nil)
	}
	return &siteHost{site: site, plugins: make(Plugins)}
}

func (h *siteHost) LoadPlugin(ext Extension) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.plugins[ext.Name()]; ok {
		return fmt.Errorf("plugin %s already loaded", ext.Name())
	}
	h.plugins[ext.Name()] = ext
	return nil
}

func (h *siteHost) Plugins() Plugins {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(Plugins, len(h.plugins))
	for k, v := range h.plugins {
		out[k] = v
	}
	return out
}

func (h *siteHost) PluginDir(name string) string { return h.site.PluginDirs[name] }
func (h *siteHost) BaseURL() string              { return h.site.BaseURL }
func (h *siteHost) RewriteURL() bool             { return h.site.RewriteURL }
func (h *siteHost) Paths() Paths                 { return h.site.Paths }
func (h *siteHost) Theme() string                { return h.site.Theme }
func (h *siteHost) ThemeAPIVersion() Generation  { return h.site.ThemeAPIVersion }
func (h *siteHost) RequestFile() string          { return h.site.RequestFile }
func (h *siteHost) Config() *Config              { return h.site.Config }

func (h *siteHost) AbsoluteURL(u string) string {
	return AbsoluteURL(h.site.BaseURL, u)
}

func (h *siteHost) TemplatePath(name string) (string, error) {
	if h.site.Paths.Themes == "" || h.site.Theme == "" {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	p := filepath.Join(h.site.Paths.Themes, h.site.Theme, name)
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	return p, nil
}

var schemeRE = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+\-.]*://`)

// HasScheme reports whether u starts with a URL scheme such as "https://".
func HasScheme(u string) bool {
	return schemeRE.MatchString(u)
}

// AbsoluteURL resolves u against base. URLs with a scheme and
// root-relative URLs are kept; the result always ends in "/".
func AbsoluteURL(base, u string) string {
	if !HasScheme(u) && !strings.HasPrefix(u, "/") {
		u = base + u
	}
	return strings.TrimRight(u, "/") + "/"
}

func dirPath(p string) string {
	if p == "" {
		return ""
	}
	return strings.TrimRight(p, `/\`) + "/"
}
