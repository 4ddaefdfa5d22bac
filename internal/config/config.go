// Package config provides reading and writing of bridge configuration.
// Supports both global (~/.bridge/config.yaml) and local (.bridge/config.yaml).
// Reading: uses local if it exists, otherwise global.
// Writing: defaults to global, use --local for local.
//
// The tool settings describe the site a dispatcher is bridged into. The
// site's own configuration files are read by LegacyLoader (legacy.go).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jpl-au/bridge/extension"
)

var (
	// ErrNoConfigPath is returned when the config path cannot be determined.
	ErrNoConfigPath = errors.New("cannot determine config path")
	// ErrUnknownKey is returned when getting/setting an unknown config key.
	ErrUnknownKey = errors.New("unknown config key")
	// ErrInvalidValue is returned when a config value is invalid.
	ErrInvalidValue = errors.New("invalid config value")
)

// Scope represents the configuration scope (global or local).
type Scope int

const (
	// ScopeGlobal is user-wide config in ~/.bridge/config.yaml (default)
	ScopeGlobal Scope = iota
	// ScopeLocal is site-specific config in .bridge/config.yaml
	ScopeLocal
)

// Site holds the description of the bridged site.
type Site struct {
	RootDir         string `yaml:"root_dir,omitempty"`
	BaseURL         string `yaml:"base_url,omitempty"`
	RewriteURL      *bool  `yaml:"rewrite_url,omitempty"`
	Theme           string `yaml:"theme,omitempty"`
	ThemeAPIVersion *int   `yaml:"theme_api_version,omitempty"`
}

// Audit holds audit log options.
type Audit struct {
	Enabled *bool `yaml:"enabled,omitempty"`
}

// Defaults applied when not configured.
const (
	DefaultRootDir         = "."
	DefaultTheme           = "default"
	DefaultThemeAPIVersion = int(extension.Native)
)

// Config contains configuration for bridge.
type Config struct {
	Site  Site  `yaml:"site,omitempty"`
	Audit Audit `yaml:"audit,omitempty"`

	// path is the file this config was loaded from (for Save)
	path  string
	scope Scope
}

// Validate checks that all configured values are within acceptable bounds.
// Returns nil if all values are valid or not set (defaults will be used).
func (c *Config) Validate() error {
	if c.Site.ThemeAPIVersion != nil {
		v := *c.Site.ThemeAPIVersion
		if !extension.Generation(v).Valid() {
			return fmt.Errorf("%w: theme_api_version must be between %d and %d, got %d",
				ErrInvalidValue, int(extension.Gen0), int(extension.Native), v)
		}
	}
	return nil
}

// RootDir returns the site root directory (defaults to ".").
func (c *Config) RootDir() string {
	if c.Site.RootDir == "" {
		return DefaultRootDir
	}
	return c.Site.RootDir
}

// RewriteURL returns whether the site uses URL rewriting (defaults to false).
func (c *Config) RewriteURL() bool {
	if c.Site.RewriteURL == nil {
		return false
	}
	return *c.Site.RewriteURL
}

// Theme returns the active theme name (defaults to "default").
func (c *Config) Theme() string {
	if c.Site.Theme == "" {
		return DefaultTheme
	}
	return c.Site.Theme
}

// ThemeAPIVersion returns the generation the theme targets (defaults to
// native).
func (c *Config) ThemeAPIVersion() extension.Generation {
	if c.Site.ThemeAPIVersion == nil {
		return extension.Generation(DefaultThemeAPIVersion)
	}
	return extension.Generation(*c.Site.ThemeAPIVersion)
}

// AuditEnabled returns whether deliveries are written to the audit log
// (defaults to true).
func (c *Config) AuditEnabled() bool {
	if c.Audit.Enabled == nil {
		return true
	}
	return *c.Audit.Enabled
}

// HostSite describes the configured site for extension.NewHost, with
// siteCfg as the merged site configuration.
func (c *Config) HostSite(siteCfg *extension.Config) extension.Site {
	return extension.Site{
		BaseURL:         c.Site.BaseURL,
		RewriteURL:      c.RewriteURL(),
		Paths:           extension.DefaultPaths(c.RootDir()),
		Theme:           c.Theme(),
		ThemeAPIVersion: c.ThemeAPIVersion(),
		Config:          siteCfg,
	}
}

// LocalPath returns the path to the local (site) config file.
func LocalPath() string {
	return filepath.Join(".bridge", "config.yaml")
}

// GlobalPath returns the path to the global (user) config file: ~/.bridge/config.yaml
func GlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".bridge", "config.yaml")
}

// Load reads configuration: uses local if it exists, otherwise global.
func Load() (*Config, error) {
	if _, err := os.Stat(LocalPath()); err == nil {
		return LoadScope(ScopeLocal)
	}
	return LoadScope(ScopeGlobal)
}

// LoadScope reads configuration from a specific scope.
func LoadScope(scope Scope) (*Config, error) {
	return loadPath(pathForScope(scope), scope)
}

func loadPath(path string, scope Scope) (*Config, error) {
	if path == "" {
		return &Config{scope: scope}, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{path: path, scope: scope}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("malformed config file %s: %w\n\nTo fix: edit the file to correct the YAML syntax, or delete it to use defaults", path, err)
	}
	cfg.path = path
	cfg.scope = scope

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Scope returns which scope this config was loaded from.
func (c *Config) Scope() Scope {
	return c.scope
}

// Save writes the configuration to its original location.
func (c *Config) Save() error {
	if c.path == "" {
		c.path = pathForScope(c.scope)
	}
	if c.path == "" {
		return ErrNoConfigPath
	}
	return c.saveToPath(c.path)
}

// SaveScope writes the configuration to the specified scope.
func (c *Config) SaveScope(scope Scope) error {
	path := pathForScope(scope)
	if path == "" {
		return ErrNoConfigPath
	}
	return c.saveToPath(path)
}

// saveToPath writes configuration to a specific filesystem path.
// Creates parent directories as needed with mode 0755.
func (c *Config) saveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// pathForScope returns the filesystem path for a given scope.
func pathForScope(scope Scope) string {
	switch scope {
	case ScopeLocal:
		return LocalPath()
	case ScopeGlobal:
		return GlobalPath()
	default:
		return ""
	}
}
