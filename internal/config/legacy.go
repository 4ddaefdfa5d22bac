// legacy.go merges the configuration sources of older site layouts into the
// site configuration handed to onConfigLoaded.
//
// Separated from config.go because it reads the site's files, not bridge's
// own settings. Three sources are read, each optional:
//
//	<config_dir>/config.yml   native configuration
//	<config_dir>/legacy.yml   configuration written for the old loader
//	<root_dir>/config.yml     configuration kept in the site root
//
// Design: Later sources win key by key, so a legacy value always overrides
// the native one. Values are normalised the way the old loader did before
// they are merged; nothing is normalised in the native source.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jpl-au/bridge/extension"
)

// Site configuration file names.
const (
	NativeFile  = "config.yml"
	ScriptFile  = "legacy.yml"
	RootDirFile = "config.yml"
)

// LegacyLoader reads and merges site configuration sources.
type LegacyLoader struct {
	Paths   extension.Paths
	BaseURL string // used to resolve a relative theme_url
}

// SiteConfig is the outcome of LegacyLoader.Load.
type SiteConfig struct {
	Native  map[string]any    // native source only
	Config  *extension.Config // all sources merged
	Sources []string          // files that were read, in merge order
}

// Load reads every source that exists and merges them. Missing files are
// skipped; unreadable or malformed files are errors.
func (l LegacyLoader) Load() (*SiteConfig, error) {
	sc := &SiteConfig{}

	native, ok, err := l.read(l.Paths.Config + NativeFile)
	if err != nil {
		return nil, err
	}
	if ok {
		sc.Sources = append(sc.Sources, l.Paths.Config+NativeFile)
	}
	if native == nil {
		native = map[string]any{}
	}
	sc.Native = native
	sc.Config = extension.NewConfig(native)

	script, ok, err := l.read(l.Paths.Config + ScriptFile)
	if err != nil {
		return nil, err
	}
	if ok {
		sc.Sources = append(sc.Sources, l.Paths.Config+ScriptFile)
		sc.Config.Merge(l.normaliseScript(script, sc.Config))
	}

	root, ok, err := l.read(l.Paths.Root + RootDirFile)
	if err != nil {
		return nil, err
	}
	// the root file is the native file when both directories coincide
	if ok && l.Paths.Root+RootDirFile != l.Paths.Config+NativeFile {
		sc.Sources = append(sc.Sources, l.Paths.Root+RootDirFile)
		sc.Config.Merge(normaliseRoot(root))
	}

	return sc, nil
}

// read decodes a YAML mapping. A missing file returns ok == false.
func (l LegacyLoader) read(path string) (map[string]any, bool, error) {
	data, err := os.ReadFile(filepath.FromSlash(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cannot read site config %s: %w", path, err)
	}

	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, false, fmt.Errorf("malformed site config %s: %w", path, err)
	}
	return values, true, nil
}

// normaliseScript applies the old loader's rules: base_url and theme_url
// end in a slash, a relative theme_url is resolved against the base URL and
// content_dir is made absolute. Empty values are left alone.
func (l LegacyLoader) normaliseScript(values map[string]any, current *extension.Config) map[string]any {
	if s, ok := nonEmpty(values, "base_url"); ok {
		values["base_url"] = strings.TrimRight(s, "/") + "/"
	}
	if s, ok := nonEmpty(values, "content_dir"); ok {
		values["content_dir"] = l.absolutePath(s)
	}
	if s, ok := nonEmpty(values, "theme_url"); ok {
		s = strings.TrimRight(s, "/") + "/"
		if !extension.HasScheme(s) {
			s = l.baseURL(current) + s
		}
		values["theme_url"] = s
	}
	return values
}

// normaliseRoot only fixes trailing separators; root-dir configuration
// was never resolved further.
func normaliseRoot(values map[string]any) map[string]any {
	if s, ok := values["base_url"].(string); ok {
		values["base_url"] = strings.TrimRight(s, "/") + "/"
	}
	if s, ok := values["content_dir"].(string); ok {
		values["content_dir"] = strings.TrimRight(s, `/\`) + "/"
	}
	return values
}

func (l LegacyLoader) baseURL(current *extension.Config) string {
	if l.BaseURL != "" {
		return strings.TrimRight(l.BaseURL, "/") + "/"
	}
	if s := current.String("base_url"); s != "" {
		return strings.TrimRight(s, "/") + "/"
	}
	return ""
}

func (l LegacyLoader) absolutePath(p string) string {
	p = strings.TrimRight(p, `/\`) + "/"
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") {
		return p
	}
	return l.Paths.Root + p
}

func nonEmpty(values map[string]any, key string) (string, bool) {
	s, ok := values[key].(string)
	return s, ok && s != ""
}

// LoadSite reads the site configuration of the site described by c and
// returns the host description together with the merge result.
func (c *Config) LoadSite() (extension.Site, *SiteConfig, error) {
	l := LegacyLoader{Paths: extension.DefaultPaths(c.RootDir()), BaseURL: c.Site.BaseURL}
	sc, err := l.Load()
	if err != nil {
		return extension.Site{}, nil, err
	}
	return c.HostSite(sc.Config), sc, nil
}
