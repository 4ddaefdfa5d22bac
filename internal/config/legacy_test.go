package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/bridge/extension"
)

// site lays out a site root with the given files (relative path -> YAML).
func site(t *testing.T, files map[string]string) extension.Paths {
	t.Helper()
	root := t.TempDir()
	for name, body := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	}
	return extension.DefaultPaths(filepath.ToSlash(root))
}

func TestLegacyLoader(t *testing.T) {
	t.Run("no sources", func(t *testing.T) {
		paths := site(t, nil)
		sc, err := LegacyLoader{Paths: paths}.Load()
		require.NoError(t, err)
		assert.Empty(t, sc.Sources)
		assert.Empty(t, sc.Config.Keys())
		assert.Empty(t, sc.Native)
	})

	t.Run("native only", func(t *testing.T) {
		paths := site(t, map[string]string{
			"config/config.yml": "site_title: Bridge\ntheme: default\n",
		})
		sc, err := LegacyLoader{Paths: paths}.Load()
		require.NoError(t, err)
		assert.Equal(t, []string{paths.Config + NativeFile}, sc.Sources)
		assert.Equal(t, "Bridge", sc.Config.String("site_title"))
		assert.Equal(t, sc.Native, sc.Config.Values())
	})

	t.Run("legacy values win", func(t *testing.T) {
		paths := site(t, map[string]string{
			"config/config.yml": "site_title: Native\ntheme: default\n",
			"config/legacy.yml": "site_title: Legacy\n",
			"config.yml":        "theme: classic\n",
		})
		sc, err := LegacyLoader{Paths: paths}.Load()
		require.NoError(t, err)
		assert.Len(t, sc.Sources, 3)
		assert.Equal(t, "Legacy", sc.Config.String("site_title"))
		assert.Equal(t, "classic", sc.Config.String("theme"))
		assert.Equal(t, "Native", sc.Native["site_title"], "native snapshot untouched")
	})

	t.Run("script normalisation", func(t *testing.T) {
		paths := site(t, map[string]string{
			"config/legacy.yml": "base_url: http://example.com\ncontent_dir: pages\ntheme_url: themes//\n",
		})
		sc, err := LegacyLoader{Paths: paths, BaseURL: "http://example.com"}.Load()
		require.NoError(t, err)
		assert.Equal(t, "http://example.com/", sc.Config.String("base_url"))
		assert.Equal(t, paths.Root+"pages/", sc.Config.String("content_dir"))
		assert.Equal(t, "http://example.com/themes/", sc.Config.String("theme_url"))
	})

	t.Run("absolute theme url kept", func(t *testing.T) {
		paths := site(t, map[string]string{
			"config/legacy.yml": "theme_url: https://cdn.example.com/themes\ncontent_dir: /var/content\n",
		})
		sc, err := LegacyLoader{Paths: paths, BaseURL: "http://example.com/"}.Load()
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/themes/", sc.Config.String("theme_url"))
		assert.Equal(t, "/var/content/", sc.Config.String("content_dir"))
	})

	t.Run("any url scheme is kept", func(t *testing.T) {
		paths := site(t, map[string]string{
			"config/legacy.yml": "theme_url: svn+ssh://host/themes\n",
		})
		sc, err := LegacyLoader{Paths: paths, BaseURL: "http://example.com/"}.Load()
		require.NoError(t, err)
		assert.Equal(t, "svn+ssh://host/themes/", sc.Config.String("theme_url"))
	})

	t.Run("theme url falls back to configured base url", func(t *testing.T) {
		paths := site(t, map[string]string{
			"config/config.yml": "base_url: http://native.example.com\n",
			"config/legacy.yml": "theme_url: themes\n",
		})
		sc, err := LegacyLoader{Paths: paths}.Load()
		require.NoError(t, err)
		assert.Equal(t, "http://native.example.com/themes/", sc.Config.String("theme_url"))
	})

	t.Run("root dir normalisation", func(t *testing.T) {
		paths := site(t, map[string]string{
			"config.yml": "base_url: http://example.com\ncontent_dir: 'content\\'\n",
		})
		sc, err := LegacyLoader{Paths: paths}.Load()
		require.NoError(t, err)
		assert.Equal(t, "http://example.com/", sc.Config.String("base_url"))
		assert.Equal(t, "content/", sc.Config.String("content_dir"))
	})

	t.Run("malformed source", func(t *testing.T) {
		paths := site(t, map[string]string{
			"config/legacy.yml": "- not\n- a mapping\n",
		})
		_, err := LegacyLoader{Paths: paths}.Load()
		assert.ErrorContains(t, err, "malformed site config")
	})
}

func TestLoadSite(t *testing.T) {
	paths := site(t, map[string]string{
		"config/config.yml": "site_title: Bridge\n",
	})
	c := &Config{}
	require.NoError(t, c.Set("site.root_dir", paths.Root))
	require.NoError(t, c.Set("site.theme_api_version", "1"))

	hs, sc, err := c.LoadSite()
	require.NoError(t, err)
	assert.Same(t, sc.Config, hs.Config)
	assert.Equal(t, "Bridge", hs.Config.String("site_title"))
	assert.Equal(t, extension.Gen1, hs.ThemeAPIVersion)
	assert.Equal(t, paths.Config, hs.Paths.Config)
}
