package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/bridge/extension"
)

func TestDefaults(t *testing.T) {
	c := &Config{}
	assert.Equal(t, ".", c.RootDir())
	assert.Equal(t, "default", c.Theme())
	assert.Equal(t, extension.Native, c.ThemeAPIVersion())
	assert.False(t, c.RewriteURL())
	assert.True(t, c.AuditEnabled())

	for _, key := range ValidKeys() {
		assert.False(t, c.IsSet(key), key)
	}
}

func TestGetSet(t *testing.T) {
	tests := []struct {
		key   string
		value string
		want  string
	}{
		{"site.root_dir", "/srv/site", "/srv/site"},
		{"site.base_url", "http://example.com", "http://example.com/"},
		{"site.base_url", "http://example.com///", "http://example.com/"},
		{"site.rewrite_url", "TRUE", "true"},
		{"site.theme", "classic", "classic"},
		{"site.theme_api_version", "2", "2"},
		{"audit.enabled", "false", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			c := &Config{}
			require.NoError(t, c.Set(tt.key, tt.value))
			got, err := c.Get(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, c.IsSet(tt.key))
		})
	}
}

func TestSetErrors(t *testing.T) {
	c := &Config{}

	err := c.Set("site.theme_api_version", "9")
	assert.ErrorIs(t, err, ErrInvalidValue)

	err = c.Set("site.theme_api_version", "two")
	assert.ErrorIs(t, err, ErrInvalidValue)

	err = c.Set("audit.enabled", "yes")
	assert.ErrorIs(t, err, ErrInvalidValue)

	err = c.Set("author.name", "x")
	assert.ErrorIs(t, err, ErrUnknownKey)

	_, err = c.Get("author.name")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestAll(t *testing.T) {
	c := &Config{}
	require.NoError(t, c.Set("site.theme", "classic"))

	all := c.All()
	assert.Len(t, all, len(ValidKeys()))
	assert.Equal(t, "classic", all["site.theme"])
	assert.Equal(t, "true", all["audit.enabled"])
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".bridge", "config.yaml")

	c := &Config{}
	require.NoError(t, c.Set("site.base_url", "http://example.com"))
	require.NoError(t, c.Set("site.theme_api_version", "1"))
	require.NoError(t, c.saveToPath(path))

	loaded, err := loadPath(path, ScopeLocal)
	require.NoError(t, err)
	assert.Equal(t, ScopeLocal, loaded.Scope())
	assert.Equal(t, "http://example.com/", loaded.Site.BaseURL)
	assert.Equal(t, extension.Gen1, loaded.ThemeAPIVersion())
	assert.False(t, loaded.IsSet("audit.enabled"))
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		c, err := loadPath(filepath.Join(dir, "missing.yaml"), ScopeGlobal)
		require.NoError(t, err)
		assert.Equal(t, ScopeGlobal, c.Scope())
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("site: [unclosed"), 0644))
		_, err := loadPath(path, ScopeLocal)
		assert.ErrorContains(t, err, "malformed config file")
	})

	t.Run("invalid value", func(t *testing.T) {
		path := filepath.Join(dir, "invalid.yaml")
		require.NoError(t, os.WriteFile(path, []byte("site:\n  theme_api_version: 7\n"), 0644))
		_, err := loadPath(path, ScopeLocal)
		assert.ErrorIs(t, err, ErrInvalidValue)
	})
}

func TestHostSite(t *testing.T) {
	c := &Config{}
	require.NoError(t, c.Set("site.root_dir", "/srv/site"))
	require.NoError(t, c.Set("site.theme_api_version", "2"))

	siteCfg := extension.NewConfig(map[string]any{"site_title": "Bridge"})
	site := c.HostSite(siteCfg)

	assert.Equal(t, "/srv/site/", site.Paths.Root)
	assert.Equal(t, "/srv/site/content/", site.Paths.Content)
	assert.Equal(t, extension.Gen2, site.ThemeAPIVersion)
	assert.Same(t, siteCfg, site.Config)
}
