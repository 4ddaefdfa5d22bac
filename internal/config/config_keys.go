// config_keys.go provides key-value access to configuration settings.
//
// Separated from config.go to isolate the key enumeration and string-based
// get/set logic. config.go deals with YAML structure and loading; this file
// serves the MCP and CLI interface where config is accessed by string keys
// (e.g., "site.base_url").
//
// Design: Pointers are used for optional fields so we can distinguish between
// "not set" (nil) and "explicitly set to zero/false". Defaults only apply
// when the user hasn't set a value.

package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jpl-au/bridge/extension"
)

// ValidKeys returns all valid configuration keys.
func ValidKeys() []string {
	return []string{
		"site.root_dir", "site.base_url", "site.rewrite_url",
		"site.theme", "site.theme_api_version",
		"audit.enabled",
	}
}

// IsValidKey returns true if the key is a valid configuration key.
func IsValidKey(key string) bool {
	return slices.Contains(ValidKeys(), key)
}

// Get returns the value of a configuration key as a string.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "site.root_dir":
		return c.RootDir(), nil
	case "site.base_url":
		return c.Site.BaseURL, nil
	case "site.rewrite_url":
		return strconv.FormatBool(c.RewriteURL()), nil
	case "site.theme":
		return c.Theme(), nil
	case "site.theme_api_version":
		return strconv.Itoa(int(c.ThemeAPIVersion())), nil
	case "audit.enabled":
		return strconv.FormatBool(c.AuditEnabled()), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// Set sets the value of a configuration key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "site.root_dir":
		c.Site.RootDir = value
	case "site.base_url":
		if value != "" {
			value = strings.TrimRight(value, "/") + "/"
		}
		c.Site.BaseURL = value
	case "site.rewrite_url":
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		c.Site.RewriteURL = &b
	case "site.theme":
		c.Site.Theme = value
	case "site.theme_api_version":
		n, err := strconv.Atoi(value)
		if err != nil || !extension.Generation(n).Valid() {
			return fmt.Errorf("%w: site.theme_api_version must be an integer between %d and %d",
				ErrInvalidValue, int(extension.Gen0), int(extension.Native))
		}
		c.Site.ThemeAPIVersion = &n
	case "audit.enabled":
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		c.Audit.Enabled = &b
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

func parseBool(key, value string) (bool, error) {
	v := strings.ToLower(value)
	if v != "true" && v != "false" {
		return false, fmt.Errorf("%w: %s must be true or false", ErrInvalidValue, key)
	}
	return v == "true", nil
}

// All returns all configuration values as a map.
func (c *Config) All() map[string]string {
	all := make(map[string]string, len(ValidKeys()))
	for _, key := range ValidKeys() {
		all[key], _ = c.Get(key)
	}
	return all
}

// IsSet returns true if the key has an explicit value (not just defaults).
func (c *Config) IsSet(key string) bool {
	switch key {
	case "site.root_dir":
		return c.Site.RootDir != ""
	case "site.base_url":
		return c.Site.BaseURL != ""
	case "site.rewrite_url":
		return c.Site.RewriteURL != nil
	case "site.theme":
		return c.Site.Theme != ""
	case "site.theme_api_version":
		return c.Site.ThemeAPIVersion != nil
	case "audit.enabled":
		return c.Audit.Enabled != nil
	default:
		return false
	}
}
