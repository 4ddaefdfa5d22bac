package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvents(t *testing.T) {
	t.Run("single adapter", func(t *testing.T) {
		env := newTestEnv(t)

		out := env.run("events", "--adapter", "plugin/0")
		env.contains(out, "plugin/0 (v0) <- plugin/1, theme/0")
		env.contains(out, "after_render")
		env.contains(out, "config_loaded")
	})

	t.Run("bare generation is the plugin track", func(t *testing.T) {
		env := newTestEnv(t)

		out := env.run("events", "--adapter", "2")
		env.contains(out, "plugin/2 (v2)")
		env.contains(out, "forwards custom events")
	})

	t.Run("all adapters as json", func(t *testing.T) {
		env := newTestEnv(t)

		var all []struct {
			ID           string   `json:"id"`
			Dependencies []string `json:"dependencies"`
		}
		require.NoError(t, json.Unmarshal(env.stdout("events", "-o", "json"), &all))
		require.Len(t, all, 8)
		assert.Equal(t, "plugin/0", all[0].ID)
		assert.Equal(t, "theme/3", all[7].ID)
		assert.Empty(t, all[7].Dependencies)
	})
}

func TestEvents_Errors(t *testing.T) {
	env := newTestEnv(t)

	for _, id := range []string{"plugin/9", "widget/1", "x"} {
		if _, err := env.runErr("events", "--adapter", id); err == nil {
			t.Errorf("Events(%s) = nil, want error", id)
		}
	}
}
