package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	env := newTestEnv(t)

	out := env.run("version")
	env.contains(out, "Build Tag:    dev")
	env.contains(out, "Generations:  v0, v1, v2, v3, native")

	var info struct {
		BuildTag    string   `json:"build_tag"`
		Generations []string `json:"generations"`
	}
	require.NoError(t, json.Unmarshal(env.stdout("version", "-o", "json"), &info))
	assert.Equal(t, "dev", info.BuildTag)
	assert.Len(t, info.Generations, 5)
}

func TestRoot_InvalidOutput(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.runErr("version", "-o", "xml"); err == nil {
		t.Error("Version(-o xml) = nil, want error")
	}
}
