package guide

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	main, err := Get("")
	require.NoError(t, err)
	assert.Contains(t, main, "# bridge")

	v0, err := Get("v0")
	require.NoError(t, err)
	assert.Contains(t, v0, "before_render")

	_, err = Get("nope")
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	names, err := List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"chain", "config", "native", "trace", "v0", "v1", "v2", "v3"}, names)
	assert.NotContains(t, names, "guide")
}
