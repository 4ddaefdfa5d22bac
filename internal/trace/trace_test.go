package trace

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/bridge/extension"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func received(steps []Step, ext string) []string {
	var events []string
	for _, s := range steps {
		if s.Extension == ext {
			events = append(events, s.Event)
		}
	}
	return events
}

func TestProbeGeneration(t *testing.T) {
	for _, g := range extension.Generations() {
		t.Run(g.String(), func(t *testing.T) {
			p := Probe(g)
			assert.Equal(t, g, extension.Classify(p))
			assert.Equal(t, ProbeName(g), p.Name())
		})
	}
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("oldest first", func(t *testing.T) {
		steps, err := Run(ctx, extension.EventPageRendered, Options{Logger: quiet()})
		require.NoError(t, err)
		require.Len(t, steps, 5)

		var order []string
		for i, s := range steps {
			assert.Equal(t, i+1, s.Seq)
			assert.Equal(t, extension.EventPageRendered, s.Trigger)
			assert.Equal(t, steps[0].DispatchID, s.DispatchID, "one dispatch id per event")
			order = append(order, s.Extension+":"+s.Event)
		}
		assert.Equal(t, []string{
			"probe-v0:after_render",
			"probe-v1:onPageRendered",
			"probe-v2:onPageRendered",
			"probe-v3:onPageRendered",
			"probe-native:onPageRendered",
		}, order)
	})

	t.Run("selected generations", func(t *testing.T) {
		steps, err := Run(ctx, extension.EventPageRendered, Options{
			Generations: []extension.Generation{extension.Gen2},
			Logger:      quiet(),
		})
		require.NoError(t, err)
		require.Len(t, steps, 1)
		assert.Equal(t, "probe-v2", steps[0].Extension)
		assert.Equal(t, "v2", steps[0].Generation)
	})

	t.Run("custom event", func(t *testing.T) {
		steps, err := Run(ctx, "onSearch", Options{Logger: quiet()})
		require.NoError(t, err)
		var exts []string
		for _, s := range steps {
			assert.True(t, s.Custom)
			exts = append(exts, s.Extension)
		}
		assert.Equal(t, []string{"probe-v1", "probe-v2", "probe-v3", "probe-native"}, exts)
	})

	t.Run("unknown generation", func(t *testing.T) {
		_, err := Run(ctx, extension.EventPageRendered, Options{
			Generations: []extension.Generation{extension.Generation(9)},
		})
		assert.Error(t, err)
	})

	t.Run("keep loading", func(t *testing.T) {
		s, err := NewSession(ctx, Options{KeepLoading: true, Logger: quiet()})
		require.NoError(t, err)
		steps := s.Recorder.Steps()
		assert.Contains(t, received(steps, "probe-v0"), extension.HookPluginsLoaded)
		assert.Contains(t, received(steps, "probe-native"), extension.EventPluginsLoaded)
	})
}

func TestPipeline(t *testing.T) {
	ctx := context.Background()
	steps, err := Pipeline(ctx, Options{
		Site: extension.Site{
			BaseURL: "http://example.com/",
			Paths:   extension.DefaultPaths("/srv/site"),
			Theme:   "default",
		},
		Logger: quiet(),
	})
	require.NoError(t, err)

	assert.Equal(t, PipelineEvents(), received(steps, "probe-native"))

	legacy := received(steps, "probe-v0")
	for _, hook := range []string{
		extension.HookConfigLoaded,
		extension.HookRequestURL,
		extension.HookBeforeLoadContent,
		extension.HookAfterLoadContent,
		extension.HookBeforeReadFileMeta,
		extension.HookFileMeta,
		extension.HookBeforeParseContent,
		extension.HookContentParsed,
		extension.HookAfterParseContent,
		extension.HookGetPageData,
		extension.HookGetPages,
		extension.HookBeforeTwigRegister,
		extension.HookBeforeRender,
		extension.HookAfterRender,
	} {
		assert.Contains(t, legacy, hook)
	}

	v1 := received(steps, "probe-v1")
	assert.Contains(t, v1, extension.EventParsedownRegistration)
	assert.Contains(t, v1, extension.EventTwigRegistration)
	assert.Contains(t, v1, extension.EventPagesLoaded)
}
