package dispatcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/bridge/extension"
	"github.com/jpl-au/bridge/internal/adapter"
	"github.com/jpl-au/bridge/internal/log"
)

type handlerFunc func(ctx context.Context, event string, params extension.Params) error

// ext is a test extension of any generation >= 1.
type ext struct {
	name   string
	gen    extension.Generation // 0 means "undeclared" (generation 1)
	handle handlerFunc
	custom handlerFunc
}

func (e *ext) Name() string { return e.name }

func (e *ext) HandleEvent(ctx context.Context, event string, params extension.Params) error {
	if e.handle == nil {
		return nil
	}
	return e.handle(ctx, event, params)
}

type versioned struct{ *ext }

func (v versioned) APIVersion() extension.Generation { return v.gen }

type customExt struct{ versioned }

func (c customExt) HandleCustomEvent(ctx context.Context, event string, params extension.Params) error {
	return c.custom(ctx, event, params)
}

// hookExt is a generation 0 extension.
type hookExt struct {
	name  string
	hooks extension.Hooks
}

func (h *hookExt) Name() string           { return h.name }
func (h *hookExt) Hooks() extension.Hooks { return h.hooks }

func v1(name string, h handlerFunc) extension.Extension { return &ext{name: name, handle: h} }

func gen(name string, g extension.Generation, h handlerFunc) extension.Extension {
	return versioned{&ext{name: name, gen: g, handle: h}}
}

// journal records deliveries in order.
type journal struct{ entries []string }

func (j *journal) record(name string) handlerFunc {
	return func(_ context.Context, event string, _ extension.Params) error {
		j.entries = append(j.entries, name+":"+event)
		return nil
	}
}

func (j *journal) hook(name, hook string) extension.HookFunc {
	return func(context.Context, extension.Params) error {
		j.entries = append(j.entries, name+":"+hook)
		return nil
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newDispatcher(t *testing.T, site extension.Site, opts ...Option) *Dispatcher {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	d, err := New(extension.NewHost(site), opts...)
	require.NoError(t, err)
	return d
}

func TestNew(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = New(extension.NewHost(extension.Site{}), WithLogger(nil))
	assert.Error(t, err)

	_, err = New(extension.NewHost(extension.Site{}), WithAdapter(adapter.Plugin(extension.Gen1), nil))
	assert.Error(t, err)
}

func TestConfigLoadedEndToEnd(t *testing.T) {
	ctx := context.Background()
	d := newDispatcher(t, extension.Site{BaseURL: "http://example.com/"})

	var legacyCfg, nativeCfg *extension.Config
	x := v1("X", func(_ context.Context, event string, params extension.Params) error {
		if event == extension.EventConfigLoaded {
			legacyCfg = params[0].(*extension.Config)
			assert.Equal(t, "http://example.com/mytheme/", legacyCfg.String("themes_url"))
			assert.Nil(t, nativeCfg, "legacy handler must run before native")
		}
		return nil
	})
	y := gen("Y", extension.Native, func(_ context.Context, event string, params extension.Params) error {
		if event == extension.EventConfigLoaded {
			nativeCfg = params[0].(*extension.Config)
		}
		return nil
	})

	require.NoError(t, d.OnExtensionsLoaded(ctx, []extension.Extension{x, y}))

	cfg := extension.NewConfig(map[string]any{"theme_url": "mytheme"})
	require.NoError(t, d.Dispatch(ctx, extension.EventConfigLoaded, cfg))

	require.NotNil(t, legacyCfg)
	require.NotNil(t, nativeCfg)
	assert.Same(t, cfg, legacyCfg)
	assert.Same(t, cfg, nativeCfg)

	assert.True(t, cfg.Has("theme_url"))
	assert.True(t, cfg.Has("themes_url"))
	assert.True(t, cfg.Aliased("theme_url", "themes_url"))
	assert.Equal(t, cfg.String("theme_url"), cfg.String("themes_url"))
}

func TestDeliveryOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("registration order within a generation", func(t *testing.T) {
		d := newDispatcher(t, extension.Site{})
		j := &journal{}
		var exts []extension.Extension
		for _, n := range []string{"e1", "e2", "e3", "e4"} {
			exts = append(exts, gen(n, extension.Native, j.record(n)))
		}
		require.NoError(t, d.OnExtensionsLoaded(ctx, exts))

		j.entries = nil
		require.NoError(t, d.Dispatch(ctx, extension.EventPageRendered, new(string)))
		assert.Equal(t, []string{
			"e1:onPageRendered", "e2:onPageRendered", "e3:onPageRendered", "e4:onPageRendered",
		}, j.entries)
	})

	t.Run("oldest generation first", func(t *testing.T) {
		d := newDispatcher(t, extension.Site{})
		j := &journal{}
		exts := []extension.Extension{
			gen("native", extension.Native, j.record("native")),
			gen("three", extension.Gen3, j.record("three")),
			gen("two", extension.Gen2, j.record("two")),
			v1("one", j.record("one")),
			&hookExt{name: "zero", hooks: extension.Hooks{
				extension.HookAfterRender: j.hook("zero", extension.HookAfterRender),
			}},
		}
		require.NoError(t, d.OnExtensionsLoaded(ctx, exts))

		j.entries = nil
		output := "<html>"
		require.NoError(t, d.Dispatch(ctx, extension.EventPageRendered, &output))
		assert.Equal(t, []string{
			"zero:after_render",
			"one:onPageRendered",
			"two:onPageRendered",
			"three:onPageRendered",
			"native:onPageRendered",
		}, j.entries)
	})

	t.Run("shared parameters see earlier edits", func(t *testing.T) {
		d := newDispatcher(t, extension.Site{})
		old := v1("old", func(_ context.Context, event string, params extension.Params) error {
			if event == extension.EventPageRendered {
				*params[0].(*string) += " old"
			}
			return nil
		})
		var seen string
		native := gen("native", extension.Native, func(_ context.Context, event string, params extension.Params) error {
			if event == extension.EventPageRendered {
				seen = *params[0].(*string)
				*params[0].(*string) += " native"
			}
			return nil
		})
		require.NoError(t, d.OnExtensionsLoaded(ctx, []extension.Extension{native, old}))

		output := "page"
		require.NoError(t, d.Dispatch(ctx, extension.EventPageRendered, &output))
		assert.Equal(t, "page old", seen)
		assert.Equal(t, "page old native", output)
	})

	t.Run("dependency translation applied first", func(t *testing.T) {
		d := newDispatcher(t, extension.Site{Paths: extension.DefaultPaths("/srv/site"), Theme: "default"})
		var seen extension.Vars
		zero := &hookExt{name: "zero", hooks: extension.Hooks{
			extension.HookBeforeRender: func(_ context.Context, params extension.Params) error {
				seen = *params[0].(*extension.Vars)
				return nil
			},
		}}
		require.NoError(t, d.OnExtensionsLoaded(ctx, []extension.Extension{zero}))

		name := "index.twig"
		vars := extension.Vars{"previous_page": "prev"}
		require.NoError(t, d.Dispatch(ctx, extension.EventPageRendering, &name, &vars))

		require.NotNil(t, seen)
		assert.Equal(t, "prev", seen["prev_page"], "theme/2 ran before plugin/0")
		assert.Contains(t, seen, "is_front_page", "theme/1 ran before plugin/0")
		assert.Equal(t, "index.twig", name)
	})
}

func TestFailureIsolation(t *testing.T) {
	ctx := context.Background()

	t.Run("malformed event skips one recipient", func(t *testing.T) {
		d := newDispatcher(t, extension.Site{})
		j := &journal{}
		broken := gen("broken", extension.Native, func(context.Context, string, extension.Params) error {
			return extension.Malformed(extension.EventPageRendered, "#0", "boom")
		})
		require.NoError(t, d.OnExtensionsLoaded(ctx, []extension.Extension{
			broken, gen("ok", extension.Native, j.record("ok")),
		}))

		j.entries = nil
		require.NoError(t, d.Dispatch(ctx, extension.EventPageRendered, new(string)))
		assert.Equal(t, []string{"ok:onPageRendered"}, j.entries)
	})

	t.Run("adapter failure does not stop native delivery", func(t *testing.T) {
		d := newDispatcher(t, extension.Site{})
		j := &journal{}
		zero := &hookExt{name: "zero", hooks: extension.Hooks{
			extension.HookGetPageData: j.hook("zero", extension.HookGetPageData),
		}}
		require.NoError(t, d.OnExtensionsLoaded(ctx, []extension.Extension{
			zero, gen("native", extension.Native, j.record("native")),
		}))

		j.entries = nil
		page := extension.Page{"id": "index"}
		require.NoError(t, d.Dispatch(ctx, extension.EventSinglePageLoaded, &page))
		assert.Equal(t, []string{"native:onSinglePageLoaded"}, j.entries)
	})

	t.Run("protocol violation aborts", func(t *testing.T) {
		d := newDispatcher(t, extension.Site{})
		j := &journal{}
		thief := v1("thief", func(_ context.Context, event string, params extension.Params) error {
			if event == extension.EventPluginsLoaded {
				delete(*params[0].(*extension.Plugins), "victim")
			}
			return nil
		})
		victim := gen("victim", extension.Native, j.record("victim"))

		err := d.OnExtensionsLoaded(ctx, []extension.Extension{thief, victim})
		require.Error(t, err)
		assert.ErrorIs(t, err, extension.ErrProtocolViolation)

		var pv *extension.ProtocolViolationError
		require.True(t, errors.As(err, &pv))
		assert.Equal(t, extension.ViolationRemove, pv.Behaviour)
		assert.Equal(t, []string{"victim"}, pv.Names)
		assert.Empty(t, j.entries, "native extensions must not see an aborted event")
	})

	t.Run("added plugin is loaded late", func(t *testing.T) {
		d := newDispatcher(t, extension.Site{})
		j := &journal{}
		late := gen("late", extension.Native, j.record("late"))
		adder := v1("adder", func(_ context.Context, event string, params extension.Params) error {
			if event == extension.EventPluginsLoaded {
				(*params[0].(*extension.Plugins))["late"] = late
			}
			return nil
		})

		require.NoError(t, d.OnExtensionsLoaded(ctx, []extension.Extension{adder}))
		g, ok := d.Generation("late")
		require.True(t, ok)
		assert.Equal(t, extension.Native, g)
		assert.Contains(t, j.entries, "late:onPluginManuallyLoaded")
		assert.Contains(t, d.Host().Plugins(), "late")
	})
}

func TestAbortAuditedEveryDispatch(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	require.NoError(t, log.Open())
	t.Cleanup(log.Close)
	log.SetProject(t.TempDir())

	ctx := context.Background()
	d := newDispatcher(t, extension.Site{})
	strict := gen("strict", extension.Native, func(_ context.Context, event string, _ extension.Params) error {
		if event == extension.EventPageRendered {
			return extension.ErrProtocolViolation
		}
		return nil
	})
	require.NoError(t, d.OnExtensionsLoaded(ctx, []extension.Extension{strict}))

	for range 2 {
		err := d.Dispatch(ctx, extension.EventPageRendered, new(string))
		require.ErrorIs(t, err, extension.ErrProtocolViolation)
		assert.Nil(t, d.aborted)
	}

	entries, err := log.Recent(10)
	require.NoError(t, err)
	var aborts int
	for _, e := range entries {
		if e.Action == "abort" && e.Extension == "strict" {
			aborts++
		}
	}
	assert.Equal(t, 2, aborts, "each dispatch records its own abort")
}

func TestCustomEvents(t *testing.T) {
	ctx := context.Background()
	d := newDispatcher(t, extension.Site{})
	j := &journal{}

	zeroCalled := false
	zero := &hookExt{name: "zero", hooks: extension.Hooks{
		"onSearch": func(context.Context, extension.Params) error {
			zeroCalled = true
			return nil
		},
	}}
	custom := customExt{versioned{&ext{name: "two", gen: extension.Gen2, custom: j.record("two-custom")}}}
	require.NoError(t, d.OnExtensionsLoaded(ctx, []extension.Extension{
		gen("native", extension.Native, j.record("native")),
		custom,
		v1("one", j.record("one")),
		zero,
	}))

	j.entries = nil
	query := "go"
	require.NoError(t, d.Dispatch(ctx, "onSearch", &query))

	assert.Equal(t, []string{"one:onSearch", "two-custom:onSearch", "native:onSearch"}, j.entries)
	assert.False(t, zeroCalled, "generation 0 never receives custom events")
}

func TestTriggerEvent(t *testing.T) {
	ctx := context.Background()
	d := newDispatcher(t, extension.Site{})
	j := &journal{}
	require.NoError(t, d.OnExtensionsLoaded(ctx, []extension.Extension{
		v1("one", j.record("one")),
		gen("native", extension.Native, j.record("native")),
	}))

	j.entries = nil
	require.NoError(t, d.TriggerEvent(ctx, extension.Gen1, "onCustom"))
	assert.Equal(t, []string{"one:onCustom"}, j.entries)

	assert.Error(t, d.TriggerEvent(ctx, extension.Generation(17), "onCustom"))
}

func TestThemeLoaded(t *testing.T) {
	ctx := context.Background()

	t.Run("loads theme adapter", func(t *testing.T) {
		d := newDispatcher(t, extension.Site{})
		require.NoError(t, d.OnExtensionsLoaded(ctx, nil))

		require.NoError(t, d.Dispatch(ctx, extension.EventThemeLoaded, "old", extension.Gen1, extension.NewConfig(nil)))
		_, ok := d.Graph().Get(adapter.Theme(extension.Gen1))
		assert.True(t, ok)
		_, ok = d.Graph().Get(adapter.Theme(extension.Gen2))
		assert.True(t, ok)

		_, _, decided := d.EscapeStrategy("index.twig")
		assert.True(t, decided)
	})

	t.Run("native theme needs nothing", func(t *testing.T) {
		d := newDispatcher(t, extension.Site{})
		require.NoError(t, d.OnExtensionsLoaded(ctx, nil))
		require.NoError(t, d.Dispatch(ctx, extension.EventThemeLoaded, "new", extension.Native, extension.NewConfig(nil)))
		assert.Empty(t, d.Graph().Loaded())
	})

	t.Run("missing adapter is a configuration error", func(t *testing.T) {
		d := newDispatcher(t, extension.Site{}, WithoutDefaultAdapters())
		require.NoError(t, d.OnExtensionsLoaded(ctx, nil))
		err := d.Dispatch(ctx, extension.EventThemeLoaded, "old", extension.Gen2, extension.NewConfig(nil))
		assert.ErrorIs(t, err, extension.ErrConfiguration)
	})
}

func TestConfigurationErrors(t *testing.T) {
	ctx := context.Background()
	d := newDispatcher(t, extension.Site{}, WithoutDefaultAdapters())

	err := d.OnExtensionsLoaded(ctx, []extension.Extension{v1("one", nil), &hookExt{name: "zero"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, extension.ErrConfiguration)
	assert.Contains(t, err.Error(), "plugin/0")
	assert.Contains(t, err.Error(), "plugin/1")
}

func TestObserver(t *testing.T) {
	ctx := context.Background()
	var deliveries []Delivery
	d := newDispatcher(t, extension.Site{}, WithObserver(func(del Delivery) {
		deliveries = append(deliveries, del)
	}))
	require.NoError(t, d.OnExtensionsLoaded(ctx, []extension.Extension{v1("one", nil)}))

	deliveries = nil
	require.NoError(t, d.Dispatch(ctx, extension.EventPageRendered, new(string)))
	require.Len(t, deliveries, 1)
	assert.Equal(t, "one", deliveries[0].Extension)
	assert.Equal(t, "v1", deliveries[0].Generation)
	assert.NotEmpty(t, deliveries[0].DispatchID)
	assert.False(t, deliveries[0].Custom)
}
