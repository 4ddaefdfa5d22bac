package log

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gen string

func (g gen) String() string { return string(g) }

func useTempDB(t *testing.T) {
	t.Helper()
	tmpDir := t.TempDir()
	origDBPath := dbPathFunc
	dbPathFunc = func() string {
		return filepath.Join(tmpDir, "log", "test.db")
	}
	t.Cleanup(func() {
		Close()
		dbPathFunc = origDBPath
	})
}

func TestLogger(t *testing.T) {
	useTempDB(t)

	t.Run("open and close", func(t *testing.T) {
		err := Open()
		require.NoError(t, err)
		defer Close()

		assert.FileExists(t, DBPath())
		assert.True(t, Enabled())
	})

	t.Run("log entry", func(t *testing.T) {
		err := Open()
		require.NoError(t, err)
		defer Close()

		SetProject("/srv/site")

		Log(Entry{
			Source:     "dispatch:onConfigLoaded",
			Action:     "deliver",
			Extension:  "Legacy",
			Generation: "v1",
			DispatchID: "d-1",
			Success:    true,
		})

		db, err := sql.Open("sqlite", DBPath())
		require.NoError(t, err)
		defer db.Close()

		var source, action, ext, g, dispatch string
		var success int
		err = db.QueryRow("SELECT source, action, extension, generation, dispatch_id, success FROM log WHERE id = 1").
			Scan(&source, &action, &ext, &g, &dispatch, &success)
		require.NoError(t, err)
		assert.Equal(t, "dispatch:onConfigLoaded", source)
		assert.Equal(t, "deliver", action)
		assert.Equal(t, "Legacy", ext)
		assert.Equal(t, "v1", g)
		assert.Equal(t, "d-1", dispatch)
		assert.Equal(t, 1, success)
	})

	t.Run("log without logger is noop", func(t *testing.T) {
		Close()
		assert.False(t, Enabled())

		Log(Entry{Source: "cli:test", Action: "test", Success: true})

		_, err := Recent(10)
		assert.ErrorIs(t, err, ErrClosed)
	})

	t.Run("open is idempotent", func(t *testing.T) {
		require.NoError(t, Open())
		require.NoError(t, Open())
		Close()
	})
}

func TestBuilder(t *testing.T) {
	useTempDB(t)

	require.NoError(t, Open())
	SetProject("/srv/site")

	Event("dispatch:onMetaHeaders", "deliver").
		Extension("Ok").
		Generation(gen("native")).
		Dispatch("d-2").
		Write(nil)

	Event("dispatch:onMetaHeaders", "deliver").
		Extension("Broken").
		Generation(gen("v0")).
		Dispatch("d-2").
		Detail("field", "meta").
		Write(errors.New("event onMetaHeaders: meta: missing"))

	entries, err := Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	latest := entries[0]
	assert.Equal(t, "Broken", latest.Extension)
	assert.Equal(t, "v0", latest.Generation)
	assert.False(t, latest.Success)
	assert.Contains(t, latest.Error, "missing")
	assert.Equal(t, "meta", latest.Detail["field"])

	assert.Equal(t, "Ok", entries[1].Extension)
	assert.True(t, entries[1].Success)
	assert.Empty(t, entries[1].Error)

	t.Run("entries are scoped to the site", func(t *testing.T) {
		SetProject("/srv/other")
		entries, err := Recent(10)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("limit", func(t *testing.T) {
		SetProject("/srv/site")
		entries, err := Recent(1)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func TestHash(t *testing.T) {
	h1 := hash("/home/user/site")
	h2 := hash("/home/user/site")
	h3 := hash("/home/user/other")

	assert.Equal(t, h1, h2, "same input should produce same hash")
	assert.NotEqual(t, h1, h3, "different input should produce different hash")
	assert.Len(t, h1, 16, "BLAKE2b-64 should produce 16 hex chars")
}

func TestDBPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	expected := filepath.Join(home, ".bridge", "log", "bridge-log.db")

	origDBPath := dbPathFunc
	dbPathFunc = defaultDBPath
	defer func() { dbPathFunc = origDBPath }()

	assert.Equal(t, expected, DBPath())
}
