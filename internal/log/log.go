// Package log provides the audit log of bridge dispatches.
// Logs are stored in ~/.bridge/log/bridge-log.db and record failed
// deliveries, protocol violations, adapter loads and CLI/MCP invocations
// across sites.
//
// # Fluent API
//
// Use the fluent builder API to construct and write log entries:
//
//	log.Event("dispatch:onConfigLoaded", "deliver").
//		Extension(ext.Name()).
//		Generation(gen).
//		Dispatch(id).
//		Write(err)
//
//	log.Event("cli:trace", "trace").
//		Detail("event", name).
//		Write(err)
//
// The source parameter follows the format "dispatch:{event}" for
// deliveries, "cli:{command}" for CLI commands or "mcp:{tool}" for MCP
// tools.
package log

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

var (
	global *Logger
	mu     sync.Mutex
)

// Entry represents a single log entry.
type Entry struct {
	ID         int64          // assigned by the database
	Source     string         // e.g., "dispatch:onConfigLoaded", "cli:trace"
	Action     string         // verb: deliver, translate, load, violation, ...
	Extension  string         // recipient extension or adapter id
	Generation string         // generation of the recipient ("v1", "native")
	DispatchID string         // groups entries of one dispatch
	Start      int64          // unix timestamp when Event() called
	End        int64          // unix timestamp when Write() called
	Success    bool           // whether the operation succeeded
	Error      string         // error message if failed
	Detail     map[string]any // additional operation-specific data
}

// Builder constructs a log entry using a fluent API.
// Create with [Event], chain methods to set fields, then call [Builder.Write]
// to write the entry.
type Builder struct {
	entry Entry
}

// Event creates a new log entry builder for an operation.
//
// The source identifies where the operation originated:
//   - deliveries: "dispatch:{event}" (e.g., "dispatch:onMetaHeaders")
//   - CLI commands: "cli:{command}" (e.g., "cli:trace")
//   - MCP tools: "mcp:{tool}" (e.g., "mcp:bridge_chain")
func Event(source, action string) *Builder {
	return &Builder{
		entry: Entry{
			Source: source,
			Action: action,
			Start:  time.Now().Unix(),
		},
	}
}

// Extension sets the recipient of a delivery.
func (b *Builder) Extension(name string) *Builder {
	b.entry.Extension = name
	return b
}

// Generation sets the recipient's generation. Any fmt.Stringer works;
// extension.Generation prints as "v1" or "native".
func (b *Builder) Generation(g fmt.Stringer) *Builder {
	b.entry.Generation = g.String()
	return b
}

// Dispatch sets the id shared by all entries of one dispatch.
func (b *Builder) Dispatch(id string) *Builder {
	b.entry.DispatchID = id
	return b
}

// Detail adds a key-value pair to the log entry's detail map.
// Can be called multiple times to add multiple details.
func (b *Builder) Detail(key string, value any) *Builder {
	if b.entry.Detail == nil {
		b.entry.Detail = make(map[string]any)
	}
	b.entry.Detail[key] = value
	return b
}

// Write writes the log entry to the database, deriving success/failure from err.
func (b *Builder) Write(err error) {
	b.entry.End = time.Now().Unix()
	b.entry.Success = err == nil
	if err != nil {
		b.entry.Error = err.Error()
	}
	Log(b.entry)
}

// Open initialises the global logger. Safe to call multiple times.
// Errors are returned but callers may choose to ignore them (best-effort logging).
func Open() error {
	mu.Lock()
	defer mu.Unlock()

	if global != nil {
		return nil
	}

	p := dbPath()
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return err
	}

	global = &Logger{db: db}
	return nil
}

// Enabled reports whether the global logger is open.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return global != nil
}

// SetProject sets the site identifier for subsequent log entries.
// The dir should be the absolute path of the site root.
func SetProject(dir string) {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.project = hash(dir)
	}
}

// Log writes an entry. Safe to call if logger not initialised (no-op).
func Log(e Entry) {
	mu.Lock()
	l := global
	mu.Unlock()

	if l == nil {
		return
	}
	l.log(e)
}

// Recent returns up to limit entries of the current site, newest first.
func Recent(limit int) ([]Entry, error) {
	mu.Lock()
	l := global
	mu.Unlock()

	if l == nil {
		return nil, ErrClosed
	}
	return l.recent(limit)
}

// Close closes the global logger.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.db.Close()
		global = nil
	}
}
