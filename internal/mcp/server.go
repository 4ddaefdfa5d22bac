// Package mcp implements the Model Context Protocol server, exposing the
// bridge's introspection to LLMs: which events each generation sees, how
// adapters are chained, how a dispatch is delivered and how the site's
// configuration is merged.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jpl-au/bridge/internal/adapter"
	"github.com/jpl-au/bridge/internal/config"
)

// Version is advertised to clients for capability negotiation.
const Version = "1.0.0"

// Serve starts the MCP server over stdio.
// Uses stdio transport for compatibility with Claude Desktop and other MCP clients.
//
// Design: Nothing is loaded at startup. Every tool reads the tool settings
// and the site configuration when it is called, so edits made while the
// server runs take effect on the next call.
func Serve() error {
	// Log to stderr; stdout is reserved for MCP JSON-RPC messages
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	s := NewServer(newHandlers(logger))

	slog.Info("bridge MCP server ready", "version", Version, "transport", "stdio")

	err := server.ServeStdio(s)
	if errors.Is(err, context.Canceled) {
		slog.Info("server stopped")
		return nil
	}
	return err
}

// NewServer builds the MCP server with every resource and tool registered.
func NewServer(h *handlers) *server.MCPServer {
	s := server.NewMCPServer(
		"bridge",
		Version,
		server.WithResourceCapabilities(true, false),
		server.WithToolCapabilities(true),
	)
	registerResources(s, h)
	registerTools(s, h)
	return s
}

// handlers provides MCP request handlers. loadConfig is swapped in tests.
type handlers struct {
	logger     *slog.Logger
	factories  map[adapter.ID]adapter.Factory
	loadConfig func() (*config.Config, error)
}

func newHandlers(logger *slog.Logger) *handlers {
	return &handlers{
		logger:     logger,
		factories:  adapter.Defaults(),
		loadConfig: config.Load,
	}
}

// registerResources adds URI-based access to the guides.
func registerResources(s *server.MCPServer, h *handlers) {
	s.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"bridge://guide/{topic}",
			"Guide",
			mcp.WithTemplateDescription("Read a guide page by topic (e.g. v0, v1, chain)"),
			mcp.WithTemplateMIMEType("text/markdown"),
		),
		h.readGuide,
	)
}

// registerTools exposes bridge operations as MCP tools for LLM invocation.
func registerTools(s *server.MCPServer, h *handlers) {
	s.AddTool(
		mcp.NewTool("bridge_events",
			mcp.WithDescription("Show how each adapter renames and forwards events for its generation"),
			mcp.WithString("adapter", mcp.Description("Adapter id (e.g. plugin/1, theme/2) or empty for all")),
		),
		h.events,
	)

	s.AddTool(
		mcp.NewTool("bridge_chain",
			mcp.WithDescription("List the adapters loaded for an adapter id, in load order"),
			mcp.WithString("adapter", mcp.Required(), mcp.Description("Adapter id (e.g. plugin/0)")),
		),
		h.chain,
	)

	s.AddTool(
		mcp.NewTool("bridge_trace",
			mcp.WithDescription("Dispatch an event to probe extensions of each generation and report the delivery order"),
			mcp.WithString("event", mcp.Description("Event name (native lifecycle or custom); empty runs a whole request pipeline")),
			mcp.WithArray("generations", mcp.Description("Generations to probe (0-4); empty for all"), mcp.Items(map[string]any{"type": "number"})),
		),
		h.trace,
	)

	s.AddTool(
		mcp.NewTool("bridge_site_config",
			mcp.WithDescription("Show the merged site configuration and the files it was read from"),
			mcp.WithBoolean("diff", mcp.Description("Return a diff of the native configuration against the merged result")),
		),
		h.siteConfig,
	)

	s.AddTool(
		mcp.NewTool("bridge_audit",
			mcp.WithDescription("Show recent audit log entries for this site"),
			mcp.WithNumber("limit", mcp.Description("Maximum entries to return (default 50)")),
		),
		h.audit,
	)

	s.AddTool(
		mcp.NewTool("bridge_config_get",
			mcp.WithDescription("Get a configuration value"),
			mcp.WithString("key", mcp.Description("Config key (site.root_dir, site.base_url, site.theme, ...) or empty for all")),
		),
		h.configGet,
	)

	s.AddTool(
		mcp.NewTool("bridge_config_set",
			mcp.WithDescription("Set a configuration value"),
			mcp.WithString("key", mcp.Required(), mcp.Description("Config key (site.root_dir, site.base_url, site.theme, ...)")),
			mcp.WithString("value", mcp.Required(), mcp.Description("Value to set")),
		),
		h.configSet,
	)

	s.AddTool(
		mcp.NewTool("bridge_guide",
			mcp.WithDescription("Get guide content for a generation or topic"),
			mcp.WithString("topic", mcp.Description("Guide topic (e.g. 'v0', 'v2', 'chain') or empty for index")),
		),
		h.getGuide,
	)
}
