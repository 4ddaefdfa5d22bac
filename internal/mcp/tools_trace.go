// tools_trace.go implements the MCP tool that traces a dispatch.

package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jpl-au/bridge/extension"
	"github.com/jpl-au/bridge/internal/log"
	"github.com/jpl-au/bridge/internal/trace"
)

// trace handles bridge_trace tool calls. The site comes from the tool
// settings; a site that cannot be loaded is traced with defaults.
func (h *handlers) trace(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	event := getString(req, "event", "")

	var gens []extension.Generation
	for _, n := range getInts(req, "generations") {
		g := extension.Generation(n)
		if !g.Valid() {
			return mcp.NewToolResultError(fmt.Sprintf("unknown generation %d", n)), nil
		}
		gens = append(gens, g)
	}

	opts := trace.Options{Generations: gens, Logger: h.logger}
	if cfg, err := h.loadConfig(); err == nil {
		if site, _, err := cfg.LoadSite(); err == nil {
			opts.Site = site
		} else {
			h.logger.Warn("site config unavailable, tracing with defaults", "error", err)
		}
	}

	var (
		steps []trace.Step
		err   error
	)
	if event == "" {
		steps, err = trace.Pipeline(ctx, opts)
	} else {
		steps, err = trace.Run(ctx, event, opts)
	}

	log.Event("mcp:bridge_trace", "trace").Detail("event", event).Detail("steps", len(steps)).Write(err)

	result := map[string]any{"event": event, "steps": steps}
	if err != nil {
		result["error"] = err.Error()
	}
	return jsonResult(result)
}
