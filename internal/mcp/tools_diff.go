// tools_diff.go implements the MCP tool for inspecting the merged site
// configuration.
//
// The diff mode shows what the legacy sources changed on top of the native
// configuration, which is usually the question when a renamed or
// overridden key surprises an extension.

package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jpl-au/bridge/internal/diff"
	"github.com/jpl-au/bridge/internal/log"
)

// siteConfig handles bridge_site_config tool calls.
func (h *handlers) siteConfig(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) { //nolint:revive // ctx for future use
	cfg, err := h.loadConfig()
	if err != nil {
		log.Event("mcp:bridge_site_config", "load").Write(err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	_, sc, err := cfg.LoadSite()

	log.Event("mcp:bridge_site_config", "load").Detail("root", cfg.RootDir()).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !getBool(req, "diff", false) {
		return jsonResult(map[string]any{
			"sources": sc.Sources,
			"config":  sc.Config.Values(),
		})
	}

	r, err := diff.Values(sc.Native, sc.Config.Values(), "native", "merged")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"sources": sc.Sources,
		"changed": r.Changed(),
		"diff":    r.Format(false),
	})
}
