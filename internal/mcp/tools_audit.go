// tools_audit.go implements the MCP tool for reading the audit log.

package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jpl-au/bridge/internal/log"
)

// audit handles bridge_audit tool calls.
func (h *handlers) audit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) { //nolint:revive // ctx for future use
	if !log.Enabled() {
		return mcp.NewToolResultError("audit log unavailable"), nil
	}
	entries, err := log.Recent(getInt(req, "limit", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(entries)
}
