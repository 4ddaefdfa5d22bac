// tools_adapters.go implements the MCP tools describing the adapter graph.
//
// Both tools work on detached adapters built from the default factories:
// they answer what the bridge would do, not what a running site did.

package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jpl-au/bridge/internal/adapter"
	"github.com/jpl-au/bridge/internal/log"
)

// events handles bridge_events tool calls.
func (h *handlers) events(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) { //nolint:revive // ctx for future use
	name := getString(req, "adapter", "")
	if name == "" {
		all, err := adapter.DescribeAll(h.factories)
		log.Event("mcp:bridge_events", "list").Write(err)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(all)
	}

	id, err := adapter.ParseID(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := adapter.Describe(h.factories, id)

	log.Event("mcp:bridge_events", "describe").Extension(id.String()).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(d)
}

// chain handles bridge_chain tool calls.
func (h *handlers) chain(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) { //nolint:revive // ctx for future use
	name, err := req.RequireString("adapter")
	if err != nil {
		return mcp.NewToolResultError("adapter is required"), nil //nolint:nilerr
	}
	id, err := adapter.ParseID(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	g := adapter.NewGraph(adapter.Env{})
	for fid, f := range h.factories {
		g.Register(fid, f)
	}
	order, err := g.Plan(id)

	log.Event("mcp:bridge_chain", "plan").Extension(id.String()).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ids := make([]string, 0, len(order))
	for _, o := range order {
		ids = append(ids, o.String())
	}
	return jsonResult(map[string]any{"adapter": id.String(), "load_order": ids})
}
