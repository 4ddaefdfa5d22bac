// resources.go implements MCP resource handlers for guide access.
//
// Resources give read-only access to the guides via a URI scheme, so a
// client can load the reference for a generation as context without
// calling a tool.
//
// Design: Resource URIs follow the pattern bridge://guide/{topic}, matching
// the topics of the guide command.

package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jpl-au/bridge/guide"
)

var (
	// ErrInvalidURI indicates a malformed resource URI.
	ErrInvalidURI = errors.New("invalid URI")
	// ErrEmptyTopic indicates a missing topic in a resource URI.
	ErrEmptyTopic = errors.New("empty guide topic")
)

// readGuide handles bridge://guide/{topic} resource requests.
func (h *handlers) readGuide(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) { //nolint:revive // ctx for future use
	topic, err := parseGuideURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	content, err := guide.Get(topic)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     content,
		},
	}, nil
}

// parseGuideURI extracts the topic from bridge://guide/{topic}.
func parseGuideURI(uri string) (string, error) {
	const prefix = "bridge://guide/"
	if !strings.HasPrefix(uri, prefix) {
		return "", fmt.Errorf("%w: %s", ErrInvalidURI, uri)
	}
	topic := strings.TrimSuffix(strings.TrimPrefix(uri, prefix), "/")
	if topic == "" {
		return "", ErrEmptyTopic
	}
	return topic, nil
}
