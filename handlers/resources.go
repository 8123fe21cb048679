// ABOUTME: MCP resource handlers for exposing the crew book
// ABOUTME: Provides read-only access to contacts and the location dashboard via URI
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mycrew/mycrew/store"
	"github.com/mycrew/mycrew/viz"
)

const resourceScheme = "mycrew://"

type ResourceHandlers struct {
	store store.Store
}

func NewResourceHandlers(s store.Store) *ResourceHandlers {
	return &ResourceHandlers{store: s}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", resourceScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, resourceScheme), "/")
	switch parts[0] {
	case "contacts":
		if len(parts) == 1 || parts[1] == "" {
			return h.readAllContacts(ctx, uri)
		}
		return h.readContact(ctx, uri, parts[1])
	case "dashboard":
		return h.readDashboard(ctx, uri)
	default:
		return nil, fmt.Errorf("unknown resource: %s", parts[0])
	}
}

func (h *ResourceHandlers) readAllContacts(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	contacts, err := h.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}

	out := make([]ContactOutput, len(contacts))
	for i := range contacts {
		out[i] = contactToOutput(&contacts[i])
	}
	return jsonResource(uri, out)
}

func (h *ResourceHandlers) readContact(ctx context.Context, uri, id string) (*mcp.ReadResourceResult, error) {
	contact, err := h.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contact: %w", err)
	}
	return jsonResource(uri, contactToOutput(contact))
}

func (h *ResourceHandlers) readDashboard(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	contacts, err := h.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     viz.RenderDashboard(viz.GenerateDashboardStats(contacts)),
		},
	}}, nil
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
