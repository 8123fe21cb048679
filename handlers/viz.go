// ABOUTME: GraphViz visualization MCP handlers
// ABOUTME: Provides the generate_location_graph tool for agents
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mycrew/mycrew/models"
	"github.com/mycrew/mycrew/store"
	"github.com/mycrew/mycrew/viz"
)

type VizHandlers struct {
	store store.Store
}

func NewVizHandlers(s store.Store) *VizHandlers {
	return &VizHandlers{store: s}
}

type GenerateGraphInput struct {
	Country string `json:"country,omitempty" jsonschema:"Only include contacts working in this country"`
}

type GenerateGraphOutput struct {
	DOTSource    string `json:"dot_source"`
	ContactCount int    `json:"contact_count"`
}

func (h *VizHandlers) GenerateLocationGraph(ctx context.Context, request *mcp.CallToolRequest, input GenerateGraphInput) (*mcp.CallToolResult, GenerateGraphOutput, error) {
	contacts, err := h.store.GetAll(ctx)
	if err != nil {
		return nil, GenerateGraphOutput{}, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	if input.Country != "" {
		contacts = inCountry(contacts, input.Country)
	}

	dot, err := viz.GenerateLocationGraph(contacts)
	if err != nil {
		return nil, GenerateGraphOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	return nil, GenerateGraphOutput{DOTSource: dot, ContactCount: len(contacts)}, nil
}

func inCountry(contacts []models.Contact, country string) []models.Contact {
	var out []models.Contact
	for _, c := range contacts {
		for _, l := range c.Locations {
			if strings.EqualFold(strings.TrimSpace(l.Country), strings.TrimSpace(country)) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
