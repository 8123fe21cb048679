// ABOUTME: MCP prompt handlers for crew sharing workflows
// ABOUTME: Provides the share-crew prompt that drafts a QR share batch
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mycrew/mycrew/payload"
	"github.com/mycrew/mycrew/store"
)

type PromptHandlers struct {
	store store.Store
}

func NewPromptHandlers(s store.Store) *PromptHandlers {
	return &PromptHandlers{store: s}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	switch request.Params.Name {
	case "share-crew":
		return h.getShareCrewPrompt(ctx, request.Params.Arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func (h *PromptHandlers) getShareCrewPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	query := args["query"]
	contacts, err := h.store.Search(ctx, query, 50)
	if err != nil {
		return nil, fmt.Errorf("failed to search contacts: %w", err)
	}

	var promptText strings.Builder
	if query != "" {
		promptText.WriteString(fmt.Sprintf("I want to share crew members matching %q by QR code.\n\n", query))
	} else {
		promptText.WriteString("I want to share crew members by QR code.\n\n")
	}
	promptText.WriteString("Candidates:\n")
	for _, c := range contacts {
		line := fmt.Sprintf("- %s (id %s)", c.FullName(), c.ID)
		if c.JobTitle != "" {
			line += ", " + c.JobTitle
		}
		if city := c.City(); city != "" {
			line += ", " + city
		}
		promptText.WriteString(line + "\n")
	}
	promptText.WriteString(fmt.Sprintf("\nOne QR code holds at most %d contacts and %d bytes.", payload.MaxBatchSize, payload.MaxPayloadBytes))
	promptText.WriteString("\nPlease:")
	promptText.WriteString("\n1. Pick the people who fit the request")
	promptText.WriteString("\n2. Check the batch with estimate_qr_capacity and split it if needed")
	promptText.WriteString("\n3. Produce each payload with encode_qr_payload")

	return &mcp.GetPromptResult{
		Description: "Draft a QR share batch",
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{
					Text: promptText.String(),
				},
			},
		},
	}, nil
}
