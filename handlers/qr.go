// ABOUTME: QR share MCP tool handlers
// ABOUTME: Implements encode, decode, estimate and import of QR contact payloads
package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/mycrew/mycrew/payload"
	"github.com/mycrew/mycrew/store"
	"github.com/mycrew/mycrew/sync"
)

type QRHandlers struct {
	store store.Store
}

func NewQRHandlers(s store.Store) *QRHandlers {
	return &QRHandlers{store: s}
}

type EncodeQRPayloadInput struct {
	ContactIDs []string `json:"contact_ids" jsonschema:"IDs of the contacts to share, 1 to 10"`
}

type EncodeQRPayloadOutput struct {
	Payload  string           `json:"payload"`
	Bytes    int              `json:"bytes"`
	Count    int              `json:"count"`
	Estimate payload.Estimate `json:"estimate"`
}

func (h *QRHandlers) EncodeQRPayload(ctx context.Context, request *mcp.CallToolRequest, input EncodeQRPayloadInput) (*mcp.CallToolResult, EncodeQRPayloadOutput, error) {
	if err := payload.CheckBatch(len(input.ContactIDs)); err != nil {
		return nil, EncodeQRPayloadOutput{}, err
	}

	contacts, err := loadContacts(ctx, h.store, input.ContactIDs)
	if err != nil {
		return nil, EncodeQRPayloadOutput{}, err
	}

	text, err := payload.Encode(contacts)
	if err != nil {
		var capErr *payload.CapacityError
		if errors.As(err, &capErr) {
			zap.L().Info("qr payload over capacity",
				zap.Int("contacts", len(contacts)),
				zap.Int("size", capErr.Size),
				zap.Int("suggested", capErr.SuggestedCount))
		}
		return nil, EncodeQRPayloadOutput{}, err
	}

	return nil, EncodeQRPayloadOutput{
		Payload:  text,
		Bytes:    len(text),
		Count:    len(contacts),
		Estimate: payload.EstimateContacts(contacts),
	}, nil
}

type DecodeQRPayloadInput struct {
	Payload string `json:"payload" jsonschema:"Raw text read from a QR code"`
}

type DecodeQRPayloadOutput struct {
	Kind          string          `json:"kind"`
	Message       string          `json:"message"`
	DeclaredCount int             `json:"declared_count,omitempty"`
	Contacts      []ContactOutput `json:"contacts"`
	Error         string          `json:"error,omitempty"`
}

// DecodeQRPayload never fails: unknown or broken payloads come back as a
// classification.
func (h *QRHandlers) DecodeQRPayload(_ context.Context, request *mcp.CallToolRequest, input DecodeQRPayloadInput) (*mcp.CallToolResult, DecodeQRPayloadOutput, error) {
	result := payload.Decode(input.Payload)

	out := DecodeQRPayloadOutput{
		Kind:          result.Kind.String(),
		Message:       result.UserMessage(),
		DeclaredCount: result.DeclaredCount,
		Contacts:      make([]ContactOutput, 0, len(result.Contacts)),
	}
	if result.Err != nil {
		out.Error = result.Err.Error()
	}
	for i := range result.Contacts {
		out.Contacts = append(out.Contacts, contactToOutput(&result.Contacts[i]))
	}
	return nil, out, nil
}

type EstimateQRCapacityInput struct {
	ContactIDs []string `json:"contact_ids" jsonschema:"IDs of the contacts to measure"`
}

type EstimateQRCapacityOutput struct {
	Estimate   payload.Estimate   `json:"estimate"`
	Comparison payload.Comparison `json:"short_key_comparison"`
}

func (h *QRHandlers) EstimateQRCapacity(ctx context.Context, request *mcp.CallToolRequest, input EstimateQRCapacityInput) (*mcp.CallToolResult, EstimateQRCapacityOutput, error) {
	contacts, err := loadContacts(ctx, h.store, input.ContactIDs)
	if err != nil {
		return nil, EstimateQRCapacityOutput{}, err
	}

	return nil, EstimateQRCapacityOutput{
		Estimate:   payload.EstimateContacts(contacts),
		Comparison: payload.Compare(contacts),
	}, nil
}

type ImportQRPayloadInput struct {
	Payload     string `json:"payload" jsonschema:"Raw text read from a QR code"`
	OnDuplicate string `json:"on_duplicate,omitempty" jsonschema:"What to do with a contact already in the book: merge (default), skip or add"`
}

type ImportQRPayloadOutput struct {
	Added   int      `json:"added"`
	Merged  int      `json:"merged"`
	Skipped int      `json:"skipped"`
	Failed  []string `json:"failed,omitempty"`
	IDs     []string `json:"ids"`
	Message string   `json:"message"`
}

func (h *QRHandlers) ImportQRPayload(ctx context.Context, request *mcp.CallToolRequest, input ImportQRPayloadInput) (*mcp.CallToolResult, ImportQRPayloadOutput, error) {
	policy := input.OnDuplicate
	if policy == "" {
		policy = "merge"
	}
	choice, err := sync.ParseChoice(policy)
	if err != nil {
		return nil, ImportQRPayloadOutput{}, err
	}

	result := payload.Decode(input.Payload)
	if !result.OK() {
		return nil, ImportQRPayloadOutput{}, fmt.Errorf("%s: %w", result.UserMessage(), result.Err)
	}

	summary, err := sync.NewImporter(h.store).Import(ctx, result.Contacts, sync.Fixed(choice))
	if err != nil {
		return nil, ImportQRPayloadOutput{}, fmt.Errorf("failed to import contacts: %w", err)
	}
	zap.L().Info("qr payload imported",
		zap.Int("added", summary.Added),
		zap.Int("merged", summary.Merged),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", len(summary.Failed)))

	out := ImportQRPayloadOutput{
		Added:   summary.Added,
		Merged:  summary.Merged,
		Skipped: summary.Skipped,
		IDs:     summary.IDs,
		Message: summary.String(),
	}
	if out.IDs == nil {
		out.IDs = []string{}
	}
	for _, f := range summary.Failed {
		out.Failed = append(out.Failed, fmt.Sprintf("%s: %v", f.Name, f.Err))
	}
	return nil, out, nil
}
