// ABOUTME: Contact MCP tool handlers
// ABOUTME: Implements add_contact and find_contacts over the contact store
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/mycrew/mycrew/models"
	"github.com/mycrew/mycrew/store"
)

type ContactHandlers struct {
	store store.Store
}

func NewContactHandlers(s store.Store) *ContactHandlers {
	return &ContactHandlers{store: s}
}

type LocationInput struct {
	Country         string `json:"country" jsonschema:"Country (required)"`
	Region          string `json:"region,omitempty" jsonschema:"Region or city"`
	IsLocalResident bool   `json:"is_local_resident,omitempty" jsonschema:"Lives in this area"`
	HasVehicle      bool   `json:"has_vehicle,omitempty" jsonschema:"Has a vehicle in this area"`
	IsHoused        bool   `json:"is_housed,omitempty" jsonschema:"Has housing in this area"`
	IsPrimary       bool   `json:"is_primary,omitempty" jsonschema:"Main work location (at most one)"`
}

type AddContactInput struct {
	FirstName string          `json:"first_name" jsonschema:"First name (required)"`
	LastName  string          `json:"last_name,omitempty" jsonschema:"Last name"`
	JobTitles []string        `json:"job_titles,omitempty" jsonschema:"Up to 3 job titles"`
	Phone     string          `json:"phone,omitempty" jsonschema:"Phone number"`
	Email     string          `json:"email,omitempty" jsonschema:"Email address"`
	Notes     string          `json:"notes,omitempty" jsonschema:"Private notes, never shared by QR"`
	Locations []LocationInput `json:"locations,omitempty" jsonschema:"Work locations"`
}

type ContactOutput struct {
	ID         string                `json:"id"`
	FirstName  string                `json:"first_name"`
	LastName   string                `json:"last_name"`
	JobTitles  []string              `json:"job_titles"`
	Phone      string                `json:"phone,omitempty"`
	Email      string                `json:"email,omitempty"`
	Notes      string                `json:"notes,omitempty"`
	IsFavorite bool                  `json:"is_favorite"`
	City       string                `json:"city,omitempty"`
	Locations  []models.WorkLocation `json:"locations"`
	CreatedAt  string                `json:"created_at,omitempty"`
}

func (h *ContactHandlers) AddContact(ctx context.Context, request *mcp.CallToolRequest, input AddContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.FirstName == "" {
		return nil, ContactOutput{}, fmt.Errorf("first_name is required")
	}

	contact := &models.Contact{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		JobTitles: input.JobTitles,
		Phone:     input.Phone,
		Email:     input.Email,
		Notes:     input.Notes,
	}
	for _, l := range input.Locations {
		contact.Locations = append(contact.Locations, models.WorkLocation(l))
	}

	if _, err := h.store.Create(ctx, contact); err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to create contact: %w", err)
	}
	zap.L().Debug("contact added", zap.String("id", contact.ID))

	return nil, contactToOutput(contact), nil
}

type FindContactsInput struct {
	Query string `json:"query,omitempty" jsonschema:"Search text (name, title, phone, email, country or region)"`
	Name  string `json:"name,omitempty" jsonschema:"Exact full name; with phone, finds the duplicate candidate"`
	Phone string `json:"phone,omitempty" jsonschema:"Phone number; used with name"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type FindContactsOutput struct {
	Contacts []ContactOutput `json:"contacts"`
}

func (h *ContactHandlers) FindContacts(ctx context.Context, request *mcp.CallToolRequest, input FindContactsInput) (*mcp.CallToolResult, FindContactsOutput, error) {
	if input.Name != "" {
		match, err := h.store.FindByNameAndPhone(ctx, input.Name, input.Phone)
		if err != nil {
			return nil, FindContactsOutput{}, fmt.Errorf("failed to look up contact: %w", err)
		}
		out := FindContactsOutput{Contacts: []ContactOutput{}}
		if match != nil {
			out.Contacts = append(out.Contacts, contactToOutput(match))
		}
		return nil, out, nil
	}

	limit := input.Limit
	if limit == 0 {
		limit = 10
	}

	contacts, err := h.store.Search(ctx, input.Query, limit)
	if err != nil {
		return nil, FindContactsOutput{}, fmt.Errorf("failed to find contacts: %w", err)
	}

	result := make([]ContactOutput, len(contacts))
	for i := range contacts {
		result[i] = contactToOutput(&contacts[i])
	}

	return nil, FindContactsOutput{Contacts: result}, nil
}

func contactToOutput(contact *models.Contact) ContactOutput {
	output := ContactOutput{
		ID:         contact.ID,
		FirstName:  contact.FirstName,
		LastName:   contact.LastName,
		JobTitles:  models.CanonicalJobTitles(*contact),
		Phone:      contact.Phone,
		Email:      contact.Email,
		Notes:      contact.Notes,
		IsFavorite: contact.IsFavorite,
		City:       contact.City(),
		Locations:  contact.Locations,
	}
	if output.JobTitles == nil {
		output.JobTitles = []string{}
	}
	if output.Locations == nil {
		output.Locations = []models.WorkLocation{}
	}
	if !contact.CreatedAt.IsZero() {
		output.CreatedAt = contact.CreatedAt.Format(time.RFC3339)
	}
	return output
}

// loadContacts fetches ids in order.
func loadContacts(ctx context.Context, s store.Store, ids []string) ([]models.Contact, error) {
	contacts := make([]models.Contact, 0, len(ids))
	for _, id := range ids {
		c, err := s.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("contact %s: %w", id, err)
		}
		contacts = append(contacts, *c)
	}
	return contacts, nil
}
