package transfer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mycrew/mycrew/models"
)

// exportedLocation and exportedContact drop ids and timestamps; a
// re-import creates fresh records.
type exportedLocation struct {
	Country         string `json:"country"`
	Region          string `json:"region,omitempty"`
	IsLocalResident bool   `json:"isLocalResident"`
	HasVehicle      bool   `json:"hasVehicle"`
	IsHoused        bool   `json:"isHoused"`
	IsPrimary       bool   `json:"isPrimary"`
}

type exportedContact struct {
	FirstName  string             `json:"firstName"`
	LastName   string             `json:"lastName"`
	JobTitles  []string           `json:"jobTitles"`
	Phone      string             `json:"phone"`
	Email      string             `json:"email"`
	Notes      string             `json:"notes"`
	IsFavorite bool               `json:"isFavorite"`
	Locations  []exportedLocation `json:"locations"`
}

func ExportJSON(w io.Writer, contacts []models.Contact) error {
	out := make([]exportedContact, 0, len(contacts))
	for _, c := range contacts {
		e := exportedContact{
			FirstName:  c.FirstName,
			LastName:   c.LastName,
			JobTitles:  models.CanonicalJobTitles(c),
			Phone:      c.Phone,
			Email:      c.Email,
			Notes:      c.Notes,
			IsFavorite: c.IsFavorite,
			Locations:  make([]exportedLocation, 0, len(c.Locations)),
		}
		if e.JobTitles == nil {
			e.JobTitles = []string{}
		}
		for _, l := range c.Locations {
			e.Locations = append(e.Locations, exportedLocation(l))
		}
		out = append(out, e)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to write json: %w", err)
	}
	return nil
}

func ImportJSON(r io.Reader) ([]models.Contact, error) {
	var in []exportedContact
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("failed to parse json: %w", err)
	}

	contacts := make([]models.Contact, 0, len(in))
	for _, e := range in {
		c := models.Contact{
			FirstName:  e.FirstName,
			LastName:   e.LastName,
			JobTitles:  e.JobTitles,
			Phone:      e.Phone,
			Email:      e.Email,
			Notes:      e.Notes,
			IsFavorite: e.IsFavorite,
		}
		for _, l := range e.Locations {
			c.Locations = append(c.Locations, models.WorkLocation(l))
		}
		c.NormalizeJobTitles()
		contacts = append(contacts, c)
	}
	return contacts, nil
}
