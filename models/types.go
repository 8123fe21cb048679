// ABOUTME: Data models for crew contacts
// ABOUTME: Defines Contact and WorkLocation plus the derived location fields
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MaxJobTitles is the most titles a contact can carry in the list shape.
const MaxJobTitles = 3

var (
	ErrContactNotFound  = errors.New("contact not found")
	ErrDuplicateID      = errors.New("contact id already exists")
	ErrMissingCountry   = errors.New("location country is required")
	ErrMultiplePrimary  = errors.New("at most one location can be primary")
	ErrMissingFirstName = errors.New("first name is required")
)

type Contact struct {
	ID         string         `json:"id,omitempty"`
	FirstName  string         `json:"first_name"`
	LastName   string         `json:"last_name"`
	JobTitle   string         `json:"job_title"`
	JobTitles  []string       `json:"job_titles,omitempty"`
	Phone      string         `json:"phone"`
	Email      string         `json:"email"`
	Notes      string         `json:"notes,omitempty"`
	IsFavorite bool           `json:"is_favorite"`
	Locations  []WorkLocation `json:"locations"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

type WorkLocation struct {
	Country         string `json:"country"`
	Region          string `json:"region,omitempty"`
	IsLocalResident bool   `json:"is_local_resident"`
	HasVehicle      bool   `json:"has_vehicle"`
	IsHoused        bool   `json:"is_housed"`
	IsPrimary       bool   `json:"is_primary"`
}

// Label is the region when set, otherwise the country.
func (l WorkLocation) Label() string {
	if l.Region != "" {
		return l.Region
	}
	return l.Country
}

// SameArea reports whether two locations name the same country and region.
func (l WorkLocation) SameArea(other WorkLocation) bool {
	return strings.EqualFold(strings.TrimSpace(l.Country), strings.TrimSpace(other.Country)) &&
		strings.EqualFold(strings.TrimSpace(l.Region), strings.TrimSpace(other.Region))
}

// PrimaryLocation returns the first location flagged primary, or nil.
func (c *Contact) PrimaryLocation() *WorkLocation {
	for i := range c.Locations {
		if c.Locations[i].IsPrimary {
			return &c.Locations[i]
		}
	}
	return nil
}

// SecondaryLocations returns every location except the primary one.
func (c *Contact) SecondaryLocations() []WorkLocation {
	primary := -1
	for i := range c.Locations {
		if c.Locations[i].IsPrimary {
			primary = i
			break
		}
	}

	var out []WorkLocation
	for i, loc := range c.Locations {
		if i == primary {
			continue
		}
		out = append(out, loc)
	}
	return out
}

// City is the display city: the primary location's region, falling back to its country.
func (c *Contact) City() string {
	if p := c.PrimaryLocation(); p != nil {
		return p.Label()
	}
	return ""
}

func (c *Contact) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}

// CanonicalJobTitles reconciles the legacy single title with the list shape.
// The list wins when present; the result is trimmed and capped at MaxJobTitles.
func CanonicalJobTitles(c Contact) []string {
	source := c.JobTitles
	if len(source) == 0 && c.JobTitle != "" {
		source = []string{c.JobTitle}
	}

	var titles []string
	for _, t := range source {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		titles = append(titles, t)
		if len(titles) == MaxJobTitles {
			break
		}
	}
	return titles
}

// NormalizeJobTitles stores the canonical title list and mirrors its first
// entry into JobTitle.
func (c *Contact) NormalizeJobTitles() {
	c.JobTitles = CanonicalJobTitles(*c)
	if len(c.JobTitles) > 0 {
		c.JobTitle = c.JobTitles[0]
	} else {
		c.JobTitle = ""
	}
}

// ValidateLocations enforces the stored-record invariants.
func ValidateLocations(locs []WorkLocation) error {
	primaries := 0
	for i, loc := range locs {
		if strings.TrimSpace(loc.Country) == "" {
			return fmt.Errorf("location %d: %w", i, ErrMissingCountry)
		}
		if loc.IsPrimary {
			primaries++
		}
	}
	if primaries > 1 {
		return ErrMultiplePrimary
	}
	return nil
}

// Validate checks a contact before it is written to a store.
func (c *Contact) Validate() error {
	if strings.TrimSpace(c.FirstName) == "" {
		return ErrMissingFirstName
	}
	return ValidateLocations(c.Locations)
}

// NormalizePhone strips common separators so "01 23.45-67" equals "01234567".
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		switch r {
		case ' ', '.', '-', '(', ')', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
