// ABOUTME: Versioned wire format for QR contact exchange payloads
// ABOUTME: Declares envelope types, schema constants and capacity heuristics
package payload

import (
	"bytes"
	"encoding/json"

	"github.com/mycrew/mycrew/models"
)

// Discriminators and schema version of the QR payload.
const (
	TypeContact     = "MyCrew_Contact"
	TypeContactList = "MyCrew_ContactList"
	Version         = "1.0"
)

// Encoder limits. MaxPayloadBytes is a safety ceiling below the 2953-byte
// binary capacity of a level-L symbol; ResizeFactor is an unmeasured
// heuristic for the suggested smaller batch, not a guaranteed bound.
const (
	MaxBatchSize    = 10
	MaxPayloadBytes = 2500
	ResizeFactor    = 0.8
)

type wireLocation struct {
	Country         string `json:"country"`
	Region          string `json:"region,omitempty"`
	IsLocalResident bool   `json:"isLocalResident"`
	HasVehicle      bool   `json:"hasVehicle"`
	IsHoused        bool   `json:"isHoused"`
	IsPrimary       bool   `json:"isPrimary"`
}

type wireContact struct {
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	JobTitle  string         `json:"jobTitle"`
	Phone     string         `json:"phone"`
	Email     string         `json:"email"`
	Notes     string         `json:"notes"`
	Locations []wireLocation `json:"locations"`
}

type singleEnvelope struct {
	Type    string      `json:"type"`
	Version string      `json:"version"`
	Data    wireContact `json:"data"`
}

type listEnvelope struct {
	Type    string        `json:"type"`
	Version string        `json:"version"`
	Count   int           `json:"count"`
	Data    []wireContact `json:"data"`
}

// reduce builds the reduced field set sent over the wire. Notes never
// travel; primaryOnly keeps just the locations flagged primary.
func reduce(c models.Contact, primaryOnly bool) wireContact {
	jobTitle := c.JobTitle
	if jobTitle == "" {
		if titles := models.CanonicalJobTitles(c); len(titles) > 0 {
			jobTitle = titles[0]
		}
	}

	locs := make([]wireLocation, 0, len(c.Locations))
	for _, l := range c.Locations {
		if primaryOnly && !l.IsPrimary {
			continue
		}
		locs = append(locs, wireLocation{
			Country:         l.Country,
			Region:          l.Region,
			IsLocalResident: l.IsLocalResident,
			HasVehicle:      l.HasVehicle,
			IsHoused:        l.IsHoused,
			IsPrimary:       l.IsPrimary,
		})
	}

	return wireContact{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		JobTitle:  jobTitle,
		Phone:     c.Phone,
		Email:     c.Email,
		Notes:     "",
		Locations: locs,
	}
}

// marshal serializes without HTML escaping so accented and '&' characters
// keep their natural UTF-8 size.
func marshal(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func singlePayload(c models.Contact) singleEnvelope {
	return singleEnvelope{Type: TypeContact, Version: Version, Data: reduce(c, false)}
}

func listPayload(cs []models.Contact) listEnvelope {
	data := make([]wireContact, len(cs))
	for i, c := range cs {
		data[i] = reduce(c, true)
	}
	return listEnvelope{Type: TypeContactList, Version: Version, Count: len(cs), Data: data}
}
