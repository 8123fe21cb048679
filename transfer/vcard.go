package transfer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-vcard"

	"github.com/mycrew/mycrew/models"
)

const (
	paramResident = "X-RESIDENT"
	paramVehicle  = "X-VEHICLE"
	paramHoused   = "X-HOUSED"
	fieldFavorite = "X-MYCREW-FAVORITE"
)

// ExportVCard writes one vCard 3.0 per contact. Each work location becomes an
// ADR with the region and country components filled; the primary one carries
// TYPE=pref.
func ExportVCard(w io.Writer, contacts []models.Contact) error {
	enc := vcard.NewEncoder(w)
	for _, c := range contacts {
		if err := enc.Encode(toCard(c)); err != nil {
			return fmt.Errorf("failed to write vcard for %s: %w", c.FullName(), err)
		}
	}
	return nil
}

func toCard(c models.Contact) vcard.Card {
	card := vcard.Card{}
	card.SetValue(vcard.FieldVersion, "3.0")
	card.SetValue(vcard.FieldFormattedName, c.FullName())
	card.SetValue(vcard.FieldName, strings.Join([]string{c.LastName, c.FirstName, "", "", ""}, ";"))

	for _, title := range models.CanonicalJobTitles(c) {
		card.AddValue(vcard.FieldTitle, title)
	}
	if c.Phone != "" {
		card.SetValue(vcard.FieldTelephone, c.Phone)
	}
	if c.Email != "" {
		card.SetValue(vcard.FieldEmail, c.Email)
	}
	if c.Notes != "" {
		card.SetValue(vcard.FieldNote, c.Notes)
	}
	if c.IsFavorite {
		card.SetValue(fieldFavorite, "true")
	}

	for _, l := range c.Locations {
		params := vcard.Params{
			paramResident: {yesNo(l.IsLocalResident)},
			paramVehicle:  {yesNo(l.HasVehicle)},
			paramHoused:   {yesNo(l.IsHoused)},
		}
		if l.IsPrimary {
			params[vcard.ParamType] = []string{"pref"}
		}
		// PO box;extended;street;locality;region;postal code;country
		value := strings.Join([]string{"", "", "", "", l.Region, "", l.Country}, ";")
		card.Add(vcard.FieldAddress, &vcard.Field{Value: value, Params: params})
	}
	return card
}

// ImportVCard reads every card in r. Cards without a name are rejected.
func ImportVCard(r io.Reader) ([]models.Contact, error) {
	dec := vcard.NewDecoder(r)

	var contacts []models.Contact
	for {
		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse vcard: %w", err)
		}

		c, err := fromCard(card)
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", len(contacts)+1, err)
		}
		contacts = append(contacts, c)
	}
	return contacts, nil
}

func fromCard(card vcard.Card) (models.Contact, error) {
	var c models.Contact

	if n := card.Get(vcard.FieldName); n != nil && strings.Trim(n.Value, "; ") != "" {
		parts := strings.Split(n.Value, ";")
		c.LastName = strings.TrimSpace(parts[0])
		if len(parts) > 1 {
			c.FirstName = strings.TrimSpace(parts[1])
		}
	} else if fn := strings.TrimSpace(card.Value(vcard.FieldFormattedName)); fn != "" {
		first, last, _ := strings.Cut(fn, " ")
		c.FirstName, c.LastName = first, strings.TrimSpace(last)
	} else {
		return c, errors.New("card has neither N nor FN")
	}

	c.JobTitles = card.Values(vcard.FieldTitle)
	c.NormalizeJobTitles()
	c.Phone = card.Value(vcard.FieldTelephone)
	c.Email = card.Value(vcard.FieldEmail)
	c.Notes = card.Value(vcard.FieldNote)
	c.IsFavorite = parseFlag(card.Value(fieldFavorite))

	primarySeen := false
	for _, f := range card[vcard.FieldAddress] {
		parts := strings.Split(f.Value, ";")
		for len(parts) < 7 {
			parts = append(parts, "")
		}
		region := strings.TrimSpace(parts[4])
		if region == "" {
			region = strings.TrimSpace(parts[3])
		}
		l := models.WorkLocation{
			Country:         strings.TrimSpace(parts[6]),
			Region:          region,
			IsLocalResident: parseFlag(param(f, paramResident)),
			HasVehicle:      parseFlag(param(f, paramVehicle)),
			IsHoused:        parseFlag(param(f, paramHoused)),
		}
		if l.Country == "" {
			continue
		}
		if !primarySeen && hasType(f, "pref") {
			l.IsPrimary = true
			primarySeen = true
		}
		c.Locations = append(c.Locations, l)
	}
	return c, nil
}

// param looks a parameter up case-insensitively; writers disagree on case.
func param(f *vcard.Field, name string) string {
	for k, v := range f.Params {
		if strings.EqualFold(k, name) && len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func hasType(f *vcard.Field, want string) bool {
	for k, values := range f.Params {
		if !strings.EqualFold(k, vcard.ParamType) {
			continue
		}
		for _, v := range values {
			for _, t := range strings.Split(v, ",") {
				if strings.EqualFold(strings.TrimSpace(t), want) {
					return true
				}
			}
		}
	}
	return false
}
