package transfer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mycrew/mycrew/models"
)

// Header is the fixed CSV header row.
var Header = []string{
	"Prénom", "Nom", "Postes", "Téléphone", "Email", "Notes", "Favori",
	"Pays", "Région", "Résident local", "Véhiculé", "Logé", "Autres lieux",
}

const (
	titleSeparator    = " / "
	locationSeparator = ';'
	fieldSeparator    = '|'
	escapeChar        = '\\'
)

// escapeLocationField backslash-escapes the Autres lieux separators so a
// region such as "Bruxelles|Capitale" survives a round trip.
func escapeLocationField(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == locationSeparator || r == fieldSeparator || r == escapeChar {
			b.WriteRune(escapeChar)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// splitEscaped splits on sep outside escapes and leaves escapes in place.
func splitEscaped(s string, sep rune) []string {
	var parts []string
	var cur strings.Builder
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == escapeChar:
			cur.WriteRune(r)
			escaped = true
		case r == sep:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(parts, cur.String())
}

func unescapeLocationField(s string) string {
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if r == escapeChar && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}

func yesNo(b bool) string {
	if b {
		return "oui"
	}
	return "non"
}

// locationFlags packs the three flags as letters: r resident, v vehicle, l housed.
func locationFlags(l models.WorkLocation) string {
	var b strings.Builder
	if l.IsLocalResident {
		b.WriteByte('r')
	}
	if l.HasVehicle {
		b.WriteByte('v')
	}
	if l.IsHoused {
		b.WriteByte('l')
	}
	return b.String()
}

func ExportCSV(w io.Writer, contacts []models.Contact) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, c := range contacts {
		row := []string{
			c.FirstName,
			c.LastName,
			strings.Join(models.CanonicalJobTitles(c), titleSeparator),
			c.Phone,
			c.Email,
			c.Notes,
			yesNo(c.IsFavorite),
			"", "", "", "", "", "",
		}
		if p := c.PrimaryLocation(); p != nil {
			row[7] = p.Country
			row[8] = p.Region
			row[9] = yesNo(p.IsLocalResident)
			row[10] = yesNo(p.HasVehicle)
			row[11] = yesNo(p.IsHoused)
		}

		var others []string
		for _, l := range c.SecondaryLocations() {
			others = append(others, escapeLocationField(l.Country)+string(fieldSeparator)+
				escapeLocationField(l.Region)+string(fieldSeparator)+locationFlags(l))
		}
		row[12] = strings.Join(others, string(locationSeparator))

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func ImportCSV(r io.Reader) ([]models.Contact, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	for i, name := range Header {
		if !strings.EqualFold(strings.TrimSpace(header[i]), name) {
			return nil, fmt.Errorf("unexpected csv column %d: %q, want %q", i+1, header[i], name)
		}
	}

	var contacts []models.Contact
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}

		c := models.Contact{
			FirstName:  strings.TrimSpace(row[0]),
			LastName:   strings.TrimSpace(row[1]),
			Phone:      strings.TrimSpace(row[3]),
			Email:      strings.TrimSpace(row[4]),
			Notes:      row[5],
			IsFavorite: parseFlag(row[6]),
		}
		if row[2] != "" {
			c.JobTitles = strings.Split(row[2], strings.TrimSpace(titleSeparator))
		}
		c.NormalizeJobTitles()

		if country := strings.TrimSpace(row[7]); country != "" {
			c.Locations = append(c.Locations, models.WorkLocation{
				Country:         country,
				Region:          strings.TrimSpace(row[8]),
				IsLocalResident: parseFlag(row[9]),
				HasVehicle:      parseFlag(row[10]),
				IsHoused:        parseFlag(row[11]),
				IsPrimary:       true,
			})
		}

		others, err := parseOtherLocations(row[12])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		c.Locations = append(c.Locations, others...)
		contacts = append(contacts, c)
	}
	return contacts, nil
}

func parseOtherLocations(s string) ([]models.WorkLocation, error) {
	var locs []models.WorkLocation
	for _, entry := range splitEscaped(s, locationSeparator) {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := splitEscaped(entry, fieldSeparator)
		if len(parts) > 3 || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("invalid location %q (want Pays|Région|flags)", entry)
		}
		for len(parts) < 3 {
			parts = append(parts, "")
		}
		flags := strings.ToLower(parts[2])
		locs = append(locs, models.WorkLocation{
			Country:         strings.TrimSpace(unescapeLocationField(parts[0])),
			Region:          strings.TrimSpace(unescapeLocationField(parts[1])),
			IsLocalResident: strings.Contains(flags, "r"),
			HasVehicle:      strings.Contains(flags, "v"),
			IsHoused:        strings.Contains(flags, "l"),
		})
	}
	return locs, nil
}
