// ABOUTME: Payload decoder for scanned QR text
// ABOUTME: Classifies scanned strings and rebuilds contacts with fresh ids
package payload

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mycrew/mycrew/models"
)

var (
	ErrNotRecognized       = errors.New("not a MyCrew payload")
	ErrIncompatibleVersion = errors.New("incompatible payload version")
	ErrMissingField        = errors.New("missing required field")
	ErrInvalidData         = errors.New("invalid payload data")
	ErrInvalidLocation     = errors.New("invalid location")
	ErrCountMismatch       = errors.New("count does not match number of contacts")
)

// Kind is the terminal classification of one scanned string.
type Kind int

const (
	KindNotRecognized Kind = iota
	KindSingleContact
	KindMultiContact
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindSingleContact:
		return "single_contact"
	case KindMultiContact:
		return "multi_contact"
	case KindMalformed:
		return "malformed"
	default:
		return "not_recognized"
	}
}

// Result is the outcome of a decode. Err is set for NotRecognized and
// Malformed results and nil otherwise.
type Result struct {
	Kind          Kind
	Contacts      []models.Contact
	DeclaredCount int
	Err           error
}

func (r Result) OK() bool {
	return r.Kind == KindSingleContact || r.Kind == KindMultiContact
}

// UserMessage is the text shown to a user for a result.
func (r Result) UserMessage() string {
	switch r.Kind {
	case KindSingleContact:
		return "1 contact found"
	case KindMultiContact:
		return fmt.Sprintf("%d contacts found", len(r.Contacts))
	case KindMalformed:
		return "corrupted or incompatible QR code"
	default:
		return "this QR code is not a MyCrew contact"
	}
}

// Decoder turns scanned text into contacts. Now and Entropy may be set for
// reproducible ids; the zero value uses the wall clock and crypto/rand.
type Decoder struct {
	Now     func() time.Time
	Entropy io.Reader
}

var defaultDecoder = &Decoder{}

// Decode classifies and parses text with the default decoder.
func Decode(text string) Result {
	return defaultDecoder.Decode(text)
}

func (d *Decoder) Decode(text string) Result {
	var root object
	if err := json.Unmarshal([]byte(text), &root); err != nil || root == nil {
		return Result{Kind: KindNotRecognized, Err: ErrNotRecognized}
	}

	typ, ok := optionalString(root, "type")
	if !ok || (typ != TypeContact && typ != TypeContactList) {
		return Result{Kind: KindNotRecognized, Err: ErrNotRecognized}
	}

	version, ok := optionalString(root, "version")
	if !ok || version != Version {
		return malformed(fmt.Errorf("%w: %q", ErrIncompatibleVersion, version))
	}

	ids := d.idSource()

	if typ == TypeContact {
		data, ok := objectOf(root["data"])
		if !ok {
			return malformed(fmt.Errorf("%w: data must be an object", ErrInvalidData))
		}
		c, err := rebuild(data)
		if err != nil {
			return malformed(err)
		}
		if c.ID, err = ids(); err != nil {
			return malformed(err)
		}
		return Result{Kind: KindSingleContact, Contacts: []models.Contact{c}, DeclaredCount: 1}
	}

	var items []json.RawMessage
	if isNull(root["data"]) || json.Unmarshal(root["data"], &items) != nil {
		return malformed(fmt.Errorf("%w: data must be an array", ErrInvalidData))
	}

	declared := len(items)
	if raw, present := root["count"]; present && !isNull(raw) {
		if err := json.Unmarshal(raw, &declared); err != nil {
			return malformed(fmt.Errorf("%w: count must be an integer", ErrInvalidData))
		}
		if declared != len(items) {
			return malformed(fmt.Errorf("%w: count %d, got %d", ErrCountMismatch, declared, len(items)))
		}
	}

	contacts := make([]models.Contact, 0, len(items))
	for i, item := range items {
		data, ok := objectOf(item)
		if !ok {
			return malformed(fmt.Errorf("%w: contact %d must be an object", ErrInvalidData, i))
		}
		c, err := rebuild(data)
		if err != nil {
			return malformed(fmt.Errorf("contact %d: %w", i, err))
		}
		if c.ID, err = ids(); err != nil {
			return malformed(err)
		}
		contacts = append(contacts, c)
	}

	return Result{Kind: KindMultiContact, Contacts: contacts, DeclaredCount: declared}
}

func malformed(err error) Result {
	return Result{Kind: KindMalformed, Err: err}
}

// idSource mints ULIDs sharing the scan timestamp. Monotonic entropy keeps
// them distinct and ordered by array index within one decode.
func (d *Decoder) idSource() func() (string, error) {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	source := d.Entropy
	if source == nil {
		source = rand.Reader
	}

	ts := ulid.Timestamp(now())
	entropy := ulid.Monotonic(source, 0)
	return func() (string, error) {
		id, err := ulid.New(ts, entropy)
		if err != nil {
			return "", fmt.Errorf("failed to generate id: %w", err)
		}
		return id.String(), nil
	}
}

func rebuild(data object) (models.Contact, error) {
	var c models.Contact
	var err error

	if c.FirstName, err = requireString(data, "firstName"); err != nil {
		return c, err
	}
	if c.LastName, err = requireString(data, "lastName"); err != nil {
		return c, err
	}
	if c.JobTitle, err = requireString(data, "jobTitle"); err != nil {
		return c, err
	}
	if c.Phone, err = requireString(data, "phone"); err != nil {
		return c, err
	}
	if c.Email, err = requireString(data, "email"); err != nil {
		return c, err
	}
	if c.JobTitle != "" {
		c.JobTitles = []string{c.JobTitle}
	}

	c.Notes = ""
	c.IsFavorite = false
	c.Locations = []models.WorkLocation{}

	raw, present := data["locations"]
	if !present || isNull(raw) {
		return c, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return c, fmt.Errorf("%w: locations must be an array", ErrInvalidLocation)
	}
	for i, item := range items {
		loc, ok := objectOf(item)
		if !ok {
			return c, fmt.Errorf("%w: location %d must be an object", ErrInvalidLocation, i)
		}
		country, _ := optionalString(loc, "country")
		region, _ := optionalString(loc, "region")
		c.Locations = append(c.Locations, models.WorkLocation{
			Country:         country,
			Region:          region,
			IsLocalResident: coerceBool(loc["isLocalResident"]),
			HasVehicle:      coerceBool(loc["hasVehicle"]),
			IsHoused:        coerceBool(loc["isHoused"]),
			IsPrimary:       coerceBool(loc["isPrimary"]),
		})
	}
	return c, nil
}
