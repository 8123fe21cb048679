// ABOUTME: Contact deduplication and matching logic
// ABOUTME: Finds existing contacts by name and phone to prevent duplicates on import
package sync

import (
	"strings"

	"github.com/mycrew/mycrew/models"
)

type ContactMatcher struct {
	byKey map[string]*models.Contact
}

// NewContactMatcher creates a matcher from existing contacts. The first
// contact wins when two share a key.
func NewContactMatcher(contacts []models.Contact) *ContactMatcher {
	m := &ContactMatcher{
		byKey: make(map[string]*models.Contact),
	}

	for i := range contacts {
		key := matchKey(contacts[i])
		if _, seen := m.byKey[key]; !seen {
			m.byKey[key] = &contacts[i]
		}
	}

	return m
}

// FindMatch looks for an existing contact with the same first name, last name
// and phone number.
func (m *ContactMatcher) FindMatch(c models.Contact) (*models.Contact, bool) {
	contact, found := m.byKey[matchKey(c)]
	return contact, found
}

// AddContact adds a newly created contact to the matcher to prevent duplicates
// within the same import session.
func (m *ContactMatcher) AddContact(contact *models.Contact) {
	m.byKey[matchKey(*contact)] = contact
}

// matchKey is lower(first) | lower(last) | phone without separators.
func matchKey(c models.Contact) string {
	return strings.Join([]string{
		strings.ToLower(strings.TrimSpace(c.FirstName)),
		strings.ToLower(strings.TrimSpace(c.LastName)),
		models.NormalizePhone(c.Phone),
	}, "|")
}
