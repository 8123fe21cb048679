package sync

import (
	"testing"

	"github.com/mycrew/mycrew/models"
)

func TestMatchContactByNameAndPhone(t *testing.T) {
	existing := []models.Contact{
		{ID: "a", FirstName: "Alice", LastName: "Martin", Phone: "06 12 34 56 78"},
		{ID: "b", FirstName: "Bob", LastName: "Durand", Phone: "0700000000"},
	}

	matcher := NewContactMatcher(existing)

	match, found := matcher.FindMatch(models.Contact{FirstName: "alice", LastName: "MARTIN ", Phone: "06.12.34.56.78"})
	if !found {
		t.Fatal("expected to find match for Alice Martin")
	}
	if match.ID != "a" {
		t.Errorf("expected contact a, got %s", match.ID)
	}

	// Same name, different phone
	if _, found := matcher.FindMatch(models.Contact{FirstName: "Alice", LastName: "Martin", Phone: "0600000000"}); found {
		t.Error("expected no match when phone differs")
	}

	// Same phone, different name
	if _, found := matcher.FindMatch(models.Contact{FirstName: "Alicia", LastName: "Martin", Phone: "0612345678"}); found {
		t.Error("expected no match when first name differs")
	}
}

func TestMatcherAddContact(t *testing.T) {
	matcher := NewContactMatcher(nil)

	c := &models.Contact{ID: "new", FirstName: "Léa", LastName: "Roux"}
	matcher.AddContact(c)

	match, found := matcher.FindMatch(models.Contact{FirstName: "léa", LastName: "roux"})
	if !found || match.ID != "new" {
		t.Errorf("expected session contact to match, got %v %v", match, found)
	}
}

func TestMatchKey(t *testing.T) {
	tests := []struct {
		contact  models.Contact
		expected string
	}{
		{models.Contact{FirstName: "Jean", LastName: "Dupont", Phone: "01 23 45"}, "jean|dupont|012345"},
		{models.Contact{FirstName: " Zoé ", Phone: "(01) 23-45"}, "zoé||012345"},
		{models.Contact{}, "||"},
	}

	for _, tt := range tests {
		result := matchKey(tt.contact)
		if result != tt.expected {
			t.Errorf("matchKey(%+v) = %q, want %q", tt.contact, result, tt.expected)
		}
	}
}
