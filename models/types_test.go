// ABOUTME: Tests for crew contact models
// ABOUTME: Validates derived location fields and job title normalization
package models

import (
	"errors"
	"testing"
)

func TestPrimaryLocationAndCity(t *testing.T) {
	c := &Contact{
		Locations: []WorkLocation{
			{Country: "France", Region: "Bretagne"},
			{Country: "France", Region: "Paris", IsPrimary: true},
			{Country: "Belgique"},
		},
	}

	p := c.PrimaryLocation()
	if p == nil {
		t.Fatal("expected a primary location")
	}
	if p.Region != "Paris" {
		t.Errorf("expected Paris, got %s", p.Region)
	}
	if c.City() != "Paris" {
		t.Errorf("expected city Paris, got %s", c.City())
	}

	secondary := c.SecondaryLocations()
	if len(secondary) != 2 {
		t.Fatalf("expected 2 secondary locations, got %d", len(secondary))
	}
	if secondary[0].Region != "Bretagne" || secondary[1].Country != "Belgique" {
		t.Errorf("unexpected secondary order: %+v", secondary)
	}
}

func TestCityFallsBackToCountry(t *testing.T) {
	c := &Contact{Locations: []WorkLocation{{Country: "Espagne", IsPrimary: true}}}
	if c.City() != "Espagne" {
		t.Errorf("expected Espagne, got %q", c.City())
	}

	none := &Contact{Locations: []WorkLocation{{Country: "Espagne"}}}
	if none.City() != "" {
		t.Errorf("expected empty city without primary, got %q", none.City())
	}
	if none.PrimaryLocation() != nil {
		t.Error("expected no primary location")
	}
}

func TestFirstPrimaryWins(t *testing.T) {
	c := &Contact{
		Locations: []WorkLocation{
			{Country: "France", Region: "Lyon", IsPrimary: true},
			{Country: "France", Region: "Nice", IsPrimary: true},
		},
	}
	if c.City() != "Lyon" {
		t.Errorf("expected first primary to win, got %s", c.City())
	}
	if len(c.SecondaryLocations()) != 1 {
		t.Errorf("expected the second primary to count as secondary")
	}
}

func TestCanonicalJobTitles(t *testing.T) {
	tests := []struct {
		name     string
		contact  Contact
		expected []string
	}{
		{"legacy only", Contact{JobTitle: "Gaffer"}, []string{"Gaffer"}},
		{"list wins", Contact{JobTitle: "Gaffer", JobTitles: []string{"Chef op", "Cadreur"}}, []string{"Chef op", "Cadreur"}},
		{"trims and drops blanks", Contact{JobTitles: []string{" Machino ", "", "  "}}, []string{"Machino"}},
		{"caps at three", Contact{JobTitles: []string{"a", "b", "c", "d"}}, []string{"a", "b", "c"}},
		{"empty", Contact{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanonicalJobTitles(tt.contact)
			if len(got) != len(tt.expected) {
				t.Fatalf("got %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("got %v, want %v", got, tt.expected)
				}
			}
		})
	}
}

func TestNormalizeJobTitles(t *testing.T) {
	c := &Contact{JobTitles: []string{"Scripte", "Régisseur"}}
	c.NormalizeJobTitles()
	if c.JobTitle != "Scripte" {
		t.Errorf("expected JobTitle mirrored from list, got %q", c.JobTitle)
	}

	empty := &Contact{JobTitle: "   "}
	empty.NormalizeJobTitles()
	if empty.JobTitle != "" || empty.JobTitles != nil {
		t.Errorf("expected blank title cleared, got %q %v", empty.JobTitle, empty.JobTitles)
	}
}

func TestValidateLocations(t *testing.T) {
	if err := ValidateLocations([]WorkLocation{{Country: "France", IsPrimary: true}, {Country: "Italie"}}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := ValidateLocations([]WorkLocation{{Country: ""}})
	if !errors.Is(err, ErrMissingCountry) {
		t.Errorf("expected ErrMissingCountry, got %v", err)
	}

	err = ValidateLocations([]WorkLocation{{Country: "A", IsPrimary: true}, {Country: "B", IsPrimary: true}})
	if !errors.Is(err, ErrMultiplePrimary) {
		t.Errorf("expected ErrMultiplePrimary, got %v", err)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"01 23 45 67 89", "0123456789"},
		{"01.23.45.67.89", "0123456789"},
		{"+33 (0)1-23-45", "+33012345"},
	}

	for _, tt := range tests {
		if got := NormalizePhone(tt.input); got != tt.expected {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestSameArea(t *testing.T) {
	a := WorkLocation{Country: "France", Region: "Paris"}
	b := WorkLocation{Country: "france ", Region: "PARIS", IsPrimary: true}
	if !a.SameArea(b) {
		t.Error("expected case-insensitive match")
	}
	if a.SameArea(WorkLocation{Country: "France"}) {
		t.Error("expected region mismatch")
	}
}
