package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycrew/mycrew/kv"
	"github.com/mycrew/mycrew/models"
	"github.com/mycrew/mycrew/payload"
)

func newStore(t *testing.T) *kv.Store {
	t.Helper()
	s, err := kv.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seed(t *testing.T, s *kv.Store) string {
	t.Helper()
	id, err := s.Create(context.Background(), &models.Contact{
		FirstName:  "Jean",
		LastName:   "Dupont",
		JobTitle:   "Réalisateur",
		Phone:      "01 23 45 67 89",
		Notes:      "mes notes",
		IsFavorite: true,
		Locations:  []models.WorkLocation{{Country: "France", Region: "Paris", IsPrimary: true}},
	})
	require.NoError(t, err)
	return id
}

func scanned(t *testing.T, cs ...models.Contact) []models.Contact {
	t.Helper()
	text, err := payload.Encode(cs)
	require.NoError(t, err)
	result := payload.Decode(text)
	require.True(t, result.OK(), "decode: %v", result.Err)
	return result.Contacts
}

func TestPlanMarksDuplicates(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	id := seed(t, s)

	incoming := scanned(t,
		models.Contact{FirstName: "jean", LastName: "DUPONT", Phone: "0123456789"},
		models.Contact{FirstName: "Ana", LastName: "Martin", Phone: "0600000000"},
	)

	decisions, err := NewImporter(s).Plan(ctx, incoming)
	require.NoError(t, err)
	require.Len(t, decisions, 2)

	assert.Equal(t, ActionMerge, decisions[0].Action)
	require.NotNil(t, decisions[0].Existing)
	assert.Equal(t, id, decisions[0].Existing.ID)
	assert.Equal(t, ActionAdd, decisions[1].Action)
	assert.Nil(t, decisions[1].Existing)
}

func TestApplyMerge(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	id := seed(t, s)

	incoming := scanned(t, models.Contact{
		FirstName: "Jean",
		LastName:  "Dupont",
		JobTitle:  "Monteur",
		Phone:     "0123456789",
		Email:     "jean@example.fr",
		Locations: []models.WorkLocation{{Country: "France", Region: "Lyon", IsPrimary: true, HasVehicle: true}},
	})

	summary, err := NewImporter(s).Import(ctx, incoming, AlwaysMerge)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Merged)
	assert.Equal(t, []string{id}, summary.IDs)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "jean@example.fr", got.Email)
	assert.Equal(t, "01 23 45 67 89", got.Phone, "existing values are kept")
	assert.Equal(t, []string{"Réalisateur", "Monteur"}, got.JobTitles)
	assert.Equal(t, "mes notes", got.Notes)
	assert.True(t, got.IsFavorite)

	require.Len(t, got.Locations, 2)
	assert.Equal(t, "Paris", got.City(), "existing primary stays primary")
	assert.False(t, got.Locations[1].IsPrimary)
	assert.True(t, got.Locations[1].HasVehicle)
}

func TestApplySkipAndAdd(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seed(t, s)

	dup := models.Contact{FirstName: "Jean", LastName: "Dupont", Phone: "0123456789"}

	summary, err := NewImporter(s).Import(ctx, scanned(t, dup), AlwaysSkip)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, summary.IDs)

	summary, err = NewImporter(s).Import(ctx, scanned(t, dup), AlwaysAdd)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Added)

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.NotEqual(t, all[0].ID, all[1].ID)
}

func TestApplyDedupsWithinBatch(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	incoming := scanned(t,
		models.Contact{FirstName: "Léa", LastName: "Roux", Phone: "07", Locations: []models.WorkLocation{{Country: "France", IsPrimary: true}}},
		models.Contact{FirstName: "Léa", LastName: "Roux", Phone: "07", Email: "lea@example.fr"},
	)

	summary, err := NewImporter(s).Import(ctx, incoming, AlwaysSkip)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Added)
	assert.Equal(t, 1, summary.Merged)
	require.Len(t, summary.IDs, 2)
	assert.Equal(t, summary.IDs[0], summary.IDs[1])

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "lea@example.fr", all[0].Email)
}

func TestApplyCollectsFailures(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	// A scanned contact may carry a blank first name, which the store rejects
	incoming := scanned(t, models.Contact{LastName: "Anonyme"}, models.Contact{FirstName: "Ok"})

	summary, err := NewImporter(s).Import(ctx, incoming, AlwaysMerge)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Added)
	require.Len(t, summary.Failed, 1)
	assert.ErrorIs(t, summary.Failed[0].Err, models.ErrMissingFirstName)
	assert.Equal(t, "1 added, 0 merged, 0 skipped, 1 failed", summary.String())
}

func TestResolverErrorStops(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seed(t, s)

	abort := func(context.Context, Decision) (Choice, error) { return 0, ErrImportAborted }
	_, err := NewImporter(s).Import(ctx, scanned(t, models.Contact{FirstName: "Jean", LastName: "Dupont", Phone: "0123456789"}), abort)
	assert.True(t, errors.Is(err, ErrImportAborted))
}

func TestMergeContacts(t *testing.T) {
	existing := models.Contact{
		ID:        "x",
		FirstName: "Jean",
		JobTitles: []string{"A", "B"},
		Locations: []models.WorkLocation{{Country: "France", Region: "Paris"}},
	}
	incoming := models.Contact{
		FirstName:  "Jean",
		LastName:   "Dupont",
		JobTitles:  []string{"b", "C", "D"},
		Notes:      "ignored",
		IsFavorite: true,
		Locations: []models.WorkLocation{
			{Country: "france", Region: "paris", HasVehicle: true},
			{Country: "Italie", IsPrimary: true},
			{Country: "Espagne", IsPrimary: true},
		},
	}

	merged := MergeContacts(existing, incoming)
	assert.Equal(t, "x", merged.ID)
	assert.Equal(t, "Dupont", merged.LastName)
	assert.Equal(t, []string{"A", "B", "C"}, merged.JobTitles)
	assert.Empty(t, merged.Notes)
	assert.False(t, merged.IsFavorite)

	require.Len(t, merged.Locations, 3)
	assert.False(t, merged.Locations[0].HasVehicle, "known areas are not overwritten")
	assert.True(t, merged.Locations[1].IsPrimary, "first incoming primary fills the gap")
	assert.False(t, merged.Locations[2].IsPrimary)
	assert.NoError(t, models.ValidateLocations(merged.Locations))

	assert.Len(t, existing.Locations, 1, "inputs are not mutated")
}

func TestParseChoice(t *testing.T) {
	for in, want := range map[string]Choice{"merge": ChoiceMerge, " SKIP": ChoiceSkip, "add": ChoiceAdd} {
		got, err := ParseChoice(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseChoice("ask")
	assert.Error(t, err)
}
