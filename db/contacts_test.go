// ABOUTME: Tests for the SQLite contact repository
// ABOUTME: Covers CRUD, location ordering, search and duplicate lookup
package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycrew/mycrew/models"
)

func newTestRepo(t *testing.T) *ContactsRepository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "crew.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func sampleContact() *models.Contact {
	return &models.Contact{
		FirstName: "Jean",
		LastName:  "Dupont",
		JobTitles: []string{"Réalisateur", " Monteur "},
		Phone:     "01 23 45 67 89",
		Email:     "jean@example.fr",
		Notes:     "préfère les tournages de nuit",
		Locations: []models.WorkLocation{
			{Country: "France", Region: "Lyon"},
			{Country: "France", Region: "Paris", IsLocalResident: true, IsHoused: true, IsPrimary: true},
			{Country: "Belgique", HasVehicle: true},
		},
	}
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id, err := repo.Create(ctx, sampleContact())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, "Jean", got.FirstName)
	assert.Equal(t, []string{"Réalisateur", "Monteur"}, got.JobTitles)
	assert.Equal(t, "Réalisateur", got.JobTitle)
	assert.Equal(t, "préfère les tournages de nuit", got.Notes)
	assert.False(t, got.CreatedAt.IsZero())

	require.Len(t, got.Locations, 3)
	assert.Equal(t, "Lyon", got.Locations[0].Region)
	assert.Equal(t, "Paris", got.Locations[1].Region)
	assert.True(t, got.Locations[1].IsPrimary)
	assert.True(t, got.Locations[1].IsHoused)
	assert.Equal(t, "Belgique", got.Locations[2].Country)
	assert.True(t, got.Locations[2].HasVehicle)
	assert.Equal(t, "Paris", got.City())
}

func TestCreateRejectsInvalidLocations(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	c := sampleContact()
	c.Locations[0].IsPrimary = true
	_, err := repo.Create(ctx, c)
	assert.ErrorIs(t, err, models.ErrMultiplePrimary)

	c = sampleContact()
	c.Locations[2].Country = " "
	_, err = repo.Create(ctx, c)
	assert.ErrorIs(t, err, models.ErrMissingCountry)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGetNotFound(t *testing.T) {
	_, err := newTestRepo(t).Get(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrContactNotFound)
}

func TestLegacyTitleOnly(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id, err := repo.Create(ctx, &models.Contact{FirstName: "Léa", JobTitle: "Scripte"})
	require.NoError(t, err)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Scripte"}, got.JobTitles)
	assert.Empty(t, got.Locations)
}

func TestUpdateReplacesLocations(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	c := sampleContact()
	id, err := repo.Create(ctx, c)
	require.NoError(t, err)

	c.Email = "new@example.fr"
	c.Locations = []models.WorkLocation{{Country: "Italie", Region: "Rome", IsPrimary: true}}
	require.NoError(t, repo.Update(ctx, c))

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "new@example.fr", got.Email)
	require.Len(t, got.Locations, 1)
	assert.Equal(t, "Rome", got.Locations[0].Region)

	missing := &models.Contact{ID: "nope", FirstName: "X"}
	assert.ErrorIs(t, repo.Update(ctx, missing), models.ErrContactNotFound)
}

func TestDeleteAndFavorite(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id, err := repo.Create(ctx, sampleContact())
	require.NoError(t, err)

	require.NoError(t, repo.SetFavorite(ctx, id, true))
	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.IsFavorite)

	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.Get(ctx, id)
	assert.ErrorIs(t, err, models.ErrContactNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, id), models.ErrContactNotFound)
	assert.ErrorIs(t, repo.SetFavorite(ctx, id, false), models.ErrContactNotFound)

	var orphans int
	require.NoError(t, repo.db.QueryRow(`SELECT COUNT(*) FROM work_locations`).Scan(&orphans))
	assert.Equal(t, 0, orphans)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.Create(ctx, sampleContact())
	require.NoError(t, err)
	_, err = repo.Create(ctx, &models.Contact{
		FirstName: "Ana",
		LastName:  "Martin",
		JobTitle:  "Scripte",
		Locations: []models.WorkLocation{{Country: "Espagne", Region: "Madrid", IsPrimary: true}},
	})
	require.NoError(t, err)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Jean", "Ana"}},
		{"dupont", []string{"Jean"}},
		{"SCRIPTE", []string{"Ana"}},
		{"madrid", []string{"Ana"}},
		{"belgique", []string{"Jean"}},
		{"nobody", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			results, err := repo.Search(ctx, tt.query, 10)
			require.NoError(t, err)

			var names []string
			for _, c := range results {
				names = append(names, c.FirstName)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestSearchAndFindFoldAccents(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id, err := repo.Create(ctx, &models.Contact{
		FirstName: "Étienne",
		LastName:  "Lévêque",
		JobTitle:  "Électricien",
		Phone:     "0611223344",
		Locations: []models.WorkLocation{{Country: "Suisse", Region: "Genève", IsPrimary: true}},
	})
	require.NoError(t, err)

	for _, q := range []string{"étienne", "ÉTIENNE", "lévêque", "électricien", "GENÈVE"} {
		results, err := repo.Search(ctx, q, 10)
		require.NoError(t, err)
		require.Len(t, results, 1, q)
		assert.Equal(t, id, results[0].ID)
	}

	found, err := repo.FindByNameAndPhone(ctx, "ÉTIENNE LÉVÊQUE", "06 11 22 33 44")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, id, found.ID)
}

func TestCreateRejectsExistingID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.Create(ctx, &models.Contact{ID: "crew-1", FirstName: "Jean"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &models.Contact{ID: "crew-1", FirstName: "Marie"})
	assert.ErrorIs(t, err, models.ErrDuplicateID)
}

func TestFindByNameAndPhone(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id, err := repo.Create(ctx, sampleContact())
	require.NoError(t, err)

	found, err := repo.FindByNameAndPhone(ctx, "jean dupont", "01.23.45.67.89")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, id, found.ID)
	assert.Len(t, found.Locations, 3)

	found, err = repo.FindByNameAndPhone(ctx, "Jean Dupont", "0600000000")
	require.NoError(t, err)
	assert.Nil(t, found)

	found, err = repo.FindByNameAndPhone(ctx, "Jeanne Dupont", "0123456789")
	require.NoError(t, err)
	assert.Nil(t, found)
}
