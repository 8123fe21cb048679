// ABOUTME: Integration tests combining the SQLite repository with QR payloads
// ABOUTME: Shares contacts from one book to another and re-imports them

package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycrew/mycrew/models"
	"github.com/mycrew/mycrew/payload"
	"github.com/mycrew/mycrew/sync"
)

// TestShareScenario moves a crew between two SQLite books through a payload.
func TestShareScenario(t *testing.T) {
	sender := newTestRepo(t)
	receiver := newTestRepo(t)
	ctx := context.Background()

	jeanID, err := sender.Create(ctx, sampleContact())
	require.NoError(t, err)
	marieID, err := sender.Create(ctx, &models.Contact{
		FirstName: "Marie",
		LastName:  "Curie",
		JobTitles: []string{"Scripte"},
		Phone:     "0700000000",
		Locations: []models.WorkLocation{{Country: "Belgique", Region: "Bruxelles", HasVehicle: true, IsPrimary: true}},
	})
	require.NoError(t, err)

	// The receiver already knows Jean, with fewer details
	_, err = receiver.Create(ctx, &models.Contact{
		FirstName: "jean",
		LastName:  "DUPONT",
		Phone:     "0123456789",
		Notes:     "met on set",
		Locations: []models.WorkLocation{{Country: "France", Region: "Marseille", IsPrimary: true}},
	})
	require.NoError(t, err)

	var batch []models.Contact
	for _, id := range []string{jeanID, marieID} {
		c, err := sender.Get(ctx, id)
		require.NoError(t, err)
		batch = append(batch, *c)
	}

	text, err := payload.Encode(batch)
	require.NoError(t, err)
	assert.NotContains(t, text, "tournages", "notes never leave the sender")

	result := payload.Decode(text)
	require.True(t, result.OK())
	require.Equal(t, payload.KindMultiContact, result.Kind)

	summary, err := sync.NewImporter(receiver).Import(ctx, result.Contacts, sync.AlwaysMerge)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Added)
	assert.Equal(t, 1, summary.Merged)

	all, err := receiver.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	jean, err := receiver.FindByNameAndPhone(ctx, "Jean Dupont", "01.23.45.67.89")
	require.NoError(t, err)
	require.NotNil(t, jean)
	assert.Equal(t, "met on set", jean.Notes)
	assert.Equal(t, "jean@example.fr", jean.Email)
	assert.Equal(t, "Marseille", jean.City(), "existing primary location stays primary")
	require.Len(t, jean.Locations, 2)
	assert.Equal(t, "Paris", jean.Locations[1].Region)
	assert.False(t, jean.Locations[1].IsPrimary)
	assert.Equal(t, []string{"Réalisateur"}, jean.JobTitles, "a payload carries one title")

	// Scanning the same code again changes nothing
	summary, err = sync.NewImporter(receiver).Import(ctx, payload.Decode(text).Contacts, sync.AlwaysMerge)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Merged)

	again, err := receiver.Get(ctx, jean.ID)
	require.NoError(t, err)
	assert.Len(t, again.Locations, 2)

	marie, err := receiver.FindByNameAndPhone(ctx, "Marie Curie", "0700000000")
	require.NoError(t, err)
	require.NotNil(t, marie)
	assert.True(t, marie.Locations[0].HasVehicle)
	assert.Equal(t, "Bruxelles", marie.City())
}
