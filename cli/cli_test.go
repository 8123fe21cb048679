// ABOUTME: Tests for CLI commands
// ABOUTME: Runs commands against an in-memory store and checks their output
package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycrew/mycrew/models"
	"github.com/mycrew/mycrew/payload"
	"github.com/mycrew/mycrew/qr"
	"github.com/mycrew/mycrew/store"
)

func setupTestCLI(t *testing.T) (store.Store, *bytes.Buffer) {
	t.Helper()
	s, err := store.Memory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	var out bytes.Buffer
	oldOut, oldIn := Stdout, Stdin
	Stdout = &out
	t.Cleanup(func() { Stdout, Stdin = oldOut, oldIn })
	return s, &out
}

func seed(t *testing.T, s store.Store, c models.Contact) string {
	t.Helper()
	id, err := s.Create(context.Background(), &c)
	require.NoError(t, err)
	return id
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in      string
		want    models.WorkLocation
		wantErr bool
	}{
		{"France", models.WorkLocation{Country: "France"}, false},
		{"France/Lyon", models.WorkLocation{Country: "France", Region: "Lyon"}, false},
		{"France/Paris:vp", models.WorkLocation{Country: "France", Region: "Paris", HasVehicle: true, IsPrimary: true}, false},
		{" Belgique :RL", models.WorkLocation{Country: "Belgique", IsLocalResident: true, IsHoused: true}, false},
		{"/Lyon", models.WorkLocation{}, true},
		{"France:z", models.WorkLocation{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLocation(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddAndListContacts(t *testing.T) {
	s, out := setupTestCLI(t)

	err := AddContactCommand(s, []string{
		"--first", "Jean", "--last", "Dupont",
		"--title", "Chef électro", "--title", "Électro",
		"--phone", "0612345678",
		"--location", "France/Lyon",
		"--location", "France/Paris:vp",
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Contact created: Jean Dupont")
	assert.Contains(t, out.String(), "City: Paris")

	all, err := s.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, []string{"Chef électro", "Électro"}, all[0].JobTitles)
	require.Len(t, all[0].Locations, 2)
	assert.True(t, all[0].Locations[1].HasVehicle)

	out.Reset()
	require.NoError(t, ListContactsCommand(s, []string{"--query", "paris"}))
	assert.Contains(t, out.String(), "Jean Dupont")
	assert.Contains(t, out.String(), "Total: 1 contact(s)")

	out.Reset()
	require.NoError(t, ListContactsCommand(s, []string{"--favorites"}))
	assert.Contains(t, out.String(), "No contacts found")
}

func TestAddContactErrors(t *testing.T) {
	s, _ := setupTestCLI(t)

	assert.Error(t, AddContactCommand(s, []string{"--last", "Dupont"}))
	assert.Error(t, AddContactCommand(s, []string{"--first", "A", "--location", "France:p", "--location", "Italie:p"}))
	assert.Error(t, AddContactCommand(s, []string{"--first", "A", "--location", ":p"}))
}

func TestFavoriteAndDelete(t *testing.T) {
	s, out := setupTestCLI(t)
	id := seed(t, s, models.Contact{FirstName: "Jean"})

	require.NoError(t, FavoriteCommand(s, []string{id}))
	c, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, c.IsFavorite)

	require.NoError(t, FavoriteCommand(s, []string{"--off", id}))
	assert.Contains(t, out.String(), "Removed from favorites")

	require.NoError(t, DeleteContactCommand(s, []string{id}))
	_, err = s.Get(context.Background(), id)
	assert.ErrorIs(t, err, models.ErrContactNotFound)

	assert.Error(t, DeleteContactCommand(s, []string{id}))
	assert.Error(t, DeleteContactCommand(s, nil))
	assert.Error(t, FavoriteCommand(s, nil))
}

func TestQRShareRawAndPNG(t *testing.T) {
	s, out := setupTestCLI(t)
	a := seed(t, s, models.Contact{FirstName: "Jean", LastName: "Dupont", Notes: "secret"})
	b := seed(t, s, models.Contact{FirstName: "Marie", LastName: "Curie"})

	// A bytes.Buffer is not a terminal, so the raw payload is printed.
	require.NoError(t, QRShareCommand(s, 256, []string{a, b}))
	text := strings.TrimSpace(out.String())
	result := payload.Decode(text)
	require.True(t, result.OK())
	assert.Len(t, result.Contacts, 2)
	assert.NotContains(t, text, "secret")

	out.Reset()
	path := filepath.Join(t.TempDir(), "share.png")
	require.NoError(t, QRShareCommand(s, 256, []string{"--output", path, "--size", "512", a}))
	assert.Contains(t, out.String(), "QR code written")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	scanned, err := qr.Scan(data)
	require.NoError(t, err)
	assert.Contains(t, scanned, "Dupont")
}

func TestQRShareErrors(t *testing.T) {
	s, _ := setupTestCLI(t)

	assert.ErrorIs(t, QRShareCommand(s, 256, nil), payload.ErrNoContactSelected)
	assert.Error(t, QRShareCommand(s, 256, []string{"missing"}))

	ids := make([]string, 11)
	for i := range ids {
		ids[i] = "x"
	}
	var capErr *payload.CapacityError
	assert.ErrorAs(t, QRShareCommand(s, 256, ids), &capErr)
}

func TestQREstimate(t *testing.T) {
	s, out := setupTestCLI(t)
	a := seed(t, s, models.Contact{FirstName: "Jean", LastName: "Dupont"})

	require.NoError(t, QREstimateCommand(s, []string{a}))
	assert.Contains(t, out.String(), "Contacts:            1")
	assert.Contains(t, out.String(), "Recommended level:   H")
}

func TestQRScanText(t *testing.T) {
	s, out := setupTestCLI(t)
	seed(t, s, models.Contact{FirstName: "Jean", LastName: "Dupont", Phone: "0612345678"})

	text, err := payload.EncodeContacts([]models.Contact{
		{FirstName: "Jean", LastName: "Dupont", Phone: "06 12 34 56 78", Email: "j@d.fr"},
		{FirstName: "Marie", LastName: "Curie"},
	})
	require.NoError(t, err)

	require.NoError(t, QRScanCommand(s, []string{"--text", text, "--dry-run"}))
	assert.Contains(t, out.String(), "2 contacts found")
	all, _ := s.GetAll(context.Background())
	assert.Len(t, all, 1)

	out.Reset()
	require.NoError(t, QRScanCommand(s, []string{"--text", text, "--on-duplicate", "merge"}))
	assert.Contains(t, out.String(), "1 added, 1 merged, 0 skipped")
}

func TestQRScanAsk(t *testing.T) {
	s, out := setupTestCLI(t)
	seed(t, s, models.Contact{FirstName: "Jean", LastName: "Dupont"})
	seed(t, s, models.Contact{FirstName: "Marie", LastName: "Curie"})

	text, err := payload.EncodeContacts([]models.Contact{{FirstName: "Jean", LastName: "Dupont"}, {FirstName: "Marie", LastName: "Curie"}})
	require.NoError(t, err)

	Stdin = strings.NewReader("huh\ns\na\n")
	require.NoError(t, QRScanCommand(s, []string{"--text", text}))
	assert.Contains(t, out.String(), "Jean Dupont already exists")
	assert.Contains(t, out.String(), "1 added, 0 merged, 1 skipped")

	Stdin = strings.NewReader("q\n")
	assert.Error(t, QRScanCommand(s, []string{"--text", text}))
}

func TestQRScanImageAndRejects(t *testing.T) {
	s, out := setupTestCLI(t)

	text, err := payload.EncodeContact(models.Contact{FirstName: "Léa", LastName: "Martin"})
	require.NoError(t, err)
	png, err := qr.Render(text, qr.RenderOptions{Size: 400})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "code.png")
	require.NoError(t, os.WriteFile(path, png, 0644))
	require.NoError(t, QRScanCommand(s, []string{"--on-duplicate", "add", path}))
	assert.Contains(t, out.String(), "Léa Martin")

	Stdin = strings.NewReader("not a payload")
	err = QRScanCommand(s, []string{"--on-duplicate", "add", "-"})
	assert.ErrorContains(t, err, "not a MyCrew contact")

	assert.Error(t, QRScanCommand(s, nil))
	assert.Error(t, QRScanCommand(s, []string{"--text", text, "--on-duplicate", "replace"}))
}

func TestExportImportRoundTrip(t *testing.T) {
	for _, ext := range []string{"json", "csv", "vcf"} {
		t.Run(ext, func(t *testing.T) {
			s, out := setupTestCLI(t)
			seed(t, s, models.Contact{FirstName: "Jean", LastName: "Dupont", Phone: "0612345678",
				Locations: []models.WorkLocation{{Country: "France", Region: "Lyon", IsPrimary: true}}})

			path := filepath.Join(t.TempDir(), "crew."+ext)
			require.NoError(t, ExportCommand(s, []string{"--output", path}))
			assert.Contains(t, out.String(), "Exported 1 contact(s)")

			target, err := store.Memory()
			require.NoError(t, err)
			defer func() { _ = target.Close() }()

			require.NoError(t, ImportCommand(target, []string{path}))
			require.NoError(t, ImportCommand(target, []string{path}))
			assert.Contains(t, out.String(), "0 added, 1 merged, 0 skipped")

			all, err := target.GetAll(context.Background())
			require.NoError(t, err)
			require.Len(t, all, 1)
			assert.Equal(t, "Lyon", all[0].City())
		})
	}
}

func TestExportStdoutDefaultsToJSON(t *testing.T) {
	s, out := setupTestCLI(t)
	seed(t, s, models.Contact{FirstName: "Jean"})

	require.NoError(t, ExportCommand(s, nil))
	assert.Contains(t, out.String(), `"firstName": "Jean"`)

	assert.Error(t, ExportCommand(s, []string{"--format", "xml"}))
	assert.Error(t, ImportCommand(s, nil))
}

func TestVizCommands(t *testing.T) {
	s, out := setupTestCLI(t)
	seed(t, s, models.Contact{FirstName: "Jean", Locations: []models.WorkLocation{{Country: "France", Region: "Lyon", IsPrimary: true}}})

	require.NoError(t, VizLocationsCommand(s, nil))
	assert.Contains(t, out.String(), "Lyon")

	out.Reset()
	require.NoError(t, VizDashboardCommand(s, nil))
	assert.Contains(t, out.String(), "MYCREW DASHBOARD")

	assert.Error(t, VizLocationsCommand(s, []string{"--format", "png"}))
	assert.Error(t, VizLocationsCommand(s, []string{"--format", "gif"}))
}

func TestNewMCPServer(t *testing.T) {
	s, _ := setupTestCLI(t)
	assert.NotNil(t, NewMCPServer(s, "test"))
}
