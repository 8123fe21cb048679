package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"MYCREW_DB_PATH", "MYCREW_KV_DIR", "MYCREW_BACKEND", "MYCREW_LOG_LEVEL", "MYCREW_LOG_FORMAT", "MYCREW_WEB_ADDR", "MYCREW_QR_SIZE"} {
		t.Setenv(k, "")
	}
	// Keep a stray .env in the package directory out of the picture
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, DefaultQRSize, cfg.QRSize)
	assert.Equal(t, "crew.db", filepath.Base(cfg.DBPath))
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: badger\nqr_size: 512\nweb_addr: :9000\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendBadger, cfg.Backend)
	assert.Equal(t, 512, cfg.QRSize)
	assert.Equal(t, ":9000", cfg.WebAddr)
	assert.Equal(t, "warn", cfg.LogLevel, "unset keys keep defaults")

	t.Setenv("MYCREW_BACKEND", "SQLITE")
	t.Setenv("MYCREW_QR_SIZE", "300")
	t.Setenv("MYCREW_DB_PATH", "/tmp/other.db")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, 300, cfg.QRSize)
	assert.Equal(t, "/tmp/other.db", cfg.DBPath)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(".env", []byte("MYCREW_LOG_LEVEL=debug\n"), 0600))
	// An empty but present variable counts as set for godotenv
	require.NoError(t, os.Unsetenv("MYCREW_LOG_LEVEL"))

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, os.WriteFile(path, []byte("backend: postgres\n"), 0600))
	_, err := Load(path)
	assert.ErrorContains(t, err, "unknown backend")

	require.NoError(t, os.WriteFile(path, []byte("backend: [\n"), 0600))
	_, err = Load(path)
	assert.ErrorContains(t, err, "failed to parse config")

	require.NoError(t, os.WriteFile(path, []byte("qr_size: 1\n"), 0600))
	t.Setenv("MYCREW_QR_SIZE", "big")
	_, err = Load(path)
	assert.ErrorContains(t, err, "MYCREW_QR_SIZE")
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := Default()
	cfg.Backend = BackendBadger
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
