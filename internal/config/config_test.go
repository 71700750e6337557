package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg := Load()

	assert.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.ListenAddr)
	assert.NotEmpty(t, cfg.DBPath)
	assert.Equal(t, time.Minute, cfg.StatsCacheTTL)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("DB_PATH", "/custom/db.sqlite")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("STATS_CACHE_TTL", "30s")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "/custom/db.sqlite", cfg.DBPath)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 30*time.Second, cfg.StatsCacheTTL)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("REDIS_DB", "three")
	t.Setenv("STATS_CACHE_TTL", "soon")

	cfg := Load()
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, time.Minute, cfg.StatsCacheTTL)
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DB_PATH=/from/dotenv.db\nLISTEN_ADDR=:7000\n"), 0o600))
	t.Setenv("LISTEN_ADDR", ":9000")
	// Registers DB_PATH for restoration after the test; dotenv sets it.
	t.Setenv("DB_PATH", "")
	require.NoError(t, os.Unsetenv("DB_PATH"))

	require.NoError(t, LoadDotEnv(path))
	cfg := Load()
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "/from/dotenv.db", cfg.DBPath)
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}

func TestLoadClientDefaults(t *testing.T) {
	t.Setenv("EMULSION_SERVER", "")
	t.Setenv("EMULSION_TIMEOUT", "")

	cfg, err := LoadClient(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.Server)
	assert.Equal(t, 10*time.Second, cfg.Timeout.Duration)
}

func TestLoadClientFileAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
server = "http://film.local:8080"
timeout = "3s"
refresh_on_failure = true
`), 0o600))
	t.Setenv("EMULSION_SERVER", "")
	t.Setenv("EMULSION_TIMEOUT", "")

	cfg, err := LoadClient(path)
	require.NoError(t, err)
	assert.Equal(t, "http://film.local:8080", cfg.Server)
	assert.Equal(t, 3*time.Second, cfg.Timeout.Duration)
	assert.True(t, cfg.RefreshOnFailure)

	t.Setenv("EMULSION_SERVER", "http://override:1")
	t.Setenv("EMULSION_TIMEOUT", "1m")
	cfg, err = LoadClient(path)
	require.NoError(t, err)
	assert.Equal(t, "http://override:1", cfg.Server)
	assert.Equal(t, time.Minute, cfg.Timeout.Duration)
}

func TestLoadClientRejectsBadTimeout(t *testing.T) {
	t.Setenv("EMULSION_SERVER", "")
	t.Setenv("EMULSION_TIMEOUT", "forever")

	_, err := LoadClient("")
	assert.Error(t, err)
}

func TestWriteClientRoundTrip(t *testing.T) {
	t.Setenv("EMULSION_SERVER", "")
	t.Setenv("EMULSION_TIMEOUT", "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	want := DefaultClientConfig()
	want.Server = "http://written:8080"
	require.NoError(t, WriteClient(path, want))

	got, err := LoadClient(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
