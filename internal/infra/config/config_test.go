package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "STORE_MODE", "CATALOG_MODE", "CATALOG_TIMEOUT", "RETRY_BACKOFF", "KAFKA_BROKERS", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ModeMemory, cfg.StoreMode)
	assert.Equal(t, ModeMemory, cfg.CatalogMode)
	assert.Equal(t, 5*time.Second, cfg.CatalogTimeout)
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORE_MODE", "Mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("CATALOG_MODE", "http")
	t.Setenv("CATALOG_URL", "http://catalog:9000/")
	t.Setenv("CATALOG_TIMEOUT", "2s")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("RETRY_BACKOFF", "100ms,,1s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ModeMongo, cfg.StoreMode)
	assert.Equal(t, "http://catalog:9000", cfg.CatalogURL)
	assert.Equal(t, 2*time.Second, cfg.CatalogTimeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, time.Second}, cfg.RetryBackoff)
	assert.True(t, cfg.KafkaEnabled())
}

func TestLoadRejectsInconsistentModes(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "mongo without uri", env: map[string]string{"STORE_MODE": "mongo"}},
		{name: "http catalog without url", env: map[string]string{"CATALOG_MODE": "http"}},
		{name: "unknown store", env: map[string]string{"STORE_MODE": "sqlite"}},
		{name: "bad duration", env: map[string]string{"IDEMP_TTL": "forever"}},
		{name: "bad backoff", env: map[string]string{"RETRY_BACKOFF": "1s,soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TOURBOOK_DOTENV_LOADED=from-file\nTOURBOOK_DOTENV_KEPT=from-file\n"), 0o600))
	t.Setenv("TOURBOOK_DOTENV_KEPT", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("TOURBOOK_DOTENV_LOADED") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("TOURBOOK_DOTENV_LOADED"))
	assert.Equal(t, "from-env", os.Getenv("TOURBOOK_DOTENV_KEPT"))
}
