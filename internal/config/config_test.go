package config

import (
	"os"
	"path/filepath"
	"testing"

	"recoverypilot/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"CONFIG_FILE", "DEFAULT_K", "MAX_ITERATIONS", "OPTIMAL_K_ITERATIONS", "OPTIMAL_K_WORKERS",
	"CLUSTER_SEED", "SILHOUETTE_SAMPLE_SIZE", "STORE_DRIVER", "BOLT_PATH", "DATABASE_URL",
	"CORPUS_FILE", "SYNTHETIC_PATIENTS", "SYNTHETIC_SEED", "PORT", "GIN_MODE",
	"PPROF_PORT", "PPROF_ENABLED", "LOG_LEVEL",
}

// clearEnv blanks every variable Load reads; t.Setenv restores them afterwards
func clearEnv(t *testing.T) {
	for _, key := range configEnv {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	config, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), config)
	assert.Equal(t, 4, config.Clustering.DefaultK)
	assert.Equal(t, StoreMemory, config.Store.Driver)
	assert.Equal(t, 200, config.Corpus.SyntheticPatients)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEFAULT_K", "6")
	t.Setenv("CLUSTER_SEED", "99")
	t.Setenv("STORE_DRIVER", "bolt")
	t.Setenv("BOLT_PATH", "/tmp/state.db")
	t.Setenv("PPROF_ENABLED", "false")
	t.Setenv("MAX_ITERATIONS", "not-a-number")

	config, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6, config.Clustering.DefaultK)
	assert.Equal(t, int64(99), config.Clustering.Seed)
	assert.Equal(t, StoreBolt, config.Store.Driver)
	assert.Equal(t, "/tmp/state.db", config.Store.BoltPath)
	assert.False(t, config.Profiling.Enabled)
	assert.Equal(t, 100, config.Clustering.MaxIterations, "unparsable values keep the default")
}

func TestLoad_YAMLFileUnderEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
clustering:
  default_k: 3
  silhouette_sample_size: 250
store:
  driver: postgres
  database_url: postgres://localhost/recovery
server:
  port: "9000"
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9100")

	config, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, config.Clustering.DefaultK)
	assert.Equal(t, 250, config.Clustering.SilhouetteSampleSize)
	assert.Equal(t, 100, config.Clustering.MaxIterations)
	assert.Equal(t, StorePostgres, config.Store.Driver)
	assert.Equal(t, "9100", config.Server.Port)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"zero k", map[string]string{"DEFAULT_K": "0"}},
		{"unknown driver", map[string]string{"STORE_DRIVER": "redis"}},
		{"postgres without url", map[string]string{"STORE_DRIVER": "postgres"}},
		{"no synthetic patients", map[string]string{"SYNTHETIC_PATIENTS": "0"}},
		{"port clash", map[string]string{"PORT": "6060"}},
		{"missing file", map[string]string{"CONFIG_FILE": "/nonexistent/config.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
