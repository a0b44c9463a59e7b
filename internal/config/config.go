package config

import (
	"fmt"
	"os"
	"strconv"

	"recoverypilot/internal/errors"

	"gopkg.in/yaml.v3"
)

// Store drivers
const (
	StoreMemory   = "memory"
	StoreBolt     = "bolt"
	StorePostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	Clustering ClusteringConfig `yaml:"clustering"`
	Store      StoreConfig      `yaml:"store"`
	Corpus     CorpusConfig     `yaml:"corpus"`
	Server     ServerConfig     `yaml:"server"`
	Profiling  ProfilingConfig  `yaml:"profiling"`
	LogLevel   string           `yaml:"log_level"`
}

// ClusteringConfig holds K-means parameters
type ClusteringConfig struct {
	DefaultK             int   `yaml:"default_k"`
	MaxIterations        int   `yaml:"max_iterations"`
	OptimalKIterations   int   `yaml:"optimal_k_iterations"`
	OptimalKWorkers      int   `yaml:"optimal_k_workers"`
	Seed                 int64 `yaml:"seed"`
	SilhouetteSampleSize int   `yaml:"silhouette_sample_size"`
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	Driver      string `yaml:"driver"`
	BoltPath    string `yaml:"bolt_path"`
	DatabaseURL string `yaml:"database_url"`
}

// CorpusConfig selects the training corpus. An empty File means the
// synthetic generator.
type CorpusConfig struct {
	File              string `yaml:"file"`
	SyntheticPatients int    `yaml:"synthetic_patients"`
	SyntheticSeed     int64  `yaml:"synthetic_seed"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
}

// ProfilingConfig holds the ops listener settings
type ProfilingConfig struct {
	Port    string `yaml:"port"`
	Enabled bool   `yaml:"enabled"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Clustering: ClusteringConfig{
			DefaultK:             4,
			MaxIterations:        100,
			OptimalKIterations:   50,
			OptimalKWorkers:      4,
			Seed:                 42,
			SilhouetteSampleSize: 500,
		},
		Store: StoreConfig{
			Driver:   StoreMemory,
			BoltPath: "recoverypilot.db",
		},
		Corpus: CorpusConfig{
			SyntheticPatients: 200,
			SyntheticSeed:     7,
		},
		Server: ServerConfig{
			Port:    "8080",
			GinMode: "debug",
		},
		Profiling: ProfilingConfig{
			Port:    "6060",
			Enabled: true,
		},
		LogLevel: "INFO",
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by CONFIG_FILE, then environment variables, and validates the result.
func Load() (*Config, error) {
	config := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, config); err != nil {
			return nil, err
		}
	}

	applyEnv(config)

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("failed to read config file %s: %w", path, err))
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("failed to parse config file %s: %w", path, err))
	}
	return nil
}

func applyEnv(config *Config) {
	c := &config.Clustering
	c.DefaultK = getEnvIntOrDefault("DEFAULT_K", c.DefaultK)
	c.MaxIterations = getEnvIntOrDefault("MAX_ITERATIONS", c.MaxIterations)
	c.OptimalKIterations = getEnvIntOrDefault("OPTIMAL_K_ITERATIONS", c.OptimalKIterations)
	c.OptimalKWorkers = getEnvIntOrDefault("OPTIMAL_K_WORKERS", c.OptimalKWorkers)
	c.Seed = getEnvInt64OrDefault("CLUSTER_SEED", c.Seed)
	c.SilhouetteSampleSize = getEnvIntOrDefault("SILHOUETTE_SAMPLE_SIZE", c.SilhouetteSampleSize)

	s := &config.Store
	s.Driver = getEnvOrDefault("STORE_DRIVER", s.Driver)
	s.BoltPath = getEnvOrDefault("BOLT_PATH", s.BoltPath)
	s.DatabaseURL = getEnvOrDefault("DATABASE_URL", s.DatabaseURL)

	corpus := &config.Corpus
	corpus.File = getEnvOrDefault("CORPUS_FILE", corpus.File)
	corpus.SyntheticPatients = getEnvIntOrDefault("SYNTHETIC_PATIENTS", corpus.SyntheticPatients)
	corpus.SyntheticSeed = getEnvInt64OrDefault("SYNTHETIC_SEED", corpus.SyntheticSeed)

	config.Server.Port = getEnvOrDefault("PORT", config.Server.Port)
	config.Server.GinMode = getEnvOrDefault("GIN_MODE", config.Server.GinMode)

	config.Profiling.Port = getEnvOrDefault("PPROF_PORT", config.Profiling.Port)
	config.Profiling.Enabled = getEnvBoolOrDefault("PPROF_ENABLED", config.Profiling.Enabled)

	config.LogLevel = getEnvOrDefault("LOG_LEVEL", config.LogLevel)
}

func validateConfig(config *Config) error {
	c := config.Clustering
	if c.DefaultK < 1 {
		return errors.ConfigInvalid("DEFAULT_K must be at least 1")
	}
	if c.MaxIterations < 1 || c.OptimalKIterations < 1 {
		return errors.ConfigInvalid("iteration limits must be at least 1")
	}
	if c.OptimalKWorkers < 1 {
		return errors.ConfigInvalid("OPTIMAL_K_WORKERS must be at least 1")
	}
	if c.SilhouetteSampleSize < 1 {
		return errors.ConfigInvalid("SILHOUETTE_SAMPLE_SIZE must be at least 1")
	}

	switch config.Store.Driver {
	case StoreMemory:
	case StoreBolt:
		if config.Store.BoltPath == "" {
			return errors.ConfigInvalid("BOLT_PATH is required for the bolt store")
		}
	case StorePostgres:
		if config.Store.DatabaseURL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required for the postgres store")
		}
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown STORE_DRIVER %q", config.Store.Driver))
	}

	if config.Corpus.File == "" && config.Corpus.SyntheticPatients < 1 {
		return errors.ConfigInvalid("SYNTHETIC_PATIENTS must be at least 1 without CORPUS_FILE")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Profiling.Enabled && config.Profiling.Port == config.Server.Port {
		return errors.ConfigInvalid("PPROF_PORT must differ from PORT")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
