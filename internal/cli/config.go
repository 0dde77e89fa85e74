package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds backend connection settings. Every field has a usable
// default so a config file is only needed to point at non-local backends.
type Config struct {
	// SQLitePath is the relational database file.
	SQLitePath string `yaml:"sqlite_path"`

	// MongoURI is the document store connection string.
	MongoURI string `yaml:"mongo_uri"`

	// MongoDatabase is the document database queries run against.
	MongoDatabase string `yaml:"mongo_database"`

	// BatchSize is the document cursor batch size. Zero means the
	// executor's default.
	BatchSize int32 `yaml:"batch_size,omitempty"`
}

// DefaultConfig returns the local-development defaults.
func DefaultConfig() Config {
	return Config{
		SQLitePath:    "querychat.db",
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "querychat",
	}
}

// LoadConfig reads a YAML config file, filling unset fields from the
// defaults. An empty path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	var loaded Config
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if loaded.SQLitePath != "" {
		cfg.SQLitePath = loaded.SQLitePath
	}
	if loaded.MongoURI != "" {
		cfg.MongoURI = loaded.MongoURI
	}
	if loaded.MongoDatabase != "" {
		cfg.MongoDatabase = loaded.MongoDatabase
	}
	if loaded.BatchSize > 0 {
		cfg.BatchSize = loaded.BatchSize
	}
	return cfg, nil
}
