// Package config loads Crop Vision client configuration from YAML with
// environment overrides. The catalog of valid districts, crops, and seasons
// ships with defaults and can be replaced per deployment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all cropvision configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Prediction service
	Service ServiceConfig `yaml:"service"`

	// Valid form values
	Catalog CatalogConfig `yaml:"catalog"`

	// Local state
	Storage StorageConfig `yaml:"storage"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ServiceConfig configures the remote prediction service.
type ServiceConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// CatalogConfig enumerates the accepted form values.
type CatalogConfig struct {
	Districts []string `yaml:"districts"`
	Crops     []string `yaml:"crops"`
	Seasons   []string `yaml:"seasons"`
}

// StorageConfig configures local persisted state.
type StorageConfig struct {
	// SQLite database holding the credential record and active session
	DatabasePath string `yaml:"database_path"`

	// Directory downloaded reports are saved into
	ReportsDir string `yaml:"reports_dir"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DefaultConfig returns the default configuration.
// The district and crop catalogs are the Odisha deployment defaults.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".cropvision")

	return &Config{
		Name:    "cropvision",
		Version: "1.0.0",
		Service: ServiceConfig{
			BaseURL: "http://localhost:8000",
			Timeout: "30s",
		},
		Catalog: CatalogConfig{
			Districts: []string{
				"Angul", "Balangir", "Balasore", "Bargarh", "Bhadrak",
				"Boudh", "Cuttack", "Deogarh", "Dhenkanal", "Gajapati",
				"Ganjam", "Jagatsinghpur", "Jajpur", "Jharsuguda",
				"Kalahandi", "Kandhamal", "Kendrapara", "Kendujhar",
				"Khordha", "Koraput", "Malkangiri", "Mayurbhanj",
				"Nabarangpur", "Nayagarh", "Nuapada", "Puri", "Rayagada",
				"Sambalpur", "Subarnapur", "Sundargarh",
			},
			Crops:   []string{"Paddy", "Wheat", "Maize", "Pulses", "Oilseeds"},
			Seasons: []string{"Kharif", "Rabi", "Summer"},
		},
		Storage: StorageConfig{
			DatabasePath: filepath.Join(dataDir, "cropvision.db"),
			ReportsDir:   filepath.Join(dataDir, "reports"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cropvision", "config.yaml")
}

// Load reads configuration from the given path, falling back to defaults
// when the file does not exist. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides lets CROPVISION_* variables win over file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CROPVISION_BASE_URL"); v != "" {
		cfg.Service.BaseURL = v
	}
	if v := os.Getenv("CROPVISION_TIMEOUT"); v != "" {
		cfg.Service.Timeout = v
	}
	if v := os.Getenv("CROPVISION_DB_PATH"); v != "" {
		cfg.Storage.DatabasePath = v
	}
	if v := os.Getenv("CROPVISION_REPORTS_DIR"); v != "" {
		cfg.Storage.ReportsDir = v
	}
	if v := os.Getenv("CROPVISION_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for basic sanity.
func (c *Config) Validate() error {
	if c.Service.BaseURL == "" {
		return fmt.Errorf("service.base_url is required")
	}
	if _, err := time.ParseDuration(c.Service.Timeout); err != nil {
		return fmt.Errorf("invalid service.timeout %q: %w", c.Service.Timeout, err)
	}
	if len(c.Catalog.Districts) == 0 {
		return fmt.Errorf("catalog.districts must not be empty")
	}
	if len(c.Catalog.Crops) == 0 {
		return fmt.Errorf("catalog.crops must not be empty")
	}
	if len(c.Catalog.Seasons) == 0 {
		return fmt.Errorf("catalog.seasons must not be empty")
	}
	if c.Storage.DatabasePath == "" {
		return fmt.Errorf("storage.database_path is required")
	}
	return nil
}

// ServiceTimeout returns the parsed per-call timeout.
func (c *Config) ServiceTimeout() time.Duration {
	d, err := time.ParseDuration(c.Service.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// Save writes the configuration to the given path as YAML.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
