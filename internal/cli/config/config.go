package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	srvconfig "github.com/RamaShankarRay/XGpt/internal/config"
)

// Config stores CLI configuration
type Config struct {
	Server     string `json:"server"`                // backend proxy address
	Email      string `json:"email"`                 // signed-in email
	UserID     string `json:"user_id"`               // signed-in user ID
	StorageDir string `json:"storage_dir,omitempty"` // local fallback store directory
	Database   DB     `json:"database,omitempty"`    // remote store settings
	Model      string `json:"model,omitempty"`       // completion model override
}

// DB configures the remote chat store. An empty driver keeps the CLI in
// local-only mode.
type DB struct {
	Driver   string `json:"driver,omitempty"` // postgres or sqlite
	Host     string `json:"host,omitempty"`
	Port     int    `json:"port,omitempty"`
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
	Database string `json:"database,omitempty"`
}

// GetConfigPath returns the configuration file path (~/.xgpt/config.json)
func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".xgpt", "config.json"), nil
}

// DefaultStorageDir returns the local fallback store directory
// (~/.xgpt/storage) unless the config overrides it.
func (c *Config) DefaultStorageDir() (string, error) {
	if c.StorageDir != "" {
		return c.StorageDir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".xgpt", "storage"), nil
}

// DatabaseConfig converts the CLI database settings into the shared
// database configuration.
func (c *Config) DatabaseConfig() srvconfig.DatabaseConfig {
	return srvconfig.DatabaseConfig{
		Driver:          c.Database.Driver,
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		User:            c.Database.User,
		Password:        c.Database.Password,
		Database:        c.Database.Database,
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// Load loads configuration from file
func Load() (*Config, error) {
	configFile, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	// If config file doesn't exist, return default config
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return &Config{
			Server: "http://localhost:8080",
		}, nil
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Server == "" {
		cfg.Server = "http://localhost:8080"
	}

	return &cfg, nil
}

// Save saves configuration to file
func (c *Config) Save() error {
	configFile, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600, credentials may be present
	if err := os.WriteFile(configFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsSignedIn checks if a user identity is saved
func (c *Config) IsSignedIn() bool {
	return c.UserID != ""
}
