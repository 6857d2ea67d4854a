// Where: internal/config/config.go
// What: Per-user defaults file load/save helpers.
// Why: Manage ~/.fvtt-publish/config.yaml consistently; flags always win over it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the defaults file location when set.
const EnvConfigPath = "FVTT_PUBLISH_CONFIG"

// Config holds per-user defaults. It never stores secrets.
type Config struct {
	Username  string `yaml:"username,omitempty"`
	PackageID string `yaml:"package_id,omitempty"`
	PortalURL string `yaml:"portal_url,omitempty"`

	// Artifact hosting defaults for the upload command.
	Bucket        string `yaml:"bucket,omitempty"`
	Region        string `yaml:"region,omitempty"`
	Endpoint      string `yaml:"endpoint,omitempty"`
	PublicBaseURL string `yaml:"public_base_url,omitempty"`
}

// Path returns the defaults file location, honoring the
// FVTT_PUBLISH_CONFIG override.
func Path() (string, error) {
	if override := strings.TrimSpace(os.Getenv(EnvConfigPath)); override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".fvtt-publish", "config.yaml"), nil
}

// Load reads the defaults file. A missing file yields an empty Config.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the defaults file, creating its directory when needed.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Set assigns a value to a named key. Keys mirror the YAML field names.
func (c *Config) Set(key, value string) error {
	switch key {
	case "username":
		c.Username = value
	case "package_id":
		c.PackageID = value
	case "portal_url":
		c.PortalURL = value
	case "bucket":
		c.Bucket = value
	case "region":
		c.Region = value
	case "endpoint":
		c.Endpoint = value
	case "public_base_url":
		c.PublicBaseURL = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// Keys lists the settable config keys in display order.
func Keys() []string {
	return []string{"username", "package_id", "portal_url", "bucket", "region", "endpoint", "public_base_url"}
}

// Get returns the value for a named key.
func (c Config) Get(key string) (string, error) {
	switch key {
	case "username":
		return c.Username, nil
	case "package_id":
		return c.PackageID, nil
	case "portal_url":
		return c.PortalURL, nil
	case "bucket":
		return c.Bucket, nil
	case "region":
		return c.Region, nil
	case "endpoint":
		return c.Endpoint, nil
	case "public_base_url":
		return c.PublicBaseURL, nil
	}
	return "", fmt.Errorf("unknown config key %q", key)
}
