// Package config loads the propex YAML configuration.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Backend Backend `yaml:"backend"`
	Output  Output  `yaml:"output"`
	Fetch   Fetch   `yaml:"fetch"`
	Logging Logging `yaml:"logging"`
}

// Backend configures the chat-completions endpoint used for analysis.
type Backend struct {
	URL            string  `yaml:"url"`
	Model          string  `yaml:"model"`
	APIKeyEnv      string  `yaml:"api_key_env"`
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

type Output struct {
	DataFile string `yaml:"data_file"`
}

// Fetch configures article retrieval for URL and feed submissions.
type Fetch struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
	MaxFeedItems   int `yaml:"max_feed_items"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for propex.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "propex")
}

// DataDir returns the XDG data directory for propex.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "propex")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/propex/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	// No file anywhere: run on defaults. The tool should work against a
	// local LM Studio without any setup.
	return "", nil
}

// Load reads and parses a config YAML file. An empty path yields the
// built-in defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Backend: Backend{
			URL:            "http://localhost:1234/v1/chat/completions",
			Model:          "local-model",
			APIKeyEnv:      "PROPEX_API_KEY",
			Temperature:    0.1,
			MaxTokens:      2500,
			TimeoutSeconds: 60,
		},
		Fetch: Fetch{
			TimeoutSeconds: 15,
			MaxFeedItems:   20,
		},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataFile returns the effective collection path from config or the XDG
// default.
func (c *Config) GetDataFile() string {
	if c.Output.DataFile != "" {
		return c.Output.DataFile
	}
	return filepath.Join(DataDir(), "propaganda_patterns.json")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
