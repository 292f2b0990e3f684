package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Editor        string `yaml:"editor"`
	DefaultAction string `yaml:"default_action"`
	DefaultSort   string `yaml:"default_sort"`
	ReverseSort   bool   `yaml:"reverse_sort"`
	ImportWorkers int    `yaml:"import_workers"`

	// Autosave
	DebounceMS int `yaml:"debounce_ms"`

	// Remote
	AuthURLEndpoint       string `yaml:"auth_url_endpoint"`
	SessionsEndpoint      string `yaml:"sessions_endpoint"`
	DriveFolderID         string `yaml:"drive_folder_id"`
	RetryAttempts         int    `yaml:"retry_attempts"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
	Browser               string `yaml:"browser"`

	// UI Settings
	DisplayDateFormat  string `yaml:"display_date_format"`
	ColorTheme         string `yaml:"color_theme"`
	SyntaxHighlighting bool   `yaml:"syntax_highlighting"`
	HighlightStyle     string `yaml:"highlight_style"`

	// Logging
	LogLevel       string `yaml:"log_level"`
	LogDevelopment bool   `yaml:"log_development"`
}

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		Editor:                "",
		DefaultAction:         "show",
		DefaultSort:           "date",
		ReverseSort:           false,
		ImportWorkers:         4,
		DebounceMS:            300,
		AuthURLEndpoint:       "",
		SessionsEndpoint:      "",
		DriveFolderID:         "",
		RetryAttempts:         3,
		RequestTimeoutSeconds: 15,
		Browser:               "",
		DisplayDateFormat:     "2006-01-02 15:04",
		ColorTheme:            "auto",
		SyntaxHighlighting:    true,
		HighlightStyle:        "monokai",
		LogLevel:              "info",
		LogDevelopment:        false,
	}
}

// Load reads configuration from the specified file path
func Load(path string) (*Config, error) {
	// Start with default config
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, return default config (not an error)
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply defaults for essential values if missing
	if cfg.DefaultSort == "" {
		cfg.DefaultSort = "date"
	}
	if cfg.DebounceMS <= 0 {
		cfg.DebounceMS = 300
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		cfg.RequestTimeoutSeconds = 15
	}
	if cfg.ImportWorkers <= 0 {
		cfg.ImportWorkers = 4
	}
	if cfg.DisplayDateFormat == "" {
		cfg.DisplayDateFormat = "2006-01-02 15:04"
	}
	if cfg.HighlightStyle == "" {
		cfg.HighlightStyle = "monokai"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if !isValidDefaultAction(cfg.DefaultAction) {
		cfg.DefaultAction = "show"
	}

	return cfg, nil
}

// Save persists the current configuration to the specified file path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DebounceWait is the autosave quiet period
func (c *Config) DebounceWait() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// RequestTimeout bounds a single remote request
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// RemoteConfigured reports whether the remote endpoints are set
func (c *Config) RemoteConfigured() bool {
	return c.AuthURLEndpoint != "" || c.SessionsEndpoint != ""
}

// isValidDefaultAction checks if the default action is valid
func isValidDefaultAction(action string) bool {
	return slices.Contains([]string{"show", "open", "edit", "list"}, action)
}
