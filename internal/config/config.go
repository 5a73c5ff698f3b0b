// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for skiff.
//
// Configuration is TOML with sensible defaults, environment variable
// overrides, and validation. The API credential is deliberately NOT part of
// the config file; it lives in the keystore.
//
// Configuration file location:
//   - ~/.skiff/config.toml
//   - Built-in defaults
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/skiff-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete skiff configuration.
type Config struct {
	Version string `toml:"version"`

	// API endpoint configuration
	API APIConfig `toml:"api"`

	// Chat behavior configuration
	Chat ChatConfig `toml:"chat"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// Conversation storage configuration
	Storage StorageConfig `toml:"storage"`
}

// APIConfig contains the chat-completion endpoint configuration.
type APIConfig struct {
	// BaseURL is the API base URL (OpenAI-compatible).
	BaseURL string `toml:"base_url"`
	// Model is the model identifier sent with every request.
	Model string `toml:"model"`
	// TimeoutSecs is the per-request timeout in seconds.
	TimeoutSecs int `toml:"timeout_secs"`
}

// ChatConfig contains chat behavior configuration.
type ChatConfig struct {
	// Greeting is the assistant message a fresh conversation opens with.
	// Empty disables the greeting.
	Greeting string `toml:"greeting"`
	// ErrorLimit bounds the length of error text shown for a failed turn,
	// in characters.
	ErrorLimit int `toml:"error_limit"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// Markdown enables rendered markdown for assistant replies.
	Markdown bool `toml:"markdown"`
	// CompactMode uses a more compact UI layout.
	CompactMode bool `toml:"compact_mode"`
	// SyntaxTheme is the chroma style used for code blocks.
	SyntaxTheme string `toml:"syntax_theme"`
}

// StorageConfig contains conversation storage configuration.
type StorageConfig struct {
	// SaveConversations enables saving transcripts to disk.
	SaveConversations bool `toml:"save_conversations"`
	// Dir overrides the conversation directory (default ~/.skiff/conversations).
	Dir string `toml:"dir"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		API: APIConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			TimeoutSecs: 60,
		},

		Chat: ChatConfig{
			Greeting:   "Hi! How can I help you today?",
			ErrorLimit: 200,
		},

		UI: UIConfig{
			Theme:       "dark",
			Markdown:    true,
			CompactMode: false,
			SyntaxTheme: "monokai",
		},

		Storage: StorageConfig{
			SaveConversations: true,
		},
	}
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSecs) * time.Second
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the skiff configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".skiff"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ensureSecurePermissions checks and fixes permissions on the config file.
// SECURITY: Config files should be 0600 (owner read/write only).
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default config file, falling back to
// defaults when no file exists. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); statErr != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file with
// defaults, environment overrides, and validation applied.
func LoadFromPath(path string) (*Config, error) {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode TOML file: %w", err)
	}

	fillDefaults(cfg)
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = defaults.API.BaseURL
	}
	if cfg.API.Model == "" {
		cfg.API.Model = defaults.API.Model
	}
	if cfg.API.TimeoutSecs == 0 {
		cfg.API.TimeoutSecs = defaults.API.TimeoutSecs
	}
	if cfg.Chat.ErrorLimit == 0 {
		cfg.Chat.ErrorLimit = defaults.Chat.ErrorLimit
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.UI.SyntaxTheme == "" {
		cfg.UI.SyntaxTheme = defaults.UI.SyntaxTheme
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFilePrivate(path, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//   - SKIFF_BASE_URL: overrides api.base_url
//   - SKIFF_MODEL: overrides api.model
//   - SKIFF_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if baseURL := os.Getenv("SKIFF_BASE_URL"); baseURL != "" {
		c.API.BaseURL = baseURL
	}
	if model := os.Getenv("SKIFF_MODEL"); model != "" {
		c.API.Model = model
	}
	if theme := os.Getenv("SKIFF_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}

// EnvAPIKey returns the API credential from the environment, if set.
// The credential is never read from or written to the config file.
func EnvAPIKey() string {
	return os.Getenv("SKIFF_API_KEY")
}

// =============================================================================
// VALIDATION
// =============================================================================

var validThemes = map[string]bool{
	"dark":  true,
	"light": true,
	"auto":  true,
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("api.base_url %q is not a valid http(s) URL", c.API.BaseURL)
	}
	if c.API.Model == "" {
		return errors.New("api.model must not be empty")
	}
	if c.API.TimeoutSecs <= 0 {
		return fmt.Errorf("api.timeout_secs must be positive, got %d", c.API.TimeoutSecs)
	}
	if c.Chat.ErrorLimit <= 0 {
		return fmt.Errorf("chat.error_limit must be positive, got %d", c.Chat.ErrorLimit)
	}
	if !validThemes[c.UI.Theme] {
		return fmt.Errorf("ui.theme %q is not one of dark, light, auto", c.UI.Theme)
	}
	return nil
}
