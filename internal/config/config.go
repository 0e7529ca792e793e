// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/chatbox/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete chatbox configuration.
type Config struct {
	// Cloud is the chat-completion provider configuration
	Cloud CloudConfig `toml:"cloud" json:"cloud"`

	// Storage selects where threads are persisted
	Storage StorageConfig `toml:"storage" json:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Log configuration
	Log LogConfig `toml:"log" json:"log"`
}

// CloudConfig contains completion provider configuration.
type CloudConfig struct {
	// APIKey is the provider API key, sent as a Bearer token
	APIKey string `toml:"api_key" json:"api_key"`
	// BaseURL is the OpenAI-compatible API root; requests go to {BaseURL}/chat/completions
	BaseURL string `toml:"base_url" json:"base_url"`
	// Model is the model name sent with every request
	Model string `toml:"model" json:"model"`
	// Temperature is the sampling temperature (0.0-2.0)
	Temperature float64 `toml:"temperature" json:"temperature"`
	// RequestsPerMinute limits outbound requests (0 = unlimited)
	RequestsPerMinute int `toml:"requests_per_minute" json:"requests_per_minute"`
}

// StorageConfig contains thread persistence configuration.
type StorageConfig struct {
	// Backend is one of "file", "sqlite", "memory"
	Backend string `toml:"backend" json:"backend"`
	// Dir is the directory holding the file or sqlite data
	Dir string `toml:"dir" json:"dir"`
	// MaxMessages caps the number of messages kept per thread
	MaxMessages int `toml:"max_messages" json:"max_messages"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the initial theme: "light", "dark", "auto".
	// A persisted dark-mode toggle takes precedence once set.
	Theme string `toml:"theme" json:"theme"`
	// SidebarOpen controls whether the sidebar starts expanded
	SidebarOpen bool `toml:"sidebar_open" json:"sidebar_open"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Path is the log file; the terminal belongs to the TUI so logs never go to stderr
	Path string `toml:"path" json:"path"`
	// Level is one of "debug", "info", "warn", "error"
	Level string `toml:"level" json:"level"`
}

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Themes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
	ThemeAuto  = "auto"
)

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Cloud: CloudConfig{
			APIKey:            "",
			BaseURL:           "https://api.openai.com/v1",
			Model:             "gpt-3.5-turbo",
			Temperature:       0.7,
			RequestsPerMinute: 0, // unlimited
		},

		Storage: StorageConfig{
			Backend:     BackendFile,
			Dir:         "~/.chatbox/data",
			MaxMessages: 100,
		},

		UI: UIConfig{
			Theme:       ThemeLight,
			SidebarOpen: true,
		},

		Log: LogConfig{
			Path:  "~/.chatbox/chatbox.log",
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the chatbox configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".chatbox"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DataDir returns the storage directory with "~" expanded.
func (c *Config) DataDir() (string, error) {
	return util.ExpandHome(c.Storage.Dir)
}

// LogPath returns the log file path with "~" expanded.
func (c *Config) LogPath() (string, error) {
	return util.ExpandHome(c.Log.Path)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: the file may hold an API key, so it stays 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}

	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from path, or from ~/.chatbox/config.toml when
// path is empty. A missing file yields the defaults. Environment overrides
// are applied last, then the result is validated.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPathTOML()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	if _, statErr := os.Stat(path); statErr == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	} else if !errors.Is(statErr, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, statErr)
	}

	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file on top of cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// permissions might not be fixable on all systems
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Cloud.BaseURL == "" {
		cfg.Cloud.BaseURL = defaults.Cloud.BaseURL
	}
	cfg.Cloud.BaseURL = strings.TrimRight(cfg.Cloud.BaseURL, "/")
	if cfg.Cloud.Model == "" {
		cfg.Cloud.Model = defaults.Cloud.Model
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = defaults.Storage.Backend
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = defaults.Storage.Dir
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.Log.Path == "" {
		cfg.Log.Path = defaults.Log.Path
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}

	cfg.Storage.Backend = strings.ToLower(cfg.Storage.Backend)
	cfg.UI.Theme = strings.ToLower(cfg.UI.Theme)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to path, or to the default TOML file when
// path is empty.
// SECURITY: written 0600 since the file may hold the API key.
// RELIABILITY: atomic write with fsync prevents data loss on crash
func Save(cfg *Config, path string) error {
	if path == "" {
		p, err := ConfigPathTOML()
		if err != nil {
			return err
		}
		path = p
	}

	var buf bytes.Buffer
	buf.WriteString("# chatbox configuration file\n")
	buf.WriteString("# Generated by chatbox - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// ==========================================================================
	// Cloud
	// ==========================================================================

	if u, err := url.Parse(c.Cloud.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "cloud.base_url",
			Message: fmt.Sprintf("invalid URL '%s', must be an absolute http(s) URL", c.Cloud.BaseURL),
		})
	}

	if c.Cloud.Temperature < 0 || c.Cloud.Temperature > 2 {
		errs = append(errs, ValidationError{
			Field:   "cloud.temperature",
			Message: fmt.Sprintf("temperature %.2f out of range, must be between 0.0 and 2.0", c.Cloud.Temperature),
		})
	}

	if c.Cloud.RequestsPerMinute < 0 {
		errs = append(errs, ValidationError{
			Field:   "cloud.requests_per_minute",
			Message: "cannot be negative",
		})
	}

	// ==========================================================================
	// Storage
	// ==========================================================================

	validBackends := map[string]bool{BackendFile: true, BackendSQLite: true, BackendMemory: true}
	if !validBackends[c.Storage.Backend] {
		errs = append(errs, ValidationError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("invalid backend '%s', must be one of: file, sqlite, memory", c.Storage.Backend),
		})
	}

	if c.Storage.MaxMessages < 1 {
		errs = append(errs, ValidationError{
			Field:   "storage.max_messages",
			Message: fmt.Sprintf("must be at least 1, got %d", c.Storage.MaxMessages),
		})
	}

	// ==========================================================================
	// UI and logging
	// ==========================================================================

	validThemes := map[string]bool{ThemeLight: true, ThemeDark: true, ThemeAuto: true}
	if !validThemes[c.UI.Theme] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: light, dark, auto", c.UI.Theme),
		})
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - CHATBOX_API_KEY: overrides cloud.api_key
//   - OPENAI_API_KEY: used for cloud.api_key when no other key is set
//   - CHATBOX_BASE_URL: overrides cloud.base_url
//   - CHATBOX_MODEL: overrides cloud.model
//   - CHATBOX_DATA_DIR: overrides storage.dir
//   - CHATBOX_BACKEND: overrides storage.backend
//   - CHATBOX_THEME: overrides ui.theme
//   - CHATBOX_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if key := os.Getenv("CHATBOX_API_KEY"); key != "" {
		c.Cloud.APIKey = key
	}
	if c.Cloud.APIKey == "" {
		c.Cloud.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if baseURL := os.Getenv("CHATBOX_BASE_URL"); baseURL != "" {
		c.Cloud.BaseURL = baseURL
	}

	if model := os.Getenv("CHATBOX_MODEL"); model != "" {
		c.Cloud.Model = model
	}

	if dir := os.Getenv("CHATBOX_DATA_DIR"); dir != "" {
		c.Storage.Dir = dir
	}

	if backend := os.Getenv("CHATBOX_BACKEND"); backend != "" {
		c.Storage.Backend = backend
	}

	if theme := os.Getenv("CHATBOX_THEME"); theme != "" {
		c.UI.Theme = theme
	}

	if level := os.Getenv("CHATBOX_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "cloud.model").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "storage.max_messages").
// String values are converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("field '%s' is a section, not a value", key)
			}
			return field, nil
		}

		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}

	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}

	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"cloud.api_key",
		"cloud.base_url",
		"cloud.model",
		"cloud.temperature",
		"cloud.requests_per_minute",
		"storage.backend",
		"storage.dir",
		"storage.max_messages",
		"ui.theme",
		"ui.sidebar_open",
		"log.path",
		"log.level",
	}
}

// String returns a string representation of the config for display.
// SECURITY: the API key is redacted.
func (c *Config) String() string {
	safe := *c
	if safe.Cloud.APIKey != "" {
		safe.Cloud.APIKey = "[REDACTED]"
	}

	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}
