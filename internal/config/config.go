package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the methodmap configuration.
type Config struct {
	Search  SearchConfig  `yaml:"search"`
	Model   ModelConfig   `yaml:"model"`
	PDF     PDFConfig     `yaml:"pdf"`
	Runs    RunsConfig    `yaml:"runs"`
	Logging LoggingConfig `yaml:"logging"`
	Privacy PrivacyConfig `yaml:"privacy"`
}

// SearchConfig holds paper-search settings.
type SearchConfig struct {
	BaseURL     string `yaml:"base_url"`     // Search API root
	Limit       int    `yaml:"limit"`        // Abstracts fetched per goal
	TimeoutSecs int    `yaml:"timeout_secs"` // Per-request timeout
	APIKey      string `yaml:"api_key"`      // Optional x-api-key
}

// ModelConfig holds language-model settings.
type ModelConfig struct {
	Provider     string  `yaml:"provider"`       // auto, process, inference, ollama-api
	Command      string  `yaml:"command"`        // Local process command line
	TimeoutSecs  int     `yaml:"timeout_secs"`   // Per-call timeout
	Endpoint     string  `yaml:"endpoint"`       // Remote inference URL
	Token        string  `yaml:"token"`          // Bearer token for the remote endpoint
	Temperature  float64 `yaml:"temperature"`    // Sampling temperature
	MaxNewTokens int     `yaml:"max_new_tokens"` // Generation budget
	OllamaURL    string  `yaml:"ollama_url"`     // Ollama server for ollama-api
	OllamaModel  string  `yaml:"ollama_model"`   // Model name for ollama-api
}

// PDFConfig bounds text pulled from uploaded documents.
type PDFConfig struct {
	MinChars int `yaml:"min_chars"`
	MaxChars int `yaml:"max_chars"`
}

// RunsConfig selects where saved runs live.
type RunsConfig struct {
	Backend string `yaml:"backend"` // file or sqlite
	Dir     string `yaml:"dir"`     // Run directory (empty = <data>/runs)
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`        // debug, info, warn, error
	File       string `yaml:"file"`         // Log file (empty = default, "-" = stderr)
	MaxSizeMB  int    `yaml:"max_size_mb"`  // Rotate after this size
	MaxBackups int    `yaml:"max_backups"`  // Rotated files kept
	MaxAgeDays int    `yaml:"max_age_days"` // Rotated files max age
	Compress   bool   `yaml:"compress"`     // Gzip rotated files
}

// PrivacyConfig holds privacy-related settings.
type PrivacyConfig struct {
	SanitizeAICalls bool `yaml:"sanitize_ai_calls"` // Redact secrets before model calls
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			BaseURL:     "https://api.semanticscholar.org/graph/v1",
			Limit:       5,
			TimeoutSecs: 30,
		},
		Model: ModelConfig{
			Provider:     "auto",
			Command:      "ollama run llama3",
			TimeoutSecs:  120,
			Endpoint:     "https://api-inference.huggingface.co/models/mistralai/Mistral-7B-Instruct-v0.2",
			Temperature:  0.2,
			MaxNewTokens: 1024,
			OllamaURL:    "http://localhost:11434",
			OllamaModel:  "llama3",
		},
		PDF: PDFConfig{
			MinChars: 100,
			MaxChars: 3500,
		},
		Runs: RunsConfig{
			Backend: "file",
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Privacy: PrivacyConfig{
			SanitizeAICalls: true,
		},
	}
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	paths := DefaultPaths()
	return LoadFromFile(paths.ConfigFile())
}

// LoadFromFile loads configuration from the specified file.
// If the file doesn't exist, returns default configuration.
// Environment variable overrides are applied after file loading.
func LoadFromFile(path string) (*Config, error) {
	cfg, err := LoadFileOnly(path)
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadFileOnly reads path over the defaults without environment overrides
// or validation. It is the base for editing and re-saving the file, so that
// values coming from the environment are never written back.
func LoadFileOnly(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	paths := DefaultPaths()
	return c.SaveToFile(paths.ConfigFile())
}

// SaveToFile saves the configuration to the specified file.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold a bearer token.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// RunsDir returns the configured run directory or the default under p.
func (c *Config) RunsDir(p *Paths) string {
	if c.Runs.Dir != "" {
		return c.Runs.Dir
	}
	return p.RunsDir()
}

// LogFile returns the configured log file or the default under p.
func (c *Config) LogFile(p *Paths) string {
	if c.Logging.File != "" {
		return c.Logging.File
	}
	return p.LogFile()
}

// Get retrieves a configuration value by dot-separated key.
// For example: "model.provider" or "pdf.max_chars"
func (c *Config) Get(key string) (string, error) {
	section, field, err := splitKey(key)
	if err != nil {
		return "", err
	}

	switch section {
	case "search":
		return c.getSearchField(field)
	case "model":
		return c.getModelField(field)
	case "pdf":
		return c.getPDFField(field)
	case "runs":
		return c.getRunsField(field)
	case "logging":
		return c.getLoggingField(field)
	case "privacy":
		return c.getPrivacyField(field)
	default:
		return "", fmt.Errorf("unknown section: %s", section)
	}
}

// Set sets a configuration value by dot-separated key.
func (c *Config) Set(key, value string) error {
	section, field, err := splitKey(key)
	if err != nil {
		return err
	}

	switch section {
	case "search":
		return c.setSearchField(field, value)
	case "model":
		return c.setModelField(field, value)
	case "pdf":
		return c.setPDFField(field, value)
	case "runs":
		return c.setRunsField(field, value)
	case "logging":
		return c.setLoggingField(field, value)
	case "privacy":
		return c.setPrivacyField(field, value)
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
}

func splitKey(key string) (string, string, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return "", "", errors.New("key must be in format 'section.key'")
	}
	return parts[0], parts[1], nil
}

func parseInt(field, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", field, err)
	}
	return v, nil
}

func parseBool(field, value string) (bool, error) {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: %w", field, err)
	}
	return v, nil
}

func (c *Config) getSearchField(field string) (string, error) {
	switch field {
	case "base_url":
		return c.Search.BaseURL, nil
	case "limit":
		return strconv.Itoa(c.Search.Limit), nil
	case "timeout_secs":
		return strconv.Itoa(c.Search.TimeoutSecs), nil
	case "api_key":
		return c.Search.APIKey, nil
	default:
		return "", fmt.Errorf("unknown field: search.%s", field)
	}
}

func (c *Config) setSearchField(field, value string) error {
	switch field {
	case "base_url":
		c.Search.BaseURL = value
	case "limit":
		v, err := parseInt(field, value)
		if err != nil {
			return err
		}
		c.Search.Limit = v
	case "timeout_secs":
		v, err := parseInt(field, value)
		if err != nil {
			return err
		}
		c.Search.TimeoutSecs = v
	case "api_key":
		c.Search.APIKey = value
	default:
		return fmt.Errorf("unknown field: search.%s", field)
	}
	return nil
}

func (c *Config) getModelField(field string) (string, error) {
	switch field {
	case "provider":
		return c.Model.Provider, nil
	case "command":
		return c.Model.Command, nil
	case "timeout_secs":
		return strconv.Itoa(c.Model.TimeoutSecs), nil
	case "endpoint":
		return c.Model.Endpoint, nil
	case "token":
		return c.Model.Token, nil
	case "temperature":
		return strconv.FormatFloat(c.Model.Temperature, 'g', -1, 64), nil
	case "max_new_tokens":
		return strconv.Itoa(c.Model.MaxNewTokens), nil
	case "ollama_url":
		return c.Model.OllamaURL, nil
	case "ollama_model":
		return c.Model.OllamaModel, nil
	default:
		return "", fmt.Errorf("unknown field: model.%s", field)
	}
}

func (c *Config) setModelField(field, value string) error {
	switch field {
	case "provider":
		c.Model.Provider = value
	case "command":
		c.Model.Command = value
	case "timeout_secs":
		v, err := parseInt(field, value)
		if err != nil {
			return err
		}
		c.Model.TimeoutSecs = v
	case "endpoint":
		c.Model.Endpoint = value
	case "token":
		c.Model.Token = value
	case "temperature":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid value for temperature: %w", err)
		}
		c.Model.Temperature = v
	case "max_new_tokens":
		v, err := parseInt(field, value)
		if err != nil {
			return err
		}
		c.Model.MaxNewTokens = v
	case "ollama_url":
		c.Model.OllamaURL = value
	case "ollama_model":
		c.Model.OllamaModel = value
	default:
		return fmt.Errorf("unknown field: model.%s", field)
	}
	return nil
}

func (c *Config) getPDFField(field string) (string, error) {
	switch field {
	case "min_chars":
		return strconv.Itoa(c.PDF.MinChars), nil
	case "max_chars":
		return strconv.Itoa(c.PDF.MaxChars), nil
	default:
		return "", fmt.Errorf("unknown field: pdf.%s", field)
	}
}

func (c *Config) setPDFField(field, value string) error {
	switch field {
	case "min_chars":
		v, err := parseInt(field, value)
		if err != nil {
			return err
		}
		c.PDF.MinChars = v
	case "max_chars":
		v, err := parseInt(field, value)
		if err != nil {
			return err
		}
		c.PDF.MaxChars = v
	default:
		return fmt.Errorf("unknown field: pdf.%s", field)
	}
	return nil
}

func (c *Config) getRunsField(field string) (string, error) {
	switch field {
	case "backend":
		return c.Runs.Backend, nil
	case "dir":
		return c.Runs.Dir, nil
	default:
		return "", fmt.Errorf("unknown field: runs.%s", field)
	}
}

func (c *Config) setRunsField(field, value string) error {
	switch field {
	case "backend":
		c.Runs.Backend = value
	case "dir":
		c.Runs.Dir = value
	default:
		return fmt.Errorf("unknown field: runs.%s", field)
	}
	return nil
}

func (c *Config) getLoggingField(field string) (string, error) {
	switch field {
	case "level":
		return c.Logging.Level, nil
	case "file":
		return c.Logging.File, nil
	case "max_size_mb":
		return strconv.Itoa(c.Logging.MaxSizeMB), nil
	case "max_backups":
		return strconv.Itoa(c.Logging.MaxBackups), nil
	case "max_age_days":
		return strconv.Itoa(c.Logging.MaxAgeDays), nil
	case "compress":
		return strconv.FormatBool(c.Logging.Compress), nil
	default:
		return "", fmt.Errorf("unknown field: logging.%s", field)
	}
}

func (c *Config) setLoggingField(field, value string) error {
	switch field {
	case "level":
		c.Logging.Level = value
	case "file":
		c.Logging.File = value
	case "max_size_mb", "max_backups", "max_age_days":
		v, err := parseInt(field, value)
		if err != nil {
			return err
		}
		switch field {
		case "max_size_mb":
			c.Logging.MaxSizeMB = v
		case "max_backups":
			c.Logging.MaxBackups = v
		default:
			c.Logging.MaxAgeDays = v
		}
	case "compress":
		v, err := parseBool(field, value)
		if err != nil {
			return err
		}
		c.Logging.Compress = v
	default:
		return fmt.Errorf("unknown field: logging.%s", field)
	}
	return nil
}

func (c *Config) getPrivacyField(field string) (string, error) {
	switch field {
	case "sanitize_ai_calls":
		return strconv.FormatBool(c.Privacy.SanitizeAICalls), nil
	default:
		return "", fmt.Errorf("unknown field: privacy.%s", field)
	}
}

func (c *Config) setPrivacyField(field, value string) error {
	switch field {
	case "sanitize_ai_calls":
		v, err := parseBool(field, value)
		if err != nil {
			return err
		}
		c.Privacy.SanitizeAICalls = v
	default:
		return fmt.Errorf("unknown field: privacy.%s", field)
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Search.Limit < 1 {
		return errors.New("search.limit must be >= 1")
	}
	if c.Search.TimeoutSecs < 1 {
		return errors.New("search.timeout_secs must be >= 1")
	}

	if !isValidProvider(c.Model.Provider) {
		return fmt.Errorf("model.provider must be auto, process, inference, or ollama-api (got: %s)", c.Model.Provider)
	}
	if c.Model.TimeoutSecs < 1 {
		return errors.New("model.timeout_secs must be >= 1")
	}
	if c.Model.Temperature < 0 {
		return errors.New("model.temperature must be >= 0")
	}
	if c.Model.MaxNewTokens < 1 {
		return errors.New("model.max_new_tokens must be >= 1")
	}

	if c.PDF.MinChars < 0 {
		return errors.New("pdf.min_chars must be >= 0")
	}
	if c.PDF.MaxChars < 1 {
		return errors.New("pdf.max_chars must be >= 1")
	}

	if !isValidBackend(c.Runs.Backend) {
		return fmt.Errorf("runs.backend must be file or sqlite (got: %s)", c.Runs.Backend)
	}

	if !IsValidLogLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got: %s)", c.Logging.Level)
	}

	return nil
}

// IsValidLogLevel reports whether level is one of debug, info, warn, error.
func IsValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func isValidProvider(provider string) bool {
	switch provider {
	case "auto", "process", "inference", "ollama-api":
		return true
	default:
		return false
	}
}

func isValidBackend(backend string) bool {
	switch backend {
	case "file", "sqlite":
		return true
	default:
		return false
	}
}

// ApplyEnvOverrides applies environment variable overrides to the config.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("METHODMAP_MODEL_PROVIDER"); v != "" && isValidProvider(v) {
		c.Model.Provider = v
	}
	if v := os.Getenv("METHODMAP_MODEL_COMMAND"); v != "" {
		c.Model.Command = v
	}
	if v := os.Getenv("HF_TOKEN"); v != "" {
		c.Model.Token = v
	}
	// The tool-specific name wins over the generic one.
	if v := os.Getenv("METHODMAP_MODEL_TOKEN"); v != "" {
		c.Model.Token = v
	}
	if v := os.Getenv("METHODMAP_MODEL_ENDPOINT"); v != "" {
		c.Model.Endpoint = v
	}
	if v := os.Getenv("SEMANTIC_SCHOLAR_API_KEY"); v != "" {
		c.Search.APIKey = v
	}
	if v := os.Getenv("METHODMAP_RUNS_DIR"); v != "" {
		c.Runs.Dir = v
	}
	if v := os.Getenv("METHODMAP_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			c.Logging.Level = "debug"
		}
	}
	if v := os.Getenv("METHODMAP_LOG_LEVEL"); v != "" && IsValidLogLevel(v) {
		c.Logging.Level = v
	}
}

// ListKeys returns user-facing configuration keys.
func ListKeys() []string {
	return []string{
		"search.base_url",
		"search.limit",
		"search.timeout_secs",
		"search.api_key",
		"model.provider",
		"model.command",
		"model.timeout_secs",
		"model.endpoint",
		"model.token",
		"model.temperature",
		"model.max_new_tokens",
		"model.ollama_url",
		"model.ollama_model",
		"pdf.min_chars",
		"pdf.max_chars",
		"runs.backend",
		"runs.dir",
		"logging.level",
		"logging.file",
		"logging.max_size_mb",
		"logging.max_backups",
		"logging.max_age_days",
		"logging.compress",
		"privacy.sanitize_ai_calls",
	}
}

// IsSecretKey reports whether key holds a credential that should be masked
// when printed.
func IsSecretKey(key string) bool {
	return key == "model.token" || key == "search.api_key"
}
