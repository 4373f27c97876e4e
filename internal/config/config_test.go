package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// clearEnv unsets every variable ApplyEnvOverrides reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"METHODMAP_MODEL_PROVIDER",
		"METHODMAP_MODEL_COMMAND",
		"HF_TOKEN",
		"METHODMAP_MODEL_TOKEN",
		"METHODMAP_MODEL_ENDPOINT",
		"SEMANTIC_SCHOLAR_API_KEY",
		"METHODMAP_RUNS_DIR",
		"METHODMAP_DEBUG",
		"METHODMAP_LOG_LEVEL",
	} {
		t.Setenv(name, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Search.Limit != 5 {
		t.Errorf("Expected search.limit=5, got %d", cfg.Search.Limit)
	}
	if cfg.Model.Provider != "auto" {
		t.Errorf("Expected provider=auto, got %s", cfg.Model.Provider)
	}
	if cfg.Model.Command != "ollama run llama3" {
		t.Errorf("Expected command='ollama run llama3', got %s", cfg.Model.Command)
	}
	if cfg.Model.TimeoutSecs != 120 {
		t.Errorf("Expected model.timeout_secs=120, got %d", cfg.Model.TimeoutSecs)
	}
	if cfg.PDF.MinChars != 100 || cfg.PDF.MaxChars != 3500 {
		t.Errorf("Expected pdf bounds 100/3500, got %d/%d", cfg.PDF.MinChars, cfg.PDF.MaxChars)
	}
	if cfg.Runs.Backend != "file" {
		t.Errorf("Expected runs.backend=file, got %s", cfg.Runs.Backend)
	}
	if !cfg.Privacy.SanitizeAICalls {
		t.Error("Expected sanitize_ai_calls=true")
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid: %v", err)
	}
}

func TestConfigGet(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		key      string
		expected string
	}{
		{"search.base_url", "https://api.semanticscholar.org/graph/v1"},
		{"search.limit", "5"},
		{"search.timeout_secs", "30"},
		{"search.api_key", ""},
		{"model.provider", "auto"},
		{"model.command", "ollama run llama3"},
		{"model.timeout_secs", "120"},
		{"model.temperature", "0.2"},
		{"model.max_new_tokens", "1024"},
		{"model.ollama_model", "llama3"},
		{"pdf.min_chars", "100"},
		{"pdf.max_chars", "3500"},
		{"runs.backend", "file"},
		{"runs.dir", ""},
		{"logging.level", "info"},
		{"logging.compress", "false"},
		{"privacy.sanitize_ai_calls", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := cfg.Get(tt.key)
			if err != nil {
				t.Fatalf("Get(%q) error: %v", tt.key, err)
			}
			if got != tt.expected {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.expected)
			}
		})
	}
}

func TestConfigSet(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"search.limit", "10"},
		{"search.api_key", "abc"},
		{"model.provider", "inference"},
		{"model.command", "llama-cli -m model.gguf"},
		{"model.timeout_secs", "60"},
		{"model.temperature", "0.7"},
		{"model.max_new_tokens", "512"},
		{"model.token", "hf_secret"},
		{"pdf.min_chars", "50"},
		{"pdf.max_chars", "8000"},
		{"runs.backend", "sqlite"},
		{"runs.dir", "/tmp/runs"},
		{"logging.level", "debug"},
		{"logging.file", "-"},
		{"logging.max_backups", "7"},
		{"logging.compress", "true"},
		{"privacy.sanitize_ai_calls", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cfg := DefaultConfig()
			if err := cfg.Set(tt.key, tt.value); err != nil {
				t.Fatalf("Set(%q, %q) error: %v", tt.key, tt.value, err)
			}
			got, err := cfg.Get(tt.key)
			if err != nil {
				t.Fatalf("Get(%q) error: %v", tt.key, err)
			}
			if got != tt.value {
				t.Errorf("after Set, Get(%q) = %q, want %q", tt.key, got, tt.value)
			}
		})
	}
}

func TestConfigGetInvalidKey(t *testing.T) {
	cfg := DefaultConfig()

	for _, key := range []string{"", "model", "model.provider.extra", "nosuch.key", "model.nosuch"} {
		if _, err := cfg.Get(key); err == nil {
			t.Errorf("Get(%q) should fail", key)
		}
	}
}

func TestConfigSetInvalidValue(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"search.limit", "five"},
		{"model.timeout_secs", "1.5"},
		{"model.temperature", "hot"},
		{"pdf.max_chars", "many"},
		{"logging.compress", "maybe"},
		{"privacy.sanitize_ai_calls", "yes please"},
		{"runs.nosuch", "x"},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		if err := cfg.Set(tt.key, tt.value); err == nil {
			t.Errorf("Set(%q, %q) should fail", tt.key, tt.value)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"zero limit", func(c *Config) { c.Search.Limit = 0 }, "search.limit"},
		{"bad provider", func(c *Config) { c.Model.Provider = "anthropic" }, "model.provider"},
		{"zero model timeout", func(c *Config) { c.Model.TimeoutSecs = 0 }, "model.timeout_secs"},
		{"negative temperature", func(c *Config) { c.Model.Temperature = -1 }, "model.temperature"},
		{"zero max chars", func(c *Config) { c.PDF.MaxChars = 0 }, "pdf.max_chars"},
		{"bad backend", func(c *Config) { c.Runs.Backend = "postgres" }, "runs.backend"},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("METHODMAP_MODEL_PROVIDER", "process")
	t.Setenv("METHODMAP_MODEL_COMMAND", "ollama run mistral")
	t.Setenv("HF_TOKEN", "hf_generic")
	t.Setenv("METHODMAP_MODEL_TOKEN", "hf_specific")
	t.Setenv("SEMANTIC_SCHOLAR_API_KEY", "s2key")
	t.Setenv("METHODMAP_RUNS_DIR", "/srv/runs")
	t.Setenv("METHODMAP_DEBUG", "1")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	if cfg.Model.Provider != "process" {
		t.Errorf("provider = %s", cfg.Model.Provider)
	}
	if cfg.Model.Command != "ollama run mistral" {
		t.Errorf("command = %s", cfg.Model.Command)
	}
	if cfg.Model.Token != "hf_specific" {
		t.Errorf("METHODMAP_MODEL_TOKEN should win over HF_TOKEN, got %s", cfg.Model.Token)
	}
	if cfg.Search.APIKey != "s2key" {
		t.Errorf("api key = %s", cfg.Search.APIKey)
	}
	if cfg.Runs.Dir != "/srv/runs" {
		t.Errorf("runs dir = %s", cfg.Runs.Dir)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("METHODMAP_DEBUG should force debug, got %s", cfg.Logging.Level)
	}
}

func TestApplyEnvOverrides_IgnoresInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("METHODMAP_MODEL_PROVIDER", "gpt-9")
	t.Setenv("METHODMAP_LOG_LEVEL", "loud")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	if cfg.Model.Provider != "auto" {
		t.Errorf("invalid provider should be ignored, got %s", cfg.Model.Provider)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("invalid level should be ignored, got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFile_NonExistent(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFromFile should not fail for missing file: %v", err)
	}
	if cfg.Model.Provider != "auto" {
		t.Errorf("Expected defaults, got provider=%s", cfg.Model.Provider)
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("model: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadFromFile_PartialConfig(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "model:\n  provider: inference\n  temperature: 0.5\npdf:\n  max_chars: 5000\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile error: %v", err)
	}
	if cfg.Model.Provider != "inference" {
		t.Errorf("provider = %s", cfg.Model.Provider)
	}
	if cfg.Model.Temperature != 0.5 {
		t.Errorf("temperature = %v", cfg.Model.Temperature)
	}
	if cfg.PDF.MaxChars != 5000 {
		t.Errorf("max_chars = %d", cfg.PDF.MaxChars)
	}
	// Unset keys keep their defaults.
	if cfg.Model.Command != "ollama run llama3" {
		t.Errorf("command = %s", cfg.Model.Command)
	}
	if cfg.PDF.MinChars != 100 {
		t.Errorf("min_chars = %d", cfg.PDF.MinChars)
	}
}

func TestLoadFromFile_InvalidValues(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("runs:\n  backend: s3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected validation error")
	}
}

func TestLoadFileOnly_IgnoresEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("HF_TOKEN", "hf_from_env")
	t.Setenv("METHODMAP_MODEL_PROVIDER", "process")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("model:\n  provider: inference\n"), 0644); err != nil {
		t.Fatal(err)
	}

	raw, err := LoadFileOnly(path)
	if err != nil {
		t.Fatalf("LoadFileOnly error: %v", err)
	}
	if raw.Model.Token != "" {
		t.Errorf("token = %q, environment must not leak into the file view", raw.Model.Token)
	}
	if raw.Model.Provider != "inference" {
		t.Errorf("provider = %s", raw.Model.Provider)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile error: %v", err)
	}
	if cfg.Model.Token != "hf_from_env" || cfg.Model.Provider != "process" {
		t.Errorf("env overrides not applied: %+v", cfg.Model)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Model.Provider = "ollama-api"
	cfg.Model.OllamaModel = "mistral"
	cfg.Runs.Backend = "sqlite"
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile error: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestResolvedDirs(t *testing.T) {
	paths := &Paths{DataDir: "/d"}
	cfg := DefaultConfig()

	if got := cfg.RunsDir(paths); got != filepath.Join("/d", "runs") {
		t.Errorf("RunsDir default = %s", got)
	}
	if got := cfg.LogFile(paths); got != filepath.Join("/d", "logs", "methodmap.log") {
		t.Errorf("LogFile default = %s", got)
	}

	cfg.Runs.Dir = "/elsewhere"
	cfg.Logging.File = "-"
	if got := cfg.RunsDir(paths); got != "/elsewhere" {
		t.Errorf("RunsDir override = %s", got)
	}
	if got := cfg.LogFile(paths); got != "-" {
		t.Errorf("LogFile override = %s", got)
	}
}

func TestListKeysAllGettableAndSettable(t *testing.T) {
	cfg := DefaultConfig()
	for _, key := range ListKeys() {
		val, err := cfg.Get(key)
		if err != nil {
			t.Errorf("ListKeys key %q not gettable: %v", key, err)
			continue
		}
		if err := cfg.Set(key, val); err != nil {
			t.Errorf("ListKeys key %q not settable with its own value %q: %v", key, val, err)
		}
	}
}

func TestIsSecretKey(t *testing.T) {
	if !IsSecretKey("model.token") || !IsSecretKey("search.api_key") {
		t.Error("token keys should be secret")
	}
	if IsSecretKey("model.provider") {
		t.Error("model.provider is not secret")
	}
}
