package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

var envVars = []string{
	"MMS_DEBUG", "MMS_OUTPUT_DIR", "MMS_PROVIDER", "MMS_STRIP_CHARACTERS", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envVars {
		t.Setenv(env, "")
	}
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Debug {
		t.Error("Debug: got true, want false")
	}
	if cfg.OutputDir != "" {
		t.Errorf("OutputDir: got %q, want empty", cfg.OutputDir)
	}
	if cfg.Provider != "" {
		t.Errorf("Provider: got %q, want empty", cfg.Provider)
	}
	if cfg.StripCharacters != "" {
		t.Errorf("StripCharacters: got %q, want empty", cfg.StripCharacters)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoad_EnvVarOverrides(t *testing.T) {
	t.Setenv("MMS_DEBUG", "true")
	t.Setenv("MMS_OUTPUT_DIR", "/var/spool/mms")
	t.Setenv("MMS_PROVIDER", "example-carrier")
	t.Setenv("MMS_STRIP_CHARACTERS", "\r")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.Debug {
		t.Error("Debug: got false, want true")
	}
	if cfg.OutputDir != "/var/spool/mms" {
		t.Errorf("OutputDir: got %q, want %q", cfg.OutputDir, "/var/spool/mms")
	}
	if cfg.Provider != "example-carrier" {
		t.Errorf("Provider: got %q, want %q", cfg.Provider, "example-carrier")
	}
	if cfg.StripCharacters != "\r" {
		t.Errorf("StripCharacters: got %q, want %q", cfg.StripCharacters, "\r")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_InvalidDebugIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("MMS_DEBUG", "sometimes")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Debug {
		t.Error("Debug: got true, want false for unparseable value")
	}
}

func TestLoadFromFile(t *testing.T) {
	yamlContent := `
debug: true
output_dir: "/tmp/mms"
provider: "example-carrier"
strip_characters: "\r"
cleanse:
  body_text:
    - pattern: "\\s+$"
      replace: ""
carriers:
  - name: "example-carrier"
    pattern: "@mms\\.example-carrier\\.co\\.uk$"
    body_filters:
      - "--\\s*Sent by Example Carrier"
    drop_attachments:
      - "\\.smil$"
logging:
  level: "warn"
`
	configPath := writeConfig(t, "config.yaml", yamlContent)
	clearEnv(t)

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.Debug {
		t.Error("Debug: got false, want true")
	}
	if cfg.OutputDir != "/tmp/mms" {
		t.Errorf("OutputDir: got %q, want %q", cfg.OutputDir, "/tmp/mms")
	}
	if cfg.StripCharacters != "\r" {
		t.Errorf("StripCharacters: got %q, want %q", cfg.StripCharacters, "\r")
	}
	rules := cfg.Cleanse["body_text"]
	if len(rules) != 1 || rules[0].Pattern != `\s+$` {
		t.Errorf("Cleanse[body_text]: got %+v", rules)
	}
	if len(cfg.Carriers) != 1 {
		t.Fatalf("Carriers: got %d, want 1", len(cfg.Carriers))
	}
	c := cfg.Carriers[0]
	if c.Name != "example-carrier" || c.Pattern != `@mms\.example-carrier\.co\.uk$` {
		t.Errorf("Carriers[0]: got %+v", c)
	}
	if len(c.DropAttachments) != 1 || c.DropAttachments[0] != `\.smil$` {
		t.Errorf("Carriers[0].DropAttachments: got %v", c.DropAttachments)
	}
	if cfg.LogLevel() != slog.LevelWarn {
		t.Errorf("LogLevel: got %v, want %v", cfg.LogLevel(), slog.LevelWarn)
	}
}

func TestLoadFromFile_TOML(t *testing.T) {
	tomlContent := `
output_dir = "/tmp/mms"
provider = "generic"

[logging]
level = "error"

[[cleanse.header_subject]]
pattern = "^Fwd:\\s*"
replace = ""

[[carriers]]
name = "example-carrier"
pattern = "example-carrier"
subject_filters = ["^MMS:\\s*"]
`
	configPath := writeConfig(t, "config.toml", tomlContent)
	clearEnv(t)

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.OutputDir != "/tmp/mms" {
		t.Errorf("OutputDir: got %q, want %q", cfg.OutputDir, "/tmp/mms")
	}
	if cfg.Provider != "generic" {
		t.Errorf("Provider: got %q, want %q", cfg.Provider, "generic")
	}
	if got := cfg.Cleanse["header_subject"]; len(got) != 1 || got[0].Pattern != `^Fwd:\s*` {
		t.Errorf("Cleanse[header_subject]: got %+v", got)
	}
	if len(cfg.Carriers) != 1 || cfg.Carriers[0].SubjectFilters[0] != `^MMS:\s*` {
		t.Errorf("Carriers: got %+v", cfg.Carriers)
	}
	if cfg.LogLevel() != slog.LevelError {
		t.Errorf("LogLevel: got %v, want %v", cfg.LogLevel(), slog.LevelError)
	}
}

func TestLoadFromFile_EnvOverridesFile(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
output_dir: "/from/yaml"
provider: "yaml-provider"
logging:
  level: "warn"
`)

	t.Setenv("MMS_OUTPUT_DIR", "/from/env")
	t.Setenv("MMS_PROVIDER", "")
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Env var should override YAML
	if cfg.OutputDir != "/from/env" {
		t.Errorf("OutputDir: got %q, want %q (env should override YAML)", cfg.OutputDir, "/from/env")
	}
	// Empty env var should NOT override YAML value
	if cfg.Provider != "yaml-provider" {
		t.Errorf("Provider: got %q, want %q (empty env should not override YAML)", cfg.Provider, "yaml-provider")
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level: got %q, want %q (env should override YAML)", cfg.Logging.Level, "error")
	}
}

func TestLoadFromFile_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestLoadFromFile_InvalidContent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "yaml", file: "config.yaml", content: "{{invalid yaml"},
		{name: "toml", file: "config.toml", content: "output_dir = = 1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			configPath := writeConfig(t, tt.file, tt.content)
			if _, err := LoadFromFile(configPath); err == nil {
				t.Errorf("expected error for invalid %s, got nil", tt.name)
			}
		})
	}
}

func TestLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level string
		want  slog.Level
	}{
		{level: "debug", want: slog.LevelDebug},
		{level: "info", want: slog.LevelInfo},
		{level: "warn", want: slog.LevelWarn},
		{level: "error", want: slog.LevelError},
		{level: "verbose", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.level, func(t *testing.T) {
			t.Parallel()
			cfg := &Config{Logging: LoggingConfig{Level: tt.level}}
			if got := cfg.LogLevel(); got != tt.want {
				t.Errorf("LogLevel(%q): got %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}
