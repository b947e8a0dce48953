package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/clonewatch/clonewatch/pkg/clone"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}
	if cfg.Detection.MinTokens != 50 {
		t.Errorf("Detection.MinTokens = %d, want 50", cfg.Detection.MinTokens)
	}
	if cfg.Detection.Mode != string(clone.ModeMild) {
		t.Errorf("Detection.Mode = %s, want %s", cfg.Detection.Mode, clone.ModeMild)
	}
	if !cfg.Exclude.Gitignore {
		t.Error("Exclude.Gitignore should be true by default")
	}
	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be true by default")
	}
	if cfg.Output.Format != "table" {
		t.Errorf("Output.Format = %s, want table", cfg.Output.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig() should validate, got: %v", err)
	}
}

func TestDetectionConfigToClone(t *testing.T) {
	cfg := DefaultConfig()
	det := cfg.Detection.ToClone()
	if err := det.Validate(); err != nil {
		t.Errorf("converted clone.Config should validate, got: %v", err)
	}
	if det.MinLines != cfg.Detection.MinLines {
		t.Errorf("MinLines mismatch: %d vs %d", det.MinLines, cfg.Detection.MinLines)
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".clonewatch.yaml")

	content := `
detection:
  min_lines: 8
  min_tokens: 30
  mode: strict
exclude:
  gitignore: false
output:
  format: json
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Detection.MinLines != 8 {
		t.Errorf("Detection.MinLines = %d, want 8", cfg.Detection.MinLines)
	}
	if cfg.Detection.Mode != "strict" {
		t.Errorf("Detection.Mode = %s, want strict", cfg.Detection.Mode)
	}
	if cfg.Exclude.Gitignore {
		t.Error("Exclude.Gitignore should be false")
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %s, want json", cfg.Output.Format)
	}
}

func TestLoadTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".clonewatch.toml")

	content := `
[detection]
min_lines = 10
min_tokens = 25

[output]
format = "toon"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Detection.MinLines != 10 {
		t.Errorf("Detection.MinLines = %d, want 10", cfg.Detection.MinLines)
	}
	if cfg.Output.Format != "toon" {
		t.Errorf("Output.Format = %s, want toon", cfg.Output.Format)
	}
}

func TestLoadJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".clonewatch.json")

	content := `{
  "detection": { "min_lines": 12, "min_tokens": 40 },
  "gate": { "max_percentage": 5 }
}`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Detection.MinLines != 12 {
		t.Errorf("Detection.MinLines = %d, want 12", cfg.Detection.MinLines)
	}
	if cfg.Gate.MaxPercentage != 5 {
		t.Errorf("Gate.MaxPercentage = %f, want 5", cfg.Gate.MaxPercentage)
	}
}

func TestLoadRejectsUnknownKeyViaSchema(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".clonewatch.yaml")

	content := `
detection:
  min_lines: 5
  bogus_key: true
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("Load() should reject an unknown key under detection")
	}
}

func TestLoadRejectsInvalidModeViaSchema(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".clonewatch.yaml")

	content := `
detection:
  mode: "loose"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("Load() should reject an out-of-enum mode value")
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/.clonewatch.yaml"); err == nil {
		t.Error("Load() should return an error for a non-existent file")
	}
}

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}

	result, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if result.Source != "" {
		t.Errorf("Source = %q, want empty when no config file exists", result.Source)
	}
	if result.Config.Detection.MinTokens != 50 {
		t.Errorf("expected default MinTokens, got %d", result.Config.Detection.MinTokens)
	}
}

func TestLoadConfigWithExplicitPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "custom.yaml")
	content := "detection:\n  min_tokens: 99\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	result, err := LoadConfig(WithPath(configPath))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if result.Config.Detection.MinTokens != 99 {
		t.Errorf("Detection.MinTokens = %d, want 99", result.Config.Detection.MinTokens)
	}
	if result.Source != configPath {
		t.Errorf("Source = %q, want %q", result.Source, configPath)
	}
}

func TestLoadConfigRejectsInvalidDetectionSettings(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "custom.yaml")
	content := "detection:\n  min_tokens: 0\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := LoadConfig(WithPath(configPath)); err == nil {
		t.Error("LoadConfig() should reject min_tokens=0 during Validate()")
	}
}

func TestFindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}

	if got := FindConfigFile(); got != "" {
		t.Errorf("FindConfigFile() = %q, want empty in a directory with no config", got)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, ".clonewatch.toml"), []byte("detection:\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	if got := FindConfigFile(); got != ".clonewatch.toml" {
		t.Errorf("FindConfigFile() = %q, want .clonewatch.toml", got)
	}
}
