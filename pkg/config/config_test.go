package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
providers:
  openai:
    model: gpt-4o-mini
    enabled: true
orchestrator:
  max_templates_in_prompt: 20
  defaults:
    state: DE
`)
	t.Setenv("LAUNCHPAD_OPENAI_API_KEY", "sk-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	name, p := cfg.GetDefaultProvider()
	if name != "openai" || p.APIKey != "sk-env" {
		t.Errorf("expected openai provider with env key, got %s %+v", name, p)
	}
	if cfg.Orchestrator.MaxTemplatesInPrompt != 20 {
		t.Errorf("expected 20 templates in prompt, got %d", cfg.Orchestrator.MaxTemplatesInPrompt)
	}
	d := cfg.Orchestrator.Defaults
	if d.State != "DE" || d.Category != "service" || d.Stage != "idea" {
		t.Errorf("unexpected defaults: %+v", d)
	}
	if len(cfg.Policy.DeniedTools) != 3 {
		t.Errorf("expected default denied tools, got %v", cfg.Policy.DeniedTools)
	}
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"gateways": {"telegram": {"token": "abc", "enabled": true}},
		"database": {"path": "/tmp/x.db"}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.Path != "/tmp/x.db" {
		t.Errorf("unexpected database path %q", cfg.Database.Path)
	}
	if _, ok := cfg.GetTelegramConfig(); !ok {
		t.Error("expected telegram gateway to be enabled")
	}
	if cfg.Orchestrator.MaxToolRounds != 4 {
		t.Errorf("expected default tool rounds, got %d", cfg.Orchestrator.MaxToolRounds)
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := writeFile(t, "config.yaml", `
providers:
  anthropic:
    enabled: true
`)
	if _, err := Load(path); err == nil {
		t.Error("expected error for enabled provider without model")
	}

	path = writeFile(t, "config.yaml", `
cache:
  max_bytes: 50
`)
	if _, err := Load(path); err == nil {
		t.Error("expected error for a cache below 100 bytes")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetDefaultProvider_StableOrder(t *testing.T) {
	cfg := Default()
	cfg.Providers["openrouter"] = ProviderConfig{Model: "m", Enabled: true}
	cfg.Providers["anthropic"] = ProviderConfig{Model: "m", Enabled: true}
	cfg.Providers["ollama"] = ProviderConfig{Model: "m"}

	for i := 0; i < 5; i++ {
		if name, _ := cfg.GetDefaultProvider(); name != "anthropic" {
			t.Fatalf("expected anthropic, got %s", name)
		}
	}
}
