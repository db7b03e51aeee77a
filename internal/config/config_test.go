package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STORYLINE_JIRA_DOMAIN", "STORYLINE_JIRA_EMAIL", "STORYLINE_JIRA_API_TOKEN",
		"STORYLINE_GEMINI_API_KEY", "STORYLINE_OPENAI_API_KEY", "STORYLINE_OPENAI_BASE_URL",
		"STORYLINE_ANTHROPIC_API_KEY", "STORYLINE_MODEL",
		"STORYLINE_API_HOST", "STORYLINE_API_PORT", "STORYLINE_API_KEY",
		"STORYLINE_HISTORY_PATH",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"jira": {"domain": "example.atlassian.net", "email": "dev@example.com", "api_token": "token123"},
		"provider": {"api_key": "gem-key", "model": "gemini-1.5-flash"},
		"api": {"host": "127.0.0.1", "port": 9000, "api_key": "secret"},
		"history_path": "/data/history.db"
	}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Jira.Domain != "example.atlassian.net" {
		t.Errorf("jira.domain = %s", cfg.Jira.Domain)
	}
	if cfg.Provider.Type != "gemini" {
		t.Errorf("provider.type should default to gemini, got %s", cfg.Provider.Type)
	}
	if cfg.API.Port != 9000 {
		t.Errorf("api.port = %d", cfg.API.Port)
	}
	if cfg.HistoryPath != "/data/history.db" {
		t.Errorf("history_path = %s", cfg.HistoryPath)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORYLINE_JIRA_DOMAIN", "example.atlassian.net")
	t.Setenv("STORYLINE_JIRA_EMAIL", "dev@example.com")
	t.Setenv("STORYLINE_JIRA_API_TOKEN", "token123")
	t.Setenv("STORYLINE_GEMINI_API_KEY", "gem-key")
	t.Setenv("STORYLINE_API_PORT", "9100")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.Provider.Type != "gemini" || cfg.Provider.APIKey != "gem-key" {
		t.Errorf("provider = %+v", cfg.Provider)
	}
	if cfg.Provider.Model != "gemini-1.5-flash" {
		t.Errorf("model default = %s", cfg.Provider.Model)
	}
	if cfg.API.Port != 9100 {
		t.Errorf("api.port = %d", cfg.API.Port)
	}
	if cfg.API.Host != "0.0.0.0" {
		t.Errorf("api.host default = %s", cfg.API.Host)
	}
}

func TestLoadFromEnv_OpenAI(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORYLINE_JIRA_DOMAIN", "example.atlassian.net")
	t.Setenv("STORYLINE_JIRA_EMAIL", "dev@example.com")
	t.Setenv("STORYLINE_JIRA_API_TOKEN", "token123")
	t.Setenv("STORYLINE_OPENAI_API_KEY", "oai-key")
	t.Setenv("STORYLINE_MODEL", "gpt-4o-mini")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.Provider.Type != "openai" || cfg.Provider.Model != "gpt-4o-mini" {
		t.Errorf("provider = %+v", cfg.Provider)
	}
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"jira.domain", "jira.email", "jira.api_token", "provider.api_key"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q: %v", want, err)
		}
	}
}

func TestValidate_UnknownProviderType(t *testing.T) {
	cfg := &Config{
		Jira:     JiraConfig{Domain: "d", Email: "e", APIToken: "t"},
		Provider: ProviderConfig{Type: "palm", APIKey: "k"},
	}
	cfg.applyDefaults()

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "palm") {
		t.Errorf("error = %v", err)
	}
}
