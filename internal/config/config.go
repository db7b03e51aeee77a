// Package config loads storyline configuration from a JSON file or
// from the environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is the top-level storyline configuration.
type Config struct {
	Jira        JiraConfig     `json:"jira"`
	Provider    ProviderConfig `json:"provider"`
	API         APIConfig      `json:"api"`
	HistoryPath string         `json:"history_path,omitempty"`
}

// JiraConfig holds credentials for one Jira Cloud site.
type JiraConfig struct {
	Domain   string `json:"domain"` // e.g. "example.atlassian.net"
	Email    string `json:"email"`
	APIToken string `json:"api_token"`
}

// ProviderConfig holds generative model settings.
type ProviderConfig struct {
	Type    string `json:"type,omitempty"` // "gemini" (default), "openai" or "anthropic"
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url,omitempty"`
	Model   string `json:"model,omitempty"`
}

// APIConfig holds REST API server settings.
type APIConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	Key  string `json:"api_key"`
}

// Load reads configuration from a JSON file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv builds configuration from STORYLINE_* environment
// variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Jira: JiraConfig{
			Domain:   os.Getenv("STORYLINE_JIRA_DOMAIN"),
			Email:    os.Getenv("STORYLINE_JIRA_EMAIL"),
			APIToken: os.Getenv("STORYLINE_JIRA_API_TOKEN"),
		},
		API: APIConfig{
			Host: getenv("STORYLINE_API_HOST", "0.0.0.0"),
			Port: getenvInt("STORYLINE_API_PORT", 8000),
			Key:  os.Getenv("STORYLINE_API_KEY"),
		},
		HistoryPath: os.Getenv("STORYLINE_HISTORY_PATH"),
	}

	switch {
	case os.Getenv("STORYLINE_GEMINI_API_KEY") != "":
		cfg.Provider = ProviderConfig{
			Type:   "gemini",
			APIKey: os.Getenv("STORYLINE_GEMINI_API_KEY"),
			Model:  getenv("STORYLINE_MODEL", "gemini-1.5-flash"),
		}
	case os.Getenv("STORYLINE_OPENAI_API_KEY") != "":
		cfg.Provider = ProviderConfig{
			Type:    "openai",
			APIKey:  os.Getenv("STORYLINE_OPENAI_API_KEY"),
			BaseURL: os.Getenv("STORYLINE_OPENAI_BASE_URL"),
			Model:   getenv("STORYLINE_MODEL", "gpt-4o"),
		}
	case os.Getenv("STORYLINE_ANTHROPIC_API_KEY") != "":
		cfg.Provider = ProviderConfig{
			Type:   "anthropic",
			APIKey: os.Getenv("STORYLINE_ANTHROPIC_API_KEY"),
			Model:  getenv("STORYLINE_MODEL", "claude-sonnet-4-20250514"),
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Provider.Type == "" {
		c.Provider.Type = "gemini"
	}
	if c.API.Host == "" {
		c.API.Host = "0.0.0.0"
	}
	if c.API.Port == 0 {
		c.API.Port = 8000
	}
}

// Validate checks for required fields, collecting all problems.
func (c *Config) Validate() error {
	var errs []string

	if c.Jira.Domain == "" {
		errs = append(errs, "jira.domain is required")
	}
	if c.Jira.Email == "" {
		errs = append(errs, "jira.email is required")
	}
	if c.Jira.APIToken == "" {
		errs = append(errs, "jira.api_token is required")
	}

	switch c.Provider.Type {
	case "gemini", "openai", "anthropic":
	default:
		errs = append(errs, fmt.Sprintf("provider.type %q is not supported", c.Provider.Type))
	}
	if c.Provider.APIKey == "" {
		errs = append(errs, "provider.api_key is required")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, fmt.Sprintf("api.port %d is out of range", c.API.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
