package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleConfig = `{
  "llm": {"type": "anthropic", "api_key": "sk-test"},
  "agent": {"max_steps": 8},
  "sources": {
    "web_search": {"brave_api_key": "brave-key"},
    "policy": {"deny": ["WWW.Spam.com"]}
  },
  "schedules": [{"topic": "ai policy", "cron": "0 7 * * *"}]
}`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLM.BaseURL != "https://api.anthropic.com/v1" {
		t.Fatalf("unexpected base url %q", cfg.LLM.BaseURL)
	}
	if cfg.Agent.MaxSteps != 8 {
		t.Fatalf("expected max_steps 8, got %d", cfg.Agent.MaxSteps)
	}
	if cfg.Agent.ToolRetries != 2 {
		t.Fatalf("expected default tool_retries 2, got %d", cfg.Agent.ToolRetries)
	}
	if len(cfg.Agent.StopSequences) != 1 || cfg.Agent.StopSequences[0] != "\n<Observation>" {
		t.Fatalf("unexpected stop sequences %q", cfg.Agent.StopSequences)
	}
	if cfg.Sources.WebSearch.Provider != "brave" || cfg.Sources.WebSearch.CacheTTL != 6*time.Hour {
		t.Fatalf("unexpected web search config %+v", cfg.Sources.WebSearch)
	}
	if len(cfg.Sources.Policy.Deny) != 1 || cfg.Sources.Policy.Deny[0] != "spam.com" {
		t.Fatalf("unexpected policy %+v", cfg.Sources.Policy)
	}
	if cfg.Server.Address != ":8080" {
		t.Fatalf("unexpected server address %q", cfg.Server.Address)
	}
	if len(cfg.Highlight.Palette) != len(DefaultPalette) {
		t.Fatalf("expected default palette")
	}
	if cfg.Schedules[0].Assistant != "writing" {
		t.Fatalf("expected schedule to inherit default profile, got %q", cfg.Schedules[0].Assistant)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("NEWSDESK_LLM_MODEL", "claude-override")
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLM.Model != "claude-override" {
		t.Fatalf("expected env override, got %q", cfg.LLM.Model)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	cases := map[string]string{
		"missing api key": `{"sources": {"web_search": {"brave_api_key": "k"}}}`,
		"bad provider":    `{"llm": {"type": "local", "api_key": "k"}, "sources": {"web_search": {"brave_api_key": "k"}}}`,
		"missing search":  `{"llm": {"api_key": "k"}, "sources": {"web_search": {"provider": "serper"}}}`,
		"bad cron":        `{"llm": {"api_key": "k"}, "sources": {"web_search": {"brave_api_key": "k"}}, "schedules": [{"topic": "x", "cron": "nope"}]}`,
		"bad palette":     `{"llm": {"api_key": "k"}, "sources": {"web_search": {"brave_api_key": "k"}}, "highlight": {"palette": ["red"]}}`,
	}
	for name, body := range cases {
		if _, err := LoadConfig(writeConfig(t, body)); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "news"}
	if got := p.DSN(); got != "postgres://u:p@db:5432/news?sslmode=disable" {
		t.Fatalf("unexpected dsn %q", got)
	}
	p.URL = "postgres://override"
	if p.DSN() != "postgres://override" {
		t.Fatalf("expected url to win")
	}
}
