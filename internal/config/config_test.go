package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `[dispatch]
agents_path = "data/agents.csv"
tasks_path = "data/tasks.csv"
output_path = "data/decisions.csv"
history_db = "data/history.db"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Dispatch.AgentsPath != "data/agents.csv" {
		t.Fatalf("unexpected agents_path: %q", cfg.Dispatch.AgentsPath)
	}
	if cfg.Dispatch.HistoryDB != "data/history.db" {
		t.Fatalf("unexpected history_db: %q", cfg.Dispatch.HistoryDB)
	}
	if cfg.Path != filepath.Clean(path) {
		t.Fatalf("config path not recorded: %q", cfg.Path)
	}
	if cfg.Raw == nil {
		t.Fatalf("raw config not captured")
	}
}

func TestLoadExplicitPathMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
}

func TestLoadRejectsInvalidToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[dispatch\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected decode error")
	}
}
