package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoaderDefaultsWithNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	defer os.Chdir(wd)
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	l := NewLoader()
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Agents.Default != "claude" {
		t.Errorf("Agents.Default = %q, want claude", cfg.Agents.Default)
	}
	if !cfg.Agents.Claude.Enabled {
		t.Error("Agents.Claude.Enabled = false, want true")
	}
	if cfg.Git.IntegrationBranch != "main" {
		t.Errorf("Git.IntegrationBranch = %q, want main", cfg.Git.IntegrationBranch)
	}
	if cfg.Workflow.MergeMaxTurns != 6 {
		t.Errorf("Workflow.MergeMaxTurns = %d, want 6", cfg.Workflow.MergeMaxTurns)
	}
	if cfg.TUI.TickRate != "16ms" {
		t.Errorf("TUI.TickRate = %q, want 16ms", cfg.TUI.TickRate)
	}
}

func TestLoaderReadsProjectConfigFile(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	defer os.Chdir(wd)
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	if err := os.MkdirAll(filepath.Join(dir, ".cctakt"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := "log:\n  level: debug\nagents:\n  default: codex\n  codex:\n    enabled: true\n    path: codex\ngit:\n  integration_branch: trunk\n"
	if err := os.WriteFile(filepath.Join(dir, ".cctakt", "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader()
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Agents.Default != "codex" {
		t.Errorf("Agents.Default = %q, want codex", cfg.Agents.Default)
	}
	if cfg.Git.IntegrationBranch != "trunk" {
		t.Errorf("Git.IntegrationBranch = %q, want trunk", cfg.Git.IntegrationBranch)
	}
	// unset fields keep their defaults
	if cfg.Workflow.BuildMaxTurns != 10 {
		t.Errorf("Workflow.BuildMaxTurns = %d, want 10", cfg.Workflow.BuildMaxTurns)
	}
}

func TestLoaderEnvOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	defer os.Chdir(wd)
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CCTAKT_LOG_LEVEL", "error")

	l := NewLoader()
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want error (from env)", cfg.Log.Level)
	}
}

func TestLoaderResolvesGitHubTokenFromEnv(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	defer os.Chdir(wd)
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GITHUB_TOKEN", "ghp_testtoken")

	l := NewLoader()
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.GitHub.Token != "ghp_testtoken" {
		t.Errorf("GitHub.Token = %q, want ghp_testtoken", cfg.GitHub.Token)
	}
}

func TestLoaderExplicitConfigFileTakesPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader().WithConfigFile(path)
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
}

func TestLoaderResolvesRelativeWorktreeDir(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	defer os.Chdir(wd)
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	l := NewLoader()
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	want := filepath.Join(dir, ".worktrees")
	if cfg.Git.WorktreeDir != want {
		t.Errorf("Git.WorktreeDir = %q, want %q", cfg.Git.WorktreeDir, want)
	}
}
