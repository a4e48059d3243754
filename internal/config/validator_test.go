package config

import "testing"

func validConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "auto"},
		Agents: AgentsConfig{
			Default: "claude",
			Claude:  AgentConfig{Enabled: true, Path: "claude"},
		},
		Git: GitConfig{
			WorktreeDir:       ".worktrees",
			IntegrationBranch: "main",
		},
		GitHub: GitHubConfig{Remote: "origin"},
		Workflow: WorkflowConfig{
			MergeMaxTurns: 6,
			BuildMaxTurns: 10,
			IdleThreshold: "45s",
		},
		TUI: TUIConfig{TickRate: "16ms"},
	}
}

func TestValidatorAcceptsDefaultConfig(t *testing.T) {
	if err := NewValidator().Validate(validConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidatorRejectsBadLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Log.Level = "verbose"
	if err := NewValidator().Validate(cfg); err == nil {
		t.Fatal("expected error for invalid log level")
	}
}

func TestValidatorRejectsMissingDefaultAgent(t *testing.T) {
	cfg := validConfig()
	cfg.Agents.Default = ""
	if err := NewValidator().Validate(cfg); err == nil {
		t.Fatal("expected error for missing agents.default")
	}
}

func TestValidatorRejectsUnknownDefaultAgent(t *testing.T) {
	cfg := validConfig()
	cfg.Agents.Default = "opencode"
	if err := NewValidator().Validate(cfg); err == nil {
		t.Fatal("expected error for unknown default agent")
	}
}

func TestValidatorRejectsDisabledDefaultAgent(t *testing.T) {
	cfg := validConfig()
	cfg.Agents.Claude.Enabled = false
	if err := NewValidator().Validate(cfg); err == nil {
		t.Fatal("expected error for disabled default agent")
	}
}

func TestValidatorRejectsEnabledAgentWithoutPath(t *testing.T) {
	cfg := validConfig()
	cfg.Agents.Gemini = AgentConfig{Enabled: true, Path: ""}
	if err := NewValidator().Validate(cfg); err == nil {
		t.Fatal("expected error for enabled agent missing path")
	}
}

func TestValidatorRejectsEmptyWorktreeDir(t *testing.T) {
	cfg := validConfig()
	cfg.Git.WorktreeDir = ""
	if err := NewValidator().Validate(cfg); err == nil {
		t.Fatal("expected error for empty git.worktree_dir")
	}
}

func TestValidatorRejectsEmptyIntegrationBranch(t *testing.T) {
	cfg := validConfig()
	cfg.Git.IntegrationBranch = ""
	if err := NewValidator().Validate(cfg); err == nil {
		t.Fatal("expected error for empty git.integration_branch")
	}
}

func TestValidatorRejectsEmptyGitHubRemote(t *testing.T) {
	cfg := validConfig()
	cfg.GitHub.Remote = ""
	if err := NewValidator().Validate(cfg); err == nil {
		t.Fatal("expected error for empty github.remote")
	}
}

func TestValidatorRejectsNonPositiveTurnBudgets(t *testing.T) {
	cfg := validConfig()
	cfg.Workflow.MergeMaxTurns = 0
	if err := NewValidator().Validate(cfg); err == nil {
		t.Fatal("expected error for non-positive merge_max_turns")
	}

	cfg = validConfig()
	cfg.Workflow.BuildMaxTurns = -1
	if err := NewValidator().Validate(cfg); err == nil {
		t.Fatal("expected error for non-positive build_max_turns")
	}
}

func TestValidatorRejectsBadDurations(t *testing.T) {
	cfg := validConfig()
	cfg.Workflow.IdleThreshold = "soon"
	if err := NewValidator().Validate(cfg); err == nil {
		t.Fatal("expected error for invalid idle_threshold")
	}

	cfg = validConfig()
	cfg.TUI.TickRate = "fast"
	if err := NewValidator().Validate(cfg); err == nil {
		t.Fatal("expected error for invalid tick_rate")
	}
}

func TestValidateHelperWrapsValidator(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
