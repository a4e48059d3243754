package config

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every ValidationError found in one pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	parts := make([]string, len(e))
	for i, err := range e {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "; ")
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
var validLogFormats = map[string]bool{"auto": true, "text": true, "json": true}

// Validator checks a Config for internal consistency beyond what
// mapstructure unmarshaling already enforces.
type Validator struct{}

// NewValidator returns a ready-to-use Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate runs every section's checks and returns the accumulated errors,
// or nil if the configuration is valid.
func (v *Validator) Validate(cfg *Config) error {
	var errs ValidationErrors
	errs = append(errs, v.validateLog(&cfg.Log)...)
	errs = append(errs, v.validateAgents(&cfg.Agents)...)
	errs = append(errs, v.validateGit(&cfg.Git)...)
	errs = append(errs, v.validateGitHub(&cfg.GitHub)...)
	errs = append(errs, v.validateWorkflow(&cfg.Workflow)...)
	errs = append(errs, v.validateTUI(&cfg.TUI)...)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (v *Validator) validateLog(cfg *LogConfig) ValidationErrors {
	var errs ValidationErrors
	if cfg.Level != "" && !validLogLevels[strings.ToLower(cfg.Level)] {
		errs = append(errs, ValidationError{"log.level", fmt.Sprintf("must be one of debug, info, warn, error, got %q", cfg.Level)})
	}
	if cfg.Format != "" && !validLogFormats[strings.ToLower(cfg.Format)] {
		errs = append(errs, ValidationError{"log.format", fmt.Sprintf("must be one of auto, text, json, got %q", cfg.Format)})
	}
	return errs
}

func (v *Validator) validateAgents(cfg *AgentsConfig) ValidationErrors {
	var errs ValidationErrors
	if cfg.Default == "" {
		errs = append(errs, ValidationError{"agents.default", "is required"})
		return errs
	}
	agent := cfg.GetAgentConfig(cfg.Default)
	if agent == nil {
		errs = append(errs, ValidationError{"agents.default", fmt.Sprintf("references unknown agent %q", cfg.Default)})
		return errs
	}
	if !agent.Enabled {
		errs = append(errs, ValidationError{"agents.default", fmt.Sprintf("references disabled agent %q", cfg.Default)})
	}
	for _, name := range []string{"claude", "gemini", "codex", "copilot"} {
		a := cfg.GetAgentConfig(name)
		if a.Enabled && strings.TrimSpace(a.Path) == "" {
			errs = append(errs, ValidationError{"agents." + name + ".path", "is required when the agent is enabled"})
		}
	}
	return errs
}

func (v *Validator) validateGit(cfg *GitConfig) ValidationErrors {
	var errs ValidationErrors
	if strings.TrimSpace(cfg.WorktreeDir) == "" {
		errs = append(errs, ValidationError{"git.worktree_dir", "is required"})
	}
	if strings.TrimSpace(cfg.IntegrationBranch) == "" {
		errs = append(errs, ValidationError{"git.integration_branch", "is required"})
	}
	return errs
}

func (v *Validator) validateGitHub(cfg *GitHubConfig) ValidationErrors {
	var errs ValidationErrors
	if strings.TrimSpace(cfg.Remote) == "" {
		errs = append(errs, ValidationError{"github.remote", "is required"})
	}
	return errs
}

func (v *Validator) validateWorkflow(cfg *WorkflowConfig) ValidationErrors {
	var errs ValidationErrors
	if cfg.MergeMaxTurns <= 0 {
		errs = append(errs, ValidationError{"workflow.merge_max_turns", "must be positive"})
	}
	if cfg.BuildMaxTurns <= 0 {
		errs = append(errs, ValidationError{"workflow.build_max_turns", "must be positive"})
	}
	if _, err := time.ParseDuration(cfg.IdleThreshold); cfg.IdleThreshold != "" && err != nil {
		errs = append(errs, ValidationError{"workflow.idle_threshold", fmt.Sprintf("not a valid duration: %v", err)})
	}
	return errs
}

func (v *Validator) validateTUI(cfg *TUIConfig) ValidationErrors {
	var errs ValidationErrors
	if _, err := time.ParseDuration(cfg.TickRate); cfg.TickRate != "" && err != nil {
		errs = append(errs, ValidationError{"tui.tick_rate", fmt.Sprintf("not a valid duration: %v", err)})
	}
	return errs
}

// Validate is the package-level entrypoint Load's callers use after reading
// a Config, e.g. `cfg, err := loader.Load(); ...; err = config.Validate(cfg)`.
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}
