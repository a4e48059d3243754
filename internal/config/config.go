package config

// Config holds all application configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Agents   AgentsConfig   `mapstructure:"agents"`
	Git      GitConfig      `mapstructure:"git"`
	GitHub   GitHubConfig   `mapstructure:"github"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
	TUI      TUIConfig      `mapstructure:"tui"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// AgentsConfig configures the CLI agents cctakt can spawn as workers, plus
// the interactive conductor binary.
type AgentsConfig struct {
	Default string      `mapstructure:"default"`
	Claude  AgentConfig `mapstructure:"claude"`
	Gemini  AgentConfig `mapstructure:"gemini"`
	Codex   AgentConfig `mapstructure:"codex"`
	Copilot AgentConfig `mapstructure:"copilot"`
}

// AgentConfig configures a single agent CLI.
type AgentConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	Model   string `mapstructure:"model"`
}

// GetAgentConfig returns the named agent's config, or nil if name isn't one
// of the four supported CLIs.
func (a *AgentsConfig) GetAgentConfig(name string) *AgentConfig {
	switch name {
	case "claude":
		return &a.Claude
	case "gemini":
		return &a.Gemini
	case "codex":
		return &a.Codex
	case "copilot":
		return &a.Copilot
	default:
		return nil
	}
}

// GitConfig configures worktree and integration-branch handling.
type GitConfig struct {
	WorktreeDir       string `mapstructure:"worktree_dir"`
	AutoClean         bool   `mapstructure:"auto_clean"`
	IntegrationBranch string `mapstructure:"integration_branch"`
}

// GitHubConfig configures the GitHub collaborator used by CreatePr plan tasks.
type GitHubConfig struct {
	Token  string `mapstructure:"token"`
	Remote string `mapstructure:"remote"`
}

// WorkflowConfig bounds the turn budgets of the dedicated merge/build
// worker agents and the idle threshold used to infer an interactive
// agent's work state.
type WorkflowConfig struct {
	MergeMaxTurns int    `mapstructure:"merge_max_turns"`
	BuildMaxTurns int    `mapstructure:"build_max_turns"`
	IdleThreshold string `mapstructure:"idle_threshold"`
}

// TUIConfig configures the renderer.
type TUIConfig struct {
	Theme    string `mapstructure:"theme"`
	TickRate string `mapstructure:"tick_rate"`
}
