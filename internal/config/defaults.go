package config

// DefaultConfigYAML contains the default configuration YAML content,
// written by `cctakt init` and used for the bundled global config.
const DefaultConfigYAML = `# cctakt configuration
# Values not specified here use sensible defaults.

log:
  level: info
  format: auto
  file: ""

agents:
  default: claude

  claude:
    enabled: true
    path: claude
    model: ""

  gemini:
    enabled: false
    path: gemini
    model: ""

  codex:
    enabled: false
    path: codex
    model: ""

  copilot:
    enabled: false
    path: copilot
    model: ""

git:
  worktree_dir: .worktrees
  auto_clean: true
  integration_branch: main

github:
  remote: origin
  # token: set via GITHUB_TOKEN env var, not this file

workflow:
  merge_max_turns: 6
  build_max_turns: 10
  idle_threshold: 45s

tui:
  theme: default
  tick_rate: 16ms
`
