package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cctakt/cctakt/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a cctakt workspace",
	Long: `Initialize a cctakt workspace in the current directory: creates the
.cctakt state directory and a default config.yaml inside it.`,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing configuration")
}

func runInit(_ *cobra.Command, _ []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	stateDir := filepath.Join(cwd, ".cctakt")
	if err := os.MkdirAll(stateDir, 0o750); err != nil {
		return fmt.Errorf("creating .cctakt directory: %w", err)
	}

	legacyConfigPath := filepath.Join(cwd, ".cctakt.yaml")
	if _, err := os.Stat(legacyConfigPath); err == nil {
		fmt.Println("Note: found legacy config at .cctakt.yaml")
		fmt.Println("      consider moving it to .cctakt/config.yaml")
	}

	configPath := filepath.Join(stateDir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil && !initForce {
		return fmt.Errorf("configuration already exists at .cctakt/config.yaml, use --force to overwrite")
	}

	if err := os.WriteFile(configPath, []byte(config.DefaultConfigYAML), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	for _, dir := range []string{".cctakt/logs", ".cctakt/runs"} {
		if err := os.MkdirAll(filepath.Join(cwd, dir), 0o750); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	if err := writeOrchestratorTemplate(cwd); err != nil {
		fmt.Printf("Warning: could not write orchestrator command template: %v\n", err)
	}

	fmt.Println("Initialized cctakt workspace in", cwd)
	fmt.Println("Configuration file: .cctakt/config.yaml")
	fmt.Println("Run 'cctakt status' to check for an active plan, or 'cctakt' to launch the conductor.")

	return nil
}

// writeOrchestratorTemplate materialises the conductor's planning-command
// doc, the prompt the conductor reads to learn how to write plan.json
// tasks cctakt's plan engine understands.
func writeOrchestratorTemplate(cwd string) error {
	dir := filepath.Join(cwd, ".claude", "commands")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	path := filepath.Join(dir, "orchestrator.md")
	if _, err := os.Stat(path); err == nil && !initForce {
		return nil
	}
	return os.WriteFile(path, []byte(orchestratorTemplate), 0o600)
}

const orchestratorTemplate = `# Orchestrator

You are the conductor of a cctakt workspace. Break incoming work into
tasks and append them to ` + "`.cctakt/plan.json`" + ` instead of doing the work
yourself; cctakt's supervisor dispatches each task to a worker agent
running in its own git worktree, merges what a human reviewer approves,
and reports completions back here.

Task actions: create_worker, create_pr, merge_branch, cleanup_worktree,
notify, request_review. See the plan file's existing tasks for the shape
each one expects.
`
