package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cctakt/cctakt/internal/adapters/git"
	"github.com/cctakt/cctakt/internal/agent"
	"github.com/cctakt/cctakt/internal/core"
	"github.com/cctakt/cctakt/internal/logging"
	"github.com/cctakt/cctakt/internal/plan"
	"github.com/cctakt/cctakt/internal/stream"
)

var runCmd = &cobra.Command{
	Use:   "run <plan-file>",
	Short: "Run a plan's create_worker tasks without the terminal UI",
	Long: `Execute every pending create_worker task in a plan file sequentially,
streaming [SYS]/[AI]/[RESULT]-prefixed lines to stdout as each worker runs.
Other action types are left untouched: create_pr, merge_branch, and
request_review tasks need the terminal UI's review gate and are not
applicable in one-shot mode.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlanOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runPlanOnce(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, loader, err := loadConfig()
	if err != nil {
		return err
	}
	agentCfg := cfg.Agents.GetAgentConfig(cfg.Agents.Default)
	if agentCfg == nil || !agentCfg.Enabled {
		return fmt.Errorf("default agent %q is not configured or not enabled", cfg.Agents.Default)
	}

	planPath := args[0]
	fmt.Println("Loading plan from:", planPath)

	store := plan.Open(planPath)
	p, err := store.Load()
	if err != nil {
		return fmt.Errorf("reading plan file: %w", err)
	}
	if p == nil {
		return fmt.Errorf("plan file not found: %s", planPath)
	}

	fmt.Printf("Plan: %s\n", orDefault(p.Description, "(no description)"))
	fmt.Printf("Tasks: %d\n\n", len(p.Tasks))

	wt, err := git.NewWorktreeManager(loader.ProjectDir())
	if err != nil {
		return fmt.Errorf("initializing worktree manager: %w", err)
	}

	logger := logging.New(logging.DefaultConfig())

	for i := range p.Tasks {
		task := &p.Tasks[i]
		runCreateWorkerTask(ctx, logger.WithTask(task.ID), task, wt, cfg.Git.WorktreeDir, agentCfg.Path)
	}

	if err := store.Save(p); err != nil {
		return fmt.Errorf("saving plan: %w", err)
	}
	fmt.Println("Plan saved to:", store.Path())
	return nil
}

func runCreateWorkerTask(ctx context.Context, logger *logging.Logger, task *core.Task, wt *git.WorktreeManager, worktreeDir, bin string) {
	action, ok := task.Action.(core.CreateWorkerAction)
	if task.Status != core.TaskStatusPending {
		fmt.Printf("[%s] Skipping (status: %s)\n", task.ID, task.Status)
		return
	}
	if !ok {
		fmt.Printf("[%s] Skipping (not a create_worker task)\n", task.ID)
		return
	}
	logger.Info("starting worker", "branch", action.Branch)

	fmt.Println(strings.Repeat("=", 40))
	fmt.Printf("[%s] Starting worker\n", task.ID)
	fmt.Printf("Branch: %s\n", action.Branch)
	fmt.Printf("Task: %s\n", firstLine(action.TaskDescription))
	fmt.Println(strings.Repeat("=", 40))

	worktreePath, err := wt.Create(ctx, action.Branch, worktreeDir)
	if err != nil {
		logger.Error("failed to create worktree", "error", err)
		task.Status = core.TaskStatusFailed
		task.Error = "failed to create worktree: " + err.Error()
		return
	}
	fmt.Println("Created worktree:", worktreePath)
	task.Status = core.TaskStatusRunning

	fmt.Println("\n--- Worker output ---")
	w, err := agent.NewWorker(0, action.Branch, worktreePath, bin, action.TaskDescription, 0)
	if err != nil {
		task.Status = core.TaskStatusFailed
		task.Error = "failed to spawn worker: " + err.Error()
		return
	}

	printed := 0
	for !w.Completed() && w.ProcessStatus != core.ProcessEnded {
		time.Sleep(100 * time.Millisecond)
		printed = printNewEvents(w.Events(), printed)
		w.TryWait()
	}
	printNewEvents(w.Events(), printed)
	_ = w.Close()

	commits := git.WorkerCommits(ctx, worktreePath)
	fmt.Printf("\n--- Worker finished ---\nCommits: %d\n", len(commits))
	for _, c := range commits {
		fmt.Println("  -", c)
	}

	if w.Error != "" {
		logger.Error("worker finished with error", "error", w.Error)
		task.Status = core.TaskStatusFailed
		task.Error = w.Error
	} else {
		logger.Info("worker finished", "commits", len(commits))
		task.Status = core.TaskStatusCompleted
		task.Result = &core.TaskResult{Commits: commits}
	}
	fmt.Println()
}

func printNewEvents(events []stream.Event, from int) int {
	for _, ev := range events[from:] {
		switch ev.Type {
		case stream.EventSystem:
			fmt.Printf("[SYS] %s\n", ev.Subtype)
		case stream.EventAssistant:
			if ev.Message == nil {
				continue
			}
			for _, block := range ev.Message.Content {
				if block.Type != stream.BlockText {
					continue
				}
				preview := []rune(strings.ReplaceAll(block.Text, "\n", " "))
				if len(preview) > 100 {
					preview = preview[:100]
				}
				if strings.TrimSpace(string(preview)) != "" {
					fmt.Printf("[AI] %s...\n", string(preview))
				}
			}
		case stream.EventResult:
			fmt.Printf("[RESULT] %s\n", ev.Subtype)
		}
	}
	return len(events)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
