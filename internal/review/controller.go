// Package review implements the review controller (C10): gathering a
// worktree's diff/commit-log/merge-preview, and the two outcomes a
// reviewer can choose — enqueue the merge, or cancel back to Normal mode.
package review

import (
	"context"
	"os/exec"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/cctakt/cctakt/internal/adapters/git"
	"github.com/cctakt/cctakt/internal/core"
)

// Controller gathers review data from a worktree and repo root, and
// builds the MergeTask handed to the merge pipeline on confirm.
type Controller struct {
	repoPath string
	merger   *git.MergeManager
}

// New returns a Controller rooted at repoPath (the main working tree the
// branch would be merged into).
func New(repoPath string) *Controller {
	return &Controller{repoPath: repoPath, merger: git.NewMergeManager(repoPath)}
}

// Start gathers the diff, commit log, and merge preview for worktreePath
// (whose actual branch is read from git, since the worktree's directory
// name has '/' replaced with '-') and returns the populated ReviewState.
// agentIndex identifies the worker agent being reviewed, or -1 if the
// review was triggered without one (e.g. RequestReview against an
// existing branch).
func (c *Controller) Start(ctx context.Context, agentIndex int, worktreePath string) (*core.ReviewState, error) {
	branch := currentBranch(worktreePath)

	// Diff, commit log, and merge preview are three independent read-only
	// git plumbing calls against the same worktree; gathering them
	// concurrently instead of sequentially keeps entering a review from
	// stalling the tick loop on the slowest of the three. None of these
	// are fatal to the review on their own (a failed diff still shows a
	// commit log), so each goroutine swallows its own error into a
	// fallback rather than failing the group.
	var diff string
	var commits []string
	var filesChanged, insertions, deletions int
	var conflicts []string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if d, err := c.merger.Diff(gctx, branch); err == nil {
			diff = d
		}
		return nil
	})
	g.Go(func() error {
		commits = commitLog(worktreePath)
		return nil
	})
	g.Go(func() error {
		if preview, err := c.merger.Preview(gctx, branch); err == nil {
			filesChanged, insertions, deletions, conflicts = preview.FilesChanged, preview.Insertions, preview.Deletions, preview.Conflicts
		}
		return nil
	})
	_ = g.Wait()

	return &core.ReviewState{
		AgentIndex:   agentIndex,
		Branch:       branch,
		WorktreePath: worktreePath,
		DiffView:     diff,
		CommitLog:    commits,
		FilesChanged: filesChanged,
		Insertions:   insertions,
		Deletions:    deletions,
		Conflicts:    conflicts,
	}, nil
}

// Confirm builds the MergeTask to enqueue from an active review, carrying
// forward the originating plan task id (if any) so the plan engine can
// mark it completed once the merge lands.
func Confirm(r *core.ReviewState) core.MergeTask {
	return core.MergeTask{
		Branch:       r.Branch,
		WorktreePath: r.WorktreePath,
		TaskID:       r.PendingReviewTaskID,
	}
}

func currentBranch(worktreePath string) string {
	out, err := exec.Command("git", "-C", worktreePath, "branch", "--show-current").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

// commitLog returns `git log --oneline main..HEAD` from worktreePath,
// falling back to `master..HEAD`, and finally the last 10 commits if both
// are empty (a worktree whose base branch isn't named main or master).
func commitLog(worktreePath string) []string {
	if lines := oneline(worktreePath, "main..HEAD"); len(lines) > 0 {
		return lines
	}
	if lines := oneline(worktreePath, "master..HEAD"); len(lines) > 0 {
		return lines
	}
	return onelineArgs(worktreePath, "-n", "10")
}

func oneline(worktreePath, rangeSpec string) []string {
	return onelineArgs(worktreePath, rangeSpec)
}

func onelineArgs(worktreePath string, args ...string) []string {
	full := append([]string{"-C", worktreePath, "log", "--oneline"}, args...)
	out, err := exec.Command("git", full...).Output()
	if err != nil {
		return nil
	}
	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}
