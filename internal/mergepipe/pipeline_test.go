package mergepipe

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/cctakt/cctakt/internal/agent"
	"github.com/cctakt/cctakt/internal/core"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		require.NoError(t, cmd.Run())
	}
	run("init", "-b", "main")
	run("config", "user.email", "a@b.c")
	run("config", "user.name", "tester")
	require.NoError(t, exec.Command("sh", "-c", "echo hi > "+filepath.Join(dir, "f.txt")).Run())
	run("add", ".")
	run("commit", "-m", "init")
	return dir
}

func TestPipelineEnqueueStartsProcessing(t *testing.T) {
	repo := setupRepo(t)
	registry := agent.NewRegistry()

	var notified []string
	notify := func(msg string, level core.NotifyLevel) { notified = append(notified, msg) }

	spawnCalls := 0
	spawn := func(ctx context.Context, name, prompt string, maxTurns int) (int, error) {
		spawnCalls++
		id := registry.Add(&core.Agent{Name: name, Role: core.RoleWorker, ProcessStatus: core.ProcessRunning})
		return id, nil
	}

	p, err := New(repo, registry, spawn, notify, nil)
	require.NoError(t, err)

	p.Enqueue(context.Background(), core.MergeTask{Branch: "feat/x"})
	require.Equal(t, 1, spawnCalls)
	require.True(t, p.Busy())
	require.Contains(t, notified[0], "Merge queued")
}

func TestPipelineQueuesWhileBusy(t *testing.T) {
	repo := setupRepo(t)
	registry := agent.NewRegistry()
	notify := func(string, core.NotifyLevel) {}
	spawn := func(ctx context.Context, name, prompt string, maxTurns int) (int, error) {
		return registry.Add(&core.Agent{Name: name, Role: core.RoleWorker, ProcessStatus: core.ProcessRunning}), nil
	}
	p, err := New(repo, registry, spawn, notify, nil)
	require.NoError(t, err)

	p.Enqueue(context.Background(), core.MergeTask{Branch: "feat/x"})
	p.Enqueue(context.Background(), core.MergeTask{Branch: "feat/y"})
	require.Equal(t, 1, p.PendingCount())
}

func TestCheckCompletionFailureWhenNoMergeCommit(t *testing.T) {
	repo := setupRepo(t)
	registry := agent.NewRegistry()
	var notified []string
	notify := func(msg string, level core.NotifyLevel) { notified = append(notified, msg) }
	spawn := func(ctx context.Context, name, prompt string, maxTurns int) (int, error) {
		a := &core.Agent{Name: name, Role: core.RoleWorker, ProcessStatus: core.ProcessEnded}
		return registry.Add(a), nil
	}
	p, err := New(repo, registry, spawn, notify, nil)
	require.NoError(t, err)

	p.Enqueue(context.Background(), core.MergeTask{Branch: "feat/nonexistent"})
	p.CheckCompletion(context.Background())

	require.False(t, p.Busy())
	found := false
	for _, n := range notified {
		if n == "Merge failed: feat/nonexistent (merge worker could not complete)" {
			found = true
		}
	}
	require.True(t, found)
}

func TestCheckCompletionCompletesOriginatingTask(t *testing.T) {
	repo := setupRepo(t)
	registry := agent.NewRegistry()
	notify := func(string, core.NotifyLevel) {}
	spawn := func(ctx context.Context, name, prompt string, maxTurns int) (int, error) {
		a := &core.Agent{Name: name, Role: core.RoleWorker, ProcessStatus: core.ProcessEnded}
		return registry.Add(a), nil
	}

	var completedTaskID string
	var completedFailed bool
	completePlan := func(taskID string, failed bool, errMsg string) {
		completedTaskID = taskID
		completedFailed = failed
	}

	p, err := New(repo, registry, spawn, notify, completePlan)
	require.NoError(t, err)

	// A failing merge marks the originating task failed without ever
	// touching the worktree (there isn't one to remove).
	p.Enqueue(context.Background(), core.MergeTask{Branch: "feat/nonexistent", TaskID: "r-1"})
	p.CheckCompletion(context.Background())

	require.Equal(t, "r-1", completedTaskID)
	require.True(t, completedFailed)
}

func TestCheckCompletionCallsCompleterEvenWithoutTaskID(t *testing.T) {
	repo := setupRepo(t)
	registry := agent.NewRegistry()
	notify := func(string, core.NotifyLevel) {}
	spawn := func(ctx context.Context, name, prompt string, maxTurns int) (int, error) {
		a := &core.Agent{Name: name, Role: core.RoleWorker, ProcessStatus: core.ProcessEnded}
		return registry.Add(a), nil
	}

	var seenTaskID string
	seen := false
	completePlan := func(taskID string, failed bool, errMsg string) { seen, seenTaskID = true, taskID }

	p, err := New(repo, registry, spawn, notify, completePlan)
	require.NoError(t, err)

	// Merges queued directly (not via RequestReview) carry no TaskID;
	// Pipeline doesn't special-case that, it's on the completer to no-op.
	p.Enqueue(context.Background(), core.MergeTask{Branch: "feat/nonexistent"})
	p.CheckCompletion(context.Background())

	require.True(t, seen)
	require.Empty(t, seenTaskID)
}
