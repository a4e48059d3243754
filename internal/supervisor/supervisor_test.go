package supervisor

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/cctakt/cctakt/internal/agent"
	"github.com/cctakt/cctakt/internal/core"
	"github.com/cctakt/cctakt/internal/plan"
	"github.com/cctakt/cctakt/internal/tui"
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

func newTestSupervisor(t *testing.T) (*Supervisor, string) {
	t.Helper()
	repo := setupRepo(t)
	registry := agent.NewRegistry()
	output := tui.NewTUIOutput()
	store := plan.New(repo)
	s, err := New(Config{RepoPath: repo, WorktreeDir: filepath.Join(repo, ".worktrees"), WorkerBin: "true"}, registry, output, store)
	require.NoError(t, err)
	return s, repo
}

func TestAgentForTaskTracksSpawnedWorker(t *testing.T) {
	s, _ := newTestSupervisor(t)
	a := &core.Agent{Role: core.RoleWorker, ProcessStatus: core.ProcessRunning, Branch: "feat/x"}
	id := s.Registry.Add(a)
	s.taskAgents["w-1"] = id

	got, ok := s.AgentForTask("w-1")
	require.True(t, ok)
	require.Equal(t, id, got)

	_, ok = s.AgentForTask("w-missing")
	require.False(t, ok)
}

func TestAgentForWorktreeNameMatchesBranchOrDirName(t *testing.T) {
	s, _ := newTestSupervisor(t)
	a := &core.Agent{Role: core.RoleWorker, ProcessStatus: core.ProcessRunning, Branch: "feat/x", WorktreePath: "/worktrees/feat-x"}
	id := s.Registry.Add(a)

	got, ok := s.AgentForWorktreeName("feat/x")
	require.True(t, ok)
	require.Equal(t, id, got)

	got, ok = s.AgentForWorktreeName("feat-x")
	require.True(t, ok)
	require.Equal(t, id, got)

	_, ok = s.AgentForWorktreeName("nope")
	require.False(t, ok)
}

func TestAgentEndedReapsSuccessfulWorkerAndRemovesMapping(t *testing.T) {
	s, repo := newTestSupervisor(t)
	a := &core.Agent{Role: core.RoleWorker, ProcessStatus: core.ProcessEnded, WorktreePath: repo}
	id := s.Registry.Add(a)
	s.taskAgents["w-1"] = id

	ended, errMsg, commits, ok := s.AgentEnded(id)
	require.True(t, ok)
	require.True(t, ended)
	require.Empty(t, errMsg)
	require.Len(t, commits, 1)
	require.Contains(t, commits[0], "init")

	_, stillTracked := s.taskAgents["w-1"]
	require.False(t, stillTracked)
	require.Nil(t, s.Registry.Get(id))
}

func TestAgentEndedReportsNotYetEnded(t *testing.T) {
	s, _ := newTestSupervisor(t)
	a := &core.Agent{Role: core.RoleWorker, ProcessStatus: core.ProcessRunning}
	id := s.Registry.Add(a)

	ended, _, _, ok := s.AgentEnded(id)
	require.True(t, ok)
	require.False(t, ended)
	require.NotNil(t, s.Registry.Get(id))
}

func TestAgentEndedUnknownAgent(t *testing.T) {
	s, _ := newTestSupervisor(t)
	_, _, _, ok := s.AgentEnded(999)
	require.False(t, ok)
}

func TestWorktreeExistsFindsDirOnDisk(t *testing.T) {
	s, repo := newTestSupervisor(t)
	branch := "feat/on-disk"
	worktreeDir := filepath.Join(repo, ".worktrees")
	wtPath := filepath.Join(worktreeDir, branch)
	require.NoError(t, exec.Command("mkdir", "-p", wtPath).Run())
	s.worktreeDir = worktreeDir

	path, ok := s.WorktreeExists(branch)
	require.True(t, ok)
	require.Equal(t, wtPath, path)

	_, ok = s.WorktreeExists("feat/absent")
	require.False(t, ok)
}

func TestSpawnPlanWorkerRecordsTaskMapping(t *testing.T) {
	s, repo := newTestSupervisor(t)

	id, err := s.spawnPlanWorker(context.Background(), "w-1", "feat/y", repo, "do the work")
	require.NoError(t, err)

	mapped, ok := s.taskAgents["w-1"]
	require.True(t, ok)
	require.Equal(t, id, mapped)

	a := s.Registry.Get(id)
	require.NotNil(t, a)
	require.Equal(t, "feat/y", a.Branch)
	require.Equal(t, repo, a.WorktreePath)
}

func TestConfirmAndCancelReviewClearOverlay(t *testing.T) {
	s, _ := newTestSupervisor(t)
	s.activeReview = &core.ReviewState{Branch: "feat/z", WorktreePath: "/tmp/x"}

	s.CancelReview()
	require.Nil(t, s.ActiveReview())

	s.activeReview = &core.ReviewState{Branch: "feat/z", WorktreePath: "/tmp/x"}
	s.ConfirmReview(context.Background())
	require.Nil(t, s.ActiveReview())
	require.True(t, s.pipeline.Busy())
}

func TestQuitLifecycle(t *testing.T) {
	s, _ := newTestSupervisor(t)
	require.False(t, s.ShouldQuit())
	s.Quit()
	require.True(t, s.ShouldQuit())
}
