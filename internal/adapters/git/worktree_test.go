package git

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
)

func setupTestRepo(t *testing.T) (string, *WorktreeManager) {
	t.Helper()
	dir := t.TempDir()

	runInit := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		require.NoError(t, cmd.Run())
	}
	runInit("init")
	runInit("config", "user.email", "test@test.com")
	runInit("config", "user.name", "Test User")
	runInit("commit", "--allow-empty", "-m", "init", "--no-gpg-sign")

	manager, err := NewWorktreeManager(dir)
	require.NoError(t, err)
	return dir, manager
}

func TestSanitizeBranchName(t *testing.T) {
	require.Equal(t, "feature/test", SanitizeBranchName("feature/test"))
	require.Equal(t, "feature-test", SanitizeBranchName("feature test"))
	require.Equal(t, "feature_test", SanitizeBranchName("feature@test"))
	require.Equal(t, "my-branch_name", SanitizeBranchName("my-branch_name"))
}

func TestNewWorktreeManagerFromGitRepo(t *testing.T) {
	dir, manager := setupTestRepo(t)
	require.Equal(t, dir, manager.RepoPath())
}

func TestNewWorktreeManagerFromNonGitRepo(t *testing.T) {
	dir := t.TempDir()
	_, err := NewWorktreeManager(dir)
	require.Error(t, err)
}

func TestBranchExists(t *testing.T) {
	_, manager := setupTestRepo(t)
	ctx := context.Background()

	exists, err := manager.BranchExists(ctx, "nonexistent-branch")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestGenerateUniqueBranch(t *testing.T) {
	dir, manager := setupTestRepo(t)
	ctx := context.Background()

	branch1, err := manager.GenerateUniqueBranch(ctx, "feature")
	require.NoError(t, err)
	require.Equal(t, "feature", branch1)

	_, err = manager.Create(ctx, branch1, dir)
	require.NoError(t, err)

	branch2, err := manager.GenerateUniqueBranch(ctx, "feature")
	require.NoError(t, err)
	require.Equal(t, "feature-2", branch2)
}

func TestCreateAndListWorktree(t *testing.T) {
	dir, manager := setupTestRepo(t)
	ctx := context.Background()

	initial, err := manager.List(ctx)
	require.NoError(t, err)
	require.Len(t, initial, 1)
	require.True(t, initial[0].IsMain)

	wtPath, err := manager.Create(ctx, "test-branch", dir)
	require.NoError(t, err)
	require.DirExists(t, wtPath)

	list, err := manager.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	var created *WorktreeInfo
	for i := range list {
		if !list[i].IsMain {
			created = &list[i]
		}
	}
	require.NotNil(t, created)
	require.Equal(t, "test-branch", created.Branch)
}

func TestCreateAndRemoveWorktree(t *testing.T) {
	dir, manager := setupTestRepo(t)
	ctx := context.Background()

	wtPath, err := manager.Create(ctx, "test-branch", dir)
	require.NoError(t, err)
	require.DirExists(t, wtPath)

	require.NoError(t, manager.Remove(ctx, wtPath))
	require.NoDirExists(t, wtPath)

	list, err := manager.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestCreateWithRelativeBaseDir(t *testing.T) {
	_, manager := setupTestRepo(t)
	ctx := context.Background()

	wtPath, err := manager.Create(ctx, "feature/new", ".worktrees")
	require.NoError(t, err)
	require.DirExists(t, wtPath)
	require.Contains(t, wtPath, "feature-new")

	require.NoError(t, manager.Remove(ctx, wtPath))
}
