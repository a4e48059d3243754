package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkerCommitsAheadOfMain(t *testing.T) {
	dir := setupMergeRepo(t)
	runGitT(t, dir, "checkout", "-b", "feat/x")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f.txt"), []byte("hi\n"), 0o644))
	runGitT(t, dir, "add", ".")
	runGitT(t, dir, "commit", "-m", "add f.txt", "--no-gpg-sign")

	commits := WorkerCommits(context.Background(), dir)
	require.Len(t, commits, 1)
	require.Contains(t, commits[0], "add f.txt")
}

func TestWorkerCommitsNoneAheadFallsBackToRecent(t *testing.T) {
	dir := setupMergeRepo(t)
	commits := WorkerCommits(context.Background(), dir)
	require.Len(t, commits, 1)
	require.Contains(t, commits[0], "init")
}

func TestWorkerCommitsNonexistentDir(t *testing.T) {
	commits := WorkerCommits(context.Background(), "/nonexistent/path/that/does/not/exist")
	require.Nil(t, commits)
}
