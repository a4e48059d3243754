package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func runGitT(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
	return string(out)
}

func setupMergeRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	runGitT(t, dir, "init", "-b", "main")
	runGitT(t, dir, "config", "user.email", "test@test.com")
	runGitT(t, dir, "config", "user.name", "Test User")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello\n"), 0o644))
	runGitT(t, dir, "add", ".")
	runGitT(t, dir, "commit", "-m", "init", "--no-gpg-sign")
	return dir
}

func TestParseDiffStatFull(t *testing.T) {
	stat := "\n src/main.rs | 10 +++++-----\n src/lib.rs  | 20 ++++++++++++++++++++\n 2 files changed, 25 insertions(+), 5 deletions(-)\n"
	files, ins, del := ParseDiffStat(stat)
	require.Equal(t, 2, files)
	require.Equal(t, 25, ins)
	require.Equal(t, 5, del)
}

func TestParseDiffStatInsertionsOnly(t *testing.T) {
	stat := "\n src/new.rs | 50 +++++++\n 1 file changed, 50 insertions(+)\n"
	files, ins, del := ParseDiffStat(stat)
	require.Equal(t, 1, files)
	require.Equal(t, 50, ins)
	require.Equal(t, 0, del)
}

func TestParseDiffStatDeletionsOnly(t *testing.T) {
	stat := "\n src/old.rs | 30 ------------------------------\n 1 file changed, 30 deletions(-)\n"
	files, ins, del := ParseDiffStat(stat)
	require.Equal(t, 1, files)
	require.Equal(t, 0, ins)
	require.Equal(t, 30, del)
}

func TestParseDiffStatEmpty(t *testing.T) {
	files, ins, del := ParseDiffStat("")
	require.Equal(t, 0, files)
	require.Equal(t, 0, ins)
	require.Equal(t, 0, del)
}

func TestMergeManagerPreviewAndMerge(t *testing.T) {
	dir := setupMergeRepo(t)
	ctx := context.Background()

	runGitT(t, dir, "checkout", "-b", "feat/test")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "feature.txt"), []byte("feature\n"), 0o644))
	runGitT(t, dir, "add", ".")
	runGitT(t, dir, "commit", "-m", "add feature", "--no-gpg-sign")
	runGitT(t, dir, "checkout", "main")

	mgr := NewMergeManager(dir)

	preview, err := mgr.Preview(ctx, "feat/test")
	require.NoError(t, err)
	require.Equal(t, 1, preview.FilesChanged)
	require.Equal(t, 1, preview.Insertions)
	require.Empty(t, preview.Conflicts)

	require.NoError(t, mgr.MergeNoFF(ctx, "feat/test", ""))

	found, err := mgr.MergeCommitExists(ctx, "feat/test")
	require.NoError(t, err)
	require.True(t, found)
}

func TestMergeManagerWithMainBranch(t *testing.T) {
	mgr := NewMergeManager("/tmp/test-repo").WithMainBranch("master")
	require.Equal(t, "master", mgr.MainBranch())
}
