// Package git adapts the cctakt worktree and merge vocabulary onto the git
// CLI, invoked as a child process exactly as the supervisor's other
// collaborators are.
package git

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cctakt/cctakt/internal/core"
)

// maxBranchSuffix bounds the dedup loop in GenerateUniqueBranch.
const maxBranchSuffix = 1000

// WorktreeInfo is one entry from `git worktree list --porcelain`.
type WorktreeInfo struct {
	Path     string
	Branch   string
	IsMain   bool
}

// WorktreeManager wraps `git worktree` operations for one repository.
type WorktreeManager struct {
	repoPath string
	timeout  time.Duration
}

// NewWorktreeManager verifies repoPath is a git repository and returns a
// manager scoped to it.
func NewWorktreeManager(repoPath string) (*WorktreeManager, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, core.ErrValidation("INVALID_PATH", err.Error())
	}
	m := &WorktreeManager{repoPath: abs, timeout: 30 * time.Second}
	if _, err := m.run(context.Background(), "rev-parse", "--git-dir"); err != nil {
		return nil, core.ErrValidation("NOT_GIT_REPO", "not a git repository: "+abs)
	}
	return m, nil
}

// RepoPath returns the repository root this manager operates on.
func (m *WorktreeManager) RepoPath() string {
	return m.repoPath
}

func (m *WorktreeManager) run(ctx context.Context, args ...string) (string, error) {
	return runGit(ctx, m.repoPath, m.timeout, args...)
}

// SanitizeBranchName keeps alphanumerics, '-', '_', '/'; maps spaces to '-'
// and everything else to '_'.
func SanitizeBranchName(name string) string {
	var b strings.Builder
	for _, c := range name {
		switch {
		case isAlnum(c) || c == '-' || c == '_' || c == '/':
			b.WriteRune(c)
		case c == ' ':
			b.WriteByte('-')
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func isAlnum(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// BranchExists reports whether refs/heads/<branch> exists. A non-zero exit
// from `rev-parse --verify` means "does not exist", not a failure to
// report upward.
func (m *WorktreeManager) BranchExists(ctx context.Context, branch string) (bool, error) {
	_, err := m.run(ctx, "rev-parse", "--verify", "refs/heads/"+branch)
	return err == nil, nil
}

// GenerateUniqueBranch returns baseName unchanged if free, otherwise appends
// "-2", "-3", ... up to maxBranchSuffix before giving up.
func (m *WorktreeManager) GenerateUniqueBranch(ctx context.Context, baseName string) (string, error) {
	exists, err := m.BranchExists(ctx, baseName)
	if err != nil {
		return "", err
	}
	if !exists {
		return baseName, nil
	}
	for counter := 2; counter <= maxBranchSuffix; counter++ {
		candidate := baseName + "-" + strconv.Itoa(counter)
		exists, err := m.BranchExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", core.ErrConflict(core.CodeBranchExhausted, "failed to generate unique branch name for: "+baseName)
}

// Create sanitises branch, resolves a unique branch name, ensures baseDir
// exists, and runs `git worktree add -b <unique> <target>`. baseDir may be
// relative (resolved against the repo root) or absolute. Returns the
// worktree's path.
func (m *WorktreeManager) Create(ctx context.Context, branch, baseDir string) (string, error) {
	safeBranch := SanitizeBranchName(branch)
	uniqueBranch, err := m.GenerateUniqueBranch(ctx, safeBranch)
	if err != nil {
		return "", err
	}

	basePath := baseDir
	if !filepath.IsAbs(basePath) {
		basePath = filepath.Join(m.repoPath, baseDir)
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return "", core.ErrExecution(core.CodeGitFailed, "failed to create base directory: "+err.Error())
	}

	worktreeName := strings.ReplaceAll(uniqueBranch, "/", "-")
	worktreePath := filepath.Join(basePath, worktreeName)

	if _, err := m.run(ctx, "worktree", "add", "-b", uniqueBranch, worktreePath); err != nil {
		return "", err
	}
	return worktreePath, nil
}

// Remove runs `git worktree remove --force <path>` and best-effort removes
// the parent directory if it ends up empty.
func (m *WorktreeManager) Remove(ctx context.Context, path string) error {
	if _, err := m.run(ctx, "worktree", "remove", "--force", path); err != nil {
		return err
	}
	parent := filepath.Dir(path)
	if entries, err := os.ReadDir(parent); err == nil && len(entries) == 0 {
		_ = os.Remove(parent)
	}
	return nil
}

// List parses `git worktree list --porcelain`.
func (m *WorktreeManager) List(ctx context.Context) ([]WorktreeInfo, error) {
	out, err := m.run(ctx, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}

	var result []WorktreeInfo
	var path, branch string
	have := false
	flush := func() {
		if have {
			result = append(result, WorktreeInfo{Path: path, Branch: branch, IsMain: path == m.repoPath})
		}
		path, branch, have = "", "", false
	}
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "worktree "):
			flush()
			path = strings.TrimPrefix(line, "worktree ")
			have = true
		case strings.HasPrefix(line, "branch refs/heads/"):
			branch = strings.TrimPrefix(line, "branch refs/heads/")
		case line == "":
			flush()
		}
	}
	flush()
	return result, nil
}
