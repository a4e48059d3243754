package git

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// MergePreview summarises what merging branch into the integration branch
// would do.
type MergePreview struct {
	Branch       string
	FilesChanged int
	Insertions   int
	Deletions    int
	Conflicts    []string
}

// MergeManager wraps the git operations the merge pipeline and review
// controller need: preview, diff, merge, and the small set of branch
// housekeeping wrappers.
type MergeManager struct {
	repoPath   string
	mainBranch string
	timeout    time.Duration
}

// NewMergeManager returns a manager scoped to repoPath with "main" as the
// default integration branch.
func NewMergeManager(repoPath string) *MergeManager {
	return &MergeManager{repoPath: repoPath, mainBranch: "main", timeout: 30 * time.Second}
}

// WithMainBranch overrides the integration branch (default "main").
func (m *MergeManager) WithMainBranch(branch string) *MergeManager {
	m.mainBranch = branch
	return m
}

// MainBranch returns the configured integration branch.
func (m *MergeManager) MainBranch() string {
	return m.mainBranch
}

func (m *MergeManager) run(ctx context.Context, args ...string) (string, error) {
	return runGit(ctx, m.repoPath, m.timeout, args...)
}

// Preview runs `git diff --stat <main>...<branch>`, parses the summary
// line, and computes the potential-conflict set.
func (m *MergeManager) Preview(ctx context.Context, branch string) (MergePreview, error) {
	diffStat, err := m.run(ctx, "diff", "--stat", m.mainBranch+"..."+branch)
	if err != nil {
		return MergePreview{}, err
	}
	files, ins, del := ParseDiffStat(diffStat)

	conflicts, err := m.checkConflicts(ctx, branch)
	if err != nil {
		return MergePreview{}, err
	}

	return MergePreview{
		Branch:       branch,
		FilesChanged: files,
		Insertions:   ins,
		Deletions:    del,
		Conflicts:    conflicts,
	}, nil
}

// checkConflicts returns the co-modified-file set: files touched on both
// main and branch since their merge base. This is a heuristic, not a
// definitive conflict computation — the user still reviews.
func (m *MergeManager) checkConflicts(ctx context.Context, branch string) ([]string, error) {
	mergeBase, err := m.run(ctx, "merge-base", m.mainBranch, branch)
	if err != nil {
		// No merge base: branches are unrelated, nothing to flag.
		return nil, nil
	}
	base := strings.TrimSpace(mergeBase)

	filesOnMain, _ := m.run(ctx, "diff", "--name-only", base+".."+m.mainBranch)
	filesOnBranch, _ := m.run(ctx, "diff", "--name-only", base+".."+branch)

	mainSet := make(map[string]bool)
	for _, f := range splitLines(filesOnMain) {
		mainSet[f] = true
	}

	var conflicts []string
	for _, f := range splitLines(filesOnBranch) {
		if mainSet[f] {
			conflicts = append(conflicts, f)
		}
	}
	return conflicts, nil
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Diff returns the full `git diff <main>...<branch>` text.
func (m *MergeManager) Diff(ctx context.Context, branch string) (string, error) {
	return m.run(ctx, "diff", m.mainBranch+"..."+branch)
}

// Merge runs a regular (possibly fast-forward) merge.
func (m *MergeManager) Merge(ctx context.Context, branch, message string) error {
	if message == "" {
		message = "Merge branch '" + branch + "' into " + m.mainBranch
	}
	_, err := m.run(ctx, "merge", branch, "-m", message)
	return err
}

// MergeNoFF forces a real merge commit, used by the merge pipeline so the
// commit can later be detected by `git log --grep`.
func (m *MergeManager) MergeNoFF(ctx context.Context, branch, message string) error {
	if message == "" {
		message = "Merge branch '" + branch + "' into " + m.mainBranch
	}
	_, err := m.run(ctx, "merge", "--no-ff", branch, "-m", message)
	return err
}

// Abort runs `git merge --abort`.
func (m *MergeManager) Abort(ctx context.Context) error {
	_, err := m.run(ctx, "merge", "--abort")
	return err
}

// DeleteBranch runs `git branch -d` (safe) or `-D` (force).
func (m *MergeManager) DeleteBranch(ctx context.Context, branch string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	_, err := m.run(ctx, "branch", flag, branch)
	return err
}

// ListBranches returns local branch names.
func (m *MergeManager) ListBranches(ctx context.Context) ([]string, error) {
	out, err := m.run(ctx, "branch", "--list", "--format=%(refname:short)")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// CurrentBranch returns the checked-out branch name.
func (m *MergeManager) CurrentBranch(ctx context.Context) (string, error) {
	out, err := m.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// BranchExists reports whether branch resolves to a ref.
func (m *MergeManager) BranchExists(ctx context.Context, branch string) bool {
	_, err := m.run(ctx, "rev-parse", "--verify", branch)
	return err == nil
}

// Checkout switches to branch.
func (m *MergeManager) Checkout(ctx context.Context, branch string) error {
	_, err := m.run(ctx, "checkout", branch)
	return err
}

// MergeCommitExists reports whether the integration branch's history
// contains a merge commit for branch, via the literal heuristic
// `git log --oneline -1 --grep "Merge branch '<branch>'"`. This grep is
// locale-sensitive: a non-English git locale that localises the default
// merge commit subject will not match. That is a known limitation, kept
// as-is rather than "fixed", matching the upstream behaviour.
func (m *MergeManager) MergeCommitExists(ctx context.Context, branch string) (bool, error) {
	out, err := m.run(ctx, "log", "--oneline", "-1", "--grep=Merge branch '"+branch+"'")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// ParseDiffStat extracts (filesChanged, insertions, deletions) from the
// trailing summary line of `git diff --stat` output. Any of the three
// numbers may be absent from the line.
func ParseDiffStat(stat string) (filesChanged, insertions, deletions int) {
	for _, line := range strings.Split(stat, "\n") {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, "changed") {
			continue
		}

		if fields := strings.Fields(line); len(fields) > 0 {
			filesChanged, _ = strconv.Atoi(fields[0])
		}

		if pos := strings.Index(line, "insertion"); pos >= 0 {
			before := line[:pos]
			parts := strings.Split(before, ",")
			numStr := strings.TrimSpace(parts[len(parts)-1])
			insertions, _ = strconv.Atoi(numStr)
		}

		if pos := strings.Index(line, "deletion"); pos >= 0 {
			before := line[:pos]
			parts := strings.Split(before, ",")
			numStr := strings.TrimSpace(parts[len(parts)-1])
			deletions, _ = strconv.Atoi(numStr)
		}
	}
	return filesChanged, insertions, deletions
}
