package git

import (
	"context"
	"time"
)

const commitLookupTimeout = 10 * time.Second

// WorkerCommits returns the commit subject lines a worker produced in
// worktreePath: everything ahead of main, then master if main yields
// nothing, then the last 10 commits as a last resort for a worktree whose
// base branch is neither. Returns nil if none of the three attempts
// succeed (e.g. worktreePath isn't a git repository).
func WorkerCommits(ctx context.Context, worktreePath string) []string {
	for _, base := range []string{"main", "master"} {
		out, err := runGit(ctx, worktreePath, commitLookupTimeout, "log", "--oneline", base+"..HEAD")
		if err != nil {
			continue
		}
		if lines := splitLines(out); len(lines) > 0 {
			return lines
		}
	}

	out, err := runGit(ctx, worktreePath, commitLookupTimeout, "log", "--oneline", "-n", "10")
	if err != nil {
		return nil
	}
	return splitLines(out)
}
