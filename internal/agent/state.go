package agent

import (
	"strings"
	"time"

	"github.com/cctakt/cctakt/internal/core"
)

// commitSuccessMarkers are case-insensitive substrings of a screen that
// indicate the conductor just completed a commit. Checked against the
// whole screen, not just the last line, since a commit summary can span
// several lines (stat output, hash, branch name).
var commitSuccessMarkers = []string{
	"successfully committed",
	"changes committed",
	"created commit",
	"commit created",
	"[main",
	"[master",
	"files changed",
	"insertions(+)",
	"deletions(-)",
}

// promptWaiting reports whether the last non-blank line of screen looks
// like a shell or CLI prompt waiting for input.
func promptWaiting(screen string) bool {
	lines := strings.Split(screen, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimRight(lines[i], " \t\r")
		if line == "" {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if strings.HasSuffix(trimmed, "> $ :") || strings.Contains(trimmed, "❯") {
			return true
		}
		return false
	}
	return false
}

func hasCommitSuccessMarker(screen string) bool {
	lower := strings.ToLower(screen)
	for _, marker := range commitSuccessMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

const idleThreshold = 2 * time.Second
const workingGraceThreshold = 500 * time.Millisecond

// UpdateInteractiveWorkState advances an interactive agent's work state by
// one tick and reports whether this tick transitioned the agent into
// Completed (the "just-completed" edge the supervisor watches for to
// auto-enter review).
func UpdateInteractiveWorkState(a *core.Agent, screen string, now time.Time) bool {
	if a.WorkState == core.WorkCompleted {
		return false
	}
	if !a.TaskSent {
		a.WorkState = core.WorkStarting
		return false
	}

	age := now.Sub(a.LastActivity)
	switch {
	case age >= idleThreshold && promptWaiting(screen) && hasCommitSuccessMarker(screen):
		a.WorkState = core.WorkCompleted
		return true
	case age >= idleThreshold:
		a.WorkState = core.WorkIdle
	case age < workingGraceThreshold:
		a.WorkState = core.WorkWorking
	default:
		a.WorkState = core.WorkWorking
	}
	return false
}

// UpdateWorkerWorkState advances a worker agent's work state from its
// stream parser's completion flag. Worker completion is driven entirely by
// the stream channel (C2), never by screen heuristics.
func UpdateWorkerWorkState(a *core.Agent, completed bool, result, errMsg string) bool {
	if a.WorkState == core.WorkCompleted {
		return false
	}
	if !completed {
		a.WorkState = core.WorkWorking
		return false
	}
	a.WorkState = core.WorkCompleted
	if errMsg != "" {
		a.Error = errMsg
	} else {
		a.Result = &core.TaskResult{}
		_ = result
	}
	return true
}
