// Package mergepipe implements the serial merge pipeline (C9): at most one
// merge worker in flight, a FIFO queue of pending merges, and the build
// worker spawned automatically on merge success.
package mergepipe

import (
	"context"
	"fmt"

	"github.com/cctakt/cctakt/internal/adapters/git"
	"github.com/cctakt/cctakt/internal/agent"
	"github.com/cctakt/cctakt/internal/core"
)

const (
	mergeTaskDescriptionTemplate = `Merge %s into main.

Steps:
1. git checkout main
2. git pull origin main
3. git merge --no-ff %s
4. Resolve any conflicts and commit

Important: you must create a real merge commit.`

	buildTaskDescription = `Run the post-merge build check.

Steps:
1. Run the build
2. Fix and commit any errors
3. Run tests if available

Done once the build succeeds.`

	mergeWorkerMaxTurns = 10
	buildWorkerMaxTurns = 15
)

// Spawner starts a worker agent and registers it with the registry,
// returning the spawned agent's id. Implemented by the supervisor, which
// owns the registry and the binary/name used to spawn workers.
type Spawner func(ctx context.Context, name, prompt string, maxTurns int) (int, error)

// Notifier surfaces a user-facing message, mirroring C13's toast stack.
type Notifier func(message string, level core.NotifyLevel)

// PlanCompleter marks the plan task a merge originated from (if any)
// terminal once the merge resolves. taskID is empty when a merge was
// queued directly rather than via a RequestReview task; implementations
// must treat that as a no-op. errMsg is only meaningful when failed is true.
type PlanCompleter func(taskID string, failed bool, errMsg string)

// Pipeline holds at most one in-flight merge task; the rest wait in FIFO
// order. It never owns the agent registry directly — Spawner/registry
// lookups are injected so this package stays independent of internal/agent's
// PTY/exec concerns.
type Pipeline struct {
	repoPath     string
	merger       *git.MergeManager
	worktree     *git.WorktreeManager
	registry     *agent.Registry
	spawn        Spawner
	notify       Notifier
	completePlan PlanCompleter

	queue             []core.MergeTask
	current           *core.MergeTask
	workerAgentID     int
	buildWorkerID     int
	buildWorkerBranch string
}

// New returns an idle pipeline for repoPath. completePlan is invoked with
// a merge task's originating task id once its outcome is known; pass a
// no-op if the caller never correlates merges back to plan tasks.
func New(repoPath string, registry *agent.Registry, spawn Spawner, notify Notifier, completePlan PlanCompleter) (*Pipeline, error) {
	worktree, err := git.NewWorktreeManager(repoPath)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		repoPath:      repoPath,
		merger:        git.NewMergeManager(repoPath),
		worktree:      worktree,
		registry:      registry,
		spawn:         spawn,
		notify:        notify,
		completePlan:  completePlan,
		workerAgentID: -1,
		buildWorkerID: -1,
	}, nil
}

// Enqueue appends task to the FIFO queue and starts processing if the
// pipeline is idle. The originating worker agent (if any) must already be
// closed by the caller before Enqueue — the review controller (C10) does
// this as part of leaving the review overlay.
func (p *Pipeline) Enqueue(ctx context.Context, task core.MergeTask) {
	pending := len(p.queue)
	p.queue = append(p.queue, task)
	p.notify(fmt.Sprintf("Merge queued: %s (pending: %d)", task.Branch, pending+1), core.NotifyInfo)
	p.Process(ctx)
}

// Process starts the next queued merge if the pipeline is idle.
func (p *Pipeline) Process(ctx context.Context) {
	if p.current != nil {
		return
	}
	if len(p.queue) == 0 {
		return
	}
	task := p.queue[0]
	p.queue = p.queue[1:]
	p.current = &task
	p.spawnMergeWorker(ctx, task.Branch)
}

func (p *Pipeline) spawnMergeWorker(ctx context.Context, branch string) {
	prompt := fmt.Sprintf(mergeTaskDescriptionTemplate, branch, branch)
	id, err := p.spawn(ctx, "merge-worker", prompt, mergeWorkerMaxTurns)
	if err != nil {
		p.notify(fmt.Sprintf("Failed to start merge worker: %v", err), core.NotifyError)
		p.current = nil
		return
	}
	p.workerAgentID = id
	p.notify(fmt.Sprintf("Merge worker started (agent %d)", id), core.NotifyInfo)
}

// CheckCompletion is ticked every supervisor cycle: if the current merge
// worker has ended, it determines success via the presence of a merge
// commit for the branch, fires the success/failure handler, closes the
// worker, and advances the queue.
func (p *Pipeline) CheckCompletion(ctx context.Context) {
	if p.current == nil || p.workerAgentID < 0 {
		return
	}
	a := p.registry.Get(p.workerAgentID)
	if a == nil || a.ProcessStatus != core.ProcessEnded {
		return
	}

	task := *p.current
	p.current = nil

	merged, err := p.merger.MergeCommitExists(ctx, task.Branch)
	if err != nil || !merged {
		p.handleFailure(task)
	} else {
		p.handleSuccess(ctx, task)
	}

	_ = p.registry.Remove(p.workerAgentID)
	p.workerAgentID = -1
	p.Process(ctx)
}

func (p *Pipeline) handleSuccess(ctx context.Context, task core.MergeTask) {
	p.notify(fmt.Sprintf("Merged: %s → main", task.Branch), core.NotifySuccess)
	if task.WorktreePath != "" {
		_ = p.worktree.Remove(ctx, task.WorktreePath)
	}
	if p.completePlan != nil {
		p.completePlan(task.TaskID, false, "")
	}
	p.spawnBuildWorker(ctx, task.Branch)
}

func (p *Pipeline) handleFailure(task core.MergeTask) {
	msg := fmt.Sprintf("Merge failed: %s (merge worker could not complete)", task.Branch)
	p.notify(msg, core.NotifyError)
	if p.completePlan != nil {
		p.completePlan(task.TaskID, true, msg)
	}
}

func (p *Pipeline) spawnBuildWorker(ctx context.Context, branch string) {
	id, err := p.spawn(ctx, "build-worker", buildTaskDescription, buildWorkerMaxTurns)
	if err != nil {
		p.notify(fmt.Sprintf("Failed to start build worker: %v", err), core.NotifyError)
		return
	}
	p.buildWorkerID = id
	p.buildWorkerBranch = branch
	p.notify(fmt.Sprintf("Build worker started (agent %d)", id), core.NotifyInfo)
}

// CheckBuildCompletion is ticked every supervisor cycle: if the build
// worker has ended, it surfaces success/failure as a notification and
// closes the worker. Build failures are never retried automatically.
func (p *Pipeline) CheckBuildCompletion() {
	if p.buildWorkerID < 0 {
		return
	}
	a := p.registry.Get(p.buildWorkerID)
	if a == nil || a.ProcessStatus != core.ProcessEnded {
		return
	}

	branch := p.buildWorkerBranch
	success := a.Error == ""

	_ = p.registry.Remove(p.buildWorkerID)
	p.buildWorkerID = -1
	p.buildWorkerBranch = ""

	if success {
		p.notify(fmt.Sprintf("Build succeeded: %s", branch), core.NotifySuccess)
	} else {
		p.notify(fmt.Sprintf("Build failed: %s", branch), core.NotifyError)
	}
}

// PendingCount reports the number of merges still waiting behind the
// current in-flight one, if any.
func (p *Pipeline) PendingCount() int {
	return len(p.queue)
}

// Busy reports whether a merge is currently in flight.
func (p *Pipeline) Busy() bool {
	return p.current != nil
}
