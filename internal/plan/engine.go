// Package plan implements the plan engine (C8): the per-tick contract that
// reloads the on-disk plan when it changes, recovers orphaned tasks whose
// agent vanished, reaps agents that finished running a task, and advances
// the first pending task by dispatching its action.
package plan

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/cctakt/cctakt/internal/core"
)

// WorkerSpawner starts a worker agent for a CreateWorker task, returning
// the resulting agent's id. dir is the worktree (or repo root, if no
// worktree manager is configured). taskID lets the caller record the
// task↔agent mapping AgentLookup.AgentForTask later depends on.
type WorkerSpawner func(ctx context.Context, taskID, branch, dir, prompt string) (agentID int, err error)

// GitHubClient is the narrow slice of core.GitHub the engine needs to
// dispatch CreatePr tasks. nil means "not configured" — CreatePr tasks
// fail immediately, matching the original's missing-client behavior.
type GitHubClient interface {
	CreatePullRequest(ctx context.Context, in core.PullRequestInput) (core.PullRequest, error)
}

// WorktreeCreator creates a worktree for a branch and returns its path.
type WorktreeCreator func(ctx context.Context, branch, baseDir string) (string, error)

// Merger is the narrow slice of *git.MergeManager the engine needs to
// dispatch MergeBranch tasks. nil means "not configured" — MergeBranch
// tasks fail immediately, mirroring GitHubClient's CreatePr behavior.
type Merger interface {
	Checkout(ctx context.Context, branch string) error
	MergeNoFF(ctx context.Context, branch, message string) error
}

// WorktreeRemover is the narrow slice of *git.WorktreeManager the engine
// needs to dispatch CleanupWorktree tasks.
type WorktreeRemover interface {
	Remove(ctx context.Context, path string) error
}

// AgentLookup resolves which agent index (if any) is running task_id, and
// whether an agent exists for a given worktree directory name (branch).
type AgentLookup interface {
	AgentForTask(taskID string) (agentID int, ok bool)
	AgentForWorktreeName(name string) (agentID int, ok bool)
	AgentEnded(agentID int) (ended bool, errMsg string, commits []string, ok bool)

	// WorktreeExists reports the on-disk path for branch under the
	// configured worktree directory, for RequestReview tasks whose worker
	// already exited (no agent left to match) but whose worktree is still
	// there to review directly.
	WorktreeExists(branch string) (path string, ok bool)
}

// ReviewStarter enters the review overlay for a worktree, recording
// pendingReviewTaskID so the engine can complete the originating task once
// the review resolves. agentID is -1 when no agent is associated with the
// review (the worker already exited but its worktree survives).
type ReviewStarter func(agentID int, branch, worktreePath, pendingReviewTaskID string) error

// Engine ticks a Plan forward per C8's contract: reload on change, recover
// orphans, reap ended agents, advance the next pending task.
type Engine struct {
	store       *Store
	worktreeDir string
	spawn       WorkerSpawner
	createWT    WorktreeCreator
	github      GitHubClient
	lookup      AgentLookup
	startReview ReviewStarter
	notify      func(message string, level core.NotifyLevel)

	merger   Merger
	removeWT WorktreeRemover

	plan *core.Plan
}

// NewEngine wires an Engine against store and the supervisor's agent
// facilities. worktreeDir is the base directory CreateWorker tasks place
// worktrees under; pass "" to run workers directly in the repo root.
func NewEngine(store *Store, worktreeDir string, spawn WorkerSpawner, createWT WorktreeCreator, github GitHubClient, lookup AgentLookup, startReview ReviewStarter, notify func(string, core.NotifyLevel)) *Engine {
	return &Engine{
		store: store, worktreeDir: worktreeDir, spawn: spawn, createWT: createWT,
		github: github, lookup: lookup, startReview: startReview, notify: notify,
	}
}

// SetGitHub wires (or replaces) the GitHub collaborator after construction,
// for callers that only learn whether a token is available once config
// loading has run.
func (e *Engine) SetGitHub(github GitHubClient) {
	e.github = github
}

// SetMerger wires the git collaborator MergeBranch tasks dispatch against.
func (e *Engine) SetMerger(m Merger) {
	e.merger = m
}

// SetWorktreeRemover wires the collaborator CleanupWorktree tasks dispatch
// against.
func (e *Engine) SetWorktreeRemover(r WorktreeRemover) {
	e.removeWT = r
}

// Tick runs one full C8 cycle: reload, recover orphans, reap, advance.
func (e *Engine) Tick(ctx context.Context) error {
	if err := e.reload(); err != nil {
		return err
	}
	if e.plan == nil {
		return nil
	}
	e.recoverOrphans()
	e.reapAgents()
	e.advance(ctx)
	return e.store.Save(e.plan)
}

func (e *Engine) reload() error {
	if !e.store.HasChanges() {
		return nil
	}
	loaded, err := e.store.Load()
	if err != nil {
		e.notify(fmt.Sprintf("Failed to load plan: %v", err), core.NotifyError)
		return nil
	}
	if loaded == nil {
		e.plan = nil
		return nil
	}
	if loaded.IsComplete() {
		e.plan = nil
		return nil
	}
	if loaded.Description != "" {
		e.notify("Plan loaded: "+loaded.Description, core.NotifyInfo)
	}
	e.plan = loaded
	return nil
}

func (e *Engine) recoverOrphans() {
	var recovered []string
	for i := range e.plan.Tasks {
		t := &e.plan.Tasks[i]
		if t.Status != core.TaskStatusRunning {
			continue
		}
		if _, ok := e.lookup.AgentForTask(t.ID); ok {
			continue
		}
		t.Status = core.TaskStatusPending
		recovered = append(recovered, t.ID)
	}
	for _, id := range recovered {
		e.notify("Recovered orphaned task: "+id, core.NotifyWarning)
	}
}

func (e *Engine) reapAgents() {
	for i := range e.plan.Tasks {
		t := &e.plan.Tasks[i]
		if t.Status != core.TaskStatusRunning {
			continue
		}
		agentID, ok := e.lookup.AgentForTask(t.ID)
		if !ok {
			continue
		}
		ended, errMsg, commits, ok := e.lookup.AgentEnded(agentID)
		if !ok || !ended {
			continue
		}
		if errMsg != "" {
			t.Status = core.TaskStatusFailed
			t.Error = errMsg
			continue
		}
		t.Status = core.TaskStatusCompleted
		t.Result = &core.TaskResult{Commits: commits}
		if len(commits) == 0 {
			e.notify("Task "+t.ID+" completed with no commits", core.NotifyWarning)
		}
	}
}

func (e *Engine) advance(ctx context.Context) {
	t := e.plan.NextPending()
	if t == nil {
		return
	}
	t.Status = core.TaskStatusRunning
	e.dispatch(ctx, t)
}

func (e *Engine) dispatch(ctx context.Context, t *core.Task) {
	switch action := t.Action.(type) {
	case core.CreateWorkerAction:
		e.executeCreateWorker(ctx, t, action)
	case core.CreatePRAction:
		e.executeCreatePR(ctx, t, action)
	case core.NotifyAction:
		e.notify(action.Message, action.Level)
		t.Status = core.TaskStatusCompleted
	case core.RequestReviewAction:
		e.executeRequestReview(t, action)
	case core.MergeBranchAction:
		e.executeMergeBranch(ctx, t, action)
	case core.CleanupWorktreeAction:
		e.executeCleanupWorktree(ctx, t, action)
	case core.RunCommandAction:
		e.notify(fmt.Sprintf("Skipping run_command task %q: running arbitrary commands is not supported", t.ID), core.NotifyWarning)
		t.Status = core.TaskStatusSkipped
	default:
		e.markFailed(t, fmt.Sprintf("unknown action type for task %q", t.ID))
	}
}

func (e *Engine) executeMergeBranch(ctx context.Context, t *core.Task, action core.MergeBranchAction) {
	if e.merger == nil {
		e.markFailed(t, "git merge manager not configured")
		return
	}
	if action.Target != "" {
		if err := e.merger.Checkout(ctx, action.Target); err != nil {
			e.markFailed(t, "Failed to checkout "+action.Target+": "+err.Error())
			return
		}
	}
	message := fmt.Sprintf("Merge branch '%s'", action.Branch)
	if err := e.merger.MergeNoFF(ctx, action.Branch, message); err != nil {
		e.markFailed(t, "Failed to merge "+action.Branch+": "+err.Error())
		return
	}
	e.notify("Merged: "+action.Branch, core.NotifySuccess)
	t.Status = core.TaskStatusCompleted
}

func (e *Engine) executeCleanupWorktree(ctx context.Context, t *core.Task, action core.CleanupWorktreeAction) {
	if e.removeWT == nil {
		e.markFailed(t, "worktree remover not configured")
		return
	}
	path := action.Worktree
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.worktreeDir, path)
	}
	if err := e.removeWT.Remove(ctx, path); err != nil {
		e.markFailed(t, "Failed to remove worktree "+path+": "+err.Error())
		return
	}
	e.notify("Worktree removed: "+path, core.NotifySuccess)
	t.Status = core.TaskStatusCompleted
}

func (e *Engine) executeCreateWorker(ctx context.Context, t *core.Task, action core.CreateWorkerAction) {
	dir := e.worktreeDir
	var worktreePath string
	if e.createWT != nil {
		path, err := e.createWT(ctx, action.Branch, e.worktreeDir)
		if err != nil {
			e.markFailed(t, "Failed to create worktree: "+err.Error())
			return
		}
		dir = path
		worktreePath = path
	}

	prompt := action.TaskDescription + "\n\nImportant: always run git add and git commit once work is done. Exiting without committing loses the changes."
	if _, err := e.spawn(ctx, t.ID, action.Branch, dir, prompt); err != nil {
		e.markFailed(t, "Failed to create agent: "+err.Error())
		return
	}
	_ = worktreePath
	e.notify("Worker started: "+action.Branch, core.NotifySuccess)
}

func (e *Engine) executeCreatePR(ctx context.Context, t *core.Task, action core.CreatePRAction) {
	if e.github == nil {
		e.markFailed(t, "GitHub client not configured")
		return
	}
	pr, err := e.github.CreatePullRequest(ctx, core.PullRequestInput{
		Title: action.Title, Body: action.Body, Head: action.Branch, Base: action.Base, Draft: action.Draft,
	})
	if err != nil {
		e.markFailed(t, "Failed to create PR: "+err.Error())
		return
	}
	e.notify(fmt.Sprintf("PR created: #%d - %s", pr.Number, pr.Title), core.NotifySuccess)
	t.Status = core.TaskStatusCompleted
	t.Result = &core.TaskResult{PRNum: &pr.Number, PRURL: pr.HTMLURL}
}

func (e *Engine) executeRequestReview(t *core.Task, action core.RequestReviewAction) {
	if action.AfterTask != "" {
		after := e.plan.TaskByID(action.AfterTask)
		if after == nil || after.Status != core.TaskStatusCompleted {
			t.Status = core.TaskStatusPending
			return
		}
	}

	if agentID, ok := e.lookup.AgentForWorktreeName(action.Branch); ok {
		if err := e.startReview(agentID, action.Branch, "", t.ID); err != nil {
			e.markFailed(t, err.Error())
		}
		return
	}

	if path, ok := e.lookup.WorktreeExists(action.Branch); ok {
		if err := e.startReview(-1, action.Branch, path, t.ID); err != nil {
			e.markFailed(t, err.Error())
		}
		return
	}

	e.markFailed(t, fmt.Sprintf("Branch '%s' not found", action.Branch))
}

func (e *Engine) markFailed(t *core.Task, msg string) {
	t.Status = core.TaskStatusFailed
	t.Error = msg
	e.notify(msg, core.NotifyError)
}

// Plan returns the currently loaded plan, or nil.
func (e *Engine) Plan() *core.Plan {
	return e.plan
}
