// Package supervisor implements the supervisor loop (C14): the per-tick
// sequence that polls every agent's process status, advances the plan
// engine, advances the merge pipeline, expires old notifications, and
// auto-enters review when a worker with a worktree finishes. The renderer
// (C13) and input router (C12) live in internal/tui and drive this
// package's Tick from a periodic bubbletea message, using tea.Tick as
// the ≈60Hz clock.
package supervisor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/cctakt/cctakt/internal/adapters/git"
	"github.com/cctakt/cctakt/internal/agent"
	"github.com/cctakt/cctakt/internal/core"
	"github.com/cctakt/cctakt/internal/mergepipe"
	"github.com/cctakt/cctakt/internal/plan"
	"github.com/cctakt/cctakt/internal/review"
	"github.com/cctakt/cctakt/internal/tui"
)

// poller is satisfied by *agent.Interactive and *agent.Worker: the
// non-blocking process-status check ticked every cycle.
type poller interface {
	TryWait()
}

// githubCollaborator is the full slice of *github.Client the supervisor
// depends on: plan.GitHubClient's CreatePr support plus the issue fetch
// the TUI's issue picker overlay needs. One client, two call sites.
type githubCollaborator interface {
	plan.GitHubClient
	FetchIssues(ctx context.Context, labels []string, state string) ([]core.Issue, error)
}

// Supervisor owns everything the tick loop touches beyond rendering:
// the registry, the plan engine, the merge pipeline, and the review
// controller. The renderer reads its Registry/Output directly; this type
// never renders anything itself.
type Supervisor struct {
	Registry *agent.Registry
	Output   *tui.TUIOutput

	engine   *plan.Engine
	store    *plan.Store
	pipeline *mergepipe.Pipeline
	reviewer *review.Controller

	repoPath    string
	worktreeDir string
	workerBin   string

	taskAgents map[string]int // plan task id -> agent id, resynchronised every tick
	reviewed   map[int]bool   // agent ids already auto-entered into review

	activeReview *core.ReviewState
	quit         bool

	issues githubCollaborator
}

// Config collects the paths and binary Supervisor needs to spawn workers
// and locate worktrees.
type Config struct {
	RepoPath    string
	WorktreeDir string
	WorkerBin   string // e.g. "claude"; the CLI binary worker agents run
}

// New wires a Supervisor against a fresh registry, plan store, merge
// pipeline, and review controller for one workspace.
func New(cfg Config, registry *agent.Registry, output *tui.TUIOutput, store *plan.Store) (*Supervisor, error) {
	s := &Supervisor{
		Registry:    registry,
		Output:      output,
		store:       store,
		reviewer:    review.New(cfg.RepoPath),
		repoPath:    cfg.RepoPath,
		worktreeDir: cfg.WorktreeDir,
		workerBin:   cfg.WorkerBin,
		taskAgents:  make(map[string]int),
		reviewed:    make(map[int]bool),
	}

	pipeline, err := mergepipe.New(cfg.RepoPath, registry, s.spawnPipelineWorker, s.notify, s.completePlanTask)
	if err != nil {
		return nil, err
	}
	s.pipeline = pipeline

	s.engine = plan.NewEngine(store, cfg.WorktreeDir, s.spawnPlanWorker, s.createWorktree, nil, s, s.startReview, s.notify)
	s.engine.SetMerger(git.NewMergeManager(cfg.RepoPath))
	if wt, err := git.NewWorktreeManager(cfg.RepoPath); err == nil {
		s.engine.SetWorktreeRemover(wt)
	}
	return s, nil
}

// SetGitHub wires a GitHub collaborator once one has been configured
// (token available); CreatePr tasks fail and the issue picker stays empty
// until this is called.
func (s *Supervisor) SetGitHub(client githubCollaborator) {
	s.engine.SetGitHub(client)
	s.issues = client
}

// FetchIssues lists open issues for the issue picker overlay. Returns an
// error if no GitHub collaborator has been configured.
func (s *Supervisor) FetchIssues(ctx context.Context, labels []string, state string) ([]core.Issue, error) {
	if s.issues == nil {
		return nil, core.ErrValidation("GITHUB_NOT_CONFIGURED", "no GitHub remote/token configured")
	}
	return s.issues.FetchIssues(ctx, labels, state)
}

// AddTaskFromIssue turns a picked issue into a pending create_worker task,
// branch named after the issue number so the worker and the issue stay
// easy to correlate in review.
func (s *Supervisor) AddTaskFromIssue(issue core.Issue) error {
	p, err := s.store.Load()
	if err != nil {
		return err
	}
	if p == nil {
		p = &core.Plan{Version: core.PlanSchemaVersion}
	}

	branch := fmt.Sprintf("issue-%d", issue.Number)
	taskID := branch
	if p.TaskByID(taskID) != nil {
		taskID = fmt.Sprintf("%s-%s", taskID, uuid.New().String()[:8])
	}

	description := issue.Title
	if issue.Body != "" {
		description = fmt.Sprintf("%s\n\n%s", issue.Title, issue.Body)
	}
	p.Tasks = append(p.Tasks, *core.NewTask(taskID, core.CreateWorkerAction{
		Branch:          branch,
		TaskDescription: description,
	}))
	return s.store.Save(p)
}

func (s *Supervisor) notify(message string, level core.NotifyLevel) {
	s.Output.Push(message, level)
}

// completePlanTask marks the plan task that originated a merge terminal
// once the merge pipeline resolves it. taskID is empty when a merge was
// queued directly rather than via a RequestReview task, in which case
// there's nothing to mark.
func (s *Supervisor) completePlanTask(taskID string, failed bool, errMsg string) {
	if taskID == "" {
		return
	}
	p, err := s.store.Load()
	if err != nil || p == nil {
		return
	}
	t := p.TaskByID(taskID)
	if t == nil {
		return
	}
	if failed {
		t.Status = core.TaskStatusFailed
		t.Error = errMsg
	} else {
		t.Status = core.TaskStatusCompleted
	}
	_ = s.store.Save(p)
}

// ActiveReview returns the overlay state the renderer should show, or nil.
func (s *Supervisor) ActiveReview() *core.ReviewState {
	return s.activeReview
}

// ConfirmReview enqueues the active review's branch onto the merge
// pipeline and leaves the overlay.
func (s *Supervisor) ConfirmReview(ctx context.Context) {
	if s.activeReview == nil {
		return
	}
	task := review.Confirm(s.activeReview)
	s.activeReview = nil
	s.pipeline.Enqueue(ctx, task)
}

// CancelReview leaves the overlay without queuing a merge.
func (s *Supervisor) CancelReview() {
	s.activeReview = nil
}

// Quit marks the loop for exit; the caller (tui's Update) checks this
// after every Tick.
func (s *Supervisor) Quit() {
	s.quit = true
}

// ShouldQuit reports whether the loop should stop.
func (s *Supervisor) ShouldQuit() bool {
	return s.quit
}

// Tick runs one full supervisor cycle: poll processes, advance the plan,
// advance the merge pipeline, expire notifications, auto-enter review.
// It corresponds to steps 3-8 of the supervisor loop; drawing the frame
// and draining input (steps 1-2) are bubbletea's job in internal/tui.
func (s *Supervisor) Tick(ctx context.Context) {
	s.pollAgents()
	if err := s.engine.Tick(ctx); err != nil {
		s.notify("Plan tick failed: "+err.Error(), core.NotifyError)
	}
	s.pipeline.CheckCompletion(ctx)
	s.pipeline.CheckBuildCompletion()
	s.Output.Expire(time.Now())
	s.autoEnterReview(ctx)
}

func (s *Supervisor) pollAgents() {
	for _, a := range s.Registry.All() {
		handle := s.Registry.Handle(a.ID)
		if p, ok := handle.(poller); ok {
			p.TryWait()
		}
		if a.Role != core.RoleInteractive {
			continue
		}
		if ia, ok := handle.(*agent.Interactive); ok {
			agent.UpdateInteractiveWorkState(a, ia.ScreenText(), ia.LastActivity())
		}
	}
}

func (s *Supervisor) autoEnterReview(ctx context.Context) {
	if s.activeReview != nil {
		return
	}
	for _, a := range s.Registry.All() {
		if a.Role != core.RoleWorker || a.WorktreePath == "" {
			continue
		}
		if a.ProcessStatus != core.ProcessEnded || a.Error != "" {
			continue
		}
		if s.reviewed[a.ID] {
			continue
		}
		s.reviewed[a.ID] = true

		state, err := s.reviewer.Start(ctx, a.ID, a.WorktreePath)
		if err != nil {
			s.notify("Failed to start review for "+a.Name+": "+err.Error(), core.NotifyError)
			continue
		}
		s.activeReview = state
		return
	}
}

// --- plan.AgentLookup ---

func (s *Supervisor) AgentForTask(taskID string) (int, bool) {
	id, ok := s.taskAgents[taskID]
	return id, ok
}

func (s *Supervisor) AgentForWorktreeName(name string) (int, bool) {
	for _, a := range s.Registry.Workers() {
		if filepath.Base(a.WorktreePath) == name || a.Branch == name {
			return a.ID, true
		}
	}
	return 0, false
}

func (s *Supervisor) AgentEnded(agentID int) (bool, string, []string, bool) {
	a := s.Registry.Get(agentID)
	if a == nil {
		return false, "", nil, false
	}
	if a.ProcessStatus != core.ProcessEnded {
		return false, "", nil, true
	}
	var commits []string
	if a.WorktreePath != "" {
		commits = git.WorkerCommits(context.Background(), a.WorktreePath)
	}
	_ = s.Registry.Remove(agentID)
	for taskID, id := range s.taskAgents {
		if id == agentID {
			delete(s.taskAgents, taskID)
		}
	}
	return true, a.Error, commits, true
}

func (s *Supervisor) WorktreeExists(branch string) (string, bool) {
	path := filepath.Join(s.worktreeDir, git.SanitizeBranchName(branch))
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return path, true
	}
	return "", false
}

// --- collaborators wired into the plan engine ---

func (s *Supervisor) createWorktree(ctx context.Context, branch, baseDir string) (string, error) {
	wt, err := git.NewWorktreeManager(s.repoPath)
	if err != nil {
		return "", err
	}
	return wt.Create(ctx, branch, baseDir)
}

func (s *Supervisor) spawnPlanWorker(ctx context.Context, taskID, branch, dir, prompt string) (int, error) {
	w, err := agent.NewWorker(0, branch, dir, s.workerBin, prompt, 0)
	if err != nil {
		return 0, err
	}
	id := s.Registry.AddBacked(&w.Agent, w)
	w.Agent.WorktreePath = dir
	w.Agent.Branch = branch
	s.taskAgents[taskID] = id
	return id, nil
}

func (s *Supervisor) spawnPipelineWorker(ctx context.Context, name, prompt string, maxTurns int) (int, error) {
	w, err := agent.NewWorker(0, name, s.repoPath, s.workerBin, prompt, maxTurns)
	if err != nil {
		return 0, err
	}
	return s.Registry.AddBacked(&w.Agent, w), nil
}

func (s *Supervisor) startReview(agentID int, branch, worktreePath, pendingTaskID string) error {
	if agentID >= 0 {
		a := s.Registry.Get(agentID)
		if a != nil {
			worktreePath = a.WorktreePath
		}
	}
	state, err := s.reviewer.Start(context.Background(), agentID, worktreePath)
	if err != nil {
		return err
	}
	state.PendingReviewTaskID = pendingTaskID
	s.activeReview = state
	return nil
}
