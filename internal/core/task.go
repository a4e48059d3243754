package core

import (
	"encoding/json"
	"fmt"
)

// TaskStatus is the execution state of a plan task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusSkipped   TaskStatus = "skipped"
)

// NotifyLevel is the severity of a Notify task or a toast raised by the
// supervisor on the agent's behalf.
type NotifyLevel string

const (
	NotifyInfo    NotifyLevel = "info"
	NotifyWarning NotifyLevel = "warning"
	NotifyError   NotifyLevel = "error"
	NotifySuccess NotifyLevel = "success"
)

// ActionType is the discriminator stored under the "type" key of a
// serialised TaskAction.
type ActionType string

const (
	ActionCreateWorker    ActionType = "create_worker"
	ActionCreatePR        ActionType = "create_pr"
	ActionMergeBranch     ActionType = "merge_branch"
	ActionCleanupWorktree ActionType = "cleanup_worktree"
	ActionRunCommand      ActionType = "run_command"
	ActionNotify          ActionType = "notify"
	ActionRequestReview   ActionType = "request_review"
)

// TaskAction is the tagged union of things the plan engine can dispatch.
// Concrete variants implement it; Task.Action holds one, decoded from the
// internal "type" discriminator by Task's custom unmarshaler.
type TaskAction interface {
	Type() ActionType
}

// CreateWorkerAction creates a worktree and spawns a worker agent in it.
type CreateWorkerAction struct {
	Branch          string `json:"branch"`
	TaskDescription string `json:"task_description"`
	BaseBranch      string `json:"base_branch,omitempty"`
}

func (CreateWorkerAction) Type() ActionType { return ActionCreateWorker }

// CreatePRAction opens a pull request through the GitHub collaborator.
type CreatePRAction struct {
	Branch string `json:"branch"`
	Title  string `json:"title"`
	Body   string `json:"body,omitempty"`
	Base   string `json:"base,omitempty"`
	Draft  bool   `json:"draft,omitempty"`
}

func (CreatePRAction) Type() ActionType { return ActionCreatePR }

// MergeBranchAction merges a branch into the integration branch.
type MergeBranchAction struct {
	Branch string `json:"branch"`
	Target string `json:"target,omitempty"`
}

func (MergeBranchAction) Type() ActionType { return ActionMergeBranch }

// CleanupWorktreeAction removes a worktree by path or branch name.
type CleanupWorktreeAction struct {
	Worktree string `json:"worktree"`
}

func (CleanupWorktreeAction) Type() ActionType { return ActionCleanupWorktree }

// RunCommandAction runs an arbitrary command in a worktree. Currently
// dispatched as Skipped with a warning notification (see the plan engine).
type RunCommandAction struct {
	Worktree string `json:"worktree"`
	Command  string `json:"command"`
}

func (RunCommandAction) Type() ActionType { return ActionRunCommand }

// NotifyAction carries no side effect beyond raising a toast.
type NotifyAction struct {
	Message string      `json:"message"`
	Level   NotifyLevel `json:"level,omitempty"`
}

func (NotifyAction) Type() ActionType { return ActionNotify }

// RequestReviewAction enters the review overlay for a branch, optionally
// waiting on another task to complete first.
type RequestReviewAction struct {
	Branch    string `json:"branch"`
	AfterTask string `json:"after_task,omitempty"`
}

func (RequestReviewAction) Type() ActionType { return ActionRequestReview }

// TaskResult is populated on a task's completion.
type TaskResult struct {
	Commits []string `json:"commits,omitempty"`
	PRNum   *int     `json:"pr_number,omitempty"`
	PRURL   string   `json:"pr_url,omitempty"`
}

// Task is one unit of a Plan.
type Task struct {
	ID        string      `json:"id"`
	Action    TaskAction  `json:"action"`
	Status    TaskStatus  `json:"status"`
	UpdatedAt *int64      `json:"updated_at,omitempty"`
	Error     string      `json:"error,omitempty"`
	Result    *TaskResult `json:"result,omitempty"`
}

// taskWire is the on-disk shape of Task; Action is split into a discriminated
// envelope since encoding/json can't marshal interface fields directly.
type taskWire struct {
	ID        string          `json:"id"`
	Action    json.RawMessage `json:"action"`
	Status    TaskStatus      `json:"status,omitempty"`
	UpdatedAt *int64          `json:"updated_at,omitempty"`
	Error     string          `json:"error,omitempty"`
	Result    *TaskResult     `json:"result,omitempty"`
}

type actionEnvelope struct {
	Type ActionType `json:"type"`
}

// MarshalJSON writes Action with its "type" discriminator inlined alongside
// its own fields, matching the plan file's tagged-union convention.
func (t Task) MarshalJSON() ([]byte, error) {
	status := t.Status
	if status == "" {
		status = TaskStatusPending
	}
	actionJSON, err := marshalAction(t.Action)
	if err != nil {
		return nil, err
	}
	return json.Marshal(taskWire{
		ID:        t.ID,
		Action:    actionJSON,
		Status:    status,
		UpdatedAt: t.UpdatedAt,
		Error:     t.Error,
		Result:    t.Result,
	})
}

// UnmarshalJSON restores Action by dispatching on its "type" discriminator.
func (t *Task) UnmarshalJSON(data []byte) error {
	var wire taskWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	action, err := unmarshalAction(wire.Action)
	if err != nil {
		return fmt.Errorf("task %q: %w", wire.ID, err)
	}
	t.ID = wire.ID
	t.Action = action
	t.Status = wire.Status
	if t.Status == "" {
		t.Status = TaskStatusPending
	}
	t.UpdatedAt = wire.UpdatedAt
	t.Error = wire.Error
	t.Result = wire.Result
	return nil
}

func marshalAction(a TaskAction) (json.RawMessage, error) {
	if a == nil {
		return nil, ErrValidation("TASK_ACTION_REQUIRED", "task action cannot be nil")
	}
	body, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	typeJSON, err := json.Marshal(a.Type())
	if err != nil {
		return nil, err
	}
	fields["type"] = typeJSON
	return json.Marshal(fields)
}

func unmarshalAction(raw json.RawMessage) (TaskAction, error) {
	if len(raw) == 0 {
		return nil, ErrValidation("TASK_ACTION_REQUIRED", "missing action")
	}
	var env actionEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	switch env.Type {
	case ActionCreateWorker:
		var a CreateWorkerAction
		return a, json.Unmarshal(raw, &a)
	case ActionCreatePR:
		var a CreatePRAction
		return a, json.Unmarshal(raw, &a)
	case ActionMergeBranch:
		var a MergeBranchAction
		return a, json.Unmarshal(raw, &a)
	case ActionCleanupWorktree:
		var a CleanupWorktreeAction
		return a, json.Unmarshal(raw, &a)
	case ActionRunCommand:
		var a RunCommandAction
		return a, json.Unmarshal(raw, &a)
	case ActionNotify:
		var a NotifyAction
		return a, json.Unmarshal(raw, &a)
	case ActionRequestReview:
		var a RequestReviewAction
		return a, json.Unmarshal(raw, &a)
	default:
		return nil, ErrValidation("UNKNOWN_ACTION_TYPE", fmt.Sprintf("unknown task action type %q", env.Type))
	}
}

// NewTask builds a pending task around the given action.
func NewTask(id string, action TaskAction) *Task {
	return &Task{ID: id, Action: action, Status: TaskStatusPending}
}

// IsTerminal reports whether the task is in a status the engine no longer
// advances.
func (t *Task) IsTerminal() bool {
	switch t.Status {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusSkipped:
		return true
	default:
		return false
	}
}

// Validate checks the invariants a task must hold before being accepted
// into a plan.
func (t *Task) Validate() error {
	if t.ID == "" {
		return ErrValidation("TASK_ID_REQUIRED", "task ID cannot be empty")
	}
	if t.Action == nil {
		return ErrValidation("TASK_ACTION_REQUIRED", "task action cannot be nil")
	}
	return nil
}

// Plan is the orchestrator-authored unit of work the plan engine consumes.
type Plan struct {
	Version     int    `json:"version"`
	CreatedAt   int64  `json:"created_at"`
	Description string `json:"description,omitempty"`
	Tasks       []Task `json:"tasks"`
}

// PlanSchemaVersion is the only schema version this engine accepts today.
const PlanSchemaVersion = 1

// Validate checks that task ids are unique within the plan.
func (p *Plan) Validate() error {
	seen := make(map[string]bool, len(p.Tasks))
	for _, t := range p.Tasks {
		if seen[t.ID] {
			return ErrValidation("DUPLICATE_TASK_ID", fmt.Sprintf("duplicate task id %q", t.ID))
		}
		seen[t.ID] = true
	}
	return nil
}

// NextPending returns the first pending task in list order, or nil.
func (p *Plan) NextPending() *Task {
	for i := range p.Tasks {
		if p.Tasks[i].Status == TaskStatusPending {
			return &p.Tasks[i]
		}
	}
	return nil
}

// TaskByID returns the task with the given id, or nil.
func (p *Plan) TaskByID(id string) *Task {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			return &p.Tasks[i]
		}
	}
	return nil
}

// IsComplete reports whether every task in the plan is terminal.
func (p *Plan) IsComplete() bool {
	for _, t := range p.Tasks {
		if !t.IsTerminal() {
			return false
		}
	}
	return true
}
