package core

import "time"

// AgentRole distinguishes the single interactive conductor from the worker
// agents spawned to do work in a worktree. Set at creation and immutable.
type AgentRole string

const (
	RoleInteractive AgentRole = "interactive"
	RoleWorker      AgentRole = "worker"
)

// ProcessStatus tracks the underlying child process.
type ProcessStatus string

const (
	ProcessRunning ProcessStatus = "running"
	ProcessEnded   ProcessStatus = "ended"
)

// WorkState is the 4-state work-state machine driven by C3's tick logic.
// Completed is absorbing: once reached it never reverts.
type WorkState string

const (
	WorkStarting  WorkState = "starting"
	WorkWorking   WorkState = "working"
	WorkIdle      WorkState = "idle"
	WorkCompleted WorkState = "completed"
)

// Agent is the supervisor's view of one child CLI process, interactive or
// worker. Interactive agents additionally own a PTY/VT100 pair (see
// internal/agent.Interactive); worker agents own a stream parser (see
// internal/agent.Worker). This type holds the fields the plan engine,
// renderer, and input router all need regardless of which concrete backing
// the agent has.
type Agent struct {
	ID              int
	Name            string
	WorkDir         string
	Role            AgentRole
	ProcessStatus   ProcessStatus
	WorkState       WorkState
	Error           string
	Result          *TaskResult
	TaskSent        bool
	WorktreePath    string // set when this agent was spawned for a CreateWorker task
	Branch          string
	LastActivity    time.Time
	MaxTimeout      time.Duration
}

// IsTerminal reports whether the agent's work is done from the plan
// engine's point of view (Completed, regardless of process status).
func (a *Agent) IsTerminal() bool {
	return a.WorkState == WorkCompleted
}

// HasWorktree reports whether this agent is tied to a worktree (and
// therefore a candidate for automatic review on completion).
func (a *Agent) HasWorktree() bool {
	return a.WorktreePath != ""
}

// AgentRegistry is the ordered collection of live agents: an append-only
// list plus an active index that always stays valid while the registry is
// non-empty. At most one agent may hold RoleInteractive at a time.
type AgentRegistry interface {
	// Add appends a new agent, assigns it the next monotonic id, makes it
	// active, and returns its id.
	Add(a *Agent) int
	// Get returns the agent with the given id, or nil.
	Get(id int) *Agent
	// Remove releases the agent's resources (closing its writer, dropping
	// its master/reading end, reaping its child) and rebalances the active
	// index so it remains valid.
	Remove(id int) error
	// All returns agents in insertion order.
	All() []*Agent
	// Workers returns every agent with RoleWorker.
	Workers() []*Agent
	// Interactive returns the sole RoleInteractive agent, or nil.
	Interactive() *Agent
	// Active returns the currently active agent, or nil if empty.
	Active() *Agent
	// ActiveID returns the id of the active agent, or -1 if empty.
	ActiveID() int
	// SwitchTo makes the agent with the given id active if present;
	// otherwise it is a silent no-op.
	SwitchTo(id int)
	// Next/Prev cycle the active index among the current agent list.
	Next()
	Prev()
	// Len returns the number of live agents.
	Len() int
}
