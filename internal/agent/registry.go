package agent

import (
	"strconv"

	"github.com/cctakt/cctakt/internal/core"
)

// closer is implemented by both Interactive and Worker: the resource
// teardown sequence (writer, then reading end, then reaped child) lives on
// each concrete type since interactive and worker agents own different
// handles.
type closer interface {
	Close() error
}

// Registry is the concrete AgentRegistry: an append-only slice plus an
// active index that stays valid while non-empty. Ids are monotonic and
// never reused; the slice index of a given id shifts as older agents are
// removed, so callers must look agents up by id, not by position.
type Registry struct {
	agents   []*core.Agent
	backing  map[int]closer
	nextID   int
	activeAt int // index into agents, or -1 when empty
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{backing: make(map[int]closer), activeAt: -1}
}

// Add appends a, assigns it the next monotonic id, makes it active, and
// returns the id. backing may be nil for agents without attachable
// resources (tests, stubs).
func (r *Registry) Add(a *core.Agent) int {
	r.nextID++
	a.ID = r.nextID
	r.agents = append(r.agents, a)
	r.activeAt = len(r.agents) - 1
	return a.ID
}

// AddBacked is Add plus registering the resource handle Remove will Close.
func (r *Registry) AddBacked(a *core.Agent, backing closer) int {
	id := r.Add(a)
	if backing != nil {
		r.backing[id] = backing
	}
	return id
}

// Handle returns the backing resource registered via AddBacked for id, or
// nil. Callers (the input router, the renderer) type-assert it to the
// capability they need — e.g. an interface exposing SendBytes — since the
// registry itself only depends on Close.
func (r *Registry) Handle(id int) interface{} {
	if h, ok := r.backing[id]; ok {
		return h
	}
	return nil
}

func (r *Registry) indexOf(id int) int {
	for i, a := range r.agents {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// Get returns the agent with the given id, or nil.
func (r *Registry) Get(id int) *core.Agent {
	if i := r.indexOf(id); i >= 0 {
		return r.agents[i]
	}
	return nil
}

// Remove releases the agent's resources, in dependency order (handled by
// the backing's own Close: writer, then master/EOF, then reap), and
// rebalances the active index so it stays valid.
func (r *Registry) Remove(id int) error {
	i := r.indexOf(id)
	if i < 0 {
		return core.ErrNotFound("agent", strconv.Itoa(id))
	}

	if backing, ok := r.backing[id]; ok {
		if err := backing.Close(); err != nil {
			return err
		}
		delete(r.backing, id)
	}

	r.agents = append(r.agents[:i], r.agents[i+1:]...)

	switch {
	case len(r.agents) == 0:
		r.activeAt = -1
	case r.activeAt > i:
		r.activeAt--
	case r.activeAt >= len(r.agents):
		r.activeAt = len(r.agents) - 1
	}
	return nil
}

// All returns agents in insertion order.
func (r *Registry) All() []*core.Agent {
	out := make([]*core.Agent, len(r.agents))
	copy(out, r.agents)
	return out
}

// Workers returns every agent with RoleWorker.
func (r *Registry) Workers() []*core.Agent {
	var out []*core.Agent
	for _, a := range r.agents {
		if a.Role == core.RoleWorker {
			out = append(out, a)
		}
	}
	return out
}

// Interactive returns the sole RoleInteractive agent, or nil.
func (r *Registry) Interactive() *core.Agent {
	for _, a := range r.agents {
		if a.Role == core.RoleInteractive {
			return a
		}
	}
	return nil
}

// Active returns the currently active agent, or nil if empty.
func (r *Registry) Active() *core.Agent {
	if r.activeAt < 0 || r.activeAt >= len(r.agents) {
		return nil
	}
	return r.agents[r.activeAt]
}

// ActiveID returns the id of the active agent, or -1 if empty.
func (r *Registry) ActiveID() int {
	a := r.Active()
	if a == nil {
		return -1
	}
	return a.ID
}

// SwitchTo makes the agent with the given id active if present; otherwise
// it is a silent no-op, matching the bounds-checked switch_to contract.
func (r *Registry) SwitchTo(id int) {
	if i := r.indexOf(id); i >= 0 {
		r.activeAt = i
	}
}

// Next cycles the active index forward, wrapping at the end.
func (r *Registry) Next() {
	if len(r.agents) == 0 {
		return
	}
	r.activeAt = (r.activeAt + 1) % len(r.agents)
}

// Prev cycles the active index backward, wrapping at the start.
func (r *Registry) Prev() {
	if len(r.agents) == 0 {
		return
	}
	r.activeAt = (r.activeAt - 1 + len(r.agents)) % len(r.agents)
}

// Len returns the number of live agents.
func (r *Registry) Len() int {
	return len(r.agents)
}

var _ core.AgentRegistry = (*Registry)(nil)
