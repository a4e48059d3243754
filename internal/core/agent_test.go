package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAgentIsTerminal(t *testing.T) {
	a := &Agent{Role: RoleWorker, WorkState: WorkWorking}
	assert.False(t, a.IsTerminal())

	a.WorkState = WorkCompleted
	assert.True(t, a.IsTerminal())
}

func TestAgentHasWorktree(t *testing.T) {
	a := &Agent{Role: RoleWorker}
	assert.False(t, a.HasWorktree())

	a.WorktreePath = "/repo/.worktrees/feat-auth"
	assert.True(t, a.HasWorktree())
}
