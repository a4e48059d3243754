package agent

import (
	"testing"
	"time"

	"github.com/cctakt/cctakt/internal/core"
	"github.com/stretchr/testify/require"
)

func TestUpdateInteractiveWorkStateStartingUntilTaskSent(t *testing.T) {
	a := &core.Agent{WorkState: core.WorkStarting}
	UpdateInteractiveWorkState(a, "", time.Now())
	require.Equal(t, core.WorkStarting, a.WorkState)
}

func TestUpdateInteractiveWorkStateWorkingWhenRecent(t *testing.T) {
	a := &core.Agent{WorkState: core.WorkStarting, TaskSent: true, LastActivity: time.Now()}
	UpdateInteractiveWorkState(a, "some output", time.Now())
	require.Equal(t, core.WorkWorking, a.WorkState)
}

func TestUpdateInteractiveWorkStateIdleWhenStale(t *testing.T) {
	a := &core.Agent{WorkState: core.WorkWorking, TaskSent: true, LastActivity: time.Now().Add(-5 * time.Second)}
	UpdateInteractiveWorkState(a, "$ ", time.Now())
	require.Equal(t, core.WorkIdle, a.WorkState)
}

func TestUpdateInteractiveWorkStateCompletedOnPromptAndCommitMarker(t *testing.T) {
	a := &core.Agent{WorkState: core.WorkWorking, TaskSent: true, LastActivity: time.Now().Add(-5 * time.Second)}
	screen := "Changes committed successfully\n[main abc1234] did the thing\n 2 files changed, 10 insertions(+)\n❯ "
	justCompleted := UpdateInteractiveWorkState(a, screen, time.Now())
	require.True(t, justCompleted)
	require.Equal(t, core.WorkCompleted, a.WorkState)
}

func TestUpdateInteractiveWorkStateNoMarkerStaysIdle(t *testing.T) {
	a := &core.Agent{WorkState: core.WorkWorking, TaskSent: true, LastActivity: time.Now().Add(-5 * time.Second)}
	justCompleted := UpdateInteractiveWorkState(a, "❯ ", time.Now())
	require.False(t, justCompleted)
	require.Equal(t, core.WorkIdle, a.WorkState)
}

func TestUpdateInteractiveWorkStateCompletedIsAbsorbing(t *testing.T) {
	a := &core.Agent{WorkState: core.WorkCompleted, TaskSent: true, LastActivity: time.Now().Add(-10 * time.Second)}
	justCompleted := UpdateInteractiveWorkState(a, "$ ", time.Now())
	require.False(t, justCompleted)
	require.Equal(t, core.WorkCompleted, a.WorkState)
}

func TestPromptWaitingDollarSuffix(t *testing.T) {
	require.True(t, promptWaiting("some line\n> $ :"))
}

func TestPromptWaitingArrowGlyph(t *testing.T) {
	require.True(t, promptWaiting("foo\n❯ bar"))
}

func TestPromptWaitingIgnoresBlankTrailingLines(t *testing.T) {
	require.True(t, promptWaiting("❯ \n\n\n"))
}

func TestPromptWaitingFalseForOrdinaryOutput(t *testing.T) {
	require.False(t, promptWaiting("just some text output"))
}

func TestUpdateWorkerWorkStateStaysWorkingUntilCompleted(t *testing.T) {
	a := &core.Agent{WorkState: core.WorkWorking}
	justCompleted := UpdateWorkerWorkState(a, false, "", "")
	require.False(t, justCompleted)
	require.Equal(t, core.WorkWorking, a.WorkState)
}

func TestUpdateWorkerWorkStateCompletedWithError(t *testing.T) {
	a := &core.Agent{WorkState: core.WorkWorking}
	justCompleted := UpdateWorkerWorkState(a, true, "", "boom")
	require.True(t, justCompleted)
	require.Equal(t, core.WorkCompleted, a.WorkState)
	require.Equal(t, "boom", a.Error)
}

func TestUpdateWorkerWorkStateCompletedSuccess(t *testing.T) {
	a := &core.Agent{WorkState: core.WorkWorking}
	justCompleted := UpdateWorkerWorkState(a, true, "done", "")
	require.True(t, justCompleted)
	require.Equal(t, core.WorkCompleted, a.WorkState)
	require.NotNil(t, a.Result)
}
