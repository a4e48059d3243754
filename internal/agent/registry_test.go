package agent

import (
	"errors"
	"testing"

	"github.com/cctakt/cctakt/internal/core"
	"github.com/stretchr/testify/require"
)

type fakeCloser struct {
	closed bool
	err    error
}

func (f *fakeCloser) Close() error {
	f.closed = true
	return f.err
}

func TestRegistryAddAssignsMonotonicIDs(t *testing.T) {
	r := NewRegistry()
	id1 := r.Add(&core.Agent{Name: "a"})
	id2 := r.Add(&core.Agent{Name: "b"})
	require.Equal(t, 1, id1)
	require.Equal(t, 2, id2)
	require.Equal(t, id2, r.ActiveID())
}

func TestRegistryGetAndLen(t *testing.T) {
	r := NewRegistry()
	id := r.Add(&core.Agent{Name: "a"})
	require.Equal(t, 1, r.Len())
	require.Equal(t, "a", r.Get(id).Name)
	require.Nil(t, r.Get(999))
}

func TestRegistryRemoveRebalancesActive(t *testing.T) {
	r := NewRegistry()
	id1 := r.Add(&core.Agent{Name: "a"})
	id2 := r.Add(&core.Agent{Name: "b"})
	r.Add(&core.Agent{Name: "c"})
	r.SwitchTo(id2)

	require.NoError(t, r.Remove(id1))
	require.Equal(t, id2, r.ActiveID())
	require.Equal(t, 2, r.Len())
}

func TestRegistryRemoveClosesBacking(t *testing.T) {
	r := NewRegistry()
	fc := &fakeCloser{}
	id := r.AddBacked(&core.Agent{Name: "a"}, fc)
	require.NoError(t, r.Remove(id))
	require.True(t, fc.closed)
}

func TestRegistryRemovePropagatesCloseError(t *testing.T) {
	r := NewRegistry()
	fc := &fakeCloser{err: errors.New("boom")}
	id := r.AddBacked(&core.Agent{Name: "a"}, fc)
	require.Error(t, r.Remove(id))
}

func TestRegistryRemoveUnknownID(t *testing.T) {
	r := NewRegistry()
	require.Error(t, r.Remove(42))
}

func TestRegistryRemoveLastAgentClearsActive(t *testing.T) {
	r := NewRegistry()
	id := r.Add(&core.Agent{Name: "a"})
	require.NoError(t, r.Remove(id))
	require.Equal(t, -1, r.ActiveID())
	require.Nil(t, r.Active())
}

func TestRegistrySwitchToUnknownIDIsNoOp(t *testing.T) {
	r := NewRegistry()
	id := r.Add(&core.Agent{Name: "a"})
	r.SwitchTo(999)
	require.Equal(t, id, r.ActiveID())
}

func TestRegistryNextPrevWrap(t *testing.T) {
	r := NewRegistry()
	id1 := r.Add(&core.Agent{Name: "a"})
	id2 := r.Add(&core.Agent{Name: "b"})
	r.SwitchTo(id1)

	r.Next()
	require.Equal(t, id2, r.ActiveID())
	r.Next()
	require.Equal(t, id1, r.ActiveID())

	r.Prev()
	require.Equal(t, id2, r.ActiveID())
}

func TestRegistryInteractiveAndWorkers(t *testing.T) {
	r := NewRegistry()
	r.Add(&core.Agent{Name: "conductor", Role: core.RoleInteractive})
	r.Add(&core.Agent{Name: "w1", Role: core.RoleWorker})
	r.Add(&core.Agent{Name: "w2", Role: core.RoleWorker})

	require.Equal(t, "conductor", r.Interactive().Name)
	require.Len(t, r.Workers(), 2)
	require.Len(t, r.All(), 3)
}

func TestRegistryNextOnEmptyIsNoOp(t *testing.T) {
	r := NewRegistry()
	r.Next()
	r.Prev()
	require.Equal(t, -1, r.ActiveID())
}
