package lock

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAcquireAndRelease(t *testing.T) {
	dir := t.TempDir()

	f, err := Acquire(dir)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(dir, FileName))

	f.Release()
	require.NoFileExists(t, filepath.Join(dir, FileName))
}

func TestStaleLockCleanup(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".cctakt"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("999999999"), 0o644))

	f, err := Acquire(dir)
	require.NoError(t, err, "a stale lock should not block acquisition")

	content, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	require.Equal(t, strconv.Itoa(os.Getpid()), string(content))

	f.Release()
}

func TestAcquireFailsWhileLiveHolderRuns(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".cctakt"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(strconv.Itoa(os.Getpid())), 0o644))

	_, err := Acquire(dir)
	require.Error(t, err)
}

func TestIsProcessAliveCurrent(t *testing.T) {
	require.True(t, isProcessAlive(os.Getpid()))
}

func TestReleaseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	f, err := Acquire(dir)
	require.NoError(t, err)
	f.Release()
	require.NotPanics(t, func() { f.Release() })
}
