// Package plan implements the plan store (C7): the JSON file through which
// an external orchestrator (or the MCP facade) hands work to the
// supervisor.
package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cctakt/cctakt/internal/core"
	"github.com/cctakt/cctakt/internal/fsutil"
)

// DirName is the cctakt state directory, relative to the workspace root.
const DirName = ".cctakt"

// FileName is the plan file's name within DirName.
const FileName = "plan.json"

// Store tracks the plan file's on-disk state for one workspace. A Store is
// not safe for concurrent use from multiple goroutines; the supervisor
// owns exactly one per process, polling it once per tick.
type Store struct {
	dir          string
	fileName     string
	lastModified time.Time
	hasSeenFile  bool
}

// New returns a store rooted at workspaceRoot/.cctakt.
func New(workspaceRoot string) *Store {
	return &Store{dir: filepath.Join(workspaceRoot, DirName), fileName: FileName}
}

// Open returns a store for an arbitrary plan file path, for `cctakt run
// <plan-file>` where the file isn't necessarily .cctakt/plan.json.
func Open(path string) *Store {
	return &Store{dir: filepath.Dir(path), fileName: filepath.Base(path)}
}

// Path returns the plan file's full path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, s.fileName)
}

func (s *Store) ensureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return core.ErrExecution("PLAN_DIR_FAILED", "failed to create plan directory: "+err.Error())
	}
	return nil
}

// Load returns (nil, nil) when the plan file is absent. On success it
// records the file's mtime as the store's last-seen modification time.
func (s *Store) Load() (*core.Plan, error) {
	path := s.Path()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, core.ErrExecution("PLAN_STAT_FAILED", err.Error())
	}

	// path's directory may come from a user-supplied `cctakt run
	// <plan-file>` argument, not just the fixed .cctakt/plan.json.
	data, err := fsutil.ReadFileScoped(path)
	if err != nil {
		return nil, core.ErrExecution("PLAN_READ_FAILED", "failed to read plan file: "+err.Error())
	}

	var p core.Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, core.ErrValidation(core.CodeInvalidPlan, "failed to parse plan file: "+err.Error())
	}

	s.lastModified = info.ModTime()
	s.hasSeenFile = true
	return &p, nil
}

// Save writes plan as pretty JSON, then refreshes the store's recorded
// mtime so a subsequent HasChanges reports false until another writer
// touches the file.
func (s *Store) Save(p *core.Plan) error {
	if err := s.ensureDir(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return core.ErrExecution("PLAN_MARSHAL_FAILED", err.Error())
	}

	path := s.Path()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return core.ErrExecution("PLAN_WRITE_FAILED", "failed to write plan file: "+err.Error())
	}

	if info, err := os.Stat(path); err == nil {
		s.lastModified = info.ModTime()
		s.hasSeenFile = true
	}
	return nil
}

// HasChanges reports whether the plan file's mtime differs from the
// store's last-seen mtime — true if the file now exists and the store has
// never observed it before, false if the file is absent.
func (s *Store) HasChanges() bool {
	info, err := os.Stat(s.Path())
	if err != nil {
		return false
	}
	if !s.hasSeenFile {
		return true
	}
	return info.ModTime().After(s.lastModified)
}

// Clear deletes the plan file and forgets the store's last-seen mtime.
func (s *Store) Clear() error {
	path := s.Path()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return core.ErrExecution("PLAN_REMOVE_FAILED", "failed to remove plan file: "+err.Error())
	}
	s.lastModified = time.Time{}
	s.hasSeenFile = false
	return nil
}

// Archive renames the plan file to plan_<unix_seconds>.json in the same
// directory. Returns the archived path, or "" if there was no plan file.
func (s *Store) Archive(now time.Time) (string, error) {
	path := s.Path()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", nil
	}

	archivePath := filepath.Join(s.dir, fmt.Sprintf("plan_%d.json", now.Unix()))
	if err := os.Rename(path, archivePath); err != nil {
		return "", core.ErrExecution("PLAN_ARCHIVE_FAILED", "failed to archive plan file: "+err.Error())
	}

	s.lastModified = time.Time{}
	s.hasSeenFile = false
	return archivePath, nil
}
