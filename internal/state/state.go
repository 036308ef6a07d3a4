package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joshharrison/loomgraph/internal/graph"
)

// DefaultDir is where snapshots live when no directory is configured.
const DefaultDir = ".loomgraph"

const stateFile = "deps.json"

// Snapshot is the persisted form of a dependency store. Only edges are saved;
// schedules are always recomputed.
type Snapshot struct {
	NextID       int64              `json:"next_id"`
	SavedAt      time.Time          `json:"saved_at"`
	Dependencies []graph.Dependency `json:"dependencies"`
}

// Source is what Save needs from a store.
type Source interface {
	Dependencies() []graph.Dependency
	NextID() int64
}

// Repo reads and writes snapshots in a directory.
type Repo struct {
	dir string
	mu  sync.Mutex
}

// Open returns a Repo rooted at dir. Nothing is created until Save.
func Open(dir string) *Repo {
	if dir == "" {
		dir = DefaultDir
	}
	return &Repo{dir: dir}
}

// Path returns the snapshot file location.
func (r *Repo) Path() string {
	return filepath.Join(r.dir, stateFile)
}

// Exists checks if a snapshot file exists.
func (r *Repo) Exists() bool {
	_, err := os.Stat(r.Path())
	return err == nil
}

// Load reads the snapshot and rebuilds the store from it. A missing snapshot
// yields an empty store.
func (r *Repo) Load() (*graph.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.Path())
	if errors.Is(err, os.ErrNotExist) {
		return graph.NewStore(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	s, err := graph.Restore(snap.Dependencies, snap.NextID)
	if err != nil {
		return nil, fmt.Errorf("restore state: %w", err)
	}
	return s, nil
}

// Save persists the store's edges. The file is replaced atomically.
func (r *Repo) Save(src Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	snap := Snapshot{
		NextID:       src.NextID(),
		SavedAt:      time.Now().UTC(),
		Dependencies: src.Dependencies(),
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp, err := os.CreateTemp(r.dir, stateFile+".*")
	if err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.Path()); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// Clean removes the snapshot. The directory is removed too when nothing
// else (a config file, say) lives in it.
func (r *Repo) Clean() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove state: %w", err)
	}
	entries, err := os.ReadDir(r.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read state dir: %w", err)
	}
	if len(entries) == 0 {
		if err := os.Remove(r.dir); err != nil {
			return fmt.Errorf("remove state dir: %w", err)
		}
	}
	return nil
}
