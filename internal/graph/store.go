package graph

import (
	"fmt"
	"sort"
	"time"

	"github.com/joshharrison/loomgraph/internal/log"
	"github.com/sirupsen/logrus"
)

// Store holds dependency edges indexed by id and by both endpoint tasks.
//
// Store does no locking of its own. Callers that share one across goroutines
// should go through SyncStore.
type Store struct {
	deps   map[int64]Dependency
	byTask map[string][]int64 // task -> ids of edges touching it, ascending
	nextID int64
}

// NewStore creates an empty Store whose first dependency gets id 1.
func NewStore() *Store {
	return &Store{
		deps:   make(map[int64]Dependency),
		byTask: make(map[string][]int64),
		nextID: 1,
	}
}

// Restore rebuilds a Store from previously saved dependencies without running
// the cycle guard. Ids are kept as-is; new ids continue after nextID or after
// the largest restored id, whichever is greater.
func Restore(deps []Dependency, nextID int64) (*Store, error) {
	s := NewStore()

	sorted := make([]Dependency, len(deps))
	copy(sorted, deps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	for _, d := range sorted {
		if !d.Type.Valid() {
			return nil, fmt.Errorf("restore dependency %d: %w: %q", d.ID, ErrInvalidType, d.Type)
		}
		if d.ID <= 0 {
			return nil, fmt.Errorf("restore dependency %s: non-positive id", d)
		}
		if _, dup := s.deps[d.ID]; dup {
			return nil, fmt.Errorf("restore dependency %d: duplicate id", d.ID)
		}
		s.insert(d)
		if d.ID >= s.nextID {
			s.nextID = d.ID + 1
		}
	}
	if nextID > s.nextID {
		s.nextID = nextID
	}
	return s, nil
}

// CreateDependency validates and stores a new edge, returning its id.
// Scheduling edges that would close a loop are rejected with a *CycleError and
// the store is left untouched.
func (s *Store) CreateDependency(from, to string, typ DependencyType, createdBy string) (int64, error) {
	if !typ.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidType, typ)
	}
	if typ.AffectsScheduling() {
		if err := s.checkCycle(from, to, typ); err != nil {
			log.GetLogger().WithFields(logrus.Fields{
				"from": from,
				"to":   to,
				"type": typ,
			}).Warn("rejected dependency that would create a cycle")
			return 0, err
		}
	}
	return s.add(from, to, typ, createdBy), nil
}

// AddUnchecked stores an edge without consulting the cycle guard. It exists
// for importing state from other systems; DetectCycles audits the result.
func (s *Store) AddUnchecked(from, to string, typ DependencyType, createdBy string) (int64, error) {
	if !typ.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidType, typ)
	}
	return s.add(from, to, typ, createdBy), nil
}

func (s *Store) add(from, to string, typ DependencyType, createdBy string) int64 {
	d := Dependency{
		ID:        s.nextID,
		From:      from,
		To:        to,
		Type:      typ,
		CreatedAt: time.Now().UTC(),
		CreatedBy: createdBy,
	}
	s.nextID++
	s.insert(d)

	log.GetLogger().WithFields(logrus.Fields{
		"id":   d.ID,
		"from": from,
		"to":   to,
		"type": typ,
	}).Debug("dependency created")
	return d.ID
}

func (s *Store) insert(d Dependency) {
	s.deps[d.ID] = d
	s.byTask[d.From] = append(s.byTask[d.From], d.ID)
	if d.To != d.From {
		s.byTask[d.To] = append(s.byTask[d.To], d.ID)
	}
}

// DeleteDependency removes an edge from the store and from both endpoint
// indexes. It reports false if the id is unknown.
func (s *Store) DeleteDependency(id int64) (Dependency, bool) {
	d, ok := s.deps[id]
	if !ok {
		return Dependency{}, false
	}
	delete(s.deps, id)
	s.unindex(d.From, id)
	s.unindex(d.To, id)

	log.GetLogger().WithField("id", id).Debug("dependency deleted")
	return d, true
}

func (s *Store) unindex(task string, id int64) {
	ids := s.byTask[task]
	for i, v := range ids {
		if v == id {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(s.byTask, task)
		return
	}
	s.byTask[task] = ids
}

// GetDependency returns the edge with the given id.
func (s *Store) GetDependency(id int64) (Dependency, bool) {
	d, ok := s.deps[id]
	return d, ok
}

// Lookup is GetDependency with a *NotFoundError for unknown ids.
func (s *Store) Lookup(id int64) (Dependency, error) {
	d, ok := s.deps[id]
	if !ok {
		return Dependency{}, &NotFoundError{ID: id}
	}
	return d, nil
}

// DependenciesForTask returns every edge touching task, in id order.
func (s *Store) DependenciesForTask(task string) []Dependency {
	return s.filter(task, func(Dependency) bool { return true })
}

// Blockers returns the edges naming task's direct predecessors: Blocks edges
// pointing into task and BlockedBy edges leaving it.
func (s *Store) Blockers(task string) []Dependency {
	return s.filter(task, func(d Dependency) bool {
		return d.Type.AffectsScheduling() && d.Successor() == task
	})
}

// Blocked returns the edges naming task's direct successors.
func (s *Store) Blocked(task string) []Dependency {
	return s.filter(task, func(d Dependency) bool {
		return d.Type.AffectsScheduling() && d.Predecessor() == task
	})
}

func (s *Store) filter(task string, keep func(Dependency) bool) []Dependency {
	var out []Dependency
	for _, id := range s.byTask[task] {
		if d := s.deps[id]; keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// Dependencies returns all stored edges in id order.
func (s *Store) Dependencies() []Dependency {
	out := make([]Dependency, 0, len(s.deps))
	for _, d := range s.deps {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Tasks returns every task named by a stored edge, sorted.
func (s *Store) Tasks() []string {
	tasks := make([]string, 0, len(s.byTask))
	for task := range s.byTask {
		tasks = append(tasks, task)
	}
	sort.Strings(tasks)
	return tasks
}

// Len returns the number of stored edges.
func (s *Store) Len() int {
	return len(s.deps)
}

// NextID returns the id the next created dependency will receive.
func (s *Store) NextID() int64 {
	return s.nextID
}

// successors lists the tasks task directly blocks, following edge order.
func (s *Store) successors(task string) []string {
	var out []string
	for _, id := range s.byTask[task] {
		d := s.deps[id]
		if d.Type.AffectsScheduling() && d.Predecessor() == task {
			out = append(out, d.Successor())
		}
	}
	return out
}
