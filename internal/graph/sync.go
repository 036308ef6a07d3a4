package graph

import "sync"

// SyncStore serializes access to a Store. Mutations take the write lock so
// the cycle guard always sees a consistent graph; queries share the read lock.
type SyncStore struct {
	mu    sync.RWMutex
	store *Store
}

// NewSyncStore wraps s. The caller must not use s directly afterwards.
func NewSyncStore(s *Store) *SyncStore {
	if s == nil {
		s = NewStore()
	}
	return &SyncStore{store: s}
}

func (ss *SyncStore) CreateDependency(from, to string, typ DependencyType, createdBy string) (int64, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.store.CreateDependency(from, to, typ, createdBy)
}

func (ss *SyncStore) AddUnchecked(from, to string, typ DependencyType, createdBy string) (int64, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.store.AddUnchecked(from, to, typ, createdBy)
}

func (ss *SyncStore) DeleteDependency(id int64) (Dependency, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.store.DeleteDependency(id)
}

func (ss *SyncStore) GetDependency(id int64) (Dependency, bool) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.store.GetDependency(id)
}

func (ss *SyncStore) Lookup(id int64) (Dependency, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.store.Lookup(id)
}

func (ss *SyncStore) DependenciesForTask(task string) []Dependency {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.store.DependenciesForTask(task)
}

func (ss *SyncStore) Blockers(task string) []Dependency {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.store.Blockers(task)
}

func (ss *SyncStore) Blocked(task string) []Dependency {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.store.Blocked(task)
}

func (ss *SyncStore) Dependencies() []Dependency {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.store.Dependencies()
}

func (ss *SyncStore) Tasks() []string {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.store.Tasks()
}

func (ss *SyncStore) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.store.Len()
}

func (ss *SyncStore) NextID() int64 {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.store.NextID()
}

func (ss *SyncStore) DetectCycles() [][]string {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.store.DetectCycles()
}

// View runs fn with the read lock held, for callers that need several queries
// against the same snapshot (a CPM pass, a report).
func (ss *SyncStore) View(fn func(s *Store)) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	fn(ss.store)
}

// Update runs fn with the write lock held.
func (ss *SyncStore) Update(fn func(s *Store) error) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return fn(ss.store)
}
