package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joshharrison/loomgraph/internal/graph"
)

func TestSaveAndLoad(t *testing.T) {
	repo := Open(filepath.Join(t.TempDir(), ".loomgraph"))

	s := graph.NewStore()
	if _, err := s.CreateDependency("a", "b", graph.Blocks, "alice"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateDependency("b", "c", graph.RelatesTo, "bob"); err != nil {
		t.Fatalf("create: %v", err)
	}
	deleted, _ := s.CreateDependency("c", "d", graph.Blocks, "bob")
	s.DeleteDependency(deleted)

	if err := repo.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := repo.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Len() != 2 {
		t.Errorf("expected 2 dependencies, got %d", loaded.Len())
	}
	if loaded.NextID() != 4 {
		t.Errorf("expected next id 4 after a deleted edge, got %d", loaded.NextID())
	}
	d, ok := loaded.GetDependency(1)
	if !ok {
		t.Fatal("expected dependency 1 to survive a round trip")
	}
	if d.From != "a" || d.To != "b" || d.Type != graph.Blocks || d.CreatedBy != "alice" {
		t.Errorf("unexpected dependency after load: %+v", d)
	}
	if len(loaded.Blocked("a")) != 1 {
		t.Errorf("expected indexes rebuilt on load")
	}
}

func TestLoad_MissingIsEmpty(t *testing.T) {
	repo := Open(t.TempDir())

	s, err := repo.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Len() != 0 || s.NextID() != 1 {
		t.Errorf("expected empty store, got len=%d next=%d", s.Len(), s.NextID())
	}
}

func TestLoad_Corrupt(t *testing.T) {
	dir := t.TempDir()
	repo := Open(dir)
	if err := os.WriteFile(repo.Path(), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Load(); err == nil {
		t.Error("expected parse error for corrupt state")
	}
}

func TestLoad_KeepsCyclesForAudit(t *testing.T) {
	dir := t.TempDir()
	repo := Open(dir)
	data := `{"next_id": 3, "dependencies": [
		{"id": 1, "from_task": "a", "to_task": "b", "type": "blocks"},
		{"id": 2, "from_task": "b", "to_task": "a", "type": "blocks"}
	]}`
	if err := os.WriteFile(repo.Path(), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := repo.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cycles := s.DetectCycles(); len(cycles) != 1 {
		t.Errorf("expected the stored cycle to be visible, got %v", cycles)
	}
}

func TestExistsAndClean(t *testing.T) {
	repo := Open(filepath.Join(t.TempDir(), "state"))

	if repo.Exists() {
		t.Error("expected Exists()=false before creation")
	}
	if err := repo.Save(graph.NewStore()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !repo.Exists() {
		t.Error("expected Exists()=true after Save")
	}
	if err := repo.Clean(); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if repo.Exists() {
		t.Error("expected Exists()=false after Clean()")
	}
}

func TestClean_KeepsOtherFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".loomgraph")
	repo := Open(dir)
	if err := repo.Save(graph.NewStore()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	cfgPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfgPath, []byte("actor = \"alice\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := repo.Clean(); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if repo.Exists() {
		t.Error("expected snapshot to be removed")
	}
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("config was removed by Clean: %v", err)
	}
	if string(data) != "actor = \"alice\"\n" {
		t.Errorf("config changed: %q", data)
	}
}

func TestClean_RemovesEmptyDirAndIsIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	repo := Open(dir)
	if err := repo.Save(graph.NewStore()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repo.Clean(); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("expected empty state dir to be removed, stat err = %v", err)
	}
	if err := repo.Clean(); err != nil {
		t.Errorf("second Clean: %v", err)
	}
}

func TestSave_SyncStore(t *testing.T) {
	repo := Open(t.TempDir())
	ss := graph.NewSyncStore(nil)
	if _, err := ss.CreateDependency("x", "y", graph.Blocks, ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Save(ss); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := repo.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Len() != 1 {
		t.Errorf("expected 1 dependency, got %d", loaded.Len())
	}
}
