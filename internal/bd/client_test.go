package bd

import (
	"errors"
	"strings"
	"testing"
)

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("", "")
	if c.BdBin != "bd" {
		t.Errorf("expected default bd binary 'bd', got %q", c.BdBin)
	}
	if c.DbPath != "" {
		t.Errorf("expected empty db path, got %q", c.DbPath)
	}
}

func TestNewClient_Custom(t *testing.T) {
	c := NewClient("/usr/local/bin/bd", "/path/to/db")
	if c.BdBin != "/usr/local/bin/bd" {
		t.Errorf("expected custom bd binary, got %q", c.BdBin)
	}
	if c.DbPath != "/path/to/db" {
		t.Errorf("expected custom db path, got %q", c.DbPath)
	}
}

func TestBaseArgs_WithDB(t *testing.T) {
	c := NewClient("bd", "/my/db")
	args := c.baseArgs()
	if len(args) != 2 || args[0] != "--db" || args[1] != "/my/db" {
		t.Errorf("expected [--db /my/db], got %v", args)
	}
}

func TestBaseArgs_WithoutDB(t *testing.T) {
	c := NewClient("bd", "")
	args := c.baseArgs()
	if len(args) != 0 {
		t.Errorf("expected empty args, got %v", args)
	}
}

// fakeBd answers bd invocations from canned output keyed by the joined args.
func fakeBd(t *testing.T, responses map[string]string) Runner {
	t.Helper()
	return func(bin string, args ...string) ([]byte, error) {
		key := strings.Join(args, " ")
		out, ok := responses[key]
		if !ok {
			return []byte("no such command"), errors.New("exit status 1")
		}
		return []byte(out), nil
	}
}

func TestOpenTasksWithDeps(t *testing.T) {
	c := NewClient("bd", "my.db").WithRunner(fakeBd(t, map[string]string{
		"--db my.db list --json --status open --limit 0": `[
			{"id": "bd-1", "title": "Design", "status": "open", "estimate": 240},
			{"id": "bd-2", "title": "Build", "status": "open"}
		]`,
		"--db my.db dep list bd-1 --direction=down --json": `[]`,
		"--db my.db dep list bd-1 --direction=up --json":   `[{"id": "bd-2"}]`,
		"--db my.db dep list bd-2 --direction=down --json": `[{"id": "bd-1"}]`,
		// bd-2 up is missing: dep list failures count as no deps.
	}))

	tasks, err := c.OpenTasksWithDeps(func(id string, err error) {
		t.Errorf("unexpected warning for %s: %v", id, err)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].Estimate != 240 || tasks[0].Title != "Design" {
		t.Errorf("unexpected first task: %+v", tasks[0])
	}
	if len(tasks[0].Blocks) != 1 || tasks[0].Blocks[0] != "bd-2" {
		t.Errorf("expected bd-1 to block bd-2, got %v", tasks[0].Blocks)
	}
	if len(tasks[1].BlockedBy) != 1 || tasks[1].BlockedBy[0] != "bd-1" {
		t.Errorf("expected bd-2 blocked by bd-1, got %v", tasks[1].BlockedBy)
	}

	est := Estimates(tasks)
	if est["bd-1"] != 240 || est["bd-2"] != 0 {
		t.Errorf("unexpected estimates: %v", est)
	}
}

func TestOpenTasksWithDeps_BadDepOutputWarns(t *testing.T) {
	c := NewClient("bd", "").WithRunner(fakeBd(t, map[string]string{
		"list --json --status open --limit 0": `[{"id": "x"}]`,
		"dep list x --direction=down --json":  `not json`,
	}))

	var warned []string
	tasks, err := c.OpenTasksWithDeps(func(id string, err error) {
		warned = append(warned, id)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 1 || len(warned) != 1 || warned[0] != "x" {
		t.Errorf("expected one task and one warning, got %v / %v", tasks, warned)
	}
}

func TestListOpen_Failure(t *testing.T) {
	c := NewClient("bd", "").WithRunner(fakeBd(t, nil))
	if _, err := c.ListOpen(); err == nil {
		t.Error("expected error when bd fails")
	}
}
