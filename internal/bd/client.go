package bd

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/tidwall/gjson"
)

// Runner executes the bd binary and returns its combined output.
type Runner func(bin string, args ...string) ([]byte, error)

// Client wraps the bd CLI binary to read tasks and their dependencies.
type Client struct {
	BdBin  string // path to bd binary (default: "bd")
	DbPath string // --db flag value (optional)

	runner Runner
}

// NewClient creates a Client using the given bd binary path and database path.
func NewClient(bdBin, dbPath string) *Client {
	if bdBin == "" {
		bdBin = "bd"
	}
	return &Client{BdBin: bdBin, DbPath: dbPath, runner: execRunner}
}

// WithRunner replaces how the bd binary is invoked.
func (c *Client) WithRunner(r Runner) *Client {
	c.runner = r
	return c
}

func execRunner(bin string, args ...string) ([]byte, error) {
	return exec.Command(bin, args...).CombinedOutput()
}

func (c *Client) baseArgs() []string {
	if c.DbPath != "" {
		return []string{"--db", c.DbPath}
	}
	return nil
}

func (c *Client) run(args ...string) ([]byte, error) {
	all := append(c.baseArgs(), args...)
	out, err := c.runner(c.BdBin, all...)
	if err != nil {
		return nil, fmt.Errorf("bd %s: %w\n%s", strings.Join(args, " "), err, string(out))
	}
	return out, nil
}

// RawTask is the subset of a bd task the scheduler cares about.
type RawTask struct {
	ID       string
	Title    string
	Status   string
	Estimate int // minutes

	// Dependencies are NOT in bd list output — populated separately via Deps.
	BlockedBy []string
	Blocks    []string
}

// ListOpen returns all open tasks.
func (c *Client) ListOpen() ([]RawTask, error) {
	out, err := c.run("list", "--json", "--status", "open", "--limit", "0")
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(out) {
		return nil, fmt.Errorf("parse bd list output: invalid JSON")
	}

	var tasks []RawTask
	gjson.ParseBytes(out).ForEach(func(_, item gjson.Result) bool {
		tasks = append(tasks, RawTask{
			ID:       item.Get("id").String(),
			Title:    item.Get("title").String(),
			Status:   item.Get("status").String(),
			Estimate: int(item.Get("estimate").Int()),
		})
		return true
	})
	return tasks, nil
}

// Deps returns the dependency edges for a task.
// blockedBy = what this task depends on (bd dep list <id> --direction=down)
// blocks = what depends on this task (bd dep list <id> --direction=up)
func (c *Client) Deps(id string) (blocks, blockedBy []string, err error) {
	blockedBy, err = c.depList(id, "down")
	if err != nil {
		return nil, nil, err
	}
	blocks, err = c.depList(id, "up")
	if err != nil {
		return nil, nil, err
	}
	return blocks, blockedBy, nil
}

func (c *Client) depList(id, direction string) ([]string, error) {
	out, err := c.run("dep", "list", id, "--direction="+direction, "--json")
	if err != nil {
		// dep list may fail if no deps exist; treat as empty
		return nil, nil
	}
	if !gjson.ValidBytes(out) {
		return nil, fmt.Errorf("parse bd dep list (%s): invalid JSON", direction)
	}
	var ids []string
	for _, r := range gjson.GetBytes(out, "#.id").Array() {
		ids = append(ids, r.String())
	}
	return ids, nil
}

// OpenTasksWithDeps lists open tasks and fills in their dependency edges.
// A task whose deps cannot be read is returned without them and reported
// through warn.
func (c *Client) OpenTasksWithDeps(warn func(id string, err error)) ([]RawTask, error) {
	tasks, err := c.ListOpen()
	if err != nil {
		return nil, fmt.Errorf("list open tasks: %w", err)
	}
	for i := range tasks {
		blocks, blockedBy, err := c.Deps(tasks[i].ID)
		if err != nil {
			if warn != nil {
				warn(tasks[i].ID, err)
			}
			continue
		}
		tasks[i].Blocks = blocks
		tasks[i].BlockedBy = blockedBy
	}
	return tasks, nil
}

// Estimates maps task ids to their estimates in minutes.
func Estimates(tasks []RawTask) map[string]int {
	out := make(map[string]int, len(tasks))
	for _, t := range tasks {
		out[t.ID] = t.Estimate
	}
	return out
}
