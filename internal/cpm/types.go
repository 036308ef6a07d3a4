package cpm

import "github.com/joshharrison/loomgraph/internal/graph"

// CriticalTolerance is the slack below which a task counts as critical,
// in the same unit as the durations (conventionally days).
const CriticalTolerance = 0.01

// Graph is the read side of the dependency store the engine schedules over.
// Both *graph.Store and *graph.SyncStore satisfy it.
type Graph interface {
	Blockers(task string) []graph.Dependency
	Blocked(task string) []graph.Dependency
}

// viewer is a Graph that can hold one read view across many queries.
// *graph.SyncStore implements it; the engine runs each whole pass inside View
// so no mutation lands between the in-degree count and the Kahn releases.
type viewer interface {
	View(fn func(s *graph.Store))
}

func withView(g Graph, fn func(g Graph)) {
	if v, ok := g.(viewer); ok {
		v.View(func(s *graph.Store) { fn(s) })
		return
	}
	fn(g)
}

// CriticalPathNode holds the scheduling info for a single task. It is
// recomputed on every call and never stored.
type CriticalPathNode struct {
	TaskID         string  `json:"task_id"`
	Duration       float64 `json:"duration"`
	EarliestStart  float64 `json:"earliest_start"`
	EarliestFinish float64 `json:"earliest_finish"`
	LatestStart    float64 `json:"latest_start"`
	LatestFinish   float64 `json:"latest_finish"`
	Slack          float64 `json:"slack"`
	IsCritical     bool    `json:"is_critical"`
	Wave           int     `json:"wave"`
}

// Result holds the complete critical path analysis.
type Result struct {
	Nodes         []CriticalPathNode           `json:"nodes"` // topological order
	Tasks         map[string]*CriticalPathNode `json:"-"`
	CriticalPath  []string                     `json:"critical_path"`
	TotalDuration float64                      `json:"total_duration"`
	TopoOrder     []string                     `json:"topo_order"`
	Waves         []Wave                       `json:"waves"`
	Unscheduled   []string                     `json:"unscheduled,omitempty"` // tasks caught in a cycle
}

// Wave represents a group of tasks that can execute in parallel.
type Wave struct {
	Index      int      `json:"index"`
	Start      float64  `json:"start"`
	TaskIDs    []string `json:"task_ids"`
	IsCritical bool     `json:"is_critical"` // true if wave contains critical path tasks
}
