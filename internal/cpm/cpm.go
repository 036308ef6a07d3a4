package cpm

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/joshharrison/loomgraph/internal/log"
)

// ErrCyclicSchedule is returned by Analyze when some tasks sit on a
// dependency cycle and cannot be ordered.
var ErrCyclicSchedule = errors.New("schedule contains a dependency cycle")

// TopologicalSort orders the tasks named in durations so that every
// scheduling edge between two of them runs from an earlier to a later task.
// Edges touching tasks outside durations are ignored. Tasks on a cycle are
// left out of the result.
//
// BlockedBy edges count as well, read in their Blocks direction, so "b
// blocked-by a" orders a before b exactly like "a blocks b".
func TopologicalSort(g Graph, durations map[string]float64) []string {
	var order []string
	withView(g, func(g Graph) { order = topoSort(g, durations) })
	return order
}

func topoSort(g Graph, durations map[string]float64) []string {
	inDegree := make(map[string]int, len(durations))
	for id := range durations {
		for _, d := range g.Blockers(id) {
			if _, ok := durations[d.Predecessor()]; ok {
				inDegree[id]++
			}
		}
	}

	// Start with roots (in-degree 0), sorted for determinism
	var queue []string
	for id := range durations {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	order := make([]string, 0, len(durations))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		var newReady []string
		for _, d := range g.Blocked(node) {
			succ := d.Successor()
			if _, ok := durations[succ]; !ok {
				continue
			}
			inDegree[succ]--
			if inDegree[succ] == 0 {
				newReady = append(newReady, succ)
			}
		}
		sort.Strings(newReady)
		queue = append(queue, newReady...)
	}

	return order
}

// CalculateCriticalPath runs the forward and backward CPM passes over the
// tasks in durations and returns one node per task in topological order.
// It never fails: tasks that cannot be ordered are appended last, sorted by
// id, with only their duration filled in.
func CalculateCriticalPath(g Graph, durations map[string]float64) []CriticalPathNode {
	return schedule(g, durations).Nodes
}

// GetCriticalPath returns the ids of the critical tasks in topological order.
func GetCriticalPath(g Graph, durations map[string]float64) []string {
	return schedule(g, durations).CriticalPath
}

// Analyze performs the full critical path analysis, including waves of
// parallelizable tasks. Unlike CalculateCriticalPath it reports tasks stuck on
// a cycle as an error, alongside the partial result.
func Analyze(g Graph, durations map[string]float64) (*Result, error) {
	result := schedule(g, durations)
	if len(result.Unscheduled) > 0 {
		return result, fmt.Errorf("%w: %d of %d tasks could not be ordered (%v)",
			ErrCyclicSchedule, len(result.Unscheduled), len(durations), result.Unscheduled)
	}
	return result, nil
}

func schedule(g Graph, durations map[string]float64) *Result {
	var result *Result
	withView(g, func(g Graph) { result = schedulePass(g, durations) })
	return result
}

func schedulePass(g Graph, durations map[string]float64) *Result {
	order := topoSort(g, durations)

	result := &Result{
		Tasks:     make(map[string]*CriticalPathNode, len(durations)),
		TopoOrder: order,
	}

	nodes := make(map[string]*CriticalPathNode, len(durations))
	for id, dur := range durations {
		nodes[id] = &CriticalPathNode{TaskID: id, Duration: dur}
	}
	ordered := make(map[string]bool, len(order))
	for _, id := range order {
		ordered[id] = true
	}

	// Forward pass: ES = max(EF of all blockers)
	for _, id := range order {
		n := nodes[id]
		es := 0.0
		for _, d := range g.Blockers(id) {
			pred := d.Predecessor()
			if !ordered[pred] {
				continue
			}
			if ef := nodes[pred].EarliestFinish; ef > es {
				es = ef
			}
		}
		n.EarliestStart = es
		n.EarliestFinish = es + n.Duration
	}

	total := 0.0
	for _, id := range order {
		if ef := nodes[id].EarliestFinish; ef > total {
			total = ef
		}
	}
	result.TotalDuration = total

	// Backward pass: tasks without successors may finish at project end,
	// everything else must start before its earliest successor.
	for i := len(order) - 1; i >= 0; i-- {
		n := nodes[order[i]]

		lf := math.Inf(1)
		for _, d := range g.Blocked(n.TaskID) {
			succ := d.Successor()
			if !ordered[succ] {
				continue
			}
			if ls := nodes[succ].LatestStart; ls < lf {
				lf = ls
			}
		}
		if math.IsInf(lf, 1) {
			lf = total
		}
		n.LatestFinish = lf
		n.LatestStart = lf - n.Duration
		n.Slack = n.LatestStart - n.EarliestStart
		n.IsCritical = math.Abs(n.Slack) < CriticalTolerance
	}

	for _, id := range order {
		result.Nodes = append(result.Nodes, *nodes[id])
		if nodes[id].IsCritical {
			result.CriticalPath = append(result.CriticalPath, id)
		}
	}

	if len(order) < len(durations) {
		for id := range durations {
			if !ordered[id] {
				result.Unscheduled = append(result.Unscheduled, id)
			}
		}
		sort.Strings(result.Unscheduled)
		for _, id := range result.Unscheduled {
			result.Nodes = append(result.Nodes, *nodes[id])
		}
		log.GetLogger().WithField("tasks", result.Unscheduled).
			Warn("tasks on a dependency cycle were left unscheduled")
	}

	result.Waves = computeWaves(result.Nodes[:len(order)])

	for i := range result.Nodes {
		result.Tasks[result.Nodes[i].TaskID] = &result.Nodes[i]
	}
	return result
}

// computeWaves groups tasks by their earliest start time and records each
// node's wave index.
func computeWaves(nodes []CriticalPathNode) []Wave {
	esGroups := make(map[float64][]int)
	for i := range nodes {
		es := nodes[i].EarliestStart
		esGroups[es] = append(esGroups[es], i)
	}

	esValues := make([]float64, 0, len(esGroups))
	for es := range esGroups {
		esValues = append(esValues, es)
	}
	sort.Float64s(esValues)

	waves := make([]Wave, len(esValues))
	for w, es := range esValues {
		idx := esGroups[es]

		// Critical tasks first, then by id
		sort.SliceStable(idx, func(a, b int) bool {
			na, nb := nodes[idx[a]], nodes[idx[b]]
			if na.IsCritical != nb.IsCritical {
				return na.IsCritical
			}
			return na.TaskID < nb.TaskID
		})

		wave := Wave{Index: w, Start: es}
		for _, i := range idx {
			nodes[i].Wave = w
			wave.TaskIDs = append(wave.TaskIDs, nodes[i].TaskID)
			if nodes[i].IsCritical {
				wave.IsCritical = true
			}
		}
		waves[w] = wave
	}
	return waves
}
