package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/joshharrison/loomgraph/internal/cpm"
	"github.com/joshharrison/loomgraph/internal/graph"
	"github.com/joshharrison/loomgraph/internal/ui"
)

// PrintSchedule writes a terminal-friendly CPM table followed by the waves.
func PrintSchedule(w io.Writer, result *cpm.Result) {
	fmt.Fprintf(w, "🎯 %s\n", ui.BoldCyan("Critical Path Schedule"))
	fmt.Fprintln(w, ui.Cyan("══════════════════════"))
	fmt.Fprintln(w)

	if len(result.Nodes) == 0 {
		fmt.Fprintln(w, ui.Dim("No tasks to schedule."))
		return
	}

	fmt.Fprintf(w, "Tasks:     %s\n", ui.Bold(len(result.Nodes)))
	fmt.Fprintf(w, "Duration:  %s days\n", ui.Bold(formatDays(result.TotalDuration)))
	fmt.Fprintf(w, "⚡ Critical path: %s (%d tasks)\n",
		ui.BoldYellow(strings.Join(result.CriticalPath, " → ")), len(result.CriticalPath))
	fmt.Fprintln(w)

	width := len("TASK")
	for _, n := range result.Nodes {
		if len(n.TaskID) > width {
			width = len(n.TaskID)
		}
	}

	fmt.Fprintf(w, "  %s\n", ui.Dim(fmt.Sprintf("%-*s %8s %8s %8s %8s %8s %8s",
		width, "TASK", "DUR", "ES", "EF", "LS", "LF", "SLACK")))
	unscheduled := make(map[string]bool, len(result.Unscheduled))
	for _, id := range result.Unscheduled {
		unscheduled[id] = true
	}
	for _, n := range result.Nodes {
		id := ui.Task(fmt.Sprintf("%-*s", width, n.TaskID))
		if unscheduled[n.TaskID] {
			fmt.Fprintf(w, "  %s %8s  %s\n", id, formatDays(n.Duration), ui.Red("on a dependency cycle"))
			continue
		}
		fmt.Fprintf(w, "  %s %8s %8s %8s %8s %8s %8s  %s\n", id,
			formatDays(n.Duration),
			formatDays(n.EarliestStart), formatDays(n.EarliestFinish),
			formatDays(n.LatestStart), formatDays(n.LatestFinish),
			ui.Slack(n.Slack), ui.CriticalMarker(n.IsCritical))
	}
	fmt.Fprintln(w)

	for _, wave := range result.Waves {
		fmt.Fprintf(w, "🌊 %s %d (starts day %s, %d tasks):\n",
			ui.BoldWhite("Wave"), wave.Index+1, formatDays(wave.Start), len(wave.TaskIDs))
		for _, id := range wave.TaskIDs {
			crit := ""
			if result.Tasks[id].IsCritical {
				crit = "  " + ui.CriticalMarker(true)
			}
			fmt.Fprintf(w, "  %s%s\n", ui.Task(id), crit)
		}
	}
}

// PrintCriticalPath writes the critical task ids, one per line.
func PrintCriticalPath(w io.Writer, path []string) {
	for _, id := range path {
		fmt.Fprintln(w, id)
	}
}

// PrintDependencies lists dependency records.
func PrintDependencies(w io.Writer, deps []graph.Dependency) {
	if len(deps) == 0 {
		fmt.Fprintln(w, ui.Dim("No dependencies."))
		return
	}
	for _, d := range deps {
		by := ""
		if d.CreatedBy != "" {
			by = ui.Dim(" by " + d.CreatedBy)
		}
		fmt.Fprintf(w, "  %s %s %s %s%s\n",
			ui.Dim(fmt.Sprintf("#%d", d.ID)), ui.Task(d.From), ui.DepType(string(d.Type)), ui.Task(d.To), by)
	}
}

// PrintCycles reports the cycles found by a scan.
func PrintCycles(w io.Writer, cycles [][]string) {
	if len(cycles) == 0 {
		fmt.Fprintf(w, "%s\n", ui.Green("✓ No dependency cycles."))
		return
	}
	fmt.Fprintf(w, "%s\n", ui.BoldRed(fmt.Sprintf("✗ %d dependency cycle(s):", len(cycles))))
	for i, c := range cycles {
		loop := append(append([]string(nil), c...), c[0])
		fmt.Fprintf(w, "  %d. %s\n", i+1, strings.Join(loop, " → "))
	}
}

// WriteDOT renders the scheduling edges as a Graphviz digraph. Critical tasks
// and the edges between them are drawn in red when a result is given.
func WriteDOT(w io.Writer, deps []graph.Dependency, result *cpm.Result) {
	fmt.Fprintln(w, "digraph loomgraph {")
	fmt.Fprintln(w, "  rankdir=LR;")
	fmt.Fprintln(w, "  node [shape=box, style=rounded];")
	fmt.Fprintln(w)

	critical := func(id string) bool {
		if result == nil {
			return false
		}
		n, ok := result.Tasks[id]
		return ok && n.IsCritical
	}

	seen := make(map[string]bool)
	var nodes []string
	addNode := func(id string) {
		if !seen[id] {
			seen[id] = true
			nodes = append(nodes, id)
		}
	}
	if result != nil {
		for _, n := range result.Nodes {
			addNode(n.TaskID)
		}
	}
	for _, d := range deps {
		if d.Type.AffectsScheduling() {
			addNode(d.Predecessor())
			addNode(d.Successor())
		}
	}

	for _, id := range nodes {
		attrs := "label=" + dotQuote(id)
		if result != nil {
			if n, ok := result.Tasks[id]; ok {
				attrs = fmt.Sprintf("label=\"%s\\n%sd, slack %s\"",
					dotEscaper.Replace(id), formatDays(n.Duration), formatDays(n.Slack))
			}
		}
		if critical(id) {
			attrs += `, style="rounded,bold", color=red`
		}
		fmt.Fprintf(w, "  %s [%s];\n", dotQuote(id), attrs)
	}

	fmt.Fprintln(w)

	for _, d := range deps {
		if !d.Type.AffectsScheduling() {
			continue
		}
		from, to := d.Predecessor(), d.Successor()
		style := ""
		if critical(from) && critical(to) {
			style = ` [color=red, penwidth=2]`
		}
		fmt.Fprintf(w, "  %s -> %s%s;\n", dotQuote(from), dotQuote(to), style)
	}

	fmt.Fprintln(w, "}")
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// dotQuote renders s as a DOT quoted string. Non-ASCII ids pass through
// unchanged; DOT reads them as UTF-8.
func dotQuote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

// JSON returns v as indented JSON.
func JSON(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func formatDays(d float64) string {
	s := fmt.Sprintf("%.2f", d)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		return "0"
	}
	return s
}
