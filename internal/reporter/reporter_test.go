package reporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/joshharrison/loomgraph/internal/cpm"
	"github.com/joshharrison/loomgraph/internal/graph"
	"github.com/joshharrison/loomgraph/internal/ui"
)

func init() {
	ui.SetColor(false)
}

func makeGraph(t *testing.T) *graph.Store {
	t.Helper()
	s := graph.NewStore()
	for _, e := range [][2]string{{"a", "c"}, {"b", "c"}} {
		if _, err := s.CreateDependency(e[0], e[1], graph.Blocks, "tester"); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := s.CreateDependency("a", "b", graph.RelatesTo, ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	return s
}

func makeResult(t *testing.T, g *graph.Store) *cpm.Result {
	t.Helper()
	result, err := cpm.Analyze(g, map[string]float64{"a": 5, "b": 2, "c": 1})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	return result
}

func TestPrintSchedule(t *testing.T) {
	result := makeResult(t, makeGraph(t))

	var buf bytes.Buffer
	PrintSchedule(&buf, result)
	output := buf.String()

	if !strings.Contains(output, "Critical Path Schedule") {
		t.Error("expected header in output")
	}
	if !strings.Contains(output, "a → c") {
		t.Errorf("expected critical path a → c in output:\n%s", output)
	}
	if !strings.Contains(output, "Duration:  6 days") {
		t.Errorf("expected total duration in output:\n%s", output)
	}
	if !strings.Contains(output, "Wave 2") {
		t.Errorf("expected two waves in output:\n%s", output)
	}
	if strings.Count(output, "⚡ critical") < 2 {
		t.Errorf("expected critical markers in output:\n%s", output)
	}
}

func TestPrintSchedule_Empty(t *testing.T) {
	var buf bytes.Buffer
	PrintSchedule(&buf, &cpm.Result{})
	if !strings.Contains(buf.String(), "No tasks to schedule") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestPrintSchedule_Unscheduled(t *testing.T) {
	g := graph.NewStore()
	g.AddUnchecked("x", "y", graph.Blocks, "")
	g.AddUnchecked("y", "x", graph.Blocks, "")
	result, _ := cpm.Analyze(g, map[string]float64{"x": 1, "y": 1})

	var buf bytes.Buffer
	PrintSchedule(&buf, result)
	if strings.Count(buf.String(), "on a dependency cycle") != 2 {
		t.Errorf("expected both tasks flagged:\n%s", buf.String())
	}
}

func TestPrintDependencies(t *testing.T) {
	var buf bytes.Buffer
	PrintDependencies(&buf, makeGraph(t).DependenciesForTask("a"))
	output := buf.String()

	if !strings.Contains(output, "#1 a blocks c by tester") {
		t.Errorf("expected blocks edge in output:\n%s", output)
	}
	if !strings.Contains(output, "#3 a relates-to b") {
		t.Errorf("expected relates-to edge in output:\n%s", output)
	}

	buf.Reset()
	PrintDependencies(&buf, nil)
	if !strings.Contains(buf.String(), "No dependencies") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestPrintCycles(t *testing.T) {
	var buf bytes.Buffer
	PrintCycles(&buf, nil)
	if !strings.Contains(buf.String(), "No dependency cycles") {
		t.Errorf("unexpected output: %s", buf.String())
	}

	buf.Reset()
	PrintCycles(&buf, [][]string{{"a", "b", "c"}})
	if !strings.Contains(buf.String(), "1. a → b → c → a") {
		t.Errorf("expected closed loop in output:\n%s", buf.String())
	}
}

func TestWriteDOT(t *testing.T) {
	g := makeGraph(t)
	result := makeResult(t, g)

	var buf bytes.Buffer
	WriteDOT(&buf, g.Dependencies(), result)
	output := buf.String()

	if !strings.HasPrefix(output, "digraph loomgraph {") {
		t.Errorf("expected digraph header, got:\n%s", output)
	}
	if !strings.Contains(output, `"a" -> "c" [color=red, penwidth=2];`) {
		t.Errorf("expected critical edge a -> c:\n%s", output)
	}
	if !strings.Contains(output, `"b" -> "c";`) {
		t.Errorf("expected plain edge b -> c:\n%s", output)
	}
	if strings.Contains(output, `"a" -> "b"`) {
		t.Errorf("relates-to edges must not be drawn:\n%s", output)
	}
}

func TestWriteDOT_EscapesIDs(t *testing.T) {
	g := graph.NewStore()
	if _, err := g.CreateDependency(`say "hi"`, `C:\tmp`, graph.Blocks, ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	result, err := cpm.Analyze(g, map[string]float64{`say "hi"`: 1, `C:\tmp`: 2})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	var buf bytes.Buffer
	WriteDOT(&buf, g.Dependencies(), result)
	output := buf.String()

	for _, want := range []string{
		`"say \"hi\"" [label="say \"hi\"\n1d, slack 0"`,
		`"C:\\tmp" [label="C:\\tmp\n2d, slack 0"`,
		`"say \"hi\"" -> "C:\\tmp"`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in:\n%s", want, output)
		}
	}
}

func TestJSON(t *testing.T) {
	data, err := JSON(makeResult(t, makeGraph(t)))
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if !strings.Contains(string(data), `"critical_path": [`) {
		t.Errorf("unexpected JSON: %s", data)
	}
}

func TestFormatDays(t *testing.T) {
	cases := map[float64]string{0: "0", 1: "1", 2.5: "2.5", 0.126: "0.13", -0.001: "0"}
	for in, want := range cases {
		if got := formatDays(in); got != want {
			t.Errorf("formatDays(%v) = %q, want %q", in, got, want)
		}
	}
}
