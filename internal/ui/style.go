package ui

import (
	"fmt"

	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	Magenta     = color.New(color.FgMagenta).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// SetColor forces colored output on or off, overriding terminal detection.
func SetColor(enabled bool) {
	color.NoColor = !enabled
}

// taskColors is a palette of distinct bold colors for differentiating tasks.
var taskColors = []func(a ...interface{}) string{
	BoldMagenta,
	BoldCyan,
	BoldYellow,
	BoldGreen,
	color.New(color.Bold, color.FgHiBlue).SprintFunc(),
	color.New(color.Bold, color.FgHiRed).SprintFunc(),
}

// taskColorIndex hashes a task ID to a palette index.
func taskColorIndex(taskID string) int {
	var h uint32
	for _, c := range taskID {
		h = h*31 + uint32(c)
	}
	return int(h % uint32(len(taskColors)))
}

// Task returns the task ID in its palette color. The same ID always gets the
// same color.
func Task(taskID string) string {
	return taskColors[taskColorIndex(taskID)](taskID)
}

// DepType returns a colored dependency type label.
func DepType(typ string) string {
	switch typ {
	case "blocks":
		return BoldRed(typ)
	case "blocked-by":
		return Red(typ)
	case "relates-to":
		return Cyan(typ)
	case "duplicates":
		return Yellow(typ)
	default:
		return Dim(typ)
	}
}

// CriticalMarker returns the marker shown next to critical tasks, or an
// empty string.
func CriticalMarker(critical bool) string {
	if critical {
		return BoldYellow("⚡ critical")
	}
	return ""
}

// Slack formats a slack value, dimming zero slack.
func Slack(slack float64) string {
	s := fmt.Sprintf("%.2f", slack)
	if slack < 0.01 && slack > -0.01 {
		return Dim(s)
	}
	return Green(s)
}
