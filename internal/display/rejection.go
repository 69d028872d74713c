// Package display formats user-facing output blocks for stagehand commands.
package display

import (
	"fmt"
	"io"
	"strings"
)

// Rejection represents a user-facing transition rejection message.
// A rejection always names the specific unmet requirement; a bare
// "validation failed" with no reasons is a defect, not an outcome.
type Rejection struct {
	TaskID     string   // rejected task
	Workflow   string   // attempted workflow
	Reasons    []string // specific unmet requirements
	Suggestion string   // action to take (optional)
}

// Display shows a formatted rejection in red
func (r Rejection) Display(out io.Writer) {
	var b strings.Builder

	b.WriteString("\x1b[31m")
	fmt.Fprintf(&b, "✗ Transition rejected for task %s (workflow %q)\n", r.TaskID, r.Workflow)

	for _, reason := range r.Reasons {
		b.WriteString("    ✗ ")
		b.WriteString(reason)
		b.WriteString("\n")
	}

	if r.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(r.Suggestion)
		b.WriteString("\n")
	}

	b.WriteString("\x1b[0m")
	fmt.Fprint(out, b.String())
}

// Applied shows a confirmation line for a successful transition
func Applied(out io.Writer, taskID, from, to string) {
	fmt.Fprintf(out, "\x1b[32m✓\x1b[0m Task %s transitioned %s → %s\n", taskID, from, to)
}
