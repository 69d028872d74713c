// Package engine resolves transition attempts against the workflow
// configuration and applies successful results back onto task records.
package engine

import (
	"fmt"
	"strings"

	"github.com/harrison/stagehand/internal/models"
)

// NoSuchTransitionError reports that the requested workflow has no
// transition leaving the task's current state. The message enumerates the
// workflows that are valid from that state so the caller can self-correct.
type NoSuchTransitionError struct {
	State     string
	Workflow  string
	Available []string // workflows reachable from State, declaration order
}

func (e *NoSuchTransitionError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("workflow %q is not valid from state %q (no workflows leave this state)", e.Workflow, e.State)
	}
	return fmt.Sprintf("workflow %q is not valid from state %q (valid workflows: %s)",
		e.Workflow, e.State, strings.Join(e.Available, ", "))
}

// CurrentState returns the task's effective workflow state. A task that
// never recorded a workflow step sits implicitly at the first declared
// state; that absence is never an error.
func CurrentState(cfg *models.WorkflowConfig, task *models.Task) string {
	if task.WorkflowStep == "" {
		return cfg.FirstState()
	}
	return task.WorkflowStep
}

// NextTransition selects the single transition leaving currentState under
// the named workflow. The loader guarantees at most one match per
// (from, workflow) pair, so the first hit is the only hit.
func NextTransition(cfg *models.WorkflowConfig, currentState, workflow string) (*models.Transition, error) {
	for i := range cfg.Transitions {
		t := &cfg.Transitions[i]
		if t.From == currentState && t.Workflow == workflow {
			return t, nil
		}
	}
	return nil, &NoSuchTransitionError{
		State:     currentState,
		Workflow:  workflow,
		Available: cfg.WorkflowsFrom(currentState),
	}
}
