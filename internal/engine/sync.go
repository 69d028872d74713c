package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/stagehand/internal/models"
)

// ValidationFailedError carries the reasons a transition was rejected.
// It is the only way validation failure surfaces to a caller; the task
// record is guaranteed untouched when this is returned.
type ValidationFailedError struct {
	TaskID   string
	Workflow string
	Reasons  []string
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("transition rejected for task %s (workflow %q): %s",
		e.TaskID, e.Workflow, strings.Join(e.Reasons, "; "))
}

// Apply writes a successful transition's result onto the task: the phase
// field always, and the display status when the status map names the new
// phase. On a failed result the task is left untouched and the accumulated
// reasons come back as a ValidationFailedError. The caller persists the
// task afterwards; state mutation is the last observable effect.
func Apply(task *models.Task, t *models.Transition, result models.ValidationResult, statusMap map[string]string) error {
	if !result.OK {
		return &ValidationFailedError{
			TaskID:   task.ID,
			Workflow: t.Workflow,
			Reasons:  result.Reasons,
		}
	}

	task.WorkflowStep = t.To
	if display, ok := statusMap[t.To]; ok {
		task.Status = display
	}
	return nil
}

// RecordManualOverride forces the task to the target state, bypassing
// validation. The bypass is never silent: exactly one audit entry
// (operator, timestamp, reason) lands in the task's permanent history.
func RecordManualOverride(task *models.Task, target, operator, reason string, now time.Time, statusMap map[string]string) {
	previous := task.WorkflowStep

	task.WorkflowStep = target
	if display, ok := statusMap[target]; ok {
		task.Status = display
	}

	note := fmt.Sprintf("manual override to state %q (was %q): %s", target, previous, reason)
	if previous == "" {
		note = fmt.Sprintf("manual override to state %q (was unset): %s", target, reason)
	}
	task.AppendHistory(models.HistoryEntry{
		ID:        uuid.NewString()[:8],
		Timestamp: now.UTC(),
		Operator:  operator,
		Note:      note,
	})
}
