package models

import (
	"errors"
	"time"
)

// Task represents a tracked unit of work, stored as one markdown record per
// task. Workflow fields are optional: a task that never opted into workflow
// tracking has an empty WorkflowStep and is left entirely alone.
type Task struct {
	ID              string     // stable identifier (file name stem)
	Status          string     // display-facing board status
	WorkflowStep    string     // current phase; empty means the first declared state
	WorkflowFeature string     // feature scope correlating the task to artifacts
	Created         time.Time  // record creation time
	Updated         time.Time  // last write time
	Notes           string     // free-text body, excluding the history section
	History         []HistoryEntry
	FilePath        string     // source file (for updates)
}

// HistoryEntry is one line of the task's permanent audit history
type HistoryEntry struct {
	ID        string    // short unique identifier
	Timestamp time.Time
	Operator  string
	Note      string
}

// Validate checks if the task has all required fields
func (t *Task) Validate() error {
	if t.ID == "" {
		return errors.New("task id is required")
	}
	return nil
}

// AppendHistory records an entry in the task's audit history
func (t *Task) AppendHistory(e HistoryEntry) {
	t.History = append(t.History, e)
}
