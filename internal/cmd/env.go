package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/harrison/stagehand/internal/artifact"
	"github.com/harrison/stagehand/internal/config"
	"github.com/harrison/stagehand/internal/logger"
	"github.com/harrison/stagehand/internal/models"
	"github.com/harrison/stagehand/internal/parser"
	"github.com/harrison/stagehand/internal/task"
)

// usageError marks command-line or settings mistakes that are neither a
// validation rejection nor an engine failure. Mapped to exit code 2.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...interface{}) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// environment is everything a transition command needs, loaded fresh per
// invocation. There is no process-wide state shared across invocations.
type environment struct {
	root     string
	settings *config.Settings
	workflow *models.WorkflowConfig
	store    *task.Store
	log      *logger.ConsoleLogger
}

// loadEnvironment discovers the project root and loads settings, the
// workflow document, and the task store
func loadEnvironment() (*environment, error) {
	root, err := config.FindProjectRoot()
	if err != nil {
		return nil, err
	}

	settings, err := config.LoadSettingsFromDir(root)
	if err != nil {
		return nil, &usageError{err: err}
	}
	if err := settings.Validate(); err != nil {
		return nil, &usageError{err: err}
	}

	workflow, err := parser.LoadWorkflow(filepath.Join(root, settings.WorkflowFile))
	if err != nil {
		return nil, err
	}

	return &environment{
		root:     root,
		settings: settings,
		workflow: workflow,
		store:    task.NewStore(filepath.Join(root, settings.TasksDir)),
		log:      logger.NewConsoleLogger(os.Stderr, settings.LogLevel),
	}, nil
}

// templateVars builds artifact template variables from the task record and
// the command's --seq/--slug flags
func templateVars(tk *models.Task, seq int, slug string) artifact.Vars {
	return artifact.Vars{
		Feature: tk.WorkflowFeature,
		Seq:     seq,
		Slug:    slug,
	}
}
