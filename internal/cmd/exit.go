package cmd

import (
	"errors"

	"github.com/harrison/stagehand/internal/parser"
	"github.com/harrison/stagehand/internal/task"
)

// Exit codes for the command surface. Validation rejections and unreachable
// workflows are recoverable (1); malformed configuration and usage mistakes
// are not a transition outcome at all (2).
const (
	ExitOK       = 0
	ExitRejected = 1
	ExitConfig   = 2
)

// ExitCode maps a command error to the process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var configErr *parser.ConfigError
	if errors.As(err, &configErr) {
		return ExitConfig
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		return ExitConfig
	}
	var notFound *task.NotFoundError
	if errors.As(err, &notFound) {
		return ExitConfig
	}

	return ExitRejected
}
