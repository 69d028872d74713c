package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for stagehand
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stagehand",
		Short: "Workflow transition validation engine",
		Long: `Stagehand governs how tasks move through a fixed sequence of
development phases. Every forward transition is gated on the presence and
content of specific artifacts (or a merged review); backward transitions
for rework and rollback pass ungated.

Stagehand is invoked once per transition attempt. It reads the workflow
document and the task record fresh, validates, and writes the task record
back only when the transition is allowed.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.AddCommand(NewValidateTransitionCommand())
	cmd.AddCommand(NewApplyTransitionCommand())
	cmd.AddCommand(NewOverrideTransitionCommand())
	cmd.AddCommand(NewAuditCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
