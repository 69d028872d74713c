package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/stagehand/internal/config"
	"github.com/harrison/stagehand/internal/journal"
)

// NewHistoryCommand creates the history subcommand
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <task-id>",
		Short: "Show the journaled transitions for a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.OutOrStdout(), args[0])
		},
		SilenceUsage: true,
	}
	return cmd
}

func runHistory(out io.Writer, taskID string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	dbPath := config.JournalDBPath(env.root)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(out, "No journal found for this project (%s)\n", dbPath)
		return nil
	}

	store, err := journal.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.ForTask(context.Background(), taskID)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintf(out, "No journaled transitions for task %s\n", taskID)
		return nil
	}

	for _, e := range entries {
		line := fmt.Sprintf("%s  %s → %s  [%s/%s]",
			e.CreatedAt.Local().Format(time.RFC3339), e.FromState, e.ToState, e.Via, e.Outcome)
		if e.Workflow != "" {
			line += fmt.Sprintf("  workflow=%s", e.Workflow)
		}
		if e.Operator != "" {
			line += fmt.Sprintf("  operator=%s", e.Operator)
		}
		fmt.Fprintln(out, line)
		for _, r := range e.Reasons {
			fmt.Fprintf(out, "    %s\n", r)
		}
	}
	return nil
}
