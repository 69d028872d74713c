package cmd

import (
	"fmt"
	"io"
	"os"
	"os/user"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/stagehand/internal/engine"
	"github.com/harrison/stagehand/internal/journal"
)

// NewOverrideTransitionCommand creates the override-transition subcommand
func NewOverrideTransitionCommand() *cobra.Command {
	var reason string
	var operator string

	cmd := &cobra.Command{
		Use:   "override-transition <task-id> <target-state>",
		Short: "Force a task to a state, bypassing validation",
		Long: `The sanctioned escape hatch: move a task directly to the target state
without running any validator. The bypass is never silent; an audit entry
recording operator, timestamp, and reason is appended to the task's
permanent history.

Exit code: 0 unless the task or the target state does not exist`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOverrideTransition(cmd.OutOrStdout(), args[0], args[1], reason, operator)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&reason, "reason", "", "why the override is necessary (required)")
	cmd.Flags().StringVar(&operator, "operator", "", "who is performing the override (defaults to the current user)")
	_ = cmd.MarkFlagRequired("reason")

	return cmd
}

func runOverrideTransition(out io.Writer, taskID, targetState, reason, operator string) error {
	if strings.TrimSpace(reason) == "" {
		return usageErrorf("--reason cannot be empty")
	}

	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	if !env.workflow.HasState(targetState) {
		return usageErrorf("unknown target state %q (declared states: %s)",
			targetState, strings.Join(env.workflow.States, ", "))
	}

	tk, err := env.store.Load(taskID)
	if err != nil {
		return err
	}

	if operator == "" {
		operator = currentOperator()
	}

	from := engine.CurrentState(env.workflow, tk)
	engine.RecordManualOverride(tk, targetState, operator, reason, time.Now(), env.workflow.StatusMap)

	if err := env.store.Save(tk); err != nil {
		return err
	}

	recordJournal(env, journal.Entry{
		TaskID:    tk.ID,
		FromState: from,
		ToState:   targetState,
		Workflow:  "",
		Via:       "manual",
		Outcome:   "override",
		Reasons:   []string{reason},
		Operator:  operator,
	})

	fmt.Fprintf(out, "✓ Task %s forced to state %q by %s (audit entry recorded)\n", tk.ID, targetState, operator)
	return nil
}

// currentOperator resolves the operator name for audit entries
func currentOperator() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "operator"
}
