package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harrison/stagehand/internal/config"
	"github.com/harrison/stagehand/internal/display"
	"github.com/harrison/stagehand/internal/engine"
	"github.com/harrison/stagehand/internal/journal"
)

// NewApplyTransitionCommand creates the apply-transition subcommand
func NewApplyTransitionCommand() *cobra.Command {
	var seq int
	var slug string

	cmd := &cobra.Command{
		Use:   "apply-transition <task-id> <workflow>",
		Short: "Validate and apply a transition to the task record",
		Long: `Resolve the transition the named workflow performs from the task's
current state, run its validator, and on success write the new phase (and
mapped board status) back to the task record. State mutation is the last
observable effect; a rejected transition leaves the record untouched.

Exit code: 0 if applied, 1 if rejected, 2 on configuration or usage errors`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApplyTransition(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], args[1], seq, slug)
		},
		SilenceUsage: true,
	}

	cmd.Flags().IntVar(&seq, "seq", 1, "sequence number substituted into artifact path templates")
	cmd.Flags().StringVar(&slug, "slug", "", "slug substituted into artifact path templates (defaults to the task's feature scope)")

	return cmd
}

func runApplyTransition(out, errOut io.Writer, taskID, workflow string, seq int, slug string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	tk, transition, result, err := resolveAndValidate(env, taskID, workflow, seq, slug)
	if err != nil {
		return err
	}

	from := engine.CurrentState(env.workflow, tk)

	if err := engine.Apply(tk, transition, result, env.workflow.StatusMap); err != nil {
		rejection := display.Rejection{
			TaskID:     tk.ID,
			Workflow:   workflow,
			Reasons:    result.Reasons,
			Suggestion: fmt.Sprintf("close the gap above, then re-run: stagehand apply-transition %s %s", taskID, workflow),
		}
		rejection.Display(errOut)
		return err
	}

	if err := env.store.Save(tk); err != nil {
		return err
	}

	recordJournal(env, journal.Entry{
		TaskID:    tk.ID,
		FromState: from,
		ToState:   transition.To,
		Workflow:  workflow,
		Via:       string(transition.Via),
		Outcome:   "applied",
	})

	display.Applied(out, tk.ID, from, transition.To)
	return nil
}

// recordJournal appends a journal entry when the journal is enabled.
// The transition has already applied; a journal failure is only a warning.
func recordJournal(env *environment, e journal.Entry) {
	if !env.settings.Journal {
		return
	}

	store, err := journal.NewStore(config.JournalDBPath(env.root))
	if err != nil {
		env.log.Warnf("journal unavailable: %v", err)
		return
	}
	defer store.Close()

	if err := store.Record(context.Background(), e); err != nil {
		env.log.Warnf("failed to journal transition for task %s: %v", e.TaskID, err)
	}
}
