package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/stagehand/internal/display"
	"github.com/harrison/stagehand/internal/engine"
	"github.com/harrison/stagehand/internal/models"
	"github.com/harrison/stagehand/internal/validation"
)

// NewValidateTransitionCommand creates the validate-transition subcommand
func NewValidateTransitionCommand() *cobra.Command {
	var seq int
	var slug string

	cmd := &cobra.Command{
		Use:   "validate-transition <task-id> <workflow>",
		Short: "Dry-run a transition without mutating the task record",
		Long: `Resolve and validate the transition the named workflow would perform
from the task's current state, without applying it.

The task record is not modified; running this twice with no artifact
changes in between yields identical results.

Exit code: 0 if the transition would succeed, 1 if it would fail
(reasons printed to stderr), 2 on configuration or usage errors`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidateTransition(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], args[1], seq, slug)
		},
		SilenceUsage: true,
	}

	cmd.Flags().IntVar(&seq, "seq", 1, "sequence number substituted into artifact path templates")
	cmd.Flags().StringVar(&slug, "slug", "", "slug substituted into artifact path templates (defaults to the task's feature scope)")

	return cmd
}

func runValidateTransition(out, errOut io.Writer, taskID, workflow string, seq int, slug string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	tk, transition, result, err := resolveAndValidate(env, taskID, workflow, seq, slug)
	if err != nil {
		return err
	}

	if result.OK {
		fmt.Fprintf(out, "✓ Task %s may transition %s → %s (workflow %q)\n",
			tk.ID, transition.From, transition.To, workflow)
		return nil
	}

	rejection := display.Rejection{
		TaskID:     tk.ID,
		Workflow:   workflow,
		Reasons:    result.Reasons,
		Suggestion: fmt.Sprintf("close the gap above, then re-run: stagehand apply-transition %s %s", taskID, workflow),
	}
	rejection.Display(errOut)

	return &engine.ValidationFailedError{TaskID: tk.ID, Workflow: workflow, Reasons: result.Reasons}
}

// resolveAndValidate performs the shared front half of validate-transition
// and apply-transition: load the task, select the transition, and run its
// validator. Artifact resolution always precedes validation; no state is
// mutated here.
func resolveAndValidate(env *environment, taskID, workflow string, seq int, slug string) (*models.Task, *models.Transition, models.ValidationResult, error) {
	tk, err := env.store.Load(taskID)
	if err != nil {
		return nil, nil, models.ValidationResult{}, err
	}

	state := engine.CurrentState(env.workflow, tk)
	env.log.Debugf("task %s is in state %q", tk.ID, state)

	transition, err := engine.NextTransition(env.workflow, state, workflow)
	if err != nil {
		return nil, nil, models.ValidationResult{}, err
	}

	opts := validation.Options{Root: env.root}
	ctx := context.Background()
	if transition.Validation == models.ValidationPullRequest {
		// the review query is the engine's only outbound call; keep it short
		token := os.Getenv(env.settings.GitHubTokenEnv)
		opts.Review = validation.NewGitHubChecker(ctx, token)
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, env.settings.ReviewTimeout)
		defer cancel()
	}

	result := validation.Validate(ctx, transition, tk, templateVars(tk, seq, slug), opts)
	return tk, transition, result, nil
}
