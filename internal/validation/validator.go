// Package validation decides pass/fail for a single transition attempt.
// The three validation modes form a closed set dispatched by an explicit
// switch; adding a mode means touching this switch and nothing else.
package validation

import (
	"context"

	"github.com/harrison/stagehand/internal/artifact"
	"github.com/harrison/stagehand/internal/models"
)

// Options carries the validator's environment
type Options struct {
	// Root is the directory artifact path templates are relative to
	Root string

	// Review answers merged/checks queries for pull_request validation.
	// Only that mode touches it; it may be nil for all other modes.
	Review ReviewChecker
}

// Validate runs the validator selected by the transition's validation mode.
// Artifact resolution happens here, strictly before any state mutation by
// the caller. The result's reasons always name the exact missing artifact,
// keyword, or review state so the caller can report an actionable message.
func Validate(ctx context.Context, t *models.Transition, tk *models.Task, vars artifact.Vars, opts Options) models.ValidationResult {
	switch t.Validation {
	case models.ValidationNone:
		// rework, rollback, and manual transitions must never be blocked
		return models.Passed()
	case models.ValidationKeyword:
		return validateKeywords(t, vars, opts.Root)
	case models.ValidationPullRequest:
		return validatePullRequest(ctx, tk, opts.Review)
	default:
		// unreachable on a load-validated config
		return models.Failed("transition %q has unknown validation mode %q", t.Name, t.Validation)
	}
}
