package validation

import (
	"context"
	"fmt"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/harrison/stagehand/internal/models"
	"github.com/harrison/stagehand/internal/task"
)

// ReviewChecker answers whether a review reference points at a merged
// review whose required checks passed. A nil return means yes; any error
// (not merged, failing checks, network failure, timeout) carries the reason.
type ReviewChecker interface {
	Check(ctx context.Context, ref task.ReviewRef) error
}

// validatePullRequest inspects the task's recorded review reference and
// queries the review system through the checker. Every failure mode,
// external errors included, surfaces as an ordinary validation failure:
// the caller's remedy is the same either way (fix or retry later).
func validatePullRequest(ctx context.Context, tk *models.Task, checker ReviewChecker) models.ValidationResult {
	ref, ok := task.FindReviewRef(tk.Notes)
	if !ok {
		return models.Failed("no review reference found in task %s notes (expected a line like \"Review-Ref: owner/repo#123\")", tk.ID)
	}

	if checker == nil {
		return models.Failed("review system client is not configured (set the GitHub token to validate %s)", ref)
	}

	if err := checker.Check(ctx, ref); err != nil {
		return models.Failed("%v", err)
	}
	return models.Passed()
}

// GitHubChecker queries GitHub for pull request merge state and the
// combined commit status of the merged revision.
type GitHubChecker struct {
	client *github.Client
}

// NewGitHubChecker creates a checker authenticated with the given token.
// An empty token yields an unauthenticated client, which works for public
// repositories at reduced rate limits.
func NewGitHubChecker(ctx context.Context, token string) *GitHubChecker {
	if token == "" {
		return &GitHubChecker{client: github.NewClient(nil)}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &GitHubChecker{client: github.NewClient(oauth2.NewClient(ctx, ts))}
}

// NewGitHubCheckerFromClient wraps an existing client (used by tests to
// point at a stub server)
func NewGitHubCheckerFromClient(client *github.Client) *GitHubChecker {
	return &GitHubChecker{client: client}
}

// Check requires the referenced pull request to be merged and its merged
// revision's combined status to be "success"
func (g *GitHubChecker) Check(ctx context.Context, ref task.ReviewRef) error {
	pr, _, err := g.client.PullRequests.Get(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		return fmt.Errorf("review query for %s failed: %v", ref, err)
	}
	if !pr.GetMerged() {
		return fmt.Errorf("review %s is not merged (state %q)", ref, pr.GetState())
	}

	sha := pr.GetMergeCommitSHA()
	if sha == "" {
		sha = pr.GetHead().GetSHA()
	}
	if sha == "" {
		return fmt.Errorf("review %s has no resolvable merge revision", ref)
	}

	status, _, err := g.client.Repositories.GetCombinedStatus(ctx, ref.Owner, ref.Repo, sha, nil)
	if err != nil {
		return fmt.Errorf("status query for %s failed: %v", ref, err)
	}
	if state := status.GetState(); state != "success" {
		return fmt.Errorf("required checks for %s are %q, expected \"success\"", ref, state)
	}
	return nil
}
