package validation

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/stagehand/internal/artifact"
	"github.com/harrison/stagehand/internal/models"
	"github.com/harrison/stagehand/internal/task"
)

func pullRequestTransition() *models.Transition {
	return &models.Transition{
		Name:       "ship",
		From:       "validated",
		To:         "deployed",
		Via:        models.ViaForward,
		Validation: models.ValidationPullRequest,
		Workflow:   "deploy",
	}
}

// stubGitHub serves the two endpoints the checker hits
func stubGitHub(t *testing.T, merged bool, combinedState string) *GitHubChecker {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/webapp/pulls/77", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"number": 77, "state": "closed", "merged": %t, "merge_commit_sha": "abc123"}`, merged)
	})
	mux.HandleFunc("/repos/acme/webapp/commits/abc123/status", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"state": %q, "sha": "abc123"}`, combinedState)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := github.NewClient(nil)
	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base

	return NewGitHubCheckerFromClient(client)
}

func TestPullRequestNoReference(t *testing.T) {
	tk := &models.Task{ID: "t9", Notes: "no reference here"}

	result := Validate(context.Background(), pullRequestTransition(), tk, artifact.Vars{}, Options{})
	require.False(t, result.OK)
	assert.Contains(t, result.Reasons[0], "no review reference found")
	assert.Contains(t, result.Reasons[0], "Review-Ref: owner/repo#123")
}

func TestPullRequestMergedGreen(t *testing.T) {
	checker := stubGitHub(t, true, "success")
	tk := &models.Task{ID: "t9", Notes: "Review-Ref: acme/webapp#77"}

	result := Validate(context.Background(), pullRequestTransition(), tk, artifact.Vars{}, Options{Review: checker})
	assert.True(t, result.OK, "reasons: %v", result.Reasons)
}

func TestPullRequestNotMerged(t *testing.T) {
	checker := stubGitHub(t, false, "success")
	tk := &models.Task{ID: "t9", Notes: "Review-Ref: acme/webapp#77"}

	result := Validate(context.Background(), pullRequestTransition(), tk, artifact.Vars{}, Options{Review: checker})
	require.False(t, result.OK)
	assert.Contains(t, result.Reasons[0], "not merged")
}

func TestPullRequestFailingChecks(t *testing.T) {
	checker := stubGitHub(t, true, "failure")
	tk := &models.Task{ID: "t9", Notes: "Review-Ref: acme/webapp#77"}

	result := Validate(context.Background(), pullRequestTransition(), tk, artifact.Vars{}, Options{Review: checker})
	require.False(t, result.OK)
	assert.Contains(t, result.Reasons[0], "required checks")
}

// TestPullRequestQueryFailure: external errors surface as ordinary
// validation failures, never as distinct error types
func TestPullRequestQueryFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client := github.NewClient(nil)
	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base
	checker := NewGitHubCheckerFromClient(client)

	tk := &models.Task{ID: "t9", Notes: "Review-Ref: acme/webapp#77"}
	result := Validate(context.Background(), pullRequestTransition(), tk, artifact.Vars{}, Options{Review: checker})
	require.False(t, result.OK)
	assert.Contains(t, result.Reasons[0], "review query")
}

// TestPullRequestTimeout: a slow review system is a validation failure the
// caller retries later, bounded by the context deadline
func TestPullRequestTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(server.Close)

	client := github.NewClient(nil)
	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base
	checker := NewGitHubCheckerFromClient(client)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	tk := &models.Task{ID: "t9", Notes: "Review-Ref: acme/webapp#77"}
	result := Validate(ctx, pullRequestTransition(), tk, artifact.Vars{}, Options{Review: checker})
	require.False(t, result.OK)
	require.Len(t, result.Reasons, 1)
}

func TestFindReviewRef(t *testing.T) {
	ref, ok := task.FindReviewRef("line one\nReview-Ref: acme/web-app#123\nmore")
	require.True(t, ok)
	assert.Equal(t, task.ReviewRef{Owner: "acme", Repo: "web-app", Number: 123}, ref)

	_, ok = task.FindReviewRef("Review-Ref: not-a-ref")
	assert.False(t, ok)

	// marker must start the line
	_, ok = task.FindReviewRef("see Review-Ref: acme/webapp#1 inline")
	assert.False(t, ok)
}
