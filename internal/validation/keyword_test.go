package validation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/stagehand/internal/artifact"
	"github.com/harrison/stagehand/internal/models"
)

func keywordTransition(descs ...models.ArtifactDescriptor) *models.Transition {
	keywords := make([]string, 0, len(descs))
	seen := make(map[string]bool)
	for _, d := range descs {
		if !seen[d.Keyword] {
			seen[d.Keyword] = true
			keywords = append(keywords, d.Keyword)
		}
	}
	return &models.Transition{
		Name:       "specify-intake",
		From:       "intake",
		To:         "specified",
		Via:        models.ViaForward,
		Validation: models.ValidationKeyword,
		Keywords:   keywords,
		Artifacts:  descs,
		Workflow:   "specify",
	}
}

func writeArtifact(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
}

func TestKeywordMissingArtifact(t *testing.T) {
	root := t.TempDir()
	tr := keywordTransition(models.ArtifactDescriptor{Path: "specs/{feature}.md", Keyword: "DRAFT"})
	tk := &models.Task{ID: "t1", WorkflowFeature: "auth"}

	result := Validate(context.Background(), tr, tk, artifact.Vars{Feature: "auth"}, Options{Root: root})

	require.False(t, result.OK)
	require.Len(t, result.Reasons, 1)
	assert.Contains(t, result.Reasons[0], "specs/auth.md")
	assert.Contains(t, result.Reasons[0], "DRAFT")
}

func TestKeywordPresent(t *testing.T) {
	root := t.TempDir()
	writeArtifact(t, root, "specs/auth.md", "# Auth spec\n\nStatus: draft\n")

	tr := keywordTransition(models.ArtifactDescriptor{Path: "specs/{feature}.md", Keyword: "DRAFT"})
	tk := &models.Task{ID: "t1", WorkflowFeature: "auth"}

	// keyword matching is case-insensitive
	result := Validate(context.Background(), tr, tk, artifact.Vars{Feature: "auth"}, Options{Root: root})
	assert.True(t, result.OK)
	assert.Empty(t, result.Reasons)
}

func TestKeywordAbsentFromContent(t *testing.T) {
	root := t.TempDir()
	writeArtifact(t, root, "specs/auth.md", "# Auth spec\n\nnothing of note\n")

	tr := keywordTransition(models.ArtifactDescriptor{Path: "specs/{feature}.md", Keyword: "DRAFT"})
	tk := &models.Task{ID: "t1", WorkflowFeature: "auth"}

	result := Validate(context.Background(), tr, tk, artifact.Vars{Feature: "auth"}, Options{Root: root})
	require.False(t, result.OK)
	assert.Contains(t, result.Reasons[0], `keyword "DRAFT" not found in specs/auth.md`)
}

func TestKeywordRequiredSubstrings(t *testing.T) {
	root := t.TempDir()
	writeArtifact(t, root, "specs/auth.md", "DRAFT\n")

	tr := keywordTransition(models.ArtifactDescriptor{
		Path:     "specs/{feature}.md",
		Keyword:  "DRAFT",
		Contains: []string{"## Acceptance Criteria"},
	})
	tk := &models.Task{ID: "t1", WorkflowFeature: "auth"}

	result := Validate(context.Background(), tr, tk, artifact.Vars{Feature: "auth"}, Options{Root: root})
	require.False(t, result.OK)
	assert.Contains(t, result.Reasons[0], "## Acceptance Criteria")
}

func TestKeywordGlobCount(t *testing.T) {
	root := t.TempDir()
	writeArtifact(t, root, "reports/auth-unit.md", "ok")

	two := 2
	tr := keywordTransition(models.ArtifactDescriptor{
		Path:     "reports/{feature}-*.md",
		Keyword:  "PASS",
		MinCount: &two,
	})
	tk := &models.Task{ID: "t1", WorkflowFeature: "auth"}

	result := Validate(context.Background(), tr, tk, artifact.Vars{Feature: "auth"}, Options{Root: root})
	require.False(t, result.OK)
	assert.Contains(t, result.Reasons[0], "need at least 2")

	writeArtifact(t, root, "reports/auth-e2e.md", "ok")
	result = Validate(context.Background(), tr, tk, artifact.Vars{Feature: "auth"}, Options{Root: root})
	assert.True(t, result.OK)
}

func TestKeywordFailsFast(t *testing.T) {
	root := t.TempDir()
	tr := keywordTransition(
		models.ArtifactDescriptor{Path: "specs/{feature}.md", Keyword: "DRAFT"},
		models.ArtifactDescriptor{Path: "decisions/{feature}.md", Keyword: "ACCEPTED"},
	)
	tk := &models.Task{ID: "t1", WorkflowFeature: "auth"}

	result := Validate(context.Background(), tr, tk, artifact.Vars{Feature: "auth"}, Options{Root: root})
	require.False(t, result.OK)
	// first gap only, so the caller gets one actionable step
	require.Len(t, result.Reasons, 1)
	assert.Contains(t, result.Reasons[0], "specs/auth.md")
}

func TestNoneAlwaysPasses(t *testing.T) {
	tr := &models.Transition{
		Name:       "rework-to-intake",
		From:       "specified",
		To:         "intake",
		Via:        models.ViaRework,
		Validation: models.ValidationNone,
		Workflow:   "rework-spec",
	}
	tk := &models.Task{ID: "t1"}

	// zero artifacts on disk, still passes
	result := Validate(context.Background(), tr, tk, artifact.Vars{}, Options{Root: t.TempDir()})
	assert.True(t, result.OK)
}
