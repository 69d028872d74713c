package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/stagehand/internal/models"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		template string
		vars     Vars
		want     string
		wantErr  bool
	}{
		{
			name:     "feature only",
			template: "specs/{feature}.md",
			vars:     Vars{Feature: "auth"},
			want:     "specs/auth.md",
		},
		{
			name:     "zero padded seq",
			template: "decisions/{seq}-{slug}.md",
			vars:     Vars{Feature: "auth", Seq: 7, Slug: "session-store"},
			want:     "decisions/007-session-store.md",
		},
		{
			name:     "slug defaults to feature",
			template: "reports/{feature}/{slug}.md",
			vars:     Vars{Feature: "billing", Seq: 1},
			want:     "reports/billing/billing.md",
		},
		{
			name:     "undefined variable",
			template: "specs/{unit}.md",
			vars:     Vars{Feature: "auth"},
			wantErr:  true,
		},
		{
			name:     "glob template passes through",
			template: "reports/{feature}-*.md",
			vars:     Vars{Feature: "auth"},
			want:     "reports/auth-*.md",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.template, tt.vars)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "undefined variable")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestResolveDeterministic confirms identical inputs give identical outputs
func TestResolveDeterministic(t *testing.T) {
	vars := Vars{Feature: "auth", Seq: 3, Slug: "tokens"}
	first, err := Resolve("specs/{feature}/{seq}-{slug}.md", vars)
	require.NoError(t, err)
	second, err := Resolve("specs/{feature}/{seq}-{slug}.md", vars)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCheckSingleFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "specs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "specs", "auth.md"), []byte("DRAFT\n"), 0644))

	desc := models.ArtifactDescriptor{Path: "specs/{feature}.md", Keyword: "DRAFT"}

	ex, err := Check(root, desc, Vars{Feature: "auth"})
	require.NoError(t, err)
	assert.True(t, ex.Satisfied)
	assert.Equal(t, []string{filepath.Join("specs", "auth.md")}, ex.Files)

	ex, err = Check(root, desc, Vars{Feature: "missing"})
	require.NoError(t, err, "a missing file is an outcome, not an error")
	assert.False(t, ex.Satisfied)
	assert.Empty(t, ex.Files)
}

func TestCheckGlobMinCount(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "reports"), 0755))
	for _, name := range []string{"auth-unit.md", "auth-e2e.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, "reports", name), []byte("ok"), 0644))
	}

	two := 2
	three := 3
	zero := 0

	desc := models.ArtifactDescriptor{Path: "reports/{feature}-*.md", Keyword: "PASS", MinCount: &two}
	ex, err := Check(root, desc, Vars{Feature: "auth"})
	require.NoError(t, err)
	assert.True(t, ex.Satisfied)
	assert.Len(t, ex.Files, 2)

	desc.MinCount = &three
	ex, err = Check(root, desc, Vars{Feature: "auth"})
	require.NoError(t, err)
	assert.False(t, ex.Satisfied)

	// explicit zero marks the artifact optional
	desc.MinCount = &zero
	ex, err = Check(root, desc, Vars{Feature: "unrelated"})
	require.NoError(t, err)
	assert.True(t, ex.Satisfied)
}

func TestMatches(t *testing.T) {
	tests := []struct {
		path     string
		template string
		want     bool
	}{
		{"specs/auth.md", "specs/{feature}.md", true},
		{"specs/auth.txt", "specs/{feature}.md", false},
		{"decisions/007-session-store.md", "decisions/{seq}-{slug}.md", true},
		{"reports/auth-unit.md", "reports/{feature}-*.md", true},
		{"runbooks/auth.md", "specs/{feature}.md", false},
		{"specs/deep/auth.md", "specs/{feature}.md", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Matches(tt.path, tt.template), "Matches(%q, %q)", tt.path, tt.template)
	}
}

// TestResolveMatchesRoundTrip: any resolved path matches its template
func TestResolveMatchesRoundTrip(t *testing.T) {
	templates := []string{
		"specs/{feature}.md",
		"decisions/{seq}-{slug}.md",
		"reports/{feature}/{seq}.md",
		"runbooks/{slug}.md",
	}
	vars := Vars{Feature: "auth", Seq: 42, Slug: "rollout"}

	for _, tmpl := range templates {
		path, err := Resolve(tmpl, vars)
		require.NoError(t, err)
		assert.True(t, Matches(path, tmpl), "Matches(%q, %q)", path, tmpl)
	}
}
