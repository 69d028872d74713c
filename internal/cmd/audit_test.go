package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAuditReportsOrphans: files under an artifact directory that match
// no configured template are listed; conforming files are not
func TestAuditReportsOrphans(t *testing.T) {
	root, _ := setupProject(t)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "specs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "specs", "auth.md"), []byte("DRAFT"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "specs", "notes.txt"), []byte("scratch"), 0644))

	var out bytes.Buffer
	require.NoError(t, runAudit(&out))

	assert.Contains(t, out.String(), filepath.Join("specs", "notes.txt"))
	assert.NotContains(t, out.String(), "specs/auth.md")
}

// TestAuditCleanTree
func TestAuditCleanTree(t *testing.T) {
	root, _ := setupProject(t)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "specs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "specs", "auth.md"), []byte("DRAFT"), 0644))

	var out bytes.Buffer
	require.NoError(t, runAudit(&out))
	assert.Contains(t, out.String(), "No orphaned artifacts")
}
