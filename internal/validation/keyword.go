package validation

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/stagehand/internal/artifact"
	"github.com/harrison/stagehand/internal/models"
)

// validateKeywords checks, for every keyword on the transition, that each
// artifact descriptor bound to it exists on disk and (for single-file
// artifacts) contains the keyword. It fails fast on the first unmet
// requirement so the caller gets the one actionable gap to close.
func validateKeywords(t *models.Transition, vars artifact.Vars, root string) models.ValidationResult {
	for _, keyword := range t.Keywords {
		for _, desc := range t.DescriptorsFor(keyword) {
			ex, err := artifact.Check(root, desc, vars)
			if err != nil {
				// template referenced an undefined variable or a broken glob
				return models.Failed("artifact for keyword %q: %v", keyword, err)
			}

			if !ex.Satisfied {
				if len(ex.Files) == 0 {
					return models.Failed("required artifact %s does not exist (evidence for keyword %q)", ex.Path, keyword)
				}
				return models.Failed("artifact %s matched %d file(s), need at least %d (evidence for keyword %q)",
					ex.Path, len(ex.Files), ex.Required, keyword)
			}

			// content checks apply to single-file artifacts only
			if strings.Contains(ex.Path, "*") || len(ex.Files) == 0 {
				continue
			}
			if reason := checkContent(root, ex.Files[0], keyword, desc.Contains); reason != "" {
				return models.ValidationResult{OK: false, Reasons: []string{reason}}
			}
		}
	}
	return models.Passed()
}

// checkContent verifies the keyword (case-insensitive) and any required
// substrings (case-sensitive) appear in the artifact's content.
// Returns an empty string when all checks pass.
func checkContent(root, rel, keyword string, contains []string) string {
	data, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		return "failed to read artifact " + rel + ": " + err.Error()
	}

	content := string(data)
	if !strings.Contains(strings.ToLower(content), strings.ToLower(keyword)) {
		return "keyword \"" + keyword + "\" not found in " + rel
	}
	for _, want := range contains {
		if !strings.Contains(content, want) {
			return "required text \"" + want + "\" not found in " + rel
		}
	}
	return ""
}
