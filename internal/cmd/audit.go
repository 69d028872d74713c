package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/stagehand/internal/artifact"
)

// NewAuditCommand creates the audit subcommand
func NewAuditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Report artifacts that conform to no configured template",
		Long: `Walk the artifact directories named by the workflow document's path
templates and list files that match none of them. Orphaned or misplaced
artifacts are reported for tooling; nothing is modified and the exit code
is always 0.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}
	return cmd
}

func runAudit(out io.Writer) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	templates := collectTemplates(env)
	if len(templates) == 0 {
		fmt.Fprintln(out, "No artifact templates configured; nothing to audit")
		return nil
	}

	orphans, scanned, err := findOrphans(env.root, templates)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Scanned %d file(s) against %d template(s)\n", scanned, len(templates))
	if len(orphans) == 0 {
		fmt.Fprintln(out, "✓ No orphaned artifacts found")
		return nil
	}

	fmt.Fprintf(out, "✗ Found %d orphaned artifact(s):\n", len(orphans))
	for _, o := range orphans {
		fmt.Fprintf(out, "  %s\n", o)
	}
	return nil
}

// collectTemplates gathers every artifact path template in the workflow
func collectTemplates(env *environment) []string {
	seen := make(map[string]bool)
	var templates []string
	for _, t := range env.workflow.Transitions {
		for _, d := range t.Artifacts {
			if !seen[d.Path] {
				seen[d.Path] = true
				templates = append(templates, d.Path)
			}
		}
	}
	return templates
}

// findOrphans walks the artifact type directories (the first path segment
// of each template) and returns files matching no template
func findOrphans(root string, templates []string) (orphans []string, scanned int, err error) {
	dirs := make(map[string]bool)
	for _, tmpl := range templates {
		first := strings.SplitN(filepath.ToSlash(tmpl), "/", 2)[0]
		// skip templates whose top segment is itself variable
		if !strings.ContainsAny(first, "{*") {
			dirs[first] = true
		}
	}

	for dir := range dirs {
		full := filepath.Join(root, dir)
		if _, statErr := os.Stat(full); os.IsNotExist(statErr) {
			continue
		}

		walkErr := filepath.Walk(full, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			scanned++

			for _, tmpl := range templates {
				if artifact.Matches(rel, tmpl) {
					return nil
				}
			}
			orphans = append(orphans, rel)
			return nil
		})
		if walkErr != nil {
			return nil, scanned, fmt.Errorf("failed to scan %s: %w", full, walkErr)
		}
	}

	sort.Strings(orphans)
	return orphans, scanned, nil
}
