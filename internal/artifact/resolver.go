// Package artifact expands workflow path templates into concrete file-system
// paths and answers the reverse question of whether an existing file conforms
// to a template. Resolution is pure string work; existence is a boolean
// outcome fed to validators, never an error.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/harrison/stagehand/internal/models"
)

// Vars holds the variables available to artifact path templates.
// Values are single path segments; templates substitute them positionally.
type Vars struct {
	Feature string // feature scope token from the task record
	Seq     int    // ordinal, rendered zero-padded to 3 digits
	Slug    string // free-form slug; defaults to Feature when empty
}

// varRegex matches a {variable} placeholder in a template
var varRegex = regexp.MustCompile(`\{([a-z_]+)\}`)

// Resolve expands a path template by substituting {feature}, {seq}, and
// {slug}. It fails only when the template references an undefined variable;
// whether the resulting path exists is a separate question.
func Resolve(template string, vars Vars) (string, error) {
	slug := vars.Slug
	if slug == "" {
		slug = vars.Feature
	}

	var unknown string
	resolved := varRegex.ReplaceAllStringFunc(template, func(match string) string {
		name := varRegex.FindStringSubmatch(match)[1]
		switch name {
		case "feature":
			return vars.Feature
		case "seq":
			return fmt.Sprintf("%03d", vars.Seq)
		case "slug":
			return slug
		default:
			if unknown == "" {
				unknown = name
			}
			return match
		}
	})

	if unknown != "" {
		return "", fmt.Errorf("template %q references undefined variable {%s}", template, unknown)
	}
	return resolved, nil
}

// Existence is the outcome of checking one artifact descriptor on disk
type Existence struct {
	Path      string   // resolved path or glob pattern
	Files     []string // matching files (single element for non-glob paths)
	Required  int      // effective minimum match count
	Satisfied bool
}

// Check resolves a descriptor under root and reports whether enough matching
// files exist. Glob templates (containing '*') satisfy existence when the
// match count reaches the descriptor's minimum; a minimum of 0 marks the
// artifact optional. A missing file is a negative outcome, not an error.
func Check(root string, desc models.ArtifactDescriptor, vars Vars) (Existence, error) {
	resolved, err := Resolve(desc.Path, vars)
	if err != nil {
		return Existence{}, err
	}

	ex := Existence{Path: resolved, Required: desc.RequiredCount()}
	full := filepath.Join(root, resolved)

	if strings.Contains(resolved, "*") {
		matches, err := filepath.Glob(full)
		if err != nil {
			// bad pattern in the template, not a missing file
			return Existence{}, fmt.Errorf("invalid glob pattern %q: %w", resolved, err)
		}
		for _, m := range matches {
			rel, relErr := filepath.Rel(root, m)
			if relErr != nil {
				rel = m
			}
			ex.Files = append(ex.Files, rel)
		}
		ex.Satisfied = len(ex.Files) >= ex.Required
		return ex, nil
	}

	if fileExists(full) {
		ex.Files = []string{resolved}
	}
	ex.Satisfied = len(ex.Files) >= ex.Required
	return ex, nil
}

// fileExists reports whether path exists and is a regular file
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Matches reports whether a concrete path conforms to a template's static
// segments, treating {variable} placeholders and '*' wildcards as matching
// any single path segment content. For any path produced by Resolve with
// valid variables, Matches returns true against the originating template.
// Used for auditing orphaned artifacts, not on the validation hot path.
func Matches(path, template string) bool {
	pathSegs := strings.Split(filepath.ToSlash(path), "/")
	tmplSegs := strings.Split(filepath.ToSlash(template), "/")
	if len(pathSegs) != len(tmplSegs) {
		return false
	}

	for i, tmplSeg := range tmplSegs {
		re, err := segmentRegex(tmplSeg)
		if err != nil {
			return false
		}
		if !re.MatchString(pathSegs[i]) {
			return false
		}
	}
	return true
}

// segmentRegex compiles one template segment into an anchored regexp:
// literals are escaped, {var} becomes a non-empty wildcard, '*' a possibly
// empty one.
func segmentRegex(segment string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")

	rest := segment
	for rest != "" {
		if loc := varRegex.FindStringIndex(rest); loc != nil && loc[0] == 0 {
			b.WriteString(".+")
			rest = rest[loc[1]:]
			continue
		}
		switch {
		case strings.HasPrefix(rest, "*"):
			b.WriteString(".*")
			rest = rest[1:]
		default:
			// consume literal text up to the next placeholder or wildcard
			end := len(rest)
			if loc := varRegex.FindStringIndex(rest); loc != nil && loc[0] < end {
				end = loc[0]
			}
			if star := strings.Index(rest, "*"); star >= 0 && star < end {
				end = star
			}
			b.WriteString(regexp.QuoteMeta(rest[:end]))
			rest = rest[end:]
		}
	}

	b.WriteString("$")
	return regexp.Compile(b.String())
}
