package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/harrison/stagehand/internal/models"
)

// taskFrontmatter mirrors the machine-parseable header of a task record
type taskFrontmatter struct {
	ID              string    `yaml:"id"`
	Status          string    `yaml:"status,omitempty"`
	WorkflowStep    string    `yaml:"workflow_step,omitempty"`
	WorkflowFeature string    `yaml:"workflow_feature,omitempty"`
	Created         time.Time `yaml:"created,omitempty"`
	Updated         time.Time `yaml:"updated,omitempty"`
}

// historyEntryRegex matches one audit line:
//   - 2026-08-24T10:30:00Z [a1b2c3d4] operator: note
var historyEntryRegex = regexp.MustCompile(`^-\s+(\S+)\s+\[([0-9a-fA-F-]+)\]\s+([^:]+):\s*(.*)$`)

// ParseTaskFile parses a task record: YAML frontmatter header, free-text
// notes, and an optional "## History" section holding the audit trail.
func ParseTaskFile(content []byte) (*models.Task, error) {
	body, frontmatter := extractFrontmatter(content)
	if frontmatter == nil {
		return nil, fmt.Errorf("task record has no frontmatter header")
	}

	var fm taskFrontmatter
	if err := yaml.Unmarshal(frontmatter, &fm); err != nil {
		return nil, fmt.Errorf("failed to parse task frontmatter: %w", err)
	}
	if fm.ID == "" {
		return nil, fmt.Errorf("task frontmatter is missing required field 'id'")
	}

	task := &models.Task{
		ID:              fm.ID,
		Status:          fm.Status,
		WorkflowStep:    fm.WorkflowStep,
		WorkflowFeature: fm.WorkflowFeature,
		Created:         fm.Created,
		Updated:         fm.Updated,
	}

	notes, historyBlock := splitHistorySection(body)
	task.Notes = strings.Trim(notes, "\n")
	task.History = parseHistoryEntries(historyBlock)

	return task, nil
}

// RenderTaskFile serializes a task back to its on-disk record form.
// Frontmatter first, then notes, then the history section (if any).
func RenderTaskFile(task *models.Task) ([]byte, error) {
	fm := taskFrontmatter{
		ID:              task.ID,
		Status:          task.Status,
		WorkflowStep:    task.WorkflowStep,
		WorkflowFeature: task.WorkflowFeature,
		Created:         task.Created,
		Updated:         task.Updated,
	}

	header, err := yaml.Marshal(&fm)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n")

	if task.Notes != "" {
		b.WriteString("\n")
		b.WriteString(task.Notes)
		b.WriteString("\n")
	}

	if len(task.History) > 0 {
		b.WriteString("\n## History\n\n")
		for _, e := range task.History {
			fmt.Fprintf(&b, "- %s [%s] %s: %s\n",
				e.Timestamp.UTC().Format(time.RFC3339), e.ID, e.Operator, e.Note)
		}
	}

	return []byte(b.String()), nil
}

// splitHistorySection separates the free-text notes from the history section.
// The markdown AST is walked to locate the level-2 "History" heading so that
// a "History" mention inside a code block or deeper heading is not mistaken
// for the section itself.
func splitHistorySection(body []byte) (notes string, history string) {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(body))

	headingStart := -1
	headingEnd := -1
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok || heading.Level != 2 || headingStart != -1 {
			return ast.WalkContinue, nil
		}
		if strings.EqualFold(strings.TrimSpace(extractText(heading, body)), "History") {
			if lines := heading.Lines(); lines.Len() > 0 {
				headingStart = lines.At(0).Start
				headingEnd = lines.At(lines.Len() - 1).Stop
			}
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})

	if headingStart == -1 || headingEnd == -1 {
		return string(body), ""
	}

	// back up over the "## " marker, which sits before the heading's text segment
	sectionStart := headingStart
	for sectionStart > 0 && body[sectionStart-1] != '\n' {
		sectionStart--
	}

	return string(body[:sectionStart]), string(body[headingEnd:])
}

// parseHistoryEntries parses audit lines from the history section body.
// Unparseable lines are ignored rather than failing the whole record.
func parseHistoryEntries(block string) []models.HistoryEntry {
	var entries []models.HistoryEntry
	for _, line := range strings.Split(block, "\n") {
		m := historyEntryRegex.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		ts, err := time.Parse(time.RFC3339, m[1])
		if err != nil {
			continue
		}
		entries = append(entries, models.HistoryEntry{
			Timestamp: ts,
			ID:        m[2],
			Operator:  strings.TrimSpace(m[3]),
			Note:      m[4],
		})
	}
	return entries
}

// extractText extracts plain text from an AST node
func extractText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
		}
	}
	return buf.String()
}

// extractFrontmatter extracts YAML frontmatter from markdown content.
// Returns the content without frontmatter and the frontmatter bytes.
func extractFrontmatter(content []byte) ([]byte, []byte) {
	lines := bytes.Split(content, []byte("\n"))

	if len(lines) < 3 || !bytes.Equal(bytes.TrimSpace(lines[0]), []byte("---")) {
		return content, nil
	}

	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), []byte("---")) {
			frontmatter := bytes.Join(lines[1:i], []byte("\n"))
			body := bytes.Join(lines[i+1:], []byte("\n"))
			return body, frontmatter
		}
	}

	return content, nil
}
