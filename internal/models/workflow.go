package models

import "fmt"

// Via classifies the direction and intent of a transition
type Via string

const (
	// ViaForward is normal gated progression to the next phase
	ViaForward Via = "forward"
	// ViaRework is an ungated backward transition due to a quality issue
	ViaRework Via = "rework"
	// ViaRollback is an ungated backward transition due to an operational issue
	ViaRollback Via = "rollback"
	// ViaManual is a terminal or operator-only transition
	ViaManual Via = "manual"
)

// Valid returns true if the via value is one of the known classifications
func (v Via) Valid() bool {
	switch v {
	case ViaForward, ViaRework, ViaRollback, ViaManual:
		return true
	}
	return false
}

// Backward returns true for transitions that move a task to an earlier phase
func (v Via) Backward() bool {
	return v == ViaRework || v == ViaRollback
}

// ValidationMode selects the validator for a transition.
// The set is closed: dispatch is always an explicit switch over these values.
type ValidationMode string

const (
	// ValidationNone passes unconditionally (rework, rollback, manual)
	ValidationNone ValidationMode = "none"
	// ValidationKeyword requires artifacts to exist and contain keywords
	ValidationKeyword ValidationMode = "keyword"
	// ValidationPullRequest requires a merged review with passing checks
	ValidationPullRequest ValidationMode = "pull_request"
)

// Valid returns true if the mode is one of the known validation modes
func (m ValidationMode) Valid() bool {
	switch m {
	case ValidationNone, ValidationKeyword, ValidationPullRequest:
		return true
	}
	return false
}

// ArtifactDescriptor declares one piece of evidence consumed by keyword validation
type ArtifactDescriptor struct {
	// Path is a template with {feature}, {seq}, and {slug} variables.
	// Templates containing '*' are glob patterns checked by match count.
	Path string `yaml:"path"`

	// Keyword binds this descriptor to one of the transition's keywords
	Keyword string `yaml:"keyword"`

	// Contains lists additional substrings the artifact content must include
	Contains []string `yaml:"contains"`

	// MinCount is the minimum number of files a glob template must match.
	// Nil means 1; an explicit 0 marks the artifact optional.
	MinCount *int `yaml:"min_count"`
}

// RequiredCount returns the effective minimum match count for the descriptor
func (d ArtifactDescriptor) RequiredCount() int {
	if d.MinCount == nil {
		return 1
	}
	return *d.MinCount
}

// Transition is the atomic rule permitting movement between two states
type Transition struct {
	Name       string               `yaml:"name"`
	From       string               `yaml:"from"`
	To         string               `yaml:"to"`
	Via        Via                  `yaml:"via"`
	Validation ValidationMode       `yaml:"validation"`
	Keywords   []string             `yaml:"keywords"`
	Artifacts  []ArtifactDescriptor `yaml:"artifacts"`

	// Workflow is the owning workflow name, filled in during load from the
	// top-level workflows map. Empty for manual transitions reachable only
	// through an operator override.
	Workflow string `yaml:"-"`
}

// DescriptorsFor returns the artifact descriptors bound to the given keyword
func (t *Transition) DescriptorsFor(keyword string) []ArtifactDescriptor {
	var out []ArtifactDescriptor
	for _, d := range t.Artifacts {
		if d.Keyword == keyword {
			out = append(out, d)
		}
	}
	return out
}

// WorkflowConfig is the fully validated in-memory form of the workflow
// document. It is loaded fresh for every invocation and never mutated.
type WorkflowConfig struct {
	States      []string            // ordered phase names
	Workflows   map[string][]string // workflow name -> transition names
	Transitions []Transition
	StatusMap   map[string]string // phase -> display status for the board field
	FilePath    string            // source document path (for error messages)
}

// HasState returns true if name is a declared state
func (c *WorkflowConfig) HasState(name string) bool {
	for _, s := range c.States {
		if s == name {
			return true
		}
	}
	return false
}

// FirstState returns the first declared state, the implicit default for
// tasks with no workflow step recorded
func (c *WorkflowConfig) FirstState() string {
	if len(c.States) == 0 {
		return ""
	}
	return c.States[0]
}

// WorkflowsFrom returns the names of workflows with a transition leaving the
// given state, in declaration order
func (c *WorkflowConfig) WorkflowsFrom(state string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range c.Transitions {
		if t.From != state || t.Workflow == "" {
			continue
		}
		if !seen[t.Workflow] {
			seen[t.Workflow] = true
			out = append(out, t.Workflow)
		}
	}
	return out
}

// ValidationResult is the outcome of running a transition's validator
type ValidationResult struct {
	OK      bool
	Reasons []string // human-readable, one per unmet requirement
}

// Passed returns a successful result
func Passed() ValidationResult {
	return ValidationResult{OK: true}
}

// Failed returns a failed result with the given reason
func Failed(format string, args ...interface{}) ValidationResult {
	return ValidationResult{OK: false, Reasons: []string{fmt.Sprintf(format, args...)}}
}
