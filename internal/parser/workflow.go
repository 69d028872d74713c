// Package parser loads and validates the declarative workflow document and
// the per-task markdown records.
package parser

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harrison/stagehand/internal/models"
)

// ConfigError reports a malformed or internally inconsistent workflow
// document. It always identifies the offending field so the document author
// can fix the exact line, and it is always fatal to the invocation.
type ConfigError struct {
	Field string // dotted path of the offending field
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("workflow config: %s: %s", e.Field, e.Msg)
}

func configErrorf(field, format string, args ...interface{}) error {
	return &ConfigError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// workflowYAML mirrors the on-disk document structure
type workflowYAML struct {
	States      []string            `yaml:"states"`
	Workflows   map[string][]string `yaml:"workflows"`
	Transitions []models.Transition `yaml:"transitions"`
	StatusMap   map[string]string   `yaml:"status_map"`
}

// LoadWorkflow reads, parses, and validates the workflow document at path.
// On any schema violation it returns a ConfigError and no partial config.
func LoadWorkflow(path string) (*models.WorkflowConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow document %s: %w", path, err)
	}

	cfg, err := ParseWorkflow(data)
	if err != nil {
		return nil, err
	}
	cfg.FilePath = path
	return cfg, nil
}

// ParseWorkflow parses and validates a workflow document from raw bytes
func ParseWorkflow(data []byte) (*models.WorkflowConfig, error) {
	var doc workflowYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigError{Field: "document", Msg: err.Error()}
	}

	cfg := &models.WorkflowConfig{
		States:      doc.States,
		Workflows:   doc.Workflows,
		Transitions: doc.Transitions,
		StatusMap:   doc.StatusMap,
	}

	if err := validateStates(cfg); err != nil {
		return nil, err
	}
	if err := validateTransitions(cfg); err != nil {
		return nil, err
	}
	if err := bindWorkflows(cfg); err != nil {
		return nil, err
	}
	if err := validateStatusMap(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateStates checks the states list is non-empty with no duplicates
func validateStates(cfg *models.WorkflowConfig) error {
	if len(cfg.States) == 0 {
		return configErrorf("states", "at least one state is required")
	}
	seen := make(map[string]bool)
	for i, s := range cfg.States {
		if strings.TrimSpace(s) == "" {
			return configErrorf(fmt.Sprintf("states[%d]", i), "state name cannot be empty")
		}
		if seen[s] {
			return configErrorf(fmt.Sprintf("states[%d]", i), "duplicate state %q", s)
		}
		seen[s] = true
	}
	return nil
}

// validateTransitions checks each transition definition in isolation:
// endpoints exist, no self-loops, and the via/validation coupling holds
// (backward and manual transitions are ungated, forward transitions are not).
func validateTransitions(cfg *models.WorkflowConfig) error {
	// a transition that declares no validation is ungated
	for i := range cfg.Transitions {
		if cfg.Transitions[i].Validation == "" {
			cfg.Transitions[i].Validation = models.ValidationNone
		}
	}

	names := make(map[string]bool)
	for i, t := range cfg.Transitions {
		field := fmt.Sprintf("transitions[%d]", i)
		if t.Name == "" {
			return configErrorf(field+".name", "transition name is required")
		}
		if names[t.Name] {
			return configErrorf(field+".name", "duplicate transition name %q", t.Name)
		}
		names[t.Name] = true

		if !cfg.HasState(t.From) {
			return configErrorf(field+".from", "unknown state %q", t.From)
		}
		if !cfg.HasState(t.To) {
			return configErrorf(field+".to", "unknown state %q", t.To)
		}
		if t.From == t.To {
			return configErrorf(field, "transition %q points from state %q back to itself", t.Name, t.From)
		}
		if !t.Via.Valid() {
			return configErrorf(field+".via", "unknown via %q (must be forward, rework, rollback, or manual)", t.Via)
		}
		if !t.Validation.Valid() {
			return configErrorf(field+".validation", "unknown validation %q (must be none, keyword, or pull_request)", t.Validation)
		}

		switch t.Via {
		case models.ViaForward:
			if t.Validation == models.ValidationNone {
				return configErrorf(field+".validation", "forward transition %q must use keyword or pull_request validation", t.Name)
			}
		default:
			// rework, rollback, and manual are recovery paths; gating them
			// on artifacts would block the recovery itself
			if t.Validation != models.ValidationNone {
				return configErrorf(field+".validation", "%s transition %q must use validation: none", t.Via, t.Name)
			}
		}

		if t.Validation == models.ValidationKeyword {
			if err := validateKeywordInputs(field, &t); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateKeywordInputs checks that keyword validation has usable inputs:
// a non-empty keyword list, a non-empty artifact list, and every keyword
// bound to at least one artifact descriptor. Caught here so the validator
// never has to handle a vacuously-passing transition at runtime.
func validateKeywordInputs(field string, t *models.Transition) error {
	if len(t.Keywords) == 0 {
		return configErrorf(field+".keywords", "keyword validation requires at least one keyword")
	}
	if len(t.Artifacts) == 0 {
		return configErrorf(field+".artifacts", "keyword validation requires at least one artifact")
	}
	for _, k := range t.Keywords {
		if len(t.DescriptorsFor(k)) == 0 {
			return configErrorf(field+".artifacts", "no artifact descriptor carries keyword %q", k)
		}
	}
	for j, d := range t.Artifacts {
		if strings.TrimSpace(d.Path) == "" {
			return configErrorf(fmt.Sprintf("%s.artifacts[%d].path", field, j), "artifact path template is required")
		}
		if d.MinCount != nil && *d.MinCount < 0 {
			return configErrorf(fmt.Sprintf("%s.artifacts[%d].min_count", field, j), "min_count must be >= 0, got %d", *d.MinCount)
		}
	}
	return nil
}

// bindWorkflows resolves the workflows map onto the transitions, filling in
// each transition's owning workflow and rejecting ambiguous configurations.
func bindWorkflows(cfg *models.WorkflowConfig) error {
	byName := make(map[string]*models.Transition)
	for i := range cfg.Transitions {
		byName[cfg.Transitions[i].Name] = &cfg.Transitions[i]
	}

	// (from, workflow) must be unique: the resolver assumes a single match
	type pair struct{ from, workflow string }
	owners := make(map[pair]string)

	for wf, refs := range cfg.Workflows {
		if len(refs) == 0 {
			return configErrorf("workflows."+wf, "workflow has no transitions")
		}
		for _, ref := range refs {
			t, ok := byName[ref]
			if !ok {
				return configErrorf("workflows."+wf, "unknown transition %q", ref)
			}
			if t.Workflow != "" {
				return configErrorf("workflows."+wf, "transition %q already belongs to workflow %q", ref, t.Workflow)
			}
			key := pair{from: t.From, workflow: wf}
			if prev, dup := owners[key]; dup {
				return configErrorf("workflows."+wf, "transitions %q and %q both leave state %q under this workflow", prev, ref, t.From)
			}
			owners[key] = ref
			t.Workflow = wf
		}
	}

	// every non-manual transition must be reachable through some workflow
	for i, t := range cfg.Transitions {
		if t.Workflow == "" && t.Via != models.ViaManual {
			return configErrorf(fmt.Sprintf("transitions[%d]", i), "transition %q is not referenced by any workflow", t.Name)
		}
	}
	return nil
}

// validateStatusMap checks that every mapped phase is a declared state
func validateStatusMap(cfg *models.WorkflowConfig) error {
	for state := range cfg.StatusMap {
		if !cfg.HasState(state) {
			return configErrorf("status_map."+state, "unknown state %q", state)
		}
	}
	return nil
}
