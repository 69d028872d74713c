package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings represents stagehand engine settings. These are engine-ambient
// knobs; the workflow document itself (states, transitions, validation)
// lives in a separate file and is loaded by the parser package.
type Settings struct {
	// LogLevel sets console verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// WorkflowFile is the path to the workflow document, relative to the project root
	WorkflowFile string `yaml:"workflow_file"`

	// TasksDir is the directory holding task records, relative to the project root
	TasksDir string `yaml:"tasks_dir"`

	// Journal enables the SQLite transition journal
	Journal bool `yaml:"journal"`

	// ReviewTimeout bounds the outbound review-system query
	ReviewTimeout time.Duration `yaml:"review_timeout"`

	// GitHubTokenEnv names the environment variable holding the review-system token
	GitHubTokenEnv string `yaml:"github_token_env"`
}

// DefaultSettings returns Settings with sensible default values
func DefaultSettings() *Settings {
	return &Settings{
		LogLevel:       "info",
		WorkflowFile:   filepath.Join(".stagehand", "workflow.yaml"),
		TasksDir:       "tasks",
		Journal:        true,
		ReviewTimeout:  5 * time.Second,
		GitHubTokenEnv: "GITHUB_TOKEN",
	}
}

// LoadSettings loads settings from the specified file path.
// If the file doesn't exist, returns defaults without error.
// If the file exists but is malformed, returns an error.
func LoadSettings(path string) (*Settings, error) {
	cfg := DefaultSettings()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	// Temporary struct so the timeout can be written as a duration string
	type settingsYAML struct {
		LogLevel       string `yaml:"log_level"`
		WorkflowFile   string `yaml:"workflow_file"`
		TasksDir       string `yaml:"tasks_dir"`
		Journal        *bool  `yaml:"journal"`
		ReviewTimeout  string `yaml:"review_timeout"`
		GitHubTokenEnv string `yaml:"github_token_env"`
	}

	var raw settingsYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	if raw.LogLevel != "" {
		cfg.LogLevel = raw.LogLevel
	}
	if raw.WorkflowFile != "" {
		cfg.WorkflowFile = raw.WorkflowFile
	}
	if raw.TasksDir != "" {
		cfg.TasksDir = raw.TasksDir
	}
	if raw.Journal != nil {
		cfg.Journal = *raw.Journal
	}
	if raw.ReviewTimeout != "" {
		timeout, err := time.ParseDuration(raw.ReviewTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid review_timeout format %q: %w", raw.ReviewTimeout, err)
		}
		cfg.ReviewTimeout = timeout
	}
	if raw.GitHubTokenEnv != "" {
		cfg.GitHubTokenEnv = raw.GitHubTokenEnv
	}

	return cfg, nil
}

// LoadSettingsFromDir loads settings from .stagehand/config.yaml in the
// specified directory, falling back to defaults when absent
func LoadSettingsFromDir(dir string) (*Settings, error) {
	return LoadSettings(filepath.Join(dir, ".stagehand", "config.yaml"))
}

// Validate validates the settings values
func (s *Settings) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[s.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", s.LogLevel)
	}

	if s.WorkflowFile == "" {
		return fmt.Errorf("workflow_file cannot be empty")
	}
	if s.TasksDir == "" {
		return fmt.Errorf("tasks_dir cannot be empty")
	}
	if s.ReviewTimeout <= 0 {
		return fmt.Errorf("review_timeout must be > 0, got %v", s.ReviewTimeout)
	}
	return nil
}
