package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindProjectRoot returns the project root stagehand operates in.
// Priority order:
//  1. STAGEHAND_ROOT environment variable (if set)
//  2. Nearest ancestor directory containing .stagehand/ or a
//     .stagehand-root marker file
//  3. Current working directory (fallback)
func FindProjectRoot() (string, error) {
	if root := os.Getenv("STAGEHAND_ROOT"); root != "" {
		return root, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	current := cwd
	for {
		if _, err := os.Stat(filepath.Join(current, ".stagehand-root")); err == nil {
			return current, nil
		}
		if info, err := os.Stat(filepath.Join(current, ".stagehand")); err == nil && info.IsDir() {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			// reached filesystem root
			break
		}
		current = parent
	}

	return cwd, nil
}

// StagehandHome returns the .stagehand directory under the project root,
// creating it if it doesn't exist
func StagehandHome() (string, error) {
	root, err := FindProjectRoot()
	if err != nil {
		return "", err
	}

	home := filepath.Join(root, ".stagehand")
	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create stagehand home directory: %w", err)
	}
	return home, nil
}

// JournalDBPath returns the absolute path to the transition journal database.
// Always returns: <project root>/.stagehand/journal.db
func JournalDBPath(root string) string {
	return filepath.Join(root, ".stagehand", "journal.db")
}
