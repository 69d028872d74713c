// Package task persists task records as individually addressable markdown
// files, one per task, under a fixed directory. Writes are guarded by a
// file lock and performed via an atomic temp-file rename so readers never
// observe a partial record.
package task

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/harrison/stagehand/internal/models"
	"github.com/harrison/stagehand/internal/parser"
)

// NotFoundError reports a task id with no record on disk
type NotFoundError struct {
	ID   string
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %q not found (expected record at %s)", e.ID, e.Path)
}

// Store reads and writes task records under a single directory
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. The directory is created lazily
// on the first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the record path for a task id
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, id+".md")
}

// Load reads and parses the record for the given task id
func (s *Store) Load(id string) (*models.Task, error) {
	path := s.Path(id)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{ID: id, Path: path}
		}
		return nil, fmt.Errorf("failed to read task record %s: %w", path, err)
	}

	task, err := parser.ParseTaskFile(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse task record %s: %w", path, err)
	}
	task.FilePath = path
	return task, nil
}

// Save writes the task record back to disk. The write is serialized against
// other stagehand processes via a sibling lock file and applied atomically.
func (s *Store) Save(task *models.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	path := s.Path(task.ID)
	task.Updated = time.Now().UTC()

	data, err := parser.RenderTaskFile(task)
	if err != nil {
		return err
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", path, err)
	}
	defer func() { _ = lock.Unlock() }()

	if err := atomicWrite(path, data); err != nil {
		return fmt.Errorf("failed to write task record %s: %w", path, err)
	}
	task.FilePath = path
	return nil
}

// atomicWrite writes data using a temp file and rename in the target
// directory, so an interrupted write leaves the original record intact.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
