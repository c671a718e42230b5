// Package storage provides the persistence backends behind the task store:
// a JSON document file and a SQLite database. Both write the whole
// collection per save, mirroring how the store persists after every
// mutation.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"taskflow/internal/task"
)

// JSONStore keeps the collection as a single JSON array of task records,
// dates as RFC 3339 strings.
type JSONStore struct {
	path string
}

// NewJSONStore returns a store backed by the file at path. The file is
// created on first save.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Load reads and deserializes the collection. A missing file yields an
// empty collection, not an error.
func (s *JSONStore) Load() ([]task.Task, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read task file: %w", err)
	}

	var tasks []task.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("parse task file: %w", err)
	}
	return tasks, nil
}

// Save serializes the whole collection with 2-space indentation.
func (s *JSONStore) Save(tasks []task.Task) error {
	if tasks == nil {
		tasks = []task.Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write task file: %w", err)
	}
	return nil
}
