// Package backup reads and writes the portable backup document: the whole
// task collection plus settings, stamped with the export instant.
package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"taskflow/internal/task"
)

// Settings mirrors the preference block the original app stored alongside
// its tasks. It round-trips through export/import untouched by the store.
type Settings struct {
	UserName        string `json:"userName,omitempty"`
	Notifications   bool   `json:"notifications"`
	SoundEffects    bool   `json:"soundEffects"`
	AutoSave        bool   `json:"autoSave"`
	DefaultPriority string `json:"defaultPriority,omitempty"`
	DefaultCategory string `json:"defaultCategory,omitempty"`
	PomodoroTime    int    `json:"pomodoroTime,omitempty"`
	BreakTime       int    `json:"breakTime,omitempty"`
}

// Document is the backup file shape.
type Document struct {
	Tasks      []task.Task `json:"tasks"`
	Settings   *Settings   `json:"settings,omitempty"`
	Theme      string      `json:"theme,omitempty"`
	DarkMode   bool        `json:"darkMode,omitempty"`
	ExportDate time.Time   `json:"exportDate"`
}

// schema is compiled once; Import rejects documents that don't carry a
// tasks array of well-formed task records before any of them reach the
// store.
const schemaURL = "taskflow://backup.schema.json"

const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["tasks"],
  "properties": {
    "tasks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "title", "createdAt"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "title": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "completed": {"type": "boolean"},
          "priority": {"enum": ["low", "medium", "high", "urgent"]},
          "category": {"enum": ["personal", "work", "shopping", "health", "finance", "other"]},
          "dueDate": {"type": "string"},
          "createdAt": {"type": "string"},
          "completedAt": {"type": "string"},
          "archived": {"type": "boolean"},
          "starred": {"type": "boolean"},
          "subtasks": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["id", "title"],
              "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "completed": {"type": "boolean"}
              }
            }
          },
          "tags": {"type": "array", "items": {"type": "string"}},
          "recurring": {"enum": ["daily", "weekly", "monthly"]},
          "timeSpent": {"type": "integer", "minimum": 0},
          "estimatedTime": {"type": "integer", "minimum": 0}
        }
      }
    },
    "settings": {"type": "object"},
    "theme": {"type": "string"},
    "darkMode": {"type": "boolean"},
    "exportDate": {"type": "string"}
  }
}`

var schema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		panic(fmt.Sprintf("backup: add schema resource: %v", err))
	}
	return compiler.MustCompile(schemaURL)
}

// Export writes the document as indented JSON with the current instant as
// the export date.
func Export(w io.Writer, tasks []task.Task, settings *Settings, theme string, darkMode bool) error {
	if tasks == nil {
		tasks = []task.Task{}
	}
	doc := Document{
		Tasks:      tasks,
		Settings:   settings,
		Theme:      theme,
		DarkMode:   darkMode,
		ExportDate: time.Now().UTC(),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return nil
}

// FileName returns the conventional backup file name for the given day.
func FileName(now time.Time) string {
	return fmt.Sprintf("taskflow-backup-%s.json", now.Format("2006-01-02"))
}

// Import parses and validates a backup document. Malformed JSON or a
// document that fails schema validation returns an error and nothing else;
// callers only replace their collection on success. Task records are
// normalized (missing subtasks become empty lists, unknown priorities and
// categories fall back to defaults).
func Import(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse backup: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("validate backup: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse backup: %w", err)
	}
	for i := range doc.Tasks {
		doc.Tasks[i].Normalize()
	}
	return &doc, nil
}
