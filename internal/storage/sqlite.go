package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"taskflow/internal/task"
)

// SQLiteStore keeps the collection in a single-table SQLite database. Saves
// replace the whole table inside a transaction; a position column preserves
// the store's most-recent-first order across reloads.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if necessary) the database at dbPath and
// ensures the schema exists.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	dsn := sqliteDSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	completed INTEGER NOT NULL DEFAULT 0,
	priority TEXT NOT NULL DEFAULT 'medium',
	category TEXT NOT NULL DEFAULT 'other',
	due TEXT DEFAULT NULL,
	created_at TEXT NOT NULL,
	completed_at TEXT DEFAULT NULL,
	archived INTEGER NOT NULL DEFAULT 0,
	starred INTEGER NOT NULL DEFAULT 0,
	subtasks TEXT NOT NULL DEFAULT '[]',
	tags TEXT NOT NULL DEFAULT '[]',
	recurring TEXT NOT NULL DEFAULT '',
	time_spent INTEGER NOT NULL DEFAULT 0,
	estimated_time INTEGER NOT NULL DEFAULT 0
);`
	_, err := s.db.Exec(ddl)
	return err
}

// Load reads the whole collection in stored order.
func (s *SQLiteStore) Load() ([]task.Task, error) {
	rows, err := s.db.Query(`SELECT id, title, description, completed, priority, category, due, created_at, completed_at, archived, starred, subtasks, tags, recurring, time_spent, estimated_time FROM tasks ORDER BY position;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		var t task.Task
		var completed, archived, starred int
		var priority, category, recurring string
		var dueStr, completedStr sql.NullString
		var createdStr, subtasksJSON, tagsJSON string

		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &completed, &priority, &category,
			&dueStr, &createdStr, &completedStr, &archived, &starred,
			&subtasksJSON, &tagsJSON, &recurring, &t.TimeSpent, &t.EstimatedTime); err != nil {
			return nil, err
		}
		t.Completed = completed == 1
		t.Archived = archived == 1
		t.Starred = starred == 1
		t.Priority = task.Priority(priority)
		t.Category = task.Category(category)
		t.Recurring = task.Recurrence(recurring)
		t.DueDate = parseNullTime(dueStr)
		t.CompletedAt = parseNullTime(completedStr)
		created, err := time.Parse(time.RFC3339, createdStr)
		if err != nil {
			return nil, fmt.Errorf("parse created_at for %s: %w", t.ID, err)
		}
		t.CreatedAt = created
		if err := json.Unmarshal([]byte(subtasksJSON), &t.Subtasks); err != nil {
			return nil, fmt.Errorf("parse subtasks for %s: %w", t.ID, err)
		}
		if tagsJSON != "" && tagsJSON != "null" {
			if err := json.Unmarshal([]byte(tagsJSON), &t.Tags); err != nil {
				return nil, fmt.Errorf("parse tags for %s: %w", t.ID, err)
			}
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Save replaces the stored collection with tasks, keeping slice order.
func (s *SQLiteStore) Save(tasks []task.Task) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tasks;`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO tasks (id, position, title, description, completed, priority, category, due, created_at, completed_at, archived, starred, subtasks, tags, recurring, time_spent, estimated_time) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, t := range tasks {
		subtasks := t.Subtasks
		if subtasks == nil {
			subtasks = []task.Subtask{}
		}
		subtasksJSON, err := json.Marshal(subtasks)
		if err != nil {
			return fmt.Errorf("marshal subtasks for %s: %w", t.ID, err)
		}
		tags := t.Tags
		if tags == nil {
			tags = []string{}
		}
		tagsJSON, err := json.Marshal(tags)
		if err != nil {
			return fmt.Errorf("marshal tags for %s: %w", t.ID, err)
		}

		if _, err := stmt.Exec(
			t.ID, i, t.Title, t.Description, boolToInt(t.Completed),
			string(t.Priority), string(t.Category),
			formatNullTime(t.DueDate),
			t.CreatedAt.UTC().Format(time.RFC3339),
			formatNullTime(t.CompletedAt),
			boolToInt(t.Archived), boolToInt(t.Starred),
			string(subtasksJSON), string(tagsJSON), string(t.Recurring),
			t.TimeSpent, t.EstimatedTime,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func parseNullTime(v sql.NullString) *time.Time {
	if !v.Valid {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, v.String)
	if err != nil {
		return nil
	}
	return &parsed
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
