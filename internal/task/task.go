// Package task holds the task model, the store that owns the canonical
// collection, the query engine, and the statistics aggregator.
package task

import "time"

// Priority levels, ranked urgent > high > medium > low.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank returns the ordinal rank of the priority (urgent 4 ... low 1).
// Unknown values rank 0, below low.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Category labels a task with a life area.
type Category string

const (
	CategoryPersonal Category = "personal"
	CategoryWork     Category = "work"
	CategoryShopping Category = "shopping"
	CategoryHealth   Category = "health"
	CategoryFinance  Category = "finance"
	CategoryOther    Category = "other"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryPersonal, CategoryWork, CategoryShopping, CategoryHealth, CategoryFinance, CategoryOther:
		return true
	}
	return false
}

// Recurrence is a recorded cadence. No regeneration logic exists; completing
// a recurring task does not spawn a successor.
type Recurrence string

const (
	RecurNone    Recurrence = ""
	RecurDaily   Recurrence = "daily"
	RecurWeekly  Recurrence = "weekly"
	RecurMonthly Recurrence = "monthly"
)

// Subtask is owned exclusively by its parent task.
type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Task is the sole entity. JSON tags match the persisted document format.
type Task struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Completed     bool       `json:"completed"`
	Priority      Priority   `json:"priority"`
	Category      Category   `json:"category"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	Archived      bool       `json:"archived"`
	Starred       bool       `json:"starred"`
	Subtasks      []Subtask  `json:"subtasks"`
	Tags          []string   `json:"tags,omitempty"`
	Recurring     Recurrence `json:"recurring,omitempty"`
	TimeSpent     int        `json:"timeSpent"`
	EstimatedTime int        `json:"estimatedTime,omitempty"`
}

// IsOverdue reports whether the task has a due date strictly before now and
// is not completed. Completed tasks are never overdue.
func (t Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && !t.Completed
}

// IsDueToday reports whether the task's due date falls on now's calendar day
// and the task is not completed.
func (t Task) IsDueToday(now time.Time) bool {
	if t.DueDate == nil || t.Completed {
		return false
	}
	y1, m1, d1 := t.DueDate.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// SubtaskProgress returns the completed-subtask ratio in [0, 1]. It is
// derived on read and never persisted. Tasks without subtasks report 0.
func (t Task) SubtaskProgress() float64 {
	if len(t.Subtasks) == 0 {
		return 0
	}
	done := 0
	for _, s := range t.Subtasks {
		if s.Completed {
			done++
		}
	}
	return float64(done) / float64(len(t.Subtasks))
}

// Normalize fills defaults for fields a deserialized task may be missing.
func (t *Task) Normalize() {
	if t.Subtasks == nil {
		t.Subtasks = []Subtask{}
	}
	if !t.Priority.Valid() {
		t.Priority = PriorityMedium
	}
	if !t.Category.Valid() {
		t.Category = CategoryOther
	}
	if t.TimeSpent < 0 {
		t.TimeSpent = 0
	}
	if t.Completed && t.CompletedAt == nil {
		at := t.CreatedAt
		t.CompletedAt = &at
	}
	if !t.Completed {
		t.CompletedAt = nil
	}
}
