package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository persists the whole collection. Implementations live in
// internal/storage; the store treats writes as all-or-nothing snapshots.
type Repository interface {
	Load() ([]Task, error)
	Save([]Task) error
}

// Defaults seed new tasks at creation time.
type Defaults struct {
	Priority      Priority
	Category      Category
	EstimatedTime int
}

// CreateInput carries the user-supplied fields for a new task.
type CreateInput struct {
	Title         string
	Description   string
	Priority      Priority
	Category      Category
	DueDate       *time.Time
	Starred       bool
	Tags          []string
	Recurring     Recurrence
	EstimatedTime int
}

// Patch updates a task in place. Nil fields are left untouched.
type Patch struct {
	Title         *string
	Description   *string
	Priority      *Priority
	Category      *Category
	DueDate       **time.Time
	Starred       *bool
	Tags          *[]string
	Recurring     *Recurrence
	TimeSpent     *int
	EstimatedTime *int
}

// Store owns the canonical in-memory collection, most-recent-first. Every
// mutation writes the whole collection back through the repository.
type Store struct {
	repo     Repository
	defaults Defaults
	tasks    []Task

	now   func() time.Time
	newID func() string
}

// Open loads the persisted collection once. Absent data yields an empty
// store.
func Open(repo Repository, defaults Defaults) (*Store, error) {
	tasks, err := repo.Load()
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	for i := range tasks {
		tasks[i].Normalize()
	}
	return &Store{
		repo:     repo,
		defaults: defaults,
		tasks:    tasks,
		now:      time.Now,
		newID:    uuid.NewString,
	}, nil
}

// Tasks returns a copy of the collection in store order.
func (s *Store) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Len returns the number of tasks, archived included.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Get returns the task with the given id.
func (s *Store) Get(id string) (Task, bool) {
	if i := s.index(id); i >= 0 {
		return s.tasks[i], true
	}
	return Task{}, false
}

// Create validates and inserts a new task at the head of the collection.
// A title that is blank after trimming is rejected: no task is created and
// ok is false. Zero-valued input fields fall back to the store defaults.
func (s *Store) Create(in CreateInput) (Task, bool, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Task{}, false, nil
	}

	priority := in.Priority
	if !priority.Valid() {
		priority = s.defaults.Priority
	}
	category := in.Category
	if !category.Valid() {
		category = s.defaults.Category
	}
	estimated := in.EstimatedTime
	if estimated <= 0 {
		estimated = s.defaults.EstimatedTime
	}

	t := Task{
		ID:            s.newID(),
		Title:         title,
		Description:   in.Description,
		Completed:     false,
		Priority:      priority,
		Category:      category,
		DueDate:       in.DueDate,
		CreatedAt:     s.now(),
		Archived:      false,
		Starred:       in.Starred,
		Subtasks:      []Subtask{},
		Tags:          in.Tags,
		Recurring:     in.Recurring,
		TimeSpent:     0,
		EstimatedTime: estimated,
	}

	s.tasks = append([]Task{t}, s.tasks...)
	return t, true, s.persist()
}

// Update merges the patch into the task with the given id. Absent ids are a
// no-op, not an error.
func (s *Store) Update(id string, p Patch) error {
	i := s.index(id)
	if i < 0 {
		return nil
	}
	t := &s.tasks[i]
	if p.Title != nil {
		if title := strings.TrimSpace(*p.Title); title != "" {
			t.Title = title
		}
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil && p.Priority.Valid() {
		t.Priority = *p.Priority
	}
	if p.Category != nil && p.Category.Valid() {
		t.Category = *p.Category
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Starred != nil {
		t.Starred = *p.Starred
	}
	if p.Tags != nil {
		t.Tags = *p.Tags
	}
	if p.Recurring != nil {
		t.Recurring = *p.Recurring
	}
	if p.TimeSpent != nil && *p.TimeSpent >= 0 {
		t.TimeSpent = *p.TimeSpent
	}
	if p.EstimatedTime != nil && *p.EstimatedTime >= 0 {
		t.EstimatedTime = *p.EstimatedTime
	}
	return s.persist()
}

// Delete removes the task with the given id. Absent ids are a no-op.
func (s *Store) Delete(id string) error {
	i := s.index(id)
	if i < 0 {
		return nil
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return s.persist()
}

// ToggleCompleted flips the completed flag. CompletedAt is set on the
// false→true transition and cleared on true→false.
func (s *Store) ToggleCompleted(id string) error {
	i := s.index(id)
	if i < 0 {
		return nil
	}
	t := &s.tasks[i]
	t.Completed = !t.Completed
	if t.Completed {
		at := s.now()
		t.CompletedAt = &at
	} else {
		t.CompletedAt = nil
	}
	return s.persist()
}

// ToggleStarred flips the starred flag.
func (s *Store) ToggleStarred(id string) error {
	i := s.index(id)
	if i < 0 {
		return nil
	}
	s.tasks[i].Starred = !s.tasks[i].Starred
	return s.persist()
}

// ToggleArchived flips the archived flag. Archiving soft-hides the task from
// default views; unarchiving restores its prior visibility.
func (s *Store) ToggleArchived(id string) error {
	i := s.index(id)
	if i < 0 {
		return nil
	}
	s.tasks[i].Archived = !s.tasks[i].Archived
	return s.persist()
}

// AddSubtask appends a subtask with a fresh id. Blank titles and absent
// parent ids are no-ops.
func (s *Store) AddSubtask(taskID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	i := s.index(taskID)
	if i < 0 {
		return nil
	}
	s.tasks[i].Subtasks = append(s.tasks[i].Subtasks, Subtask{
		ID:    s.newID(),
		Title: title,
	})
	return s.persist()
}

// ToggleSubtask flips a subtask's completed flag.
func (s *Store) ToggleSubtask(taskID, subtaskID string) error {
	i := s.index(taskID)
	if i < 0 {
		return nil
	}
	for j := range s.tasks[i].Subtasks {
		if s.tasks[i].Subtasks[j].ID == subtaskID {
			s.tasks[i].Subtasks[j].Completed = !s.tasks[i].Subtasks[j].Completed
			return s.persist()
		}
	}
	return nil
}

// RemoveSubtask deletes a subtask from its parent.
func (s *Store) RemoveSubtask(taskID, subtaskID string) error {
	i := s.index(taskID)
	if i < 0 {
		return nil
	}
	subs := s.tasks[i].Subtasks
	for j := range subs {
		if subs[j].ID == subtaskID {
			s.tasks[i].Subtasks = append(subs[:j], subs[j+1:]...)
			return s.persist()
		}
	}
	return nil
}

// AddTime accumulates minutes onto a task's timeSpent counter. The pomodoro
// timer does not call this; accumulation is an explicit user action.
func (s *Store) AddTime(id string, minutes int) error {
	if minutes <= 0 {
		return nil
	}
	i := s.index(id)
	if i < 0 {
		return nil
	}
	s.tasks[i].TimeSpent += minutes
	return s.persist()
}

// Replace swaps in a whole new collection, used by import. The incoming
// tasks are normalized first.
func (s *Store) Replace(tasks []Task) error {
	normalized := make([]Task, len(tasks))
	copy(normalized, tasks)
	for i := range normalized {
		normalized[i].Normalize()
	}
	s.tasks = normalized
	return s.persist()
}

// Clear removes every task.
func (s *Store) Clear() error {
	s.tasks = nil
	return s.persist()
}

func (s *Store) index(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persist() error {
	if err := s.repo.Save(s.tasks); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}
