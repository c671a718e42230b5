package task

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// View selects a named subset of tasks.
type View string

const (
	ViewAll       View = "all"
	ViewToday     View = "today"
	ViewUpcoming  View = "upcoming"
	ViewCompleted View = "completed"
	ViewStarred   View = "starred"
	ViewOverdue   View = "overdue"
)

// Status narrows a query to completed or pending tasks, orthogonally to the
// view.
type Status string

const (
	StatusAll       Status = "all"
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
)

// SortKey names the field a query orders by.
type SortKey string

const (
	SortByCreated  SortKey = "createdAt"
	SortByDueDate  SortKey = "dueDate"
	SortByPriority SortKey = "priority"
	SortByTitle    SortKey = "title"
)

// Direction orders a sorted view.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Query configures one pass of the engine. Zero values are permissive:
// empty search matches everything, empty or "all" category/priority/status
// constrain nothing, unknown views fall back to all, unknown sort keys fall
// back to creation time.
type Query struct {
	Search          string
	View            View
	Category        Category
	Priority        Priority
	Status          Status
	IncludeArchived bool

	// FocusMode hides completed and low-priority tasks on top of the other
	// predicates.
	FocusMode bool

	SortBy    SortKey
	Direction Direction
}

var titleCollator = collate.New(language.Und, collate.IgnoreCase)

// Apply filters and sorts tasks for display. The input slice is not
// modified; equal sort keys keep their prior relative order.
func (q Query) Apply(tasks []Task, now time.Time) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if q.matches(t, now) {
			out = append(out, t)
		}
	}
	q.sortTasks(out)
	return out
}

func (q Query) matches(t Task, now time.Time) bool {
	if t.Archived && !q.IncludeArchived {
		return false
	}
	if q.FocusMode && (t.Completed || t.Priority == PriorityLow) {
		return false
	}

	switch q.View {
	case ViewToday:
		if !t.IsDueToday(now) {
			return false
		}
	case ViewUpcoming:
		if t.Completed {
			return false
		}
	case ViewCompleted:
		if !t.Completed {
			return false
		}
	case ViewStarred:
		if !t.Starred {
			return false
		}
	case ViewOverdue:
		if !t.IsOverdue(now) {
			return false
		}
	default:
		// all, empty, or unrecognized: no view constraint
	}

	if q.Category != "" && q.Category != "all" && t.Category != q.Category {
		return false
	}
	if q.Priority != "" && q.Priority != "all" && t.Priority != q.Priority {
		return false
	}
	switch q.Status {
	case StatusCompleted:
		if !t.Completed {
			return false
		}
	case StatusPending:
		if t.Completed {
			return false
		}
	}

	return q.matchesSearch(t)
}

func (q Query) matchesSearch(t Task) bool {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Description), needle) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func (q Query) sortTasks(tasks []Task) {
	desc := q.Direction == Descending
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]

		// Tasks without a due date sort after tasks with one, in both
		// directions.
		if q.SortBy == SortByDueDate {
			switch {
			case a.DueDate == nil && b.DueDate == nil:
				return false
			case a.DueDate == nil:
				return false
			case b.DueDate == nil:
				return true
			}
		}

		c := q.compare(a, b)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// compare returns the ascending-order comparison for the configured key.
// Priority is urgent-first under ascending; Descending inverts every key.
func (q Query) compare(a, b Task) int {
	switch q.SortBy {
	case SortByTitle:
		return titleCollator.CompareString(a.Title, b.Title)
	case SortByDueDate:
		return compareTime(*a.DueDate, *b.DueDate)
	case SortByPriority:
		return b.Priority.Rank() - a.Priority.Rank()
	default:
		return compareTime(a.CreatedAt, b.CreatedAt)
	}
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}
