package task

import "time"

// Stats summarizes the non-archived portion of a collection. It is
// recomputed on every call, never cached.
type Stats struct {
	Total          int
	Completed      int
	Pending        int
	Overdue        int
	Starred        int
	DueToday       int
	CompletionRate float64
	TimeSpent      int
	AvgTimePerTask float64
}

// Collect derives summary counts from tasks. Archived tasks are ignored
// entirely. CompletionRate is a percentage in [0, 100], 0 for an empty
// collection.
func Collect(tasks []Task, now time.Time) Stats {
	var st Stats
	for _, t := range tasks {
		if t.Archived {
			continue
		}
		st.Total++
		if t.Completed {
			st.Completed++
		} else {
			st.Pending++
		}
		if t.IsOverdue(now) {
			st.Overdue++
		}
		if t.Starred {
			st.Starred++
		}
		if t.IsDueToday(now) {
			st.DueToday++
		}
		st.TimeSpent += t.TimeSpent
	}
	if st.Total > 0 {
		st.CompletionRate = float64(st.Completed) / float64(st.Total) * 100
	}
	if st.Completed > 0 {
		st.AvgTimePerTask = float64(st.TimeSpent) / float64(st.Completed)
	}
	return st
}
