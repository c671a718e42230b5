package task

import (
	"math"
	"testing"
	"time"
)

func TestCollectEmptyCollection(t *testing.T) {
	st := Collect(nil, queryNow)
	if st.Total != 0 || st.Completed != 0 || st.Overdue != 0 || st.DueToday != 0 {
		t.Fatalf("empty collection should produce zero counts: %+v", st)
	}
	if st.CompletionRate != 0 {
		t.Fatalf("completionRate must be 0 for an empty collection, got %v", st.CompletionRate)
	}
}

func TestCollectScenario(t *testing.T) {
	yesterday := queryNow.Add(-24 * time.Hour)
	tomorrow := queryNow.Add(24 * time.Hour)
	tasks := []Task{
		{ID: "A", Title: "a", DueDate: tp(yesterday), CreatedAt: queryNow},
		{ID: "B", Title: "b", DueDate: tp(tomorrow), CreatedAt: queryNow},
		{ID: "C", Title: "c", Completed: true, CompletedAt: tp(queryNow), CreatedAt: queryNow},
	}

	st := Collect(tasks, queryNow)
	if st.Total != 3 {
		t.Errorf("total = %d, want 3", st.Total)
	}
	if st.Completed != 1 {
		t.Errorf("completed = %d, want 1", st.Completed)
	}
	if st.Pending != 2 {
		t.Errorf("pending = %d, want 2", st.Pending)
	}
	if st.Overdue != 1 {
		t.Errorf("overdue = %d, want 1", st.Overdue)
	}
	if got := math.Round(st.CompletionRate); got != 33 {
		t.Errorf("completionRate rounds to %v, want 33", got)
	}
}

func TestCollectIgnoresArchived(t *testing.T) {
	tasks := []Task{
		{ID: "1", Completed: true, CompletedAt: tp(queryNow), CreatedAt: queryNow},
		{ID: "2", Archived: true, Starred: true, DueDate: tp(queryNow.Add(-time.Hour)), CreatedAt: queryNow},
	}
	st := Collect(tasks, queryNow)
	if st.Total != 1 || st.Completed != 1 || st.Overdue != 0 || st.Starred != 0 {
		t.Fatalf("archived task counted: %+v", st)
	}
	if st.CompletionRate != 100 {
		t.Fatalf("completionRate = %v, want 100", st.CompletionRate)
	}
}

func TestCollectDueTodayAndStarred(t *testing.T) {
	laterToday := time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC)
	tasks := []Task{
		{ID: "1", DueDate: tp(laterToday), CreatedAt: queryNow},
		{ID: "2", DueDate: tp(laterToday), Completed: true, CompletedAt: tp(queryNow), CreatedAt: queryNow},
		{ID: "3", Starred: true, CreatedAt: queryNow},
	}
	st := Collect(tasks, queryNow)
	if st.DueToday != 1 {
		t.Errorf("dueToday = %d, want 1 (completed tasks excluded)", st.DueToday)
	}
	if st.Starred != 1 {
		t.Errorf("starred = %d, want 1", st.Starred)
	}
}

func TestCompletionRateBounds(t *testing.T) {
	tasks := []Task{}
	for i := 0; i < 7; i++ {
		tk := Task{ID: string(rune('a' + i)), CreatedAt: queryNow}
		if i%2 == 0 {
			tk.Completed = true
			tk.CompletedAt = tp(queryNow)
		}
		tasks = append(tasks, tk)
		st := Collect(tasks, queryNow)
		if st.CompletionRate < 0 || st.CompletionRate > 100 {
			t.Fatalf("completionRate out of bounds: %v", st.CompletionRate)
		}
	}
}

func TestCollectTimeAggregates(t *testing.T) {
	tasks := []Task{
		{ID: "1", Completed: true, CompletedAt: tp(queryNow), TimeSpent: 50, CreatedAt: queryNow},
		{ID: "2", Completed: true, CompletedAt: tp(queryNow), TimeSpent: 10, CreatedAt: queryNow},
		{ID: "3", TimeSpent: 15, CreatedAt: queryNow},
	}
	st := Collect(tasks, queryNow)
	if st.TimeSpent != 75 {
		t.Errorf("timeSpent = %d, want 75", st.TimeSpent)
	}
	if st.AvgTimePerTask != 37.5 {
		t.Errorf("avgTimePerTask = %v, want 37.5", st.AvgTimePerTask)
	}
}
