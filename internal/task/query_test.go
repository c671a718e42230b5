package task

import (
	"testing"
	"time"
)

var queryNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func tp(t time.Time) *time.Time { return &t }

func ids(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func equalIDs(a []string, b ...string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sampleTasks() []Task {
	yesterday := queryNow.Add(-24 * time.Hour)
	tomorrow := queryNow.Add(24 * time.Hour)
	return []Task{
		{ID: "A", Title: "overdue report", DueDate: tp(yesterday), Priority: PriorityHigh, Category: CategoryWork, CreatedAt: queryNow.Add(-3 * time.Hour)},
		{ID: "B", Title: "future errand", DueDate: tp(tomorrow), Priority: PriorityLow, Category: CategoryShopping, CreatedAt: queryNow.Add(-2 * time.Hour)},
		{ID: "C", Title: "finished chore", Completed: true, CompletedAt: tp(queryNow), Priority: PriorityMedium, Category: CategoryPersonal, CreatedAt: queryNow.Add(-1 * time.Hour)},
	}
}

func TestOverdueViewExcludesCompleted(t *testing.T) {
	tasks := sampleTasks()
	// A completed task with a past due date must never count as overdue.
	tasks = append(tasks, Task{
		ID: "D", Title: "late but done", Completed: true, CompletedAt: tp(queryNow),
		DueDate: tp(queryNow.Add(-48 * time.Hour)), CreatedAt: queryNow,
	})

	got := Query{View: ViewOverdue}.Apply(tasks, queryNow)
	if !equalIDs(ids(got), "A") {
		t.Fatalf("overdue view = %v, want [A]", ids(got))
	}
}

func TestCompletedView(t *testing.T) {
	got := Query{View: ViewCompleted}.Apply(sampleTasks(), queryNow)
	if !equalIDs(ids(got), "C") {
		t.Fatalf("completed view = %v, want [C]", ids(got))
	}
}

func TestTodayView(t *testing.T) {
	tasks := sampleTasks()
	laterToday := time.Date(2025, 6, 15, 22, 0, 0, 0, time.UTC)
	tasks = append(tasks,
		Task{ID: "T1", Title: "due today", DueDate: tp(laterToday), CreatedAt: queryNow},
		Task{ID: "T2", Title: "done today", DueDate: tp(laterToday), Completed: true, CompletedAt: tp(queryNow), CreatedAt: queryNow},
	)

	got := Query{View: ViewToday}.Apply(tasks, queryNow)
	if !equalIDs(ids(got), "T1") {
		t.Fatalf("today view = %v, want [T1]", ids(got))
	}
}

func TestUpcomingViewExcludesCompleted(t *testing.T) {
	got := Query{View: ViewUpcoming}.Apply(sampleTasks(), queryNow)
	if !equalIDs(ids(got), "A", "B") {
		t.Fatalf("upcoming view = %v, want [A B]", ids(got))
	}
}

func TestArchivedExcludedUnlessRequested(t *testing.T) {
	tasks := sampleTasks()
	tasks[0].Archived = true

	views := []View{ViewAll, ViewToday, ViewUpcoming, ViewCompleted, ViewStarred, ViewOverdue}
	for _, v := range views {
		for _, got := range (Query{View: v}).Apply(tasks, queryNow) {
			if got.ID == "A" {
				t.Errorf("archived task leaked into %q view", v)
			}
		}
	}

	got := Query{View: ViewAll, IncludeArchived: true}.Apply(tasks, queryNow)
	if !equalIDs(ids(got), "A", "B", "C") {
		t.Fatalf("includeArchived view = %v, want [A B C]", ids(got))
	}

	// Round trip: unarchive restores prior visibility.
	tasks[0].Archived = false
	got = Query{View: ViewAll}.Apply(tasks, queryNow)
	if !equalIDs(ids(got), "A", "B", "C") {
		t.Fatalf("after unarchive = %v, want [A B C]", ids(got))
	}
}

func TestSearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	tasks := []Task{
		{ID: "1", Title: "Write REPORT", CreatedAt: queryNow},
		{ID: "2", Title: "other", Description: "quarterly report notes", CreatedAt: queryNow},
		{ID: "3", Title: "tagged", Tags: []string{"Report", "q2"}, CreatedAt: queryNow},
		{ID: "4", Title: "unrelated", CreatedAt: queryNow},
	}

	got := Query{Search: "report"}.Apply(tasks, queryNow)
	if !equalIDs(ids(got), "1", "2", "3") {
		t.Fatalf("search = %v, want [1 2 3]", ids(got))
	}

	got = Query{Search: "   "}.Apply(tasks, queryNow)
	if len(got) != 4 {
		t.Fatalf("blank search should match everything, got %d", len(got))
	}
}

func TestCategoryAndPriorityFilters(t *testing.T) {
	tasks := sampleTasks()

	got := Query{Category: CategoryWork}.Apply(tasks, queryNow)
	if !equalIDs(ids(got), "A") {
		t.Fatalf("category filter = %v, want [A]", ids(got))
	}

	got = Query{Priority: PriorityLow}.Apply(tasks, queryNow)
	if !equalIDs(ids(got), "B") {
		t.Fatalf("priority filter = %v, want [B]", ids(got))
	}

	got = Query{Category: "all", Priority: "all"}.Apply(tasks, queryNow)
	if len(got) != 3 {
		t.Fatalf(`"all" filters should not constrain, got %d`, len(got))
	}
}

func TestStatusFilter(t *testing.T) {
	tasks := sampleTasks()

	got := Query{Status: StatusPending}.Apply(tasks, queryNow)
	if !equalIDs(ids(got), "A", "B") {
		t.Fatalf("pending status = %v, want [A B]", ids(got))
	}
	got = Query{Status: StatusCompleted}.Apply(tasks, queryNow)
	if !equalIDs(ids(got), "C") {
		t.Fatalf("completed status = %v, want [C]", ids(got))
	}
}

func TestFocusModeHidesDoneAndLowPriority(t *testing.T) {
	got := Query{FocusMode: true}.Apply(sampleTasks(), queryNow)
	if !equalIDs(ids(got), "A") {
		t.Fatalf("focus mode = %v, want [A]", ids(got))
	}
}

func TestUnknownFilterValuesAreIgnored(t *testing.T) {
	q := Query{View: "bogus", SortBy: "mystery", Direction: "sideways"}
	got := q.Apply(sampleTasks(), queryNow)
	if len(got) != 3 {
		t.Fatalf("unknown view should behave like all, got %d tasks", len(got))
	}
	if !equalIDs(ids(got), "A", "B", "C") {
		t.Fatalf("unknown sort should fall back to createdAt ascending, got %v", ids(got))
	}
}

func TestSortByDueDatePlacesMissingLast(t *testing.T) {
	tasks := []Task{
		{ID: "none1", CreatedAt: queryNow},
		{ID: "late", DueDate: tp(queryNow.Add(48 * time.Hour)), CreatedAt: queryNow},
		{ID: "none2", CreatedAt: queryNow},
		{ID: "soon", DueDate: tp(queryNow.Add(1 * time.Hour)), CreatedAt: queryNow},
	}

	asc := Query{SortBy: SortByDueDate, Direction: Ascending}.Apply(tasks, queryNow)
	if !equalIDs(ids(asc), "soon", "late", "none1", "none2") {
		t.Fatalf("asc = %v", ids(asc))
	}

	desc := Query{SortBy: SortByDueDate, Direction: Descending}.Apply(tasks, queryNow)
	if !equalIDs(ids(desc), "late", "soon", "none1", "none2") {
		t.Fatalf("desc = %v, undated tasks must stay last", ids(desc))
	}
}

func TestSortByPriorityUrgentFirst(t *testing.T) {
	tasks := []Task{
		{ID: "lo", Priority: PriorityLow, CreatedAt: queryNow},
		{ID: "ur", Priority: PriorityUrgent, CreatedAt: queryNow},
		{ID: "md", Priority: PriorityMedium, CreatedAt: queryNow},
		{ID: "hi", Priority: PriorityHigh, CreatedAt: queryNow},
	}

	asc := Query{SortBy: SortByPriority, Direction: Ascending}.Apply(tasks, queryNow)
	if !equalIDs(ids(asc), "ur", "hi", "md", "lo") {
		t.Fatalf("priority asc = %v, want urgent first", ids(asc))
	}

	desc := Query{SortBy: SortByPriority, Direction: Descending}.Apply(tasks, queryNow)
	if !equalIDs(ids(desc), "lo", "md", "hi", "ur") {
		t.Fatalf("priority desc = %v, want inverted", ids(desc))
	}
}

func TestSortByTitle(t *testing.T) {
	tasks := []Task{
		{ID: "b", Title: "banana", CreatedAt: queryNow},
		{ID: "A", Title: "Apple", CreatedAt: queryNow},
		{ID: "c", Title: "cherry", CreatedAt: queryNow},
	}
	got := Query{SortBy: SortByTitle}.Apply(tasks, queryNow)
	if !equalIDs(ids(got), "A", "b", "c") {
		t.Fatalf("title sort = %v", ids(got))
	}
}

func TestSortIsStableForEqualKeys(t *testing.T) {
	same := queryNow.Add(-time.Hour)
	tasks := []Task{
		{ID: "1", Title: "same", Priority: PriorityMedium, CreatedAt: same},
		{ID: "2", Title: "same", Priority: PriorityMedium, CreatedAt: same},
		{ID: "3", Title: "same", Priority: PriorityMedium, CreatedAt: same},
		{ID: "4", Title: "same", Priority: PriorityMedium, CreatedAt: same},
	}

	for _, key := range []SortKey{SortByCreated, SortByPriority, SortByDueDate, SortByTitle} {
		got := Query{SortBy: key}.Apply(tasks, queryNow)
		if !equalIDs(ids(got), "1", "2", "3", "4") {
			t.Errorf("sort by %s reordered equal keys: %v", key, ids(got))
		}
		got = Query{SortBy: key, Direction: Descending}.Apply(tasks, queryNow)
		if !equalIDs(ids(got), "1", "2", "3", "4") {
			t.Errorf("descending sort by %s reordered equal keys: %v", key, ids(got))
		}
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	tasks := []Task{
		{ID: "z", Title: "zz", CreatedAt: queryNow.Add(time.Hour)},
		{ID: "a", Title: "aa", CreatedAt: queryNow},
	}
	Query{SortBy: SortByTitle}.Apply(tasks, queryNow)
	if tasks[0].ID != "z" || tasks[1].ID != "a" {
		t.Fatalf("input slice was reordered: %v", ids(tasks))
	}
}
