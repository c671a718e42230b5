// Package ui is the Bubble Tea front end over the task store, query engine,
// and pomodoro timer.
package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskflow/internal/backup"
	"taskflow/internal/config"
	"taskflow/internal/pomodoro"
	"taskflow/internal/task"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeSearch
	modeSubtask
	modeImport
	modePomodoro
)

var viewOrder = []task.View{
	task.ViewAll,
	task.ViewToday,
	task.ViewUpcoming,
	task.ViewCompleted,
	task.ViewStarred,
	task.ViewOverdue,
}

var sortOrder = []task.SortKey{
	task.SortByCreated,
	task.SortByDueDate,
	task.SortByPriority,
	task.SortByTitle,
}

// tickMsg carries the generation of the ticker loop that produced it, so a
// tick scheduled before a pause or reset can be told apart from the live one.
type tickMsg struct {
	gen int
}

func tick(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

type Model struct {
	store   *task.Store
	cfg     config.Config
	timer   *pomodoro.Timer
	query   task.Query
	visible []task.Task
	cursor  int
	mode    mode
	input   textinput.Model
	status  string
	tickGen int

	confirmDel   bool
	pendingDel   *task.Task
	confirmClear bool
}

func Run(store *task.Store, cfg config.Config) error {
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 256
	ti.Width = 40

	m := Model{
		store: store,
		cfg:   cfg,
		timer: pomodoro.New(
			time.Duration(cfg.Pomodoro.FocusMinutes)*time.Minute,
			time.Duration(cfg.Pomodoro.BreakMinutes)*time.Minute,
		),
		query: task.Query{
			View:      task.View(cfg.DefaultView),
			SortBy:    task.SortKey(cfg.SortBy),
			Direction: task.Direction(cfg.SortOrder),
		},
		input:  ti,
		mode:   modeList,
		status: "Press 'a' to add, space to toggle, '/' to search.",
	}
	m.refresh()

	program := tea.NewProgram(m)
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m.handleTick(msg)
	case tea.KeyMsg:
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		if m.confirmClear {
			return m.updateClearConfirm(msg.String())
		}
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch m.mode {
	case modeAdd:
		return m.updateInputMode(key, msg, m.submitAdd)
	case modeSearch:
		return m.updateSearchMode(key, msg)
	case modeSubtask:
		return m.updateInputMode(key, msg, m.submitSubtask)
	case modeImport:
		return m.updateInputMode(key, msg, m.submitImport)
	case modePomodoro:
		return m.updatePomodoroMode(key)
	default:
		return m.updateListMode(key)
	}
}

// handleTick advances the pomodoro and keeps exactly one ticker alive: ticks
// from a superseded loop are dropped, and the next tick is only scheduled
// while the timer is still running.
func (m Model) handleTick(msg tickMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.tickGen {
		return m, nil
	}
	wasFocus := m.timer.Phase() == pomodoro.PhaseFocus
	m.timer.Tick()
	if m.timer.Active() {
		return m, tick(m.tickGen)
	}
	if m.timer.Remaining() == m.fullPhase() && wasFocus != (m.timer.Phase() == pomodoro.PhaseFocus) {
		if wasFocus {
			m.status = fmt.Sprintf("Focus session %d done. Press space to start the break.", m.timer.Sessions())
		} else {
			m.status = "Break over. Press space to start focusing."
		}
	}
	return m, nil
}

func (m Model) fullPhase() time.Duration {
	if m.timer.Phase() == pomodoro.PhaseBreak {
		return time.Duration(m.cfg.Pomodoro.BreakMinutes) * time.Minute
	}
	return time.Duration(m.cfg.Pomodoro.FocusMinutes) * time.Minute
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case "ctrl+c", k.Quit:
		return m, tea.Quit
	case k.Down, "down":
		m.cursor = clampCursor(m.cursor+1, len(m.visible))
	case k.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.visible))
		}
	case k.Add:
		m.mode = modeAdd
		m.input.Placeholder = "Task title"
		m.input.SetValue("")
		m.input.Focus()
		m.status = "Add mode: type a title and press Enter"
	case k.Search:
		m.mode = modeSearch
		m.input.Placeholder = "Search"
		m.input.SetValue(m.query.Search)
		m.input.Focus()
		m.status = "Search: type to filter, Enter to keep, Esc to clear"
	case k.NextView:
		m.query.View = nextView(m.query.View)
		m.refresh()
		m.status = "View: " + string(m.query.View)
	case k.CycleSort:
		m.query.SortBy = nextSort(m.query.SortBy)
		m.refresh()
		m.status = "Sort: " + string(m.query.SortBy)
	case k.FlipSort:
		if m.query.Direction == task.Descending {
			m.query.Direction = task.Ascending
		} else {
			m.query.Direction = task.Descending
		}
		m.refresh()
		m.status = "Sort direction: " + string(m.query.Direction)
	case k.ShowArchived:
		m.query.IncludeArchived = !m.query.IncludeArchived
		m.refresh()
		if m.query.IncludeArchived {
			m.status = "Showing archived tasks"
		} else {
			m.status = "Hiding archived tasks"
		}
	case k.Toggle:
		if t, ok := m.selected(); ok {
			m.reportMutation(m.store.ToggleCompleted(t.ID), "Toggled task")
		}
	case k.Star:
		if t, ok := m.selected(); ok {
			m.reportMutation(m.store.ToggleStarred(t.ID), "Toggled star")
		}
	case k.Archive:
		if t, ok := m.selected(); ok {
			if t.Archived {
				m.reportMutation(m.store.ToggleArchived(t.ID), "Unarchived task")
			} else {
				m.reportMutation(m.store.ToggleArchived(t.ID), "Archived task")
			}
		}
	case k.Delete:
		if t, ok := m.selected(); ok {
			sel := t
			m.confirmDel = true
			m.pendingDel = &sel
			m.status = fmt.Sprintf("Delete \"%s\"? y/n", sel.Title)
		}
	case k.AddSubtask:
		if _, ok := m.selected(); ok {
			m.mode = modeSubtask
			m.input.Placeholder = "Subtask title"
			m.input.SetValue("")
			m.input.Focus()
			m.status = "Subtask: type a title and press Enter"
		}
	case k.ToggleSubtask:
		if t, ok := m.selected(); ok {
			if sub, ok := nextSubtask(t); ok {
				m.reportMutation(m.store.ToggleSubtask(t.ID, sub.ID), "Toggled subtask")
			} else {
				m.status = "No subtasks"
			}
		}
	case k.Pomodoro:
		m.mode = modePomodoro
		m.status = "Pomodoro: space start/pause, r reset, esc back"
	case k.Export:
		m.exportBackup()
	case k.Import:
		m.mode = modeImport
		m.input.Placeholder = "Backup file path"
		m.input.SetValue(backup.FileName(time.Now()))
		m.input.Focus()
		m.status = "Import: path to a backup file, Enter to load"
	case k.ClearAll:
		if len(m.store.Tasks()) == 0 {
			m.status = "Nothing to clear"
		} else {
			m.confirmClear = true
			m.status = "Delete ALL tasks? y/n"
		}
	}
	return m, nil
}

func (m *Model) updateInputMode(key string, msg tea.KeyMsg, submit func(string)) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.status = "Cancelled"
		return *m, nil
	case m.cfg.Keys.Confirm:
		submit(m.input.Value())
		m.input.SetValue("")
		m.input.Blur()
		m.mode = modeList
		return *m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return *m, cmd
	}
}

func (m *Model) updateSearchMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m.query.Search = ""
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.refresh()
		m.status = "Search cleared"
		return *m, nil
	case m.cfg.Keys.Confirm:
		m.mode = modeList
		m.input.Blur()
		m.status = fmt.Sprintf("%d tasks match", len(m.visible))
		return *m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.query.Search = m.input.Value()
		m.refresh()
		return *m, cmd
	}
}

func (m Model) updatePomodoroMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Cancel, m.cfg.Keys.Pomodoro:
		m.mode = modeList
		m.status = "Back to tasks"
		return m, nil
	case " ", m.cfg.Keys.Confirm:
		m.timer.Toggle()
		m.tickGen++
		if m.timer.Active() {
			return m, tick(m.tickGen)
		}
		m.status = "Paused"
		return m, nil
	case "r":
		m.timer.Reset()
		m.tickGen++
		m.status = "Timer reset"
		return m, nil
	}
	return m, nil
}

func (m *Model) submitAdd(raw string) {
	created, ok, err := m.store.Create(task.CreateInput{Title: raw})
	if !ok {
		m.status = "Title cannot be empty"
		return
	}
	if err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
	} else {
		m.status = "Added task"
	}
	m.refresh()
	for i := range m.visible {
		if m.visible[i].ID == created.ID {
			m.cursor = clampCursor(i, len(m.visible))
			break
		}
	}
}

func (m *Model) submitSubtask(raw string) {
	t, ok := m.selected()
	if !ok {
		return
	}
	if strings.TrimSpace(raw) == "" {
		m.status = "Subtask title cannot be empty"
		return
	}
	m.reportMutation(m.store.AddSubtask(t.ID, raw), "Added subtask")
}

// submitImport reads a backup file and swaps the whole collection for its
// tasks. A failed read or validation leaves the store untouched.
func (m *Model) submitImport(raw string) {
	path := strings.TrimSpace(raw)
	if path == "" {
		m.status = "Import cancelled"
		return
	}
	f, err := os.Open(path)
	if err != nil {
		m.status = fmt.Sprintf("import failed: %v", err)
		return
	}
	defer f.Close()

	doc, err := backup.Import(f)
	if err != nil {
		m.status = fmt.Sprintf("import failed: %v", err)
		return
	}
	if err := m.store.Replace(doc.Tasks); err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		return
	}
	m.status = fmt.Sprintf("Imported %d tasks from %s", len(doc.Tasks), path)
	m.refresh()
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N":
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			m.confirmDel = false
			return m, nil
		}
		m.reportMutation(m.store.Delete(m.pendingDel.ID), "Deleted task")
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) updateClearConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		m.confirmClear = false
		m.reportMutation(m.store.Clear(), "Cleared all tasks")
		return m, nil
	case "n", "N":
		m.confirmClear = false
		m.status = "Clear cancelled"
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) exportBackup() {
	now := time.Now()
	name := backup.FileName(now)
	f, err := os.Create(name)
	if err != nil {
		m.status = fmt.Sprintf("export failed: %v", err)
		return
	}
	defer f.Close()

	settings := &backup.Settings{
		DefaultPriority: m.cfg.Defaults.Priority,
		DefaultCategory: m.cfg.Defaults.Category,
		PomodoroTime:    m.cfg.Pomodoro.FocusMinutes,
		BreakTime:       m.cfg.Pomodoro.BreakMinutes,
	}
	if err := backup.Export(f, m.store.Tasks(), settings, m.cfg.Appearance.Theme, m.cfg.Appearance.DarkMode); err != nil {
		m.status = fmt.Sprintf("export failed: %v", err)
		return
	}
	m.status = "Exported " + name
}

// reportMutation refreshes the derived view and surfaces persistence
// failures in the status line.
func (m *Model) reportMutation(err error, okMsg string) {
	if err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
	} else {
		m.status = okMsg
	}
	m.refresh()
}

func (m *Model) refresh() {
	m.visible = m.query.Apply(m.store.Tasks(), time.Now())
	m.cursor = clampCursor(m.cursor, len(m.visible))
}

func (m Model) selected() (task.Task, bool) {
	if len(m.visible) == 0 {
		return task.Task{}, false
	}
	return m.visible[clampCursor(m.cursor, len(m.visible))], true
}

// nextSubtask picks the first incomplete subtask, or the first subtask when
// all are done.
func nextSubtask(t task.Task) (task.Subtask, bool) {
	if len(t.Subtasks) == 0 {
		return task.Subtask{}, false
	}
	for _, s := range t.Subtasks {
		if !s.Completed {
			return s, true
		}
	}
	return t.Subtasks[0], true
}

func (m Model) View() string {
	if m.mode == modePomodoro {
		return m.viewPomodoro()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("TaskFlow"))
	b.WriteString("\n")
	b.WriteString(m.renderStats())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	if len(m.visible) == 0 {
		b.WriteString("No tasks here. Press 'a' to add one.")
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderTaskList())
	}

	b.WriteString("\n")
	switch m.mode {
	case modeAdd:
		b.WriteString("Add Task: ")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case modeSearch:
		b.WriteString("Search: ")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case modeSubtask:
		b.WriteString("Subtask: ")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case modeImport:
		b.WriteString("Import: ")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(renderHelp(m.cfg.Keys)))
	return b.String()
}

func (m Model) renderStats() string {
	st := task.Collect(m.store.Tasks(), time.Now())
	return statsStyle.Render(fmt.Sprintf(
		"%d tasks • %d done • %d overdue • %d today • %.0f%% complete",
		st.Total, st.Completed, st.Overdue, st.DueToday, st.CompletionRate,
	))
}

func (m Model) renderTabs() string {
	parts := make([]string, 0, len(viewOrder))
	for _, v := range viewOrder {
		if v == m.query.View || (m.query.View == "" && v == task.ViewAll) {
			parts = append(parts, activeTabStyle.Render(string(v)))
		} else {
			parts = append(parts, tabStyle.Render(string(v)))
		}
	}
	return strings.Join(parts, "")
}

func (m Model) renderTaskList() string {
	var b strings.Builder
	now := time.Now()
	for i, t := range m.visible {
		cursor := " "
		if m.cursor == i && m.mode == modeList {
			cursor = ">"
		}

		checkbox := "[ ]"
		if t.Completed {
			checkbox = "[x]"
		}

		title := t.Title
		switch {
		case t.Completed:
			title = doneStyle.Render(title)
		case t.IsOverdue(now):
			title = overdueStyle.Render(title)
		}
		if t.Starred {
			title = starStyle.Render("★ ") + title
		}

		extras := make([]string, 0, 4)
		extras = append(extras, string(t.Priority))
		if t.DueDate != nil {
			extras = append(extras, "due:"+t.DueDate.Format("2006-01-02"))
		}
		if len(t.Subtasks) > 0 {
			done := 0
			for _, s := range t.Subtasks {
				if s.Completed {
					done++
				}
			}
			extras = append(extras, fmt.Sprintf("%d/%d", done, len(t.Subtasks)))
		}
		if t.Recurring != task.RecurNone {
			extras = append(extras, string(t.Recurring))
		}

		body := fmt.Sprintf("%s %s %s [%s]", cursor, checkbox, title, strings.Join(extras, " | "))
		if t.Archived {
			body += archivedStyle.Render(" (archived)")
		}
		b.WriteString(body)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewPomodoro() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Pomodoro"))
	b.WriteString("\n\n")

	phase := "Focus Time"
	if m.timer.Phase() == pomodoro.PhaseBreak {
		phase = "Break Time"
	}
	b.WriteString(phase)
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Session %d • %d completed\n\n", m.timer.Sessions()+1, m.timer.Sessions()))

	left := m.timer.Remaining().Round(time.Second)
	b.WriteString(fmt.Sprintf("%02d:%02d\n", int(left.Minutes()), int(left.Seconds())%60))
	b.WriteString(renderProgress(m.timer.Progress(), 30))
	b.WriteString("\n\n")

	if m.timer.Active() {
		b.WriteString("running")
	} else {
		b.WriteString("paused")
	}
	b.WriteString("\n\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space start/pause • r reset • esc back • q quit"))
	return b.String()
}

func renderProgress(frac float64, width int) string {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(frac * float64(width))
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s add • %s toggle • %s star • %s archive • %s delete • %s search • %s view • %s/%s sort • %s pomodoro • %s export • %s import • %s quit",
		k.Up, k.Down, k.Add, k.Toggle, k.Star, k.Archive, k.Delete, k.Search, k.NextView, k.CycleSort, k.FlipSort, k.Pomodoro, k.Export, k.Import, k.Quit)
}

func nextView(v task.View) task.View {
	for i, cur := range viewOrder {
		if cur == v {
			return viewOrder[(i+1)%len(viewOrder)]
		}
	}
	return task.ViewAll
}

func nextSort(s task.SortKey) task.SortKey {
	for i, cur := range sortOrder {
		if cur == s {
			return sortOrder[(i+1)%len(sortOrder)]
		}
	}
	return task.SortByCreated
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
