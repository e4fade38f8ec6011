package update

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"

	"github.com/sandeepkv93/duecast/internal/clock"
	"github.com/sandeepkv93/duecast/internal/model"
	"github.com/sandeepkv93/duecast/internal/views"
)

func newTaskTable() table.Model {
	return table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 8},
			{Title: "Task", Width: 32},
			{Title: "List", Width: 12},
			{Title: "Size", Width: 7},
			{Title: "Importance", Width: 10},
			{Title: "Due", Width: 12},
			{Title: "Done", Width: 4},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)
}

// reload rebuilds the task table from the session, keeping the cursor on the
// same task when it still exists.
func (m *Model) reload() {
	selected := m.selectedID()
	tasks := m.app.Tasks.Tasks()
	listNames := make(map[string]string)
	for _, l := range m.app.Tasks.Lists() {
		listNames[l.UUID] = l.Name
	}
	depth := make(map[string]int, len(tasks))
	now := m.app.Clock.Now()

	rows := make([]table.Row, 0, len(tasks))
	ids := make([]string, 0, len(tasks))
	cursor := 0
	for _, t := range tasks {
		d := 0
		if t.HasParent() {
			d = depth[t.ParentID] + 1
		}
		depth[t.ID] = d
		done := ""
		if t.Completed {
			done = "x"
		}
		if t.ID == selected {
			cursor = len(ids)
		}
		rows = append(rows, table.Row{
			shortID(t.ID),
			strings.Repeat("  ", d) + t.Name,
			listNames[t.List],
			t.Size.String(),
			t.Importance.String(),
			clock.FormatDue(now, t.Due),
			done,
		})
		ids = append(ids, t.ID)
	}
	m.rowIDs = ids
	m.taskTable.SetRows(rows)
	if len(ids) > 0 {
		m.taskTable.SetCursor(cursor)
	}
}

func (m Model) selectedID() string {
	i := m.taskTable.Cursor()
	if i < 0 || i >= len(m.rowIDs) {
		return ""
	}
	return m.rowIDs[i]
}

func (m Model) selectedTask() (model.Task, bool) {
	id := m.selectedID()
	if id == "" {
		return model.Task{}, false
	}
	t, err := m.app.Tasks.Task(id)
	if err != nil {
		return model.Task{}, false
	}
	return t, true
}

func (m Model) taskDetail() *views.TaskDetailData {
	t, ok := m.selectedTask()
	if !ok {
		return nil
	}
	list := t.List
	if l, ok := m.app.Tasks.List(t.List); ok {
		list = l.Name
	}
	now := m.app.Clock.Now()
	return &views.TaskDetailData{
		ID:         t.ID,
		Name:       t.Name,
		List:       list,
		Size:       t.Size.String(),
		Importance: t.Importance.String(),
		Due:        t.Due.Format("Mon 2 Jan 15:04") + " (" + clock.FormatDue(now, t.Due) + ")",
		DueIn:      clock.DueIn(now, t.Due),
		Subtasks:   len(t.SubtaskIDs),
		Completed:  t.Completed,
	}
}

// toggleSelected completes an open task or reopens a finished one.
func (m Model) toggleSelected() Model {
	t, ok := m.selectedTask()
	if !ok {
		m.Status = StatusBar{Text: "no task selected", IsError: true}
		return m
	}
	var err error
	verb := "completed"
	if t.Completed {
		_, err = m.app.Tasks.Uncomplete(t.ID)
		verb = "reopened"
	} else {
		_, err = m.app.Tasks.Complete(t.ID)
	}
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	m.Status = StatusBar{Text: verb + " " + t.Name}
	m.reload()
	return m
}

func (m Model) deleteSelected() Model {
	t, ok := m.selectedTask()
	if !ok {
		m.Status = StatusBar{Text: "no task selected", IsError: true}
		return m
	}
	if err := m.app.Tasks.Delete(t.ID); err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	m.Status = StatusBar{Text: "deleted " + t.Name}
	m.reload()
	return m
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
