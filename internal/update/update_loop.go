package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/duecast/internal/clock"
	"github.com/sandeepkv93/duecast/internal/model"
	"github.com/sandeepkv93/duecast/internal/reminders"
	"github.com/sandeepkv93/duecast/internal/views"
)

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.helpModel.Width = typed.Width
		if h := typed.Height - 10; h > 3 {
			m.taskTable.SetHeight(h)
		}
		return m, nil
	case tea.FocusMsg:
		m.app.SetFocused(true)
		m.reload()
		return m, nil
	case tea.BlurMsg:
		m.app.SetFocused(false)
		return m, nil
	case NotificationMsg:
		m.pushNotice(typed.Notification)
		m.Status = StatusBar{Text: typed.Notification.Title}
		return m, nil
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case tea.KeyMsg:
		if m.Palette.Active {
			return m.handlePaletteKey(typed)
		}
		switch {
		case key.Matches(typed, m.Keys.Quit):
			m.Quitting = true
			return m, tea.Quit
		case key.Matches(typed, m.Keys.Palette):
			return m.openPalette()
		case key.Matches(typed, m.Keys.Help):
			m.HelpVisible = !m.HelpVisible
			return m, nil
		case key.Matches(typed, m.Keys.Tasks):
			m.CurrentView = ViewTasks
			return m, nil
		case key.Matches(typed, m.Keys.Panes):
			m.CurrentView = ViewPanes
			return m, nil
		case key.Matches(typed, m.Keys.Reminders):
			m.CurrentView = ViewReminders
			m.app.Reminders.Refresh()
			return m, nil
		case key.Matches(typed, m.Keys.Planner):
			m.CurrentView = ViewPlanner
			m.weekOffset = 0
			return m, nil
		}
		if m.CurrentView == ViewPlanner {
			switch {
			case key.Matches(typed, m.Keys.PrevWeek):
				m.weekOffset--
			case key.Matches(typed, m.Keys.NextWeek):
				m.weekOffset++
			}
			return m, nil
		}
		if m.CurrentView != ViewTasks {
			return m, nil
		}
		switch {
		case key.Matches(typed, m.Keys.Complete):
			return m.toggleSelected(), nil
		case key.Matches(typed, m.Keys.Delete):
			return m.deleteSelected(), nil
		case key.Matches(typed, m.Keys.Up, m.Keys.Down):
			var cmd tea.Cmd
			m.taskTable, cmd = m.taskTable.Update(typed)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	var body, side string
	switch m.CurrentView {
	case ViewTasks:
		body = views.RenderTasksPanel(views.TasksPanelData{TableView: m.taskTable.View()})
		side = views.RenderTaskDetail(m.taskDetail())
	case ViewPanes:
		body = m.renderPanes()
	case ViewReminders:
		body = m.renderReminders()
	case ViewPlanner:
		body = m.renderPlanner()
	}
	if notices := m.renderNotices(); notices != "" {
		side = strings.TrimSpace(side + "\n\n" + notices)
	}
	if m.HelpVisible {
		side = m.renderHelpView()
	}

	active := 0
	tabs := make([]string, len(viewOrder))
	for i, v := range viewOrder {
		tabs[i] = fmt.Sprintf("%d %s", i+1, v)
		if v == m.CurrentView {
			active = i
		}
	}
	footer := m.helpModel.View(m.Keys)
	if m.Palette.Active {
		footer = m.commandInput.View()
	}
	return views.RenderApp(views.AppData{
		Header:     fmt.Sprintf("duecast | %d open | %s", len(m.app.Tasks.ActiveTasks()), m.app.Clock.Now().Format("Mon 2 Jan 15:04")),
		Tabs:       tabs,
		ActiveTab:  active,
		Body:       body,
		Side:       side,
		StatusLine: m.Status.Text,
		IsError:    m.Status.IsError,
		Footer:     footer,
		Width:      m.width,
	})
}

func (m Model) renderPanes() string {
	board := m.app.Board()
	ranked := board.Rank(m.app.Tasks.ActiveTasks(), m.app.Clock.Now())
	now := m.app.Clock.Now()
	data := views.PanesPanelData{OverdueFilter: board.OverdueFilter}
	for _, r := range ranked {
		pane := views.PaneData{Title: r.Pane.Title}
		for _, t := range r.Tasks {
			pane.Items = append(pane.Items, fmt.Sprintf("%s (%s, %s)", t.Name, t.Importance, clock.FormatDue(now, t.Due)))
		}
		data.Panes = append(data.Panes, pane)
	}
	return views.RenderPanesPanel(data)
}

func (m Model) renderReminders() string {
	b := m.app.Reminders.Buckets()
	now := m.app.Clock.Now()
	items := func(tasks []model.Task) []views.ReminderItemData {
		out := make([]views.ReminderItemData, 0, len(tasks))
		for _, t := range tasks {
			title, body := reminders.Message(t, clock.DueIn(now, t.Due))
			out = append(out, views.ReminderItemData{Title: title, Body: body})
		}
		return out
	}
	return views.RenderRemindersPanel(views.RemindersPanelData{
		Overdue: items(b.Overdue),
		Today:   items(b.Today),
		NextUp:  items(b.NextUp),
		Enabled: m.app.Settings.Reminders.Enabled,
		Width:   m.width * 2 / 3,
	})
}

func (m Model) renderPlanner() string {
	week := m.app.Week(m.weekOffset)
	data := views.PlannerPanelData{
		Title: fmt.Sprintf("week of %s", week.Start.Format("Mon 2 Jan")),
		Width: m.width*2/3 - 4,
	}
	for _, d := range week.Days {
		col := views.PlannerDayData{Heading: d.Date.Format("Mon 2"), Today: d.Today}
		for _, t := range d.Tasks {
			col.Items = append(col.Items, views.PlannerItemData{Name: t.Name, Done: t.Completed})
		}
		data.Days = append(data.Days, col)
	}
	return views.RenderPlannerPanel(data)
}

func (m Model) renderNotices() string {
	notices := make([]views.NoticeData, 0, len(m.Notices))
	for i := len(m.Notices) - 1; i >= 0; i-- {
		n := m.Notices[i]
		notices = append(notices, views.NoticeData{At: n.At.Format("15:04"), Title: n.Title, Body: n.Body})
	}
	return views.RenderNotices(notices, m.width/3-4)
}
