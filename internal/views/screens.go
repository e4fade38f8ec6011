package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type TaskDetailData struct {
	ID         string
	Name       string
	List       string
	Size       string
	Importance string
	Due        string
	DueIn      int
	Subtasks   int
	Completed  bool
}

type TasksPanelData struct {
	TableView string
	Selected  *TaskDetailData
}

type PaneData struct {
	Title string
	Items []string
}

type PanesPanelData struct {
	Panes         []PaneData
	OverdueFilter bool
}

type ReminderItemData struct {
	Title string
	Body  string
}

type RemindersPanelData struct {
	Overdue []ReminderItemData
	Today   []ReminderItemData
	NextUp  []ReminderItemData
	Enabled bool
	Width   int
}

type PlannerItemData struct {
	Name string
	Done bool
}

type PlannerDayData struct {
	Heading string
	Today   bool
	Items   []PlannerItemData
}

type PlannerPanelData struct {
	Title string
	Days  []PlannerDayData
	Width int
}

type NoticeData struct {
	At    string
	Title string
	Body  string
}

func RenderTasksPanel(data TasksPanelData) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("tasks") + "\n")
	b.WriteString(data.TableView)
	return b.String()
}

func RenderTaskDetail(d *TaskDetailData) string {
	if d == nil {
		return mutedStyle.Render("(no task selected)")
	}
	due := d.Due
	if d.DueIn < 0 && !d.Completed {
		due = overdueStyle.Render(due)
	}
	state := "open"
	if d.Completed {
		state = "done"
	}
	return fmt.Sprintf("%s\n\nid: %s\nlist: %s\nsize: %s\nimportance: %s\ndue: %s\nsubtasks: %d\nstate: %s",
		titleStyle.Render(d.Name), d.ID, d.List, d.Size, d.Importance, due, d.Subtasks, state)
}

func RenderPanesPanel(data PanesPanelData) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("recommendations"))
	if data.OverdueFilter {
		b.WriteString(mutedStyle.Render(" (overdue hidden)"))
	}
	b.WriteString("\n")
	for _, pane := range data.Panes {
		b.WriteString(fmt.Sprintf("\n%s:\n", pane.Title))
		if len(pane.Items) == 0 {
			b.WriteString(mutedStyle.Render("  (none)") + "\n")
			continue
		}
		for i, item := range pane.Items {
			b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, item))
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderRemindersPanel(data RemindersPanelData) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("reminders"))
	if !data.Enabled {
		b.WriteString(mutedStyle.Render(" (notifications off)"))
	}
	b.WriteString("\n")
	renderReminderSection(&b, "Overdue", data.Overdue, data.Width)
	renderReminderSection(&b, "Today", data.Today, data.Width)
	renderReminderSection(&b, "Next up", data.NextUp, data.Width)
	return strings.TrimSuffix(b.String(), "\n")
}

func renderReminderSection(b *strings.Builder, title string, items []ReminderItemData, width int) {
	b.WriteString(fmt.Sprintf("\n%s:\n", title))
	if len(items) == 0 {
		b.WriteString(mutedStyle.Render("  (none)") + "\n")
		return
	}
	for _, item := range items {
		b.WriteString("- " + item.Title + "\n")
		body := Wrap(item.Body, width-4)
		for _, line := range strings.Split(body, "\n") {
			b.WriteString("    " + line + "\n")
		}
	}
}

// RenderPlannerPanel draws one column per day, side by side.
func RenderPlannerPanel(data PlannerPanelData) string {
	if len(data.Days) == 0 {
		return titleStyle.Render("planner")
	}
	colWidth := data.Width/len(data.Days) - 1
	if colWidth < 8 {
		colWidth = 8
	}
	cols := make([]string, 0, len(data.Days))
	for _, day := range data.Days {
		heading := titleStyle.Render(day.Heading)
		if day.Today {
			heading = todayStyle.Render(day.Heading)
		}
		lines := []string{heading}
		if len(day.Items) == 0 {
			lines = append(lines, mutedStyle.Render("-"))
		}
		for _, item := range day.Items {
			text := Wrap(item.Name, colWidth)
			if item.Done {
				text = mutedStyle.Render("x " + text)
			}
			lines = append(lines, text)
		}
		cols = append(cols, lipgloss.NewStyle().Width(colWidth).MarginRight(1).Render(strings.Join(lines, "\n")))
	}
	return titleStyle.Render("planner "+mutedStyle.Render(data.Title)) + "\n\n" + lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func RenderNotices(notices []NoticeData, width int) string {
	if len(notices) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("notifications") + "\n")
	for _, n := range notices {
		b.WriteString(fmt.Sprintf("%s %s\n", mutedStyle.Render(n.At), n.Title))
		if n.Body != "" {
			b.WriteString(Wrap(n.Body, width) + "\n")
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return "command: " + input
}
