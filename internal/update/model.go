package update

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/duecast/internal/app"
	"github.com/sandeepkv93/duecast/internal/notify"
)

type View string

const (
	ViewTasks     View = "Tasks"
	ViewPanes     View = "Panes"
	ViewReminders View = "Reminders"
	ViewPlanner   View = "Planner"
)

var viewOrder = []View{ViewTasks, ViewPanes, ViewReminders, ViewPlanner}

const maxNotices = 5

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Tasks     key.Binding
	Panes     key.Binding
	Reminders key.Binding
	Planner   key.Binding
	PrevWeek  key.Binding
	NextWeek  key.Binding
	Up        key.Binding
	Down      key.Binding
	Complete  key.Binding
	Delete    key.Binding
	Palette   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func DefaultKeyMap() GlobalKeyMap {
	return GlobalKeyMap{
		Tasks:     key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "tasks")),
		Panes:     key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "recommendations")),
		Reminders: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "reminders")),
		Planner:   key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "planner")),
		PrevWeek:  key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h", "previous week")),
		NextWeek:  key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l", "next week")),
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		Complete:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "toggle done")),
		Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Palette:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "command")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k GlobalKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tasks, k.Panes, k.Reminders, k.Planner, k.Complete, k.Delete, k.Palette, k.Help, k.Quit}
}

func (k GlobalKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tasks, k.Panes, k.Reminders, k.Planner},
		{k.Up, k.Down, k.Complete, k.Delete},
		{k.PrevWeek, k.NextWeek},
		{k.Palette, k.Help, k.Quit},
	}
}

type PaletteState struct {
	Active bool
}

type Model struct {
	CurrentView View
	Status      StatusBar
	HelpVisible bool
	Quitting    bool
	Notices     []notify.Notification
	Palette     PaletteState
	Keys        GlobalKeyMap

	app          *app.App
	ctx          context.Context
	taskTable    table.Model
	rowIDs       []string
	commandInput textinput.Model
	helpModel    help.Model
	width        int
	// weekOffset counts whole weeks from the current planner week.
	weekOffset int
}

// NotificationMsg carries an in-app notification into the program.
type NotificationMsg struct {
	Notification notify.Notification
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

func NewModel(ctx context.Context, a *app.App) Model {
	input := textinput.New()
	input.Prompt = "/"
	input.Placeholder = "add water plants size=tiny due=tomorrow"
	input.CharLimit = 256

	m := Model{
		CurrentView:  ViewTasks,
		Keys:         DefaultKeyMap(),
		app:          a,
		ctx:          ctx,
		taskTable:    newTaskTable(),
		commandInput: input,
		helpModel:    help.New(),
		width:        120,
	}
	for _, n := range a.InApp.All() {
		m.pushNotice(n)
	}
	m.reload()
	return m
}

func (m *Model) pushNotice(n notify.Notification) {
	m.Notices = append(m.Notices, n)
	if len(m.Notices) > maxNotices {
		m.Notices = m.Notices[len(m.Notices)-maxNotices:]
	}
}

// Listen forwards in-app notifications to p. Dispatch can happen inside
// Update, so the send runs on its own goroutine. Notifications recorded before
// Listen are picked up by NewModel instead.
func Listen(p *tea.Program, a *app.App) {
	a.OnInApp(func(n notify.Notification) {
		go p.Send(NotificationMsg{Notification: n})
	})
}

func isKnownView(v View) bool {
	for _, known := range viewOrder {
		if v == known {
			return true
		}
	}
	return false
}
