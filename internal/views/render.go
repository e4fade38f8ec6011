package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

type AppData struct {
	Header     string
	Tabs       []string
	ActiveTab  int
	Body       string
	Side       string
	StatusLine string
	IsError    bool
	Footer     string
	Width      int
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("8"))
	activeTabStyle = tabStyle.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("12"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle     = lipgloss.NewStyle().Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	overdueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	todayStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("12"))
)

func RenderApp(data AppData) string {
	width := data.Width
	if width <= 0 {
		width = 120
	}
	tabs := make([]string, 0, len(data.Tabs))
	for i, name := range data.Tabs {
		if i == data.ActiveTab {
			tabs = append(tabs, activeTabStyle.Render(name))
			continue
		}
		tabs = append(tabs, tabStyle.Render(name))
	}

	body := data.Body
	if data.Side != "" {
		sideWidth := width / 3
		left := panelStyle.Width(width - sideWidth - 4).Render(data.Body)
		right := panelStyle.Width(sideWidth - 4).Render(data.Side)
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	} else {
		body = panelStyle.Width(width - 2).Render(body)
	}

	lines := []string{
		headerStyle.Render(data.Header),
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		body,
	}
	if data.StatusLine != "" {
		if data.IsError {
			lines = append(lines, errorStyle.Render(data.StatusLine))
		} else {
			lines = append(lines, statusStyle.Render(data.StatusLine))
		}
	}
	if data.Footer != "" {
		lines = append(lines, footerStyle.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

func RenderMarkdown(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle("dark")}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}

// Wrap word-wraps s at width columns; width <= 0 leaves s alone.
func Wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wordwrap.String(s, width)
}
