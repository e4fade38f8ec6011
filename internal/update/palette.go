package update

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/duecast/internal/commands"
)

func (m Model) openPalette() (Model, tea.Cmd) {
	m.Palette.Active = true
	m.commandInput.SetValue("")
	cmd := m.commandInput.Focus()
	m.Status = StatusBar{Text: "command palette active"}
	return m, cmd
}

func (m Model) closePalette() Model {
	m.Palette.Active = false
	m.commandInput.SetValue("")
	m.commandInput.Blur()
	return m
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m = m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		raw := strings.TrimSpace(m.commandInput.Value())
		m = m.closePalette()
		return m.executePaletteCommand(raw), nil
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	return m, cmd
}

func (m Model) executePaletteCommand(raw string) Model {
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	res, err := commands.Execute(cmd, m.app.Handlers(m.ctx))
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	m.Status = StatusBar{Text: res.Message}
	m.reload()
	return m
}
