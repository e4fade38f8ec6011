package update

import "github.com/sandeepkv93/duecast/internal/views"

const helpMarkdown = `# duecast

| Key | Action |
|-----|--------|
| 1 / 2 / 3 / 4 | tasks, recommendations, reminders, planner |
| h / l | previous / next week in the planner |
| j / k | move selection |
| x | toggle done |
| d | delete with subtasks |
| / | command palette |
| ? | this help |
| q | quit |

## Commands

- ` + "`add NAME [size=] [importance=] [due=] [list=]`" + `
- ` + "`sub PARENT NAME [size=] [importance=] [due=]`" + `
- ` + "`done ID`, `undo ID`, `del ID`" + ` (an id prefix is enough)
- ` + "`suggest [size=] [importance=] [list=]`" + `
- ` + "`checkin on|off`" + `
- ` + "`checkin window 09:00 17:00`, `checkin every 45`, `checkin days mon,wed,fri`" + `
- ` + "`list rename LIST NEW NAME`" + `

Due dates: ` + "`today`, `tomorrow`, `+3d`, `2026-04-01`, `2026-04-01T09:30`" + `.
New tasks have their due date shifted by how late similar tasks were finished.
`

func (m Model) renderHelpView() string {
	return views.RenderMarkdown(helpMarkdown, m.width/3) + "\n\n" + m.helpModel.View(m.Keys)
}
