package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/couchcryptid/location-picker/internal/cascade"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).MarginBottom(1)
	headerStyle   = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12"))
	chosenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).MarginTop(1)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).MarginTop(1)
	columnStyle   = lipgloss.NewStyle().Width(28).PaddingRight(2)
	focusedBorder = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("12")).Padding(0, 1)
	plainBorder   = lipgloss.NewStyle().BorderStyle(lipgloss.HiddenBorder()).Padding(0, 1)
)

var labels = [3]string{"Select Country", "Select State", "Select City"}

func (m Model) View() string {
	cols := make([]string, 0, 3)
	for _, l := range []cascade.List{cascade.Countries, cascade.States, cascade.Cities} {
		cols = append(cols, m.renderColumn(l))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Country, State, and City"))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help()))
	return b.String()
}

func (m Model) renderColumn(l cascade.List) string {
	snap := m.state.Snapshot()
	var lines []string

	header := labels[l]
	if snap.Status(l) == cascade.StatusPopulated {
		header += fmt.Sprintf(" (%d)", snap.Len(l))
	}
	if f := m.filters[l]; f != "" || (m.filtering && m.focus == l) {
		header += " /" + f
	}
	lines = append(lines, headerStyle.Render(header))

	switch {
	case snap.Loading(l):
		lines = append(lines, m.spinner.View()+" "+snap.Placeholder(l))
	case snap.Status(l) == cascade.StatusFailed:
		lines = append(lines, errStyle.Render("(no options)"))
	case !snap.Enabled(l):
		lines = append(lines, dimStyle.Render(snap.Placeholder(l)))
	default:
		lines = append(lines, m.renderRows(l)...)
	}

	body := columnStyle.Render(strings.Join(lines, "\n"))
	if m.focus == l {
		return focusedBorder.Render(body)
	}
	return plainBorder.Render(body)
}

func (m Model) renderRows(l cascade.List) []string {
	rows := m.rows(l)
	if len(rows) == 0 {
		return []string{dimStyle.Render("(no matches)")}
	}

	sel := m.state.Selection()
	visible := max(m.height-10, 5)
	cursor := min(m.cursors[l], len(rows)-1)
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := min(start+visible, len(rows))

	out := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		r := rows[i]
		text := truncate(r.label, 24)
		chosen := (l == cascade.Countries && r.key == sel.Country) ||
			(l == cascade.States && r.key == sel.State) ||
			(l == cascade.Cities && sel.HasCity && r.id == sel.CityID)
		if chosen {
			text = chosenStyle.Render("✓ " + text)
		} else {
			text = "  " + text
		}
		if i == cursor && m.focus == l {
			text = cursorStyle.Render(text)
		}
		out = append(out, text)
	}
	if end < len(rows) {
		out = append(out, dimStyle.Render("  …"))
	}
	return out
}

func (m Model) help() string {
	if m.filtering {
		return "type to filter • enter: done • esc: clear"
	}
	return "↑/↓: move • ←/→: column • enter: select • /: filter • q: quit"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
