package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/evanschultz/kanban/internal/keymap"
	"github.com/evanschultz/kanban/internal/theme"
	"github.com/evanschultz/kanban/internal/uistate"
)

// styledTable builds a bordered table whose cursor row is highlighted.
// Rows are windowed so the cursor stays visible in height lines.
func (m Model) styledTable(headers []string, rows [][]string, cursor int, focused bool, width, height int) string {
	visible := max(1, height-4)
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := min(len(rows), start+visible)
	window := rows[start:end]

	border := m.dimColor()
	if focused {
		border = m.focusColor()
	}
	header := m.theme.Lipgloss(theme.General).Bold(true)
	cell := m.theme.Lipgloss(theme.General)
	selected := m.theme.Lipgloss(theme.ListSelect)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(border)).
		Headers(headers...).
		Rows(window...).
		Width(width).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header.Padding(0, 1)
			case focused && start+row == cursor:
				return selected.Padding(0, 1)
			}
			return cell.Padding(0, 1)
		})
	return t.String()
}

func (m Model) renderConfigMenu() string {
	f := m.ui.Focus()
	rows := make([][]string, 0, len(configFields))
	for _, field := range configFields {
		value := field.show(m.cfg)
		if field.kind == fieldReadOnly {
			value = m.theme.Lipgloss(theme.InactiveText).Render(value)
		}
		rows = append(rows, []string{field.label, value})
	}
	tbl := m.styledTable([]string{"Setting", "Value"}, rows, m.configCursor, f == uistate.ConfigTable, m.width-2, m.height-4)
	buttons := m.button("Edit Keybindings", f == uistate.SubmitButton) + "  " + m.button("Reset to Defaults", f == uistate.ExtraFocus)
	return lipgloss.JoinVertical(lipgloss.Left, tbl, "", buttons)
}

func (m Model) renderKeybindings() string {
	f := m.ui.Focus()
	actions := keymap.AllActions()
	rows := make([][]string, 0, len(actions))
	for _, a := range actions {
		keys := m.bindings.Keys(a)
		shown := make([]string, 0, len(keys))
		for _, k := range keys {
			shown = append(shown, k.Display())
		}
		rows = append(rows, []string{a.Description(), strings.Join(shown, ", ")})
	}
	tbl := m.styledTable([]string{"Action", "Keys"}, rows, m.bindCursor, f == uistate.EditKeybindingsTable, m.width-2, m.height-4)
	return lipgloss.JoinVertical(lipgloss.Left, tbl, "", m.button("Reset to Defaults", f == uistate.SubmitButton))
}
