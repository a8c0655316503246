package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/evanschultz/kanban/internal/keymap"
	"github.com/evanschultz/kanban/internal/tui/datepicker"
	"github.com/evanschultz/kanban/internal/uistate"
)

func (m Model) mouseEnabled() bool {
	return m.cfg.EnableMouseSupport && !m.tooSmall() && m.width > 0
}

// handleMouseClick selects what was clicked. A click on the selected card
// opens it; a click on a picker day selects that day.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if !m.mouseEnabled() || msg.Button != tea.MouseLeft {
		return m, nil
	}
	if m.ui.HasPopup(uistate.DateTimePicker) && m.picker.DateState() == datepicker.Open {
		if day, ok := m.picker.DayAt(msg.X, msg.Y); ok {
			m.picker.SelectDay(day)
			_ = m.ui.SetFocus(uistate.DTPCalender)
		}
		return m, nil
	}
	if len(m.ui.Popups()) > 0 || !m.ui.View().IsBoardView() {
		return m, nil
	}
	h, ok := m.hitTest(msg.X, msg.Y)
	if !ok {
		return m, nil
	}
	if err := m.ui.SetFocus(h.panel); err != nil {
		return m, nil
	}
	if h.boardID.IsZero() {
		return m, nil
	}
	if !h.cardID.IsZero() && h.boardID == m.boardID && h.cardID == m.cardID {
		m.openCard(h.boardID, h.cardID)
		m.syncInputFocus()
		return m, nil
	}
	m.boardID = h.boardID
	m.cardID = h.cardID
	m.snapSelection()
	return m, nil
}

// handleMouseWheel scrolls like up and down, or flips months in the picker.
func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	if !m.mouseEnabled() {
		return m, nil
	}
	var delta int
	switch msg.Button {
	case tea.MouseWheelUp:
		delta = -1
	case tea.MouseWheelDown:
		delta = 1
	default:
		return m, nil
	}
	if m.ui.HasPopup(uistate.DateTimePicker) {
		m.picker.MoveMonths(delta)
		return m, nil
	}
	if m.ui.InUserInput() {
		top, ok := m.ui.TopPopup()
		if !ok || (top != uistate.CommandPalette && top != uistate.FilterByTag) {
			return m, nil
		}
	}
	action := keymap.Down
	if delta < 0 {
		action = keymap.Up
	}
	next, cmd := m.dispatch(action)
	next.ui.Snap()
	next.syncInputFocus()
	return next, cmd
}
