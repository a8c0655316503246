package tui

import (
	"github.com/evanschultz/kanban/internal/domain"
	"github.com/evanschultz/kanban/internal/tui/datepicker"
	"github.com/evanschultz/kanban/internal/uistate"
)

// Panel heights of the board views, borders included.
const (
	titleHeight = 3
	helpHeight  = 3
	logHeight   = 8
	minCardRows = 4
)

// Card form geometry shared by the renderer and the picker anchor.
const (
	cardPopupWidth  = 90
	cardPopupHeight = 22
	cardFormDueRow  = 10
	descRows        = 6
)

type rect = datepicker.Rect

// boardLayout places the panels of a board view.
type boardLayout struct {
	title, body, help, log rect
	columnWidth            int
	cardHeight             int
}

func (m Model) boardLayout() boardLayout {
	v := m.ui.View()
	var l boardLayout
	y := 0
	if v.Shows(uistate.Title) {
		l.title = rect{X: 0, Y: y, W: m.width, H: titleHeight}
		y += titleHeight
	}
	bottom := m.height
	if v.Shows(uistate.Log) {
		bottom -= logHeight
		l.log = rect{X: 0, Y: bottom, W: m.width, H: logHeight}
	}
	if v.Shows(uistate.Help) {
		bottom -= helpHeight
		l.help = rect{X: 0, Y: bottom, W: m.width, H: helpHeight}
	}
	l.body = rect{X: 0, Y: y, W: m.width, H: max(0, bottom-y)}
	l.columnWidth = max(10, l.body.W/max(1, m.cfg.NoOfBoardsToShow))
	inner := max(0, l.body.H-3)
	l.cardHeight = max(minCardRows, inner/max(1, m.cfg.NoOfCardsToShow))
	return l
}

// cardsThatFit is how many card boxes a column can draw.
func (l boardLayout) cardsThatFit() int {
	return max(0, (l.body.H-3)/max(1, l.cardHeight))
}

// columnRect is the screen area of the i-th visible board.
func (l boardLayout) columnRect(i int) rect {
	return rect{X: l.body.X + i*l.columnWidth, Y: l.body.Y, W: l.columnWidth, H: l.body.H}
}

// cardRect is the screen area of the slot-th visible card of column i.
func (l boardLayout) cardRect(i, slot int) rect {
	col := l.columnRect(i)
	return rect{X: col.X + 1, Y: col.Y + 2 + slot*l.cardHeight, W: col.W - 2, H: l.cardHeight}
}

// visibleBoards is the on-screen window, limited to what the body can draw.
func (m Model) visibleBoards(l boardLayout) []domain.VisibleBoard {
	visible := m.viewport.Project(m.boards())
	fit := l.cardsThatFit()
	for i := range visible {
		if len(visible[i].CardIDs) > fit {
			visible[i].CardIDs = visible[i].CardIDs[:fit]
		}
	}
	return visible
}

// hit describes what a screen cell shows on a board view.
type hit struct {
	panel   uistate.Focus
	boardID domain.ID
	cardID  domain.ID
}

func (m Model) hitTest(x, y int) (hit, bool) {
	l := m.boardLayout()
	switch {
	case l.title.Contains(x, y):
		return hit{panel: uistate.Title}, true
	case l.help.Contains(x, y):
		return hit{panel: uistate.Help}, true
	case l.log.Contains(x, y):
		return hit{panel: uistate.Log}, true
	case !l.body.Contains(x, y):
		return hit{}, false
	}
	for i, vb := range m.visibleBoards(l) {
		if !l.columnRect(i).Contains(x, y) {
			continue
		}
		h := hit{panel: uistate.Body, boardID: vb.BoardID}
		for slot, id := range vb.CardIDs {
			if l.cardRect(i, slot).Contains(x, y) {
				h.cardID = id
				break
			}
		}
		return h, true
	}
	return hit{panel: uistate.Body}, true
}

// centeredOrigin is where a w×h box lands when placed in the middle.
func (m Model) centeredOrigin(w, h int) datepicker.Point {
	return datepicker.Point{X: max(0, (m.width-w)/2), Y: max(0, (m.height-h)/2)}
}

// pickerAnchor opens the picker just under the due field.
func (m Model) pickerAnchor() datepicker.Point {
	if m.ui.HasPopup(uistate.ViewCard) {
		o := m.centeredOrigin(cardPopupWidth, cardPopupHeight)
		return datepicker.Point{X: o.X + 8, Y: o.Y + 1 + cardFormDueRow + 1}
	}
	return datepicker.Point{X: 8, Y: 1 + cardFormDueRow + 1}
}
