package uistate

import (
	"errors"
	"fmt"
	"slices"
)

// ErrIllegalFocus and ErrIllegalInput reject transitions that would break the focus invariant.
var (
	ErrIllegalFocus = errors.New("focus not available in current mode")
	ErrIllegalInput = errors.New("user input requires a text field focus")
)

// BackResult reports what GoBack did.
type BackResult int

// PoppedPopup and related constants enumerate GoBack outcomes.
const (
	PoppedPopup BackResult = iota
	RestoredView
	AtRoot
)

type popupFrame struct {
	popup      Popup
	prevFocus  Focus
	prevStatus InputStatus
}

// Machine holds view, popup stack, focus and input status. Every exported
// transition leaves focus inside the available set of the rendered mode.
type Machine struct {
	view     View
	prevView View
	hasPrev  bool
	popups   []popupFrame
	focus    Focus
	status   InputStatus
}

// New starts in view with focus on its first element and status Init.
func New(view View) Machine {
	if !view.Valid() {
		view = TitleBodyHelpLog
	}
	m := Machine{view: view, status: Init}
	m.Snap()
	return m
}

// View returns the current view.
func (m Machine) View() View {
	return m.view
}

// PreviousView returns the view GoBack would restore.
func (m Machine) PreviousView() (View, bool) {
	return m.prevView, m.hasPrev
}

// Focus returns the focused area.
func (m Machine) Focus() Focus {
	return m.focus
}

// InputStatus reports whether keys go to a text input.
func (m Machine) InputStatus() InputStatus {
	return m.status
}

// Popups lists the stack bottom first.
func (m Machine) Popups() []Popup {
	out := make([]Popup, 0, len(m.popups))
	for _, frame := range m.popups {
		out = append(out, frame.popup)
	}
	return out
}

// TopPopup returns the popup on top of the stack.
func (m Machine) TopPopup() (Popup, bool) {
	if len(m.popups) == 0 {
		return 0, false
	}
	return m.popups[len(m.popups)-1].popup, true
}

// HasPopup reports whether p is anywhere on the stack.
func (m Machine) HasPopup(p Popup) bool {
	for _, frame := range m.popups {
		if frame.popup == p {
			return true
		}
	}
	return false
}

// FocusSet is the set NextFocus and PrvFocus cycle through: the top popup's
// set when a popup is open (possibly empty), else the view's.
func (m Machine) FocusSet() []Focus {
	if top, ok := m.TopPopup(); ok {
		return top.FocusSet()
	}
	return m.view.FocusSet()
}

// legalSet is the set focus must belong to. A popup with an empty set keeps
// whatever the layer below it requires.
func (m Machine) legalSet() []Focus {
	for i := len(m.popups) - 1; i >= 0; i-- {
		if set := m.popups[i].popup.FocusSet(); len(set) > 0 {
			return set
		}
	}
	return m.view.FocusSet()
}

// FocusLegal reports whether the invariant holds.
func (m Machine) FocusLegal() bool {
	set := m.legalSet()
	return len(set) == 0 || slices.Contains(set, m.focus)
}

// Snap moves focus to the first legal element when it is outside the set
// and drops UserInput when the focus no longer takes text.
func (m *Machine) Snap() {
	set := m.legalSet()
	if len(set) > 0 && !slices.Contains(set, m.focus) {
		m.focus = set[0]
	}
	if m.status == UserInput && !m.focus.TakesText() {
		m.status = Initialized
	}
}

// SetView switches layout, closing every popup.
func (m *Machine) SetView(v View) {
	if !v.Valid() || (v == m.view && len(m.popups) == 0) {
		return
	}
	if v != m.view {
		m.prevView, m.hasPrev = m.view, true
		m.view = v
	}
	m.popups = nil
	if m.status == UserInput || m.status == KeyBindMode {
		m.status = Initialized
	}
	m.Snap()
}

// ResetView switches layout and forgets the previous one.
func (m *Machine) ResetView(v View) {
	m.SetView(v)
	m.hasPrev = false
}

// PushPopup opens p and focuses its first element. The prior focus and
// status are restored when p is popped.
func (m *Machine) PushPopup(p Popup) {
	if !p.Valid() {
		return
	}
	m.popups = append(m.popups, popupFrame{popup: p, prevFocus: m.focus, prevStatus: m.status})
	if set := p.FocusSet(); len(set) > 0 {
		m.focus = set[0]
	}
	if m.status == UserInput || m.status == KeyBindMode {
		m.status = Initialized
	}
	m.Snap()
}

// PopPopup closes the top popup.
func (m *Machine) PopPopup() (Popup, bool) {
	if len(m.popups) == 0 {
		return 0, false
	}
	frame := m.popups[len(m.popups)-1]
	m.popups = m.popups[:len(m.popups)-1]
	m.focus = frame.prevFocus
	m.status = frame.prevStatus
	m.Snap()
	return frame.popup, true
}

// ClosePopup pops until p is gone. It reports false when p was not open.
func (m *Machine) ClosePopup(p Popup) bool {
	if !m.HasPopup(p) {
		return false
	}
	for {
		popped, ok := m.PopPopup()
		if !ok || popped == p {
			return true
		}
	}
}

// GoBack pops a popup, else restores the previous view, else reports AtRoot.
func (m *Machine) GoBack() BackResult {
	if _, ok := m.PopPopup(); ok {
		return PoppedPopup
	}
	if m.hasPrev && m.prevView != m.view {
		v := m.prevView
		m.hasPrev = false
		m.view = v
		if m.status == UserInput || m.status == KeyBindMode {
			m.status = Initialized
		}
		m.Snap()
		return RestoredView
	}
	return AtRoot
}

// NextFocus advances within FocusSet, wrapping. An empty set leaves focus alone.
func (m *Machine) NextFocus() {
	m.cycle(1)
}

// PrvFocus moves back within FocusSet, wrapping.
func (m *Machine) PrvFocus() {
	m.cycle(-1)
}

func (m *Machine) cycle(step int) {
	set := m.FocusSet()
	if len(set) == 0 {
		return
	}
	idx := max(0, slices.Index(set, m.focus))
	idx = (idx + step + len(set)) % len(set)
	m.focus = set[idx]
	if m.status == UserInput && !m.focus.TakesText() {
		m.status = Initialized
	}
}

// SetFocus moves focus to f when f is legal in the current mode.
func (m *Machine) SetFocus(f Focus) error {
	if !slices.Contains(m.legalSet(), f) {
		return fmt.Errorf("%w: %s", ErrIllegalFocus, f)
	}
	m.focus = f
	if m.status == UserInput && !f.TakesText() {
		m.status = Initialized
	}
	return nil
}

// SetInputStatus changes the status. UserInput needs a text focus.
func (m *Machine) SetInputStatus(s InputStatus) error {
	if s == UserInput && !m.focus.TakesText() {
		return fmt.Errorf("%w: %s", ErrIllegalInput, m.focus)
	}
	m.status = s
	return nil
}

// InUserInput reports whether keys go to a text buffer.
func (m Machine) InUserInput() bool {
	return m.status == UserInput
}
