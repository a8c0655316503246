package tui

import (
	"charm.land/bubbles/v2/key"

	"github.com/evanschultz/kanban/internal/keymap"
	"github.com/evanschultz/kanban/internal/uistate"
)

// helpKeys is the help.KeyMap for the current mode: only the actions that
// do something there are listed.
type helpKeys struct {
	bindings keymap.Bindings
	short    []keymap.Action
	full     [][]keymap.Action
}

func (k helpKeys) binding(a keymap.Action) key.Binding {
	return k.bindings.Binding(a)
}

// ShortHelp handles short help.
func (k helpKeys) ShortHelp() []key.Binding {
	out := make([]key.Binding, 0, len(k.short))
	for _, a := range k.short {
		out = append(out, k.binding(a))
	}
	return out
}

// FullHelp handles full help.
func (k helpKeys) FullHelp() [][]key.Binding {
	out := make([][]key.Binding, 0, len(k.full))
	for _, group := range k.full {
		col := make([]key.Binding, 0, len(group))
		for _, a := range group {
			col = append(col, k.binding(a))
		}
		out = append(out, col)
	}
	return out
}

var (
	boardHelp = []keymap.Action{
		keymap.Accept, keymap.NewCard, keymap.NewBoard, keymap.Delete,
		keymap.ToggleCommandPalette, keymap.Undo, keymap.GoToMainMenu, keymap.Quit,
	}
	inputHelp = []keymap.Action{
		keymap.StopUserInput, keymap.Accept, keymap.NextFocus, keymap.GoToPreviousUIModeOrCancel,
	}
	formHelp = []keymap.Action{
		keymap.TakeUserInput, keymap.Accept, keymap.NextFocus, keymap.PrvFocus, keymap.GoToPreviousUIModeOrCancel,
	}
	listHelp = []keymap.Action{
		keymap.Up, keymap.Down, keymap.Accept, keymap.GoToPreviousUIModeOrCancel,
	}
	fullHelp = [][]keymap.Action{
		{keymap.Up, keymap.Down, keymap.Left, keymap.Right, keymap.NextFocus, keymap.PrvFocus, keymap.HideUIElement},
		{keymap.MoveCardUp, keymap.MoveCardDown, keymap.MoveCardLeft, keymap.MoveCardRight, keymap.Accept, keymap.TakeUserInput, keymap.StopUserInput},
		{keymap.NewBoard, keymap.NewCard, keymap.Delete, keymap.DeleteBoard, keymap.Undo, keymap.Redo, keymap.SaveState},
		{keymap.ChangeCardStatusToCompleted, keymap.ChangeCardStatusToActive, keymap.ChangeCardStatusToStale, keymap.ChangeCardPriorityToHigh, keymap.ChangeCardPriorityToMedium, keymap.ChangeCardPriorityToLow},
		{keymap.ToggleCommandPalette, keymap.GoToMainMenu, keymap.OpenConfigMenu, keymap.ResetUI, keymap.ClearAllToasts, keymap.GoToPreviousUIModeOrCancel, keymap.Quit},
	}
)

// helpKeys picks the help entries for the current mode.
func (m Model) helpKeys() helpKeys {
	k := helpKeys{bindings: m.bindings, full: fullHelp}
	switch top, hasPopup := m.ui.TopPopup(); {
	case m.ui.InUserInput():
		k.short = inputHelp
	case hasPopup && top == uistate.ViewCard:
		k.short = append(formHelp[:len(formHelp):len(formHelp)], keymap.ChangeCardStatusToCompleted, keymap.ChangeCardPriorityToHigh)
	case hasPopup && len(top.FocusSet()) == 0:
		k.short = listHelp
	case hasPopup:
		k.short = formHelp
	case m.ui.View().IsBoardView():
		k.short = boardHelp
	case m.ui.View() == uistate.NewBoard, m.ui.View() == uistate.NewCard,
		m.ui.View() == uistate.Login, m.ui.View() == uistate.SignUp, m.ui.View() == uistate.ResetPassword:
		k.short = formHelp
	default:
		k.short = listHelp
	}
	return k
}
