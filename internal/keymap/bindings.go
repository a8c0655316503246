package keymap

import (
	"fmt"
	"slices"
	"strings"

	"charm.land/bubbles/v2/key"
	"github.com/charmbracelet/log"
)

// Bindings maps every action to a non-empty ordered key list.
type Bindings map[Action][]Key

// Defaults returns the stock bindings.
func Defaults() Bindings {
	return Bindings{
		Quit:                        {"ctrl+c", "q"},
		NextFocus:                   {"tab"},
		PrvFocus:                    {"shift+tab"},
		OpenConfigMenu:              {"c"},
		Up:                          {"up"},
		Down:                        {"down"},
		Right:                       {"right"},
		Left:                        {"left"},
		MoveCardUp:                  {"shift+up"},
		MoveCardDown:                {"shift+down"},
		MoveCardRight:               {"shift+right"},
		MoveCardLeft:                {"shift+left"},
		TakeUserInput:               {"i"},
		StopUserInput:               {"insert"},
		GoToPreviousUIModeOrCancel:  {"esc"},
		Accept:                      {"enter"},
		HideUIElement:               {"h"},
		SaveState:                   {"ctrl+s"},
		NewBoard:                    {"b"},
		NewCard:                     {"n"},
		Delete:                      {"d"},
		DeleteBoard:                 {"D"},
		ChangeCardStatusToCompleted: {"1"},
		ChangeCardStatusToActive:    {"2"},
		ChangeCardStatusToStale:     {"3"},
		ChangeCardPriorityToHigh:    {"4"},
		ChangeCardPriorityToMedium:  {"5"},
		ChangeCardPriorityToLow:     {"6"},
		ResetUI:                     {"r"},
		GoToMainMenu:                {"m"},
		ToggleCommandPalette:        {"ctrl+p"},
		Undo:                        {"ctrl+z"},
		Redo:                        {"ctrl+y"},
		ClearAllToasts:              {"t"},
	}
}

// Clone returns a deep copy of b.
func (b Bindings) Clone() Bindings {
	out := make(Bindings, len(b))
	for a, keys := range b {
		out[a] = slices.Clone(keys)
	}
	return out
}

// Keys returns the keys bound to a.
func (b Bindings) Keys(a Action) []Key {
	return b[a]
}

// Validate returns a normalized copy with in-action duplicates removed. It
// fails on a missing or empty action and on any key claimed by two actions.
func (b Bindings) Validate() (Bindings, error) {
	out := make(Bindings, len(b))
	owner := map[Key]Action{}
	for _, a := range AllActions() {
		raw, ok := b[a]
		if !ok || len(raw) == 0 {
			return nil, fmt.Errorf("%w: %s has no keys", ErrInvalidBinding, a)
		}
		keys := make([]Key, 0, len(raw))
		for _, k := range raw {
			k = NormalizeKey(string(k))
			if k == "" {
				return nil, fmt.Errorf("%w: %s has a blank key", ErrInvalidBinding, a)
			}
			if slices.Contains(keys, k) {
				continue
			}
			if prev, taken := owner[k]; taken {
				return nil, &ConflictError{Key: k, First: prev, Second: a}
			}
			owner[k] = a
			keys = append(keys, k)
		}
		out[a] = keys
	}
	for a := range b {
		if !a.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidBinding, a)
		}
	}
	return out, nil
}

// Resolve maps k to at most one action. With userInput set only the actions
// that leave or move between text fields resolve; every other key belongs to
// the focused buffer.
func (b Bindings) Resolve(k Key, userInput bool) (Action, bool) {
	k = NormalizeKey(string(k))
	for _, a := range AllActions() {
		if userInput && !a.allowedInUserInput() {
			continue
		}
		if slices.Contains(b[a], k) {
			return a, true
		}
	}
	return 0, false
}

// Rebind returns a validated copy with a bound to keys. b is never modified.
func (b Bindings) Rebind(a Action, keys []Key) (Bindings, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBinding, a)
	}
	next := b.Clone()
	next[a] = slices.Clone(keys)
	return next.Validate()
}

// Binding adapts one action to a bubbles key.Binding for matching and help.
func (b Bindings) Binding(a Action) key.Binding {
	keys := b[a]
	names := make([]string, 0, len(keys))
	display := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, k.String())
		display = append(display, k.Display())
	}
	return key.NewBinding(key.WithKeys(names...), key.WithHelp(strings.Join(display, "/"), a.Description()))
}

// ShortHelp handles short help.
func (b Bindings) ShortHelp() []key.Binding {
	return []key.Binding{
		b.Binding(NewCard), b.Binding(NewBoard), b.Binding(Accept), b.Binding(TakeUserInput),
		b.Binding(ToggleCommandPalette), b.Binding(Undo), b.Binding(SaveState), b.Binding(Quit),
	}
}

// FullHelp handles full help.
func (b Bindings) FullHelp() [][]key.Binding {
	groups := [][]Action{
		{Up, Down, Left, Right, NextFocus, PrvFocus, Accept, GoToPreviousUIModeOrCancel},
		{MoveCardUp, MoveCardDown, MoveCardLeft, MoveCardRight, NewCard, NewBoard, Delete, DeleteBoard},
		{ChangeCardStatusToCompleted, ChangeCardStatusToActive, ChangeCardStatusToStale, ChangeCardPriorityToHigh, ChangeCardPriorityToMedium, ChangeCardPriorityToLow},
		{TakeUserInput, StopUserInput, ToggleCommandPalette, Undo, Redo, SaveState, HideUIElement, ResetUI},
		{OpenConfigMenu, GoToMainMenu, ClearAllToasts, Quit},
	}
	out := make([][]key.Binding, 0, len(groups))
	for _, group := range groups {
		row := make([]key.Binding, 0, len(group))
		for _, a := range group {
			row = append(row, b.Binding(a))
		}
		out = append(out, row)
	}
	return out
}

// ToConfig renders bindings with action names as keys.
func (b Bindings) ToConfig() map[string][]string {
	out := make(map[string][]string, len(b))
	for a, keys := range b {
		names := make([]string, 0, len(keys))
		for _, k := range keys {
			names = append(names, k.String())
		}
		out[a.String()] = names
	}
	return out
}

// FromConfig overlays configured lists on the defaults and validates the
// result. Unknown action names are logged and skipped.
func FromConfig(raw map[string][]string) (Bindings, error) {
	b := Defaults()
	for name, values := range raw {
		a, err := ParseAction(name)
		if err != nil {
			log.Warn("ignoring keybinding for unknown action", "action", name)
			continue
		}
		keys := make([]Key, 0, len(values))
		for _, v := range values {
			keys = append(keys, Key(v))
		}
		b[a] = keys
	}
	return b.Validate()
}
