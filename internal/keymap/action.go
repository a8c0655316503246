package keymap

import (
	"fmt"
	"strings"
)

// Action is an abstract operation keys resolve to.
type Action int

// Quit and related constants enumerate every action in resolution order.
const (
	Quit Action = iota
	NextFocus
	PrvFocus
	OpenConfigMenu
	Up
	Down
	Right
	Left
	MoveCardUp
	MoveCardDown
	MoveCardRight
	MoveCardLeft
	TakeUserInput
	StopUserInput
	GoToPreviousUIModeOrCancel
	Accept
	HideUIElement
	SaveState
	NewBoard
	NewCard
	Delete
	DeleteBoard
	ChangeCardStatusToCompleted
	ChangeCardStatusToActive
	ChangeCardStatusToStale
	ChangeCardPriorityToHigh
	ChangeCardPriorityToMedium
	ChangeCardPriorityToLow
	ResetUI
	GoToMainMenu
	ToggleCommandPalette
	Undo
	Redo
	ClearAllToasts
	actionCount
)

type actionInfo struct {
	name string
	desc string
}

var actionInfos = [actionCount]actionInfo{
	Quit:                        {"quit", "quit"},
	NextFocus:                   {"next_focus", "next focus"},
	PrvFocus:                    {"prv_focus", "previous focus"},
	OpenConfigMenu:              {"open_config_menu", "configure"},
	Up:                          {"up", "up"},
	Down:                        {"down", "down"},
	Right:                       {"right", "right"},
	Left:                        {"left", "left"},
	MoveCardUp:                  {"move_card_up", "move card up"},
	MoveCardDown:                {"move_card_down", "move card down"},
	MoveCardRight:               {"move_card_right", "move card right"},
	MoveCardLeft:                {"move_card_left", "move card left"},
	TakeUserInput:               {"take_user_input", "edit field"},
	StopUserInput:               {"stop_user_input", "stop editing"},
	GoToPreviousUIModeOrCancel:  {"go_to_previous_ui_mode_or_cancel", "back / cancel"},
	Accept:                      {"accept", "accept"},
	HideUIElement:               {"hide_ui_element", "hide element"},
	SaveState:                   {"save_state", "save"},
	NewBoard:                    {"new_board", "new board"},
	NewCard:                     {"new_card", "new card"},
	Delete:                      {"delete", "delete card"},
	DeleteBoard:                 {"delete_board", "delete board"},
	ChangeCardStatusToCompleted: {"change_card_status_to_completed", "mark completed"},
	ChangeCardStatusToActive:    {"change_card_status_to_active", "mark active"},
	ChangeCardStatusToStale:     {"change_card_status_to_stale", "mark stale"},
	ChangeCardPriorityToHigh:    {"change_card_priority_to_high", "priority high"},
	ChangeCardPriorityToMedium:  {"change_card_priority_to_medium", "priority medium"},
	ChangeCardPriorityToLow:     {"change_card_priority_to_low", "priority low"},
	ResetUI:                     {"reset_ui", "reset ui"},
	GoToMainMenu:                {"go_to_main_menu", "main menu"},
	ToggleCommandPalette:        {"toggle_command_palette", "command palette"},
	Undo:                        {"undo", "undo"},
	Redo:                        {"redo", "redo"},
	ClearAllToasts:              {"clear_all_toasts", "clear toasts"},
}

// AllActions lists actions in resolution order.
func AllActions() []Action {
	out := make([]Action, 0, actionCount)
	for a := range actionCount {
		out = append(out, a)
	}
	return out
}

// Valid reports whether a names a known action.
func (a Action) Valid() bool {
	return a >= 0 && a < actionCount
}

// String returns the config name, e.g. "next_focus".
func (a Action) String() string {
	if !a.Valid() {
		return fmt.Sprintf("action(%d)", int(a))
	}
	return actionInfos[a].name
}

// Description is the short help text.
func (a Action) Description() string {
	if !a.Valid() {
		return ""
	}
	return actionInfos[a].desc
}

// ParseAction accepts the config name, case-insensitively.
func ParseAction(raw string) (Action, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for a := range actionCount {
		if actionInfos[a].name == raw {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown action %q", ErrInvalidBinding, raw)
}

// allowedInUserInput are the only actions resolved while a text field has input.
func (a Action) allowedInUserInput() bool {
	switch a {
	case StopUserInput, Accept, GoToPreviousUIModeOrCancel, NextFocus, PrvFocus:
		return true
	}
	return false
}
