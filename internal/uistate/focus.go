package uistate

import "fmt"

// Focus is the keyboard-active element of the rendered mode.
type Focus int

// NoFocus and related constants enumerate focus targets.
const (
	NoFocus Focus = iota
	Title
	Body
	Help
	Log
	ConfigTable
	EditKeybindingsTable
	SubmitButton
	ExtraFocus
	MainMenu
	MainMenuHelp
	NewBoardName
	NewBoardDescription
	CardName
	CardDescription
	CardDueDate
	CardPriority
	CardStatus
	CardTags
	CardComments
	LoadSave
	EmailIDField
	PasswordField
	ConfirmPasswordField
	ShowPasswordToggle
	SendResetPasswordLinkButton
	ResetPasswordLinkField
	ThemeEditor
	StyleEditorFG
	StyleEditorBG
	StyleEditorModifiers
	TextInput
	CommandPaletteCommand
	CommandPaletteCard
	CommandPaletteBoard
	FilterByTagPopup
	DTPCalender
	DTPMonth
	DTPYear
	DTPToggleTimePicker
	DTPHour
	DTPMinute
	DTPSecond
	focusCount
)

var focusNames = [focusCount]string{
	NoFocus:                     "no_focus",
	Title:                       "title",
	Body:                        "body",
	Help:                        "help",
	Log:                         "log",
	ConfigTable:                 "config_table",
	EditKeybindingsTable:        "edit_keybindings_table",
	SubmitButton:                "submit_button",
	ExtraFocus:                  "extra_focus",
	MainMenu:                    "main_menu",
	MainMenuHelp:                "main_menu_help",
	NewBoardName:                "new_board_name",
	NewBoardDescription:         "new_board_description",
	CardName:                    "card_name",
	CardDescription:             "card_description",
	CardDueDate:                 "card_due_date",
	CardPriority:                "card_priority",
	CardStatus:                  "card_status",
	CardTags:                    "card_tags",
	CardComments:                "card_comments",
	LoadSave:                    "load_save",
	EmailIDField:                "email_id_field",
	PasswordField:               "password_field",
	ConfirmPasswordField:        "confirm_password_field",
	ShowPasswordToggle:          "show_password_toggle",
	SendResetPasswordLinkButton: "send_reset_password_link_button",
	ResetPasswordLinkField:      "reset_password_link_field",
	ThemeEditor:                 "theme_editor",
	StyleEditorFG:               "style_editor_fg",
	StyleEditorBG:               "style_editor_bg",
	StyleEditorModifiers:        "style_editor_modifiers",
	TextInput:                   "text_input",
	CommandPaletteCommand:       "command_palette_command",
	CommandPaletteCard:          "command_palette_card",
	CommandPaletteBoard:         "command_palette_board",
	FilterByTagPopup:            "filter_by_tag_popup",
	DTPCalender:                 "dtp_calender",
	DTPMonth:                    "dtp_month",
	DTPYear:                     "dtp_year",
	DTPToggleTimePicker:         "dtp_toggle_time_picker",
	DTPHour:                     "dtp_hour",
	DTPMinute:                   "dtp_minute",
	DTPSecond:                   "dtp_second",
}

// String returns the focus identifier.
func (f Focus) String() string {
	if f < 0 || f >= focusCount {
		return fmt.Sprintf("focus(%d)", int(f))
	}
	return focusNames[f]
}

// TakesText reports focuses backed by a text buffer.
func (f Focus) TakesText() bool {
	switch f {
	case CardName, CardDescription, CardDueDate, CardTags, CardComments,
		NewBoardName, NewBoardDescription,
		CommandPaletteCommand, CommandPaletteCard, CommandPaletteBoard,
		EmailIDField, PasswordField, ConfirmPasswordField, ResetPasswordLinkField,
		TextInput, FilterByTagPopup:
		return true
	}
	return false
}

// InputStatus gates how keys are interpreted.
type InputStatus int

// Init and related constants enumerate input statuses.
const (
	Init InputStatus = iota
	Initialized
	UserInput
	KeyBindMode
)

// String returns the status identifier.
func (s InputStatus) String() string {
	switch s {
	case Init:
		return "init"
	case Initialized:
		return "initialized"
	case UserInput:
		return "user_input"
	case KeyBindMode:
		return "key_bind_mode"
	default:
		return fmt.Sprintf("input_status(%d)", int(s))
	}
}
