package uistate

import (
	"fmt"
	"slices"
	"strings"
)

// View is a top-level layout.
type View int

// Zen and related constants enumerate views.
const (
	Zen View = iota
	TitleBody
	BodyHelp
	BodyLog
	TitleBodyHelp
	TitleBodyLog
	BodyHelpLog
	TitleBodyHelpLog
	ConfigMenu
	EditKeybindings
	MainMenuView
	HelpMenu
	LogsOnly
	NewBoard
	NewCard
	LoadLocalSave
	LoadCloudSave
	Login
	SignUp
	ResetPassword
	CreateTheme
	viewCount
)

type viewInfo struct {
	name  string
	label string
	focus []Focus
}

var viewInfos = [viewCount]viewInfo{
	Zen:              {"Zen", "Zen", []Focus{Body}},
	TitleBody:        {"TitleBody", "Title and Body", []Focus{Title, Body}},
	BodyHelp:         {"BodyHelp", "Body and Help", []Focus{Body, Help}},
	BodyLog:          {"BodyLog", "Body and Log", []Focus{Body, Log}},
	TitleBodyHelp:    {"TitleBodyHelp", "Title, Body and Help", []Focus{Title, Body, Help}},
	TitleBodyLog:     {"TitleBodyLog", "Title, Body and Log", []Focus{Title, Body, Log}},
	BodyHelpLog:      {"BodyHelpLog", "Body, Help and Log", []Focus{Body, Help, Log}},
	TitleBodyHelpLog: {"TitleBodyHelpLog", "Title, Body, Help and Log", []Focus{Title, Body, Help, Log}},
	ConfigMenu:       {"ConfigMenu", "Config", []Focus{ConfigTable, SubmitButton, ExtraFocus}},
	EditKeybindings:  {"EditKeybindings", "Edit Keybindings", []Focus{EditKeybindingsTable, SubmitButton}},
	MainMenuView:     {"MainMenu", "Main Menu", []Focus{MainMenu, MainMenuHelp, Log}},
	HelpMenu:         {"HelpMenu", "Help", []Focus{Help, Log}},
	LogsOnly:         {"LogsOnly", "Logs", []Focus{Log}},
	NewBoard:         {"NewBoard", "New Board", []Focus{NewBoardName, NewBoardDescription, SubmitButton}},
	NewCard:          {"NewCard", "New Card", []Focus{CardName, CardDescription, CardDueDate, SubmitButton}},
	LoadLocalSave:    {"LoadLocalSave", "Load a Save (Local)", []Focus{LoadSave}},
	LoadCloudSave:    {"LoadCloudSave", "Load a Save (Cloud)", []Focus{LoadSave}},
	Login:            {"Login", "Login", []Focus{EmailIDField, PasswordField, ShowPasswordToggle, SubmitButton}},
	SignUp:           {"SignUp", "Sign Up", []Focus{EmailIDField, PasswordField, ConfirmPasswordField, ShowPasswordToggle, SubmitButton}},
	ResetPassword: {"ResetPassword", "Reset Password", []Focus{
		EmailIDField, SendResetPasswordLinkButton, ResetPasswordLinkField,
		PasswordField, ConfirmPasswordField, ShowPasswordToggle, SubmitButton,
	}},
	CreateTheme: {"CreateTheme", "Create Theme", []Focus{ThemeEditor, SubmitButton, ExtraFocus}},
}

// Valid reports whether v is a known view.
func (v View) Valid() bool {
	return v >= 0 && v < viewCount
}

// String returns the config name.
func (v View) String() string {
	if !v.Valid() {
		return fmt.Sprintf("view(%d)", int(v))
	}
	return viewInfos[v].name
}

// Label is the human name used in menus.
func (v View) Label() string {
	if !v.Valid() {
		return v.String()
	}
	return viewInfos[v].label
}

// FocusSet is the ordered available-focus set.
func (v View) FocusSet() []Focus {
	if !v.Valid() {
		return nil
	}
	return slices.Clone(viewInfos[v].focus)
}

// IsBoardView reports the layouts that show the kanban body.
func (v View) IsBoardView() bool {
	return v >= Zen && v <= TitleBodyHelpLog
}

// Shows reports whether a board view renders the given panel.
func (v View) Shows(f Focus) bool {
	return v.IsBoardView() && slices.Contains(viewInfos[v].focus, f)
}

// BoardViews lists the selectable UI modes.
func BoardViews() []View {
	return []View{Zen, TitleBody, BodyHelp, BodyLog, TitleBodyHelp, TitleBodyLog, BodyHelpLog, TitleBodyHelpLog}
}

// ParseView accepts a config name or label, case-insensitively.
func ParseView(raw string) (View, error) {
	raw = strings.TrimSpace(raw)
	for v := range viewCount {
		if strings.EqualFold(raw, viewInfos[v].name) || strings.EqualFold(raw, viewInfos[v].label) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown view %q", raw)
}

// Popup is a modal layered above the view.
type Popup int

// ViewCard and related constants enumerate popups.
const (
	ViewCard Popup = iota
	CommandPalette
	EditSpecificKeyBinding
	ChangeUIMode
	CardStatusSelector
	CardPrioritySelector
	EditGeneralConfig
	SelectDefaultView
	ChangeDateFormat
	ChangeTheme
	EditThemeStyle
	SaveThemePrompt
	CustomHexColorPromptFG
	CustomHexColorPromptBG
	ConfirmDiscardCardChanges
	FilterByTag
	DateTimePicker
	popupCount
)

var popupInfos = [popupCount]viewInfo{
	ViewCard: {"ViewCard", "Card", []Focus{
		CardName, CardDescription, CardDueDate, CardPriority, CardStatus, CardTags, CardComments, SubmitButton,
	}},
	CommandPalette:            {"CommandPalette", "Command Palette", []Focus{CommandPaletteCommand, CommandPaletteCard, CommandPaletteBoard}},
	EditSpecificKeyBinding:    {"EditSpecificKeyBinding", "Edit Keybinding", nil},
	ChangeUIMode:              {"ChangeUIMode", "Change UI Mode", nil},
	CardStatusSelector:        {"CardStatusSelector", "Change Card Status", nil},
	CardPrioritySelector:      {"CardPrioritySelector", "Change Card Priority", nil},
	EditGeneralConfig:         {"EditGeneralConfig", "Edit Config", nil},
	SelectDefaultView:         {"SelectDefaultView", "Select Default View", nil},
	ChangeDateFormat:          {"ChangeDateFormat", "Change Date Format", nil},
	ChangeTheme:               {"ChangeTheme", "Change Theme", nil},
	EditThemeStyle:            {"EditThemeStyle", "Edit Theme Style", []Focus{StyleEditorFG, StyleEditorBG, StyleEditorModifiers, SubmitButton}},
	SaveThemePrompt:           {"SaveThemePrompt", "Save Theme", []Focus{SubmitButton, ExtraFocus}},
	CustomHexColorPromptFG:    {"CustomHexColorPromptFG", "Custom Foreground", []Focus{TextInput, SubmitButton}},
	CustomHexColorPromptBG:    {"CustomHexColorPromptBG", "Custom Background", []Focus{TextInput, SubmitButton}},
	ConfirmDiscardCardChanges: {"ConfirmDiscardCardChanges", "Discard Changes?", []Focus{SubmitButton, ExtraFocus}},
	FilterByTag:               {"FilterByTag", "Filter by Tag", []Focus{FilterByTagPopup, SubmitButton}},
	DateTimePicker: {"DateTimePicker", "Date Picker", []Focus{
		DTPCalender, DTPMonth, DTPYear, DTPToggleTimePicker, DTPHour, DTPMinute, DTPSecond,
	}},
}

// Valid reports whether p is a known popup.
func (p Popup) Valid() bool {
	return p >= 0 && p < popupCount
}

// String returns the popup identifier.
func (p Popup) String() string {
	if !p.Valid() {
		return fmt.Sprintf("popup(%d)", int(p))
	}
	return popupInfos[p].name
}

// Label returns the popup title.
func (p Popup) Label() string {
	if !p.Valid() {
		return p.String()
	}
	return popupInfos[p].label
}

// FocusSet is empty for popups that leave focus where it was.
func (p Popup) FocusSet() []Focus {
	if !p.Valid() {
		return nil
	}
	return slices.Clone(popupInfos[p].focus)
}
