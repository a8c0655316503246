// Package palette indexes commands, cards and boards for the command palette.
package palette

// Command is a palette entry that runs an operation.
type Command int

const (
	NewBoard Command = iota
	NewCard
	ChangeUIMode
	ChangeCurrentCardStatus
	ChangeCurrentCardPriority
	ChangeDateFormat
	ChangeTheme
	CreateATheme
	FilterByTag
	ClearFilter
	ResetUI
	SaveKanbanState
	LoadASaveLocal
	LoadASaveCloud
	SyncLocalData
	Login
	Logout
	SignUp
	ResetPassword
	Configure
	OpenHelpMenu
	OpenMainMenu
	ToggleDebugPanel
	Quit
	commandCount
)

var commandNames = [...]string{
	NewBoard:                  "New Board",
	NewCard:                   "New Card",
	ChangeUIMode:              "Change UI Mode",
	ChangeCurrentCardStatus:   "Change Current Card Status",
	ChangeCurrentCardPriority: "Change Current Card Priority",
	ChangeDateFormat:          "Change Date Format",
	ChangeTheme:               "Change Theme",
	CreateATheme:              "Create a Theme",
	FilterByTag:               "Filter by Tag",
	ClearFilter:               "Clear Filter",
	ResetUI:                   "Reset UI",
	SaveKanbanState:           "Save Kanban State",
	LoadASaveLocal:            "Load a Save (Local)",
	LoadASaveCloud:            "Load a Save (Cloud)",
	SyncLocalData:             "Sync Local Data",
	Login:                     "Login",
	Logout:                    "Logout",
	SignUp:                    "Sign Up",
	ResetPassword:             "Reset Password",
	Configure:                 "Configure",
	OpenHelpMenu:              "Open Help Menu",
	OpenMainMenu:              "Open Main Menu",
	ToggleDebugPanel:          "Toggle Debug Panel",
	Quit:                      "Quit",
}

// AllCommands lists commands in registration order.
func AllCommands() []Command {
	out := make([]Command, commandCount)
	for i := range out {
		out[i] = Command(i)
	}
	return out
}

// Valid reports whether c is a known command.
func (c Command) Valid() bool {
	return c >= 0 && c < commandCount
}

// String returns the palette label.
func (c Command) String() string {
	if !c.Valid() {
		return "Unknown"
	}
	return commandNames[c]
}
