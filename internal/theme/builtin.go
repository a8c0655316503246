package theme

import "strings"

const DefaultName = "Default"

func st(fg, bg string, mods ...Modifier) Style {
	return Style{FG: fg, BG: bg, Modifiers: mods}
}

// Builtins returns the themes that ship with the application.
func Builtins() []Theme {
	return []Theme{defaultTheme(), lightTheme(), draculaTheme(), midnightBlueTheme()}
}

// Builtin looks a built-in theme up by case-insensitive name.
func Builtin(name string) (Theme, bool) {
	for _, t := range Builtins() {
		if strings.EqualFold(t.Name, strings.TrimSpace(name)) {
			return t, true
		}
	}
	return Theme{}, false
}

// Default returns the default theme.
func Default() Theme {
	return defaultTheme()
}

func defaultTheme() Theme {
	return Theme{Name: DefaultName, Styles: map[Role]Style{
		General:            st("white", ""),
		ListSelect:         st("white", "lightmagenta", Bold),
		CardDueDefault:     st("lightgreen", "", Bold),
		CardDueWarning:     st("lightyellow", "", Bold),
		CardDueOverdue:     st("lightred", "", Bold),
		CardStatusActive:   st("lightcyan", "", Bold),
		CardStatusComplete: st("lightgreen", "", Bold),
		CardStatusStale:    st("darkgray", "", Bold),
		CardPriorityLow:    st("lightgreen", "", Bold),
		CardPriorityMedium: st("lightyellow", "", Bold),
		CardPriorityHigh:   st("lightred", "", Bold),
		KeyboardFocus:      st("lightcyan", "", Bold),
		MouseFocus:         st("#ffa500", "", Bold),
		HelpKey:            st("lightcyan", "", Bold),
		HelpText:           st("white", ""),
		LogError:           st("lightred", "", Bold),
		LogWarn:            st("lightyellow", "", Bold),
		LogInfo:            st("lightcyan", "", Bold),
		LogDebug:           st("lightgreen", "", Bold),
		ProgressBar:        st("lightgreen", "", Bold),
		ErrorText:          st("lightred", "", Bold),
		InactiveText:       st("#282828", "", Bold),
	}}
}

func lightTheme() Theme {
	const bg = "white"
	return Theme{Name: "Light", Styles: map[Role]Style{
		General:            st("black", bg),
		ListSelect:         st("white", "lightmagenta"),
		CardDueDefault:     st("lightgreen", bg),
		CardDueWarning:     st("#ffa500", bg),
		CardDueOverdue:     st("lightred", bg),
		CardStatusActive:   st("cyan", bg),
		CardStatusComplete: st("lightgreen", bg),
		CardStatusStale:    st("darkgray", bg),
		CardPriorityLow:    st("lightgreen", bg),
		CardPriorityMedium: st("#ffa500", bg),
		CardPriorityHigh:   st("lightred", bg),
		KeyboardFocus:      st("blue", bg),
		MouseFocus:         st("#ffa500", bg),
		HelpKey:            st("lightmagenta", bg),
		HelpText:           st("black", bg),
		LogError:           st("lightred", bg),
		LogWarn:            st("#ffa500", bg),
		LogInfo:            st("blue", bg),
		LogDebug:           st("lightgreen", bg),
		ProgressBar:        st("green", bg),
		ErrorText:          st("black", "lightred"),
		InactiveText:       st("gray", "darkgray"),
	}}
}

func draculaTheme() Theme {
	const bg = "#282a36"
	return Theme{Name: "Dracula", Styles: map[Role]Style{
		General:            st("#f8f8f2", bg),
		ListSelect:         st("#f8f8f2", "#44475a"),
		CardDueDefault:     st("#50fa7b", bg),
		CardDueWarning:     st("#ffb86c", bg),
		CardDueOverdue:     st("#ff5555", bg),
		CardStatusActive:   st("#8be9fd", bg),
		CardStatusComplete: st("#50fa7b", bg),
		CardStatusStale:    st("#44475a", bg),
		CardPriorityLow:    st("#50fa7b", bg),
		CardPriorityMedium: st("#ffb86c", bg),
		CardPriorityHigh:   st("#ff5555", bg),
		KeyboardFocus:      st("#50fa7b", bg),
		MouseFocus:         st("#ff79c6", bg),
		HelpKey:            st("#ff79c6", bg),
		HelpText:           st("#f8f8f2", bg),
		LogError:           st("#ff5555", bg),
		LogWarn:            st("#ffb86c", bg),
		LogInfo:            st("#8be9fd", bg),
		LogDebug:           st("#50fa7b", bg),
		ProgressBar:        st("#50fa7b", bg),
		ErrorText:          st(bg, "#ff5555"),
		InactiveText:       st("#44475a", bg),
	}}
}

func midnightBlueTheme() Theme {
	const bg = "#191970"
	return Theme{Name: "Midnight Blue", Styles: map[Role]Style{
		General:            st("gray", bg),
		ListSelect:         st("gray", "#4682b4"),
		CardDueDefault:     st("gray", bg),
		CardDueWarning:     st("lightyellow", bg),
		CardDueOverdue:     st("lightred", bg),
		CardStatusActive:   st("lightgreen", bg),
		CardStatusComplete: st("gray", bg),
		CardStatusStale:    st("yellow", bg),
		CardPriorityLow:    st("lightgreen", bg),
		CardPriorityMedium: st("lightyellow", bg),
		CardPriorityHigh:   st("lightred", bg),
		KeyboardFocus:      st("lightblue", bg, Bold),
		MouseFocus:         st("lightblue", bg, Bold),
		HelpKey:            st("gray", bg),
		HelpText:           st("darkgray", bg),
		LogError:           st("lightred", bg),
		LogWarn:            st("yellow", bg),
		LogInfo:            st("lightgreen", bg),
		LogDebug:           st("lightblue", bg),
		ProgressBar:        st("lightgreen", bg),
		ErrorText:          st("black", "lightred"),
		InactiveText:       st("darkgray", "black"),
	}}
}
