package keymap

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Key is a normalized key chord in terminal key-event notation, e.g.
// "ctrl+c", "shift+tab", "enter", "D".
type Key string

func (k Key) String() string {
	return string(k)
}

var keyAliases = map[string]string{
	"escape":     "esc",
	"return":     "enter",
	"ins":        "insert",
	"del":        "delete",
	"pageup":     "pgup",
	"pagedown":   "pgdown",
	"arrowup":    "up",
	"arrowdown":  "down",
	"arrowleft":  "left",
	"arrowright": "right",
	"bksp":       "backspace",
}

var modifierOrder = []string{"ctrl", "alt", "shift"}

// NormalizeKey canonicalizes user-written chords so "Ctrl+C", "ctrl+c" and
// "control+c" compare equal, and "shift+d" becomes "D".
func NormalizeKey(raw string) Key {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if raw == "+" {
		return "+"
	}
	parts := strings.Split(raw, "+")
	base := parts[len(parts)-1]
	if base == "" && len(parts) > 1 {
		base = "+"
		parts = parts[:len(parts)-1]
	}
	mods := map[string]bool{}
	for _, mod := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(mod)) {
		case "ctrl", "control":
			mods["ctrl"] = true
		case "alt", "opt", "option", "meta":
			mods["alt"] = true
		case "shift":
			mods["shift"] = true
		}
	}

	if utf8.RuneCountInString(base) == 1 {
		r, _ := utf8.DecodeRuneInString(base)
		switch {
		case mods["shift"] && unicode.IsLetter(r) && !mods["ctrl"] && !mods["alt"]:
			base = string(unicode.ToUpper(r))
			delete(mods, "shift")
		case mods["ctrl"] || mods["alt"]:
			base = string(unicode.ToLower(r))
		}
	} else {
		base = strings.ToLower(base)
		if alias, ok := keyAliases[base]; ok {
			base = alias
		}
	}

	var b strings.Builder
	for _, mod := range modifierOrder {
		if mods[mod] {
			b.WriteString(mod)
			b.WriteByte('+')
		}
	}
	b.WriteString(base)
	return Key(b.String())
}

// Display renders a key for help text.
func (k Key) Display() string {
	switch k {
	case "up":
		return "↑"
	case "down":
		return "↓"
	case "left":
		return "←"
	case "right":
		return "→"
	case "shift+up":
		return "shift+↑"
	case "shift+down":
		return "shift+↓"
	case "shift+left":
		return "shift+←"
	case "shift+right":
		return "shift+→"
	}
	return string(k)
}
