// Package theme holds the color themes the board renders with.
package theme

import (
	"errors"
	"fmt"
	"image/color"
	"slices"
	"strings"

	"charm.land/lipgloss/v2"
	colorful "github.com/lucasb-eyer/go-colorful"
)

var (
	ErrInvalidTheme = errors.New("invalid theme")
	ErrInvalidColor = errors.New("invalid color")
)

// Role names a semantic slot a theme styles.
type Role string

const (
	General            Role = "general"
	ListSelect         Role = "list_select"
	CardDueDefault     Role = "card_due_default"
	CardDueWarning     Role = "card_due_warning"
	CardDueOverdue     Role = "card_due_overdue"
	CardStatusActive   Role = "card_status_active"
	CardStatusComplete Role = "card_status_completed"
	CardStatusStale    Role = "card_status_stale"
	CardPriorityLow    Role = "card_priority_low"
	CardPriorityMedium Role = "card_priority_medium"
	CardPriorityHigh   Role = "card_priority_high"
	KeyboardFocus      Role = "keyboard_focus"
	MouseFocus         Role = "mouse_focus"
	HelpKey            Role = "help_key"
	HelpText           Role = "help_text"
	LogError           Role = "log_error"
	LogWarn            Role = "log_warn"
	LogInfo            Role = "log_info"
	LogDebug           Role = "log_debug"
	ProgressBar        Role = "progress_bar"
	ErrorText          Role = "error_text"
	InactiveText       Role = "inactive_text"
)

var allRoles = []Role{
	General, ListSelect,
	CardDueDefault, CardDueWarning, CardDueOverdue,
	CardStatusActive, CardStatusComplete, CardStatusStale,
	CardPriorityLow, CardPriorityMedium, CardPriorityHigh,
	KeyboardFocus, MouseFocus, HelpKey, HelpText,
	LogError, LogWarn, LogInfo, LogDebug,
	ProgressBar, ErrorText, InactiveText,
}

// AllRoles lists roles in editor order.
func AllRoles() []Role {
	return slices.Clone(allRoles)
}

// Modifier is a text attribute.
type Modifier string

const (
	Bold          Modifier = "bold"
	Faint         Modifier = "faint"
	Italic        Modifier = "italic"
	Underline     Modifier = "underline"
	Blink         Modifier = "blink"
	Reverse       Modifier = "reverse"
	Strikethrough Modifier = "strikethrough"
)

var allModifiers = []Modifier{Bold, Faint, Italic, Underline, Blink, Reverse, Strikethrough}

// AllModifiers lists modifiers in editor order.
func AllModifiers() []Modifier {
	return slices.Clone(allModifiers)
}

// Style is one role's colors and attributes. An empty color means the
// terminal default.
type Style struct {
	FG        string     `json:"fg,omitempty"`
	BG        string     `json:"bg,omitempty"`
	Modifiers []Modifier `json:"modifiers,omitempty"`
}

// Has reports whether m is set.
func (s Style) Has(m Modifier) bool {
	return slices.Contains(s.Modifiers, m)
}

// Toggle flips m on or off.
func (s Style) Toggle(m Modifier) Style {
	out := s
	out.Modifiers = slices.Clone(s.Modifiers)
	if idx := slices.Index(out.Modifiers, m); idx >= 0 {
		out.Modifiers = slices.Delete(out.Modifiers, idx, idx+1)
		return out
	}
	out.Modifiers = append(out.Modifiers, m)
	return out
}

// Lipgloss converts the style for rendering.
func (s Style) Lipgloss() lipgloss.Style {
	st := lipgloss.NewStyle()
	if c, ok := terminalColor(s.FG); ok {
		st = st.Foreground(c)
	}
	if c, ok := terminalColor(s.BG); ok {
		st = st.Background(c)
	}
	for _, m := range s.Modifiers {
		switch m {
		case Bold:
			st = st.Bold(true)
		case Faint:
			st = st.Faint(true)
		case Italic:
			st = st.Italic(true)
		case Underline:
			st = st.Underline(true)
		case Blink:
			st = st.Blink(true)
		case Reverse:
			st = st.Reverse(true)
		case Strikethrough:
			st = st.Strikethrough(true)
		}
	}
	return st
}

func (s Style) validate() error {
	for _, raw := range []string{s.FG, s.BG} {
		if raw == "" {
			continue
		}
		if _, err := ParseColor(raw); err != nil {
			return err
		}
	}
	for _, m := range s.Modifiers {
		if !slices.Contains(allModifiers, m) {
			return fmt.Errorf("%w: unknown modifier %q", ErrInvalidTheme, m)
		}
	}
	return nil
}

// Theme is a named set of role styles.
type Theme struct {
	Name   string         `json:"name"`
	Styles map[Role]Style `json:"styles"`
}

// Style returns the role's style, falling back to General.
func (t Theme) Style(r Role) Style {
	if s, ok := t.Styles[r]; ok {
		return s
	}
	return t.Styles[General]
}

// Lipgloss returns the role's style ready to render.
func (t Theme) Lipgloss(r Role) lipgloss.Style {
	return t.Style(r).Lipgloss()
}

// With returns a copy of t with r restyled.
func (t Theme) With(r Role, s Style) Theme {
	out := t.Clone()
	out.Styles[r] = s
	return out
}

// Clone returns a deep copy of t.
func (t Theme) Clone() Theme {
	out := Theme{Name: t.Name, Styles: make(map[Role]Style, len(t.Styles))}
	for r, s := range t.Styles {
		s.Modifiers = slices.Clone(s.Modifiers)
		out.Styles[r] = s
	}
	return out
}

// Validate requires a name and checks every color and modifier.
func (t Theme) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidTheme)
	}
	for _, r := range allRoles {
		s, ok := t.Styles[r]
		if !ok {
			continue
		}
		if err := s.validate(); err != nil {
			return fmt.Errorf("%s: %w", r, err)
		}
	}
	return nil
}

// Background is the general background as RGB, or fallback when the theme
// uses the terminal default.
func (t Theme) Background(fallback colorful.Color) colorful.Color {
	if c, err := ParseColor(t.Style(General).BG); err == nil {
		return c
	}
	return fallback
}

// Foreground is the role's foreground as RGB, or fallback.
func (t Theme) Foreground(r Role, fallback colorful.Color) colorful.Color {
	if c, err := ParseColor(t.Style(r).FG); err == nil {
		return c
	}
	return fallback
}

// namedColors maps the ANSI 16 names themes may use to their palette index
// and an RGB approximation used for blending.
var namedColors = map[string]struct {
	ansi string
	hex  string
}{
	"black":        {"0", "#000000"},
	"red":          {"1", "#800000"},
	"green":        {"2", "#008000"},
	"yellow":       {"3", "#808000"},
	"blue":         {"4", "#000080"},
	"magenta":      {"5", "#800080"},
	"cyan":         {"6", "#008080"},
	"gray":         {"7", "#c0c0c0"},
	"darkgray":     {"8", "#808080"},
	"lightred":     {"9", "#ff0000"},
	"lightgreen":   {"10", "#00ff00"},
	"lightyellow":  {"11", "#ffff00"},
	"lightblue":    {"12", "#0000ff"},
	"lightmagenta": {"13", "#ff00ff"},
	"lightcyan":    {"14", "#00ffff"},
	"white":        {"15", "#ffffff"},
}

// ParseColor accepts "#rrggbb" or one of the ANSI color names.
func ParseColor(raw string) (colorful.Color, error) {
	raw = strings.TrimSpace(raw)
	if named, ok := namedColors[strings.ToLower(raw)]; ok {
		c, _ := colorful.Hex(named.hex)
		return c, nil
	}
	if !strings.HasPrefix(raw, "#") {
		return colorful.Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, raw)
	}
	c, err := colorful.Hex(raw)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, raw)
	}
	return c, nil
}

var colorOrder = []string{
	"black", "red", "green", "yellow", "blue", "magenta", "cyan", "gray",
	"darkgray", "lightred", "lightgreen", "lightyellow", "lightblue", "lightmagenta", "lightcyan", "white",
}

// ColorNames lists the named colors in palette order.
func ColorNames() []string {
	return slices.Clone(colorOrder)
}

func terminalColor(raw string) (color.Color, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	if named, ok := namedColors[strings.ToLower(raw)]; ok {
		return lipgloss.Color(named.ansi), true
	}
	if _, err := ParseColor(raw); err != nil {
		return nil, false
	}
	return lipgloss.Color(raw), true
}
