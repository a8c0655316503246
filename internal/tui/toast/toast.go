// Package toast keeps the transient notifications shown in the corner of
// the board.
package toast

import (
	"slices"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
)

type Kind int

const (
	Error Kind = iota
	Warning
	Info
	Loading
)

// String returns the toast title.
func (k Kind) String() string {
	switch k {
	case Error:
		return "Error"
	case Warning:
		return "Warning"
	case Info:
		return "Info"
	case Loading:
		return "Loading"
	}
	return "Unknown"
}

const (
	FadeIn          = 200 * time.Millisecond
	FadeOut         = 400 * time.Millisecond
	DefaultDuration = 5 * time.Second
	// LoadingDuration bounds a loading toast whose completion never arrives.
	LoadingDuration = 2 * time.Minute
	MaxVisible      = 4
)

type Toast struct {
	ID       int
	Title    string
	Body     string
	Kind     Kind
	Start    time.Time
	Duration time.Duration
	Color    colorful.Color
}

// Expired reports whether the toast has outlived its duration at now.
func (t Toast) Expired(now time.Time) bool {
	return now.Sub(t.Start) >= t.Duration
}

// ColorAt fades from background to base over FadeIn, holds, then fades back
// over the final FadeOut of the toast's life.
func (t Toast) ColorAt(now time.Time, base, background colorful.Color) colorful.Color {
	elapsed := now.Sub(t.Start)
	switch {
	case elapsed < FadeIn:
		return background.BlendRgb(base, ratio(elapsed, FadeIn)).Clamped()
	case elapsed < t.Duration-FadeOut:
		return base
	default:
		return base.BlendRgb(background, ratio(elapsed-(t.Duration-FadeOut), FadeOut)).Clamped()
	}
}

func ratio(d, total time.Duration) float64 {
	if total <= 0 {
		return 1
	}
	return min(max(float64(d)/float64(total), 0), 1)
}

// Palette maps a kind to its fully faded-in color.
type Palette func(Kind) colorful.Color

// Manager owns the live toasts. It is used from the event loop only.
type Manager struct {
	toasts []Toast
	nextID int
}

// NewManager returns an empty toast manager.
func NewManager() *Manager {
	return &Manager{}
}

// Push adds a toast and returns its id. A zero duration picks the default
// for the kind.
func (m *Manager) Push(kind Kind, title, body string, duration time.Duration, now time.Time, base colorful.Color) int {
	if duration <= 0 {
		duration = DefaultDuration
		if kind == Loading {
			duration = LoadingDuration
		}
	}
	if title == "" {
		title = kind.String()
	}
	m.nextID++
	m.toasts = append(m.toasts, Toast{
		ID:       m.nextID,
		Title:    title,
		Body:     body,
		Kind:     kind,
		Start:    now,
		Duration: duration,
		Color:    base,
	})
	return m.nextID
}

// Dismiss removes a toast by id, used when a loading operation finishes.
func (m *Manager) Dismiss(id int) bool {
	idx := slices.IndexFunc(m.toasts, func(t Toast) bool { return t.ID == id })
	if idx < 0 {
		return false
	}
	m.toasts = slices.Delete(m.toasts, idx, idx+1)
	return true
}

// Clear drops every toast.
func (m *Manager) Clear() {
	m.toasts = nil
}

// Len returns the number of live toasts.
func (m *Manager) Len() int {
	return len(m.toasts)
}

// All returns the toasts in insertion order.
func (m *Manager) All() []Toast {
	return slices.Clone(m.toasts)
}

// Tick drops expired toasts and recolors the rest.
func (m *Manager) Tick(now time.Time, animations bool, background colorful.Color, palette Palette) {
	kept := m.toasts[:0]
	for _, t := range m.toasts {
		if t.Expired(now) {
			continue
		}
		base := t.Color
		if palette != nil {
			base = palette(t.Kind)
		}
		if animations {
			t.Color = t.ColorAt(now, base, background)
		} else {
			t.Color = base
		}
		kept = append(kept, t)
	}
	clear(m.toasts[len(kept):])
	m.toasts = kept
}

// Visible picks at most n toasts. Loading toasts take up to n-1 slots, the
// newest regular toasts fill the rest, and leftover slots go back to loading
// toasts. Each group is ordered oldest first.
func (m *Manager) Visible(n int) []Toast {
	if n <= 0 {
		return nil
	}
	var loading, regular []Toast
	for _, t := range m.toasts {
		if t.Kind == Loading {
			loading = append(loading, t)
		} else {
			regular = append(regular, t)
		}
	}
	byStart := func(a, b Toast) int { return a.Start.Compare(b.Start) }
	slices.SortStableFunc(loading, byStart)
	slices.SortStableFunc(regular, byStart)

	nl := min(len(loading), n-1)
	nr := min(len(regular), n-nl)
	if nl+nr < n {
		nl = min(len(loading), n-nr)
	}
	out := make([]Toast, 0, nl+nr)
	out = append(out, loading[:nl]...)
	return append(out, regular[len(regular)-nr:]...)
}
