package toast

import (
	"testing"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
)

var (
	black = colorful.Color{}
	red   = colorful.Color{R: 1}
)

func redPalette(Kind) colorful.Color { return red }

func TestColorFadesInHoldsAndFadesOut(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	toast := Toast{Start: start, Duration: 2 * time.Second}

	if got := toast.ColorAt(start, red, black); got != black {
		t.Fatalf("expected background at start, got %v", got)
	}
	mid := toast.ColorAt(start.Add(FadeIn/2), red, black)
	if mid.R < 0.49 || mid.R > 0.51 {
		t.Fatalf("expected half fade-in, got %v", mid)
	}
	if got := toast.ColorAt(start.Add(time.Second), red, black); got != red {
		t.Fatalf("expected base color while holding, got %v", got)
	}
	out := toast.ColorAt(start.Add(2*time.Second-FadeOut/4), red, black)
	if out.R < 0.24 || out.R > 0.26 {
		t.Fatalf("expected three quarters faded out, got %v", out)
	}
}

func TestTickRemovesExpiredAndSnapsWithoutAnimation(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewManager()
	short := m.Push(Info, "", "saved", time.Second, now, black)
	m.Push(Error, "", "disk full", 0, now, black)
	m.Tick(now.Add(time.Second), false, black, redPalette)
	if m.Len() != 1 {
		t.Fatalf("expected expired toast removed, got %d", m.Len())
	}
	if m.Dismiss(short) {
		t.Fatal("expected removed toast to be gone")
	}
	if got := m.All()[0]; got.Color != red || got.Title != "Error" {
		t.Fatalf("unexpected toast %#v", got)
	}
}

func TestVisiblePrefersLoading(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewManager()
	m.Push(Info, "", "r1", 0, base, black)
	m.Push(Loading, "", "l1", 0, base.Add(1*time.Second), black)
	m.Push(Info, "", "r2", 0, base.Add(2*time.Second), black)
	m.Push(Loading, "", "l2", 0, base.Add(3*time.Second), black)
	m.Push(Loading, "", "l3", 0, base.Add(4*time.Second), black)
	m.Push(Warning, "", "r3", 0, base.Add(5*time.Second), black)

	got := bodies(m.Visible(3))
	want := []string{"l1", "l2", "r3"}
	if !equal(got, want) {
		t.Fatalf("Visible(3) = %v, want %v", got, want)
	}
	got = bodies(m.Visible(6))
	want = []string{"l1", "l2", "l3", "r1", "r2", "r3"}
	if !equal(got, want) {
		t.Fatalf("Visible(6) = %v, want %v", got, want)
	}
}

func TestVisibleBackfillsWithLoading(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewManager()
	for i, body := range []string{"l1", "l2", "l3"} {
		m.Push(Loading, "", body, 0, base.Add(time.Duration(i)*time.Second), black)
	}
	if got := bodies(m.Visible(3)); !equal(got, []string{"l1", "l2", "l3"}) {
		t.Fatalf("unexpected visible %v", got)
	}
	if got := m.Visible(0); got != nil {
		t.Fatalf("expected nil for n=0, got %v", got)
	}
}

func bodies(ts []Toast) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Body)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
