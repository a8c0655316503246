package tui

import (
	"testing"

	"charm.land/bubbles/v2/key"

	"github.com/evanschultz/kanban/internal/keymap"
)

func helpKeysOf(bindings []key.Binding) []string {
	out := make([]string, 0, len(bindings))
	for _, b := range bindings {
		out = append(out, b.Help().Desc)
	}
	return out
}

// TestHelpKeysFollowMode verifies the short help tracks the focused mode.
func TestHelpKeysFollowMode(t *testing.T) {
	m := newTestModel(t)

	got := helpKeysOf(m.helpKeys().ShortHelp())
	if len(got) != len(boardHelp) || got[0] != keymap.Accept.Description() {
		t.Fatalf("board help = %v", got)
	}

	m = applyMsg(t, m, keyPress("ctrl+p"))
	if !m.ui.InUserInput() {
		t.Fatalf("palette should take input, status = %s", m.ui.InputStatus())
	}
	got = helpKeysOf(m.helpKeys().ShortHelp())
	if len(got) != len(inputHelp) || got[0] != keymap.StopUserInput.Description() {
		t.Fatalf("input help = %v", got)
	}
}

// TestHelpKeysReflectRebinds verifies help text shows the user's keys.
func TestHelpKeysReflectRebinds(t *testing.T) {
	m := newTestModel(t)
	next, err := m.bindings.Rebind(keymap.NewCard, []keymap.Key{"a"})
	if err != nil {
		t.Fatalf("Rebind() error = %v", err)
	}
	m.bindings = next
	for _, b := range m.helpKeys().ShortHelp() {
		if b.Help().Desc != keymap.NewCard.Description() {
			continue
		}
		if b.Help().Key != "a" {
			t.Fatalf("new card help key = %q, want a", b.Help().Key)
		}
		return
	}
	t.Fatal("new card missing from board help")
}

// TestFullHelpCoversEveryAction verifies the help menu lists all actions.
func TestFullHelpCoversEveryAction(t *testing.T) {
	seen := map[keymap.Action]bool{}
	for _, group := range fullHelp {
		for _, a := range group {
			seen[a] = true
		}
	}
	for _, a := range keymap.AllActions() {
		if !seen[a] {
			t.Fatalf("action %s missing from full help", a)
		}
	}
	if got := len(helpKeys{bindings: keymap.Defaults(), full: fullHelp}.FullHelp()); got != len(fullHelp) {
		t.Fatalf("FullHelp() groups = %d, want %d", got, len(fullHelp))
	}
}
