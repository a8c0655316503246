package keymap

import (
	"errors"
	"slices"
	"testing"

	"charm.land/bubbles/v2/key"
)

func TestDefaultsAreValid(t *testing.T) {
	b, err := Defaults().Validate()
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(b) != len(AllActions()) {
		t.Fatalf("bound %d actions, want %d", len(b), len(AllActions()))
	}
}

func TestRebindConflictLeavesMapUnchanged(t *testing.T) {
	defaults := Defaults()
	var capture Capture
	capture.Begin(NextFocus)
	capture.Add("q")

	next, err := capture.Commit(defaults)
	var conflict *ConflictError
	if !errors.As(err, &conflict) || !errors.Is(err, ErrKeybindingConflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if next != nil {
		t.Fatalf("expected nil bindings on conflict, got %#v", next)
	}
	if conflict.Key != "q" || conflict.First != Quit || conflict.Second != NextFocus {
		t.Fatalf("unexpected conflict %#v", conflict)
	}
	if !slices.Equal(defaults[NextFocus], []Key{"tab"}) {
		t.Fatalf("defaults mutated: %v", defaults[NextFocus])
	}
	if capture.Active() {
		t.Fatal("expected capture to end after commit")
	}
}

func TestRebindCommits(t *testing.T) {
	var capture Capture
	capture.Begin(NextFocus)
	capture.Add("ctrl+n")
	capture.Add("Ctrl+N")
	capture.Add("tab")
	next, err := capture.Commit(Defaults())
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if !slices.Equal(next[NextFocus], []Key{"ctrl+n", "tab"}) {
		t.Fatalf("unexpected keys %v", next[NextFocus])
	}
	if a, ok := next.Resolve("ctrl+n", false); !ok || a != NextFocus {
		t.Fatalf("Resolve(ctrl+n) = %v, %t", a, ok)
	}
}

func TestValidateDedupesWithinAction(t *testing.T) {
	b := Defaults()
	b[Quit] = []Key{"q", "Q", "q", "ctrl+c"}
	out, err := b.Validate()
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !slices.Equal(out[Quit], []Key{"q", "Q", "ctrl+c"}) {
		t.Fatalf("unexpected deduped keys %v", out[Quit])
	}
}

func TestValidateRejectsEmptyAction(t *testing.T) {
	b := Defaults()
	b[Undo] = nil
	if _, err := b.Validate(); !errors.Is(err, ErrInvalidBinding) {
		t.Fatalf("expected ErrInvalidBinding, got %v", err)
	}
	delete(b, Undo)
	if _, err := b.Validate(); !errors.Is(err, ErrInvalidBinding) {
		t.Fatalf("expected ErrInvalidBinding for missing action, got %v", err)
	}
}

func TestResolveRespectsUserInput(t *testing.T) {
	b := Defaults()
	cases := []struct {
		key       Key
		userInput bool
		want      Action
		ok        bool
	}{
		{key: "q", want: Quit, ok: true},
		{key: "q", userInput: true},
		{key: "n", userInput: true},
		{key: "esc", userInput: true, want: GoToPreviousUIModeOrCancel, ok: true},
		{key: "enter", userInput: true, want: Accept, ok: true},
		{key: "tab", userInput: true, want: NextFocus, ok: true},
		{key: "insert", userInput: true, want: StopUserInput, ok: true},
		{key: "shift+d", want: DeleteBoard, ok: true},
		{key: "x"},
	}
	for _, tc := range cases {
		got, ok := b.Resolve(tc.key, tc.userInput)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("Resolve(%q, %t) = %v, %t; want %v, %t", tc.key, tc.userInput, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNormalizeKey(t *testing.T) {
	cases := map[string]Key{
		"Ctrl+C":       "ctrl+c",
		"control+s":    "ctrl+s",
		"shift+d":      "D",
		"Shift+Tab":    "shift+tab",
		"Escape":       "esc",
		"ins":          "insert",
		"alt+X":        "alt+x",
		"shift+ctrl+a": "ctrl+shift+a",
		"  q ":         "q",
		"ctrl++":       "ctrl++",
	}
	for raw, want := range cases {
		if got := NormalizeKey(raw); got != want {
			t.Fatalf("NormalizeKey(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestConfigRoundTrip(t *testing.T) {
	raw := Defaults().ToConfig()
	raw["undo"] = []string{"u"}
	raw["not_an_action"] = []string{"z"}
	b, err := FromConfig(raw)
	if err != nil {
		t.Fatalf("FromConfig() error = %v", err)
	}
	if !slices.Equal(b[Undo], []Key{"u"}) {
		t.Fatalf("unexpected undo keys %v", b[Undo])
	}
	raw["redo"] = []string{"u"}
	if _, err := FromConfig(raw); !errors.Is(err, ErrKeybindingConflict) {
		t.Fatalf("expected ErrKeybindingConflict, got %v", err)
	}
}

func TestBindingMatchesKeyStrings(t *testing.T) {
	b := Defaults()
	binding := b.Binding(Quit)
	if !key.Matches(Key("ctrl+c"), binding) {
		t.Fatal("expected ctrl+c to match quit binding")
	}
	if binding.Help().Desc != "quit" {
		t.Fatalf("unexpected help %#v", binding.Help())
	}
	if len(b.FullHelp()) == 0 || len(b.ShortHelp()) == 0 {
		t.Fatal("expected help bindings")
	}
}

func TestParseAction(t *testing.T) {
	for _, a := range AllActions() {
		got, err := ParseAction(a.String())
		if err != nil || got != a {
			t.Fatalf("ParseAction(%q) = %v, %v", a.String(), got, err)
		}
	}
	if _, err := ParseAction("fly"); !errors.Is(err, ErrInvalidBinding) {
		t.Fatalf("expected ErrInvalidBinding, got %v", err)
	}
}
