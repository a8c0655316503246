package tui

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/evanschultz/kanban/internal/app"
	"github.com/evanschultz/kanban/internal/config"
	"github.com/evanschultz/kanban/internal/domain"
	"github.com/evanschultz/kanban/internal/keymap"
	"github.com/evanschultz/kanban/internal/tui/palette"
	"github.com/evanschultz/kanban/internal/tui/toast"
	"github.com/evanschultz/kanban/internal/uistate"
)

var testNow = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

// fakeIO records requests and answers from canned results.
type fakeIO struct {
	requests []app.Request
	results  map[app.RequestKind]app.Result
}

func (f *fakeIO) handle(_ context.Context, req app.Request) app.Result {
	f.requests = append(f.requests, req)
	if res, ok := f.results[req.Kind]; ok {
		return res
	}
	return app.Result{}
}

func (f *fakeIO) kinds() []app.RequestKind {
	out := make([]app.RequestKind, 0, len(f.requests))
	for _, r := range f.requests {
		out = append(out, r.Kind)
	}
	return out
}

// testEditor builds B1=[C1 #x, C2 #y], B2=[C3].
func testEditor(t *testing.T) *app.Editor {
	t.Helper()
	var n uint64
	ids := func() domain.ID {
		n++
		return domain.ID{Hi: 9, Lo: n}
	}
	editor, err := app.NewEditor(domain.Workspace{}, ids, func() time.Time { return testNow })
	if err != nil {
		t.Fatalf("NewEditor() error = %v", err)
	}
	b1, err := editor.AddBoard("B1", "")
	if err != nil {
		t.Fatalf("AddBoard() error = %v", err)
	}
	b2, err := editor.AddBoard("B2", "")
	if err != nil {
		t.Fatalf("AddBoard() error = %v", err)
	}
	for _, in := range []struct {
		board domain.ID
		card  domain.CardInput
	}{
		{b1.ID, domain.CardInput{Name: "C1", Tags: []string{"x"}}},
		{b1.ID, domain.CardInput{Name: "C2", Tags: []string{"y"}}},
		{b2.ID, domain.CardInput{Name: "C3"}},
	} {
		if _, err := editor.AddCard(in.board, in.card); err != nil {
			t.Fatalf("AddCard() error = %v", err)
		}
	}
	return editor
}

func newTestModelWithIO(t *testing.T, opts ...Option) (Model, *fakeIO) {
	t.Helper()
	io := &fakeIO{results: map[app.RequestKind]app.Result{}}
	cfg := config.Default(t.TempDir(), "")
	cfg.DisableAnimations = true
	// a fresh editor over the snapshot starts with empty history
	editor, err := app.NewEditor(testEditor(t).Snapshot(), nil, func() time.Time { return testNow })
	if err != nil {
		t.Fatalf("NewEditor() error = %v", err)
	}
	base := []Option{
		WithConfig(cfg),
		WithClock(func() time.Time { return testNow }),
		WithHandler(io.handle),
		WithClipboard(func(string) error { return nil }),
		WithLogBuffer(NewLogBuffer(50)),
	}
	m := NewModel(editor, append(base, opts...)...)
	m = applyMsg(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	if err := m.ui.SetFocus(uistate.Body); err != nil {
		t.Fatalf("SetFocus() error = %v", err)
	}
	return m, io
}

func newTestModel(t *testing.T, opts ...Option) Model {
	t.Helper()
	m, _ := newTestModelWithIO(t, opts...)
	return m
}

func applyMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	out, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	return applyCmd(t, out, cmd)
}

func applyCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	out := m
	currentCmd := cmd
	for i := 0; i < 6 && currentCmd != nil; i++ {
		msg := currentCmd()
		updated, nextCmd := out.Update(msg)
		casted, ok := updated.(Model)
		if !ok {
			t.Fatalf("expected Model, got %T", updated)
		}
		out = casted
		currentCmd = nextCmd
	}
	return out
}

func applyKeys(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m = applyMsg(t, m, keyPress(k))
	}
	return m
}

// typeText sends one key press per rune.
func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m = applyMsg(t, m, tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	return m
}

var namedKeys = map[string]rune{
	"enter":     tea.KeyEnter,
	"esc":       tea.KeyEscape,
	"tab":       tea.KeyTab,
	"up":        tea.KeyUp,
	"down":      tea.KeyDown,
	"left":      tea.KeyLeft,
	"right":     tea.KeyRight,
	"insert":    tea.KeyInsert,
	"space":     tea.KeySpace,
	"backspace": tea.KeyBackspace,
	"delete":    tea.KeyDelete,
}

// keyPress builds the press for a chord such as "ctrl+p", "shift+tab" or "D".
func keyPress(chord string) tea.KeyPressMsg {
	parts := strings.Split(chord, "+")
	base := parts[len(parts)-1]
	var mod tea.KeyMod
	for _, p := range parts[:len(parts)-1] {
		switch p {
		case "ctrl":
			mod |= tea.ModCtrl
		case "alt":
			mod |= tea.ModAlt
		case "shift":
			mod |= tea.ModShift
		}
	}
	if code, ok := namedKeys[base]; ok {
		return tea.KeyPressMsg{Code: code, Mod: mod}
	}
	r := []rune(base)[0]
	if mod != 0 {
		return tea.KeyPressMsg{Code: r, Mod: mod}
	}
	return tea.KeyPressMsg{Code: r, Text: base}
}

func lastToast(t *testing.T, m Model) toast.Toast {
	t.Helper()
	all := m.toasts.All()
	if len(all) == 0 {
		t.Fatal("expected a toast")
	}
	return all[len(all)-1]
}

func boardCards(m Model) map[string][]string {
	out := map[string][]string{}
	for _, b := range m.boards() {
		names := make([]string, 0, len(b.Cards))
		for _, c := range b.Cards {
			names = append(names, c.Name)
		}
		out[b.Name] = names
	}
	return out
}

func TestModelStartsOnFirstCard(t *testing.T) {
	m := newTestModel(t)
	card, ok := m.currentCard()
	if !ok || card.Name != "C1" {
		t.Fatalf("currentCard() = %q, %t, want C1", card.Name, ok)
	}
	m = applyKeys(t, m, "down")
	if card, _ := m.currentCard(); card.Name != "C2" {
		t.Fatalf("after down currentCard() = %q, want C2", card.Name)
	}
	m = applyKeys(t, m, "right")
	if card, _ := m.currentCard(); card.Name != "C3" {
		t.Fatalf("after right currentCard() = %q, want C3", card.Name)
	}
}

func TestRebindConflictKeepsBindings(t *testing.T) {
	m := newTestModel(t)
	m = applyKeys(t, m, "c")
	if m.ui.View() != uistate.ConfigMenu {
		t.Fatalf("view = %s, want config menu", m.ui.View())
	}
	m = applyKeys(t, m, "tab", "enter")
	if m.ui.View() != uistate.EditKeybindings {
		t.Fatalf("view = %s, want keybindings", m.ui.View())
	}
	m = applyKeys(t, m, "down", "enter")
	if m.ui.InputStatus() != uistate.KeyBindMode || m.capture.Action() != keymap.NextFocus {
		t.Fatalf("capture = %s/%s, want key bind mode for next focus", m.ui.InputStatus(), m.capture.Action())
	}
	m = applyKeys(t, m, "q", "enter")

	if m.quitting {
		t.Fatal("q was captured, it must not quit")
	}
	if got := m.bindings.Keys(keymap.NextFocus); !slices.Equal(got, []keymap.Key{"tab"}) {
		t.Fatalf("next focus keys = %v, want [tab]", got)
	}
	if tt := lastToast(t, m); tt.Kind != toast.Error || tt.Title != "Keybinding conflict" {
		t.Fatalf("toast = %s/%q, want keybinding conflict error", tt.Kind, tt.Title)
	}
	if m.ui.HasPopup(uistate.EditSpecificKeyBinding) || m.ui.InputStatus() == uistate.KeyBindMode {
		t.Fatalf("capture popup should be closed, popups = %v", m.ui.Popups())
	}
}

func TestRebindCommitsAndPersists(t *testing.T) {
	var saved []config.Config
	m := newTestModel(t, WithConfigSaver(func(c config.Config) error {
		saved = append(saved, c)
		return nil
	}))
	m = applyKeys(t, m, "c", "tab", "enter")
	m.bindCursor = int(keymap.NewCard)
	m = applyKeys(t, m, "enter", "a", "enter")

	if got := m.bindings.Keys(keymap.NewCard); !slices.Equal(got, []keymap.Key{"a"}) {
		t.Fatalf("new card keys = %v, want [a]", got)
	}
	if len(saved) != 1 {
		t.Fatalf("config saves = %d, want 1", len(saved))
	}
	if got := saved[0].Bindings().Keys(keymap.NewCard); !slices.Equal(got, []keymap.Key{"a"}) {
		t.Fatalf("saved new card keys = %v, want [a]", got)
	}
}

func TestTagFilterIsNonDestructive(t *testing.T) {
	m := newTestModel(t)
	before := boardCards(m)

	m = applyKeys(t, m, "ctrl+p")
	m = typeText(t, m, "filter by")
	if cmd, ok := m.palette.SelectedCommand(); !ok || cmd != palette.FilterByTag {
		t.Fatalf("SelectedCommand() = %s, %t, want filter by tag", cmd, ok)
	}
	m = applyKeys(t, m, "enter")
	if top, _ := m.ui.TopPopup(); top != uistate.FilterByTag {
		t.Fatalf("top popup = %s, want filter by tag", top)
	}
	m = applyKeys(t, m, "space", "tab", "enter")

	if !slices.Equal(m.filterTags, []string{"x"}) {
		t.Fatalf("filterTags = %v, want [x]", m.filterTags)
	}
	got := boardCards(m)
	if len(got) != 1 || !slices.Equal(got["B1"], []string{"C1"}) {
		t.Fatalf("filtered boards = %v, want B1=[C1]", got)
	}

	m = applyKeys(t, m, "shift+right")
	if tt := lastToast(t, m); tt.Kind != toast.Warning {
		t.Fatalf("move under filter toast = %s, want warning", tt.Kind)
	}

	m = applyKeys(t, m, "ctrl+p")
	m = typeText(t, m, "clear filter")
	m = applyKeys(t, m, "enter")
	if m.filterActive() {
		t.Fatal("filter should be cleared")
	}
	after := boardCards(m)
	for name, cards := range before {
		if !slices.Equal(after[name], cards) {
			t.Fatalf("board %s = %v after clearing, want %v", name, after[name], cards)
		}
	}
}

func TestMoveCardAcrossBoardsAndUndo(t *testing.T) {
	m := newTestModel(t)
	m = applyKeys(t, m, "shift+right")

	got := boardCards(m)
	if !slices.Equal(got["B1"], []string{"C2"}) || !slices.Equal(got["B2"], []string{"C1", "C3"}) {
		t.Fatalf("after move = %v", got)
	}
	if card, _ := m.currentCard(); card.Name != "C1" {
		t.Fatalf("selection should follow the card, got %q", card.Name)
	}

	m = applyKeys(t, m, "ctrl+z")
	got = boardCards(m)
	if !slices.Equal(got["B1"], []string{"C1", "C2"}) || !slices.Equal(got["B2"], []string{"C3"}) {
		t.Fatalf("after undo = %v", got)
	}

	m = applyKeys(t, m, "ctrl+y")
	got = boardCards(m)
	if !slices.Equal(got["B2"], []string{"C1", "C3"}) {
		t.Fatalf("after redo = %v", got)
	}
}

func TestStatusKeysAreUndoable(t *testing.T) {
	m := newTestModel(t)
	m = applyKeys(t, m, "1")
	card, _ := m.currentCard()
	if card.Status != domain.StatusComplete || card.Completed == nil {
		t.Fatalf("status = %s completed=%v, want complete", card.Status, card.Completed)
	}
	m = applyKeys(t, m, "ctrl+z")
	card, _ = m.currentCard()
	if card.Status != domain.StatusActive || card.Completed != nil {
		t.Fatalf("after undo status = %s completed=%v", card.Status, card.Completed)
	}
}

func TestPaletteRanksStartsWithFirst(t *testing.T) {
	m := newTestModel(t)
	m = applyKeys(t, m, "ctrl+p")
	m = typeText(t, m, "new")

	cmds := m.palette.Results().Commands
	if len(cmds) < 2 || cmds[0] != palette.NewBoard || cmds[1] != palette.NewCard {
		t.Fatalf("commands = %v, want New Board, New Card first", cmds)
	}
	if slices.Contains(cmds, palette.ChangeUIMode) {
		t.Fatalf("commands = %v, change ui mode should not match", cmds)
	}

	m = applyKeys(t, m, "esc")
	if m.ui.HasPopup(uistate.CommandPalette) || m.ui.InUserInput() {
		t.Fatalf("esc should close the palette, popups = %v", m.ui.Popups())
	}
}

func TestPaletteJumpsToCard(t *testing.T) {
	m := newTestModel(t)
	m = applyKeys(t, m, "ctrl+p")
	m = typeText(t, m, "c3")
	m = applyKeys(t, m, "tab", "enter")
	if card, _ := m.currentCard(); card.Name != "C3" {
		t.Fatalf("currentCard() = %q, want C3", card.Name)
	}
	if len(m.ui.Popups()) != 0 {
		t.Fatalf("popups = %v, want none", m.ui.Popups())
	}
}

func TestNewCardFormCreatesCard(t *testing.T) {
	m := newTestModel(t)
	m = applyKeys(t, m, "n")
	if m.ui.View() != uistate.NewCard || m.ui.Focus() != uistate.CardName {
		t.Fatalf("state = %s/%s, want new card form", m.ui.View(), m.ui.Focus())
	}
	m = applyKeys(t, m, "enter")
	m = typeText(t, m, "Fix qa")
	m = applyKeys(t, m, "enter")
	if m.quitting {
		t.Fatal("q inside a text field must not quit")
	}
	m = applyKeys(t, m, "tab", "tab", "enter")

	if !m.ui.View().IsBoardView() {
		t.Fatalf("view = %s, want a board view", m.ui.View())
	}
	got := boardCards(m)
	if !slices.Equal(got["B1"], []string{"C1", "C2", "Fix qa"}) {
		t.Fatalf("B1 = %v", got["B1"])
	}
	if card, _ := m.currentCard(); card.Name != "Fix qa" {
		t.Fatalf("currentCard() = %q, want the new card", card.Name)
	}
}

func TestNewCardRequiresName(t *testing.T) {
	m := newTestModel(t)
	m = applyKeys(t, m, "n", "tab", "tab", "tab", "enter")
	if m.ui.View() != uistate.NewCard {
		t.Fatalf("view = %s, form should stay open", m.ui.View())
	}
	if tt := lastToast(t, m); tt.Kind != toast.Warning {
		t.Fatalf("toast = %s, want warning", tt.Kind)
	}
}

func TestDatePickerFillsDueField(t *testing.T) {
	m := newTestModel(t)
	m = applyKeys(t, m, "enter")
	if top, _ := m.ui.TopPopup(); top != uistate.ViewCard {
		t.Fatalf("top popup = %s, want card", top)
	}
	m = applyKeys(t, m, "down", "down")
	if m.ui.Focus() != uistate.CardDueDate {
		t.Fatalf("focus = %s, want due date", m.ui.Focus())
	}
	m = applyKeys(t, m, "enter")
	if top, _ := m.ui.TopPopup(); top != uistate.DateTimePicker || m.ui.Focus() != uistate.DTPCalender {
		t.Fatalf("picker not focused: %s/%s", top, m.ui.Focus())
	}
	if !strings.Contains(m.render(), m.picker.MonthLabel()) {
		t.Fatal("picker month missing from the frame")
	}
	m = applyKeys(t, m, "right", "enter")

	due, err := domain.ParseDateTime(m.cardDue.Value(), m.cfg.DateTimeFormat())
	if err != nil || due == nil {
		t.Fatalf("ParseDateTime(%q) = %v, %v", m.cardDue.Value(), due, err)
	}
	if due.Day() != 11 || due.Month() != time.January {
		t.Fatalf("due = %v, want Jan 11", due)
	}

	m = applyKeys(t, m, "esc")
	if top, _ := m.ui.TopPopup(); top != uistate.ConfirmDiscardCardChanges {
		t.Fatalf("top popup = %s, want discard confirmation", top)
	}
	m = applyKeys(t, m, "enter")
	if len(m.ui.Popups()) != 0 {
		t.Fatalf("popups = %v, want none", m.ui.Popups())
	}
	if card, _ := m.currentCard(); card.Due != nil {
		t.Fatalf("discarded due was stored: %v", card.Due)
	}
}

func TestCardEditCommits(t *testing.T) {
	m := newTestModel(t)
	m = applyKeys(t, m, "enter", "enter")
	m = typeText(t, m, "!")
	m = applyKeys(t, m, "insert", "4")
	for m.ui.Focus() != uistate.SubmitButton {
		m = applyKeys(t, m, "tab")
	}
	m = applyKeys(t, m, "enter")

	card, _ := m.currentCard()
	if card.Name != "C1!" || card.Priority != domain.PriorityHigh {
		t.Fatalf("card = %q/%s, want C1!/High", card.Name, card.Priority)
	}
	if card.Modified.Before(card.Created) {
		t.Fatalf("modified %v before created %v", card.Modified, card.Created)
	}
}

func TestQuitSavesBeforeExit(t *testing.T) {
	m, io := newTestModelWithIO(t)
	updated, cmd := m.Update(keyPress("q"))
	m = updated.(Model)
	if cmd == nil || !m.quitting {
		t.Fatal("quit should submit a save first")
	}
	updated, cmd = m.Update(cmd())
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected quit after the save")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg after the save")
	}
	if got := io.kinds(); !slices.Equal(got, []app.RequestKind{app.RequestSaveLocal}) {
		t.Fatalf("requests = %v, want one local save", got)
	}
	if n := len(io.requests[0].Workspace.Boards); n != 2 {
		t.Fatalf("saved boards = %d, want 2", n)
	}
}

func TestQuitSaveFailureKeepsBoardOpen(t *testing.T) {
	m, io := newTestModelWithIO(t)
	io.results[app.RequestSaveLocal] = app.Result{Err: errors.Join(app.ErrIOFailure, errors.New("disk full"))}
	m = applyKeys(t, m, "q")
	if m.quitting || !m.skipExitSave {
		t.Fatalf("quitting=%t skipExitSave=%t, want open with save skipped", m.quitting, m.skipExitSave)
	}
	if tt := lastToast(t, m); tt.Kind != toast.Error {
		t.Fatalf("toast = %s, want error", tt.Kind)
	}
	_, cmd := m.Update(keyPress("q"))
	if cmd == nil {
		t.Fatal("second quit should exit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("second quit should not save again")
	}
}

func TestSizeErrorReplacesFrame(t *testing.T) {
	m := newTestModel(t)
	m = applyMsg(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	if !strings.Contains(m.render(), "Terminal too small") {
		t.Fatal("expected the size error screen")
	}
	m = applyKeys(t, m, "n")
	if m.ui.View() == uistate.NewCard {
		t.Fatal("keys other than quit are ignored while too small")
	}
	m = applyMsg(t, m, tea.WindowSizeMsg{Width: MinWidth, Height: MinHeight})
	frame := m.render()
	if strings.Contains(frame, "Terminal too small") || !strings.Contains(frame, "C1") {
		t.Fatal("board should render again after resize")
	}
}

func TestFocusStaysLegal(t *testing.T) {
	m := newTestModel(t)
	keys := []string{"tab", "ctrl+p", "tab", "esc", "h", "enter", "down", "esc", "m", "down", "enter", "esc", "c", "tab", "esc"}
	for _, k := range keys {
		m = applyKeys(t, m, k)
		if !slices.Contains(m.ui.FocusSet(), m.ui.Focus()) && len(m.ui.FocusSet()) > 0 {
			t.Fatalf("after %q focus %s not in %v", k, m.ui.Focus(), m.ui.FocusSet())
		}
	}
}

func TestHideUIElementDropsPanel(t *testing.T) {
	m := newTestModel(t)
	if err := m.ui.SetFocus(uistate.Log); err != nil {
		t.Fatalf("SetFocus() error = %v", err)
	}
	m = applyKeys(t, m, "h")
	if m.ui.View() != uistate.TitleBodyHelp {
		t.Fatalf("view = %s, want title body help", m.ui.View())
	}
}

func TestMouseClickSelectsThenOpens(t *testing.T) {
	m := newTestModel(t)
	l := m.boardLayout()
	r := l.cardRect(0, 1)
	click := tea.MouseClickMsg{X: r.X + 1, Y: r.Y + 1, Button: tea.MouseLeft}

	m = applyMsg(t, m, click)
	if card, _ := m.currentCard(); card.Name != "C2" {
		t.Fatalf("currentCard() = %q, want C2", card.Name)
	}
	m = applyMsg(t, m, click)
	if top, _ := m.ui.TopPopup(); top != uistate.ViewCard {
		t.Fatalf("second click should open the card, popups = %v", m.ui.Popups())
	}
}

func TestMouseIgnoredWhenDisabled(t *testing.T) {
	m := newTestModel(t)
	m.cfg.EnableMouseSupport = false
	r := m.boardLayout().cardRect(0, 1)
	m = applyMsg(t, m, tea.MouseClickMsg{X: r.X + 1, Y: r.Y + 1, Button: tea.MouseLeft})
	if card, _ := m.currentCard(); card.Name != "C1" {
		t.Fatalf("currentCard() = %q, mouse should be off", card.Name)
	}
}

func TestLocalSavesListAndLoad(t *testing.T) {
	m, io := newTestModelWithIO(t)
	loaded := domain.Workspace{Boards: []domain.Board{{ID: domain.ID{Hi: 1, Lo: 1}, Name: "Loaded"}}}
	io.results[app.RequestListLocalSaves] = app.Result{Saves: []app.SaveInfo{{Name: "kanban_10-01-2025_v1.json"}}}
	io.results[app.RequestLoadPreview] = app.Result{Loaded: &app.Save{Version: "1", Workspace: loaded}}
	io.results[app.RequestLoadLocal] = app.Result{Loaded: &app.Save{Version: "1", Workspace: loaded}}

	m = applyKeys(t, m, "m")
	for m.mainMenuItems()[m.menuCursor].label != "Load a Save (Local)" {
		m = applyKeys(t, m, "down")
	}
	m = applyKeys(t, m, "enter")
	if m.ui.View() != uistate.LoadLocalSave || len(m.localSaves) != 1 || m.preview == nil {
		t.Fatalf("view=%s saves=%d preview=%v", m.ui.View(), len(m.localSaves), m.preview)
	}
	if !strings.Contains(m.render(), "Loaded") {
		t.Fatal("preview should list the save's boards")
	}
	m = applyKeys(t, m, "enter")
	if !m.ui.View().IsBoardView() {
		t.Fatalf("view = %s, want board view after load", m.ui.View())
	}
	if got := boardCards(m); len(got) != 1 {
		t.Fatalf("boards = %v, want the loaded workspace", got)
	}
	want := []app.RequestKind{app.RequestListLocalSaves, app.RequestLoadPreview, app.RequestLoadLocal}
	if got := io.kinds(); !slices.Equal(got, want) {
		t.Fatalf("requests = %v, want %v", got, want)
	}
}

func TestResetLinkIsThrottled(t *testing.T) {
	m, io := newTestModelWithIO(t)
	m.openAccountView(uistate.ResetPassword)
	m.email.SetValue("a@b.c")
	if err := m.ui.SetFocus(uistate.SendResetPasswordLinkButton); err != nil {
		t.Fatalf("SetFocus() error = %v", err)
	}
	m = applyKeys(t, m, "enter", "enter")
	if got := io.kinds(); !slices.Equal(got, []app.RequestKind{app.RequestCloudSendResetLink}) {
		t.Fatalf("requests = %v, want one reset link", got)
	}
	if tt := lastToast(t, m); tt.Kind != toast.Warning || tt.Title != "Slow down" {
		t.Fatalf("toast = %s/%q, want rate limit warning", tt.Kind, tt.Title)
	}
	if !strings.Contains(m.render(), "Send Reset Link (") {
		t.Fatal("button should show the remaining wait")
	}
}

func TestDebugOverlayRenders(t *testing.T) {
	m := newTestModel(t)
	m = applyKeys(t, m, "ctrl+p")
	m = typeText(t, m, "toggle debug")
	m = applyKeys(t, m, "enter")
	if !m.debug || !strings.Contains(m.render(), "revision:") {
		t.Fatal("debug overlay should be visible")
	}
}

func TestViewSetsTerminalModes(t *testing.T) {
	m := newTestModel(t)
	v := m.View()
	if !v.AltScreen || v.MouseMode != tea.MouseModeCellMotion {
		t.Fatalf("view modes = alt %t mouse %v", v.AltScreen, v.MouseMode)
	}
}

func TestCardMarkdownIncludesFields(t *testing.T) {
	due := time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)
	md := cardMarkdown(domain.Card{
		Name:     "Ship",
		Status:   domain.StatusActive,
		Priority: domain.PriorityHigh,
		Due:      &due,
		Tags:     []string{"x"},
		Comments: []string{"soon"},
	}, domain.DefaultDateTimeFormat)
	for _, want := range []string{"# Ship", "Priority: High", "Tags: x", "> soon"} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestHelpers(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Fatalf("truncate() = %q", got)
	}
	if got := strings.Count(fitLines("a\nb\nc", 2), "\n"); got != 1 {
		t.Fatalf("fitLines() lines = %d, want 2", got+1)
	}
	if got := wrapIndex(0, -1, 3); got != 2 {
		t.Fatalf("wrapIndex() = %d, want 2", got)
	}
	if got := splitList(" a, ,b "); !slices.Equal(got, []string{"a", "b"}) {
		t.Fatalf("splitList() = %v", got)
	}
}
