package app

import (
	"errors"
	"testing"
	"time"

	"github.com/evanschultz/kanban/internal/domain"
)

// sequentialIDs returns deterministic ids starting at 1.
func sequentialIDs() IDGenerator {
	var n uint64
	return func() domain.ID {
		n++
		return domain.ID{Hi: 7, Lo: n}
	}
}

// steppingClock advances one minute per call.
func steppingClock(start time.Time) Clock {
	now := start
	return func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
}

func newTestEditor(t *testing.T) *Editor {
	t.Helper()
	editor, err := NewEditor(domain.Workspace{}, sequentialIDs(), steppingClock(time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("NewEditor() error = %v", err)
	}
	return editor
}

func assertSameWorkspace(t *testing.T, got, want domain.Workspace) {
	t.Helper()
	if len(got.Boards) != len(want.Boards) {
		t.Fatalf("board count = %d, want %d", len(got.Boards), len(want.Boards))
	}
	for i := range want.Boards {
		gb, wb := got.Boards[i], want.Boards[i]
		if gb.ID != wb.ID || gb.Name != wb.Name || gb.Description != wb.Description {
			t.Fatalf("board %d = %q/%v, want %q/%v", i, gb.Name, gb.ID, wb.Name, wb.ID)
		}
		if len(gb.Cards) != len(wb.Cards) {
			t.Fatalf("board %q card count = %d, want %d", wb.Name, len(gb.Cards), len(wb.Cards))
		}
		for j := range wb.Cards {
			if !gb.Cards[j].SameContent(wb.Cards[j]) {
				t.Fatalf("board %q card %d = %#v, want %#v", wb.Name, j, gb.Cards[j], wb.Cards[j])
			}
		}
	}
}

func cardNames(board domain.Board) []string {
	out := make([]string, 0, len(board.Cards))
	for _, card := range board.Cards {
		out = append(out, card.Name)
	}
	return out
}

func equalNames(got []string, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestEditorMoveCardBetweenBoardsUndo(t *testing.T) {
	editor := newTestEditor(t)
	b1, _ := editor.AddBoard("B1", "")
	b2, _ := editor.AddBoard("B2", "")
	for _, name := range []string{"C1", "C2"} {
		if _, err := editor.AddCard(b1.ID, domain.CardInput{Name: name}); err != nil {
			t.Fatalf("AddCard() error = %v", err)
		}
	}
	if _, err := editor.AddCard(b2.ID, domain.CardInput{Name: "C3"}); err != nil {
		t.Fatalf("AddCard() error = %v", err)
	}

	if err := editor.MoveCardBetweenBoards(b1.ID, 0, b2.ID, 1); err != nil {
		t.Fatalf("MoveCardBetweenBoards() error = %v", err)
	}
	boards := editor.Boards()
	if !equalNames(cardNames(boards[0]), "C2") || !equalNames(cardNames(boards[1]), "C3", "C1") {
		t.Fatalf("unexpected state after move B1=%v B2=%v", cardNames(boards[0]), cardNames(boards[1]))
	}

	if _, err := editor.Undo(); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	boards = editor.Boards()
	if !equalNames(cardNames(boards[0]), "C1", "C2") || !equalNames(cardNames(boards[1]), "C3") {
		t.Fatalf("unexpected state after undo B1=%v B2=%v", cardNames(boards[0]), cardNames(boards[1]))
	}
}

func TestEditorUndoRedoSymmetry(t *testing.T) {
	editor := newTestEditor(t)
	todo, _ := editor.AddBoard("Todo", "")
	done, _ := editor.AddBoard("Done", "")
	c1, _ := editor.AddCard(todo.ID, domain.CardInput{Name: "one", Tags: []string{"x"}})
	_, _ = editor.AddCard(todo.ID, domain.CardInput{Name: "two"})
	start := editor.Snapshot()
	startHead := editor.History().Head()

	mutations := []func() error{
		func() error { _, err := editor.AddCard(done.ID, domain.CardInput{Name: "three"}); return err },
		func() error { return editor.MoveCardWithinBoard(todo.ID, 0, 1) },
		func() error { return editor.SetCardStatus(todo.ID, c1.ID, domain.StatusComplete) },
		func() error { return editor.SetCardPriority(todo.ID, c1.ID, domain.PriorityHigh) },
		func() error { return editor.MoveCardBetweenBoards(todo.ID, 1, done.ID, 0) },
		func() error { return editor.UpdateBoard(done.ID, "Shipped", "finished work") },
		func() error {
			card, err := editor.Card(done.ID, c1.ID)
			if err != nil {
				return err
			}
			card.Description = "edited"
			card.Tags = []string{"y"}
			return editor.UpdateCard(done.ID, card)
		},
		func() error { _, err := editor.AddBoard("Later", ""); return err },
		func() error { return editor.DeleteBoard(todo.ID) },
	}
	for i, mutate := range mutations {
		if err := mutate(); err != nil {
			t.Fatalf("mutation %d error = %v", i, err)
		}
	}
	end := editor.Snapshot()

	for range mutations {
		if _, err := editor.Undo(); err != nil {
			t.Fatalf("Undo() error = %v", err)
		}
	}
	assertSameWorkspace(t, editor.Snapshot(), start)
	if editor.History().Head() != startHead {
		t.Fatalf("head = %d, want %d", editor.History().Head(), startHead)
	}

	for range mutations {
		if _, err := editor.Redo(); err != nil {
			t.Fatalf("Redo() error = %v", err)
		}
	}
	assertSameWorkspace(t, editor.Snapshot(), end)
	if _, err := editor.Redo(); !errors.Is(err, ErrNothingToRedo) || !IsNotice(err) {
		t.Fatalf("expected ErrNothingToRedo notice, got %v", err)
	}
}

func TestEditorUndoPastStartIsNotice(t *testing.T) {
	editor := newTestEditor(t)
	if _, err := editor.Undo(); !errors.Is(err, ErrNothingToUndo) || !IsNotice(err) {
		t.Fatalf("expected ErrNothingToUndo notice, got %v", err)
	}
}

func TestEditorNewMutationTruncatesRedo(t *testing.T) {
	editor := newTestEditor(t)
	board, _ := editor.AddBoard("B", "")
	_, _ = editor.AddCard(board.ID, domain.CardInput{Name: "a"})
	if _, err := editor.Undo(); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if !editor.CanRedo() {
		t.Fatal("expected redo available")
	}
	_, _ = editor.AddCard(board.ID, domain.CardInput{Name: "b"})
	if editor.CanRedo() {
		t.Fatal("expected redo truncated by new mutation")
	}
	if got := cardNames(editor.Boards()[0]); !equalNames(got, "b") {
		t.Fatalf("unexpected cards %v", got)
	}
}

func TestEditorStatusCompletedSideEffectIsUndone(t *testing.T) {
	editor := newTestEditor(t)
	board, _ := editor.AddBoard("B", "")
	card, _ := editor.AddCard(board.ID, domain.CardInput{Name: "a"})
	if err := editor.SetCardStatus(board.ID, card.ID, domain.StatusComplete); err != nil {
		t.Fatalf("SetCardStatus() error = %v", err)
	}
	got, _ := editor.Card(board.ID, card.ID)
	if got.Completed == nil {
		t.Fatal("expected completed timestamp")
	}
	if _, err := editor.Undo(); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	got, _ = editor.Card(board.ID, card.ID)
	if got.Status != domain.StatusActive || got.Completed != nil {
		t.Fatalf("undo left status=%q completed=%v", got.Status, got.Completed)
	}
	if !got.Modified.Equal(card.Modified) {
		t.Fatalf("undo modified = %v, want %v", got.Modified, card.Modified)
	}
}

func TestEditorRejectsInvalidInputWithoutRecording(t *testing.T) {
	editor := newTestEditor(t)
	board, _ := editor.AddBoard("B", "")
	head := editor.History().Head()
	if _, err := editor.AddCard(board.ID, domain.CardInput{Name: "   "}); !errors.Is(err, domain.ErrInputValidation) {
		t.Fatalf("expected ErrInputValidation, got %v", err)
	}
	if _, err := editor.AddCardAt(board.ID, 5, domain.CardInput{Name: "x"}); !errors.Is(err, domain.ErrInvalidPosition) {
		t.Fatalf("expected ErrInvalidPosition, got %v", err)
	}
	if _, err := editor.AddCard(domain.NewID(), domain.CardInput{Name: "x"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if editor.History().Head() != head {
		t.Fatalf("failed mutations recorded history: head %d, want %d", editor.History().Head(), head)
	}
}

func TestEditorUnchangedEditRecordsNothing(t *testing.T) {
	editor := newTestEditor(t)
	board, _ := editor.AddBoard("B", "")
	card, _ := editor.AddCard(board.ID, domain.CardInput{Name: "a"})
	head := editor.History().Head()
	if err := editor.UpdateCard(board.ID, card); err != nil {
		t.Fatalf("UpdateCard() error = %v", err)
	}
	if editor.History().Head() != head {
		t.Fatal("expected no history entry for unchanged card")
	}
}

func TestHistoryDropsOldestPastLimit(t *testing.T) {
	h := NewHistory(3)
	for i := range 5 {
		h.Record(Entry{Label: string(rune('a' + i))})
	}
	if h.Len() != 3 || h.Head() != 3 {
		t.Fatalf("len=%d head=%d, want 3/3", h.Len(), h.Head())
	}
	if entry, _ := h.peekUndo(); entry.Label != "e" {
		t.Fatalf("newest entry = %q, want e", entry.Label)
	}
	if h.entries[0].Label != "c" {
		t.Fatalf("oldest entry = %q, want c", h.entries[0].Label)
	}
}

func TestEditorReplaceClearsHistory(t *testing.T) {
	editor := newTestEditor(t)
	_, _ = editor.AddBoard("B", "")
	rev := editor.Revision()
	if err := editor.Replace(domain.Workspace{}); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if editor.CanUndo() || len(editor.Boards()) != 0 || editor.Revision() <= rev {
		t.Fatalf("unexpected state after replace: undo=%t boards=%d rev=%d", editor.CanUndo(), len(editor.Boards()), editor.Revision())
	}
}
