package palette

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/evanschultz/kanban/internal/domain"
)

func sampleWorkspace(t *testing.T) domain.Workspace {
	t.Helper()
	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	board, err := domain.NewBoard(domain.ID{Hi: 1, Lo: 1}, "Release", "ship the new build")
	if err != nil {
		t.Fatalf("NewBoard() error = %v", err)
	}
	cards := []domain.CardInput{
		{Name: "Write notes", Description: "release notes for v2", Tags: []string{"docs"}},
		{Name: "Fix login", Description: "new session handling", Tags: []string{"backend"}},
		{Name: "Triage", Comments: []string{"noted in standup"}},
	}
	for i, in := range cards {
		card, err := domain.NewCard(domain.ID{Hi: 2, Lo: uint64(i + 1)}, in, now)
		if err != nil {
			t.Fatalf("NewCard() error = %v", err)
		}
		if err := board.InsertCard(len(board.Cards), card); err != nil {
			t.Fatalf("InsertCard() error = %v", err)
		}
	}
	other, err := domain.NewBoard(domain.ID{Hi: 1, Lo: 2}, "Notebook", "")
	if err != nil {
		t.Fatalf("NewBoard() error = %v", err)
	}
	return domain.Workspace{Boards: []domain.Board{board, other}}
}

func commandNamesOf(cmds []Command) []string {
	out := make([]string, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, c.String())
	}
	return out
}

func TestSearchRanksPrefixBeforeContains(t *testing.T) {
	ix := NewIndex()
	ix.Sync(domain.Workspace{}, 1)
	ix.Search("new")
	got := commandNamesOf(ix.Results().Commands)
	want := []string{"New Board", "New Card"}
	if !slices.Equal(got, want) {
		t.Fatalf("unexpected commands %v, want %v", got, want)
	}

	ix.Search("card")
	got = commandNamesOf(ix.Results().Commands)
	want = []string{"New Card", "Change Current Card Status", "Change Current Card Priority"}
	if !slices.Equal(got, want) {
		t.Fatalf("unexpected contains order %v", got)
	}
}

func TestEmptyQueryListsAllCommands(t *testing.T) {
	ix := NewIndex()
	ix.Search("")
	if got := ix.Results().Commands; !slices.Equal(got, AllCommands()) {
		t.Fatalf("expected all commands, got %v", got)
	}
	if len(ix.Results().Cards) != 0 {
		t.Fatal("expected no card results for empty query")
	}
}

func TestSearchSkipsUnchangedQuery(t *testing.T) {
	ix := NewIndex()
	ix.Sync(sampleWorkspace(t), 1)
	if !ix.Search("no") {
		t.Fatal("expected first search to run")
	}
	if ix.Search(" NO ") {
		t.Fatal("expected equal query to be skipped")
	}
	if ix.Sync(sampleWorkspace(t), 1) {
		t.Fatal("expected same revision to skip rebuild")
	}
	if !ix.Sync(sampleWorkspace(t), 2) || !ix.Search("no") {
		t.Fatal("expected rebuild to invalidate the last query")
	}
}

func TestCardAndBoardMatches(t *testing.T) {
	ix := NewIndex()
	ix.Sync(sampleWorkspace(t), 1)
	ix.Search("n")
	if len(ix.Results().Cards) != 0 || len(ix.Results().Boards) != 0 {
		t.Fatal("expected entity search to need two characters")
	}
	if len(ix.Results().Commands) == 0 {
		t.Fatal("expected commands to still filter on one character")
	}

	ix.Search("no")
	var labels []string
	for _, m := range ix.Results().Cards {
		labels = append(labels, m.Label())
	}
	want := []string{
		"Triage — Matched in Comments",
		"Write notes — Matched in Name",
	}
	if !slices.Equal(labels, want) {
		t.Fatalf("unexpected card labels %v", labels)
	}
	boards := ix.Results().Boards
	if len(boards) != 1 || boards[0].Name != "Notebook" || boards[0].Field != FieldName {
		t.Fatalf("unexpected boards %#v", boards)
	}

	ix.Search("backend")
	cards := ix.Results().Cards
	if len(cards) != 1 || cards[0].Field != FieldTags || cards[0].CardID != (domain.ID{Hi: 2, Lo: 2}) {
		t.Fatalf("unexpected tag match %#v", cards)
	}
}

func TestSearchMonotonicity(t *testing.T) {
	ws := sampleWorkspace(t)
	queries := []string{"n", "ne", "new", "new ", "new c"}
	for _, full := range []string{"release notes", "change current card", "se"} {
		queries = append(queries, full)
	}
	for _, q2 := range queries {
		for i := 1; i < len(q2); i++ {
			q1 := q2[:i]
			a, b := NewIndex(), NewIndex()
			a.Sync(ws, 1)
			b.Sync(ws, 1)
			a.Search(q1)
			b.Search(q2)
			for _, c := range b.Results().Commands {
				if !slices.Contains(a.Results().Commands, c) {
					t.Fatalf("command %s matched %q but not %q", c, q2, q1)
				}
			}
			if len([]rune(strings.TrimSpace(q1))) < MinEntityQuery {
				continue
			}
			for _, m := range b.Results().Cards {
				if !slices.ContainsFunc(a.Results().Cards, func(o Match) bool { return o.CardID == m.CardID }) {
					t.Fatalf("card %s matched %q but not %q", m.Name, q2, q1)
				}
			}
		}
	}
}

func TestCursorWrapsAndResets(t *testing.T) {
	ix := NewIndex()
	ix.Search("new")
	ix.Move(CommandList, -1)
	if c, ok := ix.SelectedCommand(); !ok || c != NewCard {
		t.Fatalf("expected wrap to New Card, got %v", c)
	}
	ix.Search("quit")
	if c, ok := ix.SelectedCommand(); !ok || c != Quit {
		t.Fatalf("expected cursor reset, got %v", c)
	}
	if ix.SetCursor(CommandList, 3) {
		t.Fatal("expected out-of-range cursor to be rejected")
	}
	if _, ok := ix.SelectedCard(); ok {
		t.Fatal("expected no card selection")
	}
}
