package app

import (
	"fmt"
	"time"

	"github.com/evanschultz/kanban/internal/domain"
)

// DefaultHistoryLimit bounds the undo log.
const DefaultHistoryLimit = 500

// ChangeKind identifies one model-level delta.
type ChangeKind int

// ChangeAddBoard and related constants enumerate the delta kinds.
const (
	ChangeAddBoard ChangeKind = iota
	ChangeRemoveBoard
	ChangeAddCard
	ChangeRemoveCard
	ChangeMoveCardWithinBoard
	ChangeMoveCardBetweenBoards
	ChangeSetCard
	ChangeSetBoard
)

// String returns the log name of k.
func (k ChangeKind) String() string {
	switch k {
	case ChangeAddBoard:
		return "add_board"
	case ChangeRemoveBoard:
		return "remove_board"
	case ChangeAddCard:
		return "add_card"
	case ChangeRemoveCard:
		return "remove_card"
	case ChangeMoveCardWithinBoard:
		return "move_card_within_board"
	case ChangeMoveCardBetweenBoards:
		return "move_card_between_boards"
	case ChangeSetCard:
		return "set_card"
	case ChangeSetBoard:
		return "set_board"
	default:
		return fmt.Sprintf("change(%d)", int(k))
	}
}

// Change is a self-contained delta. It carries entity values, never pointers
// into the workspace, so the log stays valid after any later mutation.
//
// Field use per kind:
//   - Add/RemoveBoard: Index, Board
//   - Add/RemoveCard: BoardID, Index, Card
//   - MoveCardWithinBoard: BoardID, From, To, Card (placed), PrevCard (removed)
//   - MoveCardBetweenBoards: BoardID (src), From, ToBoardID (dst), To, Card, PrevCard
//   - SetCard: BoardID, Card (new), PrevCard (old)
//   - SetBoard: Board (new), PrevBoard (old); cards are not touched
type Change struct {
	Kind      ChangeKind
	BoardID   domain.ID
	ToBoardID domain.ID
	Index     int
	From      int
	To        int
	Board     domain.Board
	PrevBoard domain.Board
	Card      domain.Card
	PrevCard  domain.Card
}

// Inverse returns the delta that restores the state before c.
func (c Change) Inverse() Change {
	inv := c
	switch c.Kind {
	case ChangeAddBoard:
		inv.Kind = ChangeRemoveBoard
	case ChangeRemoveBoard:
		inv.Kind = ChangeAddBoard
	case ChangeAddCard:
		inv.Kind = ChangeRemoveCard
	case ChangeRemoveCard:
		inv.Kind = ChangeAddCard
	case ChangeMoveCardWithinBoard:
		inv.From, inv.To = c.To, c.From
		inv.Card, inv.PrevCard = c.PrevCard, c.Card
	case ChangeMoveCardBetweenBoards:
		inv.BoardID, inv.ToBoardID = c.ToBoardID, c.BoardID
		inv.From, inv.To = c.To, c.From
		inv.Card, inv.PrevCard = c.PrevCard, c.Card
	case ChangeSetCard:
		inv.Card, inv.PrevCard = c.PrevCard, c.Card
	case ChangeSetBoard:
		inv.Board, inv.PrevBoard = c.PrevBoard, c.Board
	}
	return inv
}

// applyChange mutates ws. Every precondition is checked before the first
// write so a failed change leaves ws untouched.
func applyChange(ws *domain.Workspace, c Change) error {
	switch c.Kind {
	case ChangeAddBoard:
		return ws.InsertBoard(c.Index, c.Board.Clone())
	case ChangeRemoveBoard:
		if c.Index < 0 || c.Index >= len(ws.Boards) || ws.Boards[c.Index].ID != c.Board.ID {
			return domain.ErrBoardNotFound
		}
		_, err := ws.RemoveBoardAt(c.Index)
		return err
	case ChangeAddCard:
		bi := ws.BoardIndex(c.BoardID)
		if bi < 0 {
			return domain.ErrBoardNotFound
		}
		return ws.Boards[bi].InsertCard(c.Index, c.Card.Clone())
	case ChangeRemoveCard:
		bi, err := cardAt(ws, c.BoardID, c.Index, c.Card.ID)
		if err != nil {
			return err
		}
		_, err = ws.Boards[bi].RemoveCardAt(c.Index)
		return err
	case ChangeMoveCardWithinBoard:
		bi, err := cardAt(ws, c.BoardID, c.From, c.PrevCard.ID)
		if err != nil {
			return err
		}
		board := &ws.Boards[bi]
		if c.To < 0 || c.To >= len(board.Cards) {
			return domain.ErrInvalidPosition
		}
		if _, err := board.RemoveCardAt(c.From); err != nil {
			return err
		}
		return board.InsertCard(c.To, c.Card.Clone())
	case ChangeMoveCardBetweenBoards:
		src, err := cardAt(ws, c.BoardID, c.From, c.PrevCard.ID)
		if err != nil {
			return err
		}
		dst := ws.BoardIndex(c.ToBoardID)
		if dst < 0 {
			return domain.ErrBoardNotFound
		}
		if src == dst {
			return domain.ErrInvalidPosition
		}
		if c.To < 0 || c.To > len(ws.Boards[dst].Cards) {
			return domain.ErrInvalidPosition
		}
		if ws.Boards[dst].CardIndex(c.Card.ID) >= 0 {
			return domain.ErrDuplicateCardID
		}
		if _, err := ws.Boards[src].RemoveCardAt(c.From); err != nil {
			return err
		}
		return ws.Boards[dst].InsertCard(c.To, c.Card.Clone())
	case ChangeSetCard:
		bi := ws.BoardIndex(c.BoardID)
		if bi < 0 {
			return domain.ErrBoardNotFound
		}
		ci := ws.Boards[bi].CardIndex(c.Card.ID)
		if ci < 0 {
			return domain.ErrCardNotFound
		}
		ws.Boards[bi].Cards[ci] = c.Card.Clone()
		return nil
	case ChangeSetBoard:
		bi := ws.BoardIndex(c.Board.ID)
		if bi < 0 {
			return domain.ErrBoardNotFound
		}
		ws.Boards[bi].Name = c.Board.Name
		ws.Boards[bi].Description = c.Board.Description
		return nil
	default:
		return fmt.Errorf("%w: unknown change kind %d", domain.ErrInputValidation, int(c.Kind))
	}
}

func cardAt(ws *domain.Workspace, boardID domain.ID, pos int, cardID domain.ID) (int, error) {
	bi := ws.BoardIndex(boardID)
	if bi < 0 {
		return -1, domain.ErrBoardNotFound
	}
	cards := ws.Boards[bi].Cards
	if pos < 0 || pos >= len(cards) {
		return -1, domain.ErrInvalidPosition
	}
	if cards[pos].ID != cardID {
		return -1, domain.ErrCardNotFound
	}
	return bi, nil
}

// Entry is one undoable user action.
type Entry struct {
	Label   string
	Forward Change
	Inverse Change
	At      time.Time
}

// History is the undo log. entries[:head] are applied; entries[head:] are redoable.
type History struct {
	entries []Entry
	head    int
	limit   int
}

// NewHistory returns a log keeping at most limit change sets.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Record truncates anything after head, appends e and advances head.
func (h *History) Record(e Entry) {
	h.entries = append(h.entries[:h.head], e)
	h.head++
	if overflow := len(h.entries) - h.limit; overflow > 0 {
		h.entries = append([]Entry(nil), h.entries[overflow:]...)
		h.head -= overflow
	}
}

// CanUndo reports whether a change set precedes the head.
func (h *History) CanUndo() bool {
	return h.head > 0
}

// CanRedo reports whether an undone change set follows the head.
func (h *History) CanRedo() bool {
	return h.head < len(h.entries)
}

// Len returns the number of recorded change sets.
func (h *History) Len() int {
	return len(h.entries)
}

// Head returns the number of applied change sets.
func (h *History) Head() int {
	return h.head
}

// Clear forgets every change set.
func (h *History) Clear() {
	h.entries = nil
	h.head = 0
}

func (h *History) peekUndo() (Entry, bool) {
	if !h.CanUndo() {
		return Entry{}, false
	}
	return h.entries[h.head-1], true
}

func (h *History) peekRedo() (Entry, bool) {
	if !h.CanRedo() {
		return Entry{}, false
	}
	return h.entries[h.head], true
}
