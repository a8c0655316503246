package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/evanschultz/kanban/internal/domain"
)

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() domain.ID

// Clock returns the current time.
type Clock func() time.Time

// Editor owns the workspace and funnels every mutation through one apply path
// that records an undo entry.
type Editor struct {
	ws       domain.Workspace
	history  *History
	clock    Clock
	idGen    IDGenerator
	revision uint64
}

// NewEditor constructs an editor over a copy of ws.
func NewEditor(ws domain.Workspace, idGen IDGenerator, clock Clock) (*Editor, error) {
	if idGen == nil {
		idGen = domain.NewID
	}
	if clock == nil {
		clock = time.Now
	}
	if err := ws.Validate(); err != nil {
		return nil, err
	}
	return &Editor{
		ws:      ws.Clone(),
		history: NewHistory(DefaultHistoryLimit),
		clock:   clock,
		idGen:   idGen,
	}, nil
}

// Boards exposes the live board slice. Callers must not mutate it.
func (e *Editor) Boards() []domain.Board {
	return e.ws.Boards
}

// Snapshot returns a deep copy safe to hand to another goroutine.
func (e *Editor) Snapshot() domain.Workspace {
	return e.ws.Clone()
}

// Revision increases on every applied change, undo, redo and replace.
func (e *Editor) Revision() uint64 {
	return e.revision
}

// History exposes the undo log.
func (e *Editor) History() *History {
	return e.history
}

// CanUndo reports whether Undo has a change to revert.
func (e *Editor) CanUndo() bool {
	return e.history.CanUndo()
}

// CanRedo reports whether Redo has a change to reapply.
func (e *Editor) CanRedo() bool {
	return e.history.CanRedo()
}

// Board returns the board with id.
func (e *Editor) Board(id domain.ID) (domain.Board, bool) {
	return e.ws.Board(id)
}

// Card returns one card, or ErrNotFound.
func (e *Editor) Card(boardID, cardID domain.ID) (domain.Card, error) {
	return e.ws.Card(boardID, cardID)
}

// Replace swaps in a loaded workspace and clears the undo log.
func (e *Editor) Replace(ws domain.Workspace) error {
	if err := ws.Validate(); err != nil {
		return err
	}
	e.ws = ws.Clone()
	e.history.Clear()
	e.revision++
	return nil
}

// AddBoard appends a new board.
func (e *Editor) AddBoard(name, description string) (domain.Board, error) {
	return e.AddBoardAt(len(e.ws.Boards), name, description)
}

// AddBoardAt inserts a new board at pos.
func (e *Editor) AddBoardAt(pos int, name, description string) (domain.Board, error) {
	board, err := domain.NewBoard(e.idGen(), name, description)
	if err != nil {
		return domain.Board{}, err
	}
	err = e.apply("add board "+board.Name, Change{Kind: ChangeAddBoard, Index: pos, Board: board})
	if err != nil {
		return domain.Board{}, err
	}
	return board, nil
}

// DeleteBoard removes a board together with its cards.
func (e *Editor) DeleteBoard(boardID domain.ID) error {
	idx := e.ws.BoardIndex(boardID)
	if idx < 0 {
		return domain.ErrBoardNotFound
	}
	board := e.ws.Boards[idx].Clone()
	return e.apply("delete board "+board.Name, Change{Kind: ChangeRemoveBoard, Index: idx, Board: board})
}

// UpdateBoard edits name and description.
func (e *Editor) UpdateBoard(boardID domain.ID, name, description string) error {
	idx := e.ws.BoardIndex(boardID)
	if idx < 0 {
		return domain.ErrBoardNotFound
	}
	prev := e.ws.Boards[idx]
	next := domain.Board{ID: prev.ID, Name: prev.Name, Description: description}
	if err := next.Rename(name); err != nil {
		return err
	}
	if next.Name == prev.Name && next.Description == prev.Description {
		return nil
	}
	return e.apply("edit board "+next.Name, Change{
		Kind:      ChangeSetBoard,
		Board:     next,
		PrevBoard: domain.Board{ID: prev.ID, Name: prev.Name, Description: prev.Description},
	})
}

// AddCard appends a new card to the end of a board.
func (e *Editor) AddCard(boardID domain.ID, in domain.CardInput) (domain.Card, error) {
	board, ok := e.ws.Board(boardID)
	if !ok {
		return domain.Card{}, domain.ErrBoardNotFound
	}
	return e.AddCardAt(boardID, len(board.Cards), in)
}

// AddCardAt inserts a new card at pos in boardID.
func (e *Editor) AddCardAt(boardID domain.ID, pos int, in domain.CardInput) (domain.Card, error) {
	if e.ws.BoardIndex(boardID) < 0 {
		return domain.Card{}, domain.ErrBoardNotFound
	}
	card, err := domain.NewCard(e.idGen(), in, e.clock())
	if err != nil {
		return domain.Card{}, err
	}
	err = e.apply("add card "+card.Name, Change{Kind: ChangeAddCard, BoardID: boardID, Index: pos, Card: card})
	if err != nil {
		return domain.Card{}, err
	}
	return card, nil
}

// DeleteCard removes a card as one undoable change.
func (e *Editor) DeleteCard(boardID, cardID domain.ID) error {
	bi := e.ws.BoardIndex(boardID)
	if bi < 0 {
		return domain.ErrBoardNotFound
	}
	ci := e.ws.Boards[bi].CardIndex(cardID)
	if ci < 0 {
		return domain.ErrCardNotFound
	}
	card := e.ws.Boards[bi].Cards[ci].Clone()
	return e.apply("delete card "+card.Name, Change{Kind: ChangeRemoveCard, BoardID: boardID, Index: ci, Card: card})
}

// MoveCardWithinBoard reorders one card. Moving onto itself is a no-op.
func (e *Editor) MoveCardWithinBoard(boardID domain.ID, from, to int) error {
	bi := e.ws.BoardIndex(boardID)
	if bi < 0 {
		return domain.ErrBoardNotFound
	}
	cards := e.ws.Boards[bi].Cards
	if from < 0 || from >= len(cards) || to < 0 || to >= len(cards) {
		return domain.ErrInvalidPosition
	}
	if from == to {
		return nil
	}
	prev := cards[from].Clone()
	moved := prev.Clone()
	moved.Touch(e.clock())
	return e.apply("move card "+prev.Name, Change{
		Kind:     ChangeMoveCardWithinBoard,
		BoardID:  boardID,
		From:     from,
		To:       to,
		Card:     moved,
		PrevCard: prev,
	})
}

// MoveCardBetweenBoards moves the card at srcPos of src to dstPos of dst,
// where dstPos may equal the destination length.
func (e *Editor) MoveCardBetweenBoards(srcID domain.ID, srcPos int, dstID domain.ID, dstPos int) error {
	src := e.ws.BoardIndex(srcID)
	dst := e.ws.BoardIndex(dstID)
	if src < 0 || dst < 0 {
		return domain.ErrBoardNotFound
	}
	if src == dst {
		return e.MoveCardWithinBoard(srcID, srcPos, dstPos)
	}
	if srcPos < 0 || srcPos >= len(e.ws.Boards[src].Cards) {
		return domain.ErrInvalidPosition
	}
	if dstPos < 0 || dstPos > len(e.ws.Boards[dst].Cards) {
		return domain.ErrInvalidPosition
	}
	prev := e.ws.Boards[src].Cards[srcPos].Clone()
	moved := prev.Clone()
	moved.Touch(e.clock())
	return e.apply("move card "+prev.Name, Change{
		Kind:      ChangeMoveCardBetweenBoards,
		BoardID:   srcID,
		From:      srcPos,
		ToBoardID: dstID,
		To:        dstPos,
		Card:      moved,
		PrevCard:  prev,
	})
}

// UpdateCard replaces the editable content of a card with edited. Identity and
// Created come from the stored card; Completed follows the status rule.
// An edit that changes nothing records no entry.
func (e *Editor) UpdateCard(boardID domain.ID, edited domain.Card) error {
	prev, err := e.ws.Card(boardID, edited.ID)
	if err != nil {
		return err
	}
	next := prev.Clone()
	now := e.clock()
	if err := next.Rename(edited.Name, now); err != nil {
		return err
	}
	if err := next.SetStatus(edited.Status, now); err != nil {
		return err
	}
	if err := next.SetPriority(edited.Priority, now); err != nil {
		return err
	}
	next.SetDescription(edited.Description, now)
	next.SetDue(edited.Due, now)
	next.SetTags(edited.Tags, now)
	next.SetComments(edited.Comments, now)
	if next.SameContent(prev) {
		return nil
	}
	return e.setCard("edit card "+next.Name, boardID, prev, next)
}

// SetCardStatus changes status, keeping the completed date in step.
func (e *Editor) SetCardStatus(boardID, cardID domain.ID, status domain.Status) error {
	prev, err := e.ws.Card(boardID, cardID)
	if err != nil {
		return err
	}
	if prev.Status == status {
		return nil
	}
	next := prev.Clone()
	if err := next.SetStatus(status, e.clock()); err != nil {
		return err
	}
	return e.setCard(fmt.Sprintf("set %s status %s", next.Name, strings.ToLower(string(status))), boardID, prev, next)
}

// SetCardPriority changes priority as one undoable change.
func (e *Editor) SetCardPriority(boardID, cardID domain.ID, priority domain.Priority) error {
	prev, err := e.ws.Card(boardID, cardID)
	if err != nil {
		return err
	}
	if prev.Priority == priority {
		return nil
	}
	next := prev.Clone()
	if err := next.SetPriority(priority, e.clock()); err != nil {
		return err
	}
	return e.setCard(fmt.Sprintf("set %s priority %s", next.Name, strings.ToLower(string(priority))), boardID, prev, next)
}

func (e *Editor) setCard(label string, boardID domain.ID, prev, next domain.Card) error {
	if err := next.Validate(); err != nil {
		return err
	}
	return e.apply(label, Change{Kind: ChangeSetCard, BoardID: boardID, Card: next, PrevCard: prev})
}

// Undo reverts the entry at head and returns its label.
func (e *Editor) Undo() (string, error) {
	entry, ok := e.history.peekUndo()
	if !ok {
		return "", ErrNothingToUndo
	}
	if err := applyChange(&e.ws, entry.Inverse); err != nil {
		return "", fmt.Errorf("undo %s: %w", entry.Label, err)
	}
	e.history.head--
	e.revision++
	return entry.Label, nil
}

// Redo replays the entry after head and returns its label.
func (e *Editor) Redo() (string, error) {
	entry, ok := e.history.peekRedo()
	if !ok {
		return "", ErrNothingToRedo
	}
	if err := applyChange(&e.ws, entry.Forward); err != nil {
		return "", fmt.Errorf("redo %s: %w", entry.Label, err)
	}
	e.history.head++
	e.revision++
	return entry.Label, nil
}

func (e *Editor) apply(label string, forward Change) error {
	if err := applyChange(&e.ws, forward); err != nil {
		return err
	}
	e.history.Record(Entry{
		Label:   label,
		Forward: forward,
		Inverse: forward.Inverse(),
		At:      e.clock(),
	})
	e.revision++
	return nil
}
