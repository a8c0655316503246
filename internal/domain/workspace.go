package domain

import "slices"

// Workspace is the ordered set of boards a save file holds.
type Workspace struct {
	Boards []Board
}

// BoardIndex returns -1 when id is unknown.
func (w Workspace) BoardIndex(id ID) int {
	for i := range w.Boards {
		if w.Boards[i].ID == id {
			return i
		}
	}
	return -1
}

// Board returns the board with id.
func (w Workspace) Board(id ID) (Board, bool) {
	idx := w.BoardIndex(id)
	if idx < 0 {
		return Board{}, false
	}
	return w.Boards[idx], true
}

// FindCard locates a card across all boards.
func (w Workspace) FindCard(id ID) (boardIdx, cardIdx int, ok bool) {
	for bi := range w.Boards {
		if ci := w.Boards[bi].CardIndex(id); ci >= 0 {
			return bi, ci, true
		}
	}
	return -1, -1, false
}

// Card returns one card, or ErrNotFound.
func (w Workspace) Card(boardID, cardID ID) (Card, error) {
	board, ok := w.Board(boardID)
	if !ok {
		return Card{}, ErrBoardNotFound
	}
	card, ok := board.Card(cardID)
	if !ok {
		return Card{}, ErrCardNotFound
	}
	return card, nil
}

// CardCount returns the number of cards across all boards.
func (w Workspace) CardCount() int {
	total := 0
	for _, b := range w.Boards {
		total += len(b.Cards)
	}
	return total
}

// InsertBoard places board at pos.
func (w *Workspace) InsertBoard(pos int, board Board) error {
	if pos < 0 || pos > len(w.Boards) {
		return ErrInvalidPosition
	}
	if w.BoardIndex(board.ID) >= 0 {
		return ErrDuplicateBoardID
	}
	w.Boards = slices.Insert(w.Boards, pos, board)
	return nil
}

// RemoveBoardAt removes and returns the board at pos.
func (w *Workspace) RemoveBoardAt(pos int) (Board, error) {
	if pos < 0 || pos >= len(w.Boards) {
		return Board{}, ErrInvalidPosition
	}
	board := w.Boards[pos]
	w.Boards = slices.Delete(w.Boards, pos, pos+1)
	return board, nil
}

// Clone returns a deep copy of w.
func (w Workspace) Clone() Workspace {
	out := Workspace{Boards: make([]Board, len(w.Boards))}
	for i := range w.Boards {
		out.Boards[i] = w.Boards[i].Clone()
	}
	return out
}

// Validate enforces unique board ids and each board's own invariants.
func (w Workspace) Validate() error {
	seen := map[ID]struct{}{}
	for _, board := range w.Boards {
		if _, ok := seen[board.ID]; ok {
			return ErrDuplicateBoardID
		}
		seen[board.ID] = struct{}{}
		if err := board.Validate(); err != nil {
			return err
		}
	}
	return nil
}
