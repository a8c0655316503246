package domain

// VisibleBoard is one column of the on-screen window.
type VisibleBoard struct {
	BoardID ID
	CardIDs []ID
}

// Viewport tracks which page of boards, and which page of cards per board,
// is on screen. It holds offsets only, never board or card data.
type Viewport struct {
	BoardsPerPage int
	CardsPerBoard int

	boardOffset int
	cardOffsets map[ID]int
}

// NewViewport returns a viewport showing at least one board and card per page.
func NewViewport(boardsPerPage, cardsPerBoard int) Viewport {
	return Viewport{
		BoardsPerPage: max(1, boardsPerPage),
		CardsPerBoard: max(1, cardsPerBoard),
		cardOffsets:   map[ID]int{},
	}
}

// Reset scrolls back to the first board and card.
func (v *Viewport) Reset() {
	v.boardOffset = 0
	v.cardOffsets = map[ID]int{}
}

// BoardOffset returns the index of the first visible board.
func (v Viewport) BoardOffset() int {
	return v.boardOffset
}

// CardOffset returns the first visible card index in boardID.
func (v Viewport) CardOffset(boardID ID) int {
	return v.cardOffsets[boardID]
}

// Reveal scrolls the window so boardID (and cardID, when non-zero) is inside
// it. It reports whether any offset moved.
func (v *Viewport) Reveal(boards []Board, boardID, cardID ID) bool {
	if v.cardOffsets == nil {
		v.cardOffsets = map[ID]int{}
	}
	boardsPerPage := max(1, v.BoardsPerPage)
	cardsPerBoard := max(1, v.CardsPerBoard)
	changed := false
	bi := -1
	for i := range boards {
		if boards[i].ID == boardID {
			bi = i
			break
		}
	}
	if bi < 0 {
		return false
	}
	switch {
	case bi < v.boardOffset:
		v.boardOffset = bi
		changed = true
	case bi >= v.boardOffset+boardsPerPage:
		v.boardOffset = bi - boardsPerPage + 1
		changed = true
	}
	if cardID.IsZero() {
		return changed
	}
	ci := boards[bi].CardIndex(cardID)
	if ci < 0 {
		return changed
	}
	off := v.cardOffsets[boardID]
	switch {
	case ci < off:
		v.cardOffsets[boardID] = ci
		changed = true
	case ci >= off+cardsPerBoard:
		v.cardOffsets[boardID] = ci - cardsPerBoard + 1
		changed = true
	}
	return changed
}

// Project computes the visible window over boards.
func (v Viewport) Project(boards []Board) []VisibleBoard {
	boardsPerPage := max(1, v.BoardsPerPage)
	cardsPerBoard := max(1, v.CardsPerBoard)
	start := clampOffset(v.boardOffset, len(boards), boardsPerPage)
	end := min(len(boards), start+boardsPerPage)
	out := make([]VisibleBoard, 0, end-start)
	for _, board := range boards[start:end] {
		cardStart := clampOffset(v.cardOffsets[board.ID], len(board.Cards), cardsPerBoard)
		cardEnd := min(len(board.Cards), cardStart+cardsPerBoard)
		ids := make([]ID, 0, cardEnd-cardStart)
		for _, card := range board.Cards[cardStart:cardEnd] {
			ids = append(ids, card.ID)
		}
		out = append(out, VisibleBoard{BoardID: board.ID, CardIDs: ids})
	}
	return out
}

func clampOffset(offset, total, page int) int {
	limit := max(0, total-page)
	if offset > limit {
		return limit
	}
	if offset < 0 {
		return 0
	}
	return offset
}
