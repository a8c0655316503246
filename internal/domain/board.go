package domain

import (
	"slices"
	"strings"
	"time"
)

type Board struct {
	ID          ID
	Name        string
	Description string
	Cards       []Card
}

// NewBoard validates and constructs a board.
func NewBoard(id ID, name, description string) (Board, error) {
	name = strings.TrimSpace(name)
	if id.IsZero() {
		return Board{}, ErrInvalidID
	}
	if name == "" {
		return Board{}, ErrInvalidName
	}
	return Board{
		ID:          id,
		Name:        name,
		Description: description,
		Cards:       []Card{},
	}, nil
}

// Rename updates the board name.
func (b *Board) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	b.Name = name
	return nil
}

// CardIndex returns -1 when the card is not on this board.
func (b Board) CardIndex(id ID) int {
	for i := range b.Cards {
		if b.Cards[i].ID == id {
			return i
		}
	}
	return -1
}

// Card returns the card with id.
func (b Board) Card(id ID) (Card, bool) {
	idx := b.CardIndex(id)
	if idx < 0 {
		return Card{}, false
	}
	return b.Cards[idx], true
}

// InsertCard places card at pos, where pos may equal len(Cards).
func (b *Board) InsertCard(pos int, card Card) error {
	if pos < 0 || pos > len(b.Cards) {
		return ErrInvalidPosition
	}
	if b.CardIndex(card.ID) >= 0 {
		return ErrDuplicateCardID
	}
	b.Cards = slices.Insert(b.Cards, pos, card)
	return nil
}

// RemoveCardAt removes and returns the card at pos.
func (b *Board) RemoveCardAt(pos int) (Card, error) {
	if pos < 0 || pos >= len(b.Cards) {
		return Card{}, ErrInvalidPosition
	}
	card := b.Cards[pos]
	b.Cards = slices.Delete(b.Cards, pos, pos+1)
	return card, nil
}

// MoveCard reorders within the board and touches the moved card.
func (b *Board) MoveCard(from, to int, now time.Time) error {
	if from < 0 || from >= len(b.Cards) || to < 0 || to >= len(b.Cards) {
		return ErrInvalidPosition
	}
	card := b.Cards[from]
	card.Touch(now)
	b.Cards = slices.Delete(b.Cards, from, from+1)
	b.Cards = slices.Insert(b.Cards, to, card)
	return nil
}

// Clone returns a deep copy of b.
func (b Board) Clone() Board {
	out := b
	out.Cards = make([]Card, len(b.Cards))
	for i := range b.Cards {
		out.Cards[i] = b.Cards[i].Clone()
	}
	return out
}

// Validate checks the board and its cards, rejecting duplicate card IDs.
func (b Board) Validate() error {
	if b.ID.IsZero() {
		return ErrInvalidID
	}
	if strings.TrimSpace(b.Name) == "" {
		return ErrInvalidName
	}
	seen := map[ID]struct{}{}
	for _, card := range b.Cards {
		if err := card.Validate(); err != nil {
			return err
		}
		if _, ok := seen[card.ID]; ok {
			return ErrDuplicateCardID
		}
		seen[card.ID] = struct{}{}
	}
	return nil
}
