package app

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/evanschultz/kanban/internal/domain"
)

// KanbanVersion is written into every save file.
const KanbanVersion = "0.4.0"

// exportDateLayout renders export_date as DD-MM-YYYY.
const exportDateLayout = "02-01-2006"

// SaveFile is the on-disk save record.
type SaveFile struct {
	KanbanVersion string      `json:"kanban_version"`
	ExportDate    string      `json:"export_date"`
	ExportUnix    int64       `json:"export_unix"`
	DateFormat    string      `json:"date_format,omitempty"`
	Boards        []SaveBoard `json:"boards"`
}

// SaveBoard is one persisted board.
type SaveBoard struct {
	ID          domain.ID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Cards       []SaveCard `json:"cards"`
}

// SaveCard is one persisted card. Dates are strings in the save's
// date_format, or domain.FieldNotSet.
type SaveCard struct {
	ID            domain.ID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	DateCreated   string    `json:"date_created"`
	DateModified  string    `json:"date_modified"`
	DateDue       string    `json:"date_due"`
	DateCompleted string    `json:"date_completed"`
	Priority      string    `json:"priority"`
	CardStatus    string    `json:"card_status"`
	Tags          []string  `json:"tags"`
	Comments      []string  `json:"comments"`
}

// Save is a decoded save file.
type Save struct {
	Version    string
	ExportedAt time.Time
	Workspace  domain.Workspace
}

// EncodeSave serializes ws. Timestamps always carry a time component so the
// round trip is exact whatever date format the user prefers.
func EncodeSave(ws domain.Workspace, format domain.DateTimeFormat, now time.Time) ([]byte, error) {
	if err := ws.Validate(); err != nil {
		return nil, fmt.Errorf("encode save: %w", err)
	}
	format = format.WithTime()
	out := SaveFile{
		KanbanVersion: KanbanVersion,
		ExportDate:    now.Format(exportDateLayout),
		ExportUnix:    now.Unix(),
		DateFormat:    string(format),
		Boards:        make([]SaveBoard, 0, len(ws.Boards)),
	}
	for _, board := range ws.Boards {
		sb := SaveBoard{
			ID:          board.ID,
			Name:        board.Name,
			Description: board.Description,
			Cards:       make([]SaveCard, 0, len(board.Cards)),
		}
		for _, card := range board.Cards {
			created, modified := card.Created, card.Modified
			sb.Cards = append(sb.Cards, SaveCard{
				ID:            card.ID,
				Name:          card.Name,
				Description:   card.Description,
				DateCreated:   format.Format(&created),
				DateModified:  format.Format(&modified),
				DateDue:       format.Format(card.Due),
				DateCompleted: format.Format(card.Completed),
				Priority:      string(card.Priority),
				CardStatus:    string(card.Status),
				Tags:          nonNil(card.Tags),
				Comments:      nonNil(card.Comments),
			})
		}
		out.Boards = append(out.Boards, sb)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode save: %w", err)
	}
	return data, nil
}

// DecodeSave parses a save file. Dates are read in the file's own date_format
// when it names one; older files without it fall back to format first and then
// every known layout. Unknown JSON keys are tolerated; duplicate ids and
// unknown status or priority tokens are rejected.
func DecodeSave(data []byte, format domain.DateTimeFormat) (Save, error) {
	var in SaveFile
	if err := json.Unmarshal(data, &in); err != nil {
		return Save{}, fmt.Errorf("decode save: %w: %v", domain.ErrInputValidation, err)
	}
	parse := func(raw string) (*time.Time, error) {
		return domain.ParseDateTime(raw, format)
	}
	if in.DateFormat != "" {
		recorded, err := domain.ParseDateTimeFormat(in.DateFormat)
		if err != nil {
			return Save{}, fmt.Errorf("decode save: %w", err)
		}
		parse = func(raw string) (*time.Time, error) {
			return domain.ParseDateTimeExact(raw, recorded)
		}
	}
	ws := domain.Workspace{Boards: make([]domain.Board, 0, len(in.Boards))}
	for _, sb := range in.Boards {
		board, err := domain.NewBoard(sb.ID, sb.Name, sb.Description)
		if err != nil {
			return Save{}, fmt.Errorf("decode save: board %q: %w", sb.Name, err)
		}
		for _, sc := range sb.Cards {
			card, err := decodeCard(sc, parse)
			if err != nil {
				return Save{}, fmt.Errorf("decode save: card %q: %w", sc.Name, err)
			}
			board.Cards = append(board.Cards, card)
		}
		ws.Boards = append(ws.Boards, board)
	}
	if err := ws.Validate(); err != nil {
		return Save{}, fmt.Errorf("decode save: %w", err)
	}
	out := Save{Version: in.KanbanVersion, Workspace: ws}
	switch {
	case in.ExportUnix > 0:
		out.ExportedAt = time.Unix(in.ExportUnix, 0).UTC()
	case in.ExportDate != "":
		if ts, err := time.Parse(exportDateLayout, in.ExportDate); err == nil {
			out.ExportedAt = ts
		}
	}
	return out, nil
}

func decodeCard(sc SaveCard, parse func(string) (*time.Time, error)) (domain.Card, error) {
	status, err := domain.ParseStatus(sc.CardStatus)
	if err != nil {
		return domain.Card{}, err
	}
	priority, err := domain.ParsePriority(sc.Priority)
	if err != nil {
		return domain.Card{}, err
	}
	created, err := parse(sc.DateCreated)
	if err != nil {
		return domain.Card{}, err
	}
	if created == nil {
		return domain.Card{}, fmt.Errorf("%w: missing date_created", domain.ErrInvalidDate)
	}
	modified, err := parse(sc.DateModified)
	if err != nil {
		return domain.Card{}, err
	}
	due, err := parse(sc.DateDue)
	if err != nil {
		return domain.Card{}, err
	}
	completed, err := parse(sc.DateCompleted)
	if err != nil {
		return domain.Card{}, err
	}
	card, err := domain.NewCard(sc.ID, domain.CardInput{
		Name:        sc.Name,
		Description: sc.Description,
		Priority:    priority,
		Due:         due,
		Tags:        sc.Tags,
		Comments:    sc.Comments,
	}, *created)
	if err != nil {
		return domain.Card{}, err
	}
	card.Status = status
	card.Modified = card.Created
	if modified != nil && modified.After(card.Created) {
		card.Modified = *modified
	}
	switch {
	case status != domain.StatusComplete:
		card.Completed = nil
	case completed != nil:
		card.Completed = completed
	default:
		ts := card.Modified
		card.Completed = &ts
	}
	return card, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
