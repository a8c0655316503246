package palette

import (
	"strings"

	"github.com/evanschultz/kanban/internal/domain"
)

// MinEntityQuery is the shortest query that searches cards and boards.
const MinEntityQuery = 2

// Field names the card or board field a query matched.
type Field int

const (
	FieldName Field = iota
	FieldDescription
	FieldTags
	FieldComments
)

func (f Field) String() string {
	switch f {
	case FieldName:
		return "Name"
	case FieldDescription:
		return "Description"
	case FieldTags:
		return "Tags"
	case FieldComments:
		return "Comments"
	}
	return "Unknown"
}

// List selects one of the three result lists.
type List int

const (
	CommandList List = iota
	CardList
	BoardList
)

// Match is a card or board hit. CardID is zero for boards.
type Match struct {
	BoardID domain.ID
	CardID  domain.ID
	Name    string
	Field   Field
}

// Label renders "Name — Matched in Field".
func (m Match) Label() string {
	return m.Name + " — Matched in " + m.Field.String()
}

// Results holds the three ordered result lists.
type Results struct {
	Commands []Command
	Cards    []Match
	Boards   []Match
}

// Len returns the number of matches in list l.
func (r Results) Len(l List) int {
	switch l {
	case CommandList:
		return len(r.Commands)
	case CardList:
		return len(r.Cards)
	case BoardList:
		return len(r.Boards)
	}
	return 0
}

type entry struct {
	boardID domain.ID
	cardID  domain.ID
	name    string
	fields  [4][]string
}

// Index lazily mirrors the workspace and answers palette queries. It is
// owned by the event loop and is not safe for concurrent use.
type Index struct {
	revision  uint64
	built     bool
	cards     []entry
	boards    []entry
	lastQuery string
	searched  bool
	results   Results
	cursors   [3]int
}

// NewIndex returns an empty palette index.
func NewIndex() *Index {
	return &Index{}
}

// Sync rebuilds the card and board entries when revision moved. It reports
// whether a rebuild happened.
func (ix *Index) Sync(ws domain.Workspace, revision uint64) bool {
	if ix.built && ix.revision == revision {
		return false
	}
	ix.cards = ix.cards[:0]
	ix.boards = ix.boards[:0]
	for _, board := range ws.Boards {
		ix.boards = append(ix.boards, entry{
			boardID: board.ID,
			name:    board.Name,
			fields:  [4][]string{{board.Name}, {board.Description}},
		})
		for _, card := range board.Cards {
			ix.cards = append(ix.cards, entry{
				boardID: board.ID,
				cardID:  card.ID,
				name:    card.Name,
				fields:  [4][]string{{card.Name}, {card.Description}, card.Tags, card.Comments},
			})
		}
	}
	ix.revision = revision
	ix.built = true
	ix.searched = false
	return true
}

// Search recomputes the result lists only when query differs from the last
// searched string or the index was rebuilt since. It reports whether work ran.
func (ix *Index) Search(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if ix.searched && q == ix.lastQuery {
		return false
	}
	ix.lastQuery = q
	ix.searched = true
	ix.results = Results{
		Commands: searchCommands(q),
		Cards:    searchEntries(ix.cards, q),
		Boards:   searchEntries(ix.boards, q),
	}
	ix.cursors = [3]int{}
	return true
}

// Results returns the current ranked matches.
func (ix *Index) Results() Results {
	return ix.results
}

// Reset forgets the last query so the next Search always runs.
func (ix *Index) Reset() {
	ix.searched = false
	ix.lastQuery = ""
	ix.results = Results{}
	ix.cursors = [3]int{}
}

// Move shifts the cursor of list l by delta, wrapping.
func (ix *Index) Move(l List, delta int) {
	n := ix.results.Len(l)
	if n == 0 || l < CommandList || l > BoardList {
		return
	}
	ix.cursors[l] = ((ix.cursors[l]+delta)%n + n) % n
}

// SetCursor places the cursor of list l, used by mouse selection.
func (ix *Index) SetCursor(l List, idx int) bool {
	if idx < 0 || idx >= ix.results.Len(l) {
		return false
	}
	ix.cursors[l] = idx
	return true
}

// Cursor returns the selected row in list l.
func (ix *Index) Cursor(l List) int {
	if l < CommandList || l > BoardList {
		return 0
	}
	return ix.cursors[l]
}

// SelectedCommand returns the command under the command cursor.
func (ix *Index) SelectedCommand() (Command, bool) {
	if len(ix.results.Commands) == 0 {
		return 0, false
	}
	return ix.results.Commands[ix.cursors[CommandList]], true
}

// SelectedCard returns the highlighted card match, if any.
func (ix *Index) SelectedCard() (Match, bool) {
	if len(ix.results.Cards) == 0 {
		return Match{}, false
	}
	return ix.results.Cards[ix.cursors[CardList]], true
}

// SelectedBoard returns the highlighted board match, if any.
func (ix *Index) SelectedBoard() (Match, bool) {
	if len(ix.results.Boards) == 0 {
		return Match{}, false
	}
	return ix.results.Boards[ix.cursors[BoardList]], true
}

func searchCommands(q string) []Command {
	if q == "" {
		return AllCommands()
	}
	var prefix, contains []Command
	for _, c := range AllCommands() {
		name := strings.ToLower(c.String())
		switch {
		case strings.HasPrefix(name, q):
			prefix = append(prefix, c)
		case strings.Contains(name, q):
			contains = append(contains, c)
		}
	}
	return append(prefix, contains...)
}

func searchEntries(entries []entry, q string) []Match {
	if len([]rune(q)) < MinEntityQuery {
		return nil
	}
	var prefix, contains []Match
	for _, e := range entries {
		field, isPrefix, ok := matchEntry(e, q)
		if !ok {
			continue
		}
		m := Match{BoardID: e.boardID, CardID: e.cardID, Name: e.name, Field: field}
		if isPrefix {
			prefix = append(prefix, m)
		} else {
			contains = append(contains, m)
		}
	}
	return append(prefix, contains...)
}

// matchEntry finds the earliest field containing q. The hit is a prefix hit
// when any value of that field starts with q.
func matchEntry(e entry, q string) (Field, bool, bool) {
	for f, values := range e.fields {
		found, isPrefix := false, false
		for _, v := range values {
			v = strings.ToLower(v)
			if strings.HasPrefix(v, q) {
				found, isPrefix = true, true
				break
			}
			if strings.Contains(v, q) {
				found = true
			}
		}
		if found {
			return Field(f), isPrefix, true
		}
	}
	return 0, false, false
}
