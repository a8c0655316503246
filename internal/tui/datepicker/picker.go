// Package datepicker implements the calendar and time column popup used to
// edit card due dates.
package datepicker

import (
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/evanschultz/kanban/internal/domain"
)

// WeekStart picks the first column of the month grid.
type WeekStart int

const (
	SundayFirst WeekStart = iota
	MondayFirst
)

// ParseWeekStart maps the config token, defaulting to SundayFirst.
func ParseWeekStart(raw string) WeekStart {
	if raw == "MondayFirst" {
		return MondayFirst
	}
	return SundayFirst
}

type AnimState int

const (
	Closed AnimState = iota
	Opening
	Open
	Closing
)

// String names the animation state for logs.
func (s AnimState) String() string {
	switch s {
	case Closed:
		return "closed"
	case Opening:
		return "opening"
	case Open:
		return "open"
	case Closing:
		return "closing"
	}
	return "unknown"
}

func (s AnimState) complete() AnimState {
	switch s {
	case Opening:
		return Open
	case Closing:
		return Closed
	}
	return s
}

const (
	AnimDuration    = 200 * time.Millisecond
	MinHeight       = 3
	MinWidth        = 23
	TimeColumnWidth = 12
)

// Cell is one slot of the month grid. Days outside the month are padding.
type Cell struct {
	Day     int
	InMonth bool
}

// HitCell maps a screen rectangle to a day of the shown month.
type HitCell struct {
	Rect Rect
	Day  int
}

// TimeRow is one line of the time column.
type TimeRow struct {
	Hour, Minute, Second int
	Current              bool
}

// Picker is the date/time picker state. It is driven by the event loop and
// is not safe for concurrent use.
type Picker struct {
	weekStart WeekStart
	clock     func() time.Time
	selected  *time.Time

	dateState  AnimState
	timeState  AnimState
	timeActive bool
	lastTick   time.Time
	height     int
	width      int

	anchor    *Point
	corrected Point
	viewport  Rect

	area      Rect
	hits      []HitCell
	hitsArea  Rect
	hitsMonth time.Time
	hitsValid bool
}

// New returns a closed picker using weekStart for the calendar grid.
func New(weekStart WeekStart, clock func() time.Time) *Picker {
	if clock == nil {
		clock = time.Now
	}
	return &Picker{
		weekStart: weekStart,
		clock:     clock,
		height:    MinHeight,
		width:     MinWidth,
	}
}

// SetWeekStart changes the first weekday column.
func (p *Picker) SetWeekStart(w WeekStart) {
	if p.weekStart != w {
		p.weekStart = w
		p.hitsValid = false
	}
}

// WeekStart returns the first weekday column.
func (p *Picker) WeekStart() WeekStart { return p.weekStart }

// SetValue loads the date being edited. Nil means unset.
func (p *Picker) SetValue(t *time.Time) {
	if t == nil {
		p.selected = nil
		return
	}
	ts := domain.WallClock(*t)
	p.selected = &ts
}

// Selected returns a copy of the chosen date, or nil.
func (p *Picker) Selected() *time.Time {
	if p.selected == nil {
		return nil
	}
	ts := *p.selected
	return &ts
}

// Value renders the selection in format, or the unset token.
func (p *Picker) Value(format domain.DateTimeFormat) string {
	return format.Format(p.selected)
}

// Clear unsets the selection.
func (p *Picker) Clear() {
	p.selected = nil
}

func (p *Picker) current() time.Time {
	if p.selected != nil {
		return *p.selected
	}
	log.Debug("date picker has no selection, starting from now")
	return domain.WallClock(p.clock())
}

func (p *Picker) set(t time.Time) {
	ts := domain.WallClock(t)
	p.selected = &ts
}

// Open starts the calendar opening animation.
func (p *Picker) Open(now time.Time) {
	if p.dateState == Closed || p.dateState == Closing {
		p.timeActive = false
		p.timeState = Closed
		p.dateState = Opening
		p.lastTick = now
	}
}

// Close starts the closing animation. Tick reports when it has finished.
func (p *Picker) Close(now time.Time) {
	if p.dateState == Open || p.dateState == Opening {
		p.timeActive = false
		p.timeState = Closed
		p.dateState = Closing
		p.lastTick = now
	}
}

// ToggleTime opens or closes the time column.
func (p *Picker) ToggleTime(now time.Time) {
	if p.timeActive {
		p.timeState = Closing
		p.timeActive = false
	} else {
		p.timeState = Opening
		p.timeActive = true
	}
	p.lastTick = now
}

// TimeActive reports whether keys go to the time column.
func (p *Picker) TimeActive() bool     { return p.timeActive }
func (p *Picker) DateState() AnimState { return p.dateState }
func (p *Picker) TimeState() AnimState { return p.timeState }

// Size is the current animated size of the widget.
func (p *Picker) Size() (w, h int) { return p.width, p.height }

// Reset returns the picker to its closed, unanchored state.
func (p *Picker) Reset() {
	*p = Picker{weekStart: p.weekStart, clock: p.clock, height: MinHeight, width: MinWidth}
}

// MoveDays shifts the selection by n days.
func (p *Picker) MoveDays(n int) {
	p.set(p.current().AddDate(0, 0, n))
}

// MoveMonths shifts by n months, clamping the day to the target month.
func (p *Picker) MoveMonths(n int) {
	cur := p.current()
	first := time.Date(cur.Year(), cur.Month()+time.Month(n), 1, cur.Hour(), cur.Minute(), cur.Second(), 0, time.UTC)
	day := min(cur.Day(), daysIn(first.Year(), first.Month()))
	p.set(first.AddDate(0, 0, day-1))
}

// MoveYears shifts by n years keeping month and day; Feb 29 clamps.
func (p *Picker) MoveYears(n int) {
	cur := p.current()
	year := cur.Year() + n
	day := min(cur.Day(), daysIn(year, cur.Month()))
	p.set(time.Date(year, cur.Month(), day, cur.Hour(), cur.Minute(), cur.Second(), 0, time.UTC))
}

// MoveSeconds shifts the time of day; hours and minutes are multiples.
func (p *Picker) MoveSeconds(n int) {
	p.set(p.current().Add(time.Duration(n) * time.Second))
}

func (p *Picker) Up()    { p.MoveDays(-7) }
func (p *Picker) Down()  { p.MoveDays(7) }
func (p *Picker) Left()  { p.MoveDays(-1) }
func (p *Picker) Right() { p.MoveDays(1) }

// SelectDay sets the day of the shown month, keeping the time.
func (p *Picker) SelectDay(day int) bool {
	cur := p.current()
	if day < 1 || day > daysIn(cur.Year(), cur.Month()) {
		return false
	}
	p.set(time.Date(cur.Year(), cur.Month(), day, cur.Hour(), cur.Minute(), cur.Second(), 0, time.UTC))
	return true
}

// MonthLabel is the grid title, e.g. "January".
func (p *Picker) MonthLabel() string {
	return p.current().Month().String()
}

// YearLabel renders the shown year.
func (p *Picker) YearLabel() string {
	return strconv.Itoa(p.current().Year())
}

// Day is the highlighted day of the shown month.
func (p *Picker) Day() int {
	return p.current().Day()
}

// WeekdayHeader returns the two-letter day names in grid order.
func (p *Picker) WeekdayHeader() []string {
	days := []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}
	if p.weekStart == MondayFirst {
		return append(days[1:], days[0])
	}
	return days
}

func (p *Picker) leadingDays(cur time.Time) int {
	wd := int(time.Date(cur.Year(), cur.Month(), 1, 0, 0, 0, 0, time.UTC).Weekday())
	if p.weekStart == MondayFirst {
		return (wd + 6) % 7
	}
	return wd
}

// Grid lays the shown month out in rows of seven, padded with the days of
// the neighboring months.
func (p *Picker) Grid() [][]Cell {
	cur := p.current()
	lead := p.leadingDays(cur)
	days := daysIn(cur.Year(), cur.Month())
	prevDays := daysIn(cur.Year(), cur.Month()-1)
	rows := (lead + days + 6) / 7
	grid := make([][]Cell, rows)
	next := 1
	for i := range rows * 7 {
		var c Cell
		switch d := i - lead + 1; {
		case d < 1:
			c = Cell{Day: prevDays + d}
		case d > days:
			c = Cell{Day: next}
			next++
		default:
			c = Cell{Day: d, InMonth: true}
		}
		grid[i/7] = append(grid[i/7], c)
	}
	return grid
}

// TargetSize is the fully open size for the current month and time column.
func (p *Picker) TargetSize() (w, h int) {
	w, h = p.dateTarget()
	if p.timeActive {
		w += TimeColumnWidth
	}
	return w, h
}

// dateTarget adds the weekday line, header and spacer to the grid rows.
func (p *Picker) dateTarget() (w, h int) {
	h = MinHeight + len(p.Grid()) + 1 + 2
	w = max(len(p.MonthLabel())+3+len(p.YearLabel())+3, MinWidth)
	return w, h
}

// TimeColumn returns before rows above the current time and after rows below.
func (p *Picker) TimeColumn(before, after int) []TimeRow {
	cur := p.current()
	h, m, s := cur.Hour(), cur.Minute(), cur.Second()
	rows := make([]TimeRow, 0, before+after+1)
	for off := -before; off <= after; off++ {
		rows = append(rows, TimeRow{
			Hour:    wrap(h+off, 24),
			Minute:  wrap(m+off, 60),
			Second:  wrap(s+off, 60),
			Current: off == 0,
		})
	}
	return rows
}

// TimeNeighbors sizes the time column to the calendar height, leaving room
// for the border, padding and the framed current line.
func (p *Picker) TimeNeighbors() (before, after int) {
	_, h := p.dateTarget()
	avail := max(h-6, 0)
	before = avail / 2
	return before, before + avail%2
}

// SetAnchor records where the picker wants to open.
func (p *Picker) SetAnchor(a Point) {
	p.anchor = &a
	p.correct()
}

// SetViewport records where the picker was drawn for hit testing.
func (p *Picker) SetViewport(r Rect) {
	p.viewport = r
	p.correct()
}

// Anchor is the viewport-corrected top-left corner.
func (p *Picker) Anchor() (Point, bool) {
	if p.anchor == nil {
		return Point{}, false
	}
	return p.corrected, true
}

// SetArea records the rectangle the picker was last drawn into.
func (p *Picker) SetArea(r Rect) {
	p.area = r
}

// Tick advances both animations and re-anchors. It reports true once the
// calendar has fully closed so the caller can drop the popup.
func (p *Picker) Tick(now time.Time, animationsDisabled bool) bool {
	progress := float64(now.Sub(p.lastTick)) / float64(AnimDuration)
	dateW, dateH := p.dateTarget()

	switch p.dateState {
	case Opening, Closing:
		if animationsDisabled || progress >= 1 {
			p.dateState = p.dateState.complete()
			p.height = dateH
			if p.dateState == Closed {
				p.height = MinHeight
			}
		} else if p.dateState == Opening {
			p.height = MinHeight + int(float64(dateH-MinHeight)*progress)
		} else {
			p.height = dateH - int(float64(dateH-MinHeight)*progress)
		}
	case Open:
		p.height = dateH
	case Closed:
		return true
	}

	switch p.timeState {
	case Opening, Closing:
		if animationsDisabled || progress >= 1 {
			p.timeState = p.timeState.complete()
			p.width = dateW
			if p.timeState == Open {
				p.width += TimeColumnWidth
			}
		} else if p.timeState == Opening {
			p.width = dateW + int(float64(TimeColumnWidth)*progress)
		} else {
			p.width = dateW + TimeColumnWidth - int(float64(TimeColumnWidth)*progress)
		}
	case Open:
		p.width = dateW + TimeColumnWidth
	case Closed:
		p.width = dateW
	}

	p.correct()
	p.refreshHits()
	return p.dateState == Closed
}

func (p *Picker) correct() {
	if p.anchor == nil || p.viewport.W == 0 {
		return
	}
	w, h := p.TargetSize()
	p.corrected = CorrectAnchor(*p.anchor, p.viewport, w, h)
}

func (p *Picker) refreshHits() {
	if p.area.W == 0 {
		return
	}
	cur := p.current()
	month := time.Date(cur.Year(), cur.Month(), 1, 0, 0, 0, 0, time.UTC)
	if p.hitsValid && p.hitsArea == p.area && p.hitsMonth.Equal(month) {
		return
	}
	lead := p.leadingDays(cur)
	days := daysIn(cur.Year(), cur.Month())
	hits := make([]HitCell, 0, days)
	for d := range days {
		slot := d + lead
		hits = append(hits, HitCell{
			Rect: Rect{X: p.area.X + 1 + (slot%7)*3, Y: p.area.Y + 3 + slot/7, W: 3, H: 1},
			Day:  d + 1,
		})
	}
	p.hits = hits
	p.hitsArea = p.area
	p.hitsMonth = month
	p.hitsValid = true
}

// HitMap returns the day rectangles of the last drawn frame.
func (p *Picker) HitMap() []HitCell {
	p.refreshHits()
	return p.hits
}

// DayAt resolves a click to a day of the shown month.
func (p *Picker) DayAt(x, y int) (int, bool) {
	for _, h := range p.HitMap() {
		if h.Rect.Contains(x, y) {
			return h.Day, true
		}
	}
	return 0, false
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func wrap(v, n int) int {
	return ((v % n) + n) % n
}
