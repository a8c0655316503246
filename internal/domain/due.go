package domain

import "time"

type DueState int

const (
	DueDefault DueState = iota
	DueWarning
	DueOverdue
)

// String returns the state name.
func (s DueState) String() string {
	switch s {
	case DueWarning:
		return "warning"
	case DueOverdue:
		return "overdue"
	default:
		return "default"
	}
}

// DueStateAt classifies a due date against now by whole days left, truncated
// toward zero: a negative count is overdue, zero through warningDays is a
// warning, anything later (or unset) is default.
func DueStateAt(due *time.Time, now time.Time, warningDays int) DueState {
	if due == nil {
		return DueDefault
	}
	return dueStateForDays(int(due.Sub(WallClock(now))/(24*time.Hour)), warningDays)
}

// DueStateIn is DueStateAt for a display format. Date-only formats compare
// calendar days, so a card due today stays a warning until midnight.
func DueStateIn(due *time.Time, now time.Time, warningDays int, format DateTimeFormat) DueState {
	if due == nil || format.HasTime() {
		return DueStateAt(due, now, warningDays)
	}
	d := dateOf(*due)
	return dueStateForDays(int(d.Sub(dateOf(WallClock(now)))/(24*time.Hour)), warningDays)
}

func dueStateForDays(daysLeft, warningDays int) DueState {
	switch {
	case daysLeft < 0:
		return DueOverdue
	case daysLeft <= warningDays:
		return DueWarning
	default:
		return DueDefault
	}
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DueState ignores the due date once the card is complete.
func (c Card) DueState(now time.Time, warningDays int, format DateTimeFormat) DueState {
	if c.Status == StatusComplete {
		return DueDefault
	}
	return DueStateIn(c.Due, now, warningDays, format)
}
