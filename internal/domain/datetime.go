package domain

import (
	"fmt"
	"strings"
	"time"
)

// FieldNotSet is the token rendered and persisted for an unset date.
const FieldNotSet = "Not Set"

type DateTimeFormat string

const (
	DayMonthYear     DateTimeFormat = "DayMonthYear"
	DayMonthYearTime DateTimeFormat = "DayMonthYearTime"
	MonthDayYear     DateTimeFormat = "MonthDayYear"
	MonthDayYearTime DateTimeFormat = "MonthDayYearTime"
	YearMonthDay     DateTimeFormat = "YearMonthDay"
	YearMonthDayTime DateTimeFormat = "YearMonthDayTime"
)

// DefaultDateTimeFormat is used when config does not name one.
const DefaultDateTimeFormat = DayMonthYearTime

var dateTimeLayouts = map[DateTimeFormat]string{
	DayMonthYear:     "02/01/2006",
	DayMonthYearTime: "02/01/2006-15:04:05",
	MonthDayYear:     "01/02/2006",
	MonthDayYearTime: "01/02/2006-15:04:05",
	YearMonthDay:     "2006/01/02",
	YearMonthDayTime: "2006/01/02-15:04:05",
}

var dateTimeLabels = map[DateTimeFormat]string{
	DayMonthYear:     "DD/MM/YYYY",
	DayMonthYearTime: "DD/MM/YYYY-HH:MM:SS",
	MonthDayYear:     "MM/DD/YYYY",
	MonthDayYearTime: "MM/DD/YYYY-HH:MM:SS",
	YearMonthDay:     "YYYY/MM/DD",
	YearMonthDayTime: "YYYY/MM/DD-HH:MM:SS",
}

// AllDateTimeFormats lists every format in menu order.
func AllDateTimeFormats() []DateTimeFormat {
	return []DateTimeFormat{
		DayMonthYear,
		DayMonthYearTime,
		MonthDayYear,
		MonthDayYearTime,
		YearMonthDay,
		YearMonthDayTime,
	}
}

// ParseDateTimeFormat accepts either the enum name or the human label.
func ParseDateTimeFormat(raw string) (DateTimeFormat, error) {
	raw = strings.TrimSpace(raw)
	for _, f := range AllDateTimeFormats() {
		if strings.EqualFold(raw, string(f)) || raw == dateTimeLabels[f] {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown date format %q", ErrInputValidation, raw)
}

// Valid reports whether f is a known format.
func (f DateTimeFormat) Valid() bool {
	_, ok := dateTimeLayouts[f]
	return ok
}

// Layout returns the time layout, falling back to the default format.
func (f DateTimeFormat) Layout() string {
	if layout, ok := dateTimeLayouts[f]; ok {
		return layout
	}
	return dateTimeLayouts[DefaultDateTimeFormat]
}

// String returns the human label such as DD/MM/YYYY.
func (f DateTimeFormat) String() string {
	if label, ok := dateTimeLabels[f]; ok {
		return label
	}
	return string(f)
}

// HasTime reports whether f includes the time of day.
func (f DateTimeFormat) HasTime() bool {
	switch f {
	case DayMonthYearTime, MonthDayYearTime, YearMonthDayTime:
		return true
	}
	return false
}

// WithTime returns the variant of f that includes the time of day.
func (f DateTimeFormat) WithTime() DateTimeFormat {
	switch f {
	case DayMonthYear:
		return DayMonthYearTime
	case MonthDayYear:
		return MonthDayYearTime
	case YearMonthDay:
		return YearMonthDayTime
	}
	if !f.Valid() {
		return DefaultDateTimeFormat
	}
	return f
}

// WithoutTime returns the date-only variant of f.
func (f DateTimeFormat) WithoutTime() DateTimeFormat {
	switch f {
	case DayMonthYearTime:
		return DayMonthYear
	case MonthDayYearTime:
		return MonthDayYear
	case YearMonthDayTime:
		return YearMonthDay
	}
	if !f.Valid() {
		return DefaultDateTimeFormat.WithoutTime()
	}
	return f
}

// Format renders t, or FieldNotSet when t is nil.
func (f DateTimeFormat) Format(t *time.Time) string {
	if t == nil {
		return FieldNotSet
	}
	return t.Format(f.Layout())
}

// ParseDateTime parses raw trying the preferred format first and every other
// known format after it. FieldNotSet and blank input yield a nil time.
func ParseDateTime(raw string, preferred DateTimeFormat) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, FieldNotSet) {
		return nil, nil
	}
	candidates := make([]DateTimeFormat, 0, len(dateTimeLayouts))
	if preferred.Valid() {
		candidates = append(candidates, preferred.WithTime(), preferred.WithoutTime())
	}
	for _, f := range AllDateTimeFormats() {
		if f.HasTime() {
			candidates = append(candidates, f)
		}
	}
	for _, f := range AllDateTimeFormats() {
		if !f.HasTime() {
			candidates = append(candidates, f)
		}
	}
	for _, f := range candidates {
		if parsed, err := time.Parse(f.Layout(), raw); err == nil {
			ts := WallClock(parsed)
			return &ts, nil
		}
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		ts := WallClock(parsed)
		return &ts, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

// ParseDateTimeExact parses raw in format only, with or without its time
// component. Files that record their layout use it so day and month never swap.
func ParseDateTimeExact(raw string, format DateTimeFormat) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, FieldNotSet) {
		return nil, nil
	}
	if !format.Valid() {
		return nil, fmt.Errorf("%w: unknown date format %q", ErrInputValidation, format)
	}
	for _, f := range []DateTimeFormat{format.WithTime(), format.WithoutTime()} {
		if parsed, err := time.Parse(f.Layout(), raw); err == nil {
			ts := WallClock(parsed)
			return &ts, nil
		}
	}
	return nil, fmt.Errorf("%w: %q is not %s", ErrInvalidDate, raw, format)
}

// WallClock drops sub-second precision and the zone, keeping the wall-clock
// reading as a UTC value so persisted dates round-trip through any format.
func WallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

func wallClockPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	ts := WallClock(*t)
	return &ts
}
