package rule

import (
	"time"

	"github.com/teambition/rrule-go"
)

// Day is a weekday token as exchanged with the picker UI.
type Day string

const (
	Monday    Day = "M"
	Tuesday   Day = "T"
	Wednesday Day = "W"
	Thursday  Day = "Th"
	Friday    Day = "F"
	Saturday  Day = "S"
	Sunday    Day = "Su"
)

// dayOrder fixes the Monday-first ordering used for canonical BYDAY output
// and descriptions.
var dayOrder = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// The internal weekday enumeration is Go's time.Weekday (Sunday = 0). All
// conversions to the RRULE grammar and to UI tokens go through the tables
// below, in this file only.
var dayToWeekday = map[Day]time.Weekday{
	Monday:    time.Monday,
	Tuesday:   time.Tuesday,
	Wednesday: time.Wednesday,
	Thursday:  time.Thursday,
	Friday:    time.Friday,
	Saturday:  time.Saturday,
	Sunday:    time.Sunday,
}

var weekdayToRRule = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// Weekday returns the time.Weekday for a UI token.
func (d Day) Weekday() (time.Weekday, bool) {
	w, ok := dayToWeekday[d]
	return w, ok
}

// Name returns the full English weekday name for a token, or the token
// itself if it is unknown.
func (d Day) Name() string {
	if w, ok := dayToWeekday[d]; ok {
		return w.String()
	}
	return string(d)
}

// dayFromWeekday maps an internal weekday back to its UI token.
func dayFromWeekday(w time.Weekday) Day {
	for d, dw := range dayToWeekday {
		if dw == w {
			return d
		}
	}
	return Monday
}

// weekdayFromRRule maps an RRULE weekday (Monday = 0) to the internal
// enumeration (Sunday = 0).
func weekdayFromRRule(w rrule.Weekday) time.Weekday {
	return time.Weekday((w.Day() + 1) % 7)
}

// weekdayOrdinal counts how many times the weekday of t has occurred in its
// month up to and including t, starting from day 1. The first occurrence is 1.
func weekdayOrdinal(t time.Time) int {
	return (t.Day()-1)/7 + 1
}

// isLastWeekdayOfMonth reports whether t falls on the month's final
// occurrence of its weekday: one week ahead lands in the next month.
func isLastWeekdayOfMonth(t time.Time) bool {
	return t.AddDate(0, 0, 7).Month() != t.Month()
}

// ordinalName renders an ordinal weekday position; -1 means last.
func ordinalName(n int) string {
	switch n {
	case -1:
		return "last"
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	case 4:
		return "4th"
	default:
		return "5th"
	}
}
