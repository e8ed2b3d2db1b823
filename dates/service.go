// Package dates turns locale-ambiguous date/time text into unambiguous
// timestamps and back. Locale preferences come from a static lookup table and
// are passed explicitly into every call; there is no ambient formatter state.
package dates

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"
)

// Mode selects whether formatting includes the time of day.
type Mode int

const (
	DateOnly Mode = iota
	DateTime
)

// ISO layouts tried before falling back to pattern-based parsing.
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Numeric date with /, . or - separators and an optional HH:MM[:SS] time,
// separated from the date by whitespace or a comma.
var datePattern = regexp.MustCompile(
	`^\s*(\d{1,4})[/.\-](\d{1,4})[/.\-](\d{1,4})(?:(?:\s*,\s*|\s+)(\d{1,2}):(\d{2})(?::(\d{2}))?)?\s*$`)

// Service parses, formats and compares calendar dates. The clock is
// injectable so "today" based checks stay testable.
type Service struct {
	now    func() time.Time
	logger *slog.Logger
}

// NewService creates a date service. A nil logger falls back to slog.Default.
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{now: time.Now, logger: logger}
}

// NewServiceWithClock creates a date service with a fixed clock, for tests
// and deterministic validation.
func NewServiceWithClock(now func() time.Time, logger *slog.Logger) *Service {
	s := NewService(logger)
	if now != nil {
		s.now = now
	}
	return s
}

// ValidateTimestamp checks that an already-structured timestamp is not the
// not-a-date sentinel and returns it unchanged.
func (s *Service) ValidateTimestamp(t time.Time) (time.Time, error) {
	if t.IsZero() {
		return time.Time{}, &Error{Type: ErrInvalidDate, Input: "", Message: "zero timestamp"}
	}
	return t, nil
}

// Parse converts date/time text into a timestamp. A fully-qualified ISO 8601
// value is taken as-is; anything else goes through pattern-based parsing
// using the locale's day/month preference. Missing time components default
// to midnight.
func (s *Service) Parse(input string, loc Locale) (time.Time, error) {
	if input == "" {
		return time.Time{}, newUnparseable(input, "empty date text")
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, input); err == nil {
			return t, nil
		}
	}

	return s.parsePattern(input, loc)
}

func (s *Service) parsePattern(input string, loc Locale) (time.Time, error) {
	m := datePattern.FindStringSubmatch(input)
	if m == nil {
		return time.Time{}, newUnparseable(input, "text matches no known date pattern")
	}

	nums := make([]int, 3)
	for i := 0; i < 3; i++ {
		nums[i], _ = strconv.Atoi(m[i+1])
	}

	// A component larger than 31 is the year no matter where it appears.
	yearIdx := -1
	for i, v := range nums {
		if v > 31 {
			if yearIdx != -1 {
				return time.Time{}, newUnparseable(input, "more than one year-sized component")
			}
			yearIdx = i
		}
	}
	if yearIdx == -1 {
		// All components fit in a day; the year is positional (last).
		yearIdx = 2
	}

	year := nums[yearIdx]
	if year < 100 {
		if year < 50 {
			year += 2000
		} else {
			year += 1900
		}
	}

	var rest []int
	for i, v := range nums {
		if i != yearIdx {
			rest = append(rest, v)
		}
	}

	var day, month int
	switch {
	case rest[0] > 12 && rest[1] > 12:
		return time.Time{}, newUnparseable(input, "no component can be the month")
	case rest[0] > 12:
		day, month = rest[0], rest[1]
	case rest[1] > 12:
		day, month = rest[1], rest[0]
	case yearIdx == 0:
		// Year-first dates read as year-month-day regardless of locale.
		month, day = rest[0], rest[1]
	case loc.Order == MonthFirst:
		month, day = rest[0], rest[1]
	default:
		day, month = rest[0], rest[1]
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, newUnparseable(input, "day or month out of range")
	}

	var hour, minute, second int
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
		if m[6] != "" {
			second, _ = strconv.Atoi(m[6])
		}
		if hour > 23 || minute > 59 || second > 59 {
			return time.Time{}, newUnparseable(input, "time of day out of range")
		}
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	if t.Day() != day || t.Month() != time.Month(month) || t.Year() != year {
		// time.Date normalized an impossible date such as February 30.
		return time.Time{}, newUnparseable(input, "day does not exist in that month")
	}
	return t, nil
}

// Format renders a timestamp with numeric fields in the locale's component
// order and separator. DateOnly mode omits the time of day; DateTime mode
// renders to minute precision, so seconds do not survive a parse round trip.
func (s *Service) Format(t time.Time, loc Locale, mode Mode) string {
	sep := loc.Separator
	if sep == "" {
		sep = "/"
	}

	var date string
	if loc.Order == MonthFirst {
		date = fmt.Sprintf("%02d%s%02d%s%04d", int(t.Month()), sep, t.Day(), sep, t.Year())
	} else {
		date = fmt.Sprintf("%02d%s%02d%s%04d", t.Day(), sep, int(t.Month()), sep, t.Year())
	}

	if mode == DateOnly {
		return date
	}
	return fmt.Sprintf("%s %02d:%02d", date, t.Hour(), t.Minute())
}

// FormatMedium renders an abbreviated display date such as "Jan 2, 2026",
// used in human-readable recurrence descriptions.
func FormatMedium(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// IsValid reports whether the text parses as a date in the given locale.
func (s *Service) IsValid(input string, loc Locale) bool {
	_, err := s.Parse(input, loc)
	return err == nil
}

// IsBefore reports whether date text a is strictly before b. Unparseable
// input yields false.
func (s *Service) IsBefore(a, b string, loc Locale) bool {
	ta, err := s.Parse(a, loc)
	if err != nil {
		return false
	}
	tb, err := s.Parse(b, loc)
	if err != nil {
		return false
	}
	return ta.Before(tb)
}

// IsTodayOrLater reports whether the date component of the text is on or
// after the current calendar day. Time of day is ignored on both sides.
func (s *Service) IsTodayOrLater(input string, loc Locale) bool {
	t, err := s.Parse(input, loc)
	if err != nil {
		return false
	}
	today := truncateToDay(s.now())
	return !truncateToDay(t).Before(today)
}

// Today returns the current date formatted for the locale.
func (s *Service) Today(loc Locale) string {
	return s.Format(s.now(), loc, DateOnly)
}

// DefaultEndDate returns a date three months from today, the initial end
// bound offered when a recurrence is first created.
func (s *Service) DefaultEndDate(loc Locale) string {
	return s.Format(s.now().AddDate(0, 3, 0), loc, DateOnly)
}

// OneYearAfter parses the given date text and returns it advanced by one
// calendar year, formatted as a date.
func (s *Service) OneYearAfter(input string, loc Locale) (string, error) {
	t, err := s.Parse(input, loc)
	if err != nil {
		return "", err
	}
	return s.Format(AddYears(t, 1), loc, DateOnly), nil
}

// AddYears performs calendar-correct year addition. A February 29 source
// landing on a non-leap year resolves to February 28 instead of rolling into
// March.
func AddYears(t time.Time, n int) time.Time {
	r := time.Date(t.Year()+n, t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if r.Month() != t.Month() {
		// Normalization rolled past the end of the month; clamp to the
		// last day of the intended month.
		r = time.Date(t.Year()+n, t.Month()+1, 0,
			t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	}
	return r
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
