package rule

import (
	"time"

	"github.com/samber/mo"
)

// Pattern is the recurrence frequency chosen in the picker. The set is
// closed; conversion dispatches exhaustively over these four values.
type Pattern string

const (
	PatternDay   Pattern = "day"
	PatternWeek  Pattern = "week"
	PatternMonth Pattern = "month"
	PatternYear  Pattern = "year"
)

// Valid reports whether the pattern is one of the four supported values.
func (p Pattern) Valid() bool {
	switch p {
	case PatternDay, PatternWeek, PatternMonth, PatternYear:
		return true
	}
	return false
}

// MonthlyOption selects between "same day of month" and "same Nth weekday of
// month" for monthly patterns.
type MonthlyOption string

const (
	MonthlyOnDay     MonthlyOption = "day"
	MonthlyOnWeekday MonthlyOption = "weekday"
)

// YearlyOption is the analogous choice for yearly patterns.
type YearlyOption string

const (
	YearlyOnDate    YearlyOption = "date"
	YearlyOnWeekday YearlyOption = "weekday"
)

// Description is the structured, engine-facing representation of a repeating
// schedule. StartDate anchors the pattern: its weekday, day of month and
// month derive the positional clauses for monthly and yearly rules.
//
// RuleText and Text are derived caches recomputed from the other fields on
// every conversion; the engine never reads them back.
type Description struct {
	StartDate     time.Time
	Pattern       Pattern
	Every         int
	SelectedDays  []Day
	MonthlyOption MonthlyOption
	YearlyOption  YearlyOption
	EndDate       mo.Option[time.Time]

	RuleText string
	Text     string
}

// HasEndDate reports whether the rule is bounded by an end date.
func (d Description) HasEndDate() bool {
	return d.EndDate.IsPresent()
}

// DefaultDescription returns the safe default: a daily rule anchored at the
// given start with no end bound. It is also the fallback when rule text
// cannot be parsed.
func DefaultDescription(start time.Time) Description {
	return Description{
		StartDate:     start,
		Pattern:       PatternDay,
		Every:         1,
		MonthlyOption: MonthlyOnDay,
		YearlyOption:  YearlyOnDate,
		EndDate:       mo.None[time.Time](),
	}
}
