package rule

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/cyp0633/librecurrence/dates"
)

// Fixed sentences for display contexts; Describe never fails.
const (
	NoRuleText      = "No recurrence rule"
	InvalidRuleText = "Invalid recurrence rule"
)

// Describe renders a natural-language sentence for rule text, e.g.
// "every 2 weeks on Monday, Wednesday until Jan 1, 2026". Empty input yields
// the fixed no-rule sentence and malformed input the fixed invalid-rule
// sentence; this is used in display contexts and must not raise.
func (e *Engine) Describe(text string) string {
	if strings.TrimSpace(text) == "" {
		return NoRuleText
	}

	_, r, err := e.parseRule(text)
	if err != nil {
		e.logger.Debug("describing invalid rule", "rule", text, "error", err)
		return InvalidRuleText
	}

	opts := r.OrigOptions
	interval := opts.Interval
	if interval < 1 {
		interval = 1
	}

	var sentence string
	switch opts.Freq {
	case rrule.DAILY:
		sentence = "every " + plural(interval, "day")

	case rrule.WEEKLY:
		sentence = "every " + plural(interval, "week")
		if len(opts.Byweekday) > 0 {
			sentence += " on " + weekdayList(opts.Byweekday)
		}

	case rrule.MONTHLY:
		sentence = "every " + plural(interval, "month")
		switch {
		case len(opts.Byweekday) > 0:
			sentence += " on the " + positionalPhrase(opts.Byweekday[0])
		case len(opts.Bymonthday) > 0:
			sentence += fmt.Sprintf(" on day %d", opts.Bymonthday[0])
		}

	case rrule.YEARLY:
		sentence = "every " + plural(interval, "year")
		month := monthName(opts, opts.Dtstart)
		switch {
		case len(opts.Byweekday) > 0:
			sentence += " on the " + positionalPhrase(opts.Byweekday[0])
			if month != "" {
				sentence += " of " + month
			}
		case len(opts.Bymonthday) > 0 && month != "":
			sentence += fmt.Sprintf(" on %s %d", month, opts.Bymonthday[0])
		}

	default:
		return InvalidRuleText
	}

	if !opts.Until.IsZero() {
		sentence += " until " + dates.FormatMedium(opts.Until)
	}

	return sentence
}

// plural renders "day" or "2 days" style interval phrases.
func plural(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// weekdayList joins weekday names in canonical Monday-first order.
func weekdayList(weekdays []rrule.Weekday) string {
	selected := map[time.Weekday]bool{}
	for _, rw := range weekdays {
		selected[weekdayFromRRule(rw)] = true
	}
	names := make([]string, 0, len(selected))
	for _, d := range dayOrder {
		w, _ := d.Weekday()
		if selected[w] {
			names = append(names, w.String())
		}
	}
	return strings.Join(names, ", ")
}

// positionalPhrase renders "3rd Tuesday" or "last Friday" from an ordinal
// weekday clause.
func positionalPhrase(rw rrule.Weekday) string {
	n := rw.N()
	if n == 0 {
		n = 1
	}
	return ordinalName(n) + " " + weekdayFromRRule(rw).String()
}

// monthName resolves the month a yearly rule fires in, preferring the
// explicit BYMONTH clause over the anchor date.
func monthName(opts rrule.ROption, anchor time.Time) string {
	if len(opts.Bymonth) > 0 && opts.Bymonth[0] >= 1 && opts.Bymonth[0] <= 12 {
		return time.Month(opts.Bymonth[0]).String()
	}
	if !anchor.IsZero() {
		return anchor.Month().String()
	}
	return ""
}
