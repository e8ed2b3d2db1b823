// Package form holds the in-progress edit state of a recurrence: validated
// field edits, derived preview recomputation and the Save/Discard/Remove
// lifecycle. It enforces the date-range policy the engine deliberately does
// not: start dates must be today or later and end dates must follow starts.
package form

import (
	"log/slog"
	"time"

	"github.com/samber/mo"

	"github.com/cyp0633/librecurrence/dates"
	"github.com/cyp0633/librecurrence/rule"
)

// Field names validation issues attach to.
const (
	FieldStartDate = "startDate"
	FieldEndDate   = "endDate"
	FieldEvery     = "every"
	FieldRule      = "rule"
)

// Issue is a field-level validation message. Issues block saving but are
// not errors; the session stays editable.
type Issue struct {
	Field   string
	Message string
}

// Session is one edit session over a recurrence description. Every field
// change revalidates and recomputes the derived preview, so the preview is
// idempotent with respect to the current field values.
type Session struct {
	dates  *dates.Service
	engine *rule.Engine
	loc    dates.Locale
	logger *slog.Logger

	startText string
	endText   string
	hasEnd    bool
	pattern   rule.Pattern
	every     int
	days      []rule.Day
	monthly   rule.MonthlyOption
	yearly    rule.YearlyOption

	snapshot sessionValues
	issues   []Issue
	ruleText string
	preview  string
}

// sessionValues captures the editable fields for Discard.
type sessionValues struct {
	startText string
	endText   string
	hasEnd    bool
	pattern   rule.Pattern
	every     int
	days      []rule.Day
	monthly   rule.MonthlyOption
	yearly    rule.YearlyOption
}

// NewSession starts an edit session. With no initial description the fields
// default to a daily rule starting today and ending three months out. A nil
// logger falls back to slog.Default.
func NewSession(ds *dates.Service, engine *rule.Engine, loc dates.Locale, initial mo.Option[rule.Description], logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		dates:  ds,
		engine: engine,
		loc:    loc,
		logger: logger,
	}

	if desc, ok := initial.Get(); ok {
		s.loadDescription(desc)
	} else {
		s.startText = ds.Today(loc)
		s.endText = ds.DefaultEndDate(loc)
		s.hasEnd = true
		s.pattern = rule.PatternDay
		s.every = 1
		s.monthly = rule.MonthlyOnDay
		s.yearly = rule.YearlyOnDate
	}

	s.snapshot = s.values()
	s.recompute()
	return s
}

func (s *Session) loadDescription(desc rule.Description) {
	s.startText = s.dates.Format(desc.StartDate, s.loc, dates.DateOnly)
	if end, ok := desc.EndDate.Get(); ok {
		s.endText = s.dates.Format(end, s.loc, dates.DateOnly)
		s.hasEnd = true
	}
	s.pattern = desc.Pattern
	s.every = desc.Every
	s.days = append([]rule.Day(nil), desc.SelectedDays...)
	s.monthly = desc.MonthlyOption
	s.yearly = desc.YearlyOption
	if s.pattern == "" {
		s.pattern = rule.PatternDay
	}
	if s.every < 1 {
		s.every = 1
	}
	if s.monthly == "" {
		s.monthly = rule.MonthlyOnDay
	}
	if s.yearly == "" {
		s.yearly = rule.YearlyOnDate
	}
}

func (s *Session) values() sessionValues {
	return sessionValues{
		startText: s.startText,
		endText:   s.endText,
		hasEnd:    s.hasEnd,
		pattern:   s.pattern,
		every:     s.every,
		days:      append([]rule.Day(nil), s.days...),
		monthly:   s.monthly,
		yearly:    s.yearly,
	}
}

func (s *Session) restore(v sessionValues) {
	s.startText = v.startText
	s.endText = v.endText
	s.hasEnd = v.hasEnd
	s.pattern = v.pattern
	s.every = v.every
	s.days = append([]rule.Day(nil), v.days...)
	s.monthly = v.monthly
	s.yearly = v.yearly
	s.recompute()
}

// SetStartDate updates the start date text. When an end date is present, it
// is recomputed to exactly one year after the new start.
func (s *Session) SetStartDate(text string) {
	s.startText = text
	if s.hasEnd {
		if end, err := s.dates.OneYearAfter(text, s.loc); err == nil {
			s.endText = end
		}
	}
	s.recompute()
}

// SetEndDate updates the end date text.
func (s *Session) SetEndDate(text string) {
	s.endText = text
	s.hasEnd = true
	s.recompute()
}

// ChooseEndDate enables the end bound, seeding it with one year after the
// start if no end exists or the existing one no longer follows the start.
func (s *Session) ChooseEndDate() {
	s.hasEnd = true
	if s.endText == "" || !s.dates.IsBefore(s.startText, s.endText, s.loc) {
		if end, err := s.dates.OneYearAfter(s.startText, s.loc); err == nil {
			s.endText = end
		}
	}
	s.recompute()
}

// RemoveEndDate makes the rule unbounded.
func (s *Session) RemoveEndDate() {
	s.hasEnd = false
	s.recompute()
}

// SetPattern switches the recurrence frequency.
func (s *Session) SetPattern(p rule.Pattern) {
	if p.Valid() {
		s.pattern = p
	}
	s.recompute()
}

// SetEvery updates the interval multiplier.
func (s *Session) SetEvery(n int) {
	s.every = n
	s.recompute()
}

// ToggleDay adds or removes a weekday in weekly mode. Selecting all seven
// days collapses to a daily pattern with interval 1 and no selected days;
// this normalization runs here, before anything reaches the engine.
func (s *Session) ToggleDay(d rule.Day) {
	if _, ok := d.Weekday(); !ok {
		return
	}

	found := false
	next := make([]rule.Day, 0, len(s.days)+1)
	for _, cur := range s.days {
		if cur == d {
			found = true
			continue
		}
		next = append(next, cur)
	}
	if !found {
		next = append(next, d)
	}

	if len(next) == 7 {
		s.pattern = rule.PatternDay
		s.every = 1
		s.days = nil
	} else {
		s.days = next
	}
	s.recompute()
}

// SetMonthlyOption chooses between day-of-month and Nth-weekday monthly
// recurrence.
func (s *Session) SetMonthlyOption(o rule.MonthlyOption) {
	s.monthly = o
	s.recompute()
}

// SetYearlyOption is the analogous choice for yearly patterns.
func (s *Session) SetYearlyOption(o rule.YearlyOption) {
	s.yearly = o
	s.recompute()
}

// Issues returns the outstanding validation problems. Save is blocked while
// any remain.
func (s *Session) Issues() []Issue {
	return append([]Issue(nil), s.issues...)
}

// Preview returns the derived rule text and its human-readable description
// for the current field values.
func (s *Session) Preview() (ruleText, description string) {
	return s.ruleText, s.preview
}

// Description builds the current structured description. The second return
// is false while validation issues are outstanding.
func (s *Session) Description() (rule.Description, bool) {
	if len(s.issues) > 0 {
		return rule.Description{}, false
	}
	desc, err := s.buildDescription()
	if err != nil {
		return rule.Description{}, false
	}
	return desc, true
}

// Save finalizes the session into an immutable snapshot. It is a no-op
// returning false while any validation issue is outstanding.
func (s *Session) Save() (rule.Description, bool) {
	desc, ok := s.Description()
	if !ok {
		return rule.Description{}, false
	}
	desc.RuleText = s.ruleText
	desc.Text = s.preview
	s.snapshot = s.values()
	return desc, true
}

// Discard restores the values captured when the edit session started.
func (s *Session) Discard() {
	s.restore(s.snapshot)
}

// Remove clears the recurrence entirely, returning the session to an empty
// default description with no rule text.
func (s *Session) Remove() {
	s.startText = s.dates.Today(s.loc)
	s.endText = ""
	s.hasEnd = false
	s.pattern = rule.PatternDay
	s.every = 1
	s.days = nil
	s.monthly = rule.MonthlyOnDay
	s.yearly = rule.YearlyOnDate
	s.ruleText = ""
	s.preview = ""
	s.issues = nil
	s.snapshot = s.values()
}

// buildDescription assembles a rule.Description from the validated fields.
func (s *Session) buildDescription() (rule.Description, error) {
	start, err := s.dates.Parse(s.startText, s.loc)
	if err != nil {
		return rule.Description{}, err
	}

	desc := rule.Description{
		StartDate:     start,
		Pattern:       s.pattern,
		Every:         s.every,
		SelectedDays:  append([]rule.Day(nil), s.days...),
		MonthlyOption: s.monthly,
		YearlyOption:  s.yearly,
		EndDate:       mo.None[time.Time](),
	}
	if s.hasEnd {
		end, err := s.dates.Parse(s.endText, s.loc)
		if err != nil {
			return rule.Description{}, err
		}
		desc.EndDate = mo.Some(end)
	}
	return desc, nil
}

// recompute revalidates the fields and refreshes the derived preview. It
// runs on every field change and must stay cheap and idempotent.
func (s *Session) recompute() {
	s.issues = nil
	s.ruleText = ""
	s.preview = ""

	if !s.dates.IsValid(s.startText, s.loc) {
		s.issues = append(s.issues, Issue{Field: FieldStartDate, Message: "start date is not a valid date"})
	} else if !s.dates.IsTodayOrLater(s.startText, s.loc) {
		s.issues = append(s.issues, Issue{Field: FieldStartDate, Message: "start date must be today or later"})
	}

	if s.hasEnd {
		if !s.dates.IsValid(s.endText, s.loc) {
			s.issues = append(s.issues, Issue{Field: FieldEndDate, Message: "end date is not a valid date"})
		} else if !s.dates.IsBefore(s.startText, s.endText, s.loc) {
			s.issues = append(s.issues, Issue{Field: FieldEndDate, Message: "end date must be after the start date"})
		}
	}

	if s.every < 1 {
		s.issues = append(s.issues, Issue{Field: FieldEvery, Message: "interval must be at least 1"})
	}

	if len(s.issues) > 0 {
		return
	}

	desc, err := s.buildDescription()
	if err != nil {
		// Unreachable after the checks above, but keep the preview safe.
		s.issues = append(s.issues, Issue{Field: FieldRule, Message: err.Error()})
		return
	}

	text, err := s.engine.RuleText(desc)
	if err != nil {
		s.logger.Debug("preview recompute failed", "error", err)
		s.issues = append(s.issues, Issue{Field: FieldRule, Message: "recurrence cannot be converted to a rule"})
		return
	}
	s.ruleText = text
	s.preview = s.engine.Describe(text)
}
