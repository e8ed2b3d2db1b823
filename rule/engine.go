// Package rule converts structured recurrence descriptions to and from
// iCalendar RRULE text, renders human-readable summaries and enumerates
// concrete occurrence dates. All operations are pure given their inputs; the
// optional cache only memoizes expansion results.
package rule

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/mo"
	"github.com/teambition/rrule-go"
)

// RulePrefix is the optional leading label on rule text. It is stripped on
// input and omitted on output.
const RulePrefix = "RRULE:"

const untilLayout = "20060102T150405Z"

// Engine performs recurrence rule conversions and queries.
type Engine struct {
	config EngineConfig
	cache  *occurrenceCache
	now    func() time.Time
	logger *slog.Logger
}

// NewEngine creates an engine with the default configuration. A nil logger
// falls back to slog.Default.
func NewEngine(logger *slog.Logger) *Engine {
	return NewEngineWithConfig(DefaultEngineConfig, logger)
}

// NewEngineWithConfig creates an engine with custom configuration.
func NewEngineWithConfig(config EngineConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if config.MaxOccurrences <= 0 {
		config.MaxOccurrences = DefaultEngineConfig.MaxOccurrences
	}

	var cache *occurrenceCache
	if config.CacheEnabled {
		cache = newOccurrenceCache(config.Cache)
	}

	return &Engine{
		config: config,
		cache:  cache,
		now:    time.Now,
		logger: logger,
	}
}

// Close releases the engine's cache resources.
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.close()
	}
}

// RuleText builds the canonical RRULE string for a description.
//
// Precondition: a week pattern with all seven days selected must be
// normalized to a daily pattern by the caller before conversion; the engine
// rejects it rather than fixing it up.
func (e *Engine) RuleText(desc Description) (string, error) {
	if desc.StartDate.IsZero() {
		return "", constructionErr("start date cannot be resolved", nil)
	}
	if desc.Every < 1 {
		return "", constructionErr(fmt.Sprintf("interval must be at least 1, got %d", desc.Every), nil)
	}
	if !desc.Pattern.Valid() {
		return "", constructionErr(fmt.Sprintf("unknown pattern %q", desc.Pattern), nil)
	}

	opt := rrule.ROption{
		Dtstart:  desc.StartDate,
		Interval: desc.Every,
	}
	var byday, bymonthday, bymonth string

	switch desc.Pattern {
	case PatternDay:
		opt.Freq = rrule.DAILY

	case PatternWeek:
		opt.Freq = rrule.WEEKLY
		tokens := canonicalDayTokens(desc.SelectedDays)
		if len(tokens) == 7 {
			return "", constructionErr("all seven weekdays selected; normalize to a daily pattern first", nil)
		}
		names := make([]string, 0, len(tokens))
		for _, d := range tokens {
			w, _ := d.Weekday()
			rw := weekdayToRRule[w]
			opt.Byweekday = append(opt.Byweekday, rw)
			names = append(names, rw.String())
		}
		byday = strings.Join(names, ",")

	case PatternMonth:
		opt.Freq = rrule.MONTHLY
		if desc.MonthlyOption == MonthlyOnWeekday {
			opt.Byweekday = append(opt.Byweekday, positionalWeekday(desc.StartDate))
			byday = positionalToken(desc.StartDate)
		} else {
			opt.Bymonthday = append(opt.Bymonthday, desc.StartDate.Day())
			bymonthday = fmt.Sprintf("%d", desc.StartDate.Day())
		}

	case PatternYear:
		opt.Freq = rrule.YEARLY
		opt.Bymonth = append(opt.Bymonth, int(desc.StartDate.Month()))
		bymonth = fmt.Sprintf("%d", int(desc.StartDate.Month()))
		if desc.YearlyOption == YearlyOnWeekday {
			opt.Byweekday = append(opt.Byweekday, positionalWeekday(desc.StartDate))
			byday = positionalToken(desc.StartDate)
		} else {
			opt.Bymonthday = append(opt.Bymonthday, desc.StartDate.Day())
			bymonthday = fmt.Sprintf("%d", desc.StartDate.Day())
		}
	}

	parts := []string{"FREQ=" + freqName(opt.Freq)}
	if desc.Every > 1 {
		parts = append(parts, fmt.Sprintf("INTERVAL=%d", desc.Every))
	}
	if byday != "" {
		parts = append(parts, "BYDAY="+byday)
	}
	if bymonthday != "" {
		parts = append(parts, "BYMONTHDAY="+bymonthday)
	}
	if bymonth != "" {
		parts = append(parts, "BYMONTH="+bymonth)
	}

	if end, ok := desc.EndDate.Get(); ok {
		opt.Until = end.UTC()
		parts = append(parts, "UNTIL="+end.UTC().Format(untilLayout))
	}

	// Let the rrule library validate the combination before emitting it.
	if _, err := rrule.NewRRule(opt); err != nil {
		return "", constructionErr("invalid rule options", err)
	}

	return strings.Join(parts, ";"), nil
}

// ParseRuleText parses canonical rule text back into a structured
// description. An optional "RRULE:" prefix is stripped. When the text
// carries no DTSTART, the anchor falls back to fallbackStart, or to today.
func (e *Engine) ParseRuleText(text string, fallbackStart mo.Option[time.Time]) (Description, error) {
	_, r, err := e.parseRule(text)
	if err != nil {
		return Description{}, err
	}

	opts := r.OrigOptions

	start := opts.Dtstart
	if start.IsZero() {
		start = fallbackStart.OrElse(dayStart(e.now()))
	}

	desc := DefaultDescription(start)

	if opts.Interval > 1 {
		desc.Every = opts.Interval
	}

	switch opts.Freq {
	case rrule.DAILY:
		desc.Pattern = PatternDay
	case rrule.WEEKLY:
		desc.Pattern = PatternWeek
		for _, rw := range opts.Byweekday {
			desc.SelectedDays = append(desc.SelectedDays, dayFromWeekday(weekdayFromRRule(rw)))
		}
		desc.SelectedDays = canonicalDayTokens(desc.SelectedDays)
	case rrule.MONTHLY:
		desc.Pattern = PatternMonth
		if len(opts.Byweekday) > 0 {
			desc.MonthlyOption = MonthlyOnWeekday
		}
	case rrule.YEARLY:
		desc.Pattern = PatternYear
		if len(opts.Byweekday) > 0 {
			desc.YearlyOption = YearlyOnWeekday
		}
	default:
		return Description{}, parseErr(fmt.Sprintf("unsupported frequency %v", opts.Freq), nil)
	}

	if !opts.Until.IsZero() {
		desc.EndDate = mo.Some(opts.Until)
	}

	return desc, nil
}

// ParseRuleTextOrDefault parses rule text, falling back to the safe default
// daily description on any parse failure. Import flows that must surface
// errors use ParseRuleText directly.
func (e *Engine) ParseRuleTextOrDefault(text string, fallbackStart mo.Option[time.Time]) Description {
	desc, err := e.ParseRuleText(text, fallbackStart)
	if err != nil {
		e.logger.Debug("falling back to default description", "rule", text, "error", err)
		return DefaultDescription(fallbackStart.OrElse(dayStart(e.now())))
	}
	return desc
}

// Validate reports whether the rule text conforms to the grammar.
func (e *Engine) Validate(text string) error {
	_, _, err := e.parseRule(text)
	return err
}

// Occurrences enumerates up to limit occurrence dates in chronological
// order, starting from the rule's anchor date. It returns an empty slice on
// any error.
func (e *Engine) Occurrences(text string, limit int) []time.Time {
	if limit <= 0 {
		return []time.Time{}
	}
	if limit > e.config.MaxOccurrences {
		limit = e.config.MaxOccurrences
	}

	content, r, err := e.parseRule(text)
	if err != nil {
		e.logger.Debug("occurrence enumeration skipped", "rule", text, "error", err)
		return []time.Time{}
	}

	anchor := r.OrigOptions.Dtstart
	if anchor.IsZero() {
		anchor = dayStart(e.now().UTC())
		r.DTStart(anchor)
	}

	key := cacheKey("occurrences", content, anchor, time.Time{}, limit)
	if e.cache != nil {
		if cached, ok := e.cache.get(key); ok {
			return cached
		}
	}

	out := make([]time.Time, 0, limit)
	next := r.Iterator()
	for len(out) < limit {
		t, ok := next()
		if !ok {
			break
		}
		out = append(out, t)
	}

	if e.cache != nil {
		e.cache.set(key, out)
	}
	return out
}

// OccurrencesBetween enumerates occurrences within [from, to], inclusive on
// both ends. It returns an empty slice on any error.
func (e *Engine) OccurrencesBetween(text string, from, to time.Time) []time.Time {
	if to.Before(from) {
		return []time.Time{}
	}

	content, r, err := e.parseRule(text)
	if err != nil {
		e.logger.Debug("occurrence enumeration skipped", "rule", text, "error", err)
		return []time.Time{}
	}

	if r.OrigOptions.Dtstart.IsZero() {
		r.DTStart(dayStart(e.now().UTC()))
	}

	key := cacheKey("between", content, from, to, e.config.MaxOccurrences)
	if e.cache != nil {
		if cached, ok := e.cache.get(key); ok {
			return cached
		}
	}

	out := r.Between(from, to, true)
	if len(out) > e.config.MaxOccurrences {
		out = out[:e.config.MaxOccurrences]
	}

	if e.cache != nil {
		e.cache.set(key, out)
	}
	return out
}

// OccursOn reports whether the rule produces at least one occurrence within
// the given calendar day: at or after its midnight and strictly before the
// next.
func (e *Engine) OccursOn(text string, day time.Time) bool {
	start := dayStart(day)
	end := start.AddDate(0, 0, 1)
	for _, occ := range e.OccurrencesBetween(text, start, end) {
		if occ.Before(end) {
			return true
		}
	}
	return false
}

// parseRule strips the optional prefix and parses the remaining rule text.
func (e *Engine) parseRule(text string) (string, *rrule.RRule, error) {
	content := strings.TrimSpace(text)
	if len(content) >= len(RulePrefix) && strings.EqualFold(content[:len(RulePrefix)], RulePrefix) {
		content = strings.TrimSpace(content[len(RulePrefix):])
	}
	if content == "" {
		return "", nil, parseErr("empty rule text", nil)
	}

	r, err := rrule.StrToRRule(content)
	if err != nil {
		return "", nil, parseErr(fmt.Sprintf("cannot parse rule %q", content), err)
	}
	return content, r, nil
}

// freqName renders the grammar name for a supported frequency.
func freqName(f rrule.Frequency) string {
	switch f {
	case rrule.WEEKLY:
		return "WEEKLY"
	case rrule.MONTHLY:
		return "MONTHLY"
	case rrule.YEARLY:
		return "YEARLY"
	default:
		return "DAILY"
	}
}

// positionalWeekday derives the "Nth weekday" RRULE clause from the anchor
// date: 3rd Tuesday, last Friday and so on.
func positionalWeekday(t time.Time) rrule.Weekday {
	rw := weekdayToRRule[t.Weekday()]
	if isLastWeekdayOfMonth(t) {
		return rw.Nth(-1)
	}
	return rw.Nth(weekdayOrdinal(t))
}

// positionalToken renders the same clause as grammar text, e.g. "3TU" or
// "-1FR".
func positionalToken(t time.Time) string {
	base := weekdayToRRule[t.Weekday()].String()
	if isLastWeekdayOfMonth(t) {
		return "-1" + base
	}
	return fmt.Sprintf("%d%s", weekdayOrdinal(t), base)
}

// canonicalDayTokens deduplicates day tokens and orders them Monday-first.
func canonicalDayTokens(days []Day) []Day {
	seen := map[Day]bool{}
	for _, d := range days {
		if _, ok := dayToWeekday[d]; ok {
			seen[d] = true
		}
	}
	out := make([]Day, 0, len(seen))
	for _, d := range dayOrder {
		if seen[d] {
			out = append(out, d)
		}
	}
	return out
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
