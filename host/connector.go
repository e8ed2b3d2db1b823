package host

import (
	"log/slog"
	"time"

	"github.com/samber/mo"

	"github.com/cyp0633/librecurrence/dates"
	"github.com/cyp0633/librecurrence/rule"
)

// OutputNotifier is implemented by the hosting runtime; it is invoked
// whenever the connector's outputs change.
type OutputNotifier interface {
	OutputChanged()
}

// Outputs is what the host reads back after a change.
type Outputs struct {
	RecurrenceData        string
	IsVisible             bool
	RecurrenceDescription string
}

// Connector mirrors the host control surface: it carries the current
// recurrence data, a visibility flag and the display description, and
// exposes the engine operations the host may call.
type Connector struct {
	dates    *dates.Service
	engine   *rule.Engine
	loc      dates.Locale
	logger   *slog.Logger
	notifier OutputNotifier

	data    mo.Option[rule.Description]
	visible bool
}

// NewConnector creates a connector for the given locale. A nil logger falls
// back to slog.Default; the notifier may be nil when the host polls instead.
func NewConnector(ds *dates.Service, engine *rule.Engine, loc dates.Locale, notifier OutputNotifier, logger *slog.Logger) *Connector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Connector{
		dates:    ds,
		engine:   engine,
		loc:      loc,
		logger:   logger,
		notifier: notifier,
		data:     mo.None[rule.Description](),
	}
}

// Update applies host-provided inputs: raw serialized recurrence data and
// the visibility flag. Malformed JSON clears the data rather than failing;
// the host controls this channel and a bad value must not break the control.
func (c *Connector) Update(raw string, visible bool) {
	c.visible = visible
	if raw == "" {
		c.data = mo.None[rule.Description]()
		return
	}

	payload, err := Unmarshal(raw)
	if err != nil {
		c.logger.Debug("discarding malformed recurrence data", "error", err)
		c.data = mo.None[rule.Description]()
		return
	}
	desc, err := Decode(payload, c.dates, c.loc)
	if err != nil {
		c.logger.Debug("discarding undecodable recurrence data", "error", err)
		c.data = mo.None[rule.Description]()
		return
	}
	c.data = mo.Some(desc)
}

// Outputs returns the current host-facing outputs.
func (c *Connector) Outputs() Outputs {
	out := Outputs{IsVisible: c.visible}
	if desc, ok := c.data.Get(); ok {
		payload := Encode(desc, c.dates, c.loc)
		if raw, err := Marshal(payload); err == nil {
			out.RecurrenceData = raw
		}
		out.RecurrenceDescription = desc.Text
	}
	return out
}

// Set stores a finalized description, hides the picker and notifies the
// host.
func (c *Connector) Set(desc rule.Description) {
	c.data = mo.Some(desc)
	c.visible = false
	c.notify()
}

// Cancel hides the picker without touching the stored data.
func (c *Connector) Cancel() {
	c.visible = false
	c.notify()
}

// ToggleVisibility flips the picker's visibility.
func (c *Connector) ToggleVisibility() {
	c.visible = !c.visible
	c.notify()
}

func (c *Connector) notify() {
	if c.notifier != nil {
		c.notifier.OutputChanged()
	}
}

// The six engine operations exposed across the host boundary.

// ToRule converts a structured description to canonical rule text.
func (c *Connector) ToRule(desc rule.Description) (string, error) {
	return c.engine.RuleText(desc)
}

// FromRule converts rule text back to a structured description. This is the
// explicit import path, so parse failures surface as errors.
func (c *Connector) FromRule(text string) (rule.Description, error) {
	return c.engine.ParseRuleText(text, mo.None[time.Time]())
}

// Describe renders the display sentence for rule text.
func (c *Connector) Describe(text string) string {
	return c.engine.Describe(text)
}

// Occurrences enumerates up to limit occurrence dates.
func (c *Connector) Occurrences(text string, limit int) []time.Time {
	return c.engine.Occurrences(text, limit)
}

// ValidateRule reports whether rule text conforms to the grammar.
func (c *Connector) ValidateRule(text string) error {
	return c.engine.Validate(text)
}

// ExportCalendar wraps rule text into a single-event calendar document.
func (c *Connector) ExportCalendar(text, title string) string {
	return c.engine.ICalendar(text, title)
}
