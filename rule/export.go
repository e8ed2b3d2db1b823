package rule

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
)

const productID = "-//librecurrence//Recurrence Picker//EN"

// ICalendar wraps rule text into a minimal single-event VCALENDAR document
// for export. DTSTART is the rule's anchor in UTC and the rule text is
// embedded verbatim. Best effort: returns empty text on any failure.
func (e *Engine) ICalendar(text, title string) string {
	content, r, err := e.parseRule(text)
	if err != nil {
		e.logger.Debug("calendar export skipped", "rule", text, "error", err)
		return ""
	}

	anchor := r.OrigOptions.Dtstart
	if anchor.IsZero() {
		anchor = dayStart(e.now().UTC())
	}
	if title == "" {
		title = "Recurring event"
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropVersion, "2.0")

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, uuid.New().String())
	event.Props.SetText(ical.PropSummary, title)
	event.Props.SetDateTime(ical.PropDateTimeStamp, e.now().UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, anchor.UTC())
	// RRULE's value type is RECUR; SetText would stamp a VALUE=TEXT parameter
	// onto the property.
	rruleProp := ical.NewProp(ical.PropRecurrenceRule)
	rruleProp.Value = content
	event.Props.Set(rruleProp)
	cal.Children = append(cal.Children, event.Component)

	var buf strings.Builder
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		e.logger.Debug("calendar export failed", "rule", text, "error", err)
		return ""
	}
	return buf.String()
}

// XCal renders the rule as an RFC 6321 xCal document. Like ICalendar it is
// best effort and returns empty text on failure.
func (e *Engine) XCal(text, title string) string {
	_, r, err := e.parseRule(text)
	if err != nil {
		e.logger.Debug("xcal export skipped", "rule", text, "error", err)
		return ""
	}

	opts := r.OrigOptions
	anchor := opts.Dtstart
	if anchor.IsZero() {
		anchor = dayStart(e.now().UTC())
	}
	if title == "" {
		title = "Recurring event"
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	icalendar := doc.CreateElement("icalendar")
	icalendar.CreateAttr("xmlns", "urn:ietf:params:xml:ns:icalendar-2.0")
	vcalendar := icalendar.CreateElement("vcalendar")

	props := vcalendar.CreateElement("properties")
	props.CreateElement("prodid").CreateElement("text").SetText(productID)
	props.CreateElement("version").CreateElement("text").SetText("2.0")

	vevent := vcalendar.CreateElement("components").CreateElement("vevent")
	eventProps := vevent.CreateElement("properties")
	eventProps.CreateElement("uid").CreateElement("text").SetText(uuid.New().String())
	eventProps.CreateElement("dtstamp").CreateElement("date-time").
		SetText(e.now().UTC().Format("2006-01-02T15:04:05Z"))
	eventProps.CreateElement("dtstart").CreateElement("date-time").
		SetText(anchor.UTC().Format("2006-01-02T15:04:05Z"))
	eventProps.CreateElement("summary").CreateElement("text").SetText(title)

	recur := eventProps.CreateElement("rrule").CreateElement("recur")
	recur.CreateElement("freq").SetText(freqName(opts.Freq))
	if opts.Interval > 1 {
		recur.CreateElement("interval").SetText(strconv.Itoa(opts.Interval))
	}
	for _, rw := range opts.Byweekday {
		recur.CreateElement("byday").SetText(bydayValue(rw))
	}
	for _, md := range opts.Bymonthday {
		recur.CreateElement("bymonthday").SetText(strconv.Itoa(md))
	}
	for _, m := range opts.Bymonth {
		recur.CreateElement("bymonth").SetText(strconv.Itoa(m))
	}
	if !opts.Until.IsZero() {
		recur.CreateElement("until").SetText(opts.Until.UTC().Format("2006-01-02T15:04:05Z"))
	}

	doc.Indent(2)
	out, err := doc.WriteToString()
	if err != nil {
		e.logger.Debug("xcal export failed", "rule", text, "error", err)
		return ""
	}
	return out
}

// bydayValue renders an RRULE weekday with its optional ordinal, e.g. "MO",
// "3TU" or "-1FR".
func bydayValue(rw rrule.Weekday) string {
	base := weekdayToRRule[weekdayFromRRule(rw)].String()
	if n := rw.N(); n != 0 {
		return strconv.Itoa(n) + base
	}
	return base
}

