// Package host adapts the recurrence engine to a hosting application. The
// host exchanges a JSON-shaped description, a visibility flag and a
// display-only description string, and supplies the active locale.
package host

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/samber/mo"

	"github.com/cyp0633/librecurrence/dates"
	"github.com/cyp0633/librecurrence/rule"
)

// Payload is the serialized recurrence description exchanged with the host.
// Dates travel as locale-formatted text; rrule and description are derived
// caches and never authoritative.
type Payload struct {
	StartDate     string   `json:"startDate"`
	Pattern       string   `json:"pattern"`
	Every         int      `json:"every"`
	SelectedDays  []string `json:"selectedDays"`
	MonthlyOption string   `json:"monthlyOption"`
	YearlyOption  string   `json:"yearlyOption"`
	EndDate       *string  `json:"endDate"`
	HasEndDate    bool     `json:"hasEndDate"`
	RRule         string   `json:"rrule,omitempty"`
	Description   string   `json:"description,omitempty"`
}

// Encode serializes a description into the host payload shape.
func Encode(desc rule.Description, ds *dates.Service, loc dates.Locale) Payload {
	p := Payload{
		StartDate:     ds.Format(desc.StartDate, loc, dates.DateOnly),
		Pattern:       string(desc.Pattern),
		Every:         desc.Every,
		MonthlyOption: string(desc.MonthlyOption),
		YearlyOption:  string(desc.YearlyOption),
		HasEndDate:    desc.HasEndDate(),
		RRule:         desc.RuleText,
		Description:   desc.Text,
	}
	for _, d := range desc.SelectedDays {
		p.SelectedDays = append(p.SelectedDays, string(d))
	}
	if end, ok := desc.EndDate.Get(); ok {
		formatted := ds.Format(end, loc, dates.DateOnly)
		p.EndDate = &formatted
	}
	return p
}

// Decode parses a host payload back into a structured description. A payload
// flagged hasEndDate without an endDate value is rejected.
func Decode(p Payload, ds *dates.Service, loc dates.Locale) (rule.Description, error) {
	start, err := ds.Parse(p.StartDate, loc)
	if err != nil {
		return rule.Description{}, err
	}

	desc := rule.Description{
		StartDate:     start,
		Pattern:       rule.Pattern(p.Pattern),
		Every:         p.Every,
		MonthlyOption: rule.MonthlyOption(p.MonthlyOption),
		YearlyOption:  rule.YearlyOption(p.YearlyOption),
		EndDate:       mo.None[time.Time](),
		RuleText:      p.RRule,
		Text:          p.Description,
	}
	if desc.Every < 1 {
		desc.Every = 1
	}
	if !desc.Pattern.Valid() {
		desc.Pattern = rule.PatternDay
	}
	if desc.MonthlyOption == "" {
		desc.MonthlyOption = rule.MonthlyOnDay
	}
	if desc.YearlyOption == "" {
		desc.YearlyOption = rule.YearlyOnDate
	}
	for _, d := range p.SelectedDays {
		desc.SelectedDays = append(desc.SelectedDays, rule.Day(d))
	}
	if p.HasEndDate {
		if p.EndDate == nil {
			return rule.Description{}, errors.New("hasEndDate is set but endDate is missing")
		}
		end, err := ds.Parse(*p.EndDate, loc)
		if err != nil {
			return rule.Description{}, err
		}
		desc.EndDate = mo.Some(end)
	}
	return desc, nil
}

// Marshal renders a payload as JSON text.
func Marshal(p Payload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Unmarshal parses JSON text into a payload.
func Unmarshal(raw string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Payload{}, err
	}
	return p, nil
}
