package rule

import (
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"
)

// The grammar numbers weekdays Monday-first while the internal enumeration
// is Sunday-first; these tests pin both ends so the mapping cannot drift.
func TestWeekdayBoundaryMapping(t *testing.T) {
	assert.Equal(t, rrule.SU, weekdayToRRule[time.Sunday])
	assert.Equal(t, rrule.MO, weekdayToRRule[time.Monday])
	assert.Equal(t, rrule.SA, weekdayToRRule[time.Saturday])

	assert.Equal(t, time.Sunday, weekdayFromRRule(rrule.SU))
	assert.Equal(t, time.Monday, weekdayFromRRule(rrule.MO))
	assert.Equal(t, time.Saturday, weekdayFromRRule(rrule.SA))

	for w := time.Sunday; w <= time.Saturday; w++ {
		assert.Equal(t, w, weekdayFromRRule(weekdayToRRule[w]), "weekday %v must survive the round trip", w)
	}
}

func TestDayTokens(t *testing.T) {
	w, ok := Sunday.Weekday()
	require.True(t, ok)
	assert.Equal(t, time.Sunday, w)
	assert.Equal(t, "Sunday", Sunday.Name())

	w, ok = Monday.Weekday()
	require.True(t, ok)
	assert.Equal(t, time.Monday, w)

	_, ok = Day("X").Weekday()
	assert.False(t, ok)

	assert.Equal(t, Sunday, dayFromWeekday(time.Sunday))
	assert.Equal(t, Thursday, dayFromWeekday(time.Thursday))
}

func TestSundayRoundTripThroughRuleText(t *testing.T) {
	e := testEngine()
	// June 22, 2025 is a Sunday.
	desc := Description{
		StartDate:    time.Date(2025, 6, 22, 0, 0, 0, 0, time.UTC),
		Pattern:      PatternWeek,
		Every:        1,
		SelectedDays: []Day{Sunday},
	}

	text, err := e.RuleText(desc)
	require.NoError(t, err)
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=SU", text)

	got, err := e.ParseRuleText(text, mo.Some(desc.StartDate))
	require.NoError(t, err)
	assert.Equal(t, []Day{Sunday}, got.SelectedDays)
}

func TestWeekdayOrdinal(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want int
	}{
		{name: "first day of month", date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), want: 1},
		{name: "seventh is still first", date: time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC), want: 1},
		{name: "eighth starts second", date: time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC), want: 2},
		{name: "third tuesday", date: time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC), want: 3},
		{name: "fifth sunday", date: time.Date(2025, 6, 29, 0, 0, 0, 0, time.UTC), want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, weekdayOrdinal(tt.date))
		})
	}
}

func TestIsLastWeekdayOfMonth(t *testing.T) {
	// June 2025 has four Fridays after the 20th: the 27th is the last.
	assert.False(t, isLastWeekdayOfMonth(time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)))
	assert.True(t, isLastWeekdayOfMonth(time.Date(2025, 6, 27, 0, 0, 0, 0, time.UTC)))
	// February 2025: the 22nd is the last Saturday of a 28-day month.
	assert.True(t, isLastWeekdayOfMonth(time.Date(2025, 2, 22, 0, 0, 0, 0, time.UTC)))
}

func TestOrdinalName(t *testing.T) {
	assert.Equal(t, "last", ordinalName(-1))
	assert.Equal(t, "1st", ordinalName(1))
	assert.Equal(t, "2nd", ordinalName(2))
	assert.Equal(t, "3rd", ordinalName(3))
	assert.Equal(t, "4th", ordinalName(4))
	assert.Equal(t, "5th", ordinalName(5))
}
