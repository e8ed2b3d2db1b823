package host

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/librecurrence/dates"
	"github.com/cyp0633/librecurrence/rule"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) OutputChanged() {
	m.Called()
}

func testConnector(t *testing.T, notifier OutputNotifier) *Connector {
	t.Helper()
	engine := rule.NewEngineWithConfig(rule.DisabledCacheConfig, nil)
	t.Cleanup(engine.Close)
	return NewConnector(testDates(), engine, dates.Lookup("en-GB"), notifier, nil)
}

func TestConnector_Update(t *testing.T) {
	t.Run("valid data is decoded", func(t *testing.T) {
		c := testConnector(t, nil)
		c.Update(`{"startDate":"23/06/2025","pattern":"week","every":2,"selectedDays":["M","W"],"hasEndDate":false,"description":"every 2 weeks on Monday, Wednesday"}`, true)

		out := c.Outputs()
		assert.True(t, out.IsVisible)
		assert.Equal(t, "every 2 weeks on Monday, Wednesday", out.RecurrenceDescription)
		assert.Contains(t, out.RecurrenceData, `"startDate":"23/06/2025"`)
		assert.Contains(t, out.RecurrenceData, `"pattern":"week"`)
	})

	t.Run("empty input clears data", func(t *testing.T) {
		c := testConnector(t, nil)
		c.Update(`{"startDate":"23/06/2025"}`, true)
		c.Update("", false)

		out := c.Outputs()
		assert.False(t, out.IsVisible)
		assert.Empty(t, out.RecurrenceData)
	})

	t.Run("malformed JSON clears data without failing", func(t *testing.T) {
		c := testConnector(t, nil)
		c.Update(`{"startDate":"23/06/2025"}`, true)
		c.Update(`{broken`, true)

		out := c.Outputs()
		assert.Empty(t, out.RecurrenceData)
		assert.Empty(t, out.RecurrenceDescription)
	})

	t.Run("undecodable dates clear data", func(t *testing.T) {
		c := testConnector(t, nil)
		c.Update(`{"startDate":"not a date"}`, true)

		assert.Empty(t, c.Outputs().RecurrenceData)
	})
}

func TestConnector_SetCancelToggle(t *testing.T) {
	notifier := &mockNotifier{}
	notifier.On("OutputChanged").Return()
	c := testConnector(t, notifier)

	c.ToggleVisibility()
	assert.True(t, c.Outputs().IsVisible)

	desc := rule.Description{
		StartDate: time.Date(2025, 6, 23, 0, 0, 0, 0, time.UTC),
		Pattern:   rule.PatternDay,
		Every:     1,
		Text:      "every day",
	}
	c.Set(desc)

	out := c.Outputs()
	assert.False(t, out.IsVisible, "saving hides the picker")
	assert.Equal(t, "every day", out.RecurrenceDescription)

	c.ToggleVisibility()
	c.Cancel()

	out = c.Outputs()
	assert.False(t, out.IsVisible)
	assert.NotEmpty(t, out.RecurrenceData, "cancel keeps the stored data")

	notifier.AssertNumberOfCalls(t, "OutputChanged", 4)
}

func TestConnector_EngineOperations(t *testing.T) {
	c := testConnector(t, nil)

	desc := rule.Description{
		StartDate: time.Date(2025, 6, 23, 0, 0, 0, 0, time.UTC),
		Pattern:   rule.PatternDay,
		Every:     3,
	}
	text, err := c.ToRule(desc)
	require.NoError(t, err)
	assert.Equal(t, "FREQ=DAILY;INTERVAL=3", text)

	got, err := c.FromRule("FREQ=DAILY;INTERVAL=3")
	require.NoError(t, err)
	assert.Equal(t, rule.PatternDay, got.Pattern)
	assert.Equal(t, 3, got.Every)

	_, err = c.FromRule("garbage")
	assert.Error(t, err)

	assert.Equal(t, "every 3 days", c.Describe("FREQ=DAILY;INTERVAL=3"))

	occ := c.Occurrences("FREQ=DAILY;DTSTART=20250623T000000Z", 5)
	require.Len(t, occ, 5)
	assert.Equal(t, time.Date(2025, 6, 23, 0, 0, 0, 0, time.UTC), occ[0])

	assert.NoError(t, c.ValidateRule("FREQ=WEEKLY;BYDAY=MO"))
	assert.Error(t, c.ValidateRule("garbage"))

	doc := c.ExportCalendar("FREQ=WEEKLY;BYDAY=MO", "Team sync")
	assert.Contains(t, doc, "RRULE:FREQ=WEEKLY;BYDAY=MO")
}
