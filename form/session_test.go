package form

import (
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/librecurrence/dates"
	"github.com/cyp0633/librecurrence/rule"
)

// Friday, June 20 2025.
var testNow = time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC)

func testSession(t *testing.T, initial mo.Option[rule.Description]) *Session {
	t.Helper()
	ds := dates.NewServiceWithClock(func() time.Time { return testNow }, nil)
	engine := rule.NewEngineWithConfig(rule.DisabledCacheConfig, nil)
	t.Cleanup(engine.Close)
	return NewSession(ds, engine, dates.Lookup("en-GB"), initial, nil)
}

func TestNewSession_Defaults(t *testing.T) {
	s := testSession(t, mo.None[rule.Description]())

	assert.Empty(t, s.Issues())

	text, preview := s.Preview()
	assert.Equal(t, "FREQ=DAILY;UNTIL=20250920T000000Z", text)
	assert.Equal(t, "every day until Sep 20, 2025", preview)

	desc, ok := s.Description()
	require.True(t, ok)
	assert.Equal(t, rule.PatternDay, desc.Pattern)
	assert.Equal(t, 1, desc.Every)
	assert.Equal(t, time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC), desc.StartDate)
	end, ok := desc.EndDate.Get()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 9, 20, 0, 0, 0, 0, time.UTC), end)
}

func TestNewSession_LoadsInitialDescription(t *testing.T) {
	initial := rule.Description{
		StartDate:     time.Date(2025, 6, 23, 0, 0, 0, 0, time.UTC),
		Pattern:       rule.PatternMonth,
		Every:         1,
		MonthlyOption: rule.MonthlyOnDay,
		YearlyOption:  rule.YearlyOnDate,
		EndDate:       mo.None[time.Time](),
	}
	s := testSession(t, mo.Some(initial))

	assert.Empty(t, s.Issues())
	text, preview := s.Preview()
	assert.Equal(t, "FREQ=MONTHLY;BYMONTHDAY=23", text)
	assert.Equal(t, "every month on day 23", preview)

	desc, ok := s.Description()
	require.True(t, ok)
	assert.False(t, desc.HasEndDate())
}

func TestSession_SetStartDateRecomputesEnd(t *testing.T) {
	s := testSession(t, mo.None[rule.Description]())

	s.SetStartDate("23/06/2025")

	require.Empty(t, s.Issues())
	desc, ok := s.Description()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 23, 0, 0, 0, 0, time.UTC), desc.StartDate)
	end, ok := desc.EndDate.Get()
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 6, 23, 0, 0, 0, 0, time.UTC), end)
}

func TestSession_StartDateValidation(t *testing.T) {
	t.Run("past start blocks save", func(t *testing.T) {
		s := testSession(t, mo.None[rule.Description]())
		s.SetStartDate("19/06/2025")

		issues := s.Issues()
		require.Len(t, issues, 1)
		assert.Equal(t, FieldStartDate, issues[0].Field)

		_, ok := s.Save()
		assert.False(t, ok)
		text, preview := s.Preview()
		assert.Empty(t, text)
		assert.Empty(t, preview)
	})

	t.Run("today is accepted", func(t *testing.T) {
		s := testSession(t, mo.None[rule.Description]())
		s.SetStartDate("20/06/2025")
		assert.Empty(t, s.Issues())
	})

	t.Run("unparseable start", func(t *testing.T) {
		s := testSession(t, mo.None[rule.Description]())
		s.SetStartDate("not a date")

		issues := s.Issues()
		require.Len(t, issues, 1)
		assert.Equal(t, FieldStartDate, issues[0].Field)
	})
}

func TestSession_EndDateValidation(t *testing.T) {
	s := testSession(t, mo.None[rule.Description]())

	s.SetEndDate("01/01/2025")
	issues := s.Issues()
	require.Len(t, issues, 1)
	assert.Equal(t, FieldEndDate, issues[0].Field)

	s.SetEndDate("01/01/2026")
	assert.Empty(t, s.Issues())
}

func TestSession_ChooseEndDateSeedsOneYearOut(t *testing.T) {
	s := testSession(t, mo.None[rule.Description]())
	s.RemoveEndDate()
	s.SetStartDate("25/12/2025")

	// The stale end no longer follows the start, so choosing an end bound
	// reseeds it a year after the start.
	s.ChooseEndDate()

	require.Empty(t, s.Issues())
	desc, ok := s.Description()
	require.True(t, ok)
	end, ok := desc.EndDate.Get()
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC), end)
}

func TestSession_RemoveEndDate(t *testing.T) {
	s := testSession(t, mo.None[rule.Description]())
	s.RemoveEndDate()

	text, preview := s.Preview()
	assert.Equal(t, "FREQ=DAILY", text)
	assert.Equal(t, "every day", preview)
}

func TestSession_WeeklySelection(t *testing.T) {
	s := testSession(t, mo.None[rule.Description]())
	s.RemoveEndDate()
	s.SetPattern(rule.PatternWeek)
	s.ToggleDay(rule.Monday)
	s.ToggleDay(rule.Wednesday)
	s.SetEvery(2)

	text, preview := s.Preview()
	assert.Equal(t, "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE", text)
	assert.Equal(t, "every 2 weeks on Monday, Wednesday", preview)

	// Toggling an already selected day removes it.
	s.ToggleDay(rule.Wednesday)
	text, _ = s.Preview()
	assert.Equal(t, "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO", text)
}

func TestSession_ToggleAllDaysCollapsesToDaily(t *testing.T) {
	s := testSession(t, mo.None[rule.Description]())
	s.RemoveEndDate()
	s.SetPattern(rule.PatternWeek)
	s.SetEvery(3)
	for _, d := range []rule.Day{
		rule.Monday, rule.Tuesday, rule.Wednesday, rule.Thursday,
		rule.Friday, rule.Saturday, rule.Sunday,
	} {
		s.ToggleDay(d)
	}

	text, preview := s.Preview()
	assert.Equal(t, "FREQ=DAILY", text)
	assert.Equal(t, "every day", preview)

	desc, ok := s.Description()
	require.True(t, ok)
	assert.Equal(t, rule.PatternDay, desc.Pattern)
	assert.Equal(t, 1, desc.Every)
	assert.Empty(t, desc.SelectedDays)
}

func TestSession_EveryValidation(t *testing.T) {
	s := testSession(t, mo.None[rule.Description]())
	s.SetEvery(0)

	issues := s.Issues()
	require.Len(t, issues, 1)
	assert.Equal(t, FieldEvery, issues[0].Field)

	s.SetEvery(4)
	assert.Empty(t, s.Issues())
}

func TestSession_SaveStampsDerivedText(t *testing.T) {
	s := testSession(t, mo.None[rule.Description]())

	desc, ok := s.Save()
	require.True(t, ok)
	assert.Equal(t, "FREQ=DAILY;UNTIL=20250920T000000Z", desc.RuleText)
	assert.Equal(t, "every day until Sep 20, 2025", desc.Text)
}

func TestSession_DiscardRestoresSnapshot(t *testing.T) {
	s := testSession(t, mo.None[rule.Description]())
	original, _ := s.Preview()

	s.SetPattern(rule.PatternMonth)
	s.SetEvery(6)
	changed, _ := s.Preview()
	assert.NotEqual(t, original, changed)

	s.Discard()
	text, _ := s.Preview()
	assert.Equal(t, original, text)
}

func TestSession_RemoveClearsRule(t *testing.T) {
	s := testSession(t, mo.None[rule.Description]())
	s.Remove()

	assert.Empty(t, s.Issues())
	text, preview := s.Preview()
	assert.Empty(t, text)
	assert.Empty(t, preview)
}
