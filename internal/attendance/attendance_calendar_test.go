package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorkingDays(t *testing.T) {
	loc := time.UTC

	t.Run("full past month enumerates every weekday", func(t *testing.T) {
		asOf := time.Date(2025, time.August, 1, 9, 0, 0, 0, loc)
		days := workingDays(2025, time.July, loc, asOf, false)
		assert.Len(t, days, 23)
		for _, d := range days {
			assert.NotEqual(t, time.Saturday, d.Weekday())
			assert.NotEqual(t, time.Sunday, d.Weekday())
		}
	})

	t.Run("today excluded by default", func(t *testing.T) {
		asOf := time.Date(2025, time.July, 10, 14, 0, 0, 0, loc) // Thursday
		days := workingDays(2025, time.July, loc, asOf, false)
		assert.Len(t, days, 7) // Jul 1-4, 7-9
		assert.Equal(t, 9, days[len(days)-1].Day())
	})

	t.Run("today included when requested", func(t *testing.T) {
		asOf := time.Date(2025, time.July, 10, 14, 0, 0, 0, loc)
		days := workingDays(2025, time.July, loc, asOf, true)
		assert.Len(t, days, 8)
		assert.Equal(t, 10, days[len(days)-1].Day())
	})

	t.Run("future month yields nothing", func(t *testing.T) {
		asOf := time.Date(2025, time.June, 30, 0, 0, 0, 0, loc)
		days := workingDays(2025, time.July, loc, asOf, false)
		assert.Empty(t, days)
	})
}

func TestDetectHolidays(t *testing.T) {
	loc := time.UTC
	d1 := time.Date(2025, time.July, 1, 0, 0, 0, 0, loc)
	d2 := time.Date(2025, time.July, 2, 0, 0, 0, 0, loc)

	var events []CheckinEvent
	for i := 0; i < 10; i++ {
		name := string(rune('a' + i))
		events = append(events, CheckinEvent{EmployeeName: name, Time: d1.Add(8 * time.Hour)})
	}
	// only one of ten punches on d2, right at the 10% threshold
	events = append(events, CheckinEvent{EmployeeName: "a", Time: d2.Add(8 * time.Hour)})

	holidays := detectHolidays([]time.Time{d1, d2}, events, loc, 0.1)
	assert.Len(t, holidays, 1)
	assert.True(t, sameDate(holidays[0], d2))

	t.Run("no events means no population, no holidays", func(t *testing.T) {
		assert.Empty(t, detectHolidays([]time.Time{d1, d2}, nil, loc, 0.1))
	})
}

func TestIsoWeekSpan(t *testing.T) {
	loc := time.UTC

	wed := time.Date(2025, time.July, 9, 0, 0, 0, 0, loc)
	mon, sun := isoWeekSpan(wed)
	assert.Equal(t, 7, mon.Day())
	assert.Equal(t, 13, sun.Day())

	// Sunday belongs to the week that started the previous Monday
	sunday := time.Date(2025, time.July, 13, 0, 0, 0, 0, loc)
	mon, sun = isoWeekSpan(sunday)
	assert.Equal(t, 7, mon.Day())
	assert.Equal(t, 13, sun.Day())

	monday := time.Date(2025, time.July, 7, 0, 0, 0, 0, loc)
	mon, _ = isoWeekSpan(monday)
	assert.Equal(t, 7, mon.Day())
}
