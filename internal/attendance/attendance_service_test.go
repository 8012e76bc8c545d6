package attendance_test

import (
	"testing"
	"time"

	"github.com/xnk3-aplus/360-Base/internal/attendance"
	"github.com/xnk3-aplus/360-Base/internal/identity"

	"github.com/stretchr/testify/assert"
)

var loc = time.UTC

func punch(name string, day, hour, minute int, checkout bool) attendance.CheckinEvent {
	return attendance.CheckinEvent{
		EmployeeName: name,
		Time:         time.Date(2025, time.July, day, hour, minute, 0, 0, loc),
		IsCheckout:   checkout,
	}
}

func workday(name string, day, inH, inM, outH, outM int) []attendance.CheckinEvent {
	return []attendance.CheckinEvent{
		punch(name, day, inH, inM, false),
		punch(name, day, outH, outM, true),
	}
}

// July 2025: the 1st is a Tuesday, so the first week has working days 1-4
// and the week of the 7th-11th sits entirely inside the month.
func testRules(asOfDay int) attendance.Rules {
	r := attendance.DefaultRules()
	r.AsOf = time.Date(2025, time.July, asOfDay, 23, 0, 0, 0, loc)
	return r
}

func newAnalyzer(rules attendance.Rules, events []attendance.CheckinEvent, timeoffs []attendance.TimeoffRequest, dir *identity.Directory) *attendance.Analyzer {
	return attendance.NewAnalyzer(rules, loc, events, timeoffs, dir, identity.NewResolver())
}

func TestAnalyzer_DayCountInvariant(t *testing.T) {
	var events []attendance.CheckinEvent
	events = append(events, workday("Nguyen Van An", 1, 8, 0, 17, 30)...)
	events = append(events, workday("Nguyen Van An", 2, 7, 59, 17, 30)...)
	events = append(events, workday("Nguyen Van An", 3, 8, 31, 17, 0)...)
	// second employee keeps every day above the holiday threshold
	for d := 1; d <= 4; d++ {
		events = append(events, workday("Tran Thi Bich", d, 8, 15, 17, 45)...)
	}

	timeoffs := []attendance.TimeoffRequest{{
		ID:           "to-1",
		EmployeeName: "Nguyen Van An",
		StartDate:    time.Date(2025, time.July, 4, 0, 0, 0, 0, loc),
		EndDate:      time.Date(2025, time.July, 4, 0, 0, 0, 0, loc),
		State:        "approved",
		Reason:       "nghỉ phép",
	}}

	a := newAnalyzer(testRules(5), events, timeoffs, nil)
	rep := a.AnalyzeEmployee("Nguyen Van An", 2025, time.July)

	s := rep.Summary
	assert.Equal(t, 4, s.TotalWorkingDays)
	assert.Equal(t, 3, s.DaysPresent)
	assert.Equal(t, 1, s.DaysTimeoff)
	assert.Equal(t, 0, s.DaysMissing)
	assert.Equal(t, s.TotalWorkingDays, s.DaysPresent+s.DaysTimeoff+s.DaysMissing)

	assert.Equal(t, 75.0, s.AttendanceRate)
	assert.Equal(t, 100.0, s.AdjustedAttendanceRate)
	assert.GreaterOrEqual(t, s.AdjustedAttendanceRate, s.AttendanceRate)
}

func TestAnalyzer_CheckinClassification(t *testing.T) {
	var events []attendance.CheckinEvent
	events = append(events, workday("An", 1, 8, 0, 17, 30)...)  // boundary: standard
	events = append(events, workday("An", 2, 7, 59, 17, 30)...) // early
	events = append(events, workday("An", 3, 8, 30, 17, 30)...) // boundary: standard
	events = append(events, workday("An", 4, 8, 31, 17, 30)...) // late

	a := newAnalyzer(testRules(5), events, nil, nil)
	rep := a.AnalyzeEmployee("An", 2025, time.July)

	assert.Len(t, rep.Daily, 4)
	assert.Equal(t, attendance.CheckinStandard, rep.Daily[0].CheckinClass)
	assert.Equal(t, attendance.CheckinEarly, rep.Daily[1].CheckinClass)
	assert.Equal(t, attendance.CheckinStandard, rep.Daily[2].CheckinClass)
	assert.Equal(t, attendance.CheckinLate, rep.Daily[3].CheckinClass)
	assert.True(t, rep.Daily[3].IsLate)
	assert.Equal(t, 1, rep.Summary.LateCount)
}

func TestAnalyzer_WorkingHoursAndCheckout(t *testing.T) {
	t.Run("full day minus lunch", func(t *testing.T) {
		a := newAnalyzer(testRules(2), workday("An", 1, 8, 0, 17, 30), nil, nil)
		rep := a.AnalyzeEmployee("An", 2025, time.July)
		assert.Equal(t, 8.5, rep.Daily[0].WorkingHours)
		assert.False(t, rep.Daily[0].IsEarlyCheckout)
	})

	t.Run("checkout before end of day flags early leave", func(t *testing.T) {
		a := newAnalyzer(testRules(2), workday("An", 1, 8, 0, 17, 29), nil, nil)
		rep := a.AnalyzeEmployee("An", 2025, time.July)
		assert.True(t, rep.Daily[0].IsEarlyCheckout)
		assert.Equal(t, 1, rep.Summary.EarlyCheckoutCount)
	})

	t.Run("single punch: zero hours, no early-checkout flag", func(t *testing.T) {
		a := newAnalyzer(testRules(2), []attendance.CheckinEvent{punch("An", 1, 8, 0, false)}, nil, nil)
		rep := a.AnalyzeEmployee("An", 2025, time.July)
		d := rep.Daily[0]
		assert.Equal(t, attendance.StatusPresent, d.Status)
		assert.Equal(t, 0.0, d.WorkingHours)
		assert.False(t, d.IsEarlyCheckout)
		assert.Nil(t, d.LastCheckout)
		assert.Contains(t, d.Warnings, "⚠️ Chỉ có 1 lần chấm công (thiếu check-out)")
	})

	t.Run("interval shorter than lunch floors at zero", func(t *testing.T) {
		a := newAnalyzer(testRules(2), workday("An", 1, 8, 0, 8, 30), nil, nil)
		rep := a.AnalyzeEmployee("An", 2025, time.July)
		assert.Equal(t, 0.0, rep.Daily[0].WorkingHours)
	})
}

func TestAnalyzer_TimeoffBeatsPresence(t *testing.T) {
	var events []attendance.CheckinEvent
	for d := 1; d <= 4; d++ {
		events = append(events, workday("Bich", d, 8, 0, 17, 30)...)
	}
	timeoffs := []attendance.TimeoffRequest{
		{
			ID:           "to-2",
			EmployeeName: "Bich",
			StartDate:    time.Date(2025, time.July, 2, 0, 0, 0, 0, loc),
			EndDate:      time.Date(2025, time.July, 2, 0, 0, 0, 0, loc),
			State:        "approved",
			Reason:       "việc gia đình",
		},
		{
			// pending requests never consume a day
			ID:           "to-3",
			EmployeeName: "Bich",
			StartDate:    time.Date(2025, time.July, 3, 0, 0, 0, 0, loc),
			EndDate:      time.Date(2025, time.July, 3, 0, 0, 0, 0, loc),
			State:        "pending",
		},
	}

	a := newAnalyzer(testRules(5), events, timeoffs, nil)
	rep := a.AnalyzeEmployee("Bich", 2025, time.July)

	assert.Equal(t, 1, rep.Summary.DaysTimeoff)
	assert.Equal(t, 3, rep.Summary.DaysPresent)
	assert.Equal(t, attendance.StatusTimeoff, rep.Daily[1].Status)
	assert.Equal(t, "việc gia đình", rep.Daily[1].TimeoffReason)
	assert.Equal(t, attendance.StatusPresent, rep.Daily[2].Status)
}

func TestAnalyzer_MissingDaysAndWarnings(t *testing.T) {
	var events []attendance.CheckinEvent
	events = append(events, workday("Cuong", 1, 8, 0, 17, 30)...)
	// a colleague punches every day so absences are not read as holidays
	for d := 1; d <= 4; d++ {
		events = append(events, workday("Bich", d, 8, 0, 17, 30)...)
	}

	a := newAnalyzer(testRules(5), events, nil, nil)
	rep := a.AnalyzeEmployee("Cuong", 2025, time.July)

	assert.Equal(t, 3, rep.Summary.DaysMissing)
	assert.Len(t, rep.MissingDates, 3)
	assert.Contains(t, rep.Warnings, "⚠️ Thiếu 3 ngày công chưa giải trình")
	assert.NotEmpty(t, rep.ActionRequired)
	assert.Equal(t, rep.Summary.TotalWorkingDays,
		rep.Summary.DaysPresent+rep.Summary.DaysTimeoff+rep.Summary.DaysMissing)
}

func TestAnalyzer_HolidayExcluded(t *testing.T) {
	// ten employees punch on the 1st, nobody on the 2nd: the 2nd is a
	// holiday and must not count against anyone
	var events []attendance.CheckinEvent
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "k"}
	for _, n := range names {
		events = append(events, workday(n, 1, 8, 0, 17, 30)...)
		events = append(events, workday(n, 3, 8, 0, 17, 30)...)
		events = append(events, workday(n, 4, 8, 0, 17, 30)...)
	}

	a := newAnalyzer(testRules(5), events, nil, nil)
	rep := a.AnalyzeEmployee("a", 2025, time.July)

	assert.Len(t, rep.Holidays, 1)
	assert.Equal(t, 2, rep.Holidays[0].Day())
	assert.Equal(t, 3, rep.Summary.TotalWorkingDays)
	assert.Equal(t, 0, rep.Summary.DaysMissing)
	assert.Equal(t, 100.0, rep.Summary.AttendanceRate)
}

func TestAnalyzer_JoinDateExclusion(t *testing.T) {
	dir := identity.NewDirectory([]identity.Employee{{
		ID:          "7",
		Username:    "cuong.le",
		DisplayName: "Lê Văn Cường",
		JoinedAt:    time.Date(2025, time.July, 3, 0, 0, 0, 0, loc),
	}})

	var events []attendance.CheckinEvent
	events = append(events, workday("Le Van Cuong", 3, 8, 0, 17, 30)...)
	events = append(events, workday("Le Van Cuong", 4, 8, 0, 17, 30)...)
	for d := 1; d <= 4; d++ {
		events = append(events, workday("Bich", d, 8, 0, 17, 30)...)
	}

	a := newAnalyzer(testRules(5), events, nil, dir)
	rep := a.AnalyzeEmployee("Le Van Cuong", 2025, time.July)

	// the 1st and 2nd predate the join date: not present, not missing
	assert.Equal(t, 2, rep.Summary.TotalWorkingDays)
	assert.Equal(t, 2, rep.Summary.DaysPresent)
	assert.Equal(t, 0, rep.Summary.DaysMissing)
	assert.NotNil(t, rep.JoinedAt)
}

func TestAnalyzer_FuzzyNameResolution(t *testing.T) {
	var events []attendance.CheckinEvent
	events = append(events, workday("Nguyen Van An", 1, 8, 0, 17, 30)...)

	a := newAnalyzer(testRules(2), events, nil, nil)
	rep := a.AnalyzeEmployee("Nguyễn Văn An", 2025, time.July)

	assert.Equal(t, "Nguyen Van An", rep.ResolvedCheckinName)
	assert.Equal(t, 1, rep.Summary.DaysPresent)
}

func TestAnalyzer_WeeklyCompliance(t *testing.T) {
	var events []attendance.CheckinEvent
	// week of Jul 7-11 sits entirely in the month; 5 x 8.5h = 42.5h
	for d := 7; d <= 11; d++ {
		events = append(events, workday("Full", d, 8, 0, 17, 30)...)
	}
	// 5 x 7h = 35h, short of the 42h quota
	for d := 7; d <= 11; d++ {
		events = append(events, workday("Short", d, 8, 0, 16, 0)...)
	}

	a := newAnalyzer(testRules(12), events, nil, nil)

	t.Run("quota met", func(t *testing.T) {
		rep := a.AnalyzeEmployee("Full", 2025, time.July)
		if assert.Len(t, rep.Summary.WeeklyHours, 1) {
			w := rep.Summary.WeeklyHours[0]
			assert.Equal(t, 42.5, w.TotalHours)
			assert.True(t, w.IsCompliant)
			assert.Equal(t, 0.0, w.Shortfall)
		}
		assert.Equal(t, 0, rep.Summary.NonCompliantWeeks)
	})

	t.Run("quota missed", func(t *testing.T) {
		rep := a.AnalyzeEmployee("Short", 2025, time.July)
		if assert.Len(t, rep.Summary.WeeklyHours, 1) {
			w := rep.Summary.WeeklyHours[0]
			assert.Equal(t, 35.0, w.TotalHours)
			assert.False(t, w.IsCompliant)
			assert.Equal(t, 7.0, w.Shortfall)
		}
		assert.Equal(t, 1, rep.Summary.NonCompliantWeeks)
	})

	t.Run("partial boundary week is dropped", func(t *testing.T) {
		// Jul 1-4 belongs to a week whose Monday is Jun 30
		var evs []attendance.CheckinEvent
		for d := 1; d <= 4; d++ {
			evs = append(evs, workday("Edge", d, 8, 0, 17, 30)...)
		}
		rep := newAnalyzer(testRules(5), evs, nil, nil).AnalyzeEmployee("Edge", 2025, time.July)
		assert.Empty(t, rep.Summary.WeeklyHours)
	})
}

func TestAnalyzer_AdjustedRateWithZeroDenominator(t *testing.T) {
	// every working day is approved time off
	var events []attendance.CheckinEvent
	for d := 1; d <= 4; d++ {
		events = append(events, workday("Bich", d, 8, 0, 17, 30)...)
	}
	timeoffs := []attendance.TimeoffRequest{{
		ID:           "to-4",
		EmployeeName: "An",
		StartDate:    time.Date(2025, time.July, 1, 0, 0, 0, 0, loc),
		EndDate:      time.Date(2025, time.July, 4, 0, 0, 0, 0, loc),
		State:        "approved",
	}}

	a := newAnalyzer(testRules(5), events, timeoffs, nil)
	rep := a.AnalyzeEmployee("An", 2025, time.July)

	assert.Equal(t, 4, rep.Summary.DaysTimeoff)
	assert.Equal(t, 0.0, rep.Summary.AttendanceRate)
	assert.Equal(t, 100.0, rep.Summary.AdjustedAttendanceRate)
}

func TestAnalyzer_Evaluation(t *testing.T) {
	t.Run("perfect month", func(t *testing.T) {
		var events []attendance.CheckinEvent
		for d := 1; d <= 4; d++ {
			events = append(events, workday("An", d, 8, 0, 17, 30)...)
		}
		rep := newAnalyzer(testRules(5), events, nil, nil).AnalyzeEmployee("An", 2025, time.July)
		assert.Equal(t, "⭐ Xuất sắc - Hoàn hảo", rep.Evaluation)
		assert.Empty(t, rep.Warnings)
	})

	t.Run("chronic absence", func(t *testing.T) {
		var events []attendance.CheckinEvent
		events = append(events, workday("An", 1, 8, 0, 17, 30)...)
		for d := 1; d <= 11; d++ {
			if wd := time.Date(2025, time.July, d, 0, 0, 0, 0, loc).Weekday(); wd == time.Saturday || wd == time.Sunday {
				continue
			}
			events = append(events, workday("Bich", d, 8, 0, 17, 30)...)
		}
		rep := newAnalyzer(testRules(12), events, nil, nil).AnalyzeEmployee("An", 2025, time.July)
		assert.Equal(t, "❌ Kém - Cần cải thiện ngay", rep.Evaluation)
	})
}

func TestAnalyzer_SkipsMalformedInput(t *testing.T) {
	events := []attendance.CheckinEvent{
		{EmployeeName: "", Time: time.Date(2025, time.July, 1, 8, 0, 0, 0, loc)},
		{EmployeeName: "An"}, // zero timestamp
		punch("An", 1, 8, 0, false),
		punch("An", 1, 17, 30, true),
	}

	a := newAnalyzer(testRules(2), events, nil, nil)
	rep := a.AnalyzeEmployee("An", 2025, time.July)

	assert.Len(t, rep.Skipped, 2)
	assert.Equal(t, 1, rep.Summary.DaysPresent)
}

func TestAnalyzer_TimeoffSkipsStayPerEmployee(t *testing.T) {
	var events []attendance.CheckinEvent
	events = append(events, workday("An", 1, 8, 0, 17, 30)...)
	events = append(events, workday("Bich", 1, 8, 0, 17, 30)...)

	// approved but with a zero date range: skipped, not fatal
	timeoffs := []attendance.TimeoffRequest{{
		ID:           "to-5",
		EmployeeName: "An",
		State:        "approved",
	}}

	a := newAnalyzer(testRules(2), events, timeoffs, nil)

	assert.Len(t, a.AnalyzeEmployee("An", 2025, time.July).Skipped, 1)

	// re-analysis must not accumulate duplicates
	assert.Len(t, a.AnalyzeEmployee("An", 2025, time.July).Skipped, 1)

	// the broken request belongs to An, not to anyone analyzed later
	assert.Empty(t, a.AnalyzeEmployee("Bich", 2025, time.July).Skipped)
}

func TestAnalyzer_AnalyzeAll(t *testing.T) {
	var events []attendance.CheckinEvent
	events = append(events, workday("An", 1, 8, 0, 17, 30)...)
	events = append(events, workday("Bich", 1, 8, 0, 17, 30)...)

	reports := newAnalyzer(testRules(2), events, nil, nil).AnalyzeAll(2025, time.July)
	assert.Len(t, reports, 2)
	assert.Equal(t, "An", reports[0].EmployeeName)
	assert.Equal(t, "Bich", reports[1].EmployeeName)
}
