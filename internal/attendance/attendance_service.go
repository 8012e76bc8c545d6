package attendance

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/xnk3-aplus/360-Base/internal/identity"

	"go.uber.org/zap"
)

// Rules holds the attendance business constants. None of the defaults have
// a documented business justification upstream, so every one of them is
// tunable through config.
type Rules struct {
	EarlyStartHour     int
	LateCutoffHour     int
	LateCutoffMinute   int
	EndOfDayHour       int
	EndOfDayMinute     int
	LunchBreakHours    float64
	HolidayThreshold   float64
	WeeklyQuotaHours   float64
	IncludeToday       bool
	AsOf               time.Time // zero value means time.Now()
	MaxExpectedPunches int
}

func DefaultRules() Rules {
	return Rules{
		EarlyStartHour:     8,
		LateCutoffHour:     8,
		LateCutoffMinute:   30,
		EndOfDayHour:       17,
		EndOfDayMinute:     30,
		LunchBreakHours:    1,
		HolidayThreshold:   0.1,
		WeeklyQuotaHours:   42,
		MaxExpectedPunches: 4,
	}
}

// Analyzer reconciles one month of raw punches against approved time-off
// intervals for every employee. It is rebuilt from fresh API data on each
// run; nothing is persisted.
type Analyzer struct {
	rules    Rules
	loc      *time.Location
	events   []CheckinEvent
	timeoffs []TimeoffRequest
	dir      *identity.Directory
	resolver *identity.Resolver
	logger   *zap.Logger

	eventsByName map[string][]CheckinEvent
	checkinNames []string
	timeoffNames []string
	skipped      []Skip
}

func NewAnalyzer(
	rules Rules,
	loc *time.Location,
	events []CheckinEvent,
	timeoffs []TimeoffRequest,
	dir *identity.Directory,
	resolver *identity.Resolver,
	logger ...*zap.Logger,
) *Analyzer {
	l := zap.L().Named("attendance.analyzer")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.analyzer")
	}
	if loc == nil {
		loc = time.Local
	}
	if resolver == nil {
		resolver = identity.NewResolver(l)
	}

	a := &Analyzer{
		rules:        rules,
		loc:          loc,
		timeoffs:     timeoffs,
		dir:          dir,
		resolver:     resolver,
		logger:       l,
		eventsByName: make(map[string][]CheckinEvent),
	}

	for _, ev := range events {
		if ev.EmployeeName == "" || ev.Time.IsZero() {
			a.skipped = append(a.skipped, Skip{
				EmployeeName: ev.EmployeeName,
				Reason:       "checkin event missing employee name or timestamp",
			})
			continue
		}
		a.events = append(a.events, ev)
		a.eventsByName[ev.EmployeeName] = append(a.eventsByName[ev.EmployeeName], ev)
	}
	for name := range a.eventsByName {
		evs := a.eventsByName[name]
		sort.Slice(evs, func(i, j int) bool { return evs[i].Time.Before(evs[j].Time) })
		a.checkinNames = append(a.checkinNames, name)
	}
	sort.Strings(a.checkinNames)

	seen := make(map[string]bool)
	for _, to := range timeoffs {
		if to.EmployeeName != "" && !seen[to.EmployeeName] {
			seen[to.EmployeeName] = true
			a.timeoffNames = append(a.timeoffNames, to.EmployeeName)
		}
	}
	sort.Strings(a.timeoffNames)

	if n := len(a.skipped); n > 0 {
		l.Warn("malformed checkin records skipped", zap.Int("count", n))
	}

	return a
}

// EmployeeNames returns every distinct name seen in the check-in data.
func (a *Analyzer) EmployeeNames() []string {
	return a.checkinNames
}

// AnalyzeEmployee builds the full monthly report for one employee.
// The employee name may come from any of the three identity spaces; it is
// fuzzy-matched into the check-in and time-off data independently.
func (a *Analyzer) AnalyzeEmployee(name string, year int, month time.Month) *Report {
	asOf := a.rules.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}

	days := workingDays(year, month, a.loc, asOf, a.rules.IncludeToday)
	holidays := detectHolidays(days, a.events, a.loc, a.rules.HolidayThreshold)
	holidaySet := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		holidaySet[h.Format("2006-01-02")] = true
	}

	checkinName := name
	if resolved, ok := a.resolver.Match(name, a.checkinNames); ok {
		checkinName = resolved
	}

	joinedAt := a.joinDate(name, checkinName)
	timeoffByDay, timeoffSkips := a.timeoffDays(name, days, holidaySet)

	report := &Report{
		EmployeeName:        name,
		ResolvedCheckinName: checkinName,
		JoinedAt:            joinedAt,
		Year:                year,
		Month:               month,
		Holidays:            holidays,
		Skipped:             append(append([]Skip(nil), a.skipped...), timeoffSkips...),
	}

	var (
		totalHours float64
		summary    MonthlySummary
	)

	for _, day := range days {
		if holidaySet[day.Format("2006-01-02")] {
			continue
		}
		// days before the join date count in neither numerator nor
		// denominator of any statistic
		if joinedAt != nil && day.Before(civilDate(*joinedAt, a.loc)) {
			continue
		}

		rec := a.analyzeDay(checkinName, day)

		if to, ok := timeoffByDay[day.Format("2006-01-02")]; ok {
			// approved absence wins over a stray punch on the same day
			rec.Status = StatusTimeoff
			rec.TimeoffReason = to.Reason
			rec.TimeoffState = to.State
			summary.DaysTimeoff++
			report.TimeoffDates = append(report.TimeoffDates, day)
		} else if rec.Status == StatusPresent {
			summary.DaysPresent++
			if rec.IsLate {
				summary.LateCount++
			}
			if rec.IsEarlyCheckout {
				summary.EarlyCheckoutCount++
			}
			totalHours += rec.WorkingHours
		} else {
			summary.DaysMissing++
			report.MissingDates = append(report.MissingDates, day)
		}

		summary.TotalWorkingDays++
		report.Daily = append(report.Daily, rec)
	}

	if summary.TotalWorkingDays > 0 {
		summary.AttendanceRate = round2(float64(summary.DaysPresent) / float64(summary.TotalWorkingDays) * 100)
	}
	adjustedDays := summary.TotalWorkingDays - summary.DaysTimeoff
	if adjustedDays > 0 {
		summary.AdjustedAttendanceRate = round2(float64(summary.DaysPresent) / float64(adjustedDays) * 100)
	} else {
		summary.AdjustedAttendanceRate = 100
	}
	summary.TotalWorkingHours = round2(totalHours)
	summary.WeeklyHours = a.weeklyHours(report.Daily, year, month)
	for _, w := range summary.WeeklyHours {
		if !w.IsCompliant {
			summary.NonCompliantWeeks++
		}
	}

	report.Summary = summary
	report.Warnings = a.monthlyWarnings(summary)
	report.ActionRequired = a.actionRequired(summary, report.MissingDates)
	report.Evaluation = evaluate(summary.AdjustedAttendanceRate, summary.LateCount, summary.DaysMissing)

	return report
}

// AnalyzeAll reports on every employee present in the check-in data.
func (a *Analyzer) AnalyzeAll(year int, month time.Month) []*Report {
	reports := make([]*Report, 0, len(a.checkinNames))
	for _, name := range a.checkinNames {
		reports = append(reports, a.AnalyzeEmployee(name, year, month))
	}
	return reports
}

func (a *Analyzer) analyzeDay(checkinName string, day time.Time) DailyRecord {
	rec := DailyRecord{
		Date:    day,
		Weekday: day.Weekday().String(),
		Status:  StatusAbsent,
	}

	var dayEvents []CheckinEvent
	for _, ev := range a.eventsByName[checkinName] {
		if sameDate(civilDate(ev.Time, a.loc), day) {
			dayEvents = append(dayEvents, ev)
		}
	}

	if len(dayEvents) == 0 {
		rec.Warnings = []string{"❌ Không có bản ghi chấm công"}
		return rec
	}

	rec.Status = StatusPresent
	rec.TotalRecords = len(dayEvents)

	first := dayEvents[0].Time.In(a.loc)
	last := dayEvents[len(dayEvents)-1].Time.In(a.loc)
	rec.FirstCheckin = &first

	firstMinutes := first.Hour()*60 + first.Minute()
	rec.CheckinClass = CheckinStandard
	switch {
	case firstMinutes < a.rules.EarlyStartHour*60:
		rec.CheckinClass = CheckinEarly
	case firstMinutes > a.rules.LateCutoffHour*60+a.rules.LateCutoffMinute:
		rec.CheckinClass = CheckinLate
		rec.IsLate = true
		rec.Warnings = append(rec.Warnings, fmt.Sprintf("⏰ Đi trễ: Check-in lúc %s", first.Format("15:04")))
	}

	if len(dayEvents) > 1 {
		rec.LastCheckout = &last
		endMinutes := a.rules.EndOfDayHour*60 + a.rules.EndOfDayMinute
		if last.Hour()*60+last.Minute() < endMinutes {
			rec.IsEarlyCheckout = true
			rec.Warnings = append(rec.Warnings, fmt.Sprintf("🏃 Về sớm: Check-out lúc %s", last.Format("15:04")))
		}
	} else {
		rec.Warnings = append(rec.Warnings, "⚠️ Chỉ có 1 lần chấm công (thiếu check-out)")
	}

	rec.WorkingHours = a.workingHours(dayEvents)

	if a.rules.MaxExpectedPunches > 0 && len(dayEvents) > a.rules.MaxExpectedPunches {
		rec.Warnings = append(rec.Warnings, fmt.Sprintf("❓ Số lần chấm công nhiều (%d lần)", len(dayEvents)))
	}

	if len(rec.Warnings) == 0 {
		rec.Warnings = []string{"✅ Bình thường"}
	}

	return rec
}

// workingHours is last checkout minus first checkin minus the lunch break,
// floored at zero. The last punch of the day serves as the checkout even
// when the feed does not flag it; a single punch yields zero hours.
func (a *Analyzer) workingHours(dayEvents []CheckinEvent) float64 {
	if len(dayEvents) < 2 {
		return 0
	}
	firstIn := dayEvents[0].Time
	for _, ev := range dayEvents {
		if !ev.IsCheckout {
			firstIn = ev.Time
			break
		}
	}
	lastOut := dayEvents[len(dayEvents)-1].Time
	hours := lastOut.Sub(firstIn).Hours() - a.rules.LunchBreakHours
	return round2(math.Max(0, hours))
}

// timeoffDays expands the employee's approved intervals into the set of
// affected working days for the month. Skips are returned rather than
// accumulated on the analyzer so repeated calls stay independent.
func (a *Analyzer) timeoffDays(name string, days []time.Time, holidaySet map[string]bool) (map[string]TimeoffRequest, []Skip) {
	timeoffName := name
	if resolved, ok := a.resolver.Match(name, a.timeoffNames); ok {
		timeoffName = resolved
	}

	daySet := make(map[string]bool, len(days))
	for _, d := range days {
		if !holidaySet[d.Format("2006-01-02")] {
			daySet[d.Format("2006-01-02")] = true
		}
	}

	out := make(map[string]TimeoffRequest)
	var skips []Skip
	for _, to := range a.timeoffs {
		if to.EmployeeName != timeoffName || !to.IsApproved() {
			continue
		}
		if to.StartDate.IsZero() || to.EndDate.IsZero() {
			skips = append(skips, Skip{
				EmployeeName: to.EmployeeName,
				Reason:       fmt.Sprintf("timeoff %s has invalid date range", to.ID),
			})
			continue
		}
		start := civilDate(to.StartDate, a.loc)
		end := civilDate(to.EndDate, a.loc)
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			key := d.Format("2006-01-02")
			if daySet[key] {
				out[key] = to
			}
		}
	}
	return out, skips
}

func (a *Analyzer) joinDate(names ...string) *time.Time {
	if a.dir == nil {
		return nil
	}
	for _, n := range names {
		if emp, ok := a.resolver.Resolve(n, a.dir); ok && !emp.JoinedAt.IsZero() {
			t := emp.JoinedAt
			return &t
		}
	}
	return nil
}

func (a *Analyzer) weeklyHours(daily []DailyRecord, year int, month time.Month) []WeeklyHours {
	type bucket struct {
		week, year int
		start, end time.Time
		hours      float64
	}
	buckets := make(map[[2]int]*bucket)

	for _, rec := range daily {
		if rec.Status != StatusPresent {
			continue
		}
		isoYear, isoWeek := rec.Date.ISOWeek()
		key := [2]int{isoYear, isoWeek}

		b, ok := buckets[key]
		if !ok {
			monday, sunday := isoWeekSpan(rec.Date)
			weekdaysInMonth := 0
			var first, last time.Time
			for d := monday; !d.After(sunday); d = d.AddDate(0, 0, 1) {
				if d.Year() != year || d.Month() != month {
					continue
				}
				if first.IsZero() {
					first = d
				}
				last = d
				if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
					weekdaysInMonth++
				}
			}
			// weeks with fewer than five weekdays inside the month would
			// skew the quota check
			if weekdaysInMonth < 5 {
				buckets[key] = nil
				continue
			}
			b = &bucket{week: isoWeek, year: isoYear, start: first, end: last}
			buckets[key] = b
		}
		if b == nil {
			continue
		}
		b.hours += rec.WorkingHours
	}

	keys := make([][2]int, 0, len(buckets))
	for k, b := range buckets {
		if b != nil {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})

	out := make([]WeeklyHours, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		total := round2(b.hours)
		out = append(out, WeeklyHours{
			Week:        b.week,
			Year:        b.year,
			StartDate:   b.start,
			EndDate:     b.end,
			TotalHours:  total,
			IsCompliant: total >= a.rules.WeeklyQuotaHours,
			Shortfall:   round2(math.Max(0, a.rules.WeeklyQuotaHours-total)),
		})
	}
	return out
}

func (a *Analyzer) monthlyWarnings(s MonthlySummary) []string {
	var warnings []string
	if s.DaysMissing > 0 {
		warnings = append(warnings, fmt.Sprintf("⚠️ Thiếu %d ngày công chưa giải trình", s.DaysMissing))
	}
	if s.LateCount > 3 {
		warnings = append(warnings, fmt.Sprintf("⏰ Đi trễ %d lần trong tháng", s.LateCount))
	}
	if s.EarlyCheckoutCount > 3 {
		warnings = append(warnings, fmt.Sprintf("🏃 Về sớm %d lần trong tháng", s.EarlyCheckoutCount))
	}
	if s.AdjustedAttendanceRate < 85 {
		warnings = append(warnings, fmt.Sprintf("📉 Tỷ lệ chuyên cần thấp: %.1f%%", s.AdjustedAttendanceRate))
	}
	for _, w := range s.WeeklyHours {
		if !w.IsCompliant {
			warnings = append(warnings, fmt.Sprintf("⚠️ Tuần %d không đủ %.0f giờ: %.2fh (thiếu %.2fh)",
				w.Week, a.rules.WeeklyQuotaHours, w.TotalHours, w.Shortfall))
		}
	}
	return warnings
}

func (a *Analyzer) actionRequired(s MonthlySummary, missing []time.Time) []string {
	var actions []string
	if s.DaysMissing > 0 {
		dates := make([]string, len(missing))
		for i, d := range missing {
			dates[i] = d.Format("02/01")
		}
		actions = append(actions, fmt.Sprintf("📝 Cần bù công hoặc giải trình cho %d ngày: %s",
			s.DaysMissing, strings.Join(dates, ", ")))
	}
	if s.LateCount > 5 {
		actions = append(actions, "⚠️ Cần cải thiện giờ giấc đến công ty")
	}
	if s.NonCompliantWeeks > 0 {
		actions = append(actions, fmt.Sprintf("⚠️ Cần đảm bảo đủ %.0f giờ/tuần cho %d tuần",
			a.rules.WeeklyQuotaHours, s.NonCompliantWeeks))
	}
	return actions
}

func evaluate(adjustedRate float64, lateCount, missingDays int) string {
	switch {
	case adjustedRate >= 95 && lateCount == 0 && missingDays == 0:
		return "⭐ Xuất sắc - Hoàn hảo"
	case adjustedRate >= 90 && lateCount <= 2 && missingDays <= 1:
		return "✅ Tốt - Đạt yêu cầu"
	case adjustedRate >= 80 && lateCount <= 5 && missingDays <= 3:
		return "⚠️ Trung bình - Cần chú ý"
	default:
		return "❌ Kém - Cần cải thiện ngay"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
