package attendance

import "time"

// civilDate truncates a timestamp to its calendar date in loc.
func civilDate(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// workingDays enumerates Monday-Friday dates of the month that fall before
// asOf (or up to and including it when includeToday is set). Future days
// are never evaluated.
func workingDays(year int, month time.Month, loc *time.Location, asOf time.Time, includeToday bool) []time.Time {
	today := civilDate(asOf, loc)
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)

	var days []time.Time
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		if includeToday {
			if d.After(today) {
				continue
			}
		} else if !d.Before(today) {
			continue
		}
		days = append(days, d)
	}
	return days
}

// detectHolidays flags working days where the share of the employee
// population with at least one punch is at or below threshold. This stands
// in for an explicit holiday calendar the upstream does not provide.
func detectHolidays(days []time.Time, events []CheckinEvent, loc *time.Location, threshold float64) []time.Time {
	population := make(map[string]bool)
	presentByDay := make(map[string]map[string]bool)
	for _, ev := range events {
		if ev.EmployeeName == "" {
			continue
		}
		population[ev.EmployeeName] = true
		key := civilDate(ev.Time, loc).Format("2006-01-02")
		if presentByDay[key] == nil {
			presentByDay[key] = make(map[string]bool)
		}
		presentByDay[key][ev.EmployeeName] = true
	}

	if len(population) == 0 {
		return nil
	}

	var holidays []time.Time
	for _, day := range days {
		present := len(presentByDay[day.Format("2006-01-02")])
		if float64(present)/float64(len(population)) <= threshold {
			holidays = append(holidays, day)
		}
	}
	return holidays
}

// isoWeekSpan returns the Monday and Sunday of the week containing d.
func isoWeekSpan(d time.Time) (time.Time, time.Time) {
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	monday := d.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 6)
}
