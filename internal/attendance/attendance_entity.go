package attendance

import "time"

// Day status values. Recomputed on every run, never persisted.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusTimeoff = "timeoff"
)

// First-checkin classification buckets.
const (
	CheckinEarly    = "early"
	CheckinStandard = "standard"
	CheckinLate     = "late"
)

// CheckinEvent is one raw punch from the check-in system.
type CheckinEvent struct {
	EmployeeName string
	Time         time.Time
	IsCheckout   bool
	Note         string
}

// TimeoffRequest is an approved-or-pending leave interval. Both endpoints
// are inclusive; each working day inside consumes one time-off day.
type TimeoffRequest struct {
	ID           string
	EmployeeName string
	Username     string
	StartDate    time.Time
	EndDate      time.Time
	State        string
	Metatype     string
	Reason       string
	ShiftMarkers []string
	LeaveDays    float64
	Approver     string
}

// IsApproved reports whether the request counts against attendance.
func (t TimeoffRequest) IsApproved() bool {
	switch t.State {
	case "approved", "accepted", "done":
		return true
	}
	return false
}

// Skip records one malformed input that was dropped instead of aborting the
// report. Skips are surfaced on the report so they stay countable.
type Skip struct {
	EmployeeName string `json:"employee_name,omitempty"`
	Reason       string `json:"reason"`
}

// DailyRecord is the reconciled outcome for one employee working day.
type DailyRecord struct {
	Date            time.Time  `json:"date"`
	Weekday         string     `json:"weekday"`
	Status          string     `json:"status"`
	FirstCheckin    *time.Time `json:"first_checkin,omitempty"`
	LastCheckout    *time.Time `json:"last_checkout,omitempty"`
	CheckinClass    string     `json:"checkin_class,omitempty"`
	IsLate          bool       `json:"is_late"`
	IsEarlyCheckout bool       `json:"is_early_checkout"`
	TotalRecords    int        `json:"total_records"`
	WorkingHours    float64    `json:"working_hours"`
	TimeoffReason   string     `json:"timeoff_reason,omitempty"`
	TimeoffState    string     `json:"timeoff_state,omitempty"`
	Warnings        []string   `json:"warnings"`
}

// WeeklyHours is one ISO week's 42-hour (configurable) compliance check.
// Weeks with fewer than five days inside the target month are dropped so
// month-boundary weeks do not skew the numbers.
type WeeklyHours struct {
	Week        int       `json:"week"`
	Year        int       `json:"year"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	TotalHours  float64   `json:"total_hours"`
	IsCompliant bool      `json:"is_compliant"`
	Shortfall   float64   `json:"shortfall"`
}

// MonthlySummary aggregates the daily records. Invariant:
// DaysPresent + DaysTimeoff + DaysMissing == TotalWorkingDays.
type MonthlySummary struct {
	TotalWorkingDays       int           `json:"total_working_days"`
	DaysPresent            int           `json:"days_present"`
	DaysTimeoff            int           `json:"days_timeoff"`
	DaysMissing            int           `json:"days_missing"`
	LateCount              int           `json:"late_count"`
	EarlyCheckoutCount     int           `json:"early_checkout_count"`
	AttendanceRate         float64       `json:"attendance_rate"`
	AdjustedAttendanceRate float64       `json:"adjusted_attendance_rate"`
	TotalWorkingHours      float64       `json:"total_working_hours"`
	WeeklyHours            []WeeklyHours `json:"weekly_hours"`
	NonCompliantWeeks      int           `json:"non_compliant_weeks"`
}

// Report is the full per-employee month analysis.
type Report struct {
	EmployeeName        string         `json:"employee_name"`
	ResolvedCheckinName string         `json:"resolved_checkin_name"`
	JoinedAt            *time.Time     `json:"joined_at,omitempty"`
	Year                int            `json:"year"`
	Month               time.Month     `json:"month"`
	Summary             MonthlySummary `json:"summary"`
	Daily               []DailyRecord  `json:"daily_records"`
	MissingDates        []time.Time    `json:"missing_dates"`
	TimeoffDates        []time.Time    `json:"timeoff_dates"`
	Holidays            []time.Time    `json:"holidays"`
	Warnings            []string       `json:"warnings"`
	ActionRequired      []string       `json:"action_required"`
	Evaluation          string         `json:"evaluation"`
	Skipped             []Skip         `json:"skipped_records,omitempty"`
}
