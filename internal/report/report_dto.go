package report

import (
	"time"

	"github.com/xnk3-aplus/360-Base/internal/attendance"
	"github.com/xnk3-aplus/360-Base/internal/basehr"
	"github.com/xnk3-aplus/360-Base/internal/leave"
)

// EmployeeReport is the assembled monthly activity report for one person.
// Sections are independent: an upstream outage blanks its section and is
// recorded in SectionErrors instead of failing the whole report.
type EmployeeReport struct {
	RunID        string     `json:"run_id"`
	EmployeeName string     `json:"employee_name"`
	Email        string     `json:"email,omitempty"`
	Username     string     `json:"username,omitempty"`
	Year         int        `json:"year"`
	Month        time.Month `json:"month"`
	GeneratedAt  time.Time  `json:"generated_at"`

	Attendance *attendance.Report `json:"attendance,omitempty"`
	Leaves     []ClassifiedLeave  `json:"leaves,omitempty"`
	Tasks      *TaskSection       `json:"tasks,omitempty"`
	OKR        *OKRSection        `json:"okr,omitempty"`
	Workflow   *WorkflowSection   `json:"workflow,omitempty"`
	Feed       *FeedSection       `json:"feed,omitempty"`
	Insight    string             `json:"insight,omitempty"`

	SectionErrors map[string]string `json:"section_errors,omitempty"`
}

// ClassifiedLeave pairs a leave request with its classified category.
type ClassifiedLeave struct {
	Request    attendance.TimeoffRequest `json:"request"`
	Category   leave.Category            `json:"category"`
	Confidence float64                   `json:"confidence"`
}

// TaskSection summarizes wework activity inside the month.
type TaskSection struct {
	Total          int           `json:"total"`
	Completed      int           `json:"completed"`
	InProgress     int           `json:"in_progress"`
	Overdue        int           `json:"overdue"`
	CompletionRate float64       `json:"completion_rate"`
	Items          []basehr.Task `json:"items,omitempty"`
}

// OKRSection summarizes goal check-ins inside the month.
type OKRSection struct {
	CycleName     string               `json:"cycle_name"`
	CheckinCount  int                  `json:"checkin_count"`
	LastCheckinAt *time.Time           `json:"last_checkin_at,omitempty"`
	Checkins      []basehr.GoalCheckin `json:"checkins,omitempty"`
}

// WorkflowSection lists the employee's workflow jobs.
type WorkflowSection struct {
	JobCount int          `json:"job_count"`
	Jobs     []basehr.Job `json:"jobs,omitempty"`
}

// FeedSection summarizes internal social-feed posts authored by the
// employee inside the month.
type FeedSection struct {
	PostCount int               `json:"post_count"`
	Items     []basehr.FeedItem `json:"items,omitempty"`
}

// BatchResult is the outcome of one whole-directory run.
type BatchResult struct {
	RunID     string        `json:"run_id"`
	Year      int           `json:"year"`
	Month     time.Month    `json:"month"`
	Generated int           `json:"generated"`
	Emailed   int           `json:"emailed"`
	Failures  []BatchError  `json:"failures,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Took      time.Duration `json:"took"`
}

// BatchError records one employee whose report or delivery failed; the run
// continues past it.
type BatchError struct {
	EmployeeName string `json:"employee_name"`
	Stage        string `json:"stage"` // "generate" or "deliver"
	Error        string `json:"error"`
}
