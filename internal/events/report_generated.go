package events

import "time"

const ReportGeneratedTopic = "hr.report.lifecycle.v1"

type ReportGeneratedEvent struct {
	EventType    string    `json:"event_type"`
	RunID        string    `json:"run_id"`
	EmployeeName string    `json:"employee_name"`
	Year         int       `json:"year"`
	Month        int       `json:"month"`
	OccurredAt   time.Time `json:"occurred_at"`
}
