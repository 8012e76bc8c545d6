package events

import "time"

const ReportEmailSentTopic = "hr.report.email.sent.v1"

type ReportEmailSentEvent struct {
	EventType    string    `json:"event_type"`
	RunID        string    `json:"run_id"`
	EmployeeName string    `json:"employee_name"`
	Recipient    string    `json:"recipient"`
	Year         int       `json:"year"`
	Month        int       `json:"month"`
	OccurredAt   time.Time `json:"occurred_at"`
}
