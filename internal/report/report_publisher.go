package report

import (
	"context"
	"encoding/json"
	"time"

	"github.com/xnk3-aplus/360-Base/internal/events"

	"github.com/segmentio/kafka-go"
)

// EventPublisher emits report lifecycle events.
type EventPublisher interface {
	PublishReportGenerated(ctx context.Context, rep *EmployeeReport) error
	PublishReportEmailSent(ctx context.Context, rep *EmployeeReport) error
}

type noopEventPublisher struct{}

func (noopEventPublisher) PublishReportGenerated(context.Context, *EmployeeReport) error {
	return nil
}

func (noopEventPublisher) PublishReportEmailSent(context.Context, *EmployeeReport) error {
	return nil
}

type kafkaEventPublisher struct {
	writer *kafka.Writer
}

func NewKafkaEventPublisher(writer *kafka.Writer) EventPublisher {
	return &kafkaEventPublisher{writer: writer}
}

func (p *kafkaEventPublisher) PublishReportGenerated(ctx context.Context, rep *EmployeeReport) error {
	event := events.ReportGeneratedEvent{
		EventType:    "report.generated",
		RunID:        rep.RunID,
		EmployeeName: rep.EmployeeName,
		Year:         rep.Year,
		Month:        int(rep.Month),
		OccurredAt:   time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: events.ReportGeneratedTopic,
		Key:   []byte(rep.RunID),
		Value: payload,
	})
}

func (p *kafkaEventPublisher) PublishReportEmailSent(ctx context.Context, rep *EmployeeReport) error {
	event := events.ReportEmailSentEvent{
		EventType:    "report.email_sent",
		RunID:        rep.RunID,
		EmployeeName: rep.EmployeeName,
		Recipient:    rep.Email,
		Year:         rep.Year,
		Month:        int(rep.Month),
		OccurredAt:   time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: events.ReportEmailSentTopic,
		Key:   []byte(rep.RunID),
		Value: payload,
	})
}
