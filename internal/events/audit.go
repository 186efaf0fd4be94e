package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
)

// AuditSubscriber persists every domain event as a system log row
type AuditSubscriber struct {
	bus    *Bus
	logs   repositories.SystemLogRepository
	logger *slog.Logger
	done   chan struct{}
}

func NewAuditSubscriber(bus *Bus, logs repositories.SystemLogRepository, logger *slog.Logger) *AuditSubscriber {
	return &AuditSubscriber{
		bus:    bus,
		logs:   logs,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start consumes events until ctx is cancelled or the bus is closed.
func (s *AuditSubscriber) Start(ctx context.Context) error {
	messages, err := s.bus.Subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		defer close(s.done)
		for msg := range messages {
			event, err := DecodeEvent(msg)
			if err != nil {
				s.logger.Error("Dropping undecodable event", "error", err)
				msg.Ack()
				continue
			}

			if err := s.logs.Create(context.Background(), nil, toSystemLog(event)); err != nil {
				s.logger.Error("Failed to persist audit log", "error", err, "event_type", event.Type)
			}
			msg.Ack()
		}
	}()

	s.logger.Info("Audit subscriber started", "topic", s.bus.Topic())
	return nil
}

// Done is closed once the subscriber has drained its stream
func (s *AuditSubscriber) Done() <-chan struct{} {
	return s.done
}

func toSystemLog(event *Event) *models.SystemLog {
	entry := &models.SystemLog{
		UserID:    event.ActorID,
		Action:    event.Action,
		IPAddress: event.IPAddress,
		Status:    event.Status,
		CreatedAt: event.OccurredAt,
	}
	if entry.Action == "" {
		entry.Action = string(event.Type)
	}
	if entry.Status == "" {
		entry.Status = models.LogSuccess
	}
	if event.ResourceType != "" {
		entry.ResourceType = &event.ResourceType
	}
	if event.ResourceID != "" {
		entry.ResourceID = &event.ResourceID
	}

	details := map[string]interface{}{"event_type": event.Type, "event_id": event.ID}
	for k, v := range event.Data {
		details[k] = v
	}
	if raw, err := json.Marshal(details); err == nil {
		entry.Details = datatypes.JSON(raw)
	}

	return entry
}
