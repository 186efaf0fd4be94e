package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/SAP-F-2025/student-service/internal/config"
)

const (
	domainTopic   = "domain-events"
	metadataType  = "event_type"
	outputBufSize = 256
)

// Bus delivers domain events to in-process subscribers over a watermill
// gochannel and, when brokers are configured, mirrors them to kafka.
type Bus struct {
	pubSub   *gochannel.GoChannel
	external message.Publisher
	topic    string
	logger   *slog.Logger
}

func NewBus(cfg config.EventConfig, logger *slog.Logger) (*Bus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	bus := &Bus{
		pubSub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: outputBufSize,
		}, wmLogger),
		topic:  domainTopic,
		logger: logger,
	}

	if cfg.TopicPrefix != "" {
		bus.topic = cfg.TopicPrefix + "." + domainTopic
	}

	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
			Brokers:   cfg.KafkaBrokers,
			Marshaler: kafka.DefaultMarshaler{},
		}, wmLogger)
		if err != nil {
			_ = bus.pubSub.Close()
			return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
		}
		bus.external = publisher
		logger.Info("Kafka event fan-out enabled", "brokers", cfg.KafkaBrokers, "topic", bus.topic)
	}

	return bus, nil
}

// Topic returns the topic every domain event is published on
func (b *Bus) Topic() string {
	return b.topic
}

func (b *Bus) Publish(ctx context.Context, event *Event) error {
	if event.IPAddress == nil {
		event.IPAddress = clientIP(ctx)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event failed: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set(metadataType, string(event.Type))

	if err := b.pubSub.Publish(b.topic, msg); err != nil {
		return fmt.Errorf("publish event failed: %w", err)
	}

	if b.external != nil {
		// external delivery is best effort
		if err := b.external.Publish(b.topic, msg.Copy()); err != nil {
			b.logger.WarnContext(ctx, "Failed to mirror event to kafka", "error", err, "event_type", event.Type)
		}
	}

	b.logger.DebugContext(ctx, "Event published", "event_type", event.Type, "event_id", event.ID)
	return nil
}

// Subscribe returns the stream of domain events. Every message must be acked.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubSub.Subscribe(ctx, b.topic)
}

func (b *Bus) Close() error {
	var firstErr error
	if b.external != nil {
		if err := b.external.Close(); err != nil {
			firstErr = err
		}
	}
	if err := b.pubSub.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// DecodeEvent reads an Event from a bus message
func DecodeEvent(msg *message.Message) (*Event, error) {
	var event Event
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return nil, fmt.Errorf("decode event %s failed: %w", msg.UUID, err)
	}
	return &event, nil
}
