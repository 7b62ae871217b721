package service

import (
	"context"
	"encoding/json"
	"time"

	"kb-assistant-be/internal/pkg/apperror"
	"kb-assistant-be/internal/pkg/logger"
	"kb-assistant-be/pkg/events"
	"kb-assistant-be/pkg/metrics"
	"kb-assistant-be/pkg/qalog"

	"github.com/ThreeDotsLabs/watermill/message"
)

const sinkWriteTimeout = 30 * time.Second

// EventPublisher forwards domain events to the external bus.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the Q&A log topic into the configured sink and
// announces each stored entry. Failures are logged and never retried.
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	sink       qalog.Sink
	events     EventPublisher
	logger     logger.ILogger
}

// NewConsumerService accepts a nil events publisher.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	sink qalog.Sink,
	eventPublisher EventPublisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		sink:       sink,
		events:     eventPublisher,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	// Every message is acked: a log row is never worth a redelivery loop.
	defer msg.Ack()

	var entry qalog.Entry
	if err := json.Unmarshal(msg.Payload, &entry); err != nil {
		cs.logger.Error("QALog", "Failed to unmarshal entry", map[string]interface{}{
			"message_uuid": msg.UUID,
			"error":        err.Error(),
		})
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, sinkWriteTimeout)
	defer cancel()

	if err := cs.sink.Write(writeCtx, entry); err != nil {
		cs.logger.Error("QALog", "Failed to store entry", map[string]interface{}{
			"id":    entry.ID,
			"sink":  cs.sink.Name(),
			"error": err.Error(),
		})
	}

	if cs.events == nil {
		return
	}
	event := events.QAAnswered(entry.ID, entry.RoomID, entry.Mode, entry.CitedIDs, warningKinds(entry), entry.ProcessingTime, entry.Timestamp)
	if err := cs.events.Publish(writeCtx, event); err != nil {
		cs.logger.Warn("QALog", "Failed to publish event", map[string]interface{}{
			"id":    entry.ID,
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}

func warningKinds(e qalog.Entry) []string {
	var kinds []string
	if len(e.InvalidCitations) > 0 {
		kinds = append(kinds, apperror.WarningDataQuality)
	}
	if e.Mode == metrics.ModeEmpty {
		kinds = append(kinds, apperror.WarningEmptyResult)
	}
	return kinds
}
