package service

import (
	"context"
	"encoding/json"

	"kb-assistant-be/pkg/qalog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// IPublisherService hands Q&A log entries to the in-process bus.
type IPublisherService interface {
	PublishEntry(ctx context.Context, entry qalog.Entry) error
}

type publisherService struct {
	topicName string
	publisher message.Publisher
}

func NewPublisherService(topicName string, publisher message.Publisher) IPublisherService {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
	}
}

func (ps *publisherService) PublishEntry(ctx context.Context, entry qalog.Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return ps.publisher.Publish(ps.topicName, msg)
}
