package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"kb-assistant-be/internal/pkg/apperror"
	"kb-assistant-be/internal/pkg/logger"
	"kb-assistant-be/pkg/events"
	"kb-assistant-be/pkg/metrics"
	"kb-assistant-be/pkg/qalog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanSink struct {
	err     error
	written chan qalog.Entry
}

func (c *chanSink) Name() string { return "chan" }

func (c *chanSink) Write(ctx context.Context, e qalog.Entry) error {
	c.written <- e
	return c.err
}

func newBus() *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
}

func TestQALogRoundTrip(t *testing.T) {
	bus := newBus()
	defer bus.Close()

	sink := &chanSink{written: make(chan qalog.Entry, 1)}
	evts := &fakeEvents{}
	consumer := NewConsumerService(bus, "qa.log", sink, evts, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(context.Background()))

	publisher := NewPublisherService("qa.log", bus)
	entry := qalog.Entry{
		ID:               "id-1",
		Timestamp:        time.Date(2026, 1, 3, 7, 8, 13, 0, time.UTC),
		RequesterID:      5,
		RoomID:           42,
		Question:         "前受金",
		Answer:           "負債です",
		ProcessingTime:   1500 * time.Millisecond,
		CitedIDs:         []string{"rule_296_26"},
		InvalidCitations: []string{"https://evil.example.com"},
		Mode:             metrics.ModeGrounded,
	}
	require.NoError(t, publisher.PublishEntry(context.Background(), entry))

	select {
	case got := <-sink.written:
		assert.Equal(t, "id-1", got.ID)
		assert.Equal(t, 1500*time.Millisecond, got.ProcessingTime)
		assert.Equal(t, []string{"rule_296_26"}, got.CitedIDs)
	case <-time.After(2 * time.Second):
		t.Fatal("entry was not delivered to the sink")
	}

	assert.Eventually(t, func() bool {
		evts.mu.Lock()
		defer evts.mu.Unlock()
		return len(evts.events) == 1
	}, 2*time.Second, 10*time.Millisecond)

	evts.mu.Lock()
	defer evts.mu.Unlock()
	assert.Equal(t, events.TypeQAAnswered, evts.events[0].EventType())
	assert.Equal(t, []string{apperror.WarningDataQuality}, evts.events[0].Payload()["warnings"])
}

func TestQALogSinkFailureStillPublishes(t *testing.T) {
	bus := newBus()
	defer bus.Close()

	sink := &chanSink{err: errors.New("sheets 503"), written: make(chan qalog.Entry, 1)}
	evts := &fakeEvents{}
	require.NoError(t, NewConsumerService(bus, "qa.log", sink, evts, logger.NewNopLogger()).Consume(context.Background()))

	require.NoError(t, NewPublisherService("qa.log", bus).PublishEntry(context.Background(), qalog.Entry{ID: "id-2", Mode: metrics.ModeEmpty}))

	select {
	case <-sink.written:
	case <-time.After(2 * time.Second):
		t.Fatal("entry was not delivered to the sink")
	}

	assert.Eventually(t, func() bool {
		evts.mu.Lock()
		defer evts.mu.Unlock()
		return len(evts.events) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWarningKinds(t *testing.T) {
	assert.Empty(t, warningKinds(qalog.Entry{Mode: metrics.ModeGrounded}))
	assert.Equal(t, []string{apperror.WarningEmptyResult}, warningKinds(qalog.Entry{Mode: metrics.ModeEmpty}))
}
