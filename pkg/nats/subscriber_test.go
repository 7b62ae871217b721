package nats

import (
	"encoding/json"
	"testing"
	"time"

	"kb-assistant-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEventRoundTrip(t *testing.T) {
	at := time.Date(2026, 1, 3, 7, 8, 13, 0, time.UTC)
	in := events.CachePurged([]string{"rulebook"}, at)

	data, err := json.Marshal(in)
	require.NoError(t, err)

	out, err := DecodeEvent(data)
	require.NoError(t, err)
	assert.Equal(t, "knowledge.cache_purged", out.EventType())
	assert.True(t, at.Equal(out.Timestamp()))
	assert.Equal(t, []interface{}{"rulebook"}, out.Payload()["sources"])
}

func TestDecodeEventRejectsUntyped(t *testing.T) {
	_, err := DecodeEvent([]byte(`{"data":{}}`))
	assert.Error(t, err)

	_, err = DecodeEvent([]byte(`nope`))
	assert.Error(t, err)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.qa.answered", Subject(events.TypeQAAnswered))
}
