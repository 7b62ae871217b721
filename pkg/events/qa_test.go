package events

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQAAnsweredPayload(t *testing.T) {
	at := time.Date(2026, 1, 3, 7, 8, 13, 0, time.UTC)
	e := QAAnswered("abc", 42, "grounded", nil, []string{"citation"}, 1500*time.Millisecond, at)

	assert.Equal(t, "qa.answered", e.EventType())
	assert.Equal(t, at, e.Timestamp())
	assert.Equal(t, []string{}, e.Payload()["cited_ids"])
	assert.Equal(t, int64(1500), e.Payload()["processing_ms"])
	assert.Equal(t, int64(42), e.Payload()["room_id"])
}

func TestExportFailed(t *testing.T) {
	e := ExportFailed("schedule", errors.New("kintone: 520"), time.Now())
	assert.Equal(t, TypeExportFailure, e.EventType())
	assert.Equal(t, "kintone: 520", e.Payload()["error"])
}
