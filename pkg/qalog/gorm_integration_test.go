package qalog

import (
	"context"
	"os"
	"testing"
	"time"

	"kb-assistant-be/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real Postgres when DB_CONNECTION_STRING is set.
func TestGormSinkIntegration(t *testing.T) {
	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err)

	sink, err := NewGormSink(db)
	require.NoError(t, err)

	e := sampleEntry()
	e.ID = uuid.NewString()
	e.Timestamp = time.Now().UTC().Truncate(time.Second)
	require.NoError(t, sink.Write(context.Background(), e))
	t.Cleanup(func() { db.Delete(&QALog{}, "id = ?", e.ID) })

	var got QALog
	require.NoError(t, db.First(&got, "id = ?", e.ID).Error)
	assert.Equal(t, e.Question, got.Question)
	assert.Equal(t, int64(2345), got.ProcessingMs)
	assert.JSONEq(t, `["rule_296_26","jm_117_381"]`, string(got.CitedIDs))
}
