package qalog

import (
	"context"

	"kb-assistant-be/internal/pkg/logger"
)

// FileSink writes entries as structured log lines. It is the local record
// when no remote sink is configured.
type FileSink struct {
	logger logger.ILogger
}

func NewFileSink(log logger.ILogger) *FileSink {
	return &FileSink{logger: log}
}

func (s *FileSink) Name() string { return "file" }

func (s *FileSink) Write(ctx context.Context, e Entry) error {
	s.logger.Info("QALog", "Question answered", map[string]interface{}{
		"id":                e.ID,
		"timestamp":         FormatJST(e.Timestamp),
		"requester":         e.Requester(),
		"room_id":           e.RoomID,
		"question":          e.Question,
		"answer":            e.Answer,
		"processing_ms":     e.ProcessingTime.Milliseconds(),
		"prompt_tokens":     e.PromptTokens,
		"cited_ids":         e.CitedIDs,
		"invalid_citations": e.InvalidCitations,
		"mode":              e.Mode,
		"error":             e.Error,
	})
	return nil
}
