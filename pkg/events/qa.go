package events

import "time"

const (
	TypeQAAnswered    = "qa.answered"
	TypeCachePurged   = "knowledge.cache_purged"
	TypeExportFailure = "knowledge.export_failed"
)

// QAAnswered is emitted after an answer is posted and its log entry stored.
func QAAnswered(id string, roomID int64, mode string, citedIDs []string, warnings []string, elapsed time.Duration, at time.Time) BaseEvent {
	if citedIDs == nil {
		citedIDs = []string{}
	}
	if warnings == nil {
		warnings = []string{}
	}
	return BaseEvent{
		Type: TypeQAAnswered,
		Data: map[string]interface{}{
			"id":            id,
			"room_id":       roomID,
			"mode":          mode,
			"cited_ids":     citedIDs,
			"warnings":      warnings,
			"processing_ms": elapsed.Milliseconds(),
		},
		OccurredAt: at,
	}
}

func CachePurged(sources []string, at time.Time) BaseEvent {
	return BaseEvent{
		Type:       TypeCachePurged,
		Data:       map[string]interface{}{"sources": sources},
		OccurredAt: at,
	}
}

// ExportFailed carries the source that failed and the error text.
func ExportFailed(source string, err error, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeExportFailure,
		Data: map[string]interface{}{
			"source": source,
			"error":  err.Error(),
		},
		OccurredAt: at,
	}
}
