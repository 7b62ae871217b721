package qalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Entry is one answered question. Entries are append-only.
type Entry struct {
	ID               string        `json:"id"`
	Timestamp        time.Time     `json:"timestamp"`
	RequesterID      int64         `json:"requester_id"`
	RequesterName    string        `json:"requester_name,omitempty"`
	RoomID           int64         `json:"room_id"`
	Question         string        `json:"question"`
	Answer           string        `json:"answer"`
	ProcessingTime   time.Duration `json:"processing_time"`
	PromptTokens     int           `json:"prompt_tokens"`
	CitedIDs         []string      `json:"cited_ids"`
	InvalidCitations []string      `json:"invalid_citations,omitempty"`
	Mode             string        `json:"mode"`
	Error            string        `json:"error,omitempty"`
}

// Sink stores entries somewhere durable.
type Sink interface {
	Name() string
	Write(ctx context.Context, e Entry) error
}

var jst = time.FixedZone("JST", 9*60*60)

// FormatJST renders t as "2006-01-02 15:04:05" in Japan time.
func FormatJST(t time.Time) string {
	return t.In(jst).Format("2006-01-02 15:04:05")
}

// Requester renders "name (id)" when the name is known, else the id.
func (e Entry) Requester() string {
	id := strconv.FormatInt(e.RequesterID, 10)
	if e.RequesterName != "" {
		return fmt.Sprintf("%s (%s)", e.RequesterName, id)
	}
	return id
}

// Row is the A:H spreadsheet row of the entry: timestamp, requester,
// question, answer, seconds, prompt tokens, cited ids, error.
func (e Entry) Row() []interface{} {
	var tokens interface{} = ""
	if e.PromptTokens > 0 {
		tokens = e.PromptTokens
	}

	return []interface{}{
		FormatJST(e.Timestamp),
		e.Requester(),
		e.Question,
		e.Answer,
		roundSeconds(e.ProcessingTime),
		tokens,
		strings.Join(e.CitedIDs, ", "),
		e.Error,
	}
}

func roundSeconds(d time.Duration) float64 {
	return float64(d.Milliseconds()/10) / 100
}

// MultiSink writes to every sink and joins their errors. One failing sink
// does not stop the others.
type MultiSink []Sink

func (m MultiSink) Name() string {
	names := make([]string, 0, len(m))
	for _, s := range m {
		names = append(names, s.Name())
	}
	return strings.Join(names, "+")
}

func (m MultiSink) Write(ctx context.Context, e Entry) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, e); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
