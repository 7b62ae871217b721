package knowledge

import "context"

// Document kinds, one per record-store source shape.
const (
	KindRecord   = "record"
	KindSchedule = "schedule"
	KindRule     = "rule"
)

// TaggedDocument is the uniform unit of exported knowledge.
// It is never mutated after the exporter creates it.
type TaggedDocument struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Source    string `json:"source"`
	SourceURL string `json:"source_url"`
	Body      string `json:"body"`
}

// Source produces the full current document set of one data source.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]TaggedDocument, error)
}

// Checker is implemented by sources that can validate their settings
// without a network call.
type Checker interface {
	Check() error
}
