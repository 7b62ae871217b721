package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kb-assistant-be/internal/pkg/logger"
	"kb-assistant-be/pkg/metrics"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultCacheTTL = time.Hour
	// DefaultFetchTimeout bounds one shared upstream fetch of a source.
	DefaultFetchTimeout = 2 * time.Minute
)

// SourceError records one source whose export was aborted.
type SourceError struct {
	Source string
	Err    error
}

// ExportError is returned together with the documents of the sources that
// did succeed.
type ExportError struct {
	Failures []SourceError
}

func (e *ExportError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Source, f.Err))
	}
	return "knowledge export failed: " + strings.Join(parts, "; ")
}

func (e *ExportError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// Exporter turns every configured source into TaggedDocuments, serving
// repeated exports from the cache until the TTL expires.
type Exporter struct {
	sources      []Source
	cache        Cache
	ttl          time.Duration
	fetchTimeout time.Duration
	group        singleflight.Group
	logger       logger.ILogger
	metrics      *metrics.Metrics
}

// NewExporter wires the sources in the order their documents are returned.
// A nil cache disables caching.
func NewExporter(sources []Source, cache Cache, ttl time.Duration, log logger.ILogger, m *metrics.Metrics) *Exporter {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Exporter{
		sources:      sources,
		cache:        cache,
		ttl:          ttl,
		fetchTimeout: DefaultFetchTimeout,
		logger:       log,
		metrics:      m,
	}
}

func (e *Exporter) SourceNames() []string {
	names := make([]string, 0, len(e.sources))
	for _, s := range e.sources {
		names = append(names, s.Name())
	}
	return names
}

// Export returns the documents of all sources. A failing source does not
// hide the others: their documents are returned alongside an *ExportError.
// A source with missing settings fails the whole export before any fetch.
func (e *Exporter) Export(ctx context.Context) ([]TaggedDocument, error) {
	if err := checkSources(e.sources); err != nil {
		return nil, err
	}

	var all []TaggedDocument
	var failures []SourceError

	for _, src := range e.sources {
		docs, err := e.exportSource(ctx, src)
		if err != nil {
			e.logger.Error("Exporter", "Source export aborted", map[string]interface{}{
				"source": src.Name(),
				"error":  err.Error(),
			})
			e.metrics.ExportError(src.Name())
			failures = append(failures, SourceError{Source: src.Name(), Err: err})
			continue
		}
		all = append(all, docs...)
	}

	if len(failures) > 0 {
		return all, &ExportError{Failures: failures}
	}
	return all, nil
}

// ExportSource exports a single source by name.
func (e *Exporter) ExportSource(ctx context.Context, name string) ([]TaggedDocument, error) {
	for _, src := range e.sources {
		if src.Name() == name {
			if err := checkSources([]Source{src}); err != nil {
				return nil, err
			}
			return e.exportSource(ctx, src)
		}
	}
	return nil, fmt.Errorf("unknown source %q", name)
}

func checkSources(sources []Source) error {
	var failures []SourceError
	for _, src := range sources {
		c, ok := src.(Checker)
		if !ok {
			continue
		}
		if err := c.Check(); err != nil {
			failures = append(failures, SourceError{Source: src.Name(), Err: err})
		}
	}
	if len(failures) > 0 {
		return &ExportError{Failures: failures}
	}
	return nil
}

func (e *Exporter) exportSource(ctx context.Context, src Source) ([]TaggedDocument, error) {
	key := src.Name()

	if e.cache == nil {
		return src.Fetch(ctx)
	}

	if docs, ok := e.cache.Get(ctx, key); ok {
		e.metrics.CacheResult(key, true)
		return docs, nil
	}
	e.metrics.CacheResult(key, false)

	// Concurrent misses on the same source share one upstream fetch. The
	// fetch is detached from the caller that started it, so a caller that
	// gives up does not fail the others.
	ch := e.group.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.fetchTimeout)
		defer cancel()

		if docs, ok := e.cache.Get(fetchCtx, key); ok {
			return docs, nil
		}

		start := time.Now()
		docs, err := src.Fetch(fetchCtx)
		if err != nil {
			return nil, err
		}

		if err := e.cache.Set(fetchCtx, key, docs, e.ttl); err != nil {
			e.logger.Warn("Exporter", "Cache write failed", map[string]interface{}{
				"source": key,
				"error":  err.Error(),
			})
		}

		e.logger.Info("Exporter", "Source exported", map[string]interface{}{
			"source":      key,
			"documents":   len(docs),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return docs, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	if res.Shared {
		e.logger.Debug("Exporter", "Joined in-flight export", map[string]interface{}{"source": key})
	}
	return res.Val.([]TaggedDocument), nil
}

// Purge drops every cached source so the next export goes upstream.
func (e *Exporter) Purge(ctx context.Context) error {
	if e.cache == nil {
		return nil
	}

	var errs []error
	for _, src := range e.sources {
		if err := e.cache.Delete(ctx, src.Name()); err != nil {
			errs = append(errs, fmt.Errorf("purge %s: %w", src.Name(), err))
		}
	}
	return errors.Join(errs...)
}
