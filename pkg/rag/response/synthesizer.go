package response

import (
	"context"
	"strings"
	"time"

	"kb-assistant-be/internal/constant"
	"kb-assistant-be/internal/pkg/apperror"
	"kb-assistant-be/internal/pkg/logger"
	"kb-assistant-be/pkg/llm"
	"kb-assistant-be/pkg/metrics"
	"kb-assistant-be/pkg/rag/prompt"
	"kb-assistant-be/pkg/rag/ranker"
)

// AnswerPayload is the user-visible answer plus what is known about its
// provenance.
type AnswerPayload struct {
	Text string

	// Citations are URLs in Text that belong to the ranked documents.
	Citations []string
	// InvalidCitations are URLs in Text that were not supplied to the model.
	InvalidCitations []string
	// ReportedDocIDs is the model's own claim of which documents it used.
	ReportedDocIDs []string

	Degraded bool
	Empty    bool

	PromptTokens int
	OutputTokens int
	Duration     time.Duration

	// BackendErr is set when the model failed and the answer was degraded.
	BackendErr error
	Warnings   []apperror.Warning
}

// Synthesizer asks the language model for an answer grounded in the ranked
// documents. It never fails: without a usable model it degrades to the
// top document text.
type Synthesizer struct {
	provider llm.LLMProvider
	style    prompt.Style
	options  []llm.Option
	logger   logger.ILogger
	metrics  *metrics.Metrics
}

// NewSynthesizer accepts a nil provider, in which case every answer is
// degraded.
func NewSynthesizer(provider llm.LLMProvider, style prompt.Style, log logger.ILogger, m *metrics.Metrics, opts ...llm.Option) *Synthesizer {
	return &Synthesizer{
		provider: provider,
		style:    style,
		options:  opts,
		logger:   log,
		metrics:  m,
	}
}

func (s *Synthesizer) Synthesize(ctx context.Context, question string, keywords []string, docs ranker.RankedSet) *AnswerPayload {
	start := time.Now()
	payload := &AnswerPayload{Empty: len(docs) == 0}
	defer func() { payload.Duration = time.Since(start) }()

	if payload.Empty {
		payload.Warnings = append(payload.Warnings, apperror.Warning{
			Kind:    apperror.WarningEmptyResult,
			Message: "no document scored above zero",
		})
	}

	if s.provider == nil {
		s.degrade(payload, docs, &apperror.ConfigurationError{Keys: []string{"GEMINI_API_KEY"}})
		return payload
	}

	promptText := prompt.NewAnswerBuilder(question, keywords, docs, s.style).Build()

	completion, err := s.provider.Generate(ctx, promptText, s.options...)
	if err != nil {
		s.logger.Warn("Synthesizer", "LLM generation failed, degrading", map[string]interface{}{
			"error":     err.Error(),
			"documents": len(docs),
		})
		s.degrade(payload, docs, err)
		return payload
	}

	payload.PromptTokens = completion.PromptTokens
	payload.OutputTokens = completion.OutputTokens

	ids, text := ParseUsedDocuments(completion.Text)
	if strings.TrimSpace(text) == "" {
		s.logger.Warn("Synthesizer", "LLM returned an empty answer", nil)
		if payload.Empty {
			payload.Text = constant.MessageNoInformation
			return payload
		}
		s.degrade(payload, docs, nil)
		return payload
	}

	payload.Text = text
	payload.ReportedDocIDs = ids
	s.checkReportedIDs(ids, docs)

	valid, invalid := ValidateCitations(ExtractURLs(text), docs.URLs())
	payload.Citations = valid
	payload.InvalidCitations = invalid
	if len(invalid) > 0 {
		payload.Warnings = append(payload.Warnings, apperror.Warning{
			Kind:    apperror.WarningDataQuality,
			Message: "answer cites URLs that were not supplied",
			Values:  invalid,
		})
		s.metrics.CitationWarning(len(invalid))
		s.logger.Warn("Synthesizer", "Citation not in ranked set", map[string]interface{}{
			"invalid": invalid,
			"valid":   valid,
		})
	}

	s.logger.Info("Synthesizer", "Answer generated", map[string]interface{}{
		"documents":     len(docs),
		"citations":     len(valid),
		"prompt_tokens": completion.PromptTokens,
	})
	return payload
}

func (s *Synthesizer) degrade(payload *AnswerPayload, docs ranker.RankedSet, cause error) {
	payload.Text, payload.Citations = DegradedAnswer(docs)
	payload.Degraded = !payload.Empty
	payload.BackendErr = cause
}

// checkReportedIDs logs ids the model claims to have used but was never
// given. The claim itself is not trusted for anything else.
func (s *Synthesizer) checkReportedIDs(ids []string, docs ranker.RankedSet) {
	if len(ids) == 0 {
		return
	}
	known := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		known[d.ID] = struct{}{}
	}
	var unknown []string
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		s.logger.Debug("Synthesizer", "Model reported unknown document ids", map[string]interface{}{
			"ids": unknown,
		})
	}
}
