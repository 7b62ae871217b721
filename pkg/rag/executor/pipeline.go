package executor

import (
	"context"
	"time"

	"kb-assistant-be/internal/pkg/apperror"
	"kb-assistant-be/internal/pkg/logger"
	"kb-assistant-be/pkg/knowledge"
	"kb-assistant-be/pkg/rag/keyword"
	"kb-assistant-be/pkg/rag/ranker"
	"kb-assistant-be/pkg/rag/response"
)

// DocumentExporter supplies the knowledge base for one question.
type DocumentExporter interface {
	Export(ctx context.Context) ([]knowledge.TaggedDocument, error)
}

// Result describes one pipeline run from question to answer.
type Result struct {
	Question  string
	Keywords  []string
	Documents int
	Ranked    ranker.RankedSet
	Answer    *response.AnswerPayload

	// ExportErr is set when some sources failed but others succeeded.
	ExportErr error

	FetchDuration      time.Duration
	RankDuration       time.Duration
	GenerationDuration time.Duration
	TotalDuration      time.Duration
}

// CitedIDs returns the ids of ranked documents whose URL the answer cites.
func (r *Result) CitedIDs() []string {
	if r.Answer == nil || len(r.Answer.Citations) == 0 {
		return nil
	}
	cited := make(map[string]struct{}, len(r.Answer.Citations))
	for _, u := range r.Answer.Citations {
		cited[u] = struct{}{}
	}
	var ids []string
	for _, d := range r.Ranked {
		if _, ok := cited[d.SourceURL]; ok {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

// PipelineExecutor runs keyword extraction, export, ranking and synthesis
// in sequence for a single question.
type PipelineExecutor struct {
	extractor   *keyword.Extractor
	exporter    DocumentExporter
	synthesizer *response.Synthesizer
	logger      logger.ILogger
}

func NewPipelineExecutor(
	extractor *keyword.Extractor,
	exporter DocumentExporter,
	synthesizer *response.Synthesizer,
	log logger.ILogger,
) *PipelineExecutor {
	return &PipelineExecutor{
		extractor:   extractor,
		exporter:    exporter,
		synthesizer: synthesizer,
		logger:      log,
	}
}

// Execute answers question. An error is returned only when the knowledge
// base could not be read at all; the partial Result is returned with it.
func (p *PipelineExecutor) Execute(ctx context.Context, question string) (*Result, error) {
	start := time.Now()
	res := &Result{Question: question}
	defer func() { res.TotalDuration = time.Since(start) }()

	res.Keywords = p.extractor.Extract(question)

	fetchStart := time.Now()
	docs, err := p.exporter.Export(ctx)
	res.FetchDuration = time.Since(fetchStart)
	res.Documents = len(docs)
	if err != nil {
		if fatalExport(err, docs) {
			p.logger.Error("Pipeline", "Knowledge export failed", map[string]interface{}{
				"error": err.Error(),
			})
			return res, err
		}
		res.ExportErr = err
		p.logger.Warn("Pipeline", "Continuing with partial knowledge base", map[string]interface{}{
			"error":     err.Error(),
			"documents": len(docs),
		})
	}

	rankStart := time.Now()
	res.Ranked = ranker.Rank(docs, res.Keywords)
	res.RankDuration = time.Since(rankStart)

	p.logger.Info("Pipeline", "Documents ranked", map[string]interface{}{
		"keywords":  res.Keywords,
		"documents": len(docs),
		"ranked":    len(res.Ranked),
		"max_score": res.Ranked.MaxScore(),
	})

	res.Answer = p.synthesizer.Synthesize(ctx, question, res.Keywords, res.Ranked)
	res.GenerationDuration = res.Answer.Duration
	return res, nil
}

// fatalExport reports whether the pipeline must stop: nothing was exported
// or a required setting is missing.
func fatalExport(err error, docs []knowledge.TaggedDocument) bool {
	return len(docs) == 0 || apperror.IsConfiguration(err)
}
