package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"kb-assistant-be/internal/constant"
	"kb-assistant-be/internal/dto"
	"kb-assistant-be/internal/pkg/logger"
	"kb-assistant-be/internal/tracer"
	"kb-assistant-be/pkg/events"
	"kb-assistant-be/pkg/knowledge"
	"kb-assistant-be/pkg/metrics"
	"kb-assistant-be/pkg/qalog"
	"kb-assistant-be/pkg/rag/executor"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Webhook outcomes, also used as metric labels.
const (
	OutcomeAccepted = "accepted"
	OutcomeSkipped  = "skipped"
	OutcomeEmpty    = "empty_question"
)

// replyTimeout is the budget for posting the reply once the pipeline is done.
const replyTimeout = 15 * time.Second

// Pipeline answers one question.
type Pipeline interface {
	Execute(ctx context.Context, question string) (*executor.Result, error)
}

// Replier posts to the originating chat room.
type Replier interface {
	Dispatch(ctx context.Context, roomID int64, text string) error
	SendPrefixAsync(ctx context.Context, roomID int64) <-chan error
	SendApology(ctx context.Context, roomID int64)
	SendText(ctx context.Context, roomID int64, text string) error
}

// QuestionCleaner strips chat markup from the raw message body.
type QuestionCleaner interface {
	StripMentions(question string) string
}

// KnowledgeCache is the purgeable export cache.
type KnowledgeCache interface {
	Purge(ctx context.Context) error
	SourceNames() []string
}

type IAssistantService interface {
	// HandleWebhook accepts a chat message and answers it in the background.
	// It returns the outcome used for the acknowledgement.
	HandleWebhook(ctx context.Context, event dto.WebhookEvent) string
	Ask(ctx context.Context, question string) (*dto.AskResponse, error)
	PurgeCache(ctx context.Context) (*dto.PurgeCacheResponse, error)
	// Wait blocks until every background answer has finished.
	Wait()
}

type AssistantConfig struct {
	BotAccountID int64
	Timeout      time.Duration
}

type assistantService struct {
	cfg       AssistantConfig
	pipeline  Pipeline
	replier   Replier
	cleaner   QuestionCleaner
	cache     KnowledgeCache
	publisher IPublisherService
	events    EventPublisher
	logger    logger.ILogger
	metrics   *metrics.Metrics
	wg        sync.WaitGroup
	now       func() time.Time
}

// NewAssistantService accepts a nil events publisher.
func NewAssistantService(
	cfg AssistantConfig,
	pipeline Pipeline,
	replier Replier,
	cleaner QuestionCleaner,
	cache KnowledgeCache,
	publisher IPublisherService,
	eventPublisher EventPublisher,
	log logger.ILogger,
	m *metrics.Metrics,
) IAssistantService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &assistantService{
		cfg:       cfg,
		pipeline:  pipeline,
		replier:   replier,
		cleaner:   cleaner,
		cache:     cache,
		publisher: publisher,
		events:    eventPublisher,
		logger:    log,
		metrics:   m,
		now:       time.Now,
	}
}

func (s *assistantService) HandleWebhook(ctx context.Context, event dto.WebhookEvent) string {
	sender := event.SenderID()
	if s.cfg.BotAccountID != 0 && sender == s.cfg.BotAccountID {
		s.metrics.WebhookEvent(OutcomeSkipped)
		s.logger.Debug("Webhook", "Message from bot itself, skipped", map[string]interface{}{
			"room_id":    event.RoomID,
			"message_id": event.MessageID,
		})
		return OutcomeSkipped
	}

	question := s.cleaner.StripMentions(event.Body)
	outcome := OutcomeAccepted
	if question == "" {
		outcome = OutcomeEmpty
	}
	s.metrics.WebhookEvent(outcome)

	s.logger.Info("Webhook", "Message accepted", map[string]interface{}{
		"room_id":    event.RoomID,
		"account_id": sender,
		"message_id": event.MessageID,
		"outcome":    outcome,
	})

	// The request context ends with the HTTP response.
	bg := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if outcome == OutcomeEmpty {
			s.replyEmpty(bg, event.RoomID)
			return
		}
		s.answer(bg, event.RoomID, sender, question)
	}()

	return outcome
}

func (s *assistantService) Wait() {
	s.wg.Wait()
}

func (s *assistantService) replyEmpty(ctx context.Context, roomID int64) {
	if err := s.replier.SendText(ctx, roomID, constant.MessageEmptyQuestion); err != nil {
		s.logger.Warn("Assistant", "Empty-question reply failed", map[string]interface{}{
			"room_id": roomID,
			"error":   err.Error(),
		})
	}
}

// answer runs the pipeline and posts exactly one reply: the answer or the
// apology.
func (s *assistantService) answer(parent context.Context, roomID, requesterID int64, question string) {
	start := s.now()
	spanCtx, span := tracer.Tracer().Start(parent, "assistant.answer")
	defer span.End()
	span.SetAttributes(attribute.Int64("chat.room_id", roomID))

	ctx, cancel := context.WithTimeout(spanCtx, s.cfg.Timeout)
	defer cancel()

	// Replies and log entries must still go out after the pipeline deadline.
	replyCtx, cancelReply := context.WithTimeout(context.WithoutCancel(spanCtx), s.cfg.Timeout+replyTimeout)
	defer cancelReply()

	entry := qalog.Entry{
		ID:          uuid.NewString(),
		Timestamp:   start,
		RequesterID: requesterID,
		RoomID:      roomID,
		Question:    question,
	}

	apologized := false
	apologize := func(cause error) {
		if apologized {
			return
		}
		apologized = true
		s.replier.SendApology(replyCtx, roomID)
		entry.Answer = constant.MessageApology
		entry.Mode = metrics.ModeApology
		entry.Error = cause.Error()
		span.RecordError(cause)
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Assistant", "Pipeline panicked", map[string]interface{}{
				"room_id": roomID,
				"panic":   fmt.Sprint(r),
			})
			apologize(fmt.Errorf("panic: %v", r))
		}
		entry.ProcessingTime = s.now().Sub(start)
		s.metrics.Answer(entry.Mode, entry.ProcessingTime)
		span.SetAttributes(attribute.String("assistant.mode", entry.Mode))
		s.publishEntry(replyCtx, entry)
	}()

	s.replier.SendPrefixAsync(ctx, roomID)

	res, err := s.pipeline.Execute(ctx, question)
	if err != nil {
		s.logger.Error("Assistant", "Pipeline failed", map[string]interface{}{
			"room_id": roomID,
			"error":   err.Error(),
		})
		s.publishExportFailures(replyCtx, err)
		apologize(err)
		return
	}
	if res.ExportErr != nil {
		s.publishExportFailures(replyCtx, res.ExportErr)
	}

	entry.Answer = res.Answer.Text
	entry.Mode = answerMode(res)
	entry.PromptTokens = res.Answer.PromptTokens
	entry.CitedIDs = res.CitedIDs()
	entry.InvalidCitations = res.Answer.InvalidCitations
	if res.Answer.BackendErr != nil {
		entry.Error = res.Answer.BackendErr.Error()
	}

	if err := s.replier.Dispatch(replyCtx, roomID, res.Answer.Text); err != nil {
		s.logger.Error("Assistant", "Reply failed", map[string]interface{}{
			"room_id": roomID,
			"error":   err.Error(),
		})
		apologize(err)
		return
	}

	s.logger.Info("Assistant", "Answer posted", map[string]interface{}{
		"room_id":       roomID,
		"mode":          entry.Mode,
		"keywords":      res.Keywords,
		"ranked":        len(res.Ranked),
		"cited_ids":     entry.CitedIDs,
		"fetch_ms":      res.FetchDuration.Milliseconds(),
		"generation_ms": res.GenerationDuration.Milliseconds(),
	})
}

// publishEntry never blocks the reply path on the sink.
func (s *assistantService) publishEntry(ctx context.Context, entry qalog.Entry) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEntry(ctx, entry); err != nil {
		s.logger.Warn("Assistant", "Failed to queue QA log entry", map[string]interface{}{
			"id":    entry.ID,
			"error": err.Error(),
		})
	}
}

func (s *assistantService) publishExportFailures(ctx context.Context, err error) {
	if s.events == nil {
		return
	}
	var failures []knowledge.SourceError
	var exportErr *knowledge.ExportError
	if errors.As(err, &exportErr) {
		failures = exportErr.Failures
	} else {
		failures = []knowledge.SourceError{{Source: "knowledge", Err: err}}
	}
	for _, f := range failures {
		if pubErr := s.events.Publish(ctx, events.ExportFailed(f.Source, f.Err, s.now())); pubErr != nil {
			s.logger.Warn("Assistant", "Failed to publish export failure", map[string]interface{}{
				"source": f.Source,
				"error":  pubErr.Error(),
			})
			return
		}
	}
}

func (s *assistantService) Ask(ctx context.Context, question string) (*dto.AskResponse, error) {
	question = s.cleaner.StripMentions(question)
	res, err := s.pipeline.Execute(ctx, question)
	if err != nil {
		return nil, err
	}

	resp := &dto.AskResponse{
		Question:         res.Question,
		Answer:           res.Answer.Text,
		Mode:             answerMode(res),
		Keywords:         res.Keywords,
		Citations:        nonNilStrings(res.Answer.Citations),
		InvalidCitations: res.Answer.InvalidCitations,
		CitedIDs:         nonNilStrings(res.CitedIDs()),
		Documents:        res.Documents,
		Ranked:           make([]dto.RankedDocumentDTO, 0, len(res.Ranked)),
		PromptTokens:     res.Answer.PromptTokens,
		Performance: dto.PerformanceDTO{
			FetchMs:      res.FetchDuration.Milliseconds(),
			RankMs:       res.RankDuration.Milliseconds(),
			GenerationMs: res.GenerationDuration.Milliseconds(),
			TotalMs:      res.TotalDuration.Milliseconds(),
		},
	}
	for _, d := range res.Ranked {
		resp.Ranked = append(resp.Ranked, dto.RankedDocumentDTO{
			ID:        d.ID,
			Kind:      d.Kind,
			SourceURL: d.SourceURL,
			Score:     d.Score,
		})
	}
	for _, w := range res.Answer.Warnings {
		resp.Warnings = append(resp.Warnings, w.Kind+": "+w.Message)
	}
	if res.ExportErr != nil {
		resp.ExportError = res.ExportErr.Error()
	}
	return resp, nil
}

func (s *assistantService) PurgeCache(ctx context.Context) (*dto.PurgeCacheResponse, error) {
	if err := s.cache.Purge(ctx); err != nil {
		return nil, err
	}
	sources := s.cache.SourceNames()
	s.logger.Info("Assistant", "Knowledge cache purged", map[string]interface{}{
		"sources": sources,
	})

	if s.events != nil {
		if err := s.events.Publish(ctx, events.CachePurged(sources, s.now())); err != nil {
			s.logger.Warn("Assistant", "Failed to publish purge event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return &dto.PurgeCacheResponse{Sources: sources}, nil
}

func answerMode(res *executor.Result) string {
	switch {
	case res.Answer.Empty:
		return metrics.ModeEmpty
	case res.Answer.Degraded:
		return metrics.ModeDegraded
	default:
		return metrics.ModeGrounded
	}
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
