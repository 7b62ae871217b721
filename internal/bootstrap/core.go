package bootstrap

import (
	"context"
	"strings"
	"time"

	"kb-assistant-be/internal/config"
	"kb-assistant-be/internal/pkg/logger"
	"kb-assistant-be/pkg/kintone"
	"kb-assistant-be/pkg/knowledge"
	"kb-assistant-be/pkg/llm"
	"kb-assistant-be/pkg/llm/factory"
	"kb-assistant-be/pkg/metrics"
	"kb-assistant-be/pkg/rag/executor"
	"kb-assistant-be/pkg/rag/keyword"
	"kb-assistant-be/pkg/rag/prompt"
	"kb-assistant-be/pkg/rag/response"

	"github.com/redis/go-redis/v9"
)

const kintoneTimeout = 30 * time.Second

// Core is the question-answering pipeline without any chat delivery. The
// server and the CLI both build on it.
type Core struct {
	Logger    logger.ILogger
	Metrics   *metrics.Metrics
	Exporter  *knowledge.Exporter
	Extractor *keyword.Extractor
	Pipeline  *executor.PipelineExecutor

	redis *redis.Client
}

func NewCore(ctx context.Context, cfg *config.Config, log logger.ILogger, m *metrics.Metrics) *Core {
	core := &Core{Logger: log, Metrics: m}

	cache := core.newCache(ctx, cfg)
	core.Exporter = knowledge.NewExporter(newSources(cfg), cache, cfg.Cache.TTL, log, m)
	core.Extractor = keyword.NewExtractor(cfg.Chatwork.BotName)

	provider, err := factory.NewLLMProvider(ctx, factory.Settings{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		APIKey:   cfg.Ai.GeminiAPIKey,
		BaseURL:  cfg.Ai.OllamaBaseURL,
	})
	if err != nil {
		// Answers degrade to document excerpts until the provider is fixed.
		log.Warn("Bootstrap", "LLM provider unavailable", map[string]interface{}{
			"provider": cfg.Ai.LLMProvider,
			"error":    err.Error(),
		})
		provider = nil
	} else {
		log.Info("Bootstrap", "Using LLM provider", map[string]interface{}{
			"provider": cfg.Ai.LLMProvider,
			"model":    cfg.Ai.LLMModel,
		})
	}

	style := prompt.Style{
		Personality:  cfg.Presentation.Personality,
		MaxSentences: cfg.Presentation.MaxSentences,
		Forbidden:    prompt.DefaultStyle().Forbidden,
	}
	synth := response.NewSynthesizer(provider, style, log, m,
		llm.WithTemperature(cfg.Ai.Temperature),
		llm.WithMaxTokens(cfg.Ai.MaxOutputTokens),
	)

	core.Pipeline = executor.NewPipelineExecutor(core.Extractor, core.Exporter, synth, log)
	return core
}

func (c *Core) newCache(ctx context.Context, cfg *config.Config) knowledge.Cache {
	if cfg.Cache.Driver != "redis" {
		return knowledge.NewMemoryCache(cfg.Cache.TTL)
	}

	opt, err := redis.ParseURL(cfg.Cache.RedisURL)
	if err != nil {
		c.Logger.Warn("Bootstrap", "Failed to parse Redis URL, using it as address", map[string]interface{}{
			"error": err.Error(),
		})
		opt = &redis.Options{Addr: cfg.Cache.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		c.Logger.Warn("Bootstrap", "Redis unreachable, falling back to memory cache", map[string]interface{}{
			"error": err.Error(),
		})
		_ = rdb.Close()
		return knowledge.NewMemoryCache(cfg.Cache.TTL)
	}

	c.redis = rdb
	return knowledge.NewRedisCache(rdb)
}

// newSources lists the sources in export order. Missing tokens surface as
// configuration errors on the first export, not here.
func newSources(cfg *config.Config) []knowledge.Source {
	linkBase := kintoneBaseURL(cfg.Kintone.Domain)
	client := kintone.NewClient(linkBase, kintoneTimeout)

	source := func(s config.KintoneSource, tokenKey string) kintone.SourceConfig {
		return kintone.SourceConfig{
			App:      kintone.App{ID: s.AppID, Token: s.Token},
			LinkBase: linkBase,
			TokenKey: tokenKey,
		}
	}

	return []knowledge.Source{
		kintone.NewMeetingMinutesSource(client, source(cfg.Kintone.MeetingMinutes, "KINTONE_API_TOKEN_JM"), cfg.Kintone.MinutesFromDate),
		kintone.NewScheduleSource(client, source(cfg.Kintone.Schedule, "KINTONE_API_TOKEN_SCHEDULE"), cfg.Kintone.ScheduleRecordID),
		kintone.NewRulebookSource(client, source(cfg.Kintone.Rulebook, "KINTONE_API_TOKEN_RULEBOOK")),
	}
}

// kintoneBaseURL accepts the domain with or without a scheme.
func kintoneBaseURL(domain string) string {
	domain = strings.TrimRight(strings.TrimSpace(domain), "/")
	if domain == "" || strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		return domain
	}
	return "https://" + domain
}

func (c *Core) Close() {
	if c.redis != nil {
		_ = c.redis.Close()
	}
}
