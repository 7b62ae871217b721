package bootstrap

import (
	"context"
	"errors"
	"time"

	"kb-assistant-be/internal/config"
	"kb-assistant-be/internal/controller"
	"kb-assistant-be/internal/pkg/logger"
	"kb-assistant-be/internal/service"
	"kb-assistant-be/pkg/chatwork"
	"kb-assistant-be/pkg/metrics"
	pktNats "kb-assistant-be/pkg/nats"
	"kb-assistant-be/pkg/qalog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

const (
	QALogTopic      = "qa.log"
	chatworkTimeout = 15 * time.Second
)

type Container struct {
	*Core

	// Controllers
	WebhookController controller.IWebhookController
	AdminController   controller.IAdminController

	// Background Services (Exposed for main.go to run)
	AssistantService service.IAssistantService
	ConsumerService  service.IConsumerService

	pubSub  *gochannel.GoChannel
	natsPub *pktNats.Publisher
}

// NewContainer wires the server. db may be nil, in which case Q&A entries
// are not stored in Postgres.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config, sysLogger *logger.ZapLogger) *Container {
	m := metrics.New()
	c := &Container{Core: NewCore(ctx, cfg, sysLogger, m)}

	if err := cfg.ValidateChatwork(); err != nil {
		sysLogger.Warn("Bootstrap", "Replies will fail until configured", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// In-process bus for log entries
	c.pubSub = gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewStdLogger(false, false),
	)

	// NATS is optional; without it events are not published.
	var eventPublisher service.EventPublisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("Bootstrap", "Failed to connect to NATS publisher", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			c.natsPub = natsPub
			eventPublisher = natsPub
		}
	}

	sink := newQALogSink(ctx, cfg, db, sysLogger)

	chatworkClient := chatwork.NewClient(cfg.Chatwork.BaseURL, cfg.Chatwork.APIToken, chatworkTimeout)
	dispatcher := chatwork.NewDispatcher(
		chatworkClient,
		cfg.Presentation.ReplyPrefix,
		cfg.Presentation.ReplySuffix,
		sysLogger,
		m,
	)

	publisherService := service.NewPublisherService(QALogTopic, c.pubSub)
	c.ConsumerService = service.NewConsumerService(c.pubSub, QALogTopic, sink, eventPublisher, sysLogger)

	c.AssistantService = service.NewAssistantService(
		service.AssistantConfig{
			BotAccountID: cfg.Chatwork.BotAccountID,
			Timeout:      cfg.App.PipelineTimeout,
		},
		c.Pipeline,
		dispatcher,
		c.Extractor,
		c.Exporter,
		publisherService,
		eventPublisher,
		sysLogger,
		m,
	)

	c.WebhookController = controller.NewWebhookController(c.AssistantService, cfg.Chatwork.WebhookToken)
	c.AdminController = controller.NewAdminController(c.AssistantService, cfg.App.JwtSecret)

	return c
}

// newQALogSink combines every configured sink. The local file log is always
// present so that no entry is lost when the remote sinks fail.
func newQALogSink(ctx context.Context, cfg *config.Config, db *gorm.DB, sysLogger logger.ILogger) qalog.Sink {
	sinks := qalog.MultiSink{qalog.NewFileSink(logger.NewIsolatedLogger(cfg.App.QALogFilePath))}

	sheetsSink, err := qalog.NewSheetsSink(ctx, cfg.Sheets.Credentials, cfg.Sheets.SpreadsheetID, cfg.Sheets.SheetName)
	if err != nil {
		sysLogger.Warn("Bootstrap", "Google Sheets log disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		sinks = append(sinks, sheetsSink)
	}

	if db != nil {
		gormSink, err := qalog.NewGormSink(db)
		if err != nil {
			sysLogger.Warn("Bootstrap", "Postgres log disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			sinks = append(sinks, gormSink)
		}
	}

	sysLogger.Info("Bootstrap", "QA log sinks ready", map[string]interface{}{
		"sinks": sinks.Name(),
	})
	return sinks
}

// Close releases the bus and outbound connections.
func (c *Container) Close() error {
	var errs []error
	if c.pubSub != nil {
		errs = append(errs, c.pubSub.Close())
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	c.Core.Close()
	return errors.Join(errs...)
}
