package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kb-assistant-be/internal/bootstrap"
	"kb-assistant-be/internal/config"
	"kb-assistant-be/internal/pkg/logger"
	"kb-assistant-be/internal/server"
	"kb-assistant-be/internal/tracer"
	"kb-assistant-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer sysLogger.Sync()

	// 2. Tracer
	shutdownTracer := tracer.InitTracer(cfg.App.OtelEnabled, cfg.App.OtelEndpoint, sysLogger)
	defer shutdownTracer(context.Background())

	// 3. Optional Database for the Q&A log
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.App.Environment != "production")
	if err != nil {
		if !errors.Is(err, database.ErrNoDSN) {
			sysLogger.Error("Main", "Unable to connect to database, Postgres log disabled", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	if err := cfg.ValidateKintone(); err != nil {
		sysLogger.Warn("Main", "Knowledge sources incomplete", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// 4. Bootstrap Dependencies (Container)
	ctx := context.Background()
	container := bootstrap.NewContainer(ctx, gormDB, cfg, sysLogger)

	// 5. Start Background Services
	if err := container.ConsumerService.Consume(ctx); err != nil {
		sysLogger.Error("Main", "QA log consumer failed to start", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// 6. Run Server until a signal arrives
	srv := server.New(cfg, container)
	go func() {
		if err := srv.Run(); err != nil {
			sysLogger.Error("Main", "Server stopped", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.PipelineTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sysLogger.Warn("Main", "Shutdown incomplete", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if err := container.Close(); err != nil {
		sysLogger.Warn("Main", "Container close incomplete", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
