package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/finbridge/escalator/internal/api"
	v1 "github.com/finbridge/escalator/internal/api/v1"
	"github.com/finbridge/escalator/internal/billwerk"
	"github.com/finbridge/escalator/internal/config"
	"github.com/finbridge/escalator/internal/httpclient"
	"github.com/finbridge/escalator/internal/letterxpress"
	"github.com/finbridge/escalator/internal/logger"
	"github.com/finbridge/escalator/internal/paywise"
	"github.com/finbridge/escalator/internal/service"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// HTTP Client
			httpclient.NewDefaultClient,

			// Provider clients
			billwerk.NewTokenSource,
			billwerk.NewClient,
			paywise.NewClient,
			letterxpress.NewClient,

			// Orchestration
			service.NewEscalationService,

			// API
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)
	app.Run()
}

func provideHandlers(
	cfg *config.Configuration,
	log *logger.Logger,
	escalationService service.EscalationService,
) api.Handlers {
	return api.Handlers{
		Webhook: v1.NewWebhookHandler(cfg, escalationService, log),
	}
}

func provideRouter(handlers api.Handlers) *gin.Engine {
	return api.NewRouter(handlers)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting webhook listener", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}
