package main

import (
	"context"

	config "github.com/NordCoder/wanikani-bot/internal/config/wanikani-bot"
	"github.com/NordCoder/wanikani-bot/internal/obs"
	"go.uber.org/zap"
)

func initOTel(ctx context.Context, cfg *config.Config, logger *zap.Logger) func(context.Context) error {
	closer, err := obs.SetupOTel(ctx, cfg.OTEL.AsOTELConfig())
	if err != nil {
		// tracing is best effort, the reminder still goes out
		logger.Warn("otel init", zap.Error(err))
		return func(context.Context) error { return nil }
	}
	return closer.Shutdown
}
