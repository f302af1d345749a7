package main

import (
	config "github.com/NordCoder/wanikani-bot/internal/config/wanikani-bot"
	"github.com/NordCoder/wanikani-bot/internal/obs"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// initLogger tags every line of this run with a fresh run id.
func initLogger(cfg *config.Config) (*zap.Logger, string, error) {
	runID := uuid.NewString()
	l, err := obs.NewLogger(cfg.AsLoggerConfig(runID))
	if err != nil {
		return nil, "", err
	}
	return l, runID, nil
}
