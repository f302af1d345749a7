package obs

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogConfig struct {
	Level  string
	Pretty bool
	App    string
	Env    string
	Ver    string
	RunID  string
}

func NewLogger(c LogConfig) (*zap.Logger, error) {
	var cfg zap.Config
	if c.Pretty {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		// CI logs are read top to bottom, sampling would drop repeated lines
		cfg.Sampling = nil
	}
	level := new(zapcore.Level)
	if err := level.Set(c.Level); err != nil {
		*level = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(*level)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	fields := []zap.Field{
		zap.String("service", c.App),
		zap.String("env", c.Env),
		zap.String("version", c.Ver),
	}
	if c.RunID != "" {
		fields = append(fields, zap.String("run_id", c.RunID))
	}

	l, err := cfg.Build(zap.Fields(fields...))
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Component returns a child logger tagged the way every package in this repo does it.
func Component(l *zap.Logger, name string) *zap.Logger {
	if l == nil {
		l = zap.L()
	}
	return l.With(zap.String("component", name))
}
