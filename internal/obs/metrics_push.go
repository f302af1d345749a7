package obs

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"
)

type PushConfig struct {
	URL     string
	Job     string
	Timeout time.Duration
}

// PushMetrics ships the gatherer's metrics to a Pushgateway.
// A one-shot job never lives long enough to be scraped.
func PushMetrics(ctx context.Context, cfg PushConfig, g prometheus.Gatherer, l *zap.Logger) error {
	if cfg.URL == "" {
		return nil
	}
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	err := push.New(cfg.URL, cfg.Job).Gatherer(g).PushContext(ctx)
	if err != nil {
		if l != nil {
			l.Warn("metrics push failed", zap.String("pushgateway", cfg.URL), zap.Error(err))
		}
		return err
	}
	if l != nil {
		l.Debug("metrics pushed", zap.String("pushgateway", cfg.URL), zap.Duration("elapsed", time.Since(start)))
	}
	return nil
}
