package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/NordCoder/wanikani-bot/internal/config/wanikani-bot"
	"github.com/NordCoder/wanikani-bot/internal/domain/study"
	"github.com/NordCoder/wanikani-bot/internal/obs"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(rootCtx, config.PathFromEnv())
	stop()
	os.Exit(code)
}

// run performs one reminder and returns the process exit code.
func run(ctx context.Context, cfgPath string) int {
	// init
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "wanikani-bot:", err)
		return study.ExitCode(err)
	}

	// logger
	l, runID, err := initLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "wanikani-bot: logger:", err)
		return 1
	}
	defer func() { _ = l.Sync() }()

	l.Info("starting wanikani-bot",
		zap.String("run_id", runID),
		zap.String("config", cfgPath),
		zap.String("channel", cfg.Notify.Channel),
		zap.Bool("struggling", cfg.Study.Struggling),
		zap.Bool("coach", cfg.Coach.Enable),
	)

	// otel
	shutdownOTel := initOTel(ctx, cfg, l)
	defer func() {
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = shutdownOTel(shCtx)
	}()

	if cfg.Run.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Run.Timeout)
		defer cancel()
	}

	// credentials
	cred, err := loadCredential(cfg, l)
	if err != nil {
		l.Error("credential", zap.Error(err))
		return study.ExitCode(err)
	}
	l.Info("credential loaded", zap.Stringer("token", cred))

	// start
	reg := prometheus.NewRegistry()
	runner, err := wiring(cfg, cred, reg, l)
	if err != nil {
		l.Error("wiring", zap.Error(err))
		return study.ExitCode(err)
	}
	runErr := runner.Run(ctx)

	// metrics are pushed even for a failed run, that is when they matter;
	// the retry package registers on the default registry
	pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = obs.PushMetrics(pushCtx, cfg.Metrics.AsPushConfig(), prometheus.Gatherers{reg, prometheus.DefaultGatherer}, l)

	code := study.ExitCode(runErr)
	l.Info("bye", zap.Int("exit_code", code))
	return code
}
