package reminder

import (
	"context"
	"errors"
	"time"

	"github.com/NordCoder/wanikani-bot/internal/domain/study"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Runner wraps one Handler run with metrics and the final log line.
type Runner struct {
	Log *zap.Logger
	UC  *Handler

	mRuns       *prometheus.CounterVec
	mSent       *prometheus.CounterVec
	mReviews    prometheus.Gauge
	mLessons    prometheus.Gauge
	mStruggling prometheus.Gauge
	mLastOK     prometheus.Gauge
	mDuration   prometheus.Histogram
}

func NewRunner(log *zap.Logger, uc *Handler, reg prometheus.Registerer) *Runner {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Runner{
		Log: log,
		UC:  uc,
		mRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wkbot", Name: "runs_total", Help: "Reminder runs by result",
		}, []string{"result"}),
		mSent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wkbot", Name: "notifications_sent_total", Help: "Messages delivered by kind",
		}, []string{"kind"}),
		mReviews: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "wkbot", Name: "reviews_available", Help: "Reviews available at the last run",
		}),
		mLessons: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "wkbot", Name: "lessons_available", Help: "Lessons available at the last run",
		}),
		mStruggling: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "wkbot", Name: "struggling_items", Help: "Subjects below the accuracy threshold",
		}),
		mLastOK: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "wkbot", Name: "last_success_timestamp_seconds", Help: "Unix time of the last successful run",
		}),
		mDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wkbot", Name: "run_duration_seconds", Help: "Wall time of one run",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (r *Runner) Run(ctx context.Context) error {
	start := time.Now()
	res, err := r.UC.Run(ctx)
	r.mDuration.Observe(time.Since(start).Seconds())

	for _, k := range res.Sent {
		r.mSent.WithLabelValues(k).Inc()
	}
	if err != nil {
		r.mRuns.WithLabelValues(Outcome(err)).Inc()
		r.Log.Error("run failed", zap.String("outcome", Outcome(err)), zap.Error(err))
		return err
	}

	r.mRuns.WithLabelValues("ok").Inc()
	r.mReviews.Set(float64(res.Summary.ReviewsAvailable))
	r.mLessons.Set(float64(res.Summary.LessonsAvailable))
	r.mStruggling.Set(float64(len(res.Struggling)))
	r.mLastOK.SetToCurrentTime()
	r.Log.Info("run complete",
		zap.Int("reviews", res.Summary.ReviewsAvailable),
		zap.Strings("sent", res.Sent),
		zap.Bool("skipped", res.Skipped),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Outcome is the metric label for an error from Run.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, study.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, study.ErrConfiguration):
		return "configuration"
	case errors.Is(err, study.ErrNotify):
		return "notify"
	case errors.Is(err, study.ErrNetwork):
		return "network"
	case errors.Is(err, study.ErrResponse):
		return "response"
	default:
		return "error"
	}
}
