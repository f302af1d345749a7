package reminder

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/NordCoder/wanikani-bot/internal/domain/study"
	"github.com/NordCoder/wanikani-bot/internal/obs"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Options struct {
	Struggling           bool
	AccuracyThreshold    int
	MaxStrugglingItems   int
	MaxItemsPerSession   int
	SendPrompt           bool
	NotifyWhenNothingDue bool
}

type Handler struct {
	API   study.StudyAPI
	Out   study.Sender
	Coach study.Coach // optional
	Clock study.Clock
	Log   *zap.Logger
	Opts  Options
}

type Result struct {
	Summary    study.Summary
	Struggling []study.StrugglingItem
	Session    study.Session
	Sent       []string
	Skipped    bool
}

// Run performs one reminder: fetch, format, notify. Every error is terminal for the
// run; nothing is sent unless the summary was fetched.
func (h *Handler) Run(ctx context.Context) (Result, error) {
	tr := otel.Tracer("reminder.uc")
	ctx, span := tr.Start(ctx, "reminder.run")
	defer span.End()
	log := obs.WithTrace(ctx, h.logger())

	res, err := h.run(ctx, tr, log)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return res, err
	}
	span.SetAttributes(
		attribute.Int("reviews.available", res.Summary.ReviewsAvailable),
		attribute.Int("lessons.available", res.Summary.LessonsAvailable),
		attribute.Int("struggling.count", len(res.Struggling)),
		attribute.Int("notifications.sent", len(res.Sent)),
	)
	return res, nil
}

func (h *Handler) run(ctx context.Context, tr trace.Tracer, log *zap.Logger) (Result, error) {
	var res Result

	sctx, sp := tr.Start(ctx, "reminder.fetch_summary")
	user, err := h.API.GetUser(sctx)
	if err != nil {
		sp.RecordError(err)
		sp.End()
		return res, fmt.Errorf("fetch user: %w", err)
	}
	summary, err := h.API.GetSummary(sctx)
	sp.End()
	if err != nil {
		return res, fmt.Errorf("fetch summary: %w", err)
	}
	summary.User = user
	res.Summary = summary
	res.Session = study.SessionAt(h.Clock.Now())

	log.Info("summary fetched",
		zap.String("user", user.Username),
		zap.Int("level", user.Level),
		zap.Int("reviews", summary.ReviewsAvailable),
		zap.Int("lessons", summary.LessonsAvailable),
		zap.Int("upcoming_24h", summary.UpcomingReviews),
		zap.String("next_reviews_at", formatTime(summary.NextReviewsAt)),
		zap.String("session", string(res.Session)),
	)

	if h.Opts.Struggling {
		sctx, sp := tr.Start(ctx, "reminder.fetch_struggling")
		items, err := h.struggling(sctx)
		sp.SetAttributes(attribute.Int("struggling.count", len(items)))
		sp.End()
		if err != nil {
			return res, fmt.Errorf("fetch struggling items: %w", err)
		}
		res.Struggling = items
		log.Info("struggling items found", zap.Int("count", len(items)))
	}

	if summary.ReviewsAvailable == 0 && summary.LessonsAvailable == 0 &&
		len(res.Struggling) == 0 && !h.Opts.NotifyWhenNothingDue {
		log.Info("nothing due, notification skipped")
		res.Skipped = true
		return res, nil
	}

	digest := FormatDigest(summary, res.Struggling, res.Session, h.Opts.Struggling)
	if err := h.send(ctx, tr, digest); err != nil {
		return res, fmt.Errorf("send digest: %w", err)
	}
	res.Sent = append(res.Sent, digest.Kind)

	if !h.Opts.SendPrompt {
		return res, nil
	}
	prompt, ok := BuildPrompt(res.Struggling, res.Session, h.Opts.MaxItemsPerSession)
	if !ok {
		log.Debug("no struggling items, prompt skipped")
		return res, nil
	}
	log.Info("study prompt", zap.String("prompt", prompt))

	msg := study.Message{Subject: PromptSubject, Body: prompt, Kind: study.KindPrompt}
	if h.Coach != nil {
		cctx, sp := tr.Start(ctx, "reminder.coach")
		text, err := h.Coach.Mnemonics(cctx, prompt)
		sp.End()
		if err != nil {
			// the reminder itself went out, the raw prompt is still useful
			log.Warn("mnemonics unavailable, sending raw prompt", zap.Error(err))
		} else {
			msg = study.Message{Subject: "Mnemonics for today", Body: text, Kind: study.KindPrompt}
		}
	}
	if err := h.send(ctx, tr, msg); err != nil {
		return res, fmt.Errorf("send prompt: %w", err)
	}
	res.Sent = append(res.Sent, msg.Kind)
	return res, nil
}

// struggling joins statistics with their subjects and orders them worst first.
func (h *Handler) struggling(ctx context.Context) ([]study.StrugglingItem, error) {
	stats, err := h.API.ListStrugglingStatistics(ctx, h.Opts.AccuracyThreshold, h.Opts.MaxStrugglingItems)
	if err != nil {
		return nil, err
	}
	if len(stats) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(stats))
	for _, st := range stats {
		ids = append(ids, st.SubjectID)
	}
	subjects, err := h.API.GetSubjects(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]study.Subject, len(subjects))
	for _, s := range subjects {
		byID[s.ID] = s
	}

	items := make([]study.StrugglingItem, 0, len(stats))
	for _, st := range stats {
		sub, ok := byID[st.SubjectID]
		if !ok {
			h.logger().Debug("subject missing from response", zap.Int64("subject_id", st.SubjectID))
			continue
		}
		items = append(items, study.NewStrugglingItem(sub, st))
	}
	slices.SortStableFunc(items, func(a, b study.StrugglingItem) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return items, nil
}

func (h *Handler) send(ctx context.Context, tr trace.Tracer, msg study.Message) error {
	ctx, sp := tr.Start(ctx, "reminder.notify", trace.WithAttributes(attribute.String("message.kind", msg.Kind)))
	defer sp.End()
	if err := h.Out.Send(ctx, msg); err != nil {
		sp.RecordError(err)
		return fmt.Errorf("%w: %w", study.ErrNotify, err)
	}
	return nil
}

func (h *Handler) logger() *zap.Logger {
	if h.Log == nil {
		return zap.NewNop()
	}
	return h.Log
}
