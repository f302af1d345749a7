package wanikani

import (
	"context"
	"fmt"
	"time"

	"github.com/NordCoder/wanikani-bot/internal/domain/study"
)

// GetSummary returns what is due now. The user is not part of /summary and is left empty.
func (c *Client) GetSummary(ctx context.Context) (study.Summary, error) {
	var res resource[summaryData]
	if err := c.get(ctx, "/summary", &res); err != nil {
		return study.Summary{}, fmt.Errorf("get summary: %w", err)
	}
	if res.Object != "" && res.Object != "report" {
		return study.Summary{}, fmt.Errorf("get summary: %w", missing("object is "+res.Object+", want report"))
	}
	if res.Data == nil || (res.Data.Reviews == nil && res.Data.Lessons == nil) {
		return study.Summary{}, fmt.Errorf("get summary: %w", missing("summary payload without data.reviews/lessons"))
	}
	return summarize(*res.Data, c.clock.Now()), nil
}

func summarize(d summaryData, now time.Time) study.Summary {
	s := study.Summary{FetchedAt: now}
	horizon := now.Add(24 * time.Hour)

	// a subject shows up in exactly one bucket
	for _, b := range d.Reviews {
		switch {
		case !b.AvailableAt.After(now):
			s.ReviewsAvailable += len(b.SubjectIDs)
		case b.AvailableAt.Before(horizon):
			s.UpcomingReviews += len(b.SubjectIDs)
		}
	}
	for _, b := range d.Lessons {
		if !b.AvailableAt.After(now) {
			s.LessonsAvailable += len(b.SubjectIDs)
		}
	}
	if d.NextReviewsAt != nil {
		s.NextReviewsAt = d.NextReviewsAt.UTC()
	}
	return s
}
