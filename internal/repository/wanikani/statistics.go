package wanikani

import (
	"context"
	"fmt"
	"math"
	"net/url"

	"github.com/NordCoder/wanikani-bot/internal/domain/study"
	"go.uber.org/zap"
)

// ListStrugglingStatistics walks /review_statistics and keeps the entries whose meaning or
// reading accuracy is below threshold. It stops after limit matches or the page cap.
func (c *Client) ListStrugglingStatistics(ctx context.Context, threshold, limit int) ([]study.ReviewStatistic, error) {
	q := url.Values{}
	// any struggling subject has an overall percentage below 100
	q.Set("percentages_less_than", "100")
	q.Set("hidden", "false")
	next := "/review_statistics?" + q.Encode()

	var out []study.ReviewStatistic
	seen := 0
	for page := 0; next != "" && page < c.maxPages; page++ {
		var col collection[reviewStatisticData]
		if err := c.get(ctx, next, &col); err != nil {
			return nil, fmt.Errorf("list review statistics: %w", err)
		}
		if col.Data == nil {
			return nil, fmt.Errorf("list review statistics: %w", missing("collection without data"))
		}
		for _, it := range col.Data {
			if it.Data == nil {
				continue
			}
			seen++
			st := study.ReviewStatistic{
				SubjectID:        it.Data.SubjectID,
				SubjectType:      subjectType(it.Data.SubjectType),
				MeaningCorrect:   it.Data.MeaningCorrect,
				MeaningIncorrect: it.Data.MeaningIncorrect,
				ReadingCorrect:   it.Data.ReadingCorrect,
				ReadingIncorrect: it.Data.ReadingIncorrect,
				ReportedMeaning:  roundPercent(it.Data.MeaningPercentage),
				ReportedReading:  roundPercent(it.Data.ReadingPercentage),
			}
			if it.Data.Hidden || !st.Struggling(threshold) {
				continue
			}
			out = append(out, st)
			if limit > 0 && len(out) >= limit {
				c.log.Debug("struggling limit reached", zap.Int("limit", limit), zap.Int("seen", seen))
				return out, nil
			}
		}
		next = ""
		if col.Pages.NextURL != nil {
			next = *col.Pages.NextURL
		}
	}
	c.log.Debug("review statistics scanned", zap.Int("seen", seen), zap.Int("struggling", len(out)))
	return out, nil
}

func roundPercent(p *float64) *int {
	if p == nil {
		return nil
	}
	n := int(math.Round(*p))
	return &n
}

func subjectType(s string) study.SubjectType {
	switch s {
	case "radical":
		return study.Radical
	case "kanji":
		return study.Kanji
	case "vocabulary", "kana_vocabulary":
		return study.Vocabulary
	default:
		return study.SubjectType(s)
	}
}
