package reminder

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/NordCoder/wanikani-bot/internal/domain/study"
)

const (
	focusItems    = 3
	focusMeanings = 2
	focusReadings = 2
)

var reviewsLine = regexp.MustCompile(`(?m)\bReviews: (\d+)\b`)

var ErrNoReviewCount = errors.New("no review count in message")

// FormatDigest renders the reminder. The "Reviews: N" token is always present,
// including N = 0, so a quiet day never reads like a failed fetch.
func FormatDigest(s study.Summary, items []study.StrugglingItem, session study.Session, withStruggling bool) study.Message {
	var b strings.Builder

	fmt.Fprintf(&b, "📚 WaniKani Study - %s\n\n", session.Greeting())
	fmt.Fprintf(&b, "Level %d | Reviews: %d | Lessons: %d\n", s.User.Level, s.ReviewsAvailable, s.LessonsAvailable)

	if s.ReviewsAvailable == 0 {
		b.WriteString("No reviews due right now.\n")
	}
	switch {
	case s.NextReviewsAt.IsZero():
		b.WriteString("Next reviews: none scheduled\n")
	case !s.NextReviewsAt.After(s.FetchedAt):
		fmt.Fprintf(&b, "Next reviews: now (+%d within 24h)\n", s.UpcomingReviews)
	default:
		fmt.Fprintf(&b, "Next reviews: %s (+%d within 24h)\n", s.NextReviewsAt.UTC().Format("2006-01-02 15:04 MST"), s.UpcomingReviews)
	}

	if withStruggling {
		fmt.Fprintf(&b, "%d struggling items\n", len(items))
		if focus := FocusItems(items); len(focus) > 0 {
			b.WriteString("\nFocus on:\n")
			for _, it := range focus {
				fmt.Fprintf(&b, "\n%s - %s", it.Characters, strings.Join(head(it.Meanings, focusMeanings), ", "))
				if len(it.Readings) > 0 {
					fmt.Fprintf(&b, "\n→ %s", strings.Join(head(it.Readings, focusReadings), ", "))
				}
				fmt.Fprintf(&b, "\n(M:%d%%", it.MeaningPercentage)
				if it.Type != study.Radical {
					fmt.Fprintf(&b, " R:%d%%", it.ReadingPercentage)
				}
				b.WriteString(")\n")
			}
		}
	}

	return study.Message{
		Subject: digestSubject(s),
		Body:    strings.TrimRight(b.String(), "\n"),
		Kind:    study.KindDigest,
	}
}

func digestSubject(s study.Summary) string {
	if s.ReviewsAvailable == 0 && s.LessonsAvailable == 0 {
		return "WaniKani: no reviews due"
	}
	return fmt.Sprintf("WaniKani: %s, %s", plural(s.ReviewsAvailable, "review"), plural(s.LessonsAvailable, "lesson"))
}

// ParseReviewCount reads back the review count written by FormatDigest.
func ParseReviewCount(body string) (int, error) {
	m := reviewsLine.FindStringSubmatch(body)
	if m == nil {
		return 0, ErrNoReviewCount
	}
	return strconv.Atoi(m[1])
}

// FocusItems picks the worst kanji, then vocabulary, then radical, up to three.
// items must already be sorted by score.
func FocusItems(items []study.StrugglingItem) []study.StrugglingItem {
	var out []study.StrugglingItem
	for _, t := range []study.SubjectType{study.Kanji, study.Vocabulary, study.Radical} {
		for _, it := range items {
			if it.Type == t {
				out = append(out, it)
				break
			}
		}
		if len(out) >= focusItems {
			break
		}
	}
	return out
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
