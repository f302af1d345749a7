package reminder

import (
	"context"
	"time"

	"github.com/NordCoder/wanikani-bot/internal/domain/study"
)

type fakeAPI struct {
	user     study.User
	summary  study.Summary
	stats    []study.ReviewStatistic
	subjects []study.Subject

	userErr, summaryErr, statsErr, subjectsErr error

	calls []string
}

func (f *fakeAPI) GetUser(context.Context) (study.User, error) {
	f.calls = append(f.calls, "user")
	return f.user, f.userErr
}

func (f *fakeAPI) GetSummary(context.Context) (study.Summary, error) {
	f.calls = append(f.calls, "summary")
	return f.summary, f.summaryErr
}

func (f *fakeAPI) ListStrugglingStatistics(_ context.Context, _, _ int) ([]study.ReviewStatistic, error) {
	f.calls = append(f.calls, "stats")
	return f.stats, f.statsErr
}

func (f *fakeAPI) GetSubjects(context.Context, []int64) ([]study.Subject, error) {
	f.calls = append(f.calls, "subjects")
	return f.subjects, f.subjectsErr
}

type recordingSender struct {
	sent []study.Message
	err  error
	// failAfter lets the first n sends succeed before err is returned.
	failAfter int
}

func (r *recordingSender) Send(_ context.Context, m study.Message) error {
	if r.err != nil && len(r.sent) >= r.failAfter {
		return r.err
	}
	r.sent = append(r.sent, m)
	return nil
}

type fakeCoach struct {
	out string
	err error
	got string
}

func (c *fakeCoach) Mnemonics(_ context.Context, prompt string) (string, error) {
	c.got = prompt
	return c.out, c.err
}

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }

var (
	morning = time.Date(2026, 10, 19, 7, 30, 0, 0, time.UTC)
	evening = time.Date(2026, 10, 19, 19, 0, 0, 0, time.UTC)
)

func kanjiStat(id int64, mc, mi, rc, ri int) study.ReviewStatistic {
	return study.ReviewStatistic{SubjectID: id, SubjectType: study.Kanji, MeaningCorrect: mc, MeaningIncorrect: mi, ReadingCorrect: rc, ReadingIncorrect: ri}
}

func item(id int64, t study.SubjectType, chars string, score int) study.StrugglingItem {
	return study.StrugglingItem{
		Subject:           study.Subject{ID: id, Type: t, Characters: chars, Meanings: []string{"m" + chars}},
		MeaningPercentage: 50,
		ReadingPercentage: 60,
		Score:             score,
	}
}
