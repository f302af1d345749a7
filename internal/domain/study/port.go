package study

import (
	"context"
	"time"
)

type StudyAPI interface {
	GetUser(ctx context.Context) (User, error)
	GetSummary(ctx context.Context) (Summary, error)
	ListStrugglingStatistics(ctx context.Context, threshold, limit int) ([]ReviewStatistic, error)
	GetSubjects(ctx context.Context, ids []int64) ([]Subject, error)
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Coach turns a study prompt into mnemonics.
type Coach interface {
	Mnemonics(ctx context.Context, prompt string) (string, error)
}

type Clock interface {
	Now() time.Time
}
