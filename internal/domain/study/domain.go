package study

import (
	"strings"
	"time"
)

type SubjectType string

const (
	Radical    SubjectType = "radical"
	Kanji      SubjectType = "kanji"
	Vocabulary SubjectType = "vocabulary"
)

// Credential is the WaniKani personal access token. It never prints its value.
type Credential struct {
	Token  string
	Source string // config | keyring
}

func (c Credential) String() string { return "[redacted:" + c.Source + "]" }

func (c Credential) Empty() bool { return strings.TrimSpace(c.Token) == "" }

type User struct {
	Username string `json:"username"`
	Level    int    `json:"level"`
}

// Summary is what WaniKani reports as due for the current hour.
type Summary struct {
	User             User      `json:"user"`
	ReviewsAvailable int       `json:"reviews_available"`
	LessonsAvailable int       `json:"lessons_available"`
	UpcomingReviews  int       `json:"upcoming_reviews"` // due within the next 24h, excluding those available now
	NextReviewsAt    time.Time `json:"next_reviews_at"`  // zero when nothing is scheduled
	FetchedAt        time.Time `json:"fetched_at"`
}

type Subject struct {
	ID         int64       `json:"id"`
	Type       SubjectType `json:"type"`
	Characters string      `json:"characters"`
	Level      int         `json:"level"`
	Meanings   []string    `json:"meanings"`
	Readings   []string    `json:"readings"`
}

type ReviewStatistic struct {
	SubjectID        int64       `json:"subject_id"`
	SubjectType      SubjectType `json:"subject_type"`
	MeaningCorrect   int         `json:"meaning_correct"`
	MeaningIncorrect int         `json:"meaning_incorrect"`
	ReadingCorrect   int         `json:"reading_correct"`
	ReadingIncorrect int         `json:"reading_incorrect"`

	// Accuracy as reported by WaniKani; nil when the API left it out.
	ReportedMeaning *int `json:"meaning_percentage,omitempty"`
	ReportedReading *int `json:"reading_percentage,omitempty"`
}

// MeaningPercentage prefers the reported value. Computed, it is 100 when the
// subject has never been answered.
func (s ReviewStatistic) MeaningPercentage() int {
	if s.ReportedMeaning != nil {
		return *s.ReportedMeaning
	}
	return percentage(s.MeaningCorrect, s.MeaningIncorrect)
}

// ReadingPercentage prefers the reported value. Radicals have no readings and get 100.
func (s ReviewStatistic) ReadingPercentage() int {
	if s.ReportedReading != nil {
		return *s.ReportedReading
	}
	return percentage(s.ReadingCorrect, s.ReadingIncorrect)
}

// Struggling reports whether either accuracy is strictly below threshold.
func (s ReviewStatistic) Struggling(threshold int) bool {
	return s.MeaningPercentage() < threshold || s.ReadingPercentage() < threshold
}

func percentage(correct, incorrect int) int {
	total := correct + incorrect
	if total <= 0 {
		return 100
	}
	return correct * 100 / total
}

type StrugglingItem struct {
	Subject
	MeaningPercentage int `json:"meaning_percentage"`
	ReadingPercentage int `json:"reading_percentage"`
	MeaningIncorrect  int `json:"meaning_incorrect"`
	ReadingIncorrect  int `json:"reading_incorrect"`
	Score             int `json:"struggle_score"`
}

func NewStrugglingItem(sub Subject, st ReviewStatistic) StrugglingItem {
	it := StrugglingItem{
		Subject:           sub,
		MeaningPercentage: st.MeaningPercentage(),
		ReadingPercentage: st.ReadingPercentage(),
		MeaningIncorrect:  st.MeaningIncorrect,
		ReadingIncorrect:  st.ReadingIncorrect,
	}
	it.Score = (100 - it.MeaningPercentage) + (100 - it.ReadingPercentage) +
		it.MeaningIncorrect*2 + it.ReadingIncorrect*2
	return it
}

type Session string

const (
	Morning Session = "morning"
	Evening Session = "evening"
)

// SessionAt picks the session from the UTC hour.
func SessionAt(t time.Time) Session {
	if t.UTC().Hour() < 12 {
		return Morning
	}
	return Evening
}

func (s Session) Greeting() string {
	if s == Morning {
		return "Good morning!"
	}
	return "Good evening!"
}

// Message is a rendered notification, built right before it is sent.
type Message struct {
	Subject string
	Body    string
	Kind    string // digest | prompt
}

const (
	KindDigest = "digest"
	KindPrompt = "prompt"
)
