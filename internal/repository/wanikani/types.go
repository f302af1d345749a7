package wanikani

import "time"

// Wire shapes of the WaniKani v2 API. Only the fields this bot reads are declared.

type resource[T any] struct {
	Object        string    `json:"object"`
	URL           string    `json:"url"`
	DataUpdatedAt time.Time `json:"data_updated_at"`
	Data          *T        `json:"data"`
}

type pages struct {
	PerPage     int     `json:"per_page"`
	NextURL     *string `json:"next_url"`
	PreviousURL *string `json:"previous_url"`
}

type collection[T any] struct {
	Object     string `json:"object"`
	URL        string `json:"url"`
	Pages      pages  `json:"pages"`
	TotalCount int    `json:"total_count"`
	Data       []struct {
		ID     int64  `json:"id"`
		Object string `json:"object"`
		Data   *T     `json:"data"`
	} `json:"data"`
}

type userData struct {
	Username string `json:"username"`
	Level    int    `json:"level"`
}

type summaryBucket struct {
	AvailableAt time.Time `json:"available_at"`
	SubjectIDs  []int64   `json:"subject_ids"`
}

type summaryData struct {
	Lessons       []summaryBucket `json:"lessons"`
	NextReviewsAt *time.Time      `json:"next_reviews_at"`
	Reviews       []summaryBucket `json:"reviews"`
}

type reviewStatisticData struct {
	SubjectID        int64  `json:"subject_id"`
	SubjectType      string `json:"subject_type"`
	MeaningCorrect   int    `json:"meaning_correct"`
	MeaningIncorrect int    `json:"meaning_incorrect"`
	ReadingCorrect   int    `json:"reading_correct"`
	ReadingIncorrect int    `json:"reading_incorrect"`
	Hidden           bool   `json:"hidden"`

	MeaningPercentage *float64 `json:"meaning_percentage"`
	ReadingPercentage *float64 `json:"reading_percentage"`
}

type subjectData struct {
	Characters *string `json:"characters"`
	Slug       string  `json:"slug"`
	Level      int     `json:"level"`
	Meanings   []struct {
		Meaning string `json:"meaning"`
		Primary bool   `json:"primary"`
	} `json:"meanings"`
	Readings []struct {
		Reading string `json:"reading"`
		Primary bool   `json:"primary"`
	} `json:"readings"`
}

type apiError struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
