package reminder

import (
	"fmt"
	"strings"

	"github.com/NordCoder/wanikani-bot/internal/domain/study"
)

type quota struct {
	t study.SubjectType
	n int
}

// Morning leans on kanji, evening on vocabulary.
var sessionQuotas = map[study.Session][]quota{
	study.Morning: {{study.Kanji, 5}, {study.Radical, 2}, {study.Vocabulary, 3}},
	study.Evening: {{study.Vocabulary, 5}, {study.Kanji, 4}, {study.Radical, 1}},
}

const PromptSubject = "COPY THIS FOR CHATGPT/CLAUDE"

// SelectForSession applies the session quotas to score-sorted items and caps at limit.
func SelectForSession(items []study.StrugglingItem, session study.Session, limit int) []study.StrugglingItem {
	var out []study.StrugglingItem
	for _, q := range sessionQuotas[session] {
		taken := 0
		for _, it := range items {
			if taken == q.n {
				break
			}
			if it.Type == q.t {
				out = append(out, it)
				taken++
			}
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// BuildPrompt renders an LLM-ready study prompt. ok is false when there is nothing to study.
func BuildPrompt(items []study.StrugglingItem, session study.Session, limit int) (prompt string, ok bool) {
	selected := SelectForSession(items, session, limit)
	if len(selected) == 0 {
		return "", false
	}

	var b strings.Builder
	b.WriteString("Help me memorize these WaniKani items I'm struggling with:\n\n")
	for _, it := range selected {
		fmt.Fprintf(&b, "【%s】 %s\n", category(it.Type), it.Characters)
		fmt.Fprintf(&b, "• Meanings: %s\n", strings.Join(it.Meanings, ", "))
		if len(it.Readings) > 0 {
			fmt.Fprintf(&b, "• Readings: %s\n", strings.Join(it.Readings, ", "))
		}
		if it.Type == study.Radical {
			fmt.Fprintf(&b, "• Accuracy: M%d%% R N/A\n\n", it.MeaningPercentage)
		} else {
			fmt.Fprintf(&b, "• Accuracy: M%d%% R%d%%\n\n", it.MeaningPercentage, it.ReadingPercentage)
		}
	}
	b.WriteString("\nCreate memorable mnemonics, stories, and memory techniques for both meanings and readings.")
	return b.String(), true
}

func category(t study.SubjectType) string {
	switch t {
	case study.Radical:
		return "RADICALS"
	case study.Kanji:
		return "KANJI"
	case study.Vocabulary:
		return "VOCABULARY"
	default:
		return strings.ToUpper(string(t))
	}
}
