package wanikani

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/NordCoder/wanikani-bot/internal/domain/study"
)

const subjectsChunk = 100

// GetSubjects loads subjects in bulk via /subjects?ids=..., in chunks to keep URLs short.
func (c *Client) GetSubjects(ctx context.Context, ids []int64) ([]study.Subject, error) {
	out := make([]study.Subject, 0, len(ids))
	for start := 0; start < len(ids); start += subjectsChunk {
		end := min(start+subjectsChunk, len(ids))
		parts := make([]string, 0, end-start)
		for _, id := range ids[start:end] {
			parts = append(parts, strconv.FormatInt(id, 10))
		}
		q := url.Values{}
		q.Set("ids", strings.Join(parts, ","))

		next := "/subjects?" + q.Encode()
		for page := 0; next != "" && page < c.maxPages; page++ {
			var col collection[subjectData]
			if err := c.get(ctx, next, &col); err != nil {
				return nil, fmt.Errorf("get subjects: %w", err)
			}
			for _, it := range col.Data {
				if it.Data == nil {
					return nil, fmt.Errorf("get subjects: %w", missing("subject "+strconv.FormatInt(it.ID, 10)+" without data"))
				}
				out = append(out, toSubject(it.ID, it.Object, *it.Data))
			}
			next = ""
			if col.Pages.NextURL != nil {
				next = *col.Pages.NextURL
			}
		}
	}
	return out, nil
}

func toSubject(id int64, object string, d subjectData) study.Subject {
	s := study.Subject{
		ID:    id,
		Type:  subjectType(object),
		Level: d.Level,
	}
	switch {
	case d.Characters != nil && *d.Characters != "":
		s.Characters = *d.Characters
	case d.Slug != "":
		// image-only radicals
		s.Characters = d.Slug
	default:
		s.Characters = "N/A"
	}
	for _, m := range d.Meanings {
		if m.Primary {
			s.Meanings = append([]string{m.Meaning}, s.Meanings...)
		} else {
			s.Meanings = append(s.Meanings, m.Meaning)
		}
	}
	if s.Type == study.Radical {
		return s
	}
	for _, r := range d.Readings {
		if r.Primary {
			s.Readings = append([]string{r.Reading}, s.Readings...)
		} else {
			s.Readings = append(s.Readings, r.Reading)
		}
	}
	return s
}
