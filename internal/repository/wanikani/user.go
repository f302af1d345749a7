package wanikani

import (
	"context"
	"fmt"

	"github.com/NordCoder/wanikani-bot/internal/domain/study"
)

func (c *Client) GetUser(ctx context.Context) (study.User, error) {
	var res resource[userData]
	if err := c.get(ctx, "/user", &res); err != nil {
		return study.User{}, fmt.Errorf("get user: %w", err)
	}
	if res.Data == nil || res.Data.Username == "" {
		return study.User{}, fmt.Errorf("get user: %w", missing("user payload without data.username"))
	}
	return study.User{Username: res.Data.Username, Level: res.Data.Level}, nil
}
