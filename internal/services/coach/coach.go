package coach

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	config "github.com/NordCoder/wanikani-bot/internal/config/wanikani-bot"
	"github.com/NordCoder/wanikani-bot/internal/domain/study"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

var _ study.Coach = (*OpenAI)(nil)

const systemPrompt = "You are a Japanese tutor helping a WaniKani learner. " +
	"Answer with short, vivid mnemonics for each item, meaning first, then reading. Plain text, no markdown tables."

// OpenAI asks a chat model for mnemonics on the study prompt.
type OpenAI struct {
	client    *openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
	log       *zap.Logger
}

// New builds the client. hc carries the shared transport (tracing, user agent, TLS);
// nil keeps the library default.
func New(cfg config.Coach, hc *http.Client) *OpenAI {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if hc != nil {
		oc.HTTPClient = hc
	}
	return &OpenAI{
		client:    openai.NewClientWithConfig(oc),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		log:       zap.L().With(zap.String("component", "coach.openai")),
	}
}

func (o *OpenAI) WithLogger(l *zap.Logger) *OpenAI {
	if l == nil {
		return o
	}
	cp := *o
	cp.log = l.With(zap.String("component", "coach.openai"))
	return &cp
}

func (o *OpenAI) Mnemonics(ctx context.Context, prompt string) (string, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.model,
		MaxTokens: o.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("chat completion: %d %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("%w: chat completion: %w", study.ErrNetwork, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: chat completion without content", study.ErrResponse)
	}

	o.log.Info("mnemonics generated",
		zap.String("model", resp.Model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("elapsed", time.Since(start)),
	)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
