package post

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/the-hive-labs/hive-timebank/internal/config"
	"github.com/the-hive-labs/hive-timebank/internal/metrics"
)

type AIClient struct {
	client *openai.Client
	model  string
}

func NewAIClient(cfg config.AI) *AIClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.HTTPClient = &http.Client{
		Transport: metrics.NewRequestWatcher("open_ai"),
	}

	return &AIClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

func (c *AIClient) GetSummaryByDescription(ctx context.Context, description string) (string, error) {
	return c.do(ctx, fmt.Sprintf("I need the brief digest up to 70 words with important points for the following listing: %s", description))
}

func (c *AIClient) do(ctx context.Context, req string) (string, error) {
	var err error
	defer func(start time.Time) {
		metrics.CollectRequestsMetric("open_ai", "create_chat_completion", err, start)
	}(time.Now())

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: req,
				},
			},
		},
	)

	if err != nil {
		return "", fmt.Errorf("openai.CreateChatCompletion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai.CreateChatCompletion: no choices found")
	}

	return resp.Choices[0].Message.Content, nil
}
