package client

import (
	"context"
	"fmt"
	"time"

	"festify-gateway/internal/domain/entity"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIAgent talks to any OpenAI-compatible chat completion endpoint.
type OpenAIAgent struct {
	client *openai.Client
	model  string
}

func NewOpenAIAgent(apiKey, baseURL, model string) *OpenAIAgent {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIAgent{client: openai.NewClientWithConfig(cfg), model: model}
}

func (o *OpenAIAgent) Generate(ctx context.Context, prompt string) (*entity.AgentResponse, error) {
	start := time.Now()
	completion, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: GreetingPreamble},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("model %s returned no choices", o.model)
	}

	return &entity.AgentResponse{
		Content:    completion.Choices[0].Message.Content,
		Model:      completion.Model,
		TokenCount: completion.Usage.TotalTokens,
		Latency:    time.Since(start),
	}, nil
}
