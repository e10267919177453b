package client

import (
	"context"
	"fmt"
	"time"

	"festify-gateway/internal/domain/entity"

	"google.golang.org/genai"
)

// GreetingPreamble is the system instruction every agent backend receives.
const GreetingPreamble = "You are a professional AI agent specialized in crafting heartfelt, culturally rich, and personalized festival greetings. Your responses should include a title, a warm message, a creative design suggestion, interactive or digital features, and a note on cultural elements. Output your result as a JSON object with keys: title, message, design, interactive, cultural. Be concise, creative, and professional."

type GeminiAgent struct {
	client *genai.Client
	model  string
}

// NewGenaiClient picks the Gemini API when an API key is given and Vertex AI otherwise.
func NewGenaiClient(ctx context.Context, apiKey, projectID, location string) (*genai.Client, error) {
	cfg := &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	}
	if apiKey != "" {
		cfg = &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	}
	return genai.NewClient(ctx, cfg)
}

func NewGeminiAgent(c *genai.Client, model string) *GeminiAgent {
	return &GeminiAgent{
		client: c,
		model:  model,
	}
}

func (g *GeminiAgent) Generate(ctx context.Context, prompt string) (*entity.AgentResponse, error) {
	start := time.Now()
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(GreetingPreamble, genai.RoleUser),
	})
	if err != nil {
		return nil, err
	}
	if len(result.Candidates) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	resp := &entity.AgentResponse{
		Content: result.Text(),
		Model:   g.model,
		Latency: time.Since(start),
	}
	if result.UsageMetadata != nil {
		resp.TokenCount = int(result.UsageMetadata.TotalTokenCount)
	}
	return resp, nil
}
