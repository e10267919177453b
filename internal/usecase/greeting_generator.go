package usecase

import (
	"context"
	"fmt"

	"festify-gateway/internal/domain/entity"
	"festify-gateway/internal/domain/repository"

	"go.uber.org/zap"
)

const greetingInstruction = "Create a festival greeting based on this description: %s. Respond ONLY with a JSON object with keys: title, message, design, interactive, cultural."

// BuildGreetingInstruction wraps the user's prompt in the agent instruction.
func BuildGreetingInstruction(prompt string) string {
	return fmt.Sprintf(greetingInstruction, prompt)
}

// GreetingGenerator makes one agent call per prompt and recovers the greeting
// JSON from whatever text comes back. It never retries.
type GreetingGenerator struct {
	agent repository.Agent
	log   *zap.Logger
}

func NewGreetingGenerator(agent repository.Agent, log *zap.Logger) *GreetingGenerator {
	if log == nil {
		log = zap.NewNop()
	}
	return &GreetingGenerator{agent: agent, log: log.Named("generator")}
}

func (g *GreetingGenerator) Generate(ctx context.Context, prompt string) (*entity.GreetingResult, error) {
	if prompt == "" {
		return nil, entity.ErrInvalidRequest
	}

	g.log.Info("received prompt", zap.String("prompt", prompt))
	resp, err := g.agent.Generate(ctx, BuildGreetingInstruction(prompt))
	if err != nil {
		return nil, fmt.Errorf("%w: agent call: %w", entity.ErrGenerationFailed, err)
	}
	g.log.Debug("raw agent response",
		zap.String("model", resp.Model),
		zap.Int("tokens", resp.TokenCount),
		zap.Duration("latency", resp.Latency),
		zap.String("content", resp.Content))

	parsed, err := RecoverJSON(resp.Content)
	if err != nil {
		g.log.Warn("agent response not recoverable", zap.Error(err))
		return nil, err
	}

	result := entity.GreetingFromMap(parsed)
	return &result, nil
}
