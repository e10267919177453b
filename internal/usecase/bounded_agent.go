package usecase

import (
	"context"
	"fmt"
	"time"

	"festify-gateway/internal/domain/entity"
	"festify-gateway/internal/domain/repository"
)

// BoundedAgent caps a single agent call with a timeout so a hung upstream
// cannot hold a request forever.
type BoundedAgent struct {
	agent   repository.Agent
	timeout time.Duration
}

func NewBoundedAgent(agent repository.Agent, timeout time.Duration) *BoundedAgent {
	return &BoundedAgent{agent: agent, timeout: timeout}
}

func (b *BoundedAgent) Generate(ctx context.Context, prompt string) (*entity.AgentResponse, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := b.agent.Generate(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("agent did not answer within %s: %w", b.timeout, ctx.Err())
		}
		return nil, err
	}
	if resp.Latency == 0 {
		resp.Latency = time.Since(start)
	}
	return resp, nil
}
