package repository

import (
	"context"
	"io"
	"time"

	"festify-gateway/internal/domain/entity"
)

// Agent is the hosted LLM that writes greetings. Its output is untrusted text.
type Agent interface {
	Generate(ctx context.Context, prompt string) (*entity.AgentResponse, error)
}

type Embedder interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// UsageStore holds rate limiter records. Get reports ok=false for unknown clients.
type UsageStore interface {
	Get(ctx context.Context, clientID string) (entity.ClientUsageRecord, bool, error)
	Set(ctx context.Context, rec entity.ClientUsageRecord) error
	Sweep(ctx context.Context, idleSince time.Time) (int, error)
}

type GreetingRepository interface {
	Save(ctx context.Context, rec *entity.GreetingRecord) error
	ListByOwner(ctx context.Context, owner string) ([]entity.GreetingRecord, error)
	UpdateStatus(ctx context.Context, id string, status entity.GreetingStatus, txHash string) (*entity.GreetingRecord, error)
	Delete(ctx context.Context, id string) error
	Similar(ctx context.Context, text string, limit int) ([]entity.SimilarGreeting, error)
}

// Pinner pins content to IPFS and returns a gateway URL.
type Pinner interface {
	PinFile(ctx context.Context, name string, r io.Reader) (string, error)
	PinJSON(ctx context.Context, name string, v any) (string, error)
}

// DATRegistry is the verifiable-computation network that tracks data anchor files.
type DATRegistry interface {
	FileIDByURL(ctx context.Context, url string) (uint64, error)
	AddFile(ctx context.Context, url string) (uint64, error)
	RequestProof(ctx context.Context, fileID uint64, reward int64, url, password string) (uint64, error)
	RequestReward(ctx context.Context, fileID uint64) error
}
