package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"festify-gateway/internal/domain/entity"
	"festify-gateway/internal/domain/repository"

	"github.com/google/uuid"
)

const defaultSimilarLimit = 5

// GreetingHistory keeps the greetings each wallet has minted.
type GreetingHistory struct {
	repo repository.GreetingRepository
	now  func() time.Time
}

func NewGreetingHistory(repo repository.GreetingRepository) *GreetingHistory {
	return &GreetingHistory{repo: repo, now: time.Now}
}

func (h *GreetingHistory) Save(ctx context.Context, rec entity.GreetingRecord) (*entity.GreetingRecord, error) {
	switch {
	case strings.TrimSpace(rec.Owner) == "":
		return nil, fmt.Errorf("%w: owner is required", entity.ErrInvalidRequest)
	case strings.TrimSpace(rec.Title) == "":
		return nil, fmt.Errorf("%w: title is required", entity.ErrInvalidRequest)
	case strings.TrimSpace(rec.SelectedDesign) == "":
		return nil, fmt.Errorf("%w: selectedDesign is required", entity.ErrInvalidRequest)
	}
	if rec.Status == "" {
		rec.Status = entity.StatusPending
	}
	if !rec.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", entity.ErrInvalidRequest, rec.Status)
	}

	now := h.now().UTC()
	rec.ID = uuid.NewString()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if err := h.repo.Save(ctx, &rec); err != nil {
		return nil, fmt.Errorf("save greeting: %w", err)
	}
	return &rec, nil
}

func (h *GreetingHistory) List(ctx context.Context, owner string) ([]entity.GreetingRecord, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, fmt.Errorf("%w: owner is required", entity.ErrInvalidRequest)
	}
	return h.repo.ListByOwner(ctx, owner)
}

func (h *GreetingHistory) UpdateStatus(ctx context.Context, id string, status entity.GreetingStatus, txHash string) (*entity.GreetingRecord, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", entity.ErrInvalidRequest, status)
	}
	return h.repo.UpdateStatus(ctx, id, status, txHash)
}

func (h *GreetingHistory) Delete(ctx context.Context, id string) error {
	return h.repo.Delete(ctx, id)
}

func (h *GreetingHistory) Similar(ctx context.Context, text string, limit int) ([]entity.SimilarGreeting, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: q is required", entity.ErrInvalidRequest)
	}
	if limit <= 0 {
		limit = defaultSimilarLimit
	}
	return h.repo.Similar(ctx, text, limit)
}
