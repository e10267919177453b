package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"festify-gateway/internal/domain/entity"
	"festify-gateway/internal/domain/repository"

	"go.uber.org/zap"
)

type LimiterConfig struct {
	DailyLimit int
	Cooldown   time.Duration
	IdleTTL    time.Duration
	Location   *time.Location
}

func DefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		DailyLimit: 2,
		Cooldown:   12 * time.Hour,
		IdleTTL:    24 * time.Hour,
		Location:   time.Local,
	}
}

// RateLimiter enforces the daily quota and the cooldown per client. Check,
// Record, Release and Sweep share one mutex, so an in-flight reservation is
// always visible to a concurrent Check from the same client.
type RateLimiter struct {
	store   repository.UsageStore
	cfg     LimiterConfig
	log     *zap.Logger
	now     func() time.Time
	mu      sync.Mutex
	pending map[string]int
}

func NewRateLimiter(store repository.UsageStore, cfg LimiterConfig, log *zap.Logger) *RateLimiter {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	cfg.IdleTTL = RetentionFor(cfg.IdleTTL, cfg.Cooldown)
	if log == nil {
		log = zap.NewNop()
	}
	return &RateLimiter{
		store:   store,
		cfg:     cfg,
		log:     log.Named("ratelimit"),
		now:     time.Now,
		pending: make(map[string]int),
	}
}

// WithClock replaces the time source. Used by tests.
func (l *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	l.now = now
	return l
}

// RetentionFor is how long a usage record must outlive its last request. A
// record swept or expired while its cooldown is still running would let the
// client straight back in.
func RetentionFor(idleTTL, cooldown time.Duration) time.Duration {
	return max(idleTTL, cooldown)
}

// StartOfNextDay is midnight after now in loc. Both the check and the record
// path derive dailyReset from here.
func StartOfNextDay(now time.Time, loc *time.Location) time.Time {
	t := now.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, loc)
}

// Check decides whether clientID may generate now. The daily quota is checked
// before the cooldown. An admitted check holds a reservation until Record or
// Release is called.
func (l *RateLimiter) Check(ctx context.Context, clientID string) (entity.Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec, ok, err := l.store.Get(ctx, clientID)
	if err != nil {
		return entity.Decision{}, fmt.Errorf("rate limiter check failed: %w", err)
	}
	inFlight := l.pending[clientID]

	if ok {
		count, reset := rec.DailyCount, rec.DailyReset
		if !now.Before(reset) {
			count, reset = 0, StartOfNextDay(now, l.cfg.Location)
		}
		if count+inFlight >= l.cfg.DailyLimit {
			l.log.Info("admission denied", zap.String("client", clientID), zap.String("reason", string(entity.ReasonDailyLimit)))
			return entity.Decision{Reason: entity.ReasonDailyLimit, NextReset: reset, Remaining: reset.Sub(now)}, nil
		}
		nextAllowed := rec.LastRequest.Add(l.cfg.Cooldown)
		if now.Before(nextAllowed) {
			l.log.Info("admission denied", zap.String("client", clientID), zap.String("reason", string(entity.ReasonCooldown)))
			return entity.Decision{Reason: entity.ReasonCooldown, NextAllowed: nextAllowed, Remaining: nextAllowed.Sub(now)}, nil
		}
	} else if inFlight >= l.cfg.DailyLimit {
		reset := StartOfNextDay(now, l.cfg.Location)
		return entity.Decision{Reason: entity.ReasonDailyLimit, NextReset: reset, Remaining: reset.Sub(now)}, nil
	}

	if inFlight > 0 {
		// The in-flight request will start a cooldown once it succeeds.
		nextAllowed := now.Add(l.cfg.Cooldown)
		return entity.Decision{Reason: entity.ReasonCooldown, NextAllowed: nextAllowed, Remaining: l.cfg.Cooldown}, nil
	}

	l.pending[clientID]++
	return entity.Decision{Admitted: true}, nil
}

// Record consumes quota for a successful generation and drops the reservation
// taken by Check.
func (l *RateLimiter) Record(ctx context.Context, clientID string) (entity.UsageSnapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.releaseLocked(clientID)

	now := l.now()
	rec, ok, err := l.store.Get(ctx, clientID)
	if err != nil {
		return entity.UsageSnapshot{}, fmt.Errorf("rate limiter record failed: %w", err)
	}
	if !ok || !now.Before(rec.DailyReset) {
		rec = entity.ClientUsageRecord{ClientID: clientID, DailyReset: StartOfNextDay(now, l.cfg.Location)}
	}
	rec.DailyCount++
	rec.LastRequest = now

	if err := l.store.Set(ctx, rec); err != nil {
		return entity.UsageSnapshot{}, fmt.Errorf("rate limiter record failed: %w", err)
	}

	remaining := l.cfg.DailyLimit - rec.DailyCount
	if remaining < 0 {
		remaining = 0
	}
	return entity.UsageSnapshot{
		DailyCount:  rec.DailyCount,
		DailyLimit:  l.cfg.DailyLimit,
		Remaining:   remaining,
		NextReset:   rec.DailyReset,
		NextAllowed: now.Add(l.cfg.Cooldown),
	}, nil
}

// Release drops a reservation without consuming quota.
func (l *RateLimiter) Release(clientID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.releaseLocked(clientID)
}

func (l *RateLimiter) releaseLocked(clientID string) {
	if n := l.pending[clientID]; n > 1 {
		l.pending[clientID] = n - 1
	} else {
		delete(l.pending, clientID)
	}
}

// Sweep removes records idle for longer than the idle TTL, never sooner than
// the cooldown.
func (l *RateLimiter) Sweep(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Sweep(ctx, l.now().Add(-l.cfg.IdleTTL))
}

// StartSweeper runs Sweep every interval until ctx is done.
func (l *RateLimiter) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := l.Sweep(ctx)
			if err != nil {
				l.log.Warn("usage sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				l.log.Debug("usage sweep", zap.Int("removed", n))
			}
		}
	}
}
