package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"festify-gateway/internal/domain/entity"
	"festify-gateway/internal/usecase"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type GreetingHandler struct {
	generator *usecase.GreetingGenerator
	limiter   *usecase.RateLimiter
	log       *zap.Logger
}

func NewGreetingHandler(gen *usecase.GreetingGenerator, limiter *usecase.RateLimiter, log *zap.Logger) *GreetingHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &GreetingHandler{generator: gen, limiter: limiter, log: log.Named("api")}
}

func (h *GreetingHandler) HandleGenerate(c *fiber.Ctx) error {
	prompt, ok := promptFrom(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing or invalid prompt"})
	}

	ctx := c.UserContext()
	clientID := clientIDFromCtx(c)

	decision, err := h.limiter.Check(ctx, clientID)
	if err != nil {
		h.log.Error("admission check failed", zap.String("client", clientID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal gateway error"})
	}
	if !decision.Admitted {
		return rateLimited(c, decision)
	}

	result, err := h.generator.Generate(ctx, prompt)
	if err != nil {
		h.limiter.Release(clientID)
		h.log.Error("greeting generation failed", zap.String("client", clientID), zap.Error(err))
		if errors.Is(err, entity.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing or invalid prompt"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	// Quota is consumed only once a greeting has been produced.
	usage, err := h.limiter.Record(ctx, clientID)
	if err != nil {
		h.log.Error("failed to record usage", zap.String("client", clientID), zap.Error(err))
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"result": result, "usage": nil})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"result": result, "usage": usage})
}

// promptFrom reads prompt from the JSON body, falling back to the query string
// when the body value is falsy (missing, null, false, 0 or ""). ok is false
// unless the result is a non-empty string.
func promptFrom(c *fiber.Ctx) (string, bool) {
	var body map[string]any
	if raw := c.Body(); len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			body = nil
		}
	}

	value := body["prompt"]
	if isFalsy(value) {
		value = c.Query("prompt")
	}

	prompt, ok := value.(string)
	if !ok || prompt == "" {
		return "", false
	}
	return prompt, true
}

func isFalsy(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case bool:
		return !v
	case float64:
		return v == 0
	case string:
		return v == ""
	}
	return false
}

func rateLimited(c *fiber.Ctx, d entity.Decision) error {
	body := fiber.Map{
		"error":  "Rate limit exceeded",
		"reason": d.Reason,
	}

	switch d.Reason {
	case entity.ReasonDailyLimit:
		body["message"] = fmt.Sprintf("Daily greeting limit reached. Your quota resets %s.", relative(d.NextReset, d.Remaining))
		body["nextReset"] = d.NextReset.UTC().Format(time.RFC3339)
	case entity.ReasonCooldown:
		body["message"] = fmt.Sprintf("Please wait before creating another greeting. You can try again %s.", relative(d.NextAllowed, d.Remaining))
		body["nextAllowed"] = d.NextAllowed.UTC().Format(time.RFC3339)
		body["remainingTime"] = d.Remaining.Milliseconds()
	}

	if d.Remaining > 0 {
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(d.Remaining.Seconds()))))
	}
	return c.Status(fiber.StatusTooManyRequests).JSON(body)
}

// relative renders at as seen from the limiter's clock, which is wait before it.
func relative(at time.Time, wait time.Duration) string {
	return humanize.RelTime(at, at.Add(-wait), "ago", "from now")
}
