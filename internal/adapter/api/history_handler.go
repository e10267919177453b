package api

import (
	"festify-gateway/internal/domain/entity"
	"festify-gateway/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type HistoryHandler struct {
	history *usecase.GreetingHistory
	log     *zap.Logger
}

func NewHistoryHandler(history *usecase.GreetingHistory, log *zap.Logger) *HistoryHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &HistoryHandler{history: history, log: log.Named("history")}
}

func (h *HistoryHandler) List(c *fiber.Ctx) error {
	records, err := h.history.List(c.UserContext(), c.Query("owner"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"greetings": records})
}

func (h *HistoryHandler) Create(c *fiber.Ctx) error {
	var rec entity.GreetingRecord
	if err := c.BodyParser(&rec); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	saved, err := h.history.Save(c.UserContext(), rec)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(saved)
}

type statusUpdate struct {
	Status entity.GreetingStatus `json:"status"`
	TxHash string                `json:"txHash"`
}

func (h *HistoryHandler) UpdateStatus(c *fiber.Ctx) error {
	var req statusUpdate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	rec, err := h.history.UpdateStatus(c.UserContext(), c.Params("id"), req.Status, req.TxHash)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(rec)
}

func (h *HistoryHandler) Delete(c *fiber.Ctx) error {
	if err := h.history.Delete(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *HistoryHandler) Similar(c *fiber.Ctx) error {
	hits, err := h.history.Similar(c.UserContext(), c.Query("q"), c.QueryInt("limit", 0))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"results": hits})
}

func (h *HistoryHandler) fail(c *fiber.Ctx, err error) error {
	if statusFor(err) == fiber.StatusInternalServerError {
		h.log.Error("history request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return writeError(c, err)
}
