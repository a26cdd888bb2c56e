package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/retail-lens/backend/internal/storage/sqlite"
	"github.com/retail-lens/backend/pkg/logger"
)

type HistoryHandler struct {
	history *sqlite.Client
}

func NewHistoryHandler(history *sqlite.Client) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// GetHistory returns the most recent analysis runs, newest first.
func (h *HistoryHandler) GetHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	runs, err := h.history.RecentRuns(limit)
	if err != nil {
		logger.Error("failed to load analysis history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load analysis history",
		})
	}
	return c.JSON(fiber.Map{"runs": runs})
}
