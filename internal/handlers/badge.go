package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/tableside/internal/services"
)

// BadgeHandler serves the staff dashboard badge counters.
type BadgeHandler struct {
	poller *services.BadgeCountPoller
}

// NewBadgeHandler constructs BadgeHandler.
func NewBadgeHandler(poller *services.BadgeCountPoller) *BadgeHandler {
	return &BadgeHandler{poller: poller}
}

// GetBadgeCounts returns the merged badge counters.
func (h *BadgeHandler) GetBadgeCounts(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "data": h.poller.Counts()})
}

// RefreshBadgeCounts re-reads stale counters before returning them. Counters
// still inside the staleness window are served from cache.
func (h *BadgeHandler) RefreshBadgeCounts(c *fiber.Ctx) error {
	h.poller.Refresh(c.Context())
	return c.JSON(fiber.Map{"success": true, "data": h.poller.Counts()})
}
