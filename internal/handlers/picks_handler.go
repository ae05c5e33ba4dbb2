package handlers

import (
	"log"
	"time"

	"thoughtcap/internal/services"

	"github.com/gofiber/fiber/v2"
)

// PicksHandler serves the daily suggestion set.
type PicksHandler struct {
	picksService *services.PicksService
}

// NewPicksHandler creates a new picks handler
func NewPicksHandler(picksService *services.PicksService) *PicksHandler {
	return &PicksHandler{picksService: picksService}
}

// GetDailyPicks returns today's picks, generating them on first access.
// GET /api/daily-picks
func (h *PicksHandler) GetDailyPicks(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	picks, err := h.picksService.GetOrGenerate(c.Context(), userID, time.Now().UTC())
	if err != nil {
		log.Printf("❌ [PICKS] Failed to get daily picks for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get daily picks",
		})
	}

	return c.JSON(picks)
}

// RegenerateDailyPicks discards today's picks and builds a fresh set.
// POST /api/daily-picks/regenerate
func (h *PicksHandler) RegenerateDailyPicks(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	picks, err := h.picksService.Regenerate(c.Context(), userID, time.Now().UTC())
	if err != nil {
		log.Printf("❌ [PICKS] Failed to regenerate picks for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to regenerate daily picks",
		})
	}

	return c.JSON(picks)
}
