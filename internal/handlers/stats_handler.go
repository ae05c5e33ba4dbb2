package handlers

import (
	"log"
	"time"

	"thoughtcap/internal/services"

	"github.com/gofiber/fiber/v2"
)

// StatsHandler serves capture/consumption statistics and the weekly digest.
type StatsHandler struct {
	statsService  *services.StatsService
	digestService *services.DigestService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService *services.StatsService, digestService *services.DigestService) *StatsHandler {
	return &StatsHandler{
		statsService:  statsService,
		digestService: digestService,
	}
}

// GetStats returns lifetime counters, consumption rate and streak.
// GET /api/stats
func (h *StatsHandler) GetStats(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	stats, err := h.statsService.Compute(c.Context(), userID)
	if err != nil {
		log.Printf("❌ [STATS] Failed to compute stats for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute stats",
		})
	}

	return c.JSON(stats)
}

// GetDigest returns the weekly activity digest.
// GET /api/digest
func (h *StatsHandler) GetDigest(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	digest, err := h.digestService.Build(c.Context(), userID, time.Now().UTC())
	if err != nil {
		log.Printf("❌ [STATS] Failed to build digest for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build digest",
		})
	}

	return c.JSON(digest)
}
