package handlers

import (
	"time"

	"thoughtcap/internal/database"
	"thoughtcap/internal/services"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler reports process and dependency health.
type HealthHandler struct {
	db        *database.MongoDB
	redis     *services.RedisService
	startedAt time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.MongoDB, redis *services.RedisService) *HealthHandler {
	return &HealthHandler{
		db:        db,
		redis:     redis,
		startedAt: time.Now().UTC(),
	}
}

// Health returns dependency status. Mongo failure degrades the response
// to 503; Redis is an optional cache and never fails the check.
// GET /api/health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	overall := "healthy"
	mongoStatus := "ok"
	status := fiber.StatusOK
	if err := h.db.Ping(c.Context()); err != nil {
		overall = "degraded"
		mongoStatus = "unreachable"
		status = fiber.StatusServiceUnavailable
	}

	redisStatus := "disabled"
	if h.redis != nil {
		redisStatus = "ok"
		if err := h.redis.Client().Ping(c.Context()).Err(); err != nil {
			redisStatus = "unreachable"
		}
	}

	return c.Status(status).JSON(fiber.Map{
		"status":         overall,
		"mongodb":        mongoStatus,
		"redis":          redisStatus,
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
	})
}
