package handlers

import (
	"log"
	"strconv"
	"time"

	"thoughtcap/internal/models"
	"thoughtcap/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ConfigHandler exposes per-user configuration entries. Reads of keys the
// user never set answer with the server's effective default.
type ConfigHandler struct {
	itemService *services.ItemService
	defaults    map[string]string
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(itemService *services.ItemService, defaults map[string]string) *ConfigHandler {
	return &ConfigHandler{itemService: itemService, defaults: defaults}
}

var knownConfigKeys = map[string]bool{
	models.ConfigKeyUserBackground:      true,
	models.ConfigKeyClassifyPrompt:      true,
	models.ConfigKeyDecayDays:           true,
	models.ConfigKeyDailyPicksTime:      true,
	models.ConfigKeyPicksTargetCount:    true,
	models.ConfigKeyPicksMaxMinutes:     true,
	models.ConfigKeyNotificationEnabled: true,
}

// ListConfig returns every stored configuration entry for the caller.
// GET /api/config
func (h *ConfigHandler) ListConfig(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	entries, err := h.itemService.AllConfig(c.Context(), userID)
	if err != nil {
		log.Printf("❌ [CONFIG] Failed to list config for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list config",
		})
	}

	return c.JSON(fiber.Map{
		"config": entries,
	})
}

// GetConfig returns a single configuration value, falling back to the
// compiled-in default when the user has not set the key.
// GET /api/config/:key
func (h *ConfigHandler) GetConfig(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	key := c.Params("key")
	if !knownConfigKeys[key] {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Unknown config key",
		})
	}

	value := h.itemService.GetConfig(c.Context(), userID, key, h.defaults[key])
	return c.JSON(fiber.Map{
		"key":   key,
		"value": value,
	})
}

type setConfigRequest struct {
	Value string `json:"value"`
}

// SetConfig stores a configuration value after key-specific validation.
// POST /api/config/:key
func (h *ConfigHandler) SetConfig(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	key := c.Params("key")
	if !knownConfigKeys[key] {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Unknown config key",
		})
	}

	var req setConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if msg := validateConfigValue(key, req.Value); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": msg,
		})
	}

	if err := h.itemService.SetConfig(c.Context(), userID, key, req.Value); err != nil {
		log.Printf("❌ [CONFIG] Failed to set %s for user %s: %v", key, userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to set config",
		})
	}

	return c.JSON(fiber.Map{
		"key":   key,
		"value": req.Value,
	})
}

func validateConfigValue(key, value string) string {
	switch key {
	case models.ConfigKeyDecayDays, models.ConfigKeyPicksTargetCount, models.ConfigKeyPicksMaxMinutes:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return "Value must be a positive integer"
		}
	case models.ConfigKeyDailyPicksTime:
		if _, err := time.Parse("15:04", value); err != nil {
			return "Value must be a time in HH:MM format"
		}
	case models.ConfigKeyNotificationEnabled:
		if value != "true" && value != "false" {
			return "Value must be true or false"
		}
	}
	return ""
}
