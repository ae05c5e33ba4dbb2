package handlers

import (
	"errors"
	"log"
	"strconv"

	"thoughtcap/internal/models"
	"thoughtcap/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ItemHandler exposes item listing, retrieval and lifecycle transitions.
type ItemHandler struct {
	itemService *services.ItemService
}

// NewItemHandler creates a new item handler
func NewItemHandler(itemService *services.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// ListItems returns the user's items newest-first with optional filters.
// GET /api/items?status=pending&type=film&limit=50
func (h *ItemHandler) ListItems(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	filter := services.ListFilter{
		Status:   c.Query("status", ""),
		ItemType: c.Query("type", ""),
	}
	if filter.Status != "" && filter.Status != models.StatusPending &&
		filter.Status != models.StatusConsumed && filter.Status != models.StatusArchived {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid status filter",
		})
	}
	if filter.ItemType != "" && !models.IsValidItemType(filter.ItemType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid type filter",
		})
	}
	if limit, err := strconv.Atoi(c.Query("limit", "50")); err == nil {
		filter.Limit = int64(limit)
	}

	items, err := h.itemService.List(c.Context(), userID, filter)
	if err != nil {
		log.Printf("❌ [ITEMS] Failed to list items for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list items",
		})
	}

	return c.JSON(fiber.Map{
		"items": items,
		"count": len(items),
	})
}

// GetItem returns a single item owned by the caller.
// GET /api/items/:id
func (h *ItemHandler) GetItem(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid item ID",
		})
	}

	item, err := h.itemService.Get(c.Context(), id, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Item not found",
			})
		}
		log.Printf("❌ [ITEMS] Failed to get item %s: %v", id.Hex(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get item",
		})
	}

	return c.JSON(item)
}

type updateItemRequest struct {
	Status   string `json:"status"`
	Feedback string `json:"feedback"`
	Notes    string `json:"notes"`
}

// validateItemUpdate checks an update request. Status is optional: a
// status-less request applies feedback/notes only.
func validateItemUpdate(req updateItemRequest) string {
	if req.Status == "" && req.Feedback == "" && req.Notes == "" {
		return "Nothing to update"
	}
	if req.Status != "" && req.Status != models.StatusPending &&
		req.Status != models.StatusConsumed && req.Status != models.StatusArchived {
		return "Invalid target status"
	}
	if req.Feedback != "" && req.Feedback != models.FeedbackLoved &&
		req.Feedback != models.FeedbackMeh && req.Feedback != models.FeedbackDisappointed {
		return "Invalid feedback value"
	}
	return ""
}

// UpdateItem applies a status transition and/or feedback and notes.
// PATCH /api/items/:id
func (h *ItemHandler) UpdateItem(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid item ID",
		})
	}

	var req updateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if msg := validateItemUpdate(req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": msg,
		})
	}

	item, err := h.itemService.UpdateStatus(c.Context(), id, userID, services.StatusUpdate{
		NewStatus: req.Status,
		Feedback:  req.Feedback,
		Notes:     req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Item not found",
			})
		case errors.Is(err, models.ErrInvalidTransition):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Invalid status transition",
			})
		default:
			log.Printf("❌ [ITEMS] Failed to update item %s: %v", id.Hex(), err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update item",
			})
		}
	}

	return c.JSON(item)
}

// DeleteItem permanently removes an item.
// DELETE /api/items/:id
func (h *ItemHandler) DeleteItem(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid item ID",
		})
	}

	if err := h.itemService.Delete(c.Context(), id, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Item not found",
			})
		}
		log.Printf("❌ [ITEMS] Failed to delete item %s: %v", id.Hex(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete item",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}
