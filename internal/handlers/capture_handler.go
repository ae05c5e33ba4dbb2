package handlers

import (
	"io"
	"log"
	"strings"
	"time"

	"thoughtcap/internal/models"
	"thoughtcap/internal/services"

	"github.com/gofiber/fiber/v2"
)

const maxImageBytes = 10 << 20 // 10 MB

// CaptureHandler accepts raw thoughts and hands them to the classifier.
type CaptureHandler struct {
	classifierService *services.ClassifierService
}

// NewCaptureHandler creates a new capture handler
func NewCaptureHandler(classifierService *services.ClassifierService) *CaptureHandler {
	return &CaptureHandler{classifierService: classifierService}
}

type captureRequest struct {
	Text            string `json:"text"`
	Image           []byte `json:"image"` // base64 on the wire
	ImageMIME       string `json:"image_mime"`
	Caption         string `json:"caption"`
	SourceMessageID string `json:"source_message_id"`
}

// Capture ingests a text or image capture and returns the stored item.
// POST /api/capture  (JSON body, or multipart/form-data with an "image" part)
func (h *CaptureHandler) Capture(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	event := &models.CaptureEvent{
		UserID:     userID,
		ReceivedAt: time.Now().UTC(),
	}

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		event.Text = strings.TrimSpace(c.FormValue("text"))
		event.Caption = strings.TrimSpace(c.FormValue("caption"))
		event.SourceMessageID = strings.TrimSpace(c.FormValue("source_message_id"))

		if file, err := c.FormFile("image"); err == nil && file != nil {
			if file.Size > maxImageBytes {
				return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
					"error": "Image too large",
				})
			}
			f, err := file.Open()
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Failed to read image",
				})
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Failed to read image",
				})
			}
			event.Image = data
			event.ImageMIME = file.Header.Get("Content-Type")
		}
	} else {
		var req captureRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
		if len(req.Image) > maxImageBytes {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
				"error": "Image too large",
			})
		}
		event.Text = strings.TrimSpace(req.Text)
		event.Image = req.Image
		event.ImageMIME = req.ImageMIME
		event.Caption = strings.TrimSpace(req.Caption)
		event.SourceMessageID = strings.TrimSpace(req.SourceMessageID)
	}

	if event.Text == "" && len(event.Image) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Capture requires text or an image",
		})
	}

	item, err := h.classifierService.Capture(c.Context(), event)
	if err != nil {
		log.Printf("❌ [CAPTURE] Failed to store capture for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store capture",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"item":              item,
		"enrichment_failed": item.EnrichmentFailed,
	})
}
