package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"thoughtcap/internal/logging"
	"thoughtcap/internal/models"
	"thoughtcap/internal/prompt"

	"github.com/google/uuid"
)

// classifyGateway is the slice of the LLM gateway the classifier needs.
type classifyGateway interface {
	Classify(ctx context.Context, prompt string, image []byte, imageMIME string) (*models.Classification, error)
	SupportsVision() bool
}

// captureStore is the slice of the item store the classifier needs.
type captureStore interface {
	Insert(ctx context.Context, item *models.Item) error
	RecentItems(ctx context.Context, userID string, limit int64) ([]models.Item, error)
	GetConfig(ctx context.Context, userID, key, def string) string
}

// ClassifierService turns inbound capture events into persisted items. Its
// one guarantee: every accepted capture ends up stored, degraded at worst,
// unless persistence itself fails.
type ClassifierService struct {
	store   captureStore
	gateway classifyGateway
}

// NewClassifierService creates a classifier over the given store and gateway.
func NewClassifierService(store captureStore, gateway classifyGateway) *ClassifierService {
	return &ClassifierService{store: store, gateway: gateway}
}

const recentItemsContext = 5

// Capture classifies and persists one inbound event. Classification failures
// degrade to an "other" item carrying the raw input; only a storage failure
// propagates, because that is the one case where the capture would be lost.
func (s *ClassifierService) Capture(ctx context.Context, event *models.CaptureEvent) (*models.Item, error) {
	verbatim := strings.TrimSpace(event.Text)
	if len(event.Image) > 0 {
		if verbatim == "" {
			verbatim = strings.TrimSpace(event.Caption)
		}
		if verbatim == "" {
			verbatim = "immagine"
		}
		if !s.gateway.SupportsVision() {
			log.Printf("⚠️ [CLASSIFY] No vision-capable provider, storing image capture degraded")
			return s.storeFallback(ctx, event, verbatim)
		}
	}
	if verbatim == "" {
		return nil, fmt.Errorf("capture event has no text or image")
	}

	captureID := uuid.NewString()
	logger := logging.WithCapture(captureID, event.UserID)
	logger.Debug("classification started", "input_length", len(verbatim), "has_image", len(event.Image) > 0)

	log.Printf("🔍 [CLASSIFY] [%s] Classifying for user %s: %.50q", captureID[:8], event.UserID, verbatim)

	background := s.store.GetConfig(ctx, event.UserID, models.ConfigKeyUserBackground, "")
	template := s.store.GetConfig(ctx, event.UserID, models.ConfigKeyClassifyPrompt, "")

	recent, err := s.store.RecentItems(ctx, event.UserID, recentItemsContext)
	if err != nil {
		log.Printf("⚠️ [CLASSIFY] Failed to load recent items, continuing without context: %v", err)
		recent = nil
	}

	p := prompt.Build(template, background, recent, verbatim)

	result, err := s.gateway.Classify(ctx, p, event.Image, event.ImageMIME)
	if err != nil {
		log.Printf("⚠️ [CLASSIFY] All providers exhausted for user %s: %v", event.UserID, err)
		return s.storeFallback(ctx, event, verbatim)
	}

	item := &models.Item{
		UserID:           event.UserID,
		SourceMessageID:  event.SourceMessageID,
		VerbatimInput:    verbatim,
		ItemType:         result.Type,
		Title:            result.Title,
		Description:      result.Description,
		Enrichment:       models.Enrichment{Links: result.Links, ConsumptionSuggestion: result.ConsumptionSuggestion},
		Priority:         result.Priority,
		EstimatedMinutes: result.EstimatedMinutes,
		Tags:             result.Tags,
		Status:           models.StatusPending,
		CreatedAt:        time.Now().UTC(),
	}
	if item.Title == "" {
		item.Title = TruncateTitle(verbatim)
	}

	if err := s.store.Insert(ctx, item); err != nil {
		return nil, err
	}

	log.Printf("✅ [CLASSIFY] Saved item %s (%s): %s", item.ID.Hex(), item.ItemType, item.Title)
	return item, nil
}

// storeFallback persists the degraded item when enrichment is unavailable.
// Better messy than lost.
func (s *ClassifierService) storeFallback(ctx context.Context, event *models.CaptureEvent, verbatim string) (*models.Item, error) {
	item := &models.Item{
		UserID:           event.UserID,
		SourceMessageID:  event.SourceMessageID,
		VerbatimInput:    verbatim,
		ItemType:         models.ItemTypeOther,
		Title:            TruncateTitle(verbatim),
		Description:      "Classificazione fallita, richiede review manuale",
		Enrichment:       models.Enrichment{Links: []models.LinkInfo{}},
		Priority:         3,
		EstimatedMinutes: models.DefaultEstimatedMinutes(models.ItemTypeOther),
		Tags:             []string{"uncategorized"},
		EnrichmentFailed: true,
		Status:           models.StatusPending,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.store.Insert(ctx, item); err != nil {
		return nil, err
	}

	log.Printf("📦 [CLASSIFY] Stored degraded item %s for user %s", item.ID.Hex(), event.UserID)
	return item, nil
}

const titlePrefixRunes = 50

// TruncateTitle derives a fallback title from the raw input prefix.
func TruncateTitle(verbatim string) string {
	runes := []rune(verbatim)
	if len(runes) <= titlePrefixRunes {
		return verbatim
	}
	return string(runes[:titlePrefixRunes]) + "..."
}
