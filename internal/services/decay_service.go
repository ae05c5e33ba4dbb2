package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"thoughtcap/internal/database"
	"thoughtcap/internal/models"
)

// DecayService archives pending items that sat untouched past the per-user
// decay window. Nothing is ever deleted: decay only changes visibility, and
// the user can restore from the archive at any time.
type DecayService struct {
	mongodb          *database.MongoDB
	collection       *mongo.Collection
	itemService      *ItemService
	defaultDecayDays int
}

// NewDecayService creates a decay service.
func NewDecayService(mongodb *database.MongoDB, itemService *ItemService, defaultDecayDays int) *DecayService {
	if defaultDecayDays <= 0 {
		defaultDecayDays = 30
	}
	return &DecayService{
		mongodb:          mongodb,
		collection:       mongodb.Collection(database.CollectionItems),
		itemService:      itemService,
		defaultDecayDays: defaultDecayDays,
	}
}

// Run archives stale pending items for every user with pending items and
// returns the total archived count. Re-running with the same now is
// idempotent: already-archived items simply no longer match the filter.
func (s *DecayService) Run(ctx context.Context, now time.Time) (int, error) {
	log.Printf("🔄 [DECAY] Starting decay job")

	userIDs, err := s.itemService.ActiveUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get active user IDs: %w", err)
	}

	total := 0
	for _, userID := range userIDs {
		archived, err := s.RunForUser(ctx, userID, now)
		if err != nil {
			log.Printf("⚠️ [DECAY] Failed to process user %s: %v", userID, err)
			continue
		}
		total += archived
	}

	log.Printf("✅ [DECAY] Decay job completed: %d items archived", total)
	return total, nil
}

// RunForUser archives the user's pending items older than their decay
// window in one bulk update.
func (s *DecayService) RunForUser(ctx context.Context, userID string, now time.Time) (int, error) {
	decayDays := s.decayDaysForUser(ctx, userID)
	cutoff := Cutoff(now, decayDays)

	filter := bson.M{
		"userId":    userID,
		"status":    models.StatusPending,
		"createdAt": bson.M{"$lt": cutoff},
	}
	update := bson.M{
		"$set":   bson.M{"status": models.StatusArchived, "archivedAt": now},
		"$unset": bson.M{"consumedAt": ""},
	}

	result, err := s.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, &models.StorageError{Op: "archive stale items", Err: err}
	}

	if result.ModifiedCount > 0 {
		log.Printf("📦 [DECAY] User %s: archived %d items older than %d days", userID, result.ModifiedCount, decayDays)
	}
	return int(result.ModifiedCount), nil
}

// decayDaysForUser reads the per-user decay window, falling back to the
// configured default on absence or garbage.
func (s *DecayService) decayDaysForUser(ctx context.Context, userID string) int {
	raw := s.itemService.GetConfig(ctx, userID, models.ConfigKeyDecayDays, strconv.Itoa(s.defaultDecayDays))
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		return s.defaultDecayDays
	}
	return days
}

// Cutoff returns the creation-time threshold below which a pending item is
// considered stale.
func Cutoff(now time.Time, decayDays int) time.Time {
	return now.AddDate(0, 0, -decayDays)
}
