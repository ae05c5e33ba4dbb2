package services

import (
	"context"
	"log"
	"sort"
	"time"

	"thoughtcap/internal/models"
)

// DigestService builds the weekly digest payload consumed by the external
// email sink. Delivery is not this service's job; it only assembles the data.
type DigestService struct {
	itemService  *ItemService
	statsService *StatsService
}

// NewDigestService creates a digest service.
func NewDigestService(itemService *ItemService, statsService *StatsService) *DigestService {
	return &DigestService{itemService: itemService, statsService: statsService}
}

const digestSuggestions = 5

// Build assembles the trailing-7-day digest for a user.
func (s *DigestService) Build(ctx context.Context, userID string, now time.Time) (*models.Digest, error) {
	window, err := s.statsService.LastNDays(ctx, userID, 7)
	if err != nil {
		return nil, err
	}

	stats, err := s.statsService.Compute(ctx, userID)
	if err != nil {
		return nil, err
	}

	consumed, err := s.itemService.List(ctx, userID, ListFilter{Status: models.StatusConsumed, Limit: 20})
	if err != nil {
		return nil, err
	}

	cutoff := now.AddDate(0, 0, -7)
	recentConsumed := make([]models.Item, 0, len(consumed))
	for _, item := range consumed {
		if item.ConsumedAt != nil && item.ConsumedAt.After(cutoff) {
			recentConsumed = append(recentConsumed, item)
		}
	}

	suggestions, err := s.oldestPending(ctx, userID)
	if err != nil {
		return nil, err
	}

	digest := &models.Digest{
		UserID:        userID,
		From:          cutoff.Format("2006-01-02"),
		To:            now.Format("2006-01-02"),
		Window:        window,
		StreakDays:    stats.StreakDays,
		ConsumedItems: recentConsumed,
		Suggestions:   suggestions,
	}

	log.Printf("📧 [DIGEST] Built digest for user %s: %d consumed, %d suggestions",
		userID, len(recentConsumed), len(suggestions))
	return digest, nil
}

// oldestPending surfaces the most neglected pending items as suggestions.
func (s *DigestService) oldestPending(ctx context.Context, userID string) ([]models.Item, error) {
	pending, err := s.itemService.List(ctx, userID, ListFilter{Status: models.StatusPending, Limit: picksPoolLimit})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	if len(pending) > digestSuggestions {
		pending = pending[:digestSuggestions]
	}
	return pending, nil
}
