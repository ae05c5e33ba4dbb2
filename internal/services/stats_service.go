package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"thoughtcap/internal/database"
	"thoughtcap/internal/models"
)

// StatsService derives user counters from the item collection. It is a pure
// read path with no side effects, safe to call arbitrarily often.
type StatsService struct {
	collection *mongo.Collection
}

// NewStatsService creates a stats service.
func NewStatsService(mongodb *database.MongoDB) *StatsService {
	return &StatsService{collection: mongodb.Collection(database.CollectionItems)}
}

// Compute aggregates the user's counters. consumption_rate is a percentage
// and is 0 when nothing was ever captured.
func (s *StatsService) Compute(ctx context.Context, userID string) (*models.Stats, error) {
	totalCaptured, err := s.count(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	totalConsumed, err := s.count(ctx, bson.M{"userId": userID, "status": models.StatusConsumed})
	if err != nil {
		return nil, err
	}
	pending, err := s.count(ctx, bson.M{"userId": userID, "status": models.StatusPending})
	if err != nil {
		return nil, err
	}
	archived, err := s.count(ctx, bson.M{"userId": userID, "status": models.StatusArchived})
	if err != nil {
		return nil, err
	}

	consumedDays, err := s.consumedDays(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.Stats{
		TotalCaptured:   totalCaptured,
		TotalConsumed:   totalConsumed,
		Pending:         pending,
		Archived:        archived,
		StreakDays:      Streak(consumedDays, time.Now().UTC()),
		ConsumptionRate: ConsumptionRate(totalConsumed, totalCaptured),
	}, nil
}

// ConsumptionRate returns consumed/captured as a percentage. A user with no
// captures has a rate of 0, not a division error.
func ConsumptionRate(consumed, captured int64) float64 {
	if captured <= 0 {
		return 0
	}
	return float64(consumed) / float64(captured) * 100
}

// LastNDays returns capture/consumption counts over a trailing window.
func (s *StatsService) LastNDays(ctx context.Context, userID string, days int) (models.WindowStats, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	captured, err := s.count(ctx, bson.M{"userId": userID, "createdAt": bson.M{"$gte": cutoff}})
	if err != nil {
		return models.WindowStats{}, err
	}
	consumed, err := s.count(ctx, bson.M{"userId": userID, "consumedAt": bson.M{"$gte": cutoff}})
	if err != nil {
		return models.WindowStats{}, err
	}

	return models.WindowStats{Captured: captured, Consumed: consumed}, nil
}

func (s *StatsService) count(ctx context.Context, filter bson.M) (int64, error) {
	n, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, &models.StorageError{Op: "count items", Err: err}
	}
	return n, nil
}

// streakLookback bounds how far back the streak scan reads. A streak longer
// than this is reported capped.
const streakLookback = 365

// consumedDays loads the recent consumption timestamps, newest first.
func (s *StatsService) consumedDays(ctx context.Context, userID string) ([]time.Time, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -streakLookback)
	filter := bson.M{"userId": userID, "consumedAt": bson.M{"$gte": cutoff}}

	opts := options.Find().
		SetProjection(bson.M{"consumedAt": 1}).
		SetSort(bson.D{{Key: "consumedAt", Value: -1}})

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, &models.StorageError{Op: "load consumption days", Err: err}
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ConsumedAt *time.Time `bson:"consumedAt"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, &models.StorageError{Op: "decode consumption days", Err: err}
	}

	times := make([]time.Time, 0, len(rows))
	for _, row := range rows {
		if row.ConsumedAt != nil {
			times = append(times, *row.ConsumedAt)
		}
	}
	return times, nil
}

// Streak counts consecutive calendar days with at least one consumption,
// walking back from today. The streak may start yesterday (today simply has
// no activity yet); any earlier gap resets it to 0.
func Streak(consumed []time.Time, now time.Time) int {
	if len(consumed) == 0 {
		return 0
	}

	days := make(map[string]bool, len(consumed))
	for _, t := range consumed {
		days[t.UTC().Format("2006-01-02")] = true
	}

	day := now.UTC().Truncate(24 * time.Hour)
	if !days[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1) // allow today to be empty so far
	}

	streak := 0
	for days[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
