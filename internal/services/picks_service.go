package services

import (
	"context"
	"errors"
	"log"
	"math"
	"sort"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"thoughtcap/internal/database"
	"thoughtcap/internal/models"
	"thoughtcap/internal/prompt"
)

// picksGateway is the slice of the LLM gateway the picks engine uses for the
// optional rationale call.
type picksGateway interface {
	Rationale(ctx context.Context, prompt string) (*models.PicksRationale, error)
}

// PicksService selects a balanced daily subset of pending items. Selection
// is deterministic for a fixed pool; the LLM only annotates and re-ranks the
// already-selected set and its failure never fails the generation.
type PicksService struct {
	mongodb         *database.MongoDB
	picksCollection *mongo.Collection
	itemService     *ItemService
	statsService    *StatsService
	gateway         picksGateway
	redis           *RedisService // optional hot cache in front of Mongo

	defaultTargetCount int
	defaultMaxMinutes  int
}

// NewPicksService creates a picks service. redis may be nil.
func NewPicksService(
	mongodb *database.MongoDB,
	itemService *ItemService,
	statsService *StatsService,
	gateway picksGateway,
	redis *RedisService,
	defaultTargetCount int,
	defaultMaxMinutes int,
) *PicksService {
	if defaultTargetCount < 3 || defaultTargetCount > 5 {
		defaultTargetCount = 4
	}
	if defaultMaxMinutes <= 0 {
		defaultMaxMinutes = 180
	}
	return &PicksService{
		mongodb:            mongodb,
		picksCollection:    mongodb.Collection(database.CollectionDailyPicks),
		itemService:        itemService,
		statsService:       statsService,
		gateway:            gateway,
		redis:              redis,
		defaultTargetCount: defaultTargetCount,
		defaultMaxMinutes:  defaultMaxMinutes,
	}
}

const picksPoolLimit = 50

// GetOrGenerate returns the cached picks for today, generating them on a
// cache miss.
func (s *PicksService) GetOrGenerate(ctx context.Context, userID string, now time.Time) (*models.DailyPicks, error) {
	date := now.Format("2006-01-02")

	if cached := s.cachedPicks(ctx, userID, date); cached != nil {
		return cached, nil
	}

	return s.Generate(ctx, userID, now)
}

// Regenerate re-runs the full selection and overwrites the cached picks for
// today. It may legitimately return a different result than the previous
// generation: the pool or the rationale output may have changed.
func (s *PicksService) Regenerate(ctx context.Context, userID string, now time.Time) (*models.DailyPicks, error) {
	return s.Generate(ctx, userID, now)
}

// Generate runs the selection algorithm over the user's pending pool and
// caches the result keyed by (userID, date).
func (s *PicksService) Generate(ctx context.Context, userID string, now time.Time) (*models.DailyPicks, error) {
	pool, err := s.itemService.List(ctx, userID, ListFilter{Status: models.StatusPending, Limit: picksPoolLimit})
	if err != nil {
		return nil, err
	}

	targetCount := s.targetCountForUser(ctx, userID)
	maxMinutes := s.maxMinutesForUser(ctx, userID)

	selected := SelectPicks(pool, now, targetCount, maxMinutes)
	log.Printf("🎯 [PICKS] User %s: selected %d/%d pending items (target %d, budget %dmin)",
		userID, len(selected), len(pool), targetCount, maxMinutes)

	picks := &models.DailyPicks{
		UserID:      userID,
		Date:        now.Format("2006-01-02"),
		Picks:       make([]models.DailyPick, 0, len(selected)),
		GeneratedAt: now,
	}

	total := 0
	for _, item := range selected {
		total += item.EstimatedMinutes
		picks.Picks = append(picks.Picks, models.DailyPick{ItemID: item.ID})
	}
	picks.TotalEstimatedMinutes = total

	if len(selected) > 0 && s.gateway != nil {
		s.annotateWithRationale(ctx, userID, now, selected, picks)
	}

	if err := s.storePicks(ctx, picks); err != nil {
		return nil, err
	}
	return picks, nil
}

// annotateWithRationale asks the cheap model for per-pick reasons and an
// ordering within the selected set. On any failure the deterministic order
// stands with null reasons.
func (s *PicksService) annotateWithRationale(ctx context.Context, userID string, now time.Time, selected []models.Item, picks *models.DailyPicks) {
	var window models.WindowStats
	if s.statsService != nil {
		if w, err := s.statsService.LastNDays(ctx, userID, 7); err == nil {
			window = w
		}
	}

	p := prompt.BuildPicks("", prompt.PicksContext{
		UserBackground: s.itemService.GetConfig(ctx, userID, models.ConfigKeyUserBackground, ""),
		Selected:       selected,
		DayOfWeek:      now.Weekday().String(),
		CurrentTime:    now.Format("15:04"),
		RecentConsumed: window.Consumed,
		RecentCaptured: window.Captured,
	})

	rationale, err := s.gateway.Rationale(ctx, p)
	if err != nil {
		log.Printf("⚠️ [PICKS] Rationale call failed, keeping deterministic order: %v", err)
		return
	}

	// Index selected picks by id; only ids the model was given count.
	byID := make(map[string]int, len(picks.Picks))
	for i, pick := range picks.Picks {
		byID[pick.ItemID.Hex()] = i
	}

	reordered := make([]models.DailyPick, 0, len(picks.Picks))
	seen := make(map[string]bool, len(picks.Picks))
	for _, rp := range rationale.Picks {
		idx, ok := byID[rp.ItemID]
		if !ok || seen[rp.ItemID] {
			continue
		}
		seen[rp.ItemID] = true
		pick := picks.Picks[idx]
		pick.Reason = rp.Reason
		reordered = append(reordered, pick)
	}
	// Anything the model dropped keeps its deterministic slot at the end.
	for _, pick := range picks.Picks {
		if !seen[pick.ItemID.Hex()] {
			reordered = append(reordered, pick)
		}
	}

	picks.Picks = reordered
	picks.Message = rationale.Message
}

// storePicks upserts the daily picks document and refreshes the Redis copy.
func (s *PicksService) storePicks(ctx context.Context, picks *models.DailyPicks) error {
	filter := bson.M{"userId": picks.UserID, "date": picks.Date}
	update := bson.M{
		"$set": bson.M{
			"picks":                 picks.Picks,
			"totalEstimatedMinutes": picks.TotalEstimatedMinutes,
			"message":               picks.Message,
			"generatedAt":           picks.GeneratedAt,
		},
		"$setOnInsert": bson.M{
			"_id":    primitive.NewObjectID(),
			"userId": picks.UserID,
			"date":   picks.Date,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := s.picksCollection.UpdateOne(ctx, filter, update, opts); err != nil {
		return &models.StorageError{Op: "store daily picks", Err: err}
	}

	if s.redis != nil {
		s.redis.CachePicks(ctx, picks)
	}
	return nil
}

// cachedPicks checks Redis first, then the durable Mongo cache.
func (s *PicksService) cachedPicks(ctx context.Context, userID, date string) *models.DailyPicks {
	if s.redis != nil {
		if picks := s.redis.GetPicks(ctx, userID, date); picks != nil {
			return picks
		}
	}

	var picks models.DailyPicks
	err := s.picksCollection.FindOne(ctx, bson.M{"userId": userID, "date": date}).Decode(&picks)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			log.Printf("⚠️ [PICKS] Failed to read cached picks: %v", err)
		}
		return nil
	}
	return &picks
}

func (s *PicksService) targetCountForUser(ctx context.Context, userID string) int {
	raw := s.itemService.GetConfig(ctx, userID, models.ConfigKeyPicksTargetCount, strconv.Itoa(s.defaultTargetCount))
	n, err := strconv.Atoi(raw)
	if err != nil || n < 3 || n > 5 {
		return s.defaultTargetCount
	}
	return n
}

func (s *PicksService) maxMinutesForUser(ctx context.Context, userID string) int {
	raw := s.itemService.GetConfig(ctx, userID, models.ConfigKeyPicksMaxMinutes, strconv.Itoa(s.defaultMaxMinutes))
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return s.defaultMaxMinutes
	}
	return n
}

// StalenessScore favors older pending items so the backlog does not silently
// accumulate: 0 for items captured today, asymptotically 1 as they age
// (about 0.63 at one week).
func StalenessScore(ageDays int) float64 {
	if ageDays <= 0 {
		return 0
	}
	return 1 - math.Exp(-float64(ageDays)/7.0)
}

// SelectPicks implements the deterministic selection: rank by staleness,
// then priority, then shorter first; balance across item types; and fill
// greedily against the time budget, skipping items that no longer fit rather
// than stopping at the first overflow.
func SelectPicks(pool []models.Item, now time.Time, targetCount, maxTotalMinutes int) []models.Item {
	pending := make([]models.Item, 0, len(pool))
	types := make(map[string]bool)
	for _, item := range pool {
		if item.Status != models.StatusPending {
			continue
		}
		pending = append(pending, item)
		types[item.ItemType] = true
	}
	if len(pending) == 0 || targetCount <= 0 {
		return nil
	}

	sort.SliceStable(pending, func(i, j int) bool {
		si, sj := StalenessScore(pending[i].AgeDays(now)), StalenessScore(pending[j].AgeDays(now))
		if si != sj {
			return si > sj
		}
		if pending[i].Priority != pending[j].Priority {
			return pending[i].Priority > pending[j].Priority
		}
		if pending[i].EstimatedMinutes != pending[j].EstimatedMinutes {
			return pending[i].EstimatedMinutes < pending[j].EstimatedMinutes
		}
		return pending[i].ID.Hex() > pending[j].ID.Hex()
	})

	// Per-type cap keeps the day varied when the pool has variety.
	typeCap := (targetCount + len(types) - 1) / len(types)

	selected := greedyFill(pending, nil, targetCount, maxTotalMinutes, typeCap)
	if len(selected) < targetCount {
		// Not enough diversity to fill under the cap: relax it rather than
		// under-fill. The time budget stays strict.
		selected = greedyFill(pending, selected, targetCount, maxTotalMinutes, 0)
	}
	return selected
}

// greedyFill walks the ranked pool adding items that fit the remaining count
// and time budget. typeCap 0 means uncapped. already holds picks from a
// previous (capped) pass and is extended, preserving its order.
func greedyFill(ranked, already []models.Item, targetCount, maxTotalMinutes, typeCap int) []models.Item {
	selected := already
	taken := make(map[primitive.ObjectID]bool, len(already))
	perType := make(map[string]int)
	total := 0
	for _, item := range already {
		taken[item.ID] = true
		perType[item.ItemType]++
		total += item.EstimatedMinutes
	}

	for _, item := range ranked {
		if len(selected) >= targetCount {
			break
		}
		if taken[item.ID] {
			continue
		}
		if typeCap > 0 && perType[item.ItemType] >= typeCap {
			continue
		}
		if maxTotalMinutes > 0 && total+item.EstimatedMinutes > maxTotalMinutes {
			continue
		}
		selected = append(selected, item)
		taken[item.ID] = true
		perType[item.ItemType]++
		total += item.EstimatedMinutes
	}
	return selected
}
