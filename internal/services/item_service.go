package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"thoughtcap/internal/database"
	"thoughtcap/internal/models"
)

// ItemService is the single source of truth for items and per-user config.
// All mutation goes through it; status transitions are single conditional
// document updates, so concurrent transitions on the same item cannot
// interleave into an inconsistent timestamp pair.
type ItemService struct {
	mongodb          *database.MongoDB
	collection       *mongo.Collection
	configCollection *mongo.Collection
	configCache      *gocache.Cache // config reads happen on every capture
}

// NewItemService creates an item service over the given database.
func NewItemService(mongodb *database.MongoDB) *ItemService {
	return &ItemService{
		mongodb:          mongodb,
		collection:       mongodb.Collection(database.CollectionItems),
		configCollection: mongodb.Collection(database.CollectionUserConfig),
		configCache:      gocache.New(time.Minute, 5*time.Minute),
	}
}

// Insert persists a new item. The item is either fully persisted or not
// persisted at all; failures surface as *models.StorageError.
func (s *ItemService) Insert(ctx context.Context, item *models.Item) error {
	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	if item.Status == "" {
		item.Status = models.StatusPending
	}
	if item.Enrichment.Links == nil {
		item.Enrichment.Links = []models.LinkInfo{}
	}

	if _, err := s.collection.InsertOne(ctx, item); err != nil {
		return &models.StorageError{Op: "insert item", Err: err}
	}
	return nil
}

// Get fetches one item scoped by user. A missing id and another user's id
// are indistinguishable: both return models.ErrNotFound.
func (s *ItemService) Get(ctx context.Context, id primitive.ObjectID, userID string) (*models.Item, error) {
	var item models.Item
	err := s.collection.FindOne(ctx, bson.M{"_id": id, "userId": userID}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, &models.StorageError{Op: "get item", Err: err}
	}
	return &item, nil
}

// ListFilter narrows a List call. Zero values mean "no filter".
type ListFilter struct {
	Status   string
	ItemType string
	Limit    int64
}

// List returns the user's items newest-first (createdAt desc, then _id desc
// for deterministic pagination).
func (s *ItemService) List(ctx context.Context, userID string, filter ListFilter) ([]models.Item, error) {
	query := bson.M{"userId": userID}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.ItemType != "" {
		query["itemType"] = filter.ItemType
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, &models.StorageError{Op: "list items", Err: err}
	}
	defer cursor.Close(ctx)

	items := []models.Item{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, &models.StorageError{Op: "decode items", Err: err}
	}
	return items, nil
}

// RecentItems returns the newest classified items used as prompt context.
func (s *ItemService) RecentItems(ctx context.Context, userID string, limit int64) ([]models.Item, error) {
	return s.List(ctx, userID, ListFilter{Limit: limit})
}

// StatusUpdate carries a transition request plus optional user annotations.
type StatusUpdate struct {
	NewStatus string
	Feedback  string
	Notes     string
}

// UpdateStatus applies a status transition, enforcing the state machine and
// the timestamp invariants in one atomic conditional update:
//
//	pending  -> consumed | archived
//	consumed -> pending
//	archived -> pending
//
// Entering consumed sets consumedAt and clears archivedAt; entering archived
// does the reverse; re-entry to pending clears both. Direct skips between
// consumed and archived are rejected with models.ErrInvalidTransition.
// An empty NewStatus, or a NewStatus equal to the current one, applies
// feedback/notes only and leaves status and timestamps alone.
func (s *ItemService) UpdateStatus(ctx context.Context, id primitive.ObjectID, userID string, update StatusUpdate) (*models.Item, error) {
	if update.NewStatus == "" {
		// Feedback/notes without a transition, e.g. rating an item later.
		return s.annotate(ctx, id, userID, update)
	}

	allowedFrom := models.AllowedSourceStatuses(update.NewStatus)
	if len(allowedFrom) == 0 {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrInvalidTransition, update.NewStatus)
	}

	set, unset := transitionChange(update, time.Now().UTC())

	filter := bson.M{
		"_id":    id,
		"userId": userID,
		"status": bson.M{"$in": allowedFrom},
	}
	change := bson.M{"$set": set}
	if len(unset) > 0 {
		change["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var item models.Item
	err := s.collection.FindOneAndUpdate(ctx, filter, change, opts).Decode(&item)
	if err == nil {
		return &item, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &models.StorageError{Op: "update status", Err: err}
	}

	// Distinguish a missing item from an illegal transition. The extra read
	// races benignly with concurrent writers; the update itself was atomic.
	current, getErr := s.Get(ctx, id, userID)
	if getErr != nil {
		return nil, getErr
	}
	if current.Status == update.NewStatus {
		// Already there (e.g. decay archived it first, or a repeated
		// request). Not an error, and any feedback/notes still apply.
		return s.annotate(ctx, id, userID, update)
	}
	return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, current.Status, update.NewStatus)
}

// transitionChange builds the $set/$unset documents for a status transition.
// Entering consumed sets consumedAt and clears archivedAt; entering archived
// does the reverse; re-entry to pending clears both.
func transitionChange(update StatusUpdate, now time.Time) (bson.M, bson.M) {
	set := bson.M{"status": update.NewStatus}
	unset := bson.M{}

	switch update.NewStatus {
	case models.StatusConsumed:
		set["consumedAt"] = now
		unset["archivedAt"] = ""
	case models.StatusArchived:
		set["archivedAt"] = now
		unset["consumedAt"] = ""
	case models.StatusPending:
		unset["consumedAt"] = ""
		unset["archivedAt"] = ""
	}

	for k, v := range annotationSet(update) {
		set[k] = v
	}
	return set, unset
}

// annotationSet builds the $set document for the user-annotation fields.
func annotationSet(update StatusUpdate) bson.M {
	set := bson.M{}
	if update.Feedback != "" {
		set["consumptionFeedback"] = update.Feedback
	}
	if update.Notes != "" {
		set["notes"] = update.Notes
	}
	return set
}

// annotate applies feedback/notes without touching status or timestamps.
func (s *ItemService) annotate(ctx context.Context, id primitive.ObjectID, userID string, update StatusUpdate) (*models.Item, error) {
	set := annotationSet(update)
	if len(set) == 0 {
		return s.Get(ctx, id, userID)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var item models.Item
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id, "userId": userID}, bson.M{"$set": set}, opts).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, &models.StorageError{Op: "annotate item", Err: err}
	}
	return &item, nil
}

// Delete permanently removes an item. This is the only way a row disappears.
func (s *ItemService) Delete(ctx context.Context, id primitive.ObjectID, userID string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return &models.StorageError{Op: "delete item", Err: err}
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// GetConfig reads a per-user config value, falling back to def when the key
// was never written. Values are cached briefly in-process.
func (s *ItemService) GetConfig(ctx context.Context, userID, key, def string) string {
	cacheKey := userID + "\x00" + key
	if v, ok := s.configCache.Get(cacheKey); ok {
		return v.(string)
	}

	var entry models.ConfigEntry
	err := s.configCollection.FindOne(ctx, bson.M{"userId": userID, "key": key}).Decode(&entry)
	if err != nil {
		return def
	}

	s.configCache.SetDefault(cacheKey, entry.Value)
	return entry.Value
}

// SetConfig upserts a per-user config value. Entries are created lazily on
// first write.
func (s *ItemService) SetConfig(ctx context.Context, userID, key, value string) error {
	now := time.Now().UTC()
	filter := bson.M{"userId": userID, "key": key}
	update := bson.M{
		"$set": bson.M{"value": value, "updatedAt": now},
		"$setOnInsert": bson.M{
			"_id":    primitive.NewObjectID(),
			"userId": userID,
			"key":    key,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := s.configCollection.UpdateOne(ctx, filter, update, opts); err != nil {
		return &models.StorageError{Op: "set config", Err: err}
	}

	s.configCache.SetDefault(userID+"\x00"+key, value)
	return nil
}

// AllConfig returns every config entry for the user.
func (s *ItemService) AllConfig(ctx context.Context, userID string) (map[string]string, error) {
	cursor, err := s.configCollection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, &models.StorageError{Op: "list config", Err: err}
	}
	defer cursor.Close(ctx)

	var entries []models.ConfigEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, &models.StorageError{Op: "decode config", Err: err}
	}

	result := make(map[string]string, len(entries))
	for _, e := range entries {
		result[e.Key] = e.Value
	}
	return result, nil
}

// ActiveUserIDs returns distinct users that currently have pending items.
// Used by the decay and picks jobs to iterate users.
func (s *ItemService) ActiveUserIDs(ctx context.Context) ([]string, error) {
	raw, err := s.collection.Distinct(ctx, "userId", bson.M{"status": models.StatusPending})
	if err != nil {
		return nil, &models.StorageError{Op: "distinct users", Err: err}
	}

	userIDs := make([]string, 0, len(raw))
	for _, id := range raw {
		if userID, ok := id.(string); ok {
			userIDs = append(userIDs, userID)
		}
	}
	return userIDs, nil
}
