package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ItemType constants. Anything the classifier cannot place lands in "other".
const (
	ItemTypeFilm    = "film"
	ItemTypeBook    = "book"
	ItemTypeConcept = "concept"
	ItemTypeMusic   = "music"
	ItemTypeArt     = "art"
	ItemTypeTodo    = "todo"
	ItemTypeOther   = "other"
)

// ValidItemTypes lists every accepted item type.
var ValidItemTypes = []string{
	ItemTypeFilm, ItemTypeBook, ItemTypeConcept, ItemTypeMusic,
	ItemTypeArt, ItemTypeTodo, ItemTypeOther,
}

// IsValidItemType reports whether t is a recognized item type.
func IsValidItemType(t string) bool {
	for _, v := range ValidItemTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Item status constants
const (
	StatusPending  = "pending"
	StatusConsumed = "consumed"
	StatusArchived = "archived"
)

// Consumption feedback constants
const (
	FeedbackLoved        = "loved"
	FeedbackMeh          = "meh"
	FeedbackDisappointed = "disappointed"
)

// LinkInfo is a single enrichment link. Insertion order is relevance order.
type LinkInfo struct {
	URL  string `bson:"url" json:"url"`
	Type string `bson:"type" json:"type"` // imdb, spotify, wikipedia, article, ...
}

// Enrichment is the structured payload attached during classification.
type Enrichment struct {
	Links                 []LinkInfo `bson:"links" json:"links"`
	ConsumptionSuggestion string     `bson:"consumptionSuggestion,omitempty" json:"consumption_suggestion,omitempty"`
}

// Item represents a single captured thought.
type Item struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          string             `bson:"userId" json:"user_id"`
	SourceMessageID string             `bson:"sourceMessageId,omitempty" json:"source_message_id,omitempty"` // inbound message correlation id

	// Original input, preserved even after re-classification
	VerbatimInput string `bson:"verbatimInput" json:"verbatim_input"`

	// Classification
	ItemType    string `bson:"itemType" json:"item_type"`
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description" json:"description"`

	Enrichment Enrichment `bson:"enrichment" json:"enrichment"`

	Priority         int      `bson:"priority" json:"priority"`                 // 1-5, ranking signal only
	EstimatedMinutes int      `bson:"estimatedMinutes" json:"estimated_minutes"`
	Tags             []string `bson:"tags,omitempty" json:"tags"`

	// Set when the LLM chain was exhausted and the item was stored degraded
	EnrichmentFailed bool `bson:"enrichmentFailed,omitempty" json:"enrichment_failed,omitempty"`

	Status string `bson:"status" json:"status"`

	CreatedAt  time.Time  `bson:"createdAt" json:"created_at"`
	ConsumedAt *time.Time `bson:"consumedAt,omitempty" json:"consumed_at,omitempty"`
	ArchivedAt *time.Time `bson:"archivedAt,omitempty" json:"archived_at,omitempty"`

	// User annotations
	ConsumptionFeedback string `bson:"consumptionFeedback,omitempty" json:"consumption_feedback,omitempty"`
	Notes               string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// AgeDays returns full days elapsed since the item was captured.
func (i *Item) AgeDays(now time.Time) int {
	return int(now.Sub(i.CreatedAt).Hours() / 24)
}

// allowedTransitions maps a target status to the statuses it may come from.
// Restores from consumed/archived go through pending; skipping directly
// between the two terminal-ish states is rejected.
var allowedTransitions = map[string][]string{
	StatusPending:  {StatusConsumed, StatusArchived},
	StatusConsumed: {StatusPending},
	StatusArchived: {StatusPending},
}

// AllowedSourceStatuses returns which current statuses may transition into
// newStatus. An empty slice means newStatus is not a valid status at all.
func AllowedSourceStatuses(newStatus string) []string {
	return allowedTransitions[newStatus]
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to string) bool {
	for _, s := range allowedTransitions[to] {
		if s == from {
			return true
		}
	}
	return false
}

// DefaultEstimatedMinutes returns the per-type heuristic used when the
// classifier does not provide a time estimate.
func DefaultEstimatedMinutes(itemType string) int {
	switch itemType {
	case ItemTypeFilm:
		return 120
	case ItemTypeBook:
		return 300
	case ItemTypeMusic:
		return 45
	case ItemTypeArt:
		return 30
	case ItemTypeConcept:
		return 20
	case ItemTypeTodo:
		return 15
	default:
		return 15
	}
}
