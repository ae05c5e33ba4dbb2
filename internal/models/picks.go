package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DailyPick is one selected item within a day's picks.
type DailyPick struct {
	ItemID primitive.ObjectID `bson:"itemId" json:"item_id"`
	Reason string             `bson:"reason,omitempty" json:"reason,omitempty"`
}

// DailyPicks is a regenerable derived view cached per (userId, date). It is
// never canonical state: the selection can always be recomputed from pending
// items, and regeneration simply overwrites the cached document.
type DailyPicks struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID                string             `bson:"userId" json:"user_id"`
	Date                  string             `bson:"date" json:"date"` // YYYY-MM-DD
	Picks                 []DailyPick        `bson:"picks" json:"picks"`
	TotalEstimatedMinutes int                `bson:"totalEstimatedMinutes" json:"total_estimated_minutes"`
	Message               string             `bson:"message,omitempty" json:"message,omitempty"`
	GeneratedAt           time.Time          `bson:"generatedAt" json:"generated_at"`
}

// Stats is the read model produced by the stats aggregator.
type Stats struct {
	TotalCaptured   int64   `json:"total_captured"`
	TotalConsumed   int64   `json:"total_consumed"`
	Pending         int64   `json:"pending"`
	Archived        int64   `json:"archived"`
	StreakDays      int     `json:"streak_days"`
	ConsumptionRate float64 `json:"consumption_rate"` // percentage
}

// WindowStats holds capture/consumption counts over a trailing window.
type WindowStats struct {
	Captured int64 `json:"captured"`
	Consumed int64 `json:"consumed"`
}

// Digest is the weekly digest payload consumed by the external email sink.
type Digest struct {
	UserID        string      `json:"user_id"`
	From          string      `json:"from"` // YYYY-MM-DD
	To            string      `json:"to"`
	Window        WindowStats `json:"window"`
	StreakDays    int         `json:"streak_days"`
	ConsumedItems []Item      `json:"consumed_items"`
	Suggestions   []Item      `json:"suggestions"` // oldest pending, picks-style
}
