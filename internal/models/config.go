package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Recognized per-user config keys. Absence of a key means the compiled-in
// default applies; entries are created lazily on first write.
const (
	ConfigKeyUserBackground      = "user_background"
	ConfigKeyClassifyPrompt      = "classify_prompt"
	ConfigKeyDecayDays           = "decay_days"
	ConfigKeyDailyPicksTime      = "daily_picks_time"
	ConfigKeyPicksTargetCount    = "daily_picks_target_count"
	ConfigKeyPicksMaxMinutes     = "daily_picks_max_minutes"
	ConfigKeyNotificationEnabled = "notification_enabled"
)

// ConfigEntry is a per-user key/value setting. Keys are unique per user.
type ConfigEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID    string             `bson:"userId" json:"user_id"`
	Key       string             `bson:"key" json:"key"`
	Value     string             `bson:"value" json:"value"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updated_at"`
}
