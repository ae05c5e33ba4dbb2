package config

import (
	"testing"

	"thoughtcap/internal/models"
)

func TestUserDefaults(t *testing.T) {
	cfg := &Config{
		DailyPicksTime:   "08:00",
		DecayDays:        30,
		PicksTargetCount: 4,
		PicksMaxMinutes:  180,
	}

	defaults := cfg.UserDefaults()

	want := map[string]string{
		models.ConfigKeyDecayDays:           "30",
		models.ConfigKeyDailyPicksTime:      "08:00",
		models.ConfigKeyPicksTargetCount:    "4",
		models.ConfigKeyPicksMaxMinutes:     "180",
		models.ConfigKeyNotificationEnabled: "true",
		models.ConfigKeyUserBackground:      "",
		models.ConfigKeyClassifyPrompt:      "",
	}

	for key, wantValue := range want {
		got, ok := defaults[key]
		if !ok {
			t.Errorf("UserDefaults() missing key %q", key)
			continue
		}
		if got != wantValue {
			t.Errorf("UserDefaults()[%q] = %q, want %q", key, got, wantValue)
		}
	}
	if len(defaults) != len(want) {
		t.Errorf("UserDefaults() has %d keys, want %d", len(defaults), len(want))
	}
}
