package handlers

import (
	"testing"

	"thoughtcap/internal/models"
)

func TestValidateConfigValue(t *testing.T) {
	tests := []struct {
		key   string
		value string
		valid bool
	}{
		{models.ConfigKeyDecayDays, "30", true},
		{models.ConfigKeyDecayDays, "0", false},
		{models.ConfigKeyDecayDays, "-5", false},
		{models.ConfigKeyDecayDays, "trenta", false},
		{models.ConfigKeyDailyPicksTime, "08:00", true},
		{models.ConfigKeyDailyPicksTime, "23:59", true},
		{models.ConfigKeyDailyPicksTime, "25:00", false},
		{models.ConfigKeyDailyPicksTime, "8am", false},
		{models.ConfigKeyPicksTargetCount, "4", true},
		{models.ConfigKeyPicksTargetCount, "zero", false},
		{models.ConfigKeyPicksMaxMinutes, "180", true},
		{models.ConfigKeyNotificationEnabled, "true", true},
		{models.ConfigKeyNotificationEnabled, "false", true},
		{models.ConfigKeyNotificationEnabled, "yes", false},
		{models.ConfigKeyUserBackground, "qualsiasi testo libero", true},
		{models.ConfigKeyClassifyPrompt, "{verbatim_input}", true},
	}

	for _, tt := range tests {
		msg := validateConfigValue(tt.key, tt.value)
		if tt.valid && msg != "" {
			t.Errorf("validateConfigValue(%q, %q) rejected valid value: %s", tt.key, tt.value, msg)
		}
		if !tt.valid && msg == "" {
			t.Errorf("validateConfigValue(%q, %q) accepted invalid value", tt.key, tt.value)
		}
	}
}
