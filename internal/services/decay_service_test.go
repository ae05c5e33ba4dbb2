package services

import (
	"testing"
	"time"
)

func TestCutoff(t *testing.T) {
	now := time.Date(2025, 6, 15, 2, 0, 0, 0, time.UTC)

	tests := []struct {
		decayDays int
		want      time.Time
	}{
		{30, time.Date(2025, 5, 16, 2, 0, 0, 0, time.UTC)},
		{1, time.Date(2025, 6, 14, 2, 0, 0, 0, time.UTC)},
		{90, time.Date(2025, 3, 17, 2, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		if got := Cutoff(now, tt.decayDays); !got.Equal(tt.want) {
			t.Errorf("Cutoff(%d days) = %s, want %s", tt.decayDays, got, tt.want)
		}
	}
}

func TestCutoff_BoundaryItemSurvives(t *testing.T) {
	// An item created exactly at the cutoff instant is not strictly older
	// than it, so a $lt filter keeps it pending one more day.
	now := time.Date(2025, 6, 15, 2, 0, 0, 0, time.UTC)
	cutoff := Cutoff(now, 30)

	createdAtCutoff := time.Date(2025, 5, 16, 2, 0, 0, 0, time.UTC)
	if createdAtCutoff.Before(cutoff) {
		t.Error("Item created exactly at the cutoff must not decay yet")
	}

	createdJustBefore := createdAtCutoff.Add(-time.Second)
	if !createdJustBefore.Before(cutoff) {
		t.Error("Item created before the cutoff must decay")
	}
}
