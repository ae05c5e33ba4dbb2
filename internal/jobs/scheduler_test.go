package jobs

import (
	"testing"
	"time"
)

func TestPicksDue(t *testing.T) {
	at := func(hour, minute int) time.Time {
		return time.Date(2026, 8, 30, hour, minute, 17, 0, time.UTC)
	}

	tests := []struct {
		name       string
		configured string
		fallback   string
		now        time.Time
		want       bool
	}{
		{"configured time matches", "07:30", "08:00", at(7, 30), true},
		{"configured time not yet", "07:30", "08:00", at(8, 0), false},
		{"bad configured falls back", "not-a-time", "08:00", at(8, 0), true},
		{"bad configured fallback not due", "not-a-time", "08:00", at(7, 30), false},
		{"empty configured falls back", "", "08:00", at(8, 0), true},
		{"both invalid never due", "bogus", "also-bogus", at(8, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := picksDue(tt.configured, tt.fallback, tt.now); got != tt.want {
				t.Errorf("picksDue(%q, %q, %s) = %v, want %v",
					tt.configured, tt.fallback, tt.now.Format("15:04"), got, tt.want)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"08:00", 480, false},
		{"23:59", 1439, false},
		{"9:05", 545, false},
		{"24:00", 0, true},
		{"08:60", 0, true},
		{"08", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := parseClock(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseClock(%q) expected error, got %d", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseClock(%q) failed: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseClock(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestTimeToCron(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"08:00", "0 8 * * *", false},
		{"00:00", "0 0 * * *", false},
		{"23:59", "59 23 * * *", false},
		{"9:30", "30 9 * * *", false},
		{"24:00", "", true},
		{"08:60", "", true},
		{"08", "", true},
		{"abc", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := timeToCron(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("timeToCron(%q) expected error, got %q", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("timeToCron(%q) failed: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("timeToCron(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
