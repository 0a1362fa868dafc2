package fat12

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input uint16
		want  time.Time
	}{
		{"zero day is invalid", 0x0000, time.Time{}},
		{"epoch 1980-01-01", 0x0021, time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-03-15", (44 << 9) | (3 << 5) | 15, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseDate(tt.input); !got.Equal(tt.want) {
				t.Errorf("parseDate(%#04x) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name  string
		input uint16
		want  time.Time
	}{
		{"midnight", 0x0000, time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"12:30:00", (12 << 11) | (30 << 5) | 0, time.Date(1, 1, 1, 12, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseTime(tt.input); !got.Equal(tt.want) {
				t.Errorf("parseTime(%#04x) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCombineDateTime(t *testing.T) {
	t.Run("zero date yields zero time regardless of clock", func(t *testing.T) {
		got := combineDateTime(0, 0xFFFF)
		if !got.IsZero() {
			t.Errorf("combineDateTime() = %v, want zero time", got)
		}
	})

	t.Run("merges date and time of day", func(t *testing.T) {
		date := uint16((44 << 9) | (3 << 5) | 15)
		clock := uint16((12 << 11) | (30 << 5) | 0)
		got := combineDateTime(date, clock)
		want := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("combineDateTime() = %v, want %v", got, want)
		}
	})
}
