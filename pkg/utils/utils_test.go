package utils

import (
	"testing"
	"time"
)

func TestFormatRoundedUnit(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{seconds: 0, want: "0s"},
		{seconds: 59, want: "59s"},
		{seconds: 60, want: "1m"},
		{seconds: 150, want: "2m"},
		{seconds: 3599, want: "59m"},
		{seconds: 3600, want: "1h"},
		{seconds: 7300, want: "2h"},
		{seconds: -45, want: "45s"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatRoundedUnit(tt.seconds); got != tt.want {
				t.Errorf("FormatRoundedUnit(%d) = %s, want %s", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestFormatSince(t *testing.T) {
	now := time.Unix(1300, 0)

	if got := FormatSince(1000, now); got != "5m" {
		t.Errorf("FormatSince(1000) = %s, want 5m", got)
	}
	if got := FormatSince(2000, now); got != "0s" {
		t.Errorf("FormatSince(2000) = %s, want 0s", got)
	}
}
