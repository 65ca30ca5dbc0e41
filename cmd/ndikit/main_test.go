package main

import (
	"testing"
	"time"
)

func TestBeaconIntervalClamped(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n, d int
		want time.Duration
	}{
		{30, 1, time.Second / 30},
		{60000, 1001, 1001 * time.Second / 60000},
		{1 << 31, 1, time.Millisecond}, // would truncate to zero unclamped
	}
	for _, tt := range tests {
		if got := beaconInterval(tt.n, tt.d); got != tt.want {
			t.Fatalf("beaconInterval(%d, %d) = %v, want %v", tt.n, tt.d, got, tt.want)
		}
	}
}
