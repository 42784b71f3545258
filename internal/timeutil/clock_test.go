package timeutil

import (
	"testing"
	"time"
)

func TestSystemClockNow(t *testing.T) {
	before := time.Now()
	now := SystemClock{}.Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Errorf("Now() = %v, expected between %v and %v", now, before, after)
	}
}

func TestFixedClock(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := NewFixedClock(start)

	if got := clock.Now(); !got.Equal(start) {
		t.Fatalf("Now() = %v, want %v", got, start)
	}
	if got := clock.Now(); !got.Equal(start) {
		t.Errorf("second Now() = %v, clock should not move on its own", got)
	}

	clock.Advance(90 * time.Second)
	if got := clock.Now(); !got.Equal(start.Add(90 * time.Second)) {
		t.Errorf("Now() after Advance = %v", got)
	}
}

func TestElapsedRoundsToMillisecond(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := NewFixedClock(start)
	clock.Advance(1500*time.Millisecond + 400*time.Microsecond)

	if got := Elapsed(clock, start); got != 1500*time.Millisecond {
		t.Errorf("Elapsed() = %v, want 1.5s", got)
	}
}
