package scheduler

import (
	"testing"
	"time"
)

func TestNextRunSameDay(t *testing.T) {
	s, err := New(nil, "18:30", "UTC", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	next := s.NextRun(now)
	want := time.Date(2024, 3, 5, 18, 30, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("NextRun = %v, want %v", next, want)
	}
}

func TestNextRunRollsToTomorrow(t *testing.T) {
	s, err := New(nil, "18:30", "UTC", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// exactly at the trigger time: next run is tomorrow, never "now"
	now := time.Date(2024, 3, 5, 18, 30, 0, 0, time.UTC)
	next := s.NextRun(now)
	want := time.Date(2024, 3, 6, 18, 30, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("NextRun = %v, want %v", next, want)
	}
}

func TestNextRunHonorsTimezone(t *testing.T) {
	s, err := New(nil, "09:00", "Asia/Shanghai", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// 00:00 UTC = 08:00 in Shanghai, so the 09:00 run is an hour away
	now := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	next := s.NextRun(now)
	if got := next.Sub(now); got != time.Hour {
		t.Fatalf("wait = %v, want 1h", got)
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New(nil, "25:99", "UTC", nil); err == nil {
		t.Fatal("expected error for invalid run_at")
	}
	if _, err := New(nil, "09:00", "Not/AZone", nil); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}
