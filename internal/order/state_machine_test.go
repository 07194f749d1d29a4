package order

import (
	"testing"
	"time"
)

func TestCanTransitionAndApply(t *testing.T) {
	if !CanTransition(StatusPending, StatusConfirmed) {
		t.Fatalf("expected PENDING -> CONFIRMED allowed")
	}
	if !CanTransition(StatusActive, StatusCancelled) {
		t.Fatalf("expected ACTIVE -> CANCELLED allowed")
	}
	if CanTransition(StatusCompleted, StatusPending) {
		t.Fatalf("expected COMPLETED -> PENDING not allowed")
	}
	if CanTransition(StatusCancelled, StatusActive) {
		t.Fatalf("expected CANCELLED -> ACTIVE not allowed")
	}

	o := &Order{Status: StatusPending}
	now := time.Now()
	if err := ApplyTransition(o, StatusConfirmed, now); err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	if o.Status != StatusConfirmed {
		t.Fatalf("expected status CONFIRMED, got %s", o.Status)
	}
	if o.ConfirmedAt == nil {
		t.Fatalf("expected ConfirmedAt stamped")
	}

	if err := ApplyTransition(o, StatusCompleted, now); err == nil {
		t.Fatalf("expected invalid shortcut transition to fail")
	}
}

func TestParseStatus(t *testing.T) {
	if s, err := ParseStatus("completed"); err != nil || s != StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s err=%v", s, err)
	}
	if _, err := ParseStatus("shipped"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestRentalDays(t *testing.T) {
	day1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	day4 := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)

	days, err := RentalDays(day1, day4)
	if err != nil {
		t.Fatalf("RentalDays: %v", err)
	}
	if days != 3 {
		t.Fatalf("expected 3 days, got %d", days)
	}

	// 不足一天向上取整
	days, err = RentalDays(day1, day1.Add(25*time.Hour))
	if err != nil {
		t.Fatalf("RentalDays: %v", err)
	}
	if days != 2 {
		t.Fatalf("expected ceil to 2 days, got %d", days)
	}

	if _, err := RentalDays(day4, day1); err != ErrInvalidDateRange {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
	if _, err := RentalDays(day1, day1); err != ErrInvalidDateRange {
		t.Fatalf("expected ErrInvalidDateRange for equal dates, got %v", err)
	}
}
