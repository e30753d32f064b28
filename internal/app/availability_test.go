package app_test

import (
	"context"
	"errors"
	"testing"

	"gamerental/internal/app"
	"gamerental/internal/domain"
)

func existingReservation(gameID int64, start, end string) map[string]any {
	return map[string]any{
		"id":        1.0,
		"game":      float64(gameID),
		"startDate": start,
		"endDate":   end,
	}
}

func TestCheck_OverlapIsUnavailable(t *testing.T) {
	fc := &fakeCatalog{reservations: []map[string]any{
		existingReservation(42, "2026-01-10", "2026-01-15"),
	}}
	chk := app.NewAvailabilityChecker(fc)

	r, _ := domain.ParseDateRange("2026-01-12", "2026-01-20")
	av, err := chk.Check(context.Background(), 42, r)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if av.Available {
		t.Fatal("expected unavailable for overlapping range")
	}
	if len(av.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(av.Conflicts))
	}
}

func TestCheck_AdjacentRangeIsAvailable(t *testing.T) {
	fc := &fakeCatalog{reservations: []map[string]any{
		existingReservation(42, "2026-01-10", "2026-01-15"),
	}}
	chk := app.NewAvailabilityChecker(fc)

	r, _ := domain.ParseDateRange("2026-01-16", "2026-01-20")
	av, err := chk.Check(context.Background(), 42, r)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !av.Available {
		t.Fatal("expected available: candidate starts the day after the existing range ends")
	}
}

func TestCheck_OtherGamesReservationsDoNotConflict(t *testing.T) {
	fc := &fakeCatalog{reservations: []map[string]any{
		existingReservation(7, "2026-01-10", "2026-01-15"),
	}}
	chk := app.NewAvailabilityChecker(fc)

	r, _ := domain.ParseDateRange("2026-01-12", "2026-01-14")
	av, err := chk.Check(context.Background(), 42, r)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !av.Available {
		t.Fatal("expected available: only another game is reserved")
	}
}

func TestCheck_InvalidRangeNeverHitsNetwork(t *testing.T) {
	fc := &fakeCatalog{}
	chk := app.NewAvailabilityChecker(fc)

	_, err := chk.Check(context.Background(), 42, domain.DateRange{})
	if !errors.Is(err, domain.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}

	r, _ := domain.ParseDateRange("2026-01-10", "2026-01-15")
	inverted := domain.DateRange{Start: r.End, End: r.Start}
	if _, err := chk.Check(context.Background(), 42, inverted); !errors.Is(err, domain.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}

	if fc.overlapCalls != 0 {
		t.Fatalf("expected no catalog calls, got %d", fc.overlapCalls)
	}
}

func TestCheck_MissingGameID(t *testing.T) {
	fc := &fakeCatalog{}
	chk := app.NewAvailabilityChecker(fc)

	r, _ := domain.ParseDateRange("2026-01-10", "2026-01-15")
	_, err := chk.Check(context.Background(), 0, r)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if fc.overlapCalls != 0 {
		t.Fatal("expected no catalog call for missing game id")
	}
}

func TestCheck_TransportFailureIsNotUnavailable(t *testing.T) {
	fc := &fakeCatalog{listErr: errors.New("connection refused")}
	chk := app.NewAvailabilityChecker(fc)

	r, _ := domain.ParseDateRange("2026-01-10", "2026-01-15")
	_, err := chk.Check(context.Background(), 42, r)

	var terr *domain.TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestCheck_Idempotent(t *testing.T) {
	fc := &fakeCatalog{reservations: []map[string]any{
		existingReservation(42, "2026-01-10", "2026-01-15"),
	}}
	chk := app.NewAvailabilityChecker(fc)

	r, _ := domain.ParseDateRange("2026-01-12", "2026-01-20")
	first, err := chk.Check(context.Background(), 42, r)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	second, err := chk.Check(context.Background(), 42, r)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if first.Available != second.Available || len(first.Conflicts) != len(second.Conflicts) {
		t.Fatalf("repeat check diverged: %+v vs %+v", first, second)
	}
	if fc.overlapCalls != 2 {
		t.Fatalf("expected 2 catalog calls, got %d", fc.overlapCalls)
	}
}
