package app

import (
	"context"

	"gamerental/internal/domain"
)

// AvailabilityChecker answers "is this game free for these dates". It is a
// pure read: idempotent, safely repeatable, no side effects beyond the query.
type AvailabilityChecker struct {
	catalog domain.CatalogClient
}

func NewAvailabilityChecker(c domain.CatalogClient) *AvailabilityChecker {
	return &AvailabilityChecker{catalog: c}
}

// Check validates locally first; a bad range never reaches the network.
// A transport failure returns an error, never a false "unavailable" — callers
// must treat it as unknown.
func (c *AvailabilityChecker) Check(ctx context.Context, gameID int64, r domain.DateRange) (domain.Availability, error) {
	if gameID <= 0 {
		return domain.Availability{}, &domain.ValidationError{Fields: []string{"game"}}
	}
	if err := r.Validate(); err != nil {
		return domain.Availability{}, err
	}

	raw, err := c.catalog.ListReservationsOverlapping(ctx, gameID, r)
	if err != nil {
		return domain.Availability{}, &domain.TransportError{Op: "check availability", Err: err}
	}

	conflicts := mapReservations(raw)
	return domain.Availability{
		GameID:    gameID,
		Dates:     r,
		Available: len(conflicts) == 0,
		Conflicts: conflicts,
	}, nil
}
