package domain

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for rental dates. Ranges are inclusive on
// both ends: a reservation from 2026-01-10 to 2026-01-10 occupies one day.
const DateLayout = "2006-01-02"

type DateRange struct {
	Start time.Time `json:"startDate"`
	End   time.Time `json:"endDate"`
}

// ParseDateRange builds a range from two YYYY-MM-DD strings. An empty or
// malformed date, or start after end, yields ErrInvalidRange.
func ParseDateRange(start, end string) (DateRange, error) {
	if start == "" || end == "" {
		return DateRange{}, fmt.Errorf("%w: both dates are required", ErrInvalidRange)
	}
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: bad start date %q", ErrInvalidRange, start)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: bad end date %q", ErrInvalidRange, end)
	}
	r := DateRange{Start: s, End: e}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("%w: both dates are required", ErrInvalidRange)
	}
	if r.Start.After(r.End) {
		return fmt.Errorf("%w: start %s after end %s", ErrInvalidRange,
			r.Start.Format(DateLayout), r.End.Format(DateLayout))
	}
	return nil
}

// Overlaps reports whether two inclusive ranges intersect:
// existing.start <= candidate.end AND existing.end >= candidate.start.
func (r DateRange) Overlaps(other DateRange) bool {
	return !r.Start.After(other.End) && !r.End.Before(other.Start)
}

// ContactInfo is the customer portion of a reservation request. Phone is
// exactly ten digits; the submitter rejects anything else before dispatch.
type ContactInfo struct {
	Name  string `json:"customerName" validate:"required"`
	Email string `json:"customerEmail" validate:"required,email"`
	Phone string `json:"customerPhone" validate:"required,len=10,numeric"`
}

// Reservation is a rental record as held by the catalog service. Once
// created it is owned upstream; this service only reads them back for
// conflict checks.
type Reservation struct {
	ID       int64       `json:"id,omitempty"`
	GameID   int64       `json:"game"`
	Dates    DateRange   `json:"dates"`
	Customer ContactInfo `json:"customer"`
}

// Availability is the outcome of one conflict check. A transport failure is
// NOT an Availability; it surfaces as an error so callers can never confuse
// "unknown" with "taken".
type Availability struct {
	GameID    int64         `json:"gameId"`
	Dates     DateRange     `json:"dates"`
	Available bool          `json:"available"`
	Conflicts []Reservation `json:"-"`
}
