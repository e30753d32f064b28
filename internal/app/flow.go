package app

import (
	"context"
	"errors"

	"gamerental/internal/domain"
)

// FlowPhase enumerates the reservation flow's states. The contact form is
// only enabled in AwaitingContact; how a UI surfaces that (inline form or
// modal) is presentation, not a different state.
type FlowPhase int

const (
	FlowIdle FlowPhase = iota
	FlowAwaitingDates
	FlowChecking
	FlowAvailable
	FlowUnavailable
	FlowAwaitingContact
	FlowSubmitting
	FlowConfirmed
	FlowFailed
)

var flowPhaseNames = map[FlowPhase]string{
	FlowIdle:            "idle",
	FlowAwaitingDates:   "awaiting_dates",
	FlowChecking:        "checking",
	FlowAvailable:       "available",
	FlowUnavailable:     "unavailable",
	FlowAwaitingContact: "awaiting_contact",
	FlowSubmitting:      "submitting",
	FlowConfirmed:       "confirmed",
	FlowFailed:          "failed",
}

func (p FlowPhase) String() string { return flowPhaseNames[p] }

// FlowState is the per-visit state object. It is exclusively owned by its
// caller and advanced by Flow's transition methods, which take a state and
// return the next one; there are no ambient globals. Nothing here survives
// the visit.
type FlowState struct {
	Phase        FlowPhase
	GameID       int64
	Dates        domain.DateRange
	Availability *domain.Availability
	Reservation  *domain.Reservation
	// Message is user-visible text for the current phase; failures land here
	// instead of propagating as faults. Err keeps the typed cause for callers
	// that need to distinguish validation from conflict from transport.
	Message string
	Err     error
}

// Flow orchestrates check -> confirmation -> submit. One request is in
// flight per user action: Verify and Submit each perform a single call and
// settle the state before returning.
type Flow struct {
	checker   *AvailabilityChecker
	submitter *ReservationSubmitter
}

func NewFlow(checker *AvailabilityChecker, submitter *ReservationSubmitter) *Flow {
	return &Flow{checker: checker, submitter: submitter}
}

// Begin starts a flow for a resolved game. Initial state: Idle.
func (f *Flow) Begin(gameID int64) FlowState {
	return FlowState{Phase: FlowIdle, GameID: gameID}
}

// SetDates records the candidate range. Malformed input keeps the current
// phase and surfaces a message instead of advancing.
func (f *Flow) SetDates(st FlowState, start, end string) FlowState {
	r, err := domain.ParseDateRange(start, end)
	if err != nil {
		st.Message = userMessage(err)
		st.Err = err
		return st
	}
	st.Dates = r
	st.Phase = FlowAwaitingDates
	st.Message = ""
	st.Err = nil
	return st
}

// Verify runs the availability check. Allowed from AwaitingDates, and again
// from Unavailable or Failed (explicit user retry re-enters Checking).
func (f *Flow) Verify(ctx context.Context, st FlowState) FlowState {
	switch st.Phase {
	case FlowAwaitingDates, FlowUnavailable, FlowFailed:
	case FlowIdle:
		st.Message = "select both dates first"
		return st
	default:
		return st // no concurrent action for this interaction
	}

	st.Phase = FlowChecking
	st.Message = ""
	st.Err = nil

	av, err := f.checker.Check(ctx, st.GameID, st.Dates)
	if err != nil {
		st.Phase = FlowFailed
		st.Message = userMessage(err)
		st.Err = err
		return st
	}

	st.Availability = &av
	if !av.Available {
		st.Phase = FlowUnavailable
		st.Message = "not available for those dates"
		return st
	}

	// Available auto-advances: the contact form becomes the next gate.
	st.Phase = FlowAwaitingContact
	return st
}

// Submit sends the reservation. Allowed from AwaitingContact, and again from
// Failed so the user can retry without re-entering dates.
func (f *Flow) Submit(ctx context.Context, st FlowState, c domain.ContactInfo) FlowState {
	switch st.Phase {
	case FlowAwaitingContact, FlowFailed:
	default:
		st.Message = "verify availability first"
		return st
	}
	if st.Availability == nil || !st.Availability.Available {
		st.Phase = FlowFailed
		st.Message = "verify availability first"
		return st
	}

	st.Phase = FlowSubmitting
	st.Message = ""
	st.Err = nil

	created, err := f.submitter.Submit(ctx, st.GameID, st.Dates, c)
	if err != nil {
		// Validation and conflicts do not advance the state; the user may fix
		// the form or pick new dates and retry.
		st.Phase = FlowFailed
		st.Message = userMessage(err)
		st.Err = err
		return st
	}

	st.Phase = FlowConfirmed
	st.Reservation = &created
	st.Message = "reservation created"
	return st
}

// Cancel abandons the interaction from any state.
func (f *Flow) Cancel(st FlowState) FlowState {
	return f.Begin(st.GameID)
}

// Reset is the Confirmed -> Idle loop for a new booking; transient fields
// (dates, availability, reservation) are cleared.
func (f *Flow) Reset(st FlowState) FlowState {
	return f.Begin(st.GameID)
}

// userMessage converts component errors to user-visible text. Nothing from
// the flow propagates as an unhandled fault.
func userMessage(err error) string {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrInvalidRange):
		return "end date cannot be before start date"
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, domain.ErrConflict):
		return "those dates were just taken, pick another range"
	case errors.Is(err, domain.ErrNotFound):
		return "game not found"
	default:
		return "service unavailable, try again"
	}
}
