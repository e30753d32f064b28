package app

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"gamerental/internal/domain"
)

// ReservationSubmitter creates reservations at the catalog service. All local
// validation runs before any network call; on the success path exactly one
// creation request is sent.
type ReservationSubmitter struct {
	catalog  domain.CatalogClient
	validate *validator.Validate
}

func NewReservationSubmitter(c domain.CatalogClient) *ReservationSubmitter {
	return &ReservationSubmitter{catalog: c, validate: validator.New()}
}

// wire names for ContactInfo struct fields, for validation error reporting
var contactFieldNames = map[string]string{
	"Name":  "customerName",
	"Email": "customerEmail",
	"Phone": "customerPhone",
}

// Submit posts one reservation. The availability check and this call are two
// independent requests with a race window between them; a conflict the
// service detects in that window comes back as ErrConflict, never as success.
//
// Each call carries a fresh uuid Idempotency-Key. The catalog service may
// ignore it today; when it honors one, retrying a failed submit should reuse
// the returned request rather than calling Submit again.
func (s *ReservationSubmitter) Submit(ctx context.Context, gameID int64, r domain.DateRange, c domain.ContactInfo) (domain.Reservation, error) {
	if gameID <= 0 {
		return domain.Reservation{}, &domain.ValidationError{Fields: []string{"game"}}
	}
	if err := r.Validate(); err != nil {
		return domain.Reservation{}, err
	}
	if err := s.validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				name := contactFieldNames[fe.StructField()]
				if name == "" {
					name = fe.StructField()
				}
				fields = append(fields, name)
			}
			return domain.Reservation{}, &domain.ValidationError{Fields: fields}
		}
		return domain.Reservation{}, err
	}

	req := domain.Reservation{GameID: gameID, Dates: r, Customer: c}
	out, err := s.catalog.CreateReservation(ctx, req, uuid.NewString())
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.Reservation{}, err
		}
		return domain.Reservation{}, &domain.TransportError{Op: "create reservation", Err: err}
	}

	created := mapReservation(out)
	// Sparse echoes happen; keep the request values for anything the service
	// left out.
	if created.GameID == 0 {
		created.GameID = gameID
	}
	if created.Dates.Start.IsZero() {
		created.Dates = r
	}
	if created.Customer.Name == "" {
		created.Customer = c
	}
	return created, nil
}
