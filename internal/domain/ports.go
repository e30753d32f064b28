package domain

import "context"

// CatalogClient is the read/write surface of the remote catalog service.
// Payloads come back loosely typed; the app-layer mappers own normalization.
type CatalogClient interface {
	ListPlatforms(ctx context.Context) ([]map[string]any, error)
	GetPlatformBySlug(ctx context.Context, slug string) (map[string]any, error)
	ListGames(ctx context.Context, q GamesQuery) ([]map[string]any, error)
	GetGameBySlug(ctx context.Context, slug string) (map[string]any, error)
	ResolveGameID(ctx context.Context, slug string) (int64, error)

	// ListReservationsOverlapping returns reservations for the game whose
	// inclusive ranges intersect r.
	ListReservationsOverlapping(ctx context.Context, gameID int64, r DateRange) ([]map[string]any, error)

	// CreateReservation posts one creation request. idemKey travels as an
	// Idempotency-Key header; the service may or may not honor it.
	CreateReservation(ctx context.Context, req Reservation, idemKey string) (map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
