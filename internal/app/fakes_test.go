package app_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"gamerental/internal/domain"
)

// ---- fakes ----

// fakeCatalog implements domain.CatalogClient in memory. Reservations are
// stateful so tests can exercise the check-then-act race: with
// enforceConflict set, Create rejects overlapping ranges the way a
// well-behaved service would.
type fakeCatalog struct {
	mu sync.Mutex

	platforms    []map[string]any
	games        []map[string]any
	reservations []map[string]any

	listErr   error
	createErr error

	enforceConflict bool

	overlapCalls int
	createCalls  int
	lastIdemKey  string
}

func (f *fakeCatalog) ListPlatforms(ctx context.Context) ([]map[string]any, error) {
	return f.platforms, f.listErr
}

func (f *fakeCatalog) GetPlatformBySlug(ctx context.Context, slug string) (map[string]any, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	for _, p := range f.platforms {
		if p["slug"] == slug {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCatalog) ListGames(ctx context.Context, q domain.GamesQuery) ([]map[string]any, error) {
	return f.games, f.listErr
}

func (f *fakeCatalog) GetGameBySlug(ctx context.Context, slug string) (map[string]any, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	for _, g := range f.games {
		if g["slug"] == slug {
			return g, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCatalog) ResolveGameID(ctx context.Context, slug string) (int64, error) {
	g, err := f.GetGameBySlug(ctx, slug)
	if err != nil {
		return 0, err
	}
	switch id := g["id"].(type) {
	case float64:
		return int64(id), nil
	case int64:
		return id, nil
	case int:
		return int64(id), nil
	}
	return 0, domain.ErrNotFound
}

func (f *fakeCatalog) ListReservationsOverlapping(ctx context.Context, gameID int64, r domain.DateRange) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overlapCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.matchingLocked(gameID, r), nil
}

func (f *fakeCatalog) matchingLocked(gameID int64, r domain.DateRange) []map[string]any {
	var out []map[string]any
	for _, m := range f.reservations {
		gid, _ := m["game"].(float64)
		if int64(gid) != gameID {
			continue
		}
		existing, err := domain.ParseDateRange(str(m["startDate"]), str(m["endDate"]))
		if err != nil {
			continue
		}
		if existing.Overlaps(r) {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeCatalog) CreateReservation(ctx context.Context, req domain.Reservation, idemKey string) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	f.lastIdemKey = idemKey
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.enforceConflict && len(f.matchingLocked(req.GameID, req.Dates)) > 0 {
		return nil, fmt.Errorf("%w: range already reserved", domain.ErrConflict)
	}
	rec := map[string]any{
		"id":            float64(len(f.reservations) + 1),
		"game":          float64(req.GameID),
		"startDate":     req.Dates.Start.Format(domain.DateLayout),
		"endDate":       req.Dates.End.Format(domain.DateLayout),
		"customerName":  req.Customer.Name,
		"customerEmail": req.Customer.Email,
		"customerPhone": req.Customer.Phone,
	}
	f.reservations = append(f.reservations, rec)
	return rec, nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

// fakeCache stores marshaled values so any read model round-trips.
type fakeCache struct {
	store map[string][]byte
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

func ptr[T any](v T) *T { return &v }
