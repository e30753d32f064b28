package app

import (
	"context"
	"errors"
	"time"

	"gamerental/internal/domain"
)

// WarmService pre-populates the cache with catalog content so first page
// visits don't pay the upstream round trip. The catalog remains the source
// of truth; warming only refreshes snapshots, it never writes upstream.
type WarmService struct {
	catalog  domain.CatalogClient
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewWarmService(c domain.CatalogClient, cache domain.Cache, ttl time.Duration) *WarmService {
	return &WarmService{catalog: c, cache: cache, cacheTTL: ttl}
}

// WarmPlatforms refreshes the platform list and returns the slugs found, so
// the caller can fan out per-platform warming.
func (s *WarmService) WarmPlatforms(ctx context.Context) ([]string, error) {
	raw, err := s.catalog.ListPlatforms(ctx)
	if err != nil {
		return nil, err
	}
	platforms := make([]domain.Platform, 0, len(raw))
	slugs := make([]string, 0, len(raw))
	for _, m := range raw {
		p := mapPlatform(m)
		platforms = append(platforms, p)
		if p.Slug != "" {
			slugs = append(slugs, p.Slug)
		}
	}
	_ = s.cache.Set(ctx, "platforms:all", platforms, int(s.cacheTTL.Seconds()))
	return slugs, nil
}

// WarmGames refreshes the unfiltered game list and returns the slugs found.
func (s *WarmService) WarmGames(ctx context.Context) ([]string, error) {
	raw, err := s.catalog.ListGames(ctx, domain.GamesQuery{})
	if err != nil {
		return nil, err
	}
	games := make([]domain.Game, 0, len(raw))
	slugs := make([]string, 0, len(raw))
	for _, m := range raw {
		g := mapGame(m)
		games = append(games, g)
		if g.Slug != "" {
			slugs = append(slugs, g.Slug)
		}
	}
	_ = s.cache.Set(ctx, "games:all", games, int(s.cacheTTL.Seconds()))
	return slugs, nil
}

// WarmGame refreshes one game detail plus its slug->id entry. A game that
// disappeared upstream evicts its stale entries and reports no error.
func (s *WarmService) WarmGame(ctx context.Context, slug string) error {
	raw, err := s.catalog.GetGameBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = s.cache.Del(ctx, "game:"+slug)
			_ = s.cache.Del(ctx, "gameid:"+slug)
			return nil
		}
		return err
	}
	g := mapGame(raw)
	_ = s.cache.Set(ctx, "game:"+slug, g, int(s.cacheTTL.Seconds()))
	if g.ID != 0 {
		_ = s.cache.Set(ctx, "gameid:"+slug, g.ID, int(s.cacheTTL.Seconds()))
	}
	return nil
}

// WarmPlatform refreshes one platform detail page.
func (s *WarmService) WarmPlatform(ctx context.Context, slug string) error {
	raw, err := s.catalog.GetPlatformBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = s.cache.Del(ctx, "platform:"+slug)
			return nil
		}
		return err
	}
	_ = s.cache.Set(ctx, "platform:"+slug, mapPlatformDetail(raw), int(s.cacheTTL.Seconds()))
	return nil
}
