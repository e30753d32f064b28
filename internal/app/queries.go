package app

import (
	"context"
	"fmt"
	"time"

	"gamerental/internal/domain"
)

// QueryService serves the browsing views: cache-aside reads over the catalog
// client. The catalog service stays the source of truth; cached entries only
// shorten the path for repeat page visits.
type QueryService struct {
	catalog  domain.CatalogClient
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(c domain.CatalogClient, cache domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{catalog: c, cache: cache, cacheTTL: ttl}
}

func (s *QueryService) ListPlatforms(ctx context.Context) ([]domain.Platform, error) {
	key := "platforms:all"
	var out []domain.Platform
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	raw, err := s.catalog.ListPlatforms(ctx)
	if err != nil {
		return nil, err
	}
	out = make([]domain.Platform, 0, len(raw))
	for _, m := range raw {
		out = append(out, mapPlatform(m))
	}
	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

func (s *QueryService) GetPlatform(ctx context.Context, slug string) (domain.PlatformDetail, error) {
	key := "platform:" + slug
	var out domain.PlatformDetail
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	raw, err := s.catalog.GetPlatformBySlug(ctx, slug)
	if err != nil {
		return domain.PlatformDetail{}, err
	}
	out = mapPlatformDetail(raw)
	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

func (s *QueryService) ListGames(ctx context.Context, q domain.GamesQuery) ([]domain.Game, error) {
	key := "games:all"
	if q.PlatformID != nil {
		key = fmt.Sprintf("games:platform:%d", *q.PlatformID)
	}
	var out []domain.Game
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	raw, err := s.catalog.ListGames(ctx, q)
	if err != nil {
		return nil, err
	}
	out = make([]domain.Game, 0, len(raw))
	for _, m := range raw {
		out = append(out, mapGame(m))
	}
	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

func (s *QueryService) GetGame(ctx context.Context, slug string) (domain.Game, error) {
	key := "game:" + slug
	var out domain.Game
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	raw, err := s.catalog.GetGameBySlug(ctx, slug)
	if err != nil {
		return domain.Game{}, err
	}
	out = mapGame(raw)
	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

// ResolveGameID caches the slug->id lookup used by the reservation flow.
func (s *QueryService) ResolveGameID(ctx context.Context, slug string) (int64, error) {
	key := "gameid:" + slug
	var id int64
	if ok, _ := s.cache.Get(ctx, key, &id); ok && id != 0 {
		return id, nil
	}
	id, err := s.catalog.ResolveGameID(ctx, slug)
	if err != nil {
		return 0, err
	}
	_ = s.cache.Set(ctx, key, id, int(s.cacheTTL.Seconds()))
	return id, nil
}
