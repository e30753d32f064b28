package main

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"gamerental/internal/adapters/catalog"
	"gamerental/internal/adapters/observability"
	redisad "gamerental/internal/adapters/redis"
	"gamerental/internal/app"
	"gamerental/internal/shared"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.CatalogBase).
		Int("workers", cfg.WarmWorkers).
		Msg("cache warmer starting")

	client, err := catalog.New(cfg.CatalogBase, cfg.CatalogToken, cfg.CatalogRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize catalog client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	warm := app.NewWarmService(client, cache, cfg.CacheTTL)

	platformSlugs, err := warm.WarmPlatforms(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("warm platforms failed")
	}
	gameSlugs, err := warm.WarmGames(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("warm games failed")
	}

	type job struct {
		slug string
		run  func(context.Context, string) error
	}
	jobs := make([]job, 0, len(platformSlugs)+len(gameSlugs))
	for _, s := range platformSlugs {
		jobs = append(jobs, job{slug: s, run: warm.WarmPlatform})
	}
	for _, s := range gameSlugs {
		jobs = append(jobs, job{slug: s, run: warm.WarmGame})
	}

	sem := semaphore.NewWeighted(int64(cfg.WarmWorkers))
	var wg sync.WaitGroup

	for _, j := range jobs {
		j := j

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(int64(1))

			if err := j.run(ctx, j.slug); err != nil {
				log.Warn().Str("slug", j.slug).Err(err).Msg("warm failed")
				return
			}
			log.Info().Str("slug", j.slug).Msg("warm ok")
		}()
	}

	wg.Wait()
	log.Info().Msg("warming completed")
}
