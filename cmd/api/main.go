package main

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"gamerental/internal/adapters/catalog"
	server "gamerental/internal/adapters/http_server"
	"gamerental/internal/adapters/observability"
	redisad "gamerental/internal/adapters/redis"
	"gamerental/internal/app"
	"gamerental/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	client, err := catalog.New(cfg.CatalogBase, cfg.CatalogToken, cfg.CatalogRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize catalog client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	q := app.NewQueryService(client, cache, cfg.CacheTTL)
	checker := app.NewAvailabilityChecker(client)
	submitter := app.NewReservationSubmitter(client)
	flow := app.NewFlow(checker, submitter)

	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, Chk: checker, Flow: flow})

	log.Info().Str("addr", cfg.HTTPAddr).Str("catalog", cfg.CatalogBase).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
