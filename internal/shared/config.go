package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv       string
	HTTPAddr     string
	MetricsAddr  string
	CatalogBase  string
	CatalogToken string
	CatalogRPS   int
	RedisAddr    string
	RedisDB      int
	RedisPass    string
	WarmWorkers  int
	CacheTTL     time.Duration
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:       env("APP_ENV", "prod"),
		HTTPAddr:     env("HTTP_ADDR", ":8080"),
		MetricsAddr:  env("METRICS_ADDR", ":9100"),
		CatalogBase:  env("CATALOG_BASE_URL", "http://localhost:1337/api"),
		CatalogToken: env("CATALOG_TOKEN", ""),
		CatalogRPS:   atoi("CATALOG_RPS", 5),
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		RedisPass:    env("REDIS_PASSWORD", ""),
		RedisDB:      atoi("REDIS_DB", 0),
		WarmWorkers:  atoi("WARM_WORKERS", 8),
		CacheTTL:     time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
	}
	if c.CatalogToken == "" {
		log.Warn().Msg("CATALOG_TOKEN is empty; assuming a public catalog")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
