package main

import (
	"context"
	"log"
	stdhttp "net/http"
	"os"

	"shorturls/pkg/cache"
	"shorturls/pkg/config"
	httphandler "shorturls/pkg/http"
	"shorturls/pkg/logging"
	"shorturls/pkg/service"
	"shorturls/pkg/storage"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()

	addr := os.Getenv("REDIRECT_LISTEN_ADDR")
	if addr == "" {
		addr = ":8081"
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal(err)
	}
	redisClient := redis.NewClient(opt)
	defer redisClient.Close()

	logger := logging.NewLogger(logging.LogLevel(cfg.LogLevel))
	linkCache := cache.NewLinkCache(redisClient)
	store := storage.NewPostgresStore(pool)

	linkService := service.NewLinkService(store, linkCache, logger, service.Options{
		CodeLength:     cfg.CodeLength,
		MaxCodeRetries: cfg.MaxCodeRetries,
		CacheTTL:       cfg.CacheTTL,
	})

	handler := httphandler.NewHandler(linkService, cfg.BaseURL)

	r := chi.NewRouter()
	httphandler.SetupRedirectRoutes(r, handler)

	log.Println("Starting redirect server on", addr)
	log.Fatal(stdhttp.ListenAndServe(addr, r))
}
