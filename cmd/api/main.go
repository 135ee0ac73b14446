package main

import (
	"context"
	"log"
	stdhttp "net/http"

	"shorturls/pkg/cache"
	"shorturls/pkg/config"
	"shorturls/pkg/http"
	"shorturls/pkg/logging"
	"shorturls/pkg/service"
	"shorturls/pkg/storage"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()

	if err := storage.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatal(err)
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
		ProbeTimeout:   cfg.ProbeTimeout,
	})

	handler := http.NewHandler(linkService, cfg.BaseURL)

	r := chi.NewRouter()
	http.SetupRoutes(r, handler)

	log.Println("Starting API server on", cfg.ListenAddr)
	log.Fatal(stdhttp.ListenAndServe(cfg.ListenAddr, r))
}
