package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront-api/internal/config"
	"github.com/iliyamo/storefront-api/internal/database"
	"github.com/iliyamo/storefront-api/internal/handler"
	"github.com/iliyamo/storefront-api/internal/queue"
	"github.com/iliyamo/storefront-api/internal/repository"
	"github.com/iliyamo/storefront-api/internal/router"
	"github.com/iliyamo/storefront-api/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}

	storeRepo := repository.NewStoreRepo(db)
	store, err := storeRepo.First(context.Background())
	if err != nil {
		log.Fatalf("resolve store: %v (seed the stores table first)", err)
	}
	log.Printf("serving store %q (id=%d)", store.Slug, store.ID)

	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	productRepo := repository.NewProductRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	cartRepo := repository.NewCartRepo(db)

	authSvc := service.NewAuthService(cfg, userRepo, tokenRepo)
	cartSvc := service.NewCartService(cartRepo, productRepo)

	events, err := queue.NewPublisher(cfg.AMQPURL)
	if err != nil {
		log.Printf("queue: publisher unavailable, events disabled: %v", err)
		events = nil
	} else {
		defer events.Close()
	}

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	go queue.StartConsumer(consumerCtx, cfg.AMQPURL)

	e := echo.New()
	e.HideBanner = true

	router.Register(e, router.Deps{
		Cfg:       cfg,
		DB:        db,
		Redis:     rdb,
		Auth:      handler.NewAuthHandler(authSvc, cartSvc, events, store.ID),
		Cart:      handler.NewCartHandler(cartSvc, store.ID),
		Product:   handler.NewProductHandler(productRepo, store.ID),
		Category:  handler.NewCategoryHandler(categoryRepo, store.ID),
		Health:    handler.NewHealthHandler(db, rdb),
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
	})

	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
