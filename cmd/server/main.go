package main

import (
	"context"
	"log"
	"time"

	"go-event-registration/config"
	"go-event-registration/internal/cache"
	"go-event-registration/internal/database"
	"go-event-registration/internal/handler"
	"go-event-registration/internal/ledger"
	"go-event-registration/internal/repository"
	"go-event-registration/internal/service"
	"go-event-registration/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	// repositories
	eventRepo := repository.NewEventRepository(pool)
	registrationRepo := repository.NewRegistrationRepository(pool)

	// ledger 與快取
	capacityLedger := ledger.NewCapacityLedger()
	availability := cache.NewEventAvailabilityCache(rdb)

	// services
	eventService := service.NewEventService(pool, eventRepo, availability)
	registrationService := service.NewRegistrationService(
		pool, registrationRepo, eventRepo, capacityLedger, availability)

	// 背景掃描：published 活動過了結束時間轉 completed
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.NewCompletionWorker(eventRepo, time.Minute).Start(ctx)

	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	handler.NewEventHandler(eventService).RegisterRoutes(router)
	handler.NewRegistrationHandler(registrationService).RegisterRoutes(router)

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
