package main

import (
	"log"
	"time"

	"github.com/buzcart/buzcart-api/cache"
	"github.com/buzcart/buzcart-api/config"
	orderControllers "github.com/buzcart/buzcart-api/controllers/order"
	"github.com/buzcart/buzcart-api/database"
	"github.com/buzcart/buzcart-api/middleware"
	"github.com/buzcart/buzcart-api/rabbitmq"
	"github.com/buzcart/buzcart-api/routes"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	log.Println("✅ Starting application...")

	// Load environment variables
	_ = godotenv.Load()
	cfg := config.LoadConfig()
	if cfg.JWTSecret == "" {
		log.Fatal("❌ JWT_SECRET is required")
	}

	// Init DB (auto-migrates)
	db := database.MustOpen(cfg)

	services := routes.Services{
		DB:          db,
		Products:    cache.Noop{},
		Hub:         orderControllers.NewHub(),
		JWTSecret:   cfg.JWTSecret,
		AdminAPIKey: cfg.AdminAPIKey,
	}
	services.Notifier = services.Hub

	// Product cache is optional
	if cfg.RedisAddress != "" {
		client := cache.NewRedisClient(cfg.RedisAddress, cfg.RedisPassword)
		defer client.Close()
		services.Products = cache.NewRedisProductCache(client, cfg.ProductCacheTTL)
		log.Printf("✅ Product cache on %s", cfg.RedisAddress)
	}

	// Order events go through RabbitMQ when configured; the consumer feeds the
	// websocket hub. Without a broker the hub is notified directly.
	if cfg.RabbitMQURL != "" {
		rmq, err := rabbitmq.NewRabbitMQ(cfg)
		if err != nil {
			log.Fatalf("❌ RabbitMQ initialization failed: %v", err)
		}
		defer rmq.Close()

		if err := rmq.SetupQueues(); err != nil {
			log.Fatalf("❌ Failed to setup RabbitMQ queues: %v", err)
		}
		if err := rabbitmq.StartOrderConsumer(rmq.Channel, cfg, services.Hub.HandleEvent); err != nil {
			log.Fatalf("❌ Failed to register order consumer: %v", err)
		}
		services.Notifier = rmq
	}

	// Gin setup
	gin.SetMode(cfg.GinMode)
	r := gin.Default()
	r.Use(middleware.PrometheusMiddleware())

	// CORS settings
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length", "Deprecation", "Link"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup routes
	routes.SetupRoutes(r, services)

	log.Printf("🚀 Server running on port %s...", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
