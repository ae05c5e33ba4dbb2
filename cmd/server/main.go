package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"thoughtcap/internal/config"
	"thoughtcap/internal/database"
	"thoughtcap/internal/handlers"
	"thoughtcap/internal/jobs"
	"thoughtcap/internal/llm"
	"thoughtcap/internal/logging"
	"thoughtcap/internal/middleware"
	"thoughtcap/internal/services"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting thought capture server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	}

	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s)", cfg.Port)

	if cfg.MongoURI == "" {
		log.Fatal("❌ MONGODB_URI environment variable is required")
	}
	mongoDB, err := database.NewMongoDB(cfg.MongoURI)
	if err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}
	defer mongoDB.Close(context.Background())

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	if err := mongoDB.Initialize(initCtx); err != nil {
		cancelInit()
		log.Fatalf("❌ Failed to initialize MongoDB: %v", err)
	}
	cancelInit()
	log.Println("✅ MongoDB connected and indexes ensured")

	// Redis is an optional hot cache for daily picks
	var redisService *services.RedisService
	if cfg.RedisURL != "" {
		redisService, err = services.NewRedisService(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️ Redis unavailable, picks caching disabled: %v", err)
			redisService = nil
		} else {
			defer redisService.Close()
			log.Println("✅ Redis connected")
		}
	}

	// LLM providers: primary plus optional fallback, tried in order
	var providers []llm.Provider
	if cfg.Primary.Configured() {
		providers = append(providers, llm.NewOpenAIProvider(cfg.Primary))
		log.Printf("✅ LLM provider configured: %s", cfg.Primary.Name)
	} else {
		log.Fatal("❌ LLM_PRIMARY_API_KEY and LLM_PRIMARY_BASE_URL are required")
	}
	if cfg.Fallback.Configured() {
		providers = append(providers, llm.NewOpenAIProvider(cfg.Fallback))
		log.Printf("✅ LLM fallback configured: %s", cfg.Fallback.Name)
	}
	gateway := llm.NewGateway(providers...)

	// Services
	itemService := services.NewItemService(mongoDB)
	statsService := services.NewStatsService(mongoDB)
	classifierService := services.NewClassifierService(itemService, gateway)
	decayService := services.NewDecayService(mongoDB, itemService, cfg.DecayDays)
	picksService := services.NewPicksService(mongoDB, itemService, statsService, gateway, redisService, cfg.PicksTargetCount, cfg.PicksMaxMinutes)
	digestService := services.NewDigestService(itemService, statsService)

	// Background jobs
	scheduler, err := jobs.NewScheduler(itemService, picksService, decayService, cfg.DailyPicksTime)
	if err != nil {
		log.Fatalf("❌ Failed to create scheduler: %v", err)
	}
	scheduler.Start()

	// Handlers
	captureHandler := handlers.NewCaptureHandler(classifierService)
	itemHandler := handlers.NewItemHandler(itemService)
	picksHandler := handlers.NewPicksHandler(picksService)
	statsHandler := handlers.NewStatsHandler(statsService, digestService)
	configHandler := handlers.NewConfigHandler(itemService, cfg.UserDefaults())
	healthHandler := handlers.NewHealthHandler(mongoDB, redisService)

	app := fiber.New(fiber.Config{
		AppName:      "thoughtcap v1.0",
		ReadTimeout:  120 * time.Second, // classification round-trips can be slow on cold models
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    12 * 1024 * 1024, // image captures up to 10MB plus form overhead
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())

	// Prometheus metrics middleware
	prometheus := fiberprometheus.New("thoughtcap")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	// Routes
	app.Get("/api/health", healthHandler.Health)

	api := app.Group("/api", middleware.Identity())
	api.Post("/capture", captureHandler.Capture)
	api.Get("/items", itemHandler.ListItems)
	api.Get("/items/:id", itemHandler.GetItem)
	api.Patch("/items/:id", itemHandler.UpdateItem)
	api.Delete("/items/:id", itemHandler.DeleteItem)
	api.Get("/daily-picks", picksHandler.GetDailyPicks)
	api.Post("/daily-picks/regenerate", picksHandler.RegenerateDailyPicks)
	api.Get("/stats", statsHandler.GetStats)
	api.Get("/digest", statsHandler.GetDigest)
	api.Get("/config", configHandler.ListConfig)
	api.Get("/config/:key", configHandler.GetConfig)
	api.Post("/config/:key", configHandler.SetConfig)

	log.Printf("📡 Health check: http://localhost:%s/api/health", cfg.Port)
	log.Printf("🕐 Background jobs: daily picks (%s UTC), decay sweep (02:00 UTC)", cfg.DailyPicksTime)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")
		scheduler.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
