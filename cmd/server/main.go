package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anivise/internal/cache"
	"anivise/internal/config"
	"anivise/internal/handlers"
	"anivise/internal/health"
	"anivise/internal/jikan"
	"anivise/internal/jobs"
	"anivise/internal/llm"
	"anivise/internal/logging"
	"anivise/internal/middleware"
	"anivise/internal/preflight"
	"anivise/internal/services"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	}

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()
	log.Println("🚀 Starting Anivise Server...")

	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s, Env: %s, Model: %s)", cfg.Port, cfg.Environment, cfg.GeminiModel)

	if results := preflight.NewChecker(cfg).RunAll(); preflight.HasFailures(results) {
		log.Fatal("❌ Pre-flight checks failed, refusing to start")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracker := health.NewService(0)
	tracker.Register(health.UpstreamGemini)
	tracker.Register(health.UpstreamJikan)

	responseCache, redisCache := initCache(ctx, cfg, tracker)
	if redisCache != nil {
		defer redisCache.Close()
	}

	gemini := llm.NewGeminiClient(llm.Options{
		APIKey:   cfg.GeminiAPIKey,
		Model:    cfg.GeminiModel,
		BaseURL:  cfg.GeminiBaseURL,
		Timeout:  cfg.UpstreamTimeout,
		Reporter: tracker,
	})

	jikanClient := jikan.NewClient(jikan.Options{
		BaseURL:       cfg.JikanBaseURL,
		RatePerSecond: cfg.JikanRate,
		Timeout:       cfg.UpstreamTimeout,
		Cache:         responseCache,
		CacheTTL:      cfg.CacheTTL,
		Reporter:      tracker,
	})
	log.Printf("✅ Jikan client initialized (%s, %.1f req/s, cache TTL %s)", cfg.JikanBaseURL, cfg.JikanRate, cfg.CacheTTL)

	genres := services.NewGenreAliases()
	if cfg.GenreAliasesFile != "" {
		if err := genres.LoadFile(cfg.GenreAliasesFile); err != nil {
			log.Printf("⚠️  Using embedded genre aliases: %v", err)
		}
		if err := genres.Watch(ctx, cfg.GenreAliasesFile); err != nil {
			log.Printf("⚠️  Genre alias hot-reload disabled: %v", err)
		}
	}

	intentService := services.NewIntentService(gemini)
	routerService := services.NewRouterService(jikanClient, genres)
	recommendService := services.NewRecommendService(gemini)

	jobScheduler := initJobs(cfg, tracker, gemini, jikanClient, redisCache)

	app := fiber.New(fiber.Config{
		AppName:      "Anivise v1.0",
		ReadTimeout:  2 * cfg.UpstreamTimeout,
		WriteTimeout: 2 * cfg.UpstreamTimeout,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    64 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(middleware.RequestLogger())

	prometheus := fiberprometheus.New("anivise")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept",
		AllowCredentials: false,
	}))
	log.Printf("🔒 [SECURITY] CORS allowed origins: %s", cfg.AllowedOrigins)

	rateLimitConfig := middleware.LoadRateLimitConfig()
	log.Printf("🛡️  [RATE-LIMIT] Loaded config: Global=%d/min, LLM=%d/min",
		rateLimitConfig.GlobalAPIMax, rateLimitConfig.LLMMax)
	llmLimiter := middleware.LLMRateLimiter(rateLimitConfig)

	healthHandler := handlers.NewHealthHandler(tracker)
	intentHandler := handlers.NewIntentHandler(intentService)
	routerHandler := handlers.NewRouterHandler(routerService)
	modelsHandler := handlers.NewModelsHandler(gemini)
	recommendHandler := handlers.NewRecommendHandler(recommendService)
	askHandler := handlers.NewAskHandler(intentService, routerService)

	app.Get("/health", healthHandler.Handle)

	api := app.Group("/api", middleware.GlobalAPIRateLimiter(rateLimitConfig))
	api.Post("/intent", llmLimiter, intentHandler.Classify)
	api.Post("/router", routerHandler.Route)
	api.Get("/models", modelsHandler.List)
	api.Post("/recommend", llmLimiter, recommendHandler.Recommend)
	api.Post("/ask", llmLimiter, askHandler.Ask)

	log.Printf("✅ Server ready on port %s", cfg.Port)
	log.Printf("📡 Health check: http://localhost:%s/health", cfg.Port)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("🛑 Shutting down server...")
		cancel()

		if jobScheduler != nil {
			if err := jobScheduler.Stop(); err != nil {
				log.Printf("⚠️ Error stopping job scheduler: %v", err)
			}
		}

		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// initCache selects the response cache backend. Redis falls back to the
// in-process cache when it cannot be reached at startup.
func initCache(ctx context.Context, cfg *config.Config, tracker *health.Service) (cache.Cache, *cache.RedisCache) {
	if cfg.CacheBackend != "redis" {
		log.Println("✅ Using in-memory response cache")
		return cache.NewMemoryCache(), nil
	}
	if cfg.RedisURL == "" {
		log.Println("⚠️  CACHE_BACKEND=redis but REDIS_URL is empty, using in-memory cache")
		return cache.NewMemoryCache(), nil
	}

	tracker.Register(health.UpstreamRedis)
	redisCache, err := cache.NewRedisCache(ctx, cfg.RedisURL)
	if err != nil {
		tracker.MarkFailed(health.UpstreamRedis, 0, err.Error())
		log.Printf("⚠️  Redis unavailable, using in-memory cache: %v", err)
		return cache.NewMemoryCache(), nil
	}
	tracker.MarkHealthy(health.UpstreamRedis)
	log.Println("✅ Using Redis response cache")
	return redisCache, redisCache
}

// initJobs starts the upstream probe when HEALTH_PROBE_SCHEDULE is set
func initJobs(cfg *config.Config, tracker *health.Service, gemini *llm.GeminiClient, jikanClient *jikan.Client, redisCache *cache.RedisCache) *jobs.JobScheduler {
	if cfg.HealthProbeSchedule == "" {
		return nil
	}

	probes := []health.Probe{{Upstream: health.UpstreamJikan, Check: jikanClient.Ping}}
	if cfg.GeminiAPIKey != "" {
		probes = append(probes, health.Probe{Upstream: health.UpstreamGemini, Check: gemini.Ping})
	}
	if redisCache != nil {
		probes = append(probes, health.Probe{Upstream: health.UpstreamRedis, Check: redisCache.Ping})
	}

	jobScheduler, err := jobs.NewJobScheduler()
	if err != nil {
		log.Printf("⚠️  Background jobs disabled: %v", err)
		return nil
	}
	if err := jobScheduler.Register(cfg.HealthProbeSchedule, jobs.NewUpstreamProbe(tracker, probes...)); err != nil {
		log.Printf("⚠️  Upstream probe disabled: %v", err)
		return nil
	}
	jobScheduler.Start()
	log.Printf("🕐 Background jobs: upstream probe (%s)", cfg.HealthProbeSchedule)
	return jobScheduler
}
