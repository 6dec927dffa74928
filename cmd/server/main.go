package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sheriph/chat-bot/internal/amadeus"
	"github.com/sheriph/chat-bot/internal/cache"
	"github.com/sheriph/chat-bot/internal/handler"
	"github.com/sheriph/chat-bot/internal/obs"
	"github.com/sheriph/chat-bot/internal/programs"
	"github.com/sheriph/chat-bot/internal/ratelimit"
)

type Config struct {
	Port                string
	AmadeusBaseURL      string
	AmadeusClientID     string
	AmadeusClientSecret string
	AmadeusTimeout      time.Duration
	CacheEnabled        bool
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	MongoURI            string
	MongoDatabase       string
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := loadConfig()

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	metrics := obs.NewMetrics()

	limiter := ratelimit.NewEndpointLimiterWithDefaults()
	limiter.SetEndpointLimit("shopping", 10, 20)
	limiter.SetEndpointLimit("other", 5, 10)

	tokens := amadeus.NewTokenCache(cfg.AmadeusBaseURL, cfg.AmadeusClientID, cfg.AmadeusClientSecret, nil, metrics)
	client := amadeus.NewClient(cfg.AmadeusBaseURL, tokens, limiter, nil, metrics)

	var store cache.Store
	if cfg.CacheEnabled {
		redisStore, err := cache.NewRedisStore(cache.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		store = redisStore
		log.Printf("Result cache on Redis (%s:%s, TTL %v)", cfg.RedisHost, cfg.RedisPort, cache.ResultTTL)
	} else {
		store = cache.NewMemoryStore()
		log.Println("Result cache in memory (Redis disabled)")
	}
	defer store.Close()

	flights := handler.NewFlightHandler(client, store, metrics, cfg.AmadeusTimeout)

	api := e.Group("/api/v1")
	api.POST("/flights/search", flights.Search)
	api.GET("/flights/results", flights.Results)
	api.GET("/flights/results/markdown", flights.ResultsMarkdown)

	if cfg.MongoURI != "" {
		mongoClient, err := programs.Connect(context.Background(), cfg.MongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer mongoClient.Disconnect(context.Background())

		programsHandler := handler.NewProgramsHandler(programs.NewRepository(mongoClient, cfg.MongoDatabase))
		api.GET("/programs/search", programsHandler.Search)
		log.Printf("Programs catalog connected (db %s)", cfg.MongoDatabase)
	} else {
		log.Println("MONGO_URI not set; programs search disabled")
	}

	e.GET("/health", handler.HealthHandler)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	log.Printf("Starting travel assistant server on port %s", cfg.Port)

	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func loadConfig() Config {
	cfg := Config{
		Port:                getEnv("PORT", "8080"),
		AmadeusBaseURL:      getEnv("AMADEUS_BASE_URL", "https://test.api.amadeus.com"),
		AmadeusClientID:     os.Getenv("AMADEUS_CLIENT_ID"),
		AmadeusClientSecret: os.Getenv("AMADEUS_CLIENT_SECRET"),
		AmadeusTimeout:      getEnvDuration("AMADEUS_TIMEOUT", 25*time.Second),
		CacheEnabled:        getEnvBool("CACHE_ENABLED", true),
		RedisHost:           getEnv("REDIS_HOST", "localhost"),
		RedisPort:           getEnv("REDIS_PORT", "6379"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		MongoURI:            os.Getenv("MONGO_URI"),
		MongoDatabase:       getEnv("MONGO_DATABASE", "studyabroad"),
	}

	if cfg.AmadeusClientID == "" || cfg.AmadeusClientSecret == "" {
		log.Fatal("AMADEUS_CLIENT_ID and AMADEUS_CLIENT_SECRET are required")
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
