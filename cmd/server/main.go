package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dharmasatrya/flightbooking/internal/aggregator"
	"github.com/dharmasatrya/flightbooking/internal/booking"
	"github.com/dharmasatrya/flightbooking/internal/cache"
	"github.com/dharmasatrya/flightbooking/internal/handler"
	"github.com/dharmasatrya/flightbooking/internal/payment"
	"github.com/dharmasatrya/flightbooking/internal/providers"
	"github.com/dharmasatrya/flightbooking/internal/queue"
	"github.com/dharmasatrya/flightbooking/internal/ratelimit"
	"github.com/dharmasatrya/flightbooking/internal/seatmap"
)

type Config struct {
	Port             string
	CacheEnabled     bool
	RedisHost        string
	RedisPort        string
	RedisTTL         time.Duration
	SearchProviders  string // name=baseURL pairs, semicolon separated
	FallbackEnabled  bool
	AMQPURL          string
	StripeSecretKey  string
	PaySuccessURL    string
	PayCancelURL     string
	SessionTTL       time.Duration
	ExtendThreshold  time.Duration
	TaxRate          float64
	FixedFee         float64
	SeatBasePrice    float64
	Currency         string
}

func main() {
	_ = godotenv.Load()

	cfg := loadConfig()
	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	limiter := ratelimit.NewServiceLimiterWithDefaults()

	providerList := initializeProviders(cfg, limiter)
	log.Printf("Initialized %d search providers", len(providerList))

	agg := aggregator.NewAggregator(providerList, aggregator.Config{
		Timeout:    2 * time.Second,
		MaxRetries: 3,
		RetryDelays: []time.Duration{
			100 * time.Millisecond,
			200 * time.Millisecond,
			400 * time.Millisecond,
		},
		RateLimiter:     limiter,
		Fallback:        providers.NewSyntheticProvider(),
		DisableFallback: !cfg.FallbackEnabled,
	})

	var offerCache cache.Cache
	if cfg.CacheEnabled {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Host: cfg.RedisHost,
			Port: cfg.RedisPort,
			TTL:  cfg.RedisTTL,
		})
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		offerCache = redisCache
		log.Printf("Redis cache enabled (host: %s:%s, TTL: %v)", cfg.RedisHost, cfg.RedisPort, cfg.RedisTTL)
	} else {
		offerCache = cache.NewNoOpCache()
		log.Println("Cache disabled")
	}

	var publisher queue.Publisher
	if cfg.AMQPURL != "" {
		amqpPublisher, err := queue.NewAMQPPublisher(cfg.AMQPURL)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		publisher = amqpPublisher
		log.Println("Booking event publisher enabled")
	} else {
		publisher = queue.NewNoOpPublisher()
		log.Println("Booking event publisher disabled")
	}
	defer publisher.Close()

	var gateway payment.Gateway
	if cfg.StripeSecretKey != "" {
		stripeGateway, err := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.PaySuccessURL, cfg.PayCancelURL, limiter)
		if err != nil {
			log.Fatalf("Failed to initialize Stripe: %v", err)
		}
		limiter.SetServiceLimit(stripeGateway.Name(), 25, 50)
		gateway = stripeGateway
		log.Println("Stripe payment gateway enabled")
	} else {
		gateway = payment.NewSandboxGateway()
		log.Println("Sandbox payment gateway enabled (no STRIPE_SECRET_KEY)")
	}

	inventory := seatmap.NewGenerator()
	bookingCfg := booking.Config{
		SessionTTL:      cfg.SessionTTL,
		ExtendThreshold: cfg.ExtendThreshold,
		TaxRate:         cfg.TaxRate,
		FixedFee:        cfg.FixedFee,
		SeatBasePrice:   cfg.SeatBasePrice,
		Currency:        cfg.Currency,
	}
	manager := booking.NewManager(booking.NewMemoryStore(), bookingCfg, gateway, publisher, inventory)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go manager.Run(ctx)

	searchHandler := handler.NewSearchHandler(agg, offerCache)
	bookingHandler := handler.NewBookingHandler(manager)
	seatMapHandler := handler.NewSeatMapHandler(inventory, cfg.SeatBasePrice, cfg.Currency)

	api := e.Group("/api/v1")
	api.POST("/flights/search", searchHandler.Search)
	api.GET("/flights/:id/seatmap", seatMapHandler.Get)
	api.POST("/bookings", bookingHandler.Create)
	api.GET("/bookings/:id", bookingHandler.Get)
	api.POST("/bookings/:id/extend", bookingHandler.Extend)
	api.DELETE("/bookings/:id", bookingHandler.Cancel)
	api.GET("/bookings/:id/seatmap", bookingHandler.SeatMap)
	api.POST("/bookings/:id/seats", bookingHandler.ToggleSeat)
	api.DELETE("/bookings/:id/seats", bookingHandler.ClearSeats)
	api.POST("/bookings/:id/seats/confirm", bookingHandler.ConfirmSeats)
	api.POST("/bookings/:id/payment", bookingHandler.SubmitPayment)
	api.POST("/bookings/:id/payment/confirm", bookingHandler.ConfirmPayment)
	e.GET("/health", handler.HealthHandler)

	go func() {
		log.Printf("Starting flight booking server on port %s", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	// Cancel the manager first so the expiry ticker is torn down before the
	// server goes away.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}
}

func loadConfig() Config {
	return Config{
		Port:            getEnv("PORT", "8080"),
		CacheEnabled:    getEnvBool("CACHE_ENABLED", true),
		RedisHost:       getEnv("REDIS_HOST", "localhost"),
		RedisPort:       getEnv("REDIS_PORT", "6379"),
		RedisTTL:        getEnvDuration("REDIS_TTL", 5*time.Minute),
		SearchProviders: getEnv("SEARCH_PROVIDERS", ""),
		FallbackEnabled: getEnvBool("SEARCH_FALLBACK_ENABLED", true),
		AMQPURL:         getEnv("AMQP_URL", ""),
		StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
		PaySuccessURL:   getEnv("PAYMENT_SUCCESS_URL", "http://localhost:8080/payment/success"),
		PayCancelURL:    getEnv("PAYMENT_CANCEL_URL", "http://localhost:8080/payment/cancel"),
		SessionTTL:      getEnvDuration("SESSION_TTL", 15*time.Minute),
		ExtendThreshold: getEnvDuration("SESSION_EXTEND_THRESHOLD", 5*time.Minute),
		TaxRate:         getEnvFloat("TAX_RATE", 0.15),
		FixedFee:        getEnvFloat("BOOKING_FEE", 25.0),
		SeatBasePrice:   getEnvFloat("SEAT_BASE_PRICE", 30.0),
		Currency:        getEnv("CURRENCY", "USD"),
	}
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

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

// initializeProviders builds remote providers from the SEARCH_PROVIDERS env
// value ("name=https://host;name2=https://host2"). With no providers
// configured, every search goes through the synthetic fallback.
func initializeProviders(cfg Config, limiter *ratelimit.ServiceLimiter) []providers.Provider {
	var providerList []providers.Provider

	for _, entry := range strings.Split(cfg.SearchProviders, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			log.Printf("Skipping malformed provider entry %q", entry)
			continue
		}
		name, baseURL := parts[0], parts[1]
		apiKey := os.Getenv("SEARCH_PROVIDER_" + strings.ToUpper(name) + "_KEY")
		providerList = append(providerList, providers.NewRemoteProvider(name, baseURL, apiKey, 5*time.Second))
		limiter.SetServiceLimit(name, 15, 25)
	}

	return providerList
}
