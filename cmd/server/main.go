package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dharmasatrya/flightoffers/internal/airline"
	"github.com/dharmasatrya/flightoffers/internal/cache"
	"github.com/dharmasatrya/flightoffers/internal/config"
	"github.com/dharmasatrya/flightoffers/internal/events"
	"github.com/dharmasatrya/flightoffers/internal/handler"
	"github.com/dharmasatrya/flightoffers/internal/metrics"
	"github.com/dharmasatrya/flightoffers/internal/normalizer"
	"github.com/dharmasatrya/flightoffers/internal/providers"
	"github.com/dharmasatrya/flightoffers/internal/ratelimit"
	"github.com/dharmasatrya/flightoffers/internal/savedsearch"
	"github.com/dharmasatrya/flightoffers/internal/search"
	"github.com/dharmasatrya/flightoffers/internal/ticket"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig(getEnv("CONFIG_PATH", ""))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger := setupLogger(cfg.Logging)
	logger.Info().Msg("starting flight offers server")

	rates, err := cfg.Currency.RateSource()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid currency configuration")
	}

	provider, err := initializeProvider(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize provider")
	}
	logger.Info().Str("provider", provider.Name()).Msg("provider initialized")

	offerCache, store, redisClient := initializeStorage(cfg.Redis, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	var publisher events.Publisher = events.NewNoOpPublisher()
	if cfg.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(events.KafkaPublisherConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		}, logger)
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publishing search events to Kafka")
	}
	defer publisher.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	searchMetrics := metrics.New(registry)

	upstreamLimiter := ratelimit.NewLimiter(ratelimit.Limit{
		RequestsPerSecond: cfg.RateLimit.UpstreamRPS,
		BurstSize:         cfg.RateLimit.UpstreamBurst,
	})
	clientLimiter := ratelimit.NewLimiter(ratelimit.Limit{
		RequestsPerSecond: cfg.RateLimit.ClientRPS,
		BurstSize:         cfg.RateLimit.ClientBurst,
	})
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go clientLimiter.RunSweeper(sweepCtx, cfg.RateLimit.SweepInterval, cfg.RateLimit.ClientIdleTTL)
	metrics.RegisterClientBuckets(registry, clientLimiter.Len)

	norm := normalizer.NewNormalizer(normalizer.Config{
		Rates:    rates,
		Airlines: airline.NewDirectory(cfg.Airlines.Overrides),
		Workers:  cfg.Search.Workers,
	}, logger)

	searchService := search.NewService(provider, norm, offerCache, publisher, searchMetrics, search.Config{
		Timeout:     cfg.Search.Timeout,
		MaxRetries:  cfg.Search.MaxRetries,
		RetryDelays: cfg.Search.RetryDelays,
		RateLimiter: upstreamLimiter,
	}, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	// Client limits key on the socket peer; forwarding headers are client-controlled.
	e.IPExtractor = echo.ExtractIPDirect()

	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	searchHandler := handler.NewSearchHandler(searchService, logger)
	savedHandler := handler.NewSavedSearchHandler(store, logger)
	ticketHandler := handler.NewTicketHandler(ticket.NewGenerator())

	api := e.Group("/api/v1", ratelimit.Middleware(clientLimiter))
	api.POST("/flights/search", searchHandler.Search)
	api.GET("/saved-searches", savedHandler.List)
	api.POST("/saved-searches", savedHandler.Create)
	api.DELETE("/saved-searches/:id", savedHandler.Delete)
	api.POST("/tickets", ticketHandler.Create)

	e.GET("/health", handler.HealthHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("starting HTTP server")
		if err := e.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	logger.Info().Msg("shutdown complete")
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return log.Logger.With().Str("service", "flight-offers").Logger()
}

func requestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	httpLogger := logger.With().Str("component", "http").Logger()

	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := httpLogger.Info()
			if v.Error != nil {
				event = httpLogger.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

func initializeProvider(cfg *config.Config, logger zerolog.Logger) (providers.Provider, error) {
	if !cfg.Amadeus.Enabled() {
		logger.Warn().Msg("no Amadeus credentials configured, serving sample offers")
		return providers.NewSampleProvider()
	}

	return providers.NewAmadeusProvider(
		cfg.Amadeus.ClientID,
		cfg.Amadeus.ClientSecret,
		providers.WithBaseURL(cfg.Amadeus.BaseURL),
		providers.WithHTTPClient(&http.Client{Timeout: cfg.Search.Timeout}),
		providers.WithCurrency(cfg.Currency.Source),
		providers.WithLogger(logger),
	)
}

// initializeStorage connects Redis for the offer cache and saved searches.
// When Redis is disabled or unreachable it falls back to a no-op cache and an
// in-process store.
func initializeStorage(cfg config.RedisConfig, logger zerolog.Logger) (cache.Cache, savedsearch.Store, *redis.Client) {
	if !cfg.Enabled {
		logger.Info().Msg("Redis disabled, offer cache off and saved searches kept in memory")
		return cache.NewNoOpCache(), savedsearch.NewMemoryStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Addr).Msg("Redis unavailable, offer cache off and saved searches kept in memory")
		client.Close()
		return cache.NewNoOpCache(), savedsearch.NewMemoryStore(), nil
	}

	logger.Info().Str("addr", cfg.Addr).Dur("ttl", cfg.TTL).Msg("connected to Redis")
	return cache.NewRedisCacheWithClient(client, cfg.TTL, logger), savedsearch.NewRedisStore(client, logger), client
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
