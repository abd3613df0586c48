package server

import (
	"fmt"
	"net/http"
	"time"

	"gamestore-ingest/internal/catalog"
	"gamestore-ingest/internal/config"
	custommiddleware "gamestore-ingest/internal/middleware"
	"gamestore-ingest/internal/repository"
	"gamestore-ingest/internal/scraper"
	"gamestore-ingest/internal/service"
	"gamestore-ingest/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.Env != "production"))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Initialize the content-store repositories
	storeClient := repository.NewClient(cfg.Store.BaseURL())
	entities := repository.NewEntityRepository(storeClient)
	games := repository.NewGameRepository(storeClient)
	uploads := repository.NewUploadRepository(storeClient)

	// Initialize pipeline services
	listing := catalog.NewClient(cfg.Catalog.BaseURL)
	details := scraper.New(cfg.Scraper.BaseURL)
	resolver := service.NewEntityResolver(entities, logger)
	imageLimiter := rate.NewLimiter(rate.Limit(cfg.Pipeline.ImagesPerSecond), 1)
	assets := service.NewAssetUploader(uploads, imageLimiter, logger)
	populate := service.NewPopulateService(listing, games, resolver, details, assets, cfg.Pipeline, logger)

	// Initialize handlers
	populateHandler := transport.NewPopulateHandler(populate, logger)

	// The trigger rate limiter is optional; it needs a redis backend
	var redisClient *redis.Client
	var rateLimit func(http.Handler) http.Handler
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rateLimit = custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "ratelimit:populate",
		}, logger)
	}

	// Register routes
	populateHandler.RegisterRoutes(router, rateLimit)

	server := &Server{
		Server: &http.Server{
			Addr:        fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:     router,
			IdleTimeout: time.Minute,
			ReadTimeout: 10 * time.Second,
			// Populate runs synchronously inside the request, so the
			// write timeout has to outlast a full batch.
			WriteTimeout: 30 * time.Minute,
		},
		config: cfg,
		logger: logger,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
