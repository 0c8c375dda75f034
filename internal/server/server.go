// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"ricordi/internal/cache"
	"ricordi/internal/comments"
	"ricordi/internal/config"
	"ricordi/internal/gallery"
	"ricordi/internal/guestbook"
	"ricordi/internal/middleware"
	"ricordi/internal/models"
	"ricordi/internal/store"
	"ricordi/internal/topmoments"
	"ricordi/internal/upload"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
)

// mediaDirStore is implemented by store backends that keep media on local
// disk and need the server to mount the directory as static files.
type mediaDirStore interface {
	MediaDir() string
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	store          store.Store
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	gallery    *gallery.Controller
	uploader   *upload.Coordinator
	comments   *comments.Manager
	guestbook  *guestbook.Book
	topMoments *topmoments.Carousel
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.StoreBackend {
	case config.StoreBackendREST:
		st = store.NewREST(store.RESTConfig{
			BaseURL: cfg.StoreURL,
			APIKey:  cfg.StoreAPIKey,
			Bucket:  cfg.StoreBucket,
		})
	case config.StoreBackendLocal:
		st, err = store.NewLocal(store.LocalConfig{
			Driver:   cfg.LocalDBDriver,
			DSN:      cfg.LocalDBDSN,
			MediaDir: cfg.MediaDir,
		})
		if err != nil {
			return nil, fmt.Errorf("local store setup failed: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, st, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes the store and Redis.
func NewServerWithDeps(cfg *config.Config, st store.Store, redisClient *redis.Client) (*Server, error) {
	prom := middleware.InitMetrics("ricordi-api")

	server := &Server{
		config:         cfg,
		store:          st,
		redis:          redisClient,
		promMiddleware: prom,
		gallery:        gallery.NewController(st.Photos()),
		uploader:       upload.NewCoordinator(st.Blobs(), st.Photos()),
		comments:       comments.NewManager(st.Comments()),
		guestbook:      guestbook.NewBook(st.Guestbook()),
		topMoments:     topmoments.NewCarousel(),
	}

	return server, nil
}

// LoadInitialState performs the startup fetches: photo list, guestbook
// entries and the top-moments ranking. Fetch failures are logged but not
// fatal; the page renders with whatever loaded.
func (s *Server) LoadInitialState(ctx context.Context) {
	if err := s.gallery.LoadAll(ctx); err != nil {
		log.Printf("initial photo load failed: %v", err)
	}
	if err := s.guestbook.Load(ctx); err != nil {
		log.Printf("initial guestbook load failed: %v", err)
	}
	s.topMoments.Refresh(s.gallery.Photos())
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID and trace ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (120 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Photo routes
	photos := api.Group("/photos")
	photos.Get("/", s.GetPhotos)
	photos.Post("/", middleware.RateLimit(
		s.redis, 5, time.Minute, "upload_photo"), s.UploadPhoto)
	// Specific /:id/:resource routes before generic /:id routes
	photos.Post("/:id/like", middleware.RateLimit(
		s.redis, 30, time.Minute, "like_photo"), s.LikePhoto)
	photos.Get("/:id/comments", s.GetComments)
	photos.Post("/:id/comments", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	photos.Post("/:id/select", s.SelectPhoto)

	// Selection (open photo detail view)
	api.Get("/selection", s.GetSelection)
	api.Delete("/selection", s.ClearSelection)

	// Guestbook routes
	gb := api.Group("/guestbook")
	gb.Get("/", s.GetGuestbook)
	gb.Post("/", middleware.RateLimit(
		s.redis, 5, time.Minute, "sign_guestbook"), s.SignGuestbook)
	gb.Post("/seek", s.SeekGuestbook)

	// Top moments carousel
	tm := api.Group("/top-moments")
	tm.Get("/", s.GetTopMoments)
	tm.Post("/seek", s.SeekTopMoments)

	// Static media for the local store backend
	if local, ok := s.store.(mediaDirStore); ok {
		app.Static("/media", local.MediaDir())
	}
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	storeStatus := "healthy"
	if _, err := s.store.Photos().List(ctx); err != nil {
		storeStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Redis only backs rate limiting; the app degrades without it.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if storeStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"store": storeStatus,
			"redis": redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:   "Ricordi API",
		BodyLimit: 50 * 1024 * 1024, // media uploads
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.LoadInitialState(ctx)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Stop carousel timers first so no rotation goroutine outlives the app.
	s.guestbook.Close()
	s.topMoments.Close()

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
