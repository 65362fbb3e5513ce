// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "eventhub/docs" // swagger docs
	"eventhub/internal/config"
	"eventhub/internal/database"
	"eventhub/internal/middleware"
	"eventhub/internal/models"
	"eventhub/internal/repository"
	"eventhub/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

const (
	serviceName = "eventhub-api"
	// requestBodyLimit is above the image cap so most oversize uploads reach
	// the upload validation; bodies past it are answered by handleError.
	requestBodyLimit = 10 * 1024 * 1024
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	accessLogs     *middleware.AccessLogs
	limitPolicy    middleware.FailPolicy
	userRepo       repository.UserRepository
	eventRepo      repository.EventRepository
	limiter        *service.EventLimiter
	images         *service.ImageStore
	userService    *service.UserService
	eventService   *service.EventService
}

// NewServerWithDeps creates a Server using an already-connected database.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB) (*Server, error) {
	accessLogs, err := middleware.OpenAccessLogs(cfg.LogDir)
	if err != nil {
		return nil, fmt.Errorf("open access logs: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)

	server := &Server{
		config:         cfg,
		db:             db,
		promMiddleware: middleware.InitMetrics(serviceName),
		accessLogs:     accessLogs,
		limitPolicy:    middleware.FailClosed,
		userRepo:       userRepo,
		eventRepo:      eventRepo,
		limiter:        service.NewEventLimiter(eventRepo, cfg.MaxEventsPerDay),
		images:         service.NewImageStore(cfg),
	}
	server.userService = service.NewUserService(server.userRepo)
	server.eventService = service.NewEventService(server.eventRepo, server.userRepo, server.limiter, server.images).
		WithLogger(middleware.Logger)

	return server, nil
}

// NewApp builds the Fiber application with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Event Hub API",
		BodyLimit:    requestBodyLimit,
		ErrorHandler: s.handleError,
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and Trace ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers; uploaded images are embedded by other origins.
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	// Console logging
	app.Use(middleware.StructuredLogger())

	// access.log / error.log
	if s.accessLogs != nil {
		app.Use(s.accessLogs.Handler())
	}

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, X-Request-ID",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		MaxAge:       86400, // 24 hours
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/", s.Root)

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Uploaded event images
	app.Static(service.PublicUploadPrefix, s.images.Dir())

	api := app.Group("/api")

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	users := api.Group("/users")
	users.Get("/", s.ListUsers)
	users.Post("/", s.CreateUser)
	users.Get("/:id", s.GetUser)
	users.Put("/:id", s.UpdateUser)

	events := api.Group("/events")
	events.Get("/", s.ListEvents)
	events.Post("/", middleware.EventLimitWithPolicy(s.limiter, s.limitPolicy), s.CreateEvent)
	events.Get("/:id", s.GetEvent)
	events.Put("/:id", s.UpdateEvent)
	events.Delete("/:id", s.DeleteEvent)
	events.Post("/:id/image", s.UploadEventImage)
}

// Root handles GET /
// @Summary API status
// @Tags health
// @Produce json
// @Success 200 {object} MessageResponse
// @Router / [get]
func (s *Server) Root(c *fiber.Ctx) error {
	return c.JSON(MessageResponse{Message: "API is running"})
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
	dbStatus := "healthy"
	if err := database.Ping(c.UserContext(), s.db); err != nil {
		dbStatus = "unhealthy"
		middleware.Logger.WarnContext(c.UserContext(), "readiness check failed", slog.String("error", err.Error()))
	}

	status := fiber.StatusOK
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status": dbStatus,
		"checks": fiber.Map{
			"database": dbStatus,
		},
		"time": time.Now(),
	})
}

// handleError is the Fiber error handler for errors returned by handlers and middleware.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && fiberErr.Code == fiber.StatusRequestEntityTooLarge {
		// Only uploads carry bodies this large.
		return models.RespondWithError(c, s.images.TooLargeError())
	}
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(models.ErrorResponse{
			Message: fiberErr.Message,
			Code:    strings.ToUpper(strings.ReplaceAll(utils.StatusMessage(fiberErr.Code), " ", "_")),
		})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, err)
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
		}
	}

	if s.accessLogs != nil {
		if err := s.accessLogs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close access logs: %w", err))
		}
	}

	if err := database.Close(s.db); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}

	middleware.Logger.Info("Server shutdown complete")
	return errors.Join(errs...)
}
