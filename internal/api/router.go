package api

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/facelens/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/facelens/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/facelens/internal/api/middleware"
)

// Version is reported by the health endpoint
const Version = "0.1.0"

// multipart framing on top of the uploaded files
const formOverhead = 64 * 1024

type Config struct {
	Host             string
	CORSAllowOrigins string
	// MaxImageSize bounds one uploaded file; /compare carries two
	MaxImageSize    int
	RateLimitMax    int
	RateLimitWindow time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
}

type Dependencies struct {
	FaceService  handler.FaceService
	ProviderName string
}

type Router struct {
	app         *fiber.App
	logger      *slog.Logger
	config      Config
	deps        *Dependencies
	rateLimiter *middleware.RateLimiter
}

func NewRouter(logger *slog.Logger, cfg Config, deps *Dependencies) *Router {
	if cfg.MaxImageSize <= 0 {
		cfg.MaxImageSize = handler.DefaultMaxImageSize
	}
	if cfg.CORSAllowOrigins == "" {
		cfg.CORSAllowOrigins = "*"
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "FaceLens API",
		BodyLimit:    2*cfg.MaxImageSize + formOverhead,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	return &Router{
		app:    app,
		logger: logger,
		config: cfg,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins:  r.config.CORSAllowOrigins,
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept",
		ExposeHeaders: strings.Join([]string{handler.HeaderFacesDetected, handler.HeaderDetectionStatus}, ","),
	}))

	// Swagger documentation
	sw := docs.NewSwagger(r.config.Host)
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	providerName := ""
	if r.deps != nil {
		providerName = r.deps.ProviderName
	}

	// Health check endpoints (not rate limited)
	healthHandler := handler.NewHealthHandler(Version, providerName)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	if r.deps == nil || r.deps.FaceService == nil {
		return
	}

	// Rate limiting per client IP
	r.rateLimiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Max:    r.config.RateLimitMax,
		Window: r.config.RateLimitWindow,
	})
	limit := r.rateLimiter.Handler()

	faceHandler := handler.NewFaceHandler(r.deps.FaceService, int64(r.config.MaxImageSize), r.logger)

	// Face routes
	r.app.Post("/analyze", limit, faceHandler.Analyze)
	r.app.Post("/compare", limit, faceHandler.Compare)
	r.app.Post("/detect_and_return", limit, faceHandler.DetectAndReturn)
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	// Stop rate limiter cleanup goroutine
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}

	return r.app.Shutdown()
}

// ShutdownWithTimeout waits up to timeout for in-flight requests to finish.
func (r *Router) ShutdownWithTimeout(timeout time.Duration) error {
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}

	return r.app.ShutdownWithTimeout(timeout)
}
