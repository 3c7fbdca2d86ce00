package http

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"ripper/internal/config"
	"ripper/internal/credentials"
	"ripper/internal/engine"
	"ripper/internal/jobs"
	"ripper/internal/metrics"
	"ripper/internal/registry"
)

// Deps bundles the collaborators the handlers consume.
type Deps struct {
	Registry    *registry.Registry
	Runner      *jobs.Runner
	Engine      engine.Engine
	Credentials *credentials.Store
}

type Server struct {
	app    *fiber.App
	config *config.Config
	logger *slog.Logger
}

func NewServer(cfg *config.Config, deps Deps, logger *slog.Logger) *Server {
	app := fiber.New()

	// Inject config and collaborators into context for handlers
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("config", cfg)
		c.Locals("registry", deps.Registry)
		c.Locals("runner", deps.Runner)
		c.Locals("engine", deps.Engine)
		c.Locals("credentials", deps.Credentials)
		return c.Next()
	})

	// Request logging + metrics middleware
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()

		// Ensure a request ID exists
		reqID := c.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Locals("request_id", reqID)

		err := c.Next()

		latency := time.Since(start)
		status := c.Response().StatusCode()
		method := c.Method()
		path := c.Path()

		metrics.RecordRequest(method, path, status, latency.Milliseconds())

		if logger != nil {
			logger.Info("request",
				"request_id", reqID,
				"method", method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		}

		return err
	})

	// Redis client for rate limiting on job creation
	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		if opt, err := redis.ParseURL(cfg.Redis.URL); err == nil {
			rdb = redis.NewClient(opt)
		}
	}
	rateMw := rateLimitMiddleware(cfg, rdb)

	// Health endpoint
	app.Get("/healthz", func(c *fiber.Ctx) error {
		active := deps.Registry.ListWhere(func(j registry.Job) bool {
			return !j.State.Terminal()
		})
		return c.JSON(fiber.Map{
			"status":      "ok",
			"active_jobs": len(active),
		})
	})

	// Prometheus-style metrics endpoint
	app.Get("/metrics", func(c *fiber.Ctx) error {
		c.Type("text/plain")
		return c.SendString(metrics.Export())
	})

	app.Get("/", indexHandler)
	app.Post("/download-with-progress", rateMw, createDownloadHandler)
	app.Get("/progress/:id", progressHandler)
	app.Get("/get-file/:id", fileHandler)
	app.Get("/active-downloads", activeDownloadsHandler)
	app.Post("/upload-cookies", uploadCookiesHandler)

	return &Server{
		app:    app,
		config: cfg,
		logger: logger,
	}
}

func (s *Server) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	return s.app.Listen(addr)
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
