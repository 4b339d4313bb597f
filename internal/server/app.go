// Package server assembles the Fiber application of the registry.
package server

import (
	"errors"
	"time"

	"citoyens/internal/config"
	"citoyens/internal/handlers"
	"citoyens/internal/metrics"
	"citoyens/internal/middleware"
	"citoyens/internal/models"
	"citoyens/internal/services"
	"citoyens/internal/validation"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

// Dependencies groups everything NewApp wires together.
type Dependencies struct {
	Config   config.Config
	Log      logrus.FieldLogger
	Metrics  *metrics.Metrics
	Citizens *services.CitizenService
	Logs     *services.LogService
	// Auth is nil when no administrator is configured; the log API is then not mounted.
	Auth      *services.AuthService
	AccessLog middleware.Enqueuer
	StoreName string
}

type discardQueue struct{}

func (discardQueue) Enqueue(models.LogEntry) bool { return false }

// BodyLimit fits the largest accepted photo as base64 plus the rest of the JSON body.
const BodyLimit = validation.MaxPhotoBytes*4/3 + 64*1024

// FiberConfig returns the Fiber settings shared by the server and the tests.
func FiberConfig(appName string, log logrus.FieldLogger) fiber.Config {
	return fiber.Config{
		AppName:      appName,
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		ReadTimeout:  60 * time.Second,
		BodyLimit:    BodyLimit,
		ErrorHandler: errorHandler(log),
	}
}

// errorHandler renders errors that escaped the handlers with the uniform error body.
func errorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "An unexpected error occurred"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		} else {
			log.WithError(err).WithField("path", c.Path()).Error("unhandled request error")
		}

		title := "Internal server error"
		switch {
		case code == fiber.StatusNotFound:
			title = "Route not found"
		case code < 500:
			title = "Request error"
		}
		return c.Status(code).JSON(fiber.Map{
			"error":   title,
			"message": message,
		})
	}
}

// NewApp builds the application with every route mounted.
func NewApp(deps Dependencies) *fiber.App {
	if deps.AccessLog == nil {
		deps.AccessLog = discardQueue{}
	}

	app := fiber.New(FiberConfig(deps.Config.AppName, deps.Log))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.AccessLogger(deps.AccessLog, deps.Metrics))
	// after the access logger so panics are recorded as 500s
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"store":  deps.StoreName,
		})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", deps.Metrics.Handler())
	}

	api := app.Group("/api")
	handlers.NewCitizenHandler(deps.Citizens, deps.Log, deps.Metrics, deps.Config.DefaultPageLimit).RegisterRoutes(api)

	if deps.Auth != nil && deps.Logs != nil {
		handlers.NewAuthHandler(deps.Auth, deps.Log).RegisterRoutes(api)
		handlers.NewLogHandler(deps.Logs, deps.Log).RegisterRoutes(api, middleware.AuthRequired(deps.Auth, deps.Log))
	}

	return app
}
