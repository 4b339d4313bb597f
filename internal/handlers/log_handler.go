package handlers

import (
	"time"

	"citoyens/internal/models"
	"citoyens/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// LogHandler exposes the recorded access logs.
type LogHandler struct {
	service  *services.LogService
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewLogHandler creates a new LogHandler.
func NewLogHandler(service *services.LogService, log logrus.FieldLogger) *LogHandler {
	return &LogHandler{
		service:  service,
		validate: validator.New(),
		log:      log,
	}
}

// RegisterRoutes registers the log routes. Callers mount them behind authentication.
func (h *LogHandler) RegisterRoutes(router fiber.Router, middlewares ...fiber.Handler) {
	handlers := func(final fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, middlewares...), final)
	}
	router.Get("/logs", handlers(h.HandleListLogs)...)
	router.Get("/logs/stats", handlers(h.HandleLogStats)...)
}

// LogQuery holds the filters accepted by the log endpoints.
type LogQuery struct {
	Service string `query:"service"`
	Level   string `query:"level" validate:"omitempty,oneof=success info warning error"`
	Start   string `query:"start" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	End     string `query:"end" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Limit   int    `query:"limit" validate:"gte=0,lte=1000"`
}

func (h *LogHandler) parseFilter(c *fiber.Ctx) (models.LogFilter, error) {
	var q LogQuery
	if err := c.QueryParser(&q); err != nil {
		return models.LogFilter{}, err
	}
	if err := h.validate.Struct(q); err != nil {
		return models.LogFilter{}, err
	}

	filter := models.LogFilter{Service: q.Service, Level: q.Level, Limit: q.Limit}
	if q.Start != "" {
		start, err := time.Parse(time.RFC3339, q.Start)
		if err != nil {
			return models.LogFilter{}, err
		}
		start = start.UTC()
		filter.Start = &start
	}
	if q.End != "" {
		end, err := time.Parse(time.RFC3339, q.End)
		if err != nil {
			return models.LogFilter{}, err
		}
		end = end.UTC()
		filter.End = &end
	}
	return filter, nil
}

// HandleListLogs returns the log entries matching the query, newest first.
func (h *LogHandler) HandleListLogs(c *fiber.Ctx) error {
	filter, err := h.parseFilter(c)
	if err != nil {
		return invalidRequest(c, err)
	}

	entries, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		h.log.WithError(err).Error("error listing access logs")
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error", "Could not retrieve the logs")
	}
	if entries == nil {
		entries = []models.LogEntry{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    entries,
		"count":   len(entries),
	})
}

// HandleLogStats returns aggregate counters over the entries matching the query.
func (h *LogHandler) HandleLogStats(c *fiber.Ctx) error {
	filter, err := h.parseFilter(c)
	if err != nil {
		return invalidRequest(c, err)
	}

	stats, err := h.service.Stats(c.UserContext(), filter)
	if err != nil {
		h.log.WithError(err).Error("error computing access log stats")
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error", "Could not compute the log statistics")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    stats,
	})
}
