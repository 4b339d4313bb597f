package middleware

import (
	"time"

	"citoyens/internal/accesslog"
	"citoyens/internal/metrics"
	"citoyens/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// Enqueuer accepts access log entries without blocking.
type Enqueuer interface {
	Enqueue(entry models.LogEntry) bool
}

// AccessLogger records every completed request. The entry is handed to queue once the
// response status is known; the request never waits on the log write.
func AccessLogger(queue Enqueuer, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Let the error handler settle the status before it is recorded.
		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		m.ObserveRequest(c.Method(), status)

		// fiber strings alias request buffers that are reused once the handler returns
		queue.Enqueue(accesslog.NewEntry(accesslog.Request{
			Start:     start,
			Duration:  time.Since(start),
			Method:    utils.CopyString(c.Method()),
			URL:       utils.CopyString(c.OriginalURL()),
			Path:      c.Path(),
			Status:    status,
			IP:        utils.CopyString(c.IP()),
			UserAgent: utils.CopyString(c.Get(fiber.HeaderUserAgent)),
			Body:      c.Body(),
		}))
		return nil
	}
}
