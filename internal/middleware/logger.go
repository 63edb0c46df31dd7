package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LocalRequestID is the c.Locals key holding the request id.
const LocalRequestID = "requestID"

// HeaderRequestID carries the request id in and out.
const HeaderRequestID = "X-Request-ID"

// RequestLogger tags every request with an id (the caller's X-Request-ID or a new
// UUID), echoes it in the response and logs one entry when the request finishes.
// Server errors log at error level, client errors at warn, the rest at info.
func RequestLogger(log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(LocalRequestID, id)
		c.Set(HeaderRequestID, id)

		err := c.Next()
		if err != nil {
			// Let the app's error handler write the response so the status is final.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		entry := log.WithFields(logrus.Fields{
			"request_id":  id,
			"http_method": c.Method(),
			"http_path":   c.Path(),
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.IP(),
		})
		if userID, ok := c.Locals(LocalUserID).(string); ok {
			entry = entry.WithField("user_id", userID)
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			entry.Error("Request failed")
		case status >= fiber.StatusBadRequest:
			entry.Warn("Request rejected")
		default:
			entry.Info("Request completed")
		}
		return nil
	}
}

// RequestLog returns a logger carrying the request id, for handlers.
func RequestLog(c *fiber.Ctx, log logrus.FieldLogger) logrus.FieldLogger {
	if id, ok := c.Locals(LocalRequestID).(string); ok {
		return log.WithField("request_id", id)
	}
	return log
}
