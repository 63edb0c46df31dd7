package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck handles GET /health.
// It answers without touching the database or checking a token, so health checks can
// tell a live process from a ready one. Container liveness checks and load balancers
// call it.
//
// c *fiber.Ctx is the request context: it carries the request and the methods for
// writing the response. Every Fiber handler has this signature.
func HealthCheck(c *fiber.Ctx) error {
	// c.JSON serializes the map and sends it with 200 OK.
	// fiber.Map is shorthand for map[string]interface{}.
	return c.JSON(fiber.Map{"status": "ok"})
}

// Readiness handles GET /health/ready. It reports 503 while the database is unreachable,
// so the orchestrator stops routing traffic here until the connection recovers.
func Readiness(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Bound the ping: a check that hangs is as bad as one that fails.
		// cancel must always run to release the timer, hence the defer.
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := d.Store.Ping(ctx); err != nil {
			d.Log.WithError(err).Warn("Readiness check failed")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
				"error":  "database unreachable",
			})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
