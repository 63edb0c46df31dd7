// Package handlers contains the HTTP route handler functions for the league API.
//
// Each exported function follows the handler factory pattern: it takes the shared
// *Deps and returns a fiber.Handler, so nothing lives in package globals.
//
// Access control has two layers. Route-level middleware.RequireRole decides who may
// call a route at all. Resource-level isLeagueOrganizer decides who may change one
// particular league: admins may change any league, and managers only the leagues they
// created.
package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/trentd187/golf-league-matchups/internal/middleware"
	"github.com/trentd187/golf-league-matchups/internal/models"
	"github.com/trentd187/golf-league-matchups/internal/store"
	"github.com/trentd187/golf-league-matchups/internal/websocket"
)

// Deps is what the handlers share.
type Deps struct {
	Store *store.Store
	// Holes serves course layouts, usually through the LRU cache.
	Holes store.HoleSource
	// Live receives recomputed results. It may be nil.
	Live websocket.Broadcaster
	// Hub holds the live result sockets. Required only by MatchSocket.
	Hub   *websocket.Hub
	Clock clockwork.Clock
	Log   logrus.FieldLogger
}

func (d *Deps) clock() clockwork.Clock {
	if d.Clock == nil {
		return clockwork.NewRealClock()
	}
	return d.Clock
}

// idParam reads a positive integer route parameter.
// A bad value comes back as a *fiber.Error with status 400; the handler returns it
// unchanged and ErrorHandler writes the response.
func idParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, name+" must be a positive integer")
	}
	return id, nil
}

// ErrorHandler is the app's fiber.Config.ErrorHandler. Errors that escape a handler get
// the same {"error": ...} body as the responses handlers write themselves. A *fiber.Error
// keeps its status code, anything else is a 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// storeError writes the response for an error returned by the store. action completes
// the sentence "failed to ..." in the body of a 500.
func storeError(c *fiber.Ctx, d *Deps, err error, action string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, store.ErrInvalid):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, store.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	middleware.RequestLog(c, d.Log).WithError(err).Error("Failed to " + action)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "failed to " + action,
	})
}

// isLeagueOrganizer reports whether the calling user may change the league.
func isLeagueOrganizer(c *fiber.Ctx, league *models.League) bool {
	role, _ := c.Locals(middleware.LocalUserRole).(string)
	if models.UserRole(role) == models.UserRoleAdmin {
		return true
	}
	userID, ok := middleware.UserID(c)
	return ok && league.CreatedBy != nil && *league.CreatedBy == userID
}

// currentUser returns the caller's id, or nil on routes without Auth.
func currentUser(c *fiber.Ctx) *uuid.UUID {
	id, ok := middleware.UserID(c)
	if !ok {
		return nil
	}
	return &id
}
