// Package middleware contains HTTP middleware functions for the league API.
// This file handles role-based access control (RBAC): checking that the
// authenticated user is allowed to call the requested route at all.
package middleware

// roles.go: role-based access control middleware.
// The app has three roles: admin, manager, user. Managers run league weeks
// (pairings, committed matches); everyone signed in may enter scores.
// Whether a manager may touch one particular league is decided later, inside the
// handler, because that needs the league row.

import (
	// slices.Contains replaces the hand-written "is this role in the list" loop.
	"slices"

	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/golf-league-matchups/internal/models"
)

// Organizers are the roles allowed to create leagues and run their weeks.
// Spread it into RequireRole with the "..." syntax:
//
//	middleware.RequireRole(middleware.Organizers...)
var Organizers = []models.UserRole{models.UserRoleAdmin, models.UserRoleManager}

// RequireRole returns a middleware handler that allows only users whose role
// matches one of the provided roles. Returns HTTP 403 Forbidden if the role
// doesn't match.
//
// It accepts a variadic list of roles so one call can allow several:
//
//	api.Post("/leagues/:leagueID/weeks/:weekID/matches", middleware.RequireRole(middleware.Organizers...), handlers.CommitMatches(d))
//
// RequireRole must be used AFTER the Auth middleware, because Auth is what
// stores the caller's role in the request context via c.Locals(LocalUserRole).
func RequireRole(roles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// c.Locals returns an interface{}; the .(string) type assertion pulls the
		// role string back out. ok is false if Auth never set it.
		userRole, ok := c.Locals(LocalUserRole).(string)
		if !ok || userRole == "" {
			// No role means Auth was not applied to this route. Deny with 403
			// rather than 401: the caller may well be signed in, we just can't tell
			// what they are allowed to do.
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "forbidden",
			})
		}

		// Convert the plain string back into the typed role and look it up in the
		// allowed list. A match lets the request continue to the next handler.
		if slices.Contains(roles, models.UserRole(userRole)) {
			return c.Next()
		}

		// Authenticated but not authorized for this route.
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "insufficient permissions",
		})
	}
}
