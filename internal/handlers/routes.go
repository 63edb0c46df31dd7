package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/golf-league-matchups/internal/middleware"
)

// Register mounts every route on app. auth is the JWT middleware guarding /api/v1.
// The live socket is mounted only when d.Hub is set.
func Register(app *fiber.App, d *Deps, auth fiber.Handler) {
	app.Get("/health", HealthCheck)
	app.Get("/health/ready", Readiness(d))

	organizers := middleware.RequireRole(middleware.Organizers...)

	api := app.Group("/api/v1", auth)

	// Leagues
	api.Get("/leagues", GetLeagues(d))
	api.Post("/leagues", organizers, CreateLeague(d))

	// Weekly pairings: preview and reshuffle write nothing, commit creates the matches.
	api.Post("/leagues/:leagueID/pairings", organizers, PreviewPairings(d))
	api.Post("/leagues/:leagueID/pairings/reshuffle", organizers, ReshufflePairings(d))
	api.Post("/leagues/:leagueID/weeks/:weekID/matches", organizers, CommitMatches(d))
	api.Get("/leagues/:leagueID/matchups", GetMatchups(d))
	api.Get("/leagues/:leagueID/standings", GetStandings(d))

	// Scoring
	api.Get("/matches/:matchID/result", GetMatchResult(d))
	api.Put("/matches/:matchID/scores", PutScores(d))

	// Live results are public and read-only, like a scoreboard.
	if d.Hub != nil {
		app.Get("/ws/matches/:matchID", MatchSocketUpgrade(d), MatchSocket(d))
	}
}
