package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/golf-league-matchups/internal/scoring"
)

// StandingResponse is a standings row with the team's name.
type StandingResponse struct {
	scoring.Standing
	TeamName string `json:"team_name"`
}

// GetMatchResult returns a handler for GET /api/v1/matches/:matchID/result.
// The result is computed from the scores entered so far, so it is live while a match
// is being played.
func GetMatchResult(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		matchID, err := idParam(c, "matchID")
		if err != nil {
			return err
		}
		_, result, err := d.Store.Result(c.UserContext(), d.Holes, matchID)
		if err != nil {
			return storeError(c, d, err, "score match")
		}
		return c.JSON(result)
	}
}

// GetStandings returns a handler for GET /api/v1/leagues/:leagueID/standings.
func GetStandings(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		leagueID, err := idParam(c, "leagueID")
		if err != nil {
			return err
		}

		ctx := c.UserContext()
		results, err := d.Store.LeagueResults(ctx, d.Holes, leagueID)
		if err != nil {
			return storeError(c, d, err, "score league")
		}
		teams, err := d.Store.Teams(ctx, leagueID)
		if err != nil {
			return storeError(c, d, err, "load teams")
		}
		names := make(map[int64]string, len(teams))
		for _, t := range teams {
			names[t.ID] = t.Name
		}

		rows := scoring.Standings(results)
		response := make([]StandingResponse, 0, len(rows))
		for _, s := range rows {
			response = append(response, StandingResponse{Standing: s, TeamName: names[s.TeamID]})
		}
		return c.JSON(fiber.Map{
			"league_id": leagueID,
			"standings": response,
		})
	}
}
