package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/golf-league-matchups/internal/middleware"
	"github.com/trentd187/golf-league-matchups/internal/pairing"
	"github.com/trentd187/golf-league-matchups/internal/store"
)

// PairingsRequest is the JSON body of the pairing preview routes.
type PairingsRequest struct {
	// TeamIDs selects the teams playing this week. Empty means every team in the league.
	TeamIDs []int64 `json:"team_ids"`
	// Seed makes the proposal reproducible. Previews draw one from the clock when it is
	// missing; reshuffles require the seed of the proposal being replaced.
	Seed *int64 `json:"seed"`
	// ThroughWeek limits history to weeks numbered up to it. Zero uses every week.
	ThroughWeek int `json:"through_week"`
}

// CommitMatchesRequest is the JSON body of POST .../weeks/:weekID/matches.
type CommitMatchesRequest struct {
	CourseID  int64             `json:"course_id"`
	MatchDate *string           `json:"match_date"` // optional "YYYY-MM-DD"; defaults to the week's start
	Pairings  []pairing.Pairing `json:"pairings"`
}

// MatchResponse is one committed match.
type MatchResponse struct {
	ID         int64  `json:"id"`
	WeekID     int64  `json:"week_id"`
	CourseID   int64  `json:"course_id"`
	HomeTeamID int64  `json:"home_team_id"`
	AwayTeamID int64  `json:"away_team_id"`
	MatchDate  string `json:"match_date"`
}

// PreviewPairings returns a handler for POST /api/v1/leagues/:leagueID/pairings.
// Nothing is written: organizers preview, reshuffle, then commit.
func PreviewPairings(d *Deps) fiber.Handler {
	return previewPairings(d, false)
}

// ReshufflePairings returns a handler for POST /api/v1/leagues/:leagueID/pairings/reshuffle.
// It answers with the proposal for the next seed after the one given.
func ReshufflePairings(d *Deps) fiber.Handler {
	return previewPairings(d, true)
}

func previewPairings(d *Deps, reshuffle bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		leagueID, err := idParam(c, "leagueID")
		if err != nil {
			return err
		}

		var req PairingsRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "invalid request body",
				})
			}
		}
		if req.ThroughWeek < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "through_week must not be negative",
			})
		}

		var seed int64
		switch {
		case req.Seed != nil:
			seed = *req.Seed
		case reshuffle:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "seed is required to reshuffle",
			})
		default:
			seed = d.clock().Now().UnixMilli()
		}

		ctx := c.UserContext()
		teams, err := d.Store.SelectTeams(ctx, leagueID, req.TeamIDs)
		if err != nil {
			return storeError(c, d, err, "load teams")
		}

		// A history that cannot be loaded still gets the organizer a proposal, marked
		// as a fallback.
		var history pairing.Lookup
		h, err := d.Store.History(ctx, leagueID, store.HistoryFilter{ThroughWeek: req.ThroughWeek})
		if err != nil {
			middleware.RequestLog(c, d.Log).WithError(err).Warn("Matchup history unavailable, pairing without it")
			histErr := err
			history = pairing.LookupFunc(func(int64, int64) (int, error) { return 0, histErr })
		} else {
			history = h
		}

		var set pairing.Set
		if reshuffle {
			set = pairing.Reshuffle(teams, history, seed)
		} else {
			set = pairing.Generate(teams, history, seed)
		}
		return c.JSON(set)
	}
}

// CommitMatches returns a handler for POST /api/v1/leagues/:leagueID/weeks/:weekID/matches.
// Requires "admin" or "manager" on the route, and the caller must organize the league.
func CommitMatches(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		leagueID, err := idParam(c, "leagueID")
		if err != nil {
			return err
		}
		weekID, err := idParam(c, "weekID")
		if err != nil {
			return err
		}

		ctx := c.UserContext()
		league, err := d.Store.League(ctx, leagueID)
		if err != nil {
			return storeError(c, d, err, "load league")
		}
		if !isLeagueOrganizer(c, league) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "not authorized",
			})
		}

		var req CommitMatchesRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
		if req.CourseID <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "course_id is required",
			})
		}
		if len(req.Pairings) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "pairings are required",
			})
		}
		date, err := parseOptionalDate(req.MatchDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "match_date must be in YYYY-MM-DD format",
			})
		}

		commit := store.CommitRequest{
			LeagueID: leagueID,
			WeekID:   weekID,
			CourseID: req.CourseID,
			Pairings: req.Pairings,
		}
		if date != nil {
			commit.MatchDate = *date
		}
		matches, err := d.Store.CommitPairings(ctx, commit)
		if err != nil {
			return storeError(c, d, err, "commit matches")
		}

		middleware.RequestLog(c, d.Log).WithField("league_id", leagueID).
			WithField("week_id", weekID).
			WithField("matches", len(matches)).
			Info("Week matches committed")

		response := make([]MatchResponse, 0, len(matches))
		for _, m := range matches {
			response = append(response, MatchResponse{
				ID:         m.ID,
				WeekID:     m.WeekID,
				CourseID:   m.CourseID,
				HomeTeamID: m.HomeTeamID,
				AwayTeamID: m.AwayTeamID,
				MatchDate:  m.MatchDate.UTC().Format(time.DateOnly),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(response)
	}
}

// GetMatchups returns a handler for GET /api/v1/leagues/:leagueID/matchups.
// Optional query param: ?through_week=N counts only weeks up to N.
func GetMatchups(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		leagueID, err := idParam(c, "leagueID")
		if err != nil {
			return err
		}
		through := c.QueryInt("through_week", 0)
		if through < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "through_week must not be negative",
			})
		}

		ctx := c.UserContext()
		teams, err := d.Store.Teams(ctx, leagueID)
		if err != nil {
			return storeError(c, d, err, "load teams")
		}
		h, err := d.Store.History(ctx, leagueID, store.HistoryFilter{ThroughWeek: through})
		if err != nil {
			return storeError(c, d, err, "load matchup history")
		}
		return c.JSON(pairing.BuildMatrix(teams, h))
	}
}
