package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/trentd187/golf-league-matchups/internal/handicap"
	"github.com/trentd187/golf-league-matchups/internal/middleware"
	"github.com/trentd187/golf-league-matchups/internal/scoring"
	"github.com/trentd187/golf-league-matchups/internal/store"
	"github.com/trentd187/golf-league-matchups/internal/websocket"
)

// ScoresRequest is the JSON body of PUT /api/v1/matches/:matchID/scores.
// An entry with "strokes": null clears that hole for the player.
type ScoresRequest struct {
	Scores []store.ScoreEntry `json:"scores"`
}

// PutScores returns a handler for PUT /api/v1/matches/:matchID/scores.
//
// The whole batch is checked before anything is written: every player must be in the
// match's lineup, every hole on its course, and every stroke count between 1 and 20.
// A bad batch is rejected with 422 and the list of problems. A good batch is saved and
// the match rescored in one transaction, and the new result is pushed to live watchers.
func PutScores(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		matchID, err := idParam(c, "matchID")
		if err != nil {
			return err
		}

		var req ScoresRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
		if len(req.Scores) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "scores are required",
			})
		}

		ctx := c.UserContext()
		data, err := d.Store.LoadMatch(ctx, matchID)
		if err != nil {
			return storeError(c, d, err, "load match")
		}
		holes, err := d.Holes.CourseHoles(ctx, data.CourseID)
		if err != nil {
			return storeError(c, d, err, "load course")
		}

		if problems := checkScores(data, holes, req.Scores); len(problems) > 0 {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":   "invalid scores",
				"details": problems,
			})
		}

		result, err := d.Store.ScoreMatch(ctx, holes, matchID, req.Scores, currentUser(c))
		if err != nil {
			return storeError(c, d, err, "save scores")
		}

		log := middleware.RequestLog(c, d.Log).WithFields(logrus.Fields{
			"match_id": matchID,
			"entries":  len(req.Scores),
			"home":     result.Home.TotalPoints,
			"away":     result.Away.TotalPoints,
		})
		log.Info("Scores saved")

		if d.Live != nil {
			if msg, err := websocket.EncodeResult(result); err != nil {
				log.WithError(err).Error("Could not encode match result")
			} else if err := d.Live.BroadcastMatch(ctx, matchID, msg); err != nil {
				log.WithError(err).Warn("Could not publish match result")
			}
		}
		return c.JSON(result)
	}
}

func checkScores(data *store.MatchData, holes []handicap.Hole, entries []store.ScoreEntry) []string {
	onCourse := make(map[int64]bool, len(holes))
	for _, h := range holes {
		onCourse[h.ID] = true
	}

	type cell struct{ player, hole int64 }
	seen := make(map[cell]bool, len(entries))

	var problems []string
	for i, e := range entries {
		if _, ok := data.Player(e.PlayerID); !ok {
			problems = append(problems, fmt.Sprintf("scores[%d]: player %d is not in this match", i, e.PlayerID))
		}
		if !onCourse[e.HoleID] {
			problems = append(problems, fmt.Sprintf("scores[%d]: hole %d is not on this course", i, e.HoleID))
		}
		if e.Strokes != nil && !scoring.ValidStrokes(*e.Strokes) {
			problems = append(problems, fmt.Sprintf("scores[%d]: strokes must be between %d and %d",
				i, scoring.MinStrokes, scoring.MaxStrokes))
		}
		k := cell{e.PlayerID, e.HoleID}
		if seen[k] {
			problems = append(problems, fmt.Sprintf("scores[%d]: player %d hole %d is listed twice", i, e.PlayerID, e.HoleID))
		}
		seen[k] = true
	}
	return problems
}
