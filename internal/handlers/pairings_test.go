package handlers

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trentd187/golf-league-matchups/internal/models"
	"github.com/trentd187/golf-league-matchups/internal/pairing"
	"github.com/trentd187/golf-league-matchups/internal/testdb"
)

func leagueTeams(l *testdb.League) []pairing.Team {
	teams := make([]pairing.Team, len(l.Teams))
	for i, t := range l.Teams {
		teams[i] = pairing.Team{ID: t.ID, Name: t.Name}
	}
	return teams
}

func pairingsPath(l *testdb.League) string {
	return fmt.Sprintf("/api/v1/leagues/%d/pairings", l.League.ID)
}

func TestPreviewPairingsIsReproducible(t *testing.T) {
	e := newEnv(t, testdb.Options{Teams: 5, Weeks: 1})
	admin := e.token(t, "admin-1", "admin")

	status, raw := e.do(t, fiber.MethodPost, pairingsPath(e.league), admin, fiber.Map{"seed": 7})
	require.Equal(t, fiber.StatusOK, status, string(raw))
	got := decode[pairing.Set](t, raw)

	want := pairing.Generate(leagueTeams(e.league), pairing.NewHistory(), 7)
	assert.Equal(t, want, got)
	assert.Len(t, got.Pairings, 2)
	assert.NotNil(t, got.Bye)
	assert.Equal(t, pairing.MethodExact, got.Method)

	// Same seed, same answer.
	status, raw = e.do(t, fiber.MethodPost, pairingsPath(e.league), admin, fiber.Map{"seed": 7})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, got, decode[pairing.Set](t, raw))

	status, raw = e.do(t, fiber.MethodPost, pairingsPath(e.league)+"/reshuffle", admin, fiber.Map{"seed": 7})
	require.Equal(t, fiber.StatusOK, status, string(raw))
	reshuffled := decode[pairing.Set](t, raw)
	assert.Equal(t, int64(8), reshuffled.Seed)
	assert.Equal(t, pairing.Generate(leagueTeams(e.league), pairing.NewHistory(), 8), reshuffled)
}

func TestPreviewPairingsDrawsSeedFromClock(t *testing.T) {
	e := newEnv(t, testdb.Options{Teams: 4})
	status, raw := e.do(t, fiber.MethodPost, pairingsPath(e.league), e.token(t, "admin-1", "admin"), nil)
	require.Equal(t, fiber.StatusOK, status, string(raw))
	got := decode[pairing.Set](t, raw)
	assert.Equal(t, e.clock.Now().UnixMilli(), got.Seed)
	assert.Len(t, got.Pairings, 2)
}

func TestPreviewPairingsSelectsTeams(t *testing.T) {
	e := newEnv(t, testdb.Options{Teams: 4})
	admin := e.token(t, "admin-1", "admin")
	a, b := e.league.Teams[0].ID, e.league.Teams[2].ID

	status, raw := e.do(t, fiber.MethodPost, pairingsPath(e.league), admin, fiber.Map{
		"seed":     3,
		"team_ids": []int64{a, b},
	})
	require.Equal(t, fiber.StatusOK, status, string(raw))
	got := decode[pairing.Set](t, raw)
	require.Len(t, got.Pairings, 1)
	assert.Equal(t, pairing.Key(a, b), got.Pairings[0].Key)

	status, raw = e.do(t, fiber.MethodPost, pairingsPath(e.league), admin, fiber.Map{
		"seed":     3,
		"team_ids": []int64{a},
	})
	require.Equal(t, fiber.StatusOK, status)
	alone := decode[pairing.Set](t, raw)
	assert.Empty(t, alone.Pairings)
	assert.Equal(t, pairing.ReasonInsufficientTeams, alone.Reason)
}

func TestPreviewPairingsAvoidsRepeats(t *testing.T) {
	e := newEnv(t, testdb.Options{Teams: 4, Weeks: 2})
	teams := e.league.Teams
	e.league.AddMatch(t, e.db, e.league.Weeks[0], teams[0], teams[1])
	e.league.AddMatch(t, e.db, e.league.Weeks[0], teams[2], teams[3])
	admin := e.token(t, "admin-1", "admin")

	for seed := 0; seed < 10; seed++ {
		status, raw := e.do(t, fiber.MethodPost, pairingsPath(e.league), admin, fiber.Map{"seed": seed})
		require.Equal(t, fiber.StatusOK, status)
		got := decode[pairing.Set](t, raw)
		assert.False(t, got.HasDuplicates, "seed %d", seed)
		assert.Equal(t, 0, got.TotalScore, "seed %d", seed)
		for _, p := range got.Pairings {
			assert.NotEqual(t, pairing.Key(teams[0].ID, teams[1].ID), p.Key)
			assert.NotEqual(t, pairing.Key(teams[2].ID, teams[3].ID), p.Key)
		}
	}
}

func TestPreviewPairingsFallsBackWithoutHistory(t *testing.T) {
	e := newEnv(t, testdb.Options{Teams: 4, Weeks: 1})
	require.NoError(t, e.db.Migrator().DropTable(&models.Week{}))

	status, raw := e.do(t, fiber.MethodPost, pairingsPath(e.league), e.token(t, "admin-1", "admin"), fiber.Map{"seed": 11})
	require.Equal(t, fiber.StatusOK, status, string(raw))
	got := decode[pairing.Set](t, raw)
	assert.True(t, got.UsedFallback)
	assert.Equal(t, pairing.ReasonHistoryUnavailable, got.Reason)
	assert.Len(t, got.Pairings, 2)
}

func TestPreviewPairingsRejects(t *testing.T) {
	e := newEnv(t, testdb.Options{Teams: 4})
	admin := e.token(t, "admin-1", "admin")

	status, _ := e.do(t, fiber.MethodPost, pairingsPath(e.league), e.token(t, "player-1", "user"), fiber.Map{"seed": 1})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = e.do(t, fiber.MethodPost, "/api/v1/leagues/999/pairings", admin, fiber.Map{"seed": 1})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = e.do(t, fiber.MethodPost, "/api/v1/leagues/abc/pairings", admin, fiber.Map{"seed": 1})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = e.do(t, fiber.MethodPost, pairingsPath(e.league), admin, fiber.Map{"seed": 1, "team_ids": []int64{12345}})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = e.do(t, fiber.MethodPost, pairingsPath(e.league), admin, fiber.Map{"seed": 1, "through_week": -1})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, raw := e.do(t, fiber.MethodPost, pairingsPath(e.league)+"/reshuffle", admin, fiber.Map{})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, string(raw), "seed is required")
}

func TestCommitMatches(t *testing.T) {
	e := newEnv(t, testdb.Options{Teams: 4, Holes: 9, Weeks: 2})
	teams := e.league.Teams
	week := e.league.Weeks[0]
	path := fmt.Sprintf("/api/v1/leagues/%d/weeks/%d/matches", e.league.League.ID, week.ID)
	body := fiber.Map{
		"course_id": e.league.Course.ID,
		"pairings": []fiber.Map{
			{"team1": fiber.Map{"id": teams[0].ID}, "team2": fiber.Map{"id": teams[1].ID}},
			{"team1": fiber.Map{"id": teams[3].ID}, "team2": fiber.Map{"id": teams[2].ID}},
		},
	}

	// A manager may only commit for leagues they created.
	manager := e.token(t, "mgr-1", "manager")
	status, _ := e.do(t, fiber.MethodPost, path, manager, body)
	assert.Equal(t, fiber.StatusForbidden, status)

	user := e.user(t, "mgr-1", "manager")
	require.NoError(t, e.db.Model(&e.league.League).Update("created_by", user.ID).Error)

	status, raw := e.do(t, fiber.MethodPost, path, manager, body)
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	matches := decode[[]MatchResponse](t, raw)
	require.Len(t, matches, 2)
	assert.Equal(t, teams[3].ID, matches[1].HomeTeamID)
	assert.Equal(t, teams[2].ID, matches[1].AwayTeamID)
	assert.Equal(t, "2024-05-06", matches[0].MatchDate)

	// Committing the same teams again for that week conflicts.
	status, _ = e.do(t, fiber.MethodPost, path, e.token(t, "admin-1", "admin"), body)
	assert.Equal(t, fiber.StatusConflict, status)

	// The matrix now shows both meetings.
	status, raw = e.do(t, fiber.MethodGet, fmt.Sprintf("/api/v1/leagues/%d/matchups", e.league.League.ID), manager, nil)
	require.Equal(t, fiber.StatusOK, status, string(raw))
	matrix := decode[pairing.Matrix](t, raw)
	assert.Equal(t, 1, matrix.Counts[teams[0].ID][teams[1].ID])
	assert.Equal(t, 1, matrix.Counts[teams[2].ID][teams[3].ID])
	assert.Equal(t, 0, matrix.Counts[teams[0].ID][teams[2].ID])
}

func TestCommitMatchesRejects(t *testing.T) {
	e := newEnv(t, testdb.Options{Teams: 4, Holes: 9, Weeks: 1})
	teams := e.league.Teams
	admin := e.token(t, "admin-1", "admin")
	path := fmt.Sprintf("/api/v1/leagues/%d/weeks/%d/matches", e.league.League.ID, e.league.Weeks[0].ID)
	pair := func(a, b int64) fiber.Map {
		return fiber.Map{"team1": fiber.Map{"id": a}, "team2": fiber.Map{"id": b}}
	}

	cases := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{"user role", path, fiber.Map{}, fiber.StatusForbidden},
		{"no course", path, fiber.Map{"pairings": []fiber.Map{pair(teams[0].ID, teams[1].ID)}}, fiber.StatusBadRequest},
		{"no pairings", path, fiber.Map{"course_id": e.league.Course.ID}, fiber.StatusBadRequest},
		{"bad date", path, fiber.Map{
			"course_id":  e.league.Course.ID,
			"match_date": "June 4",
			"pairings":   []fiber.Map{pair(teams[0].ID, teams[1].ID)},
		}, fiber.StatusBadRequest},
		{"team paired twice", path, fiber.Map{
			"course_id": e.league.Course.ID,
			"pairings":  []fiber.Map{pair(teams[0].ID, teams[1].ID), pair(teams[0].ID, teams[2].ID)},
		}, fiber.StatusBadRequest},
		{"unknown course", path, fiber.Map{
			"course_id": 999,
			"pairings":  []fiber.Map{pair(teams[0].ID, teams[1].ID)},
		}, fiber.StatusNotFound},
		{"unknown week", fmt.Sprintf("/api/v1/leagues/%d/weeks/999/matches", e.league.League.ID), fiber.Map{
			"course_id": e.league.Course.ID,
			"pairings":  []fiber.Map{pair(teams[0].ID, teams[1].ID)},
		}, fiber.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token := admin
			if tc.status == fiber.StatusForbidden {
				token = e.token(t, "player-1", "user")
			}
			status, raw := e.do(t, fiber.MethodPost, tc.path, token, tc.body)
			assert.Equal(t, tc.status, status, string(raw))
		})
	}

	var count int64
	require.NoError(t, e.db.Model(&models.Match{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGetMatchupsThroughWeek(t *testing.T) {
	e := newEnv(t, testdb.Options{Teams: 2, Weeks: 2})
	teams := e.league.Teams
	e.league.AddMatch(t, e.db, e.league.Weeks[0], teams[0], teams[1])
	e.league.AddMatch(t, e.db, e.league.Weeks[1], teams[1], teams[0])
	token := e.token(t, "player-1", "user")
	path := fmt.Sprintf("/api/v1/leagues/%d/matchups", e.league.League.ID)

	status, raw := e.do(t, fiber.MethodGet, path, token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 2, decode[pairing.Matrix](t, raw).Counts[teams[0].ID][teams[1].ID])

	status, raw = e.do(t, fiber.MethodGet, path+"?through_week=1", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1, decode[pairing.Matrix](t, raw).Counts[teams[0].ID][teams[1].ID])

	status, _ = e.do(t, fiber.MethodGet, "/api/v1/leagues/999/matchups", token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}
