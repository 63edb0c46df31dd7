package store

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trentd187/golf-league-matchups/internal/models"
	"github.com/trentd187/golf-league-matchups/internal/pairing"
	"github.com/trentd187/golf-league-matchups/internal/scoring"
	"github.com/trentd187/golf-league-matchups/internal/testdb"
)

func intPtr(n int) *int { return &n }

func TestCourseHoles(t *testing.T) {
	db := testdb.Open(t)
	league := testdb.Seed(t, db, testdb.Options{Holes: 9})
	s := New(db)
	ctx := context.Background()

	holes, err := s.CourseHoles(ctx, league.Course.ID)
	require.NoError(t, err)
	require.Len(t, holes, 9)
	for i, h := range holes {
		assert.Equal(t, i+1, h.Number)
		require.NotNil(t, h.Difficulty)
		assert.Equal(t, i+1, *h.Difficulty)
	}

	_, err = s.CourseHoles(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTeamsAndSelect(t *testing.T) {
	db := testdb.Open(t)
	league := testdb.Seed(t, db, testdb.Options{Teams: 4})
	s := New(db)
	ctx := context.Background()

	teams, err := s.Teams(ctx, league.League.ID)
	require.NoError(t, err)
	require.Len(t, teams, 4)
	assert.Equal(t, "Team 1", teams[0].Name)

	picked, err := s.SelectTeams(ctx, league.League.ID, []int64{league.Teams[2].ID, league.Teams[0].ID})
	require.NoError(t, err)
	require.Len(t, picked, 2)
	assert.Equal(t, league.Teams[2].ID, picked[0].ID)
	assert.Equal(t, league.Teams[0].ID, picked[1].ID)

	_, err = s.SelectTeams(ctx, league.League.ID, []int64{league.Teams[0].ID, 9999})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = s.Teams(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistory(t *testing.T) {
	db := testdb.Open(t)
	league := testdb.Seed(t, db, testdb.Options{Teams: 4, Holes: 9, Weeks: 2})
	s := New(db)
	ctx := context.Background()
	t1, t2, t3, t4 := league.Teams[0], league.Teams[1], league.Teams[2], league.Teams[3]

	league.AddMatch(t, db, league.Weeks[0], t1, t2)
	league.AddMatch(t, db, league.Weeks[0], t3, t4)
	league.AddMatch(t, db, league.Weeks[1], t3, t1)
	league.AddMatch(t, db, league.Weeks[1], t2, t4)

	h, err := s.History(ctx, league.League.ID, HistoryFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, h.Count(t1.ID, t2.ID))
	assert.Equal(t, 1, h.Count(t1.ID, t3.ID))
	assert.Equal(t, 0, h.Count(t1.ID, t4.ID))

	meetings := h.Meetings(t2.ID, t1.ID)
	require.Len(t, meetings, 1)
	assert.Equal(t, 1, meetings[0].WeekNumber)
	assert.Equal(t, league.Weeks[0].ID, meetings[0].WeekID)
	assert.True(t, meetings[0].Date.Equal(league.Weeks[0].StartDate))

	h, err = s.History(ctx, league.League.ID, HistoryFilter{ThroughWeek: 1})
	require.NoError(t, err)
	assert.Equal(t, 0, h.Count(t1.ID, t3.ID))
	assert.Equal(t, 1, h.Count(t3.ID, t4.ID))

	h, err = s.History(ctx, league.League.ID, HistoryFilter{TeamIDs: []int64{t1.ID, t2.ID, t3.ID}})
	require.NoError(t, err)
	assert.Equal(t, 0, h.Count(t3.ID, t4.ID))
	assert.Equal(t, 1, h.Count(t1.ID, t2.ID))
}

func TestLoadMatchUsesRosters(t *testing.T) {
	db := testdb.Open(t)
	league := testdb.Seed(t, db, testdb.Options{Teams: 2, PlayersPerTeam: 2, Holes: 9, Weeks: 1})
	s := New(db)
	home, away := league.Teams[0], league.Teams[1]
	m := league.AddMatch(t, db, league.Weeks[0], home, away)
	league.PostScores(t, db, m, league.Players[home.ID][0], 5)

	data, err := s.LoadMatch(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, home.ID, data.Match.HomeTeamID)
	assert.Equal(t, league.Course.ID, data.CourseID)
	require.Len(t, data.Home, 2)
	require.Len(t, data.Away, 2)
	assert.Equal(t, "Player 1-1", data.Home[0].Name)
	assert.Equal(t, "Player 2-2", data.Away[1].Name)
	require.NotNil(t, data.Away[1].Handicap)
	assert.InDelta(t, 3.0, *data.Away[1].Handicap, 1e-9)

	assert.Len(t, data.Home[0].Scores, 9)
	assert.Equal(t, 5, data.Home[0].Scores[league.Holes[0].ID])
	assert.Empty(t, data.Home[1].Scores)

	_, err = s.LoadMatch(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadMatchUsesMatchLineup(t *testing.T) {
	db := testdb.Open(t)
	league := testdb.Seed(t, db, testdb.Options{Teams: 2, PlayersPerTeam: 2, Holes: 9, Weeks: 1})
	s := New(db)
	home, away := league.Teams[0], league.Teams[1]
	m := league.AddMatch(t, db, league.Weeks[0], home, away)

	sub := models.Player{Name: "Substitute"}
	require.NoError(t, db.Create(&sub).Error)
	override := 10.0
	require.NoError(t, db.Create(&[]models.MatchPlayer{
		{MatchID: m.ID, PlayerID: sub.ID, TeamID: home.ID, Position: 0, Handicap: &override},
		{MatchID: m.ID, PlayerID: league.Players[home.ID][1].ID, TeamID: home.ID, Position: 1},
		{MatchID: m.ID, PlayerID: league.Players[away.ID][1].ID, TeamID: away.ID, Position: 0},
	}).Error)

	data, err := s.LoadMatch(context.Background(), m.ID)
	require.NoError(t, err)
	require.Len(t, data.Home, 2)
	require.Len(t, data.Away, 1)
	assert.Equal(t, "Substitute", data.Home[0].Name)
	require.NotNil(t, data.Home[0].Handicap)
	assert.InDelta(t, 10.0, *data.Home[0].Handicap, 1e-9)
	require.NotNil(t, data.Home[1].Handicap)
	assert.InDelta(t, 1.0, *data.Home[1].Handicap, 1e-9)
	assert.Equal(t, league.Players[away.ID][1].ID, data.Away[0].PlayerID)

	p, ok := data.Player(sub.ID)
	assert.True(t, ok)
	assert.Equal(t, "Substitute", p.Name)
	_, ok = data.Player(league.Players[away.ID][0].ID)
	assert.False(t, ok)
}

func TestScoreMatchOverwritesAndClears(t *testing.T) {
	db := testdb.Open(t)
	league := testdb.Seed(t, db, testdb.Options{Teams: 2, PlayersPerTeam: 1, Holes: 9, Weeks: 1})
	s := New(db)
	ctx := context.Background()
	m := league.AddMatch(t, db, league.Weeks[0], league.Teams[0], league.Teams[1])
	player := league.Players[league.Teams[0].ID][0]
	hole1, hole2 := league.Holes[0], league.Holes[1]
	scorer := uuid.New()
	course, err := s.CourseHoles(ctx, league.Course.ID)
	require.NoError(t, err)

	_, err = s.ScoreMatch(ctx, course, m.ID, []ScoreEntry{
		{PlayerID: player.ID, HoleID: hole1.ID, Strokes: intPtr(5)},
		{PlayerID: player.ID, HoleID: hole2.ID, Strokes: intPtr(4)},
	}, &scorer)
	require.NoError(t, err)

	_, err = s.ScoreMatch(ctx, course, m.ID, []ScoreEntry{
		{PlayerID: player.ID, HoleID: hole1.ID, Strokes: intPtr(6)},
		{PlayerID: player.ID, HoleID: hole2.ID},
	}, nil)
	require.NoError(t, err)

	var rows []models.Score
	require.NoError(t, db.Where("match_id = ?", m.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, hole1.ID, rows[0].HoleID)
	assert.Equal(t, 6, rows[0].Strokes)
}

func card(player models.Player, holes []models.Hole, strokes int) []ScoreEntry {
	out := make([]ScoreEntry, len(holes))
	for i, h := range holes {
		out[i] = ScoreEntry{PlayerID: player.ID, HoleID: h.ID, Strokes: intPtr(strokes)}
	}
	return out
}

func TestScoreMatch(t *testing.T) {
	db := testdb.Open(t)
	league := testdb.Seed(t, db, testdb.Options{Teams: 2, PlayersPerTeam: 1, Holes: 9, Weeks: 1})
	s := New(db)
	ctx := context.Background()
	m := league.AddMatch(t, db, league.Weeks[0], league.Teams[0], league.Teams[1])
	home := league.Players[league.Teams[0].ID][0]
	away := league.Players[league.Teams[1].ID][0]
	course, err := s.CourseHoles(ctx, league.Course.ID)
	require.NoError(t, err)

	// The two cards arrive at once; the saved totals must count both.
	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, batch := range [][]ScoreEntry{card(home, league.Holes, 4), card(away, league.Holes, 5)} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.ScoreMatch(ctx, course, m.ID, batch, nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := s.Match(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsCompleted)
	require.NotNil(t, stored.HomePoints)
	require.NotNil(t, stored.AwayPoints)
	assert.Equal(t, 9, *stored.HomePoints)
	assert.Equal(t, 0, *stored.AwayPoints)

	r, err := s.ScoreMatch(ctx, course, m.ID, []ScoreEntry{{PlayerID: away.ID, HoleID: league.Holes[8].ID}}, nil)
	require.NoError(t, err)
	assert.False(t, r.Complete)
	assert.Equal(t, 7, r.Home.TotalPoints)

	stored, err = s.Match(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsCompleted)
	assert.Equal(t, 7, *stored.HomePoints)

	_, err = s.ScoreMatch(ctx, course, 999, card(home, league.Holes, 4), nil)
	assert.ErrorIs(t, err, ErrNotFound)
	var count int64
	require.NoError(t, db.Model(&models.Score{}).Where("match_id = ?", 999).Count(&count).Error)
	assert.Zero(t, count)
}

func TestResultAndSaveResult(t *testing.T) {
	db := testdb.Open(t)
	league := testdb.Seed(t, db, testdb.Options{Teams: 2, PlayersPerTeam: 2, Holes: 9, Weeks: 1})
	s := New(db)
	ctx := context.Background()
	home, away := league.Teams[0], league.Teams[1]
	m := league.AddMatch(t, db, league.Weeks[0], home, away)
	for _, team := range league.Teams {
		for _, p := range league.Players[team.ID] {
			league.PostScores(t, db, m, p, 5)
		}
	}

	// Handicaps 0, 1 at home and 2, 3 away: away receives more strokes on the hardest
	// holes and wins four hole points plus the bonus.
	_, r, err := s.Result(ctx, s, m.ID)
	require.NoError(t, err)
	assert.True(t, r.Complete)
	assert.Equal(t, 0, r.Home.TotalPoints)
	assert.Equal(t, 4, r.Away.PlayerPoints)
	assert.Equal(t, 1, r.Away.BonusPoint)
	assert.Equal(t, 5, r.Away.TotalPoints)
	assert.InDelta(t, 89.0, r.Home.Net, 1e-9)
	assert.InDelta(t, 85.0, r.Away.Net, 1e-9)

	require.NoError(t, s.SaveResult(ctx, r))
	stored, err := s.Match(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsCompleted)
	require.NotNil(t, stored.HomePoints)
	require.NotNil(t, stored.AwayPoints)
	assert.Equal(t, 0, *stored.HomePoints)
	assert.Equal(t, 5, *stored.AwayPoints)

	results, err := s.LeagueResults(ctx, s, league.League.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	table := scoring.Standings(results)
	require.Len(t, table, 2)
	assert.Equal(t, away.ID, table[0].TeamID)
	assert.Equal(t, 1, table[0].Wins)
	assert.Equal(t, 1, table[1].Losses)
}

func TestCommitPairings(t *testing.T) {
	db := testdb.Open(t)
	league := testdb.Seed(t, db, testdb.Options{Teams: 5, Holes: 9, Weeks: 2})
	s := New(db)
	ctx := context.Background()

	teams, err := s.Teams(ctx, league.League.ID)
	require.NoError(t, err)
	set := pairing.Generate(teams, nil, 42)
	require.Len(t, set.Pairings, 2)
	require.NotNil(t, set.Bye)

	req := CommitRequest{
		LeagueID: league.League.ID,
		WeekID:   league.Weeks[0].ID,
		CourseID: league.Course.ID,
		Pairings: set.Pairings,
	}
	matches, err := s.CommitPairings(ctx, req)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	for i, m := range matches {
		assert.NotZero(t, m.ID)
		assert.Equal(t, set.Pairings[i].Team1.ID, m.HomeTeamID)
		assert.Equal(t, set.Pairings[i].Team2.ID, m.AwayTeamID)
		assert.True(t, m.MatchDate.Equal(league.Weeks[0].StartDate))
	}

	_, err = s.CommitPairings(ctx, req)
	assert.ErrorIs(t, err, ErrConflict)

	h, err := s.History(ctx, league.League.ID, HistoryFilter{})
	require.NoError(t, err)
	for _, p := range set.Pairings {
		assert.Equal(t, 1, h.Count(p.Team1.ID, p.Team2.ID))
	}

	other := models.League{Name: "Thursday"}
	require.NoError(t, db.Create(&other).Error)
	stranger := models.Team{LeagueID: other.ID, Name: "Strangers"}
	require.NoError(t, db.Create(&stranger).Error)
	req.WeekID = league.Weeks[1].ID
	req.Pairings = []pairing.Pairing{{Team1: teams[0], Team2: pairing.Team{ID: stranger.ID}}}
	_, err = s.CommitPairings(ctx, req)
	assert.ErrorIs(t, err, ErrInvalid)

	req.Pairings = []pairing.Pairing{{Team1: teams[0], Team2: teams[0]}}
	_, err = s.CommitPairings(ctx, req)
	assert.ErrorIs(t, err, ErrInvalid)

	req.WeekID = 9999
	_, err = s.CommitPairings(ctx, req)
	assert.ErrorIs(t, err, ErrNotFound)

	ids, err := s.MatchIDs(ctx, league.League.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}
