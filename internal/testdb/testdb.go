// Package testdb opens throwaway SQLite databases with the league schema and seeds them.
// Only tests import it.
package testdb

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/trentd187/golf-league-matchups/internal/models"
)

// Open returns a migrated in-memory database private to t.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Every new connection to :memory: is a new empty database, so pin one.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// League is a seeded league.
type League struct {
	League  models.League
	Teams   []models.Team
	Players map[int64][]models.Player // by team id, in roster order
	Course  models.Course
	Holes   []models.Hole
	Weeks   []models.Week
}

// Options controls Seed.
type Options struct {
	Teams          int
	PlayersPerTeam int
	Holes          int
	Weeks          int
}

// Seed creates a league with teams named "Team 1".., players with handicaps 0, 1, 2..
// in creation order, a course whose hole i has handicap i, and consecutive weeks
// starting 2024-05-06.
func Seed(t testing.TB, db *gorm.DB, o Options) *League {
	t.Helper()
	out := &League{Players: make(map[int64][]models.Player)}

	out.League = models.League{Name: "Tuesday Night", Status: models.LeagueStatusActive}
	require.NoError(t, db.Create(&out.League).Error)

	hcp := 0.0
	for i := 1; i <= o.Teams; i++ {
		team := models.Team{LeagueID: out.League.ID, Name: fmt.Sprintf("Team %d", i)}
		require.NoError(t, db.Create(&team).Error)
		out.Teams = append(out.Teams, team)

		for j := 0; j < o.PlayersPerTeam; j++ {
			h := hcp
			hcp++
			p := models.Player{Name: fmt.Sprintf("Player %d-%d", i, j+1), Handicap: &h}
			require.NoError(t, db.Create(&p).Error)
			require.NoError(t, db.Create(&models.TeamPlayer{TeamID: team.ID, PlayerID: p.ID, Position: j}).Error)
			out.Players[team.ID] = append(out.Players[team.ID], p)
		}
	}

	out.Course = models.Course{Name: "Pine Hills", City: "Plymouth", State: "MA"}
	require.NoError(t, db.Create(&out.Course).Error)
	for n := 1; n <= o.Holes; n++ {
		h := n
		hole := models.Hole{CourseID: out.Course.ID, Number: n, Par: 4, Handicap: &h}
		require.NoError(t, db.Create(&hole).Error)
		out.Holes = append(out.Holes, hole)
	}

	start := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	for n := 1; n <= o.Weeks; n++ {
		w := models.Week{
			LeagueID:  out.League.ID,
			Number:    n,
			StartDate: start.AddDate(0, 0, 7*(n-1)),
			EndDate:   start.AddDate(0, 0, 7*(n-1)+6),
		}
		require.NoError(t, db.Create(&w).Error)
		out.Weeks = append(out.Weeks, w)
	}
	return out
}

// AddMatch commits one match between two teams in a week on the seeded course.
func (l *League) AddMatch(t testing.TB, db *gorm.DB, week models.Week, home, away models.Team) models.Match {
	t.Helper()
	m := models.Match{
		LeagueID:   l.League.ID,
		WeekID:     week.ID,
		CourseID:   l.Course.ID,
		HomeTeamID: home.ID,
		AwayTeamID: away.ID,
		MatchDate:  week.StartDate,
	}
	require.NoError(t, db.Omit("Week", "HomeTeam", "AwayTeam").Create(&m).Error)
	return m
}

// PostScores enters the same strokes on every hole for a player.
func (l *League) PostScores(t testing.TB, db *gorm.DB, m models.Match, player models.Player, strokes int) {
	t.Helper()
	for _, h := range l.Holes {
		require.NoError(t, db.Create(&models.Score{
			MatchID:  m.ID,
			PlayerID: player.ID,
			HoleID:   h.ID,
			Strokes:  strokes,
		}).Error)
	}
}
