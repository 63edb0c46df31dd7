package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trentd187/golf-league-matchups/internal/handicap"
	"github.com/trentd187/golf-league-matchups/internal/models"
	"github.com/trentd187/golf-league-matchups/internal/scoring"
)

// MatchData is everything scoring needs about one match.
type MatchData struct {
	Match     scoring.Match
	LeagueID  int64
	WeekID    int64
	CourseID  int64
	Completed bool
	// HomePoints and AwayPoints are the totals last saved, nil before the first save.
	HomePoints *int
	AwayPoints *int
	Home       []scoring.LineupPlayer
	Away       []scoring.LineupPlayer
}

// Stale reports whether the saved totals differ from r.
func (d *MatchData) Stale(r scoring.Result) bool {
	return d.HomePoints == nil || d.AwayPoints == nil ||
		*d.HomePoints != r.Home.TotalPoints ||
		*d.AwayPoints != r.Away.TotalPoints ||
		d.Completed != r.Complete
}

// Player finds a lineup player on either side.
func (d *MatchData) Player(playerID int64) (scoring.LineupPlayer, bool) {
	for _, side := range [][]scoring.LineupPlayer{d.Home, d.Away} {
		for _, p := range side {
			if p.PlayerID == playerID {
				return p, true
			}
		}
	}
	return scoring.LineupPlayer{}, false
}

// Match loads a match row.
func (s *Store) Match(ctx context.Context, matchID int64) (*models.Match, error) {
	var m models.Match
	if err := s.db.WithContext(ctx).First(&m, matchID).Error; err != nil {
		return nil, notFound(err, "match %d", matchID)
	}
	return &m, nil
}

// LoadMatch loads a match with both lineups and every score entered so far.
//
// If the match has its own lineup rows they are used in position order, with a
// per-match handicap overriding the player's. Otherwise each team's roster is used.
func (s *Store) LoadMatch(ctx context.Context, matchID int64) (*MatchData, error) {
	m, err := s.Match(ctx, matchID)
	if err != nil {
		return nil, err
	}

	home, away, err := s.lineups(ctx, m)
	if err != nil {
		return nil, err
	}

	var scores []models.Score
	if err := s.db.WithContext(ctx).Where("match_id = ?", matchID).Find(&scores).Error; err != nil {
		return nil, fmt.Errorf("load scores for match %d: %w", matchID, err)
	}
	byPlayer := make(map[int64]map[int64]int)
	for _, sc := range scores {
		if byPlayer[sc.PlayerID] == nil {
			byPlayer[sc.PlayerID] = make(map[int64]int)
		}
		byPlayer[sc.PlayerID][sc.HoleID] = sc.Strokes
	}
	for _, side := range [][]scoring.LineupPlayer{home, away} {
		for i := range side {
			side[i].Scores = byPlayer[side[i].PlayerID]
		}
	}

	return &MatchData{
		Match:      scoring.Match{ID: m.ID, HomeTeamID: m.HomeTeamID, AwayTeamID: m.AwayTeamID},
		LeagueID:   m.LeagueID,
		WeekID:     m.WeekID,
		CourseID:   m.CourseID,
		Completed:  m.IsCompleted,
		HomePoints: m.HomePoints,
		AwayPoints: m.AwayPoints,
		Home:       home,
		Away:       away,
	}, nil
}

func (s *Store) lineups(ctx context.Context, m *models.Match) (home, away []scoring.LineupPlayer, err error) {
	var entries []models.MatchPlayer
	if err := s.db.WithContext(ctx).
		Preload("Player").
		Where("match_id = ?", m.ID).
		Order("position, player_id").
		Find(&entries).Error; err != nil {
		return nil, nil, fmt.Errorf("load lineup for match %d: %w", m.ID, err)
	}

	if len(entries) > 0 {
		for _, e := range entries {
			hcp := e.Handicap
			if hcp == nil {
				hcp = e.Player.Handicap
			}
			p := scoring.LineupPlayer{PlayerID: e.PlayerID, Name: e.Player.Name, Handicap: hcp}
			switch e.TeamID {
			case m.HomeTeamID:
				home = append(home, p)
			case m.AwayTeamID:
				away = append(away, p)
			}
		}
		return home, away, nil
	}

	if home, err = s.roster(ctx, m.HomeTeamID); err != nil {
		return nil, nil, err
	}
	if away, err = s.roster(ctx, m.AwayTeamID); err != nil {
		return nil, nil, err
	}
	return home, away, nil
}

func (s *Store) roster(ctx context.Context, teamID int64) ([]scoring.LineupPlayer, error) {
	var rows []models.TeamPlayer
	if err := s.db.WithContext(ctx).
		Preload("Player").
		Where("team_id = ?", teamID).
		Order("position, player_id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load roster for team %d: %w", teamID, err)
	}
	out := make([]scoring.LineupPlayer, len(rows))
	for i, r := range rows {
		out[i] = scoring.LineupPlayer{PlayerID: r.PlayerID, Name: r.Player.Name, Handicap: r.Player.Handicap}
	}
	return out, nil
}

// ScoreEntry sets or clears one player's strokes on one hole. A nil Strokes clears it.
type ScoreEntry struct {
	PlayerID int64 `json:"player_id"`
	HoleID   int64 `json:"hole_id"`
	Strokes  *int  `json:"strokes"`
}

// ScoreMatch applies a batch of score entries, rescores the match against course and
// stores the new totals, all in one transaction. Entries with strokes are inserted or
// overwritten; entries without are deleted. Callers validate the stroke range and
// lineup membership first. The match row is locked first, so two
// batches for the same match are applied and scored one after the other and the saved
// totals always reflect every score written.
func (s *Store) ScoreMatch(ctx context.Context, course []handicap.Hole, matchID int64, entries []ScoreEntry, enteredBy *uuid.UUID) (scoring.Result, error) {
	var result scoring.Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.Match
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&m, matchID).Error; err != nil {
			return notFound(err, "match %d", matchID)
		}
		if err := applyScores(tx, matchID, entries, enteredBy); err != nil {
			return err
		}

		txs := New(tx)
		data, err := txs.LoadMatch(ctx, matchID)
		if err != nil {
			return err
		}
		result = scoring.Score(data.Match, data.Home, data.Away, course)
		return txs.SaveResult(ctx, result)
	})
	if err != nil {
		return scoring.Result{}, err
	}
	return result, nil
}

func applyScores(tx *gorm.DB, matchID int64, entries []ScoreEntry, enteredBy *uuid.UUID) error {
	for _, e := range entries {
		if e.Strokes == nil {
			if err := tx.Where("match_id = ? AND player_id = ? AND hole_id = ?", matchID, e.PlayerID, e.HoleID).
				Delete(&models.Score{}).Error; err != nil {
				return fmt.Errorf("clear score player %d hole %d: %w", e.PlayerID, e.HoleID, err)
			}
			continue
		}

		row := models.Score{
			MatchID:   matchID,
			PlayerID:  e.PlayerID,
			HoleID:    e.HoleID,
			Strokes:   *e.Strokes,
			EnteredBy: enteredBy,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "match_id"}, {Name: "player_id"}, {Name: "hole_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"strokes", "entered_by", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("save score player %d hole %d: %w", e.PlayerID, e.HoleID, err)
		}
	}
	return nil
}

// SaveResult stores a match's current point totals and completion flag.
func (s *Store) SaveResult(ctx context.Context, r scoring.Result) error {
	home, away := r.Home.TotalPoints, r.Away.TotalPoints
	err := s.db.WithContext(ctx).
		Model(&models.Match{}).
		Where("id = ?", r.MatchID).
		Updates(map[string]any{
			"home_points":  home,
			"away_points":  away,
			"is_completed": r.Complete,
		}).Error
	if err != nil {
		return fmt.Errorf("save result for match %d: %w", r.MatchID, err)
	}
	return nil
}
