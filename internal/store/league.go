package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trentd187/golf-league-matchups/internal/models"
	"github.com/trentd187/golf-league-matchups/internal/pairing"
)

// League loads a league row.
func (s *Store) League(ctx context.Context, leagueID int64) (*models.League, error) {
	var league models.League
	if err := s.db.WithContext(ctx).First(&league, leagueID).Error; err != nil {
		return nil, notFound(err, "league %d", leagueID)
	}
	return &league, nil
}

// Teams returns every team in a league ordered by id.
func (s *Store) Teams(ctx context.Context, leagueID int64) ([]pairing.Team, error) {
	if _, err := s.League(ctx, leagueID); err != nil {
		return nil, err
	}
	var rows []models.Team
	if err := s.db.WithContext(ctx).
		Where("league_id = ?", leagueID).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load teams for league %d: %w", leagueID, err)
	}
	teams := make([]pairing.Team, len(rows))
	for i, t := range rows {
		teams[i] = pairing.Team{ID: t.ID, Name: t.Name}
	}
	return teams, nil
}

// SelectTeams returns the league's teams with the given ids, in the order the ids are
// listed. An empty list selects every team. An id that is not in the league is ErrInvalid.
func (s *Store) SelectTeams(ctx context.Context, leagueID int64, ids []int64) ([]pairing.Team, error) {
	all, err := s.Teams(ctx, leagueID)
	if err != nil || len(ids) == 0 {
		return all, err
	}
	byID := make(map[int64]pairing.Team, len(all))
	for _, t := range all {
		byID[t.ID] = t
	}
	out := make([]pairing.Team, 0, len(ids))
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("team %d is not in league %d: %w", id, leagueID, ErrInvalid)
		}
		out = append(out, t)
	}
	return out, nil
}

// HistoryFilter narrows which committed matches count as history.
type HistoryFilter struct {
	// TeamIDs keeps only matches where both teams are listed. Empty keeps all.
	TeamIDs []int64
	// ThroughWeek keeps only weeks numbered up to and including it. Zero keeps all.
	ThroughWeek int
}

type meetingRow struct {
	ID         int64
	HomeTeamID int64
	AwayTeamID int64
	WeekID     int64
	WeekNumber int
	MatchDate  time.Time
}

// History builds the matchup history of a league from its committed matches, oldest
// week first.
func (s *Store) History(ctx context.Context, leagueID int64, f HistoryFilter) (*pairing.History, error) {
	q := s.db.WithContext(ctx).
		Table("matches").
		Select("matches.id, matches.home_team_id, matches.away_team_id, matches.week_id, weeks.number AS week_number, matches.match_date").
		Joins("JOIN weeks ON weeks.id = matches.week_id").
		Where("matches.league_id = ?", leagueID)
	if len(f.TeamIDs) > 0 {
		q = q.Where("matches.home_team_id IN ? AND matches.away_team_id IN ?", f.TeamIDs, f.TeamIDs)
	}
	if f.ThroughWeek > 0 {
		q = q.Where("weeks.number <= ?", f.ThroughWeek)
	}

	var rows []meetingRow
	if err := q.Order("weeks.number, matches.id").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("load matchup history for league %d: %w", leagueID, err)
	}

	h := pairing.NewHistory()
	for _, r := range rows {
		h.Record(r.HomeTeamID, r.AwayTeamID, pairing.Meeting{
			MatchID:    r.ID,
			WeekID:     r.WeekID,
			WeekNumber: r.WeekNumber,
			Date:       r.MatchDate,
		})
	}
	return h, nil
}

// Week loads a week and checks that it belongs to the league.
func (s *Store) Week(ctx context.Context, leagueID, weekID int64) (*models.Week, error) {
	var week models.Week
	err := s.db.WithContext(ctx).
		Where("id = ? AND league_id = ?", weekID, leagueID).
		First(&week).Error
	if err != nil {
		return nil, notFound(err, "week %d of league %d", weekID, leagueID)
	}
	return &week, nil
}

// CommitRequest turns a previewed pairing set into a week's matches.
type CommitRequest struct {
	LeagueID  int64
	WeekID    int64
	CourseID  int64
	MatchDate time.Time
	Pairings  []pairing.Pairing
}

// CommitPairings writes one match per pairing in a single transaction. Team1 is home.
// Every team must belong to the league and may appear once; a team that already has a
// match that week is ErrConflict. Byes are not stored.
func (s *Store) CommitPairings(ctx context.Context, req CommitRequest) ([]models.Match, error) {
	week, err := s.Week(ctx, req.LeagueID, req.WeekID)
	if err != nil {
		return nil, err
	}
	if _, err := s.CourseHoles(ctx, req.CourseID); err != nil {
		return nil, err
	}
	if len(req.Pairings) == 0 {
		return nil, fmt.Errorf("no pairings to commit: %w", ErrInvalid)
	}

	teams, err := s.Teams(ctx, req.LeagueID)
	if err != nil {
		return nil, err
	}
	inLeague := make(map[int64]bool, len(teams))
	for _, t := range teams {
		inLeague[t.ID] = true
	}

	seen := make(map[int64]bool, 2*len(req.Pairings))
	for _, p := range req.Pairings {
		for _, id := range []int64{p.Team1.ID, p.Team2.ID} {
			if !inLeague[id] {
				return nil, fmt.Errorf("team %d is not in league %d: %w", id, req.LeagueID, ErrInvalid)
			}
			if seen[id] {
				return nil, fmt.Errorf("team %d is paired twice: %w", id, ErrInvalid)
			}
			seen[id] = true
		}
	}

	date := req.MatchDate
	if date.IsZero() {
		date = week.StartDate
	}

	matches := make([]models.Match, 0, len(req.Pairings))
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booked []models.Match
		if err := tx.Where("week_id = ?", req.WeekID).Find(&booked).Error; err != nil {
			return fmt.Errorf("load week %d matches: %w", req.WeekID, err)
		}
		for _, m := range booked {
			if seen[m.HomeTeamID] || seen[m.AwayTeamID] {
				return fmt.Errorf("week %d already has match %d for these teams: %w", req.WeekID, m.ID, ErrConflict)
			}
		}

		for _, p := range req.Pairings {
			matches = append(matches, models.Match{
				LeagueID:   req.LeagueID,
				WeekID:     req.WeekID,
				CourseID:   req.CourseID,
				HomeTeamID: p.Team1.ID,
				AwayTeamID: p.Team2.ID,
				MatchDate:  date,
			})
		}
		if err := tx.Omit(clause.Associations).Create(&matches).Error; err != nil {
			return fmt.Errorf("create matches: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// MatchIDs lists a league's match ids, oldest week first.
func (s *Store) MatchIDs(ctx context.Context, leagueID int64) ([]int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).
		Model(&models.Match{}).
		Joins("JOIN weeks ON weeks.id = matches.week_id").
		Where("matches.league_id = ?", leagueID).
		Order("weeks.number, matches.id").
		Pluck("matches.id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list matches for league %d: %w", leagueID, err)
	}
	return ids, nil
}

// LeagueIDs lists the ids of leagues in the given status, lowest first.
func (s *Store) LeagueIDs(ctx context.Context, status models.LeagueStatus) ([]int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).
		Model(&models.League{}).
		Where("status = ?", status).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list %s leagues: %w", status, err)
	}
	return ids, nil
}

// LeagueSummary is a league with its team and week counts.
type LeagueSummary struct {
	models.League
	TeamCount int64
	WeekCount int64
}

// Leagues lists leagues newest first, optionally only those in status.
func (s *Store) Leagues(ctx context.Context, status models.LeagueStatus) ([]LeagueSummary, error) {
	q := s.db.WithContext(ctx).Preload("Creator").Order("created_at DESC, id DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var leagues []models.League
	if err := q.Find(&leagues).Error; err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	out := make([]LeagueSummary, 0, len(leagues))
	for _, l := range leagues {
		sum := LeagueSummary{League: l}
		if err := s.db.WithContext(ctx).Model(&models.Team{}).Where("league_id = ?", l.ID).Count(&sum.TeamCount).Error; err != nil {
			return nil, fmt.Errorf("count teams for league %d: %w", l.ID, err)
		}
		if err := s.db.WithContext(ctx).Model(&models.Week{}).Where("league_id = ?", l.ID).Count(&sum.WeekCount).Error; err != nil {
			return nil, fmt.Errorf("count weeks for league %d: %w", l.ID, err)
		}
		out = append(out, sum)
	}
	return out, nil
}

// NewLeague describes a league to create. When Start is set, Weeks consecutive
// seven-day weeks are created from it.
type NewLeague struct {
	Name      string
	CreatedBy *uuid.UUID
	Start     *time.Time
	Weeks     int
}

// CreateLeague creates a league and its weeks in one transaction.
func (s *Store) CreateLeague(ctx context.Context, nl NewLeague) (*models.League, error) {
	league := models.League{
		Name:      nl.Name,
		Status:    models.LeagueStatusUpcoming,
		CreatedBy: nl.CreatedBy,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&league).Error; err != nil {
			return fmt.Errorf("create league: %w", err)
		}
		if nl.Start == nil || nl.Weeks <= 0 {
			return nil
		}
		weeks := make([]models.Week, nl.Weeks)
		for i := range weeks {
			start := nl.Start.AddDate(0, 0, 7*i)
			weeks[i] = models.Week{
				LeagueID:  league.ID,
				Number:    i + 1,
				StartDate: start,
				EndDate:   start.AddDate(0, 0, 6),
			}
		}
		if err := tx.Create(&weeks).Error; err != nil {
			return fmt.Errorf("create weeks: %w", err)
		}
		league.Weeks = weeks
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &league, nil
}
