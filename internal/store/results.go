package store

import (
	"context"

	"github.com/trentd187/golf-league-matchups/internal/scoring"
)

// Result loads a match and scores it from scratch. holes is usually a cache in front
// of s.
func (s *Store) Result(ctx context.Context, holes HoleSource, matchID int64) (*MatchData, scoring.Result, error) {
	data, err := s.LoadMatch(ctx, matchID)
	if err != nil {
		return nil, scoring.Result{}, err
	}
	course, err := holes.CourseHoles(ctx, data.CourseID)
	if err != nil {
		return nil, scoring.Result{}, err
	}
	return data, scoring.Score(data.Match, data.Home, data.Away, course), nil
}

// LeagueResults scores every match of a league, oldest week first.
func (s *Store) LeagueResults(ctx context.Context, holes HoleSource, leagueID int64) ([]scoring.Result, error) {
	if _, err := s.League(ctx, leagueID); err != nil {
		return nil, err
	}
	ids, err := s.MatchIDs(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	results := make([]scoring.Result, 0, len(ids))
	for _, id := range ids {
		_, r, err := s.Result(ctx, holes, id)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}
