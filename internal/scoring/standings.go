package scoring

import (
	"cmp"
	"slices"
)

// Standing is one row of the league table.
type Standing struct {
	TeamID        int64    `json:"team_id"`
	Played        int      `json:"played"`
	Wins          int      `json:"wins"`
	Losses        int      `json:"losses"`
	Ties          int      `json:"ties"`
	Points        int      `json:"points"`
	WinPercentage float64  `json:"win_percentage"`
	LowestGross   *int     `json:"lowest_gross"`
	LowestNet     *float64 `json:"lowest_net"`
}

// Standings builds the league table from match results. Only complete results count;
// an unfinished match has no winner yet. A tie counts as half a win in the percentage.
//
// Rows are ordered by win percentage, then total points, then team id.
func Standings(results []Result) []Standing {
	rows := make(map[int64]*Standing)
	row := func(teamID int64) *Standing {
		s, ok := rows[teamID]
		if !ok {
			s = &Standing{TeamID: teamID}
			rows[teamID] = s
		}
		return s
	}

	for _, r := range results {
		if !r.Complete {
			continue
		}
		home, away := row(r.Home.TeamID), row(r.Away.TeamID)
		record(home, r.Home, r.Away)
		record(away, r.Away, r.Home)
	}

	out := make([]Standing, 0, len(rows))
	for _, s := range rows {
		if s.Played > 0 {
			s.WinPercentage = (float64(s.Wins) + 0.5*float64(s.Ties)) / float64(s.Played)
		}
		out = append(out, *s)
	}

	slices.SortFunc(out, func(a, b Standing) int {
		if c := cmp.Compare(b.WinPercentage, a.WinPercentage); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		return cmp.Compare(a.TeamID, b.TeamID)
	})
	return out
}

func record(s *Standing, us, them TeamResult) {
	s.Played++
	s.Points += us.TotalPoints
	switch {
	case us.TotalPoints > them.TotalPoints:
		s.Wins++
	case us.TotalPoints < them.TotalPoints:
		s.Losses++
	default:
		s.Ties++
	}

	if s.LowestGross == nil || us.Gross < *s.LowestGross {
		g := us.Gross
		s.LowestGross = &g
	}
	if s.LowestNet == nil || us.Net < *s.LowestNet {
		n := us.Net
		s.LowestNet = &n
	}
}
