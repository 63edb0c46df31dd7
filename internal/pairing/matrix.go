package pairing

import (
	"cmp"
	"slices"
)

// TeamSummary is one team's line in the matchup matrix.
type TeamSummary struct {
	TeamID       int64   `json:"team_id"`
	Name         string  `json:"name"`
	Games        int     `json:"games"`
	Opponents    int     `json:"opponents"`
	NotYetPlayed []int64 `json:"not_yet_played"`
}

// Matrix shows how often every pair of teams has met. Counts[a][b] == Counts[b][a].
type Matrix struct {
	Teams     []Team                  `json:"teams"`
	Counts    map[int64]map[int64]int `json:"counts"`
	Meetings  map[PairKey][]Meeting   `json:"meetings,omitempty"`
	Summaries []TeamSummary           `json:"summaries"`
}

// BuildMatrix lays out history for the given teams, sorted by name then id.
func BuildMatrix(teams []Team, h *History) Matrix {
	teams = distinct(teams)
	slices.SortFunc(teams, func(a, b Team) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	m := Matrix{
		Teams:     teams,
		Counts:    make(map[int64]map[int64]int, len(teams)),
		Meetings:  make(map[PairKey][]Meeting),
		Summaries: make([]TeamSummary, 0, len(teams)),
	}
	for _, t := range teams {
		row := make(map[int64]int, len(teams)-1)
		sum := TeamSummary{TeamID: t.ID, Name: t.Name, NotYetPlayed: []int64{}}
		for _, o := range teams {
			if o.ID == t.ID {
				continue
			}
			n := h.Count(t.ID, o.ID)
			row[o.ID] = n
			sum.Games += n
			if n > 0 {
				sum.Opponents++
			} else {
				sum.NotYetPlayed = append(sum.NotYetPlayed, o.ID)
			}
			if ms := h.Meetings(t.ID, o.ID); len(ms) > 0 {
				m.Meetings[Key(t.ID, o.ID)] = ms
			}
		}
		m.Counts[t.ID] = row
		m.Summaries = append(m.Summaries, sum)
	}
	return m
}
