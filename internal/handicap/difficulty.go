// Package handicap turns a course's holes and the players' handicaps into strokes:
// which holes are hardest, how many strokes ("pops") each player receives in a match,
// and what a gross score nets out to on a given hole.
//
// Everything here is a pure function over plain values. Nothing is cached or mutated,
// so the scoring engine can call it on every score change from any goroutine.
package handicap

import (
	"cmp"
	"slices"
)

// Hole is one hole of a course as the scoring code sees it.
// Difficulty is the hole's handicap value from the scorecard: 1 is the hardest hole.
// Nil means the course never published one, and such a hole never gives strokes.
type Hole struct {
	ID         int64 `json:"id"`
	Number     int   `json:"number"`
	Par        int   `json:"par"`
	Yards      *int  `json:"yards,omitempty"`
	Difficulty *int  `json:"difficulty"`
}

// Rank returns the ids of the rated holes, hardest first. Holes without a difficulty
// value are left out. Equal difficulty values are ordered by hole id.
func Rank(holes []Hole) []int64 {
	rated := make([]Hole, 0, len(holes))
	for _, h := range holes {
		if h.Difficulty != nil {
			rated = append(rated, h)
		}
	}

	slices.SortStableFunc(rated, func(a, b Hole) int {
		if c := cmp.Compare(*a.Difficulty, *b.Difficulty); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	ids := make([]int64, len(rated))
	for i, h := range rated {
		ids[i] = h.ID
	}
	return ids
}

// Ranking is a precomputed Rank for one course, with the total hole count that the
// stroke allocation divides by. Build it once per computation with NewRanking.
type Ranking struct {
	order []int64
	pos   map[int64]int
	total int
}

// NewRanking ranks holes and remembers how many holes the course has in total
// (rated or not).
func NewRanking(holes []Hole) Ranking {
	order := Rank(holes)
	pos := make(map[int64]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	return Ranking{order: order, pos: pos, total: len(holes)}
}

// Order returns the ranked hole ids, hardest first.
func (r Ranking) Order() []int64 {
	return slices.Clone(r.order)
}

// TotalHoles is the number of holes on the course, including unrated ones.
func (r Ranking) TotalHoles() int {
	return r.total
}

// RankOf returns the 0-based difficulty rank of a hole. ok is false for holes that
// have no difficulty value or do not belong to the course.
func (r Ranking) RankOf(holeID int64) (rank int, ok bool) {
	rank, ok = r.pos[holeID]
	if !ok {
		return -1, false
	}
	return rank, true
}

// StrokesOn is StrokesGivenOnHole for a hole of this course.
func (r Ranking) StrokesOn(pops float64, holeID int64) int {
	rank, ok := r.RankOf(holeID)
	if !ok {
		return 0
	}
	return StrokesGivenOnHole(pops, rank, r.total)
}

// NetScore is NetScore for a hole of this course.
func (r Ranking) NetScore(gross int, pops float64, holeID int64) int {
	rank, ok := r.RankOf(holeID)
	if !ok {
		return gross
	}
	return NetScore(gross, pops, rank, r.total)
}
