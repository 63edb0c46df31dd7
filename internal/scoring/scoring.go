// Package scoring computes live match results: per-hole net scores, hole points for
// each head-to-head pairing, player and team totals, and the team bonus point.
//
// A result is always recomputed from scratch from the raw score entries. Nothing is
// patched incrementally, so calling Score after every entered stroke can never drift.
package scoring

import (
	"math"

	"github.com/trentd187/golf-league-matchups/internal/handicap"
)

// Score entry bounds. Anything outside is treated as "not entered".
const (
	MinStrokes = 1
	MaxStrokes = 20
)

// netEpsilon absorbs float noise when comparing fractional net totals.
const netEpsilon = 1e-9

// ValidStrokes reports whether a stroke count can be accepted as a hole score.
func ValidStrokes(n int) bool {
	return n >= MinStrokes && n <= MaxStrokes
}

// Match identifies the two sides of a match.
type Match struct {
	ID         int64 `json:"id"`
	HomeTeamID int64 `json:"home_team_id"`
	AwayTeamID int64 `json:"away_team_id"`
}

// LineupPlayer is one player in a team's lineup for a match, with the strokes entered
// so far keyed by hole id. Lineup order decides who plays whom.
type LineupPlayer struct {
	PlayerID int64         `json:"player_id"`
	Name     string        `json:"name"`
	Handicap *float64      `json:"handicap"`
	Scores   map[int64]int `json:"scores"`
}

// strokes returns the gross score on a hole, or 0 when none (or an invalid one) exists.
func (p LineupPlayer) strokes(holeID int64) int {
	n, ok := p.Scores[holeID]
	if !ok || !ValidStrokes(n) {
		return 0
	}
	return n
}

// HoleResult is one player's line on one hole. Gross and Net are nil until a score is
// entered. Point is nil while the hole is undecided (either side missing).
type HoleResult struct {
	HoleID  int64 `json:"hole_id"`
	Gross   *int  `json:"gross"`
	Net     *int  `json:"net"`
	Strokes int   `json:"strokes_received"`
	Point   *int  `json:"point"`
}

// PlayerResult is the scoring summary for one paired player.
type PlayerResult struct {
	PlayerID     int64        `json:"player_id"`
	Name         string       `json:"name"`
	Handicap     float64      `json:"handicap"`
	Pops         float64      `json:"pops"`
	OpponentID   int64        `json:"opponent_id"`
	OpponentName string       `json:"opponent_name"`
	Points       int          `json:"points"`
	Gross        int          `json:"gross"`
	Net          *float64     `json:"net"`
	HolesPlayed  int          `json:"holes_played"`
	Complete     bool         `json:"complete"`
	Holes        []HoleResult `json:"holes"`
}

// TeamResult aggregates the paired players of one side.
type TeamResult struct {
	TeamID       int64          `json:"team_id"`
	Players      []PlayerResult `json:"players"`
	PlayerPoints int            `json:"player_points"`
	BonusPoint   int            `json:"bonus_point"`
	TotalPoints  int            `json:"total_points"`
	PointsByHole []int          `json:"points_by_hole"`
	Gross        int            `json:"gross"`
	Net          float64        `json:"net"`
	Complete     bool           `json:"complete"`
}

// Result is the full derived state of a match.
type Result struct {
	MatchID  int64      `json:"match_id"`
	Home     TeamResult `json:"home_team"`
	Away     TeamResult `json:"away_team"`
	Pairings int        `json:"pairings"`
	Holes    int        `json:"holes"`
	// Complete is true once every paired player has a score on every hole. Only then
	// is the bonus point decided.
	Complete bool `json:"complete"`
	// Unpaired lists players left over when the lineups have different lengths.
	Unpaired []int64 `json:"unpaired,omitempty"`
}

// Winner returns the team id with more total points, or 0 for a tie or an
// unfinished match.
func (r Result) Winner() int64 {
	if !r.Complete {
		return 0
	}
	switch {
	case r.Home.TotalPoints > r.Away.TotalPoints:
		return r.Home.TeamID
	case r.Away.TotalPoints > r.Home.TotalPoints:
		return r.Away.TeamID
	}
	return 0
}

// Score computes a match result from two lineups and the course's holes.
//
// Pops are computed over everyone in both lineups. home[i] plays away[i]; extra
// players on the longer lineup are reported in Unpaired and do not score. On each hole
// a pairing awards one point to the lower net score when both are entered and differ.
// A player's net total is gross total minus pops. The team with the strictly lower net
// total earns one bonus point, but only once the match is complete.
func Score(m Match, home, away []LineupPlayer, holes []handicap.Hole) Result {
	ranking := handicap.NewRanking(holes)

	pool := make([]handicap.Player, 0, len(home)+len(away))
	for _, p := range home {
		pool = append(pool, handicap.Player{ID: p.PlayerID, Name: p.Name, Handicap: p.Handicap})
	}
	for _, p := range away {
		pool = append(pool, handicap.Player{ID: p.PlayerID, Name: p.Name, Handicap: p.Handicap})
	}
	pops := handicap.ComputePops(pool)

	paired := min(len(home), len(away))
	res := Result{
		MatchID:  m.ID,
		Home:     newTeamResult(m.HomeTeamID, paired, len(holes)),
		Away:     newTeamResult(m.AwayTeamID, paired, len(holes)),
		Pairings: paired,
		Holes:    len(holes),
	}
	for _, p := range home[paired:] {
		res.Unpaired = append(res.Unpaired, p.PlayerID)
	}
	for _, p := range away[paired:] {
		res.Unpaired = append(res.Unpaired, p.PlayerID)
	}

	for i := 0; i < paired; i++ {
		hp := newPlayerResult(home[i], away[i], pops[home[i].PlayerID], len(holes))
		ap := newPlayerResult(away[i], home[i], pops[away[i].PlayerID], len(holes))

		for h, hole := range holes {
			hr := holeLine(home[i], hp.Pops, hole.ID, ranking)
			ar := holeLine(away[i], ap.Pops, hole.ID, ranking)

			if hr.Net != nil && ar.Net != nil {
				homePt, awayPt := 0, 0
				switch {
				case *hr.Net < *ar.Net:
					homePt = 1
				case *ar.Net < *hr.Net:
					awayPt = 1
				}
				hr.Point, ar.Point = &homePt, &awayPt
				hp.Points += homePt
				ap.Points += awayPt
				res.Home.PointsByHole[h] += homePt
				res.Away.PointsByHole[h] += awayPt
			}

			tally(&hp, hr)
			tally(&ap, ar)
			hp.Holes[h] = hr
			ap.Holes[h] = ar
		}

		finishPlayer(&hp, len(holes))
		finishPlayer(&ap, len(holes))
		res.Home.Players[i] = hp
		res.Away.Players[i] = ap
	}

	finishTeam(&res.Home)
	finishTeam(&res.Away)

	res.Complete = paired > 0 && len(holes) > 0 && res.Home.Complete && res.Away.Complete
	if res.Complete {
		switch {
		case res.Home.Net < res.Away.Net-netEpsilon:
			res.Home.BonusPoint = 1
		case res.Away.Net < res.Home.Net-netEpsilon:
			res.Away.BonusPoint = 1
		}
	}
	res.Home.TotalPoints = res.Home.PlayerPoints + res.Home.BonusPoint
	res.Away.TotalPoints = res.Away.PlayerPoints + res.Away.BonusPoint

	return res
}

func newTeamResult(teamID int64, paired, holes int) TeamResult {
	return TeamResult{
		TeamID:       teamID,
		Players:      make([]PlayerResult, paired),
		PointsByHole: make([]int, holes),
	}
}

func newPlayerResult(p, opponent LineupPlayer, pops float64, holes int) PlayerResult {
	return PlayerResult{
		PlayerID:     p.PlayerID,
		Name:         p.Name,
		Handicap:     handicap.EffectiveHandicap(p.Handicap),
		Pops:         pops,
		OpponentID:   opponent.PlayerID,
		OpponentName: opponent.Name,
		Holes:        make([]HoleResult, holes),
	}
}

func holeLine(p LineupPlayer, pops float64, holeID int64, ranking handicap.Ranking) HoleResult {
	hr := HoleResult{HoleID: holeID, Strokes: ranking.StrokesOn(pops, holeID)}
	if gross := p.strokes(holeID); gross != 0 {
		net := ranking.NetScore(gross, pops, holeID)
		hr.Gross = &gross
		hr.Net = &net
	}
	return hr
}

func tally(p *PlayerResult, hr HoleResult) {
	if hr.Gross == nil {
		return
	}
	p.Gross += *hr.Gross
	p.HolesPlayed++
}

func finishPlayer(p *PlayerResult, holes int) {
	if p.HolesPlayed > 0 {
		net := float64(p.Gross) - p.Pops
		p.Net = &net
	}
	p.Complete = holes > 0 && p.HolesPlayed == holes
}

func finishTeam(t *TeamResult) {
	t.Complete = len(t.Players) > 0
	for _, p := range t.Players {
		t.PlayerPoints += p.Points
		t.Gross += p.Gross
		if p.Net != nil {
			t.Net += *p.Net
		}
		if !p.Complete {
			t.Complete = false
		}
	}
	// Keep exact integers exact when pops are whole numbers.
	t.Net = math.Round(t.Net*1e9) / 1e9
}
