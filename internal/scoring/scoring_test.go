package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trentd187/golf-league-matchups/internal/handicap"
)

func intp(v int) *int { return &v }

func floatp(v float64) *float64 { return &v }

// ratedHoles returns n holes with ids 1..n where hole i has difficulty i.
func ratedHoles(n int) []handicap.Hole {
	holes := make([]handicap.Hole, n)
	for i := range holes {
		holes[i] = handicap.Hole{ID: int64(i + 1), Number: i + 1, Par: 4, Difficulty: intp(i + 1)}
	}
	return holes
}

// card spreads a gross total over n holes (ids 1..n) as evenly as possible.
func card(total, n int) map[int64]int {
	scores := make(map[int64]int, n)
	base, extra := total/n, total%n
	for i := 1; i <= n; i++ {
		s := base
		if i <= extra {
			s++
		}
		scores[int64(i)] = s
	}
	return scores
}

func TestHolePointToLowerNet(t *testing.T) {
	holes := ratedHoles(9)
	home := []LineupPlayer{{PlayerID: 1, Scores: map[int64]int{1: 4}}}
	// 18 pops on nine holes: two strokes on every hole.
	away := []LineupPlayer{{PlayerID: 2, Handicap: floatp(18), Scores: map[int64]int{1: 5}}}

	res := Score(Match{ID: 7, HomeTeamID: 10, AwayTeamID: 20}, home, away, holes)

	hp, ap := res.Home.Players[0], res.Away.Players[0]
	require.NotNil(t, hp.Holes[0].Net)
	require.NotNil(t, ap.Holes[0].Net)
	assert.Equal(t, 4, *hp.Holes[0].Net)
	assert.Equal(t, 3, *ap.Holes[0].Net)
	assert.Equal(t, 2, ap.Holes[0].Strokes)
	assert.Equal(t, 0, *hp.Holes[0].Point)
	assert.Equal(t, 1, *ap.Holes[0].Point)
	assert.Equal(t, 0, hp.Points)
	assert.Equal(t, 1, ap.Points)
	assert.Equal(t, 1, res.Away.PointsByHole[0])
}

func TestHoleHalvedWhenNetsEqual(t *testing.T) {
	holes := ratedHoles(9)
	home := []LineupPlayer{{PlayerID: 1, Scores: map[int64]int{1: 4}}}
	away := []LineupPlayer{{PlayerID: 2, Handicap: floatp(18), Scores: map[int64]int{1: 6}}}

	res := Score(Match{HomeTeamID: 10, AwayTeamID: 20}, home, away, holes)

	assert.Equal(t, 0, res.Home.Players[0].Points)
	assert.Equal(t, 0, res.Away.Players[0].Points)
	require.NotNil(t, res.Home.Players[0].Holes[0].Point)
	assert.Equal(t, 0, *res.Home.Players[0].Holes[0].Point)
}

func TestMissingScoreAwardsNothing(t *testing.T) {
	holes := ratedHoles(9)
	home := []LineupPlayer{{PlayerID: 1, Scores: map[int64]int{1: 3, 2: 4}}}
	away := []LineupPlayer{{PlayerID: 2, Scores: map[int64]int{1: 5}}}

	res := Score(Match{HomeTeamID: 10, AwayTeamID: 20}, home, away, holes)

	hp := res.Home.Players[0]
	assert.Equal(t, 1, hp.Points, "only hole 1 is decided")
	assert.Nil(t, hp.Holes[1].Point, "hole 2 has no away score")
	assert.NotNil(t, hp.Holes[1].Gross)
	assert.Nil(t, hp.Holes[2].Gross)
	assert.Nil(t, hp.Holes[2].Net)
	assert.Equal(t, 2, hp.HolesPlayed)
	assert.False(t, res.Complete)
	assert.Equal(t, 0, res.Home.BonusPoint)
	assert.Equal(t, 0, res.Away.BonusPoint)
}

func TestTeamBonusToLowerNetTotal(t *testing.T) {
	holes := ratedHoles(18)
	home := []LineupPlayer{
		{PlayerID: 1, Scores: card(70, 18)},
		{PlayerID: 2, Scores: card(75, 18)},
	}
	away := []LineupPlayer{
		{PlayerID: 3, Scores: card(72, 18)},
		{PlayerID: 4, Scores: card(74, 18)},
	}

	res := Score(Match{HomeTeamID: 10, AwayTeamID: 20}, home, away, holes)

	require.True(t, res.Complete)
	assert.Equal(t, 145.0, res.Home.Net)
	assert.Equal(t, 146.0, res.Away.Net)
	assert.Equal(t, 1, res.Home.BonusPoint)
	assert.Equal(t, 0, res.Away.BonusPoint)
	assert.Equal(t, res.Home.PlayerPoints+1, res.Home.TotalPoints)
	assert.Equal(t, res.Away.PlayerPoints, res.Away.TotalPoints)
}

func TestNoBonusOnEqualNetTotals(t *testing.T) {
	holes := ratedHoles(18)
	home := []LineupPlayer{
		{PlayerID: 1, Scores: card(70, 18)},
		{PlayerID: 2, Scores: card(75, 18)},
	}
	away := []LineupPlayer{
		{PlayerID: 3, Scores: card(72, 18)},
		{PlayerID: 4, Scores: card(73, 18)},
	}

	res := Score(Match{HomeTeamID: 10, AwayTeamID: 20}, home, away, holes)

	require.True(t, res.Complete)
	assert.Equal(t, res.Home.Net, res.Away.Net)
	assert.Equal(t, 0, res.Home.BonusPoint)
	assert.Equal(t, 0, res.Away.BonusPoint)
}

func TestBonusWithheldUntilComplete(t *testing.T) {
	holes := ratedHoles(18)
	partial := card(70, 18)
	delete(partial, 18)
	home := []LineupPlayer{{PlayerID: 1, Scores: partial}}
	away := []LineupPlayer{{PlayerID: 3, Scores: card(90, 18)}}

	res := Score(Match{HomeTeamID: 10, AwayTeamID: 20}, home, away, holes)

	assert.False(t, res.Complete)
	assert.False(t, res.Home.Complete)
	assert.True(t, res.Away.Complete)
	assert.Equal(t, 0, res.Home.BonusPoint)
	assert.Equal(t, 0, res.Away.BonusPoint)
	assert.Equal(t, int64(0), res.Winner())
}

func TestNetTotalIsGrossMinusPops(t *testing.T) {
	holes := ratedHoles(9)
	home := []LineupPlayer{{PlayerID: 1, Handicap: floatp(4.2), Scores: card(40, 9)}}
	away := []LineupPlayer{{PlayerID: 2, Handicap: floatp(11.6), Scores: card(47, 9)}}

	res := Score(Match{HomeTeamID: 10, AwayTeamID: 20}, home, away, holes)

	hp, ap := res.Home.Players[0], res.Away.Players[0]
	assert.Equal(t, 0.0, hp.Pops)
	assert.InDelta(t, 7.4, ap.Pops, 1e-9)
	require.NotNil(t, ap.Net)
	assert.InDelta(t, float64(ap.Gross)-ap.Pops, *ap.Net, 1e-9)
	assert.InDelta(t, 39.6, *ap.Net, 1e-9)

	// Per-hole strokes add up to floor(pops), not pops.
	strokes := 0
	for _, h := range ap.Holes {
		strokes += h.Strokes
	}
	assert.Equal(t, 7, strokes)
}

func TestUnequalLineupsPairOnlyTheShorterLength(t *testing.T) {
	holes := ratedHoles(9)
	home := []LineupPlayer{
		{PlayerID: 1, Handicap: floatp(10), Scores: card(45, 9)},
		{PlayerID: 2, Handicap: floatp(12), Scores: card(46, 9)},
		{PlayerID: 5, Handicap: floatp(2), Scores: card(38, 9)},
	}
	away := []LineupPlayer{
		{PlayerID: 3, Handicap: floatp(14), Scores: card(47, 9)},
		{PlayerID: 4, Handicap: floatp(16), Scores: card(48, 9)},
	}

	res := Score(Match{HomeTeamID: 10, AwayTeamID: 20}, home, away, holes)

	assert.Equal(t, 2, res.Pairings)
	assert.Len(t, res.Home.Players, 2)
	assert.Equal(t, []int64{5}, res.Unpaired)
	assert.Equal(t, int64(3), res.Home.Players[0].OpponentID)
	assert.Equal(t, int64(2), res.Away.Players[1].OpponentID)
	assert.Equal(t, 45+46, res.Home.Gross)
	// The unpaired player still belongs to the pool and sets the baseline.
	assert.Equal(t, 8.0, res.Home.Players[0].Pops)
	assert.True(t, res.Complete)
}

func TestOutOfRangeStrokesAreAbsent(t *testing.T) {
	holes := ratedHoles(3)
	home := []LineupPlayer{{PlayerID: 1, Scores: map[int64]int{1: 0, 2: 21, 3: -2}}}
	away := []LineupPlayer{{PlayerID: 2, Scores: map[int64]int{1: 4, 2: 4, 3: 4}}}

	res := Score(Match{HomeTeamID: 10, AwayTeamID: 20}, home, away, holes)

	hp := res.Home.Players[0]
	assert.Equal(t, 0, hp.HolesPlayed)
	assert.Equal(t, 0, hp.Gross)
	assert.Nil(t, hp.Net)
	assert.Equal(t, 0, res.Away.Players[0].Points)
	for _, h := range hp.Holes {
		assert.Nil(t, h.Gross)
		assert.Nil(t, h.Point)
	}
}

func TestUnratedHoleGivesNoStrokes(t *testing.T) {
	holes := []handicap.Hole{
		{ID: 1, Number: 1, Par: 4, Difficulty: intp(1)},
		{ID: 2, Number: 2, Par: 3},
	}
	home := []LineupPlayer{{PlayerID: 1, Scores: map[int64]int{1: 4, 2: 3}}}
	away := []LineupPlayer{{PlayerID: 2, Handicap: floatp(4), Scores: map[int64]int{1: 5, 2: 4}}}

	res := Score(Match{HomeTeamID: 10, AwayTeamID: 20}, home, away, holes)

	ap := res.Away.Players[0]
	// Four pops on two holes is two full rounds, but only the rated hole gets them.
	assert.Equal(t, 2, ap.Holes[0].Strokes)
	assert.Equal(t, 3, *ap.Holes[0].Net)
	assert.Equal(t, 0, ap.Holes[1].Strokes)
	assert.Equal(t, 4, *ap.Holes[1].Net)
	assert.Equal(t, 1, ap.Points)
	assert.Equal(t, 1, res.Home.Players[0].Points)
}

func TestScoreIsIdempotent(t *testing.T) {
	holes := ratedHoles(9)
	home := []LineupPlayer{{PlayerID: 1, Handicap: floatp(3), Scores: card(41, 9)}}
	away := []LineupPlayer{{PlayerID: 2, Handicap: floatp(9.5), Scores: card(44, 9)}}
	m := Match{ID: 1, HomeTeamID: 10, AwayTeamID: 20}

	assert.Equal(t, Score(m, home, away, holes), Score(m, home, away, holes))
}

func TestEmptyLineups(t *testing.T) {
	res := Score(Match{HomeTeamID: 10, AwayTeamID: 20}, nil, nil, ratedHoles(9))

	assert.Equal(t, 0, res.Pairings)
	assert.False(t, res.Complete)
	assert.Empty(t, res.Home.Players)
	assert.Equal(t, 0, res.Home.TotalPoints)
}

func TestWinner(t *testing.T) {
	holes := ratedHoles(9)
	home := []LineupPlayer{{PlayerID: 1, Scores: card(36, 9)}}
	away := []LineupPlayer{{PlayerID: 2, Scores: card(45, 9)}}

	res := Score(Match{HomeTeamID: 10, AwayTeamID: 20}, home, away, holes)

	require.True(t, res.Complete)
	assert.Equal(t, 9, res.Home.PlayerPoints)
	assert.Equal(t, 10, res.Home.TotalPoints)
	assert.Equal(t, int64(10), res.Winner())
}

func TestValidStrokes(t *testing.T) {
	assert.False(t, ValidStrokes(0))
	assert.True(t, ValidStrokes(1))
	assert.True(t, ValidStrokes(20))
	assert.False(t, ValidStrokes(21))
}
