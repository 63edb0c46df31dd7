package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func played(matchID, home, away int64, homePts, awayPts, homeGross, awayGross int) Result {
	return Result{
		MatchID:  matchID,
		Complete: true,
		Home:     TeamResult{TeamID: home, TotalPoints: homePts, Gross: homeGross, Net: float64(homeGross) - 2},
		Away:     TeamResult{TeamID: away, TotalPoints: awayPts, Gross: awayGross, Net: float64(awayGross) - 1},
	}
}

func TestStandings(t *testing.T) {
	results := []Result{
		played(1, 1, 2, 14, 7, 80, 84),
		played(2, 3, 4, 10, 11, 90, 88),
		played(3, 2, 3, 10, 10, 85, 85),
		played(4, 4, 1, 12, 9, 82, 79),
		// Still being played: ignored.
		{MatchID: 5, Home: TeamResult{TeamID: 1, TotalPoints: 18}, Away: TeamResult{TeamID: 3}},
	}

	rows := Standings(results)
	require.Len(t, rows, 4)

	// Team 4 is 2-0; team 1 is 1-1 with 23 points; team 2 is 0-1-1 with 17 and
	// team 3 is 0-1-1 with 20.
	assert.Equal(t, []int64{4, 1, 3, 2}, []int64{rows[0].TeamID, rows[1].TeamID, rows[2].TeamID, rows[3].TeamID})

	four := rows[0]
	assert.Equal(t, 2, four.Played)
	assert.Equal(t, 2, four.Wins)
	assert.Equal(t, 23, four.Points)
	assert.Equal(t, 1.0, four.WinPercentage)

	one := rows[1]
	assert.Equal(t, 1, one.Wins)
	assert.Equal(t, 1, one.Losses)
	assert.Equal(t, 23, one.Points)
	assert.Equal(t, 0.5, one.WinPercentage)
	require.NotNil(t, one.LowestGross)
	assert.Equal(t, 79, *one.LowestGross)
	require.NotNil(t, one.LowestNet)
	assert.Equal(t, 78.0, *one.LowestNet)

	three := rows[2]
	assert.Equal(t, 1, three.Ties)
	assert.Equal(t, 0.25, three.WinPercentage)
	assert.Equal(t, 20, three.Points)
}

func TestStandingsEmpty(t *testing.T) {
	assert.Empty(t, Standings(nil))
	assert.Empty(t, Standings([]Result{{MatchID: 1, Home: TeamResult{TeamID: 1}, Away: TeamResult{TeamID: 2}}}))
}
