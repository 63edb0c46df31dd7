package handicap

import "math"

// Player is a golfer in a match. A nil Handicap means the player has no rating yet.
type Player struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Handicap *float64 `json:"handicap"`
}

// EffectiveHandicap is the handicap the allocator works with: missing, negative,
// NaN and infinite values all count as 0.
func EffectiveHandicap(h *float64) float64 {
	if h == nil {
		return 0
	}
	v := *h
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// ComputePops returns the strokes each player receives over the round, relative to
// the lowest handicap in the group. The lowest player gets 0 and nobody gets less.
//
// Unrated players count as scratch (handicap 0), so when one is present they set the
// baseline. Pops are not rounded; a 12.4 against a 5.0 receives 7.4.
func ComputePops(players []Player) map[int64]float64 {
	pops := make(map[int64]float64, len(players))
	if len(players) == 0 {
		return pops
	}

	lowest := math.Inf(1)
	for _, p := range players {
		lowest = math.Min(lowest, EffectiveHandicap(p.Handicap))
	}

	for _, p := range players {
		pops[p.ID] = math.Max(0, EffectiveHandicap(p.Handicap)-lowest)
	}
	return pops
}

// StrokesGivenOnHole returns how many strokes a player with the given pops receives on
// the hole ranked holeRank (0 = hardest) on a course of totalHoles holes.
//
// Every hole gets floor(pops / totalHoles) strokes. The remainder, pops mod totalHoles,
// is then handed out one stroke at a time from the hardest hole down: the hole ranked r
// gets an extra stroke when r+1 <= remainder, that is when a whole stroke is left for it.
// The remainder is compared as-is, so a remainder of 3.4 covers ranks 0, 1 and 2 and the
// fourth hole gets nothing for the leftover 0.4. Summed over a fully rated course this
// gives exactly floor(pops).
//
// A negative rank (unrated hole) or an empty course gives 0.
func StrokesGivenOnHole(pops float64, holeRank, totalHoles int) int {
	if totalHoles <= 0 || holeRank < 0 || !(pops > 0) {
		return 0
	}

	n := float64(totalHoles)
	fullRounds := math.Floor(pops / n)
	remainder := math.Mod(pops, n)

	strokes := int(fullRounds)
	if float64(holeRank+1) <= remainder {
		strokes++
	}
	return strokes
}

// NetScore converts a gross score into a net score for one hole.
//
// gross 0 means no score has been entered and is returned as is, like any score when
// the player has no pops or the hole is unrated (holeRank < 0).
func NetScore(gross int, pops float64, holeRank, totalHoles int) int {
	if gross == 0 || pops == 0 || holeRank < 0 {
		return gross
	}
	return gross - StrokesGivenOnHole(pops, holeRank, totalHoles)
}
