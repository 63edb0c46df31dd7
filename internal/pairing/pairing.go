// Package pairing proposes a week's matchups: which team plays which, who sits out on
// a bye, and who is at home. It prefers pairings that have happened the fewest times
// before and breaks ties with a seeded generator, so a proposal can be reproduced
// exactly and "reshuffled" by bumping the seed.
//
// Generate is a pure function of (teams, history, seed). It keeps no state between
// calls, so previews for several leagues can be computed concurrently.
package pairing

import (
	"cmp"
	"math"
	"math/bits"
	"slices"

	"github.com/trentd187/golf-league-matchups/internal/seededrand"
)

// ExactLimit is the largest number of teams (after removing the bye) for which every
// perfect matching is enumerated. Eight teams have 105 matchings; ten would have 945
// and the count grows factorially from there.
const ExactLimit = 8

// Team is a team as the optimizer sees it.
type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Reason explains why a Set is degraded or empty.
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonInsufficientTeams  Reason = "insufficient_teams"
	ReasonHistoryUnavailable Reason = "history_unavailable"
)

// Method names the algorithm that produced a Set.
type Method string

const (
	MethodExact    Method = "exact"
	MethodGreedy   Method = "greedy"
	MethodFallback Method = "fallback"
)

// Pairing is one proposed match. Team1 is the home team and Team2 the away team.
type Pairing struct {
	Team1            Team      `json:"team1"`
	Team2            Team      `json:"team2"`
	Key              PairKey   `json:"pair_key"`
	PreviousMatchups int       `json:"previous_matchups"`
	IsDuplicate      bool      `json:"is_duplicate"`
	Meetings         []Meeting `json:"matchup_history,omitempty"`
}

// Set is a complete proposal for one week.
type Set struct {
	Pairings      []Pairing `json:"pairings"`
	Bye           *Team     `json:"bye"`
	Seed          int64     `json:"seed"`
	Method        Method    `json:"method,omitempty"`
	TotalScore    int       `json:"total_score"`
	HasDuplicates bool      `json:"has_duplicates"`
	UsedFallback  bool      `json:"used_fallback"`
	Reason        Reason    `json:"reason,omitempty"`
}

// Teams returns every team in the set: paired teams in order, then the bye.
func (s Set) Teams() []Team {
	out := make([]Team, 0, 2*len(s.Pairings)+1)
	for _, p := range s.Pairings {
		out = append(out, p.Team1, p.Team2)
	}
	if s.Bye != nil {
		out = append(out, *s.Bye)
	}
	return out
}

// Generate proposes pairings for teams that minimise the number of repeat matchups
// according to history.
//
// With an odd number of teams one is drawn at random for the bye. Up to ExactLimit
// remaining teams every perfect matching is scored and one of the cheapest is drawn;
// beyond that a greedy pass takes the cheapest free pairs first, shuffling within each
// cost level. Home and away come from a separate draw per pairing.
//
// Fewer than two teams yields an empty Set with ReasonInsufficientTeams. If history
// fails to answer, the result comes from Fallback and is marked UsedFallback. A nil
// history means no games have been played yet. Teams repeated in the input are only
// considered once.
func Generate(teams []Team, history Lookup, seed int64) Set {
	teams = distinct(teams)
	if len(teams) < 2 {
		return insufficient(seed)
	}

	rng := seededrand.New(seed)
	remaining, bye := drawBye(teams, rng)

	cost, err := costMatrix(remaining, history)
	if err != nil {
		set := Fallback(teams, seed)
		set.Reason = ReasonHistoryUnavailable
		return set
	}

	var chosen [][2]int
	method := MethodExact
	if len(remaining) <= ExactLimit {
		chosen = exactMatching(cost, rng)
	} else {
		method = MethodGreedy
		chosen = greedyMatching(cost, rng)
	}

	set := Set{
		Pairings: make([]Pairing, 0, len(chosen)),
		Bye:      bye,
		Seed:     seed,
		Method:   method,
	}
	lister, _ := history.(meetingLister)
	for _, c := range chosen {
		p := newPairing(remaining[c[0]], remaining[c[1]], cost[c[0]][c[1]], seed)
		if lister != nil {
			p.Meetings = lister.Meetings(p.Team1.ID, p.Team2.ID)
		}
		set.add(p)
	}
	return set
}

// Reshuffle is Generate with the next seed. Calling it with the seed of the proposal
// on screen gives a fresh, equally reproducible proposal.
func Reshuffle(teams []Team, history Lookup, seed int64) Set {
	return Generate(teams, history, seed+1)
}

// Fallback pairs teams without looking at history: the bye is drawn as in Generate,
// the rest are shuffled and paired in order. The result is marked UsedFallback and
// gives no guarantee about repeat matchups.
func Fallback(teams []Team, seed int64) Set {
	teams = distinct(teams)
	if len(teams) < 2 {
		set := insufficient(seed)
		set.UsedFallback = true
		return set
	}

	rng := seededrand.New(seed)
	remaining, bye := drawBye(teams, rng)
	rng.Shuffle(len(remaining), func(i, j int) {
		remaining[i], remaining[j] = remaining[j], remaining[i]
	})

	set := Set{
		Pairings:     make([]Pairing, 0, len(remaining)/2),
		Bye:          bye,
		Seed:         seed,
		Method:       MethodFallback,
		UsedFallback: true,
	}
	for i := 0; i+1 < len(remaining); i += 2 {
		set.add(newPairing(remaining[i], remaining[i+1], 0, seed))
	}
	return set
}

func (s *Set) add(p Pairing) {
	s.Pairings = append(s.Pairings, p)
	s.TotalScore += p.PreviousMatchups
	if p.IsDuplicate {
		s.HasDuplicates = true
	}
}

func insufficient(seed int64) Set {
	return Set{Pairings: []Pairing{}, Seed: seed, Reason: ReasonInsufficientTeams}
}

// distinct drops repeated team ids, keeping the first occurrence, and returns a fresh
// slice so callers' input is never reordered.
func distinct(teams []Team) []Team {
	seen := make(map[int64]bool, len(teams))
	out := make([]Team, 0, len(teams))
	for _, t := range teams {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out
}

// drawBye removes one uniformly drawn team when the count is odd.
func drawBye(teams []Team, rng *seededrand.Rand) ([]Team, *Team) {
	if len(teams)%2 == 0 {
		return teams, nil
	}
	i := rng.Intn(len(teams))
	bye := teams[i]
	rest := make([]Team, 0, len(teams)-1)
	rest = append(rest, teams[:i]...)
	rest = append(rest, teams[i+1:]...)
	return rest, &bye
}

// costMatrix looks up the prior meetings of every pair once.
func costMatrix(teams []Team, history Lookup) ([][]int, error) {
	cost := make([][]int, len(teams))
	for i := range cost {
		cost[i] = make([]int, len(teams))
	}
	if history == nil {
		return cost, nil
	}
	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			n, err := history.Matchups(teams[i].ID, teams[j].ID)
			if err != nil {
				return nil, err
			}
			n = max(n, 0)
			cost[i][j], cost[j][i] = n, n
		}
	}
	return cost, nil
}

// exactMatching enumerates every perfect matching of len(cost) teams (an even number,
// at most ExactLimit) and draws one of the cheapest. The lowest remaining team is
// always fixed first and tried against each higher partner, so the enumeration order,
// and therefore the draw, depends only on the input order.
func exactMatching(cost [][]int, rng *seededrand.Rand) [][2]int {
	n := len(cost)
	best := math.MaxInt
	var ties [][][2]int
	path := make([][2]int, 0, n/2)

	var walk func(remaining uint32, total int)
	walk = func(remaining uint32, total int) {
		if total > best {
			return
		}
		if remaining == 0 {
			if total < best {
				best = total
				ties = ties[:0]
			}
			ties = append(ties, slices.Clone(path))
			return
		}
		first := bits.TrailingZeros32(remaining)
		rest := remaining &^ (1 << first)
		for partner := first + 1; partner < n; partner++ {
			if rest&(1<<partner) == 0 {
				continue
			}
			path = append(path, [2]int{first, partner})
			walk(rest&^(1<<partner), total+cost[first][partner])
			path = path[:len(path)-1]
		}
	}
	walk(1<<n-1, 0)

	if len(ties) == 0 {
		return nil
	}
	return ties[rng.Intn(len(ties))]
}

type edge struct {
	a, b int
	cost int
}

// greedyMatching takes pairs cheapest first. Pairs of equal cost are shuffled so the
// seed decides among them. On a complete graph with an even team count this always
// pairs everybody, but the total is not guaranteed minimal.
func greedyMatching(cost [][]int, rng *seededrand.Rand) [][2]int {
	n := len(cost)
	edges := make([]edge, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			edges = append(edges, edge{a: i, b: j, cost: cost[i][j]})
		}
	}
	slices.SortStableFunc(edges, func(x, y edge) int {
		return cmp.Compare(x.cost, y.cost)
	})

	for start := 0; start < len(edges); {
		end := start + 1
		for end < len(edges) && edges[end].cost == edges[start].cost {
			end++
		}
		group := edges[start:end]
		rng.Shuffle(len(group), func(i, j int) { group[i], group[j] = group[j], group[i] })
		start = end
	}

	used := make([]bool, n)
	chosen := make([][2]int, 0, n/2)
	for _, e := range edges {
		if used[e.a] || used[e.b] {
			continue
		}
		used[e.a], used[e.b] = true, true
		chosen = append(chosen, [2]int{e.a, e.b})
		if len(chosen) == n/2 {
			break
		}
	}
	return chosen
}

// newPairing decides home and away with a generator seeded by seed plus both team ids,
// so each pairing gets its own draw and the outcome does not depend on which team was
// listed first.
func newPairing(a, b Team, previous int, seed int64) Pairing {
	if b.ID < a.ID {
		a, b = b, a
	}
	home, away := a, b
	if seededrand.New(seed+a.ID+b.ID).Float64() >= 0.5 {
		home, away = b, a
	}
	return Pairing{
		Team1:            home,
		Team2:            away,
		Key:              Key(a.ID, b.ID),
		PreviousMatchups: previous,
		IsDuplicate:      previous > 0,
	}
}
