package pairing

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PairKey is the canonical name of an unordered team pair: the two ids in ascending
// numeric order joined by a dash, e.g. "3-7". Callers and the optimizer must both
// build keys with Key so that "7-3" never appears.
type PairKey string

// Key returns the PairKey for two team ids in either order.
func Key(a, b int64) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey(strconv.FormatInt(a, 10) + "-" + strconv.FormatInt(b, 10))
}

// ParseKey splits a PairKey back into its two ids, lowest first.
func ParseKey(k PairKey) (int64, int64, error) {
	// Split on the first dash after position 0 so negative ids do not confuse us.
	s := string(k)
	i := strings.Index(s[min(1, len(s)):], "-")
	if i < 0 {
		return 0, 0, fmt.Errorf("pair key %q: missing separator", s)
	}
	i += min(1, len(s))
	a, err := strconv.ParseInt(s[:i], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("pair key %q: %w", s, err)
	}
	b, err := strconv.ParseInt(s[i+1:], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("pair key %q: %w", s, err)
	}
	if a > b {
		a, b = b, a
	}
	return a, b, nil
}

// Meeting is one earlier match between two teams.
type Meeting struct {
	MatchID    int64     `json:"match_id,omitempty"`
	WeekID     int64     `json:"week_id"`
	WeekNumber int       `json:"week_number,omitempty"`
	Date       time.Time `json:"date"`
}

// Lookup answers "how many times have these two teams played?". The optimizer only
// reads through it. An error means the history could not be determined and sends
// Generate down its fallback path.
type Lookup interface {
	Matchups(a, b int64) (int, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(a, b int64) (int, error)

// Matchups implements Lookup.
func (f LookupFunc) Matchups(a, b int64) (int, error) {
	return f(a, b)
}

// meetingLister is implemented by histories that also know when teams met.
type meetingLister interface {
	Meetings(a, b int64) []Meeting
}

// History is the in-memory record of who has played whom. The zero value is not
// usable; call NewHistory. Build it once, then only read it: a History is safe for
// concurrent readers but Record must not run alongside them.
type History struct {
	counts   map[PairKey]int
	meetings map[PairKey][]Meeting
}

var _ Lookup = (*History)(nil)

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{
		counts:   make(map[PairKey]int),
		meetings: make(map[PairKey][]Meeting),
	}
}

// HistoryFromCounts builds a history from bare counts, the form clients send.
// Negative counts are treated as zero.
func HistoryFromCounts(counts map[PairKey]int) *History {
	h := NewHistory()
	for k, n := range counts {
		a, b, err := ParseKey(k)
		if err != nil || n <= 0 {
			continue
		}
		h.counts[Key(a, b)] += n
	}
	return h
}

// Record adds one meeting between a and b. Counts only ever go up.
func (h *History) Record(a, b int64, m Meeting) {
	k := Key(a, b)
	h.counts[k]++
	h.meetings[k] = append(h.meetings[k], m)
}

// Count returns how often a and b have met. A nil History has no meetings.
func (h *History) Count(a, b int64) int {
	if h == nil {
		return 0
	}
	return h.counts[Key(a, b)]
}

// Matchups implements Lookup. It never fails.
func (h *History) Matchups(a, b int64) (int, error) {
	return h.Count(a, b), nil
}

// Meetings returns the recorded meetings of a and b, oldest recorded first.
func (h *History) Meetings(a, b int64) []Meeting {
	if h == nil {
		return nil
	}
	ms := h.meetings[Key(a, b)]
	if len(ms) == 0 {
		return nil
	}
	out := make([]Meeting, len(ms))
	copy(out, ms)
	return out
}

// Counts returns a copy of all pair counts.
func (h *History) Counts() map[PairKey]int {
	out := make(map[PairKey]int)
	if h == nil {
		return out
	}
	for k, n := range h.counts {
		out[k] = n
	}
	return out
}
