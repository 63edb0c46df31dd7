package websocket

import (
	"encoding/json"

	"github.com/trentd187/golf-league-matchups/internal/scoring"
)

// UpdateTypeResult marks a message carrying a recomputed match result.
const UpdateTypeResult = "match_result"

// Update is the JSON message sent to match watchers.
type Update struct {
	Type    string         `json:"type"`
	MatchID int64          `json:"match_id"`
	Result  scoring.Result `json:"result"`
}

// EncodeResult builds the message for a recomputed result.
func EncodeResult(r scoring.Result) ([]byte, error) {
	return json.Marshal(Update{Type: UpdateTypeResult, MatchID: r.MatchID, Result: r})
}
