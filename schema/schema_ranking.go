package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// NewRankLabel is the serialized form of a rank change for a title without a baseline match.
const NewRankLabel = "new"

// RankChange is either a signed rank delta or the "new" marker.
// A positive Delta means the title moved up.
type RankChange struct {
	New   bool
	Delta int
}

// NewEntry returns the rank change of a title absent from the baseline.
func NewEntry() RankChange {
	return RankChange{New: true}
}

// Moved returns the rank change between a baseline and a current rank.
func Moved(baselineRank, currentRank int) RankChange {
	return RankChange{Delta: baselineRank - currentRank}
}

// Direction classifies the rank change.
func (rc RankChange) Direction() RankDirection {
	switch {
	case rc.New:
		return NewDirection
	case rc.Delta > 0:
		return UpDirection
	case rc.Delta < 0:
		return DownDirection
	default:
		return UnchangedDirection
	}
}

// String renders "new", "+3", "-1" or "0".
func (rc RankChange) String() string {
	switch {
	case rc.New:
		return NewRankLabel
	case rc.Delta > 0:
		return "+" + strconv.Itoa(rc.Delta)
	default:
		return strconv.Itoa(rc.Delta)
	}
}

// MarshalJSON encodes the change as an integer or the string "new".
func (rc RankChange) MarshalJSON() ([]byte, error) {
	if rc.New {
		return json.Marshal(NewRankLabel)
	}
	return json.Marshal(rc.Delta)
}

// UnmarshalJSON accepts an integer or the string "new".
func (rc *RankChange) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		if label != NewRankLabel {
			return fmt.Errorf("invalid rank change %q", label)
		}
		*rc = NewEntry()
		return nil
	}
	var delta int
	if err := json.Unmarshal(data, &delta); err != nil {
		return fmt.Errorf("rank change must be an integer or %q: %w", NewRankLabel, err)
	}
	*rc = RankChange{Delta: delta}
	return nil
}

// RankingEntry is one row of a top-K ranking.
type RankingEntry struct {
	CurrentRank  int        `json:"current_rank"`
	Title        string     `json:"title"`
	Seeders      int        `json:"seeders"`
	Leechers     int        `json:"leechers"`
	Peers        int        `json:"peers"`
	RankChange   RankChange `json:"rank_change"`
	PreviousRank *int       `json:"previous_rank"` // Nil when the title is new
}
