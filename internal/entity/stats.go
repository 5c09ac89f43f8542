package entity

const (
	StatTotalTurns = "total_turns"
	StatPlayerWins = "player_wins"
	StatAIWins     = "ai_wins"
)

// Stats holds the cumulative counters kept across matches.
type Stats struct {
	TotalTurns int64           `json:"total_turns"`
	PlayerWins int64           `json:"player_wins"`
	AIWins     int64           `json:"ai_wins"`
	HasWon     map[string]bool `json:"has_won"`
}
