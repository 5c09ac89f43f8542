package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-match/internal/entity"
)

const (
	actionStart      = "match:start"
	actionMove       = "match:move"
	actionTransition = "match:transition"
	actionSnapshot   = "match:snapshot"

	// actionError answers messages that could not be decoded at all.
	actionError = "error"
)

// Message is both a client request and a server push. Pushed session events use the
// event name as the action and the event as the payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ResponsePayload struct {
	Match *entity.MatchState `json:"match,omitempty"`
	Error string             `json:"error,omitempty"`
}

type startPayload struct {
	StartingTurn entity.Turn `json:"starting_turn"`
	AIEnabled    bool        `json:"ai_enabled"`
}

type transitionPayload struct {
	Phase entity.Phase `json:"phase"`
}

func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}

	return b
}
