package entity

import (
	"errors"
	"fmt"
)

// Mark is the value held by a grid cell.
type Mark int

const (
	MarkEmpty   Mark = 0
	MarkPlayerA Mark = 1
	MarkPlayerB Mark = 2
)

// IsPlayer reports whether the mark belongs to one of the two players.
func (that Mark) IsPlayer() bool {
	return that == MarkPlayerA || that == MarkPlayerB
}

// Turn identifies whose move it is.
type Turn int

const (
	TurnNone Turn = iota
	TurnPlayerA
	TurnPlayerB
)

var ErrUnknownTurn = errors.New("unknown player turn")

var turnNames = map[Turn]string{
	TurnNone:    "None",
	TurnPlayerA: "PlayerA",
	TurnPlayerB: "PlayerB",
}

func (that Turn) String() string {
	if name, ok := turnNames[that]; ok {
		return name
	}
	return fmt.Sprintf("Turn(%d)", int(that))
}

// IsPlayer reports whether the turn belongs to a player (not None).
func (that Turn) IsPlayer() bool {
	return that == TurnPlayerA || that == TurnPlayerB
}

// Mark - returns the grid mark written for this turn, MarkEmpty for TurnNone.
func (that Turn) Mark() Mark {
	switch that {
	case TurnPlayerA:
		return MarkPlayerA
	case TurnPlayerB:
		return MarkPlayerB
	default:
		return MarkEmpty
	}
}

// Opponent - returns the other player's turn. TurnNone stays TurnNone.
func (that Turn) Opponent() Turn {
	switch that {
	case TurnPlayerA:
		return TurnPlayerB
	case TurnPlayerB:
		return TurnPlayerA
	default:
		return TurnNone
	}
}

func (that Turn) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Turn) UnmarshalText(text []byte) error {
	for turn, name := range turnNames {
		if name == string(text) {
			*that = turn
			return nil
		}
	}

	return fmt.Errorf("%w: %q", ErrUnknownTurn, text)
}
