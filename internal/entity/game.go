package entity

import (
	"errors"
	"fmt"
)

// Phase is the lifecycle state of a match.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseInProgress
	PhaseWon
	PhaseDraw
)

var ErrUnknownPhase = errors.New("unknown match phase")

var phaseNames = map[Phase]string{
	PhaseIdle:       "Idle",
	PhaseInProgress: "InProgress",
	PhaseWon:        "Won",
	PhaseDraw:       "Draw",
}

func (that Phase) String() string {
	if name, ok := phaseNames[that]; ok {
		return name
	}
	return fmt.Sprintf("Phase(%d)", int(that))
}

// IsFinished reports whether the match ended with a win or a draw.
func (that Phase) IsFinished() bool {
	return that == PhaseWon || that == PhaseDraw
}

func (that Phase) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Phase) UnmarshalText(text []byte) error {
	for phase, name := range phaseNames {
		if name == string(text) {
			*that = phase
			return nil
		}
	}

	return fmt.Errorf("%w: %q", ErrUnknownPhase, text)
}

// MatchState is the authoritative state of one match session.
type MatchState struct {
	Grid          Grid  `json:"grid"`
	Turn          Turn  `json:"turn"`
	AIEnabled     bool  `json:"ai_enabled"`
	CanAcceptMove bool  `json:"can_accept_move"`
	Phase         Phase `json:"phase"`

	Winner           Turn         `json:"winner"`
	WinnerIsComputer bool         `json:"winner_is_computer"`
	WinningSequence  []Coordinate `json:"winning_sequence,omitempty"`
}

func (that *MatchState) IsOngoing() bool {
	return that.Phase == PhaseInProgress
}

// IsComputerTurn reports whether player B is computer controlled and holds the turn.
func (that *MatchState) IsComputerTurn() bool {
	return that.AIEnabled && that.Turn == TurnPlayerB
}

// Clone - returns a copy that shares no memory with the original.
func (that *MatchState) Clone() MatchState {
	clone := *that
	clone.Grid = that.Grid.Clone()
	if that.WinningSequence != nil {
		clone.WinningSequence = append([]Coordinate(nil), that.WinningSequence...)
	}

	return clone
}
