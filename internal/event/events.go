package event

import "github.com/rocketscienceinc/tictactoe-match/internal/entity"

const (
	NamePhaseChanged    = "phase:changed"
	NameTurnChanged     = "turn:changed"
	NameMoveRegistered  = "move:registered"
	NameMatchWon        = "match:won"
	NameMatchDraw       = "match:draw"
	NameWinningSequence = "match:winning_sequence"
)

// Event is a notification emitted by a match session.
type Event interface {
	Name() string
}

type PhaseChanged struct {
	From entity.Phase `json:"from"`
	To   entity.Phase `json:"to"`
}

type TurnChanged struct {
	Turn      entity.Turn `json:"turn"`
	AIEnabled bool        `json:"ai_enabled"`
}

// MoveRegistered is emitted when a move is accepted, so the cell can be drawn as claimed.
type MoveRegistered struct {
	Coordinate entity.Coordinate `json:"coordinate"`
}

type MatchWon struct {
	Turn        entity.Turn `json:"turn"`
	WasComputer bool        `json:"was_computer"`
}

type MatchDraw struct{}

// WinningSequence carries the cells of the winning run, for highlighting.
type WinningSequence struct {
	Coordinates []entity.Coordinate `json:"coordinates"`
}

func (PhaseChanged) Name() string    { return NamePhaseChanged }
func (TurnChanged) Name() string     { return NameTurnChanged }
func (MoveRegistered) Name() string  { return NameMoveRegistered }
func (MatchWon) Name() string        { return NameMatchWon }
func (MatchDraw) Name() string       { return NameMatchDraw }
func (WinningSequence) Name() string { return NameWinningSequence }
