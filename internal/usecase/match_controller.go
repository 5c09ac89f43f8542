package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-match/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-match/internal/entity"
	"github.com/rocketscienceinc/tictactoe-match/internal/event"
	"github.com/rocketscienceinc/tictactoe-match/internal/scheduler"
	"github.com/rocketscienceinc/tictactoe-match/internal/tictactoe"
)

var ErrInvalidOptions = errors.New("invalid match options")

type publisher interface {
	Publish(e event.Event)
}

type botPlayer interface {
	PickMove(grid entity.Grid) (entity.Coordinate, error)
}

// MatchOptions configures the ruleset and the timings of a match.
type MatchOptions struct {
	Rules tictactoe.Rules
	// SettleDelay is the wait between accepting a move and scoring it.
	SettleDelay time.Duration
	// AICheckInterval is how often the computer opponent checks whether it should move.
	AICheckInterval time.Duration
	// ResultsTimeout returns a finished match to Idle. Zero keeps the result until told otherwise.
	ResultsTimeout time.Duration
}

func (that MatchOptions) Validate() error {
	if err := that.Rules.Validate(); err != nil {
		return err
	}

	if that.SettleDelay < 0 || that.ResultsTimeout < 0 {
		return fmt.Errorf("%w: delays must not be negative", ErrInvalidOptions)
	}

	if that.AICheckInterval <= 0 {
		return fmt.Errorf("%w: ai check interval must be positive", ErrInvalidOptions)
	}

	return nil
}

// MatchController owns the state of one match and runs its turn/result state machine.
// It is not safe for concurrent use: every method, and every callback it schedules,
// must run on the same goroutine, normally the session event loop.
type MatchController struct {
	logger    *slog.Logger
	scheduler scheduler.Scheduler
	events    publisher
	bot       botPlayer
	rnd       tictactoe.Rand
	options   MatchOptions

	state entity.MatchState

	// aiActed is set once the computer has submitted its move for the current turn.
	aiActed bool

	resolution   scheduler.Task
	aiCheck      scheduler.Task
	resultsTimer scheduler.Task
}

func NewMatchController(
	logger *slog.Logger,
	sched scheduler.Scheduler,
	events publisher,
	bot botPlayer,
	rnd tictactoe.Rand,
	options MatchOptions,
) (*MatchController, error) {
	if err := options.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create match controller: %w", err)
	}

	return &MatchController{
		logger:    logger.With("component", "match"),
		scheduler: sched,
		events:    events,
		bot:       bot,
		rnd:       rnd,
		options:   options,
		state:     entity.MatchState{Phase: entity.PhaseIdle},
	}, nil
}

// Snapshot - returns a copy of the current match state.
func (that *MatchController) Snapshot() entity.MatchState {
	return that.state.Clone()
}

// StartMatch - begins a new match. It does nothing while a match is in progress.
func (that *MatchController) StartMatch(startingTurn entity.Turn, aiEnabled bool) error {
	log := that.logger.With("method", "StartMatch")

	if that.state.IsOngoing() {
		log.Debug("match already in progress, start ignored")
		return nil
	}

	if !startingTurn.IsPlayer() {
		return fmt.Errorf("%w: %s", apperror.ErrInvalidTurn, startingTurn)
	}

	grid, err := tictactoe.CreateGrid(that.options.Rules.GridSize)
	if err != nil {
		return fmt.Errorf("failed to create grid: %w", err)
	}

	if that.state.Phase.IsFinished() {
		that.resetToIdle()
	}

	that.cancelTasks()

	that.state = entity.MatchState{
		Grid:          grid,
		Turn:          startingTurn,
		AIEnabled:     aiEnabled,
		CanAcceptMove: true,
		Phase:         that.state.Phase,
	}
	that.aiActed = false

	if aiEnabled {
		that.aiCheck = that.scheduler.Every(that.options.AICheckInterval, that.playComputerTurn)
	}

	that.transition(entity.PhaseInProgress)

	log.Info("match started", "turn", startingTurn, "ai", aiEnabled)

	return nil
}

// RequestTransition - moves the match to the target phase. Only a return to Idle can be
// requested; the other phases are reached through StartMatch and the move outcomes.
func (that *MatchController) RequestTransition(target entity.Phase) error {
	if target == that.state.Phase {
		return nil
	}

	if target != entity.PhaseIdle {
		return fmt.Errorf("%w: %s to %s", apperror.ErrInvalidTransition, that.state.Phase, target)
	}

	that.resetToIdle()

	return nil
}

// SubmitMove - accepts a move intent for the player holding the turn and schedules its
// resolution after the settle delay. The move gate stays closed until it is resolved.
func (that *MatchController) SubmitMove(coord entity.Coordinate) error {
	if that.state.IsComputerTurn() {
		return fmt.Errorf("%w: computer is playing %s", apperror.ErrNotYourTurn, that.state.Turn)
	}

	return that.submit(coord)
}

func (that *MatchController) submit(coord entity.Coordinate) error {
	if !that.state.IsOngoing() {
		return apperror.ErrMatchNotInProgress
	}

	if !that.state.CanAcceptMove {
		return apperror.ErrMoveGateClosed
	}

	if !that.state.Grid.InBounds(coord) {
		return fmt.Errorf("%w: %s", apperror.ErrCoordinateOutOfRange, coord)
	}

	that.state.CanAcceptMove = false

	if that.resolution != nil {
		that.resolution.Cancel()
	}
	that.resolution = that.scheduler.After(that.options.SettleDelay, func() {
		that.resolution = nil
		that.resolveMove(coord)
	})

	that.events.Publish(event.MoveRegistered{Coordinate: coord})

	return nil
}

func (that *MatchController) resolveMove(coord entity.Coordinate) {
	log := that.logger.With("method", "resolveMove", "cell", coord.String())

	marker, accepted := that.RegisterMarker(coord)
	if !accepted {
		log.Warn("cell already occupied, move discarded", "turn", that.state.Turn)

		that.state.CanAcceptMove = true
		if that.state.IsComputerTurn() {
			that.aiActed = false
		}

		return
	}

	if err := that.EvaluateOutcome(marker); err != nil {
		log.Error("failed to evaluate move outcome", "error", err)
	}
}

// RegisterMarker - writes the current turn's mark into the cell. It returns false and
// changes nothing when the cell is already taken. The coordinate must be in range.
func (that *MatchController) RegisterMarker(coord entity.Coordinate) (entity.Mark, bool) {
	if that.state.Grid.At(coord) != entity.MarkEmpty {
		return entity.MarkEmpty, false
	}

	marker := that.state.Turn.Mark()
	that.state.Grid.Set(coord, marker)

	return marker, true
}

// EvaluateOutcome - decides whether the marker just played won, drew or passes the turn.
func (that *MatchController) EvaluateOutcome(justPlayed entity.Mark) error {
	result, err := tictactoe.CheckWinnerWithCount(that.state.Grid, justPlayed, that.options.Rules.MatchCount)
	if err != nil {
		return fmt.Errorf("failed to check winner: %w", err)
	}

	if result.Won {
		that.finishWon(result.Coordinates)
		return nil
	}

	if _, found := tictactoe.TryGetRandomEmptyCell(that.state.Grid, that.rnd); !found {
		that.finishDraw()
		return nil
	}

	that.state.Turn = that.state.Turn.Opponent()
	if that.state.IsComputerTurn() {
		// the only place the flag is reset during a match
		that.aiActed = false
	}

	that.state.CanAcceptMove = true
	that.events.Publish(event.TurnChanged{Turn: that.state.Turn, AIEnabled: that.state.AIEnabled})

	return nil
}

func (that *MatchController) finishWon(sequence []entity.Coordinate) {
	that.stopComputer()

	that.state.CanAcceptMove = false
	that.state.Winner = that.state.Turn
	that.state.WinnerIsComputer = that.state.IsComputerTurn()
	that.state.WinningSequence = append([]entity.Coordinate(nil), sequence...)

	that.events.Publish(event.WinningSequence{Coordinates: append([]entity.Coordinate(nil), sequence...)})
	that.events.Publish(event.MatchWon{Turn: that.state.Winner, WasComputer: that.state.WinnerIsComputer})

	that.logger.Info("match won", "turn", that.state.Winner, "computer", that.state.WinnerIsComputer)

	that.transition(entity.PhaseWon)
	that.scheduleResultsTimeout()
}

func (that *MatchController) finishDraw() {
	that.stopComputer()

	that.state.CanAcceptMove = false

	that.events.Publish(event.MatchDraw{})

	that.logger.Info("match ended in a draw")

	that.transition(entity.PhaseDraw)
	that.scheduleResultsTimeout()
}

// playComputerTurn - periodic check for the computer opponent. It submits at most one
// move per computer turn no matter how often it fires.
func (that *MatchController) playComputerTurn() {
	if !that.state.IsOngoing() || !that.state.IsComputerTurn() || that.aiActed {
		return
	}

	cell, err := that.bot.PickMove(that.state.Grid)
	if err != nil {
		that.logger.Warn("computer could not pick a move", "error", err)
		return
	}

	that.aiActed = true

	if err = that.submit(cell); err != nil {
		that.logger.Error("computer move rejected", "cell", cell.String(), "error", err)
	}
}

func (that *MatchController) scheduleResultsTimeout() {
	if that.options.ResultsTimeout <= 0 {
		return
	}

	that.resultsTimer = that.scheduler.After(that.options.ResultsTimeout, func() {
		that.resultsTimer = nil
		that.resetToIdle()
	})
}

// resetToIdle - cancels pending work, drops the match state and moves to Idle.
func (that *MatchController) resetToIdle() {
	that.cancelTasks()

	phase := that.state.Phase
	that.state = entity.MatchState{Phase: phase}
	that.aiActed = false

	that.transition(entity.PhaseIdle)
}

func (that *MatchController) transition(to entity.Phase) {
	from := that.state.Phase
	if from == to {
		return
	}

	that.state.Phase = to
	that.events.Publish(event.PhaseChanged{From: from, To: to})
}

func (that *MatchController) stopComputer() {
	if that.aiCheck != nil {
		that.aiCheck.Cancel()
		that.aiCheck = nil
	}
}

func (that *MatchController) cancelTasks() {
	if that.resolution != nil {
		that.resolution.Cancel()
		that.resolution = nil
	}

	if that.resultsTimer != nil {
		that.resultsTimer.Cancel()
		that.resultsTimer = nil
	}

	that.stopComputer()
}
