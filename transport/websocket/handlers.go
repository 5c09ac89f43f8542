package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-match/internal/entity"
	"github.com/rocketscienceinc/tictactoe-match/internal/usecase"
)

func (that *Server) handleStart(ctx context.Context, session *usecase.Session, msg *Message) (ResponsePayload, error) {
	var req startPayload
	if err := decodePayload(msg, &req); err != nil {
		return ResponsePayload{}, err
	}

	return apply(ctx, session, func(controller *usecase.MatchController) error {
		return controller.StartMatch(req.StartingTurn, req.AIEnabled)
	})
}

func (that *Server) handleMove(ctx context.Context, session *usecase.Session, msg *Message) (ResponsePayload, error) {
	var coord entity.Coordinate
	if err := decodePayload(msg, &coord); err != nil {
		return ResponsePayload{}, err
	}

	return apply(ctx, session, func(controller *usecase.MatchController) error {
		return controller.SubmitMove(coord)
	})
}

func (that *Server) handleTransition(ctx context.Context, session *usecase.Session, msg *Message) (ResponsePayload, error) {
	var req transitionPayload
	if err := decodePayload(msg, &req); err != nil {
		return ResponsePayload{}, err
	}

	return apply(ctx, session, func(controller *usecase.MatchController) error {
		return controller.RequestTransition(req.Phase)
	})
}

func (that *Server) handleSnapshot(ctx context.Context, session *usecase.Session, _ *Message) (ResponsePayload, error) {
	return snapshot(ctx, session)
}

// apply - runs fn on the session loop and returns the state it left behind.
func apply(ctx context.Context, session *usecase.Session, fn func(*usecase.MatchController) error) (ResponsePayload, error) {
	if err := session.Do(ctx, fn); err != nil {
		return ResponsePayload{}, err
	}

	return snapshot(ctx, session)
}

func snapshot(ctx context.Context, session *usecase.Session) (ResponsePayload, error) {
	state, err := session.Snapshot(ctx)
	if err != nil {
		return ResponsePayload{}, fmt.Errorf("failed to read match state: %w", err)
	}

	return ResponsePayload{Match: &state}, nil
}

func decodePayload(msg *Message, target any) error {
	if err := json.Unmarshal(msg.Payload, target); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	return nil
}
