package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-match/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-match/internal/entity"
	"github.com/rocketscienceinc/tictactoe-match/internal/event"
	"github.com/rocketscienceinc/tictactoe-match/internal/scheduler"
	"github.com/rocketscienceinc/tictactoe-match/internal/tictactoe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncRecorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (that *syncRecorder) Listen(e event.Event) {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.events = append(that.events, e)
}

func (that *syncRecorder) count(name string) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	n := 0
	for _, e := range that.events {
		if e.Name() == name {
			n++
		}
	}
	return n
}

func newTestSessionManager(t *testing.T, listeners ...event.Listener) *SessionManager {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager, err := NewSessionManager(logger, MatchOptions{
		Rules:           tictactoe.DefaultRules,
		SettleDelay:     time.Millisecond,
		AICheckInterval: time.Millisecond,
	}, 0, listeners...)
	require.NoError(t, err)
	t.Cleanup(manager.Close)

	return manager
}

func TestSessionManager(t *testing.T) {
	ctx := context.Background()

	t.Run("Created session plays a match on its loop", func(t *testing.T) {
		// Given: a manager with a listener
		listener := &syncRecorder{}
		manager := newTestSessionManager(t, listener.Listen)

		session, err := manager.Create()
		require.NoError(t, err)
		assert.NotEmpty(t, session.ID)

		// When: starting a match and submitting a move
		require.NoError(t, session.Do(ctx, func(controller *MatchController) error {
			return controller.StartMatch(entity.TurnPlayerA, false)
		}))
		require.NoError(t, session.Do(ctx, func(controller *MatchController) error {
			return controller.SubmitMove(entity.Coordinate{Row: 1, Col: 1})
		}))

		// Then: the move settles and the listener sees the turn change
		require.Eventually(t, func() bool {
			state, snapErr := session.Snapshot(ctx)
			return snapErr == nil && state.Turn == entity.TurnPlayerB
		}, time.Second, time.Millisecond)
		assert.Equal(t, 1, listener.count(event.NameTurnChanged))
	})

	t.Run("Controller errors are returned by Do", func(t *testing.T) {
		manager := newTestSessionManager(t)
		session, err := manager.Create()
		require.NoError(t, err)

		err = session.Do(ctx, func(controller *MatchController) error {
			return controller.SubmitMove(entity.Coordinate{})
		})

		assert.ErrorIs(t, err, apperror.ErrMatchNotInProgress)
	})

	t.Run("Computer opponent plays against an idle human", func(t *testing.T) {
		manager := newTestSessionManager(t)
		session, err := manager.Create()
		require.NoError(t, err)

		require.NoError(t, session.Do(ctx, func(controller *MatchController) error {
			return controller.StartMatch(entity.TurnPlayerB, true)
		}))

		require.Eventually(t, func() bool {
			state, snapErr := session.Snapshot(ctx)
			return snapErr == nil && state.Turn == entity.TurnPlayerA && len(tictactoe.EmptyCells(state.Grid)) == 8
		}, time.Second, time.Millisecond)
	})

	t.Run("Deleted session is gone and stopped", func(t *testing.T) {
		// Given: an existing session
		listener := &syncRecorder{}
		manager := newTestSessionManager(t, listener.Listen)
		session, err := manager.Create()
		require.NoError(t, err)

		// When: deleting it
		require.NoError(t, manager.Delete(session.ID))

		// Then: lookups fail and the loop refuses work
		_, err = manager.Get(session.ID)
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
		require.ErrorIs(t, manager.Delete(session.ID), apperror.ErrSessionNotFound)

		err = session.Do(ctx, func(*MatchController) error { return nil })
		assert.ErrorIs(t, err, scheduler.ErrLoopStopped)
		assert.Zero(t, session.bus.Len())
		assert.Zero(t, manager.Len())
	})

	t.Run("Sessions do not share state", func(t *testing.T) {
		manager := newTestSessionManager(t)
		first, err := manager.Create()
		require.NoError(t, err)
		second, err := manager.Create()
		require.NoError(t, err)

		require.NoError(t, first.Do(ctx, func(controller *MatchController) error {
			return controller.StartMatch(entity.TurnPlayerA, false)
		}))

		state, err := second.Snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, entity.PhaseIdle, state.Phase)
		assert.Equal(t, 2, manager.Len())
	})
}
