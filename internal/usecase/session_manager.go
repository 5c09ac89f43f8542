package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-match/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-match/internal/entity"
	"github.com/rocketscienceinc/tictactoe-match/internal/event"
	"github.com/rocketscienceinc/tictactoe-match/internal/scheduler"
	"github.com/rocketscienceinc/tictactoe-match/internal/service"
)

// Session is one match with its own event loop, event bus and random source.
type Session struct {
	ID string

	loop        *scheduler.Loop
	bus         *event.Bus
	controller  *MatchController
	unsubscribe []func()
}

// Do - runs fn with the session's controller on the session loop and returns its error.
func (that *Session) Do(ctx context.Context, fn func(controller *MatchController) error) error {
	var fnErr error

	if err := that.loop.Do(ctx, func() { fnErr = fn(that.controller) }); err != nil {
		return fmt.Errorf("session %s: %w", that.ID, err)
	}

	return fnErr
}

// Snapshot - returns a copy of the session's match state.
func (that *Session) Snapshot(ctx context.Context) (entity.MatchState, error) {
	var state entity.MatchState

	err := that.Do(ctx, func(controller *MatchController) error {
		state = controller.Snapshot()
		return nil
	})

	return state, err
}

// Subscribe - adds a listener to the session's bus for the session lifetime.
func (that *Session) Subscribe(listener event.Listener) func() {
	return that.bus.Subscribe(listener)
}

func (that *Session) close() {
	for _, unsubscribe := range that.unsubscribe {
		unsubscribe()
	}

	that.loop.Stop()
}

// SessionManager creates and tracks match sessions. Sessions share nothing but the
// listeners subscribed to each of their buses.
type SessionManager struct {
	logger    *slog.Logger
	options   MatchOptions
	queueSize int
	listeners []event.Listener

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionManager(logger *slog.Logger, options MatchOptions, queueSize int, listeners ...event.Listener) (*SessionManager, error) {
	if err := options.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create session manager: %w", err)
	}

	return &SessionManager{
		logger:    logger.With("component", "sessions"),
		options:   options,
		queueSize: queueSize,
		listeners: listeners,
		sessions:  make(map[string]*Session),
	}, nil
}

func (that *SessionManager) Create() (*Session, error) {
	id := uuid.NewString()

	loop := scheduler.NewLoop(that.queueSize)
	bus := event.NewBus()
	rnd := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint: gosec // game randomness

	controller, err := NewMatchController(
		that.logger.With("sessionID", id),
		loop,
		bus,
		service.NewBotService(rnd),
		rnd,
		that.options,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	session := &Session{
		ID:         id,
		loop:       loop,
		bus:        bus,
		controller: controller,
	}

	for _, listener := range that.listeners {
		session.unsubscribe = append(session.unsubscribe, bus.Subscribe(listener))
	}

	loop.Start()

	that.mu.Lock()
	that.sessions[id] = session
	that.mu.Unlock()

	that.logger.Info("session created", "sessionID", id)

	return session, nil
}

func (that *SessionManager) Get(id string) (*Session, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	session, ok := that.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	return session, nil
}

// Delete - stops the session loop and drops its listeners.
func (that *SessionManager) Delete(id string) error {
	that.mu.Lock()
	session, ok := that.sessions[id]
	delete(that.sessions, id)
	that.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	session.close()
	that.logger.Info("session deleted", "sessionID", id)

	return nil
}

func (that *SessionManager) Len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.sessions)
}

// Close - deletes every session.
func (that *SessionManager) Close() {
	that.mu.Lock()
	sessions := that.sessions
	that.sessions = make(map[string]*Session)
	that.mu.Unlock()

	for _, session := range sessions {
		session.close()
	}
}
