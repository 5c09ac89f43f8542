package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	ws "github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-match/internal/entity"
	"github.com/rocketscienceinc/tictactoe-match/internal/event"
	"github.com/rocketscienceinc/tictactoe-match/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-match/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const readWait = 2 * time.Second

type fixture struct {
	server   *httptest.Server
	sessions *usecase.SessionManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions, err := usecase.NewSessionManager(logger, usecase.MatchOptions{
		Rules:           tictactoe.DefaultRules,
		SettleDelay:     time.Millisecond,
		AICheckInterval: time.Millisecond,
	}, 0)
	require.NoError(t, err)
	t.Cleanup(sessions.Close)

	router := chi.NewRouter()
	router.Handle("/sessions/{id}/events", New(logger, sessions, 0))

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &fixture{server: server, sessions: sessions}
}

func (that *fixture) url(id string) string {
	return "ws" + strings.TrimPrefix(that.server.URL, "http") + "/sessions/" + id + "/events"
}

func (that *fixture) dial(t *testing.T) *ws.Conn {
	t.Helper()

	session, err := that.sessions.Create()
	require.NoError(t, err)

	conn, resp, err := ws.DefaultDialer.Dial(that.url(session.ID), nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func sendAction(t *testing.T, conn *ws.Conn, action string, payload any) {
	t.Helper()

	msg := Message{Action: action}
	if payload != nil {
		msg.Payload = mustMarshal(payload)
	}

	require.NoError(t, conn.WriteJSON(msg))
}

// readUntil - reads messages until one has the given action and returns everything read.
func readUntil(t *testing.T, conn *ws.Conn, action string) []Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(readWait)))

	var read []Message
	for {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))

		read = append(read, msg)
		if msg.Action == action {
			return read
		}
	}
}

func actions(messages []Message) []string {
	names := make([]string, 0, len(messages))
	for _, msg := range messages {
		names = append(names, msg.Action)
	}
	return names
}

func decodeResponse(t *testing.T, msg Message) ResponsePayload {
	t.Helper()

	var payload ResponsePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))

	return payload
}

func TestServer_Connect(t *testing.T) {
	t.Run("Unknown session is not upgraded", func(t *testing.T) {
		f := newFixture(t)

		_, resp, err := ws.DefaultDialer.Dial(f.url("missing"), nil)

		require.Error(t, err)
		require.NotNil(t, resp)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Snapshot of a new session", func(t *testing.T) {
		f := newFixture(t)
		conn := f.dial(t)

		sendAction(t, conn, actionSnapshot, nil)
		read := readUntil(t, conn, actionSnapshot)

		payload := decodeResponse(t, read[len(read)-1])
		require.NotNil(t, payload.Match)
		assert.Equal(t, entity.PhaseIdle, payload.Match.Phase)
		assert.Empty(t, payload.Error)
	})
}

func TestServer_Match(t *testing.T) {
	t.Run("Start pushes the phase change before the answer", func(t *testing.T) {
		// Given: a connected socket
		f := newFixture(t)
		conn := f.dial(t)

		// When: starting a match
		sendAction(t, conn, actionStart, startPayload{StartingTurn: entity.TurnPlayerA})
		read := readUntil(t, conn, actionStart)

		// Then: the event arrives first and the answer carries the new state
		assert.Equal(t, []string{event.NamePhaseChanged, actionStart}, actions(read))

		var changed event.PhaseChanged
		require.NoError(t, json.Unmarshal(read[0].Payload, &changed))
		assert.Equal(t, event.PhaseChanged{From: entity.PhaseIdle, To: entity.PhaseInProgress}, changed)

		payload := decodeResponse(t, read[1])
		require.NotNil(t, payload.Match)
		assert.Equal(t, entity.PhaseInProgress, payload.Match.Phase)
		assert.Equal(t, entity.TurnPlayerA, payload.Match.Turn)
	})

	t.Run("Move is registered then the turn passes", func(t *testing.T) {
		// Given: a running match
		f := newFixture(t)
		conn := f.dial(t)
		sendAction(t, conn, actionStart, startPayload{StartingTurn: entity.TurnPlayerA})
		readUntil(t, conn, actionStart)

		// When: submitting a move
		sendAction(t, conn, actionMove, entity.Coordinate{Row: 1, Col: 1})

		// Then: the move is registered and, once settled, the turn changes. The answer
		// may arrive on either side of the turn change.
		read := readUntil(t, conn, event.NameTurnChanged)
		assert.Equal(t, event.NameMoveRegistered, read[0].Action)
		assert.Subset(t, []string{event.NameMoveRegistered, actionMove, event.NameTurnChanged}, actions(read))

		var turn event.TurnChanged
		require.NoError(t, json.Unmarshal(read[len(read)-1].Payload, &turn))
		assert.Equal(t, entity.TurnPlayerB, turn.Turn)
	})

	t.Run("Failed action answers with the error", func(t *testing.T) {
		f := newFixture(t)
		conn := f.dial(t)

		sendAction(t, conn, actionMove, entity.Coordinate{Row: 0, Col: 0})
		read := readUntil(t, conn, actionMove)

		payload := decodeResponse(t, read[len(read)-1])
		assert.Nil(t, payload.Match)
		assert.Contains(t, payload.Error, "not in progress")
	})

	t.Run("Transition back to idle", func(t *testing.T) {
		f := newFixture(t)
		conn := f.dial(t)
		sendAction(t, conn, actionStart, startPayload{StartingTurn: entity.TurnPlayerB})
		readUntil(t, conn, actionStart)

		sendAction(t, conn, actionTransition, transitionPayload{Phase: entity.PhaseIdle})
		read := readUntil(t, conn, actionTransition)

		payload := decodeResponse(t, read[len(read)-1])
		require.NotNil(t, payload.Match)
		assert.Equal(t, entity.PhaseIdle, payload.Match.Phase)
	})
}

func TestServer_BadMessages(t *testing.T) {
	t.Run("Unknown action", func(t *testing.T) {
		f := newFixture(t)
		conn := f.dial(t)

		sendAction(t, conn, "match:surrender", nil)
		read := readUntil(t, conn, "match:surrender")

		assert.Contains(t, decodeResponse(t, read[0]).Error, ErrUnknownAction.Error())
	})

	t.Run("Undecodable message", func(t *testing.T) {
		f := newFixture(t)
		conn := f.dial(t)

		require.NoError(t, conn.WriteMessage(ws.TextMessage, []byte("{not json")))
		read := readUntil(t, conn, actionError)

		assert.Contains(t, decodeResponse(t, read[0]).Error, ErrMalformedPayload.Error())
	})

	t.Run("Malformed payload", func(t *testing.T) {
		f := newFixture(t)
		conn := f.dial(t)

		sendAction(t, conn, actionStart, map[string]string{"starting_turn": "Nobody"})
		read := readUntil(t, conn, actionStart)

		assert.Contains(t, decodeResponse(t, read[0]).Error, ErrMalformedPayload.Error())
	})
}
