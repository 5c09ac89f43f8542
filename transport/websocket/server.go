package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	ws "github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-match/internal/usecase"
)

const defaultOutboxSize = 32

var (
	ErrUnknownAction    = errors.New("unknown action")
	ErrMalformedPayload = errors.New("malformed payload")
)

type sessionGetter interface {
	Get(id string) (*usecase.Session, error)
}

type handlerFunc func(ctx context.Context, session *usecase.Session, msg *Message) (ResponsePayload, error)

// Server streams the events of one session over a WebSocket and accepts match actions
// on the same socket.
type Server struct {
	logger     *slog.Logger
	sessions   sessionGetter
	upgrader   ws.Upgrader
	outboxSize int

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, sessions sessionGetter, outboxSize int) *Server {
	if outboxSize <= 0 {
		outboxSize = defaultOutboxSize
	}

	server := &Server{
		logger:     logger.With("component", "websocket"),
		sessions:   sessions,
		outboxSize: outboxSize,

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionStart] = server.handleStart
	server.handlers[actionMove] = server.handleMove
	server.handlers[actionTransition] = server.handleTransition
	server.handlers[actionSnapshot] = server.handleSnapshot

	return server
}

// ServeHTTP - upgrades the connection for the session named by the "id" route parameter.
func (that *Server) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	id := chi.URLParam(req, "id")

	session, err := that.sessions.Get(id)
	if err != nil {
		http.Error(writer, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		// the upgrader has already answered the request
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newConnection(that.logger.With("sessionID", id), conn, that.outboxSize)
	defer c.close()

	unsubscribe := session.Subscribe(c.pushEvent)
	defer unsubscribe()

	go c.writeLoop()

	log.Info("WebSocket connection established", "sessionID", id)

	that.handleMessages(req.Context(), session, c)
}

// handleMessages - processes messages from the client until the socket closes.
func (that *Server) handleMessages(ctx context.Context, session *usecase.Session, c *connection) {
	log := c.logger.With("method", "handleMessages")

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if ws.IsUnexpectedCloseError(err, ws.CloseNormalClosure, ws.CloseGoingAway) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		var msg Message
		if err = json.Unmarshal(data, &msg); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			c.send(response(actionError, ResponsePayload{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)))
			continue
		}

		handler, ok := that.handlers[msg.Action]
		if !ok {
			c.send(response(msg.Action, ResponsePayload{}, fmt.Errorf("%w: %q", ErrUnknownAction, msg.Action)))
			continue
		}

		payload, err := handler(ctx, session, &msg)
		if err != nil {
			log.Debug("action failed", "action", msg.Action, "error", err)
		}

		c.send(response(msg.Action, payload, err))
	}
}

func response(action string, payload ResponsePayload, err error) Message {
	if err != nil {
		payload.Error = err.Error()
	}

	return Message{Action: action, Payload: mustMarshal(payload)}
}
