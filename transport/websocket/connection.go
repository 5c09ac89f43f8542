package websocket

import (
	"log/slog"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-match/internal/event"
)

const writeWait = 10 * time.Second

// connection owns the write side of one socket. Everything written goes through outbox,
// so the socket has a single writer.
type connection struct {
	logger *slog.Logger
	conn   *ws.Conn
	outbox chan Message

	done      chan struct{}
	closeOnce sync.Once
}

func newConnection(logger *slog.Logger, conn *ws.Conn, outboxSize int) *connection {
	return &connection{
		logger: logger,
		conn:   conn,
		outbox: make(chan Message, outboxSize),
		done:   make(chan struct{}),
	}
}

// pushEvent - is an event.Listener. It runs on the session loop and must not block.
func (that *connection) pushEvent(e event.Event) {
	that.send(Message{Action: e.Name(), Payload: mustMarshal(e)})
}

func (that *connection) send(msg Message) {
	select {
	case <-that.done:
	case that.outbox <- msg:
	default:
		that.logger.Warn("outbox is full, message dropped", "action", msg.Action)
	}
}

func (that *connection) writeLoop() {
	log := that.logger.With("method", "writeLoop")

	for {
		select {
		case <-that.done:
			return
		case msg := <-that.outbox:
			if err := that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error("failed to set write deadline", "error", err)
			}

			if err := that.conn.WriteJSON(msg); err != nil {
				log.Error("failed to write message", "action", msg.Action, "error", err)
				that.close()
				return
			}
		}
	}
}

func (that *connection) close() {
	that.closeOnce.Do(func() {
		close(that.done)
		if err := that.conn.Close(); err != nil {
			that.logger.Debug("failed to close connection", "error", err)
		}
	})
}
