package ws

import (
	"context"
	"sync"
	"time"

	"github.com/DoyleJ11/hex-tactics-backend/internal/lobby"
	"github.com/DoyleJ11/hex-tactics-backend/internal/types"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeTimeout = 5 * time.Second

	// StatusSeatReclaimed closes a connection whose seat was taken over by
	// a newer connection.
	StatusSeatReclaimed websocket.StatusCode = 4000
)

// session is the lobby's view of one websocket: a bounded outbox drained by
// a writer goroutine.
type session struct {
	id     string
	out    chan types.ServerMessage
	closed chan struct{}
	once   sync.Once
	reason lobby.CloseReason
}

func newSession(id string, buffer int) *session {
	return &session{
		id:     id,
		out:    make(chan types.ServerMessage, buffer),
		closed: make(chan struct{}),
	}
}

func (s *session) ID() string { return s.id }

func (s *session) Send(msg types.ServerMessage) bool {
	select {
	case <-s.closed:
		return false
	default:
	}
	select {
	case s.out <- msg:
		return true
	default:
		return false
	}
}

func (s *session) Close(reason lobby.CloseReason) {
	s.once.Do(func() {
		s.reason = reason
		close(s.closed)
	})
}

func (s *session) writeLoop(ctx context.Context, conn *websocket.Conn, log *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return

		case <-s.closed:
			log.Debug("closing connection", zap.Stringer("reason", s.reason))
			_ = conn.Close(closeStatus(s.reason), s.reason.String())
			return

		case msg := <-s.out:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, conn, msg)
			cancel()
			if err != nil {
				log.Debug("write failed", zap.Error(err))
				_ = conn.Close(websocket.StatusInternalError, "write failed")
				return
			}
		}
	}
}

func closeStatus(reason lobby.CloseReason) websocket.StatusCode {
	switch reason {
	case lobby.CloseReclaimed:
		return StatusSeatReclaimed
	case lobby.CloseSlow:
		return websocket.StatusTryAgainLater
	default:
		return websocket.StatusGoingAway
	}
}
