package ws

import (
	"context"
	"net/http"

	"github.com/DoyleJ11/hex-tactics-backend/internal/engine"
	"github.com/DoyleJ11/hex-tactics-backend/internal/hub"
	"github.com/DoyleJ11/hex-tactics-backend/internal/lobby"
	"github.com/DoyleJ11/hex-tactics-backend/internal/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

const DefaultSendBuffer = 32

type Options struct {
	Logger        *zap.Logger
	InviteBaseURL string
	// AllowedOrigins are host patterns accepted besides the request's own
	// host.
	AllowedOrigins []string
	SendBuffer     int
}

func Handler(h *hub.Hub, opts Options) http.HandlerFunc {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	buffer := opts.SendBuffer
	if buffer <= 0 {
		buffer = DefaultSendBuffer
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.AllowedOrigins,
		})
		if err != nil {
			log.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		s := newSession(uuid.NewString(), buffer)
		c := &client{
			hub:  h,
			sess: s,
			log:  log.With(zap.String("conn", s.id)),
			base: InviteBase(r, opts.InviteBaseURL),
		}
		c.log.Debug("connection opened", zap.String("remote", r.RemoteAddr))

		go s.writeLoop(ctx, conn, c.log)
		defer c.leave()

		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				c.log.Debug("connection closed", zap.Int("status", int(websocket.CloseStatus(err))))
				return
			}
			msg, ok := types.ParseClientMessage(data)
			if !ok {
				c.fail(types.ErrBadMessage, "Malformed message.")
				continue
			}
			c.handle(ctx, msg)
		}
	}
}

// client is the reader side of one connection. It is only touched by the
// reader goroutine.
type client struct {
	hub  *hub.Hub
	sess *session
	log  *zap.Logger
	base string

	lb   *lobby.Lobby
	seat engine.Seat
}

func (c *client) handle(ctx context.Context, msg types.ClientMessage) {
	switch msg.Type {
	case types.TypeCreateRoom:
		if c.lb != nil {
			c.fail(types.ErrAlreadyJoined, "Already joined a room.")
			return
		}
		created, err := c.hub.CreateRoom(ctx, msg.Setup)
		if err != nil {
			c.log.Error("create room failed", zap.Error(err))
			c.fail(types.ErrRoomNotFound, "Room could not be created.")
			return
		}
		c.sess.Send(types.NewRoomCreated(created.Code, engine.SeatOne, created.Tokens[0], InviteLinks(c.base, created.Code, created.Tokens)))
		if code := c.join(ctx, created.Lobby, created.Tokens[0], nil); code != "" {
			c.fail(code, "Room could not be joined.")
		}

	case types.TypeJoinRoom:
		if c.lb != nil {
			c.fail(types.ErrAlreadyJoined, "Already joined a room.")
			return
		}
		lb := c.hub.Room(ctx, msg.RoomCode)
		if lb == nil {
			c.fail(types.ErrRoomNotFound, "Room not found.")
			return
		}
		switch c.join(ctx, lb, msg.SeatToken, msg.Loadout) {
		case types.ErrInvalidToken:
			c.fail(types.ErrInvalidToken, "Invalid seat token.")
		case types.ErrRoomNotFound:
			c.fail(types.ErrRoomNotFound, "Room not found.")
		}

	case types.TypeCommand:
		if c.lb == nil {
			c.fail(types.ErrNotJoined, "Join a room first.")
			return
		}
		sent := c.lb.Send(ctx, lobby.FromClient{
			Seat:   c.seat,
			ConnID: c.sess.id,
			CmdID:  msg.CmdID,
			Cmd:    *msg.Command,
		})
		if !sent {
			c.lb = nil
			c.fail(types.ErrRoomNotFound, "Room not found.")
		}
	}
}

// join attaches this connection to a seat and returns a transport error
// code on failure.
func (c *client) join(ctx context.Context, lb *lobby.Lobby, token string, loadout []engine.CardDefID) string {
	reply := make(chan lobby.JoinResult, 1)
	if !lb.Send(ctx, lobby.Join{Token: token, Conn: c.sess, Loadout: loadout, Reply: reply}) {
		return types.ErrRoomNotFound
	}
	select {
	case res := <-reply:
		if !res.OK {
			return types.ErrInvalidToken
		}
		c.lb, c.seat = lb, res.Seat
		c.log = c.log.With(zap.String("room", lb.Code()), zap.Int("seat", int(res.Seat)))
		c.log.Info("joined room")
		return ""
	case <-lb.Done():
		return types.ErrRoomNotFound
	case <-ctx.Done():
		return types.ErrRoomNotFound
	}
}

func (c *client) leave() {
	if c.lb == nil {
		return
	}
	c.lb.Send(context.Background(), lobby.Leave{Seat: c.seat, ConnID: c.sess.id})
}

func (c *client) fail(code, message string) {
	c.sess.Send(types.NewError(code, message))
}
