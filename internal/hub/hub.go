package hub

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DoyleJ11/hex-tactics-backend/internal/lobby"
	"github.com/DoyleJ11/hex-tactics-backend/internal/room"
	"go.uber.org/zap"
)

const DefaultSweepInterval = time.Second

var ErrClosed = errors.New("hub closed")

type HubMsg interface{ isHubMsg() }

type CreateRoom struct {
	Setup *room.Setup
	Reply chan Created
}

// Created carries the new room's lobby and both seat tokens. Err is set when
// the room could not be created.
type Created struct {
	Lobby  *lobby.Lobby
	Code   string
	Tokens [2]string
	Err    error
}

type GetRoom struct {
	Code  string
	Reply chan *lobby.Lobby
}

type RemoveRoom struct {
	Code string
}

// Tick sweeps every room at Now. Reply, if set, receives the codes of rooms
// that were forfeited.
type Tick struct {
	Now   time.Time
	Reply chan []string
}

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (RemoveRoom) isHubMsg()  {}
func (Tick) isHubMsg()        {}
func (ShutdownHub) isHubMsg() {}

type Hub struct {
	inbox    chan HubMsg
	lobbies  map[string]*lobby.Lobby
	log      *zap.Logger
	now      func() time.Time
	interval time.Duration
	roomOpts []room.Option
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

type Option func(*Hub)

func WithLogger(log *zap.Logger) Option {
	return func(h *Hub) {
		if log != nil {
			h.log = log
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(h *Hub) { h.now = now }
}

// WithSweepInterval sets the ticker period. Zero or less disables the
// ticker so sweeps only happen on Tick messages.
func WithSweepInterval(d time.Duration) Option {
	return func(h *Hub) { h.interval = d }
}

func WithRoomOptions(opts ...room.Option) Option {
	return func(h *Hub) { h.roomOpts = append(h.roomOpts, opts...) }
}

func NewHub(parent context.Context, opts ...Option) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		lobbies:  make(map[string]*lobby.Lobby),
		log:      zap.NewNop(),
		now:      time.Now,
		interval: DefaultSweepInterval,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) Done() <-chan struct{} { return h.done }

// CreateRoom asks the hub for a new room and waits for it.
func (h *Hub) CreateRoom(ctx context.Context, setup *room.Setup) (Created, error) {
	reply := make(chan Created, 1)
	if err := h.send(ctx, CreateRoom{Setup: setup, Reply: reply}); err != nil {
		return Created{}, err
	}
	select {
	case c := <-reply:
		return c, c.Err
	case <-h.done:
		return Created{}, ErrClosed
	case <-ctx.Done():
		return Created{}, ctx.Err()
	}
}

// Room returns the lobby for code, or nil.
func (h *Hub) Room(ctx context.Context, code string) *lobby.Lobby {
	reply := make(chan *lobby.Lobby, 1)
	if h.send(ctx, GetRoom{Code: code, Reply: reply}) != nil {
		return nil
	}
	select {
	case lb := <-reply:
		return lb
	case <-h.done:
		return nil
	case <-ctx.Done():
		return nil
	}
}

func (h *Hub) Shutdown() {
	select {
	case h.inbox <- ShutdownHub{}:
	case <-h.done:
		return
	}
	<-h.done
}

func (h *Hub) send(ctx context.Context, m HubMsg) error {
	select {
	case <-h.done:
		return ErrClosed
	default:
	}
	select {
	case h.inbox <- m:
		return nil
	case <-h.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) loop() {
	defer close(h.done)

	var tick <-chan time.Time
	if h.interval > 0 {
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case <-tick:
			h.sweep(h.now())

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				msg.Reply <- h.create(msg.Setup)

			case GetRoom:
				lb := h.lobbies[msg.Code] // May be nil
				if lb != nil && isDone(lb) {
					delete(h.lobbies, msg.Code)
					lb = nil
				}
				msg.Reply <- lb

			case RemoveRoom:
				if lb := h.lobbies[msg.Code]; lb != nil {
					lb.Send(h.ctx, lobby.Shutdown{})
					delete(h.lobbies, msg.Code)
				}

			case Tick:
				forfeited := h.sweep(msg.Now)
				if msg.Reply != nil {
					msg.Reply <- forfeited
				}

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) create(setup *room.Setup) Created {
	var code string
	for {
		c, err := room.GenerateCode()
		if err != nil {
			return Created{Err: fmt.Errorf("generate room code: %w", err)}
		}
		if _, taken := h.lobbies[c]; !taken {
			code = c
			break
		}
	}

	r, err := room.New(code, setup, h.now(), h.roomOpts...)
	if err != nil {
		return Created{Err: fmt.Errorf("create room: %w", err)}
	}
	tokens := [2]string{r.Seats[0].Token, r.Seats[1].Token}

	lb := lobby.New(h.ctx, r, lobby.WithLogger(h.log), lobby.WithClock(h.now))
	h.lobbies[code] = lb
	h.log.Info("room created", zap.String("room", code), zap.Int("rooms", len(h.lobbies)))
	return Created{Lobby: lb, Code: code, Tokens: tokens}
}

// sweep runs every room's reconnect deadline check and drops rooms that
// nobody is attached to any more.
func (h *Hub) sweep(now time.Time) []string {
	var forfeited []string
	for code, lb := range h.lobbies {
		reply := make(chan room.Outcome, 1)
		if !lb.Send(h.ctx, lobby.Tick{Now: now, Reply: reply}) {
			delete(h.lobbies, code)
			continue
		}
		var outcome room.Outcome
		select {
		case outcome = <-reply:
		case <-lb.Done():
			delete(h.lobbies, code)
			continue
		case <-h.ctx.Done():
			return forfeited
		}

		switch outcome {
		case room.Forfeited:
			forfeited = append(forfeited, code)
		case room.Abandoned:
			lb.Send(h.ctx, lobby.Shutdown{})
			delete(h.lobbies, code)
			h.log.Info("room abandoned", zap.String("room", code), zap.Int("rooms", len(h.lobbies)))
		}
	}
	return forfeited
}

func (h *Hub) shutdown() {
	for _, lb := range h.lobbies {
		if lb.Send(context.Background(), lobby.Shutdown{}) {
			<-lb.Done()
		}
	}
	clear(h.lobbies)
	h.cancel()
	h.log.Info("hub stopped")
}

func isDone(lb *lobby.Lobby) bool {
	select {
	case <-lb.Done():
		return true
	default:
		return false
	}
}
