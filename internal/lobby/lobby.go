package lobby

import (
	"context"
	"time"

	"github.com/DoyleJ11/hex-tactics-backend/internal/engine"
	"github.com/DoyleJ11/hex-tactics-backend/internal/room"
	"github.com/DoyleJ11/hex-tactics-backend/internal/types"
	"go.uber.org/zap"
)

type CloseReason int

const (
	CloseReclaimed CloseReason = iota
	CloseSlow
	CloseShutdown
)

func (r CloseReason) String() string {
	switch r {
	case CloseReclaimed:
		return "seat reclaimed"
	case CloseSlow:
		return "slow consumer"
	default:
		return "server shutting down"
	}
}

// Conn is a seat's outbound channel. Send must never block: it reports
// false when the message could not be queued.
type Conn interface {
	ID() string
	Send(msg types.ServerMessage) bool
	Close(reason CloseReason)
}

type Msg interface{ isLobbyMsg() }

// Join attaches Conn to the seat owning Token. The joiner receives
// "joined" before any broadcast.
type Join struct {
	Token   string
	Conn    Conn
	Loadout []engine.CardDefID
	Reply   chan JoinResult
}

type JoinResult struct {
	Seat engine.Seat
	OK   bool
}

// Leave detaches the seat if ConnID still holds it.
type Leave struct {
	Seat   engine.Seat
	ConnID string
}

type FromClient struct {
	Seat   engine.Seat
	ConnID string
	CmdID  string
	Cmd    room.Command
}

// Tick runs the reconnect deadline check at Now.
type Tick struct {
	Now   time.Time
	Reply chan room.Outcome
}

type GetState struct {
	Reply chan View
}

type Shutdown struct{}

func (Join) isLobbyMsg()       {}
func (Leave) isLobbyMsg()      {}
func (FromClient) isLobbyMsg() {}
func (Tick) isLobbyMsg()       {}
func (GetState) isLobbyMsg()   {}
func (Shutdown) isLobbyMsg()   {}

// View is a race-free copy of the room for inspection.
type View struct {
	Code      string
	Connected [2]bool
	Paused    bool
	Ended     bool
	EndReason string
	State     *engine.GameState
}

type Lobby struct {
	code    string
	inbox   chan Msg
	room    *room.Room
	conns   [2]Conn
	dropped bool
	log     *zap.Logger
	now     func() time.Time
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

type Option func(*Lobby)

func WithLogger(log *zap.Logger) Option {
	return func(l *Lobby) {
		if log != nil {
			l.log = log
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(l *Lobby) { l.now = now }
}

// New starts the actor that owns r. r must not be touched by the caller
// afterwards.
func New(parent context.Context, r *room.Room, opts ...Option) *Lobby {
	ctx, cancel := context.WithCancel(parent)

	l := &Lobby{
		code:   r.Code,
		inbox:  make(chan Msg, 64),
		room:   r,
		log:    zap.NewNop(),
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.log = l.log.With(zap.String("room", r.Code))

	go l.loop()
	return l
}

func (l *Lobby) Code() string { return l.code }

// Inbox is exposed so the hub, transport and tests can send messages.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

// Done is closed once the actor stopped.
func (l *Lobby) Done() <-chan struct{} { return l.done }

// Send delivers m unless the lobby stopped or ctx ended first.
func (l *Lobby) Send(ctx context.Context, m Msg) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.inbox <- m:
		return true
	case <-l.done:
		return false
	case <-ctx.Done():
		return false
	}
}

func (l *Lobby) loop() {
	defer close(l.done)
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				msg.Reply <- l.join(msg)

			case Leave:
				if l.room.DetachSeat(msg.Seat, msg.ConnID, l.now()) {
					l.conns[msg.Seat] = nil
					l.log.Info("seat detached", zap.Int("seat", int(msg.Seat)), zap.Bool("paused", l.room.Paused))
					l.broadcastPresence()
					l.broadcastSnapshots()
				}

			case FromClient:
				l.command(msg)

			case Tick:
				msg.Reply <- l.tick(msg.Now)

			case GetState:
				msg.Reply <- View{
					Code:      l.room.Code,
					Connected: l.room.Presence().Connected,
					Paused:    l.room.Paused,
					Ended:     l.room.Ended,
					EndReason: l.room.EndReason,
					State:     l.room.State.Clone(),
				}

			case Shutdown:
				l.shutdown()
				return
			}
			l.flushDropped()
		}
	}
}

func (l *Lobby) join(msg Join) JoinResult {
	seat, ok := l.room.SeatByToken(msg.Token)
	if !ok {
		return JoinResult{}
	}
	if prev := l.room.AttachSeat(seat, msg.Conn.ID(), l.now()); prev != "" && l.conns[seat] != nil {
		l.log.Info("seat reclaimed", zap.Int("seat", int(seat)), zap.String("previous", prev))
		l.conns[seat].Close(CloseReclaimed)
	}
	l.conns[seat] = msg.Conn
	l.room.ApplyLoadoutOnFirstJoin(seat, msg.Loadout)
	l.log.Info("seat attached", zap.Int("seat", int(seat)), zap.String("conn", msg.Conn.ID()))

	l.send(seat, types.NewJoined(l.room.Code, seat))
	l.broadcastPresence()
	l.broadcastSnapshots()
	if l.room.Ended {
		reason := l.room.EndReason
		if reason == "" {
			reason = "ended"
		}
		l.broadcastMatchEnd(reason)
	}
	return JoinResult{Seat: seat, OK: true}
}

func (l *Lobby) command(msg FromClient) {
	conn := l.conns[msg.Seat]
	if conn == nil || conn.ID() != msg.ConnID {
		return
	}
	wasEnded := l.room.Ended
	res := room.ApplyCommand(l.room, msg.Seat, msg.Cmd)
	l.send(msg.Seat, types.NewCommandResult(msg.CmdID, res))
	if !res.OK {
		l.log.Debug("command rejected",
			zap.Int("seat", int(msg.Seat)),
			zap.String("command", string(msg.Cmd.Type)),
			zap.String("code", string(res.ErrorCode)))
		return
	}

	if res.Replay != nil {
		l.broadcastResolution(res.Replay)
	} else {
		l.broadcastSnapshots()
	}
	l.broadcastPresence()

	if !wasEnded && l.room.Ended {
		l.log.Info("match ended", zap.String("reason", l.room.EndReason))
		l.broadcastMatchEnd(l.room.EndReason)
	}
}

func (l *Lobby) tick(now time.Time) room.Outcome {
	outcome := l.room.Expire(now)
	if outcome == room.Forfeited {
		l.log.Info("match forfeited", zap.Int("winner", int(*l.room.Winner())))
		l.broadcastPresence()
		l.broadcastSnapshots()
		l.broadcastMatchEnd(l.room.EndReason)
	}
	return outcome
}

// send queues msg for seat. A seat that cannot keep up is detached and its
// connection closed so the other seat is never held back.
func (l *Lobby) send(seat engine.Seat, msg types.ServerMessage) {
	conn := l.conns[seat]
	if conn == nil {
		return
	}
	if conn.Send(msg) {
		return
	}
	l.log.Warn("dropping slow seat", zap.Int("seat", int(seat)), zap.String("conn", conn.ID()))
	l.conns[seat] = nil
	conn.Close(CloseSlow)
	l.room.DetachSeat(seat, conn.ID(), l.now())
	l.dropped = true
}

// flushDropped tells the remaining seat about seats dropped while
// broadcasting.
func (l *Lobby) flushDropped() {
	for l.dropped {
		l.dropped = false
		l.broadcastPresence()
		l.broadcastSnapshots()
	}
}

func (l *Lobby) broadcastSnapshots() {
	presence := l.room.Presence()
	serverTime := l.now().UnixMilli()
	for _, seat := range engine.Seats {
		if l.conns[seat] == nil {
			continue
		}
		view, meta := room.BuildStateView(l.room, seat)
		l.send(seat, types.NewSnapshot(view, meta, presence, serverTime))
	}
}

func (l *Lobby) broadcastResolution(replay *room.Replay) {
	presence := l.room.Presence()
	serverTime := l.now().UnixMilli()
	for _, seat := range engine.Seats {
		if l.conns[seat] == nil {
			continue
		}
		start, startMeta := room.BuildStateViewFor(l.room, replay.ActionStart, seat)
		final, finalMeta := room.BuildStateViewFor(l.room, replay.Final, seat)
		l.send(seat, types.NewResolutionBundle(start, final, startMeta, finalMeta, presence, serverTime))
	}
}

func (l *Lobby) broadcastPresence() {
	msg := types.NewPresenceUpdate(l.room.Presence())
	for _, seat := range engine.Seats {
		l.send(seat, msg)
	}
}

func (l *Lobby) broadcastMatchEnd(reason string) {
	msg := types.NewMatchEnd(l.room.Winner(), reason)
	for _, seat := range engine.Seats {
		l.send(seat, msg)
	}
}

func (l *Lobby) shutdown() {
	for seat, conn := range l.conns {
		if conn != nil {
			conn.Close(CloseShutdown)
			l.conns[seat] = nil
		}
	}
	l.cancel()
	l.log.Debug("lobby stopped")
}
