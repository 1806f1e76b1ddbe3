// Package room holds the authoritative per-match container: seats, tokens,
// presence, the reconnect grace window, loadouts and the command handlers
// that mutate the canonical game state. Nothing here is safe for concurrent
// use; callers serialize access per room.
package room

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/DoyleJ11/hex-tactics-backend/internal/engine"
)

const DefaultReconnectGrace = 10 * time.Minute

const (
	EndVictory           = "victory"
	EndDisconnectTimeout = "disconnect_timeout"
)

const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 6
	tokenBytes   = 24
)

// GenerateCode returns a random room code. Ambiguous characters (I, O, 0, 1)
// are never used.
func GenerateCode() (string, error) {
	code := make([]byte, codeLength)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = codeAlphabet[num.Int64()]
	}
	return string(code), nil
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// SeatState tracks one seat's credentials and presence. ConnID identifies
// the connection currently holding the seat, empty when none does.
type SeatState struct {
	Token         string
	ConnID        string
	Connected     bool
	LastSeen      time.Time
	LoadoutLocked bool
}

type Loadouts struct {
	P1 []engine.CardDefID `json:"p1"`
	P2 []engine.CardDefID `json:"p2"`
}

// Setup is the optional configuration a room is created with. Settings
// fields missing from the JSON keep their defaults; every value is clamped
// when the room is built.
type Setup struct {
	Settings engine.Settings `json:"settings"`
	Loadouts Loadouts        `json:"loadouts"`
}

func (s *Setup) UnmarshalJSON(data []byte) error {
	type plain Setup
	p := plain{Settings: engine.DefaultSettings()}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Setup(p)
	return nil
}

type Room struct {
	Code              string
	State             *engine.GameState
	Seats             [2]SeatState
	SeatLoadouts      [2][]engine.CardDefID
	RematchReady      [2]bool
	Paused            bool
	ReconnectDeadline time.Time
	Ended             bool
	EndReason         string
	CreatedAt         time.Time

	grace      time.Duration
	engineOpts []engine.Option
}

type Option func(*Room)

// WithReconnectGrace sets how long a disconnected seat has to come back.
func WithReconnectGrace(d time.Duration) Option {
	return func(r *Room) {
		if d > 0 {
			r.grace = d
		}
	}
}

// WithEngineOptions passes options through to every game state the room
// builds, including rematches.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(r *Room) { r.engineOpts = append(r.engineOpts, opts...) }
}

// New builds a room with a fresh game. A nil setup uses default settings and
// the starting deck for both seats. Seat 0's loadout is locked immediately;
// seat 1 may still submit one on first join.
func New(code string, setup *Setup, now time.Time, opts ...Option) (*Room, error) {
	r := &Room{Code: code, CreatedAt: now, grace: DefaultReconnectGrace}
	for _, opt := range opts {
		opt(r)
	}

	settings := engine.DefaultSettings()
	var loadouts Loadouts
	if setup != nil {
		settings = NormalizeSettings(setup.Settings)
		loadouts = setup.Loadouts
	}
	r.SeatLoadouts = [2][]engine.CardDefID{
		SanitizeDeck(orStartingDeck(loadouts.P1), settings),
		SanitizeDeck(orStartingDeck(loadouts.P2), settings),
	}

	for i := range r.Seats {
		token, err := newToken()
		if err != nil {
			return nil, fmt.Errorf("seat token: %w", err)
		}
		r.Seats[i] = SeatState{Token: token, LastSeen: now}
	}
	r.Seats[engine.SeatOne].LoadoutLocked = true

	r.State = engine.NewGameState(settings, r.SeatLoadouts, r.engineOpts...)
	return r, nil
}

func orStartingDeck(deck []engine.CardDefID) []engine.CardDefID {
	if deck == nil {
		return engine.StartingDeck()
	}
	return deck
}

// SeatByToken maps a seat token to its seat.
func (r *Room) SeatByToken(token string) (engine.Seat, bool) {
	for _, seat := range engine.Seats {
		if token != "" && r.Seats[seat].Token == token {
			return seat, true
		}
	}
	return 0, false
}

// AttachSeat gives the seat to connID and returns the connection it took
// the seat from, if any. The pause lifts once both seats are connected.
func (r *Room) AttachSeat(seat engine.Seat, connID string, now time.Time) (previous string) {
	st := &r.Seats[seat]
	if st.ConnID != "" && st.ConnID != connID {
		previous = st.ConnID
	}
	st.ConnID = connID
	st.Connected = true
	st.LastSeen = now

	if r.Seats[engine.SeatOne].Connected && r.Seats[engine.SeatTwo].Connected {
		r.Paused = false
		r.ReconnectDeadline = time.Time{}
	}
	return previous
}

// DetachSeat releases the seat if connID still holds it. A running match is
// paused and the reconnect deadline restarts, whether or not the other seat
// is connected. It reports false for connections that already lost the seat.
func (r *Room) DetachSeat(seat engine.Seat, connID string, now time.Time) bool {
	st := &r.Seats[seat]
	if st.ConnID != connID {
		return false
	}
	st.ConnID = ""
	st.Connected = false
	st.LastSeen = now

	if !r.Ended {
		r.Paused = true
		r.ReconnectDeadline = now.Add(r.grace)
	}
	return true
}

// ConnectedSeats lists the seats with a live connection.
func (r *Room) ConnectedSeats() []engine.Seat {
	seats := make([]engine.Seat, 0, 2)
	for _, seat := range engine.Seats {
		if r.Seats[seat].Connected {
			seats = append(seats, seat)
		}
	}
	return seats
}

type Outcome int

const (
	Unchanged Outcome = iota
	// Forfeited means the room just ended by disconnect timeout.
	Forfeited
	// Abandoned rooms should be removed from the registry.
	Abandoned
)

// Expire runs the periodic reconnect check. An elapsed deadline with one
// seat connected forfeits the match to that seat; with nobody connected the
// room is abandoned. Ended rooms nobody is connected to are abandoned too.
func (r *Room) Expire(now time.Time) Outcome {
	if r.Paused && !r.ReconnectDeadline.IsZero() && !now.Before(r.ReconnectDeadline) {
		r.Paused = false
		r.ReconnectDeadline = time.Time{}
		switch connected := r.ConnectedSeats(); len(connected) {
		case 0:
			return Abandoned
		case 1:
			engine.Forfeit(r.State, connected[0])
			r.Ended = true
			r.EndReason = EndDisconnectTimeout
			return Forfeited
		}
	}
	if len(r.ConnectedSeats()) == 0 && !r.Paused {
		// ended, or never joined within the grace period
		if r.Ended || !now.Before(r.CreatedAt.Add(r.grace)) {
			return Abandoned
		}
	}
	return Unchanged
}

// Winner returns the winning seat, or nil while the match runs.
func (r *Room) Winner() *engine.Seat { return r.State.Winner }
