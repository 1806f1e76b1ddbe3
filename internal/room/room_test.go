package room

import (
	"strings"
	"testing"
	"time"

	"github.com/DoyleJ11/hex-tactics-backend/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestRoom(t *testing.T, opts ...Option) *Room {
	t.Helper()
	opts = append([]Option{WithEngineOptions(engine.WithSeed(1))}, opts...)
	r, err := New("ABC234", nil, t0, opts...)
	require.NoError(t, err)
	return r
}

func TestGenerateCode(t *testing.T) {
	for range 50 {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, codeLength)
		for _, c := range code {
			if !strings.ContainsRune(codeAlphabet, c) {
				t.Fatalf("code %q contains %q outside the alphabet", code, c)
			}
		}
	}
}

func TestNew_Seats(t *testing.T) {
	r := newTestRoom(t)

	assert.Len(t, r.Seats[0].Token, 2*tokenBytes)
	assert.NotEqual(t, r.Seats[0].Token, r.Seats[1].Token)
	assert.True(t, r.Seats[0].LoadoutLocked)
	assert.False(t, r.Seats[1].LoadoutLocked)
	assert.Equal(t, engine.DefaultSettings(), r.State.Settings)

	seat, ok := r.SeatByToken(r.Seats[1].Token)
	require.True(t, ok)
	assert.Equal(t, engine.SeatTwo, seat)
	_, ok = r.SeatByToken("")
	assert.False(t, ok)
	_, ok = r.SeatByToken("nope")
	assert.False(t, ok)
}

func TestAttachSeat_ReclaimsFromPreviousConnection(t *testing.T) {
	r := newTestRoom(t)

	assert.Empty(t, r.AttachSeat(engine.SeatOne, "a", t0))
	assert.Equal(t, "a", r.AttachSeat(engine.SeatOne, "b", t0))
	assert.Empty(t, r.AttachSeat(engine.SeatOne, "b", t0), "re-attaching the same connection reclaims nothing")

	assert.False(t, r.DetachSeat(engine.SeatOne, "a", t0), "stale connection must not detach the seat")
	assert.True(t, r.Seats[engine.SeatOne].Connected)
	assert.False(t, r.Paused)
}

func TestDetachSeat_PausesAndReconnectResumes(t *testing.T) {
	r := newTestRoom(t)
	r.AttachSeat(engine.SeatOne, "a", t0)
	r.AttachSeat(engine.SeatTwo, "b", t0)

	require.True(t, r.DetachSeat(engine.SeatTwo, "b", t0.Add(time.Minute)))
	assert.True(t, r.Paused)
	assert.Equal(t, t0.Add(time.Minute+DefaultReconnectGrace), r.ReconnectDeadline)

	r.AttachSeat(engine.SeatTwo, "c", t0.Add(2*time.Minute))
	assert.False(t, r.Paused)
	assert.True(t, r.ReconnectDeadline.IsZero())
}

func TestExpire_DisconnectTimeoutForfeits(t *testing.T) {
	r := newTestRoom(t)
	r.AttachSeat(engine.SeatOne, "a", t0)
	r.AttachSeat(engine.SeatTwo, "b", t0)
	r.DetachSeat(engine.SeatTwo, "b", t0)

	assert.Equal(t, Unchanged, r.Expire(t0.Add(DefaultReconnectGrace-time.Second)))
	assert.True(t, r.Paused)

	assert.Equal(t, Forfeited, r.Expire(t0.Add(DefaultReconnectGrace)))
	require.NotNil(t, r.Winner())
	assert.Equal(t, engine.SeatOne, *r.Winner())
	assert.True(t, r.Ended)
	assert.Equal(t, EndDisconnectTimeout, r.EndReason)
	assert.False(t, r.Paused)

	assert.Equal(t, Unchanged, r.Expire(t0.Add(DefaultReconnectGrace+time.Second)))

	r.DetachSeat(engine.SeatOne, "a", t0.Add(DefaultReconnectGrace+time.Second))
	assert.False(t, r.Paused, "ended rooms do not pause")
	assert.Equal(t, Abandoned, r.Expire(t0.Add(DefaultReconnectGrace+2*time.Second)))
}

func TestExpire_NobodyConnectedAbandons(t *testing.T) {
	r := newTestRoom(t, WithReconnectGrace(time.Second))
	r.AttachSeat(engine.SeatOne, "a", t0)
	r.DetachSeat(engine.SeatOne, "a", t0)

	assert.Equal(t, Abandoned, r.Expire(t0.Add(time.Second)))
	assert.Nil(t, r.Winner())
}

func TestExpire_NeverJoinedAbandons(t *testing.T) {
	r := newTestRoom(t)

	assert.Equal(t, Unchanged, r.Expire(t0.Add(time.Minute)))
	assert.Equal(t, Abandoned, r.Expire(t0.Add(DefaultReconnectGrace)))
}
