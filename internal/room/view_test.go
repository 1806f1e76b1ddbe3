package room

import (
	"encoding/json"
	"testing"

	"github.com/DoyleJ11/hex-tactics-backend/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildStateView_HidesOpponent(t *testing.T) {
	r := newTestRoom(t)
	setHand(r, engine.SeatTwo, card("a", engine.CardMovePivot), card("b", engine.CardSpellInvest))
	require.True(t, ApplyCommand(r, engine.SeatTwo, command(t, `{"type":"queue_order","cardId":"a","params":{"unitId":"u1-2","direction":3}}`)).OK)

	for _, seat := range engine.Seats {
		view, meta := BuildStateView(r, seat)
		other := seat.Opponent()

		assert.NotNil(t, view.Players[seat].Hand, "seat %d own hand", seat)
		assert.NotNil(t, view.Players[seat].Orders, "seat %d own orders", seat)
		assert.Nil(t, view.Players[other].Hand, "seat %d sees opponent hand", seat)
		assert.Nil(t, view.Players[other].Orders, "seat %d sees opponent orders", seat)

		assert.Equal(t, seat, meta.SelfSeat)
		assert.Equal(t, "ABC234", meta.RoomCode)
		assert.Equal(t, ResourceCounts{Deck: 9, Discard: 0, Hand: 1, Orders: 1}, meta.Counts[engine.SeatTwo])
	}

	_, meta := BuildStateView(r, engine.SeatTwo)
	assert.Equal(t, []bool{true}, meta.OrderValidity)
	assert.Empty(t, meta.PlannedMoves)
	_, meta = BuildStateView(r, engine.SeatOne)
	assert.Nil(t, meta.OrderValidity, "no preview without own orders")

	view, _ := BuildStateView(r, engine.SeatOne)
	b, err := json.Marshal(view)
	require.NoError(t, err)
	var decoded struct {
		Players [2]struct {
			Hand   json.RawMessage `json:"hand"`
			Orders json.RawMessage `json:"orders"`
		} `json:"players"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "null", string(decoded.Players[1].Hand))
	assert.Equal(t, "null", string(decoded.Players[1].Orders))
	assert.Equal(t, "[]", string(decoded.Players[0].Orders))
}

func TestBuildStateViewFor_RevealsOrdersInActionPhase(t *testing.T) {
	r := newTestRoom(t)
	setHand(r, engine.SeatTwo, card("a", engine.CardMovePivot))
	require.True(t, ApplyCommand(r, engine.SeatTwo, command(t, `{"type":"queue_order","cardId":"a","params":{"unitId":"u1-2","direction":3}}`)).OK)
	require.True(t, ApplyCommand(r, engine.SeatTwo, Command{Type: CmdReady}).OK)
	res := ApplyCommand(r, engine.SeatOne, Command{Type: CmdReady})
	require.NotNil(t, res.Replay)

	view, meta := BuildStateViewFor(r, res.Replay.ActionStart, engine.SeatOne)
	require.NotNil(t, view.Players[engine.SeatTwo].Orders)
	assert.Len(t, view.Players[engine.SeatTwo].Orders, 1)
	assert.Nil(t, view.Players[engine.SeatTwo].Hand)
	assert.Nil(t, meta.OrderValidity)

	view, _ = BuildStateViewFor(r, res.Replay.Final, engine.SeatOne)
	assert.Equal(t, engine.DirWest, view.Units["u1-2"].Facing)
	assert.Nil(t, view.Players[engine.SeatTwo].Orders, "next planning phase hides orders again")
}

func TestBuildStateView_IsDetached(t *testing.T) {
	r := newTestRoom(t)
	setHand(r, engine.SeatOne, card("a", engine.CardSpellInvest))
	view, _ := BuildStateView(r, engine.SeatOne)

	view.Units["u0-1"].Strength = 99
	view.Log[0] = "tampered"
	view.Players[engine.SeatOne].Hand[0].DefID = engine.CardSpellMeteor

	assert.Equal(t, 2, r.State.Units["u0-1"].Strength)
	assert.Equal(t, "Game start.", r.State.Log[0])
	assert.Equal(t, engine.CardSpellInvest, r.State.Players[engine.SeatOne].Hand[0].DefID)
}

func TestPresence(t *testing.T) {
	r := newTestRoom(t)
	assert.Equal(t, Presence{}, r.Presence())

	r.AttachSeat(engine.SeatOne, "a", t0)
	r.AttachSeat(engine.SeatTwo, "b", t0)
	r.DetachSeat(engine.SeatTwo, "b", t0)

	p := r.Presence()
	assert.Equal(t, [2]bool{true, false}, p.Connected)
	assert.True(t, p.Paused)
	require.NotNil(t, p.DeadlineAt)
	assert.Equal(t, t0.Add(DefaultReconnectGrace).UnixMilli(), *p.DeadlineAt)

	_, meta := BuildStateView(r, engine.SeatOne)
	assert.Equal(t, p.DeadlineAt, meta.ReconnectDeadlineAt)
	assert.True(t, meta.Paused)
}
