package room

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/DoyleJ11/hex-tactics-backend/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSettings_Clamps(t *testing.T) {
	in := engine.Settings{
		BoardRows:          2,
		BoardCols:          99,
		StrongholdStrength: 0,
		DeckSize:           41,
		DrawPerTurn:        -3,
		MaxCopies:          11,
		ActionBudgetP1:     0,
		ActionBudgetP2:     7,
	}
	want := engine.Settings{
		BoardRows:          4,
		BoardCols:          14,
		StrongholdStrength: 1,
		DeckSize:           40,
		DrawPerTurn:        1,
		MaxCopies:          10,
		ActionBudgetP1:     1,
		ActionBudgetP2:     7,
	}
	assert.Equal(t, want, NormalizeSettings(in))
	assert.Equal(t, engine.DefaultSettings(), NormalizeSettings(engine.DefaultSettings()))
}

func TestSanitizeDeck(t *testing.T) {
	settings := engine.DefaultSettings()
	settings.DeckSize = 5
	settings.MaxCopies = 1

	got := SanitizeDeck([]engine.CardDefID{
		engine.CardSpellMeteor,
		engine.CardSpellMeteor,
		"bogus",
		engine.CardSpellInvest,
	}, settings)

	assert.Equal(t, []engine.CardDefID{
		engine.CardSpellMeteor,
		engine.CardSpellInvest,
		engine.CardReinforceSpawn,
		engine.CardReinforceBoost,
		engine.CardReinforceBoostSpawn,
	}, got)

	settings.DeckSize = 40
	assert.Len(t, SanitizeDeck(nil, settings), len(engine.StartingDeck()), "padding stops when every card hit the copy limit")

	settings.MaxCopies = 3
	assert.Len(t, SanitizeDeck(nil, settings), 40)
}

func TestSetup_JSON(t *testing.T) {
	var setup Setup
	require.NoError(t, json.Unmarshal([]byte(`{"settings":{"boardRows":20,"drawPerTurn":2},"loadouts":{"p1":["spell_meteor"],"p2":[]}}`), &setup))

	want := engine.DefaultSettings()
	want.BoardRows = 20
	want.DrawPerTurn = 2
	assert.Equal(t, want, setup.Settings, "missing settings keep their defaults")

	encoded, err := json.Marshal(setup)
	require.NoError(t, err)
	var decoded Setup
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, setup, decoded)

	r, err := New("ROOM22", &setup, t0, WithEngineOptions(engine.WithSeed(3)))
	require.NoError(t, err)
	assert.Equal(t, 14, r.State.Settings.BoardRows)
	assert.Equal(t, engine.CardSpellMeteor, r.SeatLoadouts[0][0])
	assert.Len(t, r.SeatLoadouts[0], want.DeckSize)
	assert.Len(t, r.SeatLoadouts[1], want.DeckSize)
	assert.Len(t, r.State.Players[engine.SeatOne].Hand, 2)
}

func TestCanUpdateLoadout(t *testing.T) {
	r := newTestRoom(t)
	assert.True(t, r.CanUpdateLoadout())

	setHand(r, engine.SeatTwo, card("a", engine.CardMovePivot))
	require.True(t, ApplyCommand(r, engine.SeatTwo, command(t, `{"type":"queue_order","cardId":"a","params":{"unitId":"u1-2","direction":0}}`)).OK)
	assert.False(t, r.CanUpdateLoadout())

	r.Ended = true
	assert.True(t, r.CanUpdateLoadout())
}

func TestApplyCommand_UpdateLoadout(t *testing.T) {
	r := newTestRoom(t)

	res := ApplyCommand(r, engine.SeatTwo, Command{Type: CmdUpdateLoadout, Loadout: []engine.CardDefID{engine.CardSpellMeteor, engine.CardSpellMeteor}})
	require.True(t, res.OK)

	assert.Equal(t, engine.CardSpellMeteor, r.SeatLoadouts[1][0])
	assert.Equal(t, engine.CardSpellMeteor, r.SeatLoadouts[1][1])
	p := r.State.Players[engine.SeatTwo]
	assert.Len(t, p.Hand, 5)
	assert.Len(t, p.Deck, 9)
	for _, c := range append(p.Hand, p.Deck...) {
		assert.True(t, strings.HasPrefix(c.ID, "p2-c"), c.ID)
	}
}

func TestApplyLoadoutOnFirstJoin(t *testing.T) {
	r := newTestRoom(t)
	before := r.SeatLoadouts[0]

	r.ApplyLoadoutOnFirstJoin(engine.SeatOne, []engine.CardDefID{engine.CardSpellInvest})
	assert.Equal(t, before, r.SeatLoadouts[0], "seat 0 is locked at creation")

	r.ApplyLoadoutOnFirstJoin(engine.SeatTwo, []engine.CardDefID{engine.CardSpellInvest})
	assert.Equal(t, engine.CardSpellInvest, r.SeatLoadouts[1][0])
	assert.True(t, r.Seats[1].LoadoutLocked)

	r.ApplyLoadoutOnFirstJoin(engine.SeatTwo, []engine.CardDefID{engine.CardSpellMeteor})
	assert.Equal(t, engine.CardSpellInvest, r.SeatLoadouts[1][0], "only the first join applies")
}

func TestApplyCommand_Rematch(t *testing.T) {
	r := newTestRoom(t)
	engine.Forfeit(r.State, engine.SeatOne)
	r.Ended = true
	r.EndReason = EndDisconnectTimeout

	res := ApplyCommand(r, engine.SeatOne, Command{Type: CmdRematch})
	require.True(t, res.OK)
	assert.False(t, res.RematchStarted)
	assert.True(t, r.Ended)

	res = ApplyCommand(r, engine.SeatTwo, Command{Type: CmdRematch})
	require.True(t, res.OK)
	assert.True(t, res.RematchStarted)

	assert.False(t, r.Ended)
	assert.Empty(t, r.EndReason)
	assert.Nil(t, r.Winner())
	assert.Equal(t, 1, r.State.Turn)
	assert.Equal(t, [2]bool{}, r.RematchReady)
	assert.Len(t, r.State.Units, 4)
}
