package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyOrder_Attacks(t *testing.T) {
	t.Run("cleave hits forward, left and right", func(t *testing.T) {
		s := boardWith(t,
			stronghold(SeatOne, Hex{Q: 2, R: 0}, 5),
			stronghold(SeatTwo, Hex{Q: 3, R: 5}, 5),
			soldier("u0-5", SeatOne, Hex{Q: 2, R: 2}, 2, DirEast),
			soldier("u1-6", SeatTwo, Hex{Q: 3, R: 2}, 3, DirWest),
			soldier("u1-7", SeatTwo, Hex{Q: 3, R: 3}, 3, DirWest),
			soldier("u1-8", SeatTwo, Hex{Q: 3, R: 1}, 1, DirWest),
		)
		applyOrder(s, Order{ID: "o1", Player: SeatOne, DefID: CardAttackFwdLR, Params: OrderParams{UnitID: ResolvedUnit("u0-5")}})

		assert.Equal(t, 1, s.Units["u1-6"].Strength)
		assert.Equal(t, 1, s.Units["u1-7"].Strength)
		assert.NotContains(t, s.Units, "u1-8")
	})

	t.Run("sweeping line pierces", func(t *testing.T) {
		s := boardWith(t,
			stronghold(SeatOne, Hex{Q: 2, R: 0}, 5),
			stronghold(SeatTwo, Hex{Q: 3, R: 5}, 5),
			soldier("u0-5", SeatOne, Hex{Q: 0, R: 2}, 2, DirEast),
			soldier("u1-6", SeatTwo, Hex{Q: 2, R: 2}, 2, DirWest),
			soldier("u1-7", SeatTwo, Hex{Q: 4, R: 2}, 2, DirWest),
		)
		applyOrder(s, Order{ID: "o1", Player: SeatOne, DefID: CardAttackLine, Params: OrderParams{UnitID: ResolvedUnit("u0-5")}})

		assert.Equal(t, 1, s.Units["u1-6"].Strength)
		assert.Equal(t, 1, s.Units["u1-7"].Strength)
	})

	t.Run("arrow stops at the first unit", func(t *testing.T) {
		s := boardWith(t,
			stronghold(SeatOne, Hex{Q: 2, R: 0}, 5),
			stronghold(SeatTwo, Hex{Q: 3, R: 5}, 5),
			soldier("u0-5", SeatOne, Hex{Q: 0, R: 2}, 2, DirEast),
			soldier("u1-6", SeatTwo, Hex{Q: 2, R: 2}, 2, DirWest),
			soldier("u1-7", SeatTwo, Hex{Q: 4, R: 2}, 2, DirWest),
		)
		applyOrder(s, Order{ID: "o1", Player: SeatOne, DefID: CardAttackArrow, Params: OrderParams{UnitID: ResolvedUnit("u0-5")}})

		assert.NotContains(t, s.Units, "u1-6")
		assert.Equal(t, 2, s.Units["u1-7"].Strength)
	})

	t.Run("strike turns first and hits for strength", func(t *testing.T) {
		s := boardWith(t,
			stronghold(SeatOne, Hex{Q: 2, R: 0}, 5),
			stronghold(SeatTwo, Hex{Q: 3, R: 5}, 5),
			soldier("u0-5", SeatOne, Hex{Q: 2, R: 2}, 3, DirWest),
			soldier("u1-6", SeatTwo, Hex{Q: 3, R: 2}, 4, DirWest),
		)
		applyOrder(s, Order{ID: "o1", Player: SeatOne, DefID: CardAttackFwd, Params: OrderParams{UnitID: ResolvedUnit("u0-5"), Direction: ptr(DirEast)}})

		assert.Equal(t, DirEast, s.Units["u0-5"].Facing)
		assert.Equal(t, 1, s.Units["u1-6"].Strength)
	})
}

func TestApplyOrder_MeteorSplashSparesStrongholds(t *testing.T) {
	s := boardWith(t,
		stronghold(SeatOne, Hex{Q: 2, R: 0}, 5),
		stronghold(SeatTwo, Hex{Q: 3, R: 3}, 5),
		soldier("u0-5", SeatOne, Hex{Q: 2, R: 2}, 6, DirEast),
		soldier("u1-6", SeatTwo, Hex{Q: 3, R: 2}, 2, DirWest),
	)
	applyOrder(s, Order{ID: "o1", Player: SeatOne, DefID: CardSpellMeteor, Params: OrderParams{Tile: &Hex{Q: 2, R: 2}}})

	assert.Equal(t, 1, s.Units["u0-5"].Strength)
	assert.Equal(t, 1, s.Units["u1-6"].Strength)
	assert.Equal(t, 5, s.Units["stronghold-1"].Strength)
	assert.False(t, s.HasWinner())
}

func TestApplyOrder_Movement(t *testing.T) {
	t.Run("advance stops at the board edge and faces the move", func(t *testing.T) {
		s := newTestState(t)
		applyOrder(s, Order{ID: "o1", Player: SeatOne, DefID: CardMoveForward, Params: OrderParams{UnitID: ResolvedUnit("u0-1"), Direction: ptr(DirEast), Distance: ptr(5)}})

		assert.Equal(t, Hex{Q: 5, R: 1}, s.Units["u0-1"].Pos)
		assert.Equal(t, DirEast, s.Units["u0-1"].Facing)
	})

	t.Run("blocked move is logged", func(t *testing.T) {
		s := newTestState(t)
		s.Units["u0-1"].Pos = Hex{Q: 3, R: 0}
		applyOrder(s, Order{ID: "o1", Player: SeatOne, DefID: CardMoveAny, Params: OrderParams{UnitID: ResolvedUnit("u0-1"), Direction: ptr(DirWest), Distance: ptr(2)}})

		assert.Equal(t, Hex{Q: 3, R: 0}, s.Units["u0-1"].Pos)
		assert.Equal(t, "Unit u0-1 cannot move.", s.Log[len(s.Log)-1])
	})

	t.Run("strongholds never move", func(t *testing.T) {
		s := newTestState(t)
		applyOrder(s, Order{ID: "o1", Player: SeatOne, DefID: CardMoveAny, Params: OrderParams{UnitID: ResolvedUnit("stronghold-0"), Direction: ptr(DirEast), Distance: ptr(1)}})

		assert.Equal(t, Hex{Q: 2, R: 0}, s.Units["stronghold-0"].Pos)
	})
}

func TestApplyOrder_SpawnOnOccupiedTileFails(t *testing.T) {
	s := newTestState(t)
	applyOrder(s, Order{ID: "o1", Player: SeatOne, DefID: CardReinforceSpawn, Params: OrderParams{Tile: &Hex{Q: 3, R: 1}, Direction: ptr(DirEast)}})

	assert.Len(t, s.Units, 4)
	assert.Empty(t, s.SpawnedByOrder)
	assert.Contains(t, s.Log[len(s.Log)-1], "Recruit fails")
	assert.Equal(t, 3, s.NextUnitID)
}

func TestApplyOrder_BoostSecondUnitIsOptional(t *testing.T) {
	s := newTestState(t)
	applyOrder(s, Order{ID: "o1", Player: SeatOne, DefID: CardReinforceBoost, Params: OrderParams{UnitID: ResolvedUnit("u0-1")}})
	assert.Equal(t, 3, s.Units["u0-1"].Strength)

	applyOrder(s, Order{ID: "o2", Player: SeatOne, DefID: CardReinforceBoost, Params: OrderParams{UnitID: ResolvedUnit("u0-1"), UnitID2: ResolvedUnit("u1-2")}})
	assert.Equal(t, 4, s.Units["u0-1"].Strength)
	assert.Equal(t, 3, s.Units["u1-2"].Strength)
}

func TestApplyOrder_UnknownEffectIsIgnored(t *testing.T) {
	type bogus struct{ Effect }
	s := newTestState(t)
	def := CardDef{Name: "Bogus"}

	require.NotPanics(t, func() {
		applyEffect(s, Order{ID: "o1", Player: SeatOne}, def, bogus{})
	})
	assert.Contains(t, s.Log[len(s.Log)-1], "unsupported effect")
}

func TestUnitRef_JSON(t *testing.T) {
	var p OrderParams
	require.NoError(t, json.Unmarshal([]byte(`{"unitId":"planned:o4","unitId2":"u1-2"}`), &p))

	orderID, ok := p.UnitID.PendingOrder()
	require.True(t, ok)
	assert.Equal(t, "o4", orderID)
	unitID, ok := p.UnitID2.UnitID()
	require.True(t, ok)
	assert.Equal(t, "u1-2", unitID)

	out, err := json.Marshal(OrderParams{Direction: ptr(DirWest)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"direction":3}`, string(out))
}
