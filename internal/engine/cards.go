package engine

import "slices"

type CardDefID string

const (
	CardReinforceSpawn      CardDefID = "reinforce_spawn"
	CardReinforceBoost      CardDefID = "reinforce_boost"
	CardReinforceBoostSpawn CardDefID = "reinforce_boost_spawn"
	CardMoveForward         CardDefID = "move_forward"
	CardMoveAny             CardDefID = "move_any"
	CardMoveForwardFace     CardDefID = "move_forward_face"
	CardAttackLine          CardDefID = "attack_line"
	CardAttackFwdLR         CardDefID = "attack_fwd_lr"
	CardAttackFwd           CardDefID = "attack_fwd"
	CardAttackArrow         CardDefID = "attack_arrow"
	CardSpellLightning      CardDefID = "spell_lightning"
	CardSpellMeteor         CardDefID = "spell_meteor"
	CardMovePivot           CardDefID = "move_pivot"
	CardSpellInvest         CardDefID = "spell_invest"
)

type CardType string

const (
	TypeReinforcement CardType = "reinforcement"
	TypeMovement      CardType = "movement"
	TypeAttack        CardType = "attack"
	TypeSpell         CardType = "spell"
)

type UnitTarget string

const (
	TargetFriendly UnitTarget = "friendly"
	TargetAny      UnitTarget = "any"
)

type TileTarget string

const (
	TileTargetSpawn TileTarget = "spawn"
	TileTargetAny   TileTarget = "any"
)

// Requirements lists the parameters an order for a card must supply.
type Requirements struct {
	Unit            UnitTarget `json:"unit,omitempty"`
	Tile            TileTarget `json:"tile,omitempty"`
	Direction       bool       `json:"direction,omitempty"`
	MoveDirection   bool       `json:"moveDirection,omitempty"`
	FaceDirection   bool       `json:"faceDirection,omitempty"`
	DistanceOptions []int      `json:"distanceOptions,omitempty"`
}

type CardDef struct {
	ID          CardDefID    `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Type        CardType     `json:"type"`
	Requires    Requirements `json:"requires"`
	ActionCost  *int         `json:"actionCost,omitempty"`
	Effects     []Effect     `json:"-"`
}

// Cost is the action-point cost of playing the card. Cards without an
// explicit cost cost 1.
func (d CardDef) Cost() int {
	if d.ActionCost == nil {
		return 1
	}
	return *d.ActionCost
}

func (d CardDef) spawnsForOrder() bool {
	for _, e := range d.Effects {
		if sp, ok := e.(SpawnEffect); ok && sp.MapToOrder {
			return true
		}
	}
	return false
}

func (d CardDef) boostsOnSpawnTile() bool {
	for _, e := range d.Effects {
		if b, ok := e.(BoostEffect); ok && b.RequireSpawnTile {
			return true
		}
	}
	return false
}

// Effect is one step of a card's resolution. The set of implementations is
// closed; see applyEffect.
type Effect interface{ isEffect() }

// UnitParam selects which unit field of OrderParams an effect reads.
type UnitParam int

const (
	ParamUnit UnitParam = iota
	ParamUnit2
)

// DirectionParam selects which direction field of OrderParams is read.
type DirectionParam int

const (
	ParamDirection DirectionParam = iota
	ParamMoveDirection
	ParamFaceDirection
)

type DirectionSourceKind int

const (
	FromFacing DirectionSourceKind = iota
	FromParam
	RelativeToFacing
)

type DirectionSource struct {
	Kind    DirectionSourceKind
	Param   DirectionParam
	Offsets []int
}

func Facing() DirectionSource { return DirectionSource{Kind: FromFacing} }

func Param(p DirectionParam) DirectionSource { return DirectionSource{Kind: FromParam, Param: p} }

func Relative(offsets ...int) DirectionSource {
	return DirectionSource{Kind: RelativeToFacing, Offsets: offsets}
}

type AttackMode string

const (
	// AttackNearest hits only the adjacent tile.
	AttackNearest AttackMode = "nearest"
	// AttackLine travels until the first unit and hits it.
	AttackLine AttackMode = "line"
	// AttackRay pierces and hits every unit until the board edge.
	AttackRay AttackMode = "ray"
)

type SpawnEffect struct {
	Strength   int
	MapToOrder bool
}

type BoostEffect struct {
	Amount           int
	Target           UnitParam
	RequireSpawnTile bool
}

type DamageEffect struct{ Amount int }

type DamageTileEffect struct{ Amount int }

type DamageTileAreaEffect struct {
	Center int
	Splash int
}

type MoveEffect struct {
	Direction DirectionSource
	// Distance is used when DistanceFromParam is false.
	Distance          int
	DistanceFromParam bool
}

type FaceEffect struct{ Param DirectionParam }

type AttackEffect struct {
	Mode       AttackMode
	Directions DirectionSource
	// Damage is used when DamageFromStrength is false.
	Damage             int
	DamageFromStrength bool
}

type BudgetEffect struct{ Amount int }

func (SpawnEffect) isEffect()          {}
func (BoostEffect) isEffect()          {}
func (DamageEffect) isEffect()         {}
func (DamageTileEffect) isEffect()     {}
func (DamageTileAreaEffect) isEffect() {}
func (MoveEffect) isEffect()           {}
func (FaceEffect) isEffect()           {}
func (AttackEffect) isEffect()         {}
func (BudgetEffect) isEffect()         {}

func cost(n int) *int { return &n }

var catalog = map[CardDefID]CardDef{
	CardReinforceSpawn: {
		ID:          CardReinforceSpawn,
		Name:        "Recruit",
		Description: "Add a 1-strength unit to a spawning tile facing any direction.",
		Type:        TypeReinforcement,
		Requires:    Requirements{Tile: TileTargetSpawn, Direction: true},
		Effects:     []Effect{SpawnEffect{Strength: 1, MapToOrder: true}},
	},
	CardReinforceBoost: {
		ID:          CardReinforceBoost,
		Name:        "Boost",
		Description: "Add 1 strength to up to two different units.",
		Type:        TypeReinforcement,
		Requires:    Requirements{Unit: TargetFriendly},
		Effects: []Effect{
			BoostEffect{Amount: 1, Target: ParamUnit},
			BoostEffect{Amount: 1, Target: ParamUnit2},
		},
	},
	CardReinforceBoostSpawn: {
		ID:          CardReinforceBoostSpawn,
		Name:        "Train",
		Description: "Add 3 strength to an existing unit on a spawning tile.",
		Type:        TypeReinforcement,
		Requires:    Requirements{Unit: TargetFriendly},
		Effects:     []Effect{BoostEffect{Amount: 3, Target: ParamUnit, RequireSpawnTile: true}},
	},
	CardMoveForward: {
		ID:          CardMoveForward,
		Name:        "Advance",
		Description: "Move up to 5 steps in any direction, facing that direction.",
		Type:        TypeMovement,
		Requires:    Requirements{Unit: TargetFriendly, DistanceOptions: []int{1, 2, 3, 4, 5}},
		Effects: []Effect{
			MoveEffect{Direction: Param(ParamDirection), DistanceFromParam: true},
			FaceEffect{Param: ParamDirection},
		},
	},
	CardMoveAny: {
		ID:          CardMoveAny,
		Name:        "Strafe",
		Description: "Move 1, 2, or 3 steps in any direction.",
		Type:        TypeMovement,
		Requires:    Requirements{Unit: TargetFriendly, DistanceOptions: []int{1, 2, 3}},
		Effects: []Effect{
			MoveEffect{Direction: Param(ParamDirection), DistanceFromParam: true},
		},
	},
	CardMoveForwardFace: {
		ID:          CardMoveForwardFace,
		Name:        "Step",
		Description: "Move 1 step in any direction, then face any direction.",
		Type:        TypeMovement,
		Requires:    Requirements{Unit: TargetFriendly, MoveDirection: true, FaceDirection: true},
		Effects: []Effect{
			MoveEffect{Direction: Param(ParamMoveDirection), Distance: 1},
			FaceEffect{Param: ParamFaceDirection},
		},
	},
	CardAttackLine: {
		ID:          CardAttackLine,
		Name:        "Sweeping Line",
		Description: "Deal 1 damage to every tile in the forward direction.",
		Type:        TypeAttack,
		Requires:    Requirements{Unit: TargetFriendly},
		Effects:     []Effect{AttackEffect{Mode: AttackRay, Directions: Facing(), Damage: 1}},
	},
	CardAttackFwdLR: {
		ID:          CardAttackFwdLR,
		Name:        "Cleave",
		Description: "Deal 2 damage to the nearest tile in the forward, left and right directions.",
		Type:        TypeAttack,
		Requires:    Requirements{Unit: TargetFriendly},
		Effects:     []Effect{AttackEffect{Mode: AttackNearest, Directions: Relative(0, -1, 1), Damage: 2}},
	},
	CardAttackFwd: {
		ID:          CardAttackFwd,
		Name:        "Strike",
		Description: "Face any direction, then deal damage equal to unit strength to the nearest tile.",
		Type:        TypeAttack,
		ActionCost:  cost(2),
		Requires:    Requirements{Unit: TargetFriendly, Direction: true},
		Effects: []Effect{
			FaceEffect{Param: ParamDirection},
			AttackEffect{Mode: AttackNearest, Directions: Facing(), DamageFromStrength: true},
		},
	},
	CardAttackArrow: {
		ID:          CardAttackArrow,
		Name:        "Arrow",
		Description: "Deal 2 damage to the nearest unit in the facing direction.",
		Type:        TypeAttack,
		Requires:    Requirements{Unit: TargetFriendly},
		Effects:     []Effect{AttackEffect{Mode: AttackLine, Directions: Facing(), Damage: 2}},
	},
	CardSpellLightning: {
		ID:          CardSpellLightning,
		Name:        "Lightning",
		Description: "Deal 1 damage to any unit on the board.",
		Type:        TypeSpell,
		Requires:    Requirements{Unit: TargetAny},
		Effects:     []Effect{DamageEffect{Amount: 1}},
	},
	CardSpellMeteor: {
		ID:          CardSpellMeteor,
		Name:        "Meteor",
		Description: "Deal 5 damage to a chosen tile and 1 damage to adjacent tiles (units only).",
		Type:        TypeSpell,
		ActionCost:  cost(3),
		Requires:    Requirements{Tile: TileTargetAny},
		Effects:     []Effect{DamageTileAreaEffect{Center: 5, Splash: 1}},
	},
	CardMovePivot: {
		ID:          CardMovePivot,
		Name:        "Pivot",
		Description: "Change a unit's facing to any direction.",
		Type:        TypeMovement,
		ActionCost:  cost(0),
		Requires:    Requirements{Unit: TargetFriendly, Direction: true},
		Effects:     []Effect{FaceEffect{Param: ParamDirection}},
	},
	CardSpellInvest: {
		ID:          CardSpellInvest,
		Name:        "Invest",
		Description: "Permanently increase your action budget by 1.",
		Type:        TypeSpell,
		ActionCost:  cost(2),
		Requires:    Requirements{},
		Effects:     []Effect{BudgetEffect{Amount: 1}},
	},
}

var startingDeck = []CardDefID{
	CardReinforceSpawn,
	CardReinforceBoost,
	CardReinforceBoostSpawn,
	CardMoveForward,
	CardMoveAny,
	CardMoveForwardFace,
	CardAttackLine,
	CardAttackFwdLR,
	CardAttackFwd,
	CardAttackArrow,
	CardSpellLightning,
	CardSpellMeteor,
	CardMovePivot,
	CardSpellInvest,
}

// LookupCard returns the catalog entry for id.
func LookupCard(id CardDefID) (CardDef, bool) {
	def, ok := catalog[id]
	return def, ok
}

// StartingDeck returns one copy of every card, in catalog order.
func StartingDeck() []CardDefID { return slices.Clone(startingDeck) }

// Catalog returns every card definition in starting deck order.
func Catalog() []CardDef {
	defs := make([]CardDef, 0, len(startingDeck))
	for _, id := range startingDeck {
		defs = append(defs, catalog[id])
	}
	return defs
}
