package engine

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
)

// Seat is one of the two fixed player slots.
type Seat int

const (
	SeatOne Seat = 0
	SeatTwo Seat = 1
)

var Seats = [2]Seat{SeatOne, SeatTwo}

func (s Seat) Valid() bool { return s == SeatOne || s == SeatTwo }

func (s Seat) Opponent() Seat {
	if s == SeatOne {
		return SeatTwo
	}
	return SeatOne
}

type Phase string

const (
	PhasePlanning Phase = "planning"
	PhaseAction   Phase = "action"
)

type TileKind string

const (
	TileGrass    TileKind = "grass"
	TileForest   TileKind = "forest"
	TileMountain TileKind = "mountain"
	TilePond     TileKind = "pond"
	TileRocky    TileKind = "rocky"
	TileRough    TileKind = "rough"
	TileShrub    TileKind = "shrub"
)

type UnitKind string

const (
	KindUnit       UnitKind = "unit"
	KindStronghold UnitKind = "stronghold"
)

type Tile struct {
	ID   string   `json:"id"`
	Q    int      `json:"q"`
	R    int      `json:"r"`
	Kind TileKind `json:"kind"`
}

type Unit struct {
	ID       string    `json:"id"`
	Owner    Seat      `json:"owner"`
	Kind     UnitKind  `json:"kind"`
	Strength int       `json:"strength"`
	Pos      Hex       `json:"pos"`
	Facing   Direction `json:"facing"`
}

type CardInstance struct {
	ID    string    `json:"id"`
	DefID CardDefID `json:"defId"`
}

const plannedPrefix = "planned:"

// UnitRef targets either a unit already on the board or the unit that a
// spawn order queued earlier in the same batch will create. The zero value
// means no unit was supplied.
type UnitRef struct {
	unitID  string
	orderID string
}

func ResolvedUnit(id string) UnitRef { return UnitRef{unitID: id} }

func PendingSpawn(orderID string) UnitRef { return UnitRef{orderID: orderID} }

// ParseUnitRef decodes the wire form, where pending spawns are written as
// "planned:<orderId>".
func ParseUnitRef(s string) UnitRef {
	if rest, ok := strings.CutPrefix(s, plannedPrefix); ok {
		return PendingSpawn(rest)
	}
	return ResolvedUnit(s)
}

func (r UnitRef) IsZero() bool { return r.unitID == "" && r.orderID == "" }

func (r UnitRef) UnitID() (string, bool) { return r.unitID, r.unitID != "" }

func (r UnitRef) PendingOrder() (string, bool) { return r.orderID, r.orderID != "" }

func (r UnitRef) String() string {
	if r.orderID != "" {
		return plannedPrefix + r.orderID
	}
	return r.unitID
}

func (r UnitRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *UnitRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = ParseUnitRef(s)
	return nil
}

// OrderParams holds the targeting data of an order. Absent fields are nil.
type OrderParams struct {
	UnitID        UnitRef    `json:"unitId,omitzero"`
	UnitID2       UnitRef    `json:"unitId2,omitzero"`
	Tile          *Hex       `json:"tile,omitempty"`
	Direction     *Direction `json:"direction,omitempty"`
	MoveDirection *Direction `json:"moveDirection,omitempty"`
	FaceDirection *Direction `json:"faceDirection,omitempty"`
	Distance      *int       `json:"distance,omitempty"`
}

type Order struct {
	ID     string      `json:"id"`
	Player Seat        `json:"player"`
	CardID string      `json:"cardId"`
	DefID  CardDefID   `json:"defId"`
	Params OrderParams `json:"params"`
}

type PlayerState struct {
	Deck    []CardInstance `json:"deck"`
	Hand    []CardInstance `json:"hand"`
	Discard []CardInstance `json:"discard"`
	Orders  []Order        `json:"orders"`
}

type Settings struct {
	BoardRows          int `json:"boardRows"`
	BoardCols          int `json:"boardCols"`
	StrongholdStrength int `json:"strongholdStrength"`
	DeckSize           int `json:"deckSize"`
	DrawPerTurn        int `json:"drawPerTurn"`
	MaxCopies          int `json:"maxCopies"`
	ActionBudgetP1     int `json:"actionBudgetP1"`
	ActionBudgetP2     int `json:"actionBudgetP2"`
}

func DefaultSettings() Settings {
	return Settings{
		BoardRows:          6,
		BoardCols:          6,
		StrongholdStrength: 5,
		DeckSize:           len(startingDeck),
		DrawPerTurn:        5,
		MaxCopies:          3,
		ActionBudgetP1:     3,
		ActionBudgetP2:     3,
	}
}

// GameState is the canonical state of one match. A nil Winner means the
// match is still running; once set no further phase transitions happen.
type GameState struct {
	BoardRows      int               `json:"boardRows"`
	BoardCols      int               `json:"boardCols"`
	Tiles          []Tile            `json:"tiles"`
	Units          map[string]*Unit  `json:"units"`
	Players        [2]PlayerState    `json:"players"`
	Ready          [2]bool           `json:"ready"`
	ActionBudgets  [2]int            `json:"actionBudgets"`
	ActivePlayer   Seat              `json:"activePlayer"`
	Phase          Phase             `json:"phase"`
	ActionQueue    []Order           `json:"actionQueue"`
	ActionIndex    int               `json:"actionIndex"`
	Turn           int               `json:"turn"`
	NextUnitID     int               `json:"nextUnitId"`
	NextOrderID    int               `json:"nextOrderId"`
	Log            []string          `json:"log"`
	Winner         *Seat             `json:"winner"`
	SpawnedByOrder map[string]string `json:"spawnedByOrder"`
	Settings       Settings          `json:"settings"`

	rng *rand.Rand
}

func (s *GameState) HasWinner() bool { return s.Winner != nil }

func (s *GameState) setWinner(seat Seat) {
	w := seat
	s.Winner = &w
}

// Rand returns the random source used for shuffles on this state.
func (s *GameState) Rand() *rand.Rand {
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s.rng
}

func (s *GameState) logf(format string, args ...any) {
	s.Log = append(s.Log, fmt.Sprintf(format, args...))
}
