package room

import (
	"maps"
	"time"

	"github.com/DoyleJ11/hex-tactics-backend/internal/engine"
)

// PlayerView is one seat's zones as seen by the viewer. A nil slice
// serializes as null and means hidden.
type PlayerView struct {
	Hand   []engine.CardInstance `json:"hand"`
	Orders []engine.Order        `json:"orders"`
}

// GameStateView is the canonical state with hands and unrevealed orders
// redacted for one viewer.
type GameStateView struct {
	BoardRows      int                     `json:"boardRows"`
	BoardCols      int                     `json:"boardCols"`
	Tiles          []engine.Tile           `json:"tiles"`
	Units          map[string]*engine.Unit `json:"units"`
	Players        [2]PlayerView           `json:"players"`
	Ready          [2]bool                 `json:"ready"`
	ActionBudgets  [2]int                  `json:"actionBudgets"`
	ActivePlayer   engine.Seat             `json:"activePlayer"`
	Phase          engine.Phase            `json:"phase"`
	ActionQueue    []engine.Order          `json:"actionQueue"`
	ActionIndex    int                     `json:"actionIndex"`
	Turn           int                     `json:"turn"`
	NextUnitID     int                     `json:"nextUnitId"`
	NextOrderID    int                     `json:"nextOrderId"`
	Log            []string                `json:"log"`
	Winner         *engine.Seat            `json:"winner"`
	SpawnedByOrder map[string]string       `json:"spawnedByOrder"`
	Settings       engine.Settings         `json:"settings"`
}

type ResourceCounts struct {
	Deck    int `json:"deck"`
	Discard int `json:"discard"`
	Hand    int `json:"hand"`
	Orders  int `json:"orders"`
}

// ViewMeta accompanies every view. OrderValidity and PlannedMoves preview
// the viewer's own queued orders and are only filled during planning.
type ViewMeta struct {
	RoomCode            string            `json:"roomCode"`
	SelfSeat            engine.Seat       `json:"selfSeat"`
	Paused              bool              `json:"paused"`
	ReconnectDeadlineAt *int64            `json:"reconnectDeadlineAt"`
	Counts              [2]ResourceCounts `json:"counts"`
	OrderValidity       []bool            `json:"orderValidity,omitempty"`
	PlannedMoves        []engine.Segment  `json:"plannedMoves,omitempty"`
}

type Presence struct {
	Connected  [2]bool `json:"connected"`
	Paused     bool    `json:"paused"`
	DeadlineAt *int64  `json:"deadlineAt"`
}

func unixMillis(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func (r *Room) Presence() Presence {
	return Presence{
		Connected:  [2]bool{r.Seats[engine.SeatOne].Connected, r.Seats[engine.SeatTwo].Connected},
		Paused:     r.Paused,
		DeadlineAt: unixMillis(r.ReconnectDeadline),
	}
}

// BuildStateView projects the room's current state for seat.
func BuildStateView(r *Room, seat engine.Seat) (GameStateView, ViewMeta) {
	return BuildStateViewFor(r, r.State, seat)
}

// BuildStateViewFor projects src, which need not be the room's current
// state, for seat. The viewer always sees their own hand and orders; the
// opponent's hand is never shown and their orders only once revealed.
func BuildStateViewFor(r *Room, src *engine.GameState, seat engine.Seat) (GameStateView, ViewMeta) {
	reveal := src.Phase == engine.PhaseAction
	var players [2]PlayerView
	for _, owner := range engine.Seats {
		p := src.Players[owner]
		if owner == seat {
			players[owner].Hand = engine.CloneCards(p.Hand)
		}
		if owner == seat || reveal {
			players[owner].Orders = engine.CloneOrders(p.Orders)
		}
	}

	view := GameStateView{
		BoardRows:      src.BoardRows,
		BoardCols:      src.BoardCols,
		Tiles:          append([]engine.Tile{}, src.Tiles...),
		Units:          engine.CloneUnits(src.Units),
		Players:        players,
		Ready:          src.Ready,
		ActionBudgets:  src.ActionBudgets,
		ActivePlayer:   src.ActivePlayer,
		Phase:          src.Phase,
		ActionQueue:    engine.CloneOrders(src.ActionQueue),
		ActionIndex:    src.ActionIndex,
		Turn:           src.Turn,
		NextUnitID:     src.NextUnitID,
		NextOrderID:    src.NextOrderID,
		Log:            append([]string{}, src.Log...),
		SpawnedByOrder: maps.Clone(src.SpawnedByOrder),
		Settings:       src.Settings,
	}
	if src.Winner != nil {
		w := *src.Winner
		view.Winner = &w
	}
	if view.SpawnedByOrder == nil {
		view.SpawnedByOrder = map[string]string{}
	}

	meta := ViewMeta{
		RoomCode:            r.Code,
		SelfSeat:            seat,
		Paused:              r.Paused,
		ReconnectDeadlineAt: unixMillis(r.ReconnectDeadline),
	}
	for _, owner := range engine.Seats {
		p := src.Players[owner]
		meta.Counts[owner] = ResourceCounts{Deck: len(p.Deck), Discard: len(p.Discard), Hand: len(p.Hand), Orders: len(p.Orders)}
	}
	if src.Phase == engine.PhasePlanning && !src.HasWinner() && len(src.Players[seat].Orders) > 0 {
		meta.OrderValidity = engine.PlannedOrderValidity(src, seat)
		meta.PlannedMoves = engine.PlannedMoveSegments(src, seat)
	}
	return view, meta
}
