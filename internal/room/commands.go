package room

import (
	"bytes"
	"encoding/json"
	"math"
	"slices"

	"github.com/DoyleJ11/hex-tactics-backend/internal/engine"
)

type ErrorCode string

const (
	CodeMatchEnded     ErrorCode = "match_ended"
	CodeRoomPaused     ErrorCode = "room_paused"
	CodeInvalidPhase   ErrorCode = "invalid_phase"
	CodeAlreadyReady   ErrorCode = "already_ready"
	CodeInvalidOrder   ErrorCode = "invalid_order"
	CodeOrderNotFound  ErrorCode = "order_not_found"
	CodeUnknownCommand ErrorCode = "unknown_command"
)

type CommandType string

const (
	CmdQueueOrder    CommandType = "queue_order"
	CmdRemoveOrder   CommandType = "remove_order"
	CmdReorderOrder  CommandType = "reorder_order"
	CmdReady         CommandType = "ready"
	CmdUpdateLoadout CommandType = "update_loadout"
	CmdRematch       CommandType = "rematch"
)

// Command is a seat-scoped game command. Only the fields of its Type are
// read.
type Command struct {
	Type        CommandType        `json:"type"`
	CardID      string             `json:"cardId,omitempty"`
	Params      RawOrderParams     `json:"params,omitzero"`
	OrderID     string             `json:"orderId,omitempty"`
	FromOrderID string             `json:"fromOrderId,omitempty"`
	ToOrderID   string             `json:"toOrderId,omitempty"`
	Loadout     []engine.CardDefID `json:"loadout,omitempty"`
}

// RawOrderParams is order targeting exactly as a client sent it. Values of
// the wrong type or range are dropped by sanitizeOrderParams rather than
// failing the whole message.
type RawOrderParams struct {
	UnitID        json.RawMessage `json:"unitId,omitempty"`
	UnitID2       json.RawMessage `json:"unitId2,omitempty"`
	Tile          json.RawMessage `json:"tile,omitempty"`
	Direction     json.RawMessage `json:"direction,omitempty"`
	MoveDirection json.RawMessage `json:"moveDirection,omitempty"`
	FaceDirection json.RawMessage `json:"faceDirection,omitempty"`
	Distance      json.RawMessage `json:"distance,omitempty"`
}

func (p RawOrderParams) IsZero() bool {
	return p.UnitID == nil && p.UnitID2 == nil && p.Tile == nil && p.Direction == nil &&
		p.MoveDirection == nil && p.FaceDirection == nil && p.Distance == nil
}

// Replay carries deep copies of the state right after orders were revealed
// and after every order resolved, so clients can animate the turn.
type Replay struct {
	ActionStart *engine.GameState
	Final       *engine.GameState
}

type Result struct {
	OK             bool
	ErrorCode      ErrorCode
	Message        string
	Replay         *Replay
	RematchStarted bool
}

func succeed(message string) Result { return Result{OK: true, Message: message} }

func fail(code ErrorCode, message string) Result {
	return Result{ErrorCode: code, Message: message}
}

// ApplyCommand validates cmd for seat and applies it to the room. Failures
// never change the room.
func ApplyCommand(r *Room, seat engine.Seat, cmd Command) Result {
	switch cmd.Type {
	case CmdUpdateLoadout, CmdRematch:
		return applyLoadoutCommand(r, seat, cmd)
	}

	if r.Ended || r.State.HasWinner() {
		return fail(CodeMatchEnded, "Match has already ended.")
	}
	if r.Paused {
		return fail(CodeRoomPaused, "Match is paused while waiting for reconnect.")
	}

	s := r.State
	switch cmd.Type {
	case CmdQueueOrder:
		if s.Phase != engine.PhasePlanning {
			return fail(CodeInvalidPhase, "Orders can only be queued during planning.")
		}
		if s.Ready[seat] {
			return fail(CodeAlreadyReady, "You are already marked ready for this turn.")
		}
		if _, err := engine.PlanOrder(s, seat, cmd.CardID, sanitizeOrderParams(cmd.Params)); err != nil {
			return fail(CodeInvalidOrder, "Unable to queue order (AP, ownership, or target invalid).")
		}
		return succeed("Order queued.")

	case CmdRemoveOrder:
		if res, editable := checkEditable(s, seat); !editable {
			return res
		}
		p := &s.Players[seat]
		i := orderIndex(p.Orders, cmd.OrderID)
		if i == -1 {
			return fail(CodeOrderNotFound, "Order not found for your seat.")
		}
		removed := p.Orders[i]
		p.Orders = slices.Delete(p.Orders, i, i+1)
		p.Hand = append(p.Hand, engine.CardInstance{ID: removed.CardID, DefID: removed.DefID})
		return succeed("Order removed.")

	case CmdReorderOrder:
		if res, editable := checkEditable(s, seat); !editable {
			return res
		}
		p := &s.Players[seat]
		from, to := orderIndex(p.Orders, cmd.FromOrderID), orderIndex(p.Orders, cmd.ToOrderID)
		if from == -1 || to == -1 {
			return fail(CodeOrderNotFound, "Both orders must exist in your queue.")
		}
		if from != to {
			moved := p.Orders[from]
			p.Orders = slices.Delete(p.Orders, from, from+1)
			p.Orders = slices.Insert(p.Orders, to, moved)
		}
		return succeed("Order moved.")

	case CmdReady:
		if s.Phase != engine.PhasePlanning {
			return fail(CodeInvalidPhase, "Ready is only valid during planning.")
		}
		if s.Ready[seat] {
			return fail(CodeAlreadyReady, "You are already ready.")
		}
		s.Ready[seat] = true
		res := succeed("Ready set.")
		if s.Ready[engine.SeatOne] && s.Ready[engine.SeatTwo] {
			if err := engine.StartActionPhase(s); err == nil {
				start := s.Clone()
				engine.ResolveAllActions(s)
				res.Replay = &Replay{ActionStart: start, Final: s.Clone()}
			}
		}
		if s.HasWinner() {
			r.Ended = true
			r.EndReason = EndVictory
		}
		return res
	}
	return fail(CodeUnknownCommand, "Unknown command type.")
}

func applyLoadoutCommand(r *Room, seat engine.Seat, cmd Command) Result {
	if r.Paused {
		return fail(CodeRoomPaused, "Match is paused while waiting for reconnect.")
	}
	if !r.CanUpdateLoadout() {
		return fail(CodeInvalidPhase, "Loadouts can only change before the first orders or after the match.")
	}
	if cmd.Type == CmdUpdateLoadout {
		r.UpdateLoadout(seat, cmd.Loadout)
		return succeed("Loadout updated.")
	}
	if r.RequestRematch(seat) {
		res := succeed("Rematch started.")
		res.RematchStarted = true
		return res
	}
	return succeed("Waiting for opponent to accept rematch.")
}

func checkEditable(s *engine.GameState, seat engine.Seat) (Result, bool) {
	if s.Phase != engine.PhasePlanning {
		return fail(CodeInvalidPhase, "Orders can only be edited during planning."), false
	}
	if s.Ready[seat] {
		return fail(CodeAlreadyReady, "Ready players cannot edit orders."), false
	}
	return Result{}, true
}

func orderIndex(orders []engine.Order, id string) int {
	return slices.IndexFunc(orders, func(o engine.Order) bool { return o.ID == id })
}

// sanitizeOrderParams keeps only well-typed values: unit ids must be
// strings, directions integers in 0..5, distances and tile coordinates
// finite numbers (floored, distance at least 0).
func sanitizeOrderParams(in RawOrderParams) engine.OrderParams {
	var out engine.OrderParams
	if id, ok := rawString(in.UnitID); ok {
		out.UnitID = engine.ParseUnitRef(id)
	}
	if id, ok := rawString(in.UnitID2); ok {
		out.UnitID2 = engine.ParseUnitRef(id)
	}
	out.Direction = rawDirection(in.Direction)
	out.MoveDirection = rawDirection(in.MoveDirection)
	out.FaceDirection = rawDirection(in.FaceDirection)
	if d, ok := rawNumber(in.Distance); ok {
		dist := floorInt(max(0, d))
		out.Distance = &dist
	}
	if !isAbsent(in.Tile) {
		var tile struct {
			Q json.RawMessage `json:"q"`
			R json.RawMessage `json:"r"`
		}
		if json.Unmarshal(in.Tile, &tile) == nil {
			q, qok := rawNumber(tile.Q)
			r, rok := rawNumber(tile.R)
			if qok && rok {
				out.Tile = &engine.Hex{Q: floorInt(q), R: floorInt(r)}
			}
		}
	}
	return out
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func rawString(raw json.RawMessage) (string, bool) {
	var s string
	if isAbsent(raw) || json.Unmarshal(raw, &s) != nil {
		return "", false
	}
	return s, true
}

func rawNumber(raw json.RawMessage) (float64, bool) {
	var f float64
	if isAbsent(raw) || json.Unmarshal(raw, &f) != nil {
		return 0, false
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func rawDirection(raw json.RawMessage) *engine.Direction {
	f, ok := rawNumber(raw)
	if !ok || f != math.Trunc(f) || f < 0 || f > 5 {
		return nil
	}
	d := engine.Direction(f)
	return &d
}

func floorInt(f float64) int {
	return int(math.Floor(min(max(f, math.MinInt32), math.MaxInt32)))
}
