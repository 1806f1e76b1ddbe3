package engine

import (
	"errors"
	"fmt"
	"slices"
)

var ErrWrongPhase = errors.New("wrong phase")
var ErrGameOver = errors.New("game already has a winner")
var ErrCardNotInHand = errors.New("card not in hand")
var ErrUnknownCard = errors.New("unknown card")
var ErrOverBudget = errors.New("action budget exceeded")
var ErrInvalidTarget = errors.New("invalid order target")
var ErrNotReady = errors.New("both seats must be ready")

// SpawnTiles lists the in-bounds tiles around a seat's stronghold. A seat
// whose stronghold is gone has none.
func SpawnTiles(s *GameState, seat Seat) []Hex {
	sh, ok := s.Units[StrongholdID(seat)]
	if !ok {
		return nil
	}
	tiles := make([]Hex, 0, 6)
	for d := DirEast; d <= DirSouthEast; d++ {
		c := Neighbor(sh.Pos, d)
		if InBounds(s.BoardRows, s.BoardCols, c) {
			tiles = append(tiles, c)
		}
	}
	return tiles
}

func IsSpawnTile(s *GameState, seat Seat, h Hex) bool {
	return slices.Contains(SpawnTiles(s, seat), h)
}

// DrawPhase draws the per-turn count for both seats and opens planning.
func DrawPhase(s *GameState) {
	for _, seat := range Seats {
		drawCards(s, seat, s.Settings.DrawPerTurn)
	}
	s.Phase = PhasePlanning
	s.logf("Turn %d draw complete. Active player: %d.", s.Turn, s.ActivePlayer+1)
}

func drawCards(s *GameState, seat Seat, count int) {
	p := &s.Players[seat]
	for range count {
		if len(p.Deck) == 0 {
			if len(p.Discard) == 0 {
				return
			}
			p.Deck = p.Discard
			shuffle(s.Rand(), p.Deck)
			p.Discard = []CardInstance{}
			s.logf("Player %d reshuffles their discard pile.", seat+1)
		}
		p.Hand = append(p.Hand, p.Deck[0])
		p.Deck = p.Deck[1:]
	}
}

func orderCost(defID CardDefID) int {
	def, ok := catalog[defID]
	if !ok {
		return 1
	}
	return def.Cost()
}

// UsedActionPoints is the total cost of a seat's queued orders.
func UsedActionPoints(s *GameState, seat Seat) int {
	used := 0
	for _, o := range s.Players[seat].Orders {
		used += orderCost(o.DefID)
	}
	return used
}

// PlanOrder queues cardID from the seat's hand with the given targets.
// Targets are checked against the state as it would be after the seat's
// already queued orders resolve. On failure the state is unchanged.
func PlanOrder(s *GameState, seat Seat, cardID string, params OrderParams) (Order, error) {
	if s.Phase != PhasePlanning {
		return Order{}, ErrWrongPhase
	}
	if s.HasWinner() {
		return Order{}, ErrGameOver
	}
	p := &s.Players[seat]
	idx := slices.IndexFunc(p.Hand, func(c CardInstance) bool { return c.ID == cardID })
	if idx == -1 {
		return Order{}, ErrCardNotInHand
	}
	card := p.Hand[idx]
	def, ok := catalog[card.DefID]
	if !ok {
		return Order{}, fmt.Errorf("%w: %s", ErrUnknownCard, card.DefID)
	}
	if UsedActionPoints(s, seat)+def.Cost() > s.ActionBudgets[seat] {
		return Order{}, ErrOverBudget
	}
	projected := SimulatePlannedState(s, seat)
	if !ValidateOrderParams(projected, seat, def, params, s) {
		return Order{}, ErrInvalidTarget
	}

	p.Hand = slices.Delete(p.Hand, idx, idx+1)
	order := Order{
		ID:     fmt.Sprintf("o%d", s.NextOrderID),
		Player: seat,
		CardID: card.ID,
		DefID:  card.DefID,
		Params: params.Clone(),
	}
	s.NextOrderID++
	p.Orders = append(p.Orders, order)
	s.logf("Player %d plans %s.", seat+1, def.Name)
	return order, nil
}

// DiscardUnchosen moves every card left in hand to discard for both seats.
func DiscardUnchosen(s *GameState) {
	for _, seat := range Seats {
		p := &s.Players[seat]
		if len(p.Hand) > 0 {
			p.Discard = append(p.Discard, p.Hand...)
			p.Hand = []CardInstance{}
		}
	}
}

// StartActionPhase reveals both seats' orders and builds the action queue.
func StartActionPhase(s *GameState) error {
	if s.Phase != PhasePlanning {
		return ErrWrongPhase
	}
	if s.HasWinner() {
		return ErrGameOver
	}
	if !s.Ready[SeatOne] || !s.Ready[SeatTwo] {
		return ErrNotReady
	}
	DiscardUnchosen(s)
	s.Phase = PhaseAction
	s.ActionQueue = buildActionQueue(s)
	s.ActionIndex = 0
	s.Log = append(s.Log, "Orders revealed. Action phase begins.")
	return nil
}

// ResolveNextAction resolves the order under the cursor. When the queue is
// exhausted the turn is finished.
func ResolveNextAction(s *GameState) {
	if s.Phase != PhaseAction || s.HasWinner() {
		return
	}
	if s.ActionIndex >= len(s.ActionQueue) {
		finishTurn(s)
		return
	}
	order := s.ActionQueue[s.ActionIndex]
	applyOrder(s, order)
	if s.HasWinner() {
		s.ActionQueue = []Order{}
		s.ActionIndex = 0
		return
	}
	p := &s.Players[order.Player]
	if i := slices.IndexFunc(p.Orders, func(o Order) bool { return o.ID == order.ID }); i != -1 {
		played := p.Orders[i]
		p.Orders = slices.Delete(p.Orders, i, i+1)
		p.Discard = append(p.Discard, CardInstance{ID: played.CardID, DefID: played.DefID})
	}
	s.ActionIndex++
	if s.ActionIndex >= len(s.ActionQueue) {
		finishTurn(s)
	}
}

// ResolveAllActions resolves until the action phase ends, a winner is found,
// or the cursor stops moving.
func ResolveAllActions(s *GameState) {
	for s.Phase == PhaseAction && !s.HasWinner() {
		cursor := s.ActionIndex
		ResolveNextAction(s)
		if s.ActionIndex == cursor {
			break
		}
	}
}

// Forfeit awards the match to winner without any further resolution.
func Forfeit(s *GameState, winner Seat) {
	if s.HasWinner() {
		return
	}
	s.setWinner(winner)
	s.logf("Player %d wins by forfeit.", winner+1)
}

func finishTurn(s *GameState) {
	s.Players[SeatOne].Orders = []Order{}
	s.Players[SeatTwo].Orders = []Order{}
	s.ActionQueue = []Order{}
	s.ActionIndex = 0
	s.Phase = PhasePlanning
	s.Turn++
	s.ActivePlayer = s.ActivePlayer.Opponent()
	s.Ready = [2]bool{}
	DrawPhase(s)
}
