package engine

// SimulatePlannedState returns a detached copy of s with the seat's queued
// orders applied in order, budget effects excluded. It is used for previews
// and for validating further orders in the same batch. s is not modified.
func SimulatePlannedState(s *GameState, seat Seat) *GameState {
	sim := planningCopy(s)
	for _, order := range s.Players[seat].Orders {
		applyOrderForPlanning(sim, order)
	}
	return sim
}

// planningCopy clones s and clears the fields that only make sense for the
// canonical state.
func planningCopy(s *GameState) *GameState {
	sim := s.Clone()
	sim.ActionQueue = []Order{}
	sim.ActionIndex = 0
	sim.Winner = nil
	sim.SpawnedByOrder = map[string]string{}
	sim.Log = []string{}
	return sim
}

// PlannedOrderValidity reports, for each of the seat's queued orders, whether
// it would still apply after the earlier valid orders in the batch.
func PlannedOrderValidity(s *GameState, seat Seat) []bool {
	sim := planningCopy(s)

	orders := s.Players[seat].Orders
	validity := make([]bool, len(orders))
	for i, order := range orders {
		validity[i] = CanApplyOrder(sim, order, s)
		if validity[i] {
			applyOrderForPlanning(sim, order)
		}
	}
	return validity
}

type Segment struct {
	From Hex `json:"from"`
	To   Hex `json:"to"`
}

// PlannedMoveSegments traces where the seat's queued moves would carry their
// units, as one segment per move that changes position.
func PlannedMoveSegments(s *GameState, seat Seat) []Segment {
	sim := planningCopy(s)

	segments := []Segment{}
	for _, order := range s.Players[seat].Orders {
		def, ok := catalog[order.DefID]
		if !ok {
			continue
		}
		for _, effect := range def.Effects {
			switch e := effect.(type) {
			case MoveEffect:
				u := resolveUnit(sim, order.Player, order.Params.UnitID)
				if u == nil || u.Kind != KindUnit {
					continue
				}
				dir, ok := resolveDirection(u.Facing, order.Params, e.Direction)
				if !ok {
					continue
				}
				dist, ok := moveDistance(order.Params, e)
				if !ok {
					continue
				}
				from := u.Pos
				u.Pos = walk(sim, from, dir, dist)
				if u.Pos != from {
					segments = append(segments, Segment{From: from, To: u.Pos})
				}
			case BudgetEffect:
			default:
				applyEffect(sim, order, def, effect)
			}
		}
	}
	return segments
}
