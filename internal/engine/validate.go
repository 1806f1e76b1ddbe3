package engine

import "slices"

// resolveUnitID maps a reference to a unit id. Resolved references are
// returned as is, even if that unit no longer exists. A pending spawn resolves
// through SpawnedByOrder once the spawn ran; before that it resolves to the
// seat's own unit standing on the planned spawn tile, if any.
func resolveUnitID(s *GameState, seat Seat, ref UnitRef) (string, bool) {
	if id, ok := ref.UnitID(); ok {
		return id, true
	}
	orderID, ok := ref.PendingOrder()
	if !ok {
		return "", false
	}
	if id, ok := s.SpawnedByOrder[orderID]; ok && id != "" {
		return id, true
	}
	planned, ok := findOrder(s.Players[seat].Orders, orderID)
	if !ok || planned.Params.Tile == nil {
		return "", false
	}
	if def, ok := catalog[planned.DefID]; !ok || !def.spawnsForOrder() {
		return "", false
	}
	if u := unitAt(s, *planned.Params.Tile); u != nil && u.Owner == seat {
		return u.ID, true
	}
	return "", false
}

func resolveUnit(s *GameState, seat Seat, ref UnitRef) *Unit {
	id, ok := resolveUnitID(s, seat, ref)
	if !ok {
		return nil
	}
	return s.Units[id]
}

func findOrder(orders []Order, id string) (Order, bool) {
	i := slices.IndexFunc(orders, func(o Order) bool { return o.ID == id })
	if i == -1 {
		return Order{}, false
	}
	return orders[i], true
}

// isPlannedUnitReference reports whether ref points at one of the seat's own
// queued spawn orders.
func isPlannedUnitReference(s *GameState, seat Seat, ref UnitRef) bool {
	orderID, ok := ref.PendingOrder()
	if !ok {
		return false
	}
	planned, ok := findOrder(s.Players[seat].Orders, orderID)
	if !ok {
		return false
	}
	def, ok := catalog[planned.DefID]
	return ok && def.spawnsForOrder()
}

func lookupUnit(s, fallback *GameState, id string) *Unit {
	if u, ok := s.Units[id]; ok {
		return u
	}
	if fallback != nil {
		return fallback.Units[id]
	}
	return nil
}

// ValidateOrderParams is the authoritative target check run when an order is
// queued. s is the projected state after the seat's queued orders; fallback
// is the real state, consulted for units the projection no longer has.
func ValidateOrderParams(s *GameState, seat Seat, def CardDef, p OrderParams, fallback *GameState) bool {
	req := def.Requires
	if req.Unit != "" {
		if p.UnitID.IsZero() {
			return false
		}
		planned := isPlannedUnitReference(s, seat, p.UnitID)
		if req.Unit == TargetAny {
			if planned {
				return false
			}
			id, ok := p.UnitID.UnitID()
			if !ok {
				return false
			}
			u := lookupUnit(s, fallback, id)
			if u == nil || u.Kind != KindUnit {
				return false
			}
		} else if !planned {
			id, ok := p.UnitID.UnitID()
			if !ok {
				return false
			}
			u, ok := s.Units[id]
			if !ok || u.Owner != seat || u.Kind != KindUnit {
				return false
			}
		}
	}
	if !p.UnitID.IsZero() && def.boostsOnSpawnTile() {
		u := resolveUnit(s, seat, p.UnitID)
		if u == nil || !IsSpawnTile(s, seat, u.Pos) {
			return false
		}
	}
	switch req.Tile {
	case TileTargetSpawn:
		if p.Tile == nil || !IsSpawnTile(s, seat, *p.Tile) {
			return false
		}
	case TileTargetAny:
		if p.Tile == nil || !InBounds(s.BoardRows, s.BoardCols, *p.Tile) {
			return false
		}
		if u := unitAt(s, *p.Tile); u != nil && u.Kind == KindStronghold {
			return false
		}
	}
	if req.Direction && p.Direction == nil {
		return false
	}
	if req.MoveDirection && p.MoveDirection == nil {
		return false
	}
	if req.FaceDirection && p.FaceDirection == nil {
		return false
	}
	if req.DistanceOptions != nil {
		if p.Distance == nil || !slices.Contains(req.DistanceOptions, *p.Distance) {
			return false
		}
	}
	return true
}

// CanApplyOrder re-checks a queued order against a simulated state, effect by
// effect. It is looser than ValidateOrderParams: ownership and distance
// options are not re-checked.
func CanApplyOrder(s *GameState, order Order, fallback *GameState) bool {
	def, ok := catalog[order.DefID]
	if !ok {
		return false
	}
	p := order.Params
	for _, effect := range def.Effects {
		switch e := effect.(type) {
		case SpawnEffect:
			if p.Tile == nil || p.Direction == nil {
				return false
			}
			if !InBounds(s.BoardRows, s.BoardCols, *p.Tile) || unitAt(s, *p.Tile) != nil {
				return false
			}

		case BoostEffect:
			ref := unitParam(p, e.Target)
			if ref.IsZero() {
				if e.Target == ParamUnit2 {
					continue
				}
				return false
			}
			u := resolveUnit(s, order.Player, ref)
			if u == nil {
				return false
			}
			if e.RequireSpawnTile && !IsSpawnTile(s, order.Player, u.Pos) {
				return false
			}

		case MoveEffect:
			u := resolveUnit(s, order.Player, p.UnitID)
			if u == nil {
				return false
			}
			if _, ok := resolveDirection(u.Facing, p, e.Direction); !ok {
				return false
			}
			if _, ok := moveDistance(p, e); !ok {
				return false
			}

		case FaceEffect:
			if p.UnitID.IsZero() || directionParam(p, e.Param) == nil {
				return false
			}
			if resolveUnit(s, order.Player, p.UnitID) == nil {
				return false
			}

		case DamageEffect:
			id, ok := resolveUnitID(s, order.Player, p.UnitID)
			if !ok {
				return false
			}
			u := lookupUnit(s, fallback, id)
			if u == nil || u.Kind != KindUnit {
				return false
			}

		case DamageTileEffect, DamageTileAreaEffect:
			if p.Tile == nil || !InBounds(s.BoardRows, s.BoardCols, *p.Tile) {
				return false
			}
			if u := unitAt(s, *p.Tile); u != nil && u.Kind == KindStronghold {
				return false
			}

		case BudgetEffect:

		case AttackEffect:
			u := resolveUnit(s, order.Player, p.UnitID)
			if u == nil {
				return false
			}
			if len(resolveDirections(u.Facing, p, e.Directions)) == 0 {
				return false
			}
		}
	}
	return true
}
