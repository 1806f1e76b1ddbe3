package engine

import "fmt"

func applyOrder(s *GameState, order Order) {
	def, ok := catalog[order.DefID]
	if !ok || s.HasWinner() {
		return
	}
	for _, effect := range def.Effects {
		applyEffect(s, order, def, effect)
		if s.HasWinner() {
			return
		}
	}
}

// applyOrderForPlanning applies an order to a simulated state. Budget
// effects are skipped and a winner does not stop resolution.
func applyOrderForPlanning(s *GameState, order Order) {
	def, ok := catalog[order.DefID]
	if !ok {
		return
	}
	for _, effect := range def.Effects {
		if _, isBudget := effect.(BudgetEffect); isBudget {
			continue
		}
		applyEffect(s, order, def, effect)
	}
}

// applyEffect interprets one effect. Every missing or stale target makes the
// effect a no-op.
func applyEffect(s *GameState, order Order, def CardDef, effect Effect) {
	p := order.Params
	switch e := effect.(type) {
	case SpawnEffect:
		if p.Tile == nil || p.Direction == nil {
			return
		}
		id, ok := spawnUnit(s, order.Player, *p.Tile, *p.Direction, e.Strength)
		if !ok {
			s.logf("%s fails (tile occupied or out of bounds).", def.Name)
			return
		}
		if e.MapToOrder {
			s.SpawnedByOrder[order.ID] = id
		}

	case BoostEffect:
		u := resolveUnit(s, order.Player, unitParam(p, e.Target))
		if u == nil {
			return
		}
		if e.RequireSpawnTile && !IsSpawnTile(s, order.Player, u.Pos) {
			return
		}
		u.Strength += e.Amount
		s.logf("Unit %s gains %d strength.", u.ID, e.Amount)

	case MoveEffect:
		u := resolveUnit(s, order.Player, p.UnitID)
		if u == nil {
			return
		}
		dir, ok := resolveDirection(u.Facing, p, e.Direction)
		if !ok {
			return
		}
		dist, ok := moveDistance(p, e)
		if !ok {
			return
		}
		moveUnit(s, u, dir, dist)

	case FaceEffect:
		u := resolveUnit(s, order.Player, p.UnitID)
		dir := directionParam(p, e.Param)
		if u == nil || dir == nil {
			return
		}
		u.Facing = *dir
		s.logf("Unit %s faces %d.", u.ID, *dir)

	case DamageEffect:
		u := resolveUnit(s, order.Player, p.UnitID)
		if u == nil || u.Kind != KindUnit {
			return
		}
		applyDamage(s, u, e.Amount)

	case DamageTileEffect:
		if p.Tile == nil {
			return
		}
		u := unitAt(s, *p.Tile)
		if u == nil || u.Kind != KindUnit {
			return
		}
		applyDamage(s, u, e.Amount)

	case DamageTileAreaEffect:
		if p.Tile == nil {
			return
		}
		center := *p.Tile
		if u := unitAt(s, center); u != nil && u.Kind == KindUnit {
			applyDamage(s, u, e.Center)
		}
		for d := DirEast; d <= DirSouthEast; d++ {
			n := Neighbor(center, d)
			if !InBounds(s.BoardRows, s.BoardCols, n) {
				continue
			}
			if u := unitAt(s, n); u != nil && u.Kind == KindUnit {
				applyDamage(s, u, e.Splash)
			}
		}

	case AttackEffect:
		u := resolveUnit(s, order.Player, p.UnitID)
		if u == nil {
			return
		}
		damage := e.Damage
		if e.DamageFromStrength {
			damage = u.Strength
		}
		for _, dir := range resolveDirections(u.Facing, p, e.Directions) {
			switch e.Mode {
			case AttackLine:
				attackFirstInLine(s, u, dir, damage)
			case AttackRay:
				attackPiercing(s, u, dir, damage)
			default:
				attackNearest(s, u, dir, damage)
			}
		}

	case BudgetEffect:
		s.ActionBudgets[order.Player] = max(0, s.ActionBudgets[order.Player]+e.Amount)
		s.logf("Player %d increases their action budget by %d.", order.Player+1, e.Amount)

	default:
		s.logf("%s has an unsupported effect %T.", def.Name, effect)
	}
}

func unitParam(p OrderParams, which UnitParam) UnitRef {
	if which == ParamUnit2 {
		return p.UnitID2
	}
	return p.UnitID
}

func directionParam(p OrderParams, which DirectionParam) *Direction {
	switch which {
	case ParamMoveDirection:
		return p.MoveDirection
	case ParamFaceDirection:
		return p.FaceDirection
	default:
		return p.Direction
	}
}

func moveDistance(p OrderParams, e MoveEffect) (int, bool) {
	if !e.DistanceFromParam {
		return e.Distance, e.Distance != 0
	}
	if p.Distance == nil || *p.Distance == 0 {
		return 0, false
	}
	return *p.Distance, true
}

// resolveDirection yields a single direction. Relative sources have no
// single answer and resolve to false.
func resolveDirection(facing Direction, p OrderParams, src DirectionSource) (Direction, bool) {
	switch src.Kind {
	case FromFacing:
		return facing, true
	case FromParam:
		if d := directionParam(p, src.Param); d != nil {
			return *d, true
		}
	}
	return 0, false
}

func resolveDirections(facing Direction, p OrderParams, src DirectionSource) []Direction {
	switch src.Kind {
	case FromFacing:
		return []Direction{facing}
	case FromParam:
		if d := directionParam(p, src.Param); d != nil {
			return []Direction{*d}
		}
		return nil
	case RelativeToFacing:
		dirs := make([]Direction, len(src.Offsets))
		for i, off := range src.Offsets {
			dirs[i] = RotateDirection(facing, off)
		}
		return dirs
	}
	return nil
}

func unitAt(s *GameState, h Hex) *Unit {
	for _, u := range s.Units {
		if u.Pos == h {
			return u
		}
	}
	return nil
}

func spawnUnit(s *GameState, seat Seat, tile Hex, facing Direction, strength int) (string, bool) {
	if !InBounds(s.BoardRows, s.BoardCols, tile) || unitAt(s, tile) != nil {
		return "", false
	}
	id := fmt.Sprintf("u%d-%d", seat, s.NextUnitID)
	s.NextUnitID++
	s.Units[id] = &Unit{ID: id, Owner: seat, Kind: KindUnit, Strength: strength, Pos: tile, Facing: facing}
	s.logf("Player %d spawns a unit at %d,%d.", seat+1, tile.Q, tile.R)
	return id, true
}

// applyDamage is the only place a winner is decided: a stronghold dropping
// to zero strength loses the match for its owner.
func applyDamage(s *GameState, u *Unit, amount int) {
	u.Strength -= amount
	s.logf("Unit %s takes %d damage.", u.ID, amount)
	if u.Strength > 0 {
		return
	}
	delete(s.Units, u.ID)
	s.logf("Unit %s is destroyed.", u.ID)
	if u.Kind == KindStronghold {
		s.setWinner(u.Owner.Opponent())
		s.logf("Player %d wins by destroying the stronghold.", *s.Winner+1)
	}
}

func walk(s *GameState, from Hex, dir Direction, distance int) Hex {
	cur := from
	for range distance {
		next := Neighbor(cur, dir)
		if !InBounds(s.BoardRows, s.BoardCols, next) || unitAt(s, next) != nil {
			break
		}
		cur = next
	}
	return cur
}

func moveUnit(s *GameState, u *Unit, dir Direction, distance int) {
	if u.Kind != KindUnit {
		return
	}
	dest := walk(s, u.Pos, dir, distance)
	if dest == u.Pos {
		s.logf("Unit %s cannot move.", u.ID)
		return
	}
	u.Pos = dest
	s.logf("Unit %s moves to %d,%d.", u.ID, dest.Q, dest.R)
}

func attackNearest(s *GameState, origin *Unit, dir Direction, damage int) {
	target := Neighbor(origin.Pos, dir)
	if !InBounds(s.BoardRows, s.BoardCols, target) {
		return
	}
	if u := unitAt(s, target); u != nil {
		applyDamage(s, u, damage)
	}
}

func attackFirstInLine(s *GameState, origin *Unit, dir Direction, damage int) {
	cur := origin.Pos
	for {
		cur = Neighbor(cur, dir)
		if !InBounds(s.BoardRows, s.BoardCols, cur) {
			return
		}
		if u := unitAt(s, cur); u != nil {
			applyDamage(s, u, damage)
			return
		}
	}
}

func attackPiercing(s *GameState, origin *Unit, dir Direction, damage int) {
	cur := origin.Pos
	for {
		cur = Neighbor(cur, dir)
		if !InBounds(s.BoardRows, s.BoardCols, cur) {
			return
		}
		if u := unitAt(s, cur); u != nil {
			applyDamage(s, u, damage)
		}
	}
}
