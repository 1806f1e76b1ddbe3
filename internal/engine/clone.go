package engine

import "maps"

// Clone returns a deep copy of s. The copy shares nothing with s, including
// the random source, which is left unset.
func (s *GameState) Clone() *GameState {
	out := *s
	out.Tiles = append(make([]Tile, 0, len(s.Tiles)), s.Tiles...)
	out.Units = CloneUnits(s.Units)
	for i := range s.Players {
		out.Players[i] = s.Players[i].Clone()
	}
	out.ActionQueue = CloneOrders(s.ActionQueue)
	out.Log = append(make([]string, 0, len(s.Log)), s.Log...)
	if s.Winner != nil {
		out.setWinner(*s.Winner)
	}
	out.SpawnedByOrder = maps.Clone(s.SpawnedByOrder)
	if out.SpawnedByOrder == nil {
		out.SpawnedByOrder = map[string]string{}
	}
	out.rng = nil
	return &out
}

func (p PlayerState) Clone() PlayerState {
	return PlayerState{
		Deck:    CloneCards(p.Deck),
		Hand:    CloneCards(p.Hand),
		Discard: CloneCards(p.Discard),
		Orders:  CloneOrders(p.Orders),
	}
}

func CloneUnits(units map[string]*Unit) map[string]*Unit {
	out := make(map[string]*Unit, len(units))
	for id, u := range units {
		cp := *u
		out[id] = &cp
	}
	return out
}

func CloneCards(cards []CardInstance) []CardInstance {
	return append(make([]CardInstance, 0, len(cards)), cards...)
}

func CloneOrders(orders []Order) []Order {
	out := make([]Order, len(orders))
	for i, o := range orders {
		out[i] = o.Clone()
	}
	return out
}

func (o Order) Clone() Order {
	o.Params = o.Params.Clone()
	return o
}

func (p OrderParams) Clone() OrderParams {
	out := p
	if p.Tile != nil {
		t := *p.Tile
		out.Tile = &t
	}
	out.Direction = cloneDirection(p.Direction)
	out.MoveDirection = cloneDirection(p.MoveDirection)
	out.FaceDirection = cloneDirection(p.FaceDirection)
	if p.Distance != nil {
		d := *p.Distance
		out.Distance = &d
	}
	return out
}

func cloneDirection(d *Direction) *Direction {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
