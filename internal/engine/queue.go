package engine

// buildActionQueue interleaves both seats' orders: the active seat's i-th
// order, then the other seat's i-th order, for each i.
func buildActionQueue(s *GameState) []Order {
	active := s.ActivePlayer
	other := active.Opponent()
	a, b := s.Players[active].Orders, s.Players[other].Orders
	queue := make([]Order, 0, len(a)+len(b))
	for i := range max(len(a), len(b)) {
		if i < len(a) {
			queue = append(queue, a[i].Clone())
		}
		if i < len(b) {
			queue = append(queue, b[i].Clone())
		}
	}
	return queue
}
