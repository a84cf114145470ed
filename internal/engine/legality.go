package engine

import "github.com/talgya/conquest/internal/world"

// CanAttack reports whether the human nation may send an order from
// (fromX, fromY) to (toX, toY) right now.
func CanAttack(s *WorldState, fromX, fromY, toX, toY int) bool {
	return CanAttackAs(s, HumanID, world.Point{X: fromX, Y: fromY}, world.Point{X: toX, Y: toY})
}

// CanAttackAs checks adjacency, ownership, terrain, and phase legality for
// an order issued by id. Alliances do not block attacks; they are broken by them.
func CanAttackAs(s *WorldState, id NationID, from, to world.Point) bool {
	if s.Phase == PhaseEnded || s.Nation(id) == nil {
		return false
	}
	src := s.Grid.Get(from)
	dst := s.Grid.Get(to)
	if src == nil || dst == nil || !from.Adjacent(to) {
		return false
	}
	if src.Owner != id || dst.IsWater() || dst.Owner == id {
		return false
	}
	if s.Phase == PhaseFreeExpansion && dst.Owner != world.Neutral {
		return false
	}
	return true
}

// MergeOrders charges each order's amount to its issuer's treasury, human
// orders first, and drops any order the issuer can no longer afford.
// It returns the charged state and the batch for AdvanceTick.
func MergeOrders(s *WorldState, human, bots []Order) (*WorldState, []Order) {
	next := s.withNations()
	batch := make([]Order, 0, len(human)+len(bots))
	for _, group := range [][]Order{human, bots} {
		for _, o := range group {
			n := next.Nation(o.Attacker)
			if n == nil || !n.Alive || o.Amount <= 0 || o.Amount > n.Treasury {
				continue
			}
			n.Treasury -= o.Amount
			batch = append(batch, o)
		}
	}
	return next, batch
}
