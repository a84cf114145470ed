package engine

import "fmt"

// evaluateVictory ends the game when one nation remains, when a nation holds
// the dominance share of land, or when the tick ceiling is reached.
func (e *Engine) evaluateVictory(s *WorldState) {
	alive := s.AliveNations()

	switch len(alive) {
	case 0:
		e.end(s, NoWinner, "no nation survived")
		return
	case 1:
		e.end(s, alive[0].ID, fmt.Sprintf("%s is the last nation standing", alive[0].Name))
		return
	}

	if land := s.Grid.LandCount(); land > 0 {
		for _, n := range alive {
			if float64(n.Tiles)/float64(land) >= e.Tuning.DominanceThreshold {
				e.end(s, n.ID, fmt.Sprintf("%s dominates the map", n.Name))
				return
			}
		}
	}

	if s.Tick >= e.Tuning.MaxTicks {
		leader := alive[0]
		for _, n := range alive[1:] {
			if n.Tiles > leader.Tiles {
				leader = n
			}
		}
		e.end(s, leader.ID, fmt.Sprintf("%s holds the most land at the deadline", leader.Name))
	}
}

func (e *Engine) end(s *WorldState, winner NationID, why string) {
	s.Phase = PhaseEnded
	s.Winner = winner
	s.emit(Event{Kind: EventVictory, Nation: winner, Other: NoWinner, Description: why})
	e.Log.Info("game ended", "tick", s.Tick, "winner", winner, "reason", why)
}
