// Territory accounting and settlement.
package engine

import (
	"fmt"

	"github.com/talgya/conquest/internal/economy"
	"github.com/talgya/conquest/internal/world"
)

// Ledger is one nation's holdings as derived from a grid scan.
type Ledger struct {
	Tiles      int
	Income     float64
	Structures economy.StructureTally
	Production economy.UnitProgress // Unit progress earned this tick
}

// Survey scans g and derives every nation's tile count, income, structure
// tally, and production. It is a pure function of the grid.
func (e *Engine) Survey(g *world.Grid, nations int) []Ledger {
	out := make([]Ledger, nations)
	for i := range g.Tiles {
		t := &g.Tiles[i]
		if !t.Owner.IsNation() || int(t.Owner) >= nations {
			continue
		}
		l := &out[t.Owner]
		l.Tiles++
		l.Income += e.Tuning.TileIncome
		if !t.HasStructure() {
			continue
		}
		def := economy.Structure(t.Structure)
		l.Structures[t.Structure]++
		l.Income += def.Income
		if def.Produces != nil {
			l.Production[def.Produces.Unit] += def.Produces.PerTick
		}
	}
	return out
}

// applyYield credits each owned tile's local balance and converts
// accumulated production into whole units.
func (e *Engine) applyYield(s *WorldState, ledgers []Ledger) {
	for i := range s.Grid.Tiles {
		t := &s.Grid.Tiles[i]
		if !t.Owner.IsNation() || int(t.Owner) >= len(s.Nations) {
			continue
		}
		t.Balance += e.Tuning.TileIncome
		if t.HasStructure() {
			t.Balance += economy.Structure(t.Structure).BalanceBonus
		}
	}

	for i, n := range s.Nations {
		l := ledgers[i]
		n.Tiles = l.Tiles
		n.Income = l.Income
		n.Structures = l.Structures
		for _, k := range economy.UnitKinds {
			if l.Production[k] > 0 {
				n.Units[k] += economy.Accrue(&n.Progress, k, l.Production[k])
			}
		}
	}
}

// settle credits income and interest, charges upkeep, and refreshes the
// derived strength and alive flag.
func (e *Engine) settle(s *WorldState, ledgers []Ledger) {
	t := e.Tuning
	for i, n := range s.Nations {
		l := ledgers[i]
		n.Treasury += n.Income
		if l.Tiles > 0 {
			interest := min(n.Treasury*n.InterestRate, float64(l.Tiles)*t.InterestCapPerTile)
			n.Treasury += max(0, interest)
		}
		n.Treasury = economy.ApplyUpkeep(n.Treasury, n.Units)
		n.Strength = economy.MilitaryStrength(n.Units)

		wasAlive := n.Alive
		n.Alive = l.Tiles > 0
		if wasAlive && !n.Alive {
			for _, ally := range append([]NationID(nil), n.Allies...) {
				s.setAlliance(n.ID, ally, false)
			}
			n.TruceUntil = 0
			n.Memory = BotMemory{}
			s.emit(Event{
				Kind:        EventEliminated,
				Nation:      n.ID,
				Other:       NoWinner,
				Description: fmt.Sprintf("%s has fallen", n.Name),
			})
			e.Log.Info("nation eliminated", "tick", s.Tick, "nation", n.Name)
		}
	}
}
