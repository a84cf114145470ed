// Order resolution: neutral claims and hostile assaults.
package engine

import (
	"fmt"

	"github.com/talgya/conquest/internal/economy"
	"github.com/talgya/conquest/internal/entropy"
	"github.com/talgya/conquest/internal/world"
)

// resolve applies one order to s. Illegal orders are dropped and reported as
// unresolved; they never raise errors.
func (e *Engine) resolve(s *WorldState, o Order) bool {
	if o.Amount <= 0 || !CanAttackAs(s, o.Attacker, o.From, o.To) {
		return false
	}
	c := e.Tuning.Combat
	attacker := s.Nation(o.Attacker)
	src := s.Grid.Get(o.From)
	dst := s.Grid.Get(o.To)

	if !o.Prepaid {
		src.Balance -= min(src.Balance, o.Amount*c.SourceDrainFraction)
	}

	strength := o.Amount * economy.AttackMultiplier(attacker.Units)

	if dst.Owner == world.Neutral {
		e.claimNeutral(attacker, dst, strength)
		return true
	}

	defender := s.Nation(dst.Owner)
	if attacker.AlliedWith(defender.ID) {
		s.setAlliance(attacker.ID, defender.ID, false)
		s.emit(Event{
			Kind:        EventBetrayal,
			Nation:      attacker.ID,
			Other:       defender.ID,
			Pos:         dst.Pos,
			Description: fmt.Sprintf("%s broke its alliance with %s", attacker.Name, defender.Name),
		})
		e.Log.Info("alliance broken by attack", "tick", s.Tick, "attacker", attacker.Name, "defender", defender.Name)
	}
	e.assault(s, attacker, defender, dst, strength)
	return true
}

func (e *Engine) claimNeutral(attacker *Nation, dst *world.Tile, strength float64) {
	c := e.Tuning.Combat
	defense := dst.Balance * c.NeutralDefense
	if strength <= defense {
		dst.Balance = max(0, dst.Balance-strength)
		return
	}
	dst.Owner = attacker.ID
	dst.Balance = max(c.ClaimFloor, (strength-defense)*c.NeutralSurplusScale)
	if !dst.HasStructure() && entropy.Chance(e.Rand, c.StarterStructureChance) {
		dst.Structure = economy.City
	}
}

// TileDefense is the strength an attacker must exceed to take an owned tile.
func (e *Engine) TileDefense(s *WorldState, t *world.Tile) float64 {
	owner := s.Nation(t.Owner)
	if owner == nil {
		return t.Balance * e.Tuning.Combat.NeutralDefense
	}
	return t.Balance *
		e.Tuning.Combat.Terrain.For(t.Terrain) *
		(1 + economy.Structure(t.Structure).DefenseBonus) *
		economy.DefenseMultiplier(owner.Units)
}

func (e *Engine) assault(s *WorldState, attacker, defender *Nation, dst *world.Tile, strength float64) {
	c := e.Tuning.Combat
	defense := e.TileDefense(s, dst)

	if strength <= defense {
		dst.Balance = max(0, dst.Balance-strength/c.Terrain.For(dst.Terrain))
		attrition(&attacker.Units, c.AttackerAttrition)
		return
	}

	dst.Owner = attacker.ID
	dst.Balance = max(c.ClaimFloor, (strength-defense)*c.HostileSurplusScale)
	if dst.HasStructure() && entropy.Chance(e.Rand, c.StructureDestroyChance) {
		s.emit(Event{
			Kind:        EventRazed,
			Nation:      attacker.ID,
			Other:       defender.ID,
			Pos:         dst.Pos,
			Description: fmt.Sprintf("%s razed a %s", attacker.Name, dst.Structure),
		})
		dst.Structure = economy.NoStructure
	}
	attrition(&defender.Units, c.DefenderAttrition)

	s.emit(Event{
		Kind:        EventCapture,
		Nation:      attacker.ID,
		Other:       defender.ID,
		Pos:         dst.Pos,
		Description: fmt.Sprintf("%s took (%d,%d) from %s", attacker.Name, dst.Pos.X, dst.Pos.Y, defender.Name),
	})
}

// attrition removes the floored fraction rate of every unit kind.
func attrition(units *economy.UnitTally, rate float64) {
	for _, k := range economy.UnitKinds {
		lost := int(float64(units[k]) * rate)
		units[k] -= lost
	}
}
