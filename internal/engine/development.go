// Autonomous development: bots spend treasury on structures and units before
// orders resolve.
package engine

import (
	"fmt"
	"math"
	"slices"

	"github.com/talgya/conquest/internal/economy"
	"github.com/talgya/conquest/internal/entropy"
	"github.com/talgya/conquest/internal/world"
)

// BorderingNations returns the sorted ids of nations owning a tile adjacent
// to one of id's tiles.
func BorderingNations(s *WorldState, id NationID) []NationID {
	var out []NationID
	g := s.Grid
	for i := range g.Tiles {
		if g.Tiles[i].Owner != id {
			continue
		}
		for _, p := range g.Neighbors(g.Tiles[i].Pos) {
			o := g.Get(p).Owner
			if o.IsNation() && o != id && !slices.Contains(out, o) {
				out = append(out, o)
			}
		}
	}
	slices.Sort(out)
	return out
}

func (e *Engine) develop(s *WorldState) {
	d := e.Tuning.Development
	for _, n := range s.Nations {
		if !n.IsBot || !n.Alive {
			continue
		}
		if entropy.Chance(e.Rand, d.BuildChance+d.DifficultyChance*s.Difficulty) {
			e.buildFor(s, n)
		}
		if entropy.Chance(e.Rand, d.TrainChance+d.DifficultyChance*s.Difficulty) {
			e.trainFor(s, n)
		}
	}
}

// desiredStructures is the structure count a nation of this size should hold.
func (d DevelopmentTuning) desiredStructures(tiles int, coastal bool) economy.StructureTally {
	var want economy.StructureTally
	want[economy.City] = 1 + tiles/max(1, d.TilesPerCity)
	want[economy.Barracks] = tiles / max(1, d.TilesPerBarracks)
	want[economy.AirDefense] = tiles / max(1, d.TilesPerAirDefense)
	if coastal {
		want[economy.NavalYard] = tiles / max(1, d.TilesPerNavalYard)
	}
	if tiles >= d.MinTilesForSilo {
		want[economy.MissileSilo] = tiles / max(1, d.TilesPerMissileSilo)
	}
	return want
}

// sites holds a nation's buildable tiles grouped by placement preference.
type sites struct {
	any     []*world.Tile // Owned, no structure
	border  []*world.Tile // ... adjacent to a hostile nation
	coastal []*world.Tile // ... adjacent to water
}

func collectSites(s *WorldState, n *Nation) sites {
	var out sites
	g := s.Grid
	for i := range g.Tiles {
		t := &g.Tiles[i]
		if t.Owner != n.ID || t.HasStructure() {
			continue
		}
		out.any = append(out.any, t)
		hostile, wet := false, false
		for _, p := range g.Neighbors(t.Pos) {
			nb := g.Get(p)
			if nb.IsWater() {
				wet = true
			} else if nb.Owner.IsNation() && nb.Owner != n.ID && !n.AlliedWith(nb.Owner) {
				hostile = true
			}
		}
		if hostile {
			out.border = append(out.border, t)
		}
		if wet {
			out.coastal = append(out.coastal, t)
		}
	}
	return out
}

// richest returns the tile with the highest balance, first in grid order on ties.
func richest(tiles []*world.Tile) *world.Tile {
	var best *world.Tile
	for _, t := range tiles {
		if best == nil || t.Balance > best.Balance {
			best = t
		}
	}
	return best
}

func (x sites) placeFor(k economy.StructureKind) *world.Tile {
	switch k {
	case economy.NavalYard:
		return richest(x.coastal)
	case economy.Barracks, economy.AirDefense, economy.MissileSilo:
		if len(x.border) > 0 {
			return richest(x.border)
		}
		return richest(x.any)
	default:
		return richest(x.any)
	}
}

func (e *Engine) buildFor(s *WorldState, n *Nation) {
	d := e.Tuning.Development
	x := collectSites(s, n)
	if len(x.any) == 0 {
		return
	}
	want := d.desiredStructures(n.Tiles, len(x.coastal) > 0)

	kinds := slices.Clone(economy.StructureKinds[:])
	slices.SortStableFunc(kinds, func(a, b economy.StructureKind) int {
		return (want[b] - n.Structures[b]) - (want[a] - n.Structures[a])
	})

	for _, k := range kinds {
		if want[k]-n.Structures[k] <= 0 {
			return
		}
		def := economy.Structure(k)
		if n.Treasury < def.Cost+d.Reserve {
			continue
		}
		site := x.placeFor(k)
		if site == nil {
			continue
		}
		site.Structure = k
		n.Treasury -= def.Cost
		n.Structures[k]++
		s.emit(Event{
			Kind:        EventStructure,
			Nation:      n.ID,
			Other:       NoWinner,
			Pos:         site.Pos,
			Description: fmt.Sprintf("%s built a %s", n.Name, def.Name),
		})
		return
	}
}

// underPressure reports whether an unallied bordering nation's military
// strength approaches or exceeds n's own.
func (e *Engine) underPressure(s *WorldState, n *Nation) bool {
	ratio := e.Tuning.Development.PressureRatio
	for _, id := range BorderingNations(s, n.ID) {
		if n.AlliedWith(id) {
			continue
		}
		other := s.Nation(id)
		if other.Strength > 0 && other.Strength >= n.Strength*ratio {
			return true
		}
	}
	return false
}

func (d DevelopmentTuning) mixShare(k economy.UnitKind) float64 {
	switch k {
	case economy.Infantry:
		return d.UnitMix.Infantry
	case economy.Armor:
		return d.UnitMix.Armor
	case economy.AirDefenseUnit:
		return d.UnitMix.AirDefense
	case economy.Naval:
		return d.UnitMix.Naval
	case economy.Missile:
		return d.UnitMix.Missile
	default:
		return 0
	}
}

// nextUnit picks the eligible unit kind furthest below its desired share.
func (d DevelopmentTuning) nextUnit(n *Nation) (economy.UnitKind, bool) {
	total := float64(n.Units.Total() + 1)
	best, found, bestGap := economy.Infantry, false, math.Inf(-1)
	for _, k := range economy.UnitKinds {
		if k == economy.Naval && n.Structures[economy.NavalYard] == 0 {
			continue
		}
		if k == economy.Missile && n.Structures[economy.MissileSilo] == 0 {
			continue
		}
		gap := d.mixShare(k)*total - float64(n.Units[k])
		if gap > bestGap {
			best, found, bestGap = k, true, gap
		}
	}
	return best, found
}

func (e *Engine) trainFor(s *WorldState, n *Nation) {
	d := e.Tuning.Development
	target := max(1, n.Tiles/max(1, d.TilesPerUnit))
	batch := 1
	reserve := d.Reserve
	if e.underPressure(s, n) {
		target = int(math.Ceil(float64(target) * d.PressureMultiplier))
		batch = max(1, d.PressureUnits)
		reserve /= 2
	}

	for i := 0; i < batch && n.Units.Total() < target; i++ {
		k, ok := d.nextUnit(n)
		if !ok {
			return
		}
		def := economy.Unit(k)
		if n.Treasury < def.Cost+reserve {
			return
		}
		n.Treasury -= def.Cost
		n.Units[k]++
		s.emit(Event{
			Kind:        EventUnit,
			Nation:      n.ID,
			Other:       NoWinner,
			Description: fmt.Sprintf("%s trained a %s", n.Name, def.Name),
		})
	}
	n.Strength = economy.MilitaryStrength(n.Units)
}
