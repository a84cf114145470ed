package bot

import (
	"cmp"
	"math"
	"slices"

	"github.com/talgya/conquest/internal/economy"
	"github.com/talgya/conquest/internal/engine"
	"github.com/talgya/conquest/internal/world"
)

// candidate is one frontier tile with the owned tile that would attack it.
type candidate struct {
	from, to world.Point
	cost     float64 // Lower is more attractive
	sector   int
	hostile  bool
}

// frontier collects every legal destination adjacent to n's territory,
// paired with the richest adjacent source, and scores it.
func (p *Planner) frontier(s *engine.WorldState, n *engine.Nation) []candidate {
	g := s.Grid
	cx, cy, ok := centroid(g, n.ID)
	if !ok {
		return nil
	}

	index := make(map[world.Point]int)
	var out []candidate
	for i := range g.Tiles {
		src := &g.Tiles[i]
		if src.Owner != n.ID {
			continue
		}
		for _, q := range g.Neighbors(src.Pos) {
			dst := g.Get(q)
			if !p.eligible(s, n, dst) {
				continue
			}
			if j, seen := index[q]; seen {
				if src.Balance > g.Get(out[j].from).Balance {
					out[j].from = src.Pos
				}
				continue
			}
			index[q] = len(out)
			out = append(out, candidate{
				from:    src.Pos,
				to:      q,
				sector:  sectorOf(q, cx, cy, p.Tuning.Sectors),
				hostile: dst.Owner.IsNation(),
			})
		}
	}

	for i := range out {
		c := &out[i]
		dist := math.Hypot(float64(c.to.X)-cx, float64(c.to.Y)-cy)
		c.cost = p.score(s, n, g.Get(c.to), g.Get(c.from), dist)
	}
	return out
}

func (p *Planner) eligible(s *engine.WorldState, n *engine.Nation, dst *world.Tile) bool {
	if dst.Owner == n.ID || dst.IsWater() {
		return false
	}
	if dst.Owner.IsNation() {
		if s.Phase == engine.PhaseFreeExpansion || n.AlliedWith(dst.Owner) || n.TrucedWith(dst.Owner) {
			return false
		}
	}
	return true
}

// score estimates what taking dst is worth paying for, from src.
func (p *Planner) score(s *engine.WorldState, n *engine.Nation, dst, src *world.Tile, dist float64) float64 {
	t := p.Tuning
	var cost float64
	if owner := s.Nation(dst.Owner); owner != nil {
		cost = (dst.Balance + owner.Treasury*t.TreasuryInfluence) *
			t.Terrain.For(dst.Terrain) *
			(1 + economy.Structure(dst.Structure).DefenseBonus) *
			(1 + economy.DefenseMultiplier(owner.Units)*t.DefenseWeight)
		if owner.Treasury/float64(max(1, owner.Tiles)) < t.OverextendedPerTile {
			cost *= t.OverextendedFactor
		}
		if owner.Strength > n.Strength {
			cost *= t.StrongerFactor
		}
	} else {
		cost = dst.Balance * t.NeutralWeight
	}

	cost *= 1 + dist*t.DistanceWeight
	cost /= 1 + src.Balance*t.SourceWeight
	if n.Memory.HasTarget && n.Memory.Target == dst.Pos {
		cost *= t.PreferredDiscount
	}
	return cost
}

// selectTargets takes the cheapest candidate of each sector first, then fills
// any remaining slots with the cheapest of the rest.
func selectTargets(cands []candidate, limit, sectors int) []candidate {
	sorted := slices.Clone(cands)
	slices.SortStableFunc(sorted, func(a, b candidate) int { return cmp.Compare(a.cost, b.cost) })

	picked := make([]bool, len(sorted))
	used := make([]bool, max(1, sectors))
	var out []candidate
	for i, c := range sorted {
		if len(out) == limit {
			return out
		}
		if c.sector < len(used) && !used[c.sector] {
			used[c.sector] = true
			picked[i] = true
			out = append(out, c)
		}
	}
	for i, c := range sorted {
		if len(out) == limit {
			break
		}
		if !picked[i] {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b candidate) int { return cmp.Compare(a.cost, b.cost) })
	return out
}

// centroid is the mean position of id's tiles.
func centroid(g *world.Grid, id engine.NationID) (x, y float64, ok bool) {
	n := 0
	for i := range g.Tiles {
		if g.Tiles[i].Owner == id {
			x += float64(g.Tiles[i].Pos.X)
			y += float64(g.Tiles[i].Pos.Y)
			n++
		}
	}
	if n == 0 {
		return 0, 0, false
	}
	return x / float64(n), y / float64(n), true
}

// sectorOf buckets the direction from (cx, cy) to p into one of n equal arcs.
func sectorOf(p world.Point, cx, cy float64, n int) int {
	if n <= 1 {
		return 0
	}
	angle := math.Atan2(float64(p.Y)-cy, float64(p.X)-cx) + math.Pi
	s := int(angle / (2 * math.Pi) * float64(n))
	return min(s, n-1)
}
