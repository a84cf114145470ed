// Package bot plans attack orders for autonomous nations.
// Each pass keeps truce bookkeeping, discovers the frontier, scores it,
// spreads targets across sectors, and splits a treasury budget over them.
// Bot memory lives on the nation, so planning maps a state to a new state
// plus an order batch and keeps no package-level state.
package bot

import (
	"log/slog"
	"math"

	"github.com/talgya/conquest/internal/engine"
	"github.com/talgya/conquest/internal/entropy"
)

// Planner generates orders for every bot nation.
type Planner struct {
	Tuning engine.BotTuning
	Rand   entropy.Source
	Log    *slog.Logger

	// Autopilot plans for the human nation as if it were a bot.
	Autopilot bool
}

// New creates a planner. A nil source falls back to crypto randomness.
func New(t engine.BotTuning, src entropy.Source) *Planner {
	if src == nil {
		src = entropy.Crypto{}
	}
	return &Planner{Tuning: t, Rand: src, Log: slog.Default()}
}

// GenerateOrders plans one tick for every living bot. The returned state
// carries the updated bot memory; the grid is shared with s, which is left
// untouched. Orders are grouped by nation in nation order.
func (p *Planner) GenerateOrders(s *engine.WorldState) (*engine.WorldState, []engine.Order) {
	next := s.WithNations()
	if next.Phase == engine.PhaseEnded {
		return next, nil
	}

	var orders []engine.Order
	for _, n := range next.Nations {
		if !n.Alive || !(n.IsBot || p.Autopilot && n.ID == engine.HumanID) {
			continue
		}
		orders = append(orders, p.plan(next, n)...)
	}
	return next, orders
}

func (p *Planner) plan(s *engine.WorldState, n *engine.Nation) []engine.Order {
	t := p.Tuning
	if n.Treasury < t.MinTreasury {
		return nil
	}

	p.keepTruces(s, n)

	if !entropy.Chance(p.Rand, t.AttackChance+t.AttackDifficultyChance*s.Difficulty) {
		return nil
	}
	if s.Tick-n.Memory.LastAttackTick < t.CooldownTicks {
		return nil
	}

	mem := &n.Memory
	if mem.HasTarget {
		if tile := s.Grid.Get(mem.Target); tile == nil || tile.Owner == n.ID || n.AlliedWith(tile.Owner) {
			mem.HasTarget = false
		}
	}

	front := p.frontier(s, n)
	if len(front) == 0 {
		return nil
	}
	maxTargets := min(max(1, 1+n.Tiles/max(1, t.TilesPerTarget)), max(1, t.MaxTargets))
	targets := selectTargets(front, maxTargets, t.Sectors)

	budget := math.Floor(n.Treasury * p.spendShare(s))
	var orders []engine.Order
	for _, c := range targets {
		frac := t.NeutralSpend
		if c.hostile {
			frac = t.HostileSpend
		}
		amount := math.Floor(budget * frac)
		if amount < t.MinOrder {
			break
		}
		budget -= amount
		orders = append(orders, engine.Order{From: c.from, To: c.to, Amount: amount, Attacker: n.ID})
		if c.hostile && !mem.HasTarget {
			mem.Target, mem.HasTarget = c.to, true
		}
	}

	if len(orders) > 0 {
		mem.LastAttackTick = s.Tick
	}
	p.Log.Debug("bot planned",
		"tick", s.Tick,
		"nation", n.Name,
		"frontier", len(front),
		"orders", len(orders),
	)
	return orders
}

// spendShare is the fraction of treasury committed this tick.
func (p *Planner) spendShare(s *engine.WorldState) float64 {
	t := p.Tuning
	share := t.BudgetBase + t.BudgetDifficulty*s.Difficulty
	if t.BurstEvery > 0 && s.Tick%t.BurstEvery == 0 {
		share += t.BudgetBurst
	}
	return min(t.BudgetCap, share)
}

// keepTruces expires a finished truce and may open a new one with a random
// bordering nation.
func (p *Planner) keepTruces(s *engine.WorldState, n *engine.Nation) {
	t := p.Tuning
	if n.TruceUntil > 0 && s.Tick >= n.TruceUntil {
		n.TruceUntil = 0
		n.Memory.Truces = nil
	}
	if n.TruceUntil > 0 || !entropy.Chance(p.Rand, t.TruceChance) {
		return
	}

	var open []engine.NationID
	for _, id := range engine.BorderingNations(s, n.ID) {
		if !n.TrucedWith(id) {
			open = append(open, id)
		}
	}
	if len(open) == 0 {
		return
	}
	other := open[p.Rand.IntN(len(open))]
	extra := 0
	if t.TruceExtraTicks > 0 {
		extra = p.Rand.IntN(t.TruceExtraTicks)
	}
	n.TruceUntil = s.Tick + t.TruceMinTicks + extra
	n.Memory.Truces = append(n.Memory.Truces, other)
	p.Log.Debug("truce declared", "tick", s.Tick, "nation", n.Name, "with", other, "until", n.TruceUntil)
}
