package engine

import (
	"reflect"
	"testing"

	"github.com/talgya/conquest/internal/economy"
	"github.com/talgya/conquest/internal/world"
)

func TestNeutralClaim(t *testing.T) {
	e := quietEngine(never())
	s := newTestState(3, 1, 2)
	own(s, 0, 0, 0, 50)
	own(s, 2, 0, 1, 5)
	s.Grid.At(1, 0).Balance = 10

	next := e.AdvanceTick(s, []Order{order(0, 0, 1, 0, 20, 0)})

	dst := next.Grid.At(1, 0)
	if dst.Owner != 0 {
		t.Fatalf("neutral tile owner = %d, want 0", dst.Owner)
	}
	if dst.Balance <= 0 || dst.Balance >= 20 {
		t.Fatalf("residual balance = %v, want in (0, 20)", dst.Balance)
	}
	// (20 - 10*0.8) * 0.5 = 6, plus one tick of income.
	if !approx(dst.Balance, 7) {
		t.Fatalf("residual balance = %v, want 7", dst.Balance)
	}
	// Source drained by 20% of the amount before income.
	if got := next.Grid.At(0, 0).Balance; !approx(got, 47) {
		t.Fatalf("source balance = %v, want 47", got)
	}
	if next.Nation(0).Tiles != 2 {
		t.Fatalf("tiles = %d, want 2", next.Nation(0).Tiles)
	}
}

func TestPrepaidOrderSkipsDrain(t *testing.T) {
	e := quietEngine(never())
	s := newTestState(3, 1, 2)
	own(s, 0, 0, 0, 50)
	own(s, 2, 0, 1, 5)

	o := order(0, 0, 1, 0, 20, 0)
	o.Prepaid = true
	next := e.AdvanceTick(s, []Order{o})
	if got := next.Grid.At(0, 0).Balance; !approx(got, 51) {
		t.Fatalf("prepaid source balance = %v, want 51", got)
	}
}

func TestIdleTickTwoNations(t *testing.T) {
	e := quietEngine(never())
	s := newTestState(2, 1, 2)
	own(s, 0, 0, 0, 0)
	own(s, 1, 0, 1, 0)

	next := e.AdvanceTick(s, nil)

	for _, id := range []NationID{0, 1} {
		n := next.Nation(id)
		if !n.Alive {
			t.Fatalf("nation %d died", id)
		}
		if n.Income != 1 {
			t.Fatalf("nation %d income = %v, want 1", id, n.Income)
		}
		// 100 + 1 income + min(101*0.07, 1*3) interest.
		if !approx(n.Treasury, 104) {
			t.Fatalf("nation %d treasury = %v, want 104", id, n.Treasury)
		}
	}
	if next.Grid.At(0, 0).Balance != 1 || next.Grid.At(1, 0).Balance != 1 {
		t.Fatal("each owned tile gains one balance per tick")
	}
	if next.Phase == PhaseEnded {
		t.Fatal("two living nations must keep playing")
	}
	if next.Tick != 1 {
		t.Fatalf("tick = %d", next.Tick)
	}
}

func TestLastNationStanding(t *testing.T) {
	e := quietEngine(never())
	s := newTestState(2, 1, 2)
	own(s, 0, 0, 0, 100)
	own(s, 1, 0, 1, 1)

	next := e.AdvanceTick(s, []Order{order(0, 0, 1, 0, 50, 0)})

	if next.Phase != PhaseEnded || next.Winner != 0 {
		t.Fatalf("phase=%s winner=%d, want ended/0", next.Phase, next.Winner)
	}
	if next.Nation(1).Alive {
		t.Fatal("nation 1 holds no land and must be dead")
	}
	kinds := map[string]bool{}
	for _, ev := range next.Events {
		kinds[ev.Kind] = true
	}
	for _, k := range []string{EventCapture, EventEliminated, EventVictory} {
		if !kinds[k] {
			t.Fatalf("missing %s event in %+v", k, next.Events)
		}
	}
}

func TestDominanceWin(t *testing.T) {
	e := quietEngine(never())
	s := newTestState(5, 1, 2)
	own(s, 0, 0, 0, 10)
	own(s, 1, 0, 0, 10)
	own(s, 2, 0, 0, 10)
	own(s, 4, 0, 1, 10)

	next := e.AdvanceTick(s, []Order{order(2, 0, 3, 0, 10, 0)})

	if !next.Nation(1).Alive {
		t.Fatal("nation 1 still holds land")
	}
	if next.Phase != PhaseEnded || next.Winner != 0 {
		t.Fatalf("phase=%s winner=%d, want dominance win for 0", next.Phase, next.Winner)
	}
}

func TestDominanceUsesLandOnly(t *testing.T) {
	e := quietEngine(never())
	s := newTestState(6, 1, 2)
	water(s, 3, 0)
	water(s, 4, 0)
	own(s, 0, 0, 0, 10)
	own(s, 1, 0, 0, 10)
	own(s, 2, 0, 0, 10)
	own(s, 5, 0, 1, 10)

	// 3 of 4 land tiles = 0.75.
	next := e.AdvanceTick(s, nil)
	if next.Phase != PhaseEnded || next.Winner != 0 {
		t.Fatalf("phase=%s winner=%d", next.Phase, next.Winner)
	}
}

func TestTickCeilingPicksFirstLeader(t *testing.T) {
	e := quietEngine(never())
	e.Tuning.MaxTicks = 1
	s := newTestState(4, 1, 3)
	own(s, 0, 0, 0, 1)
	own(s, 1, 0, 1, 1)
	own(s, 2, 0, 1, 1)
	own(s, 3, 0, 2, 1)

	next := e.AdvanceTick(s, nil)
	if next.Phase != PhaseEnded || next.Winner != 1 {
		t.Fatalf("phase=%s winner=%d, want 1", next.Phase, next.Winner)
	}

	// Tie: first in nation order wins.
	s = newTestState(4, 1, 2)
	own(s, 0, 0, 0, 1)
	own(s, 1, 0, 0, 1)
	own(s, 2, 0, 1, 1)
	own(s, 3, 0, 1, 1)
	next = e.AdvanceTick(s, nil)
	if next.Winner != 0 {
		t.Fatalf("tie winner = %d, want 0", next.Winner)
	}
}

func TestPhaseTransitions(t *testing.T) {
	e := quietEngine(never())
	s := newTestState(3, 1, 2)
	s.Phase = PhaseFreeExpansion
	own(s, 0, 0, 0, 1)
	own(s, 2, 0, 1, 1)

	prev := s.Phase
	for i := 0; i < e.Tuning.FreeExpansionTicks+2; i++ {
		s = e.AdvanceTick(s, nil)
		if s.Phase < prev {
			t.Fatalf("phase went backwards at tick %d", s.Tick)
		}
		prev = s.Phase
		if s.Tick < e.Tuning.FreeExpansionTicks && s.Phase != PhaseFreeExpansion {
			t.Fatalf("tick %d: phase %s", s.Tick, s.Phase)
		}
	}
	if s.Phase != PhaseActive {
		t.Fatalf("phase = %s after free expansion window", s.Phase)
	}
}

func TestEndedStateIsTerminal(t *testing.T) {
	e := quietEngine(never())
	s := newTestState(2, 1, 2)
	own(s, 0, 0, 0, 100)
	own(s, 1, 0, 1, 1)
	s.Phase = PhaseEnded
	s.Winner = 0

	next := e.AdvanceTick(s, []Order{order(0, 0, 1, 0, 50, 0)})
	if next.Tick != s.Tick || next.Grid.At(1, 0).Owner != 1 {
		t.Fatal("an ended game must not change")
	}
	if CanAttack(s, 0, 0, 1, 0) {
		t.Fatal("no attacks after the game ends")
	}
}

func TestAdvanceTickLeavesInputUntouched(t *testing.T) {
	e := quietEngine(never())
	s := newTestState(3, 2, 2)
	own(s, 0, 0, 0, 30).Structure = economy.Barracks
	own(s, 2, 1, 1, 30)
	s.setAlliance(0, 1, true)
	before := s.Clone()

	_ = e.AdvanceTick(s, []Order{order(0, 0, 1, 0, 20, 0), order(2, 1, 2, 0, 10, 1)})

	if !reflect.DeepEqual(before, s) {
		t.Fatal("AdvanceTick mutated its input state")
	}
}

func TestSurveyIsPure(t *testing.T) {
	e := quietEngine(never())
	s := newTestState(3, 3, 2)
	own(s, 0, 0, 0, 3).Structure = economy.City
	own(s, 1, 0, 0, 3)
	own(s, 2, 2, 1, 3).Structure = economy.Barracks
	water(s, 1, 1)

	a := e.Survey(s.Grid, len(s.Nations))
	b := e.Survey(s.Grid, len(s.Nations))
	if !reflect.DeepEqual(a, b) {
		t.Fatal("surveying an unchanged grid must give identical ledgers")
	}
	if a[0].Tiles != 2 || a[0].Income != 2+5 || a[0].Structures[economy.City] != 1 {
		t.Fatalf("nation 0 ledger = %+v", a[0])
	}
	if a[1].Production[economy.Infantry] != 0.4 {
		t.Fatalf("nation 1 production = %+v", a[1].Production)
	}
}

func TestStructuresProduceUnits(t *testing.T) {
	e := quietEngine(never())
	s := newTestState(2, 1, 2)
	own(s, 0, 0, 0, 10).Structure = economy.Barracks
	own(s, 1, 0, 1, 10)

	for i := 0; i < 3; i++ {
		s = e.AdvanceTick(s, nil)
	}
	n := s.Nation(0)
	if n.Units[economy.Infantry] != 1 {
		t.Fatalf("infantry = %d after 3 barracks ticks", n.Units[economy.Infantry])
	}
	if !approx(n.Progress[economy.Infantry], 0.2) {
		t.Fatalf("carried progress = %v", n.Progress[economy.Infantry])
	}
	if n.Strength == 0 {
		t.Fatal("strength must reflect produced units")
	}
	// Barracks add 1 income and 1 tile balance per tick.
	if n.Income != 2 {
		t.Fatalf("income = %v", n.Income)
	}
	if got := s.Grid.At(0, 0).Balance; !approx(got, 16) {
		t.Fatalf("barracks tile balance = %v", got)
	}
}

func TestInterestIsCapped(t *testing.T) {
	e := quietEngine(never())
	s := newTestState(2, 1, 2)
	own(s, 0, 0, 0, 0)
	own(s, 1, 0, 1, 0)
	s.Nation(0).Treasury = 1000

	next := e.AdvanceTick(s, nil)
	// 1000 + 1 income + 3 capped interest.
	if got := next.Nation(0).Treasury; !approx(got, 1004) {
		t.Fatalf("treasury = %v, want 1004", got)
	}
}

func TestUpkeepFloorsAtZero(t *testing.T) {
	e := quietEngine(never())
	s := newTestState(2, 1, 2)
	own(s, 0, 0, 0, 0)
	own(s, 1, 0, 1, 0)
	s.Nation(0).Treasury = 0
	s.Nation(0).Units[economy.Missile] = 10

	next := e.AdvanceTick(s, nil)
	if got := next.Nation(0).Treasury; got != 0 {
		t.Fatalf("treasury = %v, want 0", got)
	}
}

func TestWaterStaysUnclaimable(t *testing.T) {
	e := quietEngine(never())
	s := newTestState(3, 1, 2)
	own(s, 0, 0, 0, 100)
	water(s, 1, 0)
	own(s, 2, 0, 1, 1)

	next := e.AdvanceTick(s, []Order{order(0, 0, 1, 0, 50, 0)})
	w := next.Grid.At(1, 0)
	if w.Owner != world.Unclaimable || w.Balance != 0 || w.HasStructure() {
		t.Fatalf("water tile changed: %+v", w)
	}
}

func TestInitialize(t *testing.T) {
	e := quietEngine(always())
	s := e.Initialize(4, 0.5, world.MapContinent, 60, 40)

	if len(s.Nations) != 5 {
		t.Fatalf("nations = %d", len(s.Nations))
	}
	if s.Phase != PhaseFreeExpansion || s.Winner != NoWinner || s.Tick != 0 {
		t.Fatalf("bad initial phase %s winner %d", s.Phase, s.Winner)
	}
	if s.Nations[0].IsBot || !s.Nations[1].IsBot {
		t.Fatal("nation 0 is human, the rest are bots")
	}
	if !approx(s.Nations[1].InterestRate, 0.08) {
		t.Fatalf("bot interest = %v", s.Nations[1].InterestRate)
	}
	seen := map[world.Point]bool{}
	for _, n := range s.Nations {
		if !n.Alive || n.Tiles != 1 || n.Treasury != 100 {
			t.Fatalf("nation %d badly seeded: %+v", n.ID, n)
		}
		var start *world.Tile
		for i := range s.Grid.Tiles {
			if s.Grid.Tiles[i].Owner == n.ID {
				start = &s.Grid.Tiles[i]
			}
		}
		if start == nil || start.IsWater() || start.Structure != economy.City || start.Balance != 50 {
			t.Fatalf("nation %d start tile: %+v", n.ID, start)
		}
		if seen[start.Pos] {
			t.Fatalf("two nations share %+v", start.Pos)
		}
		seen[start.Pos] = true
	}
}

func TestSeedWithTooLittleLand(t *testing.T) {
	e := quietEngine(never())
	g := world.NewGrid(2, 1)
	s := e.Seed(g, 3, 0, world.MapContinent)
	alive := len(s.AliveNations())
	if alive != 2 {
		t.Fatalf("alive = %d, want 2", alive)
	}
	if s.Nation(3).Alive {
		t.Fatal("a nation without land cannot be alive")
	}
}
