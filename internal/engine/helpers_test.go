package engine

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/talgya/conquest/internal/entropy"
	"github.com/talgya/conquest/internal/world"
)

// quietEngine returns an engine with default tuning, the given source, and a
// discarded log.
func quietEngine(src entropy.Source) *Engine {
	e := New(DefaultTuning(), src)
	e.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	return e
}

// never is a source whose rolls never pass a Chance below 0.99.
func never() entropy.Source { return &entropy.Fixed{Values: []float64{0.99}} }

// always is a source whose rolls pass every positive Chance.
func always() entropy.Source { return &entropy.Fixed{Values: []float64{0}} }

// newTestState builds an all-plains, all-neutral active game with human
// (non-bot) nations holding 100 treasury each.
func newTestState(w, h, nations int) *WorldState {
	s := &WorldState{Grid: world.NewGrid(w, h), Phase: PhaseActive, Winner: NoWinner}
	for i := 0; i < nations; i++ {
		s.Nations = append(s.Nations, &Nation{
			ID:           NationID(i),
			Name:         fmt.Sprintf("N%d", i),
			Treasury:     100,
			InterestRate: 0.07,
		})
	}
	return s
}

func own(s *WorldState, x, y int, id NationID, balance float64) *world.Tile {
	t := s.Grid.At(x, y)
	t.Owner = id
	t.Balance = balance
	n := s.Nation(id)
	n.Tiles++
	n.Alive = true
	return t
}

func water(s *WorldState, x, y int) {
	t := s.Grid.At(x, y)
	t.Terrain = world.TerrainWater
	t.Owner = world.Unclaimable
}

func order(fx, fy, tx, ty int, amount float64, id NationID) Order {
	return Order{From: world.Point{X: fx, Y: fy}, To: world.Point{X: tx, Y: ty}, Amount: amount, Attacker: id}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
