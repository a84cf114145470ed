// Package engine advances the conquest world one tick at a time: autonomous
// development, order resolution, territory accounting, settlement, and
// victory evaluation.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/conquest/internal/economy"
	"github.com/talgya/conquest/internal/entropy"
	"github.com/talgya/conquest/internal/world"
)

// Engine owns the tuning and the random source used by every tick.
// It holds no world state; each call maps one WorldState to the next.
type Engine struct {
	Tuning Tuning
	Rand   entropy.Source
	Log    *slog.Logger
}

// New creates an engine. A nil source falls back to crypto randomness.
func New(t Tuning, src entropy.Source) *Engine {
	if src == nil {
		src = entropy.Crypto{}
	}
	return &Engine{Tuning: t, Rand: src, Log: slog.Default()}
}

var palette = [...]string{
	"#00d9ff", // human - cyan
	"#ff3366",
	"#ff8833",
	"#ffcc33",
	"#33ff88",
	"#8833ff",
	"#ff33cc",
	"#33ccff",
	"#66ff33",
}

// Initialize generates a map and seeds one human and botCount bot nations.
// Dimensions must be positive.
func (e *Engine) Initialize(botCount int, difficulty float64, mapType world.MapType, width, height int) *WorldState {
	seed := int64(e.Rand.IntN(1<<31-1)) + 1
	return e.Seed(world.GenerateMap(mapType, seed, width, height), botCount, difficulty, mapType)
}

// Seed places nations on an existing grid. Starting tiles are spread over the
// land by fixed-stride sampling; each receives a city and starting balance.
// Nations that find no land start dead.
func (e *Engine) Seed(grid *world.Grid, botCount int, difficulty float64, mapType world.MapType) *WorldState {
	t := e.Tuning
	difficulty = min(1, max(0, difficulty))

	s := &WorldState{
		Grid:       grid.Clone(),
		Tick:       0,
		Phase:      PhaseFreeExpansion,
		Winner:     NoWinner,
		MapType:    mapType,
		Difficulty: difficulty,
	}

	total := botCount + 1
	for i := 0; i < total; i++ {
		n := &Nation{
			ID:           NationID(i),
			Name:         "You",
			Color:        palette[i%len(palette)],
			Treasury:     t.StartingTreasury,
			InterestRate: t.BaseInterestRate,
		}
		if i > 0 {
			n.Name = fmt.Sprintf("Bot %d", i)
			n.IsBot = true
			n.InterestRate = t.BaseInterestRate + difficulty*t.BotInterestBonus
		}
		s.Nations = append(s.Nations, n)
	}

	land := s.Grid.LandTiles()
	spacing := max(1, len(land)/total)
	for i, n := range s.Nations {
		idx := i * spacing
		if idx >= len(land) {
			break
		}
		tile := s.Grid.Get(land[idx])
		tile.Owner = n.ID
		tile.Balance = t.StartingTileBalance
		tile.Structure = economy.City
		n.Tiles = 1
		n.Structures[economy.City] = 1
		n.Alive = true
	}

	e.Log.Info("world seeded",
		"nations", total,
		"land", len(land),
		"map", mapType.String(),
		"difficulty", difficulty,
	)
	return s
}
