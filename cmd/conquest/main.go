// Command conquest runs a headless territory-conquest match between one
// human slot and a set of bots, records it, and prints the final standings.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/conquest/internal/bot"
	"github.com/talgya/conquest/internal/engine"
	"github.com/talgya/conquest/internal/entropy"
	"github.com/talgya/conquest/internal/match"
	"github.com/talgya/conquest/internal/persistence"
	"github.com/talgya/conquest/internal/world"
)

func main() {
	bots := flag.Int("bots", 5, "number of bot nations")
	difficulty := flag.Float64("difficulty", 0.5, "bot difficulty in [0,1]")
	mapName := flag.String("map", "continent", "map type: continent or archipelago")
	width := flag.Int("width", 120, "map width in tiles")
	height := flag.Int("height", 80, "map height in tiles")
	seed := flag.Int64("seed", 0, "random seed; 0 draws from crypto/rand")
	tuningPath := flag.String("tuning", "", "optional tuning YAML overlaid on the defaults")
	interval := flag.Duration("interval", 0, "tick interval; 0 runs as fast as possible")
	speed := flag.Float64("speed", 1.0, "tick speed multiplier")
	autopilot := flag.Bool("autopilot", true, "let the bot planner play the human nation")
	record := flag.Bool("record", true, "write the match to the ledger and event log")
	verbose := flag.Bool("v", false, "log every tick")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if *bots < 0 || *width <= 0 || *height <= 0 {
		slog.Error("bots must be non-negative and dimensions positive", "bots", *bots, "width", *width, "height", *height)
		os.Exit(2)
	}
	mapType, err := world.ParseMapType(*mapName)
	if err != nil {
		slog.Error("bad map type", "error", err)
		os.Exit(2)
	}

	// ── Tuning ────────────────────────────────────────────────────────
	tuning := engine.DefaultTuning()
	if *tuningPath != "" {
		tuning, err = engine.LoadTuning(*tuningPath)
		if err != nil {
			slog.Error("failed to load tuning", "error", err)
			os.Exit(1)
		}
		slog.Info("tuning loaded", "path", *tuningPath)
	}

	// ── World ─────────────────────────────────────────────────────────
	eng := engine.New(tuning, entropy.New(*seed))
	planner := bot.New(tuning.Bot, entropy.New(plannerSeed(*seed)))
	planner.Autopilot = *autopilot

	state := eng.Initialize(*bots, *difficulty, mapType, *width, *height)
	counts := world.TerrainCounts(state.Grid)
	for _, t := range []world.Terrain{world.TerrainPlains, world.TerrainDesert, world.TerrainMountain, world.TerrainWater} {
		slog.Info("terrain", "type", world.TerrainName(t), "count", counts[t])
	}

	runner := match.NewRunner(eng, planner)
	runner.Interval = *interval
	runner.Speed = *speed

	// ── Recording ─────────────────────────────────────────────────────
	if *record {
		closeRec, err := attachRecorder(runner, state, envOrDefault("CONQUEST_DATA_DIR", "data"))
		if err != nil {
			slog.Error("failed to open match records", "error", err)
			os.Exit(1)
		}
		defer closeRec()
	}

	// ── Start ─────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\n%d nations on %s land tiles of a %dx%d %s. (Ctrl+C to stop)\n",
		len(state.Nations), humanize.Comma(int64(state.Grid.LandCount())), *width, *height, mapType)

	started := time.Now()
	final, err := runner.Run(ctx, state)
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("match aborted", "error", err)
	}

	printStandings(final, time.Since(started))
}

// attachRecorder wires the ledger and event log into the runner's callbacks.
// The returned func closes both.
func attachRecorder(r *match.Runner, s *engine.WorldState, dataDir string) (func(), error) {
	ledger, err := persistence.Open(filepath.Join(dataDir, "conquest.db"))
	if err != nil {
		return nil, err
	}
	id, err := ledger.BeginMatch(s)
	if err != nil {
		ledger.Close()
		return nil, err
	}
	logPath := filepath.Join(dataDir, "logs", id+".jsonl.zst")
	events, err := persistence.CreateEventLog(logPath)
	if err != nil {
		ledger.Close()
		return nil, err
	}
	slog.Info("recording match", "id", id, "ledger", filepath.Join(dataDir, "conquest.db"), "log", logPath)

	r.OnTick = func(s *engine.WorldState) error {
		if err := events.WriteTick(s); err != nil {
			return fmt.Errorf("event log: %w", err)
		}
		return ledger.RecordEvents(id, s.Events)
	}
	r.OnStandings = func(s *engine.WorldState) error {
		return ledger.RecordStandings(id, s)
	}
	r.OnEnd = func(s *engine.WorldState) error {
		return ledger.FinishMatch(id, s)
	}

	return func() {
		if err := events.Close(); err != nil {
			slog.Error("close event log", "error", err)
		}
		if err := ledger.Close(); err != nil {
			slog.Error("close ledger", "error", err)
		}
	}, nil
}

func printStandings(s *engine.WorldState, elapsed time.Duration) {
	land := max(1, s.Grid.LandCount())
	fmt.Printf("\nTick %d, phase %s, %s elapsed\n", s.Tick, s.Phase, elapsed.Round(time.Millisecond))
	if w := s.Nation(s.Winner); w != nil {
		fmt.Printf("Winner: %s\n", w.Name)
	}
	for i, st := range engine.Standings(s) {
		status := ""
		if !st.Alive {
			status = " (fallen)"
		}
		fmt.Printf("%5s  %-8s %7s tiles (%4.1f%%)  treasury %10s  strength %8s%s\n",
			humanize.Ordinal(i+1),
			st.Name,
			humanize.Comma(int64(st.Tiles)),
			100*float64(st.Tiles)/float64(land),
			humanize.CommafWithDigits(st.Treasury, 0),
			humanize.CommafWithDigits(st.Strength, 0),
			status,
		)
	}
}

// plannerSeed keeps the planner's stream distinct from the engine's.
func plannerSeed(seed int64) int64 {
	if seed == 0 {
		return 0
	}
	return seed + 1
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
