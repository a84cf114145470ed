// Package match drives a game from the outside: it plans bot orders, merges
// them with human orders, and advances the world on a fixed cadence.
package match

import (
	"context"
	"log/slog"
	"time"

	"github.com/talgya/conquest/internal/bot"
	"github.com/talgya/conquest/internal/engine"
)

// pausePoll is how often a paused runner checks whether it may resume.
const pausePoll = 100 * time.Millisecond

// Runner advances a match until it ends or its context is cancelled.
type Runner struct {
	Engine  *engine.Engine
	Planner *bot.Planner

	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Base tick interval; 0 runs as fast as possible

	// Human supplies the human nation's orders for the coming tick.
	Human func(s *engine.WorldState) []engine.Order

	// Callbacks, populated during setup. A callback error stops the run.
	OnTick      func(s *engine.WorldState) error // Every tick
	OnStandings func(s *engine.WorldState) error // Every StandingsEvery ticks and at the end
	OnEnd       func(s *engine.WorldState) error // Once, when the game ends

	StandingsEvery int

	Log *slog.Logger
}

// NewRunner creates a headless runner.
func NewRunner(e *engine.Engine, p *bot.Planner) *Runner {
	return &Runner{
		Engine:         e,
		Planner:        p,
		Speed:          1.0,
		StandingsEvery: 10,
		Log:            slog.Default(),
	}
}

// Run advances s until the game ends. It blocks; cancel ctx to stop early,
// in which case the last completed state is returned with ctx's error.
func (r *Runner) Run(ctx context.Context, s *engine.WorldState) (*engine.WorldState, error) {
	r.Log.Info("match started", "tick", s.Tick, "nations", len(s.Nations), "speed", r.Speed)

	for s.Phase != engine.PhaseEnded {
		if err := ctx.Err(); err != nil {
			r.Log.Info("match stopped", "tick", s.Tick)
			return s, err
		}
		if r.Speed <= 0 {
			if err := sleep(ctx, pausePoll); err != nil {
				return s, err
			}
			continue
		}

		start := time.Now()
		s = r.Step(s)
		if err := r.notify(s); err != nil {
			return s, err
		}

		if target := time.Duration(float64(r.Interval) / r.Speed); target > 0 {
			if elapsed := time.Since(start); elapsed < target {
				if err := sleep(ctx, target-elapsed); err != nil {
					return s, err
				}
			}
		}
	}

	winner := "none"
	if w := s.Nation(s.Winner); w != nil {
		winner = w.Name
	}
	r.Log.Info("match finished", "tick", s.Tick, "winner", winner)
	return s, nil
}

// Step plans, merges, and resolves one tick.
func (r *Runner) Step(s *engine.WorldState) *engine.WorldState {
	var human []engine.Order
	if r.Human != nil {
		human = r.Human(s)
	}

	var bots []engine.Order
	if r.Planner != nil {
		var planned []engine.Order
		s, planned = r.Planner.GenerateOrders(s)
		for _, o := range planned {
			if o.Attacker == engine.HumanID {
				human = append(human, o)
			} else {
				bots = append(bots, o)
			}
		}
	}

	s, batch := engine.MergeOrders(s, human, bots)
	return r.Engine.AdvanceTick(s, batch)
}

func (r *Runner) notify(s *engine.WorldState) error {
	if r.OnTick != nil {
		if err := r.OnTick(s); err != nil {
			return err
		}
	}
	ended := s.Phase == engine.PhaseEnded
	if r.OnStandings != nil && (ended || r.StandingsEvery > 0 && s.Tick%r.StandingsEvery == 0) {
		if err := r.OnStandings(s); err != nil {
			return err
		}
	}
	if ended && r.OnEnd != nil {
		return r.OnEnd(s)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
