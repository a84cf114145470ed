// Player commands issued between ticks: building, training, and diplomacy.
package engine

import (
	"errors"
	"fmt"

	"github.com/talgya/conquest/internal/economy"
	"github.com/talgya/conquest/internal/entropy"
	"github.com/talgya/conquest/internal/world"
)

var (
	ErrGameOver          = errors.New("game has ended")
	ErrUnknownNation     = errors.New("unknown or fallen nation")
	ErrNotOwner          = errors.New("tile not owned by nation")
	ErrOccupied          = errors.New("tile already has a structure")
	ErrInsufficientFunds = errors.New("insufficient treasury")
	ErrIneligible        = errors.New("action not allowed here")
)

func (s *WorldState) actor(id NationID) (*Nation, error) {
	if s.Phase == PhaseEnded {
		return nil, ErrGameOver
	}
	n := s.Nation(id)
	if n == nil || !n.Alive {
		return nil, ErrUnknownNation
	}
	return n, nil
}

// BuildStructure places a structure of kind on an owned, empty tile and
// charges its cost. The input state is not modified.
func (e *Engine) BuildStructure(s *WorldState, id NationID, at world.Point, kind economy.StructureKind) (*WorldState, error) {
	n, err := s.actor(id)
	if err != nil {
		return s, err
	}
	def := economy.Structure(kind)
	if kind == economy.NoStructure || def.Cost <= 0 {
		return s, fmt.Errorf("structure %d: %w", kind, ErrIneligible)
	}
	tile := s.Grid.Get(at)
	switch {
	case tile == nil || tile.Owner != id:
		return s, ErrNotOwner
	case tile.HasStructure():
		return s, ErrOccupied
	case kind == economy.NavalYard && !s.Grid.IsCoastal(at):
		return s, fmt.Errorf("naval yard needs a coastal tile: %w", ErrIneligible)
	case n.Treasury < def.Cost:
		return s, ErrInsufficientFunds
	}

	next := s.Clone()
	next.Events = nil
	nn := next.Nation(id)
	next.Grid.Get(at).Structure = kind
	nn.Treasury -= def.Cost
	nn.Structures[kind]++
	next.emit(Event{
		Kind:        EventStructure,
		Nation:      id,
		Other:       NoWinner,
		Pos:         at,
		Description: fmt.Sprintf("%s built a %s", nn.Name, def.Name),
	})
	return next, nil
}

// TrainUnit buys one unit of kind for the nation.
func (e *Engine) TrainUnit(s *WorldState, id NationID, kind economy.UnitKind) (*WorldState, error) {
	n, err := s.actor(id)
	if err != nil {
		return s, err
	}
	def := economy.Unit(kind)
	if def.Cost <= 0 {
		return s, fmt.Errorf("unit %d: %w", kind, ErrIneligible)
	}
	if n.Treasury < def.Cost {
		return s, ErrInsufficientFunds
	}

	next := s.withNations()
	next.Events = nil
	nn := next.Nation(id)
	nn.Treasury -= def.Cost
	nn.Units[kind]++
	nn.Strength = economy.MilitaryStrength(nn.Units)
	next.emit(Event{
		Kind:        EventUnit,
		Nation:      id,
		Other:       NoWinner,
		Description: fmt.Sprintf("%s trained a %s", nn.Name, def.Name),
	})
	return next, nil
}

// ProposeAlliance offers an alliance from one nation to another. The target
// accepts with higher odds when it is the poorer party. Acceptance is
// symmetric. The returned bool reports whether the two are now allied.
func (e *Engine) ProposeAlliance(s *WorldState, from, to NationID) (*WorldState, bool, error) {
	proposer, err := s.actor(from)
	if err != nil {
		return s, false, err
	}
	target, err := s.actor(to)
	if err != nil {
		return s, false, err
	}
	if from == to {
		return s, false, fmt.Errorf("self alliance: %w", ErrIneligible)
	}
	if proposer.AlliedWith(to) {
		return s, true, nil
	}

	odds := e.Tuning.Diplomacy.AcceptOtherwise
	if target.Treasury < proposer.Treasury {
		odds = e.Tuning.Diplomacy.AcceptWhenPoorer
	}
	if !entropy.Chance(e.Rand, odds) {
		return s, false, nil
	}

	next := s.withNations()
	next.Events = nil
	next.setAlliance(from, to, true)
	next.emit(Event{
		Kind:        EventAlliance,
		Nation:      from,
		Other:       to,
		Description: fmt.Sprintf("%s and %s are now allied", proposer.Name, target.Name),
	})
	e.Log.Info("alliance formed", "tick", s.Tick, "a", proposer.Name, "b", target.Name)
	return next, true, nil
}

// BreakAlliance dissolves the alliance between a and b on both sides.
func (e *Engine) BreakAlliance(s *WorldState, a, b NationID) *WorldState {
	na := s.Nation(a)
	if na == nil || !na.AlliedWith(b) {
		return s
	}
	next := s.withNations()
	next.Events = nil
	next.setAlliance(a, b, false)
	return next
}
