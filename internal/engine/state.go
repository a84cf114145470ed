// World state types: nations, orders, phases, and per-tick events.
package engine

import (
	"slices"

	"github.com/talgya/conquest/internal/economy"
	"github.com/talgya/conquest/internal/world"
)

// NationID identifies a nation. The human nation is always HumanID.
type NationID = world.NationID

const (
	HumanID  NationID = 0
	NoWinner NationID = -1
)

// Phase is the coarse game state gating legal actions.
type Phase uint8

const (
	PhaseFreeExpansion Phase = iota // Only neutral land may be claimed
	PhaseActive                     // Full combat
	PhaseEnded                      // Terminal
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseFreeExpansion:
		return "free-expansion"
	case PhaseActive:
		return "active"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// BotMemory is the per-nation state carried between bot planning passes.
type BotMemory struct {
	LastAttackTick int         `json:"last_attack_tick"`
	Target         world.Point `json:"target"`
	HasTarget      bool        `json:"has_target"`
	Truces         []NationID  `json:"truces,omitempty"` // Nations this bot will not attack
}

// Nation is a human or autonomous faction.
type Nation struct {
	ID    NationID `json:"id"`
	Name  string   `json:"name"`
	Color string   `json:"color"`
	IsBot bool     `json:"is_bot"`
	Alive bool     `json:"alive"`

	Treasury     float64 `json:"treasury"`
	Income       float64 `json:"income"` // Recomputed every tick
	InterestRate float64 `json:"interest_rate"`
	Tiles        int     `json:"tiles"` // Recomputed every tick

	Structures economy.StructureTally `json:"structures"`
	Units      economy.UnitTally      `json:"units"`
	Progress   economy.UnitProgress   `json:"progress"`
	Strength   float64                `json:"strength"` // Ranking scalar only

	Allies     []NationID `json:"allies,omitempty"` // Symmetric, sorted
	TruceUntil int        `json:"truce_until,omitempty"` // 0 = no truce

	Memory BotMemory `json:"memory"`
}

// AlliedWith reports whether id is among the nation's allies.
func (n *Nation) AlliedWith(id NationID) bool {
	_, ok := slices.BinarySearch(n.Allies, id)
	return ok
}

// TrucedWith reports whether the nation's bot memory holds a truce with id.
func (n *Nation) TrucedWith(id NationID) bool {
	return slices.Contains(n.Memory.Truces, id)
}

func (n *Nation) clone() *Nation {
	c := *n
	c.Allies = slices.Clone(n.Allies)
	c.Memory.Truces = slices.Clone(n.Memory.Truces)
	return &c
}

func (n *Nation) addAlly(id NationID) {
	if i, ok := slices.BinarySearch(n.Allies, id); !ok {
		n.Allies = slices.Insert(n.Allies, i, id)
	}
}

func (n *Nation) removeAlly(id NationID) {
	if i, ok := slices.BinarySearch(n.Allies, id); ok {
		n.Allies = slices.Delete(n.Allies, i, i+1)
	}
}

// Order is a request to move committed resource from an owned tile into an
// adjacent tile, resolved as a claim or an attack.
type Order struct {
	From     world.Point `json:"from"`
	To       world.Point `json:"to"`
	Amount   float64     `json:"amount"`
	Attacker NationID    `json:"attacker"`
	Prepaid  bool        `json:"prepaid,omitempty"` // Source drain already paid
}

// Event kinds.
const (
	EventPhase      = "phase"
	EventCapture    = "capture"
	EventEliminated = "eliminated"
	EventVictory    = "victory"
	EventBetrayal   = "betrayal"
	EventAlliance   = "alliance"
	EventStructure  = "structure"
	EventRazed      = "razed"
	EventUnit       = "unit"
)

// Event is a notable occurrence during one tick.
type Event struct {
	Tick        int         `json:"tick"`
	Kind        string      `json:"kind"`
	Nation      NationID    `json:"nation"`
	Other       NationID    `json:"other"`
	Pos         world.Point `json:"pos"`
	Description string      `json:"description"`
}

// WorldState is the complete game state. Each tick consumes one value and
// returns a new one; callers must not mutate a state they have passed on.
type WorldState struct {
	Grid       *world.Grid   `json:"grid"`
	Nations    []*Nation     `json:"nations"` // Indexed by NationID
	Tick       int           `json:"tick"`
	Phase      Phase         `json:"phase"`
	Winner     NationID      `json:"winner"`
	MapType    world.MapType `json:"map_type"`
	Difficulty float64       `json:"difficulty"`
	Events     []Event       `json:"events,omitempty"` // Produced by the most recent tick
}

// Width returns the grid width.
func (s *WorldState) Width() int { return s.Grid.Width }

// Height returns the grid height.
func (s *WorldState) Height() int { return s.Grid.Height }

// Nation returns the nation with id, or nil.
func (s *WorldState) Nation(id NationID) *Nation {
	if id < 0 || int(id) >= len(s.Nations) {
		return nil
	}
	return s.Nations[id]
}

// Clone returns a fully independent copy.
func (s *WorldState) Clone() *WorldState {
	c := s.withNations()
	c.Grid = s.Grid.Clone()
	return c
}

// withNations copies nations but shares the grid. Only safe when the caller
// will not touch tiles.
func (s *WorldState) withNations() *WorldState {
	c := *s
	c.Nations = make([]*Nation, len(s.Nations))
	for i, n := range s.Nations {
		c.Nations[i] = n.clone()
	}
	c.Events = slices.Clone(s.Events)
	return &c
}

// WithNations is the exported form of withNations for packages that update
// nation-level memory without touching the grid.
func (s *WorldState) WithNations() *WorldState { return s.withNations() }

// AliveNations returns the living nations in nation order.
func (s *WorldState) AliveNations() []*Nation {
	var out []*Nation
	for _, n := range s.Nations {
		if n.Alive {
			out = append(out, n)
		}
	}
	return out
}

func (s *WorldState) emit(e Event) {
	e.Tick = s.Tick
	s.Events = append(s.Events, e)
}

// setAlliance makes a and b allies or dissolves their alliance, symmetrically.
func (s *WorldState) setAlliance(a, b NationID, allied bool) {
	na, nb := s.Nation(a), s.Nation(b)
	if na == nil || nb == nil || a == b {
		return
	}
	if allied {
		na.addAlly(b)
		nb.addAlly(a)
		return
	}
	na.removeAlly(b)
	nb.removeAlly(a)
}
