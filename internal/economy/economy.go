// Package economy provides the structure and unit registries and the pure
// functions that derive a nation's combat multipliers, upkeep, and strength.
package economy

// StructureKind enumerates buildable structures. NoStructure marks an empty tile.
type StructureKind uint8

const (
	NoStructure StructureKind = iota
	City
	Barracks
	AirDefense
	NavalYard
	MissileSilo

	structureKindCount
)

// StructureKinds lists every real structure kind in registry order.
var StructureKinds = [...]StructureKind{City, Barracks, AirDefense, NavalYard, MissileSilo}

// UnitKind enumerates trainable units.
type UnitKind uint8

const (
	Infantry UnitKind = iota
	Armor
	AirDefenseUnit
	Naval
	Missile

	unitKindCount
)

// UnitKinds lists every unit kind in registry order.
var UnitKinds = [...]UnitKind{Infantry, Armor, AirDefenseUnit, Naval, Missile}

// Production describes a structure's fractional unit output.
type Production struct {
	Unit    UnitKind
	PerTick float64
}

// StructureDef is the static definition of a structure kind.
type StructureDef struct {
	Name         string
	Cost         float64
	Income       float64 // Added to the owner's income each tick
	BalanceBonus float64 // Added to the tile's balance each tick
	DefenseBonus float64 // Fraction added to the tile's defense
	Produces     *Production
}

// UnitDef is the static definition of a unit kind.
type UnitDef struct {
	Name         string
	Cost         float64
	AttackBonus  float64
	DefenseBonus float64
	Upkeep       float64 // Deducted from treasury each tick
}

// Structure returns the definition for k. NoStructure yields the zero value.
func Structure(k StructureKind) StructureDef {
	switch k {
	case City:
		return StructureDef{Name: "City Center", Cost: 95, Income: 5, BalanceBonus: 4, DefenseBonus: 0.2}
	case Barracks:
		return StructureDef{Name: "Barracks", Cost: 70, Income: 1, BalanceBonus: 1, DefenseBonus: 0.05,
			Produces: &Production{Unit: Infantry, PerTick: 0.4}}
	case AirDefense:
		return StructureDef{Name: "Air Defense", Cost: 95, DefenseBonus: 0.35,
			Produces: &Production{Unit: AirDefenseUnit, PerTick: 0.1}}
	case NavalYard:
		return StructureDef{Name: "Naval Yard", Cost: 100, Income: 2, BalanceBonus: 1, DefenseBonus: 0.15,
			Produces: &Production{Unit: Naval, PerTick: 0.15}}
	case MissileSilo:
		return StructureDef{Name: "Missile Silo", Cost: 160, DefenseBonus: 0.05,
			Produces: &Production{Unit: Missile, PerTick: 0.05}}
	default:
		return StructureDef{}
	}
}

// Unit returns the definition for k.
func Unit(k UnitKind) UnitDef {
	switch k {
	case Infantry:
		return UnitDef{Name: "Infantry Division", Cost: 25, AttackBonus: 0.02, DefenseBonus: 0.015, Upkeep: 0.5}
	case Armor:
		return UnitDef{Name: "Armored Company", Cost: 60, AttackBonus: 0.05, DefenseBonus: 0.03, Upkeep: 1}
	case AirDefenseUnit:
		return UnitDef{Name: "Anti-Air Battery", Cost: 55, AttackBonus: 0.01, DefenseBonus: 0.05, Upkeep: 0.8}
	case Naval:
		return UnitDef{Name: "Naval Fleet", Cost: 70, AttackBonus: 0.06, DefenseBonus: 0.04, Upkeep: 1.1}
	case Missile:
		return UnitDef{Name: "Strategic Missile", Cost: 120, AttackBonus: 0.12, DefenseBonus: 0.02, Upkeep: 1.5}
	default:
		return UnitDef{}
	}
}

// String returns the structure's display name.
func (k StructureKind) String() string {
	if k == NoStructure {
		return "none"
	}
	return Structure(k).Name
}

// String returns the unit's display name.
func (k UnitKind) String() string { return Unit(k).Name }

// StructureTally counts structures by kind. Index NoStructure is unused.
type StructureTally [structureKindCount]int

// Total returns the number of structures across all kinds.
func (t StructureTally) Total() int {
	n := 0
	for _, k := range StructureKinds {
		n += t[k]
	}
	return n
}

// UnitTally counts units by kind.
type UnitTally [unitKindCount]int

// Total returns the number of units across all kinds.
func (t UnitTally) Total() int {
	n := 0
	for _, c := range t {
		n += c
	}
	return n
}

// UnitProgress holds fractional production progress per unit kind.
type UnitProgress [unitKindCount]float64

// AttackMultiplier is 1 plus each unit's attack contribution, floored at 1.
func AttackMultiplier(units UnitTally) float64 {
	m := 1.0
	for _, k := range UnitKinds {
		m += float64(units[k]) * Unit(k).AttackBonus
	}
	return max(1, m)
}

// DefenseMultiplier is 1 plus each unit's defense contribution, floored at 1.
func DefenseMultiplier(units UnitTally) float64 {
	m := 1.0
	for _, k := range UnitKinds {
		m += float64(units[k]) * Unit(k).DefenseBonus
	}
	return max(1, m)
}

// Upkeep is the per-tick cost of maintaining units.
func Upkeep(units UnitTally) float64 {
	u := 0.0
	for _, k := range UnitKinds {
		u += float64(units[k]) * Unit(k).Upkeep
	}
	return u
}

// ApplyUpkeep deducts upkeep from balance, never going below zero.
func ApplyUpkeep(balance float64, units UnitTally) float64 {
	return max(0, balance-Upkeep(units))
}

// MilitaryStrength is a ranking scalar; combat never reads it.
func MilitaryStrength(units UnitTally) float64 {
	s := 0.0
	for _, k := range UnitKinds {
		d := Unit(k)
		s += float64(units[k]) * (d.AttackBonus + d.DefenseBonus) * 50
	}
	return s
}

// accrueEpsilon absorbs float drift so ten 0.1 steps complete a unit.
const accrueEpsilon = 1e-9

// Accrue adds perTick to the progress for unit and returns whole units
// completed, leaving the fractional remainder in progress.
func Accrue(progress *UnitProgress, unit UnitKind, perTick float64) int {
	progress[unit] += perTick
	whole := int(progress[unit] + accrueEpsilon)
	if whole > 0 {
		progress[unit] = max(0, progress[unit]-float64(whole))
	}
	return whole
}
