package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/conquest/internal/world"
)

// Tuning holds every balance constant of the simulation.
// LoadTuning overlays a YAML file on DefaultTuning.
type Tuning struct {
	FreeExpansionTicks int     `yaml:"free_expansion_ticks"`
	MaxTicks           int     `yaml:"max_ticks"`
	DominanceThreshold float64 `yaml:"dominance_threshold"` // Fraction of land

	StartingTreasury    float64 `yaml:"starting_treasury"`
	StartingTileBalance float64 `yaml:"starting_tile_balance"`
	BaseInterestRate    float64 `yaml:"base_interest_rate"`
	BotInterestBonus    float64 `yaml:"bot_interest_bonus"` // Scaled by difficulty
	InterestCapPerTile  float64 `yaml:"interest_cap_per_tile"`
	TileIncome          float64 `yaml:"tile_income"`

	Combat      CombatTuning      `yaml:"combat"`
	Development DevelopmentTuning `yaml:"development"`
	Diplomacy   DiplomacyTuning   `yaml:"diplomacy"`
	Bot         BotTuning         `yaml:"bot"`
}

// CombatTuning parameterises order resolution.
type CombatTuning struct {
	SourceDrainFraction    float64        `yaml:"source_drain_fraction"`
	NeutralDefense         float64        `yaml:"neutral_defense"`
	NeutralSurplusScale    float64        `yaml:"neutral_surplus_scale"`
	HostileSurplusScale    float64        `yaml:"hostile_surplus_scale"`
	ClaimFloor             float64        `yaml:"claim_floor"`
	StarterStructureChance float64        `yaml:"starter_structure_chance"`
	StructureDestroyChance float64        `yaml:"structure_destroy_chance"`
	DefenderAttrition      float64        `yaml:"defender_attrition"`
	AttackerAttrition      float64        `yaml:"attacker_attrition"`
	Terrain                TerrainDefense `yaml:"terrain"`
}

// TerrainDefense holds per-terrain defense multipliers.
type TerrainDefense struct {
	Plains   float64 `yaml:"plains"`
	Desert   float64 `yaml:"desert"`
	Mountain float64 `yaml:"mountain"`
	Water    float64 `yaml:"water"` // Water is never owned; kept for completeness
}

// For returns the multiplier for t.
func (d TerrainDefense) For(t world.Terrain) float64 {
	switch t {
	case world.TerrainMountain:
		return d.Mountain
	case world.TerrainDesert:
		return d.Desert
	case world.TerrainWater:
		return d.Water
	default:
		return d.Plains
	}
}

// DevelopmentTuning drives autonomous bot building and training.
type DevelopmentTuning struct {
	BuildChance      float64 `yaml:"build_chance"`
	TrainChance      float64 `yaml:"train_chance"`
	DifficultyChance float64 `yaml:"difficulty_chance"` // Added to both chances, scaled by difficulty
	Reserve          float64 `yaml:"reserve"`           // Treasury kept back after spending

	TilesPerCity        int `yaml:"tiles_per_city"`
	TilesPerBarracks    int `yaml:"tiles_per_barracks"`
	TilesPerAirDefense  int `yaml:"tiles_per_air_defense"`
	TilesPerNavalYard   int `yaml:"tiles_per_naval_yard"`
	TilesPerMissileSilo int `yaml:"tiles_per_missile_silo"`
	MinTilesForSilo     int `yaml:"min_tiles_for_silo"`

	TilesPerUnit       int     `yaml:"tiles_per_unit"`
	PressureRatio      float64 `yaml:"pressure_ratio"`      // Neighbour strength / own strength that triggers pressure
	PressureMultiplier float64 `yaml:"pressure_multiplier"` // Army size target under pressure
	PressureUnits      int     `yaml:"pressure_units"`      // Units trained per tick under pressure
	UnitMix            UnitMix `yaml:"unit_mix"`
}

// UnitMix is the desired share of each unit kind.
type UnitMix struct {
	Infantry   float64 `yaml:"infantry"`
	Armor      float64 `yaml:"armor"`
	AirDefense float64 `yaml:"air_defense"`
	Naval      float64 `yaml:"naval"`
	Missile    float64 `yaml:"missile"`
}

// DiplomacyTuning holds alliance acceptance odds.
type DiplomacyTuning struct {
	AcceptWhenPoorer float64 `yaml:"accept_when_poorer"` // Target treasury below proposer's
	AcceptOtherwise  float64 `yaml:"accept_otherwise"`
}

// BotTuning parameterises the autonomous agent engine.
type BotTuning struct {
	MinTreasury float64 `yaml:"min_treasury"`

	TruceChance     float64 `yaml:"truce_chance"`
	TruceMinTicks   int     `yaml:"truce_min_ticks"`
	TruceExtraTicks int     `yaml:"truce_extra_ticks"`

	AttackChance           float64 `yaml:"attack_chance"`
	AttackDifficultyChance float64 `yaml:"attack_difficulty_chance"`
	CooldownTicks          int     `yaml:"cooldown_ticks"`

	BudgetBase       float64 `yaml:"budget_base"`
	BudgetDifficulty float64 `yaml:"budget_difficulty"`
	BudgetBurst      float64 `yaml:"budget_burst"` // Extra share every BurstEvery ticks
	BurstEvery       int     `yaml:"burst_every"`
	BudgetCap        float64 `yaml:"budget_cap"`
	NeutralSpend     float64 `yaml:"neutral_spend"` // Share of remaining budget per neutral target
	HostileSpend     float64 `yaml:"hostile_spend"`
	MinOrder         float64 `yaml:"min_order"`

	TilesPerTarget int `yaml:"tiles_per_target"`
	MaxTargets     int `yaml:"max_targets"`
	Sectors        int `yaml:"sectors"`

	NeutralWeight       float64        `yaml:"neutral_weight"`
	TreasuryInfluence   float64        `yaml:"treasury_influence"`
	DefenseWeight       float64        `yaml:"defense_weight"` // Weight of the owner's defense multiplier
	Terrain             TerrainDefense `yaml:"terrain"`        // How bots perceive terrain, not how combat resolves it
	DistanceWeight      float64        `yaml:"distance_weight"`
	SourceWeight        float64        `yaml:"source_weight"`
	PreferredDiscount   float64        `yaml:"preferred_discount"`
	OverextendedPerTile float64        `yaml:"overextended_per_tile"`
	OverextendedFactor  float64        `yaml:"overextended_factor"`
	StrongerFactor      float64        `yaml:"stronger_factor"` // Applied when the owner out-muscles the bot
}

// DefaultTuning returns the standard balance.
func DefaultTuning() Tuning {
	return Tuning{
		FreeExpansionTicks: 10,
		MaxTicks:           480,
		DominanceThreshold: 0.72,

		StartingTreasury:    100,
		StartingTileBalance: 50,
		BaseInterestRate:    0.07,
		BotInterestBonus:    0.02,
		InterestCapPerTile:  3,
		TileIncome:          1,

		Combat: CombatTuning{
			SourceDrainFraction:    0.2,
			NeutralDefense:         0.8,
			NeutralSurplusScale:    0.5,
			HostileSurplusScale:    0.3,
			ClaimFloor:             1,
			StarterStructureChance: 0.04,
			StructureDestroyChance: 0.35,
			DefenderAttrition:      0.05,
			AttackerAttrition:      0.02,
			Terrain: TerrainDefense{
				Plains:   1.0,
				Desert:   1.0,
				Mountain: 1.25,
				Water:    1.5,
			},
		},

		Development: DevelopmentTuning{
			BuildChance:      0.25,
			TrainChance:      0.35,
			DifficultyChance: 0.3,
			Reserve:          40,

			TilesPerCity:        12,
			TilesPerBarracks:    15,
			TilesPerAirDefense:  30,
			TilesPerNavalYard:   25,
			TilesPerMissileSilo: 50,
			MinTilesForSilo:     40,

			TilesPerUnit:       4,
			PressureRatio:      0.8,
			PressureMultiplier: 1.5,
			PressureUnits:      2,
			UnitMix: UnitMix{
				Infantry:   0.45,
				Armor:      0.25,
				AirDefense: 0.1,
				Naval:      0.1,
				Missile:    0.1,
			},
		},

		Diplomacy: DiplomacyTuning{
			AcceptWhenPoorer: 0.7,
			AcceptOtherwise:  0.45,
		},

		Bot: BotTuning{
			MinTreasury: 50,

			TruceChance:     0.05,
			TruceMinTicks:   10,
			TruceExtraTicks: 20,

			AttackChance:           0.3,
			AttackDifficultyChance: 0.4,
			CooldownTicks:          2,

			BudgetBase:       0.25,
			BudgetDifficulty: 0.2,
			BudgetBurst:      0.15,
			BurstEvery:       5,
			BudgetCap:        0.6,
			NeutralSpend:     0.35,
			HostileSpend:     0.6,
			MinOrder:         1,

			TilesPerTarget: 25,
			MaxTargets:     6,
			Sectors:        8,

			NeutralWeight:       0.6,
			TreasuryInfluence:   0.08,
			DefenseWeight:       0.05,
			Terrain: TerrainDefense{
				Plains:   1.0,
				Desert:   1.2,
				Mountain: 1.5,
				Water:    1.5,
			},
			DistanceWeight:      0.08,
			SourceWeight:        0.02,
			PreferredDiscount:   0.7,
			OverextendedPerTile: 20,
			OverextendedFactor:  0.6,
			StrongerFactor:      1.3,
		},
	}
}

// LoadTuning reads a YAML tuning file over the defaults. Keys absent from the
// file keep their default values.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// Validate rejects values that would break the tick contract.
func (t Tuning) Validate() error {
	switch {
	case t.FreeExpansionTicks < 0:
		return fmt.Errorf("free_expansion_ticks must be >= 0, got %d", t.FreeExpansionTicks)
	case t.MaxTicks <= 0:
		return fmt.Errorf("max_ticks must be positive, got %d", t.MaxTicks)
	case t.DominanceThreshold <= 0 || t.DominanceThreshold > 1:
		return fmt.Errorf("dominance_threshold must be in (0, 1], got %v", t.DominanceThreshold)
	case t.Combat.Terrain.Plains <= 0 || t.Combat.Terrain.Desert <= 0 || t.Combat.Terrain.Mountain <= 0 || t.Combat.Terrain.Water <= 0:
		return fmt.Errorf("terrain multipliers must be positive")
	case t.Bot.Sectors <= 0:
		return fmt.Errorf("bot.sectors must be positive, got %d", t.Bot.Sectors)
	}
	return nil
}
