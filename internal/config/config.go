// Package config provides Viper-based configuration loading for the combat
// engine and its simulation harness.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/skirmish/internal/game/encounter"
	"github.com/cory-johannsen/skirmish/internal/game/npc"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// CombatConfig holds the tunable encounter numbers.
type CombatConfig struct {
	// EnemyThinkDelay is the pause before a scheduled enemy turn.
	EnemyThinkDelay       time.Duration `mapstructure:"enemy_think_delay"`
	PlayerInitiativeBonus int           `mapstructure:"player_initiative_bonus"`
	DefendHeal            int           `mapstructure:"defend_heal"`
	SkillManaCost         int           `mapstructure:"skill_mana_cost"`
	// BehaviorDamage maps a behavior name to its enemy damage multiplier.
	BehaviorDamage map[string]float64 `mapstructure:"behavior_damage"`
}

// RewardsConfig holds the victory reward rolls.
type RewardsConfig struct {
	ExperiencePerDifficulty int `mapstructure:"experience_per_difficulty"`
	GoldMin                 int `mapstructure:"gold_min"`
	GoldMax                 int `mapstructure:"gold_max"`
	// LootChance is the luck threshold, in percent, for the shared item drop.
	LootChance      int `mapstructure:"loot_chance"`
	LootEffectSlack int `mapstructure:"loot_effect_slack"`
}

// ContentConfig locates the YAML and Lua content directories.
type ContentConfig struct {
	ItemsDir   string `mapstructure:"items_dir"`
	EnemiesDir string `mapstructure:"enemies_dir"`
	ClassesDir string `mapstructure:"classes_dir"`
	// ConditionsDir may be empty when no item applies a condition.
	ConditionsDir string `mapstructure:"conditions_dir"`
	// ScriptsDir may be empty to run without behavior scripts.
	ScriptsDir string `mapstructure:"scripts_dir"`
	// ScriptInstructionLimit bounds each Lua hook call; 0 uses the default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// SimulationConfig drives cmd/simulate.
type SimulationConfig struct {
	Runs    int `mapstructure:"runs"`
	Workers int `mapstructure:"workers"`
	// Seed of 0 draws from the crypto source.
	Seed  uint64 `mapstructure:"seed"`
	Level int    `mapstructure:"level"`
	Class string `mapstructure:"class"`
	Name  string `mapstructure:"name"`
	// LevelSpread is how far an enemy's difficulty may stray from the level.
	LevelSpread int `mapstructure:"level_spread"`
	// MaxRounds stops a run that never resolves.
	MaxRounds int `mapstructure:"max_rounds"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Combat     CombatConfig     `mapstructure:"combat"`
	Rewards    RewardsConfig    `mapstructure:"rewards"`
	Content    ContentConfig    `mapstructure:"content"`
	Simulation SimulationConfig `mapstructure:"simulation"`
}

// Rules converts the combat and reward sections into encounter rules.
func (c Config) Rules() encounter.Rules {
	damage := make(map[string]float64, len(c.Combat.BehaviorDamage))
	for k, v := range c.Combat.BehaviorDamage {
		damage[strings.ToLower(k)] = v
	}
	return encounter.Rules{
		EnemyThinkDelay:       c.Combat.EnemyThinkDelay,
		PlayerInitiativeBonus: c.Combat.PlayerInitiativeBonus,
		DefendHeal:            c.Combat.DefendHeal,
		SkillManaCost:         c.Combat.SkillManaCost,
		BehaviorDamage:        damage,
		Rewards: npc.RewardRules{
			ExperiencePerDifficulty: c.Rewards.ExperiencePerDifficulty,
			GoldMin:                 c.Rewards.GoldMin,
			GoldMax:                 c.Rewards.GoldMax,
			LootChance:              c.Rewards.LootChance,
			LootEffectSlack:         c.Rewards.LootEffectSlack,
		},
	}
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error joining all violations.
func (c Config) Validate() error {
	err := errors.Join(
		validateLogging(c.Logging),
		validateCombat(c.Combat),
		validateRewards(c.Rewards),
		validateContent(c.Content),
		validateSimulation(c.Simulation),
	)
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	var errs []error
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		errs = append(errs, fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level))
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		errs = append(errs, fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format))
	}
	return errors.Join(errs...)
}

func validateCombat(c CombatConfig) error {
	var errs []error
	if c.EnemyThinkDelay < 0 {
		errs = append(errs, errors.New("combat.enemy_think_delay must not be negative"))
	}
	if c.DefendHeal < 0 {
		errs = append(errs, fmt.Errorf("combat.defend_heal must be >= 0, got %d", c.DefendHeal))
	}
	if c.SkillManaCost < 0 {
		errs = append(errs, fmt.Errorf("combat.skill_mana_cost must be >= 0, got %d", c.SkillManaCost))
	}
	for name, m := range c.BehaviorDamage {
		if m < 0 {
			errs = append(errs, fmt.Errorf("combat.behavior_damage.%s must be >= 0, got %g", name, m))
		}
	}
	return errors.Join(errs...)
}

func validateRewards(r RewardsConfig) error {
	var errs []error
	if r.ExperiencePerDifficulty < 0 {
		errs = append(errs, fmt.Errorf("rewards.experience_per_difficulty must be >= 0, got %d", r.ExperiencePerDifficulty))
	}
	if r.GoldMin < 0 {
		errs = append(errs, fmt.Errorf("rewards.gold_min must be >= 0, got %d", r.GoldMin))
	}
	if r.GoldMax < r.GoldMin {
		errs = append(errs, fmt.Errorf("rewards.gold_max (%d) must be >= gold_min (%d)", r.GoldMax, r.GoldMin))
	}
	if r.LootChance < 0 || r.LootChance > 100 {
		errs = append(errs, fmt.Errorf("rewards.loot_chance must be 0-100, got %d", r.LootChance))
	}
	return errors.Join(errs...)
}

func validateContent(c ContentConfig) error {
	var errs []error
	if c.ItemsDir == "" {
		errs = append(errs, errors.New("content.items_dir must not be empty"))
	}
	if c.EnemiesDir == "" {
		errs = append(errs, errors.New("content.enemies_dir must not be empty"))
	}
	if c.ClassesDir == "" {
		errs = append(errs, errors.New("content.classes_dir must not be empty"))
	}
	if c.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Errorf("content.script_instruction_limit must be >= 0, got %d", c.ScriptInstructionLimit))
	}
	return errors.Join(errs...)
}

func validateSimulation(s SimulationConfig) error {
	var errs []error
	if s.Runs < 1 {
		errs = append(errs, fmt.Errorf("simulation.runs must be >= 1, got %d", s.Runs))
	}
	if s.Workers < 1 {
		errs = append(errs, fmt.Errorf("simulation.workers must be >= 1, got %d", s.Workers))
	}
	if s.Level < 1 {
		errs = append(errs, fmt.Errorf("simulation.level must be >= 1, got %d", s.Level))
	}
	if s.Class == "" {
		errs = append(errs, errors.New("simulation.class must not be empty"))
	}
	if s.LevelSpread < 0 {
		errs = append(errs, fmt.Errorf("simulation.level_spread must be >= 0, got %d", s.LevelSpread))
	}
	if s.MaxRounds < 1 {
		errs = append(errs, fmt.Errorf("simulation.max_rounds must be >= 1, got %d", s.MaxRounds))
	}
	return errors.Join(errs...)
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path loads defaults and
// environment overrides only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with SKIRMISH_ prefix
	v.SetEnvPrefix("SKIRMISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns the configuration Load produces with no file and no
// environment overrides.
func Defaults() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: defaults do not unmarshal: %v", err))
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	rules := encounter.DefaultRules()
	v.SetDefault("combat.enemy_think_delay", rules.EnemyThinkDelay.String())
	v.SetDefault("combat.player_initiative_bonus", rules.PlayerInitiativeBonus)
	v.SetDefault("combat.defend_heal", rules.DefendHeal)
	v.SetDefault("combat.skill_mana_cost", rules.SkillManaCost)
	damage := make(map[string]any, len(rules.BehaviorDamage))
	for k, m := range rules.BehaviorDamage {
		damage[k] = m
	}
	v.SetDefault("combat.behavior_damage", damage)

	v.SetDefault("rewards.experience_per_difficulty", rules.Rewards.ExperiencePerDifficulty)
	v.SetDefault("rewards.gold_min", rules.Rewards.GoldMin)
	v.SetDefault("rewards.gold_max", rules.Rewards.GoldMax)
	v.SetDefault("rewards.loot_chance", rules.Rewards.LootChance)
	v.SetDefault("rewards.loot_effect_slack", rules.Rewards.LootEffectSlack)

	v.SetDefault("content.items_dir", "content/items")
	v.SetDefault("content.enemies_dir", "content/enemies")
	v.SetDefault("content.classes_dir", "content/classes")
	v.SetDefault("content.conditions_dir", "content/conditions")
	v.SetDefault("content.scripts_dir", "content/scripts")
	v.SetDefault("content.script_instruction_limit", 0)

	v.SetDefault("simulation.runs", 100)
	v.SetDefault("simulation.workers", 4)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.level", 1)
	v.SetDefault("simulation.class", "fighter")
	v.SetDefault("simulation.name", "Tester")
	v.SetDefault("simulation.level_spread", 2)
	v.SetDefault("simulation.max_rounds", 100)
}
