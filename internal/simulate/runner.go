package simulate

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/character"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/encounter"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/npc"
	"github.com/cory-johannsen/skirmish/internal/game/ruleset"
	"github.com/cory-johannsen/skirmish/internal/game/state"
)

// Result is the outcome of one simulated encounter.
type Result struct {
	Run   int
	Enemy string
	// State is Victory, Defeat, or the state the run was abandoned in.
	State  encounter.State
	Rounds int
	// Rewards is zero unless State is Victory.
	Rewards    npc.Rewards
	LevelAfter int
}

// Summary aggregates a batch of results.
type Summary struct {
	Runs       int
	Victories  int
	Defeats    int
	Unfinished int
	Rounds     int
	Experience int
	Gold       int
	// ByEnemy counts runs per enemy template.
	ByEnemy map[string]int
}

// AverageRounds returns the mean round count, or 0 for an empty batch.
func (s Summary) AverageRounds() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Rounds) / float64(s.Runs)
}

// Summarize folds results into a Summary.
func Summarize(results []Result) Summary {
	s := Summary{Runs: len(results), ByEnemy: make(map[string]int)}
	for _, r := range results {
		switch r.State {
		case encounter.Victory:
			s.Victories++
		case encounter.Defeat:
			s.Defeats++
		default:
			s.Unfinished++
		}
		s.Rounds += r.Rounds
		s.Experience += r.Rewards.Experience
		s.Gold += r.Rewards.Gold
		s.ByEnemy[r.Enemy]++
	}
	return s
}

// Runner plays simulation.runs encounters, simulation.workers at a time.
type Runner struct {
	sim     config.SimulationConfig
	rules   encounter.Rules
	content *Content
	picker  ai.BehaviorPicker
	logger  *zap.Logger
}

// NewRunner creates a Runner.
//
// Precondition: content and logger must be non-nil; a nil picker uses
// ai.DefaultBehaviorPicker.
func NewRunner(cfg config.Config, content *Content, picker ai.BehaviorPicker, logger *zap.Logger) *Runner {
	if content == nil {
		panic("simulate.NewRunner: content must not be nil")
	}
	if picker == nil {
		picker = ai.DefaultBehaviorPicker{}
	}
	return &Runner{sim: cfg.Simulation, rules: cfg.Rules(), content: content, picker: picker, logger: logger}
}

// Run plays every encounter and returns the results in run order.
// A non-zero seed makes run i draw from seed+i, so batches are reproducible
// regardless of scheduling.
//
// Postcondition: on error the remaining runs are cancelled.
func (r *Runner) Run(ctx context.Context) ([]Result, error) {
	class, ok := r.content.Classes.Class(r.sim.Class)
	if !ok {
		return nil, fmt.Errorf("unknown class %q", r.sim.Class)
	}

	results := make([]Result, r.sim.Runs)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.sim.Workers)
	for i := range results {
		g.Go(func() error {
			res, err := r.runOne(gctx, i, class)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) source(run int) dice.Source {
	if r.sim.Seed == 0 {
		return dice.NewCryptoSource()
	}
	return dice.NewSeededSource(r.sim.Seed + uint64(run))
}

func (r *Runner) runOne(ctx context.Context, run int, class *ruleset.Class) (Result, error) {
	logger := r.logger.With(zap.Int("run", run))
	src := r.source(run)

	ch, err := character.Build(r.sim.Name, class, r.sim.Level, combat.StatBlock{})
	if err != nil {
		return Result{}, err
	}
	bp, err := r.startingBackpack(class)
	if err != nil {
		return Result{}, err
	}
	store := state.NewMemoryStore(r.content.Items)
	if _, err := store.SetPlayer(*ch, bp); err != nil {
		return Result{}, err
	}

	tmpl, err := npc.SelectForLevel(src, r.content.Enemies, r.sim.Level, r.sim.LevelSpread)
	if err != nil {
		return Result{}, err
	}
	enemy, err := npc.NewCombatant(tmpl)
	if err != nil {
		return Result{}, err
	}
	if err := store.SetEnemy(enemy); err != nil {
		return Result{}, err
	}

	sched := combat.NewManualScheduler()
	enc := encounter.New(fmt.Sprintf("run-%d", run), store, encounter.Deps{
		Dice:       dice.NewLoggedRoller(src, logger),
		Scheduler:  sched,
		Behavior:   r.picker,
		Items:      r.content.Items,
		Loot:       r.content.Catalog,
		Conditions: r.content.Conditions,
		Logger:     logger,
		Rules:      r.rules,
	})
	defer enc.Close()

	if _, err := enc.RollInitiative(); err != nil {
		return Result{}, err
	}
	if _, err := enc.Begin(); err != nil {
		return Result{}, err
	}
	if err := r.drive(ctx, enc, store, sched); err != nil {
		return Result{}, err
	}

	res := Result{Run: run, Enemy: tmpl.ID, State: enc.State(), Rounds: enc.Round()}
	if rw, ok := enc.Rewards(); ok {
		res.Rewards = rw
	}
	if p, err := store.Player(); err == nil {
		res.LevelAfter = p.Character.Level
	}
	logger.Debug("run finished",
		zap.String("enemy", tmpl.ID),
		zap.Stringer("state", res.State),
		zap.Int("rounds", res.Rounds),
	)
	return res, nil
}

// drive plays turns until the encounter ends or exceeds MaxRounds.
func (r *Runner) drive(ctx context.Context, enc *encounter.Encounter, store *state.MemoryStore, sched *combat.ManualScheduler) error {
	for !enc.State().Terminal() && enc.Round() <= r.sim.MaxRounds {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch enc.State() {
		case encounter.PlayerTurn:
			p, ok := store.ActivePlayer()
			if !ok {
				return encounter.ErrNoActivePlayer
			}
			_, err := enc.PlayerAction(Choose(p, r.rules))
			if errors.Is(err, encounter.ErrInsufficientMana) {
				_, err = enc.PlayerAction(encounter.Attack())
			}
			if err != nil {
				return err
			}
		case encounter.EnemyTurn:
			if sched.Fire() == 0 {
				if _, err := enc.ResolveEnemyTurn(); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("unexpected state %s", enc.State())
		}
	}
	return nil
}

func (r *Runner) startingBackpack(class *ruleset.Class) (*inventory.Backpack, error) {
	bp := inventory.NewBackpack(0)
	for _, si := range class.StartingItems {
		def, ok := r.content.Items.Item(si.Item)
		if !ok {
			return nil, fmt.Errorf("class %q: unknown starting item %q", class.ID, si.Item)
		}
		if err := bp.Add(def, si.Quantity); err != nil {
			return nil, fmt.Errorf("class %q: %w", class.ID, err)
		}
	}
	return bp, nil
}
