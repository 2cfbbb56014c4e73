// Package main provides the simulation binary that plays batches of automated
// encounters against the content tables and reports the outcome.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/observability"
	"github.com/cory-johannsen/skirmish/internal/scripting"
	"github.com/cory-johannsen/skirmish/internal/simulate"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file; empty = defaults only")
	runs := flag.Int("runs", 0, "number of encounters (overrides simulation.runs)")
	workers := flag.Int("workers", 0, "concurrent encounters (overrides simulation.workers)")
	seed := flag.Uint64("seed", 0, "dice seed; 0 keeps simulation.seed")
	level := flag.Int("level", 0, "player level (overrides simulation.level)")
	class := flag.String("class", "", "player class (overrides simulation.class)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *runs > 0 {
		cfg.Simulation.Runs = *runs
	}
	if *workers > 0 {
		cfg.Simulation.Workers = *workers
	}
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}
	if *level > 0 {
		cfg.Simulation.Level = *level
	}
	if *class != "" {
		cfg.Simulation.Class = *class
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("validating flags: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	content, err := simulate.LoadContent(cfg.Content)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("items", content.Items.Len()),
		zap.Int("enemies", len(content.Enemies)),
		zap.Strings("classes", content.Classes.IDs()),
	)

	var caller ai.ScriptCaller
	if cfg.Content.ScriptsDir != "" {
		scriptRoller := dice.NewLoggedRoller(dice.NewCryptoSource(), logger)
		mgr := scripting.NewManager(scriptRoller, logger)
		defer mgr.Close()
		if err := mgr.LoadGlobal(cfg.Content.ScriptsDir, cfg.Content.ScriptInstructionLimit); err != nil {
			logger.Fatal("loading behavior scripts", zap.Error(err))
		}
		caller = mgr
	}
	picker, err := simulate.NewBehaviorPicker(content, caller, logger)
	if err != nil {
		logger.Fatal("registering behavior pickers", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("simulation starting",
		zap.Int("runs", cfg.Simulation.Runs),
		zap.Int("workers", cfg.Simulation.Workers),
		zap.Uint64("seed", cfg.Simulation.Seed),
		zap.String("class", cfg.Simulation.Class),
		zap.Int("level", cfg.Simulation.Level),
	)
	results, err := simulate.NewRunner(cfg, content, picker, logger).Run(ctx)
	if err != nil {
		logger.Fatal("simulation failed", zap.Error(err))
	}

	s := simulate.Summarize(results)
	logger.Info("simulation complete",
		zap.Int("runs", s.Runs),
		zap.Int("victories", s.Victories),
		zap.Int("defeats", s.Defeats),
		zap.Int("unfinished", s.Unfinished),
		zap.Float64("avg_rounds", s.AverageRounds()),
		zap.Int("experience", s.Experience),
		zap.Int("gold", s.Gold),
		zap.Any("by_enemy", s.ByEnemy),
		zap.Duration("elapsed", time.Since(start)),
	)
}
