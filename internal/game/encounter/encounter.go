// Package encounter runs one-on-one combat between the active player and the
// active enemy as a turn-based state machine.
//
// Turns are computed outside the encounter lock with a turn-in-flight guard,
// so the store may block without stalling readers; overlapping turn
// requests are rejected rather than queued.
package encounter

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/condition"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/npc"
)

var (
	ErrNoActivePlayer = errors.New("encounter: no active player")
	ErrNoActiveEnemy  = errors.New("encounter: no active enemy")
	// ErrOutOfTurn is returned when a call does not match the current state.
	ErrOutOfTurn = errors.New("encounter: not allowed in current state")
	// ErrTurnInFlight is returned while another turn is being computed.
	ErrTurnInFlight     = errors.New("encounter: turn already in progress")
	ErrInsufficientMana = errors.New("encounter: insufficient mana")
	ErrUnknownAction    = errors.New("encounter: unknown action")
	ErrNoItem           = errors.New("encounter: item action needs an item id")
	ErrClosed           = errors.New("encounter: closed")
	// ErrStaleTurn is returned when a Reset or Close lands while a turn is
	// being computed; the turn's result is discarded.
	ErrStaleTurn = errors.New("encounter: turn discarded after reset")
)

// State is a node of the encounter state machine.
type State int

const (
	NotStarted State = iota
	InitiativeRolled
	PlayerTurn
	EnemyTurn
	Victory
	Defeat
)

var stateNames = [...]string{"not_started", "initiative_rolled", "player_turn", "enemy_turn", "victory", "defeat"}

// String returns the snake_case state name.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether s is Victory or Defeat.
func (s State) Terminal() bool { return s == Victory || s == Defeat }

// Store is the external character and enemy state an encounter reads and
// writes. Implementations must be safe for concurrent use.
type Store interface {
	ActivePlayer() (combat.Combatant, bool)
	ActiveEnemy() (combat.Combatant, bool)
	// SetHealth, SetMana and SetEffects clamp and return the updated combatant.
	SetHealth(id string, hp int) (combat.Combatant, error)
	SetMana(id string, mana int) (combat.Combatant, error)
	SetEffects(id string, effects []combat.Effect) (combat.Combatant, error)
	// ConsumeItem removes one unit from the player's inventory.
	ConsumeItem(itemID string) (inventory.ItemDef, error)
	// GrantRewards returns the number of levels gained.
	GrantRewards(r npc.Rewards) (int, error)
}

// LootTables resolves an enemy template's bonus drops.
type LootTables interface {
	LootFor(templateID string) *npc.LootTable
}

// Deps are an encounter's collaborators.
type Deps struct {
	Dice *dice.Roller
	// Scheduler defaults to combat.RealScheduler.
	Scheduler combat.Scheduler
	// Behavior defaults to ai.DefaultBehaviorPicker.
	Behavior ai.BehaviorPicker
	// Items is the shared reward pool; nil disables item rewards.
	Items *inventory.Registry
	// Loot may be nil.
	Loot LootTables
	// Conditions resolves condition item effects; nil makes them fizzle.
	Conditions *condition.Registry
	Notifier   Notifier
	Logger     *zap.Logger
	Rules      Rules
}

// Initiative records the opening rolls.
type Initiative struct {
	Player      combat.InitiativeResult
	Enemy       combat.InitiativeResult
	PlayerFirst bool
}

// Encounter is one fight. All methods are safe for concurrent use.
type Encounter struct {
	id         string
	store      Store
	src        dice.Source
	sched      combat.Scheduler
	picker     ai.BehaviorPicker
	items      *inventory.Registry
	loot       LootTables
	conditions *condition.Registry
	notifier   Notifier
	logger     *zap.Logger
	rules      Rules

	mu           sync.Mutex
	state        State
	round        int
	generation   uint64
	turnInFlight bool
	closed       bool
	pending      combat.Timer
	attackBonus  int
	initiative   Initiative
	rewards      *npc.Rewards
	log          []string
}

// New creates an encounter in NotStarted.
//
// Precondition: id must be non-empty; store and deps.Dice must be non-nil.
// Postcondition: nil optional deps are replaced by their defaults.
func New(id string, store Store, deps Deps) *Encounter {
	if id == "" {
		panic("encounter.New: id must not be empty")
	}
	if store == nil {
		panic("encounter.New: store must not be nil")
	}
	if deps.Dice == nil {
		panic("encounter.New: deps.Dice must not be nil")
	}
	e := &Encounter{
		id:         id,
		store:      store,
		src:        deps.Dice.Source(),
		sched:      deps.Scheduler,
		picker:     deps.Behavior,
		items:      deps.Items,
		loot:       deps.Loot,
		conditions: deps.Conditions,
		notifier:   deps.Notifier,
		logger:     deps.Logger,
		rules:      deps.Rules,
	}
	if e.sched == nil {
		e.sched = combat.RealScheduler{}
	}
	if e.picker == nil {
		e.picker = ai.DefaultBehaviorPicker{}
	}
	if e.notifier == nil {
		e.notifier = discardNotifier{}
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	e.logger = e.logger.With(zap.String("encounter", id))
	return e
}

// ID returns the encounter ID.
func (e *Encounter) ID() string { return e.id }

// State returns the current state.
func (e *Encounter) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Round returns the current round, starting at 1 once initiative is rolled.
func (e *Encounter) Round() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.round
}

// PendingAttackBonus returns the item bonus waiting for the next attack.
func (e *Encounter) PendingAttackBonus() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.attackBonus
}

// Initiative returns the opening rolls; zero before RollInitiative.
func (e *Encounter) Initiative() Initiative {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initiative
}

// Rewards returns the rewards granted on victory.
func (e *Encounter) Rewards() (npc.Rewards, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rewards == nil {
		return npc.Rewards{}, false
	}
	return *e.rewards, true
}

// Log returns a copy of every log line so far.
func (e *Encounter) Log() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.log)
}

// Close cancels any pending enemy turn and rejects further calls until Reset.
// A turn computing concurrently is discarded.
//
// Postcondition: no scheduled enemy turn will run.
func (e *Encounter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.cancelPendingLocked()
	e.closed = true
	e.turnInFlight = false
	e.logger.Debug("encounter closed", zap.Stringer("state", e.state))
}

// Reset cancels any pending enemy turn and returns to NotStarted with an
// empty log. It reopens a closed encounter.
func (e *Encounter) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelPendingLocked()
	e.state = NotStarted
	e.round = 0
	e.closed = false
	e.turnInFlight = false
	e.attackBonus = 0
	e.initiative = Initiative{}
	e.rewards = nil
	e.log = nil
	e.logger.Debug("encounter reset")
}

// cancelPendingLocked stops the scheduled enemy turn and invalidates every
// outstanding timer and turn.
func (e *Encounter) cancelPendingLocked() {
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
	e.generation++
}

// RollInitiative rolls d20 + DEX modifier for both sides, the player adding
// Rules.PlayerInitiativeBonus. The player wins ties.
//
// Precondition: state is NotStarted.
// Postcondition: state is InitiativeRolled and round is 1; on a missing
// combatant the state is unchanged.
func (e *Encounter) RollInitiative() (Initiative, error) {
	t, err := e.begin(NotStarted)
	if err != nil {
		return Initiative{}, err
	}
	player, enemy, r, err := e.combatants(t)
	if err != nil {
		e.finish(t, r)
		return Initiative{}, err
	}

	pi, err := combat.FlatInitiative(e.src, player.EffectiveStats().Dexterity, e.rules.PlayerInitiativeBonus)
	if err != nil {
		return Initiative{}, e.fail(t, err)
	}
	ei, err := combat.FlatInitiative(e.src, enemy.EffectiveStats().Dexterity, 0)
	if err != nil {
		return Initiative{}, e.fail(t, err)
	}
	init := Initiative{Player: pi, Enemy: ei, PlayerFirst: pi.Total >= ei.Total}

	first := enemy.Name
	if init.PlayerFirst {
		first = player.Name
	}
	r.line("%s rolls %s.", player.Name, pi.Breakdown)
	r.line("%s rolls %s.", enemy.Name, ei.Breakdown)
	r.line("%s acts first.", first)
	r.next = InitiativeRolled
	r.initiative = &init
	r.round = 1

	if !e.finish(t, r) {
		return Initiative{}, ErrStaleTurn
	}
	return init, nil
}

// Begin starts the first turn. When the enemy won initiative its turn is
// scheduled after Rules.EnemyThinkDelay.
//
// Precondition: state is InitiativeRolled.
func (e *Encounter) Begin() (State, error) {
	t, err := e.begin(InitiativeRolled)
	if err != nil {
		return 0, err
	}
	r := t.result()
	e.mu.Lock()
	playerFirst := e.initiative.PlayerFirst
	e.mu.Unlock()
	if playerFirst {
		r.next = PlayerTurn
	} else {
		r.next = EnemyTurn
	}
	r.line("Round %d.", t.round)
	if !e.finish(t, r) {
		return 0, ErrStaleTurn
	}
	return r.next, nil
}

// turn is the snapshot a computation works from.
type turn struct {
	gen         uint64
	state       State
	round       int
	attackBonus int
}

// result is what a computation applies when it finishes.
type result struct {
	next        State
	round       int
	attackBonus int
	initiative  *Initiative
	rewards     *npc.Rewards
	lines       []string
	notes       []Notification
}

func (t turn) result() result {
	return result{next: t.state, round: t.round, attackBonus: t.attackBonus}
}

func (r *result) line(format string, args ...any) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func (r *result) note(sev Severity, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.lines = append(r.lines, msg)
	r.notes = append(r.notes, Notification{Message: msg, Severity: sev})
}

func (e *Encounter) begin(want State) (turn, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.beginLocked(want)
}

// beginLocked checks the guards and marks a turn in flight.
func (e *Encounter) beginLocked(want State) (turn, error) {
	switch {
	case e.closed:
		return turn{}, ErrClosed
	case e.turnInFlight:
		return turn{}, ErrTurnInFlight
	case e.state != want:
		return turn{}, fmt.Errorf("%w: need %s, in %s", ErrOutOfTurn, want, e.state)
	}
	e.turnInFlight = true
	return turn{gen: e.generation, state: e.state, round: e.round, attackBonus: e.attackBonus}, nil
}

// finish applies r unless the turn went stale, then delivers notifications.
//
// Postcondition: returns false, applying nothing, when Reset or Close ran
// since the turn began.
func (e *Encounter) finish(t turn, r result) bool {
	e.mu.Lock()
	if t.gen != e.generation {
		e.mu.Unlock()
		e.logger.Debug("discarding stale turn", zap.Stringer("state", t.state))
		return false
	}
	e.turnInFlight = false
	e.attackBonus = r.attackBonus
	e.round = r.round
	if r.initiative != nil {
		e.initiative = *r.initiative
	}
	if r.rewards != nil {
		rw := *r.rewards
		e.rewards = &rw
	}
	e.log = append(e.log, r.lines...)
	prev := e.state
	e.state = r.next
	if prev != r.next {
		e.logger.Info("encounter transition",
			zap.Stringer("from", prev),
			zap.Stringer("to", r.next),
			zap.Int("round", r.round),
		)
		if r.next == EnemyTurn {
			e.scheduleEnemyLocked()
		}
	}
	e.mu.Unlock()

	for _, n := range r.notes {
		n.EncounterID = e.id
		e.notifier.Notify(n)
	}
	return true
}

// fail ends a turn on an unexpected error without a transition.
func (e *Encounter) fail(t turn, err error) error {
	e.logger.Error("turn failed", zap.Stringer("state", t.state), zap.Error(err))
	r := t.result()
	r.note(SeverityError, "Something went wrong: %v", err)
	e.finish(t, r)
	return err
}

// combatants loads both sides, refusing the turn when either is missing.
func (e *Encounter) combatants(t turn) (combat.Combatant, combat.Combatant, result, error) {
	r := t.result()
	player, ok := e.store.ActivePlayer()
	if !ok {
		r.note(SeverityError, "There is no active character.")
		e.logger.Warn("turn refused", zap.Error(ErrNoActivePlayer))
		return combat.Combatant{}, combat.Combatant{}, r, ErrNoActivePlayer
	}
	enemy, ok := e.store.ActiveEnemy()
	if !ok {
		r.note(SeverityError, "There is no enemy to fight.")
		e.logger.Warn("turn refused", zap.Error(ErrNoActiveEnemy))
		return combat.Combatant{}, combat.Combatant{}, r, ErrNoActiveEnemy
	}
	return player, enemy, r, nil
}

// scheduleEnemyLocked queues the enemy turn for the current generation.
func (e *Encounter) scheduleEnemyLocked() {
	gen := e.generation
	e.pending = e.sched.AfterFunc(e.rules.EnemyThinkDelay, func() { e.enemyTimerFired(gen) })
}

func (e *Encounter) enemyTimerFired(gen uint64) {
	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		e.logger.Debug("discarding stale enemy timer")
		return
	}
	e.pending = nil
	t, err := e.beginLocked(EnemyTurn)
	e.mu.Unlock()
	if err != nil {
		e.logger.Debug("scheduled enemy turn skipped", zap.Error(err))
		return
	}
	if _, err := e.runEnemyTurn(t); err != nil {
		e.logger.Warn("scheduled enemy turn failed", zap.Error(err))
	}
}

// ResolveEnemyTurn runs the enemy turn now, cancelling the scheduled one.
//
// Precondition: state is EnemyTurn.
func (e *Encounter) ResolveEnemyTurn() (Outcome, error) {
	e.mu.Lock()
	t, err := e.beginLocked(EnemyTurn)
	if err == nil {
		e.cancelPendingLocked()
		t.gen = e.generation
	}
	e.mu.Unlock()
	if err != nil {
		return Outcome{}, err
	}
	return e.runEnemyTurn(t)
}
