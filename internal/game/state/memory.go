// Package state provides the in-memory character and enemy store that
// encounters read from and write through.
package state

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/cory-johannsen/skirmish/internal/game/character"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/npc"
)

var (
	// ErrNoPlayer is returned when an operation needs a player and none is set.
	ErrNoPlayer = errors.New("state: no active player")
	// ErrNoEnemy is returned when an operation needs an enemy and none is set.
	ErrNoEnemy = errors.New("state: no active enemy")
	// ErrUnknownCombatant is returned when an ID matches neither side.
	ErrUnknownCombatant = errors.New("state: unknown combatant")
	// ErrNotConsumable is returned when consuming an item without an effect.
	ErrNotConsumable = errors.New("state: item is not consumable")
)

// Player is a full snapshot of the active player.
type Player struct {
	Character character.Character
	Items     []inventory.ItemInstance
	Equipment combat.EquipmentBonus
}

// MemoryStore holds one player and at most one enemy.
// All methods are safe for concurrent use; values are copied in and out.
type MemoryStore struct {
	mu        sync.RWMutex
	items     *inventory.Registry
	player    *character.Character
	equipment combat.EquipmentBonus
	backpack  *inventory.Backpack
	enemy     *combat.Combatant
}

// NewMemoryStore creates an empty store resolving item IDs through items.
//
// Precondition: items must be non-nil.
// Postcondition: Returns a store with no player and no enemy.
func NewMemoryStore(items *inventory.Registry) *MemoryStore {
	if items == nil {
		panic("state.NewMemoryStore: items must not be nil")
	}
	return &MemoryStore{items: items}
}

// SetPlayer replaces the active player. A nil backpack starts empty and
// unlimited.
//
// Precondition: every ID in ch.Equipped must be registered.
// Postcondition: HP and mana are clamped into range; returns the stored snapshot.
func (s *MemoryStore) SetPlayer(ch character.Character, backpack *inventory.Backpack) (Player, error) {
	bonus, err := inventory.AggregateBonus(s.items, ch.Equipped)
	if err != nil {
		return Player{}, fmt.Errorf("setting player %q: %w", ch.Name, err)
	}
	ch = ch.Clone()
	ch.CurrentHP = min(max(ch.CurrentHP, 0), ch.MaxHP)
	ch.Mana = min(max(ch.Mana, 0), ch.MaxMana)
	if backpack == nil {
		backpack = inventory.NewBackpack(0)
	} else {
		backpack = backpack.Clone()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.player = &ch
	s.equipment = bonus
	s.backpack = backpack
	return s.snapshotLocked(), nil
}

// Player returns a snapshot of the active player.
func (s *MemoryStore) Player() (Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.player == nil {
		return Player{}, ErrNoPlayer
	}
	return s.snapshotLocked(), nil
}

func (s *MemoryStore) snapshotLocked() Player {
	return Player{
		Character: s.player.Clone(),
		Items:     s.backpack.Items(),
		Equipment: s.equipment,
	}
}

// SetEnemy replaces the active enemy.
//
// Precondition: c must pass Validate.
func (s *MemoryStore) SetEnemy(c combat.Combatant) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("setting enemy: %w", err)
	}
	c = c.Clone()
	s.mu.Lock()
	s.enemy = &c
	s.mu.Unlock()
	return nil
}

// ClearEnemy removes the active enemy, if any.
func (s *MemoryStore) ClearEnemy() {
	s.mu.Lock()
	s.enemy = nil
	s.mu.Unlock()
}

// ActivePlayer returns the player as a combatant with equipment applied.
func (s *MemoryStore) ActivePlayer() (combat.Combatant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.player == nil {
		return combat.Combatant{}, false
	}
	return s.player.Combatant(s.equipment), true
}

// ActiveEnemy returns a copy of the active enemy.
func (s *MemoryStore) ActiveEnemy() (combat.Combatant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.enemy == nil {
		return combat.Combatant{}, false
	}
	return s.enemy.Clone(), true
}

// SetHealth sets the HP of the player or enemy with the given ID.
//
// Postcondition: HP is clamped to [0, MaxHP]; returns the updated combatant
// or ErrUnknownCombatant.
func (s *MemoryStore) SetHealth(id string, hp int) (combat.Combatant, error) {
	return s.update(id, func(p *character.Character) {
		p.CurrentHP = min(max(hp, 0), p.MaxHP)
	}, func(e *combat.Combatant) {
		*e = e.WithHP(hp)
	})
}

// SetMana sets the mana of the player or enemy with the given ID.
//
// Postcondition: mana is clamped to [0, MaxMana].
func (s *MemoryStore) SetMana(id string, mana int) (combat.Combatant, error) {
	return s.update(id, func(p *character.Character) {
		p.Mana = min(max(mana, 0), p.MaxMana)
	}, func(e *combat.Combatant) {
		e.Mana = min(max(mana, 0), e.MaxMana)
	})
}

// SetEffects replaces the active effects of the player or enemy with the
// given ID.
func (s *MemoryStore) SetEffects(id string, effects []combat.Effect) (combat.Combatant, error) {
	return s.update(id, func(p *character.Character) {
		p.Effects = slices.Clone(effects)
	}, func(e *combat.Combatant) {
		e.Effects = slices.Clone(effects)
	})
}

func (s *MemoryStore) update(id string, onPlayer func(*character.Character), onEnemy func(*combat.Combatant)) (combat.Combatant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.player != nil && s.player.ID == id:
		onPlayer(s.player)
		return s.player.Combatant(s.equipment), nil
	case s.enemy != nil && s.enemy.ID == id:
		onEnemy(s.enemy)
		return s.enemy.Clone(), nil
	}
	return combat.Combatant{}, fmt.Errorf("%w: %q", ErrUnknownCombatant, id)
}

// ConsumeItem removes one unit of itemID from the player's backpack and
// returns its definition.
//
// Postcondition: on error the backpack is unchanged. Missing items wrap
// inventory.ErrItemNotFound; items without an effect return ErrNotConsumable.
func (s *MemoryStore) ConsumeItem(itemID string) (inventory.ItemDef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player == nil {
		return inventory.ItemDef{}, ErrNoPlayer
	}
	def, ok := s.items.Item(itemID)
	if !ok {
		return inventory.ItemDef{}, fmt.Errorf("consuming %q: %w", itemID, inventory.ErrItemNotFound)
	}
	if !def.IsConsumable() {
		return inventory.ItemDef{}, fmt.Errorf("consuming %q: %w", itemID, ErrNotConsumable)
	}
	if err := s.backpack.RemoveOne(itemID); err != nil {
		return inventory.ItemDef{}, fmt.Errorf("consuming %q: %w", itemID, err)
	}
	return *def, nil
}

// AddItem puts quantity units of itemID into the player's backpack.
//
// Precondition: quantity >= 1.
func (s *MemoryStore) AddItem(itemID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player == nil {
		return ErrNoPlayer
	}
	return s.addItemLocked(itemID, quantity)
}

func (s *MemoryStore) addItemLocked(itemID string, quantity int) error {
	def, ok := s.items.Item(itemID)
	if !ok {
		return fmt.Errorf("adding %q: unknown item", itemID)
	}
	if err := s.backpack.Add(def, quantity); err != nil {
		return fmt.Errorf("adding %q: %w", itemID, err)
	}
	return nil
}

// GrantRewards credits experience and gold and stores every dropped item.
// Experience may level the player up.
//
// Postcondition: experience and gold are always granted; items that are
// unknown or do not fit are skipped and reported in the joined error.
// Returns the number of levels gained.
func (s *MemoryStore) GrantRewards(r npc.Rewards) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player == nil {
		return 0, ErrNoPlayer
	}
	s.player.Gold += r.Gold
	levels := s.player.GainExperience(r.Experience)

	var errs []error
	for _, it := range r.Items {
		if err := s.addItemLocked(it.ItemDefID, it.Quantity); err != nil {
			errs = append(errs, err)
		}
	}
	return levels, errors.Join(errs...)
}
