package inventory

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// ErrItemNotFound is returned when the backpack holds no unit of an item.
var ErrItemNotFound = errors.New("inventory: item not in backpack")

// ErrBackpackFull is returned when an Add would need more slots than remain.
var ErrBackpackFull = errors.New("inventory: backpack full")

// ItemInstance is a stack of one item definition held in a backpack.
type ItemInstance struct {
	InstanceID string
	ItemDefID  string
	Quantity   int
}

// Backpack is a slot-limited container. Stackable items merge into existing
// stacks up to MaxStack; everything else takes one slot per unit.
// A MaxSlots of zero or less means unlimited.
type Backpack struct {
	MaxSlots int
	items    []ItemInstance
}

// NewBackpack creates an empty Backpack.
func NewBackpack(maxSlots int) *Backpack {
	return &Backpack{MaxSlots: maxSlots}
}

// Add places quantity units of def into the backpack.
// It is atomic: if the slot limit would be exceeded, no state is modified.
//
// Precondition: def must be non-nil; quantity > 0.
// Postcondition: on success Count(def.ID) grows by quantity.
func (b *Backpack) Add(def *ItemDef, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("backpack: quantity must be > 0, got %d", quantity)
	}
	if !def.Stackable || def.MaxStack <= 1 {
		if !b.fits(quantity) {
			return fmt.Errorf("backpack: %d x %q: %w", quantity, def.ID, ErrBackpackFull)
		}
		for i := 0; i < quantity; i++ {
			b.items = append(b.items, newInstance(def.ID, 1))
		}
		return nil
	}

	// Plan the merge first so a failed add leaves the backpack untouched.
	remaining := quantity
	fill := make(map[int]int)
	for i := range b.items {
		if remaining == 0 {
			break
		}
		if b.items[i].ItemDefID != def.ID {
			continue
		}
		room := def.MaxStack - b.items[i].Quantity
		if room <= 0 {
			continue
		}
		take := min(room, remaining)
		fill[i] = take
		remaining -= take
	}
	newSlots := (remaining + def.MaxStack - 1) / def.MaxStack
	if !b.fits(newSlots) {
		return fmt.Errorf("backpack: %d x %q: %w", quantity, def.ID, ErrBackpackFull)
	}

	for i, take := range fill {
		b.items[i].Quantity += take
	}
	for remaining > 0 {
		q := min(remaining, def.MaxStack)
		b.items = append(b.items, newInstance(def.ID, q))
		remaining -= q
	}
	return nil
}

func (b *Backpack) fits(newSlots int) bool {
	return b.MaxSlots <= 0 || len(b.items)+newSlots <= b.MaxSlots
}

func newInstance(itemDefID string, quantity int) ItemInstance {
	return ItemInstance{InstanceID: uuid.New().String(), ItemDefID: itemDefID, Quantity: quantity}
}

// RemoveOne takes a single unit of itemDefID from its first stack.
//
// Postcondition: returns ErrItemNotFound when Count(itemDefID) == 0; an
// emptied stack frees its slot.
func (b *Backpack) RemoveOne(itemDefID string) error {
	for i := range b.items {
		if b.items[i].ItemDefID != itemDefID {
			continue
		}
		b.items[i].Quantity--
		if b.items[i].Quantity <= 0 {
			b.items = slices.Delete(b.items, i, i+1)
		}
		return nil
	}
	return fmt.Errorf("backpack: %q: %w", itemDefID, ErrItemNotFound)
}

// Count returns the total units of itemDefID held.
func (b *Backpack) Count(itemDefID string) int {
	n := 0
	for _, inst := range b.items {
		if inst.ItemDefID == itemDefID {
			n += inst.Quantity
		}
	}
	return n
}

// Items returns a snapshot copy of all stacks.
func (b *Backpack) Items() []ItemInstance {
	return slices.Clone(b.items)
}

// UsedSlots returns the number of occupied slots.
func (b *Backpack) UsedSlots() int {
	return len(b.items)
}

// Clone returns an independent copy of the backpack.
func (b *Backpack) Clone() *Backpack {
	return &Backpack{MaxSlots: b.MaxSlots, items: slices.Clone(b.items)}
}
