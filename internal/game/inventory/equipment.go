package inventory

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// AggregateBonus sums the attack, defense, damage and stat bonuses of the
// equipped item IDs. Non-equipment items contribute nothing.
//
// Precondition: reg must be non-nil.
// Postcondition: returns an error naming the first unknown ID.
func AggregateBonus(reg *Registry, equipped []string) (combat.EquipmentBonus, error) {
	var b combat.EquipmentBonus
	for _, id := range equipped {
		def, ok := reg.Item(id)
		if !ok {
			return combat.EquipmentBonus{}, fmt.Errorf("inventory: unknown equipped item %q", id)
		}
		if !def.IsEquipment() {
			continue
		}
		b.Attack += def.AttackBonus
		b.Defense += def.DefenseBonus
		b.Damage += def.DamageBonus
		b.Stats = b.Stats.Add(def.StatBonuses)
	}
	return b, nil
}
