package encounter

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/condition"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
)

// PlayerAction resolves the player's turn.
//
//   - attack: AttackRoll with STR modifier, equipment attack, the summed value
//     of active buffs, and any pending item bonus, which it consumes. Hits on
//     total >= enemy AC or a critical.
//   - defend: heals Rules.DefendHeal, clamped at max HP.
//   - skill: spends Rules.SkillManaCost mana for an EnhancedAttackRoll with
//     INT modifier and one extra damage die; consumes the pending bonus.
//   - item: consumes the item; heal items restore HP, attack items add to
//     the pending bonus, condition items apply their condition to the player.
//
// Precondition: state is PlayerTurn and no turn is in flight.
// Postcondition: Victory when the enemy drops to 0 HP, otherwise EnemyTurn
// with the enemy action scheduled. Refused actions (missing combatant, no
// mana, missing item) leave the state unchanged and notify.
func (e *Encounter) PlayerAction(a Action) (Outcome, error) {
	t, err := e.begin(PlayerTurn)
	if err != nil {
		return Outcome{}, err
	}
	player, enemy, r, err := e.combatants(t)
	if err != nil {
		e.finish(t, r)
		return Outcome{}, err
	}

	var out playerOutcome
	switch a.Kind {
	case ActionAttack:
		out, err = e.playerAttack(t, &r, player, enemy)
	case ActionDefend:
		out, err = e.playerDefend(&r, player, enemy)
	case ActionSkill:
		out, err = e.playerSkill(t, &r, player, enemy)
	case ActionItem:
		out, err = e.playerItem(&r, player, enemy, a.ItemID)
	default:
		err = fmt.Errorf("%w: %d", ErrUnknownAction, int(a.Kind))
		r.note(SeverityError, "Unknown action.")
	}
	if err != nil {
		e.logger.Info("player action refused", zap.Stringer("action", a.Kind), zap.Error(err))
		r.next = t.state
		r.attackBonus = t.attackBonus
		e.finish(t, r)
		return Outcome{}, err
	}

	if out.Enemy.IsDead() {
		e.victory(&r, out.Player, out.Enemy)
	} else {
		r.next = EnemyTurn
	}
	if !e.finish(t, r) {
		return Outcome{}, ErrStaleTurn
	}
	return out.public(r), nil
}

// playerOutcome carries the updated combatants alongside the public Outcome.
type playerOutcome struct {
	Outcome
	Player combat.Combatant
	Enemy  combat.Combatant
}

func (o playerOutcome) public(r result) Outcome {
	out := o.Outcome
	out.State = r.next
	out.Lines = r.lines
	return out
}

func (e *Encounter) playerAttack(t turn, r *result, player, enemy combat.Combatant) (playerOutcome, error) {
	strMod := combat.StatModifier(player.EffectiveStats().Strength)
	atk, err := combat.AttackRoll(e.src, strMod+player.Equipment.Attack+player.BuffBonus()+t.attackBonus, player.Level)
	if err != nil {
		r.note(SeverityError, "The attack could not be rolled.")
		return playerOutcome{}, err
	}
	r.attackBonus = 0

	out := playerOutcome{Outcome: Outcome{Kind: ActionAttack, Attack: &atk}, Player: player, Enemy: enemy}
	dmg := combat.DamageParams{
		DiceCount:      player.DiceCount(),
		DiceSize:       player.DamageDie,
		Modifier:       strMod,
		LevelBonus:     player.Level / 2,
		EquipmentBonus: player.Equipment.Damage,
	}
	return e.strike(r, out, fmt.Sprintf("%s attacks %s", player.Name, enemy.Name), dmg)
}

func (e *Encounter) playerSkill(t turn, r *result, player, enemy combat.Combatant) (playerOutcome, error) {
	cost := e.rules.SkillManaCost
	if player.Mana < cost {
		r.note(SeverityInfo, "%s does not have enough mana (%d/%d).", player.Name, player.Mana, cost)
		return playerOutcome{}, fmt.Errorf("%w: have %d, need %d", ErrInsufficientMana, player.Mana, cost)
	}
	player, err := e.store.SetMana(player.ID, player.Mana-cost)
	if err != nil {
		r.note(SeverityError, "Mana could not be spent.")
		return playerOutcome{}, err
	}

	intMod := combat.StatModifier(player.EffectiveStats().Intelligence)
	atk, err := combat.EnhancedAttackRoll(e.src, combat.EnhancedAttack{
		Modifier:       intMod,
		Level:          player.Level,
		Buffs:          player.Buffs(),
		Debuffs:        player.Debuffs(),
		EquipmentBonus: player.Equipment.Attack + t.attackBonus,
		EnhancedDice:   player.EnhancedDice,
		IsPlayer:       true,
		ResearchBonus:  player.ResearchBonus,
		SpellBonus:     player.SpellBonus,
	})
	if err != nil {
		r.note(SeverityError, "The skill could not be rolled.")
		return playerOutcome{}, err
	}
	r.attackBonus = 0

	out := playerOutcome{Outcome: Outcome{Kind: ActionSkill, Attack: &atk}, Player: player, Enemy: enemy}
	dmg := combat.DamageParams{
		DiceCount:      player.DiceCount() + 1,
		DiceSize:       player.DamageDie,
		Modifier:       intMod,
		LevelBonus:     player.Level / 2,
		EquipmentBonus: player.Equipment.Damage,
		SpellBonus:     player.SpellBonus,
		ResearchBonus:  player.ResearchBonus,
	}
	label := fmt.Sprintf("%s spends %d mana on a skill against %s", player.Name, cost, enemy.Name)
	return e.strike(r, out, label, dmg)
}

// strike finishes a player attack: logs the roll, rolls damage on a hit and
// writes the enemy's new HP.
func (e *Encounter) strike(r *result, out playerOutcome, label string, dmg combat.DamageParams) (playerOutcome, error) {
	atk := out.Attack
	ac := out.Enemy.EffectiveAC()
	r.line("%s: %s vs AC %d.", label, atk.Breakdown, ac)
	if !atk.Hits(ac) {
		if atk.IsFumble {
			r.line("Fumble! The attack goes wide.")
		} else {
			r.line("Miss.")
		}
		return out, nil
	}

	dmg.Critical = atk.IsCritical
	res, err := combat.DamageRoll(e.src, dmg)
	if err != nil {
		r.note(SeverityError, "Damage could not be rolled.")
		return playerOutcome{}, err
	}
	enemy, err := e.store.SetHealth(out.Enemy.ID, out.Enemy.HP-res.Damage)
	if err != nil {
		r.note(SeverityError, "The enemy could not be updated.")
		return playerOutcome{}, err
	}
	if atk.IsCritical {
		r.line("Critical hit!")
	}
	r.line("Hit for %d (%s). %s has %d/%d HP.", res.Damage, res.Breakdown, enemy.Name, enemy.HP, enemy.MaxHP)

	out.Hit = true
	out.Damage = &res
	out.Enemy = enemy
	return out, nil
}

func (e *Encounter) playerDefend(r *result, player, enemy combat.Combatant) (playerOutcome, error) {
	healed, err := e.heal(player, e.rules.DefendHeal)
	if err != nil {
		r.note(SeverityError, "Health could not be restored.")
		return playerOutcome{}, err
	}
	r.line("%s defends and recovers %d HP (%d/%d).", player.Name, healed.amount, healed.after.HP, healed.after.MaxHP)
	return playerOutcome{Outcome: Outcome{Kind: ActionDefend, Healed: healed.amount}, Player: healed.after, Enemy: enemy}, nil
}

func (e *Encounter) playerItem(r *result, player, enemy combat.Combatant, itemID string) (playerOutcome, error) {
	if itemID == "" {
		r.note(SeverityError, "Choose an item to use.")
		return playerOutcome{}, ErrNoItem
	}
	def, err := e.store.ConsumeItem(itemID)
	if err != nil {
		r.note(SeverityError, "You can't use %q right now.", itemID)
		return playerOutcome{}, fmt.Errorf("using %q: %w", itemID, err)
	}

	out := playerOutcome{Outcome: Outcome{Kind: ActionItem}, Player: player, Enemy: enemy}
	switch def.Effect {
	case inventory.EffectHeal:
		healed, err := e.heal(player, def.EffectValue)
		if err != nil {
			r.note(SeverityError, "Health could not be restored.")
			return playerOutcome{}, err
		}
		out.Healed = healed.amount
		out.Player = healed.after
		r.line("%s uses %s and recovers %d HP (%d/%d).", player.Name, def.Name, healed.amount, healed.after.HP, healed.after.MaxHP)
	case inventory.EffectAttackBonus:
		r.attackBonus += def.EffectValue
		r.line("%s uses %s: %+d to the next attack.", player.Name, def.Name, def.EffectValue)
	case inventory.EffectCondition:
		after, err := e.applyCondition(r, player, def)
		if err != nil {
			return playerOutcome{}, err
		}
		out.Player = after
	default:
		r.line("%s uses %s. Nothing happens.", player.Name, def.Name)
	}
	return out, nil
}

// applyCondition places def.Condition on c. An unknown condition is logged
// and the item is spent for nothing.
func (e *Encounter) applyCondition(r *result, c combat.Combatant, def inventory.ItemDef) (combat.Combatant, error) {
	var cond *condition.Def
	if e.conditions != nil {
		cond, _ = e.conditions.Get(def.Condition)
	}
	if cond == nil {
		e.logger.Warn("unknown condition", zap.String("item", def.ID), zap.String("condition", def.Condition))
		r.line("%s uses %s. Nothing happens.", c.Name, def.Name)
		return c, nil
	}
	after, err := e.store.SetEffects(c.ID, condition.Apply(c.Effects, cond))
	if err != nil {
		r.note(SeverityError, "%s could not take effect.", cond.Name)
		return combat.Combatant{}, err
	}
	r.line("%s uses %s and is %s.", c.Name, def.Name, strings.ToLower(cond.Name))
	return after, nil
}

type healing struct {
	amount int
	after  combat.Combatant
}

func (e *Encounter) heal(c combat.Combatant, amount int) (healing, error) {
	after, err := e.store.SetHealth(c.ID, c.HP+amount)
	if err != nil {
		return healing{}, err
	}
	return healing{amount: after.HP - c.HP, after: after}, nil
}
