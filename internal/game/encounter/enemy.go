package encounter

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/npc"
)

// runEnemyTurn resolves one enemy turn: action selection, behavior, the
// attack and, when the player survives, the end of the round.
//
// Precondition: t was begun in EnemyTurn.
// Postcondition: Defeat when the player drops to 0 HP; otherwise PlayerTurn
// with the round advanced and timed effects ticked.
func (e *Encounter) runEnemyTurn(t turn) (Outcome, error) {
	player, enemy, r, err := e.combatants(t)
	if err != nil {
		e.finish(t, r)
		return Outcome{}, err
	}

	threat := ai.ComputeThreatLevel(player.Level, player.HP, player.MaxHP, player.EffectiveAC())
	actions := enemy.Actions
	if len(actions) == 0 {
		actions = []string{npc.DefaultAction}
	}
	action, err := ai.SelectEnemyAction(e.src, actions, enemy.HP, enemy.MaxHP, threat, t.round)
	if err != nil {
		return Outcome{}, e.fail(t, err)
	}
	behavior := e.picker.PickBehavior(ai.BehaviorContext{
		EnemyID:       enemy.ID,
		TemplateID:    enemy.TemplateID,
		Configured:    enemy.Behavior,
		HealthPercent: enemy.HealthPercent(),
		Threat:        threat,
		Round:         t.round,
		Action:        action,
		Hook:          enemy.BehaviorHook,
	})
	e.logger.Debug("enemy decided",
		zap.String("action", action),
		zap.Stringer("behavior", behavior),
		zap.Stringer("threat", threat),
	)

	strMod := combat.StatModifier(enemy.EffectiveStats().Strength)
	atk, err := combat.EnemyAttackRoll(e.src, strMod+enemy.Equipment.Attack, enemy.Level, behavior, enemy.HealthPercent())
	if err != nil {
		return Outcome{}, e.fail(t, err)
	}
	out := Outcome{Kind: ActionAttack, EnemyAction: action, Behavior: behavior, Attack: &atk}
	ac := player.EffectiveAC()
	r.line("%s uses %s (%s vs AC %d).", enemy.Name, action, atk.Breakdown, ac)

	if atk.Hits(ac) {
		res, err := combat.DamageRoll(e.src, combat.DamageParams{
			DiceCount:          enemy.DiceCount(),
			DiceSize:           enemy.DamageDie,
			KeepHighest:        enemy.DamageKeep,
			Modifier:           enemy.DamageBonus,
			Critical:           atk.IsCritical,
			EquipmentBonus:     enemy.Equipment.Damage,
			BehaviorMultiplier: e.rules.damageMultiplier(behavior),
		})
		if err != nil {
			return Outcome{}, e.fail(t, err)
		}
		player, err = e.store.SetHealth(player.ID, player.HP-res.Damage)
		if err != nil {
			return Outcome{}, e.fail(t, err)
		}
		if atk.IsCritical {
			r.line("Critical hit!")
		}
		r.line("%s takes %d (%s). %d/%d HP left.", player.Name, res.Damage, res.Breakdown, player.HP, player.MaxHP)
		out.Hit = true
		out.Damage = &res
	} else if atk.IsFumble {
		r.line("%s fumbles.", enemy.Name)
	} else {
		r.line("%s misses.", enemy.Name)
	}

	if player.IsDead() {
		e.defeat(&r, player)
	} else {
		e.tickEffects(&r, player)
		e.tickEffects(&r, enemy)
		r.round = t.round + 1
		r.next = PlayerTurn
		r.line("Round %d.", r.round)
	}
	if !e.finish(t, r) {
		return Outcome{}, ErrStaleTurn
	}
	out.State = r.next
	out.Lines = r.lines
	return out, nil
}

// tickEffects ages c's timed effects by one round and writes them back.
// Failures are logged; an effect outliving its round is not fatal.
func (e *Encounter) tickEffects(r *result, c combat.Combatant) {
	if len(c.Effects) == 0 {
		return
	}
	c = c.Clone()
	expired := c.TickEffects()
	if _, err := e.store.SetEffects(c.ID, c.Effects); err != nil {
		e.logger.Warn("effects not updated", zap.String("combatant", c.ID), zap.Error(err))
		return
	}
	for _, name := range expired {
		r.line("%s's %s wears off.", c.Name, name)
	}
}

// victory rolls and grants rewards for defeating enemy.
//
// Postcondition: r.next is Victory and r.rewards is set, even when granting
// to the store fails.
func (e *Encounter) victory(r *result, player, enemy combat.Combatant) {
	difficulty := enemy.Difficulty
	if difficulty <= 0 {
		difficulty = enemy.Level
	}
	var bonus *npc.LootTable
	if e.loot != nil && enemy.TemplateID != "" {
		bonus = e.loot.LootFor(enemy.TemplateID)
	}
	rw := npc.GenerateRewards(e.src, difficulty, e.items, e.rules.Rewards, bonus)

	r.line("%s is defeated!", enemy.Name)
	r.line("%s gains %d experience and %d gold.", player.Name, rw.Experience, rw.Gold)
	for _, it := range rw.Items {
		r.line("Found %s x%d.", it.ItemDefID, it.Quantity)
	}
	levels, err := e.store.GrantRewards(rw)
	if err != nil {
		e.logger.Warn("rewards not fully granted", zap.Error(err))
	}
	if levels > 0 {
		r.line("%s gains %d level(s)!", player.Name, levels)
	}
	e.logger.Info("victory",
		zap.String("enemy", enemy.TemplateID),
		zap.Int("difficulty", difficulty),
		zap.Int("xp", rw.Experience),
		zap.Int("gold", rw.Gold),
		zap.Int("items", len(rw.Items)),
	)
	r.rewards = &rw
	r.next = Victory
	r.note(SeveritySuccess, "Victory! %s defeated %s.", player.Name, enemy.Name)
}

func (e *Encounter) defeat(r *result, player combat.Combatant) {
	e.logger.Info("defeat", zap.String("player", player.ID))
	r.next = Defeat
	r.note(SeverityInfo, "%s has fallen.", player.Name)
}
