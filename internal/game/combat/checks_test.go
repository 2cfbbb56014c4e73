package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/testutil"
)

func TestSavingThrow_ModifierAndDifficulty(t *testing.T) {
	p := combat.SavingThrowParams{Stat: 14, Difficulty: 16, Level: 8, ResearchBonus: 1, BuffBonus: 1}
	r, err := combat.SavingThrow(testutil.NewSequenceSource(10), p)
	require.NoError(t, err)
	assert.Equal(t, 6, r.Modifier)
	assert.Equal(t, 16, r.Total)
	assert.True(t, r.Success, "meeting the DC succeeds")

	p.Difficulty = 17
	r, err = combat.SavingThrow(testutil.NewSequenceSource(10), p)
	require.NoError(t, err)
	assert.False(t, r.Success)
	assert.Contains(t, r.Breakdown, "vs DC 17: fail")
}

func TestSavingThrow_AdvantageKeepsBest(t *testing.T) {
	src := testutil.NewSequenceSource(3, 15)
	r, err := combat.SavingThrow(src, combat.SavingThrowParams{Stat: 10, Difficulty: 10, Advantage: true})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 15}, r.Rolls)
	assert.Equal(t, 15, r.Die)
	assert.Equal(t, 2, src.Calls())
}

func TestSkillCheck_Proficiency(t *testing.T) {
	tests := []struct {
		level      int
		proficient bool
		wantMod    int
	}{
		{1, false, 1},
		{1, true, 3},  // ceil(1/4)+1 = 2
		{4, true, 3},  // ceil(4/4)+1 = 2
		{5, true, 4},  // ceil(5/4)+1 = 3
		{12, true, 5}, // ceil(12/4)+1 = 4
	}
	for _, tc := range tests {
		r, err := combat.SkillCheck(testutil.NewSequenceSource(10), 12, 15, tc.proficient, tc.level, 0)
		require.NoError(t, err)
		assert.Equal(t, tc.wantMod, r.Modifier, "level=%d proficient=%v", tc.level, tc.proficient)
		assert.Equal(t, 10+tc.wantMod, r.Total)
		assert.Equal(t, r.Total >= 15, r.Success)
	}
}

func TestChecks_Property_TotalIsDiePlusModifier(t *testing.T) {
	src := dice.NewSeededSource(5)
	rapid.Check(t, func(rt *rapid.T) {
		p := combat.SavingThrowParams{
			Stat:       rapid.IntRange(1, 30).Draw(rt, "stat"),
			Difficulty: rapid.IntRange(1, 40).Draw(rt, "dc"),
			Level:      rapid.IntRange(1, 20).Draw(rt, "level"),
			Advantage:  rapid.Bool().Draw(rt, "adv"),
		}
		r, err := combat.SavingThrow(src, p)
		require.NoError(rt, err)
		assert.GreaterOrEqual(rt, r.Die, 1)
		assert.LessOrEqual(rt, r.Die, 20)
		assert.Equal(rt, r.Die+r.Modifier, r.Total)
		assert.Equal(rt, r.Total >= p.Difficulty, r.Success)
	})
}

func TestDamageRoll_Basic(t *testing.T) {
	r, err := combat.DamageRoll(testutil.NewSequenceSource(3, 4), combat.DamageParams{DiceCount: 2, DiceSize: 6, Modifier: 2})
	require.NoError(t, err)
	assert.Equal(t, 9, r.Damage)
	assert.Equal(t, []int{3, 4}, r.Rolls)
	assert.Nil(t, r.CritRolls)
	assert.Equal(t, "2d6 [3 4] +2 = 9", r.Breakdown)
}

func TestDamageRoll_CriticalDoublesDiceNotBonus(t *testing.T) {
	src := testutil.NewSequenceSource(3, 4, 5, 6)
	r, err := combat.DamageRoll(src, combat.DamageParams{DiceCount: 2, DiceSize: 6, Modifier: 2, Critical: true, LevelBonus: 1})
	require.NoError(t, err)
	assert.Equal(t, []int{5, 6}, r.CritRolls)
	assert.Equal(t, 3+4+5+6+2+1, r.Damage)
	assert.Equal(t, 4, src.Calls())
}

func TestDamageRoll_KeepHighest(t *testing.T) {
	r, err := combat.DamageRoll(testutil.NewSequenceSource(2, 6, 1, 5), combat.DamageParams{DiceCount: 4, DiceSize: 6, KeepHighest: 1})
	require.NoError(t, err)
	assert.Equal(t, 6, r.Damage)
	assert.Equal(t, []int{2, 6, 1, 5}, r.Rolls)
	assert.Equal(t, "4d6kh1 [2 6 1 5] +0 = 6", r.Breakdown)

	src := testutil.NewSequenceSource(2, 6, 1, 5, 3, 1, 4, 2)
	r, err = combat.DamageRoll(src, combat.DamageParams{DiceCount: 4, DiceSize: 6, KeepHighest: 1, Critical: true, Modifier: 1})
	require.NoError(t, err)
	assert.Equal(t, 6+4+1, r.Damage, "each pool keeps its highest die")
	assert.Equal(t, 8, src.Calls())
}

func TestDamageRoll_Property_KeepHighestCapsPool(t *testing.T) {
	src := dice.NewSeededSource(11)
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(2, 6).Draw(rt, "count")
		size := rapid.IntRange(1, 12).Draw(rt, "size")
		keep := rapid.IntRange(1, count-1).Draw(rt, "keep")
		r, err := combat.DamageRoll(src, combat.DamageParams{DiceCount: count, DiceSize: size, KeepHighest: keep})
		require.NoError(rt, err)
		if r.Damage > keep*size {
			rt.Fatalf("damage %d exceeds %d kept d%d", r.Damage, keep, size)
		}
	})
}

func TestDamageRoll_Multiplier(t *testing.T) {
	r, err := combat.DamageRoll(testutil.NewSequenceSource(7), combat.DamageParams{DiceCount: 1, DiceSize: 8, BehaviorMultiplier: 1.5})
	require.NoError(t, err)
	assert.Equal(t, 10, r.Damage, "floor(7 * 1.5)")
	assert.Contains(t, r.Breakdown, "x1.50")

	r, err = combat.DamageRoll(testutil.NewSequenceSource(7), combat.DamageParams{DiceCount: 1, DiceSize: 8})
	require.NoError(t, err)
	assert.Equal(t, 7, r.Damage, "zero multiplier means unscaled")
}

func TestDamageRoll_MinimumOne(t *testing.T) {
	r, err := combat.DamageRoll(testutil.NewSequenceSource(1), combat.DamageParams{DiceCount: 1, DiceSize: 4, Modifier: -10})
	require.NoError(t, err)
	assert.Equal(t, 1, r.Damage)
}

func TestDamageRoll_InvalidInput(t *testing.T) {
	src := testutil.NewSequenceSource(1)
	_, err := combat.DamageRoll(src, combat.DamageParams{DiceCount: 0, DiceSize: 6})
	assert.ErrorIs(t, err, dice.ErrInvalidCount)

	_, err = combat.DamageRoll(src, combat.DamageParams{DiceCount: 1, DiceSize: 0})
	assert.ErrorIs(t, err, dice.ErrInvalidSides)

	_, err = combat.DamageRoll(src, combat.DamageParams{DiceCount: 1, DiceSize: 6, BehaviorMultiplier: -0.5})
	assert.ErrorIs(t, err, combat.ErrInvalidMultiplier)

	_, err = combat.DamageRoll(src, combat.DamageParams{DiceCount: 2, DiceSize: 6, KeepHighest: 2})
	assert.ErrorContains(t, err, "keep must be in [0, 2)")
	assert.Equal(t, 0, src.Calls(), "invalid input must not consume randomness")
}

func TestDamageRoll_Property_AlwaysAtLeastOne(t *testing.T) {
	src := dice.NewSeededSource(9)
	rapid.Check(t, func(rt *rapid.T) {
		p := combat.DamageParams{
			DiceCount:          rapid.IntRange(1, 4).Draw(rt, "count"),
			DiceSize:           rapid.IntRange(1, 12).Draw(rt, "size"),
			Modifier:           rapid.IntRange(-30, 10).Draw(rt, "mod"),
			Critical:           rapid.Bool().Draw(rt, "crit"),
			BehaviorMultiplier: rapid.Float64Range(0, 3).Draw(rt, "mult"),
		}
		r, err := combat.DamageRoll(src, p)
		require.NoError(rt, err)
		assert.GreaterOrEqual(rt, r.Damage, 1)
		if p.Critical {
			assert.Len(rt, r.CritRolls, p.DiceCount)
		}
	})
}

func TestInitiativeRoll(t *testing.T) {
	r, err := combat.InitiativeRoll(testutil.NewSequenceSource(10), 14, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, r.Die)
	assert.Equal(t, 5, r.Modifier)
	assert.Equal(t, 15, r.Total)

	r, err = combat.FlatInitiative(testutil.NewSequenceSource(10), 14, 1)
	require.NoError(t, err)
	assert.Equal(t, 13, r.Total)
	assert.Equal(t, "initiative d20 10 +3 = 13", r.Breakdown)
}

func TestLuckRoll(t *testing.T) {
	r := combat.LuckRoll(testutil.NewSequenceSource(50), combat.DefaultLuckThreshold, 0)
	assert.True(t, r.Success)
	assert.Equal(t, 50, r.Roll)

	r = combat.LuckRoll(testutil.NewSequenceSource(51), combat.DefaultLuckThreshold, 0)
	assert.False(t, r.Success)

	r = combat.LuckRoll(testutil.NewSequenceSource(55), combat.DefaultLuckThreshold, 5)
	assert.True(t, r.Success)
	assert.Equal(t, 55, r.Target)
}

func TestPercentileRoll_Property_InRange(t *testing.T) {
	src := dice.NewSeededSource(21)
	rapid.Check(t, func(rt *rapid.T) {
		_ = rapid.Int().Draw(rt, "tick")
		v := combat.PercentileRoll(src)
		assert.GreaterOrEqual(rt, v, 1)
		assert.LessOrEqual(rt, v, 100)
	})
}
