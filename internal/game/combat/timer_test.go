package combat_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

func TestRoundTimer_Fires(t *testing.T) {
	var called atomic.Int32
	_ = combat.NewRoundTimer(20*time.Millisecond, func() {
		called.Add(1)
	})
	assert.Eventually(t, func() bool { return called.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestRoundTimer_Stop_PreventsCallback(t *testing.T) {
	var called atomic.Int32
	rt := combat.NewRoundTimer(50*time.Millisecond, func() {
		called.Add(1)
	})
	rt.Stop()
	time.Sleep(80 * time.Millisecond)
	if called.Load() != 0 {
		t.Fatalf("expected callback not called, got %d", called.Load())
	}
}

func TestRoundTimer_StopIdempotent(t *testing.T) {
	rt := combat.NewRoundTimer(50*time.Millisecond, func() {})
	rt.Stop()
	rt.Stop()
	rt.Stop()
}

func TestRealScheduler_AfterFunc(t *testing.T) {
	var called atomic.Int32
	var s combat.Scheduler = combat.RealScheduler{}
	s.AfterFunc(10*time.Millisecond, func() { called.Add(1) })
	assert.Eventually(t, func() bool { return called.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestManualScheduler_FireRunsPending(t *testing.T) {
	s := combat.NewManualScheduler()
	calls := 0
	s.AfterFunc(time.Second, func() { calls++ })
	s.AfterFunc(2*time.Second, func() { calls++ })
	assert.Equal(t, 2, s.Pending())
	assert.Equal(t, 2*time.Second, s.LastDelay())

	assert.Equal(t, 2, s.Fire())
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, s.Pending())
	assert.Equal(t, 0, s.Fire())
}

func TestManualScheduler_StoppedTimerDoesNotFire(t *testing.T) {
	s := combat.NewManualScheduler()
	calls := 0
	tm := s.AfterFunc(time.Second, func() { calls++ })
	tm.Stop()
	assert.Equal(t, 0, s.Pending())
	assert.Equal(t, 0, s.Fire())
	assert.Equal(t, 0, calls)
}

func TestManualScheduler_NestedScheduleWaitsForNextFire(t *testing.T) {
	s := combat.NewManualScheduler()
	order := []int{}
	s.AfterFunc(0, func() {
		order = append(order, 1)
		s.AfterFunc(0, func() { order = append(order, 2) })
	})
	assert.Equal(t, 1, s.Fire())
	assert.Equal(t, []int{1}, order)
	assert.Equal(t, 1, s.Fire())
	assert.Equal(t, []int{1, 2}, order)
}
