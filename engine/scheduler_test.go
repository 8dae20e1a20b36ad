package engine

import "testing"

// A full day of ticks should visit all four DayPhase values and advance
// the tick counter by exactly one day (spec §5, §4.1).
func TestSchedulerCyclesDayPhases(t *testing.T) {
	s := newTestState(t, 4, 4)
	fillFlat(s, 10)
	s.cfg.Scheduler.DayLengthTicks = 8
	s.cfg.Scheduler.WindExposureEveryN = 100 // avoid interference, not under test here

	sch := NewScheduler(s)

	seen := map[DayPhase]bool{}
	for i := 0; i < int(s.cfg.Scheduler.DayLengthTicks); i++ {
		sch.Tick(s)
		seen[s.DayPhase] = true
	}

	for _, phase := range []DayPhase{Dawn, Day, Dusk, Night} {
		if !seen[phase] {
			t.Fatalf("day cycle of length %d never visited phase %v", s.cfg.Scheduler.DayLengthTicks, phase)
		}
	}
	if s.Tick != int64(s.cfg.Scheduler.DayLengthTicks) {
		t.Fatalf("tick counter = %d, want %d", s.Tick, s.cfg.Scheduler.DayLengthTicks)
	}
}

// Heat should stay within [0,1] across an entire day and peak strictly
// above its midnight trough (spec §4.1 sinusoidal heat curve).
func TestSchedulerHeatCurveBounded(t *testing.T) {
	s := newTestState(t, 3, 3)
	fillFlat(s, 10)
	s.cfg.Scheduler.DayLengthTicks = 16
	s.cfg.Scheduler.WindExposureEveryN = 1000

	sch := NewScheduler(s)

	var minHeat, maxHeat = 1.0, 0.0
	for i := 0; i < int(s.cfg.Scheduler.DayLengthTicks)*2; i++ {
		sch.Tick(s)
		if s.Heat < 0 || s.Heat > 1 {
			t.Fatalf("tick %d: heat %f left [0,1]", i, s.Heat)
		}
		if s.Heat < minHeat {
			minHeat = s.Heat
		}
		if s.Heat > maxHeat {
			maxHeat = s.Heat
		}
	}
	if maxHeat <= minHeat {
		t.Fatalf("heat never varied: min=%f max=%f", minHeat, maxHeat)
	}
}

// The phase hook fires once per dispatched subsystem per tick, letting a
// caller time phases externally without the engine importing telemetry.
func TestSchedulerPhaseHookFires(t *testing.T) {
	s := newTestState(t, 3, 3)
	fillFlat(s, 10)
	s.cfg.Scheduler.WindExposureEveryN = 1000

	sch := NewScheduler(s)
	var fired []string
	sch.SetPhaseHook(func(id string) { fired = append(fired, id) })

	sch.Tick(s)

	if len(fired) == 0 {
		t.Fatalf("expected the phase hook to fire at least once")
	}
	found := false
	for _, id := range fired {
		if id == "structures" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected \"structures\" phase to fire every tick, got %v", fired)
	}
}
