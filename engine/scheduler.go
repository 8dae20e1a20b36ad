package engine

import (
	"math"
	"math/rand"
)

// PhaseHook is called with a subsystem ID immediately before that
// subsystem runs, letting a caller (cmd/oasis, telemetry) time phases
// without the engine package depending on a telemetry type.
type PhaseHook func(subsystemID string)

// Scheduler advances a State one tick at a time per the fixed phase table
// (spec §5): tick-mod-4 dispatch, end-of-day processing, periodic wind
// exposure accumulation, and the day/heat curve.
type Scheduler struct {
	rng      *rand.Rand
	hook     PhaseHook
	registry *SubsystemRegistry
}

// NewScheduler creates a scheduler seeded from the state's world seed.
func NewScheduler(s *State) *Scheduler {
	return &Scheduler{
		rng:      rand.New(rand.NewSource(s.seed + 1)),
		registry: NewSubsystemRegistry(),
	}
}

// SetPhaseHook installs a callback invoked before each subsystem runs.
func (sch *Scheduler) SetPhaseHook(hook PhaseHook) {
	sch.hook = hook
}

func (sch *Scheduler) run(id string, fn func()) {
	if sch.hook != nil {
		sch.hook(id)
	}
	fn()
}

// Tick advances the simulation by exactly one tick (spec §5). Never
// returns an error and never retries: the subsystems clamp negative cell
// values in place themselves, and those clamps are not recorded in the
// event log.
func (sch *Scheduler) Tick(s *State) {
	s.RebuildElevation()

	switch s.Tick % 4 {
	case 0:
		sch.run("surface_flow", func() { SurfaceFlow(s) })
		sch.run("seepage", func() { Seepage(s) })
		sch.run("evaporation", func() { Evaporation(s) })
		sch.run("atmosphere", func() { Atmosphere(s, sch.rng) })
		sch.run("rain", func() { Rain(s) })
	case 1:
		sch.run("evaporation", func() { Evaporation(s) })
		sch.run("subsurface_flow", func() { SubsurfaceFlow(s) })
		sch.run("moisture_ema", func() { updateMoistureEMA(s) })
	case 2:
		sch.run("surface_flow", func() { SurfaceFlow(s) })
		sch.run("evaporation", func() { Evaporation(s) })
		sch.run("atmosphere", func() { Atmosphere(s, sch.rng) })
		sch.run("rain", func() { Rain(s) })
	case 3:
		sch.run("evaporation", func() { Evaporation(s) })
	}

	sch.run("structures", func() { Structures(s) })

	if s.Tick%int64(s.cfg.Scheduler.WindExposureEveryN) == 0 {
		sch.run("wind_exposure", func() { accumulateWindExposure(s) })
	}

	sch.updateDayPhaseAndHeat(s)

	s.Tick++
	if s.Tick%int64(s.cfg.Scheduler.DayLengthTicks) == 0 {
		sch.runEndOfDay(s)
	}
}

// runEndOfDay applies the once-per-day subsystems and resets their
// accumulators (spec §5 "end of day").
func (sch *Scheduler) runEndOfDay(s *State) {
	sch.run("biomes", func() { Biomes(s) })
	sch.run("erosion", func() { Erosion(s) })
}

// accumulateWindExposure adds the current wind magnitude into each cell's
// daily wind-exposure accumulator, read by wind erosion (spec §4.8).
func accumulateWindExposure(s *State) {
	for i := 0; i < s.W*s.H; i++ {
		wx, wy := s.Wind[i*2], s.Wind[i*2+1]
		s.WindExposure[i] += windMagnitude(wx, wy)
	}
}

// updateDayPhaseAndHeat advances the day/night phase and the heat curve
// from the tick's position within the day (spec §4.1).
func (sch *Scheduler) updateDayPhaseAndHeat(s *State) {
	dayLen := int64(s.cfg.Scheduler.DayLengthTicks)
	if dayLen < 1 {
		dayLen = 1
	}
	pos := s.Tick % dayLen
	frac := float64(pos) / float64(dayLen)

	switch {
	case frac < 0.25:
		s.DayPhase = Dawn
	case frac < 0.5:
		s.DayPhase = Day
	case frac < 0.75:
		s.DayPhase = Dusk
	default:
		s.DayPhase = Night
	}

	// Heat follows a single sinusoid peaking at midday (frac=0.375, the
	// middle of the Day phase) and troughing at midnight.
	angle := 2 * math.Pi * (frac - 0.375)
	s.Heat = s.cfg.Scheduler.HeatBaseline + s.cfg.Scheduler.HeatAmplitude*math.Cos(angle)
	if s.Heat < 0 {
		s.Heat = 0
	}
	if s.Heat > 1 {
		s.Heat = 1
	}
}
