package telemetry

import "github.com/duskwell/oasis/engine"

// Collector accumulates event counts within a tick window and produces
// WindowStats by sampling a View at flush time.
type Collector struct {
	windowTicks     int64
	windowStartTick int64

	wellspringDrawn      int64
	wellspringDryEvents  int
	erosionEvents        int
	biomeChanges         int
	structuresBuilt      int
	structuresDemolished int
	edgeRunoffEvents     int
	invariantClamps      int
}

// NewCollector creates a stats collector that flushes every windowTicks
// ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: int64(windowTicks)}
}

// RecordEvent folds a single engine event into the current window's
// counters. Callers drain the event log once per tick and call this for
// each new entry.
func (c *Collector) RecordEvent(e engine.Event) {
	switch e.Kind {
	case engine.EventWaterDrawn:
		c.wellspringDrawn += int64(e.Amount)
	case engine.EventWellspringDry:
		c.wellspringDryEvents++
	case engine.EventErosion:
		c.erosionEvents++
	case engine.EventBiomeChange:
		c.biomeChanges++
	case engine.EventStructureBuilt:
		c.structuresBuilt++
	case engine.EventStructureDemolished:
		c.structuresDemolished++
	case engine.EventEdgeRunoff:
		c.edgeRunoffEvents++
	case engine.EventInvariantClamped:
		c.invariantClamps++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Flush samples the given view for population/pool statistics, combines
// them with the window's accumulated event counts into a WindowStats, and
// resets the counters for the next window.
func (c *Collector) Flush(view engine.View) WindowStats {
	w, h := view.Width(), view.Height()

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   view.Tick(),

		WellspringDrawn:      c.wellspringDrawn,
		WellspringDryEvents:  c.wellspringDryEvents,
		ErosionEvents:        c.erosionEvents,
		BiomeChanges:         c.biomeChanges,
		StructuresBuilt:      c.structuresBuilt,
		StructuresDemolished: c.structuresDemolished,
		EdgeRunoffEvents:     c.edgeRunoffEvents,
		InvariantClamps:      c.invariantClamps,
	}

	moisture := make([]float64, 0, w*h)
	var humiditySum float64
	var surfaceWater, subsurfaceWater int64

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			switch view.Biome(x, y) {
			case engine.BiomeFlat:
				stats.FlatCells++
			case engine.BiomeDune:
				stats.DuneCells++
			case engine.BiomeWadi:
				stats.WadiCells++
			case engine.BiomeSalt:
				stats.SaltCells++
			case engine.BiomeRock:
				stats.RockCells++
			}

			moisture = append(moisture, float64(view.Moisture(x, y)))
			humiditySum += float64(view.Humidity(x, y))
			surfaceWater += int64(view.SurfaceWater(x, y))

			for l := 0; l < view.Layers(); l++ {
				subsurfaceWater += int64(view.LayerWater(engine.Layer(l), x, y))
			}
		}
	}

	stats.MoistureMean, stats.MoistureP10, stats.MoistureP50, stats.MoistureP90 = ComputeFloatStats(moisture)
	if w*h > 0 {
		stats.HumidityMean = humiditySum / float64(w*h)
	}
	stats.TotalSurfaceWater = surfaceWater
	stats.TotalSubsurfaceWater = subsurfaceWater

	pool := view.WaterPoolSnapshot()
	stats.PoolFree = pool.Free
	stats.PoolAtmospheric = pool.Atmospheric
	stats.PoolEdgeRunoffTotal = pool.EdgeRunoffTotal
	stats.TotalWaterCheck = surfaceWater + subsurfaceWater + pool.Free + pool.Atmospheric

	c.windowStartTick = view.Tick()
	c.wellspringDrawn = 0
	c.wellspringDryEvents = 0
	c.erosionEvents = 0
	c.biomeChanges = 0
	c.structuresBuilt = 0
	c.structuresDemolished = 0
	c.edgeRunoffEvents = 0
	c.invariantClamps = 0

	return stats
}
