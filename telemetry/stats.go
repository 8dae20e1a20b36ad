package telemetry

import (
	"log/slog"
	"sort"
)

// WindowStats holds aggregated statistics for a tick window (spec §6
// telemetry surface).
type WindowStats struct {
	WindowStartTick int64 `csv:"-"`
	WindowEndTick   int64 `csv:"window_end"`

	// Biome distribution at window end.
	FlatCells int `csv:"flat_cells"`
	DuneCells int `csv:"dune_cells"`
	WadiCells int `csv:"wadi_cells"`
	SaltCells int `csv:"salt_cells"`
	RockCells int `csv:"rock_cells"`

	// Moisture distribution (sampled at window end).
	MoistureMean float64 `csv:"moisture_mean"`
	MoistureP10  float64 `csv:"moisture_p10"`
	MoistureP50  float64 `csv:"moisture_p50"`
	MoistureP90  float64 `csv:"moisture_p90"`

	HumidityMean float64 `csv:"humidity_mean"`

	// Water pools (for closed-system conservation validation).
	TotalSurfaceWater    int64 `csv:"total_surface_water"`
	TotalSubsurfaceWater int64 `csv:"total_subsurface_water"`
	PoolFree             int64 `csv:"pool_free"`
	PoolAtmospheric      int64 `csv:"pool_atmospheric"`
	PoolEdgeRunoffTotal  int64 `csv:"pool_edge_runoff_total"`
	TotalWaterCheck      int64 `csv:"total_water_check"`

	// Events during the window.
	WellspringDrawn     int64 `csv:"wellspring_drawn"`
	WellspringDryEvents int   `csv:"wellspring_dry_events"`
	ErosionEvents       int   `csv:"erosion_events"`
	BiomeChanges        int   `csv:"biome_changes"`
	StructuresBuilt     int   `csv:"structures_built"`
	StructuresDemolished int  `csv:"structures_demolished"`
	EdgeRunoffEvents    int   `csv:"edge_runoff_events"`
	InvariantClamps     int   `csv:"invariant_clamps"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeFloatStats calculates mean and percentiles from a slice of samples,
// used for the moisture distribution over the grid.
func ComputeFloatStats(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(n)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Int("flat_cells", s.FlatCells),
		slog.Int("dune_cells", s.DuneCells),
		slog.Int("wadi_cells", s.WadiCells),
		slog.Int("salt_cells", s.SaltCells),
		slog.Int("rock_cells", s.RockCells),
		slog.Float64("moisture_mean", s.MoistureMean),
		slog.Float64("moisture_p10", s.MoistureP10),
		slog.Float64("moisture_p50", s.MoistureP50),
		slog.Float64("moisture_p90", s.MoistureP90),
		slog.Float64("humidity_mean", s.HumidityMean),
		slog.Int64("total_surface_water", s.TotalSurfaceWater),
		slog.Int64("total_subsurface_water", s.TotalSubsurfaceWater),
		slog.Int64("pool_free", s.PoolFree),
		slog.Int64("pool_atmospheric", s.PoolAtmospheric),
		slog.Int64("pool_edge_runoff_total", s.PoolEdgeRunoffTotal),
		slog.Int64("total_water_check", s.TotalWaterCheck),
		slog.Int64("wellspring_drawn", s.WellspringDrawn),
		slog.Int("wellspring_dry_events", s.WellspringDryEvents),
		slog.Int("erosion_events", s.ErosionEvents),
		slog.Int("biome_changes", s.BiomeChanges),
		slog.Int("structures_built", s.StructuresBuilt),
		slog.Int("structures_demolished", s.StructuresDemolished),
		slog.Int("edge_runoff_events", s.EdgeRunoffEvents),
		slog.Int("invariant_clamps", s.InvariantClamps),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"flat_cells", s.FlatCells,
		"dune_cells", s.DuneCells,
		"wadi_cells", s.WadiCells,
		"salt_cells", s.SaltCells,
		"rock_cells", s.RockCells,
		"moisture_mean", s.MoistureMean,
		"humidity_mean", s.HumidityMean,
		"total_surface_water", s.TotalSurfaceWater,
		"total_subsurface_water", s.TotalSubsurfaceWater,
		"pool_free", s.PoolFree,
		"pool_atmospheric", s.PoolAtmospheric,
		"total_water_check", s.TotalWaterCheck,
		"wellspring_drawn", s.WellspringDrawn,
		"wellspring_dry_events", s.WellspringDryEvents,
		"erosion_events", s.ErosionEvents,
		"biome_changes", s.BiomeChanges,
		"structures_built", s.StructuresBuilt,
		"structures_demolished", s.StructuresDemolished,
		"invariant_clamps", s.InvariantClamps,
	)
}
