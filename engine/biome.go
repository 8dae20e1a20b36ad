package engine

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Biomes reclassifies every cell once per day from its elevation
// percentile and its EMA-smoothed moisture (spec §4.9). Elevation
// percentiles are computed once per call via gonum/stat.Quantile rather
// than a hand-rolled histogram. Quantile requires sorted input and does not
// sort, so the elevations are copied and sorted here first.
func Biomes(s *State) {
	updateMoistureEMA(s)

	sorted := make([]float64, len(s.ElevationGrid))
	for i, e := range s.ElevationGrid {
		sorted[i] = float64(e)
	}
	sort.Float64s(sorted)

	highCut := stat.Quantile(s.cfg.Biome.HighElevationPctl, stat.Empirical, sorted, nil)
	lowCut := stat.Quantile(s.cfg.Biome.LowElevationPctl, stat.Empirical, sorted, nil)

	cfg := s.cfg.Biome
	for y := 0; y < s.H; y++ {
		for x := 0; x < s.W; x++ {
			i2 := s.Idx2(x, y)
			elev := float64(s.ElevationGrid[i2])
			moisture := float64(s.Moisture[i2])

			next := classifyBiome(elev, moisture, highCut, lowCut, cfg.DuneMoistureMax, cfg.WadiMoistureMin, cfg.SaltMoistureMin)
			if next != s.KindGrid[i2] {
				s.events.PushCell(s.Tick, EventBiomeChange, x, y, 0, next.String())
				s.KindGrid[i2] = next
				s.MarkDirty(x, y)
			}
		}
	}
}

// classifyBiome applies the rule table in spec §4.9: high ground with low
// moisture is Dune, high ground otherwise is Rock, low ground with high
// moisture is Wadi, low ground with a salt-band moisture reading is Salt,
// everything else is Flat.
func classifyBiome(elev, moisture, highCut, lowCut, duneMoistureMax, wadiMoistureMin, saltMoistureMin float64) Biome {
	if elev >= highCut {
		if moisture <= duneMoistureMax {
			return BiomeDune
		}
		return BiomeRock
	}
	if elev <= lowCut {
		if moisture >= saltMoistureMin {
			return BiomeSalt
		}
		if moisture >= wadiMoistureMin {
			return BiomeWadi
		}
	}
	return BiomeFlat
}

// updateMoistureEMA folds this tick's total water (surface + subsurface)
// into the moisture_grid exponential moving average (spec §4.9, GLOSSARY
// "Moisture"): moisture = alpha*sample + (1-alpha)*moisture.
func updateMoistureEMA(s *State) {
	alpha := float32(s.cfg.Biome.MoistureEMAAlpha)
	for y := 0; y < s.H; y++ {
		for x := 0; x < s.W; x++ {
			i2 := s.Idx2(x, y)
			sample := normalizedWater(s, x, y, i2)
			s.Moisture[i2] = alpha*sample + (1-alpha)*s.Moisture[i2]
		}
	}
}

// normalizedWater expresses a cell's total water as a fraction of a
// saturated reference column, so moisture stays comparable across cells
// with different soil depths.
func normalizedWater(s *State, x, y, i2 int) float32 {
	total := s.CellTotalWater(x, y)
	var capacity int64
	for l := 0; l < s.L; l++ {
		capacity += int64(s.LayerCapacity(Layer(l), x, y))
	}
	if capacity <= 0 {
		return 0
	}
	frac := float32(total) / float32(capacity)
	return clamp01(frac)
}
