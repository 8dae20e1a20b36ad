package engine

// Evaporation removes water from the surface grid (and, once surface water
// is exhausted, from the topmost soil layer) and routes it to the
// atmospheric reserve, modulated by heat, humidity and wind (spec §4.6).
func Evaporation(s *State) {
	cfg := s.cfg.Evaporation
	var totalRemoved int64

	heat := clampFloat(float32(s.Heat), 0, 1)

	for y := 0; y < s.H; y++ {
		for x := 0; x < s.W; x++ {
			i2 := s.Idx2(x, y)
			modifier := evaporationModifier(s, i2, cfg.WindFactor, cfg.ModifierLow, cfg.ModifierHigh)
			rate := baseEvapRate(s.KindGrid[i2]) * float64(heat) * modifier
			if s.StructureID[i2] != -1 {
				rate *= s.CisternEvaporationDamping(x, y)
			}
			if rate <= 0 {
				continue
			}

			surface := s.WaterGrid[i2]
			if surface > 0 {
				removed := int32(float64(surface) * rate)
				if removed < 1 && surface > 0 {
					removed = 1
				}
				if removed > surface {
					removed = surface
				}
				s.WaterGrid[i2] -= removed
				totalRemoved += int64(removed)
				continue
			}

			l, ok := s.topmostNonEmpty(x, y)
			if !ok {
				continue
			}
			i3 := s.Idx3(l, x, y)
			soilWater := s.SubsurfaceWater[i3]
			if soilWater <= 0 {
				continue
			}
			removed := int32(float64(soilWater) * rate * cfg.SoilBlendScale)
			if removed <= 0 {
				continue
			}
			if removed > soilWater {
				removed = soilWater
			}
			s.SubsurfaceWater[i3] -= removed
			totalRemoved += int64(removed)
		}
	}

	if totalRemoved > 0 {
		s.Pool.DepositAtmospheric(totalRemoved)
	}
}

// evaporationModifier combines humidity and wind into a dimensionless
// multiplier clamped to [ModifierLow, ModifierHigh]: dry, windy cells
// evaporate fastest (spec §4.6 `clamp((1-humidity)*(1+k*|wind|), LOW,
// HIGH)`). Heat and biome are applied separately as the other two factors
// of `rate`.
func evaporationModifier(s *State, i2 int, windFactor, low, high float64) float64 {
	humidity := float64(s.Humidity[i2])
	wx, wy := s.Wind[i2*2], s.Wind[i2*2+1]
	wind := float64(windMagnitude(wx, wy))

	mod := (1 - humidity) * (1 + windFactor*wind)
	if mod < low {
		mod = low
	}
	if mod > high {
		mod = high
	}
	return mod
}

// baseEvapRate is BASE_EVAP(biome) (spec §4.6): Dune sand and Salt crust
// expose the most surface area to dry air, Rock is mostly sealed, Wadi
// vegetation shades its cell, Flat is the unmodified baseline.
func baseEvapRate(b Biome) float64 {
	switch b {
	case BiomeDune:
		return 1.3
	case BiomeSalt:
		return 1.2
	case BiomeRock:
		return 0.6
	case BiomeWadi:
		return 0.7
	default:
		return 1.0
	}
}
