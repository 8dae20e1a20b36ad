package engine

// Seepage moves surface water into the topmost non-empty soil layer,
// governed by that layer's vertical permeability (spec §4.4).
func Seepage(s *State) {
	rate := s.cfg.Flow.SurfaceSeepageRate
	for y := 0; y < s.H; y++ {
		for x := 0; x < s.W; x++ {
			i2 := s.Idx2(x, y)
			surface := s.WaterGrid[i2]
			if surface <= 0 {
				continue
			}
			l, ok := s.topmostNonEmpty(x, y)
			if !ok {
				continue
			}
			i3 := s.Idx3(l, x, y)
			perm := s.PermeabilityVert[i3]
			transfer := int32(float64(surface) * rate * float64(perm))
			if transfer <= 0 {
				continue
			}
			capacity := s.LayerCapacity(l, x, y) - s.SubsurfaceWater[i3]
			if transfer > capacity {
				transfer = capacity
			}
			if transfer <= 0 {
				continue
			}
			s.WaterGrid[i2] -= transfer
			s.SubsurfaceWater[i3] += transfer
		}
	}
}
