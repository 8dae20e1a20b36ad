package engine

// Erosion runs once per day: hydraulic erosion transports material from
// cells whose accumulated surface-water passage exceeded a threshold to
// their steepest downhill neighbor, and wind erosion (if enabled) does the
// same for cells whose wind-exposure accumulator crossed its threshold
// (spec §4.8). Both accumulators are reset at the end of the pass.
func Erosion(s *State) {
	hydraulicErosion(s)
	if s.cfg.Erosion.WindErosionEnabled {
		windErosion(s)
	}
	s.RebuildElevation()
	for i := range s.WaterPassage {
		s.WaterPassage[i] = 0
	}
	for i := range s.WindExposure {
		s.WindExposure[i] = 0
	}
}

func hydraulicErosion(s *State) {
	threshold := float32(s.cfg.Erosion.ThresholdWater)
	maxTransport := int32(s.cfg.Erosion.MaxTransportPerCell)

	for y := 0; y < s.H; y++ {
		for x := 0; x < s.W; x++ {
			i2 := s.Idx2(x, y)
			if s.WaterPassage[i2] < threshold {
				continue
			}
			nx, ny, ok := steepestDownhill(s, x, y)
			if !ok {
				continue
			}
			transportCell(s, x, y, nx, ny, maxTransport, EventErosion, "hydraulic erosion")
		}
	}
}

func windErosion(s *State) {
	threshold := float32(s.cfg.Erosion.ThresholdWind)
	maxTransport := int32(s.cfg.Erosion.MaxTransportPerCell)

	for y := 0; y < s.H; y++ {
		for x := 0; x < s.W; x++ {
			i2 := s.Idx2(x, y)
			if s.WindExposure[i2] < threshold {
				continue
			}
			wx, wy := s.Wind[i2*2], s.Wind[i2*2+1]
			nx, ny, ok := downwindNeighbor(s, x, y, wx, wy)
			if !ok {
				continue
			}
			transportCell(s, x, y, nx, ny, maxTransport, EventErosion, "wind erosion")
		}
	}
}

// steepestDownhill finds the lowest-elevation in-bounds neighbor, breaking
// ties by neighbor8's fixed iteration order (spec §4.8 "lexicographic
// tie-break").
func steepestDownhill(s *State, x, y int) (int, int, bool) {
	cur := s.TotalElevation(x, y)
	best := cur
	bestX, bestY := 0, 0
	found := false
	for _, n := range neighbor8 {
		nx, ny := x+n.dx, y+n.dy
		if !s.InBounds(nx, ny) {
			continue
		}
		e := s.TotalElevation(nx, ny)
		if e < best {
			best = e
			bestX, bestY = nx, ny
			found = true
		}
	}
	return bestX, bestY, found
}

// downwindNeighbor selects the in-bounds neighbor whose offset most
// closely aligns with the wind vector, breaking ties by neighbor8 order.
func downwindNeighbor(s *State, x, y int, wx, wy float32) (int, int, bool) {
	if wx == 0 && wy == 0 {
		return 0, 0, false
	}
	bestDot := float32(-1 << 30)
	bestX, bestY := 0, 0
	found := false
	for _, n := range neighbor8 {
		nx, ny := x+n.dx, y+n.dy
		if !s.InBounds(nx, ny) {
			continue
		}
		dot := float32(n.dx)*wx + float32(n.dy)*wy
		if dot > bestDot {
			bestDot = dot
			bestX, bestY = nx, ny
			found = true
		}
	}
	if bestDot <= 0 {
		return 0, 0, false
	}
	return bestX, bestY, found
}

// transportCell moves up to maxAmount units of material from the topmost
// non-empty layer of (x,y) to the topmost layer of (nx,ny), logging an
// erosion event. Capped at the source layer's remaining depth.
func transportCell(s *State, x, y, nx, ny int, maxAmount int32, kind EventKind, msg string) {
	l, ok := s.topmostNonEmpty(x, y)
	if !ok {
		return
	}
	i3 := s.Idx3(l, x, y)
	depth := s.TerrainLayers[i3]
	amount := maxAmount
	if amount > depth {
		amount = depth
	}
	if amount <= 0 {
		return
	}
	removed := s.removeTopMaterial(x, y, amount)
	if removed <= 0 {
		return
	}
	s.addTopMaterial(nx, ny, removed)
	s.MarkTerrainChanged()
	s.MarkDirty(x, y)
	s.MarkDirty(nx, ny)
	s.events.PushCell(s.Tick, kind, x, y, float64(removed), msg)
}
