package engine

// neighbor8 lists the eight neighbor offsets in the fixed iteration order
// used throughout the engine: cardinals first, then diagonals, so erosion's
// "tie-break lexicographic" rule (spec §4.8) has a stable tie order to break
// against.
var neighbor8 = []struct {
	dx, dy   int
	diagonal bool
}{
	{1, 0, false}, {-1, 0, false}, {0, 1, false}, {0, -1, false},
	{1, 1, true}, {1, -1, true}, {-1, 1, true}, {-1, -1, true},
}

// SurfaceFlow redistributes surface water from higher-total-head cells to
// lower neighbors, damped to prevent oscillation (spec §4.3). Transfers
// are computed against a start-of-tick snapshot and written into a fresh
// buffer (spec §9 "simultaneous update... compute from a snapshot").
func SurfaceFlow(s *State) {
	cfg := s.cfg.Flow
	w, h := s.W, s.H
	rate := cfg.Rate
	threshold := int32(cfg.Threshold)
	atten := s.cfg.Derived.DiagonalAttenuation

	head := make([]int32, w*h)
	for i := range head {
		head[i] = s.ElevationGrid[i] + s.WaterGrid[i]
	}

	outgoing := make([]int32, w*h)
	incoming := make([]int32, w*h)
	var edgeLoss int64

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := s.Idx2(x, y)
			srcWater := s.WaterGrid[i]
			if srcWater <= 0 {
				continue
			}
			maxPerNeighbor := srcWater / 8

			for _, n := range neighbor8 {
				nx, ny := x+n.dx, y+n.dy
				delta := head[i]
				var transfer int32
				if s.InBounds(nx, ny) {
					ni := s.Idx2(nx, ny)
					delta -= head[ni]
					if delta <= threshold {
						continue
					}
					transfer = int32(float64(delta) * rate)
					if n.diagonal {
						transfer = int32(float64(transfer) * atten)
					}
					if transfer > maxPerNeighbor {
						transfer = maxPerNeighbor
					}
					if transfer <= 0 {
						continue
					}
					outgoing[i] += transfer
					incoming[ni] += transfer
					s.WaterPassage[i] += float32(transfer)
				} else {
					// Off-grid neighbors have no stored head. Rather than
					// treating the void as a head-0 sink (which would bleed
					// every boundary cell dry on perfectly flat terrain),
					// extrapolate the boundary's own terrain trend: only
					// let water cross the edge where the interior actually
					// slopes down toward it, continuing that slope past
					// the boundary. Flat or uphill-away-from-edge terrain
					// is a wall — no egress regardless of water depth.
					ix, iy := x-n.dx, y-n.dy
					if !s.InBounds(ix, iy) {
						continue
					}
					insideElev := s.ElevationGrid[s.Idx2(ix, iy)]
					elev := s.ElevationGrid[i]
					if insideElev <= elev {
						continue
					}
					virtualElev := 2*elev - insideElev
					delta = head[i] - virtualElev
					if delta <= threshold {
						continue
					}
					transfer = int32(float64(delta) * rate)
					if n.diagonal {
						transfer = int32(float64(transfer) * atten)
					}
					if transfer > maxPerNeighbor {
						transfer = maxPerNeighbor
					}
					if transfer <= 0 {
						continue
					}
					outgoing[i] += transfer
					edgeLoss += int64(transfer)
				}
			}
		}
	}

	for i := 0; i < w*h; i++ {
		s.WaterGrid[i] = s.WaterGrid[i] - outgoing[i] + incoming[i]
		if s.WaterGrid[i] < 0 {
			s.WaterGrid[i] = 0
		}
	}

	if edgeLoss > 0 {
		s.Pool.DepositEdgeRunoff(edgeLoss)
		s.events.Push(Event{Tick: s.Tick, Kind: EventEdgeRunoff, HasAmount: true, Amount: float64(edgeLoss), Message: "surface flow edge runoff"})
	}
}
