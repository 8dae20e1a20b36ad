package engine

// SubsurfaceFlow runs the layered 3D stencil: wellspring injection, then
// vertical transfer, horizontal transfer, and overflow cascade in strict
// order on fresh snapshots (spec §4.5). This is the most expensive kernel
// in the engine and the one the connectivity cache exists to protect.
func SubsurfaceFlow(s *State) {
	injectWellsprings(s)
	verticalTransfer(s)
	horizontalTransfer(s)
	overflowCascade(s)
}

// injectWellsprings adds wellspring_grid(x,y) units into the configured
// injection layer, drawn from water_pool.free. A well that cannot draw its
// full request simply injects less and logs wellspring_dry (spec §4.5
// "Wellspring injection", §7 Resource-exhaustion).
func injectWellsprings(s *State) {
	injectLayer := Layer(s.cfg.Subsurface.InjectionLayer)
	for y := 0; y < s.H; y++ {
		for x := 0; x < s.W; x++ {
			i2 := s.Idx2(x, y)
			want := s.Wellspring[i2]
			if want <= 0 {
				continue
			}
			got := s.Pool.Draw(int64(want))
			if got <= 0 {
				s.events.PushCell(s.Tick, EventWellspringDry, x, y, 0, "wellspring dry")
				continue
			}
			i3 := s.Idx3(injectLayer, x, y)
			s.SubsurfaceWater[i3] += int32(got)
			if got < int64(want) {
				s.events.PushCell(s.Tick, EventWellspringDry, x, y, float64(want-got), "wellspring partially dry")
			}
			s.events.PushCell(s.Tick, EventWaterDrawn, x, y, float64(got), "wellspring draw")
		}
	}
}

// verticalTransfer implements spec §4.5(a): gravitational down-flow and
// capillary up-flow between each adjacent layer pair, computed against a
// single snapshot and applied as accumulated deltas.
func verticalTransfer(s *State) {
	snapshot := append([]int32(nil), s.SubsurfaceWater...)
	delta := make([]int32, len(s.SubsurfaceWater))
	capRate := s.cfg.Subsurface.CapillaryRiseRate

	for u := s.L - 1; u >= 1; u-- {
		l := u - 1
		for y := 0; y < s.H; y++ {
			for x := 0; x < s.W; x++ {
				iu := s.Idx3(Layer(u), x, y)
				il := s.Idx3(Layer(l), x, y)

				// Gravitational down: u -> l.
				srcU := snapshot[iu]
				if srcU > 0 {
					permU := s.PermeabilityVert[iu]
					down := int32(float64(srcU) * float64(permU))
					capL := s.LayerCapacity(Layer(l), x, y) - snapshot[il] - delta[il]
					if down > capL {
						down = capL
					}
					// Bound by what u still holds after the pair above
					// (u+1, u) has been applied, capillary loss included.
					if avail := srcU + delta[iu]; down > avail {
						down = avail
					}
					if down > 0 {
						delta[iu] -= down
						delta[il] += down
					}
				}

				// Capillary up: l -> u, a small fixed fraction of the
				// lower layer's water, weighted by how locally low the
				// surface is (spec §4.5(a): "cells at locally lower
				// elevation receive more when aggregated to the cell"),
				// bounded by the upper layer's remaining capacity.
				srcL := snapshot[il]
				if srcL > 0 {
					up := int32(float64(srcL) * capRate * capillaryReliefWeight(s, x, y))
					capU := s.LayerCapacity(Layer(u), x, y) - snapshot[iu] - delta[iu]
					if up > capU {
						up = capU
					}
					if up > srcL {
						up = srcL
					}
					if up > 0 {
						delta[il] -= up
						delta[iu] += up
					}
				}
			}
		}
	}

	for i := range s.SubsurfaceWater {
		v := s.SubsurfaceWater[i] + delta[i]
		if v < 0 {
			v = 0
		}
		s.SubsurfaceWater[i] = v
	}
}

// capillaryReliefWeight scales capillary rise by how far a cell sits below
// its 4-neighbor average elevation, in [0.5, 1.5]: local basins pull up
// more groundwater than local ridges (spec §4.5(a) elevation-weighted
// distribution rule).
func capillaryReliefWeight(s *State, x, y int) float64 {
	elev := float64(s.ElevationGrid[s.Idx2(x, y)])
	var sum float64
	var n int
	for _, d := range cardinal4 {
		nx, ny := x+d.dx, y+d.dy
		if !s.InBounds(nx, ny) {
			continue
		}
		sum += float64(s.ElevationGrid[s.Idx2(nx, ny)])
		n++
	}
	if n == 0 {
		return 1
	}
	relief := sum/float64(n) - elev
	weight := 1 + relief*0.1
	if weight < 0.5 {
		weight = 0.5
	}
	if weight > 1.5 {
		weight = 1.5
	}
	return weight
}

// horizontalTransfer implements spec §4.5(b): per-layer Darcy-style
// transfer driven by hydraulic head, gated by the connectivity cache.
func horizontalTransfer(s *State) {
	rate := s.cfg.Subsurface.HorizRate
	var edgeLoss int64

	for l := 0; l < s.L; l++ {
		layer := Layer(l)
		head := s.computeHead(layer)
		snapshot := make([]int32, s.W*s.H)
		for y := 0; y < s.H; y++ {
			for x := 0; x < s.W; x++ {
				snapshot[s.Idx2(x, y)] = s.SubsurfaceWater[s.Idx3(layer, x, y)]
			}
		}
		delta := make([]int32, s.W*s.H)

		for y := 0; y < s.H; y++ {
			for x := 0; x < s.W; x++ {
				i2 := s.Idx2(x, y)
				i3 := s.Idx3(layer, x, y)
				srcWater := snapshot[i2]
				if srcWater <= 0 {
					continue
				}
				perm := s.PermeabilityHoriz[i3]

				for d, n := range cardinal4 {
					nx, ny := x+n.dx, y+n.dy
					if !s.connectivity.connected(layer, x, y, d) {
						// Disconnected (zero depth on either side) or an
						// edge: edge losses are still tracked explicitly.
						if !s.InBounds(nx, ny) {
							remaining := srcWater + delta[i2]
							dh := head[i2]
							flow := int32(dh * float64(perm) * rate)
							if flow > remaining {
								flow = remaining
							}
							if flow > 0 {
								delta[i2] -= flow
								edgeLoss += int64(flow)
							}
						}
						continue
					}
					ni2 := s.Idx2(nx, ny)
					ni3 := s.Idx3(layer, nx, ny)
					dh := head[i2] - head[ni2]
					if dh <= 0 {
						continue
					}
					flow := int32(dh * float64(perm) * rate)
					if flow <= 0 {
						continue
					}
					available := srcWater + delta[i2]
					if flow > available {
						flow = available
					}
					capN := s.LayerCapacity(layer, nx, ny) - snapshot[ni2] - delta[ni2]
					if flow > capN {
						flow = capN
					}
					if flow <= 0 {
						continue
					}
					delta[i2] -= flow
					delta[ni2] += flow
				}
			}
		}

		for y := 0; y < s.H; y++ {
			for x := 0; x < s.W; x++ {
				i2 := s.Idx2(x, y)
				i3 := s.Idx3(layer, x, y)
				v := s.SubsurfaceWater[i3] + delta[i2]
				if v < 0 {
					v = 0
				}
				s.SubsurfaceWater[i3] = v
			}
		}
	}

	if edgeLoss > 0 {
		s.Pool.DepositEdgeRunoff(edgeLoss)
		s.events.Push(Event{Tick: s.Tick, Kind: EventEdgeRunoff, HasAmount: true, Amount: float64(edgeLoss), Message: "subsurface edge runoff"})
	}
}

// computeHead returns the per-cell hydraulic head for a layer (spec
// §4.5(b)): bedrock + material above and including this layer, plus the
// layer's fractional fill.
func (s *State) computeHead(l Layer) []float64 {
	head := make([]float64, s.W*s.H)
	for y := 0; y < s.H; y++ {
		for x := 0; x < s.W; x++ {
			i2 := s.Idx2(x, y)
			material := s.BedrockBase[i2]
			for k := 0; k <= int(l); k++ {
				material += s.TerrainLayers[int(Layer(k))*s.W*s.H+i2]
			}
			i3 := s.Idx3(l, x, y)
			depth := s.TerrainLayers[i3]
			porosity := s.Porosity[i3]
			denom := porosity * float32(depth)
			if denom < 1 {
				denom = 1
			}
			fill := float64(s.SubsurfaceWater[i3]) / float64(denom)
			head[i2] = float64(material) + fill
		}
	}
	return head
}

// overflowCascade implements spec §4.5(c): after vertical and horizontal
// transfer, any cell exceeding its layer capacity spills upward in a
// single bottom-to-top pass; excess leaving the topmost layer becomes
// surface water.
func overflowCascade(s *State) {
	for y := 0; y < s.H; y++ {
		for x := 0; x < s.W; x++ {
			for l := 0; l < s.L; l++ {
				layer := Layer(l)
				i3 := s.Idx3(layer, x, y)
				cap := s.LayerCapacity(layer, x, y)
				excess := s.SubsurfaceWater[i3] - cap
				if excess <= 0 {
					continue
				}
				s.SubsurfaceWater[i3] = cap
				if l == s.L-1 {
					s.WaterGrid[s.Idx2(x, y)] += excess
				} else {
					next := s.Idx3(Layer(l+1), x, y)
					s.SubsurfaceWater[next] += excess
				}
			}
		}
	}
}
