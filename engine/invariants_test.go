package engine

import "testing"

// Invariant #5 (closed system): surface flow, seepage and evaporation move
// water between WaterGrid, SubsurfaceWater and Pool, but State.Total()
// must never change (spec §3 invariant 5).
func TestMassConservedAcrossSubsystems(t *testing.T) {
	s := newTestState(t, 6, 6)
	for l := 0; l < s.L; l++ {
		for y := 0; y < s.H; y++ {
			for x := 0; x < s.W; x++ {
				i3 := s.Idx3(Layer(l), x, y)
				s.TerrainLayers[i3] = 5
				s.TerrainMaterials[i3] = MaterialLoam
				s.Porosity[i3] = 0.4
				s.PermeabilityVert[i3] = 0.5
				s.PermeabilityHoriz[i3] = 0.5
			}
		}
	}
	for y := 0; y < s.H; y++ {
		for x := 0; x < s.W; x++ {
			s.BedrockBase[s.Idx2(x, y)] = int32((x + y) % 3)
		}
	}
	s.MarkTerrainChanged()
	s.RebuildElevation()

	s.WaterGrid[s.Idx2(3, 3)] = 200

	before := s.Total()

	for tick := 0; tick < 10; tick++ {
		SurfaceFlow(s)
		Seepage(s)
		SubsurfaceFlow(s)
		Evaporation(s)

		got := s.Total()
		if got != before {
			t.Fatalf("tick %d: total water drifted: have %d want %d", tick, got, before)
		}
	}
}

// Invariant #3 (capacity): subsurface water must never exceed a layer's
// porosity*depth capacity at any cell, across repeated subsurface and
// seepage passes (spec §3 invariant 3).
func TestSubsurfaceWaterNeverExceedsCapacity(t *testing.T) {
	s := newTestState(t, 4, 4)
	for l := 0; l < s.L; l++ {
		for y := 0; y < s.H; y++ {
			for x := 0; x < s.W; x++ {
				i3 := s.Idx3(Layer(l), x, y)
				s.TerrainLayers[i3] = 8
				s.TerrainMaterials[i3] = MaterialLoam
				s.Porosity[i3] = 0.25
				s.PermeabilityVert[i3] = 0.8
				s.PermeabilityHoriz[i3] = 0.8
			}
		}
	}
	s.MarkTerrainChanged()
	s.RebuildElevation()

	for y := 0; y < s.H; y++ {
		for x := 0; x < s.W; x++ {
			s.WaterGrid[s.Idx2(x, y)] = 50
		}
	}

	for tick := 0; tick < 20; tick++ {
		Seepage(s)
		SubsurfaceFlow(s)
		for l := 0; l < s.L; l++ {
			for y := 0; y < s.H; y++ {
				for x := 0; x < s.W; x++ {
					i3 := s.Idx3(Layer(l), x, y)
					if cap := s.LayerCapacity(Layer(l), x, y); s.SubsurfaceWater[i3] > cap {
						t.Fatalf("tick %d layer %d (%d,%d): subsurface water %d exceeds capacity %d", tick, l, x, y, s.SubsurfaceWater[i3], cap)
					}
				}
			}
		}
	}
}

// Invariant #6 (elevation identity): elevation_grid must always equal
// bedrock_base plus the sum of terrain_layers after RebuildElevation, even
// after player actions mutate the layer stack (spec §3 invariant 6).
func TestElevationIdentityHoldsAfterActions(t *testing.T) {
	s := newTestState(t, 3, 3)
	fillFlat(s, 10)

	s.RaiseGround(1, 1)
	s.LowerGround(0, 0)
	s.DigTrench([2]int{0, 2}, DirEast, 3, TrenchFlat)

	for y := 0; y < s.H; y++ {
		for x := 0; x < s.W; x++ {
			i2 := s.Idx2(x, y)
			want := s.BedrockBase[i2]
			for l := 0; l < s.L; l++ {
				want += s.TerrainLayers[s.Idx3(Layer(l), x, y)]
			}
			if got := s.ElevationGrid[i2]; got != want {
				t.Fatalf("cell (%d,%d): elevation %d != bedrock+layers %d", x, y, got, want)
			}
		}
	}
}

// Invariant #4 (material/depth coupling): a layer's material must be Empty
// exactly when its depth is zero (spec §3 invariant 4).
func TestMaterialEmptyIffDepthZero(t *testing.T) {
	s := newTestState(t, 2, 2)
	fillFlat(s, 10)

	for i := 0; i < 5; i++ {
		s.LowerGround(0, 0)
	}
	s.RaiseGround(0, 0)
	s.RaiseGround(0, 0)

	for l := 0; l < s.L; l++ {
		i3 := s.Idx3(Layer(l), 0, 0)
		depth := s.TerrainLayers[i3]
		mat := s.TerrainMaterials[i3]
		if depth == 0 && mat != MaterialEmpty {
			t.Fatalf("layer %d has zero depth but material %v", l, mat)
		}
		if depth > 0 && mat == MaterialEmpty {
			t.Fatalf("layer %d has depth %d but material Empty", l, depth)
		}
	}
}

// Invariant #7 (no edge wrap): no subsystem may read or write across the
// grid boundary; water that would exit the edge is accounted as edge
// runoff, never wrapped to the opposite side (spec §3 invariant 7, §8 S2).
func TestSurfaceFlowDoesNotWrapAtEdges(t *testing.T) {
	s := newTestState(t, 3, 1)
	for x := 0; x < 3; x++ {
		s.BedrockBase[s.Idx2(x, 0)] = int32(2 - x)
	}
	s.MarkTerrainChanged()
	s.RebuildElevation()
	s.WaterGrid[s.Idx2(0, 0)] = 100

	for i := 0; i < 30; i++ {
		SurfaceFlow(s)
	}

	if s.Pool.EdgeRunoffTotal <= 0 {
		t.Fatalf("expected downhill water to leave via edge runoff, not wrap")
	}
}
