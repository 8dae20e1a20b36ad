package engine

import "testing"

// S3 Capacity clamp: a single Topsoil layer of depth 10 and porosity 0.3
// (capacity 3) must never accumulate more subsurface water than its
// capacity, however much surface water is repeatedly fed into it (spec §8
// S3, invariant 3).
func TestSeepageCapacityClamp(t *testing.T) {
	s := newTestState(t, 1, 1)
	s.cfg.Flow.SurfaceSeepageRate = 1.0 // maximize transfer so the clamp is exercised hard

	i3 := s.Idx3(Topsoil, 0, 0)
	s.TerrainLayers[i3] = 10
	s.TerrainMaterials[i3] = MaterialLoam
	s.Porosity[i3] = 0.3
	s.PermeabilityVert[i3] = 1.0
	s.MarkTerrainChanged()
	s.RebuildElevation()

	s.WaterGrid[s.Idx2(0, 0)] = 100

	cap := s.LayerCapacity(Topsoil, 0, 0)
	if cap != 3 {
		t.Fatalf("expected capacity 3, got %d", cap)
	}

	for i := 0; i < 50; i++ {
		Seepage(s)
		if s.SubsurfaceWater[i3] > cap {
			t.Fatalf("tick %d: subsurface water %d exceeded capacity %d", i, s.SubsurfaceWater[i3], cap)
		}
	}
	if s.SubsurfaceWater[i3] != cap {
		t.Fatalf("expected subsurface water to stabilize at capacity %d, got %d", cap, s.SubsurfaceWater[i3])
	}
}
