package engine

import "testing"

// S1 Still pond: a flat 3x3 grid with all water on the center cell should
// approach a uniform distribution under repeated SurfaceFlow, conserving
// total volume exactly (spec §8 S1).
func TestSurfaceFlowStillPond(t *testing.T) {
	s := newTestState(t, 3, 3)
	fillFlat(s, 10)
	s.WaterGrid[s.Idx2(1, 1)] = 100

	for i := 0; i < 20; i++ {
		SurfaceFlow(s)
	}

	var sum int32
	var min, max int32 = 1 << 30, -(1 << 30)
	for _, v := range s.WaterGrid {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if sum != 100 {
		t.Fatalf("total water not conserved: got %d, want 100", sum)
	}
	if max-min > 4 {
		t.Fatalf("distribution did not equalize: min=%d max=%d", min, max)
	}
}

// S2 Downhill river: a 10x1 descending strip fed at the high end should
// produce edge runoff at the low end, with surface water plus edge runoff
// equal to the total injected (spec §8 S2).
func TestSurfaceFlowDownhillRiver(t *testing.T) {
	s := newTestState(t, 10, 1)
	for x := 0; x < 10; x++ {
		s.BedrockBase[s.Idx2(x, 0)] = int32(9 - x)
	}
	s.MarkTerrainChanged()
	s.RebuildElevation()

	const perTick = 50
	const ticks = 100
	for i := 0; i < ticks; i++ {
		s.WaterGrid[s.Idx2(0, 0)] += perTick
		SurfaceFlow(s)
	}

	if s.Pool.EdgeRunoffTotal <= 0 {
		t.Fatalf("expected edge runoff at the downhill end, got %d", s.Pool.EdgeRunoffTotal)
	}

	var onGrid int64
	for _, v := range s.WaterGrid {
		onGrid += int64(v)
	}
	total := onGrid + s.Pool.EdgeRunoffTotal
	want := int64(perTick * ticks)
	if total != want {
		t.Fatalf("water not conserved: grid(%d)+edge_runoff(%d)=%d, want %d", onGrid, s.Pool.EdgeRunoffTotal, total, want)
	}
}
