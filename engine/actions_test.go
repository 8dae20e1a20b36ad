package engine

import "testing"

// S5 Dig-flat trench: digging Flat from an origin lowers every strip cell
// to the origin's own elevation and spills the removed volume onto the
// strip's two perpendicular neighbor rows, conserving total material
// (spec §4.11 Flat rule, §8 S5, invariant 8).
func TestDigTrenchFlatConservesVolume(t *testing.T) {
	s := newTestState(t, 5, 3) // strip runs along y=1, rows y=0 and y=2 receive spoil
	elevations := []int32{10, 11, 10, 12, 10}
	for x, e := range elevations {
		i3 := s.Idx3(Topsoil, x, 1)
		s.TerrainLayers[i3] = e
		s.TerrainMaterials[i3] = MaterialLoam
	}
	s.MarkTerrainChanged()
	s.RebuildElevation()

	var before int64
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			before += int64(s.TotalElevation(x, y))
		}
	}

	res := s.DigTrench([2]int{0, 1}, DirEast, 5, TrenchFlat)
	if !res.Ok() {
		t.Fatalf("dig_trench failed: %s", res.Message)
	}

	for x := 0; x < 5; x++ {
		if got := s.TotalElevation(x, 1); got != 10 {
			t.Fatalf("cell (%d,1) elevation = %d, want 10 (origin's elevation)", x, got)
		}
	}

	var after int64
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			after += int64(s.TotalElevation(x, y))
		}
	}
	if before != after {
		t.Fatalf("total elevation not conserved: before=%d after=%d", before, after)
	}
}

func TestDigTrenchRejectsOutOfBoundsOrigin(t *testing.T) {
	s := newTestState(t, 3, 3)
	res := s.DigTrench([2]int{10, 10}, DirEast, 2, TrenchFlat)
	if res.Ok() {
		t.Fatalf("expected failure for out-of-bounds origin")
	}
}

func TestSurveyIsReadOnly(t *testing.T) {
	s := newTestState(t, 2, 2)
	fillFlat(s, 5)
	s.WaterGrid[s.Idx2(0, 0)] = 7

	before, res := s.Survey(0, 0)
	if !res.Ok() {
		t.Fatalf("survey failed: %s", res.Message)
	}
	after, _ := s.Survey(0, 0)
	if before != after {
		t.Fatalf("survey is not idempotent: %+v != %+v", before, after)
	}
	if s.WaterGrid[s.Idx2(0, 0)] != 7 {
		t.Fatalf("survey mutated state")
	}
}

func TestPourAndCollectWater(t *testing.T) {
	s := newTestState(t, 2, 2)
	res := s.PourWater(0, 0, 20)
	if !res.Ok() {
		t.Fatalf("pour failed: %s", res.Message)
	}
	res, collected := s.CollectWater(0, 0, 15)
	if !res.Ok() || collected != 15 {
		t.Fatalf("collect = (%v, %d), want (ok, 15)", res, collected)
	}
	res, collected = s.CollectWater(0, 0, 100)
	if !res.Ok() || collected != 5 {
		t.Fatalf("collect remaining = (%v, %d), want (ok, 5)", res, collected)
	}
}
