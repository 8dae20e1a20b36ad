package engine

import "testing"

func TestBuildRejectsOccupiedCell(t *testing.T) {
	s := newTestState(t, 3, 3)
	if r := s.Build(StructureCistern, 1, 1); !r.Ok() {
		t.Fatalf("first build failed: %s", r.Message)
	}
	if r := s.Build(StructureCondenser, 1, 1); r.Ok() {
		t.Fatalf("expected build on occupied cell to fail")
	}
	if id := s.StructureID[s.Idx2(1, 1)]; id != 0 {
		t.Fatalf("expected structure id 0, got %d", id)
	}
}

func TestDemolishFreesCell(t *testing.T) {
	s := newTestState(t, 3, 3)
	s.Build(StructureCistern, 1, 1)
	if r := s.Demolish(1, 1); !r.Ok() {
		t.Fatalf("demolish failed: %s", r.Message)
	}
	if id := s.StructureID[s.Idx2(1, 1)]; id != -1 {
		t.Fatalf("expected cell cleared after demolish, got id %d", id)
	}
	if r := s.Demolish(1, 1); r.Ok() {
		t.Fatalf("expected demolish on empty cell to fail")
	}
}

func TestCisternCollectsSurfaceWaterUpToCapacity(t *testing.T) {
	s := newTestState(t, 2, 2)
	s.cfg.Structures.CisternCapacity = 10
	s.Build(StructureCistern, 0, 0)
	s.WaterGrid[s.Idx2(0, 0)] = 100

	Structures(s)

	entity := s.structures.byID[0]
	store := s.structures.storeMap.Get(entity)
	if store.Amount != 10 {
		t.Fatalf("cistern store = %d, want capacity 10", store.Amount)
	}
	if s.WaterGrid[s.Idx2(0, 0)] != 90 {
		t.Fatalf("surface water = %d, want 90 remaining", s.WaterGrid[s.Idx2(0, 0)])
	}
}

func TestCondenserDrawsFromAtmosphericReserve(t *testing.T) {
	s := newTestState(t, 2, 2)
	s.cfg.Structures.CondenserDrawPerTick = 5
	s.Pool.Atmospheric = 100
	s.Build(StructureCondenser, 0, 0)

	before := s.Total()
	Structures(s)

	if s.WaterGrid[s.Idx2(0, 0)] != 5 {
		t.Fatalf("condenser output = %d, want 5", s.WaterGrid[s.Idx2(0, 0)])
	}
	if s.Pool.Atmospheric != 95 {
		t.Fatalf("atmospheric reserve = %d, want 95", s.Pool.Atmospheric)
	}
	if s.Pool.Free != 0 {
		t.Fatalf("condenser must not route through Free, got %d", s.Pool.Free)
	}
	if after := s.Total(); after != before {
		t.Fatalf("condenser draw is not conservative: before=%d after=%d", before, after)
	}
}

func TestDepotSinksWaterUnconditionally(t *testing.T) {
	s := newTestState(t, 2, 2)
	s.Build(StructureDepot, 0, 0)
	s.WaterGrid[s.Idx2(0, 0)] = 50

	Structures(s)

	if s.WaterGrid[s.Idx2(0, 0)] != 0 {
		t.Fatalf("depot should sink all surface water, got %d", s.WaterGrid[s.Idx2(0, 0)])
	}
}

func TestCisternDampensEvaporation(t *testing.T) {
	s := newTestState(t, 2, 2)
	s.cfg.Structures.CisternEvapDamping = 0.25
	s.Build(StructureCistern, 0, 0)

	if got := s.CisternEvaporationDamping(0, 0); got != 0.25 {
		t.Fatalf("damping = %f, want 0.25", got)
	}
	if got := s.CisternEvaporationDamping(1, 1); got != 1.0 {
		t.Fatalf("damping on empty cell = %f, want 1.0", got)
	}
}

func TestPlanterGrowsOrganicsWhileMoist(t *testing.T) {
	s := newTestState(t, 2, 2)
	s.cfg.Structures.PlanterMoistureThreshold = 0.3
	s.cfg.Structures.PlanterGrowthPerTick = 1
	s.cfg.Structures.PlanterWaterBudget = 3
	s.Build(StructurePlanter, 0, 0)
	s.Moisture[s.Idx2(0, 0)] = 0.5

	Structures(s)

	i3 := s.Idx3(Organics, 0, 0)
	if s.TerrainLayers[i3] != 1 {
		t.Fatalf("organics depth = %d, want 1", s.TerrainLayers[i3])
	}
	if s.TerrainMaterials[i3] != MaterialHumus {
		t.Fatalf("organics material = %v, want Humus", s.TerrainMaterials[i3])
	}
	if s.StructureID[s.Idx2(0, 0)] == -1 {
		t.Fatalf("planter should still be alive while moist with budget remaining")
	}
}

func TestPlanterDiesWhenDry(t *testing.T) {
	s := newTestState(t, 2, 2)
	s.cfg.Structures.PlanterMoistureThreshold = 0.3
	s.Build(StructurePlanter, 0, 0)
	s.Moisture[s.Idx2(0, 0)] = 0.0

	Structures(s)

	if s.StructureID[s.Idx2(0, 0)] != -1 {
		t.Fatalf("expected planter to die and free its cell when moisture drops below threshold")
	}
}
