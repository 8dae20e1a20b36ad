package engine

import "testing"

func TestWaterPoolDrawClampsToFree(t *testing.T) {
	p := WaterPool{Free: 50}
	if got := p.Draw(10); got != 10 {
		t.Fatalf("Draw(10) = %d, want 10", got)
	}
	if p.Free != 40 {
		t.Fatalf("Free = %d, want 40", p.Free)
	}
	if got := p.Draw(1000); got != 40 {
		t.Fatalf("Draw(1000) = %d, want 40 (clamped to remaining free)", got)
	}
	if p.Free != 0 {
		t.Fatalf("Free = %d, want 0", p.Free)
	}
	if got := p.Draw(1); got != 0 {
		t.Fatalf("Draw on empty pool = %d, want 0", got)
	}
}

// S4 Wellspring with drying pool: a single wellspring outputting 10/tick
// against a free reserve of 50 drains the pool after 5 ticks and then
// injects nothing, logging wellspring_dry (spec §8 S4).
func TestWellspringDrying(t *testing.T) {
	s := newTestState(t, 1, 1)
	s.Pool.Free = 50
	s.Wellspring[s.Idx2(0, 0)] = 10

	injectLayer := Layer(s.cfg.Subsurface.InjectionLayer)
	i3 := s.Idx3(injectLayer, 0, 0)
	s.TerrainLayers[i3] = 100
	s.Porosity[i3] = 1.0
	s.MarkTerrainChanged()
	s.RebuildElevation()

	for i := 0; i < 5; i++ {
		injectWellsprings(s)
	}
	if s.Pool.Free != 0 {
		t.Fatalf("pool should be drained after 5 ticks of 10/tick draw from 50, got free=%d", s.Pool.Free)
	}
	before := s.SubsurfaceWater[i3]

	injectWellsprings(s)
	if s.SubsurfaceWater[i3] != before {
		t.Fatalf("dry wellspring should inject nothing, water changed from %d to %d", before, s.SubsurfaceWater[i3])
	}

	events := s.Events().All()
	found := false
	for _, e := range events {
		if e.Kind == EventWellspringDry {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a wellspring_dry event once the pool runs dry")
	}
}

func TestWaterPoolDrawAtmosphericDoesNotTouchFree(t *testing.T) {
	p := WaterPool{Atmospheric: 30, Free: 7}
	if got := p.DrawAtmospheric(10); got != 10 {
		t.Fatalf("DrawAtmospheric(10) = %d, want 10", got)
	}
	if p.Atmospheric != 20 {
		t.Fatalf("Atmospheric = %d, want 20", p.Atmospheric)
	}
	if p.Free != 7 {
		t.Fatalf("Free = %d, want unchanged at 7", p.Free)
	}
	if got := p.DrawAtmospheric(1000); got != 20 {
		t.Fatalf("DrawAtmospheric(1000) = %d, want 20 (clamped to remaining atmospheric)", got)
	}
	if p.Atmospheric != 0 {
		t.Fatalf("Atmospheric = %d, want 0", p.Atmospheric)
	}
}

func TestRainMovesAtmosphericToSurfaceAboveThreshold(t *testing.T) {
	s := newTestState(t, 2, 2)
	s.cfg.Atmosphere.RainHumidityThreshold = 0.8
	s.cfg.Atmosphere.RainAmountPerTick = 4
	s.cfg.Atmosphere.RainHumidityDrawdown = 0.3
	s.Pool.Atmospheric = 100
	s.Humidity[s.Idx2(0, 0)] = 0.9
	s.Humidity[s.Idx2(1, 1)] = 0.1

	before := s.Total()
	Rain(s)

	if s.WaterGrid[s.Idx2(0, 0)] != 4 {
		t.Fatalf("rained cell water = %d, want 4", s.WaterGrid[s.Idx2(0, 0)])
	}
	if s.WaterGrid[s.Idx2(1, 1)] != 0 {
		t.Fatalf("dry cell should not receive rain, got %d", s.WaterGrid[s.Idx2(1, 1)])
	}
	if s.Pool.Atmospheric != 96 {
		t.Fatalf("atmospheric reserve = %d, want 96", s.Pool.Atmospheric)
	}
	if after := s.Total(); after != before {
		t.Fatalf("rain is not conservative: before=%d after=%d", before, after)
	}
}
